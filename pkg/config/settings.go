package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/cpu"
)

// ErrSaveAndLoad is returned when a settings value asks to both save and load a photon file.
var ErrSaveAndLoad = errors.New("config: photon file cannot be both saved and loaded")

// FileMode selects what happens with the photon map file for a run
type FileMode int

const (
	FileNone FileMode = iota // neither save nor load
	FileSave                 // save the built maps after merging
	FileLoad                 // skip shooting and load the maps
)

func (m FileMode) String() string {
	switch m {
	case FileSave:
		return "save"
	case FileLoad:
		return "load"
	default:
		return "none"
	}
}

// Estimation holds the calibration constants of the photon count estimate.
// They are empirical and kept configurable rather than derived.
type Estimation struct {
	HitRatio           float64 `json:"hit_ratio"`            // fraction of shot photons assumed to hit the target
	BothModesFactor    float64 `json:"both_modes_factor"`    // reflection and refraction both enabled
	IgnoreBothFactor   float64 `json:"ignore_both_factor"`   // target not ignoring photons, both modes
	IgnoreSingleFactor float64 `json:"ignore_single_factor"` // target not ignoring photons, one mode
}

// Photons holds the scene-wide photon mapping settings.
// It is populated once before planning and passed by value to every task.
type Photons struct {
	Enabled bool `json:"enabled"`

	// Spacing targets. SurfaceCount, when positive, rescales SurfaceSeparation
	// from the estimated photon count instead of using it directly.
	SurfaceSeparation float64 `json:"surface_separation"`
	GlobalSeparation  float64 `json:"global_separation"`
	SurfaceCount      int     `json:"surface_count"`

	// Gathering
	MinGatherCount              int     `json:"min_gather_count"`
	MaxGatherCount              int     `json:"max_gather_count"`
	ExpandTolerance             float64 `json:"expand_tolerance"`
	MinExpandCount              int     `json:"min_expand_count"`
	GatherRadius                float64 `json:"gather_radius"`       // 0 = derive from photon density
	GatherRadiusMultiplier      float64 `json:"gather_radius_mult"`  // speed/quality tradeoff
	MediaGatherRadius           float64 `json:"media_gather_radius"` // 0 = derive from photon density
	MediaGatherRadiusMultiplier float64 `json:"media_gather_radius_mult"`
	GatherSteps                 int     `json:"gather_steps"`

	// Shooting
	Jitter          float64 `json:"jitter"`
	AutoStopPercent float64 `json:"autostop"` // 1.0 disables autostop
	MaxTraceLevel   int     `json:"max_trace_level"`
	ADCBailout      float64 `json:"adc_bailout"`

	// Media
	MediaSpacingFactor float64 `json:"media_spacing_factor"`
	MaxMediaSteps      int     `json:"max_media_steps"`

	// Persistence
	FileName string `json:"file_name"`
	Save     bool   `json:"save"`
	Load     bool   `json:"load"`

	Workers    int        `json:"workers"`
	Seed       int64      `json:"seed"`
	Estimation Estimation `json:"estimation"`
}

// Flags carries CLI overrides. Zero values leave the settings untouched.
type Flags struct {
	SurfaceCount int
	Workers      int
	SaveFile     string
	LoadFile     string
	Disable      bool
}

// Default returns the settings used when a scene enables photons without tuning them
func Default() Photons {
	return Photons{
		Enabled:                     true,
		SurfaceSeparation:           0.1,
		MinGatherCount:              20,
		MaxGatherCount:              100,
		ExpandTolerance:             0.4,
		MinExpandCount:              35,
		GatherRadiusMultiplier:      1.0,
		MediaGatherRadiusMultiplier: 1.0,
		GatherSteps:                 2,
		Jitter:                      0.4,
		AutoStopPercent:             0.5,
		MaxTraceLevel:               10,
		ADCBailout:                  1.0 / 255.0,
		MediaSpacingFactor:          1.0,
		MaxMediaSteps:               0,
		Workers:                     DefaultWorkers(),
		Seed:                        42,
		Estimation: Estimation{
			HitRatio:           0.5,
			BothModesFactor:    1.5,
			IgnoreBothFactor:   3,
			IgnoreSingleFactor: 2,
		},
	}
}

// DefaultWorkers returns the number of logical CPUs
func DefaultWorkers() int {
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// Load reads a JSON settings file on top of Default().
// Fields not set in the file keep their default values.
func Load(path string) (Photons, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Photons{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Photons{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, cfg.Validate()
}

// Resolve applies CLI overrides and fills derived defaults.
func (p *Photons) Resolve(flags Flags) {
	if flags.Disable {
		p.Enabled = false
	}
	if flags.SurfaceCount > 0 {
		p.SurfaceCount = flags.SurfaceCount
	}
	if flags.Workers > 0 {
		p.Workers = flags.Workers
	}
	if flags.SaveFile != "" {
		p.FileName, p.Save, p.Load = flags.SaveFile, true, false
	}
	if flags.LoadFile != "" {
		p.FileName, p.Save, p.Load = flags.LoadFile, false, true
	}

	// A count target starts from unit spacing and is rescaled by the estimate
	if p.SurfaceCount > 0 && p.SurfaceSeparation <= 0 {
		p.SurfaceSeparation = 1.0
	}
	if p.Workers <= 0 {
		p.Workers = DefaultWorkers()
	}
	if p.MaxGatherCount < p.MinGatherCount {
		p.MaxGatherCount = p.MinGatherCount
	}
}

// Validate checks ranges and the save/load exclusivity
func (p Photons) Validate() error {
	if p.Save && p.Load {
		return ErrSaveAndLoad
	}
	if (p.Save || p.Load) && p.FileName == "" {
		return fmt.Errorf("config: photon file %s requested without a file name", p.Mode())
	}
	if p.AutoStopPercent < 0 || p.AutoStopPercent > 1 {
		return fmt.Errorf("config: autostop %v outside [0,1]", p.AutoStopPercent)
	}
	if p.Jitter < 0 || p.Jitter > 1 {
		return fmt.Errorf("config: jitter %v outside [0,1]", p.Jitter)
	}
	if p.MinGatherCount < 0 || p.MaxGatherCount < 0 || p.SurfaceCount < 0 {
		return fmt.Errorf("config: photon counts must not be negative")
	}
	if p.SurfaceSeparation < 0 || p.GlobalSeparation < 0 {
		return fmt.Errorf("config: photon separation must not be negative")
	}
	return nil
}

// Mode returns the persistence mode implied by the Save and Load fields
func (p Photons) Mode() FileMode {
	switch {
	case p.Load:
		return FileLoad
	case p.Save:
		return FileSave
	default:
		return FileNone
	}
}

// GlobalEnabled reports whether a global (diffuse inter-reflection) map is requested
func (p Photons) GlobalEnabled() bool {
	return p.GlobalSeparation > 0
}
