package photonmap

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/df07/go-photonmap/pkg/config"
	"github.com/df07/go-photonmap/pkg/core"
	"github.com/df07/go-photonmap/pkg/photon"
	"github.com/df07/go-photonmap/pkg/scene"
	"github.com/df07/go-photonmap/pkg/shooting"
)

// State is the phase a pipeline is in
type State int32

const (
	StateIdle State = iota
	StateEstimating
	StatePlanning
	StateShooting
	StateMerging
	StateSaving
	StateLoading
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEstimating:
		return "estimating"
	case StatePlanning:
		return "planning"
	case StateShooting:
		return "shooting"
	case StateMerging:
		return "merging"
	case StateSaving:
		return "saving"
	case StateLoading:
		return "loading"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Result is the outcome of a successful run
type Result struct {
	Maps     *photon.MapSet
	Settings config.Photons // settings after calibration
	Stats    Stats
}

// Pipeline builds the photon maps of one scene. Phases run strictly one
// after the other; only shooting is parallel.
type Pipeline struct {
	scene  *scene.Scene
	tracer shooting.Tracer
	logger core.Logger

	// Controller, if set, can pause or abort the run between checkpoints
	Controller *Controller
	// Reporter, if set, receives photon counts throttled to ReportInterval per phase
	Reporter       Reporter
	ReportInterval time.Duration
	// OnStateChange, if set, is called on every state transition
	OnStateChange func(State)

	state atomic.Int32
}

// NewPipeline creates a pipeline for s. The tracer is shared by every
// worker and must be safe for concurrent use.
func NewPipeline(s *scene.Scene, tracer shooting.Tracer, logger core.Logger) *Pipeline {
	if logger == nil {
		logger = discardLogger{}
	}
	return &Pipeline{
		scene:          s,
		tracer:         tracer,
		logger:         logger,
		ReportInterval: DefaultReportInterval,
	}
}

// State returns the current phase
func (p *Pipeline) State() State {
	return State(p.state.Load())
}

func (p *Pipeline) setState(s State) {
	p.state.Store(int32(s))
	if p.OnStateChange != nil {
		p.OnStateChange(s)
	}
}

// checkpoint blocks while paused and fails on abort or cancellation
func (p *Pipeline) checkpoint(ctx context.Context) error {
	if p.Controller != nil {
		return p.Controller.Wait(ctx)
	}
	return ctx.Err()
}

// Run builds the photon maps and stores them in the scene. With photons
// disabled it returns empty maps without touching the scene. On
// cancellation or abort every photon shot so far is discarded and the
// pipeline returns to idle.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	settings := p.scene.Photons
	result := &Result{Maps: photon.NewMapSet(), Settings: settings}

	if !settings.Enabled {
		p.logger.Printf("Photon mapping disabled\n")
		p.setState(StateDone)
		return result, nil
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	if settings.Mode() == config.FileLoad {
		if err := p.load(settings, result); err != nil {
			p.setState(StateIdle)
			return nil, err
		}
		return p.finish(result), nil
	}

	if err := p.shoot(ctx, &settings, result); err != nil {
		p.logger.Printf("Photon mapping stopped: %v\n", err)
		p.setState(StateIdle)
		return nil, err
	}
	result.Settings = settings

	if settings.Mode() == config.FileSave {
		p.save(settings, result)
	}
	return p.finish(result), nil
}

// shoot runs estimation, planning, shooting and merging
func (p *Pipeline) shoot(ctx context.Context, settings *config.Photons, result *Result) error {
	stats := &result.Stats

	p.setState(StateEstimating)
	start := time.Now()
	stats.Estimate = shooting.Calibrate(p.scene, settings)
	stats.SurfaceSeparation = settings.SurfaceSeparation
	stats.EstimateTime = time.Since(start)
	if settings.SurfaceCount > 0 {
		p.logger.Printf("Estimated %.0f photons, surface separation %.4g for %d target photons\n",
			stats.Estimate, settings.SurfaceSeparation, settings.SurfaceCount)
	}
	if err := p.checkpoint(ctx); err != nil {
		return err
	}

	p.setState(StatePlanning)
	start = time.Now()
	units := shooting.Plan(p.scene, *settings)
	stats.Units = len(units)
	stats.PlanTime = time.Since(start)
	p.logger.Printf("Planned %d shooting units\n", len(units))
	if len(units) == 0 {
		p.logger.Printf("Warning: no light reaches a photon target\n")
	}
	if err := p.checkpoint(ctx); err != nil {
		return err
	}

	p.setState(StateShooting)
	start = time.Now()
	pool := NewWorkerPool(p.tracer, *settings, min(settings.Workers, max(len(units), 1)), p.checkpoint)
	stats.Workers = pool.GetNumWorkers()
	p.watchProgress(pool)
	pool.Start(ctx, shooting.Queue(units))
	if err := pool.Wait(); err != nil {
		return err
	}
	stats.ShootTime = time.Since(start)

	p.setState(StateMerging)
	start = time.Now()
	for _, pass := range pool.Passes() {
		if err := p.checkpoint(ctx); err != nil {
			return err
		}
		result.Maps.Merge(pass.Maps)
		stats.Shooting.Add(pass.Stats)
	}
	p.build(*settings, result.Maps)
	stats.MergeTime = time.Since(start)
	return nil
}

// watchProgress reports the summed photon counts of every pass after each ring
func (p *Pipeline) watchProgress(pool *WorkerPool) {
	if p.Reporter == nil {
		return
	}
	reporter := NewThrottledReporter(p.Reporter, p.ReportInterval)
	surface := make([]atomic.Int64, pool.GetNumWorkers())
	media := make([]atomic.Int64, pool.GetNumWorkers())

	for _, pass := range pool.Passes() {
		pass.OnRing = func(pass *shooting.Pass) {
			s, _, m := pass.Maps.Counts()
			surface[pass.ID].Store(int64(s))
			media[pass.ID].Store(int64(m))

			var totalSurface, totalMedia int64
			for i := range surface {
				totalSurface += surface[i].Load()
				totalMedia += media[i].Load()
			}
			reporter.ReportPhotonCount(int(totalSurface), int(totalMedia))
		}
	}
}

// build constructs the kd-tree and gather options of every non-empty map.
// Loaded maps keep their saved tree order.
func (p *Pipeline) build(settings config.Photons, maps *photon.MapSet) {
	for _, kind := range []photon.Kind{photon.Surface, photon.Global, photon.Media} {
		store := maps.Store(kind)
		if store.Len() == 0 {
			if p.requested(settings, kind) {
				p.logger.Printf("Warning: %s photon map is empty\n", kind)
			}
			continue
		}
		if !store.Built() {
			store.BuildTree()
		}
		store.SetGatherOptions(settings, kind == photon.Media)
	}
}

// requested reports whether the run is expected to produce photons of kind
func (p *Pipeline) requested(settings config.Photons, kind photon.Kind) bool {
	switch kind {
	case photon.Global:
		return settings.GlobalEnabled()
	case photon.Media:
		return p.scene.Fog != nil && settings.MaxMediaSteps > 0
	default:
		return true
	}
}

// save writes the maps; a failure is only a warning
func (p *Pipeline) save(settings config.Photons, result *Result) {
	p.setState(StateSaving)
	start := time.Now()

	var global *photon.Store
	if settings.GlobalEnabled() {
		global = result.Maps.Global
	}
	if err := photon.Save(settings.FileName, result.Maps.Surface, global, result.Maps.Media); err != nil {
		p.logger.Printf("Warning: photons not saved: %v\n", err)
	} else {
		p.logger.Printf("Saved photon maps to %s\n", settings.FileName)
	}
	result.Stats.FileTime = time.Since(start)
}

// load replaces shooting with the maps of a saved file
func (p *Pipeline) load(settings config.Photons, result *Result) error {
	p.setState(StateLoading)
	start := time.Now()

	var global *photon.Store
	if settings.GlobalEnabled() {
		global = result.Maps.Global
	}
	if err := photon.Load(settings.FileName, result.Maps.Surface, global, result.Maps.Media); err != nil {
		return fmt.Errorf("photonmap: load photons: %w", err)
	}
	p.build(settings, result.Maps)
	result.Stats.FileTime = time.Since(start)
	p.logger.Printf("Loaded photon maps from %s\n", settings.FileName)
	return nil
}

// finish publishes the maps to the scene
func (p *Pipeline) finish(result *Result) *Result {
	stats := &result.Stats
	stats.SurfacePhotons, stats.GlobalPhotons, stats.MediaPhotons = result.Maps.Counts()
	if p.Reporter != nil {
		p.Reporter.ReportPhotonCount(stats.SurfacePhotons, stats.MediaPhotons)
	}

	p.scene.Maps = result.Maps
	stats.Log(p.logger)
	p.setState(StateDone)
	return result
}
