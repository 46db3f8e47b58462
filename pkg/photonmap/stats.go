package photonmap

import (
	"time"

	"github.com/df07/go-photonmap/pkg/core"
	"github.com/df07/go-photonmap/pkg/shooting"
)

// Stats contains statistics about one pipeline run
type Stats struct {
	Workers           int     // shooting workers started
	Units             int     // shooting units planned
	Estimate          float64 // photon count estimate made before calibration
	SurfaceSeparation float64 // surface separation used for shooting

	Shooting shooting.PassStats // merged statistics of every shooting pass

	SurfacePhotons int
	GlobalPhotons  int
	MediaPhotons   int

	EstimateTime time.Duration
	PlanTime     time.Duration
	ShootTime    time.Duration
	MergeTime    time.Duration
	FileTime     time.Duration // saving or loading
}

// TotalPhotons returns the photon count over every map
func (s Stats) TotalPhotons() int {
	return s.SurfacePhotons + s.GlobalPhotons + s.MediaPhotons
}

// TotalTime returns the time spent over every phase
func (s Stats) TotalTime() time.Duration {
	return s.EstimateTime + s.PlanTime + s.ShootTime + s.MergeTime + s.FileTime
}

// Log writes a summary of the run
func (s Stats) Log(logger core.Logger) {
	logger.Printf("Photon maps: %d surface, %d global, %d media photons in %v\n",
		s.SurfacePhotons, s.GlobalPhotons, s.MediaPhotons, s.TotalTime())
	if s.Units == 0 {
		return
	}
	logger.Printf("Shooting: %d units on %d workers, %d rings, %d samples (%d hits, %d skipped, %d abandoned), %d autostopped\n",
		s.Units, s.Workers, s.Shooting.Rings, s.Shooting.Samples, s.Shooting.Hits,
		s.Shooting.Skipped, s.Shooting.Abandoned, s.Shooting.AutoStopped)
}
