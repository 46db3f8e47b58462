package shooting

import (
	"math"

	"github.com/df07/go-photonmap/pkg/config"
	"github.com/df07/go-photonmap/pkg/scene"
)

// EstimatePhotonCount predicts how many photons shooting combo c will
// deposit, from the target's cross-section measured in photon spacings
func EstimatePhotonCount(c *Combo, est config.Estimation) float64 {
	if c.Spread <= 0 {
		return 0
	}
	x := c.Direction.Target.Radius / c.Spread
	x = x * x * math.Pi

	both := c.Reflection && c.Refraction
	if both {
		x *= est.BothModesFactor
	}
	if !c.Target.IgnorePhotons {
		if both {
			x *= est.IgnoreBothFactor
		} else {
			x *= est.IgnoreSingleFactor
		}
	}
	return x * est.HitRatio
}

// Estimate sums the predicted photon count over every candidate combo of s
func Estimate(s *scene.Scene, settings config.Photons) float64 {
	total := 0.0
	for _, c := range Candidates(s, settings) {
		total += EstimatePhotonCount(c, settings.Estimation)
	}
	return total
}

// Calibrate rescales the surface separation so that the estimated photon
// count matches settings.SurfaceCount. It returns the estimate made with
// the original separation; settings are unchanged when no count target
// is set or nothing would be shot.
func Calibrate(s *scene.Scene, settings *config.Photons) float64 {
	if settings.SurfaceCount <= 0 {
		return 0
	}
	if settings.SurfaceSeparation <= 0 {
		settings.SurfaceSeparation = 1.0
	}

	estimate := Estimate(s, *settings)
	if estimate <= 0 || math.IsNaN(estimate) || math.IsInf(estimate, 0) {
		return estimate
	}
	settings.SurfaceSeparation *= math.Sqrt(estimate / float64(settings.SurfaceCount))
	return estimate
}
