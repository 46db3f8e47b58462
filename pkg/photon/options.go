package photon

import (
	"math"
	"math/rand"

	"github.com/df07/go-photonmap/pkg/config"
	"github.com/df07/go-photonmap/pkg/core"
)

// Density sampling used to derive the minimum gather radius
const (
	densitySampleDivisor = 20   // sample 5% of the photons...
	minDensitySamples    = 100  // ...but at least this many
	maxDensitySamples    = 1000 // ...and at most this many
	unboundedRadius      = 1e7
)

// SetGatherOptions derives the adaptive gather parameters of a built store.
// The minimum radius comes from the settings when given, otherwise from
// the average photon density around randomly sampled photons, sized so
// that MaxGatherCount photons are expected inside it. Media maps use the
// volume density and double the radius. The tree is built first if needed.
func (s *Store) SetGatherOptions(settings config.Photons, media bool) {
	if !s.built {
		s.BuildTree()
	}
	s.media = media

	explicit, multiplier := settings.GatherRadius, settings.GatherRadiusMultiplier
	if media {
		explicit, multiplier = settings.MediaGatherRadius, settings.MediaGatherRadiusMultiplier
	}
	if multiplier <= 0 {
		multiplier = 1.0
	}
	s.minGatherRadiusMultiplier = multiplier

	radius := explicit
	if radius <= 0 {
		radius = s.estimateGatherRadius(settings, media)
	}
	if media {
		radius *= 2
	}

	s.gatherRadiusStep = radius * 2
	s.gatherStepCount = max(settings.GatherSteps, 0)
	s.minGatherRadius = radius * multiplier
}

// estimateGatherRadius samples local photon density and converts the
// average into the radius expected to hold MaxGatherCount photons
func (s *Store) estimateGatherRadius(settings config.Photons, media bool) float64 {
	if s.numPhotons == 0 {
		return 0
	}

	numToSample := s.numPhotons / densitySampleDivisor
	numToSample = max(minDensitySamples, min(maxDensitySamples, numToSample))

	gatherer := NewGatherer(s, GatherLimits{MaxCount: max(settings.MaxGatherCount, 1)})
	random := rand.New(rand.NewSource(settings.Seed))
	sum := 0.0
	samples := 0
	for i := 0; i < numToSample; i++ {
		p := s.At(Handle(random.Intn(s.numPhotons))).Position()
		n := gatherer.Gather(p, unboundedRadius, core.Vec3{}, 0)
		r := math.Sqrt(gatherer.queue.MaxDistSq())
		if r <= 0 {
			continue
		}
		sum += gatherer.density(n, r)
		samples++
	}

	if samples == 0 || sum <= 0 {
		return s.fallbackGatherRadius()
	}
	avg := sum / float64(samples)
	count := float64(max(settings.MaxGatherCount, 1))
	if media {
		return math.Cbrt(3.0 * count / (4.0 * math.Pi * avg))
	}
	return math.Sqrt(count / (math.Pi * avg))
}

// fallbackGatherRadius is used when no density could be measured, for
// example when every photon sits on the same point
func (s *Store) fallbackGatherRadius() float64 {
	if r := s.Bounds().Size().Length() / 10; r > 0 {
		return r
	}
	return 1.0
}
