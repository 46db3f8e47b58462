package shooting

import (
	"context"
	"math"

	"github.com/df07/go-photonmap/pkg/config"
	"github.com/df07/go-photonmap/pkg/core"
	"github.com/df07/go-photonmap/pkg/photon"
)

// negligibleAttenuation is the light fraction below which a sample is not traced
const negligibleAttenuation = 1e-5

// seedStride spreads per-unit random seeds apart
const seedStride = 7919

// PassStats counts the work done by one pass
type PassStats struct {
	Units       int     // units shot to completion or autostop
	Rings       int     // theta rings sampled
	Samples     int     // photons handed to the tracer
	Hits        int     // traced photons whose first hit was the target
	Skipped     int     // samples dropped for negligible attenuation
	Abandoned   int     // samples that never crossed the projected-through occluder
	AutoStopped int     // units stopped early by autostop
	LastTheta   float64 // theta of the last ring sampled
}

// Add accumulates other into s
func (s *PassStats) Add(other PassStats) {
	s.Units += other.Units
	s.Rings += other.Rings
	s.Samples += other.Samples
	s.Hits += other.Hits
	s.Skipped += other.Skipped
	s.Abandoned += other.Abandoned
	s.AutoStopped += other.AutoStopped
	s.LastTheta = max(s.LastTheta, other.LastTheta)
}

// Pass is one shooting worker. It owns private photon maps, so no locking
// is needed while it runs; the maps are merged once all passes finish.
type Pass struct {
	ID       int
	Tracer   Tracer
	Settings config.Photons
	Maps     *photon.MapSet
	Stats    PassStats

	// Checkpoint is called before every ring; a non-nil error stops the pass
	Checkpoint func() error
	// OnRing, if set, is called after every ring with the pass's photon counts
	OnRing func(p *Pass)
}

// NewPass creates a worker with empty private maps
func NewPass(id int, tracer Tracer, settings config.Photons) *Pass {
	return &Pass{
		ID:       id,
		Tracer:   tracer,
		Settings: settings,
		Maps:     photon.NewMapSet(),
	}
}

// Run shoots units until the channel is drained, the context is done, or
// the checkpoint fails
func (p *Pass) Run(ctx context.Context, units <-chan Unit) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case unit, ok := <-units:
			if !ok {
				return nil
			}
			if err := p.Shoot(ctx, unit); err != nil {
				return err
			}
		}
	}
}

// Shoot samples one unit's spiral and traces every sample
func (p *Pass) Shoot(ctx context.Context, unit Unit) error {
	c := unit.Combo
	light := c.Light
	settings := p.Settings
	sampler := core.NewSeededSampler(settings.Seed + int64(unit.ID)*seedStride)

	ticket := &Ticket{
		Light:         light,
		Target:        c.Target,
		Reflection:    c.Reflection,
		Refraction:    c.Refraction,
		MaxTraceLevel: settings.MaxTraceLevel,
		ADCBailout:    settings.ADCBailout,
		GlobalEnabled: settings.GlobalEnabled(),
		MediaSpread:   c.MediaSpread,
		MaxMediaSteps: settings.MaxMediaSteps,
		Sampler:       sampler,
		Deposit:       p.Maps.Deposit,
	}

	// one frame per area light grid cell
	nx, ny := light.AreaSamples()
	frames := make([]Direction, 0, nx*ny)
	if nx*ny == 1 {
		frames = append(frames, c.Direction)
	} else {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				frames = append(frames, c.Direction.ForAreaSample(i, j))
			}
		}
	}
	color := light.Color.Multiply(1.0 / float64(len(frames)))

	dtheta := c.DeltaTheta
	jitter := settings.Jitter
	parallel := light.IsParallel()
	autoStop := settings.AutoStopPercent * c.MaxTheta
	everHit := false

	for theta := c.MinTheta; theta < c.MaxTheta; theta += dtheta {
		if err := ctx.Err(); err != nil {
			return err
		}
		if p.Checkpoint != nil {
			if err := p.Checkpoint(); err != nil {
				return err
			}
		}
		p.Stats.Rings++
		p.Stats.LastTheta = theta

		var dphi float64
		switch {
		case theta < 1e-9:
			dphi = 2 * math.Pi
		case parallel:
			dphi = dtheta / theta
		default:
			dphi = dtheta / math.Sin(theta)
		}
		minPhi := -math.Pi + dphi*sampler.Get1D()*0.5
		maxPhi := math.Pi - dphi/2 + (minPhi + math.Pi)

		ringHit := false
		for phi := minPhi; phi < maxPhi; phi += dphi {
			jitTheta := theta + (sampler.Get1D()-0.5)*dtheta*jitter
			jitPhi := phi + (sampler.Get1D()-0.5)*dphi*jitter

			for _, frame := range frames {
				if p.shootSample(frame.Ray(jitTheta, jitPhi), color, ticket) {
					ringHit = true
				}
			}
		}

		if p.OnRing != nil {
			p.OnRing(p)
		}

		if ringHit {
			everHit = true
		} else if everHit && theta > autoStop {
			p.Stats.AutoStopped++
			break
		}
	}

	p.Stats.Units++
	return nil
}

// shootSample attenuates, projects and traces one photon ray
func (p *Pass) shootSample(ray core.Ray, color core.Vec3, ticket *Ticket) bool {
	light := ticket.Light
	attenuation := light.Attenuation(ray)
	if attenuation < negligibleAttenuation || math.IsNaN(attenuation) {
		p.Stats.Skipped++
		return false
	}

	ticket.InitialDepth = 0
	if light.ProjectedThrough != nil {
		ts := light.ProjectedThrough.Intersections(ray)
		if len(ts) == 0 {
			p.Stats.Abandoned++
			return false
		}
		last := ts[len(ts)-1]
		ray.Origin = ray.At(last)
		ticket.InitialDepth = last
	}

	p.Stats.Samples++
	if p.Tracer.TracePhoton(ray, color.Multiply(attenuation), ticket) {
		p.Stats.Hits++
		return true
	}
	return false
}
