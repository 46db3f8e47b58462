package shooting

import (
	"github.com/df07/go-photonmap/pkg/core"
	"github.com/df07/go-photonmap/pkg/lights"
	"github.com/df07/go-photonmap/pkg/photon"
	"github.com/df07/go-photonmap/pkg/scene"
)

// DepositFunc stores one photon in the caller's private maps. It returns
// false when the photon was rejected as degenerate.
type DepositFunc func(kind photon.Kind, point, dir, color core.Vec3) bool

// Ticket carries the state and limits of one photon trace
type Ticket struct {
	Light  *lights.Light
	Target *scene.Object

	// Merged photon capability of the light/target pair
	Reflection bool
	Refraction bool

	MaxTraceLevel int     // maximum number of surface interactions
	ADCBailout    float64 // photons weaker than this are dropped
	InitialDepth  float64 // distance already travelled before the trace started

	GlobalEnabled bool    // deposit diffuse inter-reflection photons in the global map
	MediaSpread   float64 // distance between media photon deposits along a ray
	MaxMediaSteps int     // cap on media deposits per ray segment; 0 disables media photons

	Sampler core.Sampler
	Deposit DepositFunc
}

// Tracer follows a photon through the scene, depositing photons through
// the ticket as a side effect
type Tracer interface {
	// TracePhoton reports whether the photon's first hit was the ticket's target
	TracePhoton(ray core.Ray, color core.Vec3, ticket *Ticket) bool
}

// TracerFunc adapts a function to the Tracer interface
type TracerFunc func(ray core.Ray, color core.Vec3, ticket *Ticket) bool

// TracePhoton calls f
func (f TracerFunc) TracePhoton(ray core.Ray, color core.Vec3, ticket *Ticket) bool {
	return f(ray, color, ticket)
}
