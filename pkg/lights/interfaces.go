package lights

import "github.com/df07/go-photonmap/pkg/core"

// Kind identifies the light variant. Each kind has its own attenuation rule
// and shooting geometry.
type Kind string

const (
	KindPoint    Kind = "point"
	KindSpot     Kind = "spot"
	KindCylinder Kind = "cylinder"
	KindArea     Kind = "area"
	KindParallel Kind = "parallel"
)

// AreaParams describes the sample grid of an area light
type AreaParams struct {
	Axis1, Axis2   core.Vec3 // Full edge vectors of the light rectangle
	Size1, Size2   int       // Grid resolution along each axis
	PhotonSampling bool      // Shoot photons from every grid cell instead of the center
}

// ConeParams shapes spot and cylinder lights. For spot lights Radius and
// Falloff are angles in degrees; for cylinder lights they are distances
// from the light axis.
type ConeParams struct {
	Radius    float64 // Fully lit inside this
	Falloff   float64 // Dark outside this
	Tightness float64 // Power-law exponent applied to the beam
}
