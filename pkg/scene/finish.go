package scene

import "github.com/df07/go-photonmap/pkg/core"

// FinishKind selects how a surface scatters photons
type FinishKind int

const (
	FinishDiffuse FinishKind = iota // Lambertian: photons stop and deposit here
	FinishMirror                    // Perfect specular reflection
	FinishGlass                     // Fresnel-weighted reflection and refraction
)

// Finish is the surface response used by the reference photon tracer
type Finish struct {
	Kind            FinishKind
	Albedo          core.Vec3 // Surface color; tints reflected or transmitted photons
	RefractiveIndex float64   // Glass only (e.g., 1.5 for glass)
}

// NewDiffuse creates a lambertian finish
func NewDiffuse(albedo core.Vec3) Finish {
	return Finish{Kind: FinishDiffuse, Albedo: albedo}
}

// NewMirror creates a perfect mirror finish
func NewMirror(albedo core.Vec3) Finish {
	return Finish{Kind: FinishMirror, Albedo: albedo}
}

// NewGlass creates a clear dielectric finish
func NewGlass(refractiveIndex float64) Finish {
	return Finish{Kind: FinishGlass, Albedo: core.NewVec3(1, 1, 1), RefractiveIndex: refractiveIndex}
}

// IsSpecular reports whether photons continue past the surface unscattered
func (f Finish) IsSpecular() bool {
	return f.Kind == FinishMirror || f.Kind == FinishGlass
}
