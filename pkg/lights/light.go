package lights

import (
	"math"

	"github.com/df07/go-photonmap/pkg/core"
	"github.com/df07/go-photonmap/pkg/geometry"
)

// Light is a photon-emitting light source
type Light struct {
	Kind     Kind
	Position core.Vec3 // Light location; a point on the emitting plane for parallel lights
	PointAt  core.Vec3 // Aim point for spot, cylinder and parallel lights
	Color    core.Vec3 // Emitted power

	Cone ConeParams // Spot and cylinder only
	Area AreaParams // Area only

	// Photon capability of this light. A target may still override each flag.
	PhotonReflection bool
	PhotonRefraction bool

	// ProjectedThrough, when set, makes photons start on the far side of this occluder
	ProjectedThrough geometry.Shape

	direction  core.Vec3
	cosRadius  float64
	cosFalloff float64
}

func newLight(kind Kind, position, pointAt, color core.Vec3) *Light {
	l := &Light{
		Kind:             kind,
		Position:         position,
		PointAt:          pointAt,
		Color:            color,
		PhotonReflection: true,
		PhotonRefraction: true,
	}
	l.direction = pointAt.Subtract(position).Normalize()
	return l
}

// NewPointLight creates an omnidirectional point light
func NewPointLight(position, color core.Vec3) *Light {
	return newLight(KindPoint, position, position, color)
}

// NewSpotLight creates a spot light aimed at pointAt.
// radiusDegrees: half-angle of the fully lit cone
// falloffDegrees: half-angle where the light reaches zero
func NewSpotLight(position, pointAt, color core.Vec3, radiusDegrees, falloffDegrees, tightness float64) *Light {
	l := newLight(KindSpot, position, pointAt, color)
	l.Cone = ConeParams{Radius: radiusDegrees, Falloff: falloffDegrees, Tightness: tightness}
	l.cosRadius = math.Cos(radiusDegrees * math.Pi / 180.0)
	l.cosFalloff = math.Cos(falloffDegrees * math.Pi / 180.0)
	return l
}

// NewCylinderLight creates a beam of parallel rays around the axis from
// position towards pointAt
func NewCylinderLight(position, pointAt, color core.Vec3, radius, falloff, tightness float64) *Light {
	l := newLight(KindCylinder, position, pointAt, color)
	l.Cone = ConeParams{Radius: radius, Falloff: falloff, Tightness: tightness}
	return l
}

// NewAreaLight creates a rectangular area light centered on position
func NewAreaLight(position, color, axis1, axis2 core.Vec3, size1, size2 int) *Light {
	l := newLight(KindArea, position, position, color)
	l.Area = AreaParams{
		Axis1:          axis1,
		Axis2:          axis2,
		Size1:          max(size1, 1),
		Size2:          max(size2, 1),
		PhotonSampling: true,
	}
	return l
}

// NewParallelLight creates a light whose rays all travel from position towards pointAt
func NewParallelLight(position, pointAt, color core.Vec3) *Light {
	return newLight(KindParallel, position, pointAt, color)
}

// Direction returns the normalized aim direction of the light
func (l *Light) Direction() core.Vec3 {
	return l.direction
}

// IsParallel reports whether all rays of the light share one direction
func (l *Light) IsParallel() bool {
	switch l.Kind {
	case KindParallel, KindCylinder:
		return true
	default:
		return false
	}
}

// Attenuation returns the fraction of the light's power carried along ray,
// which must start at (or, for beams, on the plane of) the light
func (l *Light) Attenuation(ray core.Ray) float64 {
	switch l.Kind {
	case KindPoint, KindArea, KindParallel:
		return 1.0
	case KindSpot:
		return l.spotAttenuation(ray.Direction)
	case KindCylinder:
		return l.cylinderAttenuation(ray)
	default:
		return 0
	}
}

func (l *Light) spotAttenuation(dir core.Vec3) float64 {
	cosTheta := dir.Normalize().Dot(l.direction)
	if cosTheta <= 0 {
		return 0
	}

	attenuation := 1.0
	if l.Cone.Tightness > 0 {
		attenuation = math.Pow(cosTheta, l.Cone.Tightness)
	}
	if l.Cone.Radius > 0 {
		attenuation *= cubicSpline(l.cosFalloff, l.cosRadius, cosTheta)
	}
	return attenuation
}

func (l *Light) cylinderAttenuation(ray core.Ray) float64 {
	if ray.Direction.Dot(l.direction) <= 0 || l.Cone.Falloff <= 0 {
		return 0
	}

	// distance of the ray origin from the beam axis
	offset := ray.Origin.Subtract(l.Position)
	along := l.direction.Multiply(offset.Dot(l.direction))
	dist := offset.Subtract(along).Length()
	if dist >= l.Cone.Falloff {
		return 0
	}

	k := 1.0 - dist/l.Cone.Falloff
	attenuation := 1.0
	if l.Cone.Tightness > 0 {
		attenuation = math.Pow(k, l.Cone.Tightness)
	}
	if l.Cone.Radius > 0 && dist > l.Cone.Radius {
		attenuation *= cubicSpline(0, 1.0-l.Cone.Radius/l.Cone.Falloff, k)
	}
	return attenuation
}

// cubicSpline eases from 0 at low to 1 at high
func cubicSpline(low, high, pos float64) float64 {
	if pos < low {
		return 0
	}
	if pos >= high {
		return 1
	}
	pos = (pos - low) / (high - low)
	return pos * pos * (3.0 - 2.0*pos)
}

// AreaSamples returns the photon sub-sample grid of the light. Lights that
// are not area lights, or area lights without photon sampling, shoot from
// their center as a single sample.
func (l *Light) AreaSamples() (nx, ny int) {
	if l.Kind != KindArea || !l.Area.PhotonSampling {
		return 1, 1
	}
	return max(l.Area.Size1, 1), max(l.Area.Size2, 1)
}

// AreaPoint returns the location of grid cell (i, j) of an area light
func (l *Light) AreaPoint(i, j int) core.Vec3 {
	nx, ny := l.AreaSamples()
	p := l.Position
	if nx > 1 {
		p = p.Add(l.Area.Axis1.Multiply(float64(i)/float64(nx-1) - 0.5))
	}
	if ny > 1 {
		p = p.Add(l.Area.Axis2.Multiply(float64(j)/float64(ny-1) - 0.5))
	}
	return p
}
