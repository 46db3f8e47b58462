package shooting

import (
	"math"

	"github.com/df07/go-photonmap/pkg/config"
	"github.com/df07/go-photonmap/pkg/lights"
	"github.com/df07/go-photonmap/pkg/scene"
)

// minDistance below which a light is treated as sitting on its target's center
const minDistance = 1e-9

// Combo is one light aimed at one photon target, with everything a pass
// needs to sample it. It is immutable once created.
type Combo struct {
	Light  *lights.Light
	Target *scene.Object
	Global bool // scene-level light rather than a light-group light

	Reflection bool
	Refraction bool

	Direction   Direction
	Spread      float64 // photon spacing at the target, in world units
	MinTheta    float64
	MaxTheta    float64
	DeltaTheta  float64 // ring spacing: an angle, or a distance for parallel lights
	MediaSpread float64 // spacing of media photons along a ray
}

// MergedFlags combines a light's photon capability with the target's overrides
func MergedFlags(light *lights.Light, target *scene.Object) (reflection, refraction bool) {
	reflection = (target.Reflection == scene.PhotonOn || light.PhotonReflection) && target.Reflection != scene.PhotonOff
	refraction = (target.Refraction == scene.PhotonOn || light.PhotonRefraction) && target.Refraction != scene.PhotonOff
	return reflection, refraction
}

// Eligible reports whether any photons should be shot from light at target
func Eligible(light *lights.Light, target *scene.Object) bool {
	reflection, refraction := MergedFlags(light, target)
	return reflection || refraction
}

// NewCombo prepares light and target for shooting with the given surface
// separation. It returns false when the pair is ineligible or its geometry
// is degenerate.
func NewCombo(light *lights.Light, target *scene.Object, global bool, settings config.Photons) (*Combo, bool) {
	reflection, refraction := MergedFlags(light, target)
	if !reflection && !refraction {
		return nil, false
	}

	sphere := target.BoundingSphere()
	if sphere.Radius <= 0 || !sphere.Center.IsFinite() {
		return nil, false
	}

	c := &Combo{
		Light:      light,
		Target:     target,
		Global:     global,
		Reflection: reflection,
		Refraction: refraction,
		Direction:  NewDirection(light, sphere),
		Spread:     settings.SurfaceSeparation * target.SpacingMultiplier(),
	}
	if !c.computeAngles(settings) {
		return nil, false
	}
	return c, true
}

// computeAngles derives the spiral bounds from the target's bounding sphere
func (c *Combo) computeAngles(settings config.Photons) bool {
	d := c.Direction
	radius := d.Target.Radius
	if c.Spread <= 0 || math.IsNaN(c.Spread) || math.IsInf(c.Spread, 0) {
		return false
	}

	spread := c.Spread
	if c.Light.IsParallel() {
		// theta is a distance from the beam center
		if d.Dist+radius <= 0 {
			return false
		}
		c.MaxTheta = radius
	} else {
		if d.Dist < minDistance {
			return false
		}
		spread /= d.Dist
		if d.Dist < radius {
			c.MaxTheta = math.Pi
		} else {
			c.MaxTheta = math.Asin(radius / d.Dist)
		}
	}

	c.MinTheta = 0
	c.DeltaTheta = spread
	c.MediaSpread = c.Spread * settings.MediaSpacingFactor
	return c.DeltaTheta > 0 && !math.IsInf(c.DeltaTheta, 0)
}
