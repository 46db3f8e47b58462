package scene

import (
	"fmt"
	"sort"

	"github.com/df07/go-photonmap/pkg/config"
	"github.com/df07/go-photonmap/pkg/core"
	"github.com/df07/go-photonmap/pkg/geometry"
	"github.com/df07/go-photonmap/pkg/lights"
)

var builtinScenes = map[string]func() *Scene{
	"default":       NewDefaultScene,
	"caustic-glass": NewCausticGlassScene,
	"fog":           NewFogScene,
	"light-groups":  NewLightGroupScene,
}

// Names lists the built-in scenes
func Names() []string {
	names := make([]string, 0, len(builtinScenes))
	for name := range builtinScenes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Builtin creates the built-in scene with the given name
func Builtin(name string) (*Scene, error) {
	create, ok := builtinScenes[name]
	if !ok {
		return nil, fmt.Errorf("scene: unknown scene %q (available: %v)", name, Names())
	}
	return create(), nil
}

// newGround creates the diffuse floor shared by the built-in scenes
func newGround(albedo core.Vec3) *Object {
	return NewObject("ground", geometry.NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0)), NewDiffuse(albedo))
}

// NewDefaultScene creates glass and mirror spheres on a ground plane under a point light
func NewDefaultScene() *Scene {
	glass := NewObject("glass sphere", geometry.NewSphere(core.NewVec3(0.5, 0.25, -0.5), 0.25), NewGlass(1.5))
	glass.PhotonTarget = true

	mirror := NewObject("mirror sphere", geometry.NewSphere(core.NewVec3(-1, 0.5, -1), 0.5), NewMirror(core.NewVec3(0.8, 0.8, 0.8)))
	mirror.PhotonTarget = true

	// hollow glass shell around a diffuse core, targeted as one object
	shell := NewGroup("hollow glass",
		NewObject("outer shell", geometry.NewSphere(core.NewVec3(-0.5, 0.25, 0.5), 0.25), NewGlass(1.5)),
		NewObject("blue core", geometry.NewSphere(core.NewVec3(-0.5, 0.25, 0.5), 0.15), NewDiffuse(core.NewVec3(0.1, 0.2, 0.5))),
	)
	shell.PhotonTarget = true

	red := NewObject("red sphere", geometry.NewSphere(core.NewVec3(0, 0.5, -1), 0.5), NewDiffuse(core.NewVec3(0.65, 0.25, 0.2)))

	panel := NewObject("mirror panel", geometry.NewQuad(core.NewVec3(1.5, 0, -2), core.NewVec3(1, 0, 0), core.NewVec3(0, 1.5, 0)), NewMirror(core.NewVec3(0.9, 0.9, 0.9)))
	panel.PhotonTarget = true
	panel.Refraction = PhotonOff

	s := &Scene{
		Name:    "default",
		Objects: []*Object{newGround(core.NewVec3(0.48, 0.48, 0)), red, glass, mirror, shell, panel},
		Lights: []*lights.Light{
			lights.NewPointLight(core.NewVec3(3, 5, 2), core.NewVec3(15, 14, 13)),
		},
		Photons: config.Default(),
	}
	s.Photons.Enabled = true
	s.Photons.SurfaceCount = 20000
	return s
}

// NewCausticGlassScene creates a large glass sphere focusing a spot light,
// seen through a small iris, onto the floor
func NewCausticGlassScene() *Scene {
	lens := NewObject("lens", geometry.NewSphere(core.NewVec3(0, 1.5, 0), 1.0), NewGlass(1.5))
	lens.PhotonTarget = true
	lens.Reflection = PhotonOff

	block := NewObject("block", geometry.NewBox(core.NewVec3(2.5, 0.5, 0), core.NewVec3(0.5, 0.5, 0.5)), NewDiffuse(core.NewVec3(0.7, 0.7, 0.7)))

	spot := lights.NewSpotLight(core.NewVec3(0, 6, 0), core.NewVec3(0, 1.5, 0), core.NewVec3(40, 40, 40), 15, 25, 1)
	spot.ProjectedThrough = geometry.NewDisc(core.NewVec3(0, 5, 0), core.NewVec3(0, 1, 0), 0.15)

	s := &Scene{
		Name:    "caustic-glass",
		Objects: []*Object{newGround(core.NewVec3(0.8, 0.8, 0.8)), lens, block},
		Lights:  []*lights.Light{spot},
		Photons: config.Default(),
	}
	s.Photons.Enabled = true
	s.Photons.SurfaceSeparation = 0.01
	s.Photons.GlobalSeparation = 0.2
	return s
}

// NewFogScene creates a glass sphere inside a fog bank lit by a cylinder light,
// producing surface and media photons
func NewFogScene() *Scene {
	lens := NewObject("lens", geometry.NewSphere(core.NewVec3(0, 2, 0), 0.75), NewGlass(1.45))
	lens.PhotonTarget = true

	s := &Scene{
		Name:    "fog",
		Objects: []*Object{newGround(core.NewVec3(0.6, 0.6, 0.6)), lens},
		Lights: []*lights.Light{
			lights.NewCylinderLight(core.NewVec3(0, 8, 0), core.NewVec3(0, 0, 0), core.NewVec3(20, 18, 15), 0.8, 1.0, 0),
		},
		Fog: &Fog{
			Bounds:  core.NewAABB(core.NewVec3(-3, 0, -3), core.NewVec3(3, 4, 3)),
			Density: 0.3,
			Color:   core.NewVec3(0.9, 0.9, 1.0),
		},
		Photons: config.Default(),
	}
	s.Photons.Enabled = true
	s.Photons.SurfaceSeparation = 0.02
	s.Photons.MaxMediaSteps = 8
	s.Photons.MediaSpacingFactor = 2
	return s
}

// NewLightGroupScene creates two light groups that each light their own target.
// The right group ignores the scene-level area light.
func NewLightGroupScene() *Scene {
	leftTarget := NewObject("left glass", geometry.NewSphere(core.NewVec3(-2, 1, 0), 0.6), NewGlass(1.5))
	leftTarget.PhotonTarget = true
	left := NewLightGroup("left group",
		[]*lights.Light{lights.NewPointLight(core.NewVec3(-2, 4, 0), core.NewVec3(10, 6, 6))},
		leftTarget,
	)

	rightTarget := NewObject("right mirror", geometry.NewBox(core.NewVec3(2, 1, 0), core.NewVec3(0.5, 1, 0.5)), NewMirror(core.NewVec3(0.9, 0.9, 0.9)))
	rightTarget.PhotonTarget = true
	rightTarget.Spacing = 2
	right := NewLightGroup("right group",
		[]*lights.Light{lights.NewSpotLight(core.NewVec3(2, 5, 2), core.NewVec3(2, 1, 0), core.NewVec3(6, 6, 10), 20, 30, 0)},
		rightTarget,
	)
	right.NoGlobalLights = true

	area := lights.NewAreaLight(core.NewVec3(0, 6, 0), core.NewVec3(8, 8, 8), core.NewVec3(1, 0, 0), core.NewVec3(0, 0, 1), 2, 2)

	s := &Scene{
		Name:    "light-groups",
		Objects: []*Object{newGround(core.NewVec3(0.7, 0.7, 0.7)), left, right},
		Lights:  []*lights.Light{area},
		Photons: config.Default(),
	}
	s.Photons.Enabled = true
	s.Photons.SurfaceSeparation = 0.03
	return s
}
