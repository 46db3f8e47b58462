package scene

import (
	"fmt"

	"github.com/df07/go-photonmap/pkg/config"
	"github.com/df07/go-photonmap/pkg/core"
	"github.com/df07/go-photonmap/pkg/lights"
	"github.com/df07/go-photonmap/pkg/photon"
)

// Scene contains everything the photon pipeline reads, plus the maps it produces
type Scene struct {
	Name    string
	Objects []*Object       // Root objects of the scene graph
	Lights  []*lights.Light // Scene-level (global) lights
	Fog     *Fog            // Optional participating medium
	Photons config.Photons  // Photon settings, copied into each pipeline run

	// Maps is filled in by the photon pipeline
	Maps *photon.MapSet
}

// Fog is a homogeneous participating medium filling Bounds
type Fog struct {
	Bounds  core.AABB
	Density float64   // Scattering events per unit length
	Color   core.Vec3 // Tint applied to photons scattered in the medium
}

// Contains reports whether p lies inside the fog volume
func (f *Fog) Contains(p core.Vec3) bool {
	return p.X >= f.Bounds.Min.X && p.X <= f.Bounds.Max.X &&
		p.Y >= f.Bounds.Min.Y && p.Y <= f.Bounds.Max.Y &&
		p.Z >= f.Bounds.Min.Z && p.Z <= f.Bounds.Max.Z
}

// Primitives returns every shaped leaf object of the scene
func (s *Scene) Primitives() []*Object {
	return Primitives(s.Objects)
}

// Targets returns the photon target objects reachable from the scene roots
func (s *Scene) Targets() []*Object {
	var out []*Object
	Walk(s.Objects, func(node *Object, _ Context) bool {
		if node.PhotonTarget {
			out = append(out, node)
			return false
		}
		return true
	})
	return out
}

// Validate checks that every primitive has a shape and the settings are consistent
func (s *Scene) Validate() error {
	var err error
	Walk(s.Objects, func(node *Object, _ Context) bool {
		if err == nil && node.Shape == nil && !node.IsCompound() {
			err = fmt.Errorf("scene: object %q has neither shape nor children", node.Name)
		}
		return err == nil
	})
	if err != nil {
		return err
	}
	if s.Fog != nil && s.Fog.Density < 0 {
		return fmt.Errorf("scene: negative fog density %v", s.Fog.Density)
	}
	return s.Photons.Validate()
}
