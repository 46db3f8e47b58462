package shooting

import (
	"github.com/df07/go-photonmap/pkg/config"
	"github.com/df07/go-photonmap/pkg/scene"
)

// Unit is one combo queued for shooting. IDs are dense and follow planning order.
type Unit struct {
	ID    int
	Combo *Combo
}

// Candidates walks the scene graph and returns a combo for every eligible
// (light, target) pair. Compound objects are descended until a photon
// target is found; a target is shot as a whole. Scene-level lights skip
// targets that ignore global lights; light-group lights only reach
// targets inside their group.
func Candidates(s *scene.Scene, settings config.Photons) []*Combo {
	var combos []*Combo
	scene.Walk(s.Objects, func(node *scene.Object, ctx scene.Context) bool {
		if !node.PhotonTarget {
			return true
		}

		if !ctx.NoGlobalLights {
			for _, light := range s.Lights {
				if c, ok := NewCombo(light, node, true, settings); ok {
					combos = append(combos, c)
				}
			}
		}
		for _, light := range ctx.GroupLights {
			if c, ok := NewCombo(light, node, false, settings); ok {
				combos = append(combos, c)
			}
		}
		return false
	})
	return combos
}

// Plan returns the shooting units of s in planning order
func Plan(s *scene.Scene, settings config.Photons) []Unit {
	combos := Candidates(s, settings)
	units := make([]Unit, len(combos))
	for i, c := range combos {
		units[i] = Unit{ID: i, Combo: c}
	}
	return units
}

// Queue returns a closed channel holding units. Each unit is received by
// exactly one consumer.
func Queue(units []Unit) <-chan Unit {
	ch := make(chan Unit, len(units))
	for _, u := range units {
		ch <- u
	}
	close(ch)
	return ch
}
