package photon

import "github.com/df07/go-photonmap/pkg/core"

// Kind selects which photon map a deposit goes to
type Kind int

const (
	Surface Kind = iota // caustic photons on surfaces
	Global              // diffuse inter-reflection photons
	Media               // photons in participating media
)

func (k Kind) String() string {
	switch k {
	case Surface:
		return "surface"
	case Global:
		return "global"
	case Media:
		return "media"
	default:
		return "unknown"
	}
}

// MapSet groups the surface, global and media stores of one owner
type MapSet struct {
	Surface *Store
	Global  *Store
	Media   *Store
}

// NewMapSet creates a set of empty stores
func NewMapSet() *MapSet {
	return &MapSet{
		Surface: NewStore(),
		Global:  NewStore(),
		Media:   NewStore(),
	}
}

// Store returns the store for a map kind
func (m *MapSet) Store(kind Kind) *Store {
	switch kind {
	case Global:
		return m.Global
	case Media:
		return m.Media
	default:
		return m.Surface
	}
}

// Deposit records a photon. Non-finite positions or directions and black
// or non-finite colours are dropped and reported as false.
func (m *MapSet) Deposit(kind Kind, point, dir, color core.Vec3) bool {
	if !point.IsFinite() || !dir.IsFinite() || dir.IsZero() || !color.IsFinite() {
		return false
	}
	if color.MaxComponent() <= 0 {
		return false
	}
	m.Store(kind).Add(point, color, dir)
	return true
}

// Merge moves every store of other into the matching store of m
func (m *MapSet) Merge(other *MapSet) {
	if other == nil {
		return
	}
	m.Surface.Merge(other.Surface)
	m.Global.Merge(other.Global)
	m.Media.Merge(other.Media)
}

// Counts returns the photon count of each map
func (m *MapSet) Counts() (surface, global, media int) {
	return m.Surface.Len(), m.Global.Len(), m.Media.Len()
}
