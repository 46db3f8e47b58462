package photon

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/df07/go-photonmap/pkg/core"
)

// randomStore fills a store with n photons uniformly placed in a 10-unit cube
func randomStore(n int, seed int64) *Store {
	random := rand.New(rand.NewSource(seed))
	s := NewStore()
	for i := 0; i < n; i++ {
		p := core.NewVec3(random.Float64()*10, random.Float64()*10, random.Float64()*10)
		c := core.NewVec3(random.Float64(), random.Float64(), random.Float64())
		s.Add(p, c, core.NewVec3(0, -1, 0))
	}
	return s
}

// recordKey identifies a record independent of its info byte
type recordKey struct {
	loc   [3]float32
	color RGBE
	theta int8
	phi   int8
}

func keyOf(r *Record) recordKey {
	return recordKey{loc: r.Loc, color: r.Color, theta: r.Theta, phi: r.Phi}
}

// multiset returns the records of s as a count map
func multiset(s *Store) map[recordKey]int {
	m := make(map[recordKey]int)
	s.ForEach(func(h Handle, r *Record) {
		m[keyOf(r)]++
	})
	return m
}

func assertSameMultiset(t *testing.T, expected, actual map[recordKey]int) {
	t.Helper()
	if len(expected) != len(actual) {
		t.Fatalf("Expected %d distinct records, got %d", len(expected), len(actual))
	}
	for k, n := range expected {
		if actual[k] != n {
			t.Fatalf("Expected record %+v %d times, got %d", k, n, actual[k])
		}
	}
}

// linearScan returns the handles within radius using the same distance metric as Gatherer
func linearScan(s *Store, point core.Vec3, radius float64, normal core.Vec3, flatten float64) []Handle {
	var out []Handle
	s.ForEach(func(h Handle, r *Record) {
		dx := float64(r.Loc[0]) - point.X
		dy := float64(r.Loc[1]) - point.Y
		dz := float64(r.Loc[2]) - point.Z
		d := dx*dx + dy*dy + dz*dz
		if flatten != 0 {
			disc := normal.X*dx + normal.Y*dy + normal.Z*dz
			d += flatten * disc * disc
		}
		if d < radius*radius {
			out = append(out, h)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func queueHandles(q *NeighborQueue) []Handle {
	var out []Handle
	for _, n := range q.Neighbors() {
		out = append(out, n.Handle)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func nan() float64 { return math.NaN() }
func inf() float64 { return math.Inf(1) }
