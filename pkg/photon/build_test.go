package photon

import (
	"testing"

	"github.com/df07/go-photonmap/pkg/core"
)

// checkKdInvariant verifies that every node splits its range on its axis
func checkKdInvariant(t *testing.T, s *Store, start, end int) {
	t.Helper()
	if start > end {
		return
	}
	mid := (start + end) >> 1
	node := s.At(Handle(mid))
	axis := node.Axis()
	if axis > 2 {
		t.Fatalf("Node %d has invalid axis %d", mid, axis)
	}
	split := node.Loc[axis]
	for i := start; i < mid; i++ {
		if v := s.At(Handle(i)).Loc[axis]; v > split {
			t.Fatalf("Left photon %d has %v > split %v on axis %d", i, v, split, axis)
		}
	}
	for i := mid + 1; i <= end; i++ {
		if v := s.At(Handle(i)).Loc[axis]; v < split {
			t.Fatalf("Right photon %d has %v < split %v on axis %d", i, v, split, axis)
		}
	}
	checkKdInvariant(t, s, start, mid-1)
	checkKdInvariant(t, s, mid+1, end)
}

func TestBuildTree_Empty(t *testing.T) {
	s := NewStore()
	s.BuildTree()
	if s.Len() != 0 {
		t.Errorf("Expected no photons, got %d", s.Len())
	}
	if !s.Built() {
		t.Error("Expected store to be marked built")
	}
}

func TestBuildTree_IsPermutation(t *testing.T) {
	for _, n := range []int{1, 2, 7, 8, 9, 100, 1000, BlockSize + 100} {
		s := randomStore(n, int64(n))
		before := multiset(s)

		s.BuildTree()

		if s.Len() != n {
			t.Fatalf("Expected %d photons after build, got %d", n, s.Len())
		}
		assertSameMultiset(t, before, multiset(s))
		checkKdInvariant(t, s, 0, n-1)
	}
}

func TestBuildTree_DuplicatePositions(t *testing.T) {
	s := NewStore()
	for i := 0; i < 200; i++ {
		// many photons share coordinates to exercise equal keys in the partition
		s.Add(core.NewVec3(float64(i%3), 1, float64(i%5)), core.NewVec3(1, 1, 1), core.NewVec3(0, -1, 0))
	}
	before := multiset(s)

	s.BuildTree()

	assertSameMultiset(t, before, multiset(s))
	checkKdInvariant(t, s, 0, s.Len()-1)
}

func TestBuildTree_DegenerateAxisFallback(t *testing.T) {
	s := NewStore()
	// All photons on the plane x = 2: the root would split on X by depth
	for i := 0; i < 64; i++ {
		s.Add(core.NewVec3(2, float64(i), float64(63-i)), core.NewVec3(1, 1, 1), core.NewVec3(0, -1, 0))
	}

	s.BuildTree()

	root := s.At(Handle((s.Len() - 1) >> 1))
	if root.Axis() != 1 {
		t.Errorf("Expected root to fall back to the Y axis, got %d", root.Axis())
	}
	checkKdInvariant(t, s, 0, s.Len()-1)
}

func TestBuildTree_AlternatesAxes(t *testing.T) {
	s := randomStore(15, 3)
	s.BuildTree()

	// 15 photons form a perfect tree: root 7, children 3 and 11, grandchildren 1,5,9,13
	expected := map[int]int{7: 0, 3: 1, 11: 1, 1: 2, 5: 2, 9: 2, 13: 2}
	for idx, axis := range expected {
		if got := s.At(Handle(idx)).Axis(); got != axis {
			t.Errorf("Expected node %d to split on axis %d, got %d", idx, axis, got)
		}
	}
}

func TestSelectNth(t *testing.T) {
	s := randomStore(501, 9)
	for _, k := range []int{0, 17, 250, 499, 500} {
		s.selectNth(0, s.Len()-1, k, 2)
		pivot := s.At(Handle(k)).Loc[2]
		for i := 0; i < s.Len(); i++ {
			v := s.At(Handle(i)).Loc[2]
			if (i < k && v > pivot) || (i > k && v < pivot) {
				t.Fatalf("k=%d: photon %d with %v is on the wrong side of %v", k, i, v, pivot)
			}
		}
	}
}
