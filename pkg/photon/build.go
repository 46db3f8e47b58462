package photon

// insertionThreshold is the range length below which selection falls back
// to insertion sort
const insertionThreshold = 8

// BuildTree reorders the photons in place into an implicit balanced
// kd-tree: the node of range [start,end] is the photon at (start+end)/2,
// its left subtree is [start,mid-1] and its right subtree [mid+1,end].
// The split axis of every node is written to its info byte.
func (s *Store) BuildTree() {
	if s.numPhotons > 0 {
		s.subdivide(0, s.numPhotons-1, 0)
	}
	s.built = true
}

// subdivide places the median of [start,end] on the chosen axis and
// recurses into both halves with depth+1
func (s *Store) subdivide(start, end, depth int) {
	if start > end {
		return
	}
	mid := (start + end) >> 1

	axis := depth % 3
	if end > start {
		axis = s.splitAxis(start, end, axis)
		s.selectNth(start, end, mid, axis)
	}

	r := s.At(Handle(mid))
	r.Info = (r.Info &^ axisMask) | uint8(axis)

	if end == start {
		return
	}
	s.subdivide(start, mid-1, depth+1)
	s.subdivide(mid+1, end, depth+1)
}

// splitAxis returns preferred unless the photons in [start,end] all share
// one coordinate on it, in which case the next non-degenerate axis in
// X→Y→Z order is used
func (s *Store) splitAxis(start, end, preferred int) int {
	for i := 0; i < 3; i++ {
		axis := (preferred + i) % 3
		lo := s.At(Handle(start)).Loc[axis]
		hi := lo
		for j := start + 1; j <= end; j++ {
			v := s.At(Handle(j)).Loc[axis]
			lo = min(lo, v)
			hi = max(hi, v)
		}
		if hi > lo {
			return axis
		}
	}
	return preferred
}

// selectNth partially sorts [lo,hi] on axis so that position k holds the
// value it would have after a full sort, everything before it is <= and
// everything after it is >=. Median-of-three Hoare partitioning narrows
// the range; short ranges are finished with insertion sort.
func (s *Store) selectNth(lo, hi, k, axis int) {
	key := func(i int) float32 { return s.At(Handle(i)).Loc[axis] }

	for hi-lo+1 > insertionThreshold {
		m := lo + (hi-lo)/2
		if key(m) < key(lo) {
			s.swap(m, lo)
		}
		if key(hi) < key(lo) {
			s.swap(hi, lo)
		}
		if key(hi) < key(m) {
			s.swap(hi, m)
		}
		pivot := key(m)

		i, j := lo, hi
		for i <= j {
			for key(i) < pivot {
				i++
			}
			for key(j) > pivot {
				j--
			}
			if i <= j {
				s.swap(i, j)
				i++
				j--
			}
		}

		// [lo,j] <= pivot, [i,hi] >= pivot, and (j,i) holds only the pivot value
		switch {
		case k <= j:
			hi = j
		case k >= i:
			lo = i
		default:
			return
		}
	}

	s.insertionSort(lo, hi, axis)
}

func (s *Store) insertionSort(lo, hi, axis int) {
	for i := lo + 1; i <= hi; i++ {
		for j := i; j > lo && s.At(Handle(j)).Loc[axis] < s.At(Handle(j-1)).Loc[axis]; j-- {
			s.swap(j, j-1)
		}
	}
}
