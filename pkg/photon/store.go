package photon

import (
	"github.com/df07/go-photonmap/pkg/core"
)

// Block addressing: a flat index i lives at blocks[i>>BlockPower][i&BlockMask].
const (
	BlockPower = 14
	BlockSize  = 1 << BlockPower
	BlockMask  = BlockSize - 1

	initialBaseSize = 100 // initial capacity of the base array
)

// Handle addresses one photon in a Store by its flat index
type Handle int

// block is a fixed-size run of records. Blocks are only ever referenced
// through pointers, so growing the base array never moves record storage.
type block [BlockSize]Record

// Store is an append-only photon map. Each shooting worker owns a private
// Store, so it is not safe for concurrent use. After BuildTree the record
// order is an implicit balanced kd-tree and the store is read-only.
type Store struct {
	blocks     []*block
	numPhotons int
	built      bool

	// Gather parameters, set by SetGatherOptions
	minGatherRadius           float64
	minGatherRadiusMultiplier float64
	gatherRadiusStep          float64
	gatherStepCount           int
	media                     bool
}

// NewStore creates an empty photon store
func NewStore() *Store {
	return &Store{
		blocks:                    make([]*block, 0, initialBaseSize),
		minGatherRadiusMultiplier: 1.0,
	}
}

// Len returns the number of stored photons
func (s *Store) Len() int {
	return s.numPhotons
}

// NumBlocks returns the number of allocated blocks
func (s *Store) NumBlocks() int {
	return len(s.blocks)
}

// Built reports whether BuildTree has run on this store
func (s *Store) Built() bool {
	return s.built
}

// Allocate returns the handle of a new zeroed record, adding a block when
// the last one is full. Previously returned handles stay valid.
func (s *Store) Allocate() Handle {
	h := Handle(s.numPhotons)
	if s.numPhotons>>BlockPower >= len(s.blocks) {
		s.blocks = append(s.blocks, new(block))
	}
	s.numPhotons++
	s.built = false
	return h
}

// Add stores a photon and returns its handle
func (s *Store) Add(point, color, dir core.Vec3) Handle {
	h := s.Allocate()
	*s.At(h) = NewRecord(point, color, dir)
	return h
}

// At returns the record for a handle. The pointer stays valid until the
// store is merged into another store.
func (s *Store) At(h Handle) *Record {
	return &s.blocks[h>>BlockPower][h&BlockMask]
}

// ForEach calls fn for every photon in flat index order
func (s *Store) ForEach(fn func(h Handle, r *Record)) {
	for i := 0; i < s.numPhotons; i++ {
		fn(Handle(i), s.At(Handle(i)))
	}
}

// swap exchanges two full records, info byte included
func (s *Store) swap(i, j int) {
	a, b := s.At(Handle(i)), s.At(Handle(j))
	*a, *b = *b, *a
}

// Merge moves all of other's photons into s and empties other.
// Whole blocks change owner; at most one block worth of records is copied
// to bring s back to a block boundary first. Records already in s keep
// their handles.
func (s *Store) Merge(other *Store) {
	if other == nil || other == s || other.numPhotons == 0 {
		return
	}

	// Fill our partial last block from the end of other
	if tail := s.numPhotons & BlockMask; tail != 0 {
		take := min(BlockSize-tail, other.numPhotons)
		for i := other.numPhotons - take; i < other.numPhotons; i++ {
			*s.At(s.Allocate()) = *other.At(Handle(i))
		}
		other.numPhotons -= take
	}

	// s is now block aligned (or other is exhausted): transfer the rest wholesale
	if other.numPhotons > 0 {
		used := (other.numPhotons + BlockMask) >> BlockPower
		s.blocks = append(s.blocks, other.blocks[:used]...)
		s.numPhotons += other.numPhotons
	}
	s.built = false

	other.reset()
}

// reset drops all photons and blocks
func (s *Store) reset() {
	s.blocks = make([]*block, 0, initialBaseSize)
	s.numPhotons = 0
	s.built = false
}

// Bounds returns the bounding box of all photon positions
func (s *Store) Bounds() core.AABB {
	if s.numPhotons == 0 {
		return core.AABB{}
	}
	box := core.NewAABBFromPoints(s.At(0).Position())
	for i := 1; i < s.numPhotons; i++ {
		p := s.At(Handle(i)).Position()
		box = box.Union(core.NewAABB(p, p))
	}
	return box
}

// GatherOptions returns the adaptive gather parameters of this store
func (s *Store) GatherOptions() (minRadius, radiusStep float64, steps int) {
	return s.minGatherRadius, s.gatherRadiusStep, s.gatherStepCount
}

// IsMedia reports whether the gather options were derived for a media map
func (s *Store) IsMedia() bool {
	return s.media
}
