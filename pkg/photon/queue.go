package photon

import (
	"container/heap"
	"sort"
)

// Neighbor is a gathered photon and its squared distance to the query point
type Neighbor struct {
	Handle Handle
	DistSq float64
}

// neighborHeap is a max-heap on DistSq
type neighborHeap []Neighbor

func (h neighborHeap) Len() int           { return len(h) }
func (h neighborHeap) Less(i, j int) bool { return h[i].DistSq > h[j].DistSq }
func (h neighborHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *neighborHeap) Push(x any) { *h = append(*h, x.(Neighbor)) }

func (h *neighborHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// NeighborQueue keeps the K closest photons offered so far. The farthest
// kept photon sits at the root so it can be evicted in O(log K).
type NeighborQueue struct {
	items    neighborHeap
	capacity int
}

// NewNeighborQueue creates a queue that keeps at most capacity photons
func NewNeighborQueue(capacity int) *NeighborQueue {
	capacity = max(capacity, 1)
	return &NeighborQueue{
		items:    make(neighborHeap, 0, capacity),
		capacity: capacity,
	}
}

// Insert offers a photon. It is kept if the queue has room or if it is
// closer than the current farthest photon, which is then evicted.
func (q *NeighborQueue) Insert(h Handle, distSq float64) bool {
	if len(q.items) < q.capacity {
		heap.Push(&q.items, Neighbor{Handle: h, DistSq: distSq})
		return true
	}
	if distSq >= q.items[0].DistSq {
		return false
	}
	q.items[0] = Neighbor{Handle: h, DistSq: distSq}
	heap.Fix(&q.items, 0)
	return true
}

// Len returns the number of photons held
func (q *NeighborQueue) Len() int { return len(q.items) }

// Cap returns the configured capacity
func (q *NeighborQueue) Cap() int { return q.capacity }

// Full reports whether the queue holds capacity photons
func (q *NeighborQueue) Full() bool { return len(q.items) >= q.capacity }

// MaxDistSq returns the squared distance of the farthest photon held, or 0 if empty
func (q *NeighborQueue) MaxDistSq() float64 {
	if len(q.items) == 0 {
		return 0
	}
	return q.items[0].DistSq
}

// Reset empties the queue, keeping its storage
func (q *NeighborQueue) Reset() {
	q.items = q.items[:0]
}

// Neighbors returns the held photons in heap order. The slice is only
// valid until the next Insert or Reset.
func (q *NeighborQueue) Neighbors() []Neighbor {
	return q.items
}

// Sorted returns a copy of the held photons, nearest first
func (q *NeighborQueue) Sorted() []Neighbor {
	out := make([]Neighbor, len(q.items))
	copy(out, q.items)
	sort.Slice(out, func(i, j int) bool { return out[i].DistSq < out[j].DistSq })
	return out
}
