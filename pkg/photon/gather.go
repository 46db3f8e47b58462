package photon

import (
	"math"

	"github.com/df07/go-photonmap/pkg/core"
)

// GatherLimits bounds a gather and tunes the adaptive radius expansion
type GatherLimits struct {
	MinCount        int     // adaptive search stops expanding once this many photons are found
	MaxCount        int     // capacity of the neighbor queue
	ExpandTolerance float64 // stop expanding when density falls by more than this fraction
	MinExpandCount  int     // density check only applies once this many photons are found
}

// Gatherer performs nearest-neighbor photon searches over a built Store.
// A Gatherer is not safe for concurrent use; create one per goroutine.
type Gatherer struct {
	store  *Store
	queue  *NeighborQueue
	limits GatherLimits

	// per-query state
	point   core.Vec3
	normal  core.Vec3
	flatten float64
	boundSq float64 // fixed radius squared
	innerSq float64 // photons nearer than this were kept by a previous step
}

// NewGatherer creates a gatherer for store
func NewGatherer(store *Store, limits GatherLimits) *Gatherer {
	limits.MaxCount = max(limits.MaxCount, 1)
	return &Gatherer{
		store:  store,
		queue:  NewNeighborQueue(limits.MaxCount),
		limits: limits,
	}
}

// Queue returns the neighbor queue holding the last gather's result
func (g *Gatherer) Queue() *NeighborQueue {
	return g.queue
}

// Gather collects up to MaxCount photons closer than radius to point and
// returns how many were found. With a non-zero flatten factor the search
// volume is squashed along normal, so photons off the surface plane count
// as farther away: distSq + flatten*(normal·d)².
func (g *Gatherer) Gather(point core.Vec3, radius float64, normal core.Vec3, flatten float64) int {
	g.queue.Reset()
	return g.gather(point, radius, normal, flatten, 0)
}

func (g *Gatherer) gather(point core.Vec3, radius float64, normal core.Vec3, flatten float64, innerSq float64) int {
	g.point = point
	g.normal = normal
	g.flatten = flatten
	g.boundSq = radius * radius
	g.innerSq = innerSq

	if g.store.numPhotons > 0 && radius > 0 {
		g.gatherRange(0, g.store.numPhotons-1)
	}
	return g.queue.Len()
}

// currentBoundSq is the squared distance a photon must beat to be kept
func (g *Gatherer) currentBoundSq() float64 {
	if g.queue.Full() {
		return min(g.boundSq, g.queue.MaxDistSq())
	}
	return g.boundSq
}

// gatherRange visits the kd node of [start,end] and the subtrees its
// splitting plane does not rule out
func (g *Gatherer) gatherRange(start, end int) {
	mid := (start + end) >> 1
	h := Handle(mid)
	photon := g.store.At(h)

	dx := float64(photon.Loc[0]) - g.point.X
	dy := float64(photon.Loc[1]) - g.point.Y
	dz := float64(photon.Loc[2]) - g.point.Z
	d := dx*dx + dy*dy + dz*dz
	if g.flatten != 0 {
		disc := g.normal.X*dx + g.normal.Y*dy + g.normal.Z*dz
		d += g.flatten * disc * disc
	}
	if d >= g.innerSq && d < g.currentBoundSq() {
		g.queue.Insert(h, d)
	}

	axis := photon.Axis()
	var delta float64
	switch axis {
	case 0:
		delta = dx
	case 1:
		delta = dy
	default:
		delta = dz
	}

	// delta > 0 means the query point lies below the split value: near side is left
	if delta > 0 {
		if mid-1 >= start {
			g.gatherRange(start, mid-1)
		}
		if end >= mid+1 && delta*delta < g.currentBoundSq() {
			g.gatherRange(mid+1, end)
		}
	} else {
		if end >= mid+1 {
			g.gatherRange(mid+1, end)
		}
		if mid-1 >= start && delta*delta < g.currentBoundSq() {
			g.gatherRange(start, mid-1)
		}
	}
}

// GatherAdaptive searches from the store's minimum gather radius and
// widens the radius by the gather step until MinCount photons are found,
// the queue fills, the density drops past ExpandTolerance, or the step
// count is used up. Photons found at a smaller radius are kept across
// steps; each step only adds the new shell. It returns the search radius
// used, never below the minimum gather radius.
func (g *Gatherer) GatherAdaptive(point, normal core.Vec3, flatten float64) (radius float64, found int) {
	s := g.store
	radius = s.minGatherRadius
	g.queue.Reset()

	innerSq := 0.0
	prevDensity := 0.0
	for step := 0; ; step++ {
		found = g.gather(point, radius, normal, flatten, innerSq)
		if found >= g.limits.MinCount || g.queue.Full() || step >= s.gatherStepCount || s.gatherRadiusStep <= 0 {
			break
		}

		density := g.density(found, radius)
		if step > 0 && found >= g.limits.MinExpandCount && prevDensity > 0 &&
			density < prevDensity*(1-g.limits.ExpandTolerance) {
			break
		}
		prevDensity = density

		innerSq = radius * radius
		radius += s.gatherRadiusStep
	}
	return radius, found
}

// density returns photons per unit area (surface) or volume (media)
func (g *Gatherer) density(n int, radius float64) float64 {
	if radius <= 0 {
		return 0
	}
	if g.store.media {
		return 3.0 * float64(n) / (4.0 * math.Pi * radius * radius * radius)
	}
	return float64(n) / (math.Pi * radius * radius)
}
