package geometry

import (
	"github.com/df07/go-photonmap/pkg/core"
)

// BVHNode represents a node in the Bounding Volume Hierarchy
type BVHNode struct {
	BoundingBox core.AABB
	Left        *BVHNode
	Right       *BVHNode
	Items       []int // Shape indices for leaf nodes (nil for internal nodes)
}

// BVH is a Bounding Volume Hierarchy over a fixed list of shapes. Hits
// report the index of the shape in that list.
type BVH struct {
	Root   *BVHNode
	shapes []Shape
}

// Leaf threshold: if we have this many or fewer shapes, store them in a leaf node
const leafThreshold = 4

// NewBVH constructs a BVH from a slice of shapes
func NewBVH(shapes []Shape) *BVH {
	bvh := &BVH{shapes: shapes}
	if len(shapes) == 0 {
		return bvh
	}

	items := make([]int, len(shapes))
	for i := range items {
		items[i] = i
	}
	bvh.Root = bvh.build(items)
	return bvh
}

// build recursively splits items at the midpoint of the longest axis
func (bvh *BVH) build(items []int) *BVHNode {
	boundingBox := bvh.shapes[items[0]].BoundingBox()
	for _, i := range items[1:] {
		boundingBox = boundingBox.Union(bvh.shapes[i].BoundingBox())
	}

	leaf := &BVHNode{BoundingBox: boundingBox, Items: items}
	if len(items) <= leafThreshold {
		return leaf
	}

	axis := boundingBox.LongestAxis()
	minVal, maxVal := boundingBox.Min.Axis(axis), boundingBox.Max.Axis(axis)
	if maxVal <= minVal {
		return leaf
	}
	splitPos := (minVal + maxVal) * 0.5

	var left, right []int
	for _, i := range items {
		if bvh.shapes[i].BoundingBox().Center().Axis(axis) < splitPos {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	// Ensure we don't create empty partitions
	if len(left) == 0 || len(right) == 0 {
		return leaf
	}

	return &BVHNode{
		BoundingBox: boundingBox,
		Left:        bvh.build(left),
		Right:       bvh.build(right),
	}
}

// Hit returns the closest intersection in [tMin, tMax] and the index of the shape hit
func (bvh *BVH) Hit(ray core.Ray, tMin, tMax float64) (*HitRecord, int, bool) {
	if bvh.Root == nil {
		return nil, -1, false
	}
	var closest *HitRecord
	index := -1
	bvh.hitNode(bvh.Root, ray, tMin, tMax, &closest, &index)
	return closest, index, closest != nil
}

func (bvh *BVH) hitNode(node *BVHNode, ray core.Ray, tMin, tMax float64, closest **HitRecord, index *int) {
	if *closest != nil {
		tMax = (*closest).T
	}
	if !node.BoundingBox.Hit(ray, tMin, tMax) {
		return
	}

	if node.Items != nil {
		for _, i := range node.Items {
			if hit, ok := bvh.shapes[i].Hit(ray, tMin, tMax); ok {
				*closest = hit
				*index = i
				tMax = hit.T
			}
		}
		return
	}

	bvh.hitNode(node.Left, ray, tMin, tMax, closest, index)
	bvh.hitNode(node.Right, ray, tMin, tMax, closest, index)
}

// BoundingBox returns the overall bounding box of the BVH
func (bvh *BVH) BoundingBox() core.AABB {
	if bvh.Root == nil {
		return core.AABB{}
	}
	return bvh.Root.BoundingBox
}
