package circlegraph

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"

	"tangent-planner/internal/geometry"
)

// queryPad keeps query rectangles non-degenerate for axis-aligned segments
const queryPad = 1e-6

// circleEntry wraps a circle for R-tree storage
type circleEntry struct {
	id   int
	BBox rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (e *circleEntry) Bounds() rtreego.Rect {
	return e.BBox
}

// CircleIndex answers which circles may block a segment
type CircleIndex struct {
	tree    *rtreego.Rtree
	circles []geometry.Circle
}

// NewCircleIndex creates a spatial index over circles, addressed by slice index
func NewCircleIndex(circles []geometry.Circle) *CircleIndex {
	tree := rtreego.NewTree(2, 25, 50) // 2D, min 25, max 50 entries per node

	for i, c := range circles {
		bbox, err := rtreego.NewRect(
			rtreego.Point{c.Center.X - c.Radius, c.Center.Y - c.Radius},
			[]float64{2 * c.Radius, 2 * c.Radius},
		)
		if err == nil {
			tree.Insert(&circleEntry{id: i, BBox: bbox})
		}
	}

	return &CircleIndex{tree: tree, circles: circles}
}

// Len returns the number of indexed circles
func (ci *CircleIndex) Len() int {
	return ci.tree.Size()
}

// QueryRegion returns the ids of circles whose bounding box intersects the
// given box, in ascending order
func (ci *CircleIndex) QueryRegion(minX, minY, maxX, maxY float64) []int {
	bbox, err := rtreego.NewRect(
		rtreego.Point{minX - queryPad, minY - queryPad},
		[]float64{maxX - minX + 2*queryPad, maxY - minY + 2*queryPad},
	)
	if err != nil {
		return nil
	}

	results := ci.tree.SearchIntersect(bbox)
	ids := make([]int, 0, len(results))
	for _, item := range results {
		ids = append(ids, item.(*circleEntry).id)
	}
	sort.Ints(ids)
	return ids
}

// Blocked reports whether any circle other than those in skip cuts seg
func (ci *CircleIndex) Blocked(seg geometry.LineSegment, skip ...int) bool {
	candidates := ci.QueryRegion(
		math.Min(seg.P1.X, seg.P2.X), math.Min(seg.P1.Y, seg.P2.Y),
		math.Max(seg.P1.X, seg.P2.X), math.Max(seg.P1.Y, seg.P2.Y),
	)
outer:
	for _, id := range candidates {
		for _, s := range skip {
			if id == s {
				continue outer
			}
		}
		if seg.IsBlockedBy(ci.circles[id]) {
			return true
		}
	}
	return false
}

// Inside returns the ids of circles strictly containing p
func (ci *CircleIndex) Inside(p geometry.Point) []int {
	var ids []int
	for _, id := range ci.QueryRegion(p.X, p.Y, p.X, p.Y) {
		if ci.circles[id].ContainsPoint(p) {
			ids = append(ids, id)
		}
	}
	return ids
}
