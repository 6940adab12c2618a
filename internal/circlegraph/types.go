// Package circlegraph builds the tangent visibility graph over circular
// obstacles: straight surfing edges along bitangents and hugging edges along
// circle boundaries, with the start and goal points wired in.
package circlegraph

import (
	"tangent-planner/internal/astar"
	"tangent-planner/internal/geometry"
	"tangent-planner/internal/graph"
)

// Keys used in place of a circle id for the free start and goal points
const (
	StartKey = -1
	GoalKey  = -2
)

// Graph is the visibility graph: points as content, arcs as edge info
type Graph = graph.Graph[geometry.Point, ArcInfo]

// Node is a vertex of the visibility graph
type Node = graph.Node[geometry.Point, ArcInfo]

// Step is one element of a path found on the visibility graph
type Step = astar.Step[geometry.Point, ArcInfo]

// ArcInfo describes the boundary arc a hugging edge follows. Points are the
// interior samples ordered counter-clockwise from the edge's A end.
type ArcInfo struct {
	SweepAngle float64
	Points     []geometry.Point
	Owner      int
}

// Edge is a candidate surfing or hugging segment. Arc is nil for surfing edges.
type Edge struct {
	A, B           geometry.Point
	OwnerA, OwnerB graph.Tag
	Arc            *ArcInfo
}

func (e Edge) Length() float64 {
	return e.A.Distance(e.B)
}

// Equal compares endpoints regardless of direction
func (e Edge) Equal(other Edge) bool {
	same := func(p, q geometry.Point) bool { return p.AlmostEqual(q, geometry.Epsilon) }
	return same(e.A, other.A) && same(e.B, other.B) || same(e.A, other.B) && same(e.B, other.A)
}

// PairKey identifies an unordered pair of circles (or a free point and a
// circle, using StartKey/GoalKey)
type PairKey struct {
	A, B int
}

// Pair builds the key for i and j in either order
func Pair(i, j int) PairKey {
	if j < i {
		i, j = j, i
	}
	return PairKey{A: i, B: j}
}

// Options tune graph generation
type Options struct {
	// Nodes closer than DistanceTolerance are considered the same node and
	// edges shorter than it are dropped
	DistanceTolerance float64
	// ArcSamplesPerUnit is how many arc samples are taken per unit of arc length
	ArcSamplesPerUnit float64
	// ConnectShift moves a circle node outward by this fraction of its radius
	// before testing start/goal visibility against its own circle
	ConnectShift float64
	// HuggingOcclusion drops hugging edges whose arc enters another circle.
	// Only matters when obstacles overlap.
	HuggingOcclusion bool
}

func DefaultOptions() Options {
	return Options{
		DistanceTolerance: 0.05,
		ArcSamplesPerUnit: 3,
		ConnectShift:      0.1,
	}
}

// Stats counts what a generation pass produced
type Stats struct {
	Circles        int
	Pairs          int
	CandidateEdges int
	OccludedEdges  int
	SurfingEdges   int
	HuggingEdges   int
	Nodes          int
	Links          int
}
