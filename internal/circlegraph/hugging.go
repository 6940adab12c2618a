package circlegraph

import (
	"math"

	"tangent-planner/internal/geometry"
	"tangent-planner/internal/graph"
)

// huggingArc builds the arc info for the counter-clockwise boundary arc of
// c from p1 to p2
func huggingArc(p1, p2 geometry.Point, c geometry.Circle, id int, samplesPerUnit float64) *ArcInfo {
	rel1 := p1.Sub(c.Center)
	rel2 := p2.Sub(c.Center)

	sweep := chordAngle(c.Radius, p1.Distance(p2))
	if rel1.Cross(rel2) < 0 {
		sweep = 2*math.Pi - sweep
	}
	splits := int(math.Ceil(c.ArcLength(sweep) * samplesPerUnit))
	if splits < 1 {
		splits = 1
	}

	points := geometry.SplitArc(rel1, sweep, splits)
	for i := range points {
		points[i] = points[i].Add(c.Center) // move arc points from origin to their original position
	}

	return &ArcInfo{SweepAngle: sweep, Points: points, Owner: id}
}

// chordAngle is the central angle subtending a chord of the given length,
// acos((2r² - chord²) / 2r²). It equals the sweep of arcs up to half a turn.
func chordAngle(radius, chord float64) float64 {
	radSq := 2 * radius * radius
	cos := (radSq - chord*chord) / radSq
	return math.Acos(math.Max(-1, math.Min(1, cos)))
}

// huggingEdges connects angularly consecutive points of one circle, wrapping
// from the last back to the first. points must already be sorted.
func huggingEdges(points []geometry.Point, c geometry.Circle, id int, samplesPerUnit float64) []Edge {
	if len(points) < 2 {
		return nil
	}
	edges := make([]Edge, 0, len(points))
	for i := range points {
		p1 := points[i]
		p2 := points[(i+1)%len(points)]
		edges = append(edges, Edge{
			A:      p1,
			B:      p2,
			OwnerA: graph.Owned(id),
			OwnerB: graph.Owned(id),
			Arc:    huggingArc(p1, p2, c, id, samplesPerUnit),
		})
	}
	return edges
}

// arcBlocked reports whether any sample of arc falls inside a circle other
// than its owner
func arcBlocked(arc *ArcInfo, index *CircleIndex) bool {
	for _, p := range arc.Points {
		for _, id := range index.Inside(p) {
			if id != arc.Owner {
				return true
			}
		}
	}
	return false
}

// ArcLength returns the length of the boundary arc
func (a *ArcInfo) ArcLength(radius float64) float64 {
	return radius * a.SweepAngle
}
