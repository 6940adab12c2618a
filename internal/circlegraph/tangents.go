package circlegraph

import (
	"math"

	"tangent-planner/internal/geometry"
	"tangent-planner/internal/graph"
)

// tangentAngle returns acos(num/d), or false when d is zero or the cosine
// falls outside [-1, 1] and no tangent exists
func tangentAngle(num, d float64) (float64, bool) {
	if d <= 0 {
		return 0, false
	}
	cos := num / d
	if math.IsNaN(cos) || cos < -1 || cos > 1 {
		return 0, false
	}
	return math.Acos(cos), true
}

// internalBitangents returns the two tangents crossing between c1 and c2
func internalBitangents(c1, c2 geometry.Circle, id1, id2 int) []Edge {
	d := c1.Center.Distance(c2.Center)
	theta, ok := tangentAngle(c1.Radius+c2.Radius, d)
	if !ok {
		return nil
	}

	dir1 := c2.Center.Sub(c1.Center).Normalized().Scale(c1.Radius)
	p1 := dir1.Rotate(theta).Add(c1.Center)
	q1 := dir1.Rotate(-theta).Add(c1.Center)

	dir2 := c1.Center.Sub(c2.Center).Normalized().Scale(c2.Radius)
	p2 := dir2.Rotate(theta).Add(c2.Center)
	q2 := dir2.Rotate(-theta).Add(c2.Center)

	return []Edge{
		{A: q1, B: q2, OwnerA: graph.Owned(id1), OwnerB: graph.Owned(id2)},
		{A: p1, B: p2, OwnerA: graph.Owned(id1), OwnerB: graph.Owned(id2)},
	}
}

// externalBitangents returns the two tangents running along the outside of
// c1 and c2
func externalBitangents(c1, c2 geometry.Circle, id1, id2 int) []Edge {
	d := c1.Center.Distance(c2.Center)
	theta, ok := tangentAngle(c1.Radius-c2.Radius, d)
	if !ok {
		return nil
	}

	dir := c2.Center.Sub(c1.Center).Normalized()
	dir1 := dir.Scale(c1.Radius)
	p1 := dir1.Rotate(theta).Add(c1.Center)
	q1 := dir1.Rotate(-theta).Add(c1.Center)

	dir2 := dir.Scale(c2.Radius)
	p2 := dir2.Rotate(theta).Add(c2.Center)
	q2 := dir2.Rotate(-theta).Add(c2.Center)

	return []Edge{
		{A: q1, B: q2, OwnerA: graph.Owned(id1), OwnerB: graph.Owned(id2)},
		{A: p1, B: p2, OwnerA: graph.Owned(id1), OwnerB: graph.Owned(id2)},
	}
}

// bitangents returns every tangent c1 and c2 share. Overlapping circles
// have no internal tangents and nested circles have none at all.
func bitangents(c1, c2 geometry.Circle, id1, id2 int) []Edge {
	var edges []Edge
	if !c1.Overlaps(c2) {
		edges = append(edges, internalBitangents(c1, c2, id1, id2)...)
	}
	if !c1.Contains(c2) && !c2.Contains(c1) {
		edges = append(edges, externalBitangents(c1, c2, id1, id2)...)
	}
	return edges
}

// pointTangents returns the two segments from p touching c. The free point
// is the A end of each edge. A point inside or on c has none.
func pointTangents(p geometry.Point, c geometry.Circle, id int) []Edge {
	d := p.Distance(c.Center)
	if d <= c.Radius {
		return nil
	}
	alpha, ok := tangentAngle(c.Radius, d)
	if !ok {
		return nil
	}

	dir := p.Sub(c.Center).Normalized().Scale(c.Radius)
	return []Edge{
		{A: p, B: dir.Rotate(-alpha).Add(c.Center), OwnerB: graph.Owned(id)},
		{A: p, B: dir.Rotate(alpha).Add(c.Center), OwnerB: graph.Owned(id)},
	}
}
