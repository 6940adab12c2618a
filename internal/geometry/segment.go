package geometry

import "math"

// occlusionSlack keeps segments that exactly graze a circle classified as blocked
const occlusionSlack = 1e-9

// LineSegment represents a line segment between two points
type LineSegment struct {
	P1, P2 Point
}

func (s LineSegment) Length() float64 {
	return s.P1.Distance(s.P2)
}

// ClosestPoint returns the point of the segment nearest to p
func (s LineSegment) ClosestPoint(p Point) Point {
	d := s.P2.Sub(s.P1)
	lenSq := d.LengthSq()
	if lenSq == 0 {
		return s.P1
	}
	u := p.Sub(s.P1).Dot(d) / lenSq
	u = math.Max(0, math.Min(1, u))
	return s.P1.Add(d.Scale(u))
}

// DistanceTo returns the distance from p to the segment
func (s LineSegment) DistanceTo(p Point) float64 {
	return s.ClosestPoint(p).Distance(p)
}

// IsBlockedBy reports whether c cuts the segment: the foot of the circle
// center on the segment lies within the radius
func (s LineSegment) IsBlockedBy(c Circle) bool {
	return s.DistanceTo(c.Center) < c.Radius+occlusionSlack
}

// IsPathClear checks if a straight line path between two points misses every circle
func IsPathClear(p1, p2 Point, circles []Circle) bool {
	seg := LineSegment{P1: p1, P2: p2}
	for _, c := range circles {
		if seg.IsBlockedBy(c) {
			return false
		}
	}
	return true
}
