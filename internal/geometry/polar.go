package geometry

import (
	"math"
	"sort"
)

// quadrant orders the four quadrants counter-clockwise starting from (-,-).
// +X and -Y start a quadrant; +Y and -X close one.
func quadrant(p Point) int {
	switch {
	case p.X < 0 && p.Y < 0:
		return 0
	case p.X >= 0 && p.Y < 0:
		return 1
	case p.X >= 0 && p.Y >= 0:
		return 2
	default:
		return 3
	}
}

// ComparePolar orders two vectors by polar angle without atan2. It returns
// -1, 0 or 1. Colinear vectors with the same direction compare by length.
func ComparePolar(a, b Point) int {
	qa, qb := quadrant(a), quadrant(b)
	if qa != qb {
		if qa < qb {
			return -1
		}
		return 1
	}
	switch cross := a.Cross(b); {
	case cross > 0:
		return -1
	case cross < 0:
		return 1
	}
	la, lb := a.LengthSq(), b.LengthSq()
	switch {
	case la < lb:
		return -1
	case la > lb:
		return 1
	}
	return 0
}

// SortAround sorts points counter-clockwise around center in place
func SortAround(center Point, points []Point) {
	sort.SliceStable(points, func(i, j int) bool {
		return ComparePolar(points[i].Sub(center), points[j].Sub(center)) < 0
	})
}

// CCWAngle returns the counter-clockwise angle from a to b in [0, 2π)
func CCWAngle(a, b Point) float64 {
	angle := math.Atan2(a.Cross(b), a.Dot(b))
	if angle < 0 {
		angle += 2 * math.Pi
	}
	return angle
}

// SplitArc returns splits points evenly spread strictly inside the arc that
// starts at a and sweeps counter-clockwise by sweep radians. a is relative to
// the arc center.
func SplitArc(a Point, sweep float64, splits int) []Point {
	points := make([]Point, 0, splits)
	delta := sweep / float64(splits+1)
	for i := 0; i < splits; i++ {
		points = append(points, a.Rotate(delta*float64(i+1)))
	}
	return points
}
