package circlegraph

import (
	"tangent-planner/internal/geometry"
	"tangent-planner/internal/graph"
)

// Waypoint is one node of a path ready to be followed. Arc is set when the
// waypoint is reached by hugging its circle.
type Waypoint struct {
	Point geometry.Point
	Owner graph.Tag
	Arc   *ArcInfo
}

// Expander pushes path points away from the circles they lie on
type Expander struct {
	// All nodes except start and goal are moved Length away from their circle's center
	Length float64
}

// Expand copies path into waypoints, moving every circle node and every arc
// sample outward by Length. The graph is left untouched. Without the margin
// a small overlap picked up while hugging would put the next start point
// inside the circle it just went around.
func (e Expander) Expand(path []Step, circles []geometry.Circle) []Waypoint {
	waypoints := make([]Waypoint, 0, len(path))
	for _, step := range path {
		wp := Waypoint{Point: step.Node.Content, Owner: step.Node.Tag}
		if id, ok := step.Node.Tag.Owner(); ok && id >= 0 && id < len(circles) {
			wp.Point = e.push(wp.Point, circles[id])
		}

		if step.Link != nil && step.Link.Info != nil {
			arc := step.Link.Info
			expanded := &ArcInfo{
				SweepAngle: arc.SweepAngle,
				Points:     make([]geometry.Point, len(arc.Points)),
				Owner:      arc.Owner,
			}
			copy(expanded.Points, arc.Points)
			if arc.Owner >= 0 && arc.Owner < len(circles) {
				for i, p := range expanded.Points {
					expanded.Points[i] = e.push(p, circles[arc.Owner])
				}
			}
			wp.Arc = expanded
		}
		waypoints = append(waypoints, wp)
	}
	return waypoints
}

func (e Expander) push(p geometry.Point, c geometry.Circle) geometry.Point {
	dir := p.Sub(c.Center).Normalized()
	return p.Add(dir.Scale(e.Length))
}

// OrientedArc returns the arc samples ordered so the walk starts at the end
// nearer to from. The stored samples are never modified.
func OrientedArc(from geometry.Point, arc *ArcInfo) []geometry.Point {
	points := make([]geometry.Point, len(arc.Points))
	copy(points, arc.Points)
	if len(points) > 1 && from.Distance(points[0]) > from.Distance(points[len(points)-1]) {
		for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
			points[i], points[j] = points[j], points[i]
		}
	}
	return points
}

// Polyline flattens waypoints into the points an agent passes, including
// arc samples
func Polyline(path []Waypoint) []geometry.Point {
	var line []geometry.Point
	for i, wp := range path {
		if wp.Arc != nil && i > 0 {
			line = append(line, OrientedArc(path[i-1].Point, wp.Arc)...)
		}
		line = append(line, wp.Point)
	}
	return line
}

// Length returns the length of the flattened path
func Length(path []Waypoint) float64 {
	line := Polyline(path)
	total := 0.0
	for i := 1; i < len(line); i++ {
		total += line[i-1].Distance(line[i])
	}
	return total
}
