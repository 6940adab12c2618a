package planner

import (
	"tangent-planner/internal/circlegraph"
	"tangent-planner/internal/geometry"
)

// Mode is the movement state of the follower
type Mode int

const (
	// Surfing heads straight for the next waypoint
	Surfing Mode = iota
	// Hugging walks the samples of a boundary arc
	Hugging
)

func (m Mode) String() string {
	if m == Hugging {
		return "hugging"
	}
	return "surfing"
}

// Follower hands out one target per tick along an expanded path
type Follower struct {
	reach float64

	path   []circlegraph.Waypoint
	cursor int

	mode   Mode
	arc    []geometry.Point
	arcIdx int
	// hugged is the waypoint whose arc was walked last, so it is not walked twice
	hugged int
}

func NewFollower(reach float64) *Follower {
	return &Follower{reach: reach, hugged: -1}
}

// Reset starts following path from its second waypoint; the first is where
// the agent stands
func (f *Follower) Reset(path []circlegraph.Waypoint) {
	f.path = path
	f.cursor = 1
	f.mode = Surfing
	f.arc = nil
	f.arcIdx = 0
	f.hugged = -1
}

func (f *Follower) Mode() Mode {
	return f.mode
}

func (f *Follower) Path() []circlegraph.Waypoint {
	return f.path
}

// Done reports whether every waypoint has been reached
func (f *Follower) Done() bool {
	return f.path == nil || f.cursor >= len(f.path)
}

// Next returns the point to head for from position. ok is false once the
// last waypoint has been reached.
func (f *Follower) Next(position geometry.Point) (target geometry.Point, ok bool) {
	if f.mode == Hugging {
		return f.hug(position), true
	}

	for !f.Done() {
		wp := f.path[f.cursor]

		if wp.Arc != nil && len(wp.Arc.Points) > 0 && f.hugged != f.cursor {
			f.hugged = f.cursor
			f.arc = circlegraph.OrientedArc(position, wp.Arc)
			f.arcIdx = 0
			f.mode = Hugging
			return f.hug(position), true
		}

		if position.Distance(wp.Point) >= f.reach {
			return wp.Point, true
		}
		f.cursor++
	}

	if len(f.path) == 0 {
		return position, false
	}
	return f.path[len(f.path)-1].Point, false
}

// hug advances at most one arc sample per call and leaves hugging after the
// last sample
func (f *Follower) hug(position geometry.Point) geometry.Point {
	if position.Distance(f.arc[f.arcIdx]) < f.reach {
		f.arcIdx++
	}
	if f.arcIdx >= len(f.arc) {
		f.arcIdx = len(f.arc) - 1
		f.mode = Surfing
	}
	return f.arc[f.arcIdx]
}

// Deviation is how far position has strayed from the segment currently
// being surfed. It is zero while hugging.
func (f *Follower) Deviation(position geometry.Point) float64 {
	if f.mode == Hugging || f.Done() || f.cursor == 0 {
		return 0
	}
	seg := geometry.LineSegment{P1: f.path[f.cursor-1].Point, P2: f.path[f.cursor].Point}
	return seg.DistanceTo(position)
}
