package geometry

import (
	"errors"
	"fmt"
	"math"
)

// Epsilon is the tolerance used for circle equality
const Epsilon = 1e-3

// ErrInvalidRadius is returned when an actor is configured with a radius <= 0
var ErrInvalidRadius = errors.New("radius must be greater than zero")

// Circle is an obstacle footprint. Owner is an opaque reference back to
// whatever produced the circle (an obstacle id, an entity) and is never
// inspected by the planner.
type Circle struct {
	Radius float64 `json:"radius"`
	Center Point   `json:"center"`
	Owner  any     `json:"-"`
}

func NewCircle(radius float64, center Point, owner any) Circle {
	return Circle{Radius: radius, Center: center, Owner: owner}
}

// Overlaps reports whether the two discs intersect
func (c Circle) Overlaps(other Circle) bool {
	a := c.Radius + other.Radius
	dx := c.Center.X - other.Center.X
	dy := c.Center.Y - other.Center.Y
	return a*a > dx*dx+dy*dy
}

// Contains reports whether other lies strictly inside c
func (c Circle) Contains(other Circle) bool {
	d := c.Center.Distance(other.Center)
	return c.Radius > d+other.Radius
}

// ContainsPoint reports whether p lies strictly inside c
func (c Circle) ContainsPoint(p Point) bool {
	return c.Center.Distance(p) < c.Radius
}

func (c Circle) Circumference() float64 {
	return 2 * math.Pi * c.Radius
}

// ArcLength returns the length of an arc of c spanning angle radians
func (c Circle) ArcLength(angle float64) float64 {
	return c.Radius * angle
}

// Expand returns a copy of c with its radius grown by by
func (c Circle) Expand(by float64) Circle {
	return Circle{Radius: c.Radius + by, Center: c.Center, Owner: c.Owner}
}

// Equal compares centers and radii within Epsilon. Owners are ignored.
func (c Circle) Equal(other Circle) bool {
	return c.Center.AlmostEqual(other.Center, Epsilon) && math.Abs(c.Radius-other.Radius) < Epsilon
}

// PushOut moves p radially to margin beyond the boundary of c. Points
// already outside c are returned unchanged.
func (c Circle) PushOut(p Point, margin float64) Point {
	if !c.ContainsPoint(p) {
		return p
	}
	dir := p.Sub(c.Center).Normalized()
	if dir == (Point{}) {
		dir = Point{X: 1}
	}
	return c.Center.Add(dir.Scale(c.Radius + margin))
}

func (c Circle) String() string {
	return fmt.Sprintf("Radius: [%.3f], Center: [(%.3f, %.3f)]", c.Radius, c.Center.X, c.Center.Y)
}

// Actor is the extent of the navigating agent
type Actor struct {
	radius float64
}

func NewActor(radius float64) (Actor, error) {
	var a Actor
	if err := a.SetRadius(radius); err != nil {
		return Actor{}, err
	}
	return a, nil
}

func (a Actor) Radius() float64 {
	return a.radius
}

func (a *Actor) SetRadius(radius float64) error {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return fmt.Errorf("actor radius %v: %w", radius, ErrInvalidRadius)
	}
	a.radius = radius
	return nil
}

// Expand applies the Minkowski sum of the actor to c, so the actor can be
// treated as a point against the result
func (a Actor) Expand(c Circle) Circle {
	return c.Expand(a.radius)
}
