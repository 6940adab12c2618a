package astar

import (
	"fmt"
	"math"

	"tangent-planner/internal/geometry"
)

// Heuristic estimates the remaining cost from candidate to goal
type Heuristic[T any] func(goal, candidate T) float64

// Zero reduces A* to Dijkstra's algorithm
func Zero[T any]() Heuristic[T] {
	return func(T, T) float64 { return 0 }
}

// Euclidean is the straight-line distance between two points
func Euclidean(goal, candidate geometry.Point) float64 {
	return goal.Distance(candidate)
}

// Manhattan is the taxicab distance between two points. It overestimates
// straight-line costs, so paths found with it are not guaranteed shortest.
func Manhattan(goal, candidate geometry.Point) float64 {
	return math.Abs(candidate.X-goal.X) + math.Abs(candidate.Y-goal.Y)
}

// PointHeuristic resolves a heuristic by name: "zero" (or "dijkstra"),
// "euclidean" or "manhattan"
func PointHeuristic(name string) (Heuristic[geometry.Point], error) {
	switch name {
	case "zero", "dijkstra":
		return Zero[geometry.Point](), nil
	case "", "euclidean":
		return Euclidean, nil
	case "manhattan":
		return Manhattan, nil
	}
	return nil, fmt.Errorf("unknown heuristic %q", name)
}
