package astar

import "fmt"

// NoSuchNodeError is returned when a start or goal point has no node in the graph
type NoSuchNodeError struct {
	Role  string
	Point any
}

func (e *NoSuchNodeError) Error() string {
	return fmt.Sprintf("astar: there is no %s node [%v] in the graph", e.Role, e.Point)
}

// IncompletePathError is returned when the goal was not reached. Reached is
// the number of nodes walked back from the goal before the trail ran out.
type IncompletePathError struct {
	Reached int
}

func (e *IncompletePathError) Error() string {
	return fmt.Sprintf("astar: incomplete path, goal wasn't reached. On node [%d]", e.Reached)
}

// PathTooShortError is returned when the path has fewer than two nodes,
// i.e. start and goal are the same node
type PathTooShortError struct {
	Length int
}

func (e *PathTooShortError) Error() string {
	return fmt.Sprintf("astar: too small path, path contains %d node(s), less than 2", e.Length)
}
