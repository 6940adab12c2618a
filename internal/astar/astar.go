// Package astar runs A* over a graph.Graph. A Search keeps its frontier and
// bookkeeping between runs and clears them at the start of every FindPath.
package astar

import (
	"container/heap"

	"tangent-planner/internal/graph"
)

// item represents a node in the A* frontier
type item[T comparable, E any] struct {
	node     *graph.Node[T, E]
	priority float64
	seq      int
	index    int // Index in the heap, -1 once popped
}

// priorityQueue implements heap.Interface for the frontier. Ties on
// priority go to the earlier insertion so results are deterministic.
type priorityQueue[T comparable, E any] []*item[T, E]

func (pq priorityQueue[T, E]) Len() int { return len(pq) }

func (pq priorityQueue[T, E]) Less(i, j int) bool {
	if pq[i].priority == pq[j].priority {
		return pq[i].seq < pq[j].seq
	}
	return pq[i].priority < pq[j].priority
}

func (pq priorityQueue[T, E]) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue[T, E]) Push(x any) {
	it := x.(*item[T, E])
	it.index = len(*pq)
	*pq = append(*pq, it)
}

func (pq *priorityQueue[T, E]) Pop() any {
	old := *pq
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*pq = old[0 : n-1]
	return it
}

// Step is one node of a found path together with the link used to reach it.
// Link is nil for the start node.
type Step[T comparable, E any] struct {
	Node *graph.Node[T, E]
	Link *graph.Link[T, E]
}

type arrival[T comparable, E any] struct {
	from *graph.Node[T, E]
	link *graph.Link[T, E]
}

// Search computes shortest paths on one graph
type Search[T comparable, E any] struct {
	graph     *graph.Graph[T, E]
	heuristic Heuristic[T]

	start, goal *graph.Node[T, E]

	frontier  priorityQueue[T, E]
	open      map[*graph.Node[T, E]]*item[T, E]
	cameFrom  map[*graph.Node[T, E]]arrival[T, E]
	costSoFar map[*graph.Node[T, E]]float64
	seq       int
}

// New creates a search over g. A nil heuristic behaves like Zero.
func New[T comparable, E any](g *graph.Graph[T, E], h Heuristic[T]) *Search[T, E] {
	s := &Search[T, E]{
		graph:     g,
		open:      make(map[*graph.Node[T, E]]*item[T, E]),
		cameFrom:  make(map[*graph.Node[T, E]]arrival[T, E]),
		costSoFar: make(map[*graph.Node[T, E]]float64),
	}
	s.SetHeuristic(h)
	return s
}

func (s *Search[T, E]) SetHeuristic(h Heuristic[T]) {
	if h == nil {
		h = Zero[T]()
	}
	s.heuristic = h
}

// SetStart resolves p to its node in the graph
func (s *Search[T, E]) SetStart(p T) error {
	n, ok := s.graph.FindNode(p)
	if !ok {
		return &NoSuchNodeError{Role: "start", Point: p}
	}
	s.start = n
	return nil
}

// SetGoal resolves p to its node in the graph
func (s *Search[T, E]) SetGoal(p T) error {
	n, ok := s.graph.FindNode(p)
	if !ok {
		return &NoSuchNodeError{Role: "goal", Point: p}
	}
	s.goal = n
	return nil
}

func (s *Search[T, E]) cleanup() {
	s.frontier = s.frontier[:0]
	clear(s.open)
	clear(s.cameFrom)
	clear(s.costSoFar)
	s.seq = 0
	s.graph.CleanupDisconnectedNodes()
}

func (s *Search[T, E]) push(n *graph.Node[T, E], priority float64) {
	if it, ok := s.open[n]; ok && it.index >= 0 {
		it.priority = priority
		heap.Fix(&s.frontier, it.index)
		return
	}
	it := &item[T, E]{node: n, priority: priority, seq: s.seq}
	s.seq++
	heap.Push(&s.frontier, it)
	s.open[n] = it
}

// FindPath explores the graph from start towards goal. Call GetPath to
// read the result.
func (s *Search[T, E]) FindPath() error {
	if s.start == nil {
		return &NoSuchNodeError{Role: "start"}
	}
	if s.goal == nil {
		return &NoSuchNodeError{Role: "goal"}
	}
	s.cleanup()

	s.push(s.start, 0)
	s.costSoFar[s.start] = 0

	for s.frontier.Len() > 0 {
		current := heap.Pop(&s.frontier).(*item[T, E]).node
		if current == s.goal {
			break
		}

		links := current.Links()
		for i := range links {
			link := &links[i]
			next := link.To
			newCost := s.costSoFar[current] + link.Cost
			if old, seen := s.costSoFar[next]; seen && newCost >= old {
				continue
			}
			s.costSoFar[next] = newCost
			s.cameFrom[next] = arrival[T, E]{from: current, link: link}
			s.push(next, newCost+s.heuristic(s.goal.Content, next.Content))
		}
	}
	return nil
}

// GetPath walks back from the goal and returns the path from start to goal
func (s *Search[T, E]) GetPath() ([]Step[T, E], error) {
	if s.start == nil || s.goal == nil {
		return nil, &NoSuchNodeError{Role: "goal"}
	}
	var path []Step[T, E]
	current := Step[T, E]{Node: s.goal}
	for i := 0; current.Node != s.start; i++ {
		prev, ok := s.cameFrom[current.Node]
		if !ok {
			return nil, &IncompletePathError{Reached: i}
		}
		current.Link = prev.link
		path = append(path, current)
		current = Step[T, E]{Node: prev.from}
	}
	path = append(path, current)

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	if len(path) < 2 {
		return nil, &PathTooShortError{Length: len(path)}
	}
	return path, nil
}

// Cost returns the total cost of the path found by the last FindPath
func (s *Search[T, E]) Cost() (float64, bool) {
	c, ok := s.costSoFar[s.goal]
	return c, ok
}

// PathCost sums the link costs along path
func PathCost[T comparable, E any](path []Step[T, E]) float64 {
	total := 0.0
	for _, step := range path {
		if step.Link != nil {
			total += step.Link.Cost
		}
	}
	return total
}
