package circlegraph

import (
	"errors"
	"fmt"
	"math"

	"tangent-planner/internal/geometry"
	"tangent-planner/internal/graph"
)

// ErrNonFinite is returned when an input coordinate or radius is NaN or infinite
var ErrNonFinite = errors.New("non-finite input")

// Result is the output of one generation pass. It is owned by the Generator
// and overwritten by the next call to Generate.
type Result struct {
	Graph *Graph

	// Circles are the Minkowski-expanded obstacles; circle ids index this slice
	Circles []geometry.Circle

	// SurfingEdges holds the unoccluded tangents per circle pair (or per free
	// point and circle); Pairs lists their keys in generation order
	SurfingEdges map[PairKey][]Edge
	Pairs        []PairKey

	// HuggingEdges and PointsOnCircle are keyed by circle id. Points are
	// sorted counter-clockwise around the circle.
	HuggingEdges   map[int][]Edge
	PointsOnCircle map[int][]geometry.Point

	Start, Goal geometry.Point
	Stats       Stats

	index *CircleIndex
}

// Blocked reports whether the segment from a to b is cut by any circle
func (r *Result) Blocked(a, b geometry.Point) bool {
	return r.index.Blocked(geometry.LineSegment{P1: a, P2: b})
}

// Nearest returns the circle node closest to p
func (r *Result) Nearest(p geometry.Point) (*Node, error) {
	return r.Graph.Closest(p, geometry.Point.Distance, func(n *Node) bool {
		_, owned := n.Tag.Owner()
		return !owned
	})
}

// Generator builds the visibility graph for one actor. The graph and the
// diagnostic maps are cleared and refilled on every call.
type Generator struct {
	opts   Options
	actor  geometry.Actor
	graph  *Graph
	result Result
}

// NewGenerator creates a generator whose graph merges points closer than
// nodeTolerance into one node
func NewGenerator(actor geometry.Actor, opts Options, nodeTolerance float64) *Generator {
	g := &Generator{
		opts:  opts,
		actor: actor,
		graph: graph.New[geometry.Point, ArcInfo](func(a, b geometry.Point) bool {
			return a.AlmostEqual(b, nodeTolerance)
		}),
	}
	g.result = Result{
		Graph:          g.graph,
		SurfingEdges:   make(map[PairKey][]Edge),
		HuggingEdges:   make(map[int][]Edge),
		PointsOnCircle: make(map[int][]geometry.Point),
	}
	return g
}

// Graph returns the graph refilled by every Generate call
func (g *Generator) Graph() *Graph {
	return g.graph
}

func (g *Generator) Actor() geometry.Actor {
	return g.actor
}

func (g *Generator) SetActor(a geometry.Actor) {
	g.actor = a
}

// Generate rebuilds the graph for obstacles, start and goal
func (g *Generator) Generate(obstacles []geometry.Circle, start, goal geometry.Point) (*Result, error) {
	if !start.IsFinite() || !goal.IsFinite() {
		return nil, fmt.Errorf("start %v, goal %v: %w", start, goal, ErrNonFinite)
	}

	expanded := make([]geometry.Circle, 0, len(obstacles))
	for i, c := range obstacles {
		if !c.Center.IsFinite() || math.IsNaN(c.Radius) || math.IsInf(c.Radius, 0) {
			return nil, fmt.Errorf("obstacle %d: %w", i, ErrNonFinite)
		}
		c = g.actor.Expand(c) // Minkowski expansion by actor radius
		if c.Radius > 0 {
			expanded = append(expanded, c)
		}
	}

	r := &g.result
	r.Circles = removeContainedCircles(expanded)
	r.Start, r.Goal = start, goal
	r.index = NewCircleIndex(r.Circles)
	r.Stats = Stats{Circles: len(r.Circles)}
	clear(r.SurfingEdges)
	clear(r.HuggingEdges)
	clear(r.PointsOnCircle)
	r.Pairs = r.Pairs[:0]

	g.surfingEdges(r)
	g.pointEdges(r, start, StartKey)
	g.pointEdges(r, goal, GoalKey)
	g.huggingEdges(r)
	g.buildGraph(r)

	r.Stats.Nodes = g.graph.Len()
	for _, n := range g.graph.Nodes() {
		r.Stats.Links += n.Degree()
	}
	return r, nil
}

// Generate is a one-shot helper running a fresh Generator
func Generate(actor geometry.Actor, opts Options, nodeTolerance float64, obstacles []geometry.Circle, start, goal geometry.Point) (*Result, error) {
	return NewGenerator(actor, opts, nodeTolerance).Generate(obstacles, start, goal)
}

func (g *Generator) addSurfing(r *Result, key PairKey, edges []Edge) {
	if len(edges) == 0 {
		return
	}
	r.SurfingEdges[key] = edges
	r.Pairs = append(r.Pairs, key)
	r.Stats.SurfingEdges += len(edges)
}

// throwOut removes the edges cut by any circle other than the skipped ones
func (g *Generator) throwOut(r *Result, edges []Edge, skip ...int) []Edge {
	kept := edges[:0]
	for _, e := range edges {
		if r.index.Blocked(geometry.LineSegment{P1: e.A, P2: e.B}, skip...) {
			r.Stats.OccludedEdges++
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

func (g *Generator) surfingEdges(r *Result) {
	for i := 0; i < len(r.Circles); i++ {
		for j := i + 1; j < len(r.Circles); j++ {
			r.Stats.Pairs++
			candidates := bitangents(r.Circles[i], r.Circles[j], i, j)
			r.Stats.CandidateEdges += len(candidates)
			g.addSurfing(r, Pair(i, j), g.throwOut(r, candidates, i, j))
		}
	}
}

// pointEdges adds the tangents from a free point to every circle
func (g *Generator) pointEdges(r *Result, p geometry.Point, key int) {
	for i, c := range r.Circles {
		candidates := pointTangents(p, c, i)
		r.Stats.CandidateEdges += len(candidates)
		g.addSurfing(r, Pair(key, i), g.throwOut(r, candidates, i))
	}
}

func (g *Generator) huggingEdges(r *Result) {
	for _, key := range r.Pairs {
		for _, e := range r.SurfingEdges[key] {
			if id, ok := e.OwnerA.Owner(); ok {
				r.PointsOnCircle[id] = append(r.PointsOnCircle[id], e.A)
			}
			if id, ok := e.OwnerB.Owner(); ok {
				r.PointsOnCircle[id] = append(r.PointsOnCircle[id], e.B)
			}
		}
	}

	for id, c := range r.Circles {
		points, ok := r.PointsOnCircle[id]
		if !ok {
			continue
		}
		geometry.SortAround(c.Center, points)

		edges := huggingEdges(points, c, id, g.opts.ArcSamplesPerUnit)
		if g.opts.HuggingOcclusion {
			kept := edges[:0]
			for _, e := range edges {
				if !arcBlocked(e.Arc, r.index) {
					kept = append(kept, e)
				}
			}
			edges = kept
		}
		if len(edges) > 0 {
			r.HuggingEdges[id] = edges
			r.Stats.HuggingEdges += len(edges)
		}
	}
}

func (g *Generator) buildGraph(r *Result) {
	g.graph.Clear()
	tolerance := g.opts.DistanceTolerance

	for _, key := range r.Pairs {
		for _, e := range r.SurfingEdges[key] {
			length := e.Length()
			if length <= tolerance {
				continue
			}
			a := g.graph.AddNode(e.A, e.OwnerA)
			b := g.graph.AddNode(e.B, e.OwnerB)
			g.graph.ConnectNodes(a, b, length, nil)
		}
	}

	for id, c := range r.Circles {
		for _, e := range r.HuggingEdges[id] {
			if e.Length() <= tolerance {
				continue
			}
			g.graph.Connect(e.A, e.B, e.Arc.ArcLength(c.Radius), e.Arc)
		}
	}

	g.addStartAndGoal(r)
}

func (g *Generator) addStartAndGoal(r *Result) {
	startNode := g.graph.AddNode(r.Start, graph.Untagged())
	goalNode := g.graph.AddNode(r.Goal, graph.Untagged())

	for _, n := range g.graph.Nodes() {
		if n == startNode || n == goalNode {
			continue
		}
		if g.canConnect(r, startNode.Content, n) {
			g.graph.ConnectNodes(n, startNode, n.Content.Distance(startNode.Content), nil)
		}
		if g.canConnect(r, goalNode.Content, n) {
			g.graph.ConnectNodes(n, goalNode, n.Content.Distance(goalNode.Content), nil)
		}
	}

	if startNode != goalNode && !r.Blocked(startNode.Content, goalNode.Content) {
		g.graph.ConnectNodes(startNode, goalNode, startNode.Content.Distance(goalNode.Content), nil)
	}
}

// canConnect tests the line of sight from p to node. Circle nodes are first
// pushed away from their own circle so its boundary does not hide them.
func (g *Generator) canConnect(r *Result, p geometry.Point, n *Node) bool {
	target := n.Content
	if id, ok := n.Tag.Owner(); ok && id >= 0 && id < len(r.Circles) {
		shift := n.Content.Sub(r.Circles[id].Center)
		target = n.Content.Add(shift.Scale(g.opts.ConnectShift))
	}
	return !r.Blocked(p, target)
}
