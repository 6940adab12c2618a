// Package graph is an undirected weighted graph whose nodes are identified by
// content equality rather than by reference. The same content derived twice
// (for example a tangent point reached from two circle pairs) collapses into
// one node.
package graph

import (
	"errors"
	"math"
)

// DefaultCostTolerance is how close two edge costs must be for a second
// edge to the same neighbor to count as a duplicate
const DefaultCostTolerance = 0.05

// ErrEmptyGraph is returned by queries that need at least one node
var ErrEmptyGraph = errors.New("graph has no nodes")

// Tag is an optional owner reference carried by a node, e.g. the circle a
// tangent point lies on. The zero Tag is untagged.
type Tag struct {
	id  int
	set bool
}

// Untagged returns the empty tag
func Untagged() Tag {
	return Tag{}
}

// Owned returns a tag referencing id
func Owned(id int) Tag {
	return Tag{id: id, set: true}
}

// Owner returns the referenced id and whether the tag is set
func (t Tag) Owner() (int, bool) {
	return t.id, t.set
}

// Link is one direction of an edge. Info is nil for plain edges.
type Link[T comparable, E any] struct {
	To   *Node[T, E]
	Cost float64
	Info *E
}

// Node represents a vertex of the graph
type Node[T comparable, E any] struct {
	Content T
	Tag     Tag
	links   []Link[T, E]
}

// Links returns the node's outgoing links. The slice must not be modified.
func (n *Node[T, E]) Links() []Link[T, E] {
	return n.links
}

func (n *Node[T, E]) Degree() int {
	return len(n.links)
}

// LinkTo returns the first link from n to other
func (n *Node[T, E]) LinkTo(other *Node[T, E]) (*Link[T, E], bool) {
	for i := range n.links {
		if n.links[i].To == other {
			return &n.links[i], true
		}
	}
	return nil, false
}

// Graph represents an undirected graph for pathfinding
type Graph[T comparable, E any] struct {
	nodes         []*Node[T, E]
	equal         func(a, b T) bool
	CostTolerance float64
}

// New creates an empty graph. A nil equal falls back to ==.
func New[T comparable, E any](equal func(a, b T) bool) *Graph[T, E] {
	g := &Graph[T, E]{CostTolerance: DefaultCostTolerance}
	g.SetEqual(equal)
	return g
}

// SetEqual replaces the content comparator
func (g *Graph[T, E]) SetEqual(equal func(a, b T) bool) {
	if equal == nil {
		equal = func(a, b T) bool { return a == b }
	}
	g.equal = equal
}

// Len returns the number of nodes
func (g *Graph[T, E]) Len() int {
	return len(g.nodes)
}

// Nodes returns the nodes in insertion order. The slice must not be modified.
func (g *Graph[T, E]) Nodes() []*Node[T, E] {
	return g.nodes
}

// Clear drops every node but keeps the backing storage for reuse
func (g *Graph[T, E]) Clear() {
	for i := range g.nodes {
		g.nodes[i] = nil
	}
	g.nodes = g.nodes[:0]
}

// FindNode returns the node whose content equals content
func (g *Graph[T, E]) FindNode(content T) (*Node[T, E], bool) {
	for _, n := range g.nodes {
		if g.equal(n.Content, content) {
			return n, true
		}
	}
	return nil, false
}

// AddNode inserts a node for content unless an equal one already exists, in
// which case the existing node is returned and tag is ignored
func (g *Graph[T, E]) AddNode(content T, tag Tag) *Node[T, E] {
	if n, ok := g.FindNode(content); ok {
		return n
	}
	n := &Node[T, E]{Content: content, Tag: tag}
	g.nodes = append(g.nodes, n)
	return n
}

// RemoveNode deletes the node equal to content together with every link to it
func (g *Graph[T, E]) RemoveNode(content T) bool {
	target, ok := g.FindNode(content)
	if !ok {
		return false
	}
	kept := g.nodes[:0]
	for _, n := range g.nodes {
		if n == target {
			continue
		}
		links := n.links[:0]
		for _, l := range n.links {
			if l.To != target {
				links = append(links, l)
			}
		}
		n.links = links
		kept = append(kept, n)
	}
	g.nodes = kept
	return true
}

// Connect links the nodes equal to a and b in both directions. It reports
// false when either node is missing. An existing link to the same neighbor
// with a cost within CostTolerance is not added again.
func (g *Graph[T, E]) Connect(a, b T, cost float64, info *E) bool {
	na, ok := g.FindNode(a)
	if !ok {
		return false
	}
	nb, ok := g.FindNode(b)
	if !ok {
		return false
	}
	g.ConnectNodes(na, nb, cost, info)
	return true
}

// ConnectNodes links two nodes already in the graph
func (g *Graph[T, E]) ConnectNodes(a, b *Node[T, E], cost float64, info *E) {
	if a == b {
		return
	}
	if !g.hasLink(a, b, cost) {
		a.links = append(a.links, Link[T, E]{To: b, Cost: cost, Info: info})
	}
	if !g.hasLink(b, a, cost) {
		b.links = append(b.links, Link[T, E]{To: a, Cost: cost, Info: info})
	}
}

func (g *Graph[T, E]) hasLink(from, to *Node[T, E], cost float64) bool {
	for _, l := range from.links {
		if g.equal(l.To.Content, to.Content) && math.Abs(l.Cost-cost) <= g.CostTolerance {
			return true
		}
	}
	return false
}

// CleanupDisconnectedNodes removes every node without links and returns how
// many were removed
func (g *Graph[T, E]) CleanupDisconnectedNodes() int {
	kept := g.nodes[:0]
	for _, n := range g.nodes {
		if len(n.links) > 0 {
			kept = append(kept, n)
		}
	}
	removed := len(g.nodes) - len(kept)
	for i := len(kept); i < len(g.nodes); i++ {
		g.nodes[i] = nil
	}
	g.nodes = kept
	return removed
}

// Neighbors returns the nodes adjacent to n
func (g *Graph[T, E]) Neighbors(n *Node[T, E]) []*Node[T, E] {
	neighbors := make([]*Node[T, E], 0, len(n.links))
	for _, l := range n.links {
		neighbors = append(neighbors, l.To)
	}
	return neighbors
}

// Cost returns the cost of the cheapest link from a to b
func (g *Graph[T, E]) Cost(a, b *Node[T, E]) (float64, bool) {
	best, found := math.Inf(1), false
	for _, l := range a.links {
		if l.To == b && l.Cost < best {
			best, found = l.Cost, true
		}
	}
	return best, found
}

// Closest finds the node nearest to place according to dist. Nodes for
// which ignore returns true are skipped; ignore may be nil.
func (g *Graph[T, E]) Closest(place T, dist func(a, b T) float64, ignore func(*Node[T, E]) bool) (*Node[T, E], error) {
	var closest *Node[T, E]
	best := math.Inf(1)
	for _, n := range g.nodes {
		if ignore != nil && ignore(n) {
			continue
		}
		if d := dist(place, n.Content); closest == nil || d < best {
			closest, best = n, d
		}
	}
	if closest == nil {
		return nil, ErrEmptyGraph
	}
	return closest, nil
}

// Edge is an undirected edge as reported by Edges
type Edge[T comparable, E any] struct {
	From, To *Node[T, E]
	Cost     float64
	Info     *E
}

// Edges returns every undirected edge once, in node insertion order
func (g *Graph[T, E]) Edges() []Edge[T, E] {
	index := make(map[*Node[T, E]]int, len(g.nodes))
	for i, n := range g.nodes {
		index[n] = i
	}
	var edges []Edge[T, E]
	for i, n := range g.nodes {
		for _, l := range n.links {
			j, ok := index[l.To]
			if !ok || j < i {
				continue
			}
			edges = append(edges, Edge[T, E]{From: n, To: l.To, Cost: l.Cost, Info: l.Info})
		}
	}
	return edges
}
