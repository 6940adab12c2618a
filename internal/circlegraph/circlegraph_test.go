package circlegraph

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tangent-planner/internal/astar"
	"tangent-planner/internal/geometry"
)

func circle(x, y, r float64) geometry.Circle {
	return geometry.NewCircle(r, geometry.Pt(x, y), nil)
}

func testActor(t *testing.T, radius float64) geometry.Actor {
	t.Helper()
	a, err := geometry.NewActor(radius)
	require.NoError(t, err)
	return a
}

func TestBitangentsTouchBothCircles(t *testing.T) {
	tests := []struct {
		name   string
		c1, c2 geometry.Circle
		want   int
	}{
		{"separate", circle(0, 0, 1), circle(5, 0, 2), 4},
		{"overlapping", circle(0, 0, 2), circle(3, 0, 2), 2},
		{"nested", circle(0, 0, 5), circle(1, 0, 1), 0},
		{"diagonal", circle(-2, 3, 0.5), circle(4, -1, 1.5), 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edges := bitangents(tt.c1, tt.c2, 0, 1)
			require.Len(t, edges, tt.want)

			for _, e := range edges {
				assert.InDelta(t, tt.c1.Radius, e.A.Distance(tt.c1.Center), 1e-9)
				assert.InDelta(t, tt.c2.Radius, e.B.Distance(tt.c2.Center), 1e-9)

				dir := e.B.Sub(e.A).Normalized()
				assert.InDelta(t, 0, dir.Dot(e.A.Sub(tt.c1.Center).Normalized()), 1e-9)
				assert.InDelta(t, 0, dir.Dot(e.B.Sub(tt.c2.Center).Normalized()), 1e-9)

				id, ok := e.OwnerA.Owner()
				assert.True(t, ok)
				assert.Equal(t, 0, id)
				id, ok = e.OwnerB.Owner()
				assert.True(t, ok)
				assert.Equal(t, 1, id)
			}
		})
	}
}

func TestPointTangents(t *testing.T) {
	c := circle(0, 0, 1)
	p := geometry.Pt(3, 0)

	edges := pointTangents(p, c, 4)
	require.Len(t, edges, 2)
	for _, e := range edges {
		assert.Equal(t, p, e.A)
		assert.InDelta(t, 1, e.B.Distance(c.Center), 1e-9)
		assert.InDelta(t, 0, e.B.Sub(p).Dot(e.B.Sub(c.Center)), 1e-9)
		assert.InDelta(t, math.Sqrt(8), e.Length(), 1e-9)

		_, ok := e.OwnerA.Owner()
		assert.False(t, ok)
		id, ok := e.OwnerB.Owner()
		assert.True(t, ok)
		assert.Equal(t, 4, id)
	}

	assert.Empty(t, pointTangents(geometry.Pt(0.5, 0), c, 0))
	assert.Empty(t, pointTangents(geometry.Pt(1, 0), c, 0))
}

func TestHuggingEdgesSweepFullCircle(t *testing.T) {
	c := circle(0, 0, 1)

	t.Run("four points", func(t *testing.T) {
		points := []geometry.Point{
			geometry.Pt(1, 0), geometry.Pt(0, 1), geometry.Pt(-1, 0), geometry.Pt(0, -1),
		}
		edges := huggingEdges(points, c, 0, 3)
		require.Len(t, edges, 4)

		total := 0.0
		for _, e := range edges {
			assert.InDelta(t, math.Pi/2, e.Arc.SweepAngle, 1e-9)
			assert.NotEmpty(t, e.Arc.Points)
			for _, p := range e.Arc.Points {
				assert.InDelta(t, 1, p.Distance(c.Center), 1e-9)
			}
			total += e.Arc.SweepAngle
		}
		assert.InDelta(t, 2*math.Pi, total, 1e-9)
		assert.Equal(t, points[0], edges[3].B, "last edge wraps to the first point")
	})

	t.Run("two points", func(t *testing.T) {
		edges := huggingEdges([]geometry.Point{geometry.Pt(1, 0), geometry.Pt(0, 1)}, c, 0, 3)
		require.Len(t, edges, 2)
		assert.InDelta(t, math.Pi/2, edges[0].Arc.SweepAngle, 1e-9)
		assert.InDelta(t, 3*math.Pi/2, edges[1].Arc.SweepAngle, 1e-9)

		// the long way round stays counter-clockwise from (0,1) through (-1,0)
		first := edges[1].Arc.Points[0]
		assert.Less(t, first.X, 0.0)
		assert.Equal(t, int(math.Ceil(3*math.Pi/2*3)), len(edges[1].Arc.Points))
	})

	t.Run("single point", func(t *testing.T) {
		assert.Empty(t, huggingEdges([]geometry.Point{geometry.Pt(1, 0)}, c, 0, 3))
	})
}

func TestRemoveContainedCircles(t *testing.T) {
	got := removeContainedCircles([]geometry.Circle{
		circle(0, 0, 5),
		circle(1, 0, 1),
		circle(0, 0, 5),
		circle(10, 0, 1),
	})
	require.Len(t, got, 2)
	assert.Equal(t, 5.0, got[0].Radius)
	assert.Equal(t, geometry.Pt(10, 0), got[1].Center)
}

func TestColinearCirclesOcclude(t *testing.T) {
	obstacles := []geometry.Circle{circle(-5, 0, 1), circle(0, 0, 1), circle(5, 0, 1)}
	res, err := Generate(testActor(t, 0.01), DefaultOptions(), 0.05, obstacles,
		geometry.Pt(-5, 5), geometry.Pt(5, 5))
	require.NoError(t, err)

	_, ok := res.SurfingEdges[Pair(0, 2)]
	assert.False(t, ok, "the middle circle hides every tangent between the outer two")
	assert.Len(t, res.SurfingEdges[Pair(0, 1)], 4)
	assert.Len(t, res.SurfingEdges[Pair(1, 2)], 4)
	assert.Equal(t, 3, res.Stats.Pairs)
	assert.GreaterOrEqual(t, res.Stats.OccludedEdges, 4)
}

func TestGraphIsSymmetric(t *testing.T) {
	obstacles := []geometry.Circle{circle(0, 0, 1), circle(4, 1, 1.5), circle(-3, 3, 0.7)}
	res, err := Generate(testActor(t, 0.2), DefaultOptions(), 0.05, obstacles,
		geometry.Pt(-6, -2), geometry.Pt(8, 4))
	require.NoError(t, err)
	require.NotZero(t, res.Graph.Len())

	for _, n := range res.Graph.Nodes() {
		for _, l := range n.Links() {
			found := false
			for _, back := range l.To.Links() {
				if back.To == n && math.Abs(back.Cost-l.Cost) <= 1e-9 {
					found = true
				}
			}
			assert.True(t, found, "link %v -> %v has no reverse", n.Content, l.To.Content)
		}
	}
}

func TestRouteAroundSingleObstacle(t *testing.T) {
	start, goal := geometry.Pt(-3, 0), geometry.Pt(3, 0)
	res, err := Generate(testActor(t, 0.01), DefaultOptions(), 0.05,
		[]geometry.Circle{circle(0, 0, 1)}, start, goal)
	require.NoError(t, err)
	assert.True(t, res.Blocked(start, goal))

	search := astar.New(res.Graph, astar.Euclidean)
	require.NoError(t, search.SetStart(start))
	require.NoError(t, search.SetGoal(goal))
	require.NoError(t, search.FindPath())

	path, err := search.GetPath()
	require.NoError(t, err)
	assert.Equal(t, start, path[0].Node.Content)
	assert.Equal(t, goal, path[len(path)-1].Node.Content)

	r := 1.01
	want := 2*math.Sqrt(9-r*r) + r*(math.Pi-2*math.Acos(r/3))
	assert.InDelta(t, want, astar.PathCost(path), 1e-6)
	assert.Greater(t, astar.PathCost(path), 6.0)
	assert.Less(t, astar.PathCost(path), 6+2*math.Pi)

	hugged := false
	for _, step := range path[1:] {
		if step.Link.Info != nil {
			hugged = true
		}
	}
	assert.True(t, hugged, "the route should hug the obstacle")

	t.Run("nearest", func(t *testing.T) {
		n, err := res.Nearest(geometry.Pt(0, 5))
		require.NoError(t, err)
		id, ok := n.Tag.Owner()
		assert.True(t, ok)
		assert.Equal(t, 0, id)
		assert.InDelta(t, r, n.Content.Distance(geometry.Pt(0, 0)), 1e-9)
		assert.Greater(t, n.Content.Y, 0.0)
	})

	t.Run("expanded", func(t *testing.T) {
		before := make([]geometry.Point, len(path))
		for i, s := range path {
			before[i] = s.Node.Content
		}

		waypoints := Expander{Length: 0.1}.Expand(path, res.Circles)
		require.Len(t, waypoints, len(path))
		assert.Equal(t, start, waypoints[0].Point)
		assert.Equal(t, goal, waypoints[len(waypoints)-1].Point)

		for i, wp := range waypoints {
			assert.Equal(t, before[i], path[i].Node.Content, "graph nodes must not move")
			if _, ok := wp.Owner.Owner(); ok {
				assert.InDelta(t, r+0.1, wp.Point.Distance(geometry.Pt(0, 0)), 1e-9)
			}
			if wp.Arc != nil {
				assert.NotSame(t, path[i].Link.Info, wp.Arc)
				for _, p := range wp.Arc.Points {
					assert.InDelta(t, r+0.1, p.Distance(geometry.Pt(0, 0)), 1e-9)
				}
			}
		}

		line := Polyline(waypoints)
		assert.Greater(t, len(line), len(waypoints))
		for _, p := range line {
			assert.Greater(t, p.Distance(geometry.Pt(0, 0)), r)
		}
		assert.Greater(t, Length(waypoints), want)
	})

	t.Run("geojson", func(t *testing.T) {
		fc := res.FeatureCollection()
		kinds := map[string]int{}
		for _, f := range fc.Features {
			kinds[f.Properties.MustString("kind")]++
		}
		surfing, hugging := 0, 0
		for _, e := range res.Graph.Edges() {
			if e.Info == nil {
				surfing++
			} else {
				hugging++
			}
		}
		assert.Equal(t, 1, kinds["obstacle"])
		assert.Equal(t, surfing, kinds["surfing"])
		assert.Equal(t, hugging, kinds["hugging"])
		assert.Equal(t, 4, hugging)

		data, err := json.Marshal(PathFeature(Expander{Length: 0.1}.Expand(path, res.Circles)))
		require.NoError(t, err)
		assert.Contains(t, string(data), `"kind":"path"`)
	})
}

func TestGeneratorReuse(t *testing.T) {
	gen := NewGenerator(testActor(t, 0.5), DefaultOptions(), 0.05)

	res, err := gen.Generate([]geometry.Circle{circle(0, 0, 1)}, geometry.Pt(-4, 0), geometry.Pt(4, 0))
	require.NoError(t, err)
	require.NotEmpty(t, res.Pairs)
	require.NotEmpty(t, res.HuggingEdges)

	res, err = gen.Generate(nil, geometry.Pt(-4, 0), geometry.Pt(4, 0))
	require.NoError(t, err)
	assert.Empty(t, res.Pairs)
	assert.Empty(t, res.SurfingEdges)
	assert.Empty(t, res.HuggingEdges)
	assert.Equal(t, 2, res.Graph.Len())
	assert.Same(t, gen.Graph(), res.Graph)

	start, ok := res.Graph.FindNode(geometry.Pt(-4, 0))
	require.True(t, ok)
	assert.Equal(t, 1, start.Degree())
}

func TestGenerateRejectsNonFinite(t *testing.T) {
	actor := testActor(t, 0.1)

	_, err := Generate(actor, DefaultOptions(), 0.05, nil, geometry.Pt(math.NaN(), 0), geometry.Pt(1, 1))
	assert.True(t, errors.Is(err, ErrNonFinite))

	_, err = Generate(actor, DefaultOptions(), 0.05,
		[]geometry.Circle{circle(0, 0, math.Inf(1))}, geometry.Pt(-2, 0), geometry.Pt(2, 0))
	assert.True(t, errors.Is(err, ErrNonFinite))
}

func TestOrientedArc(t *testing.T) {
	arc := &ArcInfo{Points: []geometry.Point{geometry.Pt(1, 0), geometry.Pt(0, 1), geometry.Pt(-1, 0)}}

	forward := OrientedArc(geometry.Pt(2, 0), arc)
	assert.Equal(t, arc.Points, forward)

	backward := OrientedArc(geometry.Pt(-2, 0), arc)
	assert.Equal(t, []geometry.Point{geometry.Pt(-1, 0), geometry.Pt(0, 1), geometry.Pt(1, 0)}, backward)
	assert.Equal(t, geometry.Pt(1, 0), arc.Points[0], "stored samples are untouched")
}

func TestCircleIndex(t *testing.T) {
	idx := NewCircleIndex([]geometry.Circle{circle(0, 0, 1), circle(5, 5, 1), circle(10, 0, 2)})
	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, []int{0}, idx.QueryRegion(-0.5, -0.5, 0.5, 0.5))
	assert.Equal(t, []int{0, 1, 2}, idx.QueryRegion(-10, -10, 20, 20))

	seg := geometry.LineSegment{P1: geometry.Pt(-3, 0), P2: geometry.Pt(13, 0)}
	assert.True(t, idx.Blocked(seg))
	assert.True(t, idx.Blocked(seg, 0))
	assert.False(t, idx.Blocked(seg, 0, 2))

	assert.Equal(t, []int{1}, idx.Inside(geometry.Pt(5.2, 4.9)))
	assert.Empty(t, idx.Inside(geometry.Pt(3, 3)))
}
