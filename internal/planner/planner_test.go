package planner

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tangent-planner/internal/circlegraph"
	"tangent-planner/internal/config"
	"tangent-planner/internal/geometry"
	"tangent-planner/internal/sim"
)

func testConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.ActorRadius = 0.5
	cfg.MaxSpeed = 1
	cfg.TimeStep = 0.1
	return cfg
}

func newPlanner(t *testing.T, cfg config.Config) *Planner {
	t.Helper()
	p, err := New(cfg)
	require.NoError(t, err)
	return p
}

var singleObstacle = []geometry.Circle{geometry.NewCircle(1, geometry.Pt(0, 0), nil)}

func TestFollowerStates(t *testing.T) {
	path := []circlegraph.Waypoint{
		{Point: geometry.Pt(0, 0)},
		{Point: geometry.Pt(1, 0)},
		{Point: geometry.Pt(2, 0), Arc: &circlegraph.ArcInfo{
			Points: []geometry.Point{geometry.Pt(1.3, 0.3), geometry.Pt(1.7, 0.3)},
		}},
		{Point: geometry.Pt(3, 0)},
	}
	f := NewFollower(0.1)
	f.Reset(path)

	steps := []struct {
		position geometry.Point
		target   geometry.Point
		mode     Mode
		ok       bool
	}{
		{geometry.Pt(0, 0), geometry.Pt(1, 0), Surfing, true},
		{geometry.Pt(0.95, 0), geometry.Pt(1.3, 0.3), Hugging, true},
		{geometry.Pt(1.3, 0.3), geometry.Pt(1.7, 0.3), Hugging, true},
		{geometry.Pt(1.7, 0.3), geometry.Pt(1.7, 0.3), Surfing, true},
		{geometry.Pt(1.7, 0.3), geometry.Pt(2, 0), Surfing, true},
		{geometry.Pt(2, 0), geometry.Pt(3, 0), Surfing, true},
		{geometry.Pt(3, 0), geometry.Pt(3, 0), Surfing, false},
	}
	for i, s := range steps {
		target, ok := f.Next(s.position)
		assert.Equal(t, s.target, target, "step %d", i)
		assert.Equal(t, s.mode, f.Mode(), "step %d", i)
		assert.Equal(t, s.ok, ok, "step %d", i)
	}
	assert.True(t, f.Done())
}

func TestFollowerWalksArcFromNearerEnd(t *testing.T) {
	arc := &circlegraph.ArcInfo{Points: []geometry.Point{geometry.Pt(1.3, 0.3), geometry.Pt(1.7, 0.3)}}
	f := NewFollower(0.1)
	f.Reset([]circlegraph.Waypoint{{Point: geometry.Pt(2, 0)}, {Point: geometry.Pt(1, 0), Arc: arc}})

	target, ok := f.Next(geometry.Pt(2, 0))
	require.True(t, ok)
	assert.Equal(t, geometry.Pt(1.7, 0.3), target)
	assert.Equal(t, geometry.Pt(1.3, 0.3), arc.Points[0])
}

func TestFollowerDeviation(t *testing.T) {
	f := NewFollower(0.1)
	assert.Zero(t, f.Deviation(geometry.Pt(5, 5)))

	f.Reset([]circlegraph.Waypoint{{Point: geometry.Pt(0, 0)}, {Point: geometry.Pt(1, 0)}})
	assert.InDelta(t, 0.5, f.Deviation(geometry.Pt(0.5, 0.5)), 1e-12)
	assert.Equal(t, "surfing", f.Mode().String())
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.ActorRadius = 0
	_, err := New(cfg)
	assert.True(t, errors.Is(err, geometry.ErrInvalidRadius))
}

func TestTickWithoutGoalHoldsPosition(t *testing.T) {
	p := newPlanner(t, testConfig())
	pos := geometry.Pt(1, 2)

	target, err := p.Tick(pos, singleObstacle)
	require.NoError(t, err)
	assert.Equal(t, pos, target)
	assert.Nil(t, p.Result())

	assert.Error(t, p.SetGoal(geometry.Pt(math.Inf(1), 0)))
	_, ok := p.Goal()
	assert.False(t, ok)
}

func TestUnreachableGoalIsDropped(t *testing.T) {
	p := newPlanner(t, testConfig())
	require.NoError(t, p.SetGoal(geometry.Pt(0.2, 0)))

	pos := geometry.Pt(-4, 0)
	target, err := p.Tick(pos, singleObstacle)
	require.NoError(t, err)
	assert.Equal(t, pos, target)

	_, ok := p.Goal()
	assert.False(t, ok)
}

func TestPlanningFailureKeepsGoal(t *testing.T) {
	p := newPlanner(t, testConfig())
	require.NoError(t, p.SetGoal(geometry.Pt(4, 0)))

	bad := []geometry.Circle{geometry.NewCircle(math.NaN(), geometry.Pt(0, 0), nil)}
	pos := geometry.Pt(-4, 0)
	target, err := p.Tick(pos, bad)
	require.ErrorIs(t, err, circlegraph.ErrNonFinite)
	assert.Equal(t, pos, target)

	_, ok := p.Goal()
	assert.True(t, ok)

	target, err = p.Tick(pos, singleObstacle)
	require.NoError(t, err)
	assert.NotEqual(t, pos, target)
}

func TestStartInsideObstacleIsPushedOut(t *testing.T) {
	p := newPlanner(t, testConfig())
	require.NoError(t, p.SetGoal(geometry.Pt(4, 0)))

	target, err := p.Tick(geometry.Pt(0.9, 0), singleObstacle)
	require.NoError(t, err)
	require.NotNil(t, p.Result())

	assert.InDelta(t, 1.6, p.Result().Start.X, 1e-9)
	assert.InDelta(t, 0, p.Result().Start.Y, 1e-9)
	assert.Equal(t, geometry.Pt(4, 0), target)
}

func TestArrivalClearsGoal(t *testing.T) {
	p := newPlanner(t, testConfig())
	require.NoError(t, p.SetGoal(geometry.Pt(4, 0)))

	target, err := p.Tick(geometry.Pt(3.95, 0), singleObstacle)
	require.NoError(t, err)
	assert.Equal(t, geometry.Pt(4, 0), target)
	_, ok := p.Goal()
	assert.False(t, ok)
}

func TestDriveAroundObstacle(t *testing.T) {
	tests := []struct {
		name   string
		replan bool
	}{
		{"replan every tick", true},
		{"follow planned path", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.ReplanEveryTick = tt.replan
			p := newPlanner(t, cfg)
			require.NoError(t, p.SetGoal(geometry.Pt(4, 0)))

			d := NewDriver(p, sim.NewKinematic(cfg.MaxSpeed), geometry.Pt(-4, 0))

			hugged := false
			var trace []geometry.Point
			for tick := 0; tick < 400; tick++ {
				if _, ok := p.Goal(); !ok {
					break
				}
				_, err := d.Tick(singleObstacle)
				require.NoError(t, err)
				if p.Mode() == Hugging {
					hugged = true
				}
				d.Sim.Step(cfg.TimeStep)
				trace = append(trace, d.Sim.Position(d.Agent))
			}

			_, ok := p.Goal()
			require.False(t, ok, "goal should be reached")
			assert.Empty(t, p.Path())
			assert.InDelta(t, 4, trace[len(trace)-1].X, 0.11)
			assert.InDelta(t, 0, trace[len(trace)-1].Y, 0.11)

			for _, pos := range trace {
				assert.Greater(t, pos.Distance(geometry.Pt(0, 0)), 1.4)
			}
			if !tt.replan {
				assert.True(t, hugged, "following the planned path walks the arc")
			}
		})
	}
}

func TestGoalChangeWhileHugging(t *testing.T) {
	cfg := testConfig()
	cfg.ReplanEveryTick = false
	p := newPlanner(t, cfg)
	require.NoError(t, p.SetGoal(geometry.Pt(4, 0)))
	d := NewDriver(p, sim.NewKinematic(cfg.MaxSpeed), geometry.Pt(-4, 0))

	for tick := 0; tick < 200 && p.Mode() != Hugging; tick++ {
		_, err := d.Tick(singleObstacle)
		require.NoError(t, err)
		d.Sim.Step(cfg.TimeStep)
	}
	require.Equal(t, Hugging, p.Mode(), "agent should reach the arc")

	back := geometry.Pt(-4, 0)
	require.NoError(t, p.SetGoal(back))
	assert.Equal(t, Surfing, p.Mode())
	assert.Empty(t, p.Path())

	_, err := d.Tick(singleObstacle)
	require.NoError(t, err)
	require.NotNil(t, p.Result())
	assert.Equal(t, back, p.Result().Goal)
	path := p.Path()
	require.NotEmpty(t, path)
	assert.Equal(t, back, path[len(path)-1].Point)

	d.Sim.Step(cfg.TimeStep)
	trace, err := d.Run(singleObstacle, 400)
	require.NoError(t, err)
	assert.InDelta(t, 0, trace[len(trace)-1].Distance(back), 0.11)
}

func TestDriverRun(t *testing.T) {
	cfg := testConfig()
	p := newPlanner(t, cfg)
	require.NoError(t, p.SetGoal(geometry.Pt(0, 4)))

	d := NewDriver(p, sim.NewKinematic(cfg.MaxSpeed), geometry.Pt(0, -4))
	trace, err := d.Run(singleObstacle, 400)
	require.NoError(t, err)
	assert.Greater(t, len(trace), 80)
	assert.InDelta(t, 4, trace[len(trace)-1].Y, 0.11)

	require.NoError(t, p.SetGoal(geometry.Pt(0, -4)))
	_, err = d.Run(singleObstacle, 3)
	assert.Error(t, err)
}

func TestPlanRoute(t *testing.T) {
	cfg := testConfig()
	cfg.ActorRadius = 0.01

	route, err := PlanRoute(cfg, singleObstacle, geometry.Pt(-3, 0), geometry.Pt(3, 0))
	require.NoError(t, err)
	assert.InDelta(t, 6.345, route.Cost, 0.01)
	assert.Greater(t, route.Length(), route.Cost)
	assert.Equal(t, geometry.Pt(-3, 0), route.Polyline()[0])
	assert.NotEmpty(t, route.FeatureCollection().Features)

	failed, err := PlanRoute(cfg, singleObstacle, geometry.Pt(-3, 0), geometry.Pt(0, 0))
	assert.True(t, IsSearchError(err))
	require.NotNil(t, failed)
	assert.Empty(t, failed.Waypoints)
	assert.NotZero(t, failed.Result.Graph.Len())

	inside, err := PlanRoute(cfg, singleObstacle, geometry.Pt(0.5, 0), geometry.Pt(3, 0))
	require.NoError(t, err, "a start inside the obstacle is pushed out")
	assert.InDelta(t, 1.11, inside.Result.Start.X, 1e-9)
	assert.InDelta(t, 0, inside.Result.Start.Y, 1e-9)
	assert.Equal(t, inside.Result.Start, inside.Polyline()[0])

	_, err = PlanRoute(cfg, singleObstacle, geometry.Pt(1, 1), geometry.Pt(1, 1))
	assert.True(t, IsSearchError(err), "start equal to goal is too short a path")

	_, err = PlanRoute(cfg, singleObstacle, geometry.Pt(math.NaN(), 0), geometry.Pt(3, 0))
	require.Error(t, err)
	assert.False(t, IsSearchError(err))
}
