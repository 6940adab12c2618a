package planner

import (
	"fmt"

	"github.com/paulmach/orb/geojson"

	"tangent-planner/internal/astar"
	"tangent-planner/internal/circlegraph"
	"tangent-planner/internal/config"
	"tangent-planner/internal/geometry"
)

// Route is the outcome of planning once, without following
type Route struct {
	Result    *circlegraph.Result
	Steps     []circlegraph.Step
	Waypoints []circlegraph.Waypoint
	Cost      float64
}

// PlanRoute generates the graph for obstacles and searches it from start to
// goal. A start inside an expanded obstacle is first pushed out of it, as a
// Planner does. Search failures are returned unwrapped so IsSearchError
// matches them, together with a Route holding only the generated graph.
func PlanRoute(cfg config.Config, obstacles []geometry.Circle, start, goal geometry.Point) (*Route, error) {
	actor, err := cfg.Actor()
	if err != nil {
		return nil, err
	}
	h, err := astar.PointHeuristic(cfg.Heuristic)
	if err != nil {
		return nil, err
	}

	start = escape(actor, cfg.ExpansionLength, start, obstacles)
	res, err := circlegraph.Generate(actor, cfg.Options(), cfg.NodeTolerance, obstacles, start, goal)
	if err != nil {
		return nil, fmt.Errorf("failed to generate graph: %w", err)
	}

	route := &Route{Result: res}
	search := astar.New(res.Graph, h)
	if err := search.SetStart(start); err != nil {
		return route, err
	}
	if err := search.SetGoal(goal); err != nil {
		return route, err
	}
	if err := search.FindPath(); err != nil {
		return route, err
	}
	steps, err := search.GetPath()
	if err != nil {
		return route, err
	}

	route.Steps = steps
	route.Waypoints = circlegraph.Expander{Length: cfg.ExpansionLength}.Expand(steps, res.Circles)
	route.Cost = astar.PathCost(steps)
	return route, nil
}

// Polyline returns the points an agent following the route passes
func (r *Route) Polyline() []geometry.Point {
	return circlegraph.Polyline(r.Waypoints)
}

func (r *Route) Length() float64 {
	return circlegraph.Length(r.Waypoints)
}

// FeatureCollection exports the graph together with the route
func (r *Route) FeatureCollection() *geojson.FeatureCollection {
	fc := r.Result.FeatureCollection()
	fc.Append(circlegraph.PathFeature(r.Waypoints))
	return fc
}

// IsSearchError reports whether err means no path exists, as opposed to a
// failure to plan at all
func IsSearchError(err error) bool {
	return isSearchError(err)
}
