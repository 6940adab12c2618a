// Package planner turns the visibility graph into per-tick movement targets
// for one agent.
package planner

import (
	"errors"
	"fmt"
	"log"

	"tangent-planner/internal/astar"
	"tangent-planner/internal/circlegraph"
	"tangent-planner/internal/config"
	"tangent-planner/internal/geometry"
)

// errAbandoned marks a plan given up because no path exists
var errAbandoned = errors.New("plan abandoned")

// Planner owns the generator, search and follower of a single agent. It is
// not safe for concurrent use.
type Planner struct {
	cfg      config.Config
	gen      *circlegraph.Generator
	search   *astar.Search[geometry.Point, circlegraph.ArcInfo]
	expander circlegraph.Expander
	follower *Follower

	goal    geometry.Point
	hasGoal bool
	replan  bool
	result  *circlegraph.Result
}

// New validates cfg and builds a planner for it
func New(cfg config.Config) (*Planner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	actor, err := cfg.Actor()
	if err != nil {
		return nil, err
	}
	h, err := astar.PointHeuristic(cfg.Heuristic)
	if err != nil {
		return nil, err
	}

	gen := circlegraph.NewGenerator(actor, cfg.Options(), cfg.NodeTolerance)
	return &Planner{
		cfg:      cfg,
		gen:      gen,
		search:   astar.New(gen.Graph(), h),
		expander: circlegraph.Expander{Length: cfg.ExpansionLength},
		follower: NewFollower(cfg.ReachTolerance),
	}, nil
}

// SetGoal sets a new goal and drops the path being followed, so the next
// tick plans again even in the middle of an arc
func (p *Planner) SetGoal(goal geometry.Point) error {
	if !goal.IsFinite() {
		return fmt.Errorf("goal %v: %w", goal, circlegraph.ErrNonFinite)
	}
	p.goal = goal
	p.hasGoal = true
	p.replan = true
	p.follower.Reset(nil)
	return nil
}

func (p *Planner) UnsetGoal() {
	p.hasGoal = false
	p.follower.Reset(nil)
}

func (p *Planner) Goal() (geometry.Point, bool) {
	return p.goal, p.hasGoal
}

// RequestReplan makes the next tick plan again even when the current path
// is still being followed
func (p *Planner) RequestReplan() {
	p.replan = true
}

func (p *Planner) Mode() Mode {
	return p.follower.Mode()
}

// Path returns the expanded path being followed
func (p *Planner) Path() []circlegraph.Waypoint {
	return p.follower.Path()
}

// Result returns the graph of the last planning pass, or nil
func (p *Planner) Result() *circlegraph.Result {
	return p.result
}

func (p *Planner) Config() config.Config {
	return p.cfg
}

// Tick returns the point the agent at position should head for given the
// current obstacles. Without a goal the agent holds its position. A goal no
// path leads to is dropped. Any other failure leaves the goal set and
// returns position together with the error.
func (p *Planner) Tick(position geometry.Point, obstacles []geometry.Circle) (geometry.Point, error) {
	if !p.hasGoal {
		return position, nil
	}
	if position.Distance(p.goal) <= p.cfg.ReachTolerance {
		log.Printf("Goal %v reached\n", p.goal)
		goal := p.goal
		p.UnsetGoal()
		return goal, nil
	}

	if p.follower.Mode() == Hugging {
		target, _ := p.follower.Next(position)
		return target, nil
	}

	if p.needsReplan(position) {
		if err := p.Plan(position, obstacles); err != nil {
			if errors.Is(err, errAbandoned) {
				return position, nil
			}
			return position, err
		}
	}

	target, ok := p.follower.Next(position)
	if !ok {
		p.replan = true
	}
	return target, nil
}

func (p *Planner) needsReplan(position geometry.Point) bool {
	return p.cfg.ReplanEveryTick ||
		p.replan ||
		p.follower.Done() ||
		p.follower.Deviation(position) > p.cfg.DivergenceTolerance
}

// Plan builds the graph from position to the goal and starts following the
// shortest path on it
func (p *Planner) Plan(position geometry.Point, obstacles []geometry.Circle) error {
	if !p.hasGoal {
		return nil
	}
	start := escape(p.gen.Actor(), p.cfg.ExpansionLength, position, obstacles)

	res, err := p.gen.Generate(obstacles, start, p.goal)
	if err != nil {
		p.replan = true
		return fmt.Errorf("failed to generate graph: %w", err)
	}
	p.result = res

	steps, err := p.findPath(start)
	if err != nil {
		if isSearchError(err) {
			log.Printf("⚠️  No path from %v to %v: %v\n", start, p.goal, err)
			p.UnsetGoal()
			return fmt.Errorf("%w: %v", errAbandoned, err)
		}
		return err
	}

	p.follower.Reset(p.expander.Expand(steps, res.Circles))
	p.replan = false
	return nil
}

func (p *Planner) findPath(start geometry.Point) ([]circlegraph.Step, error) {
	if err := p.search.SetStart(start); err != nil {
		return nil, err
	}
	if err := p.search.SetGoal(p.goal); err != nil {
		return nil, err
	}
	if err := p.search.FindPath(); err != nil {
		return nil, err
	}
	return p.search.GetPath()
}

// escape moves a position lying inside an expanded obstacle margin past its
// boundary so the start is not hidden by the circle it overlaps
func escape(actor geometry.Actor, margin float64, position geometry.Point, obstacles []geometry.Circle) geometry.Point {
	for _, c := range obstacles {
		expanded := actor.Expand(c)
		if expanded.ContainsPoint(position) {
			pushed := expanded.PushOut(position, margin)
			log.Printf("⚠️  Agent at %v is inside %v, starting from %v\n", position, expanded, pushed)
			position = pushed
		}
	}
	return position
}

func isSearchError(err error) bool {
	var noNode *astar.NoSuchNodeError
	var incomplete *astar.IncompletePathError
	var tooShort *astar.PathTooShortError
	return errors.As(err, &noNode) || errors.As(err, &incomplete) || errors.As(err, &tooShort)
}
