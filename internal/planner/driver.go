package planner

import (
	"fmt"
	"log"
	"math"

	"tangent-planner/internal/geometry"
	"tangent-planner/internal/sim"
)

// Driver feeds planner targets to a simulated agent as preferred velocities
type Driver struct {
	Planner *Planner
	Sim     sim.Simulator
	Agent   int
}

// NewDriver adds an agent at position to s and drives it with p
func NewDriver(p *Planner, s sim.Simulator, position geometry.Point) *Driver {
	return &Driver{
		Planner: p,
		Sim:     s,
		Agent:   s.AddAgent(position, p.cfg.ActorRadius),
	}
}

// Tick plans from the agent's current position and sets its preferred
// velocity towards the target. The speed is capped so the agent does not
// overshoot the target within one time step. On error the agent is stopped.
func (d *Driver) Tick(obstacles []geometry.Circle) (geometry.Point, error) {
	position := d.Sim.Position(d.Agent)

	target, err := d.Planner.Tick(position, obstacles)
	if err != nil {
		d.Sim.SetPreferredVelocity(d.Agent, geometry.Point{})
		return position, err
	}

	d.Sim.SetPreferredVelocity(d.Agent, d.velocity(position, target))
	return target, nil
}

func (d *Driver) velocity(position, target geometry.Point) geometry.Point {
	cfg := d.Planner.cfg
	delta := target.Sub(position)
	dist := delta.Length()
	if dist == 0 {
		return geometry.Point{}
	}
	speed := math.Min(cfg.MaxSpeed, dist/cfg.TimeStep)
	return delta.Scale(speed / dist)
}

// Run ticks and steps the simulator until the goal is reached or dropped,
// or maxTicks have passed. It returns the positions the agent went through.
func (d *Driver) Run(obstacles []geometry.Circle, maxTicks int) ([]geometry.Point, error) {
	trace := []geometry.Point{d.Sim.Position(d.Agent)}
	for tick := 0; tick < maxTicks; tick++ {
		if _, ok := d.Planner.Goal(); !ok {
			return trace, nil
		}
		if _, err := d.Tick(obstacles); err != nil {
			log.Printf("⚠️  Tick %d failed: %v\n", tick, err)
		}
		d.Sim.Step(d.Planner.cfg.TimeStep)
		trace = append(trace, d.Sim.Position(d.Agent))
	}
	if _, ok := d.Planner.Goal(); ok {
		return trace, fmt.Errorf("goal not reached after %d ticks", maxTicks)
	}
	return trace, nil
}
