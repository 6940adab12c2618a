// Package sim is the narrow surface of the movement simulator the planner
// drives: agents receive a preferred velocity and the simulator integrates it.
package sim

import (
	"math"

	"tangent-planner/internal/geometry"
)

// Simulator moves agents. Collision avoidance, if any, happens inside Step.
type Simulator interface {
	AddAgent(position geometry.Point, radius float64) int
	SetPreferredVelocity(id int, v geometry.Point)
	Step(dt float64)
	Position(id int) geometry.Point
	Velocity(id int) geometry.Point
}

type agent struct {
	position  geometry.Point
	velocity  geometry.Point
	preferred geometry.Point
	radius    float64
	maxSpeed  float64
}

// Kinematic applies the preferred velocity directly, clamped to MaxSpeed.
// It is not safe for concurrent use.
type Kinematic struct {
	MaxSpeed float64
	agents   []agent
}

func NewKinematic(maxSpeed float64) *Kinematic {
	return &Kinematic{MaxSpeed: maxSpeed}
}

func (k *Kinematic) AddAgent(position geometry.Point, radius float64) int {
	k.agents = append(k.agents, agent{position: position, radius: radius, maxSpeed: k.MaxSpeed})
	return len(k.agents) - 1
}

func (k *Kinematic) SetPreferredVelocity(id int, v geometry.Point) {
	if id < 0 || id >= len(k.agents) {
		return
	}
	k.agents[id].preferred = v
}

// Step advances every agent by dt
func (k *Kinematic) Step(dt float64) {
	for i := range k.agents {
		a := &k.agents[i]
		v := a.preferred
		if speed := v.Length(); a.maxSpeed > 0 && speed > a.maxSpeed {
			v = v.Scale(a.maxSpeed / speed)
		}
		if !v.IsFinite() {
			v = geometry.Point{}
		}
		a.velocity = v
		a.position = a.position.Add(v.Scale(dt))
	}
}

func (k *Kinematic) Position(id int) geometry.Point {
	if id < 0 || id >= len(k.agents) {
		return geometry.Pt(math.NaN(), math.NaN())
	}
	return k.agents[id].position
}

func (k *Kinematic) Velocity(id int) geometry.Point {
	if id < 0 || id >= len(k.agents) {
		return geometry.Point{}
	}
	return k.agents[id].velocity
}

// Radius returns the radius an agent was added with
func (k *Kinematic) Radius(id int) float64 {
	if id < 0 || id >= len(k.agents) {
		return 0
	}
	return k.agents[id].radius
}

// Len returns the number of agents
func (k *Kinematic) Len() int {
	return len(k.agents)
}
