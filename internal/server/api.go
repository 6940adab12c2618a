package server

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb/geojson"

	"tangent-planner/internal/geometry"
	"tangent-planner/internal/scene"
)

// Circle is an obstacle as sent over the wire
type Circle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

// Obstacles can be given inline, as a scene GeoJSON document, or both
type Obstacles struct {
	Obstacles []Circle        `json:"obstacles,omitempty"`
	Scene     json.RawMessage `json:"scene,omitempty"`
}

func (o Obstacles) circles() ([]geometry.Circle, error) {
	var circles []geometry.Circle
	if len(o.Scene) > 0 {
		parsed, err := scene.Parse(o.Scene)
		if err != nil {
			return nil, err
		}
		circles = parsed
	}
	for i, c := range o.Obstacles {
		if !(c.Radius > 0) {
			return nil, fmt.Errorf("obstacle %d: %w", i, geometry.ErrInvalidRadius)
		}
		circles = append(circles, geometry.NewCircle(c.Radius, geometry.Pt(c.X, c.Y), i))
	}
	return circles, nil
}

type RouteRequest struct {
	Start       geometry.Point `json:"start"`
	Goal        geometry.Point `json:"goal"`
	ActorRadius float64        `json:"actorRadius,omitempty"`
	Obstacles
}

type RouteResponse struct {
	Success bool                       `json:"success"`
	Message string                     `json:"message,omitempty"`
	Path    []geometry.Point           `json:"path,omitempty"`
	Nearest *geometry.Point            `json:"nearest,omitempty"`
	Length  float64                    `json:"length,omitempty"`
	Cost    float64                    `json:"cost,omitempty"`
	GeoJSON *geojson.FeatureCollection `json:"geojson,omitempty"`
}

type CreateAgentRequest struct {
	ActorRadius float64 `json:"actorRadius,omitempty"`
}

type AgentResponse struct {
	ID      string          `json:"id"`
	HasGoal bool            `json:"hasGoal"`
	Goal    *geometry.Point `json:"goal,omitempty"`
	Mode    string          `json:"mode"`
	Ticks   int             `json:"ticks"`
}

type TickRequest struct {
	Position geometry.Point `json:"position"`
	Obstacles
}

type TickResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Target  geometry.Point `json:"target"`
	Mode    string         `json:"mode"`
	HasGoal bool           `json:"hasGoal"`
}

func agentResponse(id string, s *session) AgentResponse {
	resp := AgentResponse{
		ID:    id,
		Mode:  s.planner.Mode().String(),
		Ticks: s.ticks,
	}
	if goal, ok := s.planner.Goal(); ok {
		resp.HasGoal = true
		resp.Goal = &goal
	}
	return resp
}
