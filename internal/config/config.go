// Package config holds the tunable parameters of the planner and loads them
// from YAML.
package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"tangent-planner/internal/astar"
	"tangent-planner/internal/circlegraph"
	"tangent-planner/internal/geometry"
)

// Config mirrors the YAML file. Zero fields left out of the file keep their
// defaults.
type Config struct {
	ActorRadius float64 `yaml:"actor_radius" json:"actor_radius"`

	// Graph generation
	DistanceTolerance float64 `yaml:"distance_tolerance" json:"distance_tolerance"`
	NodeTolerance     float64 `yaml:"node_tolerance" json:"node_tolerance"`
	ArcSamplesPerUnit float64 `yaml:"arc_samples_per_unit" json:"arc_samples_per_unit"`
	ConnectShift      float64 `yaml:"connect_shift" json:"connect_shift"`
	HuggingOcclusion  bool    `yaml:"hugging_occlusion" json:"hugging_occlusion"`

	// Search and following
	Heuristic           string  `yaml:"heuristic" json:"heuristic"`
	ExpansionLength     float64 `yaml:"expansion_length" json:"expansion_length"`
	ReachTolerance      float64 `yaml:"reach_tolerance" json:"reach_tolerance"`
	ReplanEveryTick     bool    `yaml:"replan_every_tick" json:"replan_every_tick"`
	DivergenceTolerance float64 `yaml:"divergence_tolerance" json:"divergence_tolerance"`

	// Driving
	MaxSpeed float64 `yaml:"max_speed" json:"max_speed"`
	TimeStep float64 `yaml:"time_step" json:"time_step"`

	ListenAddr string `yaml:"listen_addr" json:"listen_addr"`
}

func DefaultConfig() Config {
	opts := circlegraph.DefaultOptions()
	return Config{
		ActorRadius:         0.5,
		DistanceTolerance:   opts.DistanceTolerance,
		NodeTolerance:       0.05,
		ArcSamplesPerUnit:   opts.ArcSamplesPerUnit,
		ConnectShift:        opts.ConnectShift,
		Heuristic:           "euclidean",
		ExpansionLength:     0.1,
		ReachTolerance:      0.1,
		ReplanEveryTick:     true,
		DivergenceTolerance: 1.0,
		MaxSpeed:            1.0,
		TimeStep:            0.1,
		ListenAddr:          ":8080",
	}
}

// Load reads a YAML file on top of the defaults and validates the result
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects a non-positive actor radius, non-positive tolerances and
// unknown heuristics
func (c Config) Validate() error {
	if c.ActorRadius <= 0 || math.IsNaN(c.ActorRadius) || math.IsInf(c.ActorRadius, 0) {
		return fmt.Errorf("actor_radius %v: %w", c.ActorRadius, geometry.ErrInvalidRadius)
	}

	positive := []struct {
		name  string
		value float64
	}{
		{"distance_tolerance", c.DistanceTolerance},
		{"node_tolerance", c.NodeTolerance},
		{"arc_samples_per_unit", c.ArcSamplesPerUnit},
		{"reach_tolerance", c.ReachTolerance},
		{"divergence_tolerance", c.DivergenceTolerance},
		{"max_speed", c.MaxSpeed},
		{"time_step", c.TimeStep},
	}
	for _, p := range positive {
		if !(p.value > 0) {
			return fmt.Errorf("%s must be positive, got %v", p.name, p.value)
		}
	}
	if c.ExpansionLength < 0 || c.ConnectShift < 0 {
		return fmt.Errorf("expansion_length and connect_shift must not be negative")
	}
	if _, err := astar.PointHeuristic(c.Heuristic); err != nil {
		return err
	}
	return nil
}

// Options returns the graph generation options
func (c Config) Options() circlegraph.Options {
	return circlegraph.Options{
		DistanceTolerance: c.DistanceTolerance,
		ArcSamplesPerUnit: c.ArcSamplesPerUnit,
		ConnectShift:      c.ConnectShift,
		HuggingOcclusion:  c.HuggingOcclusion,
	}
}

// Actor builds the actor for the configured radius
func (c Config) Actor() (geometry.Actor, error) {
	return geometry.NewActor(c.ActorRadius)
}
