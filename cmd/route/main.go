package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"tangent-planner/internal/config"
	"tangent-planner/internal/geometry"
	"tangent-planner/internal/planner"
	"tangent-planner/internal/scene"
	"tangent-planner/internal/sim"
)

func parsePoint(s string) (geometry.Point, error) {
	var p geometry.Point
	if _, err := fmt.Sscanf(s, "%g,%g", &p.X, &p.Y); err != nil {
		return p, fmt.Errorf("invalid point %q, want x,y: %w", s, err)
	}
	return p, nil
}

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file (defaults are used when empty)")
		scenePath  = flag.String("scene", "", "scene GeoJSON file or directory of *.geojson files")
		startFlag  = flag.String("start", "", "start point as x,y")
		goalFlag   = flag.String("goal", "", "goal point as x,y")
		output     = flag.String("o", "", "write graph and path GeoJSON to this file")
		simulate   = flag.Int("simulate", 0, "drive a simulated agent for at most this many ticks")
	)
	flag.Parse()

	if *scenePath == "" || *startFlag == "" || *goalFlag == "" {
		fmt.Fprintf(os.Stderr, "Error: -scene, -start and -goal are required\n")
		flag.Usage()
		os.Exit(1)
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		cfg = loaded
	}

	start, err := parsePoint(*startFlag)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	goal, err := parsePoint(*goalFlag)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	var obstacles []geometry.Circle
	if info, statErr := os.Stat(*scenePath); statErr == nil && info.IsDir() {
		obstacles, err = scene.LoadDir(*scenePath)
	} else {
		obstacles, err = scene.Load(*scenePath)
	}
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	route, err := planner.PlanRoute(cfg, obstacles, start, goal)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	stats := route.Result.Stats
	log.Printf("Graph: %d circles, %d surfing edges, %d hugging edges, %d nodes\n",
		stats.Circles, stats.SurfingEdges, stats.HuggingEdges, stats.Nodes)
	log.Printf("✅ Path cost %.3f, followed length %.3f\n", route.Cost, route.Length())
	for i, p := range route.Polyline() {
		fmt.Printf("%d\t%.6f\t%.6f\n", i, p.X, p.Y)
	}

	if *output != "" {
		data, err := json.MarshalIndent(route.FeatureCollection(), "", "  ")
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		if err := os.WriteFile(*output, data, 0o644); err != nil {
			log.Fatalf("❌ Failed to write %s: %v", *output, err)
		}
		log.Printf("GeoJSON written to %s\n", *output)
	}

	if *simulate > 0 {
		p, err := planner.New(cfg)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		if err := p.SetGoal(goal); err != nil {
			log.Fatalf("❌ %v", err)
		}
		driver := planner.NewDriver(p, sim.NewKinematic(cfg.MaxSpeed), start)
		trace, err := driver.Run(obstacles, *simulate)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		log.Printf("✅ Simulated agent arrived after %d ticks\n", len(trace)-1)
	}
}
