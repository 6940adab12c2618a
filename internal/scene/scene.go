// Package scene loads circular obstacles from GeoJSON. Point features carry
// their radius as a property; polygons are replaced by an enclosing circle.
package scene

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"tangent-planner/internal/geometry"
)

var ErrInvalidScene = errors.New("invalid scene")

// Obstacle ties a circle back to the feature it came from
type Obstacle struct {
	Feature int
	Name    string
}

// Parse validates and decodes a scene document
func Parse(data []byte) ([]geometry.Circle, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScene, err)
	}

	var circles []geometry.Circle
	for i, f := range fc.Features {
		owner := Obstacle{Feature: i, Name: f.Properties.MustString("name", "")}

		switch g := f.Geometry.(type) {
		case orb.Point:
			radius := f.Properties.MustFloat64("radius", 0)
			circles = append(circles, geometry.NewCircle(radius, geometry.Pt(g[0], g[1]), owner))
		case orb.Polygon:
			if c, ok := enclosingCircle(g, owner); ok {
				circles = append(circles, c)
			}
		case orb.MultiPolygon:
			for _, poly := range g {
				if c, ok := enclosingCircle(poly, owner); ok {
					circles = append(circles, c)
				}
			}
		}
	}
	return circles, nil
}

// enclosingCircle centers a circle on the polygon's centroid, wide enough to
// cover every vertex of the outer ring
func enclosingCircle(poly orb.Polygon, owner Obstacle) (geometry.Circle, bool) {
	if len(poly) == 0 || len(poly[0]) == 0 {
		log.Printf("⚠️  Skipping empty polygon in feature %d\n", owner.Feature)
		return geometry.Circle{}, false
	}

	outer := orb.Polygon{poly[0]}
	center, area := planar.CentroidArea(outer)
	if area == 0 {
		center = poly[0].Bound().Center()
	}

	radius := 0.0
	for _, p := range poly[0] {
		radius = max(radius, planar.Distance(center, p))
	}
	if radius <= 0 {
		log.Printf("⚠️  Skipping degenerate polygon in feature %d\n", owner.Feature)
		return geometry.Circle{}, false
	}
	return geometry.NewCircle(radius, geometry.Pt(center[0], center[1]), owner), true
}

// Load reads one scene file
func Load(path string) ([]geometry.Circle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene %s: %w", path, err)
	}
	circles, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	log.Printf("   ✅ Loaded %d obstacles from %s\n", len(circles), filepath.Base(path))
	return circles, nil
}

// LoadDir loads every *.geojson file in dir. Files that fail to load are
// skipped with a warning.
func LoadDir(dir string) ([]geometry.Circle, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.geojson"))
	if err != nil {
		return nil, err
	}

	log.Printf("Loading obstacles from %d GeoJSON files...\n", len(files))

	var all []geometry.Circle
	for _, file := range files {
		circles, err := Load(file)
		if err != nil {
			log.Printf("⚠️  %v\n", err)
			continue
		}
		all = append(all, circles...)
	}

	log.Printf("Total obstacles loaded: %d circles\n", len(all))
	return all, nil
}
