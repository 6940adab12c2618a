package circlegraph

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"tangent-planner/internal/geometry"
)

func toOrb(p geometry.Point) orb.Point {
	return orb.Point{p.X, p.Y}
}

func lineString(points ...geometry.Point) orb.LineString {
	ls := make(orb.LineString, 0, len(points))
	for _, p := range points {
		ls = append(ls, toOrb(p))
	}
	return ls
}

// FeatureCollection exports the obstacles and every edge of the generated
// graph for visualization. Hugging edges include their arc samples.
func (r *Result) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for id, c := range r.Circles {
		f := geojson.NewFeature(toOrb(c.Center))
		f.Properties["kind"] = "obstacle"
		f.Properties["circle"] = id
		f.Properties["radius"] = c.Radius
		fc.Append(f)
	}

	for _, e := range r.Graph.Edges() {
		if e.Info == nil {
			f := geojson.NewFeature(lineString(e.From.Content, e.To.Content))
			f.Properties["kind"] = "surfing"
			f.Properties["length"] = e.Cost
			fc.Append(f)
			continue
		}

		// samples run counter-clockwise from whichever end the arc was built at
		samples := OrientedArc(e.From.Content, e.Info)
		points := append([]geometry.Point{e.From.Content}, samples...)
		f := geojson.NewFeature(lineString(append(points, e.To.Content)...))
		f.Properties["kind"] = "hugging"
		f.Properties["circle"] = e.Info.Owner
		f.Properties["sweep"] = e.Info.SweepAngle
		f.Properties["length"] = e.Cost
		fc.Append(f)
	}

	return fc
}

// PathFeature exports a followed path as a single LineString
func PathFeature(path []Waypoint) *geojson.Feature {
	f := geojson.NewFeature(lineString(Polyline(path)...))
	f.Properties["kind"] = "path"
	f.Properties["waypoints"] = len(path)
	f.Properties["length"] = Length(path)
	return f
}
