package main

import (
	"fmt"
	"log"

	"github.com/beetlebugorg/gpsdata/pkg/gpx"
)

func main() {
	reg := gpx.NewRegistry(gpx.DefaultOptions())

	v, err := gpx.OpenView(reg, "hike.gpx?type=track")
	if err != nil {
		log.Fatal(err)
	}
	defer v.Close()

	// Viewport around the trailhead
	viewport := gpx.Bounds{
		MinLon: -71.1, MaxLon: -71.0,
		MinLat: 42.3, MaxLat: 42.4,
	}

	// Candidates come from the R-tree, then an exact bounds test
	it := v.GetFeatures(gpx.FeatureRequest{FilterRect: &viewport})
	defer it.Close()

	name := v.FieldIndex("name")
	for f := range it.All() {
		fmt.Printf("  %d %v: %s\n", f.ID, f.Attribute(name), f.Geometry.GeoJSONType())
	}
}
