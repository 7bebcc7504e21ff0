package main

import (
	"fmt"
	"log"

	"github.com/beetlebugorg/gpsdata/pkg/gpx"
)

func main() {
	reg := gpx.NewRegistry(gpx.DefaultOptions())

	v, err := gpx.NewView(reg, "hike.gpx", gpx.WaypointType)
	if err != nil {
		log.Fatal(err)
	}
	defer v.Close()

	// Only names and elevations, no geometry, first ten waypoints
	name := v.FieldIndex("name")
	ele := v.FieldIndex("elevation")
	it := v.GetFeatures(gpx.FeatureRequest{
		Attributes: []int{name, ele},
		NoGeometry: true,
		Limit:      10,
	})
	defer it.Close()

	for {
		f, ok := it.Next()
		if !ok {
			break
		}
		fmt.Printf("%-20v %v\n", f.Attribute(name), f.Attribute(ele))
	}

	// Fetch specific ids
	byID := v.GetFeatures(gpx.FeatureRequest{FilterIDs: []int64{0, 2}})
	defer byID.Close()
	for f := range byID.All() {
		fmt.Println(f.ID, f.Geometry)
	}
}
