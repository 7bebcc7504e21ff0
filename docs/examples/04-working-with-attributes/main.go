package main

import (
	"fmt"
	"log"

	"github.com/paulmach/orb"

	"github.com/beetlebugorg/gpsdata/pkg/gpx"
)

func main() {
	reg := gpx.NewRegistry(gpx.DefaultOptions())

	v, err := gpx.NewView(reg, "hike.gpx", gpx.WaypointType)
	if err != nil {
		log.Fatal(err)
	}
	defer v.Close()

	for _, fld := range v.Fields() {
		fmt.Printf("%-12s %s\n", fld.Name, fld.Type)
	}

	// Add a waypoint; the file is rewritten immediately
	name := v.FieldIndex("name")
	attrs := make([]any, len(v.Fields()))
	attrs[name] = "Summit"
	ids, err := v.AddFeatures([]gpx.Feature{{
		Geometry:   orb.Point{-71.05, 42.35},
		Attributes: attrs,
	}})
	if err != nil {
		log.Fatal(err)
	}

	// Rename it and set an elevation from a string
	err = v.ChangeAttributeValues(map[int64]gpx.AttributeMap{
		ids[0]: {name: "North Summit", v.FieldIndex("elevation"): "312.5"},
	})
	if err != nil {
		log.Fatal(err)
	}

	w, _ := v.Store().Waypoint(ids[0])
	if ele, ok := w.Elevation.Get(); ok {
		fmt.Printf("%s at %.1f m\n", w.Name, ele)
	}
}
