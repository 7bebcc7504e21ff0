package main

import (
	"errors"
	"fmt"
	"log"

	"github.com/paulmach/orb"

	"github.com/beetlebugorg/gpsdata/pkg/gpx"
)

func openView(reg *gpx.Registry, uri string) (*gpx.View, error) {
	v, err := gpx.OpenView(reg, uri)
	if err != nil {
		var perr *gpx.ParseError
		if errors.As(err, &perr) {
			return nil, fmt.Errorf("gpx file unusable: %s: %w", perr.Path, perr.Err)
		}
		var uerr *gpx.URIError
		if errors.As(err, &uerr) {
			return nil, fmt.Errorf("check the uri: %w", err)
		}
		return nil, err
	}
	return v, nil
}

func main() {
	opts := gpx.DefaultOptions()
	opts.WritePolicy = gpx.WriteTransactional
	reg := gpx.NewRegistry(opts)

	if _, err := openView(reg, "hike.gpx?type=planet"); err != nil {
		log.Printf("Expected error: %v", err)
	}

	v, err := openView(reg, "hike.gpx?type=route")
	if err != nil {
		log.Fatal(err)
	}
	defer v.Close()

	// Routes need line geometry
	_, err = v.AddFeatures([]gpx.Feature{{Geometry: orb.Point{1, 2}}})
	var gerr *gpx.GeometryError
	if errors.As(err, &gerr) {
		log.Printf("Expected error: %v", err)
	}

	// A failed rewrite is rolled back under the transactional policy
	_, err = v.AddFeatures([]gpx.Feature{{Geometry: orb.LineString{{-71.1, 42.3}, {-71.0, 42.4}}}})
	var werr *gpx.WriteError
	if errors.As(err, &werr) {
		log.Printf("write failed, rolled back=%v", werr.RolledBack)
	}
}
