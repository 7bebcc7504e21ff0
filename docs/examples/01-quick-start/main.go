package main

import (
	"fmt"
	"log"

	"github.com/beetlebugorg/gpsdata/pkg/gpx"
)

func main() {
	reg := gpx.NewRegistry(gpx.DefaultOptions())

	// Open a shared store for the file
	h, err := reg.Open("hike.gpx")
	if err != nil {
		log.Fatal(err)
	}
	defer h.Release()

	s := h.Store()
	fmt.Printf("Waypoints: %d\n", s.Count(gpx.WaypointType))
	fmt.Printf("Routes: %d\n", s.Count(gpx.RouteType))
	fmt.Printf("Tracks: %d\n", s.Count(gpx.TrackType))

	b := s.Extent()
	if b.IsEmpty() {
		fmt.Println("Extent: empty")
		return
	}
	fmt.Printf("Extent: [%.4f,%.4f] to [%.4f,%.4f]\n",
		b.MinLon, b.MinLat,
		b.MaxLon, b.MaxLat)
}
