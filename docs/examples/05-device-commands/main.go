package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/beetlebugorg/gpsdata/pkg/babel"
	"github.com/beetlebugorg/gpsdata/pkg/gpx"
)

func main() {
	// Falls back to the built-in devices when the file has no list
	set, err := babel.LoadDeviceSet(babel.YAMLSettings{Path: "devices.yaml"})
	if err != nil {
		log.Fatal(err)
	}

	for _, name := range set.Names() {
		dev, _ := set.Get(name)
		fmt.Printf("%s: %s\n", name, dev.Capabilities())
	}

	dev, ok := set.Get("Garmin serial")
	if !ok {
		log.Fatal("no Garmin device configured")
	}
	if !dev.Capabilities().CanImport(gpx.TrackType) {
		log.Fatal("device cannot download tracks")
	}

	argv := dev.ImportCommand("gpsbabel", gpx.TrackType, "/dev/ttyS0", "/tmp/tracks.gpx")
	fmt.Println(strings.Join(argv, " "))

	// Simple import formats
	csv, _ := babel.FindImporter("csv")
	argv = csv.ImportCommand("gpsbabel", gpx.WaypointType, "points.csv", "points.gpx")
	fmt.Println(strings.Join(argv, " "))
}
