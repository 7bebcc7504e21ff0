package babel

import (
	"strings"

	"github.com/beetlebugorg/gpsdata/pkg/gpx"
)

// Capabilities is a bit set describing which feature types a format handles
// and in which directions.
type Capabilities uint

const (
	Waypoints Capabilities = 1 << iota
	Routes
	Tracks
	Import
	Export
)

// Has reports whether every bit in c2 is set in c.
func (c Capabilities) Has(c2 Capabilities) bool { return c&c2 == c2 }

// CanImport reports whether c includes import and the feature type t.
func (c Capabilities) CanImport(t gpx.FeatureType) bool {
	return c.Has(Import | typeCapability(t))
}

// CanExport reports whether c includes export and the feature type t.
func (c Capabilities) CanExport(t gpx.FeatureType) bool {
	return c.Has(Export | typeCapability(t))
}

// String lists the set bits, e.g. "waypoints|tracks|import".
func (c Capabilities) String() string {
	var parts []string
	for _, bit := range []struct {
		c    Capabilities
		name string
	}{
		{Waypoints, "waypoints"},
		{Routes, "routes"},
		{Tracks, "tracks"},
		{Import, "import"},
		{Export, "export"},
	} {
		if c.Has(bit.c) {
			parts = append(parts, bit.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// typeCapability maps a feature type to its capability bit. Unknown types
// map to a bit no format sets.
func typeCapability(t gpx.FeatureType) Capabilities {
	switch t {
	case gpx.WaypointType:
		return Waypoints
	case gpx.RouteType:
		return Routes
	case gpx.TrackType:
		return Tracks
	}
	return 1 << 31
}
