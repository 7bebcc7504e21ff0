package gpx

import (
	"github.com/paulmach/orb"
)

// Feature is the generic, attribute-table form of one waypoint, route or
// track as exposed by a View.
//
// Geometry is an orb.Point for waypoints and an orb.LineString for routes
// and tracks. Attributes is aligned with the View's Fields; an entry is nil
// when the value is unset or was not requested.
type Feature struct {
	ID         int64
	Geometry   orb.Geometry
	Attributes []any
}

// Attribute returns the value at field index i, or nil if out of range.
func (f Feature) Attribute(i int) any {
	if i < 0 || i >= len(f.Attributes) {
		return nil
	}
	return f.Attributes[i]
}

// AttributeMap maps View field indexes to new attribute values.
type AttributeMap map[int]any

// Capability is a bit set of the editing operations a View supports.
type Capability uint

const (
	CapAddFeatures Capability = 1 << iota
	CapDeleteFeatures
	CapChangeAttributeValues
)

// Has reports whether every bit in c2 is set in c.
func (c Capability) Has(c2 Capability) bool { return c&c2 == c2 }

// geometryKind names the geometry for error messages.
func geometryKind(g orb.Geometry) string {
	if g == nil {
		return "none"
	}
	return g.GeoJSONType()
}
