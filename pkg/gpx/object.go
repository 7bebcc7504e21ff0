package gpx

import (
	"fmt"
	"slices"

	"github.com/aarondl/opt/omit"
	"github.com/paulmach/orb"
)

// FeatureType identifies one of the three kinds of GPS data a file holds.
//
// It determines which attributes apply and the geometry kind of the
// generic features produced for it.
type FeatureType int

const (
	// WaypointType is a single named point with optional elevation and symbol.
	WaypointType FeatureType = iota

	// RouteType is an ordered, unsegmented sequence of points to be followed.
	RouteType

	// TrackType is a recorded path made of one or more segments.
	TrackType
)

// FeatureTypes lists all feature types in file order.
var FeatureTypes = []FeatureType{WaypointType, RouteType, TrackType}

// String returns the lower-case name used in provider URIs ("waypoint",
// "route", "track").
func (t FeatureType) String() string {
	switch t {
	case WaypointType:
		return "waypoint"
	case RouteType:
		return "route"
	case TrackType:
		return "track"
	default:
		return fmt.Sprintf("FeatureType(%d)", int(t))
	}
}

// GeometryType returns the geometry kind of features of this type.
func (t FeatureType) GeometryType() GeometryType {
	if t == WaypointType {
		return GeometryTypePoint
	}
	return GeometryTypeLineString
}

// ParseFeatureType parses a feature type name as produced by String.
func ParseFeatureType(s string) (FeatureType, error) {
	switch s {
	case "waypoint":
		return WaypointType, nil
	case "route":
		return RouteType, nil
	case "track":
		return TrackType, nil
	}
	return 0, fmt.Errorf("unknown feature type %q", s)
}

// GeometryType represents the type of a generic feature geometry.
type GeometryType int

const (
	// GeometryTypePoint represents a single point location.
	GeometryTypePoint GeometryType = iota

	// GeometryTypeLineString represents a line composed of connected points.
	GeometryTypeLineString
)

// String returns the string representation of the geometry type.
func (g GeometryType) String() string {
	switch g {
	case GeometryTypePoint:
		return "Point"
	case GeometryTypeLineString:
		return "LineString"
	default:
		return "Unknown"
	}
}

// Object holds the descriptive fields shared by waypoints, routes and tracks.
//
// ID is assigned by the Store that owns the object. Values passed to the
// Store's add operations have their ID overwritten.
type Object struct {
	ID          int64
	Name        string
	Comment     string
	Description string
	Source      string
	URL         string
	URLName     string
}

// Waypoint is a single named geographic point.
type Waypoint struct {
	Object

	Lat       float64
	Lon       float64
	Elevation omit.Val[float64]
	Symbol    string
}

// Bounds returns the degenerate box at the waypoint's position.
func (w *Waypoint) Bounds() Bounds {
	return EmptyBounds().ExtendPoint(w.Lon, w.Lat)
}

// Geometry returns the waypoint position as an orb.Point.
func (w *Waypoint) Geometry() orb.Point {
	return orb.Point{w.Lon, w.Lat}
}

// RoutePoint is one vertex of a route.
type RoutePoint struct {
	Lat float64
	Lon float64
}

// TrackPoint is one vertex of a track segment.
type TrackPoint struct {
	Lat float64
	Lon float64
}

// Route is an ordered sequence of points with no segmentation.
//
// Points must be assigned with SetPoints so the bounding box stays in sync.
type Route struct {
	Object

	Number omit.Val[int]

	points []RoutePoint
	bounds Bounds
}

// NewRoute creates a route over the given points.
func NewRoute(points []RoutePoint) Route {
	var r Route
	r.SetPoints(points)
	return r
}

// SetPoints replaces the route's points with a copy of points and
// recomputes its bounds.
func (r *Route) SetPoints(points []RoutePoint) {
	r.points = slices.Clone(points)
	r.bounds = EmptyBounds()
	for _, p := range points {
		r.bounds = r.bounds.ExtendPoint(p.Lon, p.Lat)
	}
}

// Points returns the route's points in order. The slice is shared and must
// not be modified; use SetPoints.
func (r *Route) Points() []RoutePoint { return r.points }

// Bounds returns the bounding box of all route points.
func (r *Route) Bounds() Bounds {
	if r.points == nil {
		return EmptyBounds()
	}
	return r.bounds
}

// Geometry returns the route as an orb.LineString.
func (r *Route) Geometry() orb.LineString {
	ls := make(orb.LineString, len(r.points))
	for i, p := range r.points {
		ls[i] = orb.Point{p.Lon, p.Lat}
	}
	return ls
}

// TrackSegment is an ordered run of track points. A segment break marks a
// discontinuity in recording.
type TrackSegment struct {
	Points []TrackPoint
}

// Track is a recorded path composed of segments.
//
// Segments must be assigned with SetSegments so the bounding box stays in
// sync.
type Track struct {
	Object

	Number omit.Val[int]

	segments []TrackSegment
	bounds   Bounds
}

// NewTrack creates a track over the given segments.
func NewTrack(segments []TrackSegment) Track {
	var t Track
	t.SetSegments(segments)
	return t
}

// SetSegments replaces the track's segments with a copy of segments and
// recomputes its bounds over every point of every segment.
func (t *Track) SetSegments(segments []TrackSegment) {
	if segments != nil {
		t.segments = make([]TrackSegment, len(segments))
		for i, seg := range segments {
			t.segments[i] = TrackSegment{Points: slices.Clone(seg.Points)}
		}
	} else {
		t.segments = nil
	}
	t.bounds = EmptyBounds()
	for _, seg := range segments {
		for _, p := range seg.Points {
			t.bounds = t.bounds.ExtendPoint(p.Lon, p.Lat)
		}
	}
}

// Segments returns the track's segments in order. The slices are shared
// and must not be modified; use SetSegments.
func (t *Track) Segments() []TrackSegment { return t.segments }

// PointCount returns the number of points across all segments.
func (t *Track) PointCount() int {
	n := 0
	for _, seg := range t.segments {
		n += len(seg.Points)
	}
	return n
}

// Bounds returns the bounding box of all points in all segments.
func (t *Track) Bounds() Bounds {
	if t.segments == nil {
		return EmptyBounds()
	}
	return t.bounds
}

// Geometry returns the concatenation of all segments as one orb.LineString.
func (t *Track) Geometry() orb.LineString {
	ls := make(orb.LineString, 0, t.PointCount())
	for _, seg := range t.segments {
		for _, p := range seg.Points {
			ls = append(ls, orb.Point{p.Lon, p.Lat})
		}
	}
	return ls
}
