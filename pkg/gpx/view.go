package gpx

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/paulmach/orb"

	"github.com/beetlebugorg/gpsdata/internal/gpxfile"
)

// View presents the objects of one feature type in a store as generic
// features with a fixed attribute table.
//
// Every editing call rewrites the whole backing file through Store.Edit,
// even when it matched nothing. Several views (of the same or different
// feature types) may share one store; each holds its own Handle.
//
// Example:
//
//	view, err := gpx.OpenView(gpx.DefaultRegistry, "/data/hike.gpx?type=waypoint")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer view.Close()
//
//	it := view.GetFeatures(gpx.FeatureRequest{})
//	for f := range it.All() {
//	    fmt.Println(f.ID, f.Geometry)
//	}
type View struct {
	handle *Handle
	store  *Store
	typ    FeatureType
	fields []Field
	source string // default source attribute of new features
	closed atomic.Bool
}

// NewView opens path in reg and returns a view of its objects of type t.
func NewView(reg *Registry, path string, t FeatureType) (*View, error) {
	if t < WaypointType || t > TrackType {
		return nil, fmt.Errorf("new view: unknown feature type %d", int(t))
	}
	h, err := reg.Open(path)
	if err != nil {
		return nil, err
	}
	return &View{
		handle: h,
		store:  h.Store(),
		typ:    t,
		fields: FieldsFor(t),
		source: "Digitized in " + reg.Options().Application,
	}, nil
}

// OpenView opens a view from a provider URI of the form
// "path?type=waypoint|route|track".
func OpenView(reg *Registry, uri string) (*View, error) {
	path, t, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	return NewView(reg, path, t)
}

// ParseURI splits a provider URI into the file path and feature type.
func ParseURI(uri string) (string, FeatureType, error) {
	path, query, ok := strings.Cut(uri, "?")
	if !ok {
		return "", 0, &URIError{URI: uri, Reason: "missing ?type="}
	}
	if path == "" {
		return "", 0, &URIError{URI: uri, Reason: "empty path"}
	}
	values, err := url.ParseQuery(query)
	if err != nil {
		return "", 0, &URIError{URI: uri, Reason: err.Error()}
	}
	t, err := ParseFeatureType(values.Get("type"))
	if err != nil {
		return "", 0, &URIError{URI: uri, Reason: err.Error()}
	}
	return path, t, nil
}

// URI returns the provider URI of the view.
func (v *View) URI() string {
	return v.handle.Path() + "?type=" + v.typ.String()
}

// FeatureType returns the type of object the view presents.
func (v *View) FeatureType() FeatureType { return v.typ }

// Store returns the shared store behind the view.
func (v *View) Store() *Store { return v.store }

// Capabilities returns the editing operations the view supports.
func (v *View) Capabilities() Capability {
	return CapAddFeatures | CapDeleteFeatures | CapChangeAttributeValues
}

// Fields returns the attribute table for the view's feature type.
func (v *View) Fields() []Field {
	out := make([]Field, len(v.fields))
	copy(out, v.fields)
	return out
}

// FieldIndex returns the index of the named field, or -1.
func (v *View) FieldIndex(name string) int { return FieldIndex(v.fields, name) }

// FeatureCount returns the number of objects of the view's type.
func (v *View) FeatureCount() int {
	if v.closed.Load() {
		return 0
	}
	return v.store.Count(v.typ)
}

// Extent returns the extent of all data in the backing file, across every
// feature type.
func (v *View) Extent() Bounds {
	if v.closed.Load() {
		return EmptyBounds()
	}
	return v.store.Extent()
}

// GeometryType returns Point for waypoints and LineString otherwise.
func (v *View) GeometryType() GeometryType { return v.typ.GeometryType() }

// DefaultValue returns the value a new feature gets for field index i when
// it leaves the field nil. Only the source field has a default.
func (v *View) DefaultValue(i int) any {
	if i < 0 || i >= len(v.fields) {
		return nil
	}
	if v.fields[i].Attribute == AttrSource {
		return v.source
	}
	return nil
}

// GetFeatures returns an iterator over the features matching req.
func (v *View) GetFeatures(req FeatureRequest) *FeatureIterator {
	if v.closed.Load() {
		return &FeatureIterator{done: true}
	}
	return newFeatureIterator(v.store, v.typ, v.fields, req)
}

// AddFeatures adds features and rewrites the file, returning the new ids in
// input order. If the rewrite fails and the change was rolled back no ids
// are returned.
//
// Every geometry is checked before anything changes: a geometry of the
// wrong kind, or with a vertex outside ±90 latitude / ±180 longitude,
// yields a *GeometryError and no feature is added. Tracks accept
// an orb.MultiLineString as one segment per line.
func (v *View) AddFeatures(features []Feature) ([]int64, error) {
	if v.closed.Load() {
		return nil, ErrStoreClosed
	}
	for _, f := range features {
		if err := v.checkGeometry(f.Geometry); err != nil {
			return nil, err
		}
	}

	ids := make([]int64, 0, len(features))
	err := v.store.Edit(func(e *Editor) {
		for _, f := range features {
			ids = append(ids, v.add(e, f))
		}
	})
	var werr *WriteError
	if errors.As(err, &werr) && werr.RolledBack {
		return nil, err
	}
	return ids, err
}

// DeleteFeatures removes the features with the given ids and rewrites the
// file. Ids that do not exist are ignored.
func (v *View) DeleteFeatures(ids ...int64) error {
	if v.closed.Load() {
		return ErrStoreClosed
	}
	return v.store.Edit(func(e *Editor) {
		e.Remove(v.typ, ids...)
	})
}

// ChangeAttributeValues applies per-feature attribute changes, keyed by
// feature id and then field index, and rewrites the file. Unknown ids and
// field indexes are ignored, as are values that cannot be coerced to the
// field type.
func (v *View) ChangeAttributeValues(changes map[int64]AttributeMap) error {
	if v.closed.Load() {
		return ErrStoreClosed
	}
	return v.store.Edit(func(e *Editor) {
		for id, attrs := range changes {
			e.Mutate(v.typ, id, v.changes(attrs))
		}
	})
}

// Close releases the view's handle on the store. Further edits return
// ErrStoreClosed.
func (v *View) Close() {
	if v.closed.Swap(true) {
		return
	}
	v.handle.Release()
}

func (v *View) changes(attrs AttributeMap) Changes {
	ch := make(Changes, len(attrs))
	for i, val := range attrs {
		if i < 0 || i >= len(v.fields) {
			continue
		}
		ch[v.fields[i].Attribute] = val
	}
	return ch
}

func (v *View) checkGeometry(g orb.Geometry) error {
	ok := false
	switch v.typ {
	case WaypointType:
		_, ok = g.(orb.Point)
	case RouteType:
		_, ok = g.(orb.LineString)
	case TrackType:
		switch g.(type) {
		case orb.LineString, orb.MultiLineString:
			ok = true
		}
	}
	if !ok {
		return &GeometryError{Type: v.typ, Got: geometryKind(g)}
	}

	// Out-of-range positions would be written to a file that cannot be
	// read back
	var bad *orb.Point
	orbPoints(g, func(p orb.Point) {
		if bad == nil && !gpxfile.ValidCoordinate(p.Lat(), p.Lon()) {
			bad = &p
		}
	})
	if bad != nil {
		return &GeometryError{
			Type: v.typ,
			Got:  fmt.Sprintf("%s with position out of range (lon %g, lat %g)", geometryKind(g), bad.Lon(), bad.Lat()),
		}
	}
	return nil
}

// orbPoints calls fn for every vertex of g.
func orbPoints(g orb.Geometry, fn func(orb.Point)) {
	switch g := g.(type) {
	case orb.Point:
		fn(g)
	case orb.LineString:
		for _, p := range g {
			fn(p)
		}
	case orb.MultiLineString:
		for _, ls := range g {
			for _, p := range ls {
				fn(p)
			}
		}
	}
}

// add converts f to a domain object and adds it. The geometry has already
// been checked.
func (v *View) add(e *Editor, f Feature) int64 {
	attrs := make(Changes, len(v.fields))
	for i, field := range v.fields {
		val := f.Attribute(i)
		if val == nil {
			val = v.DefaultValue(i)
		}
		if val != nil {
			attrs[field.Attribute] = val
		}
	}

	switch v.typ {
	case WaypointType:
		p := f.Geometry.(orb.Point)
		w := Waypoint{Lat: p.Lat(), Lon: p.Lon()}
		for attr, val := range attrs {
			if !applyCommon(&w.Object, attr, val) {
				applyWaypoint(&w, attr, val)
			}
		}
		return e.AddWaypoint(w)

	case RouteType:
		r := NewRoute(routePoints(f.Geometry.(orb.LineString)))
		for attr, val := range attrs {
			if !applyCommon(&r.Object, attr, val) {
				applyNumber(&r.Number, attr, val)
			}
		}
		return e.AddRoute(r)

	default:
		var lines orb.MultiLineString
		switch g := f.Geometry.(type) {
		case orb.LineString:
			lines = orb.MultiLineString{g}
		case orb.MultiLineString:
			lines = g
		}
		segments := make([]TrackSegment, len(lines))
		for i, ls := range lines {
			segments[i] = TrackSegment{Points: trackPoints(ls)}
		}
		t := NewTrack(segments)
		for attr, val := range attrs {
			if !applyCommon(&t.Object, attr, val) {
				applyNumber(&t.Number, attr, val)
			}
		}
		return e.AddTrack(t)
	}
}

func routePoints(ls orb.LineString) []RoutePoint {
	points := make([]RoutePoint, len(ls))
	for i, p := range ls {
		points[i] = RoutePoint{Lat: p.Lat(), Lon: p.Lon()}
	}
	return points
}

func trackPoints(ls orb.LineString) []TrackPoint {
	points := make([]TrackPoint, len(ls))
	for i, p := range ls {
		points[i] = TrackPoint{Lat: p.Lat(), Lon: p.Lon()}
	}
	return points
}
