package gpx

import (
	"iter"

	"github.com/samber/lo"
)

// FeatureRequest selects which features an iterator produces and how much
// of each it materializes. The zero value requests every feature with all
// attributes and geometry.
type FeatureRequest struct {
	// Attributes lists the field indexes to fill. Nil means all fields;
	// fields not listed are nil in produced features.
	Attributes []int

	// NoGeometry skips building geometries.
	NoGeometry bool

	// FilterRect keeps only features whose bounds intersect the rectangle.
	FilterRect *Bounds

	// FilterIDs keeps only features with these ids.
	FilterIDs []int64

	// Limit caps the number of features produced when greater than zero.
	Limit int
}

// FeatureIterator produces the features selected by a FeatureRequest, one
// at a time, in ascending id order.
//
// Candidates are chosen when the iterator is created. Each call to Next
// reads the current state of the store, so features removed in the meantime
// are skipped and attribute changes are visible.
type FeatureIterator struct {
	store  *Store
	typ    FeatureType
	fields []Field
	want   []bool // per field index; nil means all
	noGeom bool
	limit  int

	ids      []int64
	pos      int
	produced int
	done     bool
}

func newFeatureIterator(s *Store, t FeatureType, fields []Field, req FeatureRequest) *FeatureIterator {
	it := &FeatureIterator{
		store:  s,
		typ:    t,
		fields: fields,
		noGeom: req.NoGeometry,
		limit:  req.Limit,
	}
	if req.Attributes != nil {
		it.want = make([]bool, len(fields))
		for _, i := range req.Attributes {
			if i >= 0 && i < len(fields) {
				it.want[i] = true
			}
		}
	}

	s.mu.RLock()
	if req.FilterRect != nil {
		it.ids = s.searchIDs(t, *req.FilterRect)
	} else {
		it.ids = s.idsLocked(t)
	}
	s.mu.RUnlock()

	if req.FilterIDs != nil {
		set := lo.SliceToMap(req.FilterIDs, func(id int64) (int64, struct{}) { return id, struct{}{} })
		it.ids = lo.Filter(it.ids, func(id int64, _ int) bool {
			_, ok := set[id]
			return ok
		})
	}
	return it
}

// Next returns the next feature. It returns false once the iterator is
// exhausted or closed, and keeps returning false after that.
func (it *FeatureIterator) Next() (Feature, bool) {
	if it.done {
		return Feature{}, false
	}
	if it.limit > 0 && it.produced >= it.limit {
		it.done = true
		return Feature{}, false
	}
	for it.pos < len(it.ids) {
		id := it.ids[it.pos]
		it.pos++
		if f, ok := it.store.feature(it.typ, id, it.fields, it.want, it.noGeom); ok {
			it.produced++
			return f, true
		}
	}
	it.done = true
	return Feature{}, false
}

// Close ends the iteration.
func (it *FeatureIterator) Close() {
	it.done = true
	it.ids = nil
}

// All returns an iterator over the remaining features. Breaking out of the
// loop closes the FeatureIterator.
func (it *FeatureIterator) All() iter.Seq[Feature] {
	return func(yield func(Feature) bool) {
		for {
			f, ok := it.Next()
			if !ok {
				return
			}
			if !yield(f) {
				it.Close()
				return
			}
		}
	}
}

// idsLocked returns all ids of type t in ascending order. The caller must
// hold s.mu.
func (s *Store) idsLocked(t FeatureType) []int64 {
	switch t {
	case WaypointType:
		return lo.Map(s.waypoints, func(w Waypoint, _ int) int64 { return w.ID })
	case RouteType:
		return lo.Map(s.routes, func(r Route, _ int) int64 { return r.ID })
	case TrackType:
		return lo.Map(s.tracks, func(t Track, _ int) int64 { return t.ID })
	}
	return nil
}

// feature materializes one object as a generic feature under the read lock.
func (s *Store) feature(t FeatureType, id int64, fields []Field, want []bool, noGeom bool) (Feature, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f := Feature{ID: id, Attributes: make([]any, len(fields))}
	var value func(Attribute) any

	switch t {
	case WaypointType:
		i, ok := findWaypoint(s.waypoints, id)
		if !ok {
			return Feature{}, false
		}
		w := &s.waypoints[i]
		if !noGeom {
			f.Geometry = w.Geometry()
		}
		value = func(a Attribute) any { return waypointValue(w, a) }
	case RouteType:
		i, ok := findRoute(s.routes, id)
		if !ok {
			return Feature{}, false
		}
		r := &s.routes[i]
		if !noGeom {
			f.Geometry = r.Geometry()
		}
		value = func(a Attribute) any { return routeValue(r, a) }
	case TrackType:
		i, ok := findTrack(s.tracks, id)
		if !ok {
			return Feature{}, false
		}
		tr := &s.tracks[i]
		if !noGeom {
			f.Geometry = tr.Geometry()
		}
		value = func(a Attribute) any { return trackValue(tr, a) }
	default:
		return Feature{}, false
	}

	for i, field := range fields {
		if want != nil && !want[i] {
			continue
		}
		f.Attributes[i] = value(field.Attribute)
	}
	return f, true
}
