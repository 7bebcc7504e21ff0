package gpx

import (
	"cmp"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/aarondl/opt/omit"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/beetlebugorg/gpsdata/internal/gpxfile"
)

// Store holds the parsed contents of one GPX file: ordered collections of
// waypoints, routes and tracks plus the cached extent of all of them.
//
// A Store is obtained from a Registry and shared by every Handle (and every
// View) opened on the same path, so all of them see each other's changes
// immediately. Stores are safe for concurrent use: reads take a shared lock,
// and Edit holds an exclusive lock across the change, the serialization and
// the file rewrite.
//
// Objects are addressed by (FeatureType, id). Ids are unique within a
// collection, assigned in increasing order and never reused, so collection
// order is id order.
type Store struct {
	mu     sync.RWMutex
	path   string
	opts   Options
	log    *zap.Logger
	closed bool

	waypoints []Waypoint
	routes    []Route
	tracks    []Track
	nextID    [3]int64 // indexed by FeatureType
	extent    Bounds
	rev       uint64 // bumped on every membership change

	idxMu   sync.Mutex
	indexes [3]*spatialIndex
}

// Changes maps attributes to new values for Store.Mutate.
//
// Values are coerced to the attribute's type on a best-effort basis. A
// value that cannot be coerced leaves the attribute unchanged.
type Changes map[Attribute]any

func newStore(path string, doc *gpxfile.Document, opts Options) *Store {
	s := &Store{
		path:   path,
		opts:   opts,
		log:    opts.Logger.With(zap.String("path", path)),
		extent: EmptyBounds(),
	}
	if doc != nil {
		s.load(doc)
	}
	return s
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Extent returns the bounding box of every waypoint, route and track in
// the store. An empty store returns EmptyBounds().
func (s *Store) Extent() Bounds {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.extent
}

// Count returns the number of objects of the given type.
func (s *Store) Count(t FeatureType) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch t {
	case WaypointType:
		return len(s.waypoints)
	case RouteType:
		return len(s.routes)
	case TrackType:
		return len(s.tracks)
	}
	return 0
}

// Waypoints returns a copy of all waypoints in id order.
func (s *Store) Waypoints() []Waypoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.waypoints)
}

// Routes returns a copy of all routes in id order.
func (s *Store) Routes() []Route {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.routes)
}

// Tracks returns a copy of all tracks in id order.
func (s *Store) Tracks() []Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tracks)
}

// Waypoint returns the waypoint with the given id.
func (s *Store) Waypoint(id int64) (Waypoint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i, ok := findWaypoint(s.waypoints, id); ok {
		return s.waypoints[i], true
	}
	return Waypoint{}, false
}

// Route returns the route with the given id.
func (s *Store) Route(id int64) (Route, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i, ok := findRoute(s.routes, id); ok {
		return s.routes[i], true
	}
	return Route{}, false
}

// Track returns the track with the given id.
func (s *Store) Track(id int64) (Track, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i, ok := findTrack(s.tracks, id); ok {
		return s.tracks[i], true
	}
	return Track{}, false
}

// AddWaypoint appends w with the next waypoint id and returns that id.
//
// The file is not rewritten; use Edit to change and persist in one step.
// Returns -1 if the store is closed.
func (s *Store) AddWaypoint(w Waypoint) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return -1
	}
	return s.addWaypoint(w)
}

// AddRoute appends r with the next route id and returns that id.
func (s *Store) AddRoute(r Route) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return -1
	}
	return s.addRoute(r)
}

// AddTrack appends t with the next track id and returns that id.
func (s *Store) AddTrack(t Track) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return -1
	}
	return s.addTrack(t)
}

// RemoveWaypoints removes the waypoints with the given ids. Ids not present
// are ignored.
func (s *Store) RemoveWaypoints(ids ...int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(WaypointType, ids)
}

// RemoveRoutes removes the routes with the given ids. Ids not present are
// ignored.
func (s *Store) RemoveRoutes(ids ...int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(RouteType, ids)
}

// RemoveTracks removes the tracks with the given ids. Ids not present are
// ignored.
func (s *Store) RemoveTracks(ids ...int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(TrackType, ids)
}

// Mutate applies attribute changes to the object (t, id).
//
// Attributes that do not apply to t are ignored. Returns false if no such
// object exists.
func (s *Store) Mutate(t FeatureType, id int64, changes Changes) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutate(t, id, changes)
}

// Serialize renders the full store contents as a GPX document.
func (s *Store) Serialize() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return gpxfile.Marshal(s.document())
}

// Editor performs changes inside Store.Edit. It must not be retained after
// the edit function returns.
type Editor struct {
	s *Store
}

func (e *Editor) AddWaypoint(w Waypoint) int64 { return e.s.addWaypoint(w) }
func (e *Editor) AddRoute(r Route) int64       { return e.s.addRoute(r) }
func (e *Editor) AddTrack(t Track) int64       { return e.s.addTrack(t) }

// Remove removes objects of type t by id; absent ids are ignored.
func (e *Editor) Remove(t FeatureType, ids ...int64) { e.s.remove(t, ids) }

// Mutate applies attribute changes to the object (t, id).
func (e *Editor) Mutate(t FeatureType, id int64, changes Changes) bool {
	return e.s.mutate(t, id, changes)
}

// Edit runs fn with exclusive access to the store, then rewrites the whole
// backing file.
//
// The file is rewritten even when fn changed nothing. If the rewrite fails a
// *WriteError is returned; whether the change survives in memory depends on
// the store's WritePolicy.
func (s *Store) Edit(fn func(e *Editor)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	var snap *snapshot
	if s.opts.WritePolicy == WriteTransactional {
		sn := s.snapshot()
		snap = &sn
	}

	fn(&Editor{s: s})

	err := s.writeLocked()
	if err == nil {
		fileRewrites.WithLabelValues("ok").Inc()
		return nil
	}

	fileRewrites.WithLabelValues("error").Inc()
	werr := &WriteError{Path: s.path, Err: err}
	if snap != nil {
		s.restore(*snap)
		werr.RolledBack = true
	}
	s.log.Warn("rewrite failed",
		zap.Error(err),
		zap.Stringer("policy", s.opts.WritePolicy),
		zap.Bool("rolled_back", werr.RolledBack))
	return werr
}

// Save rewrites the backing file from the current contents.
func (s *Store) Save() error {
	return s.Edit(func(*Editor) {})
}

func (s *Store) writeLocked() error {
	data, err := gpxfile.Marshal(s.document())
	if err != nil {
		return err
	}
	if s.opts.WritePolicy != WriteTransactional {
		return os.WriteFile(s.path, data, 0o644)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

// close drops the contents. Called by the registry on last release.
func (s *Store) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.waypoints = nil
	s.routes = nil
	s.tracks = nil
	s.extent = EmptyBounds()
	s.rev++
}

func (s *Store) addWaypoint(w Waypoint) int64 {
	w.ID = s.nextID[WaypointType]
	s.nextID[WaypointType]++
	s.waypoints = append(s.waypoints, w)
	s.extent = s.extent.Union(w.Bounds())
	s.rev++
	return w.ID
}

func (s *Store) addRoute(r Route) int64 {
	r.ID = s.nextID[RouteType]
	s.nextID[RouteType]++
	s.routes = append(s.routes, r)
	s.extent = s.extent.Union(r.Bounds())
	s.rev++
	return r.ID
}

func (s *Store) addTrack(t Track) int64 {
	t.ID = s.nextID[TrackType]
	s.nextID[TrackType]++
	s.tracks = append(s.tracks, t)
	s.extent = s.extent.Union(t.Bounds())
	s.rev++
	return t.ID
}

func (s *Store) remove(t FeatureType, ids []int64) {
	if len(ids) == 0 {
		return
	}
	set := lo.SliceToMap(ids, func(id int64) (int64, struct{}) { return id, struct{}{} })

	switch t {
	case WaypointType:
		s.waypoints = lo.Reject(s.waypoints, func(w Waypoint, _ int) bool { _, ok := set[w.ID]; return ok })
	case RouteType:
		s.routes = lo.Reject(s.routes, func(r Route, _ int) bool { _, ok := set[r.ID]; return ok })
	case TrackType:
		s.tracks = lo.Reject(s.tracks, func(tr Track, _ int) bool { _, ok := set[tr.ID]; return ok })
	default:
		return
	}
	s.recomputeExtent()
	s.rev++
}

func (s *Store) recomputeExtent() {
	b := EmptyBounds()
	for i := range s.waypoints {
		b = b.Union(s.waypoints[i].Bounds())
	}
	for i := range s.routes {
		b = b.Union(s.routes[i].Bounds())
	}
	for i := range s.tracks {
		b = b.Union(s.tracks[i].Bounds())
	}
	s.extent = b
}

func (s *Store) mutate(t FeatureType, id int64, changes Changes) bool {
	switch t {
	case WaypointType:
		i, ok := findWaypoint(s.waypoints, id)
		if !ok {
			return false
		}
		w := &s.waypoints[i]
		for attr, v := range changes {
			if !applyCommon(&w.Object, attr, v) {
				applyWaypoint(w, attr, v)
			}
		}
	case RouteType:
		i, ok := findRoute(s.routes, id)
		if !ok {
			return false
		}
		r := &s.routes[i]
		for attr, v := range changes {
			if !applyCommon(&r.Object, attr, v) {
				applyNumber(&r.Number, attr, v)
			}
		}
	case TrackType:
		i, ok := findTrack(s.tracks, id)
		if !ok {
			return false
		}
		tr := &s.tracks[i]
		for attr, v := range changes {
			if !applyCommon(&tr.Object, attr, v) {
				applyNumber(&tr.Number, attr, v)
			}
		}
	default:
		return false
	}
	return true
}

type snapshot struct {
	waypoints []Waypoint
	routes    []Route
	tracks    []Track
	nextID    [3]int64
	extent    Bounds
}

// snapshot copies the collections. Point slices are shared: they are only
// ever replaced, never modified in place.
func (s *Store) snapshot() snapshot {
	return snapshot{
		waypoints: slices.Clone(s.waypoints),
		routes:    slices.Clone(s.routes),
		tracks:    slices.Clone(s.tracks),
		nextID:    s.nextID,
		extent:    s.extent,
	}
}

func (s *Store) restore(sn snapshot) {
	s.waypoints = sn.waypoints
	s.routes = sn.routes
	s.tracks = sn.tracks
	s.nextID = sn.nextID
	s.extent = sn.extent
	s.rev++
}

func findWaypoint(ws []Waypoint, id int64) (int, bool) {
	return slices.BinarySearchFunc(ws, id, func(w Waypoint, id int64) int { return cmp.Compare(w.ID, id) })
}

func findRoute(rs []Route, id int64) (int, bool) {
	return slices.BinarySearchFunc(rs, id, func(r Route, id int64) int { return cmp.Compare(r.ID, id) })
}

func findTrack(ts []Track, id int64) (int, bool) {
	return slices.BinarySearchFunc(ts, id, func(t Track, id int64) int { return cmp.Compare(t.ID, id) })
}

// load populates an empty store from a parsed document. Ids are assigned
// 0..n-1 in file order, so new ids continue after the highest parsed id.
func (s *Store) load(doc *gpxfile.Document) {
	for _, w := range doc.Waypoints {
		wpt := Waypoint{
			Object: objectFrom(w.Descriptive),
			Lat:    w.Lat,
			Lon:    w.Lon,
			Symbol: w.Symbol,
		}
		if w.Ele != nil {
			wpt.Elevation = omit.From(*w.Ele)
		}
		s.addWaypoint(wpt)
	}

	for _, r := range doc.Routes {
		points := make([]RoutePoint, len(r.Points))
		for i, p := range r.Points {
			points[i] = RoutePoint{Lat: p.Lat, Lon: p.Lon}
		}
		rte := NewRoute(points)
		rte.Object = objectFrom(r.Descriptive)
		if r.Number != nil {
			rte.Number = omit.From(*r.Number)
		}
		s.addRoute(rte)
	}

	for _, t := range doc.Tracks {
		segments := make([]TrackSegment, len(t.Segments))
		for i, seg := range t.Segments {
			points := make([]TrackPoint, len(seg))
			for j, p := range seg {
				points[j] = TrackPoint{Lat: p.Lat, Lon: p.Lon}
			}
			segments[i] = TrackSegment{Points: points}
		}
		trk := NewTrack(segments)
		trk.Object = objectFrom(t.Descriptive)
		if t.Number != nil {
			trk.Number = omit.From(*t.Number)
		}
		s.addTrack(trk)
	}
}

func (s *Store) document() *gpxfile.Document {
	doc := &gpxfile.Document{
		Creator:   s.opts.Creator,
		Waypoints: make([]gpxfile.Waypoint, 0, len(s.waypoints)),
		Routes:    make([]gpxfile.Route, 0, len(s.routes)),
		Tracks:    make([]gpxfile.Track, 0, len(s.tracks)),
	}

	for _, w := range s.waypoints {
		wpt := gpxfile.Waypoint{
			Descriptive: descriptiveFrom(w.Object),
			Lat:         w.Lat,
			Lon:         w.Lon,
			Symbol:      w.Symbol,
		}
		if ele, ok := w.Elevation.Get(); ok {
			wpt.Ele = &ele
		}
		doc.Waypoints = append(doc.Waypoints, wpt)
	}

	for _, r := range s.routes {
		rte := gpxfile.Route{
			Descriptive: descriptiveFrom(r.Object),
			Points:      make([]gpxfile.Point, len(r.points)),
		}
		for i, p := range r.points {
			rte.Points[i] = gpxfile.Point{Lat: p.Lat, Lon: p.Lon}
		}
		if n, ok := r.Number.Get(); ok {
			rte.Number = &n
		}
		doc.Routes = append(doc.Routes, rte)
	}

	for _, t := range s.tracks {
		trk := gpxfile.Track{
			Descriptive: descriptiveFrom(t.Object),
			Segments:    make([][]gpxfile.Point, len(t.segments)),
		}
		for i, seg := range t.segments {
			points := make([]gpxfile.Point, len(seg.Points))
			for j, p := range seg.Points {
				points[j] = gpxfile.Point{Lat: p.Lat, Lon: p.Lon}
			}
			trk.Segments[i] = points
		}
		if n, ok := t.Number.Get(); ok {
			trk.Number = &n
		}
		doc.Tracks = append(doc.Tracks, trk)
	}

	return doc
}

func objectFrom(d gpxfile.Descriptive) Object {
	return Object{
		Name:        d.Name,
		Comment:     d.Comment,
		Description: d.Desc,
		Source:      d.Source,
		URL:         d.URL,
		URLName:     d.URLName,
	}
}

func descriptiveFrom(o Object) gpxfile.Descriptive {
	return gpxfile.Descriptive{
		Name:    o.Name,
		Comment: o.Comment,
		Desc:    o.Description,
		Source:  o.Source,
		URL:     o.URL,
		URLName: o.URLName,
	}
}
