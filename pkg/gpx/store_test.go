package gpx

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aarondl/opt/omit"
	"github.com/google/go-cmp/cmp"

	"github.com/beetlebugorg/gpsdata/internal/gpxfile"
)

func TestStoreLoad(t *testing.T) {
	s := openStore(t, NewRegistry(DefaultOptions()), copyFixture(t, "sample.gpx"))

	if got := s.Count(WaypointType); got != 3 {
		t.Errorf("waypoints = %d, want 3", got)
	}
	if got := s.Count(RouteType); got != 1 {
		t.Errorf("routes = %d, want 1", got)
	}
	if got := s.Count(TrackType); got != 1 {
		t.Errorf("tracks = %d, want 1", got)
	}

	// Ids are assigned 0..n-1 in file order per collection
	for i, w := range s.Waypoints() {
		if w.ID != int64(i) {
			t.Errorf("waypoint %d has id %d", i, w.ID)
		}
	}

	origin, ok := s.Waypoint(0)
	if !ok {
		t.Fatal("waypoint 0 not found")
	}
	if ele, ok := origin.Elevation.Get(); !ok || ele != 12.5 {
		t.Errorf("elevation = %v, %v; want 12.5, true", ele, ok)
	}
	if origin.Symbol != "Flag" || origin.Comment != "start here" {
		t.Errorf("origin = %+v", origin)
	}

	middle, _ := s.Waypoint(1)
	if middle.Elevation.IsValue() {
		t.Error("middle waypoint should have no elevation")
	}
	if middle.URL != "https://example.com/middle" || middle.URLName != "Middle page" {
		t.Errorf("link not folded into url: %q %q", middle.URL, middle.URLName)
	}

	rte, _ := s.Route(0)
	if n, ok := rte.Number.Get(); !ok || n != 3 {
		t.Errorf("route number = %v, %v; want 3, true", n, ok)
	}

	trk, _ := s.Track(0)
	if len(trk.Segments()) != 2 || trk.PointCount() != 3 {
		t.Errorf("track has %d segments, %d points; want 2, 3", len(trk.Segments()), trk.PointCount())
	}

	want := Bounds{MinLon: -30, MaxLon: 20, MinLat: -1, MaxLat: 30}
	if got := s.Extent(); got != want {
		t.Errorf("Extent() = %+v, want %+v", got, want)
	}
}

func TestStoreEmptyExtent(t *testing.T) {
	s := openStore(t, NewRegistry(DefaultOptions()), writeGPX(t, emptyGPX))

	if !s.Extent().IsEmpty() {
		t.Errorf("empty store extent = %+v, want empty", s.Extent())
	}

	id := s.AddRoute(NewRoute(nil))
	if id != 0 {
		t.Errorf("first route id = %d, want 0", id)
	}
	if !s.Extent().IsEmpty() {
		t.Error("a route without points should not grow the extent")
	}
}

func TestStoreIDsNeverReused(t *testing.T) {
	s := openStore(t, NewRegistry(DefaultOptions()), copyFixture(t, "sample.gpx"))

	id := s.AddWaypoint(Waypoint{Lat: 1, Lon: 1})
	if id != 3 {
		t.Fatalf("new waypoint id = %d, want 3", id)
	}

	s.RemoveWaypoints(id)
	if next := s.AddWaypoint(Waypoint{Lat: 2, Lon: 2}); next != 4 {
		t.Errorf("id after removal = %d, want 4", next)
	}

	// Collections are independent
	if rid := s.AddRoute(NewRoute([]RoutePoint{{Lat: 0, Lon: 0}})); rid != 1 {
		t.Errorf("new route id = %d, want 1", rid)
	}
}

func TestStoreRemoveRecomputesExtent(t *testing.T) {
	s := openStore(t, NewRegistry(DefaultOptions()), copyFixture(t, "sample.gpx"))

	s.RemoveTracks(0)
	want := Bounds{MinLon: 0, MaxLon: 20, MinLat: -1, MaxLat: 20}
	if got := s.Extent(); got != want {
		t.Errorf("Extent() after removing track = %+v, want %+v", got, want)
	}

	// Removing an absent id is a no-op
	s.RemoveTracks(0, 42)
	if got := s.Extent(); got != want {
		t.Errorf("Extent() changed after no-op removal: %+v", got)
	}

	s.RemoveWaypoints(0, 1, 2)
	s.RemoveRoutes(0)
	if !s.Extent().IsEmpty() {
		t.Errorf("Extent() of emptied store = %+v, want empty", s.Extent())
	}
}

func TestStoreMutate(t *testing.T) {
	s := openStore(t, NewRegistry(DefaultOptions()), copyFixture(t, "sample.gpx"))

	ok := s.Mutate(WaypointType, 0, Changes{
		AttrName:      "Renamed",
		AttrElevation: "99.5",
		AttrNumber:    7, // does not apply to waypoints
	})
	if !ok {
		t.Fatal("Mutate(waypoint 0) = false")
	}
	w, _ := s.Waypoint(0)
	if w.Name != "Renamed" {
		t.Errorf("name = %q, want Renamed", w.Name)
	}
	if ele, _ := w.Elevation.Get(); ele != 99.5 {
		t.Errorf("elevation = %v, want 99.5", ele)
	}

	// Values that cannot be coerced leave the attribute unchanged
	s.Mutate(WaypointType, 0, Changes{AttrElevation: "high", AttrSymbol: nil})
	w, _ = s.Waypoint(0)
	if ele, _ := w.Elevation.Get(); ele != 99.5 {
		t.Errorf("elevation after bad value = %v, want 99.5", ele)
	}
	if w.Symbol != "" {
		t.Errorf("nil symbol should clear it, got %q", w.Symbol)
	}

	s.Mutate(RouteType, 0, Changes{AttrNumber: "12", AttrComment: 42})
	r, _ := s.Route(0)
	if n, _ := r.Number.Get(); n != 12 {
		t.Errorf("route number = %d, want 12", n)
	}
	if r.Comment != "42" {
		t.Errorf("route comment = %q, want \"42\"", r.Comment)
	}

	// Each value is applied over a prior number of 5; values that do not
	// coerce leave it at 5
	numbers := []struct {
		in   any
		want int
	}{
		{"010", 10},
		{"09", 9},
		{" 42 ", 42},
		{"6.0", 6},
		{3.7, 5},   // not a whole number
		{"3.7", 5}, // not a whole number
		{"0x10", 5},
		{"abc", 5},
		{nil, 5},
		{int64(8), 8},
		{float32(2), 2},
	}
	for _, tt := range numbers {
		s.Mutate(RouteType, 0, Changes{AttrNumber: 5})
		s.Mutate(RouteType, 0, Changes{AttrNumber: tt.in})
		r, _ := s.Route(0)
		if n, ok := r.Number.Get(); !ok || n != tt.want {
			t.Errorf("number after %#v = %d, %v; want %d", tt.in, n, ok, tt.want)
		}
	}

	if s.Mutate(TrackType, 5, Changes{AttrName: "x"}) {
		t.Error("Mutate of missing track should return false")
	}
}

func TestStoreRoundTrip(t *testing.T) {
	s := openStore(t, NewRegistry(DefaultOptions()), copyFixture(t, "sample.gpx"))
	s.AddTrack(NewTrack([]TrackSegment{{Points: []TrackPoint{{Lat: -45.25, Lon: 170.125}}}}))

	data, err := s.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	doc, err := gpxfile.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode serialized store: %v", err)
	}
	reloaded := newStore(s.Path(), doc, DefaultOptions())

	opts := cmp.AllowUnexported(Route{}, Track{}, omit.Val[float64]{}, omit.Val[int]{})
	if diff := cmp.Diff(s.Waypoints(), reloaded.Waypoints(), opts); diff != "" {
		t.Errorf("waypoints mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(s.Routes(), reloaded.Routes(), opts); diff != "" {
		t.Errorf("routes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(s.Tracks(), reloaded.Tracks(), opts); diff != "" {
		t.Errorf("tracks mismatch (-want +got):\n%s", diff)
	}
	if s.Extent() != reloaded.Extent() {
		t.Errorf("extent %+v != %+v", reloaded.Extent(), s.Extent())
	}
}

func TestStoreEditRewritesFile(t *testing.T) {
	path := copyFixture(t, "sample.gpx")
	s := openStore(t, NewRegistry(DefaultOptions()), path)

	var id int64
	err := s.Edit(func(e *Editor) {
		id = e.AddWaypoint(Waypoint{Object: Object{Name: "Summit"}, Lat: 46.5, Lon: 8.25})
	})
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}

	doc, err := gpxfile.ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(doc.Waypoints) != 4 {
		t.Fatalf("file has %d waypoints, want 4", len(doc.Waypoints))
	}
	if got := doc.Waypoints[id].Name; got != "Summit" {
		t.Errorf("written waypoint name = %q, want Summit", got)
	}
}

func TestStoreWritePolicy(t *testing.T) {
	tests := []struct {
		policy         WritePolicy
		wantCount      int
		wantRolledBack bool
	}{
		{WriteBestEffort, 4, false},
		{WriteTransactional, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "gone")
			if err := os.Mkdir(dir, 0o755); err != nil {
				t.Fatal(err)
			}
			data, _ := os.ReadFile(filepath.Join("testdata", "sample.gpx"))
			path := filepath.Join(dir, "data.gpx")
			if err := os.WriteFile(path, data, 0o644); err != nil {
				t.Fatal(err)
			}

			opts := DefaultOptions()
			opts.WritePolicy = tt.policy
			s := openStore(t, NewRegistry(opts), path)
			before := s.Extent()

			// Make every rewrite fail
			if err := os.RemoveAll(dir); err != nil {
				t.Fatal(err)
			}

			err := s.Edit(func(e *Editor) {
				e.AddWaypoint(Waypoint{Lat: 80, Lon: 170})
			})
			var werr *WriteError
			if !errors.As(err, &werr) {
				t.Fatalf("Edit error = %v, want *WriteError", err)
			}
			if werr.RolledBack != tt.wantRolledBack {
				t.Errorf("RolledBack = %v, want %v", werr.RolledBack, tt.wantRolledBack)
			}
			if got := s.Count(WaypointType); got != tt.wantCount {
				t.Errorf("waypoints after failed write = %d, want %d", got, tt.wantCount)
			}
			if tt.wantRolledBack && s.Extent() != before {
				t.Errorf("extent not restored: %+v, want %+v", s.Extent(), before)
			}
		})
	}
}

func TestParseWritePolicy(t *testing.T) {
	for _, s := range []string{"", "best-effort", "transactional"} {
		if _, err := ParseWritePolicy(s); err != nil {
			t.Errorf("ParseWritePolicy(%q): %v", s, err)
		}
	}
	if _, err := ParseWritePolicy("eventually"); err == nil {
		t.Error("ParseWritePolicy(eventually) should fail")
	}
}

func TestObjectsCopyCallerPoints(t *testing.T) {
	points := []RoutePoint{{Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}}
	r := NewRoute(points)
	points[0] = RoutePoint{Lat: 50, Lon: 50}
	if got := r.Points()[0]; got != (RoutePoint{Lat: 1, Lon: 1}) {
		t.Errorf("route point changed with caller slice: %+v", got)
	}

	segPoints := []TrackPoint{{Lat: 3, Lon: 3}}
	segments := []TrackSegment{{Points: segPoints}}
	tr := NewTrack(segments)
	segPoints[0] = TrackPoint{Lat: 60, Lon: 60}
	segments[0] = TrackSegment{}
	if got := tr.Segments()[0].Points; len(got) != 1 || got[0] != (TrackPoint{Lat: 3, Lon: 3}) {
		t.Errorf("track points changed with caller slice: %+v", got)
	}
	if want := (Bounds{MinLon: 3, MaxLon: 3, MinLat: 3, MaxLat: 3}); tr.Bounds() != want {
		t.Errorf("track bounds = %+v, want %+v", tr.Bounds(), want)
	}

	// A stored route is not affected by later edits of the caller's slice
	s := openStore(t, NewRegistry(DefaultOptions()), copyFixture(t, "sample.gpx"))
	id := s.AddRoute(NewRoute(points))
	points[1] = RoutePoint{Lat: 70, Lon: 70}
	stored, _ := s.Route(id)
	if got := stored.Points()[1]; got != (RoutePoint{Lat: 2, Lon: 2}) {
		t.Errorf("stored route point = %+v, want {2 2}", got)
	}
}
