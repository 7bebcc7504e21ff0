// Package gpx provides an editable, file-backed store for GPS eXchange data.
//
// A Store holds the waypoints, routes and tracks of one GPX file. Stores are
// shared through a Registry so that every user of a path sees the same
// in-memory data, and every change made through a View is written back to
// the file immediately.
//
// # Basic Usage
//
//	reg := gpx.NewRegistry(gpx.DefaultOptions())
//
//	h, err := reg.Open("hike.gpx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer h.Release()
//
//	store := h.Store()
//	fmt.Printf("%d waypoints, extent %+v\n", store.Count(gpx.WaypointType), store.Extent())
//
// # Editing
//
// Store.Edit runs a change and rewrites the file while holding the store's
// exclusive lock:
//
//	err := store.Edit(func(e *gpx.Editor) {
//	    id := e.AddWaypoint(gpx.Waypoint{Lat: 51.5, Lon: -0.1})
//	    e.Mutate(gpx.WaypointType, id, gpx.Changes{gpx.AttrName: "Camp"})
//	})
//
// What happens to the in-memory change when the rewrite fails depends on
// Options.WritePolicy. WriteBestEffort keeps it; WriteTransactional rolls it
// back and reports WriteError.RolledBack.
//
// # Views
//
// A View exposes one feature type as generic features with an attribute
// table (see FieldsFor). Views are opened by path and type, or by URI:
//
//	view, err := gpx.OpenView(reg, "hike.gpx?type=track")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer view.Close()
//
//	bbox := gpx.Bounds{MinLon: -1, MaxLon: 0, MinLat: 51, MaxLat: 52}
//	it := view.GetFeatures(gpx.FeatureRequest{FilterRect: &bbox})
//	for f := range it.All() {
//	    fmt.Println(f.ID, f.Attributes[view.FieldIndex("name")])
//	}
//
// # Thread Safety
//
// Stores, registries and views are safe for concurrent use. A single
// FeatureIterator is not; use one per goroutine.
package gpx
