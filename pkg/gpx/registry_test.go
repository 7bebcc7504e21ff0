package gpx

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestRegistrySharesStore(t *testing.T) {
	reg := NewRegistry(DefaultOptions())
	path := copyFixture(t, "sample.gpx")

	h1, err := reg.Open(path)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	// A different spelling of the same path resolves to the same store
	h2, err := reg.Open(filepath.Dir(path) + "/./" + filepath.Base(path))
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}

	if h1.Store() != h2.Store() {
		t.Fatal("handles on the same path should share a store")
	}
	if got := reg.Refs(path); got != 2 {
		t.Errorf("Refs = %d, want 2", got)
	}

	// Changes through one handle are visible through the other
	h1.Store().AddWaypoint(Waypoint{Lat: 1, Lon: 1})
	if got := h2.Store().Count(WaypointType); got != 4 {
		t.Errorf("count through second handle = %d, want 4", got)
	}

	h1.Release()
	h1.Release() // no-op
	if got := reg.Refs(path); got != 1 {
		t.Errorf("Refs after double release = %d, want 1", got)
	}
	if reg.Len() != 1 {
		t.Errorf("Len = %d, want 1", reg.Len())
	}

	store := h2.Store()
	h2.Release()
	if reg.Len() != 0 {
		t.Errorf("Len after last release = %d, want 0", reg.Len())
	}
	if id := store.AddWaypoint(Waypoint{}); id != -1 {
		t.Errorf("AddWaypoint on closed store = %d, want -1", id)
	}
	if err := store.Save(); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Save on closed store = %v, want ErrStoreClosed", err)
	}

	// The next open re-reads the file
	h3, err := reg.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer h3.Release()
	if h3.Store() == store {
		t.Error("reopen should create a new store")
	}
	if got := h3.Store().Count(WaypointType); got != 3 {
		t.Errorf("reopened count = %d, want 3 (unsaved add discarded)", got)
	}
}

func TestRegistryOpenErrors(t *testing.T) {
	reg := NewRegistry(DefaultOptions())

	_, err := reg.Open(filepath.Join(t.TempDir(), "missing.gpx"))
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Open(missing) = %v, want *ParseError", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ParseError should wrap fs.ErrNotExist, got %v", err)
	}

	bad := filepath.Join(t.TempDir(), "bad.gpx")
	if err := os.WriteFile(bad, []byte("<gpx><wpt lat="), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Open(bad); !errors.As(err, &perr) {
		t.Errorf("Open(malformed) = %v, want *ParseError", err)
	}

	outOfRange := writeGPX(t, `<gpx version="1.0"><wpt lat="95" lon="0"/></gpx>`)
	if _, err := reg.Open(outOfRange); !errors.As(err, &perr) {
		t.Errorf("Open(out of range) = %v, want *ParseError", err)
	}

	if reg.Len() != 0 {
		t.Errorf("failed opens left %d stores", reg.Len())
	}
}
