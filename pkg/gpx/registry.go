package gpx

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/beetlebugorg/gpsdata/internal/gpxfile"
)

// Registry shares one Store per backing file among all of its users.
//
// The first Open of a path parses the file and creates the store. Later
// opens of the same path return a Handle on the same store and bump its
// reference count. When the last Handle is released the store is closed and
// the path is evicted, so a following Open re-reads the file.
//
// Example:
//
//	reg := gpx.NewRegistry(gpx.DefaultOptions())
//
//	h, err := reg.Open("/data/hike.gpx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer h.Release()
//
//	fmt.Printf("%d waypoints\n", h.Store().Count(gpx.WaypointType))
type Registry struct {
	opts    Options
	log     *zap.Logger
	entries map[string]*registryEntry
	mu      sync.Mutex
}

// registryEntry tracks a shared store and its users
type registryEntry struct {
	store    *Store
	refs     int
	openedAt time.Time
}

// DefaultRegistry is a process-wide registry using DefaultOptions.
var DefaultRegistry = NewRegistry(DefaultOptions())

// NewRegistry creates an empty registry. Stores it opens use opts.
func NewRegistry(opts Options) *Registry {
	opts = opts.withDefaults()
	return &Registry{
		opts:    opts,
		log:     opts.Logger.Named("registry"),
		entries: make(map[string]*registryEntry),
	}
}

// Options returns the options stores in this registry are opened with.
func (r *Registry) Options() Options { return r.opts }

// Open returns a handle on the store for path, parsing the file if no store
// for it is open yet.
//
// Paths are compared after conversion to a clean absolute path. A missing,
// unreadable or malformed file yields a *ParseError and leaves the registry
// unchanged.
func (r *Registry) Open(path string) (*Handle, error) {
	key, err := normalizePath(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.entries[key]; ok {
		entry.refs++
		r.log.Debug("reusing store", zap.String("path", key), zap.Int("refs", entry.refs))
		return &Handle{reg: r, key: key, store: entry.store}, nil
	}

	doc, err := gpxfile.ParseFile(key)
	if err != nil {
		r.log.Debug("open failed", zap.String("path", key), zap.Error(err))
		return nil, &ParseError{Path: key, Err: err}
	}

	store := newStore(key, doc, r.opts)
	r.entries[key] = &registryEntry{store: store, refs: 1, openedAt: time.Now()}
	openStores.Inc()

	r.log.Debug("opened store",
		zap.String("path", key),
		zap.Int("waypoints", len(doc.Waypoints)),
		zap.Int("routes", len(doc.Routes)),
		zap.Int("tracks", len(doc.Tracks)))

	return &Handle{reg: r, key: key, store: store}, nil
}

// Refs returns the number of unreleased handles on path, or 0 if no store
// is open for it.
func (r *Registry) Refs(path string) int {
	key, err := normalizePath(path)
	if err != nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.entries[key]; ok {
		return entry.refs
	}
	return 0
}

// Len returns the number of open stores.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) release(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[key]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs > 0 {
		r.log.Debug("released handle", zap.String("path", key), zap.Int("refs", entry.refs))
		return
	}

	delete(r.entries, key)
	entry.store.close()
	openStores.Dec()
	r.log.Debug("evicted store",
		zap.String("path", key),
		zap.Duration("open_for", time.Since(entry.openedAt)))
}

func normalizePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	return filepath.Clean(abs), nil
}

// Handle is one reference to a shared Store. Release it when done.
type Handle struct {
	reg   *Registry
	key   string
	store *Store
	once  sync.Once
}

// Store returns the shared store.
func (h *Handle) Store() *Store { return h.store }

// Path returns the normalized backing file path.
func (h *Handle) Path() string { return h.key }

// Release drops this reference. Releasing a handle more than once has no
// further effect.
func (h *Handle) Release() {
	h.once.Do(func() { h.reg.release(h.key) })
}
