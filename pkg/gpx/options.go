package gpx

import (
	"fmt"

	"go.uber.org/zap"
)

// WritePolicy controls what happens to an in-memory change when rewriting
// the backing file fails.
type WritePolicy int

const (
	// WriteBestEffort keeps the in-memory change and truncates the file in
	// place. A failed write leaves memory and disk inconsistent until the
	// next successful write.
	WriteBestEffort WritePolicy = iota

	// WriteTransactional writes to a temporary file that replaces the
	// backing file on success, and rolls the in-memory change back on
	// failure.
	WriteTransactional
)

// String returns the configuration name of the policy.
func (p WritePolicy) String() string {
	switch p {
	case WriteTransactional:
		return "transactional"
	default:
		return "best-effort"
	}
}

// ParseWritePolicy parses "best-effort" or "transactional".
func ParseWritePolicy(s string) (WritePolicy, error) {
	switch s {
	case "", "best-effort":
		return WriteBestEffort, nil
	case "transactional":
		return WriteTransactional, nil
	}
	return 0, fmt.Errorf("unknown write policy %q", s)
}

// Options configures stores opened through a Registry.
type Options struct {
	// WritePolicy selects best-effort or transactional file rewrites.
	// Default: WriteBestEffort
	WritePolicy WritePolicy

	// Application is the name used in the default source attribute of new
	// features ("Digitized in <Application>").
	// Default: "gpsdata"
	Application string

	// Creator is written to the creator attribute of rewritten files.
	// Default: "gpsdata"
	Creator string

	// Logger receives registry and write diagnostics.
	// Default: no-op logger
	Logger *zap.Logger
}

// DefaultOptions returns options with defaults.
func DefaultOptions() Options {
	return Options{
		WritePolicy: WriteBestEffort,
		Application: "gpsdata",
		Creator:     "gpsdata",
		Logger:      zap.NewNop(),
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Application == "" {
		o.Application = def.Application
	}
	if o.Creator == "" {
		o.Creator = def.Creator
	}
	if o.Logger == nil {
		o.Logger = def.Logger
	}
	return o
}
