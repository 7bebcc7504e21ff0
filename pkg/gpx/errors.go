package gpx

import (
	"errors"
	"fmt"
)

// ErrStoreClosed is returned by operations on a store whose last handle has
// been released.
var ErrStoreClosed = errors.New("gpx: store closed")

// ParseError indicates the backing file is missing, unreadable, or not a
// valid GPX document. No store is created when it is returned.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// WriteError indicates the backing file could not be rewritten after an
// in-memory change.
//
// RolledBack reports whether the in-memory change was undone. It is only
// true under WriteTransactional; under WriteBestEffort memory and disk
// differ until the next successful write.
type WriteError struct {
	Path       string
	Err        error
	RolledBack bool
}

func (e *WriteError) Error() string {
	if e.RolledBack {
		return fmt.Sprintf("write %s (change rolled back): %v", e.Path, e.Err)
	}
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// GeometryError indicates a generic feature whose geometry does not match
// the geometry kind of the view it was added to, or has a position outside
// the valid WGS-84 range.
type GeometryError struct {
	Type FeatureType
	Got  string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("invalid geometry for %s feature: %s", e.Type, e.Got)
}

// URIError indicates a malformed provider URI.
type URIError struct {
	URI    string
	Reason string
}

func (e *URIError) Error() string {
	return fmt.Sprintf("bad uri %q: %s", e.URI, e.Reason)
}
