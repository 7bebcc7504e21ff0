// Package babel builds GPSBabel argument vectors for file conversion and
// device transfer.
//
// Nothing here runs GPSBabel. A Format turns (tool, feature type, input,
// output) into an argv slice; an empty slice means the format does not
// support the request.
package babel

import (
	"strings"
	"unicode"

	"github.com/beetlebugorg/gpsdata/pkg/gpx"
)

// Format converts GPS data between GPX and some other representation.
type Format interface {
	// Name returns the display name of the format.
	Name() string

	// Capabilities returns the feature types and directions supported.
	Capabilities() Capabilities

	// ImportCommand returns the argv that converts in (the format) to out
	// (GPX), or nil if importing t is unsupported.
	ImportCommand(tool string, t gpx.FeatureType, in, out string) []string

	// ExportCommand returns the argv that converts in (GPX) to out (the
	// format), or nil if exporting t is unsupported.
	ExportCommand(tool string, t gpx.FeatureType, in, out string) []string
}

// TypeArgument returns the GPSBabel flag selecting feature type t: "-w",
// "-r" or "-t". Unknown types yield "".
func TypeArgument(t gpx.FeatureType) string {
	switch t {
	case gpx.WaypointType:
		return "-w"
	case gpx.RouteType:
		return "-r"
	case gpx.TrackType:
		return "-t"
	}
	return ""
}

// quote wraps s in double quotes when it contains whitespace, escaping
// any double quote inside it with a backslash. The result is always a
// single argv element.
func quote(s string) string {
	if strings.IndexFunc(s, unicode.IsSpace) < 0 {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// SimpleImportFormat is a file format GPSBabel reads with "-i <id>".
// It supports import only.
type SimpleImportFormat struct {
	name string
	id   string
	caps Capabilities
}

// NewSimpleImportFormat creates an import-only format. Import is always
// added to caps and Export always removed.
func NewSimpleImportFormat(name, id string, caps Capabilities) *SimpleImportFormat {
	return &SimpleImportFormat{
		name: name,
		id:   id,
		caps: (caps | Import) &^ Export,
	}
}

// Name returns the display name.
func (f *SimpleImportFormat) Name() string { return f.name }

// Identifier returns the GPSBabel format identifier passed to -i.
func (f *SimpleImportFormat) Identifier() string { return f.id }

// Capabilities returns the format's capabilities.
func (f *SimpleImportFormat) Capabilities() Capabilities { return f.caps }

// ImportCommand returns [tool, typeArg, "-i", id, "-o", "gpx", in, out].
func (f *SimpleImportFormat) ImportCommand(tool string, t gpx.FeatureType, in, out string) []string {
	if !f.caps.CanImport(t) {
		return nil
	}
	return []string{
		tool,
		TypeArgument(t),
		"-i",
		f.id,
		"-o",
		"gpx",
		quote(in),
		quote(out),
	}
}

// ExportCommand always returns nil.
func (f *SimpleImportFormat) ExportCommand(string, gpx.FeatureType, string, string) []string {
	return nil
}
