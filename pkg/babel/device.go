package babel

import (
	"github.com/beetlebugorg/gpsdata/pkg/gpx"
)

// Direction is the transfer direction of a device command.
type Direction int

const (
	// Download reads from the device into GPX (import).
	Download Direction = iota
	// Upload writes GPX to the device (export).
	Upload
)

// DeviceCommands holds the six authored command templates of a device. An
// empty string means the transfer is not supported.
type DeviceCommands struct {
	WaypointDownload string `yaml:"wptdownload"`
	WaypointUpload   string `yaml:"wptupload"`
	RouteDownload    string `yaml:"rtedownload"`
	RouteUpload      string `yaml:"rteupload"`
	TrackDownload    string `yaml:"trkdownload"`
	TrackUpload      string `yaml:"trkupload"`
}

// DeviceFormat transfers GPS data to and from a device using per-device
// command templates.
//
// Templates are parsed once by NewDeviceFormat. A DeviceFormat is immutable
// and safe for concurrent use.
//
// Example:
//
//	dev := babel.NewDeviceFormat("eTrex", babel.DeviceCommands{
//	    WaypointDownload: "%babel -w -i garmin -f %in -o gpx -F %out",
//	})
//	argv := dev.ImportCommand("gpsbabel", gpx.WaypointType, "/dev/ttyUSB0", "out.gpx")
//	// [gpsbabel -w -i garmin -f /dev/ttyUSB0 -o gpx -F out.gpx]
type DeviceFormat struct {
	name      string
	templates [3][2]Template // [FeatureType][Direction]
	caps      Capabilities
}

// NewDeviceFormat parses the command templates of a device.
func NewDeviceFormat(name string, cmds DeviceCommands) *DeviceFormat {
	d := &DeviceFormat{name: name}
	d.templates[gpx.WaypointType][Download] = ParseTemplate(cmds.WaypointDownload)
	d.templates[gpx.WaypointType][Upload] = ParseTemplate(cmds.WaypointUpload)
	d.templates[gpx.RouteType][Download] = ParseTemplate(cmds.RouteDownload)
	d.templates[gpx.RouteType][Upload] = ParseTemplate(cmds.RouteUpload)
	d.templates[gpx.TrackType][Download] = ParseTemplate(cmds.TrackDownload)
	d.templates[gpx.TrackType][Upload] = ParseTemplate(cmds.TrackUpload)

	for _, ft := range gpx.FeatureTypes {
		if !d.templates[ft][Download].IsEmpty() {
			d.caps |= typeCapability(ft) | Import
		}
		if !d.templates[ft][Upload].IsEmpty() {
			d.caps |= typeCapability(ft) | Export
		}
	}
	return d
}

// Name returns the device name.
func (d *DeviceFormat) Name() string { return d.name }

// Capabilities is derived from which templates are configured. Because the
// bit set does not pair directions with types, use Template to check a
// specific (type, direction) combination.
func (d *DeviceFormat) Capabilities() Capabilities { return d.caps }

// Template returns the template for feature type t and direction dir.
func (d *DeviceFormat) Template(t gpx.FeatureType, dir Direction) Template {
	if t < gpx.WaypointType || t > gpx.TrackType || dir < Download || dir > Upload {
		return Template{}
	}
	return d.templates[t][dir]
}

// Commands returns the templates in authored form.
func (d *DeviceFormat) Commands() DeviceCommands {
	return DeviceCommands{
		WaypointDownload: d.templates[gpx.WaypointType][Download].String(),
		WaypointUpload:   d.templates[gpx.WaypointType][Upload].String(),
		RouteDownload:    d.templates[gpx.RouteType][Download].String(),
		RouteUpload:      d.templates[gpx.RouteType][Upload].String(),
		TrackDownload:    d.templates[gpx.TrackType][Download].String(),
		TrackUpload:      d.templates[gpx.TrackType][Upload].String(),
	}
}

// ImportCommand expands the download template for t, or returns nil if it
// is not configured.
func (d *DeviceFormat) ImportCommand(tool string, t gpx.FeatureType, in, out string) []string {
	return d.Template(t, Download).Expand(tool, t, in, out)
}

// ExportCommand expands the upload template for t, or returns nil if it is
// not configured.
func (d *DeviceFormat) ExportCommand(tool string, t gpx.FeatureType, in, out string) []string {
	return d.Template(t, Upload).Expand(tool, t, in, out)
}
