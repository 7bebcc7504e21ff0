package babel

// BuiltinImporters returns the file formats known without configuration,
// in display order.
func BuiltinImporters() []*SimpleImportFormat {
	return []*SimpleImportFormat{
		NewSimpleImportFormat("Shapefile", "shape", Waypoints|Routes|Tracks),
		NewSimpleImportFormat("Geocaching.com .loc", "geo", Waypoints),
		NewSimpleImportFormat("Magellan Mapsend", "mapsend", Waypoints|Routes|Tracks),
		NewSimpleImportFormat("Garmin PCX5", "pcx", Waypoints|Tracks),
		NewSimpleImportFormat("Garmin Mapsource", "mapsource", Waypoints|Routes|Tracks),
		NewSimpleImportFormat("GPSUtil", "gpsutil", Waypoints),
		NewSimpleImportFormat("Tab-separated values", "tabsep", Waypoints),
		NewSimpleImportFormat("Comma-separated values", "csv", Waypoints),
	}
}

// BuiltinDevices returns the devices used when none are configured.
func BuiltinDevices() []*DeviceFormat {
	return []*DeviceFormat{
		NewDeviceFormat("Garmin serial", DeviceCommands{
			WaypointDownload: "%babel -w -i garmin -o gpx %in %out",
			WaypointUpload:   "%babel -w -i gpx -o garmin %in %out",
			RouteDownload:    "%babel -r -i garmin -o gpx %in %out",
			RouteUpload:      "%babel -r -i gpx -o garmin %in %out",
			TrackDownload:    "%babel -t -i garmin -o gpx %in %out",
			TrackUpload:      "%babel -t -i gpx -o garmin %in %out",
		}),
	}
}

// FindImporter returns the built-in importer with the given display name or
// GPSBabel identifier.
func FindImporter(name string) (*SimpleImportFormat, bool) {
	for _, f := range BuiltinImporters() {
		if f.Name() == name || f.Identifier() == name {
			return f, true
		}
	}
	return nil, false
}
