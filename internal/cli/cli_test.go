package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t       *testing.T
	devices string
}

func newHarness(t *testing.T) *harness {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	return &harness{t: t, devices: filepath.Join(t.TempDir(), "devices.yaml")}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--devices", h.devices}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, "gpxtool %s\n%s", strings.Join(args, " "), out)
	return out
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.gpx")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestWaypointEditing(t *testing.T) {
	h := newHarness(t)
	path := writeFile(t, `<gpx version="1.0" creator="test"></gpx>`)

	out := h.mustRun("info", path)
	assert.Contains(t, out, "waypoints: 0")
	assert.Contains(t, out, "extent:    empty")

	out = h.mustRun("add-waypoint", path, "--lat", "10", "--lon", "20", "--name", "Camp", "--ele", "5", "--symbol", "flag")
	assert.Equal(t, "0\n", out)

	out = h.mustRun("set", path, "--id", "0", "elevation=7", "url-name=Home")
	assert.Empty(t, out)

	out = h.mustRun("features", path)
	var fc struct {
		Features []struct {
			ID         float64        `json:"id"`
			Geometry   map[string]any `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &fc))
	require.Len(t, fc.Features, 1)
	f := fc.Features[0]
	assert.Equal(t, "Point", f.Geometry["type"])
	assert.Equal(t, "Camp", f.Properties["name"])
	assert.Equal(t, 7.0, f.Properties["elevation"])
	assert.Equal(t, "flag", f.Properties["symbol"])
	assert.Equal(t, "Home", f.Properties["url name"])
	assert.Equal(t, "Digitized in gpxtool", f.Properties["source"])

	out = h.mustRun("info", path)
	assert.Contains(t, out, "waypoints: 1")
	assert.Contains(t, out, "lon 20..20 lat 10..10")

	h.mustRun("delete", path, "--id", "0")
	out = h.mustRun("info", path)
	assert.Contains(t, out, "waypoints: 0")
}

func TestFeaturesFilter(t *testing.T) {
	h := newHarness(t)
	path := writeFile(t, `<gpx version="1.0">
  <wpt lat="0" lon="0"><name>A</name></wpt>
  <wpt lat="10" lon="10"><name>B</name></wpt>
  <trk><name>T</name><trkseg><trkpt lat="1" lon="1"/><trkpt lat="2" lon="2"/></trkseg></trk>
</gpx>`)

	out := h.mustRun("features", path, "--bbox", "5,5,15,15")
	assert.Contains(t, out, `"B"`)
	assert.NotContains(t, out, `"A"`)

	out = h.mustRun("features", path, "--type", "track", "--fields", "name")
	assert.Contains(t, out, `"LineString"`)
	assert.Contains(t, out, `"T"`)

	_, err := h.run("features", path, "--bbox", "1,2,3")
	assert.Error(t, err)

	_, err = h.run("features", path, "--type", "polygon")
	assert.Error(t, err)
}

func TestImportCommand(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("import-cmd", "geo", "--in", "caches.loc", "--out", "caches.gpx")
	assert.Equal(t, "gpsbabel -w -i geo -o gpx caches.loc caches.gpx\n", out)

	out = h.mustRun("--babel", "/opt/gps babel/gpsbabel", "import-cmd", "Garmin Mapsource", "-t", "route", "--in", "a.mps", "--out", "a.gpx")
	assert.Equal(t, "/opt/gps babel/gpsbabel -r -i mapsource -o gpx a.mps a.gpx\n", out)

	_, err := h.run("import-cmd", "geo", "--type", "track", "--in", "a", "--out", "b")
	assert.ErrorContains(t, err, "cannot import")

	out = h.mustRun("formats")
	assert.Contains(t, out, "Comma-separated values")
}

func TestDevices(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, "Garmin serial\n", h.mustRun("devices", "list"))

	out := h.mustRun("devices", "add", "eTrex", "--wpt-download", "%babel -w -i garmin -f %in -o gpx -F %out")
	assert.Equal(t, "eTrex\n", out)

	out = h.mustRun("device-cmd", "eTrex", "download", "--in", "/dev/ttyUSB0", "--out", "out.gpx")
	assert.Equal(t, "gpsbabel -w -i garmin -f /dev/ttyUSB0 -o gpx -F out.gpx\n", out)

	_, err := h.run("device-cmd", "eTrex", "upload", "--in", "in.gpx", "--out", "/dev/ttyUSB0")
	assert.ErrorContains(t, err, "no waypoint upload command")

	h.mustRun("devices", "update", "eTrex", "--name", "Foretrex", "--trk-download", "%babel -t -i garmin -f %in -o gpx -F %out")
	out = h.mustRun("devices", "show", "Foretrex")
	assert.Contains(t, out, "%babel -w -i garmin -f %in -o gpx -F %out")
	assert.Contains(t, out, "%babel -t -i garmin -f %in -o gpx -F %out")

	assert.Equal(t, "New device 1\n", h.mustRun("devices", "add"))
	assert.Equal(t, "Foretrex\nGarmin serial\nNew device 1\n", h.mustRun("devices", "list"))

	h.mustRun("devices", "remove", "Foretrex")
	_, err = h.run("devices", "show", "Foretrex")
	assert.Error(t, err)
}
