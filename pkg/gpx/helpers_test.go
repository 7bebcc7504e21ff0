package gpx

import (
	"os"
	"path/filepath"
	"testing"
)

const emptyGPX = `<?xml version="1.0"?>
<gpx version="1.0" creator="test"></gpx>
`

// copyFixture copies a testdata file into a fresh temp dir and returns its path.
func copyFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return writeGPX(t, string(data))
}

func writeGPX(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.gpx")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func openStore(t *testing.T, reg *Registry, path string) *Store {
	t.Helper()
	h, err := reg.Open(path)
	if err != nil {
		t.Fatalf("Open(%s): %v", path, err)
	}
	t.Cleanup(h.Release)
	return h.Store()
}
