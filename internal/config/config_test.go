package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beetlebugorg/gpsdata/pkg/gpx"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "gpsbabel", cfg.Babel.Path)
	assert.Equal(t, "best-effort", cfg.Store.WritePolicy)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.NotEmpty(t, cfg.Devices.File)

	opts := cfg.StoreOptions(nil)
	assert.Equal(t, gpx.WriteBestEffort, opts.WritePolicy)
	assert.Equal(t, "gpxtool", opts.Application)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "custom.yaml")
	content := `
babel:
  path: /usr/local/bin/gpsbabel
store:
  write_policy: transactional
log:
  level: debug
`
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))
	t.Setenv("GPXTOOL_LOG_FORMAT", "json")

	cfg, err := Load(New(), file)
	require.NoError(t, err)
	assert.Equal(t, "/usr/local/bin/gpsbabel", cfg.Babel.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, gpx.WriteTransactional, cfg.StoreOptions(nil).WritePolicy)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Config{
		Babel:   BabelConfig{Path: ""},
		Devices: DevicesConfig{File: "d.yaml"},
		Store:   StoreConfig{WritePolicy: "sometimes"},
		Log:     LogConfig{Level: "loud", Format: "xml"},
	}

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"babel.path", "store.write_policy", "log.level", "log.format"} {
		assert.Contains(t, err.Error(), want)
	}
}
