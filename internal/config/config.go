package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/beetlebugorg/gpsdata/pkg/gpx"
)

// EnvPrefix prefixes environment overrides: GPXTOOL_BABEL_PATH → babel.path.
const EnvPrefix = "GPXTOOL"

// Config holds all gpxtool configuration.
type Config struct {
	Babel   BabelConfig   `mapstructure:"babel"`
	Devices DevicesConfig `mapstructure:"devices"`
	Store   StoreConfig   `mapstructure:"store"`
	Log     LogConfig     `mapstructure:"log"`
}

type BabelConfig struct {
	Path string `mapstructure:"path"`
}

type DevicesConfig struct {
	File string `mapstructure:"file"`
}

type StoreConfig struct {
	WritePolicy string `mapstructure:"write_policy"`
	Application string `mapstructure:"application"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// New returns a viper instance with defaults and environment overrides set
// up. Callers may bind flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()

	// Defaults
	v.SetDefault("babel.path", "gpsbabel")
	v.SetDefault("devices.file", defaultDevicesFile())
	v.SetDefault("store.write_policy", gpx.WriteBestEffort.String())
	v.SetDefault("store.application", "gpxtool")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the optional config file into v and returns the validated
// configuration. With file empty, gpxtool.yaml is looked up in the working
// directory and the user config directory; a missing file is not an error.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("gpxtool")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "gpxtool"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Babel.Path == "" {
		errs = append(errs, "babel.path is required")
	}
	if c.Devices.File == "" {
		errs = append(errs, "devices.file is required")
	}
	if _, err := gpx.ParseWritePolicy(c.Store.WritePolicy); err != nil {
		errs = append(errs, fmt.Sprintf("store.write_policy: %v", err))
	}
	if _, err := zap.ParseAtomicLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Sprintf("log.level: %v", err))
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Sprintf("log.format must be console or json, got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// StoreOptions converts the store settings to gpx.Options. The config must
// have been validated.
func (c *Config) StoreOptions(logger *zap.Logger) gpx.Options {
	policy, _ := gpx.ParseWritePolicy(c.Store.WritePolicy)
	opts := gpx.DefaultOptions()
	opts.WritePolicy = policy
	opts.Application = c.Store.Application
	opts.Creator = c.Store.Application
	opts.Logger = logger
	return opts
}

func defaultDevicesFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "devices.yaml"
	}
	return filepath.Join(dir, "gpxtool", "devices.yaml")
}
