package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/beetlebugorg/gpsdata/internal/config"
	"github.com/beetlebugorg/gpsdata/internal/logging"
	"github.com/beetlebugorg/gpsdata/pkg/babel"
	"github.com/beetlebugorg/gpsdata/pkg/gpx"
)

// app carries the state shared by all subcommands. It is populated by the
// root command's PersistentPreRunE.
type app struct {
	v       *viper.Viper
	cfgFile string

	cfg *config.Config
	log *zap.Logger
	reg *gpx.Registry
}

// NewRootCmd builds the gpxtool command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	cmd := &cobra.Command{
		Use:           "gpxtool",
		Short:         "Inspect and edit GPX files and build GPSBabel commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is ./gpxtool.yaml)")
	pf.String("babel", "", "path to the gpsbabel executable")
	pf.String("devices", "", "device settings file")
	pf.String("write-policy", "", "store write policy (best-effort|transactional)")
	pf.String("log-level", "", "log level")
	pf.String("log-format", "", "log format (console|json)")

	bindFlags(a.v, pf, map[string]string{
		"babel.path":         "babel",
		"devices.file":       "devices",
		"store.write_policy": "write-policy",
		"log.level":          "log-level",
		"log.format":         "log-format",
	})

	cmd.AddCommand(
		newInfoCmd(a),
		newFeaturesCmd(a),
		newAddWaypointCmd(a),
		newDeleteCmd(a),
		newSetCmd(a),
		newFormatsCmd(a),
		newImportCmd(a),
		newDevicesCmd(a),
		newDeviceCmd(a),
	)
	return cmd
}

// bindFlags binds each config key to its flag. An unchanged flag does not
// override config file, environment or default values.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
}

func (a *app) init() error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = logger
	a.reg = gpx.NewRegistry(cfg.StoreOptions(logger))
	a.log.Debug("configured",
		zap.String("babel", cfg.Babel.Path),
		zap.String("devices", cfg.Devices.File),
		zap.String("write_policy", cfg.Store.WritePolicy))
	return nil
}

func (a *app) settings() babel.YAMLSettings {
	return babel.YAMLSettings{Path: a.cfg.Devices.File}
}

// openView opens a view of the given type; close it when done.
func (a *app) openView(path, typ string) (*gpx.View, error) {
	ft, err := gpx.ParseFeatureType(typ)
	if err != nil {
		return nil, err
	}
	return gpx.NewView(a.reg, path, ft)
}
