package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/beetlebugorg/gpsdata/pkg/babel"
	"github.com/beetlebugorg/gpsdata/pkg/gpx"
)

func newFormatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the built-in import formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tID\tCAPABILITIES")
			for _, f := range babel.BuiltinImporters() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", f.Name(), f.Identifier(), f.Capabilities())
			}
			return w.Flush()
		},
	}
}

// transferFlags are the flags shared by commands that build an argv.
type transferFlags struct {
	typ string
	in  string
	out string
}

func (f *transferFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.typ, "type", "t", "waypoint", "feature type (waypoint|route|track)")
	cmd.Flags().StringVar(&f.in, "in", "", "input path or device port")
	cmd.Flags().StringVar(&f.out, "out", "", "output path or device port")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
}

func printArgv(cmd *cobra.Command, argv []string, unsupported string) error {
	if len(argv) == 0 {
		return fmt.Errorf("%s", unsupported)
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.Join(argv, " "))
	return nil
}

func newImportCmd(a *app) *cobra.Command {
	var tf transferFlags

	cmd := &cobra.Command{
		Use:   "import-cmd FORMAT",
		Short: "Print the GPSBabel command converting FORMAT to GPX",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ft, err := gpx.ParseFeatureType(tf.typ)
			if err != nil {
				return err
			}
			f, ok := babel.FindImporter(args[0])
			if !ok {
				return fmt.Errorf("unknown format %q", args[0])
			}
			argv := f.ImportCommand(a.cfg.Babel.Path, ft, tf.in, tf.out)
			return printArgv(cmd, argv, fmt.Sprintf("%s cannot import %ss", f.Name(), ft))
		},
	}
	tf.register(cmd)
	return cmd
}

func newDeviceCmd(a *app) *cobra.Command {
	var tf transferFlags

	cmd := &cobra.Command{
		Use:       "device-cmd DEVICE download|upload",
		Short:     "Print the GPSBabel command transferring data with a device",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"download", "upload"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ft, err := gpx.ParseFeatureType(tf.typ)
			if err != nil {
				return err
			}
			set, err := babel.LoadDeviceSet(a.settings())
			if err != nil {
				return err
			}
			dev, ok := set.Get(args[0])
			if !ok {
				return fmt.Errorf("unknown device %q", args[0])
			}

			var argv []string
			switch args[1] {
			case "download":
				argv = dev.ImportCommand(a.cfg.Babel.Path, ft, tf.in, tf.out)
			case "upload":
				argv = dev.ExportCommand(a.cfg.Babel.Path, ft, tf.in, tf.out)
			default:
				return fmt.Errorf("direction must be download or upload, got %q", args[1])
			}
			return printArgv(cmd, argv, fmt.Sprintf("%s has no %s %s command", dev.Name(), ft, args[1]))
		},
	}
	tf.register(cmd)
	return cmd
}

func newDevicesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "Manage device command templates",
	}
	cmd.AddCommand(
		newDevicesListCmd(a),
		newDevicesShowCmd(a),
		newDevicesAddCmd(a),
		newDevicesUpdateCmd(a),
		newDevicesRemoveCmd(a),
	)
	return cmd
}

func newDevicesListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := babel.LoadDeviceSet(a.settings())
			if err != nil {
				return err
			}
			for _, name := range set.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newDevicesShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show DEVICE",
		Short: "Show the command templates of a device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := babel.LoadDeviceSet(a.settings())
			if err != nil {
				return err
			}
			dev, ok := set.Get(args[0])
			if !ok {
				return fmt.Errorf("unknown device %q", args[0])
			}

			c := dev.Commands()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "name:\t%s\n", dev.Name())
			fmt.Fprintf(w, "capabilities:\t%s\n", dev.Capabilities())
			fmt.Fprintf(w, "wptdownload:\t%s\n", c.WaypointDownload)
			fmt.Fprintf(w, "wptupload:\t%s\n", c.WaypointUpload)
			fmt.Fprintf(w, "rtedownload:\t%s\n", c.RouteDownload)
			fmt.Fprintf(w, "rteupload:\t%s\n", c.RouteUpload)
			fmt.Fprintf(w, "trkdownload:\t%s\n", c.TrackDownload)
			fmt.Fprintf(w, "trkupload:\t%s\n", c.TrackUpload)
			return w.Flush()
		},
	}
}

// commandFlags binds one flag per device template.
type commandFlags struct {
	cmds babel.DeviceCommands
}

func (f *commandFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.cmds.WaypointDownload, "wpt-download", "", "waypoint download template")
	fl.StringVar(&f.cmds.WaypointUpload, "wpt-upload", "", "waypoint upload template")
	fl.StringVar(&f.cmds.RouteDownload, "rte-download", "", "route download template")
	fl.StringVar(&f.cmds.RouteUpload, "rte-upload", "", "route upload template")
	fl.StringVar(&f.cmds.TrackDownload, "trk-download", "", "track download template")
	fl.StringVar(&f.cmds.TrackUpload, "trk-upload", "", "track upload template")
}

// merge overlays the flags that were set on base.
func (f *commandFlags) merge(cmd *cobra.Command, base babel.DeviceCommands) babel.DeviceCommands {
	fl := cmd.Flags()
	for name, pair := range map[string][2]*string{
		"wpt-download": {&base.WaypointDownload, &f.cmds.WaypointDownload},
		"wpt-upload":   {&base.WaypointUpload, &f.cmds.WaypointUpload},
		"rte-download": {&base.RouteDownload, &f.cmds.RouteDownload},
		"rte-upload":   {&base.RouteUpload, &f.cmds.RouteUpload},
		"trk-download": {&base.TrackDownload, &f.cmds.TrackDownload},
		"trk-upload":   {&base.TrackUpload, &f.cmds.TrackUpload},
	} {
		if fl.Changed(name) {
			*pair[0] = *pair[1]
		}
	}
	return base
}

func newDevicesAddCmd(a *app) *cobra.Command {
	var cf commandFlags

	cmd := &cobra.Command{
		Use:   "add [DEVICE]",
		Short: "Add a device; without a name one is generated",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.settings()
			set, err := babel.LoadDeviceSet(s)
			if err != nil {
				return err
			}
			name := set.NewDeviceName()
			if len(args) == 1 {
				name = args[0]
			}
			if err := set.Add(babel.NewDeviceFormat(name, cf.cmds)); err != nil {
				return err
			}
			if err := babel.SaveDeviceSet(s, set); err != nil {
				return fmt.Errorf("save devices: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		},
	}
	cf.register(cmd)
	return cmd
}

func newDevicesUpdateCmd(a *app) *cobra.Command {
	var (
		cf      commandFlags
		newName string
	)

	cmd := &cobra.Command{
		Use:   "update DEVICE",
		Short: "Change the name or command templates of a device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.settings()
			set, err := babel.LoadDeviceSet(s)
			if err != nil {
				return err
			}
			old, ok := set.Get(args[0])
			if !ok {
				return fmt.Errorf("unknown device %q", args[0])
			}
			name := old.Name()
			if newName != "" {
				name = newName
			}
			dev := babel.NewDeviceFormat(name, cf.merge(cmd, old.Commands()))
			if err := set.Update(old.Name(), dev); err != nil {
				return err
			}
			return babel.SaveDeviceSet(s, set)
		},
	}
	cf.register(cmd)
	cmd.Flags().StringVar(&newName, "name", "", "new device name")
	return cmd
}

func newDevicesRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove DEVICE",
		Short: "Remove a device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.settings()
			set, err := babel.LoadDeviceSet(s)
			if err != nil {
				return err
			}
			if err := set.Remove(args[0]); err != nil {
				return err
			}
			return babel.SaveDeviceSet(s, set)
		},
	}
}
