package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/spf13/cobra"

	"github.com/beetlebugorg/gpsdata/pkg/gpx"
)

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info FILE",
		Short: "Show counts and extent of a GPX file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.reg.Open(args[0])
			if err != nil {
				return err
			}
			defer h.Release()

			s := h.Store()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "file:      %s\n", h.Path())
			for _, ft := range gpx.FeatureTypes {
				fmt.Fprintf(out, "%-10s %d\n", ft.String()+"s:", s.Count(ft))
			}
			if b := s.Extent(); b.IsEmpty() {
				fmt.Fprintln(out, "extent:    empty")
			} else {
				fmt.Fprintf(out, "extent:    lon %g..%g lat %g..%g\n", b.MinLon, b.MaxLon, b.MinLat, b.MaxLat)
			}
			return nil
		},
	}
}

func newFeaturesCmd(a *app) *cobra.Command {
	var (
		typ    string
		bbox   []float64
		ids    []int64
		limit  int
		fields []string
		noGeom bool
	)

	cmd := &cobra.Command{
		Use:   "features FILE",
		Short: "Print features as a GeoJSON FeatureCollection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.openView(args[0], typ)
			if err != nil {
				return err
			}
			defer v.Close()

			req := gpx.FeatureRequest{Limit: limit, NoGeometry: noGeom}
			if len(bbox) > 0 {
				if len(bbox) != 4 {
					return fmt.Errorf("--bbox needs minlon,minlat,maxlon,maxlat")
				}
				req.FilterRect = &gpx.Bounds{MinLon: bbox[0], MinLat: bbox[1], MaxLon: bbox[2], MaxLat: bbox[3]}
			}
			if cmd.Flags().Changed("ids") {
				req.FilterIDs = ids
			}
			for _, name := range fields {
				i := v.FieldIndex(name)
				if i < 0 {
					return fmt.Errorf("unknown field %q for %s", name, typ)
				}
				req.Attributes = append(req.Attributes, i)
			}

			fc := featureCollection(v, v.GetFeatures(req))
			data, err := json.MarshalIndent(fc, "", "  ")
			if err != nil {
				return fmt.Errorf("encode geojson: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&typ, "type", "t", "waypoint", "feature type (waypoint|route|track)")
	cmd.Flags().Float64SliceVar(&bbox, "bbox", nil, "spatial filter minlon,minlat,maxlon,maxlat")
	cmd.Flags().Int64SliceVar(&ids, "ids", nil, "only these feature ids")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of features")
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "only these attribute fields")
	cmd.Flags().BoolVar(&noGeom, "no-geometry", false, "omit geometries")
	return cmd
}

func featureCollection(v *gpx.View, it *gpx.FeatureIterator) *geojson.FeatureCollection {
	fields := v.Fields()
	fc := geojson.NewFeatureCollection()
	for f := range it.All() {
		var geom orb.Geometry = f.Geometry
		if geom == nil {
			geom = orb.Collection{}
		}
		gf := geojson.NewFeature(geom)
		gf.ID = f.ID
		for i, field := range fields {
			if val := f.Attribute(i); val != nil {
				gf.Properties[field.Name] = val
			}
		}
		fc.Append(gf)
	}
	return fc
}

func newAddWaypointCmd(a *app) *cobra.Command {
	var (
		lat, lon, ele float64
		text          = map[string]*string{}
	)

	cmd := &cobra.Command{
		Use:   "add-waypoint FILE",
		Short: "Add a waypoint and rewrite the file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.openView(args[0], gpx.WaypointType.String())
			if err != nil {
				return err
			}
			defer v.Close()

			attrs := make([]any, len(v.Fields()))
			for name, val := range text {
				if cmd.Flags().Changed(flagName(name)) {
					attrs[v.FieldIndex(name)] = *val
				}
			}
			if cmd.Flags().Changed("ele") {
				attrs[v.FieldIndex("elevation")] = ele
			}

			ids, err := v.AddFeatures([]gpx.Feature{{Geometry: orb.Point{lon, lat}, Attributes: attrs}})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ids[0])
			return nil
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude in decimal degrees")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude in decimal degrees")
	cmd.Flags().Float64Var(&ele, "ele", 0, "elevation in meters")
	for _, f := range gpx.FieldsFor(gpx.WaypointType) {
		if f.Type != gpx.FieldText {
			continue
		}
		text[f.Name] = cmd.Flags().String(flagName(f.Name), "", f.Name)
	}
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
	return cmd
}

// flagName turns a field name into a flag name ("url name" → "url-name").
func flagName(field string) string {
	return strings.ReplaceAll(field, " ", "-")
}

func newDeleteCmd(a *app) *cobra.Command {
	var (
		typ string
		ids []int64
	)

	cmd := &cobra.Command{
		Use:   "delete FILE",
		Short: "Delete features by id and rewrite the file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.openView(args[0], typ)
			if err != nil {
				return err
			}
			defer v.Close()
			return v.DeleteFeatures(ids...)
		},
	}

	cmd.Flags().StringVarP(&typ, "type", "t", "waypoint", "feature type (waypoint|route|track)")
	cmd.Flags().Int64SliceVar(&ids, "id", nil, "feature ids to delete")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newSetCmd(a *app) *cobra.Command {
	var (
		typ string
		id  int64
	)

	cmd := &cobra.Command{
		Use:   "set FILE FIELD=VALUE...",
		Short: "Change attribute values of one feature and rewrite the file",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.openView(args[0], typ)
			if err != nil {
				return err
			}
			defer v.Close()

			attrs := gpx.AttributeMap{}
			for _, kv := range args[1:] {
				name, val, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("expected FIELD=VALUE, got %q", kv)
				}
				i := v.FieldIndex(strings.ReplaceAll(name, "-", " "))
				if i < 0 {
					return fmt.Errorf("unknown field %q for %s", name, typ)
				}
				attrs[i] = val
			}
			return v.ChangeAttributeValues(map[int64]gpx.AttributeMap{id: attrs})
		},
	}

	cmd.Flags().StringVarP(&typ, "type", "t", "waypoint", "feature type (waypoint|route|track)")
	cmd.Flags().Int64Var(&id, "id", 0, "feature id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
