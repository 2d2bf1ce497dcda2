package main

import (
	"fmt"

	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/chazu/kerf/pkg/config"
	"github.com/chazu/kerf/pkg/export"
	"github.com/chazu/kerf/pkg/raster"
	"github.com/chazu/kerf/pkg/section"
	"github.com/chazu/kerf/pkg/stl"
)

func newSliceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slice <mesh.stl>",
		Short: "Cut a mesh at a height and render the contours",
		Args:  cobra.ExactArgs(1),
		RunE:  runSlice,
	}
	f := cmd.Flags()
	f.String("config", "", "YAML config file")
	f.Float64("height", 0, "cutting plane height")
	f.String("out", "", "image output path (.png, .bmp, .tif)")
	f.String("contours", "", "vector output path (.geojson, .wkt, .svg, .dxf)")
	f.Bool("all-contours", false, "trace every contour, not only the one through point 0")
	f.Bool("stop-on-stall", false, "fail when a contour cannot be closed")
	f.String("on-plane", "", "side for vertices exactly on the plane (above, below)")
	f.Bool("from-base", true, "measure height from the mesh base and move it to the origin")
	f.Int("size", 0, "image width and height in pixels")
	f.String("style", "", "line style (crisp, smooth)")
	f.Bool("segments", true, "draw raw cut segments under the contours")
	return cmd
}

// sliceConfig builds the run config: defaults, then the config file, then
// any flag the user set.
func sliceConfig(cmd *cobra.Command) (*config.Config, error) {
	f := cmd.Flags()
	conf := config.Default()
	if path, _ := f.GetString("config"); path != "" {
		var err error
		if conf, err = config.Load(path); err != nil {
			return nil, err
		}
	} else if !f.Changed("height") {
		return nil, errors.New("slice: --height is required without --config")
	}

	if f.Changed("height") {
		conf.Height, _ = f.GetFloat64("height")
	}
	if f.Changed("out") {
		conf.Output, _ = f.GetString("out")
	}
	if f.Changed("contours") {
		conf.Contours, _ = f.GetString("contours")
	}
	if f.Changed("all-contours") {
		conf.AllContours, _ = f.GetBool("all-contours")
	}
	if f.Changed("stop-on-stall") {
		conf.StopOnStall, _ = f.GetBool("stop-on-stall")
	}
	if f.Changed("on-plane") {
		conf.OnPlane, _ = f.GetString("on-plane")
	}
	if f.Changed("from-base") {
		conf.FromBase, _ = f.GetBool("from-base")
	}
	if f.Changed("size") {
		conf.Image.Size, _ = f.GetInt("size")
	}
	if f.Changed("style") {
		conf.Image.Style, _ = f.GetString("style")
	}
	if f.Changed("segments") {
		conf.Image.Segments, _ = f.GetBool("segments")
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		conf.LogLevel = lvl
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func runSlice(cmd *cobra.Command, args []string) error {
	conf, err := sliceConfig(cmd)
	if err != nil {
		return err
	}
	log, err := config.NewLogger(conf.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	m, err := stl.ReadFile(args[0])
	if err != nil {
		return err
	}
	opts, err := conf.SectionOptions()
	if err != nil {
		return err
	}
	opts.Logger = log

	// Any failure here leaves no partial output behind.
	res, err := section.Section(m, opts)
	if err != nil {
		return err
	}
	if len(res.Segments) == 0 {
		log.WithField("height", conf.Height).Warn("plane does not cross the mesh")
	}

	lo, hi, _ := res.Registry.Bounds()
	if err := writeImage(conf, res, lo, hi); err != nil {
		return err
	}
	if conf.Contours != "" {
		vp := raster.NewViewport(conf.Image.Size, lo, hi)
		if err := export.WriteFile(conf.Contours, res.Outlines(), vp); err != nil {
			return err
		}
	}

	log.WithFields(logrus.Fields{
		"run":    res.RunID,
		"output": conf.Output,
	}).Debug("wrote outputs")
	fmt.Fprintf(cmd.OutOrStdout(), "segments: %d\ncontours: %d (closed %d)\n",
		res.Stats.Segments, res.Stats.Contours, res.Stats.Closed)
	return nil
}

func writeImage(conf *config.Config, res *section.Result, lo, hi v2.Vec) error {
	if conf.Output == "" {
		return nil
	}
	style, err := raster.ParseStyle(conf.Image.Style)
	if err != nil {
		return err
	}
	c := raster.NewCanvas(conf.Image.Size, lo, hi, style)
	if conf.Image.Segments {
		c.DrawSegments(res.Segments, conf.Image.SegmentShade)
	}
	c.DrawContours(res.Contours, res.Registry, conf.Image.ContourShade)
	return raster.WriteFile(conf.Output, c.Image())
}
