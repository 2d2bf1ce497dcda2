// Package config holds the settings of a kerf run. Values come from
// Default, are overlaid by an optional YAML file, and are finally
// overridden by command-line flags.
package config

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/chazu/kerf/pkg/cut"
	"github.com/chazu/kerf/pkg/quadtree"
	"github.com/chazu/kerf/pkg/raster"
	"github.com/chazu/kerf/pkg/section"
)

// Image controls the raster output.
type Image struct {
	Size         int    `yaml:"size"`
	Style        string `yaml:"style"`
	Segments     bool   `yaml:"segments"` // draw raw cut segments under the contours
	SegmentShade uint8  `yaml:"segment_shade"`
	ContourShade uint8  `yaml:"contour_shade"`
}

// Config is the full set of run settings.
type Config struct {
	Height       float64 `yaml:"height"`
	FromBase     bool    `yaml:"from_base"`
	OnPlane      string  `yaml:"on_plane"`
	AllContours  bool    `yaml:"all_contours"`
	StopOnStall  bool    `yaml:"stop_on_stall"`
	MinDiagonal2 float64 `yaml:"min_quad_diagonal2"`
	Tolerance    float64 `yaml:"simplify_tolerance"`

	Output   string `yaml:"output"`   // raster image path
	Contours string `yaml:"contours"` // optional vector export path
	Image    Image  `yaml:"image"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		FromBase:     true,
		OnPlane:      cut.OnPlaneAbove.String(),
		MinDiagonal2: quadtree.DefaultMinDiagonal2,
		Tolerance:    section.DefaultTolerance,
		Output:       "slice.png",
		Image: Image{
			Size:         raster.DefaultSize,
			Style:        raster.StyleCrisp.String(),
			Segments:     true,
			SegmentShade: raster.SegmentShade,
			ContourShade: raster.ContourShade,
		},
		LogLevel: "info",
	}
}

// Load reads a YAML file on top of Default. Keys missing from the file keep
// their default values; unknown keys are an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "config")
	}
	conf := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(conf); err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, "config: %s", path)
	}
	return conf, nil
}

// SectionOptions converts the pipeline settings. The config must have
// passed Validate.
func (c *Config) SectionOptions() (section.Options, error) {
	policy, err := cut.ParseOnPlanePolicy(c.OnPlane)
	if err != nil {
		return section.Options{}, err
	}
	return section.Options{
		Height:            c.Height,
		OnPlane:           policy,
		FromBase:          c.FromBase,
		MinDiagonal2:      c.MinDiagonal2,
		AllContours:       c.AllContours,
		StopOnStall:       c.StopOnStall,
		SimplifyTolerance: c.Tolerance,
	}, nil
}
