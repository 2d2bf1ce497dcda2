package config

import (
	"math"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/chazu/kerf/pkg/cut"
	"github.com/chazu/kerf/pkg/export"
	"github.com/chazu/kerf/pkg/raster"
)

type checkFunc func(conf *Config) error

// Validate returns the first problem found in conf.
func (c *Config) Validate() error {
	checkFuncs := []checkFunc{
		checkHeight,
		checkOnPlane,
		checkMinDiagonal2,
		checkTolerance,
		checkImage,
		checkOutput,
		checkContours,
		checkLogLevel,
	}

	for _, checkFunc := range checkFuncs {
		if err := checkFunc(c); err != nil {
			return errors.Wrap(err, "config")
		}
	}
	return nil
}

func checkHeight(conf *Config) error {
	if math.IsNaN(conf.Height) || math.IsInf(conf.Height, 0) {
		return errors.Errorf("height %v is not finite", conf.Height)
	}
	return nil
}

func checkOnPlane(conf *Config) error {
	_, err := cut.ParseOnPlanePolicy(conf.OnPlane)
	return err
}

func checkMinDiagonal2(conf *Config) error {
	if !(conf.MinDiagonal2 > 0) {
		return errors.Errorf("min_quad_diagonal2 must be positive, got %v", conf.MinDiagonal2)
	}
	return nil
}

func checkTolerance(conf *Config) error {
	if !(conf.Tolerance >= 0) {
		return errors.Errorf("simplify_tolerance must not be negative, got %v", conf.Tolerance)
	}
	return nil
}

func checkImage(conf *Config) error {
	if conf.Image.Size < 3 {
		return errors.Errorf("image size %d is too small", conf.Image.Size)
	}
	_, err := raster.ParseStyle(conf.Image.Style)
	return err
}

func checkOutput(conf *Config) error {
	if conf.Output == "" {
		return nil
	}
	_, err := raster.FormatFromPath(conf.Output)
	return err
}

func checkContours(conf *Config) error {
	if conf.Contours == "" {
		return nil
	}
	return export.CheckPath(conf.Contours)
}

func checkLogLevel(conf *Config) error {
	_, err := logrus.ParseLevel(conf.LogLevel)
	return err
}
