package app

import (
	"errors"
	"fmt"

	"mandelzoom/fractal/compute"
	"mandelzoom/fractal/escape"
	"mandelzoom/fractal/fixed"
	"mandelzoom/fractal/palette"
	"mandelzoom/fractal/viewport"
)

// Config is everything the viewer is constructed from.
type Config struct {
	Width, Height int

	CenterX, CenterY fixed.Real
	// Zoom is the plane distance between two adjacent pixels.
	Zoom          fixed.Real
	MaxIterations int
	// Preset, when set, replaces the center and zoom with a named landmark.
	Preset string

	Palette   string
	Metric    escape.Metric
	Precision compute.Precision
	// Workers is the number of row goroutines (0 = GOMAXPROCS).
	Workers int

	HUD           bool
	SkipUnchanged bool
	MaxFPS        int
	LogEvery      int
}

// DefaultConfig is a 400×300 view of the whole set.
func DefaultConfig() Config {
	return Config{
		Width:         400,
		Height:        300,
		Zoom:          fixed.FromFloat64(0.01),
		MaxIterations: 255,
		Palette:       "banded",
	}
}

// Viewport returns the initial viewport for a width×height output.
func (c Config) Viewport(width, height int) (viewport.Viewport, error) {
	if c.Preset != "" {
		return viewport.Preset(c.Preset, width, height, c.MaxIterations)
	}
	return viewport.Viewport{
		CenterX:       c.CenterX,
		CenterY:       c.CenterY,
		Zoom:          c.Zoom,
		MaxIterations: c.MaxIterations,
	}, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("size %dx%d must be positive", c.Width, c.Height))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers %d < 0", c.Workers))
	}
	if c.MaxFPS < 0 {
		errs = append(errs, fmt.Errorf("max fps %d < 0", c.MaxFPS))
	}
	if c.LogEvery < 0 {
		errs = append(errs, fmt.Errorf("log every %d < 0", c.LogEvery))
	}
	if _, err := palette.ByName(c.Palette); err != nil {
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		v, err := c.Viewport(c.Width, c.Height)
		if err == nil {
			err = v.Validate(viewport.DefaultLimits(c.Width, c.Height))
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("app: config: %w", err)
	}
	return nil
}
