package viewport

import (
	"fmt"
	"math"
	"sort"

	"mandelzoom/fractal/fixed"
)

// Region is an axis-aligned rectangle of the plane.
type Region struct {
	Xmin, Xmax float64
	Ymin, Ymax float64
}

// Presets are well-known landmarks of the Mandelbrot set.
var Presets = map[string]Region{
	// whole set
	"home": {Xmin: -2.5, Xmax: 1.5, Ymin: -1.5, Ymax: 1.5},
	// dense filaments and repeating curls
	"seahorse": {Xmin: -0.8, Xmax: -0.7, Ymin: 0.05, Ymax: 0.15},
	// large bulb with trunk-like tendrils
	"elephant":        {Xmin: -1.85, Xmax: -1.75, Ymin: -0.10, Ymax: -0.02},
	"spiral-minibrot": {Xmin: -0.7435, Xmax: -0.7420, Ymin: 0.1310, Ymax: 0.1325},
	// threefold symmetric spirals
	"triple-spiral": {Xmin: -0.7480, Xmax: -0.7450, Ymin: 0.0950, Ymax: 0.0980},
	"dragon":        {Xmin: -0.7400, Xmax: -0.7350, Ymin: 0.1800, Ymax: 0.1850},
	// self-similar copy inside a spiral arm
	"mini-spiral": {Xmin: -1.7390, Xmax: -1.7375, Ymin: -0.0235, Ymax: -0.0220},
}

func PresetNames() []string {
	out := make([]string, 0, len(Presets))
	for k := range Presets {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Viewport centers r on a width×height output and picks the pixel step that fits
// all of r on screen.
func (r Region) Viewport(width, height, maxIterations int) Viewport {
	half := fixed.FromFloat64(0.5)
	zoom := math.Max((r.Xmax-r.Xmin)/float64(width), (r.Ymax-r.Ymin)/float64(height))
	return Viewport{
		CenterX:       fixed.FromFloat64(r.Xmin).Add(fixed.FromFloat64(r.Xmax)).Mul(half),
		CenterY:       fixed.FromFloat64(r.Ymin).Add(fixed.FromFloat64(r.Ymax)).Mul(half),
		Zoom:          fixed.FromFloat64(zoom),
		MaxIterations: maxIterations,
	}
}

func Preset(name string, width, height, maxIterations int) (Viewport, error) {
	r, ok := Presets[name]
	if !ok {
		return Viewport{}, fmt.Errorf("viewport: unknown preset %q (have %v)", name, PresetNames())
	}
	return r.Viewport(width, height, maxIterations), nil
}
