// Package palette maps divergence fractions to colors.
package palette

import (
	"fmt"
	"image/color"
	"math"
	"sort"
)

// Func maps a divergence fraction in [0,1], or escape.Interior, to a color.
// Every Func is pure and returns opaque colors.
type Func func(f float64) color.RGBA

// InteriorColor is used for points that never escaped.
var InteriorColor = color.RGBA{A: 0xFF}

// Banded scales f by 2³², truncates to 32 bits and uses the low three bytes as
// R, G and B. Neighbouring fractions land on unrelated colors, which gives the
// posterized look of the classic renderer.
func Banded(f float64) color.RGBA {
	if f < 0 {
		return InteriorColor
	}
	var n uint32
	if s := f * (1 << 32); s >= math.MaxUint32 {
		n = math.MaxUint32
	} else {
		n = uint32(s)
	}
	return color.RGBA{R: uint8(n), G: uint8(n >> 8), B: uint8(n >> 16), A: 0xFF}
}

// Smooth walks the hue circle as f goes from 0 to 1.
func Smooth(f float64) color.RGBA {
	if f < 0 {
		return InteriorColor
	}
	return hsv(0.6+f, 0.85, 0.25+0.75*math.Sqrt(clamp01(f)))
}

func Grayscale(f float64) color.RGBA {
	if f < 0 {
		return InteriorColor
	}
	v := uint8(clamp01(f) * 255)
	return color.RGBA{R: v, G: v, B: v, A: 0xFF}
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}

func hsv(h, s, v float64) color.RGBA {
	h = math.Mod(h, 1)
	i := int(h * 6)
	f := h*6 - float64(i)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	var r, g, b float64
	switch i % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	case 5:
		r, g, b = v, p, q
	}
	return color.RGBA{R: uint8(r * 255), G: uint8(g * 255), B: uint8(b * 255), A: 0xFF}
}

var byName = map[string]Func{
	"banded": Banded,
	"smooth": Smooth,
	"gray":   Grayscale,
}

// ByName returns the palette registered under name. An empty name selects Banded.
func ByName(name string) (Func, error) {
	if name == "" {
		return Banded, nil
	}
	f, ok := byName[name]
	if !ok {
		return nil, fmt.Errorf("palette: unknown palette %q (have %v)", name, Names())
	}
	return f, nil
}

func Names() []string {
	out := make([]string, 0, len(byName))
	for k := range byName {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
