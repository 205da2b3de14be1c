// Package escape implements the escape-time test for z = z² + c.
package escape

import (
	"fmt"
	"math"

	"mandelzoom/fractal/fixed"
)

// Interior is returned for points that never escape within the budget.
// It is distinct from every escape fraction, including 0.
const Interior = -1.0

// Metric selects the escape condition.
type Metric uint8

const (
	// MagnitudeSquared escapes once re²+im² > 4. This is the true escape radius.
	MagnitudeSquared Metric = iota
	// SumOfAbs escapes once |re|+|im| > 2. Cheaper, but it reshapes the boundary,
	// so it is only used when asked for.
	SumOfAbs
)

func (m Metric) String() string {
	switch m {
	case MagnitudeSquared:
		return "magnitude"
	case SumOfAbs:
		return "sumabs"
	default:
		return fmt.Sprintf("Metric(%d)", uint8(m))
	}
}

// Set implements flag.Value.
func (m *Metric) Set(s string) error {
	v, err := ParseMetric(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func ParseMetric(s string) (Metric, error) {
	switch s {
	case "magnitude", "mag", "":
		return MagnitudeSquared, nil
	case "sumabs", "abs":
		return SumOfAbs, nil
	default:
		return 0, fmt.Errorf("escape: unknown metric %q", s)
	}
}

var (
	two  = fixed.FromInt(2)
	four = fixed.FromInt(4)
)

// Engine runs the escape-time iteration. The zero value uses MagnitudeSquared.
type Engine struct {
	Metric Metric
}

// Iterations iterates from z₀ = c and reports the iteration at which z escaped.
// The test runs before each squaring, so a c outside the radius escapes at 0.
// An overflowed coordinate is treated as outside the radius.
func (e Engine) Iterations(cr, ci fixed.Real, maxIter int) (int, bool) {
	if maxIter < 1 {
		return 0, false
	}
	if cr.Overflowed() || ci.Overflowed() {
		return 0, true
	}
	re, im := cr, ci
	for i := 0; i < maxIter; i++ {
		if re.Abs().Cmp(two) > 0 || im.Abs().Cmp(two) > 0 {
			return i, true
		}
		re2 := re.Mul(re)
		im2 := im.Mul(im)
		switch e.Metric {
		case SumOfAbs:
			if re.Abs().Add(im.Abs()).Cmp(two) > 0 {
				return i, true
			}
		default:
			if re2.Add(im2).Cmp(four) > 0 {
				return i, true
			}
		}
		im = re.Mul(im).MulInt(2).Add(ci)
		re = re2.Sub(im2).Add(cr)
	}
	return maxIter, false
}

// Divergence returns i/maxIter for a point that escaped at iteration i, or Interior.
func (e Engine) Divergence(cr, ci fixed.Real, maxIter int) float64 {
	n, escaped := e.Iterations(cr, ci, maxIter)
	return fraction(n, escaped, maxIter)
}

// IterationsFloat is Iterations on float64. It is exact enough while the pixel step
// stays well above float64 resolution at the center.
func (e Engine) IterationsFloat(cr, ci float64, maxIter int) (int, bool) {
	if maxIter < 1 {
		return 0, false
	}
	if math.IsNaN(cr) || math.IsNaN(ci) || math.IsInf(cr, 0) || math.IsInf(ci, 0) {
		return 0, true
	}
	re, im := cr, ci
	for i := 0; i < maxIter; i++ {
		re2, im2 := re*re, im*im
		switch e.Metric {
		case SumOfAbs:
			if math.Abs(re)+math.Abs(im) > 2 {
				return i, true
			}
		default:
			if re2+im2 > 4 {
				return i, true
			}
		}
		im = 2*re*im + ci
		re = re2 - im2 + cr
	}
	return maxIter, false
}

func (e Engine) DivergenceFloat(cr, ci float64, maxIter int) float64 {
	n, escaped := e.IterationsFloat(cr, ci, maxIter)
	return fraction(n, escaped, maxIter)
}

func fraction(n int, escaped bool, maxIter int) float64 {
	if !escaped {
		return Interior
	}
	return float64(n) / float64(maxIter)
}
