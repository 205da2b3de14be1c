// Package viewport holds the visible region of the plane and the store that shares
// it between the input side and the compute worker.
package viewport

import (
	"errors"
	"fmt"
	"math"

	"mandelzoom/fractal/fixed"
)

var (
	ErrInvalid   = errors.New("viewport: invalid")
	ErrZoomLimit = errors.New("viewport: zoom limit")
)

// Viewport is the visible region. Zoom is the plane distance between two adjacent
// pixels, so smaller is deeper.
type Viewport struct {
	CenterX, CenterY fixed.Real
	Zoom             fixed.Real
	MaxIterations    int
}

// Limits bounds the viewports a Store accepts for a given output size.
type Limits struct {
	Width, Height int
	// MinZoom is the smallest accepted pixel step.
	MinZoom fixed.Real
	// MaxSpan is the largest accepted width or height of the view, in plane units.
	MaxSpan       fixed.Real
	MaxIterations int
}

// DefaultLimits leaves 20 bits below the smallest pixel step for the iteration.
func DefaultLimits(width, height int) Limits {
	return Limits{
		Width:         width,
		Height:        height,
		MinZoom:       fixed.FromFloat64(math.Ldexp(1, -100)),
		MaxSpan:       fixed.FromInt(16),
		MaxIterations: 1 << 20,
	}
}

// Coord maps pixel i of an axis with n pixels to center + (i - n/2)*zoom.
func Coord(center, zoom fixed.Real, i, n int) fixed.Real {
	return center.Add(zoom.MulInt(i - n/2))
}

// Validate checks v against l. Errors wrap ErrInvalid or ErrZoomLimit.
func (v Viewport) Validate(l Limits) error {
	switch {
	case v.CenterX.Overflowed() || v.CenterY.Overflowed() || v.Zoom.Overflowed():
		return fmt.Errorf("%w: overflowed field", ErrInvalid)
	case v.Zoom.Sign() <= 0:
		return fmt.Errorf("%w: zoom %v <= 0", ErrInvalid, v.Zoom)
	case v.MaxIterations < 1:
		return fmt.Errorf("%w: max iterations %d < 1", ErrInvalid, v.MaxIterations)
	case l.MaxIterations > 0 && v.MaxIterations > l.MaxIterations:
		return fmt.Errorf("%w: max iterations %d > %d", ErrInvalid, v.MaxIterations, l.MaxIterations)
	case v.Zoom.Cmp(l.MinZoom) < 0:
		return fmt.Errorf("%w: zoom %s below %s", ErrZoomLimit, v.Zoom.Text('e', 3), l.MinZoom.Text('e', 3))
	}

	dim := l.Width
	if l.Height > dim {
		dim = l.Height
	}
	if span := v.Zoom.MulInt(dim); span.Overflowed() || (!l.MaxSpan.IsZero() && span.Cmp(l.MaxSpan) > 0) {
		return fmt.Errorf("%w: view span %v exceeds %v", ErrZoomLimit, span, l.MaxSpan)
	}

	for _, e := range []fixed.Real{
		Coord(v.CenterX, v.Zoom, 0, l.Width),
		Coord(v.CenterX, v.Zoom, l.Width, l.Width),
		Coord(v.CenterY, v.Zoom, 0, l.Height),
		Coord(v.CenterY, v.Zoom, l.Height, l.Height),
	} {
		if e.Overflowed() {
			return fmt.Errorf("%w: view edge leaves the representable range", ErrInvalid)
		}
	}
	return nil
}

func (v Viewport) String() string {
	return fmt.Sprintf("center=(%s, %s) zoom=%s iter=%d",
		v.CenterX.Text('g', 20), v.CenterY.Text('g', 20), v.Zoom.Text('e', 6), v.MaxIterations)
}
