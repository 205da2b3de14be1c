package compute

import (
	"fmt"

	"mandelzoom/fractal/fixed"
)

// Precision selects the number type used for plane coordinates.
type Precision uint8

const (
	// Fixed iterates in fixed.Real throughout.
	Fixed Precision = iota
	// Float iterates in float64 and loses detail once the pixel step nears float64
	// resolution.
	Float
	// Auto uses Float while the pixel step is at least FloatZoomThreshold and Fixed below.
	Auto
)

// FloatZoomThreshold is the smallest pixel step rendered in float64 by Auto. It keeps
// about 12 bits between the step and float64 resolution at |center| ≈ 2.
const FloatZoomThreshold = 1e-12

func (p Precision) String() string {
	switch p {
	case Fixed:
		return "fixed"
	case Float:
		return "float"
	case Auto:
		return "auto"
	default:
		return fmt.Sprintf("Precision(%d)", uint8(p))
	}
}

func ParsePrecision(s string) (Precision, error) {
	switch s {
	case "fixed", "":
		return Fixed, nil
	case "float":
		return Float, nil
	case "auto":
		return Auto, nil
	default:
		return 0, fmt.Errorf("compute: unknown precision %q", s)
	}
}

// Set implements flag.Value.
func (p *Precision) Set(s string) error {
	v, err := ParsePrecision(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

func (p Precision) useFloat(zoom fixed.Real) bool {
	switch p {
	case Float:
		return true
	case Auto:
		return zoom.Float64() >= FloatZoomThreshold
	default:
		return false
	}
}
