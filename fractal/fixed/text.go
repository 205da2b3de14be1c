package fixed

import (
	"fmt"
	"math/big"
	"strings"
)

// parsePrec keeps every bit of the 128-bit magnitude plus guard bits for rounding.
const parsePrec = 192

// Parse reads a decimal (or anything big.ParseFloat accepts) without going through
// float64, so centers deeper than float64 precision survive the command line.
func Parse(s string) (Real, error) {
	f, _, err := big.ParseFloat(strings.TrimSpace(s), 10, parsePrec, big.ToNearestEven)
	if err != nil {
		return Zero, fmt.Errorf("fixed: parse %q: %w", s, err)
	}
	neg := f.Signbit()
	if f.IsInf() {
		return saturate(neg), fmt.Errorf("fixed: parse %q: %w", s, ErrOverflow)
	}
	f.Abs(f)
	f.SetMantExp(f, FracBits)
	i, _ := f.Int(nil)
	if i.BitLen() > 128 {
		return saturate(neg), fmt.Errorf("fixed: parse %q: %w", s, ErrOverflow)
	}
	lo := new(big.Int).And(i, new(big.Int).SetUint64(^uint64(0))).Uint64()
	hi := new(big.Int).Rsh(i, 64).Uint64()
	return mk(neg, hi, lo), nil
}

func (a Real) bigFloat() *big.Float {
	i := new(big.Int).SetUint64(a.hi)
	i.Lsh(i, 64)
	i.Or(i, new(big.Int).SetUint64(a.lo))
	f := new(big.Float).SetPrec(128).SetInt(i)
	f.SetMantExp(f, -FracBits)
	if a.neg {
		f.Neg(f)
	}
	return f
}

// Text formats a like big.Float.Text.
func (a Real) Text(format byte, prec int) string {
	if a.ovf {
		if a.neg {
			return "-overflow"
		}
		return "+overflow"
	}
	return a.bigFloat().Text(format, prec)
}

// String returns the shortest decimal that parses back to a.
func (a Real) String() string { return a.Text('g', -1) }

// Set implements flag.Value.
func (a *Real) Set(s string) error {
	r, err := Parse(s)
	if err != nil {
		return err
	}
	*a = r
	return nil
}
