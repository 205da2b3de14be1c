package fixed

import (
	"errors"
	"math"
	"math/bits"
)

const (
	// IntBits is the number of integer bits in the magnitude.
	IntBits = 8
	// FracBits is the number of fractional bits in the magnitude.
	FracBits = 128 - IntBits

	// hiFrac is the number of fractional bits held by the high word.
	hiFrac = FracBits - 64
)

// Bound is the exclusive magnitude limit of a Real.
const Bound = 1 << IntBits

var ErrOverflow = errors.New("fixed: overflow")

// Real is a signed Q8.120 fixed-point number.
//
// The zero value is 0.
type Real struct {
	hi, lo uint64 // magnitude
	neg    bool   // never set for zero
	ovf    bool
}

var (
	Zero = Real{}
	One  = FromInt(1)
	Max  = Real{hi: math.MaxUint64, lo: math.MaxUint64}
)

func mk(neg bool, hi, lo uint64) Real {
	if hi == 0 && lo == 0 {
		neg = false
	}
	return Real{hi: hi, lo: lo, neg: neg}
}

func saturate(neg bool) Real {
	return Real{hi: math.MaxUint64, lo: math.MaxUint64, neg: neg, ovf: true}
}

// FromInt returns n as a Real. |n| >= Bound saturates.
func FromInt(n int) Real {
	if n <= -Bound || n >= Bound {
		return saturate(n < 0)
	}
	m := uint64(n)
	if n < 0 {
		m = -m
	}
	return mk(n < 0, m<<hiFrac, 0)
}

// FromFloat64 converts f exactly when |f| < Bound. NaN, infinities and out-of-range
// values saturate; use FromFloat64Checked to get an error instead.
func FromFloat64(f float64) Real {
	if math.IsNaN(f) {
		return saturate(false)
	}
	neg := math.Signbit(f)
	a := math.Abs(f)
	if a >= Bound {
		return saturate(neg)
	}
	if a == 0 {
		return Zero
	}
	frac, exp := math.Frexp(a)
	m := uint64(math.Ldexp(frac, 53))
	// a = m * 2^(exp-53), raw = a * 2^FracBits
	s := exp - 53 + FracBits
	var hi, lo uint64
	if s >= 0 {
		hi, lo = shl(0, m, uint(s))
	} else {
		hi, lo = shr(0, m, uint(-s))
	}
	return mk(neg, hi, lo)
}

// FromFloat64Checked is FromFloat64 with ErrOverflow for values it would saturate.
func FromFloat64Checked(f float64) (Real, error) {
	r := FromFloat64(f)
	if r.ovf {
		return r, ErrOverflow
	}
	return r, nil
}

func shl(hi, lo uint64, s uint) (uint64, uint64) {
	switch {
	case s >= 128:
		return 0, 0
	case s >= 64:
		return lo << (s - 64), 0
	default:
		return hi<<s | lo>>(64-s), lo << s
	}
}

func shr(hi, lo uint64, s uint) (uint64, uint64) {
	switch {
	case s >= 128:
		return 0, 0
	case s >= 64:
		return 0, hi >> (s - 64)
	default:
		return hi >> s, lo>>s | hi<<(64-s)
	}
}

// Float64 returns the nearest float64. Overflowed values return ±Inf.
func (a Real) Float64() float64 {
	if a.ovf {
		if a.neg {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}
	v := math.Ldexp(float64(a.hi), 64-FracBits) + math.Ldexp(float64(a.lo), -FracBits)
	if a.neg {
		return -v
	}
	return v
}

// Overflowed reports whether a, or any value a was computed from, left the range.
func (a Real) Overflowed() bool { return a.ovf }

func (a Real) IsZero() bool { return a.hi == 0 && a.lo == 0 }

// Sign returns -1, 0 or +1.
func (a Real) Sign() int {
	switch {
	case a.IsZero():
		return 0
	case a.neg:
		return -1
	default:
		return 1
	}
}

func (a Real) Neg() Real {
	if a.IsZero() {
		return a
	}
	a.neg = !a.neg
	return a
}

func (a Real) Abs() Real {
	a.neg = false
	return a
}

func cmpMag(a, b Real) int {
	switch {
	case a.hi < b.hi:
		return -1
	case a.hi > b.hi:
		return 1
	case a.lo < b.lo:
		return -1
	case a.lo > b.lo:
		return 1
	default:
		return 0
	}
}

// Cmp returns -1, 0 or +1 depending on whether a is less than, equal to or greater than b.
func (a Real) Cmp(b Real) int {
	if a.neg != b.neg {
		if a.neg {
			return -1
		}
		return 1
	}
	c := cmpMag(a, b)
	if a.neg {
		return -c
	}
	return c
}

// Add returns a+b.
func (a Real) Add(b Real) Real {
	var r Real
	switch {
	case a.neg == b.neg:
		lo, c := bits.Add64(a.lo, b.lo, 0)
		hi, c := bits.Add64(a.hi, b.hi, c)
		if c != 0 {
			return saturate(a.neg)
		}
		r = mk(a.neg, hi, lo)
	case cmpMag(a, b) >= 0:
		lo, bw := bits.Sub64(a.lo, b.lo, 0)
		hi, _ := bits.Sub64(a.hi, b.hi, bw)
		r = mk(a.neg, hi, lo)
	default:
		lo, bw := bits.Sub64(b.lo, a.lo, 0)
		hi, _ := bits.Sub64(b.hi, a.hi, bw)
		r = mk(b.neg, hi, lo)
	}
	r.ovf = a.ovf || b.ovf
	return r
}

// Sub returns a-b.
func (a Real) Sub(b Real) Real { return a.Add(b.Neg()) }

// Mul returns a*b rounded to nearest.
func (a Real) Mul(b Real) Real {
	neg := a.neg != b.neg

	// 256-bit product p3:p2:p1:p0; p0 lies entirely below the kept bits.
	h00, _ := bits.Mul64(a.lo, b.lo)
	h01, l01 := bits.Mul64(a.lo, b.hi)
	h10, l10 := bits.Mul64(a.hi, b.lo)
	h11, l11 := bits.Mul64(a.hi, b.hi)

	var c, k1, k2 uint64
	p1, c := bits.Add64(h00, l01, 0)
	k1 = c
	p1, c = bits.Add64(p1, l10, 0)
	k1 += c

	p2, c := bits.Add64(h01, h10, 0)
	k2 = c
	p2, c = bits.Add64(p2, l11, 0)
	k2 += c
	p2, c = bits.Add64(p2, k1, 0)
	k2 += c

	p3 := h11 + k2
	if p3>>(64-IntBits) != 0 {
		return saturate(neg)
	}

	lo := p1>>hiFrac | p2<<(64-hiFrac)
	hi := p2>>hiFrac | p3<<(64-hiFrac)
	if p1&(1<<(hiFrac-1)) != 0 {
		lo, c = bits.Add64(lo, 1, 0)
		hi, c = bits.Add64(hi, 0, c)
		if c != 0 {
			return saturate(neg)
		}
	}

	r := mk(neg, hi, lo)
	r.ovf = a.ovf || b.ovf
	return r
}

// MulInt returns a*n without the precision loss of converting n first.
func (a Real) MulInt(n int) Real {
	neg := a.neg != (n < 0)
	m := uint64(n)
	if n < 0 {
		m = -m
	}
	h0, l0 := bits.Mul64(a.lo, m)
	h1, l1 := bits.Mul64(a.hi, m)
	mid, c := bits.Add64(l1, h0, 0)
	if h1+c != 0 {
		return saturate(neg)
	}
	r := mk(neg, mid, l0)
	r.ovf = a.ovf
	return r
}

// MulFloat returns a*f. f is converted with FromFloat64 first.
func (a Real) MulFloat(f float64) Real { return a.Mul(FromFloat64(f)) }
