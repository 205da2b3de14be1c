// Package fixed provides Real, the coordinate type used for all complex-plane math.
//
// Real is a signed fixed-point number stored as a 128-bit magnitude plus a sign:
//
//	8 integer bits . 120 fractional bits   (magnitude < 256, step 2^-120 ≈ 7.5e-37)
//
// The integer part covers the untransformed Mandelbrot domain with a lot of room for
// recentering, and the fractional part keeps pixel deltas far below what float64 can
// add to a center coordinate once the zoom drops under ~1e-16.
//
// Overflow:
//
// Results that do not fit saturate to the largest magnitude with the right sign and
// carry a sticky overflow flag. The flag propagates through every later operation,
// so one check at the end of a computation is enough. Nothing wraps.
package fixed
