// Package conv provides checked narrowing conversions used at the
// boundary between Go's int-sized lengths and the compact integer
// types of compiled programs.
//
// Overflow panics rather than returning an error: an instruction index
// that does not fit its wire type means the compiler's own size limit
// logic is broken, not that the caller passed bad input.
package conv

import "math"

// IntToUint32 converts n to uint32, panicking if n is negative or does
// not fit.
func IntToUint32(n int) uint32 {
	// Compare as uint so the check is valid on 32-bit platforms too.
	if n < 0 || uint(n) > math.MaxUint32 {
		panic("conv: int value out of uint32 range")
	}
	return uint32(n)
}
