// Package simd implements the byte search primitives the literal
// matchers are built on: memchr for one, two or three needle bytes,
// and a byte frequency table for rare-byte selection.
//
// The search loops use SWAR (SIMD within a register): eight haystack
// bytes are loaded as one uint64 and tested in parallel with bitwise
// arithmetic. On amd64 machines with AVX2 the single-needle search
// widens its stride to 32 bytes per iteration.
package simd

// wideThreshold is the minimum haystack length before the wide-stride
// loop pays for its extra setup.
const wideThreshold = 64

// Memchr returns the index of the first occurrence of needle in
// haystack, or -1.
func Memchr(haystack []byte, needle byte) int {
	if useWideLoops && len(haystack) >= wideThreshold {
		return memchrWide(haystack, needle)
	}
	return memchrSWAR(haystack, needle)
}

// Memchr2 returns the index of the first occurrence of either needle
// in haystack, or -1.
func Memchr2(haystack []byte, needle1, needle2 byte) int {
	return memchr2SWAR(haystack, needle1, needle2)
}

// Memchr3 returns the index of the first occurrence of any of the
// three needles in haystack, or -1.
func Memchr3(haystack []byte, needle1, needle2, needle3 byte) int {
	return memchr3SWAR(haystack, needle1, needle2, needle3)
}
