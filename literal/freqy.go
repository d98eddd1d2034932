package literal

import (
	"bytes"
	"unicode/utf8"

	"github.com/coregx/reprog/simd"
)

// FreqyPacked searches for a single literal by running memchr on the
// rarest byte of the pattern instead of its first byte. Common leading
// bytes like spaces or 'e' make a naive memchr-on-first-byte search
// degenerate; anchoring on a rare byte keeps the candidate rate low. A
// second rare byte is checked before the full comparison to reject
// most false candidates cheaply.
type FreqyPacked struct {
	pat []byte
	// Rarest byte of the pattern and the offset of its last
	// occurrence.
	rare1  byte
	rare1i int
	// Second rarest distinct byte and the offset of its last
	// occurrence. Equal to rare1 when the pattern has one distinct
	// byte.
	rare2  byte
	rare2i int
}

// NewFreqyPacked builds a searcher for pat. An empty pattern yields a
// searcher that never matches.
func NewFreqyPacked(pat []byte) *FreqyPacked {
	if len(pat) == 0 {
		return &FreqyPacked{}
	}
	rare1 := pat[0]
	rare2 := pat[0]
	for _, b := range pat[1:] {
		if simd.ByteRank(b) < simd.ByteRank(rare1) {
			rare1 = b
		}
	}
	for _, b := range pat[1:] {
		if rare1 == rare2 {
			rare2 = b
		} else if b != rare1 && simd.ByteRank(b) < simd.ByteRank(rare2) {
			rare2 = b
		}
	}
	rare1i := lastIndexByte(pat, rare1)
	rare2i := lastIndexByte(pat, rare2)
	return &FreqyPacked{
		pat:    pat,
		rare1:  rare1,
		rare1i: rare1i,
		rare2:  rare2,
		rare2i: rare2i,
	}
}

func lastIndexByte(pat []byte, b byte) int {
	for i := len(pat) - 1; i >= 0; i-- {
		if pat[i] == b {
			return i
		}
	}
	panic("literal: rare byte not in pattern")
}

// Find returns the start of the first occurrence of the pattern in
// haystack, or -1.
func (f *FreqyPacked) Find(haystack []byte) int {
	if len(f.pat) == 0 {
		return -1
	}
	i := f.rare1i
	for i+len(f.pat)-f.rare1i <= len(haystack) {
		found := simd.Memchr(haystack[i:], f.rare1)
		if found < 0 {
			return -1
		}
		i += found
		start := i - f.rare1i
		end := start + len(f.pat)
		if end > len(haystack) {
			return -1
		}
		aligned := haystack[start:end]
		if aligned[f.rare2i] == f.rare2 && bytes.Equal(aligned, f.pat) {
			return start
		}
		i++
	}
	return -1
}

// IsPrefix reports whether text starts with the pattern.
func (f *FreqyPacked) IsPrefix(text []byte) bool {
	if len(text) < len(f.pat) {
		return false
	}
	return bytes.Equal(text[:len(f.pat)], f.pat)
}

// IsSuffix reports whether text ends with the pattern.
func (f *FreqyPacked) IsSuffix(text []byte) bool {
	if len(text) < len(f.pat) {
		return false
	}
	return bytes.Equal(text[len(text)-len(f.pat):], f.pat)
}

// Len returns the pattern length in bytes.
func (f *FreqyPacked) Len() int {
	return len(f.pat)
}

// CharLen returns the pattern length in codepoints, counting invalid
// bytes as one codepoint each.
func (f *FreqyPacked) CharLen() int {
	return utf8.RuneCount(f.pat)
}
