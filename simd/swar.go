package simd

import (
	"encoding/binary"
	"math/bits"
)

const (
	lo8 = 0x0101010101010101
	hi8 = 0x8080808080808080
)

// hasZeroByte returns a word with the high bit set in every byte lane
// of v that is zero (Hacker's Delight 6-1). Subtracting 1 from each
// lane borrows exactly when the lane was zero; masking with ^v rejects
// lanes that merely had their high bit set.
func hasZeroByte(v uint64) uint64 {
	return (v - lo8) & ^v & hi8
}

// broadcast replicates b into every byte of a uint64.
func broadcast(b byte) uint64 {
	return uint64(b) * lo8
}

func memchrSWAR(haystack []byte, needle byte) int {
	n := len(haystack)
	if n < 8 {
		for i := 0; i < n; i++ {
			if haystack[i] == needle {
				return i
			}
		}
		return -1
	}

	mask := broadcast(needle)
	i := 0
	for ; i+8 <= n; i += 8 {
		chunk := binary.LittleEndian.Uint64(haystack[i:])
		if z := hasZeroByte(chunk ^ mask); z != 0 {
			return i + bits.TrailingZeros64(z)/8
		}
	}
	for ; i < n; i++ {
		if haystack[i] == needle {
			return i
		}
	}
	return -1
}

// memchrWide processes 32 bytes per iteration. Callers guarantee
// len(haystack) >= wideThreshold.
func memchrWide(haystack []byte, needle byte) int {
	n := len(haystack)
	mask := broadcast(needle)
	i := 0
	for ; i+32 <= n; i += 32 {
		c0 := binary.LittleEndian.Uint64(haystack[i:])
		c1 := binary.LittleEndian.Uint64(haystack[i+8:])
		c2 := binary.LittleEndian.Uint64(haystack[i+16:])
		c3 := binary.LittleEndian.Uint64(haystack[i+24:])
		z0 := hasZeroByte(c0 ^ mask)
		z1 := hasZeroByte(c1 ^ mask)
		z2 := hasZeroByte(c2 ^ mask)
		z3 := hasZeroByte(c3 ^ mask)
		if z0|z1|z2|z3 == 0 {
			continue
		}
		if z0 != 0 {
			return i + bits.TrailingZeros64(z0)/8
		}
		if z1 != 0 {
			return i + 8 + bits.TrailingZeros64(z1)/8
		}
		if z2 != 0 {
			return i + 16 + bits.TrailingZeros64(z2)/8
		}
		return i + 24 + bits.TrailingZeros64(z3)/8
	}
	if i < n {
		if j := memchrSWAR(haystack[i:], needle); j >= 0 {
			return i + j
		}
	}
	return -1
}

func memchr2SWAR(haystack []byte, needle1, needle2 byte) int {
	n := len(haystack)
	if n < 8 {
		for i := 0; i < n; i++ {
			if b := haystack[i]; b == needle1 || b == needle2 {
				return i
			}
		}
		return -1
	}

	mask1 := broadcast(needle1)
	mask2 := broadcast(needle2)
	i := 0
	for ; i+8 <= n; i += 8 {
		chunk := binary.LittleEndian.Uint64(haystack[i:])
		z := hasZeroByte(chunk^mask1) | hasZeroByte(chunk^mask2)
		if z != 0 {
			return i + bits.TrailingZeros64(z)/8
		}
	}
	for ; i < n; i++ {
		if b := haystack[i]; b == needle1 || b == needle2 {
			return i
		}
	}
	return -1
}

func memchr3SWAR(haystack []byte, needle1, needle2, needle3 byte) int {
	n := len(haystack)
	if n < 8 {
		for i := 0; i < n; i++ {
			if b := haystack[i]; b == needle1 || b == needle2 || b == needle3 {
				return i
			}
		}
		return -1
	}

	mask1 := broadcast(needle1)
	mask2 := broadcast(needle2)
	mask3 := broadcast(needle3)
	i := 0
	for ; i+8 <= n; i += 8 {
		chunk := binary.LittleEndian.Uint64(haystack[i:])
		z := hasZeroByte(chunk^mask1) | hasZeroByte(chunk^mask2) | hasZeroByte(chunk^mask3)
		if z != 0 {
			return i + bits.TrailingZeros64(z)/8
		}
	}
	for ; i < n; i++ {
		if b := haystack[i]; b == needle1 || b == needle2 || b == needle3 {
			return i
		}
	}
	return -1
}
