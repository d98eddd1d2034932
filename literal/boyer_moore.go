package literal

import (
	"bytes"
	"math/bits"

	"github.com/coregx/reprog/simd"
)

// md2 shift sentinel for one-byte patterns, which never take the md2
// path.
const md2Unavailable = 0xDEADBEAF

// bmNumUnroll is how deep the skip loop unrolls before it reassesses
// its progress.
const bmNumUnroll = 10

// BoyerMooreSearch is a Tuned Boyer-Moore single-pattern searcher. It
// runs an unrolled skip loop over the bad-character table and falls
// back to memchr on a rare guard byte when the table stops making
// headway. It pays off for longish patterns made entirely of common
// bytes, where FreqyPacked's rare-byte memchr has nothing rare to
// anchor on.
type BoyerMooreSearch struct {
	pattern []byte
	// skipTable[b] holds how far the window may advance when b is the
	// byte under the last pattern position.
	skipTable [256]int
	// guard is the rarest pattern byte; guardReverseIdx its offset
	// from the end of the pattern.
	guard           byte
	guardReverseIdx int
	// md2Shift realigns the window on the previous occurrence of the
	// last pattern byte after a failed match.
	md2Shift int
}

// NewBoyerMooreSearch builds a searcher for pattern, which must be
// non-empty.
func NewBoyerMooreSearch(pattern []byte) *BoyerMooreSearch {
	if len(pattern) == 0 {
		panic("literal: empty Boyer-Moore pattern")
	}
	b := &BoyerMooreSearch{pattern: pattern}
	b.compileSkipTable()
	b.selectGuard()
	b.compileMd2Shift()
	return b
}

func (b *BoyerMooreSearch) compileSkipTable() {
	for i := range b.skipTable {
		b.skipTable[i] = len(b.pattern)
	}
	// A byte's skip is the distance from its last occurrence to the
	// end of the pattern.
	for i, c := range b.pattern {
		b.skipTable[c] = len(b.pattern) - 1 - i
	}
}

func (b *BoyerMooreSearch) selectGuard() {
	b.guard = b.pattern[0]
	b.guardReverseIdx = len(b.pattern) - 1
	for i, c := range b.pattern {
		if simd.ByteRank(c) < simd.ByteRank(b.guard) {
			b.guard = c
			b.guardReverseIdx = len(b.pattern) - 1 - i
		}
	}
}

func (b *BoyerMooreSearch) compileMd2Shift() {
	shiftc := b.pattern[len(b.pattern)-1]
	if len(b.pattern) == 1 {
		b.md2Shift = md2Unavailable
		return
	}
	for i := len(b.pattern) - 2; i > 0; i-- {
		if b.pattern[i] == shiftc {
			b.md2Shift = len(b.pattern) - 1 - i
			return
		}
	}
	b.md2Shift = len(b.pattern) - 1
}

// Len returns the pattern length in bytes.
func (b *BoyerMooreSearch) Len() int {
	return len(b.pattern)
}

// Find returns the start of the first occurrence of the pattern in
// haystack, or -1.
func (b *BoyerMooreSearch) Find(haystack []byte) int {
	if len(haystack) < len(b.pattern) {
		return -1
	}

	windowEnd := len(b.pattern) - 1

	// Below this haystack size the skip loop cannot pay for its setup,
	// so the search runs one window at a time throughout.
	shortCircut := (bmNumUnroll + 2) * len(b.pattern)

	if len(haystack) > shortCircut {
		// The unrolled loop may overshoot by up to NUM_UNROLL skips,
		// so it must stop early enough that the overshoot stays in
		// bounds.
		backstop := len(haystack) - (bmNumUnroll+1)*len(b.pattern)
		for {
			we, ok := b.skipLoop(haystack, windowEnd, backstop)
			if !ok {
				return -1
			}
			windowEnd = we
			if windowEnd >= backstop {
				break
			}
			if b.checkMatch(haystack, windowEnd) {
				return windowEnd - (len(b.pattern) - 1)
			}
			skip := b.skipTable[haystack[windowEnd]]
			if skip == 0 {
				skip = b.md2Shift
			}
			windowEnd += skip
		}
	}

	for windowEnd < len(haystack) {
		if b.checkMatch(haystack, windowEnd) {
			return windowEnd - (len(b.pattern) - 1)
		}
		skip := b.skipTable[haystack[windowEnd]]
		if skip == 0 {
			skip = b.md2Shift
		}
		windowEnd += skip
	}
	return -1
}

// skipLoop advances the window with the bad-character table, ten
// skips per round. A zero skip inside a round means a candidate and
// returns immediately. After a full round, stalled progress hands the
// scan to memchr on the guard byte. Returns false when the pattern
// cannot occur in the rest of the haystack.
func (b *BoyerMooreSearch) skipLoop(haystack []byte, windowEnd, backstop int) (int, bool) {
	snapshot := windowEnd
	for {
		skip := b.skipTable[haystack[windowEnd]]
		windowEnd += skip
		skip = b.skipTable[haystack[windowEnd]]
		windowEnd += skip
		if skip != 0 {
			skip = b.skipTable[haystack[windowEnd]]
			windowEnd += skip
			skip = b.skipTable[haystack[windowEnd]]
			windowEnd += skip
			skip = b.skipTable[haystack[windowEnd]]
			windowEnd += skip
			if skip != 0 {
				skip = b.skipTable[haystack[windowEnd]]
				windowEnd += skip
				skip = b.skipTable[haystack[windowEnd]]
				windowEnd += skip
				skip = b.skipTable[haystack[windowEnd]]
				windowEnd += skip
				if skip != 0 {
					skip = b.skipTable[haystack[windowEnd]]
					windowEnd += skip
					skip = b.skipTable[haystack[windowEnd]]
					windowEnd += skip

					if windowEnd-snapshot > 16*(bits.UintSize/8) {
						if windowEnd >= backstop {
							return windowEnd, true
						}
						continue
					}
					// Rewind past the guard position so memchr cannot
					// miss a guard byte already inside the window.
					windowEnd -= 1 + b.guardReverseIdx
					if windowEnd < 0 {
						windowEnd = 0
					}
					gIdx := simd.Memchr(haystack[windowEnd:], b.guard)
					if gIdx < 0 {
						return 0, false
					}
					return windowEnd + gIdx + b.guardReverseIdx, true
				}
			}
		}
		return windowEnd, true
	}
}

// checkMatch reports whether the pattern ends at windowEnd.
func (b *BoyerMooreSearch) checkMatch(haystack []byte, windowEnd int) bool {
	start := windowEnd - (len(b.pattern) - 1)
	return bytes.Equal(haystack[start:windowEnd+1], b.pattern)
}

// ShouldUseBoyerMoore reports whether Tuned Boyer-Moore is likely to
// beat FreqyPacked for pattern: long enough to produce big skips, and
// with no byte rare enough for a memchr anchor.
func ShouldUseBoyerMoore(pattern []byte) bool {
	if len(pattern) <= 9 {
		return false
	}
	minRank := 255 - minInt(255, len(pattern)*4)
	if minRank < 150 {
		minRank = 150
	}
	for _, c := range pattern {
		if int(simd.ByteRank(c)) < minRank {
			return false
		}
	}
	return true
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
