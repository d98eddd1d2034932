package literal

import "github.com/coregx/reprog/simd"

// SingleByteSet is the set of bytes a match can start (or end) with.
// With three or fewer distinct bytes the scan runs on memchr; beyond
// that it falls back to a per-byte membership test.
type SingleByteSet struct {
	sparse   [256]bool
	dense    []byte
	complete bool
	allASCII bool
}

// PrefixByteSet collects the first byte of every literal.
func PrefixByteSet(s *Seq) *SingleByteSet {
	set := newSingleByteSet()
	for i := 0; i < s.Len(); i++ {
		lit := s.Get(i)
		if len(lit.Bytes) == 0 {
			set.complete = false
			continue
		}
		set.add(lit.Bytes[0], len(lit.Bytes))
	}
	return set
}

// SuffixByteSet collects the last byte of every literal.
func SuffixByteSet(s *Seq) *SingleByteSet {
	set := newSingleByteSet()
	for i := 0; i < s.Len(); i++ {
		lit := s.Get(i)
		if len(lit.Bytes) == 0 {
			set.complete = false
			continue
		}
		set.add(lit.Bytes[len(lit.Bytes)-1], len(lit.Bytes))
	}
	return set
}

func newSingleByteSet() *SingleByteSet {
	return &SingleByteSet{complete: true, allASCII: true}
}

func (s *SingleByteSet) add(b byte, litLen int) {
	if litLen > 1 {
		s.complete = false
	}
	if b > 0x7F {
		s.allASCII = false
	}
	if !s.sparse[b] {
		s.sparse[b] = true
		s.dense = append(s.dense, b)
	}
}

// Len returns the number of distinct bytes in the set.
func (s *SingleByteSet) Len() int {
	return len(s.dense)
}

// Complete reports whether every literal is exactly one byte, so a set
// hit is a full match.
func (s *SingleByteSet) Complete() bool {
	return s.complete
}

// AllASCII reports whether every byte in the set is ASCII.
func (s *SingleByteSet) AllASCII() bool {
	return s.allASCII
}

// Contains reports whether b is in the set.
func (s *SingleByteSet) Contains(b byte) bool {
	return s.sparse[b]
}

// Find returns the index of the first byte of text in the set, or -1.
func (s *SingleByteSet) Find(text []byte) int {
	switch len(s.dense) {
	case 0:
		return -1
	case 1:
		return simd.Memchr(text, s.dense[0])
	case 2:
		return simd.Memchr2(text, s.dense[0], s.dense[1])
	case 3:
		return simd.Memchr3(text, s.dense[0], s.dense[1], s.dense[2])
	default:
		for i, b := range text {
			if s.sparse[b] {
				return i
			}
		}
		return -1
	}
}
