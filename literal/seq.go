// Package literal builds fast pre-filters from the literal byte
// strings a regex match is known to require.
//
// The caller supplies a Seq of required literals (prefixes or
// suffixes, produced by an external extraction pass). From it,
// Prefixes or Suffixes picks the cheapest search strategy that is
// still selective: a byte-set scan, a frequency-guided memchr search,
// Tuned Boyer-Moore, or an Aho-Corasick automaton for larger sets. The
// resulting LiteralSearcher locates candidate match positions so the
// slower automaton engines only run where a match is possible.
package literal

import (
	"bytes"
	"fmt"
	"sort"
)

// Literal is one required byte string. Complete marks literals that
// cover an entire match by themselves rather than just its head or
// tail.
type Literal struct {
	Bytes    []byte
	Complete bool
}

// NewLiteral returns a literal over b.
func NewLiteral(b []byte, complete bool) Literal {
	return Literal{Bytes: b, Complete: complete}
}

// Len returns the literal's length in bytes.
func (l Literal) Len() int {
	return len(l.Bytes)
}

func (l Literal) String() string {
	return fmt.Sprintf("literal{%q, complete=%t}", l.Bytes, l.Complete)
}

// Seq is a set of alternative required literals.
type Seq struct {
	lits []Literal
}

// NewSeq returns a sequence holding lits.
func NewSeq(lits ...Literal) *Seq {
	return &Seq{lits: lits}
}

// Add appends a literal.
func (s *Seq) Add(lit Literal) {
	s.lits = append(s.lits, lit)
}

// Len returns the number of literals.
func (s *Seq) Len() int {
	if s == nil {
		return 0
	}
	return len(s.lits)
}

// Get returns the literal at index i.
func (s *Seq) Get(i int) Literal {
	return s.lits[i]
}

// IsEmpty reports whether the sequence has no literals.
func (s *Seq) IsEmpty() bool {
	return s.Len() == 0
}

// AllComplete reports whether the sequence is non-empty and every
// literal covers an entire match.
func (s *Seq) AllComplete() bool {
	if s.IsEmpty() {
		return false
	}
	for _, lit := range s.lits {
		if !lit.Complete {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (s *Seq) Clone() *Seq {
	c := &Seq{lits: make([]Literal, len(s.lits))}
	for i, lit := range s.lits {
		c.lits[i] = Literal{
			Bytes:    append([]byte(nil), lit.Bytes...),
			Complete: lit.Complete,
		}
	}
	return c
}

// Minimize drops literals made redundant by a shorter one: if "foo" is
// required, any text containing "foobar" already contains "foo", so
// keeping both only bloats the searcher. Relative order of the
// survivors is preserved.
func (s *Seq) Minimize() {
	if len(s.lits) < 2 {
		return
	}
	byLen := make([]Literal, len(s.lits))
	copy(byLen, s.lits)
	sort.SliceStable(byLen, func(i, j int) bool {
		return len(byLen[i].Bytes) < len(byLen[j].Bytes)
	})
	redundant := func(lit Literal) bool {
		for _, shorter := range byLen {
			if len(shorter.Bytes) >= len(lit.Bytes) {
				return false
			}
			if bytes.HasPrefix(lit.Bytes, shorter.Bytes) {
				return true
			}
		}
		return false
	}
	kept := s.lits[:0]
	for _, lit := range s.lits {
		if !redundant(lit) {
			kept = append(kept, lit)
		}
	}
	s.lits = kept
}

// LongestCommonPrefix returns the longest byte string every literal
// starts with.
func (s *Seq) LongestCommonPrefix() []byte {
	if s.IsEmpty() {
		return nil
	}
	lcp := s.lits[0].Bytes
	for _, lit := range s.lits[1:] {
		lcp = commonPrefix(lcp, lit.Bytes)
		if len(lcp) == 0 {
			break
		}
	}
	return lcp
}

// LongestCommonSuffix returns the longest byte string every literal
// ends with.
func (s *Seq) LongestCommonSuffix() []byte {
	if s.IsEmpty() {
		return nil
	}
	lcs := s.lits[0].Bytes
	for _, lit := range s.lits[1:] {
		lcs = commonSuffix(lcs, lit.Bytes)
		if len(lcs) == 0 {
			break
		}
	}
	return lcs
}

func commonPrefix(a, b []byte) []byte {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}

func commonSuffix(a, b []byte) []byte {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[len(a)-1-i] != b[len(b)-1-i] {
			return a[len(a)-i:]
		}
	}
	return a[len(a)-n:]
}
