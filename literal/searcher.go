package literal

import (
	"bytes"
	"fmt"

	"github.com/coregx/ahocorasick"
)

// LiteralSearcher finds occurrences of a set of required literals. It
// is built from prefix or suffix literals and consulted by the match
// engines to skip regions of the haystack that cannot contain a match.
type LiteralSearcher struct {
	complete bool
	lcp      *FreqyPacked
	lcs      *FreqyPacked
	matcher  matcher
}

type matcherKind uint8

const (
	// Zero literals, or literals too common to be worth searching.
	matcherEmpty matcherKind = iota
	// All literals are one byte.
	matcherBytes
	// One literal with a rare byte to anchor on.
	matcherFreqyPacked
	// One long literal of common bytes.
	matcherBoyerMoore
	// Several literals.
	matcherAhoCorasick
)

type matcher struct {
	kind matcherKind
	sset *SingleByteSet
	fp   *FreqyPacked
	bm   *BoyerMooreSearch
	ac   *ahocorasick.Automaton
	lits [][]byte
}

// Empty returns a searcher that never matches.
func Empty() *LiteralSearcher {
	return newSearcher(NewSeq(), matcher{kind: matcherEmpty})
}

// Prefixes returns a searcher over the prefix literals in seq.
func Prefixes(seq *Seq) *LiteralSearcher {
	return newSearcher(seq, newMatcher(seq, PrefixByteSet(seq)))
}

// Suffixes returns a searcher over the suffix literals in seq.
func Suffixes(seq *Seq) *LiteralSearcher {
	return newSearcher(seq, newMatcher(seq, SuffixByteSet(seq)))
}

func newSearcher(seq *Seq, m matcher) *LiteralSearcher {
	return &LiteralSearcher{
		complete: seq.AllComplete(),
		lcp:      NewFreqyPacked(seq.LongestCommonPrefix()),
		lcs:      NewFreqyPacked(seq.LongestCommonSuffix()),
		matcher:  m,
	}
}

// newMatcher picks the cheapest strategy that is still selective
// enough for the literals at hand.
func newMatcher(seq *Seq, sset *SingleByteSet) matcher {
	if seq.IsEmpty() {
		return matcher{kind: matcherEmpty}
	}
	// Searching for any of 26+ distinct start bytes hits on almost
	// every position; the searcher would only slow the engines down.
	if sset.Len() >= 26 {
		return matcher{kind: matcherEmpty}
	}
	if sset.Complete() {
		return matcher{kind: matcherBytes, sset: sset}
	}
	if seq.Len() == 1 {
		lit := seq.Get(0).Bytes
		if ShouldUseBoyerMoore(lit) {
			return matcher{kind: matcherBoyerMoore, bm: NewBoyerMooreSearch(lit)}
		}
		return matcher{kind: matcherFreqyPacked, fp: NewFreqyPacked(lit)}
	}
	lits := make([][]byte, seq.Len())
	builder := ahocorasick.NewBuilder()
	for i := 0; i < seq.Len(); i++ {
		lits[i] = seq.Get(i).Bytes
		builder.AddPattern(lits[i])
	}
	auto, err := builder.Build()
	if err != nil {
		return matcher{kind: matcherEmpty}
	}
	return matcher{kind: matcherAhoCorasick, ac: auto, lits: lits}
}

// Complete reports whether a hit from Find is a whole match, not just
// a candidate position.
func (s *LiteralSearcher) Complete() bool {
	return s.complete && !s.IsEmpty()
}

// Find returns the bounds of the leftmost occurrence of any literal in
// haystack. ok is false when no literal occurs.
func (s *LiteralSearcher) Find(haystack []byte) (start, end int, ok bool) {
	switch s.matcher.kind {
	case matcherEmpty:
		return 0, 0, true
	case matcherBytes:
		i := s.matcher.sset.Find(haystack)
		if i < 0 {
			return 0, 0, false
		}
		return i, i + 1, true
	case matcherFreqyPacked:
		i := s.matcher.fp.Find(haystack)
		if i < 0 {
			return 0, 0, false
		}
		return i, i + s.matcher.fp.Len(), true
	case matcherBoyerMoore:
		i := s.matcher.bm.Find(haystack)
		if i < 0 {
			return 0, 0, false
		}
		return i, i + s.matcher.bm.Len(), true
	case matcherAhoCorasick:
		m := s.matcher.ac.Find(haystack, 0)
		if m == nil {
			return 0, 0, false
		}
		return m.Start, m.End, true
	}
	panic("literal: unknown matcher")
}

// FindStart returns the bounds of the first literal that haystack
// starts with.
func (s *LiteralSearcher) FindStart(haystack []byte) (start, end int, ok bool) {
	for _, lit := range s.Literals() {
		if len(lit) <= len(haystack) && bytes.Equal(lit, haystack[:len(lit)]) {
			return 0, len(lit), true
		}
	}
	return 0, 0, false
}

// FindEnd returns the bounds of the first literal that haystack ends
// with.
func (s *LiteralSearcher) FindEnd(haystack []byte) (start, end int, ok bool) {
	for _, lit := range s.Literals() {
		if len(lit) <= len(haystack) && bytes.Equal(lit, haystack[len(haystack)-len(lit):]) {
			return len(haystack) - len(lit), len(haystack), true
		}
	}
	return 0, 0, false
}

// Literals returns the literals being searched for.
func (s *LiteralSearcher) Literals() [][]byte {
	switch s.matcher.kind {
	case matcherEmpty:
		return nil
	case matcherBytes:
		lits := make([][]byte, len(s.matcher.sset.dense))
		for i, b := range s.matcher.sset.dense {
			lits[i] = []byte{b}
		}
		return lits
	case matcherFreqyPacked:
		return [][]byte{s.matcher.fp.pat}
	case matcherBoyerMoore:
		return [][]byte{s.matcher.bm.pattern}
	case matcherAhoCorasick:
		return s.matcher.lits
	}
	panic("literal: unknown matcher")
}

// LCP returns a searcher over the longest common prefix of the
// literals.
func (s *LiteralSearcher) LCP() *FreqyPacked {
	return s.lcp
}

// LCS returns a searcher over the longest common suffix of the
// literals.
func (s *LiteralSearcher) LCS() *FreqyPacked {
	return s.lcs
}

// IsEmpty reports whether there are no literals to search for.
func (s *LiteralSearcher) IsEmpty() bool {
	return s.Len() == 0
}

// Len returns the number of literals.
func (s *LiteralSearcher) Len() int {
	switch s.matcher.kind {
	case matcherEmpty:
		return 0
	case matcherBytes:
		return s.matcher.sset.Len()
	case matcherFreqyPacked, matcherBoyerMoore:
		return 1
	case matcherAhoCorasick:
		return len(s.matcher.lits)
	}
	panic("literal: unknown matcher")
}

// ApproximateSize returns the memory used by the searcher in bytes.
func (s *LiteralSearcher) ApproximateSize() int {
	size := 0
	switch s.matcher.kind {
	case matcherBytes:
		size += 256 + s.matcher.sset.Len()
	case matcherFreqyPacked:
		size += s.matcher.fp.Len()
	case matcherBoyerMoore:
		size += 256*8 + s.matcher.bm.Len()
	case matcherAhoCorasick:
		for _, lit := range s.matcher.lits {
			size += len(lit)
		}
	}
	size += s.lcp.Len() + s.lcs.Len()
	return size
}

func (s *LiteralSearcher) String() string {
	var kind string
	switch s.matcher.kind {
	case matcherEmpty:
		kind = "empty"
	case matcherBytes:
		kind = "bytes"
	case matcherFreqyPacked:
		kind = "freqy"
	case matcherBoyerMoore:
		kind = "boyer-moore"
	case matcherAhoCorasick:
		kind = "aho-corasick"
	}
	return fmt.Sprintf("searcher{%s, %d literals, complete=%t}", kind, s.Len(), s.Complete())
}
