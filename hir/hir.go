// Package hir defines the high-level intermediate representation of a
// regular expression: the syntax tree consumed by the compiler.
//
// An Hir is a tagged tree. Each node is a Kind plus the fields that
// kind uses; children live in Subs. Trees are built by the constructor
// functions in this package (or converted from regexp/syntax via
// FromSyntax) and are treated as immutable afterwards.
package hir

// Kind identifies the node kind of an Hir.
type Kind uint8

const (
	// KindEmpty matches the empty string.
	KindEmpty Kind = iota
	// KindLiteral matches a single codepoint or raw byte.
	KindLiteral
	// KindClass matches any codepoint or byte in a set of ranges.
	KindClass
	// KindAnchor is a zero-width position assertion.
	KindAnchor
	// KindWordBoundary is a zero-width word-boundary assertion.
	KindWordBoundary
	// KindGroup wraps a sub-expression, possibly capturing.
	KindGroup
	// KindConcat matches its children in sequence.
	KindConcat
	// KindAlternation matches any one of its children.
	KindAlternation
	// KindRepetition repeats its child.
	KindRepetition
)

// RuneRange is an inclusive codepoint range in a Unicode class.
// Ranges within a class must be sorted and non-overlapping.
type RuneRange struct {
	Lo, Hi rune
}

// ByteRange is an inclusive byte range in a byte class.
// Ranges within a class must be sorted and non-overlapping.
type ByteRange struct {
	Lo, Hi byte
}

// AnchorKind distinguishes position assertions.
type AnchorKind uint8

const (
	// AnchorStartLine asserts the start of the input or a position
	// just after a newline.
	AnchorStartLine AnchorKind = iota
	// AnchorEndLine asserts the end of the input or a position just
	// before a newline.
	AnchorEndLine
	// AnchorStartText asserts the start of the input.
	AnchorStartText
	// AnchorEndText asserts the end of the input.
	AnchorEndText
)

// BoundaryKind distinguishes word-boundary assertions.
type BoundaryKind uint8

const (
	// BoundaryUnicode asserts a Unicode word boundary.
	BoundaryUnicode BoundaryKind = iota
	// BoundaryUnicodeNegate asserts the absence of a Unicode word
	// boundary.
	BoundaryUnicodeNegate
	// BoundaryASCII asserts an ASCII word boundary.
	BoundaryASCII
	// BoundaryASCIINegate asserts the absence of an ASCII word
	// boundary.
	BoundaryASCIINegate
)

// GroupInfo describes a group node. Capturing groups carry a capture
// index starting at 1 (index 0 is reserved for the whole match) and an
// optional name.
type GroupInfo struct {
	Capture bool
	Index   int
	Name    string
}

// RepetitionKind distinguishes repetition operators.
type RepetitionKind uint8

const (
	// RepZeroOrOne is `?`.
	RepZeroOrOne RepetitionKind = iota
	// RepZeroOrMore is `*`.
	RepZeroOrMore
	// RepOneOrMore is `+`.
	RepOneOrMore
	// RepRange is `{n}`, `{n,}` or `{n,m}`.
	RepRange
)

// RepetitionInfo describes a repetition node. For RepRange, Max < 0
// means unbounded (`{n,}`). Greedy repetitions prefer matching the
// body; lazy repetitions prefer skipping it.
type RepetitionInfo struct {
	Kind   RepetitionKind
	Min    int
	Max    int
	Greedy bool
}

// Hir is a single node of the syntax tree. Which fields are meaningful
// depends on Kind:
//
//	KindLiteral      Rune, or Byte when IsByte is set
//	KindClass        RuneRanges, or ByteRanges (exactly one is non-nil)
//	KindAnchor       Anchor
//	KindWordBoundary Boundary
//	KindGroup        Group, Subs[0]
//	KindConcat       Subs
//	KindAlternation  Subs
//	KindRepetition   Rep, Subs[0]
type Hir struct {
	Kind Kind

	Rune   rune
	Byte   byte
	IsByte bool

	RuneRanges []RuneRange
	ByteRanges []ByteRange

	Anchor   AnchorKind
	Boundary BoundaryKind

	Group GroupInfo
	Rep   RepetitionInfo

	Subs []*Hir
}

// Empty returns a node matching the empty string.
func Empty() *Hir {
	return &Hir{Kind: KindEmpty}
}

// Char returns a literal matching the codepoint r.
func Char(r rune) *Hir {
	return &Hir{Kind: KindLiteral, Rune: r}
}

// Byte returns a literal matching the raw byte b. Byte literals
// require byte-mode compilation unless b is ASCII.
func Byte(b byte) *Hir {
	return &Hir{Kind: KindLiteral, Byte: b, IsByte: true}
}

// ClassUnicode returns a class matching any codepoint in ranges.
func ClassUnicode(ranges []RuneRange) *Hir {
	return &Hir{Kind: KindClass, RuneRanges: ranges}
}

// ClassBytes returns a class matching any byte in ranges.
func ClassBytes(ranges []ByteRange) *Hir {
	return &Hir{Kind: KindClass, ByteRanges: ranges}
}

// AnyChar returns a class matching any codepoint, `(?s:.)`.
func AnyChar() *Hir {
	return ClassUnicode([]RuneRange{{Lo: 0, Hi: maxRune}})
}

// AnyByte returns a class matching any byte.
func AnyByte() *Hir {
	return ClassBytes([]ByteRange{{Lo: 0x00, Hi: 0xFF}})
}

const maxRune = 0x10FFFF

// Anchor returns a position assertion node.
func Anchor(kind AnchorKind) *Hir {
	return &Hir{Kind: KindAnchor, Anchor: kind}
}

// WordBoundary returns a word-boundary assertion node.
func WordBoundary(kind BoundaryKind) *Hir {
	return &Hir{Kind: KindWordBoundary, Boundary: kind}
}

// Capture returns a capturing group around sub. Index must be >= 1;
// name may be empty for unnamed groups.
func Capture(index int, name string, sub *Hir) *Hir {
	return &Hir{
		Kind:  KindGroup,
		Group: GroupInfo{Capture: true, Index: index, Name: name},
		Subs:  []*Hir{sub},
	}
}

// Group returns a non-capturing group around sub.
func Group(sub *Hir) *Hir {
	return &Hir{Kind: KindGroup, Subs: []*Hir{sub}}
}

// Concat returns a node matching subs in sequence.
func Concat(subs ...*Hir) *Hir {
	return &Hir{Kind: KindConcat, Subs: subs}
}

// Alternation returns a node matching any one of subs, preferring
// earlier alternatives.
func Alternation(subs ...*Hir) *Hir {
	return &Hir{Kind: KindAlternation, Subs: subs}
}

// Quest returns `sub?`.
func Quest(sub *Hir, greedy bool) *Hir {
	return repetition(RepZeroOrOne, 0, -1, greedy, sub)
}

// Star returns `sub*`.
func Star(sub *Hir, greedy bool) *Hir {
	return repetition(RepZeroOrMore, 0, -1, greedy, sub)
}

// Plus returns `sub+`.
func Plus(sub *Hir, greedy bool) *Hir {
	return repetition(RepOneOrMore, 1, -1, greedy, sub)
}

// Repeat returns `sub{min,max}`. A negative max means unbounded.
func Repeat(sub *Hir, min, max int, greedy bool) *Hir {
	return repetition(RepRange, min, max, greedy, sub)
}

func repetition(kind RepetitionKind, min, max int, greedy bool, sub *Hir) *Hir {
	return &Hir{
		Kind: KindRepetition,
		Rep:  RepetitionInfo{Kind: kind, Min: min, Max: max, Greedy: greedy},
		Subs: []*Hir{sub},
	}
}

// IsAnchoredStart reports whether every match of this expression must
// begin at the start of the input.
func (h *Hir) IsAnchoredStart() bool {
	switch h.Kind {
	case KindAnchor:
		return h.Anchor == AnchorStartText
	case KindGroup:
		return h.Subs[0].IsAnchoredStart()
	case KindConcat:
		return len(h.Subs) > 0 && h.Subs[0].IsAnchoredStart()
	case KindAlternation:
		if len(h.Subs) == 0 {
			return false
		}
		for _, sub := range h.Subs {
			if !sub.IsAnchoredStart() {
				return false
			}
		}
		return true
	case KindRepetition:
		return h.Rep.Min >= 1 && h.Subs[0].IsAnchoredStart()
	}
	return false
}

// IsAnchoredEnd reports whether every match of this expression must
// end at the end of the input.
func (h *Hir) IsAnchoredEnd() bool {
	switch h.Kind {
	case KindAnchor:
		return h.Anchor == AnchorEndText
	case KindGroup:
		return h.Subs[0].IsAnchoredEnd()
	case KindConcat:
		return len(h.Subs) > 0 && h.Subs[len(h.Subs)-1].IsAnchoredEnd()
	case KindAlternation:
		if len(h.Subs) == 0 {
			return false
		}
		for _, sub := range h.Subs {
			if !sub.IsAnchoredEnd() {
				return false
			}
		}
		return true
	case KindRepetition:
		return h.Rep.Min >= 1 && h.Subs[0].IsAnchoredEnd()
	}
	return false
}
