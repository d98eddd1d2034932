// Package prog defines the compiled bytecode program produced by the
// compiler and consumed by matching engines.
//
// A Program is a flat instruction array addressed by integer program
// counters. Control flow is explicit: every instruction names its
// successor(s) by index, so an engine can interpret the program without
// any pointer chasing or recursion.
package prog

import (
	"fmt"
	"strings"
)

// InstPtr addresses an instruction within a Program.
type InstPtr = uint32

// InstOp identifies the kind of an instruction.
type InstOp uint8

const (
	// InstMatch reports a match for pattern MatchIndex.
	InstMatch InstOp = iota
	// InstSave records the current input position into slot Slot.
	InstSave
	// InstSplit forks execution to Goto and Goto2, in that preference
	// order.
	InstSplit
	// InstEmptyLook matches the zero-width assertion Look.
	InstEmptyLook
	// InstChar matches the single codepoint C.
	InstChar
	// InstRanges matches any codepoint in Ranges.
	InstRanges
	// InstBytes matches any byte in [Start, End].
	InstBytes
)

// String returns a short mnemonic for the opcode.
func (op InstOp) String() string {
	switch op {
	case InstMatch:
		return "Match"
	case InstSave:
		return "Save"
	case InstSplit:
		return "Split"
	case InstEmptyLook:
		return "EmptyLook"
	case InstChar:
		return "Char"
	case InstRanges:
		return "Ranges"
	case InstBytes:
		return "Bytes"
	}
	return fmt.Sprintf("InstOp(%d)", uint8(op))
}

// EmptyLook identifies a zero-width assertion.
type EmptyLook uint8

const (
	// StartLine matches at the start of the input or after a newline.
	StartLine EmptyLook = iota
	// EndLine matches at the end of the input or before a newline.
	EndLine
	// StartText matches only at the start of the input.
	StartText
	// EndText matches only at the end of the input.
	EndText
	// WordBoundary matches at a Unicode word boundary.
	WordBoundary
	// NotWordBoundary matches where WordBoundary does not.
	NotWordBoundary
	// WordBoundaryASCII matches at an ASCII word boundary.
	WordBoundaryASCII
	// NotWordBoundaryASCII matches where WordBoundaryASCII does not.
	NotWordBoundaryASCII
)

// String returns the assertion's name.
func (l EmptyLook) String() string {
	switch l {
	case StartLine:
		return "StartLine"
	case EndLine:
		return "EndLine"
	case StartText:
		return "StartText"
	case EndText:
		return "EndText"
	case WordBoundary:
		return "WordBoundary"
	case NotWordBoundary:
		return "NotWordBoundary"
	case WordBoundaryASCII:
		return "WordBoundaryASCII"
	case NotWordBoundaryASCII:
		return "NotWordBoundaryASCII"
	}
	return fmt.Sprintf("EmptyLook(%d)", uint8(l))
}

// RuneRange is an inclusive range of codepoints.
type RuneRange struct {
	Lo, Hi rune
}

// Inst is a single resolved instruction. Which fields are meaningful
// depends on Op:
//
//	InstMatch     MatchIndex
//	InstSave      Goto, Slot
//	InstSplit     Goto, Goto2
//	InstEmptyLook Goto, Look
//	InstChar      Goto, C
//	InstRanges    Goto, Ranges
//	InstBytes     Goto, Start, End
type Inst struct {
	Op    InstOp
	Goto  InstPtr
	Goto2 InstPtr

	C      rune
	Ranges []RuneRange

	Start byte
	End   byte

	Slot       int
	Look       EmptyLook
	MatchIndex int
}

// MatchesRune reports whether r is accepted by an InstChar or
// InstRanges instruction. Ranges are sorted and non-overlapping, so a
// binary-search split would work too; the range count is small enough
// that a linear scan wins.
func (i *Inst) MatchesRune(r rune) bool {
	switch i.Op {
	case InstChar:
		return i.C == r
	case InstRanges:
		for _, rr := range i.Ranges {
			if r < rr.Lo {
				return false
			}
			if r <= rr.Hi {
				return true
			}
		}
	}
	return false
}

// MatchesByte reports whether b is accepted by an InstBytes
// instruction.
func (i *Inst) MatchesByte(b byte) bool {
	return i.Op == InstBytes && i.Start <= b && b <= i.End
}

func (i *Inst) String() string {
	switch i.Op {
	case InstMatch:
		return fmt.Sprintf("Match(%d)", i.MatchIndex)
	case InstSave:
		return fmt.Sprintf("Save(%d) -> %d", i.Slot, i.Goto)
	case InstSplit:
		return fmt.Sprintf("Split(%d, %d)", i.Goto, i.Goto2)
	case InstEmptyLook:
		return fmt.Sprintf("%s -> %d", i.Look, i.Goto)
	case InstChar:
		return fmt.Sprintf("Char(%q) -> %d", i.C, i.Goto)
	case InstRanges:
		var sb strings.Builder
		sb.WriteString("Ranges(")
		for k, rr := range i.Ranges {
			if k > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%q-%q", rr.Lo, rr.Hi)
		}
		fmt.Fprintf(&sb, ") -> %d", i.Goto)
		return sb.String()
	case InstBytes:
		return fmt.Sprintf("Bytes(%#02x, %#02x) -> %d", i.Start, i.End, i.Goto)
	}
	return fmt.Sprintf("Inst(op=%d)", uint8(i.Op))
}

// Program is the output of compilation: a resolved instruction array
// plus the metadata matching engines need to interpret it. A Program is
// immutable once built and safe to share across goroutines.
type Program struct {
	// Insts is the instruction array. Start indexes into it.
	Insts []Inst
	// Matches holds the program counter of the Match instruction for
	// each compiled pattern, in pattern order.
	Matches []InstPtr
	// Captures maps capture slot pair index to group name; index 0 is
	// the implicit whole-match group and unnamed groups are "".
	Captures []string
	// CaptureNameIdx maps a group name to its capture index.
	CaptureNameIdx map[string]int
	// Start is the entry point.
	Start InstPtr

	// IsBytes is true for byte-oriented programs, which contain no
	// InstChar or InstRanges instructions.
	IsBytes bool
	// IsDFA is true when the program was compiled for a DFA engine.
	IsDFA bool
	// IsReverse is true when the program matches text backwards.
	IsReverse bool
	// IsAnchoredStart is true when every match must begin at the start
	// of the input.
	IsAnchoredStart bool
	// IsAnchoredEnd is true when every match must end at the end of
	// the input.
	IsAnchoredEnd bool
	// HasUnicodeWordBoundary is true when the program contains a
	// Unicode word-boundary assertion.
	HasUnicodeWordBoundary bool
	// OnlyUTF8 is true when the program can only match valid UTF-8.
	OnlyUTF8 bool

	// ByteClasses maps each byte value to its equivalence class. Bytes
	// in the same class are indistinguishable to this program.
	ByteClasses [256]byte
}

// Len returns the number of instructions.
func (p *Program) Len() int {
	return len(p.Insts)
}

// UsesBytes reports whether matching engines should feed this program
// bytes rather than decoded codepoints.
func (p *Program) UsesBytes() bool {
	return p.IsBytes || p.IsDFA
}

// NeedsDotStar reports whether a DFA engine must rely on the implicit
// leading `.*?` that the compiler prepends to unanchored forward DFA
// programs.
func (p *Program) NeedsDotStar() bool {
	return p.IsDFA && !p.IsReverse && !p.IsAnchoredStart
}

// String renders the instruction listing, one instruction per line,
// with the entry point marked.
func (p *Program) String() string {
	var sb strings.Builder
	for pc := range p.Insts {
		marker := "  "
		if InstPtr(pc) == p.Start {
			marker = "> "
		}
		fmt.Fprintf(&sb, "%s%04d %s\n", marker, pc, p.Insts[pc].String())
	}
	return sb.String()
}
