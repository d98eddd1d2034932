package prog

import (
	"strings"
	"testing"
)

func TestMatchesRune(t *testing.T) {
	char := Inst{Op: InstChar, C: 'a'}
	if !char.MatchesRune('a') || char.MatchesRune('b') {
		t.Error("InstChar matching wrong")
	}
	ranges := Inst{Op: InstRanges, Ranges: []RuneRange{
		{Lo: '0', Hi: '9'},
		{Lo: 'a', Hi: 'z'},
	}}
	for _, r := range []rune{'0', '5', '9', 'a', 'm', 'z'} {
		if !ranges.MatchesRune(r) {
			t.Errorf("MatchesRune(%q) = false, want true", r)
		}
	}
	for _, r := range []rune{'/', ':', '`', '{', 'A', 0x2603} {
		if ranges.MatchesRune(r) {
			t.Errorf("MatchesRune(%q) = true, want false", r)
		}
	}
	if ranges.MatchesByte('a') {
		t.Error("MatchesByte matched a non-bytes instruction")
	}
}

func TestMatchesByte(t *testing.T) {
	inst := Inst{Op: InstBytes, Start: 0x80, End: 0xBF}
	if !inst.MatchesByte(0x80) || !inst.MatchesByte(0xA0) || !inst.MatchesByte(0xBF) {
		t.Error("InstBytes missed bytes in range")
	}
	if inst.MatchesByte(0x7F) || inst.MatchesByte(0xC0) {
		t.Error("InstBytes matched bytes out of range")
	}
}

func TestProgramFlags(t *testing.T) {
	p := &Program{IsDFA: true}
	if !p.UsesBytes() {
		t.Error("DFA program must use bytes")
	}
	if !p.NeedsDotStar() {
		t.Error("unanchored forward DFA program needs the dotstar prefix")
	}
	p.IsAnchoredStart = true
	if p.NeedsDotStar() {
		t.Error("anchored program must not need the dotstar prefix")
	}
	p = &Program{IsBytes: true}
	if !p.UsesBytes() || p.NeedsDotStar() {
		t.Error("byte program flags wrong")
	}
}

func TestProgramString(t *testing.T) {
	p := &Program{
		Insts: []Inst{
			{Op: InstSave, Goto: 1, Slot: 0},
			{Op: InstChar, Goto: 2, C: 'a'},
			{Op: InstMatch},
		},
	}
	s := p.String()
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), s)
	}
	if !strings.HasPrefix(lines[0], "> ") {
		t.Errorf("entry point not marked: %q", lines[0])
	}
	if !strings.Contains(lines[1], "Char('a') -> 2") {
		t.Errorf("unexpected listing line: %q", lines[1])
	}
	if !strings.Contains(lines[2], "Match(0)") {
		t.Errorf("unexpected listing line: %q", lines[2])
	}
}
