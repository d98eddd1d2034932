package compiler

import (
	"errors"
	"reflect"
	"testing"

	"github.com/coregx/reprog/hir"
	"github.com/coregx/reprog/prog"
)

func mustCompile(t *testing.T, c *Compiler, exprs ...*hir.Hir) *prog.Program {
	t.Helper()
	p, err := c.Compile(exprs)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	return p
}

func assertInsts(t *testing.T, p *prog.Program, want []prog.Inst) {
	t.Helper()
	if len(p.Insts) != len(want) {
		t.Fatalf("got %d instructions, want %d\ngot:\n%s", len(p.Insts), len(want), p)
	}
	for pc := range want {
		if !reflect.DeepEqual(p.Insts[pc], want[pc]) {
			t.Errorf("inst %d: got %v, want %v", pc, p.Insts[pc], want[pc])
		}
	}
}

func TestCompileEmpty(t *testing.T) {
	p := mustCompile(t, New(), hir.Empty())
	assertInsts(t, p, []prog.Inst{
		{Op: prog.InstSave, Goto: 1, Slot: 0},
		{Op: prog.InstSave, Goto: 2, Slot: 1},
		{Op: prog.InstMatch, MatchIndex: 0},
	})
	if p.Start != 0 {
		t.Errorf("Start = %d, want 0", p.Start)
	}
	if !reflect.DeepEqual(p.Matches, []prog.InstPtr{2}) {
		t.Errorf("Matches = %v, want [2]", p.Matches)
	}
}

func TestCompileChar(t *testing.T) {
	p := mustCompile(t, New(), hir.Char('a'))
	assertInsts(t, p, []prog.Inst{
		{Op: prog.InstSave, Goto: 1, Slot: 0},
		{Op: prog.InstChar, Goto: 2, C: 'a'},
		{Op: prog.InstSave, Goto: 3, Slot: 1},
		{Op: prog.InstMatch, MatchIndex: 0},
	})
}

func TestCompileAlternation(t *testing.T) {
	p := mustCompile(t, New(), hir.Alternation(hir.Char('a'), hir.Char('b')))
	assertInsts(t, p, []prog.Inst{
		{Op: prog.InstSave, Goto: 1, Slot: 0},
		{Op: prog.InstSplit, Goto: 2, Goto2: 3},
		{Op: prog.InstChar, Goto: 4, C: 'a'},
		{Op: prog.InstChar, Goto: 4, C: 'b'},
		{Op: prog.InstSave, Goto: 5, Slot: 1},
		{Op: prog.InstMatch, MatchIndex: 0},
	})
}

func TestCompileRepetitions(t *testing.T) {
	tests := []struct {
		name string
		expr *hir.Hir
		want []prog.Inst
	}{
		{
			name: "plus greedy",
			expr: hir.Plus(hir.Char('a'), true),
			want: []prog.Inst{
				{Op: prog.InstSave, Goto: 1, Slot: 0},
				{Op: prog.InstChar, Goto: 2, C: 'a'},
				{Op: prog.InstSplit, Goto: 1, Goto2: 3},
				{Op: prog.InstSave, Goto: 4, Slot: 1},
				{Op: prog.InstMatch, MatchIndex: 0},
			},
		},
		{
			name: "star greedy",
			expr: hir.Star(hir.Char('a'), true),
			want: []prog.Inst{
				{Op: prog.InstSave, Goto: 1, Slot: 0},
				{Op: prog.InstSplit, Goto: 2, Goto2: 3},
				{Op: prog.InstChar, Goto: 1, C: 'a'},
				{Op: prog.InstSave, Goto: 4, Slot: 1},
				{Op: prog.InstMatch, MatchIndex: 0},
			},
		},
		{
			name: "quest lazy",
			expr: hir.Quest(hir.Char('a'), false),
			want: []prog.Inst{
				{Op: prog.InstSave, Goto: 1, Slot: 0},
				{Op: prog.InstSplit, Goto: 3, Goto2: 2},
				{Op: prog.InstChar, Goto: 3, C: 'a'},
				{Op: prog.InstSave, Goto: 4, Slot: 1},
				{Op: prog.InstMatch, MatchIndex: 0},
			},
		},
		{
			name: "exact count",
			expr: hir.Repeat(hir.Char('a'), 2, 2, true),
			want: []prog.Inst{
				{Op: prog.InstSave, Goto: 1, Slot: 0},
				{Op: prog.InstChar, Goto: 2, C: 'a'},
				{Op: prog.InstChar, Goto: 3, C: 'a'},
				{Op: prog.InstSave, Goto: 4, Slot: 1},
				{Op: prog.InstMatch, MatchIndex: 0},
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p := mustCompile(t, New(), test.expr)
			assertInsts(t, p, test.want)
		})
	}
}

func TestCompileBoundedRange(t *testing.T) {
	// a{1,3} is one mandatory copy and two split-guarded copies.
	p := mustCompile(t, New(), hir.Repeat(hir.Char('a'), 1, 3, true))
	assertInsts(t, p, []prog.Inst{
		{Op: prog.InstSave, Goto: 1, Slot: 0},
		{Op: prog.InstChar, Goto: 2, C: 'a'},
		{Op: prog.InstSplit, Goto: 3, Goto2: 6},
		{Op: prog.InstChar, Goto: 4, C: 'a'},
		{Op: prog.InstSplit, Goto: 5, Goto2: 6},
		{Op: prog.InstChar, Goto: 6, C: 'a'},
		{Op: prog.InstSave, Goto: 7, Slot: 1},
		{Op: prog.InstMatch, MatchIndex: 0},
	})
}

func TestCompileBytesClass(t *testing.T) {
	expr := hir.ClassUnicode([]hir.RuneRange{{Lo: 'a', Hi: 'c'}})
	p := mustCompile(t, New().Bytes(true), expr)
	assertInsts(t, p, []prog.Inst{
		{Op: prog.InstSave, Goto: 1, Slot: 0},
		{Op: prog.InstBytes, Goto: 2, Start: 'a', End: 'c'},
		{Op: prog.InstSave, Goto: 3, Slot: 1},
		{Op: prog.InstMatch, MatchIndex: 0},
	})
}

func TestCompileClassTwoByte(t *testing.T) {
	// U+0100..U+017F covers C4 80 through C5 BF exactly, so it compiles
	// to a single two-instruction UTF-8 sequence.
	expr := hir.ClassUnicode([]hir.RuneRange{{Lo: 0x100, Hi: 0x17F}})
	p := mustCompile(t, New().Bytes(true), expr)
	assertInsts(t, p, []prog.Inst{
		{Op: prog.InstSave, Goto: 2, Slot: 0},
		{Op: prog.InstBytes, Goto: 3, Start: 0x80, End: 0xBF},
		{Op: prog.InstBytes, Goto: 1, Start: 0xC4, End: 0xC5},
		{Op: prog.InstSave, Goto: 4, Slot: 1},
		{Op: prog.InstMatch, MatchIndex: 0},
	})
}

func TestCompileClassSharedSuffix(t *testing.T) {
	// U+00C0 (C3 80) and U+0100 (C4 80) share their continuation byte;
	// the cache must emit the 80-80 instruction once.
	expr := hir.ClassUnicode([]hir.RuneRange{
		{Lo: 0xC0, Hi: 0xC0},
		{Lo: 0x100, Hi: 0x100},
	})
	p := mustCompile(t, New().Bytes(true), expr)
	assertInsts(t, p, []prog.Inst{
		{Op: prog.InstSave, Goto: 1, Slot: 0},
		{Op: prog.InstSplit, Goto: 3, Goto2: 4},
		{Op: prog.InstBytes, Goto: 5, Start: 0x80, End: 0x80},
		{Op: prog.InstBytes, Goto: 2, Start: 0xC3, End: 0xC3},
		{Op: prog.InstBytes, Goto: 2, Start: 0xC4, End: 0xC4},
		{Op: prog.InstSave, Goto: 6, Slot: 1},
		{Op: prog.InstMatch, MatchIndex: 0},
	})
}

func TestCompileMany(t *testing.T) {
	p := mustCompile(t, New(), hir.Char('a'), hir.Char('b'))
	assertInsts(t, p, []prog.Inst{
		{Op: prog.InstSplit, Goto: 1, Goto2: 3},
		{Op: prog.InstChar, Goto: 2, C: 'a'},
		{Op: prog.InstMatch, MatchIndex: 0},
		{Op: prog.InstChar, Goto: 4, C: 'b'},
		{Op: prog.InstMatch, MatchIndex: 1},
	})
	if !reflect.DeepEqual(p.Matches, []prog.InstPtr{2, 4}) {
		t.Errorf("Matches = %v, want [2 4]", p.Matches)
	}
	if len(p.Captures) != 0 {
		t.Errorf("Captures = %v, want none for a pattern set", p.Captures)
	}
}

func TestCompileReverse(t *testing.T) {
	p := mustCompile(t, New().Reverse(true), hir.Concat(hir.Char('a'), hir.Char('b')))
	assertInsts(t, p, []prog.Inst{
		{Op: prog.InstSave, Goto: 1, Slot: 0},
		{Op: prog.InstChar, Goto: 2, C: 'b'},
		{Op: prog.InstChar, Goto: 3, C: 'a'},
		{Op: prog.InstSave, Goto: 4, Slot: 1},
		{Op: prog.InstMatch, MatchIndex: 0},
	})
}

func TestCompileReverseAnchorSwap(t *testing.T) {
	p := mustCompile(t, New().Reverse(true), hir.Anchor(hir.AnchorStartText))
	found := false
	for _, inst := range p.Insts {
		if inst.Op == prog.InstEmptyLook {
			found = true
			if inst.Look != prog.EndText {
				t.Errorf("Look = %v, want EndText", inst.Look)
			}
		}
	}
	if !found {
		t.Fatal("no EmptyLook instruction emitted")
	}
}

func TestCompileDFADotStar(t *testing.T) {
	p := mustCompile(t, New().DFA(true).OnlyUTF8(false), hir.Char('a'))
	assertInsts(t, p, []prog.Inst{
		{Op: prog.InstSplit, Goto: 2, Goto2: 1},
		{Op: prog.InstBytes, Goto: 0, Start: 0x00, End: 0xFF},
		{Op: prog.InstBytes, Goto: 3, Start: 'a', End: 'a'},
		{Op: prog.InstMatch, MatchIndex: 0},
	})
	if p.IsAnchoredStart {
		t.Error("IsAnchoredStart = true, want false")
	}
}

func TestCompileAnchoredDFAOmitsDotStar(t *testing.T) {
	expr := hir.Concat(hir.Anchor(hir.AnchorStartText), hir.Char('a'))
	p := mustCompile(t, New().DFA(true).OnlyUTF8(false), expr)
	if !p.IsAnchoredStart {
		t.Fatal("IsAnchoredStart = false, want true")
	}
	for _, inst := range p.Insts {
		if inst.Op == prog.InstSplit {
			t.Fatalf("anchored DFA program contains a split:\n%s", p)
		}
	}
}

func TestCompileCaptures(t *testing.T) {
	expr := hir.Capture(1, "word", hir.Char('a'))
	p := mustCompile(t, New(), expr)
	assertInsts(t, p, []prog.Inst{
		{Op: prog.InstSave, Goto: 1, Slot: 0},
		{Op: prog.InstSave, Goto: 2, Slot: 2},
		{Op: prog.InstChar, Goto: 3, C: 'a'},
		{Op: prog.InstSave, Goto: 4, Slot: 3},
		{Op: prog.InstSave, Goto: 5, Slot: 1},
		{Op: prog.InstMatch, MatchIndex: 0},
	})
	if !reflect.DeepEqual(p.Captures, []string{"", "word"}) {
		t.Errorf("Captures = %q, want [\"\" \"word\"]", p.Captures)
	}
	if p.CaptureNameIdx["word"] != 1 {
		t.Errorf("CaptureNameIdx[word] = %d, want 1", p.CaptureNameIdx["word"])
	}
}

func TestCompileAnchoredFlags(t *testing.T) {
	tests := []struct {
		name       string
		expr       *hir.Hir
		start, end bool
	}{
		{
			name:  "unanchored",
			expr:  hir.Char('a'),
			start: false, end: false,
		},
		{
			name:  "both anchors",
			expr:  hir.Concat(hir.Anchor(hir.AnchorStartText), hir.Char('a'), hir.Anchor(hir.AnchorEndText)),
			start: true, end: true,
		},
		{
			name:  "start only",
			expr:  hir.Concat(hir.Anchor(hir.AnchorStartText), hir.Char('a')),
			start: true, end: false,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p := mustCompile(t, New(), test.expr)
			if p.IsAnchoredStart != test.start {
				t.Errorf("IsAnchoredStart = %t, want %t", p.IsAnchoredStart, test.start)
			}
			if p.IsAnchoredEnd != test.end {
				t.Errorf("IsAnchoredEnd = %t, want %t", p.IsAnchoredEnd, test.end)
			}
		})
	}
}

func TestCompileSizeLimit(t *testing.T) {
	_, err := New().SizeLimit(0).Compile([]*hir.Hir{hir.Char('a')})
	if !errors.Is(err, ErrCompiledTooBig) {
		t.Fatalf("error = %v, want ErrCompiledTooBig", err)
	}
}

func TestCompileUnsupported(t *testing.T) {
	tests := []struct {
		name string
		c    *Compiler
		expr *hir.Hir
	}{
		{
			name: "byte literal in codepoint program",
			c:    New(),
			expr: hir.Byte(0x90),
		},
		{
			name: "non-ascii byte class in codepoint program",
			c:    New(),
			expr: hir.ClassBytes([]hir.ByteRange{{Lo: 0x80, Hi: 0xFF}}),
		},
		{
			name: "unicode word boundary disabled",
			c:    New().UnicodeWordBoundary(false),
			expr: hir.WordBoundary(hir.BoundaryUnicode),
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := test.c.Compile([]*hir.Hir{test.expr})
			if !errors.Is(err, ErrUnsupported) {
				t.Fatalf("error = %v, want ErrUnsupported", err)
			}
		})
	}
}

func TestCompileUnicodeWordBoundaryFlag(t *testing.T) {
	p := mustCompile(t, New(), hir.WordBoundary(hir.BoundaryUnicode))
	if !p.HasUnicodeWordBoundary {
		t.Error("HasUnicodeWordBoundary = false, want true")
	}
	p = mustCompile(t, New(), hir.WordBoundary(hir.BoundaryASCII))
	if p.HasUnicodeWordBoundary {
		t.Error("HasUnicodeWordBoundary = true, want false")
	}
}

func TestCompileDeterministic(t *testing.T) {
	expr := func() *hir.Hir {
		return hir.Concat(
			hir.Star(hir.ClassUnicode([]hir.RuneRange{{Lo: 'a', Hi: 'z'}}), true),
			hir.Alternation(hir.Char('x'), hir.Char('y')),
		)
	}
	p1 := mustCompile(t, New().Bytes(true), expr())
	p2 := mustCompile(t, New().Bytes(true), expr())
	if !reflect.DeepEqual(p1, p2) {
		t.Error("compiling the same expression twice produced different programs")
	}
}

func TestCompileByteClasses(t *testing.T) {
	expr := hir.ClassUnicode([]hir.RuneRange{{Lo: 'a', Hi: 'z'}})
	p := mustCompile(t, New().Bytes(true), expr)
	classes := p.ByteClasses
	if classes[0] != 0 || classes['a'-1] != 0 {
		t.Errorf("bytes below the class: got %d/%d, want class 0", classes[0], classes['a'-1])
	}
	if classes['a'] != 1 || classes['m'] != 1 || classes['z'] != 1 {
		t.Errorf("bytes in the class: got %d/%d/%d, want class 1",
			classes['a'], classes['m'], classes['z'])
	}
	if classes['z'+1] != 2 || classes[255] != 2 {
		t.Errorf("bytes above the class: got %d/%d, want class 2", classes['z'+1], classes[255])
	}
}

func TestCompileConsumed(t *testing.T) {
	c := New()
	mustCompile(t, c, hir.Char('a'))
	defer func() {
		if recover() == nil {
			t.Fatal("second Compile did not panic")
		}
	}()
	c.Compile([]*hir.Hir{hir.Char('b')})
}
