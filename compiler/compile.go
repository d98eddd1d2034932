package compiler

import (
	"unsafe"

	"github.com/coregx/reprog/hir"
	"github.com/coregx/reprog/internal/conv"
	"github.com/coregx/reprog/prog"
)

const (
	defaultSizeLimit = 10 * (1 << 20)
	suffixCacheSize  = 1000
)

var instSize = int(unsafe.Sizeof(prog.Inst{}))

// Compiler translates Hir syntax trees into an NFA bytecode program.
//
// Options are set with the fluent methods before calling Compile. A
// Compiler is one-shot: Compile consumes it and it cannot be reused.
type Compiler struct {
	insts          []maybeInst
	compiled       *prog.Program
	captureNameIdx map[string]int
	numExprs       int
	sizeLimit      int
	suffixCache    *suffixCache
	utf8Seqs       *utf8Sequences
	byteClasses    byteClassSet
	unicodeWB      bool
}

// New returns a compiler with default options: a 10 MB size limit, a
// codepoint-based program, UTF-8 only matching and Unicode word
// boundaries enabled.
func New() *Compiler {
	return &Compiler{
		compiled:       &prog.Program{OnlyUTF8: true},
		captureNameIdx: make(map[string]int),
		sizeLimit:      defaultSizeLimit,
		suffixCache:    newSuffixCache(suffixCacheSize),
		utf8Seqs:       newUtf8Sequences(0, 0),
		unicodeWB:      true,
	}
}

// SizeLimit bounds the approximate size of the compiled program in
// bytes. Compilation stops with an error wrapping ErrCompiledTooBig
// once the instruction buffer exceeds it.
func (c *Compiler) SizeLimit(n int) *Compiler {
	c.sizeLimit = n
	return c
}

// Bytes selects a byte-oriented program, which incorporates UTF-8
// decoding into the automaton itself. Byte programs never contain
// InstChar or InstRanges instructions; codepoint programs never
// contain InstBytes.
//
// DFA(true) implies byte orientation regardless of this setting.
func (c *Compiler) Bytes(yes bool) *Compiler {
	c.compiled.IsBytes = yes
	return c
}

// OnlyUTF8 controls whether the program may only match valid UTF-8
// (the default). When disabled, byte programs may match arbitrary
// bytes.
func (c *Compiler) OnlyUTF8(yes bool) *Compiler {
	c.compiled.OnlyUTF8 = yes
	return c
}

// DFA marks the program for use by a DFA engine. Unanchored forward
// programs get an implicit leading `.*?`, since a DFA cannot handle
// unanchored scanning itself.
func (c *Compiler) DFA(yes bool) *Compiler {
	c.compiled.IsDFA = yes
	return c
}

// Reverse compiles a program that matches text backwards: every
// concatenation is flipped and start/end assertions swap.
func (c *Compiler) Reverse(yes bool) *Compiler {
	c.compiled.IsReverse = yes
	return c
}

// UnicodeWordBoundary controls whether Unicode `\b` assertions are
// accepted (the default). When disabled, compiling one fails with an
// error wrapping ErrUnsupported; the ASCII variants stay available.
func (c *Compiler) UnicodeWordBoundary(yes bool) *Compiler {
	c.unicodeWB = yes
	return c
}

// Compile translates exprs into a single program. With one expression
// the program has one Match instruction; with several, the
// alternatives are chained so each gets its own Match index, which is
// how pattern sets are built.
//
// Compile panics if exprs is empty or if the compiler was already
// consumed.
func (c *Compiler) Compile(exprs []*hir.Hir) (*prog.Program, error) {
	if len(exprs) == 0 {
		panic("compiler: Compile requires at least one expression")
	}
	if c.compiled == nil {
		panic("compiler: Compile called on a consumed compiler")
	}
	c.numExprs = len(exprs)
	if len(exprs) == 1 {
		return c.compileOne(exprs[0])
	}
	return c.compileMany(exprs)
}

func (c *Compiler) compileOne(expr *hir.Hir) (*prog.Program, error) {
	dotstarPatch := patch{hole: noHole()}
	c.compiled.IsAnchoredStart = expr.IsAnchoredStart()
	c.compiled.IsAnchoredEnd = expr.IsAnchoredEnd()
	if c.compiled.NeedsDotStar() {
		p, err := c.cDotStar()
		if err != nil {
			return nil, err
		}
		dotstarPatch = p
		c.compiled.Start = p.entry
	}
	c.compiled.Captures = []string{""}
	p, err := c.cCapture(0, expr)
	if err != nil {
		return nil, err
	}
	full := patchOr(p, c.nextInst())
	if c.compiled.NeedsDotStar() {
		c.fill(dotstarPatch.hole, full.entry)
	} else {
		c.compiled.Start = full.entry
	}
	c.fillToNext(full.hole)
	c.compiled.Matches = []prog.InstPtr{c.pc()}
	c.pushCompiled(prog.Inst{Op: prog.InstMatch, MatchIndex: 0})
	return c.compileFinish()
}

func (c *Compiler) compileMany(exprs []*hir.Hir) (*prog.Program, error) {
	c.compiled.IsAnchoredStart = true
	c.compiled.IsAnchoredEnd = true
	for _, e := range exprs {
		c.compiled.IsAnchoredStart = c.compiled.IsAnchoredStart && e.IsAnchoredStart()
		c.compiled.IsAnchoredEnd = c.compiled.IsAnchoredEnd && e.IsAnchoredEnd()
	}
	dotstarPatch := patch{hole: noHole()}
	if c.compiled.NeedsDotStar() {
		p, err := c.cDotStar()
		if err != nil {
			return nil, err
		}
		dotstarPatch = p
		c.compiled.Start = p.entry
	} else {
		c.compiled.Start = 0
	}
	c.fillToNext(dotstarPatch.hole)

	prevHole := noHole()
	for i, expr := range exprs[:len(exprs)-1] {
		c.fillToNext(prevHole)
		split := c.pushSplitHole()
		p, err := c.cCapture(0, expr)
		if err != nil {
			return nil, err
		}
		full := patchOr(p, c.nextInst())
		c.fillToNext(full.hole)
		c.compiled.Matches = append(c.compiled.Matches, c.pc())
		c.pushCompiled(prog.Inst{Op: prog.InstMatch, MatchIndex: i})
		entry := full.entry
		prevHole = c.fillSplit(split, &entry, nil)
	}
	last := len(exprs) - 1
	p, err := c.cCapture(0, exprs[last])
	if err != nil {
		return nil, err
	}
	full := patchOr(p, c.nextInst())
	c.fill(prevHole, full.entry)
	c.fillToNext(full.hole)
	c.compiled.Matches = append(c.compiled.Matches, c.pc())
	c.pushCompiled(prog.Inst{Op: prog.InstMatch, MatchIndex: last})
	return c.compileFinish()
}

func (c *Compiler) compileFinish() (*prog.Program, error) {
	insts := make([]prog.Inst, len(c.insts))
	for pc := range c.insts {
		insts[pc] = c.insts[pc].unwrap()
	}
	c.compiled.Insts = insts
	c.compiled.ByteClasses = c.byteClasses.byteClasses()
	c.compiled.CaptureNameIdx = c.captureNameIdx
	compiled := c.compiled
	c.compiled = nil
	return compiled, nil
}

// c compiles expr into the instruction buffer. A nil patch with a nil
// error means the expression needed zero instructions (it matches only
// the empty string); callers substitute nextInst when they need an
// addressable entry point.
func (c *Compiler) c(expr *hir.Hir) (*patch, error) {
	if err := c.checkSize(); err != nil {
		return nil, err
	}
	switch expr.Kind {
	case hir.KindEmpty:
		return nil, nil

	case hir.KindLiteral:
		if expr.IsByte {
			if !c.compiled.UsesBytes() {
				return nil, &UnsupportedError{Message: "byte literal in a codepoint-based program"}
			}
			return c.cByte(expr.Byte)
		}
		return c.cChar(expr.Rune)

	case hir.KindClass:
		if expr.ByteRanges != nil {
			if c.compiled.UsesBytes() {
				return c.cClassBytes(expr.ByteRanges)
			}
			// A codepoint program can only express a byte class when
			// it is pure ASCII.
			ranges := make([]hir.RuneRange, len(expr.ByteRanges))
			for i, r := range expr.ByteRanges {
				if r.Hi > 0x7F {
					return nil, &UnsupportedError{Message: "non-ASCII byte class in a codepoint-based program"}
				}
				ranges[i] = hir.RuneRange{Lo: rune(r.Lo), Hi: rune(r.Hi)}
			}
			return c.cClass(ranges)
		}
		return c.cClass(expr.RuneRanges)

	case hir.KindAnchor:
		switch expr.Anchor {
		case hir.AnchorStartLine:
			c.byteClasses.setRange('\n', '\n')
			if c.compiled.IsReverse {
				return c.cEmptyLook(prog.EndLine)
			}
			return c.cEmptyLook(prog.StartLine)
		case hir.AnchorEndLine:
			c.byteClasses.setRange('\n', '\n')
			if c.compiled.IsReverse {
				return c.cEmptyLook(prog.StartLine)
			}
			return c.cEmptyLook(prog.EndLine)
		case hir.AnchorStartText:
			if c.compiled.IsReverse {
				return c.cEmptyLook(prog.EndText)
			}
			return c.cEmptyLook(prog.StartText)
		default:
			if c.compiled.IsReverse {
				return c.cEmptyLook(prog.StartText)
			}
			return c.cEmptyLook(prog.EndText)
		}

	case hir.KindWordBoundary:
		switch expr.Boundary {
		case hir.BoundaryUnicode, hir.BoundaryUnicodeNegate:
			if !c.unicodeWB {
				return nil, &UnsupportedError{Message: "Unicode word boundaries are disabled on this compiler"}
			}
			c.compiled.HasUnicodeWordBoundary = true
			c.byteClasses.setWordBoundary()
			if expr.Boundary == hir.BoundaryUnicode {
				return c.cEmptyLook(prog.WordBoundary)
			}
			return c.cEmptyLook(prog.NotWordBoundary)
		case hir.BoundaryASCII:
			c.byteClasses.setWordBoundary()
			return c.cEmptyLook(prog.WordBoundaryASCII)
		default:
			c.byteClasses.setWordBoundary()
			return c.cEmptyLook(prog.NotWordBoundaryASCII)
		}

	case hir.KindGroup:
		g := expr.Group
		if !g.Capture {
			return c.c(expr.Subs[0])
		}
		if g.Index >= len(c.compiled.Captures) {
			c.compiled.Captures = append(c.compiled.Captures, g.Name)
			if g.Name != "" {
				c.captureNameIdx[g.Name] = g.Index
			}
		}
		return c.cCapture(2*g.Index, expr.Subs[0])

	case hir.KindConcat:
		if c.compiled.IsReverse {
			rev := make([]*hir.Hir, len(expr.Subs))
			for i, sub := range expr.Subs {
				rev[len(expr.Subs)-1-i] = sub
			}
			return c.cConcat(rev)
		}
		return c.cConcat(expr.Subs)

	case hir.KindAlternation:
		return c.cAlternate(expr.Subs)

	case hir.KindRepetition:
		return c.cRepeat(expr)
	}
	panic("compiler: unknown hir node kind")
}

// cCapture wraps expr with a Save pair. Capture slots are meaningless
// for pattern sets and DFA programs, so those skip the wrapping.
func (c *Compiler) cCapture(firstSlot int, expr *hir.Hir) (*patch, error) {
	if c.numExprs > 1 || c.compiled.IsDFA {
		return c.c(expr)
	}
	entry := c.pc()
	h := c.pushHole(instHole{kind: holeInstSave, slot: firstSlot})
	p, err := c.c(expr)
	if err != nil {
		return nil, err
	}
	full := patchOr(p, c.nextInst())
	c.fill(h, full.entry)
	c.fillToNext(full.hole)
	h = c.pushHole(instHole{kind: holeInstSave, slot: firstSlot + 1})
	return &patch{hole: h, entry: entry}, nil
}

// cDotStar emits the lazy `.*?` prefix for unanchored DFA programs.
func (c *Compiler) cDotStar() (patch, error) {
	any := hir.AnyChar()
	if !c.compiled.OnlyUTF8 {
		any = hir.AnyByte()
	}
	p, err := c.c(hir.Star(any, false))
	if err != nil {
		return patch{}, err
	}
	return *p, nil
}

func (c *Compiler) cChar(r rune) (*patch, error) {
	if c.compiled.UsesBytes() {
		if r < 0x80 {
			b := byte(r)
			h := c.pushHole(instHole{kind: holeInstBytes, start: b, end: b})
			c.byteClasses.setRange(b, b)
			return &patch{hole: h, entry: c.pc() - 1}, nil
		}
		return c.cClass([]hir.RuneRange{{Lo: r, Hi: r}})
	}
	h := c.pushHole(instHole{kind: holeInstChar, c: r})
	return &patch{hole: h, entry: c.pc() - 1}, nil
}

func (c *Compiler) cClass(ranges []hir.RuneRange) (*patch, error) {
	if len(ranges) == 0 {
		panic("compiler: character class with no ranges")
	}
	if c.compiled.UsesBytes() {
		cc := compileClass{c: c, ranges: ranges}
		p, err := cc.compile()
		if err != nil {
			return nil, err
		}
		return &p, nil
	}
	var h hole
	if len(ranges) == 1 && ranges[0].Lo == ranges[0].Hi {
		h = c.pushHole(instHole{kind: holeInstChar, c: ranges[0].Lo})
	} else {
		rs := make([]prog.RuneRange, len(ranges))
		for i, r := range ranges {
			rs[i] = prog.RuneRange{Lo: r.Lo, Hi: r.Hi}
		}
		h = c.pushHole(instHole{kind: holeInstRanges, ranges: rs})
	}
	return &patch{hole: h, entry: c.pc() - 1}, nil
}

func (c *Compiler) cByte(b byte) (*patch, error) {
	return c.cClassBytes([]hir.ByteRange{{Lo: b, Hi: b}})
}

// cClassBytes alternates the byte ranges left to right with a split
// chain; the final range terminates the chain.
func (c *Compiler) cClassBytes(ranges []hir.ByteRange) (*patch, error) {
	if len(ranges) == 0 {
		panic("compiler: byte class with no ranges")
	}
	firstSplitEntry := c.pc()
	holes := make([]hole, 0, len(ranges))
	prevHole := noHole()
	for _, r := range ranges[:len(ranges)-1] {
		c.fillToNext(prevHole)
		split := c.pushSplitHole()
		next := c.pc()
		c.byteClasses.setRange(r.Lo, r.Hi)
		holes = append(holes, c.pushHole(instHole{kind: holeInstBytes, start: r.Lo, end: r.Hi}))
		prevHole = c.fillSplit(split, &next, nil)
	}
	next := c.pc()
	r := ranges[len(ranges)-1]
	c.byteClasses.setRange(r.Lo, r.Hi)
	holes = append(holes, c.pushHole(instHole{kind: holeInstBytes, start: r.Lo, end: r.Hi}))
	c.fill(prevHole, next)
	return &patch{hole: manyHoles(holes), entry: firstSplitEntry}, nil
}

func (c *Compiler) cEmptyLook(look prog.EmptyLook) (*patch, error) {
	h := c.pushHole(instHole{kind: holeInstEmptyLook, look: look})
	return &patch{hole: h, entry: c.pc() - 1}, nil
}

func (c *Compiler) cConcat(exprs []*hir.Hir) (*patch, error) {
	var exit hole
	var entry prog.InstPtr
	found := false
	for _, e := range exprs {
		p, err := c.c(e)
		if err != nil {
			return nil, err
		}
		if p == nil {
			continue
		}
		if !found {
			exit, entry, found = p.hole, p.entry, true
			continue
		}
		c.fill(exit, p.entry)
		exit = p.hole
	}
	if !found {
		return nil, nil
	}
	return &patch{hole: exit, entry: entry}, nil
}

func (c *Compiler) cAlternate(exprs []*hir.Hir) (*patch, error) {
	switch len(exprs) {
	case 0:
		return nil, nil
	case 1:
		return c.c(exprs[0])
	}
	firstSplitEntry := c.pc()
	holes := make([]hole, 0, len(exprs))

	// prevHole chains each alternative's split to the next one. When a
	// branch compiles to nothing its split doubles as both exit and
	// chain (prevDup), so the chain target must land in goto2.
	prevHole := noHole()
	prevDup := false
	for _, e := range exprs[:len(exprs)-1] {
		if prevDup {
			next := c.pc()
			c.fillSplit(prevHole, nil, &next)
		} else {
			c.fillToNext(prevHole)
		}
		split := c.pushSplitHole()
		p, err := c.c(e)
		if err != nil {
			return nil, err
		}
		if p != nil {
			holes = append(holes, p.hole)
			entry := p.entry
			prevHole = c.fillSplit(split, &entry, nil)
			prevDup = false
		} else {
			split1, split2 := split.dupOne()
			holes = append(holes, split1)
			prevHole = split2
			prevDup = true
		}
	}
	p, err := c.c(exprs[len(exprs)-1])
	if err != nil {
		return nil, err
	}
	if p != nil {
		holes = append(holes, p.hole)
		if prevDup {
			entry := p.entry
			c.fillSplit(prevHole, nil, &entry)
		} else {
			c.fill(prevHole, p.entry)
		}
	} else {
		holes = append(holes, prevHole)
	}
	return &patch{hole: manyHoles(holes), entry: firstSplitEntry}, nil
}

func (c *Compiler) cRepeat(expr *hir.Hir) (*patch, error) {
	rep := expr.Rep
	sub := expr.Subs[0]
	switch rep.Kind {
	case hir.RepZeroOrOne:
		return c.cRepeatZeroOrOne(sub, rep.Greedy)
	case hir.RepZeroOrMore:
		return c.cRepeatZeroOrMore(sub, rep.Greedy)
	case hir.RepOneOrMore:
		return c.cRepeatOneOrMore(sub, rep.Greedy)
	default:
		if rep.Max < 0 {
			return c.cRepeatRangeMinOrMore(sub, rep.Greedy, rep.Min)
		}
		return c.cRepeatRange(sub, rep.Greedy, rep.Min, rep.Max)
	}
}

func (c *Compiler) cRepeatZeroOrOne(expr *hir.Hir, greedy bool) (*patch, error) {
	splitEntry := c.pc()
	split := c.pushSplitHole()
	p, err := c.c(expr)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return c.popSplitHole()
	}
	entry := p.entry
	var splitHole hole
	if greedy {
		splitHole = c.fillSplit(split, &entry, nil)
	} else {
		splitHole = c.fillSplit(split, nil, &entry)
	}
	return &patch{hole: manyHoles([]hole{p.hole, splitHole}), entry: splitEntry}, nil
}

func (c *Compiler) cRepeatZeroOrMore(expr *hir.Hir, greedy bool) (*patch, error) {
	splitEntry := c.pc()
	split := c.pushSplitHole()
	p, err := c.c(expr)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return c.popSplitHole()
	}
	c.fill(p.hole, splitEntry)
	entry := p.entry
	var splitHole hole
	if greedy {
		splitHole = c.fillSplit(split, &entry, nil)
	} else {
		splitHole = c.fillSplit(split, nil, &entry)
	}
	return &patch{hole: splitHole, entry: splitEntry}, nil
}

func (c *Compiler) cRepeatOneOrMore(expr *hir.Hir, greedy bool) (*patch, error) {
	p, err := c.c(expr)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	c.fillToNext(p.hole)
	split := c.pushSplitHole()
	entry := p.entry
	var splitHole hole
	if greedy {
		splitHole = c.fillSplit(split, &entry, nil)
	} else {
		splitHole = c.fillSplit(split, nil, &entry)
	}
	return &patch{hole: splitHole, entry: p.entry}, nil
}

func (c *Compiler) cRepeatRangeMinOrMore(expr *hir.Hir, greedy bool, min int) (*patch, error) {
	p, err := c.cConcat(repeatExpr(expr, min))
	if err != nil {
		return nil, err
	}
	patchConcat := patchOr(p, c.nextInst())
	patchRep, err := c.cRepeatZeroOrMore(expr, greedy)
	if err != nil {
		return nil, err
	}
	if patchRep == nil {
		return nil, nil
	}
	c.fill(patchConcat.hole, patchRep.entry)
	return &patch{hole: patchRep.hole, entry: patchConcat.entry}, nil
}

// cRepeatRange lowers `e{min,max}` to min mandatory copies followed by
// max-min optional copies, each guarded by its own split so failing
// one still exits cleanly.
func (c *Compiler) cRepeatRange(expr *hir.Hir, greedy bool, min, max int) (*patch, error) {
	p, err := c.cConcat(repeatExpr(expr, min))
	if err != nil {
		return nil, err
	}
	if min == max {
		return p, nil
	}
	patchConcat := patchOr(p, c.nextInst())
	initialEntry := patchConcat.entry
	holes := make([]hole, 0, max-min+1)
	prevHole := patchConcat.hole
	for i := min; i < max; i++ {
		c.fillToNext(prevHole)
		split := c.pushSplitHole()
		p, err := c.c(expr)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return c.popSplitHole()
		}
		prevHole = p.hole
		entry := p.entry
		if greedy {
			holes = append(holes, c.fillSplit(split, &entry, nil))
		} else {
			holes = append(holes, c.fillSplit(split, nil, &entry))
		}
	}
	holes = append(holes, prevHole)
	return &patch{hole: manyHoles(holes), entry: initialEntry}, nil
}

// nextInst returns a neutral patch addressing the next instruction to
// be emitted. Valid only when the caller emits at least one more
// instruction afterwards.
func (c *Compiler) nextInst() patch {
	return patch{hole: noHole(), entry: c.pc()}
}

func (c *Compiler) pc() prog.InstPtr {
	return conv.IntToUint32(len(c.insts))
}

func (c *Compiler) checkSize() error {
	if len(c.insts)*instSize > c.sizeLimit {
		return &SizeError{Limit: c.sizeLimit}
	}
	return nil
}

func patchOr(p *patch, def patch) patch {
	if p != nil {
		return *p
	}
	return def
}

func repeatExpr(expr *hir.Hir, n int) []*hir.Hir {
	exprs := make([]*hir.Hir, n)
	for i := range exprs {
		exprs[i] = expr
	}
	return exprs
}
