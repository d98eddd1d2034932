package compiler

import "github.com/coregx/reprog/prog"

// hole names zero or more pending jump slots in the instruction
// buffer. Every hole created during compilation must be resolved by
// exactly one fill or fillSplit call.
type hole struct {
	kind holeKind
	pc   prog.InstPtr
	many []hole
}

type holeKind uint8

const (
	holeNone holeKind = iota
	holeOne
	holeMany
)

func noHole() hole {
	return hole{kind: holeNone}
}

func oneHole(pc prog.InstPtr) hole {
	return hole{kind: holeOne, pc: pc}
}

func manyHoles(holes []hole) hole {
	return hole{kind: holeMany, many: holes}
}

// dupOne duplicates a single hole so one split slot can serve both as
// a sub-expression exit and as the chain to the next alternative.
func (h hole) dupOne() (hole, hole) {
	if h.kind != holeOne {
		panic("compiler: dupOne requires a single hole")
	}
	return h, h
}

// patch describes a just-emitted instruction subsequence: entry is the
// program counter of its first instruction, hole its unresolved exits.
type patch struct {
	hole  hole
	entry prog.InstPtr
}

// maybeInst is one slot of the growing instruction buffer. Slots move
// through uncompiled and half-filled split states; by the end of
// compilation every slot must be compiled.
type maybeInst struct {
	kind maybeInstKind
	inst prog.Inst    // compiled
	tmpl instHole     // uncompiled
	half prog.InstPtr // split1 carries goto1, split2 carries goto2
}

type maybeInstKind uint8

const (
	instCompiled maybeInstKind = iota
	instUncompiled
	instSplit
	instSplit1
	instSplit2
)

// fill resolves the slot's remaining jump target. An empty split
// becomes half-filled; a half-filled split or an uncompiled template
// becomes a compiled instruction.
func (m *maybeInst) fill(to prog.InstPtr) {
	switch m.kind {
	case instSplit:
		m.kind = instSplit1
		m.half = to
	case instUncompiled:
		*m = maybeInst{kind: instCompiled, inst: m.tmpl.fill(to)}
	case instSplit1:
		*m = maybeInst{
			kind: instCompiled,
			inst: prog.Inst{Op: prog.InstSplit, Goto: m.half, Goto2: to},
		}
	case instSplit2:
		*m = maybeInst{
			kind: instCompiled,
			inst: prog.Inst{Op: prog.InstSplit, Goto: to, Goto2: m.half},
		}
	default:
		panic("compiler: fill on a compiled instruction")
	}
}

func (m *maybeInst) fillSplit(to1, to2 prog.InstPtr) {
	if m.kind != instSplit {
		panic("compiler: fillSplit requires an empty split")
	}
	*m = maybeInst{
		kind: instCompiled,
		inst: prog.Inst{Op: prog.InstSplit, Goto: to1, Goto2: to2},
	}
}

func (m *maybeInst) halfFillSplitGoto1(to1 prog.InstPtr) {
	if m.kind != instSplit {
		panic("compiler: half fill requires an empty split")
	}
	m.kind = instSplit1
	m.half = to1
}

func (m *maybeInst) halfFillSplitGoto2(to2 prog.InstPtr) {
	if m.kind != instSplit {
		panic("compiler: half fill requires an empty split")
	}
	m.kind = instSplit2
	m.half = to2
}

// unwrap returns the compiled instruction, panicking on any slot the
// backpatching missed. Reaching the panic means a compiler bug, never
// bad input.
func (m *maybeInst) unwrap() prog.Inst {
	if m.kind != instCompiled {
		panic("compiler: instruction was never compiled")
	}
	return m.inst
}

// instHole is an instruction template waiting for its jump target.
type instHole struct {
	kind   instHoleKind
	slot   int
	look   prog.EmptyLook
	c      rune
	ranges []prog.RuneRange
	start  byte
	end    byte
}

type instHoleKind uint8

const (
	holeInstSave instHoleKind = iota
	holeInstEmptyLook
	holeInstChar
	holeInstRanges
	holeInstBytes
)

func (ih *instHole) fill(to prog.InstPtr) prog.Inst {
	switch ih.kind {
	case holeInstSave:
		return prog.Inst{Op: prog.InstSave, Goto: to, Slot: ih.slot}
	case holeInstEmptyLook:
		return prog.Inst{Op: prog.InstEmptyLook, Goto: to, Look: ih.look}
	case holeInstChar:
		return prog.Inst{Op: prog.InstChar, Goto: to, C: ih.c}
	case holeInstRanges:
		return prog.Inst{Op: prog.InstRanges, Goto: to, Ranges: ih.ranges}
	case holeInstBytes:
		return prog.Inst{Op: prog.InstBytes, Goto: to, Start: ih.start, End: ih.end}
	}
	panic("compiler: unknown instruction template")
}

// fill resolves every slot named by h to jump to the given target.
func (c *Compiler) fill(h hole, to prog.InstPtr) {
	switch h.kind {
	case holeNone:
	case holeOne:
		c.insts[h.pc].fill(to)
	case holeMany:
		for _, sub := range h.many {
			c.fill(sub, to)
		}
	}
}

// fillToNext resolves h to the next instruction to be emitted.
func (c *Compiler) fillToNext(h hole) {
	c.fill(h, c.pc())
}

// fillSplit resolves the two exits of the split slots named by h. A
// nil target leaves that exit open; the returned hole names the slots
// still waiting for the other exit.
func (c *Compiler) fillSplit(h hole, to1, to2 *prog.InstPtr) hole {
	switch h.kind {
	case holeNone:
		return noHole()
	case holeOne:
		switch {
		case to1 != nil && to2 != nil:
			c.insts[h.pc].fillSplit(*to1, *to2)
			return noHole()
		case to1 != nil:
			c.insts[h.pc].halfFillSplitGoto1(*to1)
			return oneHole(h.pc)
		case to2 != nil:
			c.insts[h.pc].halfFillSplitGoto2(*to2)
			return oneHole(h.pc)
		default:
			panic("compiler: at least one of the split holes must be filled")
		}
	default:
		newHoles := make([]hole, 0, len(h.many))
		for _, sub := range h.many {
			filled := c.fillSplit(sub, to1, to2)
			if filled.kind != holeNone {
				newHoles = append(newHoles, filled)
			}
		}
		switch len(newHoles) {
		case 0:
			return noHole()
		case 1:
			return newHoles[0]
		default:
			return manyHoles(newHoles)
		}
	}
}

func (c *Compiler) pushCompiled(inst prog.Inst) {
	c.insts = append(c.insts, maybeInst{kind: instCompiled, inst: inst})
}

func (c *Compiler) pushHole(tmpl instHole) hole {
	pc := c.pc()
	c.insts = append(c.insts, maybeInst{kind: instUncompiled, tmpl: tmpl})
	return oneHole(pc)
}

func (c *Compiler) pushSplitHole() hole {
	pc := c.pc()
	c.insts = append(c.insts, maybeInst{kind: instSplit})
	return oneHole(pc)
}

// popSplitHole discards the most recent split slot. Used when the
// expression guarded by the split turned out to compile to nothing.
func (c *Compiler) popSplitHole() (*patch, error) {
	c.insts = c.insts[:len(c.insts)-1]
	return nil, nil
}
