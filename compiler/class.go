package compiler

import (
	"github.com/coregx/reprog/hir"
	"github.com/coregx/reprog/prog"
)

// noInst marks "no instruction emitted yet" while chaining the byte
// ranges of a UTF-8 sequence.
const noInst = ^prog.InstPtr(0)

// compileClass expands a Unicode class into an alternation of UTF-8
// byte-range sequences for byte-oriented programs.
//
// Sequences are emitted from the last byte range toward the first
// (except in reverse mode), so sequences sharing a trailing
// continuation range can reuse the already-emitted tail through the
// suffix cache instead of duplicating it. The final sequence of the
// final range skips the split chain entirely.
type compileClass struct {
	c      *Compiler
	ranges []hir.RuneRange
}

func (cc *compileClass) compile() (patch, error) {
	var holes []hole
	var entry prog.InstPtr
	haveEntry := false
	lastSplit := noHole()
	cc.c.suffixCache.clear()
	for i, r := range cc.ranges {
		isLastRange := i+1 == len(cc.ranges)
		cc.c.utf8Seqs.reset(r.Lo, r.Hi)
		seq := cc.c.utf8Seqs.next()
		for seq != nil {
			next := cc.c.utf8Seqs.next()
			if isLastRange && next == nil {
				p := cc.cUtf8Seq(seq)
				holes = append(holes, p.hole)
				cc.c.fill(lastSplit, p.entry)
				lastSplit = noHole()
				if !haveEntry {
					entry = p.entry
					haveEntry = true
				}
			} else {
				if !haveEntry {
					entry = cc.c.pc()
					haveEntry = true
				}
				cc.c.fillToNext(lastSplit)
				lastSplit = cc.c.pushSplitHole()
				p := cc.cUtf8Seq(seq)
				holes = append(holes, p.hole)
				seqEntry := p.entry
				lastSplit = cc.c.fillSplit(lastSplit, &seqEntry, nil)
			}
			seq = next
		}
	}
	if !haveEntry {
		panic("compiler: class produced no UTF-8 sequences")
	}
	return patch{hole: manyHoles(holes), entry: entry}, nil
}

func (cc *compileClass) cUtf8Seq(seq utf8Sequence) patch {
	fromInst := noInst
	lastHole := noHole()
	// Reverse programs consume bytes backwards, so they compile the
	// sequence front to back; forward programs compile back to front.
	for i := range seq {
		br := seq[i]
		if !cc.c.compiled.IsReverse {
			br = seq[len(seq)-1-i]
		}
		key := suffixCacheKey{fromInst: fromInst, start: br.start, end: br.end}
		if cached, ok := cc.c.suffixCache.get(key, cc.c.pc()); ok {
			fromInst = cached
			continue
		}
		cc.c.byteClasses.setRange(br.start, br.end)
		if fromInst == noInst {
			lastHole = cc.c.pushHole(instHole{kind: holeInstBytes, start: br.start, end: br.end})
		} else {
			cc.c.pushCompiled(prog.Inst{
				Op:    prog.InstBytes,
				Goto:  fromInst,
				Start: br.start,
				End:   br.end,
			})
		}
		fromInst = cc.c.pc() - 1
	}
	if fromInst == noInst {
		panic("compiler: empty UTF-8 sequence")
	}
	return patch{hole: lastHole, entry: fromInst}
}

// suffixCache is a bounded hash map over continuation-byte chains: the
// key identifies "a byte range whose successor is instruction
// fromInst", the value the instruction already emitted for it.
//
// sparse maps hashes to dense indices; a stale sparse slot is detected
// by comparing the full key against the dense entry it points at. The
// cache lives for one compileClass.compile call.
type suffixCache struct {
	sparse []int
	dense  []suffixCacheEntry
}

type suffixCacheKey struct {
	fromInst   prog.InstPtr
	start, end byte
}

type suffixCacheEntry struct {
	key suffixCacheKey
	pc  prog.InstPtr
}

func newSuffixCache(size int) *suffixCache {
	return &suffixCache{
		sparse: make([]int, size),
		dense:  make([]suffixCacheEntry, 0, size),
	}
}

// get looks up key. On a hit it returns the cached instruction. On a
// miss it records pc, the instruction the caller is about to emit for
// key, and reports false.
func (s *suffixCache) get(key suffixCacheKey, pc prog.InstPtr) (prog.InstPtr, bool) {
	h := s.hash(key)
	pos := s.sparse[h]
	if pos < len(s.dense) && s.dense[pos].key == key {
		return s.dense[pos].pc, true
	}
	s.sparse[h] = len(s.dense)
	s.dense = append(s.dense, suffixCacheEntry{key: key, pc: pc})
	return 0, false
}

func (s *suffixCache) clear() {
	s.dense = s.dense[:0]
}

// hash is FNV-1a over the key fields.
func (s *suffixCache) hash(key suffixCacheKey) int {
	const (
		fnvOffset = 14695981039346656037
		fnvPrime  = 1099511628211
	)
	h := uint64(fnvOffset)
	h = (h ^ uint64(key.fromInst)) * fnvPrime
	h = (h ^ uint64(key.start)) * fnvPrime
	h = (h ^ uint64(key.end)) * fnvPrime
	return int(h % uint64(len(s.sparse)))
}
