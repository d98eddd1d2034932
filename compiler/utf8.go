package compiler

import "unicode/utf8"

// UTF-8 byte-range decomposition. A codepoint range is split into
// families of codepoints whose encodings share a length and byte
// structure; each family becomes a utf8Sequence of 1 to 4 contiguous
// byte ranges. For example U+0000-U+FFFF decomposes into:
//
//	[0-7F]
//	[C2-DF][80-BF]
//	[E0][A0-BF][80-BF]
//	[E1-EC][80-BF][80-BF]
//	[ED][80-9F][80-BF]
//	[EE-EF][80-BF][80-BF]

const maxUTF8Bytes = 4

// utf8Range is an inclusive byte range at one position of an encoded
// sequence.
type utf8Range struct {
	start, end byte
}

// utf8Sequence is 1 to 4 successive byte ranges matching the UTF-8
// encodings of one family of codepoints. A byte string matches the
// sequence when its i-th byte falls in the i-th range.
type utf8Sequence []utf8Range

// utf8Sequences produces the sequences for a codepoint range, one call
// to next at a time. The zero value is not usable; construct with
// newUtf8Sequences and reuse across ranges with reset.
type utf8Sequences struct {
	rangeStack []scalarRange
}

// scalarRange holds codepoint bounds as raw uint32s. Intermediate
// ranges may be empty or cover surrogates; both are discarded before
// any sequence is produced.
type scalarRange struct {
	start, end uint32
}

func newUtf8Sequences(start, end rune) *utf8Sequences {
	s := &utf8Sequences{}
	s.push(uint32(start), uint32(end))
	return s
}

// reset clears any pending state and starts over with a new codepoint
// range, keeping the stack allocation.
func (s *utf8Sequences) reset(start, end rune) {
	s.rangeStack = s.rangeStack[:0]
	s.push(uint32(start), uint32(end))
}

func (s *utf8Sequences) push(start, end uint32) {
	s.rangeStack = append(s.rangeStack, scalarRange{start: start, end: end})
}

// next returns the next sequence, or nil when the range is exhausted.
func (s *utf8Sequences) next() utf8Sequence {
	for len(s.rangeStack) > 0 {
		n := len(s.rangeStack) - 1
		r := s.rangeStack[n]
		s.rangeStack = s.rangeStack[:n]

	inner:
		for {
			if r1, r2, ok := r.split(); ok {
				s.push(r2.start, r2.end)
				r = r1
				continue inner
			}
			if !r.isValid() {
				break inner
			}
			for i := 1; i < maxUTF8Bytes; i++ {
				max := maxScalarValue(i)
				if r.start <= max && max < r.end {
					s.push(max+1, r.end)
					r.end = max
					continue inner
				}
			}
			if r.isASCII() {
				return utf8Sequence{{start: byte(r.start), end: byte(r.end)}}
			}
			// Align the range on 6-bit boundaries so start and end
			// encode with identical lead bytes and every continuation
			// position spans a full or truncated [80-BF].
			for i := uint(1); i < maxUTF8Bytes; i++ {
				m := uint32(1)<<(6*i) - 1
				if r.start&^m != r.end&^m {
					if r.start&m != 0 {
						s.push((r.start|m)+1, r.end)
						r.end = r.start | m
						continue inner
					}
					if r.end&m != m {
						s.push(r.end&^m, r.end)
						r.end = (r.end &^ m) - 1
						continue inner
					}
				}
			}
			return r.encode()
		}
	}
	return nil
}

// split divides a range overlapping the surrogate gap into the pieces
// on either side of it.
func (r scalarRange) split() (scalarRange, scalarRange, bool) {
	if r.start < 0xE000 && r.end > 0xD7FF {
		return scalarRange{start: r.start, end: 0xD7FF},
			scalarRange{start: 0xE000, end: r.end},
			true
	}
	return scalarRange{}, scalarRange{}, false
}

func (r scalarRange) isValid() bool {
	return r.start <= r.end
}

func (r scalarRange) isASCII() bool {
	return r.isValid() && r.end <= 0x7F
}

// encode emits the sequence for an aligned range. Both bounds encode
// to the same length by construction.
func (r scalarRange) encode() utf8Sequence {
	var start, end [maxUTF8Bytes]byte
	n := utf8.EncodeRune(start[:], rune(r.start))
	m := utf8.EncodeRune(end[:], rune(r.end))
	if n != m {
		panic("compiler: misaligned scalar range")
	}
	seq := make(utf8Sequence, n)
	for i := 0; i < n; i++ {
		seq[i] = utf8Range{start: start[i], end: end[i]}
	}
	return seq
}

// maxScalarValue returns the largest codepoint encodable in nbytes.
func maxScalarValue(nbytes int) uint32 {
	switch nbytes {
	case 1:
		return 0x007F
	case 2:
		return 0x07FF
	case 3:
		return 0xFFFF
	case 4:
		return 0x10FFFF
	}
	panic("compiler: invalid UTF-8 sequence size")
}
