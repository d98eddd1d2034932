package compiler

// byteClassSet accumulates byte equivalence class boundaries while
// compiling. Two bytes end up in the same class exactly when no
// instruction in the program can tell them apart, which lets
// byte-oriented engines work over a much smaller alphabet than 256.
//
// The set is a 256-bit bitmap; bit b marks that a class boundary falls
// between byte b and byte b+1.
type byteClassSet struct {
	bits [4]uint64
}

func (s *byteClassSet) setBit(b byte) {
	s.bits[b>>6] |= 1 << (b & 63)
}

func (s *byteClassSet) getBit(b byte) bool {
	return s.bits[b>>6]&(1<<(b&63)) != 0
}

// setRange records that [start, end] must be distinguishable from the
// bytes on either side of it.
func (s *byteClassSet) setRange(start, end byte) {
	if start > 0 {
		s.setBit(start - 1)
	}
	s.setBit(end)
}

// setWordBoundary marks a boundary at every transition between word
// and non-word bytes, so `\b` assertions see each side of a transition
// in its own class.
func (s *byteClassSet) setWordBoundary() {
	b1 := 0
	for b1 <= 255 {
		b2 := b1 + 1
		for b2 <= 255 && isWordByte(byte(b1)) == isWordByte(byte(b2)) {
			b2++
		}
		s.setRange(byte(b1), byte(b2-1))
		b1 = b2
	}
}

// byteClasses materializes the class table: a left-to-right scan that
// bumps the class id after every marked boundary. Byte 0 is always in
// class 0.
func (s *byteClassSet) byteClasses() [256]byte {
	var classes [256]byte
	var class byte
	for i := 0; ; i++ {
		classes[i] = class
		if i >= 255 {
			break
		}
		if s.getBit(byte(i)) {
			class++
		}
	}
	return classes
}

func isWordByte(b byte) bool {
	switch {
	case b >= '0' && b <= '9':
		return true
	case b >= 'a' && b <= 'z':
		return true
	case b >= 'A' && b <= 'Z':
		return true
	case b == '_':
		return true
	}
	return false
}
