package hir

import (
	"errors"
	"fmt"
	"regexp/syntax"
)

// ErrUnsupported is returned by FromSyntax for constructs that have no
// Hir equivalent.
var ErrUnsupported = errors.New("hir: unsupported construct")

// FromSyntax converts a parsed regexp/syntax tree into an Hir. The
// input should come from syntax.Parse (not the simplified form, so
// that bounded repetitions survive as OpRepeat).
//
// Case-insensitive literals are rejected: case folding is the parser's
// job, and regexp/syntax only folds classes. Parse with syntax.FoldCase
// unset, or pre-expand literals into classes.
func FromSyntax(re *syntax.Regexp) (*Hir, error) {
	switch re.Op {
	case syntax.OpEmptyMatch:
		return Empty(), nil

	case syntax.OpLiteral:
		if re.Flags&syntax.FoldCase != 0 {
			return nil, fmt.Errorf("%w: case-insensitive literal %q", ErrUnsupported, string(re.Rune))
		}
		if len(re.Rune) == 1 {
			return Char(re.Rune[0]), nil
		}
		subs := make([]*Hir, len(re.Rune))
		for i, r := range re.Rune {
			subs[i] = Char(r)
		}
		return Concat(subs...), nil

	case syntax.OpCharClass:
		if len(re.Rune)%2 != 0 {
			return nil, fmt.Errorf("%w: malformed class", ErrUnsupported)
		}
		ranges := make([]RuneRange, 0, len(re.Rune)/2)
		for i := 0; i < len(re.Rune); i += 2 {
			ranges = append(ranges, RuneRange{Lo: re.Rune[i], Hi: re.Rune[i+1]})
		}
		return ClassUnicode(ranges), nil

	case syntax.OpAnyChar:
		return AnyChar(), nil

	case syntax.OpAnyCharNotNL:
		return ClassUnicode([]RuneRange{
			{Lo: 0, Hi: '\n' - 1},
			{Lo: '\n' + 1, Hi: maxRune},
		}), nil

	case syntax.OpBeginLine:
		return Anchor(AnchorStartLine), nil
	case syntax.OpEndLine:
		return Anchor(AnchorEndLine), nil
	case syntax.OpBeginText:
		return Anchor(AnchorStartText), nil
	case syntax.OpEndText:
		return Anchor(AnchorEndText), nil

	// regexp/syntax defines \b over ASCII word characters.
	case syntax.OpWordBoundary:
		return WordBoundary(BoundaryASCII), nil
	case syntax.OpNoWordBoundary:
		return WordBoundary(BoundaryASCIINegate), nil

	case syntax.OpCapture:
		sub, err := FromSyntax(re.Sub[0])
		if err != nil {
			return nil, err
		}
		return Capture(re.Cap, re.Name, sub), nil

	case syntax.OpStar, syntax.OpPlus, syntax.OpQuest, syntax.OpRepeat:
		sub, err := FromSyntax(re.Sub[0])
		if err != nil {
			return nil, err
		}
		greedy := re.Flags&syntax.NonGreedy == 0
		switch re.Op {
		case syntax.OpStar:
			return Star(sub, greedy), nil
		case syntax.OpPlus:
			return Plus(sub, greedy), nil
		case syntax.OpQuest:
			return Quest(sub, greedy), nil
		default:
			return Repeat(sub, re.Min, re.Max, greedy), nil
		}

	case syntax.OpConcat, syntax.OpAlternate:
		subs := make([]*Hir, len(re.Sub))
		for i, s := range re.Sub {
			sub, err := FromSyntax(s)
			if err != nil {
				return nil, err
			}
			subs[i] = sub
		}
		if re.Op == syntax.OpConcat {
			return Concat(subs...), nil
		}
		return Alternation(subs...), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupported, re.Op)
}
