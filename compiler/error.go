// Package compiler lowers an hir.Hir syntax tree into a prog.Program,
// the linear NFA bytecode interpreted by matching engines.
//
// Compilation is a single recursive walk over the tree. Instructions
// are emitted into a growable buffer before their jump targets are
// known; the backpatch scaffolding (hole, patch, maybeInst) tracks the
// pending targets until they can be resolved. In byte mode, Unicode
// classes are expanded into UTF-8 byte-range alternations with shared
// suffixes.
package compiler

import (
	"errors"
	"fmt"
)

var (
	// ErrCompiledTooBig indicates the program grew past the
	// compiler's configured size limit.
	ErrCompiledTooBig = errors.New("compiled program exceeds size limit")

	// ErrUnsupported indicates the expression uses a construct this
	// compiler configuration cannot express.
	ErrUnsupported = errors.New("unsupported construct")
)

// SizeError reports the limit that was exceeded. It unwraps to
// ErrCompiledTooBig.
type SizeError struct {
	Limit int
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("compiled program exceeds size limit of %d bytes", e.Limit)
}

func (e *SizeError) Unwrap() error {
	return ErrCompiledTooBig
}

// UnsupportedError describes the offending construct. It unwraps to
// ErrUnsupported.
type UnsupportedError struct {
	Message string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported construct: %s", e.Message)
}

func (e *UnsupportedError) Unwrap() error {
	return ErrUnsupported
}
