package compiler_test

import (
	"fmt"
	"regexp/syntax"

	"github.com/coregx/reprog/compiler"
	"github.com/coregx/reprog/hir"
)

func ExampleCompiler() {
	re, err := syntax.Parse("a+", syntax.Perl)
	if err != nil {
		panic(err)
	}
	h, err := hir.FromSyntax(re)
	if err != nil {
		panic(err)
	}
	p, err := compiler.New().Compile([]*hir.Hir{h})
	if err != nil {
		panic(err)
	}
	fmt.Print(p)
	// Output:
	// > 0000 Save(0) -> 1
	//   0001 Char('a') -> 2
	//   0002 Split(1, 3)
	//   0003 Save(1) -> 4
	//   0004 Match(0)
}
