package literal_test

import (
	"fmt"

	"github.com/coregx/reprog/literal"
)

func ExampleSuffixes() {
	seq := literal.NewSeq(
		literal.NewLiteral([]byte("ing"), false),
		literal.NewLiteral([]byte("ted"), false),
	)
	s := literal.Suffixes(seq)
	start, end, ok := s.Find([]byte("a string"))
	fmt.Println(start, end, ok)
	// Output: 5 8 true
}
