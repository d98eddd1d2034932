package literal

import (
	"bytes"
	"testing"
)

func litStrings(s *Seq) []string {
	out := make([]string, 0, s.Len())
	for i := 0; i < s.Len(); i++ {
		out = append(out, string(s.Get(i).Bytes))
	}
	return out
}

func TestSeqMinimize(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "drops extensions",
			in:   []string{"foo", "foobar", "fizz"},
			want: []string{"foo", "fizz"},
		},
		{
			name: "keeps unrelated",
			in:   []string{"abc", "def"},
			want: []string{"abc", "def"},
		},
		{
			name: "order preserved",
			in:   []string{"zebra", "ant", "zebrafish"},
			want: []string{"zebra", "ant"},
		},
		{
			name: "single literal",
			in:   []string{"only"},
			want: []string{"only"},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := seqOf(false, test.in...)
			s.Minimize()
			got := litStrings(s)
			if len(got) != len(test.want) {
				t.Fatalf("got %v, want %v", got, test.want)
			}
			for i := range got {
				if got[i] != test.want[i] {
					t.Fatalf("got %v, want %v", got, test.want)
				}
			}
		})
	}
}

func TestSeqCommonPrefixSuffix(t *testing.T) {
	tests := []struct {
		name     string
		lits     []string
		lcp, lcs string
	}{
		{"shared both", []string{"abcde", "abcxe"}, "abc", "e"},
		{"nothing shared", []string{"abc", "xyz"}, "", ""},
		{"identical", []string{"same", "same"}, "same", "same"},
		{"one literal", []string{"alone"}, "alone", "alone"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := seqOf(false, test.lits...)
			if got := string(s.LongestCommonPrefix()); got != test.lcp {
				t.Errorf("LongestCommonPrefix = %q, want %q", got, test.lcp)
			}
			if got := string(s.LongestCommonSuffix()); got != test.lcs {
				t.Errorf("LongestCommonSuffix = %q, want %q", got, test.lcs)
			}
		})
	}
	if got := NewSeq().LongestCommonPrefix(); got != nil {
		t.Errorf("empty seq LCP = %q, want nil", got)
	}
}

func TestSeqAllComplete(t *testing.T) {
	if NewSeq().AllComplete() {
		t.Error("empty seq reports complete")
	}
	if !seqOf(true, "a", "b").AllComplete() {
		t.Error("complete literals not reported complete")
	}
	s := seqOf(true, "a")
	s.Add(NewLiteral([]byte("b"), false))
	if s.AllComplete() {
		t.Error("mixed literals reported complete")
	}
}

func TestSeqClone(t *testing.T) {
	s := seqOf(false, "abc")
	c := s.Clone()
	c.Get(0).Bytes[0] = 'x'
	if !bytes.Equal(s.Get(0).Bytes, []byte("abc")) {
		t.Error("mutating the clone changed the original")
	}
}
