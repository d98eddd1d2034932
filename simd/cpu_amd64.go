//go:build amd64

package simd

import "golang.org/x/sys/cpu"

// AVX2-class machines have the load bandwidth to make the 32-byte
// stride worthwhile; older ones are better served by the plain loop.
var useWideLoops = cpu.X86.HasAVX2
