//go:build !amd64

package simd

var useWideLoops = false
