package buddy_test

import (
	"strings"
	"unsafe"
)

// emptyBits is the rendering of an all-free 4-level bitfield: 4 bytes, each
// printed as 8 ASCII bits.
var emptyBits = strings.Repeat("0", 32)

// unsafeSlice reinterprets the n bytes starting at p as a []byte, for
// building test arenas out of an *arena.Arena allocation.
func unsafeSlice(p *byte, n int) []byte {
	return unsafe.Slice(p, n)
}

// ptrAddr returns the numeric address of p, for comparing offsets in tests.
func ptrAddr(p *byte) uintptr {
	return uintptr(unsafe.Pointer(p))
}

// ptrAt returns a pointer to the byte at offset off within host.
func ptrAt(host []byte, off int) *byte {
	return &host[off]
}
