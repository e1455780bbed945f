package main

import (
	"unsafe"

	"github.com/gotreebud/treebud/pkg/xunsafe"
)

// unsafeHost reinterprets the n bytes starting at p as a []byte, so that
// buddy.New can be handed a slice view over the arena's raw allocation.
func unsafeHost(p *byte, n int) []byte {
	return unsafe.Slice(p, n)
}

// addrToPtr converts a raw address typed into the REPL back into a pointer
// for Allocator.Free to validate and act on. Allocator.Free treats any
// pointer outside its arena as a diagnostic no-op, so an address the user
// mistyped is handled safely rather than dereferenced.
func addrToPtr(addr uintptr) *byte {
	return xunsafe.Addr[byte](addr).AssertValid()
}
