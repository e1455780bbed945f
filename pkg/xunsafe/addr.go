//go:build go1.20

package xunsafe

import (
	"fmt"
	"unsafe"

	"github.com/gotreebud/treebud/pkg/xunsafe/layout"
)

// Addr is an untyped, arithmetic-friendly view of a *T.
//
// Unlike a raw pointer, an Addr can be computed on, compared, and formatted
// without the GC treating it as a live reference; AssertValid converts it
// back into a pointer at the point of use.
type Addr[T any] uintptr

// AddrOf returns the Addr of p.
func AddrOf[T any](p *T) Addr[T] {
	return Addr[T](uintptr(unsafe.Pointer(p)))
}

// AssertValid converts this Addr back into a pointer.
//
// It is named AssertValid because there is no way for this function to
// check that the address is actually a live, correctly-typed allocation;
// callers are responsible for that.
func (a Addr[T]) AssertValid() *T {
	if a == 0 {
		return nil
	}
	return (*T)(unsafe.Pointer(uintptr(a)))
}

// Add returns a, advanced by n elements of T.
func (a Addr[T]) Add(n int) Addr[T] {
	size := layout.Size[T]()
	return a + Addr[T](uintptr(size)*uintptr(n))
}

// ByteAdd returns a, advanced by n bytes.
func (a Addr[T]) ByteAdd(n int) Addr[T] {
	return a + Addr[T](uintptr(n))
}

// Sub returns the number of elements of T between a and b.
func (a Addr[T]) Sub(b Addr[T]) int {
	size := layout.Size[T]()
	return int(uintptr(a)-uintptr(b)) / size
}

// ByteSub returns the number of bytes between a and b.
func (a Addr[T]) ByteSub(b Addr[T]) int {
	return int(uintptr(a) - uintptr(b))
}

// Format implements [fmt.Formatter], rendering the address in hex.
func (a Addr[T]) Format(s fmt.State, verb rune) {
	switch verb {
	case 'x':
		fmt.Fprintf(s, "%x", uintptr(a))
	default:
		fmt.Fprintf(s, "0x%x", uintptr(a))
	}
}
