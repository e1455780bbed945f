//go:build go1.22

package arena

import (
	"math/bits"

	"github.com/gotreebud/treebud/pkg/xunsafe"
)

// Pool is an [Arena] that recycles released host buffers.
//
// Buddy allocators are torn down whole: the allocator value is dropped and
// its host buffer comes back in one piece, always a power of two in size.
// That makes released hosts a perfect fit for per-class free lists — a Pool
// threads each one into the list for its size class and hands it back out on
// the next Alloc of that class.
//
// Recycled buffers are zeroed before reuse, so a buddy allocator built over
// one starts from the same all-free state as over a fresh buffer. Free-list
// links are stored in the first machine word of the released buffer itself;
// no separate metadata is allocated.
type Pool struct {
	Arena

	free []xunsafe.Addr[byte]
}

var _ Allocator = (*Pool)(nil)

const sizeClasses = 64

// Alloc returns a host of at least size bytes, reusing a released buffer of
// the same size class when one is available. Reused memory is zeroed; fresh
// memory is uninitialized, as with [Arena.Alloc].
func (a *Pool) Alloc(size int) *byte {
	class := hostClass(size)

	if a.free != nil {
		// Pop from the class the request rounds up to — the class Alloc
		// would place it in — so any buffer on that list holds it exactly.
		log := bits.Len(uint(class)) - 1

		if p := a.free[log].AssertValid(); p != nil {
			a.free[log] = xunsafe.Addr[byte](*xunsafe.Cast[uintptr](p))

			xunsafe.Clear(p, class)
			a.Log("reuse", "%p, %d:%d", p, size, class)

			return p
		}
	}

	// This request is about to grow past the current chunk. Shard the
	// chunk's trailing capacity into power-of-two blocks, each placed at a
	// multiple of its own size within the chunk, and feed them to the free
	// lists rather than stranding them.
	if _, ok := a.placeHost(class); !ok && a.next != 0 {
		for {
			n := a.end.ByteSub(a.next)
			if n <= Align {
				break
			}

			off := a.next.ByteSub(a.end.ByteAdd(-a.cap))
			log := min(sizeClass(n), bits.TrailingZeros(uint(off)))
			a.Release(a.next.AssertValid(), 1<<log)
			a.next = a.next.ByteAdd(1 << log)
		}
	}

	return a.Arena.Alloc(size)
}

// Release threads p onto the free list for its size class. The provided size
// must match the size p was allocated with; buffers smaller than the arena
// alignment are ignored rather than tracked.
func (a *Pool) Release(p *byte, size int) {
	if size < Align {
		return
	}

	if a.free == nil {
		a.free = make([]xunsafe.Addr[byte], sizeClasses)
	}

	log := sizeClass(alignUp(size))

	*xunsafe.Cast[uintptr](p) = uintptr(a.free[log])
	a.free[log] = xunsafe.AddrOf(p)
	a.Log("release", "%p, %d:%d", p, size, 1<<log)
}

// Reset drops every free list and resets the underlying [Arena]. Buffers
// released before the Reset are no longer tracked.
func (a *Pool) Reset() {
	clear(a.free)
	a.Arena.Reset()
}

// sizeClass returns the largest size class that fits within size: the log2
// of size rounded down to a power of two. Release files buffers under this
// class so a popped buffer is never smaller than its list promises; for the
// power-of-two sizes buddy hosts come in, it matches the class Alloc pops
// from.
func sizeClass(size int) int {
	log := bits.Len(uint(size) - 1)
	if 1<<log > size {
		log--
	}
	return log
}
