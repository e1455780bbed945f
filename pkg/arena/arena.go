//go:build go1.22

// Package arena supplies the raw backing memory that buddy allocators are
// built over.
//
// A buddy allocator never allocates its own storage: callers hand it a
// contiguous byte range and it only ever manages offsets into that range.
// This package is the producer of those ranges, and its shape follows from
// what hosts look like: they come in power-of-two sizes, never smaller than
// the smallest block the allocator built over them will hand out. An [Arena]
// therefore deals in size classes, not raw byte counts — every request is
// rounded up to its class and placed at an offset that is a multiple of that
// class, so a host enjoys the same natural alignment within its chunk that
// the buddy allocator's own blocks enjoy within the host. A [Pool]
// additionally recycles hosts whose allocator has been torn down, keyed by
// the same classes.
//
// Memory handed out by this package is uninitialized unless stated otherwise
// and must not be used after the arena it came from is Reset.
//
// # Liveness
//
// Chunks are allocated with a trailing pointer back to their owning Arena, so
// holding any pointer into a host buffer keeps the whole arena — and every
// other buffer it handed out — alive. See [Cheating the Reaper in Go] for the
// technique.
//
// [Cheating the Reaper in Go]: https://mcyoung.xyz/2025/04/21/go-arenas/
package arena

import (
	"math/bits"

	"github.com/gotreebud/treebud/internal/debug"
	"github.com/gotreebud/treebud/pkg/xunsafe"
	"github.com/gotreebud/treebud/pkg/xunsafe/layout"
)

// Allocator hands out and takes back host buffers.
//
// Implemented by [Arena], which never reuses a released buffer, and by
// [Pool], which recycles released buffers by size class. Neither is safe for
// concurrent use.
type Allocator interface {
	// Alloc returns a pointer to at least size bytes of memory, placed at
	// an offset aligned to the request's size class.
	Alloc(size int) *byte

	// Release returns a buffer previously obtained from Alloc. p must have
	// been returned by this allocator's Alloc with the same size.
	Release(p *byte, size int)
}

// HostUnit is the smallest host this package will place: the size class
// every request is rounded up to at minimum. It matches the smallest block a
// buddy allocator hands out, so the smallest useful host is exactly one
// block.
const HostUnit = 16

// Align is the alignment of every buffer returned by this package. Placement
// is class-aligned, and no class is smaller than [HostUnit], so this is a
// floor, not the full guarantee.
const Align = int(xunsafe.PtrSize)

// Arena places host buffers into per-class chunks of garbage-collected
// memory.
//
// A zero Arena is empty and ready to use. Released buffers are not reused;
// all memory is reclaimed together by [Arena.Reset].
type Arena struct {
	_ xunsafe.NoCopy

	next, end xunsafe.Addr[byte]
	cap       int // Size of the chunk behind next/end; always a power of 2.

	// Chunk cache, indexed by size class. Chunks are retained across Reset
	// and reused rather than reallocated.
	blocks []*byte
}

var _ Allocator = (*Arena)(nil)

// Alloc returns a host buffer of at least size bytes, placed at an offset
// that is a multiple of the request's size class. The memory is
// uninitialized.
func (a *Arena) Alloc(size int) *byte {
	class := hostClass(size)

	p, ok := a.placeHost(class)
	if !ok {
		a.Grow(class)
		p, _ = a.placeHost(class)
	}

	a.next = p.ByteAdd(class)
	a.Log("alloc", "%v+%d for %d", p, class, size)
	return p.AssertValid()
}

// placeHost computes the class-aligned address for a host of the given class
// within the current chunk, reporting whether it fits. The cursor is not
// moved.
func (a *Arena) placeHost(class int) (xunsafe.Addr[byte], bool) {
	if a.cap == 0 {
		return 0, false
	}

	base := a.end.ByteAdd(-a.cap)
	off := layout.RoundUp(a.next.ByteSub(base), class)
	if off+class > a.cap {
		return 0, false
	}

	return base.ByteAdd(off), true
}

// Release is a no-op: an Arena reclaims memory only via [Arena.Reset].
func (a *Arena) Release(p *byte, size int) {}

// Reserve ensures that a host of the given size can be placed without
// growing.
func (a *Arena) Reserve(size int) {
	if _, ok := a.placeHost(hostClass(size)); !ok {
		a.Grow(hostClass(size))
	}
}

// Reset returns this arena to an empty state, allowing all of its memory to
// be reused.
//
// The chunk cache is retained and zeroed rather than discarded, and the
// cursor is parked on the smallest cached chunk: the next generation of
// hosts climbs the same ladder of chunks the previous one did, so a
// workload that repeatedly stands allocators up and tears them down creates
// no garbage at all in the steady state. Every buffer previously returned
// by Alloc is invalidated — a buddy allocator built over one must be torn
// down before its host's arena is Reset.
func (a *Arena) Reset() {
	if len(a.blocks) == 0 {
		return
	}

	first := -1
	for log, p := range a.blocks {
		if p == nil {
			continue
		}
		if first < 0 {
			first = log
		}
		xunsafe.Clear(p, 1<<log)
	}

	a.next = xunsafe.AddrOf(a.blocks[first])
	a.end = a.next.ByteAdd(1 << first)
	a.cap = 1 << first
}

// Grow repoints the cursor at a chunk holding at least size bytes: the
// cached chunk of the target class when one exists, a freshly allocated
// chunk otherwise. The target class doubles the current capacity at
// minimum, so the cursor moves through strictly larger classes between
// Resets — which is exactly why a cached chunk above the cursor can never
// hold a live host and is safe to reuse.
func (a *Arena) Grow(size int) {
	xunsafe.Escape(a)

	log := chunkClass(max(size, a.cap*2))
	p := a.chunk(log)

	a.next = xunsafe.AddrOf(p)
	a.end = a.next.ByteAdd(1 << log)
	a.cap = 1 << log
	a.Log("grow", "%v:%v:%d", a.next, a.end, a.cap)
}

// Next returns the cursor: the address placement starts from on the next
// Alloc.
func (a *Arena) Next() xunsafe.Addr[byte] { return a.next }

// End returns the end of the current chunk.
func (a *Arena) End() xunsafe.Addr[byte] { return a.end }

// Cap returns the size of the current chunk.
func (a *Arena) Cap() int { return a.cap }

func (a *Arena) Log(op, format string, args ...any) {
	debug.Log([]any{"%p %v:%v", a, a.next, a.end}, op, format, args...)
}

// hostClass returns the size class for a host request: size rounded up to a
// power of two, never smaller than [HostUnit].
func hostClass(size int) int {
	if size <= HostUnit {
		return HostUnit
	}
	return 1 << bits.Len(uint(size)-1)
}

// alignUp rounds size up to the arena alignment boundary.
func alignUp(size int) int {
	size += Align - 1
	size &^= Align - 1
	return size
}
