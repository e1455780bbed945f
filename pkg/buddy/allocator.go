package buddy

import (
	"fmt"
	"math/bits"

	"github.com/gotreebud/treebud/internal/debug"
	"github.com/gotreebud/treebud/pkg/xunsafe"
)

// MinBlock is the size, in bytes, of the smallest block this allocator will
// ever hand out. It bounds the tree depth for a given arena size: an arena of
// M bytes has levels = log2(M/MinBlock) + 1.
const MinBlock = 16

// Allocator is a binary-buddy allocator over a caller-supplied arena. A zero
// Allocator is not usable; construct one with [New].
//
// Allocator is not safe for concurrent use: at most one Allocate or Free call
// may be in flight against a given instance at a time.
type Allocator struct {
	base   xunsafe.Addr[byte]
	size   int
	levels int
	bits   bitfield

	inuse, unused, requested int
}

// New constructs an Allocator over host, which must have a power-of-two
// length of at least [MinBlock] bytes. The arena starts entirely free; New
// does not read or write any byte of host.
func New(host []byte) (*Allocator, error) {
	size := len(host)
	if size < MinBlock || size&(size-1) != 0 {
		return nil, fmt.Errorf("buddy: arena size %d must be a power of two and at least %d bytes", size, MinBlock)
	}

	levels := bits.Len(uint(size/MinBlock))
	debug.Assert(1<<uint(levels-1)*MinBlock == size, "size %d is not exactly levels=%d deep", size, levels)

	a := &Allocator{
		base:   xunsafe.AddrOf(&host[0]),
		size:   size,
		levels: levels,
		bits:   newBitfield(cellsForLevels(levels)),
		unused: size,
	}
	return a, nil
}

// Stats is a point-in-time, read-only snapshot of an Allocator's counters.
type Stats struct {
	Inuse, Unused, Requested int
}

// Stats returns the current statistics counters.
//
// The returned value is a copy: mutating it has no effect on the Allocator.
func (a *Allocator) Stats() Stats {
	return Stats{Inuse: a.inuse, Unused: a.unused, Requested: a.requested}
}

// Allocate claims the smallest free block that can satisfy size and returns a
// pointer to it, or nil if no such block exists.
//
// size must be positive; Allocate(0) always fails.
func (a *Allocator) Allocate(size int) *byte {
	a.checkInvariants()

	if size <= 0 {
		return nil
	}

	before := a.inuse
	off := a.allocWalk(size, 1, 1)
	if off.IsNone() {
		return nil
	}

	// The walk bumped inuse by exactly the block size of the level the
	// allocation landed at, and the offset must be a multiple of it.
	debug.Assert(off.Unwrap()%(a.inuse-before) == 0,
		"offset %d is not a multiple of its block size %d", off.Unwrap(), a.inuse-before)

	p := a.base.ByteAdd(off.Unwrap()).AssertValid()
	a.checkInvariants()
	return p
}

// Free releases the block previously returned by Allocate at p, coalescing
// freed buddies as it ascends.
//
// p == nil and p outside the arena are silently ignored, matching the
// out-of-scope/diagnostic-only error handling of the rest of this package.
func (a *Allocator) Free(p *byte) {
	a.checkInvariants()

	if p == nil {
		debug.Log(nil, "free", "ignoring nil pointer")
		return
	}

	addr := xunsafe.AddrOf(p)
	if addr < a.base || addr >= a.base.ByteAdd(a.size) {
		debug.Log(nil, "free", "pointer %v outside arena [%v, %v)", addr, a.base, a.base.ByteAdd(a.size))
		return
	}

	off := addr.ByteSub(a.base)
	if !a.freeWalk(off, 1, 1) {
		debug.Log(nil, "free", "offset %d does not correspond to a live allocation", off)
	}
	a.checkInvariants()
}

// blockSize returns the size in bytes of the block a cell at level covers.
func (a *Allocator) blockSize(level int) int {
	return a.size >> uint(level-1)
}
