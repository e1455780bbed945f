//go:build go1.22

package arena

import (
	"math/bits"
	"reflect"
	"runtime"
	"sync"
	"unsafe"

	"github.com/gotreebud/treebud/internal/debug"
	"github.com/gotreebud/treebud/pkg/xunsafe"
	"github.com/gotreebud/treebud/pkg/xunsafe/layout"
)

// chunkClass returns the size class of the chunk that can hold bytes: the
// log2 of bytes rounded up to a power of two, never below a single
// [HostUnit].
func chunkClass(bytes int) uint {
	return max(uint(bits.Len(uint(HostUnit)-1)), uint(bits.Len(uint(bytes)-1)))
}

// chunk returns this arena's cached chunk for the given size class,
// allocating and caching it on first use. Hosts only ever live in chunks at
// or below the cursor's class, and the cursor climbs strictly between
// Resets, so a cached chunk above the cursor is host-free — zeroed by the
// Reset that retired its last tenants.
func (a *Arena) chunk(log uint) *byte {
	debug.Assert(1<<log > a.cap, "chunk class %d is not above the cursor chunk (%d bytes)", log, a.cap)

	if int(log) < len(a.blocks) && a.blocks[log] != nil {
		a.Log("chunk", "cache hit for class %d", log)
		return a.blocks[log]
	}

	p := allocTraceable(1<<log, unsafe.Pointer(a))

	if a.blocks == nil {
		a.blocks = make([]*byte, 64)
		if debug.Enabled {
			addr := xunsafe.AddrOf(a)
			runtime.SetFinalizer(unsafe.SliceData(a.blocks), func(**byte) {
				debug.Log(nil, "arena collected", "addr: %v", addr)
			})
		}
	}
	if int(log)+1 > len(a.blocks) {
		a.blocks = a.blocks[:log+1]
	}
	a.blocks[log] = p
	a.Log("chunk", "cached class %d at %p", log, p)

	return p
}

// allocTraceable allocates size bytes of garbage-collected memory and returns
// a pointer to them.
//
// The allocation's shape is a byte array followed by a single pointer slot,
// into which ptr is stored. As long as any pointer into the returned memory
// is live, the GC will mark ptr live too — this is what ties every host
// buffer back to its owning arena.
func allocTraceable(size int, ptr unsafe.Pointer) *byte {
	size = layout.RoundUp(size, layout.Align[*byte]())

	p := (*byte)(reflect.New(chunkShape(size)).UnsafePointer())
	xunsafe.ByteStore(p, size, ptr) // Store the tracee pointer at the end.

	return p
}

// shapes caches the reflect type for each power-of-two chunk size, so that
// steady-state growth never rebuilds a struct type. Non-power-of-two sizes
// take the slow path every time; the arena itself never asks for one.
var shapes struct {
	sync.Mutex
	byLog [64]reflect.Type
}

func chunkShape(size int) reflect.Type {
	if size&(size-1) != 0 {
		return traceableShape(size)
	}

	log := bits.TrailingZeros(uint(size))
	shapes.Lock()
	defer shapes.Unlock()
	if shapes.byLog[log] == nil {
		shapes.byLog[log] = traceableShape(size)
	}
	return shapes.byLog[log]
}

func traceableShape(size int) reflect.Type {
	return reflect.StructOf([]reflect.StructField{
		{Name: "Data", Type: reflect.ArrayOf(size, reflect.TypeFor[byte]())},
		{Name: "Owner", Type: reflect.TypeFor[*Arena]()},
	})
}
