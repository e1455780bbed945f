// Package xunsafe provides a more convenient interface for performing unsafe
// operations than Go's built-in package unsafe.
//
// The allocator packages in this module traffic in raw byte ranges; this
// package concentrates the pointer arithmetic they need into a handful of
// typed helpers, so that unsafe.Pointer conversions do not leak into every
// call site.
package xunsafe

import (
	"sync"

	"github.com/gotreebud/treebud/pkg/xunsafe/layout"
)

// PtrSize is the size of a pointer in bytes: 4 on 32-bit platforms, 8 on
// 64-bit ones.
const PtrSize = 4 << (^uintptr(0) >> 63)

// NoCopy is a type that go vet will complain about having been moved.
//
// It does so by implementing [sync.Locker].
type NoCopy [0]sync.Mutex

// Int is any integer type.
type Int = layout.Int
