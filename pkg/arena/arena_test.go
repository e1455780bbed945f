//go:build go1.22

package arena_test

import (
	"testing"
	"unsafe"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/gotreebud/treebud/pkg/arena"
)

func TestArena(t *testing.T) {
	Convey("Given a zero Arena", t, func() {
		a := &arena.Arena{}

		Convey("it is empty and ready to use", func() {
			So(a.Cap(), ShouldEqual, 0)
			So(a.Next(), ShouldBeZeroValue)

			p := a.Alloc(64)
			So(p, ShouldNotBeNil)
			So(a.Cap(), ShouldBeGreaterThanOrEqualTo, 64)
		})

		Convey("every allocation is pointer-aligned", func() {
			for _, size := range []int{1, 3, 8, 17, 64, 100} {
				p := a.Alloc(size)
				So(uintptr(unsafe.Pointer(p))%uintptr(arena.Align), ShouldEqual, 0)
			}
		})

		Convey("consecutive allocations do not overlap", func() {
			p := a.Alloc(128)
			q := a.Alloc(128)

			pb := unsafe.Slice(p, 128)
			qb := unsafe.Slice(q, 128)
			for i := range pb {
				pb[i] = 0xAA
			}
			for i := range qb {
				qb[i] = 0x55
			}

			for i := range pb {
				So(pb[i], ShouldEqual, byte(0xAA))
			}
		})

		Convey("an allocation larger than the current chunk grows the arena", func() {
			a.Alloc(16)
			before := a.Cap()

			p := a.Alloc(before * 4)
			So(p, ShouldNotBeNil)
			So(a.Cap(), ShouldBeGreaterThanOrEqualTo, before*4)
		})
	})
}

func TestArenaReserve(t *testing.T) {
	Convey("Given an arena with reserved capacity", t, func() {
		a := &arena.Arena{}
		a.Reserve(1024)

		Convey("allocations within the reservation do not grow it", func() {
			capBefore := a.Cap()
			endBefore := a.End()

			for i := 0; i < 8; i++ {
				So(a.Alloc(128), ShouldNotBeNil)
			}

			So(a.Cap(), ShouldEqual, capBefore)
			So(a.End(), ShouldEqual, endBefore)
		})
	})
}

func TestArenaReset(t *testing.T) {
	Convey("Given an arena that has climbed through two chunk classes", t, func() {
		a := &arena.Arena{}
		small := a.Alloc(16)
		p := a.Alloc(256)
		unsafe.Slice(small, 16)[0] = 0xFF
		unsafe.Slice(p, 256)[0] = 0xFF

		Convey("Reset parks the cursor back on the smallest cached chunk", func() {
			a.Reset()

			So(a.Cap(), ShouldEqual, 16)
			So(a.Next().ByteAdd(16), ShouldEqual, a.End())
			So(a.Next().AssertValid(), ShouldEqual, small)
		})

		Convey("the next generation reuses the cached ladder, zeroed", func() {
			a.Reset()

			q := a.Alloc(256)
			So(q, ShouldEqual, p)
			for _, b := range unsafe.Slice(q, 256) {
				So(b, ShouldEqual, byte(0))
			}
		})

		Convey("Reset on a fresh arena is a no-op", func() {
			b := &arena.Arena{}
			b.Reset()
			So(b.Cap(), ShouldEqual, 0)
		})
	})
}

func TestArenaRelease(t *testing.T) {
	Convey("Given an arena", t, func() {
		a := &arena.Arena{}

		Convey("Release is a no-op and the cursor does not move", func() {
			p := a.Alloc(64)
			next := a.Next()

			a.Release(p, 64)
			So(a.Next(), ShouldEqual, next)
		})
	})
}
