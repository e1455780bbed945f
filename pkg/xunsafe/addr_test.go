//go:build go1.20

package xunsafe_test

import (
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/gotreebud/treebud/pkg/xunsafe"
)

func TestAddr(t *testing.T) {
	Convey("Given the address of a value", t, func() {
		var xs [4]uint64
		a := xunsafe.AddrOf(&xs[0])

		Convey("AssertValid round-trips back to the same pointer", func() {
			So(a.AssertValid(), ShouldEqual, &xs[0])
		})

		Convey("the zero Addr asserts to nil", func() {
			So(xunsafe.Addr[uint64](0).AssertValid(), ShouldBeNil)
		})

		Convey("Add advances by whole elements", func() {
			So(a.Add(2).AssertValid(), ShouldEqual, &xs[2])
		})

		Convey("ByteAdd advances by raw bytes", func() {
			So(a.ByteAdd(8).AssertValid(), ShouldEqual, &xs[1])
		})

		Convey("Sub and ByteSub recover element and byte distances", func() {
			b := xunsafe.AddrOf(&xs[3])

			So(b.Sub(a), ShouldEqual, 3)
			So(b.ByteSub(a), ShouldEqual, 24)
			So(a.ByteAdd(b.ByteSub(a)), ShouldEqual, b)
		})

		Convey("it formats as hex", func() {
			So(fmt.Sprintf("%v", a), ShouldStartWith, "0x")
			So(fmt.Sprintf("%v", a), ShouldEqual, "0x"+fmt.Sprintf("%x", a))
		})
	})
}
