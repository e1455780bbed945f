package opt_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	. "github.com/gotreebud/treebud/pkg/opt"
)

func TestOption(t *testing.T) {
	Convey("Given a Some", t, func() {
		some := Some(24)

		Convey("it carries its value", func() {
			So(some.IsSome(), ShouldBeTrue)
			So(some.IsNone(), ShouldBeFalse)
			So(some.String(), ShouldEqual, "Some(24)")

			So(some.Unwrap(), ShouldEqual, 24)
			So(some.Expect("an offset"), ShouldEqual, 24)
			So(some.UnwrapOr(-1), ShouldEqual, 24)
		})

		Convey("a Some carrying the zero value is still Some", func() {
			zero := Some(0)
			So(zero.IsSome(), ShouldBeTrue)
			So(zero.Unwrap(), ShouldEqual, 0)
		})
	})

	Convey("Given a None", t, func() {
		none := None[int]()

		Convey("it carries nothing", func() {
			So(none.IsSome(), ShouldBeFalse)
			So(none.IsNone(), ShouldBeTrue)
			So(none.String(), ShouldEqual, "None")

			So(func() { none.Unwrap() }, ShouldPanic)
			So(func() { none.Expect("no block fits") }, ShouldPanicWith, "no block fits")
			So(none.UnwrapOr(-1), ShouldEqual, -1)
		})
	})
}
