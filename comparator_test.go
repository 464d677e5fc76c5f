package qamp

import (
	"errors"
	"fmt"
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDiffMagnitude(t *testing.T) {
	Convey("Given pairs of integers", t, func() {
		Convey("When the first operand is larger", func() {
			mag, ge := diffMagnitude(5, 3)

			So(mag, ShouldEqual, uint64(2))
			So(ge, ShouldBeTrue)
		})

		Convey("When the second operand is larger", func() {
			mag, ge := diffMagnitude(3, 5)

			So(mag, ShouldEqual, uint64(2))
			So(ge, ShouldBeFalse)
		})

		Convey("When the operands are equal", func() {
			mag, ge := diffMagnitude(0, 0)

			So(mag, ShouldEqual, uint64(0))
			So(ge, ShouldBeTrue)
		})

		Convey("When the operands are negative", func() {
			mag, ge := diffMagnitude(-3, -9)

			So(mag, ShouldEqual, uint64(6))
			So(ge, ShouldBeTrue)
		})

		Convey("When the difference overflows int64", func() {
			mag, ge := diffMagnitude(math.MaxInt64, math.MinInt64)

			So(mag, ShouldEqual, uint64(math.MaxUint64))
			So(ge, ShouldBeTrue)

			mag, ge = diffMagnitude(math.MinInt64, math.MaxInt64)

			So(mag, ShouldEqual, uint64(math.MaxUint64))
			So(ge, ShouldBeFalse)
		})
	})
}

func TestWidthFor(t *testing.T) {
	Convey("Given the width encoding", t, func() {
		Convey("When the difference is small", func() {
			So(widthFor(5, 3), ShouldEqual, 2)
			So(widthFor(0, 0), ShouldEqual, 2)
			So(widthFor(1, 0), ShouldEqual, 2)
		})

		Convey("When the difference needs more bits", func() {
			So(widthFor(8, 0), ShouldEqual, 4)
			So(widthFor(0, 1024), ShouldEqual, 11)
		})

		Convey("When the difference fills the full range", func() {
			So(widthFor(math.MaxInt64, math.MinInt64), ShouldEqual, 64)
		})
	})
}

func TestCompare(t *testing.T) {
	Convey("Given a seeded comparator", t, func() {
		comparator := Comparator{Source: NewSeededSource(7)}

		Convey("When comparing 5 and 3", func() {
			cmp, err := comparator.Compare(5, 3)

			So(err, ShouldBeNil)
			So(cmp.GreaterOrEqual, ShouldBeTrue)
			So(cmp.Qubits, ShouldEqual, 2)
			So(cmp.Marked, ShouldEqual, 2)
			So(cmp.Iterations, ShouldEqual, 1)

			Convey("Then the measurement confirms the marked state", func() {
				So(cmp.Index, ShouldEqual, 2)
				So(cmp.Probability, ShouldBeGreaterThan, 0.999)
				So(cmp.Confirmed, ShouldBeTrue)
			})
		})

		Convey("When comparing 3 and 5", func() {
			cmp, err := comparator.Compare(3, 5)

			So(err, ShouldBeNil)
			So(cmp.GreaterOrEqual, ShouldBeFalse)
			So(cmp.Qubits, ShouldEqual, 2)
			So(cmp.Marked, ShouldEqual, 2)
		})

		Convey("When comparing equal operands", func() {
			cmp, err := comparator.Compare(0, 0)

			So(err, ShouldBeNil)
			So(cmp.GreaterOrEqual, ShouldBeTrue)
			So(cmp.Qubits, ShouldEqual, 2)
			So(cmp.Marked, ShouldEqual, 0)
		})

		Convey("When the difference needs more qubits than the limit", func() {
			cmp, err := comparator.Compare(math.MaxInt64, math.MinInt64)

			So(cmp, ShouldBeNil)
			So(errors.Is(err, ErrWidthTooLarge), ShouldBeTrue)

			cmp, err = comparator.Compare(1<<35, 0)

			So(cmp, ShouldBeNil)
			So(errors.Is(err, ErrWidthTooLarge), ShouldBeTrue)
		})
	})

	Convey("Given a deterministic comparator", t, func() {
		comparator := Comparator{Deterministic: true}

		Convey("When comparing 9 and 4", func() {
			cmp, err := comparator.Compare(9, 4)

			So(err, ShouldBeNil)
			So(cmp.GreaterOrEqual, ShouldBeTrue)
			So(cmp.Qubits, ShouldEqual, 3)
			So(cmp.Marked, ShouldEqual, 5)
			So(cmp.Index, ShouldEqual, 5)
			So(cmp.Confirmed, ShouldBeTrue)
		})
	})
}

func TestCompareReproducible(t *testing.T) {
	Convey("Given two comparators with the same seed", t, func() {
		first := Comparator{Source: NewSeededSource(1234)}
		second := Comparator{Source: NewSeededSource(1234)}

		Convey("When both compare the same pair", func() {
			a, err := first.Compare(100, 37)
			So(err, ShouldBeNil)
			b, err := second.Compare(100, 37)
			So(err, ShouldBeNil)

			So(a.Index, ShouldEqual, b.Index)
			So(a.Probability, ShouldEqual, b.Probability)
		})
	})
}

func TestVerdictIndependentOfSeed(t *testing.T) {
	Convey("Given the same pair under many seeds", t, func() {
		for seed := uint64(1); seed <= 8; seed++ {
			Convey(fmt.Sprintf("When seed %d measures the register", seed), func() {
				comparator := Comparator{Source: NewSeededSource(seed)}

				ge, err := comparator.CompareGreaterOrEqual(9, 4)
				So(err, ShouldBeNil)
				So(ge, ShouldBeTrue)

				lt, err := comparator.CompareGreaterOrEqual(4, 9)
				So(err, ShouldBeNil)
				So(lt, ShouldBeFalse)
			})
		}
	})
}

func TestCompareGreaterOrEqual(t *testing.T) {
	Convey("Given the package-level helper", t, func() {
		Convey("When comparing ordered pairs", func() {
			ge, err := CompareGreaterOrEqual(5, 3)

			So(err, ShouldBeNil)
			So(ge, ShouldBeTrue)

			ge, err = CompareGreaterOrEqual(3, 5)

			So(err, ShouldBeNil)
			So(ge, ShouldBeFalse)

			ge, err = CompareGreaterOrEqual(0, 0)

			So(err, ShouldBeNil)
			So(ge, ShouldBeTrue)
		})

		Convey("When comparing negatives", func() {
			ge, err := CompareGreaterOrEqual(-3, -9)

			So(err, ShouldBeNil)
			So(ge, ShouldBeTrue)
		})
	})
}
