package skill_test

import (
	"errors"
	"testing"

	"github.com/naomijub/MHTH/skill"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewRank(t *testing.T) {
	Convey("Given placements", t, func() {
		Convey("When the placement is positive", func() {
			Convey("Then a rank is constructed", func() {
				first, err := skill.NewRank(1)
				So(err, ShouldBeNil)
				So(first, ShouldEqual, skill.Rank(1))
				So(first.Valid(), ShouldBeTrue)

				gapped, err := skill.NewRank(17)
				So(err, ShouldBeNil)
				So(gapped.Valid(), ShouldBeTrue)
			})
		})

		Convey("When the placement is zero or negative", func() {
			Convey("Then ErrInvalidRank is reported", func() {
				for _, position := range []int{0, -1, -100} {
					_, err := skill.NewRank(position)
					So(errors.Is(err, skill.ErrInvalidRank), ShouldBeTrue)
				}
			})
		})
	})
}

func TestRank_Versus(t *testing.T) {
	Convey("Given two ranked teams", t, func() {
		Convey("When the receiver placed better", func() {
			Convey("Then the pairwise outcome is a win", func() {
				So(skill.Rank(1).Versus(skill.Rank(2)), ShouldEqual, skill.Win)
				So(skill.Rank(2).Versus(skill.Rank(9)), ShouldEqual, skill.Win)
			})
		})

		Convey("When the placements are equal", func() {
			Convey("Then the pairwise outcome is a draw", func() {
				So(skill.Rank(3).Versus(skill.Rank(3)), ShouldEqual, skill.Draw)
			})
		})

		Convey("When the receiver placed worse", func() {
			Convey("Then the pairwise outcome is a loss", func() {
				So(skill.Rank(4).Versus(skill.Rank(1)), ShouldEqual, skill.Loss)
			})
		})

		Convey("And the relation is antisymmetric", func() {
			for _, pair := range [][2]skill.Rank{{1, 2}, {2, 2}, {5, 3}} {
				a, b := pair[0], pair[1]
				So(a.Versus(b), ShouldEqual, b.Versus(a).Opposite())
			}
		})
	})
}
