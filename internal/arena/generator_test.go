package arena

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/smartystreets/goconvey/convey"
)

func TestNewRoster(t *testing.T) {
	convey.Convey("Given a seeded source", t, func() {
		convey.Convey("When two rosters are drawn from the same seed", func() {
			one, err := newRoster(32, rand.New(rand.NewSource(99)))
			convey.So(err, convey.ShouldBeNil)

			two, err := newRoster(32, rand.New(rand.NewSource(99)))
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then identities and latents are identical", func() {
				convey.So(two, convey.ShouldResemble, one)
			})
		})

		convey.Convey("When a large roster is drawn", func() {
			roster, err := newRoster(1000, rand.New(rand.NewSource(5)))
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then identities are unique", func() {
				seen := make(map[uuid.UUID]bool, len(roster))
				for _, p := range roster {
					seen[p.ID] = true
				}

				convey.So(seen, convey.ShouldHaveLength, len(roster))
			})

			convey.Convey("Then latents follow the configured distribution", func() {
				total := 0.0
				for _, p := range roster {
					total += p.Latent
				}
				mean := total / float64(len(roster))

				spread := 0.0
				for _, p := range roster {
					spread += (p.Latent - mean) * (p.Latent - mean)
				}
				stddev := math.Sqrt(spread / float64(len(roster)-1))

				convey.So(mean, convey.ShouldAlmostEqual, latentMu, 1.0)
				convey.So(stddev, convey.ShouldAlmostEqual, latentSigma, 1.0)
			})
		})
	})
}

func TestMeanLatent(t *testing.T) {
	convey.Convey("Given a roster with known latents", t, func() {
		roster := []Player{{Latent: 10}, {Latent: 20}, {Latent: 60}}

		convey.Convey("When squad latents are averaged", func() {
			convey.So(meanLatent(roster, []int{0, 1}), convey.ShouldEqual, 15.0)
			convey.So(meanLatent(roster, []int{0, 1, 2}), convey.ShouldEqual, 30.0)
			convey.So(meanLatent(roster, []int{2}), convey.ShouldEqual, 60.0)
		})
	})
}
