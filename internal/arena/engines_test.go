package arena

import (
	"errors"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/naomijub/MHTH/internal/config"
	"github.com/naomijub/MHTH/skill"
	"github.com/naomijub/MHTH/skill/glicko"
	"github.com/naomijub/MHTH/skill/trueskill"
	"github.com/naomijub/MHTH/skill/wenglin"
)

func TestNewSimulator(t *testing.T) {
	convey.Convey("Given the engine factory", t, func() {
		convey.Convey("When every known engine is requested", func() {
			names := []string{
				config.EngineElo,
				config.EngineGlicko,
				config.EngineGlicko2,
				config.EngineTrueSkill,
				config.EngineWengLin,
				config.EngineMHTH,
			}

			for _, name := range names {
				sim, err := newSimulator(name, 4, DefaultEngineParams())
				convey.So(err, convey.ShouldBeNil)
				convey.So(sim, convey.ShouldNotBeNil)
			}
		})

		convey.Convey("When the engine name is unknown", func() {
			sim, err := newSimulator("chess", 4, DefaultEngineParams())

			convey.So(sim, convey.ShouldBeNil)
			convey.So(errors.Is(err, ErrInvalidOptions), convey.ShouldBeTrue)
		})

		convey.Convey("When the engine parameters are invalid", func() {
			params := DefaultEngineParams()
			params.Elo.K = -1

			sim, err := newSimulator(config.EngineElo, 4, params)

			convey.So(sim, convey.ShouldBeNil)
			convey.So(errors.Is(err, skill.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

func TestEngineSim_Incremental(t *testing.T) {
	convey.Convey("Given a wenglin simulator over four players", t, func() {
		sim, err := newSimulator(config.EngineWengLin, 4, DefaultEngineParams())
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When player 0 beats player 3", func() {
			err := sim.playPair(0, 3, skill.Win)

			convey.Convey("Then both ratings move immediately, matching the engine", func() {
				convey.So(err, convey.ShouldBeNil)

				system, err := wenglin.New(wenglin.DefaultConfig())
				convey.So(err, convey.ShouldBeNil)
				winner, loser, err := system.Rate(wenglin.DefaultRating(), wenglin.DefaultRating(), skill.Win)
				convey.So(err, convey.ShouldBeNil)

				convey.So(sim.rating(0), convey.ShouldEqual, winner.Rating())
				convey.So(sim.rating(3), convey.ShouldEqual, loser.Rating())
				convey.So(sim.rating(1), convey.ShouldEqual, wenglin.DefaultRating().Rating())
			})

			convey.Convey("Then closing the season changes nothing more", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(sim.batched(), convey.ShouldBeFalse)

				before := sim.rating(0)
				convey.So(sim.finishSeason(), convey.ShouldBeNil)
				convey.So(sim.rating(0), convey.ShouldEqual, before)
			})
		})

		convey.Convey("When a prediction is requested", func() {
			pOne, pTwo, err := sim.expectedPair(1, 2)

			convey.Convey("Then equal defaults split the odds", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(pOne, convey.ShouldEqual, 0.5)
				convey.So(pTwo, convey.ShouldEqual, 0.5)
			})
		})
	})
}

func TestEngineSim_Batched(t *testing.T) {
	convey.Convey("Given a glicko simulator over four players", t, func() {
		sim, err := newSimulator(config.EngineGlicko, 4, DefaultEngineParams())
		convey.So(err, convey.ShouldBeNil)

		defaultRating := glicko.DefaultRating().Rating()
		defaultDeviation, ok := glicko.DefaultRating().Uncertainty()
		convey.So(ok, convey.ShouldBeTrue)

		convey.Convey("When player 0 beats player 1 mid-season", func() {
			err := sim.playPair(0, 1, skill.Win)

			convey.Convey("Then ratings hold until the season closes", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(sim.batched(), convey.ShouldBeTrue)
				convey.So(sim.rating(0), convey.ShouldEqual, defaultRating)
				convey.So(sim.rating(1), convey.ShouldEqual, defaultRating)
			})

			convey.Convey("Then closing the season applies the period update", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(sim.finishSeason(), convey.ShouldBeNil)

				system, err := glicko.New(glicko.DefaultConfig())
				convey.So(err, convey.ShouldBeNil)
				want, err := system.RatePeriod(glicko.DefaultRating(), []skill.Result[glicko.Rating]{
					{Opponent: glicko.DefaultRating(), Outcome: skill.Win},
				})
				convey.So(err, convey.ShouldBeNil)

				convey.So(sim.rating(0), convey.ShouldEqual, want.Rating())

				deviation, ok := sim.uncertainty(0)
				wantDeviation, _ := want.Uncertainty()
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(deviation, convey.ShouldEqual, wantDeviation)
			})

			convey.Convey("Then idle players keep their rating at the deviation ceiling", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(sim.finishSeason(), convey.ShouldBeNil)

				convey.So(sim.rating(2), convey.ShouldEqual, defaultRating)

				deviation, ok := sim.uncertainty(2)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(deviation, convey.ShouldEqual, defaultDeviation)
			})

			convey.Convey("Then the queue is empty after the close", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(sim.finishSeason(), convey.ShouldBeNil)

				first := sim.rating(0)
				firstDeviation, _ := sim.uncertainty(0)

				convey.So(sim.finishSeason(), convey.ShouldBeNil)
				convey.So(sim.rating(0), convey.ShouldEqual, first)

				second, _ := sim.uncertainty(0)
				convey.So(second, convey.ShouldBeGreaterThan, firstDeviation)
			})
		})
	})
}

func TestEngineSim_PairOnly(t *testing.T) {
	convey.Convey("Given an elo simulator", t, func() {
		sim, err := newSimulator(config.EngineElo, 6, DefaultEngineParams())
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When a squad match is requested", func() {
			err := sim.playTeams([]int{0, 1, 2}, []int{3, 4, 5}, skill.Win)

			convey.So(errors.Is(err, ErrUnsupportedMode), convey.ShouldBeTrue)
		})

		convey.Convey("When a free-for-all match is requested", func() {
			err := sim.playMulti([][]int{{0, 1}, {2, 3}, {4, 5}}, []skill.Rank{1, 2, 3})

			convey.So(errors.Is(err, ErrUnsupportedMode), convey.ShouldBeTrue)
		})

		convey.Convey("When squad predictions are requested", func() {
			_, _, err := sim.expectedTeams([]int{0, 1, 2}, []int{3, 4, 5})
			convey.So(errors.Is(err, ErrUnsupportedMode), convey.ShouldBeTrue)

			_, err = sim.expectedMulti([][]int{{0, 1}, {2, 3}})
			convey.So(errors.Is(err, ErrUnsupportedMode), convey.ShouldBeTrue)
		})
	})
}

func TestEngineSim_Multi(t *testing.T) {
	convey.Convey("Given a trueskill simulator over six players", t, func() {
		sim, err := newSimulator(config.EngineTrueSkill, 6, DefaultEngineParams())
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When three squads finish in mixed order", func() {
			teams := [][]int{{0, 1}, {2, 3}, {4, 5}}
			err := sim.playMulti(teams, []skill.Rank{2, 1, 3})

			convey.Convey("Then the update matches the engine's free-for-all rating", func() {
				convey.So(err, convey.ShouldBeNil)

				system, err := trueskill.New(trueskill.DefaultConfig())
				convey.So(err, convey.ShouldBeNil)

				def := trueskill.DefaultRating()
				want, err := system.RateMultiTeam([]skill.RankedTeam[trueskill.Rating]{
					{Players: []trueskill.Rating{def, def}, Rank: 2},
					{Players: []trueskill.Rating{def, def}, Rank: 1},
					{Players: []trueskill.Rating{def, def}, Rank: 3},
				})
				convey.So(err, convey.ShouldBeNil)

				for ti, team := range teams {
					for pi, p := range team {
						convey.So(sim.rating(p), convey.ShouldEqual, want[ti][pi].Rating())
					}
				}
			})
		})

		convey.Convey("When squad win probabilities are requested", func() {
			scores, err := sim.expectedMulti([][]int{{0, 1}, {2, 3}, {4, 5}})

			convey.Convey("Then equal squads split the field evenly", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(scores, convey.ShouldHaveLength, 3)
				convey.So(scores[0], convey.ShouldAlmostEqual, 1.0/3.0, 1e-9)
				convey.So(scores[1], convey.ShouldAlmostEqual, 1.0/3.0, 1e-9)
				convey.So(scores[2], convey.ShouldAlmostEqual, 1.0/3.0, 1e-9)
			})
		})
	})
}
