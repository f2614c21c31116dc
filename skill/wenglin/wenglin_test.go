package wenglin_test

import (
	"errors"
	"math"
	"testing"

	"github.com/naomijub/MHTH/skill"
	"github.com/naomijub/MHTH/skill/trueskill"
	"github.com/naomijub/MHTH/skill/wenglin"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWengLin_Rate(t *testing.T) {
	Convey("Given a default engine", t, func() {
		engine, err := wenglin.New(wenglin.DefaultConfig())
		So(err, ShouldBeNil)

		Convey("When two unrated players play and one wins", func() {
			winner, loser, err := engine.Rate(wenglin.DefaultRating(), wenglin.DefaultRating(), skill.Win)

			Convey("Then the logistic first-game update comes out", func() {
				So(err, ShouldBeNil)
				So(winner.Mu, ShouldAlmostEqual, 27.63523138347365, 1e-9)
				So(winner.Sigma, ShouldAlmostEqual, 8.065506316323548, 1e-9)
				So(loser.Mu, ShouldAlmostEqual, 22.36476861652635, 1e-9)
				So(loser.Sigma, ShouldAlmostEqual, winner.Sigma, 1e-12)
			})
		})

		Convey("When two unrated players draw", func() {
			one, two, err := engine.Rate(wenglin.DefaultRating(), wenglin.DefaultRating(), skill.Draw)

			Convey("Then neither rating moves but both tighten", func() {
				So(err, ShouldBeNil)
				So(one.Mu, ShouldEqual, 25.0)
				So(two.Mu, ShouldEqual, 25.0)
				So(one.Sigma, ShouldAlmostEqual, 8.065506316323548, 1e-9)
			})
		})

		Convey("When a favorite loses to an underdog", func() {
			favorite := wenglin.Rating{Mu: 30, Sigma: 4}
			underdog := wenglin.Rating{Mu: 21, Sigma: 7}
			newFav, newDog, err := engine.Rate(favorite, underdog, skill.Loss)

			Convey("Then the upset moves the wide rating more", func() {
				So(err, ShouldBeNil)
				So(newFav.Mu, ShouldAlmostEqual, 28.860485285877477, 1e-9)
				So(newFav.Sigma, ShouldAlmostEqual, 3.9735122425138263, 1e-9)
				So(newDog.Mu, ShouldAlmostEqual, 24.489763812000223, 1e-9)
				So(newDog.Sigma, ShouldAlmostEqual, 6.747855120190257, 1e-9)
			})
		})

		Convey("When the same match is rated as teams of one", func() {
			one := wenglin.Rating{Mu: 30, Sigma: 4}
			two := wenglin.Rating{Mu: 21, Sigma: 7}
			pairOne, pairTwo, err := engine.Rate(one, two, skill.Win)
			So(err, ShouldBeNil)
			teamOne, teamTwo, err := engine.RateTeams([]wenglin.Rating{one}, []wenglin.Rating{two}, skill.Win)
			So(err, ShouldBeNil)

			Convey("Then the pairwise and team paths agree", func() {
				So(teamOne[0].Mu, ShouldAlmostEqual, pairOne.Mu, 1e-12)
				So(teamOne[0].Sigma, ShouldAlmostEqual, pairOne.Sigma, 1e-12)
				So(teamTwo[0].Mu, ShouldAlmostEqual, pairTwo.Mu, 1e-12)
				So(teamTwo[0].Sigma, ShouldAlmostEqual, pairTwo.Sigma, 1e-12)
			})
		})

		Convey("When a rating is not finite", func() {
			_, _, err := engine.Rate(wenglin.Rating{Mu: math.NaN(), Sigma: 1}, wenglin.DefaultRating(), skill.Win)

			Convey("Then ErrInvalidRating is reported", func() {
				So(errors.Is(err, skill.ErrInvalidRating), ShouldBeTrue)
			})
		})
	})
}

func TestWengLin_ExpectedScore(t *testing.T) {
	Convey("Given a default engine", t, func() {
		engine, err := wenglin.New(wenglin.DefaultConfig())
		So(err, ShouldBeNil)

		Convey("When two identical players are compared", func() {
			pOne, pTwo, err := engine.ExpectedScore(wenglin.DefaultRating(), wenglin.DefaultRating())

			Convey("Then each side gets exactly half", func() {
				So(err, ShouldBeNil)
				So(pOne, ShouldEqual, 0.5)
				So(pTwo, ShouldEqual, 0.5)
			})
		})

		Convey("When ratings differ", func() {
			pOne, pTwo, err := engine.ExpectedScore(
				wenglin.Rating{Mu: 30, Sigma: 4},
				wenglin.Rating{Mu: 21, Sigma: 7},
			)

			Convey("Then the probabilities favor the stronger side and sum to one", func() {
				So(err, ShouldBeNil)
				So(pOne, ShouldBeGreaterThan, 0.5)
				So(pOne+pTwo, ShouldAlmostEqual, 1.0, 1e-12)
			})
		})
	})
}

func TestWengLin_RateTeams(t *testing.T) {
	Convey("Given a default engine and two 3-player teams", t, func() {
		engine, err := wenglin.New(wenglin.DefaultConfig())
		So(err, ShouldBeNil)

		teamOne := []wenglin.Rating{
			{Mu: 25, Sigma: 25.0 / 3.0},
			{Mu: 30, Sigma: 4},
			{Mu: 21, Sigma: 7},
		}
		teamTwo := []wenglin.Rating{
			{Mu: 25, Sigma: 25.0 / 3.0},
			{Mu: 28, Sigma: 6},
			{Mu: 19, Sigma: 7.5},
		}

		Convey("When the first team wins", func() {
			newOne, newTwo, err := engine.RateTeams(teamOne, teamTwo, skill.Win)

			Convey("Then each member moves in proportion to their own variance", func() {
				So(err, ShouldBeNil)
				wantOne := []wenglin.Rating{
					{Mu: 26.699858216854917, Sigma: 8.194477991068753},
					{Mu: 30.391647333163373, Sigma: 3.984742549437898},
					{Mu: 22.19941995781283, Sigma: 6.9179041425998715},
				}
				wantTwo := []wenglin.Rating{
					{Mu: 23.300141783145083, Sigma: 8.180929862873437},
					{Mu: 27.11879350038241, Sigma: 5.943368611744065},
					{Mu: 17.623114844347516, Sigma: 7.389093798679578},
				}
				for i := range wantOne {
					So(newOne[i].Mu, ShouldAlmostEqual, wantOne[i].Mu, 1e-9)
					So(newOne[i].Sigma, ShouldAlmostEqual, wantOne[i].Sigma, 1e-9)
				}
				for i := range wantTwo {
					So(newTwo[i].Mu, ShouldAlmostEqual, wantTwo[i].Mu, 1e-9)
					So(newTwo[i].Sigma, ShouldAlmostEqual, wantTwo[i].Sigma, 1e-9)
				}
			})
		})

		Convey("When predicting the same matchup", func() {
			pOne, pTwo, err := engine.ExpectedScoreTeams(teamOne, teamTwo)

			Convey("Then the logistic prediction comes out", func() {
				So(err, ShouldBeNil)
				So(pOne, ShouldAlmostEqual, 0.5547560233642274, 1e-9)
				So(pTwo, ShouldAlmostEqual, 0.44524397663577264, 1e-9)
			})
		})

		Convey("When a team is empty", func() {
			_, _, err := engine.RateTeams(teamOne, nil, skill.Win)

			Convey("Then ErrEmptyGroup is reported", func() {
				So(errors.Is(err, skill.ErrEmptyGroup), ShouldBeTrue)
			})
		})
	})
}

func TestWengLin_RateMultiTeam(t *testing.T) {
	Convey("Given a default engine and three ranked teams", t, func() {
		engine, err := wenglin.New(wenglin.DefaultConfig())
		So(err, ShouldBeNil)

		teamOne := []wenglin.Rating{
			{Mu: 25, Sigma: 25.0 / 3.0},
			{Mu: 30, Sigma: 4},
			{Mu: 21, Sigma: 7},
		}
		teamTwo := []wenglin.Rating{
			{Mu: 25, Sigma: 25.0 / 3.0},
			{Mu: 28, Sigma: 6},
			{Mu: 19, Sigma: 7.5},
		}
		teamThree := []wenglin.Rating{wenglin.DefaultRating(), wenglin.DefaultRating()}

		Convey("When a winner and two tied teams are rated", func() {
			result, err := engine.RateMultiTeam([]skill.RankedTeam[wenglin.Rating]{
				{Players: teamOne, Rank: 1},
				{Players: teamTwo, Rank: 2},
				{Players: teamThree, Rank: 2},
			})

			Convey("Then pairwise updates accumulate before applying", func() {
				So(err, ShouldBeNil)
				wantOne := []wenglin.Rating{
					{Mu: 27.43271298433858, Sigma: 8.098685569957938},
					{Mu: 30.56049707159161, Sigma: 3.9743328330170566},
					{Mu: 22.7165222817493, Sigma: 6.861511439413934},
				}
				wantTwo := []wenglin.Rating{
					{Mu: 22.280809838945444, Sigma: 8.071694272110385},
					{Mu: 26.59037182050932, Sigma: 5.903094224371089},
					{Mu: 16.79745596954581, Sigma: 7.30984884863904},
				}
				for i := range wantOne {
					So(result[0][i].Mu, ShouldAlmostEqual, wantOne[i].Mu, 1e-9)
					So(result[0][i].Sigma, ShouldAlmostEqual, wantOne[i].Sigma, 1e-9)
				}
				for i := range wantTwo {
					So(result[1][i].Mu, ShouldAlmostEqual, wantTwo[i].Mu, 1e-9)
					So(result[1][i].Sigma, ShouldAlmostEqual, wantTwo[i].Sigma, 1e-9)
				}
				So(result[2][0].Mu, ShouldAlmostEqual, 25.286477176715977, 1e-9)
				So(result[2][0].Sigma, ShouldAlmostEqual, 8.137117791056513, 1e-9)
				So(result[2][1].Mu, ShouldAlmostEqual, result[2][0].Mu, 1e-12)
			})
		})

		Convey("When only one team is supplied", func() {
			result, err := engine.RateMultiTeam([]skill.RankedTeam[wenglin.Rating]{
				{Players: teamOne, Rank: 1},
			})

			Convey("Then it is a no-op returning the team unchanged", func() {
				So(err, ShouldBeNil)
				So(result, ShouldHaveLength, 1)
				So(result[0], ShouldResemble, teamOne)
			})
		})

		Convey("When no teams are supplied", func() {
			_, err := engine.RateMultiTeam(nil)

			Convey("Then ErrEmptyGroup is reported", func() {
				So(errors.Is(err, skill.ErrEmptyGroup), ShouldBeTrue)
			})
		})

		Convey("When a rank is not positive", func() {
			_, err := engine.RateMultiTeam([]skill.RankedTeam[wenglin.Rating]{
				{Players: teamOne, Rank: -3},
				{Players: teamTwo, Rank: 1},
			})

			Convey("Then ErrInvalidRank is reported", func() {
				So(errors.Is(err, skill.ErrInvalidRank), ShouldBeTrue)
			})
		})
	})
}

func TestWengLin_ExpectedScoreMultiTeam(t *testing.T) {
	Convey("Given a default engine and three teams", t, func() {
		engine, err := wenglin.New(wenglin.DefaultConfig())
		So(err, ShouldBeNil)

		teams := [][]wenglin.Rating{
			{{Mu: 25, Sigma: 25.0 / 3.0}, {Mu: 30, Sigma: 4}, {Mu: 21, Sigma: 7}},
			{{Mu: 25, Sigma: 25.0 / 3.0}, {Mu: 28, Sigma: 6}, {Mu: 19, Sigma: 7.5}},
			{wenglin.DefaultRating(), wenglin.DefaultRating()},
		}

		Convey("When predicting the field", func() {
			scores, err := engine.ExpectedScoreMultiTeam(teams)

			Convey("Then the softmax over team strengths comes out", func() {
				So(err, ShouldBeNil)
				So(scores, ShouldHaveLength, 3)
				So(scores[0], ShouldAlmostEqual, 0.4688703527649893, 1e-9)
				So(scores[1], ShouldAlmostEqual, 0.3898534755826291, 1e-9)
				So(scores[2], ShouldAlmostEqual, 0.14127617165238165, 1e-9)
				So(scores[0]+scores[1]+scores[2], ShouldAlmostEqual, 1.0, 1e-12)
			})
		})

		Convey("When a team in the field is empty", func() {
			_, err := engine.ExpectedScoreMultiTeam([][]wenglin.Rating{teams[0], {}})

			Convey("Then ErrEmptyGroup is reported", func() {
				So(errors.Is(err, skill.ErrEmptyGroup), ShouldBeTrue)
			})
		})
	})
}

func TestWengLin_RatePeriod(t *testing.T) {
	Convey("Given a default engine", t, func() {
		engine, err := wenglin.New(wenglin.DefaultConfig())
		So(err, ShouldBeNil)

		Convey("When a period holds a win then a loss", func() {
			updated, err := engine.RatePeriod(wenglin.DefaultRating(), []skill.Result[wenglin.Rating]{
				{Opponent: wenglin.Rating{Mu: 22, Sigma: 6}, Outcome: skill.Win},
				{Opponent: wenglin.Rating{Mu: 30, Sigma: 7}, Outcome: skill.Loss},
			})

			Convey("Then the games chain in order", func() {
				So(err, ShouldBeNil)
				So(updated.Mu, ShouldAlmostEqual, 25.20878495848384, 1e-9)
				So(updated.Sigma, ShouldAlmostEqual, 7.683500540935364, 1e-9)
			})
		})

		Convey("When the period is empty", func() {
			player := wenglin.Rating{Mu: 31, Sigma: 2.5}
			updated, err := engine.RatePeriod(player, nil)

			Convey("Then the player is returned unchanged", func() {
				So(err, ShouldBeNil)
				So(updated, ShouldResemble, player)
			})
		})

		Convey("When predicting a period", func() {
			scores, err := engine.ExpectedScorePeriod(wenglin.DefaultRating(), []wenglin.Rating{
				{Mu: 22, Sigma: 6},
				{Mu: 25, Sigma: 25.0 / 3.0},
			})

			Convey("Then each matchup is scored independently", func() {
				So(err, ShouldBeNil)
				So(scores, ShouldHaveLength, 2)
				So(scores[0], ShouldBeGreaterThan, 0.5)
				So(scores[1], ShouldEqual, 0.5)
			})
		})
	})
}

func TestWengLin_FromTrueSkill(t *testing.T) {
	Convey("Given a gaussian rating", t, func() {
		source := trueskill.Rating{Mu: 29.4, Sigma: 4.2}

		Convey("When it is converted", func() {
			converted := wenglin.FromTrueSkill(source)

			Convey("Then mean and spread carry over directly", func() {
				So(converted, ShouldResemble, wenglin.Rating{Mu: 29.4, Sigma: 4.2})
			})
		})
	})
}

func TestWengLin_New(t *testing.T) {
	Convey("Given engine configurations", t, func() {
		Convey("When beta is not positive or not finite", func() {
			Convey("Then construction reports ErrInvalidConfig", func() {
				for _, beta := range []float64{0, -4.1, math.NaN(), math.Inf(1)} {
					cfg := wenglin.DefaultConfig()
					cfg.Beta = beta
					_, err := wenglin.New(cfg)
					So(errors.Is(err, skill.ErrInvalidConfig), ShouldBeTrue)
				}
			})
		})

		Convey("When the uncertainty tolerance is not positive", func() {
			cfg := wenglin.DefaultConfig()
			cfg.UncertaintyTolerance = 0

			_, err := wenglin.New(cfg)

			Convey("Then construction reports ErrInvalidConfig", func() {
				So(errors.Is(err, skill.ErrInvalidConfig), ShouldBeTrue)
			})
		})
	})
}
