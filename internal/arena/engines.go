package arena

import (
	"fmt"

	"github.com/naomijub/MHTH/internal/config"
	"github.com/naomijub/MHTH/skill"
	"github.com/naomijub/MHTH/skill/elo"
	"github.com/naomijub/MHTH/skill/glicko"
	"github.com/naomijub/MHTH/skill/glicko2"
	"github.com/naomijub/MHTH/skill/mhth"
	"github.com/naomijub/MHTH/skill/trueskill"
	"github.com/naomijub/MHTH/skill/wenglin"
)

// simulator hides an engine's concrete rating type behind roster
// indices so the runner can schedule matches without knowing which
// engine is active. Matches within one round touch disjoint players,
// so the play methods may run concurrently for disjoint index sets.
type simulator interface {
	playPair(one, two int, outcome skill.Outcome) error
	playTeams(one, two []int, outcome skill.Outcome) error
	playMulti(teams [][]int, ranks []skill.Rank) error

	// finishSeason closes a rating period. Period engines apply their
	// queued results here; incremental engines do nothing.
	finishSeason() error
	// batched reports whether results land at season end rather than
	// immediately after each match.
	batched() bool

	rating(i int) float64
	uncertainty(i int) (float64, bool)

	expectedPair(one, two int) (float64, float64, error)
	expectedTeams(one, two []int) (float64, float64, error)
	expectedMulti(teams [][]int) ([]float64, error)
}

// engineSim adapts one rating engine to the simulator interface. Team
// and multi-team capabilities are optional; head-to-head engines leave
// them nil and the runner never schedules those modes for them.
type engineSim[R skill.Rating] struct {
	ratings []R
	pair    skill.RatingSystem[R]
	period  skill.RatingPeriodSystem[R]
	team    skill.TeamRatingSystem[R]
	multi   skill.MultiTeamRatingSystem[R]
	batch   bool
	pending [][]skill.Result[R]
}

func newEngineSim[R skill.Rating](
	size int,
	initial R,
	pair skill.RatingSystem[R],
	period skill.RatingPeriodSystem[R],
	team skill.TeamRatingSystem[R],
	multi skill.MultiTeamRatingSystem[R],
	batch bool,
) *engineSim[R] {
	ratings := make([]R, size)
	for i := range ratings {
		ratings[i] = initial
	}

	sim := &engineSim[R]{
		ratings: ratings,
		pair:    pair,
		period:  period,
		team:    team,
		multi:   multi,
		batch:   batch,
	}
	if batch {
		sim.pending = make([][]skill.Result[R], size)
	}

	return sim
}

// newSimulator builds the simulator for the named engine with every
// player on the engine's default rating.
func newSimulator(engine string, size int, params EngineParams) (simulator, error) {
	switch engine {
	case config.EngineElo:
		system, err := elo.New(params.Elo)
		if err != nil {
			return nil, err
		}

		return newEngineSim(size, elo.DefaultRating(), system, system, nil, nil, false), nil
	case config.EngineGlicko:
		system, err := glicko.New(params.Glicko)
		if err != nil {
			return nil, err
		}

		return newEngineSim(size, glicko.DefaultRating(), system, system, nil, nil, true), nil
	case config.EngineGlicko2:
		system, err := glicko2.New(params.Glicko2)
		if err != nil {
			return nil, err
		}

		return newEngineSim(size, glicko2.DefaultRating(), system, system, nil, nil, true), nil
	case config.EngineTrueSkill:
		system, err := trueskill.New(params.TrueSkill)
		if err != nil {
			return nil, err
		}

		return newEngineSim(size, trueskill.DefaultRating(), system, system, system, system, false), nil
	case config.EngineWengLin:
		system, err := wenglin.New(params.WengLin)
		if err != nil {
			return nil, err
		}

		return newEngineSim(size, wenglin.DefaultRating(), system, system, system, system, false), nil
	case config.EngineMHTH:
		system, err := mhth.New(params.MHTH)
		if err != nil {
			return nil, err
		}

		return newEngineSim(size, mhth.DefaultRating(), system, system, system, system, false), nil
	default:
		return nil, fmt.Errorf("%w: unknown engine %q", ErrInvalidOptions, engine)
	}
}

func (s *engineSim[R]) playPair(one, two int, outcome skill.Outcome) error {
	if s.batch {
		// Ratings stay frozen until finishSeason, so the queued
		// opponent snapshots keep their start-of-period values.
		s.pending[one] = append(s.pending[one], skill.Result[R]{Opponent: s.ratings[two], Outcome: outcome})
		s.pending[two] = append(s.pending[two], skill.Result[R]{Opponent: s.ratings[one], Outcome: outcome.Opposite()})

		return nil
	}

	updatedOne, updatedTwo, err := s.pair.Rate(s.ratings[one], s.ratings[two], outcome)
	if err != nil {
		return err
	}
	s.ratings[one], s.ratings[two] = updatedOne, updatedTwo

	return nil
}

func (s *engineSim[R]) playTeams(one, two []int, outcome skill.Outcome) error {
	if s.team == nil {
		return fmt.Errorf("%w: engine rates head-to-head only", ErrUnsupportedMode)
	}

	updatedOne, updatedTwo, err := s.team.RateTeams(s.gather(one), s.gather(two), outcome)
	if err != nil {
		return err
	}
	s.scatter(one, updatedOne)
	s.scatter(two, updatedTwo)

	return nil
}

func (s *engineSim[R]) playMulti(teams [][]int, ranks []skill.Rank) error {
	if s.multi == nil {
		return fmt.Errorf("%w: engine rates head-to-head only", ErrUnsupportedMode)
	}

	ranked := make([]skill.RankedTeam[R], len(teams))
	for i, indices := range teams {
		ranked[i] = skill.RankedTeam[R]{Players: s.gather(indices), Rank: ranks[i]}
	}

	updated, err := s.multi.RateMultiTeam(ranked)
	if err != nil {
		return err
	}
	for i, indices := range teams {
		s.scatter(indices, updated[i])
	}

	return nil
}

func (s *engineSim[R]) finishSeason() error {
	if !s.batch {
		return nil
	}

	for i := range s.ratings {
		updated, err := s.period.RatePeriod(s.ratings[i], s.pending[i])
		if err != nil {
			return err
		}

		s.ratings[i] = updated
		s.pending[i] = s.pending[i][:0]
	}

	return nil
}

func (s *engineSim[R]) batched() bool {
	return s.batch
}

func (s *engineSim[R]) rating(i int) float64 {
	return s.ratings[i].Rating()
}

func (s *engineSim[R]) uncertainty(i int) (float64, bool) {
	return s.ratings[i].Uncertainty()
}

func (s *engineSim[R]) expectedPair(one, two int) (float64, float64, error) {
	return s.pair.ExpectedScore(s.ratings[one], s.ratings[two])
}

func (s *engineSim[R]) expectedTeams(one, two []int) (float64, float64, error) {
	if s.team == nil {
		return 0, 0, fmt.Errorf("%w: engine rates head-to-head only", ErrUnsupportedMode)
	}

	return s.team.ExpectedScoreTeams(s.gather(one), s.gather(two))
}

func (s *engineSim[R]) expectedMulti(teams [][]int) ([]float64, error) {
	if s.multi == nil {
		return nil, fmt.Errorf("%w: engine rates head-to-head only", ErrUnsupportedMode)
	}

	gathered := make([][]R, len(teams))
	for i, indices := range teams {
		gathered[i] = s.gather(indices)
	}

	return s.multi.ExpectedScoreMultiTeam(gathered)
}

func (s *engineSim[R]) gather(indices []int) []R {
	team := make([]R, len(indices))
	for i, j := range indices {
		team[i] = s.ratings[j]
	}

	return team
}

func (s *engineSim[R]) scatter(indices []int, updated []R) {
	for i, j := range indices {
		s.ratings[j] = updated[i]
	}
}
