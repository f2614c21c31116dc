// Package skill defines the shared vocabulary of the rating engines:
// match outcomes, free-for-all ranks, the generic rating value, the
// capability interfaces engines satisfy, and the error kinds engines
// report.
//
// The engines live in subpackages (elo, glicko, glicko2, trueskill,
// wenglin, mhth), each on its own native numeric scale. Every engine
// operation is a pure function of its inputs: ratings are immutable
// values, nothing is mutated in place, and no state survives a call,
// so concurrent use from any number of goroutines is safe without
// coordination.
package skill

// Rating is the read surface common to every engine's rating value.
//
// Uncertainty reports false for systems that do not track one (Elo).
// Converting between engines through this interface is a convenience
// and is lossy: native fields a target system lacks are dropped, and
// fields it has but the source lacks fall back to defaults.
type Rating interface {
	// Rating returns the skill estimate on the engine's native scale.
	Rating() float64

	// Uncertainty returns the spread of belief around the rating,
	// if the engine tracks one.
	Uncertainty() (float64, bool)
}

// Result pairs an opponent with the observed outcome from the rated
// player's perspective, for rating-period updates.
type Result[R Rating] struct {
	Opponent R
	Outcome  Outcome
}

// RankedTeam pairs a team's member ratings with its placement in a
// free-for-all match.
type RankedTeam[R Rating] struct {
	Players []R
	Rank    Rank
}

// RatingSystem rates head-to-head matches between two players.
type RatingSystem[R Rating] interface {
	// Rate returns both players' new ratings after a match with the
	// given outcome, seen from the first player's perspective.
	Rate(one, two R, outcome Outcome) (R, R, error)

	// ExpectedScore returns each player's win probability. The two
	// probabilities sum to one; a draw counts half toward each.
	ExpectedScore(one, two R) (float64, float64, error)
}

// RatingPeriodSystem folds a batch of results against one player into
// a single updated rating. Whether the batch is chained game by game
// or evaluated simultaneously is a property of the engine.
type RatingPeriodSystem[R Rating] interface {
	RatePeriod(player R, results []Result[R]) (R, error)

	// ExpectedScorePeriod returns the player's win probability against
	// each opponent in turn.
	ExpectedScorePeriod(player R, opponents []R) ([]float64, error)
}

// TeamRatingSystem rates matches between two whole teams.
type TeamRatingSystem[R Rating] interface {
	// RateTeams returns new ratings for every member of both teams,
	// order preserved, seen from the first team's perspective.
	RateTeams(one, two []R, outcome Outcome) ([]R, []R, error)

	ExpectedScoreTeams(one, two []R) (float64, float64, error)
}

// MultiTeamRatingSystem rates free-for-all matches between any number
// of ranked teams.
type MultiTeamRatingSystem[R Rating] interface {
	// RateMultiTeam returns new ratings for every team, in input
	// order, derived from the pairwise comparisons the ranks imply.
	RateMultiTeam(teams []RankedTeam[R]) ([][]R, error)

	// ExpectedScoreMultiTeam returns each team's win probability;
	// the probabilities sum to one.
	ExpectedScoreMultiTeam(teams [][]R) ([]float64, error)
}
