// Package glicko implements the first-generation deviation-tracking
// rating system: every player carries a rating and a deviation that
// shrinks with play and grows with inactivity. Rating periods are
// batched: the pre-period rating and deviation are used against every
// opponent and a single combined update is produced, which is what
// makes the deviation shrink correctly across several games in one
// period.
package glicko

import (
	"fmt"
	"math"

	"github.com/naomijub/MHTH/skill"
)

// Documented default constants.
const (
	// DefaultRatingValue is the baseline for an unrated player.
	DefaultRatingValue = 1500.0

	// DefaultDeviation is the baseline spread; it is also the ceiling
	// deviation decays toward during inactivity.
	DefaultDeviation = 350.0

	// DefaultC is the decay constant: the value that returns a
	// deviation of 50 to the ceiling over roughly 30 idle periods.
	DefaultC = 63.2

	deviationCeiling = 350.0
	q                = math.Ln10 / 400
	confidenceZ      = 1.96
)

// Rating is a player's rating and deviation.
type Rating struct {
	Value     float64 `json:"rating"`
	Deviation float64 `json:"deviation"`
}

// DefaultRating returns the baseline rating for an unrated player.
func DefaultRating() Rating {
	return Rating{Value: DefaultRatingValue, Deviation: DefaultDeviation}
}

// NewRating seeds a rating from optional values; nil arguments keep
// the defaults.
func NewRating(rating, uncertainty *float64) Rating {
	r := DefaultRating()
	if rating != nil {
		r.Value = *rating
	}
	if uncertainty != nil {
		r.Deviation = *uncertainty
	}
	return r
}

// Rating returns the skill estimate.
func (r Rating) Rating() float64 { return r.Value }

// Uncertainty returns the deviation.
func (r Rating) Uncertainty() (float64, bool) { return r.Deviation, true }

// Config holds the engine constants.
type Config struct {
	// C drives deviation growth during idle periods.
	C float64 `json:"c" koanf:"c"`
}

// DefaultConfig returns the documented default constants.
func DefaultConfig() Config {
	return Config{C: DefaultC}
}

// Glicko is a configured engine. It is immutable and safe for
// concurrent use.
type Glicko struct {
	cfg Config
}

var (
	_ skill.RatingSystem[Rating]       = (*Glicko)(nil)
	_ skill.RatingPeriodSystem[Rating] = (*Glicko)(nil)
)

// New validates the configuration and returns an engine.
func New(cfg Config) (*Glicko, error) {
	if !(cfg.C > 0) || math.IsInf(cfg.C, 0) {
		return nil, fmt.Errorf("%w: decay constant must be positive and finite, got %v", skill.ErrInvalidConfig, cfg.C)
	}
	return &Glicko{cfg: cfg}, nil
}

// Rate treats one game as a one-element rating period for each side.
func (g *Glicko) Rate(one, two Rating, outcome skill.Outcome) (Rating, Rating, error) {
	if err := validate(one, two); err != nil {
		return Rating{}, Rating{}, err
	}
	if !outcome.Valid() {
		return Rating{}, Rating{}, fmt.Errorf("%w: %s", skill.ErrInvalidOutcome, outcome)
	}
	newOne := updatePeriod(one, []gameResult{{opponent: two, score: outcome.Points()}})
	newTwo := updatePeriod(two, []gameResult{{opponent: one, score: outcome.Opposite().Points()}})
	return newOne, newTwo, nil
}

// ExpectedScore predicts a game between two uncertain players, so both
// deviations are pooled through the g weighting. The pair sums to one.
func (g *Glicko) ExpectedScore(one, two Rating) (float64, float64, error) {
	if err := validate(one, two); err != nil {
		return 0, 0, err
	}
	pooled := math.Sqrt(one.Deviation*one.Deviation + two.Deviation*two.Deviation)
	p := 1 / (1 + math.Pow(10, -gWeight(pooled)*(one.Value-two.Value)/400))
	return p, 1 - p, nil
}

// RatePeriod applies the batched period update: every comparison uses
// the player's pre-period rating and deviation, then one combined
// update is produced. An empty result list models an idle period and
// grows the deviation toward its ceiling.
func (g *Glicko) RatePeriod(player Rating, results []skill.Result[Rating]) (Rating, error) {
	if err := validate(player); err != nil {
		return Rating{}, err
	}
	if len(results) == 0 {
		return g.DecayDeviation(player)
	}
	games := make([]gameResult, len(results))
	for i, res := range results {
		if err := validate(res.Opponent); err != nil {
			return Rating{}, err
		}
		if !res.Outcome.Valid() {
			return Rating{}, fmt.Errorf("%w: %s", skill.ErrInvalidOutcome, res.Outcome)
		}
		games[i] = gameResult{opponent: res.Opponent, score: res.Outcome.Points()}
	}
	return updatePeriod(player, games), nil
}

// ExpectedScorePeriod returns the player's win probability against
// each opponent in turn, with both deviations pooled as in
// ExpectedScore.
func (g *Glicko) ExpectedScorePeriod(player Rating, opponents []Rating) ([]float64, error) {
	scores := make([]float64, len(opponents))
	for i, opponent := range opponents {
		p, _, err := g.ExpectedScore(player, opponent)
		if err != nil {
			return nil, err
		}
		scores[i] = p
	}
	return scores, nil
}

// DecayDeviation grows the deviation for one idle period, capped at
// the ceiling. Rating is unchanged.
func (g *Glicko) DecayDeviation(player Rating) (Rating, error) {
	if err := validate(player); err != nil {
		return Rating{}, err
	}
	grown := math.Sqrt(player.Deviation*player.Deviation + g.cfg.C*g.cfg.C)
	return Rating{
		Value:     player.Value,
		Deviation: math.Min(grown, deviationCeiling),
	}, nil
}

// ConfidenceInterval returns the 95% interval around the rating.
func (g *Glicko) ConfidenceInterval(player Rating) (low, high float64, err error) {
	if err := validate(player); err != nil {
		return 0, 0, err
	}
	return player.Value - confidenceZ*player.Deviation,
		player.Value + confidenceZ*player.Deviation,
		nil
}

type gameResult struct {
	opponent Rating
	score    float64
}

func updatePeriod(player Rating, games []gameResult) Rating {
	var dSqInv, acc float64
	for _, game := range games {
		gw := gWeight(game.opponent.Deviation)
		e := expectedPeriod(player.Value, game.opponent)
		dSqInv += q * q * gw * gw * e * (1 - e)
		acc += gw * (game.score - e)
	}
	denom := 1/(player.Deviation*player.Deviation) + dSqInv
	return Rating{
		Value:     player.Value + q/denom*acc,
		Deviation: math.Sqrt(1 / denom),
	}
}

// expectedPeriod is the within-update expectation: only the opponent's
// deviation weighs the comparison, per the period formulation.
func expectedPeriod(rating float64, opponent Rating) float64 {
	return 1 / (1 + math.Pow(10, -gWeight(opponent.Deviation)*(rating-opponent.Value)/400))
}

func gWeight(deviation float64) float64 {
	return 1 / math.Sqrt(1+3*q*q*deviation*deviation/(math.Pi*math.Pi))
}

func validate(ratings ...Rating) error {
	for _, r := range ratings {
		if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
			return fmt.Errorf("%w: rating must be finite, got %v", skill.ErrInvalidRating, r.Value)
		}
		if math.IsNaN(r.Deviation) || math.IsInf(r.Deviation, 0) || r.Deviation < 0 {
			return fmt.Errorf("%w: deviation must be non-negative and finite, got %v", skill.ErrInvalidRating, r.Deviation)
		}
	}
	return nil
}
