// Package elo implements the classical pairwise rating system: a
// logistic expected score on a 400-point scale and a fixed K-factor
// update. It tracks no uncertainty, so it offers only the pairwise and
// rating-period capabilities.
package elo

import (
	"fmt"
	"math"

	"github.com/naomijub/MHTH/skill"
)

// Documented default constants.
const (
	// DefaultRatingValue is the baseline for an unrated player.
	DefaultRatingValue = 1000.0

	// DefaultK bounds how far one game can move a rating.
	DefaultK = 32.0

	scale = 400.0
	base  = 10.0
)

// Rating is a player's Elo rating.
type Rating struct {
	Value float64 `json:"rating"`
}

// DefaultRating returns the baseline rating for an unrated player.
func DefaultRating() Rating {
	return Rating{Value: DefaultRatingValue}
}

// NewRating seeds a rating from optional values. A nil rating keeps the
// default. Elo tracks no uncertainty, so that argument is ignored.
func NewRating(rating, _ *float64) Rating {
	r := DefaultRating()
	if rating != nil {
		r.Value = *rating
	}
	return r
}

// Rating returns the skill estimate.
func (r Rating) Rating() float64 { return r.Value }

// Uncertainty reports false: this system does not track one.
func (r Rating) Uncertainty() (float64, bool) { return 0, false }

// Config holds the engine constants.
type Config struct {
	// K is the K-factor applied to every game.
	K float64 `json:"k" koanf:"k"`
}

// DefaultConfig returns the documented default constants.
func DefaultConfig() Config {
	return Config{K: DefaultK}
}

// Elo is a configured engine. It is immutable and safe for concurrent
// use.
type Elo struct {
	cfg Config
}

var (
	_ skill.RatingSystem[Rating]       = (*Elo)(nil)
	_ skill.RatingPeriodSystem[Rating] = (*Elo)(nil)
)

// New validates the configuration and returns an engine.
func New(cfg Config) (*Elo, error) {
	if !(cfg.K > 0) || math.IsInf(cfg.K, 0) {
		return nil, fmt.Errorf("%w: k-factor must be positive and finite, got %v", skill.ErrInvalidConfig, cfg.K)
	}
	return &Elo{cfg: cfg}, nil
}

// Rate returns both players' new ratings after one game. With equal
// K-factors the two deltas cancel exactly.
func (e *Elo) Rate(one, two Rating, outcome skill.Outcome) (Rating, Rating, error) {
	if err := validate(one, two); err != nil {
		return Rating{}, Rating{}, err
	}
	if !outcome.Valid() {
		return Rating{}, Rating{}, fmt.Errorf("%w: %s", skill.ErrInvalidOutcome, outcome)
	}

	expectedOne, expectedTwo := expectedScore(one.Value, two.Value)
	points := outcome.Points()
	return Rating{Value: one.Value + e.cfg.K*(points-expectedOne)},
		Rating{Value: two.Value + e.cfg.K*((1-points)-expectedTwo)},
		nil
}

// ExpectedScore returns each player's win probability; the pair sums
// to one.
func (e *Elo) ExpectedScore(one, two Rating) (float64, float64, error) {
	if err := validate(one, two); err != nil {
		return 0, 0, err
	}
	expectedOne, expectedTwo := expectedScore(one.Value, two.Value)
	return expectedOne, expectedTwo, nil
}

// RatePeriod chains the results in order: each game is rated against
// the rating produced by the previous one, matching the classical
// treatment of a period as a sequence of independent games. An empty
// result list returns the player unchanged.
func (e *Elo) RatePeriod(player Rating, results []skill.Result[Rating]) (Rating, error) {
	if err := validate(player); err != nil {
		return Rating{}, err
	}
	current := player
	for _, res := range results {
		updated, _, err := e.Rate(current, res.Opponent, res.Outcome)
		if err != nil {
			return Rating{}, err
		}
		current = updated
	}
	return current, nil
}

// ExpectedScorePeriod returns the player's win probability against
// each opponent in turn, all from the player's current rating.
func (e *Elo) ExpectedScorePeriod(player Rating, opponents []Rating) ([]float64, error) {
	if err := validate(player); err != nil {
		return nil, err
	}
	scores := make([]float64, len(opponents))
	for i, opponent := range opponents {
		if err := validate(opponent); err != nil {
			return nil, err
		}
		scores[i], _ = expectedScore(player.Value, opponent.Value)
	}
	return scores, nil
}

func expectedScore(one, two float64) (float64, float64) {
	p := 1 / (1 + math.Pow(base, (two-one)/scale))
	return p, 1 - p
}

func validate(ratings ...Rating) error {
	for _, r := range ratings {
		if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
			return fmt.Errorf("%w: rating must be finite, got %v", skill.ErrInvalidRating, r.Value)
		}
	}
	return nil
}
