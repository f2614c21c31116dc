// Package glicko2 implements the second-generation deviation-tracking
// rating system. Ratings carry a deviation and a volatility; public
// 1500-scale values are mapped onto an internal scale before
// computation and back after. The per-period volatility is the root of
// a monotone function found by a bracketing root-finder with a bounded
// iteration count; exhausting the bound is reported as a convergence
// failure, never a panic.
package glicko2

import (
	"fmt"
	"math"

	"github.com/naomijub/MHTH/skill"
)

// Documented default constants.
const (
	// DefaultRatingValue is the baseline for an unrated player.
	DefaultRatingValue = 1500.0

	// DefaultDeviation is the baseline spread of belief.
	DefaultDeviation = 350.0

	// DefaultVolatility is the baseline rate at which the deviation
	// itself is expected to move.
	DefaultVolatility = 0.06

	// DefaultTau constrains volatility change per period. Smaller
	// values suit games decided by skill more than upsets.
	DefaultTau = 0.5

	// DefaultConvergenceTolerance bounds the volatility root search.
	DefaultConvergenceTolerance = 1e-6

	// internalScale converts between the public 1500-centered scale
	// and the internal one.
	internalScale = 173.7178
	centerValue   = 1500.0

	maxSolverIterations = 100
	confidenceZ         = 1.96
)

// Rating is a player's rating, deviation and volatility.
type Rating struct {
	Value      float64 `json:"rating"`
	Deviation  float64 `json:"deviation"`
	Volatility float64 `json:"volatility"`
}

// DefaultRating returns the baseline rating for an unrated player.
func DefaultRating() Rating {
	return Rating{
		Value:      DefaultRatingValue,
		Deviation:  DefaultDeviation,
		Volatility: DefaultVolatility,
	}
}

// NewRating seeds a rating from optional values; nil arguments keep
// the defaults. Volatility always starts at its default.
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
	// Tau is the system constant constraining volatility change.
	Tau float64 `json:"tau" koanf:"tau"`

	// ConvergenceTolerance ends the volatility root search.
	ConvergenceTolerance float64 `json:"convergence_tolerance" koanf:"convergence_tolerance"`
}

// DefaultConfig returns the documented default constants.
func DefaultConfig() Config {
	return Config{
		Tau:                  DefaultTau,
		ConvergenceTolerance: DefaultConvergenceTolerance,
	}
}

// Glicko2 is a configured engine. It is immutable and safe for
// concurrent use.
type Glicko2 struct {
	cfg Config
}

var (
	_ skill.RatingSystem[Rating]       = (*Glicko2)(nil)
	_ skill.RatingPeriodSystem[Rating] = (*Glicko2)(nil)
)

// New validates the configuration and returns an engine.
func New(cfg Config) (*Glicko2, error) {
	if !(cfg.Tau > 0) || math.IsInf(cfg.Tau, 0) {
		return nil, fmt.Errorf("%w: tau must be positive and finite, got %v", skill.ErrInvalidConfig, cfg.Tau)
	}
	if !(cfg.ConvergenceTolerance > 0) || math.IsInf(cfg.ConvergenceTolerance, 0) {
		return nil, fmt.Errorf("%w: convergence tolerance must be positive and finite, got %v",
			skill.ErrInvalidConfig, cfg.ConvergenceTolerance)
	}
	return &Glicko2{cfg: cfg}, nil
}

// Rate treats one game as a one-element rating period for each side.
func (g *Glicko2) Rate(one, two Rating, outcome skill.Outcome) (Rating, Rating, error) {
	if err := validate(one, two); err != nil {
		return Rating{}, Rating{}, err
	}
	if !outcome.Valid() {
		return Rating{}, Rating{}, fmt.Errorf("%w: %s", skill.ErrInvalidOutcome, outcome)
	}
	newOne, err := g.updatePeriod(one, []gameResult{{opponent: two, score: outcome.Points()}})
	if err != nil {
		return Rating{}, Rating{}, err
	}
	newTwo, err := g.updatePeriod(two, []gameResult{{opponent: one, score: outcome.Opposite().Points()}})
	if err != nil {
		return Rating{}, Rating{}, err
	}
	return newOne, newTwo, nil
}

// ExpectedScore predicts a game between two uncertain players with
// both deviations pooled on the internal scale. The pair sums to one.
func (g *Glicko2) ExpectedScore(one, two Rating) (float64, float64, error) {
	if err := validate(one, two); err != nil {
		return 0, 0, err
	}
	muOne, phiOne := toInternal(one)
	muTwo, phiTwo := toInternal(two)
	pooled := math.Sqrt(phiOne*phiOne + phiTwo*phiTwo)
	p := 1 / (1 + math.Exp(-gWeight(pooled)*(muOne-muTwo)))
	return p, 1 - p, nil
}

// RatePeriod applies the batched period update on the internal scale:
// every comparison uses the player's pre-period values, the volatility
// is re-solved, and one combined update is produced. An empty result
// list models an idle period and grows the deviation.
func (g *Glicko2) RatePeriod(player Rating, results []skill.Result[Rating]) (Rating, error) {
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
	return g.updatePeriod(player, games)
}

// ExpectedScorePeriod returns the player's win probability against
// each opponent in turn, deviations pooled as in ExpectedScore.
func (g *Glicko2) ExpectedScorePeriod(player Rating, opponents []Rating) ([]float64, error) {
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

// DecayDeviation grows the deviation for one idle period by folding
// the volatility into it. Rating and volatility are unchanged.
func (g *Glicko2) DecayDeviation(player Rating) (Rating, error) {
	if err := validate(player); err != nil {
		return Rating{}, err
	}
	_, phi := toInternal(player)
	phiStar := math.Sqrt(phi*phi + player.Volatility*player.Volatility)
	return Rating{
		Value:      player.Value,
		Deviation:  phiStar * internalScale,
		Volatility: player.Volatility,
	}, nil
}

// ConfidenceInterval returns the 95% interval around the rating.
func (g *Glicko2) ConfidenceInterval(player Rating) (low, high float64, err error) {
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

func (g *Glicko2) updatePeriod(player Rating, games []gameResult) (Rating, error) {
	mu, phi := toInternal(player)

	var vInv, acc float64
	for _, game := range games {
		muJ, phiJ := toInternal(game.opponent)
		gw := gWeight(phiJ)
		e := 1 / (1 + math.Exp(-gw*(mu-muJ)))
		vInv += gw * gw * e * (1 - e)
		acc += gw * (game.score - e)
	}
	v := 1 / vInv
	delta := v * acc

	volatility, err := solveVolatility(delta*delta, phi*phi, v, player.Volatility,
		g.cfg.Tau, g.cfg.ConvergenceTolerance, maxSolverIterations)
	if err != nil {
		return Rating{}, err
	}

	phiStar := math.Sqrt(phi*phi + volatility*volatility)
	phiNew := 1 / math.Sqrt(1/(phiStar*phiStar)+1/v)
	muNew := mu + phiNew*phiNew*acc

	return Rating{
		Value:      muNew*internalScale + centerValue,
		Deviation:  phiNew * internalScale,
		Volatility: volatility,
	}, nil
}

func toInternal(r Rating) (mu, phi float64) {
	return (r.Value - centerValue) / internalScale, r.Deviation / internalScale
}

func gWeight(phi float64) float64 {
	return 1 / math.Sqrt(1+3*phi*phi/(math.Pi*math.Pi))
}

func validate(ratings ...Rating) error {
	for _, r := range ratings {
		if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
			return fmt.Errorf("%w: rating must be finite, got %v", skill.ErrInvalidRating, r.Value)
		}
		if math.IsNaN(r.Deviation) || math.IsInf(r.Deviation, 0) || r.Deviation < 0 {
			return fmt.Errorf("%w: deviation must be non-negative and finite, got %v", skill.ErrInvalidRating, r.Deviation)
		}
		if !(r.Volatility > 0) || math.IsInf(r.Volatility, 0) {
			return fmt.Errorf("%w: volatility must be positive and finite, got %v", skill.ErrInvalidRating, r.Volatility)
		}
	}
	return nil
}
