// Package wenglin implements the logistic Bayesian team rating system
// (Bradley-Terry model): the same contract as the Gaussian team engine
// but with a logistic comparison of rating difference scaled by the
// combined uncertainty, avoiding Gaussian truncation integrals. That
// makes large free-for-all fields cheap to rate.
package wenglin

import (
	"fmt"
	"math"

	"github.com/naomijub/MHTH/skill"
	"github.com/naomijub/MHTH/skill/trueskill"
)

// Documented default constants.
const (
	// DefaultMu is the baseline skill estimate.
	DefaultMu = 25.0

	// DefaultSigma is the baseline belief spread.
	DefaultSigma = 25.0 / 3.0

	// DefaultBeta is the performance variance of a single game.
	DefaultBeta = 25.0 / 6.0

	// DefaultUncertaintyTolerance floors the posterior variance so a
	// belief never collapses to zero.
	DefaultUncertaintyTolerance = 1e-6
)

// Rating is a player's skill belief.
type Rating struct {
	Mu    float64 `json:"mu"`
	Sigma float64 `json:"sigma"`
}

// DefaultRating returns the baseline rating for an unrated player.
func DefaultRating() Rating {
	return Rating{Mu: DefaultMu, Sigma: DefaultSigma}
}

// NewRating seeds a rating from optional values; nil arguments keep
// the defaults.
func NewRating(rating, uncertainty *float64) Rating {
	r := DefaultRating()
	if rating != nil {
		r.Mu = *rating
	}
	if uncertainty != nil {
		r.Sigma = *uncertainty
	}
	return r
}

// FromTrueSkill converts a Gaussian-engine rating; the two systems
// share the 25-centered scale.
func FromTrueSkill(r trueskill.Rating) Rating {
	return Rating{Mu: r.Mu, Sigma: r.Sigma}
}

// Rating returns the skill estimate.
func (r Rating) Rating() float64 { return r.Mu }

// Uncertainty returns the belief spread.
func (r Rating) Uncertainty() (float64, bool) { return r.Sigma, true }

// Config holds the engine constants.
type Config struct {
	// Beta is the performance variance of a single game.
	Beta float64 `json:"beta" koanf:"beta"`

	// UncertaintyTolerance floors the posterior variance.
	UncertaintyTolerance float64 `json:"uncertainty_tolerance" koanf:"uncertainty_tolerance"`
}

// DefaultConfig returns the documented default constants.
func DefaultConfig() Config {
	return Config{
		Beta:                 DefaultBeta,
		UncertaintyTolerance: DefaultUncertaintyTolerance,
	}
}

// WengLin is a configured engine. It is immutable and safe for
// concurrent use.
type WengLin struct {
	cfg Config
}

var (
	_ skill.RatingSystem[Rating]          = (*WengLin)(nil)
	_ skill.RatingPeriodSystem[Rating]    = (*WengLin)(nil)
	_ skill.TeamRatingSystem[Rating]      = (*WengLin)(nil)
	_ skill.MultiTeamRatingSystem[Rating] = (*WengLin)(nil)
)

// New validates the configuration and returns an engine.
func New(cfg Config) (*WengLin, error) {
	if err := validateConfig(cfg.Beta, cfg.UncertaintyTolerance); err != nil {
		return nil, err
	}
	return &WengLin{cfg: cfg}, nil
}

func validateConfig(beta, tolerance float64) error {
	if !(beta > 0) || math.IsInf(beta, 0) {
		return fmt.Errorf("%w: beta must be positive and finite, got %v", skill.ErrInvalidConfig, beta)
	}
	if !(tolerance > 0) || math.IsInf(tolerance, 0) {
		return fmt.Errorf("%w: uncertainty tolerance must be positive and finite, got %v",
			skill.ErrInvalidConfig, tolerance)
	}
	return nil
}

// Rate returns both players' new ratings after one match.
func (w *WengLin) Rate(one, two Rating, outcome skill.Outcome) (Rating, Rating, error) {
	if err := validate(one, two); err != nil {
		return Rating{}, Rating{}, err
	}
	if !outcome.Valid() {
		return Rating{}, Rating{}, fmt.Errorf("%w: %s", skill.ErrInvalidOutcome, outcome)
	}

	c := math.Sqrt(2*w.cfg.Beta*w.cfg.Beta + one.Sigma*one.Sigma + two.Sigma*two.Sigma)
	pOne := pValue(one.Mu, two.Mu, c)
	pTwo := 1 - pOne
	points := outcome.Points()

	newOne := Rating{
		Mu:    one.Mu + one.Sigma*one.Sigma/c*(points-pOne),
		Sigma: shrink(one.Sigma, c, pOne, w.cfg.UncertaintyTolerance),
	}
	newTwo := Rating{
		Mu:    two.Mu + two.Sigma*two.Sigma/c*((1-points)-pTwo),
		Sigma: shrink(two.Sigma, c, pTwo, w.cfg.UncertaintyTolerance),
	}
	return newOne, newTwo, nil
}

// ExpectedScore returns each player's win probability; the pair sums
// to one.
func (w *WengLin) ExpectedScore(one, two Rating) (float64, float64, error) {
	if err := validate(one, two); err != nil {
		return 0, 0, err
	}
	c := math.Sqrt(2*w.cfg.Beta*w.cfg.Beta + one.Sigma*one.Sigma + two.Sigma*two.Sigma)
	p := pValue(one.Mu, two.Mu, c)
	return p, 1 - p, nil
}

// RatePeriod chains the results in order, each game rated from the
// rating the previous one produced. An empty result list returns the
// player unchanged.
func (w *WengLin) RatePeriod(player Rating, results []skill.Result[Rating]) (Rating, error) {
	if err := validate(player); err != nil {
		return Rating{}, err
	}
	current := player
	for _, res := range results {
		updated, _, err := w.Rate(current, res.Opponent, res.Outcome)
		if err != nil {
			return Rating{}, err
		}
		current = updated
	}
	return current, nil
}

// ExpectedScorePeriod returns the player's win probability against
// each opponent in turn.
func (w *WengLin) ExpectedScorePeriod(player Rating, opponents []Rating) ([]float64, error) {
	scores := make([]float64, len(opponents))
	for i, opponent := range opponents {
		p, _, err := w.ExpectedScore(player, opponent)
		if err != nil {
			return nil, err
		}
		scores[i] = p
	}
	return scores, nil
}

// RateTeams returns new ratings for every member of both teams. Team
// performance is the sum of member ratings; each member's share of the
// team correction is weighted by their own variance.
func (w *WengLin) RateTeams(one, two []Rating, outcome skill.Outcome) ([]Rating, []Rating, error) {
	if err := validateTeams(one, two); err != nil {
		return nil, nil, err
	}
	if !outcome.Valid() {
		return nil, nil, fmt.Errorf("%w: %s", skill.ErrInvalidOutcome, outcome)
	}

	varOne, varTwo := sumVariance(one), sumVariance(two)
	c := math.Sqrt(2*w.cfg.Beta*w.cfg.Beta + varOne + varTwo)
	pOne := pValue(sumMu(one), sumMu(two), c)
	pTwo := 1 - pOne
	points := outcome.Points()

	newOne := w.updateTeam(one, varOne, c, pOne, points)
	newTwo := w.updateTeam(two, varTwo, c, pTwo, 1-points)
	return newOne, newTwo, nil
}

// ExpectedScoreTeams returns each team's win probability; the pair
// sums to one.
func (w *WengLin) ExpectedScoreTeams(one, two []Rating) (float64, float64, error) {
	if err := validateTeams(one, two); err != nil {
		return 0, 0, err
	}
	c := math.Sqrt(2*w.cfg.Beta*w.cfg.Beta + sumVariance(one) + sumVariance(two))
	p := pValue(sumMu(one), sumMu(two), c)
	return p, 1 - p, nil
}

// RateMultiTeam rates a free-for-all of ranked teams: every pair of
// distinct teams is compared, the pair's outcome derived from the two
// ranks, and the logistic corrections accumulated per team before
// distribution to players. A single team is returned unchanged.
func (w *WengLin) RateMultiTeam(teams []skill.RankedTeam[Rating]) ([][]Rating, error) {
	if err := validateRanked(teams); err != nil {
		return nil, err
	}
	if len(teams) == 1 {
		return [][]Rating{copyTeam(teams[0].Players)}, nil
	}

	result := make([][]Rating, len(teams))
	for i, team := range teams {
		muTeam := sumMu(team.Players)
		varTeam := sumVariance(team.Players)

		var omega, delta float64
		for q, other := range teams {
			if q == i {
				continue
			}
			c := math.Sqrt(2*w.cfg.Beta*w.cfg.Beta + varTeam + sumVariance(other.Players))
			p := pValue(muTeam, sumMu(other.Players), c)
			score := team.Rank.Versus(other.Rank).Points()

			gamma := math.Sqrt(varTeam) / c
			omega += varTeam / c * (score - p)
			delta += gamma * varTeam / (c * c) * p * (1 - p)
		}

		updated := make([]Rating, len(team.Players))
		for j, player := range team.Players {
			variance := player.Sigma * player.Sigma
			inner := math.Max(1-variance/varTeam*delta, w.cfg.UncertaintyTolerance)
			updated[j] = Rating{
				Mu:    player.Mu + variance/varTeam*omega,
				Sigma: math.Sqrt(variance * inner),
			}
		}
		result[i] = updated
	}
	return result, nil
}

// ExpectedScoreMultiTeam returns each team's win probability as the
// softmax of team ratings over a c pooling every team's variance; the
// probabilities sum to one.
func (w *WengLin) ExpectedScoreMultiTeam(teams [][]Rating) ([]float64, error) {
	if len(teams) == 0 {
		return nil, fmt.Errorf("%w: no teams", skill.ErrEmptyGroup)
	}
	var pooled float64
	for _, team := range teams {
		if err := validateTeam(team); err != nil {
			return nil, err
		}
		pooled += sumVariance(team)
	}
	c := math.Sqrt(2*w.cfg.Beta*w.cfg.Beta + pooled)

	exps := make([]float64, len(teams))
	var total float64
	for i, team := range teams {
		exps[i] = math.Exp(sumMu(team) / c)
		total += exps[i]
	}
	for i := range exps {
		exps[i] /= total
	}
	return exps, nil
}

func (w *WengLin) updateTeam(team []Rating, varTeam, c, p, score float64) []Rating {
	gamma := math.Sqrt(varTeam) / c
	omega := varTeam / c * (score - p)
	delta := gamma * varTeam / (c * c) * p * (1 - p)

	updated := make([]Rating, len(team))
	for i, player := range team {
		variance := player.Sigma * player.Sigma
		inner := math.Max(1-variance/varTeam*delta, w.cfg.UncertaintyTolerance)
		updated[i] = Rating{
			Mu:    player.Mu + variance/varTeam*omega,
			Sigma: math.Sqrt(variance * inner),
		}
	}
	return updated
}

// pValue is the Bradley-Terry comparison: the probability that the
// first rating beats the second given combined spread c.
func pValue(one, two, c float64) float64 {
	e1 := math.Exp(one / c)
	e2 := math.Exp(two / c)
	return e1 / (e1 + e2)
}

// shrink applies the pairwise uncertainty update, floored by the
// tolerance.
func shrink(sigma, c, p, tolerance float64) float64 {
	eta := math.Pow(sigma/c, 3) * p * (1 - p)
	return math.Sqrt(sigma * sigma * math.Max(1-eta, tolerance))
}

func sumMu(team []Rating) float64 {
	var sum float64
	for _, r := range team {
		sum += r.Mu
	}
	return sum
}

func sumVariance(team []Rating) float64 {
	var sum float64
	for _, r := range team {
		sum += r.Sigma * r.Sigma
	}
	return sum
}

func copyTeam(team []Rating) []Rating {
	out := make([]Rating, len(team))
	copy(out, team)
	return out
}

func validate(ratings ...Rating) error {
	for _, r := range ratings {
		if math.IsNaN(r.Mu) || math.IsInf(r.Mu, 0) {
			return fmt.Errorf("%w: mu must be finite, got %v", skill.ErrInvalidRating, r.Mu)
		}
		if math.IsNaN(r.Sigma) || math.IsInf(r.Sigma, 0) || r.Sigma < 0 {
			return fmt.Errorf("%w: sigma must be non-negative and finite, got %v", skill.ErrInvalidRating, r.Sigma)
		}
	}
	return nil
}

func validateTeam(team []Rating) error {
	if len(team) == 0 {
		return fmt.Errorf("%w: team has no members", skill.ErrEmptyGroup)
	}
	return validate(team...)
}

func validateTeams(one, two []Rating) error {
	if err := validateTeam(one); err != nil {
		return err
	}
	return validateTeam(two)
}

func validateRanked(teams []skill.RankedTeam[Rating]) error {
	if len(teams) == 0 {
		return fmt.Errorf("%w: no teams", skill.ErrEmptyGroup)
	}
	for _, team := range teams {
		if !team.Rank.Valid() {
			return fmt.Errorf("%w: rank must be positive, got %d", skill.ErrInvalidRank, team.Rank)
		}
		if err := validateTeam(team.Players); err != nil {
			return err
		}
	}
	return nil
}
