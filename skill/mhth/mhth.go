// Package mhth implements the MHTH rating system: a logistic Bayesian
// (Bradley-Terry) engine for player-versus-environment squad missions.
// Every rating carries a loadout modifier that shifts the effective
// skill used in comparisons without itself being learned, so gear can
// make a mission winnable while the underlying skill estimate stays
// honest. Against opposition far below a squad's effective skill the
// win probability saturates and ratings stop moving, which keeps
// grinding trivial missions worthless.
package mhth

import (
	"fmt"
	"math"

	"github.com/naomijub/MHTH/skill"
	"github.com/naomijub/MHTH/skill/trueskill"
	"github.com/naomijub/MHTH/skill/wenglin"
)

// Documented default constants.
const (
	// DefaultMu is the baseline skill estimate.
	DefaultMu = 25.0

	// DefaultLoadout is the neutral gear modifier.
	DefaultLoadout = 1.0

	// DefaultSigma is the baseline belief spread.
	DefaultSigma = 25.0 / 3.0

	// DefaultBeta is the performance variance of a single mission.
	DefaultBeta = 25.0 / 6.0

	// DefaultUncertaintyTolerance floors the posterior variance so a
	// belief never collapses to zero.
	DefaultUncertaintyTolerance = 1e-6
)

// Rating is a participant's skill belief plus its loadout modifier.
// The modifier joins Mu in every comparison but is never itself
// updated; Mu alone is the learned quantity.
type Rating struct {
	Mu      float64 `json:"mu"`
	Loadout float64 `json:"loadout"`
	Sigma   float64 `json:"sigma"`
}

// DefaultRating returns the baseline rating for an unrated participant.
func DefaultRating() Rating {
	return Rating{Mu: DefaultMu, Loadout: DefaultLoadout, Sigma: DefaultSigma}
}

// NewRating seeds a rating from optional values; nil arguments keep the
// defaults. The loadout starts neutral; use WithLoadout to change it.
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

// FromTrueSkill converts a Gaussian-engine rating with a neutral
// loadout; the two systems share the 25-centered scale.
func FromTrueSkill(r trueskill.Rating) Rating {
	return Rating{Mu: r.Mu, Loadout: DefaultLoadout, Sigma: r.Sigma}
}

// FromWengLin converts a plain logistic-engine rating with a neutral
// loadout.
func FromWengLin(r wenglin.Rating) Rating {
	return Rating{Mu: r.Mu, Loadout: DefaultLoadout, Sigma: r.Sigma}
}

// WithLoadout returns a copy of the rating with the loadout modifier
// replaced.
func (r Rating) WithLoadout(loadout float64) Rating {
	r.Loadout = loadout
	return r
}

// Rating returns the effective skill, the learned estimate plus the
// loadout modifier.
func (r Rating) Rating() float64 { return r.Mu + r.Loadout }

// Base returns the learned skill estimate without the loadout.
func (r Rating) Base() float64 { return r.Mu }

// Uncertainty returns the belief spread.
func (r Rating) Uncertainty() (float64, bool) { return r.Sigma, true }

// Config holds the engine constants.
type Config struct {
	// Beta is the performance variance of a single mission.
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

// MHTH is a configured engine. It is immutable and safe for concurrent
// use.
type MHTH struct {
	cfg Config
}

var (
	_ skill.RatingSystem[Rating]          = (*MHTH)(nil)
	_ skill.RatingPeriodSystem[Rating]    = (*MHTH)(nil)
	_ skill.TeamRatingSystem[Rating]      = (*MHTH)(nil)
	_ skill.MultiTeamRatingSystem[Rating] = (*MHTH)(nil)
)

// New validates the configuration and returns an engine.
func New(cfg Config) (*MHTH, error) {
	if !(cfg.Beta > 0) || math.IsInf(cfg.Beta, 0) {
		return nil, fmt.Errorf("%w: beta must be positive and finite, got %v", skill.ErrInvalidConfig, cfg.Beta)
	}
	if !(cfg.UncertaintyTolerance > 0) || math.IsInf(cfg.UncertaintyTolerance, 0) {
		return nil, fmt.Errorf("%w: uncertainty tolerance must be positive and finite, got %v",
			skill.ErrInvalidConfig, cfg.UncertaintyTolerance)
	}
	return &MHTH{cfg: cfg}, nil
}

// Rate returns new ratings for a player and the environment they faced.
// The comparison pits the player's effective skill (Mu plus loadout)
// against the environment's bare Mu: a better loadout raises the
// player's expected score and so shrinks the reward for beating easy
// opposition. The environment's loadout joins only its own update.
// Loadouts themselves are returned unchanged.
func (m *MHTH) Rate(player, env Rating, outcome skill.Outcome) (Rating, Rating, error) {
	if err := validate(player, env); err != nil {
		return Rating{}, Rating{}, err
	}
	if !outcome.Valid() {
		return Rating{}, Rating{}, fmt.Errorf("%w: %s", skill.ErrInvalidOutcome, outcome)
	}

	c := math.Sqrt(2*m.cfg.Beta*m.cfg.Beta + player.Sigma*player.Sigma + env.Sigma*env.Sigma)
	pPlayer := pValue(player.Mu+player.Loadout, env.Mu, c)
	pEnv := 1 - pPlayer
	points := outcome.Points()

	newPlayer := Rating{
		Mu:      (player.Mu + player.Loadout) + player.Sigma*player.Sigma/c*(points-pPlayer) - player.Loadout,
		Loadout: player.Loadout,
		Sigma:   shrink(player.Sigma, c, pPlayer, m.cfg.UncertaintyTolerance),
	}
	newEnv := Rating{
		Mu:      (env.Mu + env.Loadout) + env.Sigma*env.Sigma/c*((1-points)-pEnv) - env.Loadout,
		Loadout: env.Loadout,
		Sigma:   shrink(env.Sigma, c, pEnv, m.cfg.UncertaintyTolerance),
	}
	return newPlayer, newEnv, nil
}

// ExpectedScore returns each side's win probability from effective
// skill (Mu plus loadout on both sides); the pair sums to one.
func (m *MHTH) ExpectedScore(one, two Rating) (float64, float64, error) {
	if err := validate(one, two); err != nil {
		return 0, 0, err
	}
	c := math.Sqrt(2*m.cfg.Beta*m.cfg.Beta + one.Sigma*one.Sigma + two.Sigma*two.Sigma)
	p := pValue(one.Mu+one.Loadout, two.Mu+two.Loadout, c)
	return p, 1 - p, nil
}

// RatePeriod chains a sequence of missions. The player's loadout is
// folded into the working rating before the first mission and stays
// folded into the returned Mu; within each comparison the loadout is
// applied again on top, and opponents compare at their own effective
// skill. A mission sequence against opposition the squad vastly
// outclasses therefore converges instead of inflating.
func (m *MHTH) RatePeriod(player Rating, results []skill.Result[Rating]) (Rating, error) {
	if err := validate(player); err != nil {
		return Rating{}, err
	}

	mu := player.Mu + player.Loadout
	sigma := player.Sigma
	for _, res := range results {
		if err := validate(res.Opponent); err != nil {
			return Rating{}, err
		}
		if !res.Outcome.Valid() {
			return Rating{}, fmt.Errorf("%w: %s", skill.ErrInvalidOutcome, res.Outcome)
		}

		c := math.Sqrt(2*m.cfg.Beta*m.cfg.Beta + sigma*sigma + res.Opponent.Sigma*res.Opponent.Sigma)
		p := pValue(mu+player.Loadout, res.Opponent.Mu+res.Opponent.Loadout, c)
		points := res.Outcome.Points()

		mu = (mu + player.Loadout) + sigma*sigma/c*(points-p) - player.Loadout
		sigma = shrink(sigma, c, p, m.cfg.UncertaintyTolerance)
	}
	return Rating{Mu: mu, Loadout: player.Loadout, Sigma: sigma}, nil
}

// ExpectedScorePeriod returns the player's win probability against each
// opponent in turn.
func (m *MHTH) ExpectedScorePeriod(player Rating, opponents []Rating) ([]float64, error) {
	scores := make([]float64, len(opponents))
	for i, opponent := range opponents {
		p, _, err := m.ExpectedScore(player, opponent)
		if err != nil {
			return nil, err
		}
		scores[i] = p
	}
	return scores, nil
}

// RateTeams returns new ratings for a squad and the environment side it
// faced. Each side's performance is the sum of member effective skills,
// so the comparison is symmetric here, unlike Rate. An environment side
// may be a single boss or many entities.
func (m *MHTH) RateTeams(team, env []Rating, outcome skill.Outcome) ([]Rating, []Rating, error) {
	if err := validateTeams(team, env); err != nil {
		return nil, nil, err
	}
	if !outcome.Valid() {
		return nil, nil, fmt.Errorf("%w: %s", skill.ErrInvalidOutcome, outcome)
	}

	varTeam, varEnv := sumVariance(team), sumVariance(env)
	c := math.Sqrt(2*m.cfg.Beta*m.cfg.Beta + varTeam + varEnv)
	pTeam := pValue(sumEffective(team), sumEffective(env), c)
	pEnv := 1 - pTeam
	points := outcome.Points()

	newTeam := m.updateTeam(team, varTeam, c, pTeam, points)
	newEnv := m.updateTeam(env, varEnv, c, pEnv, 1-points)
	return newTeam, newEnv, nil
}

// ExpectedScoreTeams returns each side's win probability from summed
// effective skills; the pair sums to one.
func (m *MHTH) ExpectedScoreTeams(one, two []Rating) (float64, float64, error) {
	if err := validateTeams(one, two); err != nil {
		return 0, 0, err
	}
	c := math.Sqrt(2*m.cfg.Beta*m.cfg.Beta + sumVariance(one) + sumVariance(two))
	p := pValue(sumEffective(one), sumEffective(two), c)
	return p, 1 - p, nil
}

// RateMultiTeam rates squads and environment sides in one ranked field:
// every pair of distinct teams is compared at summed effective skill,
// the pair's outcome derived from the two ranks, and the corrections
// accumulated per team before distribution to members. A single team is
// returned unchanged.
func (m *MHTH) RateMultiTeam(teams []skill.RankedTeam[Rating]) ([][]Rating, error) {
	if err := validateRanked(teams); err != nil {
		return nil, err
	}
	if len(teams) == 1 {
		return [][]Rating{copyTeam(teams[0].Players)}, nil
	}

	result := make([][]Rating, len(teams))
	for i, team := range teams {
		effTeam := sumEffective(team.Players)
		varTeam := sumVariance(team.Players)

		var omega, delta float64
		for q, other := range teams {
			if q == i {
				continue
			}
			c := math.Sqrt(2*m.cfg.Beta*m.cfg.Beta + varTeam + sumVariance(other.Players))
			p := pValue(effTeam, sumEffective(other.Players), c)
			score := team.Rank.Versus(other.Rank).Points()

			gamma := math.Sqrt(varTeam) / c
			omega += varTeam / c * (score - p)
			delta += gamma * varTeam / (c * c) * p * (1 - p)
		}

		updated := make([]Rating, len(team.Players))
		for j, player := range team.Players {
			variance := player.Sigma * player.Sigma
			inner := math.Max(1-variance/varTeam*delta, m.cfg.UncertaintyTolerance)
			updated[j] = Rating{
				Mu:      (player.Mu + player.Loadout) + variance/varTeam*omega - player.Loadout,
				Loadout: player.Loadout,
				Sigma:   math.Sqrt(variance * inner),
			}
		}
		result[i] = updated
	}
	return result, nil
}

// ExpectedScoreMultiTeam returns each team's win probability as the
// softmax of summed effective skills over a c pooling every team's
// variance; the probabilities sum to one.
func (m *MHTH) ExpectedScoreMultiTeam(teams [][]Rating) ([]float64, error) {
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
	c := math.Sqrt(2*m.cfg.Beta*m.cfg.Beta + pooled)

	exps := make([]float64, len(teams))
	var total float64
	for i, team := range teams {
		exps[i] = math.Exp(sumEffective(team) / c)
		total += exps[i]
	}
	for i := range exps {
		exps[i] /= total
	}
	return exps, nil
}

func (m *MHTH) updateTeam(team []Rating, varTeam, c, p, score float64) []Rating {
	gamma := math.Sqrt(varTeam) / c
	omega := varTeam / c * (score - p)
	delta := gamma * varTeam / (c * c) * p * (1 - p)

	updated := make([]Rating, len(team))
	for i, player := range team {
		variance := player.Sigma * player.Sigma
		inner := math.Max(1-variance/varTeam*delta, m.cfg.UncertaintyTolerance)
		updated[i] = Rating{
			Mu:      (player.Mu + player.Loadout) + variance/varTeam*omega - player.Loadout,
			Loadout: player.Loadout,
			Sigma:   math.Sqrt(variance * inner),
		}
	}
	return updated
}

// pValue is the Bradley-Terry comparison: the probability that the
// first effective rating beats the second given combined spread c.
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

func sumEffective(team []Rating) float64 {
	var sum float64
	for _, r := range team {
		sum += r.Mu + r.Loadout
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
		if math.IsNaN(r.Loadout) || math.IsInf(r.Loadout, 0) {
			return fmt.Errorf("%w: loadout must be finite, got %v", skill.ErrInvalidRating, r.Loadout)
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
