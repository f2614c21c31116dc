// Package trueskill implements the Gaussian team rating system: each
// participant is a Gaussian belief (Mu, Sigma), team performance is
// the sum of member performances, and updates apply truncated-Gaussian
// corrections derived from a configurable draw margin. Teams may be of
// any size and count; free-for-all matches take ranked teams with ties
// permitted.
package trueskill

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/naomijub/MHTH/skill"
)

// Documented default constants.
const (
	// DefaultMu is the baseline skill estimate.
	DefaultMu = 25.0

	// DefaultSigma is the baseline belief spread.
	DefaultSigma = 25.0 / 3.0

	// DefaultBeta is the performance variance of a single game.
	DefaultBeta = 25.0 / 6.0

	// DefaultDynamics keeps ratings adaptive by re-widening the belief
	// a little on every update.
	DefaultDynamics = 25.0 / 300.0

	// DefaultDrawProbability is the chance of a draw between equal
	// opponents.
	DefaultDrawProbability = 0.1

	// varianceFloor keeps the posterior variance positive when many
	// pairwise corrections stack up in large free-for-alls.
	varianceFloor = 1e-9
)

// Rating is a player's Gaussian skill belief.
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

// Rating returns the skill estimate.
func (r Rating) Rating() float64 { return r.Mu }

// Uncertainty returns the belief spread.
func (r Rating) Uncertainty() (float64, bool) { return r.Sigma, true }

// Config holds the engine constants.
type Config struct {
	// DrawProbability is the chance of a draw between equal opponents,
	// in [0, 1).
	DrawProbability float64 `json:"draw_probability" koanf:"draw_probability"`

	// Beta is the performance variance of a single game.
	Beta float64 `json:"beta" koanf:"beta"`

	// Dynamics re-widens the belief on every update.
	Dynamics float64 `json:"dynamics" koanf:"dynamics"`
}

// DefaultConfig returns the documented default constants.
func DefaultConfig() Config {
	return Config{
		DrawProbability: DefaultDrawProbability,
		Beta:            DefaultBeta,
		Dynamics:        DefaultDynamics,
	}
}

// TrueSkill is a configured engine. It is immutable and safe for
// concurrent use.
type TrueSkill struct {
	cfg Config
}

var (
	_ skill.RatingSystem[Rating]          = (*TrueSkill)(nil)
	_ skill.RatingPeriodSystem[Rating]    = (*TrueSkill)(nil)
	_ skill.TeamRatingSystem[Rating]      = (*TrueSkill)(nil)
	_ skill.MultiTeamRatingSystem[Rating] = (*TrueSkill)(nil)
)

// New validates the configuration and returns an engine.
func New(cfg Config) (*TrueSkill, error) {
	if !(cfg.Beta > 0) || math.IsInf(cfg.Beta, 0) {
		return nil, fmt.Errorf("%w: beta must be positive and finite, got %v", skill.ErrInvalidConfig, cfg.Beta)
	}
	if !(cfg.DrawProbability >= 0 && cfg.DrawProbability < 1) {
		return nil, fmt.Errorf("%w: draw probability must be in [0,1), got %v", skill.ErrInvalidConfig, cfg.DrawProbability)
	}
	if !(cfg.Dynamics >= 0) || math.IsInf(cfg.Dynamics, 0) {
		return nil, fmt.Errorf("%w: dynamics must be non-negative and finite, got %v", skill.ErrInvalidConfig, cfg.Dynamics)
	}
	return &TrueSkill{cfg: cfg}, nil
}

// Rate returns both players' new ratings after one match. It is the
// team update with single-member teams.
func (t *TrueSkill) Rate(one, two Rating, outcome skill.Outcome) (Rating, Rating, error) {
	newOne, newTwo, err := t.RateTeams([]Rating{one}, []Rating{two}, outcome)
	if err != nil {
		return Rating{}, Rating{}, err
	}
	return newOne[0], newTwo[0], nil
}

// ExpectedScore returns each player's win probability; the pair sums
// to one.
func (t *TrueSkill) ExpectedScore(one, two Rating) (float64, float64, error) {
	return t.ExpectedScoreTeams([]Rating{one}, []Rating{two})
}

// RatePeriod chains the results in order, each game rated from the
// rating the previous one produced. An empty result list returns the
// player unchanged.
func (t *TrueSkill) RatePeriod(player Rating, results []skill.Result[Rating]) (Rating, error) {
	if err := validate(player); err != nil {
		return Rating{}, err
	}
	current := player
	for _, res := range results {
		updated, _, err := t.Rate(current, res.Opponent, res.Outcome)
		if err != nil {
			return Rating{}, err
		}
		current = updated
	}
	return current, nil
}

// ExpectedScorePeriod returns the player's win probability against
// each opponent in turn.
func (t *TrueSkill) ExpectedScorePeriod(player Rating, opponents []Rating) ([]float64, error) {
	scores := make([]float64, len(opponents))
	for i, opponent := range opponents {
		p, _, err := t.ExpectedScore(player, opponent)
		if err != nil {
			return nil, err
		}
		scores[i] = p
	}
	return scores, nil
}

// RateTeams returns new ratings for every member of both teams after a
// match with the given outcome from the first team's perspective.
func (t *TrueSkill) RateTeams(one, two []Rating, outcome skill.Outcome) ([]Rating, []Rating, error) {
	if err := validateTeams(one, two); err != nil {
		return nil, nil, err
	}
	if !outcome.Valid() {
		return nil, nil, fmt.Errorf("%w: %s", skill.ErrInvalidOutcome, outcome)
	}

	totalPlayers := len(one) + len(two)
	c := math.Sqrt(sumVariance(one) + sumVariance(two) + float64(totalPlayers)*t.cfg.Beta*t.cfg.Beta)
	epsilon := drawMargin(t.cfg.DrawProbability, t.cfg.Beta, totalPlayers) / c
	muOne, muTwo := sumMu(one), sumMu(two)

	newOne := t.updateSide(one, (muOne-muTwo)/c, outcome, epsilon, c)
	newTwo := t.updateSide(two, (muTwo-muOne)/c, outcome.Opposite(), epsilon, c)
	return newOne, newTwo, nil
}

// ExpectedScoreTeams returns each team's win probability; the pair
// sums to one.
func (t *TrueSkill) ExpectedScoreTeams(one, two []Rating) (float64, float64, error) {
	if err := validateTeams(one, two); err != nil {
		return 0, 0, err
	}
	totalPlayers := len(one) + len(two)
	c := math.Sqrt(sumVariance(one) + sumVariance(two) + float64(totalPlayers)*t.cfg.Beta*t.cfg.Beta)
	p := distuv.UnitNormal.CDF((sumMu(one) - sumMu(two)) / c)
	return p, 1 - p, nil
}

// RateMultiTeam rates a free-for-all of ranked teams. The rank list is
// reduced to every pairwise team comparison: ties are drawn against
// every tied opponent, differing ranks update normally, and each
// player's share of the accumulated correction is weighted by their
// own variance. A single team is returned unchanged.
func (t *TrueSkill) RateMultiTeam(teams []skill.RankedTeam[Rating]) ([][]Rating, error) {
	if err := validateRanked(teams); err != nil {
		return nil, err
	}
	if len(teams) == 1 {
		return [][]Rating{copyTeam(teams[0].Players)}, nil
	}

	result := make([][]Rating, len(teams))
	for i, team := range teams {
		var omega, delta float64
		muTeam := sumMu(team.Players)
		varTeam := sumVariance(team.Players)

		for q, other := range teams {
			if q == i {
				continue
			}
			totalPlayers := len(team.Players) + len(other.Players)
			c := math.Sqrt(varTeam + sumVariance(other.Players) + float64(totalPlayers)*t.cfg.Beta*t.cfg.Beta)
			epsilon := drawMargin(t.cfg.DrawProbability, t.cfg.Beta, totalPlayers) / c
			tt := (muTeam - sumMu(other.Players)) / c

			v, w := corrections(tt, epsilon, team.Rank.Versus(other.Rank))
			omega += v / c
			delta += w / (c * c)
		}

		updated := make([]Rating, len(team.Players))
		for j, player := range team.Players {
			variance := player.Sigma*player.Sigma + t.cfg.Dynamics*t.cfg.Dynamics
			inner := 1 - variance*delta
			updated[j] = Rating{
				Mu:    player.Mu + variance*omega,
				Sigma: math.Sqrt(variance * math.Max(inner, varianceFloor)),
			}
		}
		result[i] = updated
	}
	return result, nil
}

// ExpectedScoreMultiTeam returns each team's win probability from its
// pairwise win chances, normalized to sum to one.
func (t *TrueSkill) ExpectedScoreMultiTeam(teams [][]Rating) ([]float64, error) {
	if len(teams) == 0 {
		return nil, fmt.Errorf("%w: no teams", skill.ErrEmptyGroup)
	}
	for _, team := range teams {
		if err := validateTeam(team); err != nil {
			return nil, err
		}
	}
	if len(teams) == 1 {
		return []float64{1}, nil
	}

	raw := make([]float64, len(teams))
	var total float64
	for i, team := range teams {
		muTeam := sumMu(team)
		varTeam := sumVariance(team)
		for q, other := range teams {
			if q == i {
				continue
			}
			totalPlayers := len(team) + len(other)
			c := math.Sqrt(varTeam + sumVariance(other) + float64(totalPlayers)*t.cfg.Beta*t.cfg.Beta)
			raw[i] += distuv.UnitNormal.CDF((muTeam - sumMu(other)) / c)
		}
		total += raw[i]
	}
	for i := range raw {
		raw[i] /= total
	}
	return raw, nil
}

// MatchQuality reports the draw probability of a hypothetical pairing,
// the classical matchmaking criterion: 1 means a perfectly even match.
func (t *TrueSkill) MatchQuality(one, two Rating) (float64, error) {
	if err := validate(one, two); err != nil {
		return 0, err
	}
	twoBetaSq := 2 * t.cfg.Beta * t.cfg.Beta
	denom := twoBetaSq + one.Sigma*one.Sigma + two.Sigma*two.Sigma
	diff := one.Mu - two.Mu
	return math.Sqrt(twoBetaSq/denom) * math.Exp(-diff*diff/(2*denom)), nil
}

func (t *TrueSkill) updateSide(team []Rating, tt float64, outcome skill.Outcome, epsilon, c float64) []Rating {
	v, w := corrections(tt, epsilon, outcome)
	updated := make([]Rating, len(team))
	for i, player := range team {
		variance := player.Sigma*player.Sigma + t.cfg.Dynamics*t.cfg.Dynamics
		inner := 1 - w*variance/(c*c)
		updated[i] = Rating{
			Mu:    player.Mu + variance/c*v,
			Sigma: math.Sqrt(variance * math.Max(inner, varianceFloor)),
		}
	}
	return updated
}

// corrections picks the truncated-Gaussian v/w pair for one side's
// view of the comparison. A loss is the opponent's win seen from the
// other side, so its v flips sign.
func corrections(t, epsilon float64, outcome skill.Outcome) (v, w float64) {
	switch outcome {
	case skill.Win:
		return vExceeds(t, epsilon), wExceeds(t, epsilon)
	case skill.Loss:
		return -vExceeds(-t, epsilon), wExceeds(-t, epsilon)
	default:
		return vWithin(t, epsilon), wWithin(t, epsilon)
	}
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
