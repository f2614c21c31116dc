// Package arena simulates seasons of matches over a synthetic roster.
//
// A run draws players with hidden latent skill, samples match outcomes
// from those latents, and feeds the results through one configured
// rating engine. The latents never reach the engine, so the final
// standings show how well the engine recovered them. A fixed seed
// reproduces the whole run, including every rating in the standings.
package arena

import (
	"github.com/naomijub/MHTH/pkg/logger"
	"github.com/naomijub/MHTH/skill/elo"
	"github.com/naomijub/MHTH/skill/glicko"
	"github.com/naomijub/MHTH/skill/glicko2"
	"github.com/naomijub/MHTH/skill/mhth"
	"github.com/naomijub/MHTH/skill/trueskill"
	"github.com/naomijub/MHTH/skill/wenglin"
)

// Default run shape, matching the process configuration defaults.
const (
	defaultRosterSize       = 64
	defaultTeamSize         = 3
	defaultSquads           = 2
	defaultSeasons          = 4
	defaultMatchesPerSeason = 96
	defaultSeed             = 1
)

// EngineParams bundles the per-engine configuration. Only the bundle
// matching the selected engine is used; the rest are ignored.
type EngineParams struct {
	Elo       elo.Config
	Glicko    glicko.Config
	Glicko2   glicko2.Config
	TrueSkill trueskill.Config
	WengLin   wenglin.Config
	MHTH      mhth.Config
}

// DefaultEngineParams returns every engine's documented defaults.
func DefaultEngineParams() EngineParams {
	return EngineParams{
		Elo:       elo.DefaultConfig(),
		Glicko:    glicko.DefaultConfig(),
		Glicko2:   glicko2.DefaultConfig(),
		TrueSkill: trueskill.DefaultConfig(),
		WengLin:   wenglin.DefaultConfig(),
		MHTH:      mhth.DefaultConfig(),
	}
}

// Option applies a configuration option to the Arena.
type Option func(*Arena)

// WithEngine selects the rating engine by name: elo, glicko, glicko2,
// trueskill, wenglin or mhth.
func WithEngine(name string) Option {
	return func(a *Arena) {
		if name != "" {
			a.engine = name
		}
	}
}

// WithRosterSize sets how many players the synthetic roster holds.
func WithRosterSize(size int) Option {
	return func(a *Arena) {
		if size > 0 {
			a.roster = size
		}
	}
}

// WithTeamSize sets the players per side. A size of one plays
// head-to-head.
func WithTeamSize(size int) Option {
	return func(a *Arena) {
		if size > 0 {
			a.teamSize = size
		}
	}
}

// WithSquads sets the teams per match. More than two plays a
// free-for-all ranked by finishing order.
func WithSquads(count int) Option {
	return func(a *Arena) {
		if count > 0 {
			a.squads = count
		}
	}
}

// WithSeasons sets how many rating periods the run simulates.
func WithSeasons(count int) Option {
	return func(a *Arena) {
		if count > 0 {
			a.seasons = count
		}
	}
}

// WithMatchesPerSeason sets how many matches each season plays.
func WithMatchesPerSeason(count int) Option {
	return func(a *Arena) {
		if count > 0 {
			a.matches = count
		}
	}
}

// WithSeed fixes the seed for roster generation and outcome sampling.
// Runs with the same seed and options produce identical standings.
func WithSeed(seed int64) Option {
	return func(a *Arena) {
		a.seed = seed
	}
}

// WithWorkers sets how many goroutines apply match results.
func WithWorkers(count int) Option {
	return func(a *Arena) {
		if count > 0 {
			a.workers = count
		}
	}
}

// WithEngineParams replaces the per-engine configuration bundles.
func WithEngineParams(params EngineParams) Option {
	return func(a *Arena) {
		a.params = params
	}
}

// WithLogger replaces the logger used for run progress.
func WithLogger(log logger.Logger) Option {
	return func(a *Arena) {
		if log != nil {
			a.logger = log
		}
	}
}
