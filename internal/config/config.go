// Package config defines the arena process configuration and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Layer file and environment overrides in Load.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"

	"github.com/naomijub/MHTH/skill/elo"
	"github.com/naomijub/MHTH/skill/glicko"
	"github.com/naomijub/MHTH/skill/glicko2"
	"github.com/naomijub/MHTH/skill/mhth"
	"github.com/naomijub/MHTH/skill/trueskill"
	"github.com/naomijub/MHTH/skill/wenglin"
)

// Engine names accepted by the arena.
const (
	EngineElo       = "elo"
	EngineGlicko    = "glicko"
	EngineGlicko2   = "glicko2"
	EngineTrueSkill = "trueskill"
	EngineWengLin   = "wenglin"
	EngineMHTH      = "mhth"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Engine selects the rating engine to simulate.
	Engine string `koanf:"engine"`

	// RosterSize sets how many players the synthetic roster holds.
	RosterSize int `koanf:"roster_size"`

	// TeamSize sets players per side; 1 selects head-to-head play.
	TeamSize int `koanf:"team_size"`

	// Squads sets teams per match; above 2 selects free-for-all play.
	Squads int `koanf:"squads"`

	// Seasons sets how many rating periods the run simulates.
	Seasons int `koanf:"seasons"`

	// MatchesPerSeason bounds the matches played in one season.
	MatchesPerSeason int `koanf:"matches_per_season"`

	// Seed drives every random draw; a fixed seed reproduces the run.
	Seed int64 `koanf:"seed"`

	// Workers sets the number of concurrent match workers.
	Workers int `koanf:"workers"`

	// Per-engine parameter bundles. Values are validated by the engine
	// constructors, not here.
	Elo       elo.Config       `koanf:"elo"`
	Glicko    glicko.Config    `koanf:"glicko"`
	Glicko2   glicko2.Config   `koanf:"glicko2"`
	TrueSkill trueskill.Config `koanf:"trueskill"`
	WengLin   wenglin.Config   `koanf:"wenglin"`
	MHTH      mhth.Config      `koanf:"mhth"`
}

// New creates a Config with documented defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Engine:           EngineMHTH,
		RosterSize:       64,
		TeamSize:         3,
		Squads:           2,
		Seasons:          4,
		MatchesPerSeason: 96,
		Seed:             1,
		Workers:          runtime.NumCPU(),
		Elo:              elo.DefaultConfig(),
		Glicko:           glicko.DefaultConfig(),
		Glicko2:          glicko2.DefaultConfig(),
		TrueSkill:        trueskill.DefaultConfig(),
		WengLin:          wenglin.DefaultConfig(),
		MHTH:             mhth.DefaultConfig(),
	}
}

// KnownEngine reports whether name is one of the supported engines.
func KnownEngine(name string) bool {
	switch name {
	case EngineElo, EngineGlicko, EngineGlicko2, EngineTrueSkill, EngineWengLin, EngineMHTH:
		return true
	default:
		return false
	}
}
