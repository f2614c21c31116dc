package arena

import (
	"flag"

	"github.com/naomijub/MHTH/internal/config"
)

// ParseFlags applies command-line overrides on top of a loaded
// configuration. Flag defaults come from cfg, so file and environment
// settings show up in the usage text and survive when a flag is not
// passed.
func ParseFlags(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("arena", flag.ContinueOnError)
	fs.StringVar(&cfg.Engine, "engine", cfg.Engine, "rating engine: elo, glicko, glicko2, trueskill, wenglin or mhth")
	fs.IntVar(&cfg.RosterSize, "roster", cfg.RosterSize, "players in the synthetic roster")
	fs.IntVar(&cfg.TeamSize, "team-size", cfg.TeamSize, "players per side; 1 plays head-to-head")
	fs.IntVar(&cfg.Squads, "squads", cfg.Squads, "teams per match; more than 2 plays a free-for-all")
	fs.IntVar(&cfg.Seasons, "seasons", cfg.Seasons, "rating periods to simulate")
	fs.IntVar(&cfg.MatchesPerSeason, "matches", cfg.MatchesPerSeason, "matches per season")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "seed for roster generation and outcome sampling")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "concurrent match workers")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log verbosity: debug, info, warn or error")

	return fs.Parse(args)
}

// Options converts a loaded configuration into arena options.
func Options(cfg *config.Config) []Option {
	return []Option{
		WithEngine(cfg.Engine),
		WithRosterSize(cfg.RosterSize),
		WithTeamSize(cfg.TeamSize),
		WithSquads(cfg.Squads),
		WithSeasons(cfg.Seasons),
		WithMatchesPerSeason(cfg.MatchesPerSeason),
		WithSeed(cfg.Seed),
		WithWorkers(cfg.Workers),
		WithEngineParams(EngineParams{
			Elo:       cfg.Elo,
			Glicko:    cfg.Glicko,
			Glicko2:   cfg.Glicko2,
			TrueSkill: cfg.TrueSkill,
			WengLin:   cfg.WengLin,
			MHTH:      cfg.MHTH,
		}),
	}
}
