package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if MHTH_CONFIG is set
//  3. env (prefix MHTH_)
func Load(ctx context.Context) (*Config, error) {
	_ = ctx // reserved for providers that watch or fetch remotely

	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("MHTH_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: MHTH_ENGINE, MHTH_ROSTER_SIZE, ...
	// Flat keys keep their underscores (MHTH_ROSTER_SIZE -> roster_size);
	// a double underscore descends into an engine bundle
	// (MHTH_GLICKO2__TAU -> glicko2.tau).
	envProvider := env.Provider("MHTH_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "mhth_")
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate checks the run-shape fields. Engine parameters are left to
// the engine constructors.
func (c *Config) validate() error {
	if !KnownEngine(c.Engine) {
		return fmt.Errorf("%w: unknown engine %q", ErrInvalidConfig, c.Engine)
	}
	if c.RosterSize < 2 {
		return fmt.Errorf("%w: roster_size must be at least 2, got %d", ErrInvalidConfig, c.RosterSize)
	}
	if c.TeamSize < 1 {
		return fmt.Errorf("%w: team_size must be at least 1, got %d", ErrInvalidConfig, c.TeamSize)
	}
	if c.Squads < 2 {
		return fmt.Errorf("%w: squads must be at least 2, got %d", ErrInvalidConfig, c.Squads)
	}
	if c.Seasons < 1 {
		return fmt.Errorf("%w: seasons must be at least 1, got %d", ErrInvalidConfig, c.Seasons)
	}
	if c.MatchesPerSeason < 1 {
		return fmt.Errorf("%w: matches_per_season must be at least 1, got %d", ErrInvalidConfig, c.MatchesPerSeason)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidConfig, c.Workers)
	}
	return nil
}
