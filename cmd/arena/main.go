package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/naomijub/MHTH/internal/arena"
	"github.com/naomijub/MHTH/internal/config"
	"github.com/naomijub/MHTH/pkg/logger"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run carries main's body so deferred cleanup survives the exit code.
func run(args []string) int {
	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use stderr directly since the logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env), then let
	// command-line flags override the result.
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return 1
	}

	if err := arena.ParseFlags(cfg, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		// The flag package already printed the problem and the usage.
		return 2
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	sim, err := arena.New(arena.Options(cfg)...)
	if err != nil {
		log.Error(ctx, "invalid run options", logger.Error(err))
		return 1
	}

	report, err := sim.Run(ctx)
	if err != nil {
		log.Error(ctx, "run failed", logger.Error(err))
		return 1
	}

	// The report goes to stdout; logs stay on stderr.
	if err := report.Render(os.Stdout); err != nil {
		log.Error(ctx, "report rendering failed", logger.Error(err))
		return 1
	}

	if report.Invariants.Violations > 0 {
		log.Error(ctx, "invariant violations detected", logger.Int("violations", report.Invariants.Violations))
		return 1
	}

	return 0
}
