package arena

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// standingsShown caps the rendered table; the Report keeps every row.
const standingsShown = 10

// Report is the outcome of one run: final standings plus summary
// statistics over the whole roster.
type Report struct {
	Engine        string
	Mode          string
	Roster        int
	Seasons       int
	MatchesPlayed int
	Seed          int64
	Workers       int

	MeanRating   float64
	StdDevRating float64
	MinRating    float64
	MaxRating    float64

	// MeanDeviation is zero when the engine tracks no uncertainty.
	MeanDeviation float64
	HasDeviation  bool

	// LatentCorrelation is the Pearson correlation between hidden
	// latent skill and final rating, per player. Values near one mean
	// the engine recovered the roster's true ordering.
	LatentCorrelation float64

	Invariants InvariantReport
	Standings  []Standing
	Elapsed    time.Duration
}

func (a *Arena) buildReport(
	roster []Player,
	sim simulator,
	tallies []tally,
	matches int,
	invariants InvariantReport,
	elapsed time.Duration,
) *Report {
	size := len(roster)

	ratings := make([]float64, size)
	latents := make([]float64, size)
	for i := range roster {
		ratings[i] = sim.rating(i)
		latents[i] = roster[i].Latent
	}

	_, hasDeviation := sim.uncertainty(0)
	deviations := make([]float64, size)
	meanDeviation := 0.0
	if hasDeviation {
		deviations = snapshotDeviations(sim, size)
		meanDeviation = stat.Mean(deviations, nil)
	}

	return &Report{
		Engine:        a.engine,
		Mode:          a.mode().String(),
		Roster:        size,
		Seasons:       a.seasons,
		MatchesPlayed: matches,
		Seed:          a.seed,
		Workers:       a.workers,

		MeanRating:   stat.Mean(ratings, nil),
		StdDevRating: stat.StdDev(ratings, nil),
		MinRating:    floats.Min(ratings),
		MaxRating:    floats.Max(ratings),

		MeanDeviation: meanDeviation,
		HasDeviation:  hasDeviation,

		LatentCorrelation: stat.Correlation(latents, ratings, nil),

		Invariants: invariants,
		Standings:  computeStandings(roster, ratings, deviations, hasDeviation, tallies),
		Elapsed:    elapsed,
	}
}

// Render writes the human-readable report: a summary header followed
// by the top of the standings table.
func (r *Report) Render(w io.Writer) error {
	fmt.Fprintf(w, "%s %s: %d players, %d seasons, %d matches, seed %d\n",
		r.Engine, r.Mode, r.Roster, r.Seasons, r.MatchesPlayed, r.Seed)
	fmt.Fprintf(w, "ratings: mean %.3f, stddev %.3f, range [%.3f, %.3f]\n",
		r.MeanRating, r.StdDevRating, r.MinRating, r.MaxRating)
	if r.HasDeviation {
		fmt.Fprintf(w, "mean deviation: %.3f\n", r.MeanDeviation)
	}
	fmt.Fprintf(w, "latent correlation: %.4f\n", r.LatentCorrelation)
	fmt.Fprintf(w, "invariants: %d checks, %d violations\n", r.Invariants.Checks, r.Invariants.Violations)
	for _, sample := range r.Invariants.Samples {
		fmt.Fprintf(w, "  violation: %s\n", sample)
	}
	fmt.Fprintf(w, "elapsed: %s\n\n", r.Elapsed.Round(time.Millisecond))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PLACE\tPLAYER\tRATING\tDEVIATION\tW\tD\tL\tLATENT")
	for i, s := range r.Standings {
		if i == standingsShown {
			fmt.Fprintf(tw, "...\t%d more\t\t\t\t\t\t\n", len(r.Standings)-standingsShown)

			break
		}

		deviation := "-"
		if s.HasDeviation {
			deviation = strconv.FormatFloat(s.Deviation, 'f', 3, 64)
		}
		fmt.Fprintf(tw, "%d\t%s\t%.3f\t%s\t%d\t%d\t%d\t%.3f\n",
			s.Place, shortID(s.PlayerID), s.Rating, deviation, s.Wins, s.Draws, s.Losses, s.Latent)
	}

	return tw.Flush()
}

// shortID abbreviates a player id for table display.
func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
