package arena

import (
	"sort"

	"github.com/google/uuid"
	"github.com/naomijub/MHTH/skill"
)

// tally counts a player's match results across the whole run. In
// free-for-all matches every squad scores against every other squad.
type tally struct {
	Wins   int
	Draws  int
	Losses int
}

func tallyOne(t *tally, outcome skill.Outcome) {
	switch outcome {
	case skill.Win:
		t.Wins++
	case skill.Loss:
		t.Losses++
	default:
		t.Draws++
	}
}

func tallyPair(tallies []tally, one, two int, outcome skill.Outcome) {
	tallyOne(&tallies[one], outcome)
	tallyOne(&tallies[two], outcome.Opposite())
}

func tallyTeams(tallies []tally, one, two []int, outcome skill.Outcome) {
	for _, p := range one {
		tallyOne(&tallies[p], outcome)
	}
	for _, p := range two {
		tallyOne(&tallies[p], outcome.Opposite())
	}
}

func tallyMulti(tallies []tally, teams [][]int, ranks []skill.Rank) {
	for i := range teams {
		for j := i + 1; j < len(teams); j++ {
			outcome := ranks[i].Versus(ranks[j])
			for _, p := range teams[i] {
				tallyOne(&tallies[p], outcome)
			}
			for _, p := range teams[j] {
				tallyOne(&tallies[p], outcome.Opposite())
			}
		}
	}
}

// Standing is one row of the final table.
type Standing struct {
	Place        int
	PlayerID     uuid.UUID
	Latent       float64
	Rating       float64
	Deviation    float64
	HasDeviation bool
	Wins         int
	Draws        int
	Losses       int
}

// computeStandings sorts players by rating, best first. Players on
// exactly equal ratings share a place and the next distinct rating
// skips the shared slots, as in competition ranking.
func computeStandings(roster []Player, ratings, deviations []float64, hasDeviation bool, tallies []tally) []Standing {
	standings := make([]Standing, len(roster))
	for i, p := range roster {
		standings[i] = Standing{
			PlayerID:     p.ID,
			Latent:       p.Latent,
			Rating:       ratings[i],
			HasDeviation: hasDeviation,
			Wins:         tallies[i].Wins,
			Draws:        tallies[i].Draws,
			Losses:       tallies[i].Losses,
		}
		if hasDeviation {
			standings[i].Deviation = deviations[i]
		}
	}

	sort.SliceStable(standings, func(x, y int) bool {
		return standings[x].Rating > standings[y].Rating
	})

	for i := range standings {
		if i > 0 && standings[i].Rating == standings[i-1].Rating {
			standings[i].Place = standings[i-1].Place
			continue
		}

		standings[i].Place = i + 1
	}

	return standings
}
