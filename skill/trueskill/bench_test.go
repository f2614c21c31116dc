package trueskill_test

import (
	"testing"

	"github.com/naomijub/MHTH/skill"
	"github.com/naomijub/MHTH/skill/trueskill"
)

// Sinks keep the compiler from eliding the benchmarked calls.
var (
	benchRating trueskill.Rating
	benchTeams  [][]trueskill.Rating
	benchScore  float64
)

func benchEngine(b *testing.B) *trueskill.TrueSkill {
	b.Helper()
	engine, err := trueskill.New(trueskill.DefaultConfig())
	if err != nil {
		b.Fatalf("engine construction: %v", err)
	}
	return engine
}

func BenchmarkTrueSkill_Rate(b *testing.B) {
	engine := benchEngine(b)
	one := trueskill.Rating{Mu: 32.1, Sigma: 4.233}
	two := trueskill.Rating{Mu: 41.01, Sigma: 1.34}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		updated, _, err := engine.Rate(one, two, skill.Win)
		if err != nil {
			b.Fatal(err)
		}
		benchRating = updated
	}
}

func BenchmarkTrueSkill_RateTeams_4v4(b *testing.B) {
	engine := benchEngine(b)
	teamOne := []trueskill.Rating{
		{Mu: 32.1, Sigma: 4.233},
		{Mu: 41.01, Sigma: 1.34},
		{Mu: 32.1, Sigma: 4.233},
		{Mu: 41.01, Sigma: 1.34},
	}
	teamTwo := []trueskill.Rating{
		{Mu: 29.1, Sigma: 4.233},
		{Mu: 12.01, Sigma: 1.34},
		{Mu: 9.1, Sigma: 4.233},
		{Mu: 53.01, Sigma: 1.34},
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		updated, _, err := engine.RateTeams(teamOne, teamTwo, skill.Win)
		if err != nil {
			b.Fatal(err)
		}
		benchRating = updated[0]
	}
}

func BenchmarkTrueSkill_RateMultiTeam_4Teams(b *testing.B) {
	engine := benchEngine(b)
	teams := []skill.RankedTeam[trueskill.Rating]{
		{
			Players: []trueskill.Rating{
				{Mu: 32.1, Sigma: 4.233},
				{Mu: 41.01, Sigma: 1.34},
				{Mu: 32.1, Sigma: 4.233},
				{Mu: 41.01, Sigma: 1.34},
			},
			Rank: 1,
		},
		{
			Players: []trueskill.Rating{
				{Mu: 29.1, Sigma: 4.233},
				{Mu: 12.01, Sigma: 1.34},
				{Mu: 9.1, Sigma: 4.233},
				{Mu: 53.01, Sigma: 1.34},
			},
			Rank: 3,
		},
		{
			Players: []trueskill.Rating{
				{Mu: 29.1, Sigma: 4.233},
				{Mu: 12.01, Sigma: 1.34},
				{Mu: 29.1, Sigma: 4.233},
				{Mu: 53.01, Sigma: 1.34},
			},
			Rank: 2,
		},
		{
			Players: []trueskill.Rating{
				{Mu: 29.1, Sigma: 1.233},
				{Mu: 22.01, Sigma: 1.34},
				{Mu: 9.1, Sigma: 6.23},
				{Mu: 13.01, Sigma: 2.34},
			},
			Rank: 2,
		},
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		updated, err := engine.RateMultiTeam(teams)
		if err != nil {
			b.Fatal(err)
		}
		benchTeams = updated
	}
}

func BenchmarkTrueSkill_ExpectedScore(b *testing.B) {
	engine := benchEngine(b)
	one := trueskill.Rating{Mu: 32.1, Sigma: 4.233}
	two := trueskill.Rating{Mu: 41.01, Sigma: 1.34}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		p, _, err := engine.ExpectedScore(one, two)
		if err != nil {
			b.Fatal(err)
		}
		benchScore = p
	}
}

func BenchmarkTrueSkill_ExpectedScoreTeams_4v4(b *testing.B) {
	engine := benchEngine(b)
	teamOne := []trueskill.Rating{
		{Mu: 32.1, Sigma: 4.233},
		{Mu: 41.01, Sigma: 1.34},
		{Mu: 32.1, Sigma: 4.233},
		{Mu: 41.01, Sigma: 1.34},
	}
	teamTwo := []trueskill.Rating{
		{Mu: 29.1, Sigma: 4.233},
		{Mu: 12.01, Sigma: 1.34},
		{Mu: 9.1, Sigma: 4.233},
		{Mu: 53.01, Sigma: 1.34},
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		p, _, err := engine.ExpectedScoreTeams(teamOne, teamTwo)
		if err != nil {
			b.Fatal(err)
		}
		benchScore = p
	}
}

func BenchmarkTrueSkill_RatePeriod_10Games(b *testing.B) {
	engine := benchEngine(b)
	player := trueskill.Rating{Mu: 8.3, Sigma: 2.2}
	outcomes := []skill.Outcome{
		skill.Win, skill.Draw, skill.Loss, skill.Win, skill.Draw,
		skill.Loss, skill.Win, skill.Draw, skill.Loss, skill.Loss,
	}
	results := make([]skill.Result[trueskill.Rating], len(outcomes))
	for i, outcome := range outcomes {
		results[i] = skill.Result[trueskill.Rating]{
			Opponent: trueskill.Rating{Mu: 3.2 + 3.0*float64(i), Sigma: 2.1},
			Outcome:  outcome,
		}
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		updated, err := engine.RatePeriod(player, results)
		if err != nil {
			b.Fatal(err)
		}
		benchRating = updated
	}
}
