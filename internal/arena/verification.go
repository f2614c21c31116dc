package arena

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Tolerances for the run invariants. Rating updates accumulate float
// error per match, so the drift bound is looser than the pointwise
// ones.
const (
	probabilityTolerance  = 1e-9
	monotonicityTolerance = 1e-9
	deviationTolerance    = 1e-9
	ratingDriftTolerance  = 1e-6

	maxViolationSamples = 8
)

// InvariantReport summarizes the invariant checks of one run.
type InvariantReport struct {
	Checks     int
	Violations int
	Samples    []string
}

// verifier tallies invariant checks over a run. It is only touched
// from the runner's sequential phases, never from the match workers.
type verifier struct {
	checks     int
	violations int
	samples    []string
}

func newVerifier() *verifier {
	return &verifier{}
}

func (v *verifier) check(ok bool, format string, args ...any) {
	v.checks++
	if ok {
		return
	}

	v.violations++
	if len(v.samples) < maxViolationSamples {
		v.samples = append(v.samples, fmt.Sprintf(format, args...))
	}
}

// checkPairPrediction verifies that a two-sided forecast is a
// probability pair summing to one.
func (v *verifier) checkPairPrediction(pOne, pTwo float64, err error) {
	if err != nil {
		v.check(false, "prediction failed: %v", err)

		return
	}

	ok := pOne >= 0 && pTwo >= 0 && math.Abs(pOne+pTwo-1) <= probabilityTolerance
	v.check(ok, "pair prediction %v + %v does not sum to one", pOne, pTwo)
}

// checkFieldPrediction verifies that a free-for-all forecast spreads
// one unit of probability over the squads.
func (v *verifier) checkFieldPrediction(scores []float64, err error) {
	if err != nil {
		v.check(false, "prediction failed: %v", err)

		return
	}

	ok := math.Abs(floats.Sum(scores)-1) <= probabilityTolerance
	for _, s := range scores {
		ok = ok && s >= 0
	}
	v.check(ok, "field prediction %v does not sum to one", scores)
}

// checkMonotonic verifies a decided incremental match moved the two
// ratings the right way.
func (v *verifier) checkMonotonic(sim simulator, s swing) {
	winnerAfter := sim.rating(s.winner)
	v.check(winnerAfter >= s.winnerBefore-monotonicityTolerance,
		"winner %d rating fell from %v to %v", s.winner, s.winnerBefore, winnerAfter)

	loserAfter := sim.rating(s.loser)
	v.check(loserAfter <= s.loserBefore+monotonicityTolerance,
		"loser %d rating rose from %v to %v", s.loser, s.loserBefore, loserAfter)
}

// checkDeviations verifies the period closed deviations the right way:
// shrinking for players who played, never shrinking for idle ones.
func (v *verifier) checkDeviations(before, after []float64, played []bool, season int) {
	for i := range before {
		if played[i] {
			v.check(after[i] <= before[i]+deviationTolerance,
				"player %d deviation grew from %v to %v after playing in season %d", i, before[i], after[i], season)

			continue
		}

		v.check(after[i] >= before[i]-deviationTolerance,
			"player %d deviation shrank from %v to %v while idle in season %d", i, before[i], after[i], season)
	}
}

// checkConservation verifies a zero-sum engine kept the rating pool
// constant across a season.
func (v *verifier) checkConservation(before, after float64, season int) {
	v.check(math.Abs(after-before) <= ratingDriftTolerance,
		"season %d rating sum drifted from %v to %v", season, before, after)
}

func (v *verifier) summary() InvariantReport {
	return InvariantReport{
		Checks:     v.checks,
		Violations: v.violations,
		Samples:    append([]string(nil), v.samples...),
	}
}
