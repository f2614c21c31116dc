package trueskill

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Truncated-Gaussian correction functions for the performance
// difference t and draw margin epsilon, both already divided by c.
// The guards keep the divisions finite when the denominator underflows
// for extreme inputs.

// denominatorFloor is the smallest normal-CDF mass treated as nonzero.
const denominatorFloor = 2.222758749e-162

// vExceeds is the mean correction when one side won outright.
func vExceeds(t, epsilon float64) float64 {
	denom := distuv.UnitNormal.CDF(t - epsilon)
	if denom < denominatorFloor {
		return -t + epsilon
	}
	return distuv.UnitNormal.Prob(t-epsilon) / denom
}

// wExceeds is the variance correction when one side won outright.
func wExceeds(t, epsilon float64) float64 {
	denom := distuv.UnitNormal.CDF(t - epsilon)
	if denom < denominatorFloor {
		if t < 0 {
			return 1
		}
		return 0
	}
	v := vExceeds(t, epsilon)
	return v * (v + t - epsilon)
}

// vWithin is the mean correction when the match stayed within the
// draw margin. It is antisymmetric in t.
func vWithin(t, epsilon float64) float64 {
	tAbs := math.Abs(t)
	denom := distuv.UnitNormal.CDF(epsilon-tAbs) - distuv.UnitNormal.CDF(-epsilon-tAbs)
	if denom < denominatorFloor {
		if t < 0 {
			return -t - epsilon
		}
		return -t + epsilon
	}
	v := (distuv.UnitNormal.Prob(-epsilon-tAbs) - distuv.UnitNormal.Prob(epsilon-tAbs)) / denom
	if t < 0 {
		return -v
	}
	return v
}

// wWithin is the variance correction when the match stayed within the
// draw margin.
func wWithin(t, epsilon float64) float64 {
	tAbs := math.Abs(t)
	denom := distuv.UnitNormal.CDF(epsilon-tAbs) - distuv.UnitNormal.CDF(-epsilon-tAbs)
	if denom < denominatorFloor {
		return 1
	}
	v := vWithin(tAbs, epsilon)
	return v*v + ((epsilon-tAbs)*distuv.UnitNormal.Prob(epsilon-tAbs)-
		(-epsilon-tAbs)*distuv.UnitNormal.Prob(-epsilon-tAbs))/denom
}

// drawMargin derives the performance margin inside which a match of n
// total players counts as a draw.
func drawMargin(drawProbability, beta float64, totalPlayers int) float64 {
	return distuv.UnitNormal.Quantile((drawProbability+1)/2) * math.Sqrt(float64(totalPlayers)) * beta
}
