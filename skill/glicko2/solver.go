package glicko2

import (
	"fmt"
	"math"

	"github.com/naomijub/MHTH/skill"
)

// solveVolatility finds the new volatility as the root of the monotone
// function f of the trial value x = ln(sigma'^2). The bracket starts at
// a = ln(sigma^2) and expands in steps of tau until f changes sign,
// then the Illinois variant of regula falsi closes it within the
// tolerance. Both phases are bounded by maxIter; exhausting either is
// a convergence failure.
func solveVolatility(deltaSq, phiSq, v, volatility, tau, tolerance float64, maxIter int) (float64, error) {
	a := math.Log(volatility * volatility)
	f := func(x float64) float64 {
		ex := math.Exp(x)
		num := ex * (deltaSq - phiSq - v - ex)
		den := 2 * (phiSq + v + ex) * (phiSq + v + ex)
		return num/den - (x-a)/(tau*tau)
	}

	x0 := a
	var x1 float64
	if deltaSq > phiSq+v {
		x1 = math.Log(deltaSq - phiSq - v)
	} else {
		k := 1
		for f(a-float64(k)*tau) < 0 {
			k++
			if k > maxIter {
				return 0, fmt.Errorf("%w: no volatility bracket within %d expansions", skill.ErrConvergence, maxIter)
			}
		}
		x1 = a - float64(k)*tau
	}

	f0, f1 := f(x0), f(x1)
	for i := 0; math.Abs(x1-x0) > tolerance; i++ {
		if i >= maxIter {
			return 0, fmt.Errorf("%w: volatility solver exceeded %d iterations", skill.ErrConvergence, maxIter)
		}
		mid := x0 + (x0-x1)*f0/(f1-f0)
		fMid := f(mid)
		if fMid*f1 <= 0 {
			x0, f0 = x1, f1
		} else {
			// Illinois step: halve the stale endpoint's weight.
			f0 /= 2
		}
		x1, f1 = mid, fMid
	}
	return math.Exp(x0 / 2), nil
}
