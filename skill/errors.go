package skill

import "errors"

// Sentinel error kinds shared by every engine. Engines wrap these with
// call-site detail; callers match with errors.Is.
var (
	// ErrInvalidConfig reports a configuration constant outside its
	// documented domain (non-positive K-factor, tolerance, variance...).
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidRating reports a rating value an engine cannot work
	// with: non-finite rating, negative deviation, zero volatility.
	ErrInvalidRating = errors.New("invalid rating")

	// ErrInvalidOutcome reports an outcome outside the three defined
	// values.
	ErrInvalidOutcome = errors.New("invalid outcome")

	// ErrInvalidRank reports a non-positive free-for-all placement.
	ErrInvalidRank = errors.New("invalid rank")

	// ErrEmptyGroup reports a team with no members or a multi-team
	// call with no teams.
	ErrEmptyGroup = errors.New("empty group")

	// ErrConvergence reports that an iterative solver exhausted its
	// iteration bound before reaching its tolerance.
	ErrConvergence = errors.New("convergence failure")
)
