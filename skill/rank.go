package skill

import "fmt"

// Rank is a team's placement in a free-for-all match. Lower is better,
// equal ranks denote a tie, and gaps between ranks carry no meaning.
type Rank int

// NewRank constructs a Rank from a positive placement.
func NewRank(position int) (Rank, error) {
	r := Rank(position)
	if !r.Valid() {
		return 0, fmt.Errorf("%w: rank must be positive, got %d", ErrInvalidRank, position)
	}
	return r, nil
}

// Valid reports whether the rank is a positive placement.
func (r Rank) Valid() bool {
	return r >= 1
}

// Versus derives the pairwise outcome between two ranked teams, from
// the receiver's perspective. Every multi-team engine reduces its rank
// list to pairwise comparisons through this one relation.
func (r Rank) Versus(other Rank) Outcome {
	switch {
	case r < other:
		return Win
	case r == other:
		return Draw
	default:
		return Loss
	}
}
