package skill

import "fmt"

// Outcome is the result of a two-sided match from the reference side's
// perspective.
type Outcome uint8

const (
	Loss Outcome = iota
	Draw
	Win
)

// Fractional score values for the three outcomes.
const (
	lossPoints = 0.0
	drawPoints = 0.5
	winPoints  = 1.0
)

// OutcomeFromPoints constructs an Outcome from a fractional score.
// Only the exact values 0, 0.5 and 1 are meaningful.
func OutcomeFromPoints(points float64) (Outcome, error) {
	switch points {
	case lossPoints:
		return Loss, nil
	case drawPoints:
		return Draw, nil
	case winPoints:
		return Win, nil
	default:
		return 0, fmt.Errorf("%w: no outcome scores %v points", ErrInvalidOutcome, points)
	}
}

// Points returns the fractional score of the outcome: 1 for a win,
// 0.5 for a draw, 0 for a loss.
func (o Outcome) Points() float64 {
	switch o {
	case Win:
		return winPoints
	case Draw:
		return drawPoints
	default:
		return lossPoints
	}
}

// Opposite flips the outcome to the other side's perspective.
func (o Outcome) Opposite() Outcome {
	switch o {
	case Win:
		return Loss
	case Loss:
		return Win
	default:
		return Draw
	}
}

// Valid reports whether o is one of the three defined outcomes.
func (o Outcome) Valid() bool {
	return o <= Win
}

func (o Outcome) String() string {
	switch o {
	case Loss:
		return "loss"
	case Draw:
		return "draw"
	case Win:
		return "win"
	default:
		return fmt.Sprintf("outcome(%d)", uint8(o))
	}
}
