package arena

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// Latent skill distribution for generated players. The scale mirrors
// the gaussian engines' defaults so upsets stay plausible.
const (
	latentMu    = 25.0
	latentSigma = 25.0 / 3.0
)

// Player is one synthetic roster entry. Latent is the hidden skill
// that drives outcome sampling; the rating engines never see it.
type Player struct {
	ID     uuid.UUID
	Latent float64
}

// newRoster draws size players with normally distributed latent skill.
// Identities and latents both come from rng, so a fixed seed yields an
// identical roster.
func newRoster(size int, rng *rand.Rand) ([]Player, error) {
	roster := make([]Player, size)

	for i := range roster {
		id, err := uuid.NewRandomFromReader(rng)
		if err != nil {
			return nil, fmt.Errorf("roster identity: %w", err)
		}

		roster[i] = Player{
			ID:     id,
			Latent: latentMu + latentSigma*rng.NormFloat64(),
		}
	}

	return roster, nil
}

// meanLatent averages the latent skill of the players at the given
// roster indices.
func meanLatent(roster []Player, indices []int) float64 {
	total := 0.0
	for _, i := range indices {
		total += roster[i].Latent
	}

	return total / float64(len(indices))
}
