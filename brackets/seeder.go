package brackets

import (
	"math/rand"
	"sort"

	"github.com/moltblox/tournament-engine/models"
)

// SeededPlayer is the ephemeral output of seeding: a participant with an
// assigned rank, or a padding bye. Produced once, consumed once by a
// generator.
type SeededPlayer struct {
	ParticipantID string `json:"participant_id"`
	Seed          int    `json:"seed"`
	IsBye         bool   `json:"is_bye"`
}

// SeedPlayers orders the participant list and assigns seeds 1..n.
//
// SeedingRandom shuffles uniformly with the provided source. SeedingRanked
// sorts by external rating, highest first, with ties broken by
// registration order.
func SeedPlayers(participants []*models.Participant, method models.SeedingMethod, rng *rand.Rand) []SeededPlayer {
	ordered := make([]*models.Participant, len(participants))
	copy(ordered, participants)

	switch method {
	case models.SeedingRanked:
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].RegisteredAt.Before(ordered[j].RegisteredAt)
		})
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Rating > ordered[j].Rating
		})
	default:
		shuffleArray(ordered, rng)
	}

	seeded := make([]SeededPlayer, len(ordered))
	for i, p := range ordered {
		seeded[i] = SeededPlayer{ParticipantID: p.ID, Seed: i + 1}
	}
	return seeded
}

// shuffleArray is an in-place Fisher-Yates shuffle. Randomness comes from
// the swap index draws alone, never from a comparator.
func shuffleArray(participants []*models.Participant, rng *rand.Rand) {
	for i := len(participants) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		participants[i], participants[j] = participants[j], participants[i]
	}
}

// PadToPowerOfTwo appends bye entries until the list length is a power of
// two. Byes take the lowest seeds, so the standard round-one pairing
// (seed 1 vs. lowest) hands every bye to a top seed.
func PadToPowerOfTwo(seeded []SeededPlayer) []SeededPlayer {
	size := nextPowerOfTwo(len(seeded))
	padded := make([]SeededPlayer, len(seeded), size)
	copy(padded, seeded)
	for s := len(seeded) + 1; s <= size; s++ {
		padded = append(padded, SeededPlayer{Seed: s, IsBye: true})
	}
	return padded
}

func nextPowerOfTwo(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}
	return size
}

// seedOrder lists seeds in bracket position order for a field of the
// given power-of-two size, so that the top seeds meet as late as
// possible: 1 vs size, 2 vs size-1, and so on recursively.
func seedOrder(size int) []int {
	order := []int{1}
	for len(order) < size {
		mirror := 2*len(order) + 1
		next := make([]int, 0, 2*len(order))
		for _, s := range order {
			next = append(next, s, mirror-s)
		}
		order = next
	}
	return order
}
