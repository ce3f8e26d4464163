package brackets

import (
	"github.com/moltblox/tournament-engine/models"
)

// generateRoundRobin schedules every pairing exactly once with the circle
// method: seat one stays fixed while the rest rotate each round. An odd
// field gets a phantom bye seat that rotates like a real one; whoever
// lands opposite it sits the round out, so no bye match is ever created.
// n participants produce n(n-1)/2 matches over n-1 rounds (n rounds when
// n is odd).
func generateRoundRobin(params GenerateParams) (*Bracket, error) {
	seats := make([]SeededPlayer, len(params.Seeded))
	copy(seats, params.Seeded)
	if len(seats)%2 != 0 {
		seats = append(seats, SeededPlayer{Seed: len(seats) + 1, IsBye: true})
	}

	n := len(seats)
	b := &Bracket{Format: models.FormatRoundRobin, CurrentRound: 1}

	for r := 1; r <= n-1; r++ {
		round := &Round{Segment: SegmentWinners, Number: r}
		matchNumber := 0
		for i := 0; i < n/2; i++ {
			a := seats[circleIndex(i, n, r-1)]
			c := seats[circleIndex(n-1-i, n, r-1)]
			if a.IsBye || c.IsBye {
				continue
			}
			matchNumber++
			match := &Match{
				UID:         matchUID("", r, matchNumber),
				Segment:     SegmentWinners,
				Round:       r,
				MatchNumber: matchNumber,
				SlotA:       participantSlot(a),
				SlotB:       participantSlot(c),
				Status:      MatchScheduled,
			}
			round.Matches = append(round.Matches, match)
		}
		b.AppendRound(round)
	}

	return b, nil
}

// circleIndex maps a seat position to the participant index occupying it
// in the given rotation: position zero is fixed, the others shift by one
// place per round.
func circleIndex(position, n, rotation int) int {
	if position == 0 {
		return 0
	}
	return 1 + (position-1+rotation)%(n-1)
}
