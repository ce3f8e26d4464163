package brackets

import (
	"fmt"

	"github.com/moltblox/tournament-engine/models"
)

// generateSingleElimination builds a full knockout tree. Round one is
// paired by standard seeding order; every later round has half as many
// matches, filled through winner references. Byes introduced by padding
// resolve immediately and push their player into the next round without a
// played match.
func generateSingleElimination(params GenerateParams) (*Bracket, error) {
	seeded := params.Seeded
	size := len(seeded)
	if size < 2 || size != nextPowerOfTwo(size) {
		return nil, ErrBracketNotPadded
	}

	b := &Bracket{Format: models.FormatSingleElimination, CurrentRound: 1}
	numRounds := rounds(size)

	order := seedOrder(size)
	for r := 1; r <= numRounds; r++ {
		round := &Round{Segment: SegmentWinners, Number: r}
		numMatches := size >> uint(r)
		for m := 1; m <= numMatches; m++ {
			match := &Match{
				UID:         matchUID("", r, m),
				Segment:     SegmentWinners,
				Round:       r,
				MatchNumber: m,
				Status:      MatchPending,
			}
			if r == 1 {
				match.SlotA = participantSlot(seeded[order[2*m-2]-1])
				match.SlotB = participantSlot(seeded[order[2*m-1]-1])
				if match.SlotA.ParticipantID != nil && match.SlotB.ParticipantID != nil {
					match.Status = MatchScheduled
				}
			} else {
				match.SlotA = winnerSourceSlot(matchUID("", r-1, 2*m-1))
				match.SlotB = winnerSourceSlot(matchUID("", r-1, 2*m))
			}
			if r < numRounds {
				match.WinnerTo = &SlotRef{
					MatchUID: matchUID("", r+1, (m+1)/2),
					Slot:     2 - m%2,
				}
			}
			round.Matches = append(round.Matches, match)
		}
		b.AppendRound(round)
	}

	resolveByes(b)
	return b, nil
}

// rounds is ceil(log2(size)) for a power-of-two field.
func rounds(size int) int {
	n := 0
	for 1<<uint(n) < size {
		n++
	}
	return n
}

func matchUID(prefix string, round, matchNumber int) string {
	return fmt.Sprintf("%sR%dM%d", prefix, round, matchNumber)
}

// resolveByes settles every match that padding already decided, cascading
// through downstream slots until no bye remains undecided.
func resolveByes(b *Bracket) {
	for _, m := range b.AllMatches() {
		maybeResolve(b, m)
	}
	advanceCurrentRound(b)
}
