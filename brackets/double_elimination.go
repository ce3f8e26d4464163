package brackets

import (
	"fmt"

	"github.com/moltblox/tournament-engine/models"
)

// generateDoubleElimination builds a winners bracket structured like
// single elimination plus a losers bracket on the standard drop schedule:
// winners-round-1 losers pair up in losers round 1; the loser of winners
// round r >= 2 drops into losers round 2(r-1) against the survivors of
// the previous losers round. Alternate major losers rounds swap bracket
// halves so early winners-bracket rematches cannot happen. A single grand
// final closes the bracket; the reset game is added on demand when the
// losers-bracket finalist wins it.
func generateDoubleElimination(params GenerateParams) (*Bracket, error) {
	seeded := params.Seeded
	size := len(seeded)
	if size < 2 || size != nextPowerOfTwo(size) {
		return nil, ErrBracketNotPadded
	}

	numWinnerRounds := rounds(size)
	winnerRounds := make([]*Round, numWinnerRounds+1)  // 1-based
	loserRounds := make([]*Round, 2*numWinnerRounds-1) // 1-based, empty for size 2

	order := seedOrder(size)
	for r := 1; r <= numWinnerRounds; r++ {
		round := &Round{Segment: SegmentWinners, Number: r}
		numMatches := size >> uint(r)
		for m := 1; m <= numMatches; m++ {
			match := &Match{
				UID:         matchUID("W", r, m),
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
				match.SlotA = winnerSourceSlot(matchUID("W", r-1, 2*m-1))
				match.SlotB = winnerSourceSlot(matchUID("W", r-1, 2*m))
			}
			if r < numWinnerRounds {
				match.WinnerTo = &SlotRef{
					MatchUID: matchUID("W", r+1, (m+1)/2),
					Slot:     2 - m%2,
				}
			} else {
				match.WinnerTo = &SlotRef{MatchUID: grandFinalUID(1), Slot: 1}
			}
			match.LoserTo = loserDrop(r, m, numMatches, numWinnerRounds)
			round.Matches = append(round.Matches, match)
		}
		winnerRounds[r] = round
	}

	for k := 1; k <= numWinnerRounds-1; k++ {
		loserRounds[2*k-1] = buildMinorLoserRound(k, size)
		loserRounds[2*k] = buildMajorLoserRound(k, size, numWinnerRounds)
	}

	finals := &Round{Segment: SegmentFinals, Number: 1}
	grandFinal := &Match{
		UID:         grandFinalUID(1),
		Segment:     SegmentFinals,
		Round:       1,
		MatchNumber: 1,
		Status:      MatchPending,
		SlotA:       winnerSourceSlot(matchUID("W", numWinnerRounds, 1)),
	}
	if numWinnerRounds > 1 {
		grandFinal.SlotB = winnerSourceSlot(matchUID("L", 2*(numWinnerRounds-1), 1))
	} else {
		// Two entrants: the losers bracket is empty and the round-one
		// loser goes straight to the grand final.
		grandFinal.SlotB = loserSourceSlot(matchUID("W", 1, 1))
	}
	finals.Matches = []*Match{grandFinal}

	b := &Bracket{Format: models.FormatDoubleElimination}
	b.AppendRound(winnerRounds[1])
	if numWinnerRounds > 1 {
		b.AppendRound(loserRounds[1])
	}
	for k := 1; k <= numWinnerRounds-1; k++ {
		b.AppendRound(winnerRounds[k+1])
		b.AppendRound(loserRounds[2*k])
		if 2*k+1 <= 2*(numWinnerRounds-1)-1 {
			b.AppendRound(loserRounds[2*k+1])
		}
	}
	b.AppendRound(finals)

	resolveByes(b)
	return b, nil
}

func grandFinalUID(game int) string {
	return fmt.Sprintf("GF%d", game)
}

// loserDrop gives the losers-bracket slot fed by a winners-bracket match.
func loserDrop(r, m, numMatches, numWinnerRounds int) *SlotRef {
	if numWinnerRounds == 1 {
		return &SlotRef{MatchUID: grandFinalUID(1), Slot: 2}
	}
	if r == 1 {
		return &SlotRef{
			MatchUID: matchUID("L", 1, (m+1)/2),
			Slot:     2 - m%2,
		}
	}
	return &SlotRef{
		MatchUID: matchUID("L", 2*(r-1), majorDropIndex(r, m, numMatches)),
		Slot:     1,
	}
}

// majorDropIndex swaps the bracket halves on every other major round so a
// winners-bracket loser cannot immediately rematch the player they just
// beat. The half rotation is an involution, so the same function maps
// both directions.
func majorDropIndex(r, m, numMatches int) int {
	if numMatches < 2 || r%2 != 0 {
		return m
	}
	return (m-1+numMatches/2)%numMatches + 1
}

// buildMinorLoserRound pairs the survivors of the previous losers round
// (or, for round one, the winners-round-one losers).
func buildMinorLoserRound(k, size int) *Round {
	numMatches := size >> uint(k+1)
	round := &Round{Segment: SegmentLosers, Number: 2*k - 1}
	for m := 1; m <= numMatches; m++ {
		match := &Match{
			UID:         matchUID("L", 2*k-1, m),
			Segment:     SegmentLosers,
			Round:       2*k - 1,
			MatchNumber: m,
			Status:      MatchPending,
			WinnerTo:    &SlotRef{MatchUID: matchUID("L", 2*k, m), Slot: 2},
		}
		if k == 1 {
			match.SlotA = loserSourceSlot(matchUID("W", 1, 2*m-1))
			match.SlotB = loserSourceSlot(matchUID("W", 1, 2*m))
		} else {
			match.SlotA = winnerSourceSlot(matchUID("L", 2*k-2, 2*m-1))
			match.SlotB = winnerSourceSlot(matchUID("L", 2*k-2, 2*m))
		}
		round.Matches = append(round.Matches, match)
	}
	return round
}

// buildMajorLoserRound pits the dropping winners-bracket losers against
// the minor-round survivors.
func buildMajorLoserRound(k, size, numWinnerRounds int) *Round {
	numMatches := size >> uint(k+1)
	round := &Round{Segment: SegmentLosers, Number: 2 * k}
	for m := 1; m <= numMatches; m++ {
		match := &Match{
			UID:         matchUID("L", 2*k, m),
			Segment:     SegmentLosers,
			Round:       2 * k,
			MatchNumber: m,
			Status:      MatchPending,
			SlotA:       loserSourceSlot(matchUID("W", k+1, majorDropIndex(k+1, m, numMatches))),
			SlotB:       winnerSourceSlot(matchUID("L", 2*k-1, m)),
		}
		if k < numWinnerRounds-1 {
			match.WinnerTo = &SlotRef{
				MatchUID: matchUID("L", 2*k+1, (m+1)/2),
				Slot:     2 - m%2,
			}
		} else {
			match.WinnerTo = &SlotRef{MatchUID: grandFinalUID(1), Slot: 2}
		}
		round.Matches = append(round.Matches, match)
	}
	return round
}
