package brackets

import (
	"errors"

	"github.com/moltblox/tournament-engine/models"
)

var ErrSwissRoundUnfinished = errors.New("previous swiss round is not fully decided")

// generateSwiss builds only the first round; later rounds depend on
// results and are produced by NextSwissRound. Round one pairs the top
// half of the seeding against the bottom half (seed 1 vs seed n/2+1 and
// so on, the fold every swiss event opens with).
func generateSwiss(params GenerateParams) (*Bracket, error) {
	ids := make([]string, 0, len(params.Seeded))
	for _, p := range params.Seeded {
		if !p.IsBye {
			ids = append(ids, p.ParticipantID)
		}
	}

	b := &Bracket{Format: models.FormatSwiss, CurrentRound: 1}

	var byeID *string
	if len(ids)%2 != 0 {
		last := ids[len(ids)-1]
		byeID = &last
		ids = ids[:len(ids)-1]
	}

	half := len(ids) / 2
	interleaved := make([]string, 0, len(ids))
	for i := 0; i < half; i++ {
		interleaved = append(interleaved, ids[i], ids[half+i])
	}

	b.AppendRound(buildSwissRound(1, pairSequential(interleaved), byeID))
	return b, nil
}

// NextSwissRound pairs the next round from the current standings order:
// players meet inside their score group when possible, pair down to the
// adjacent group otherwise, and never repeat a pairing while any
// repeat-free pairing exists. With an odd field the lowest-ranked player
// without a previous bye sits out and scores a full-round win.
//
// The caller must pass standings sorted best-first and only resolve the
// next round once the previous one is fully decided.
func NextSwissRound(b *Bracket, standings []*Standing) (*Round, error) {
	if len(b.Rounds) > 0 && !b.RoundDecided(len(b.Rounds)) {
		return nil, ErrSwissRoundUnfinished
	}

	ids := make([]string, len(standings))
	for i, s := range standings {
		ids[i] = s.ParticipantID
	}

	var byeID *string
	if len(ids)%2 != 0 {
		had := ByeRecipients(b)
		pick := len(ids) - 1
		for i := len(ids) - 1; i >= 0; i-- {
			if !had[ids[i]] {
				pick = i
				break
			}
		}
		id := ids[pick]
		byeID = &id
		ids = append(ids[:pick], ids[pick+1:]...)
	}

	played := PlayedPairs(b)
	pairs, ok := pairAvoidingRepeats(ids, played)
	if !ok {
		// Every repeat-free pairing is exhausted; fall back to pairing
		// straight down the standings.
		pairs = pairSequential(ids)
	}

	round := buildSwissRound(len(b.Rounds)+1, pairs, byeID)
	b.AppendRound(round)
	b.CurrentRound = round.PlayOrder
	return round, nil
}

func buildSwissRound(number int, pairs [][2]string, byeID *string) *Round {
	round := &Round{Segment: SegmentWinners, Number: number}
	for i, pair := range pairs {
		a, c := pair[0], pair[1]
		round.Matches = append(round.Matches, &Match{
			UID:         matchUID("", number, i+1),
			Segment:     SegmentWinners,
			Round:       number,
			MatchNumber: i + 1,
			SlotA:       Slot{ParticipantID: &a},
			SlotB:       Slot{ParticipantID: &c},
			Status:      MatchScheduled,
		})
	}
	if byeID != nil {
		round.Matches = append(round.Matches, &Match{
			UID:         matchUID("", number, len(pairs)+1),
			Segment:     SegmentWinners,
			Round:       number,
			MatchNumber: len(pairs) + 1,
			SlotA:       Slot{ParticipantID: byeID},
			SlotB:       Slot{Bye: true},
			Status:      MatchCompleted,
			WinnerID:    byeID,
			IsBye:       true,
		})
	}
	return round
}

func pairSequential(ids []string) [][2]string {
	pairs := make([][2]string, 0, len(ids)/2)
	for i := 0; i+1 < len(ids); i += 2 {
		pairs = append(pairs, [2]string{ids[i], ids[i+1]})
	}
	return pairs
}

// pairAvoidingRepeats searches for a perfect pairing of the ordered list
// that repeats no previous pairing, preferring opponents closest in the
// standings. Backtracking keeps the preference while guaranteeing a
// repeat-free pairing is found whenever one exists.
func pairAvoidingRepeats(ordered []string, played map[string]bool) ([][2]string, bool) {
	if len(ordered) == 0 {
		return nil, true
	}
	first := ordered[0]
	for i := 1; i < len(ordered); i++ {
		opponent := ordered[i]
		if played[pairKey(first, opponent)] {
			continue
		}
		rest := make([]string, 0, len(ordered)-2)
		rest = append(rest, ordered[1:i]...)
		rest = append(rest, ordered[i+1:]...)
		tail, ok := pairAvoidingRepeats(rest, played)
		if !ok {
			continue
		}
		return append([][2]string{{first, opponent}}, tail...), true
	}
	return nil, false
}
