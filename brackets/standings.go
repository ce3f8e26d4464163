package brackets

import (
	"sort"
	"strings"

	"github.com/moltblox/tournament-engine/models"
)

// Standing accumulates one participant's record across a bracket. A bye
// counts as a full-round win but not as a played game; a forfeit counts
// as a played loss.
type Standing struct {
	ParticipantID string `json:"participant_id"`
	Seed          int    `json:"seed"`
	Points        int    `json:"points"`
	Wins          int    `json:"wins"`
	Losses        int    `json:"losses"`
	Byes          int    `json:"byes"`
	Played        int    `json:"played"`
}

// ComputeStandings tallies every decided match. seeds supplies the full
// participant set, so players without a decided match still appear.
func ComputeStandings(b *Bracket, seeds map[string]int) []*Standing {
	byID := make(map[string]*Standing, len(seeds))
	for id, seed := range seeds {
		byID[id] = &Standing{ParticipantID: id, Seed: seed}
	}
	for _, m := range b.AllMatches() {
		if !m.Decided() || m.WinnerID == nil {
			continue
		}
		winner := byID[*m.WinnerID]
		if winner == nil {
			continue
		}
		winner.Wins++
		winner.Points++
		if m.IsBye {
			winner.Byes++
			continue
		}
		winner.Played++
		if loser := m.LoserID(); loser != nil {
			if s := byID[*loser]; s != nil {
				s.Losses++
				s.Played++
			}
		}
	}
	standings := make([]*Standing, 0, len(byID))
	for _, s := range byID {
		standings = append(standings, s)
	}
	SortStandings(standings, b)
	return standings
}

// SortStandings orders by points, then head-to-head when exactly two
// players are tied and met exactly once, then seed. The policy is part of
// the format contract because it decides prize placement.
func SortStandings(standings []*Standing, b *Bracket) {
	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].Points != standings[j].Points {
			return standings[i].Points > standings[j].Points
		}
		return standings[i].Seed < standings[j].Seed
	})
	// Head-to-head applies only to a tie of exactly two.
	for i := 0; i < len(standings)-1; i++ {
		a, c := standings[i], standings[i+1]
		if a.Points != c.Points {
			continue
		}
		tieSize := 2
		if i > 0 && standings[i-1].Points == a.Points {
			continue
		}
		if i+2 < len(standings) && standings[i+2].Points == a.Points {
			tieSize = 3
		}
		if tieSize != 2 {
			continue
		}
		if winner, ok := headToHead(b, a.ParticipantID, c.ParticipantID); ok && winner == c.ParticipantID {
			standings[i], standings[i+1] = c, a
		}
	}
}

// headToHead returns the winner between two players if they met in
// exactly one decided, played match.
func headToHead(b *Bracket, a, c string) (string, bool) {
	var winner string
	count := 0
	for _, m := range b.AllMatches() {
		if !m.Decided() || m.IsBye || m.WinnerID == nil {
			continue
		}
		if m.SlotA.ParticipantID == nil || m.SlotB.ParticipantID == nil {
			continue
		}
		pa, pb := *m.SlotA.ParticipantID, *m.SlotB.ParticipantID
		if (pa == a && pb == c) || (pa == c && pb == a) {
			count++
			winner = *m.WinnerID
		}
	}
	return winner, count == 1
}

// FinalPlacements produces the total placement order PrizeCalculator
// consumes. Elimination formats rank by how deep a player survived: the
// play order of the round holding their final loss, later being better,
// seed breaking ties. Round robin and swiss use the standings sort.
func FinalPlacements(b *Bracket, seeds map[string]int) []string {
	switch b.Format {
	case models.FormatSingleElimination, models.FormatDoubleElimination:
		return eliminationPlacements(b, seeds)
	default:
		standings := ComputeStandings(b, seeds)
		out := make([]string, len(standings))
		for i, s := range standings {
			out[i] = s.ParticipantID
		}
		return out
	}
}

func eliminationPlacements(b *Bracket, seeds map[string]int) []string {
	type exit struct {
		id        string
		seed      int
		lossOrder int
	}

	lastLoss := make(map[string]int, len(seeds))
	for _, r := range b.Rounds {
		for _, m := range r.Matches {
			if !m.Decided() {
				continue
			}
			if loser := m.LoserID(); loser != nil {
				if r.PlayOrder > lastLoss[*loser] {
					lastLoss[*loser] = r.PlayOrder
				}
			}
		}
	}

	var champion *string
	if c := b.Champion(); c != nil {
		champion = c
	}

	exits := make([]exit, 0, len(seeds))
	for id, seed := range seeds {
		if champion != nil && id == *champion {
			continue
		}
		exits = append(exits, exit{id: id, seed: seed, lossOrder: lastLoss[id]})
	}
	sort.Slice(exits, func(i, j int) bool {
		if exits[i].lossOrder != exits[j].lossOrder {
			return exits[i].lossOrder > exits[j].lossOrder
		}
		return exits[i].seed < exits[j].seed
	})

	placements := make([]string, 0, len(seeds))
	if champion != nil {
		placements = append(placements, *champion)
	}
	for _, e := range exits {
		placements = append(placements, e.id)
	}
	return placements
}

// PlayedPairs collects every pairing that has already been scheduled or
// played, keyed order-independently. The swiss pairer consults it to
// honor the no-repeat rule.
func PlayedPairs(b *Bracket) map[string]bool {
	pairs := make(map[string]bool)
	for _, m := range b.AllMatches() {
		if m.SlotA.ParticipantID == nil || m.SlotB.ParticipantID == nil {
			continue
		}
		pairs[pairKey(*m.SlotA.ParticipantID, *m.SlotB.ParticipantID)] = true
	}
	return pairs
}

// ByeRecipients lists players already advanced by a bye.
func ByeRecipients(b *Bracket) map[string]bool {
	recipients := make(map[string]bool)
	for _, m := range b.AllMatches() {
		if m.IsBye && m.WinnerID != nil {
			recipients[*m.WinnerID] = true
		}
	}
	return recipients
}

func pairKey(a, c string) string {
	if strings.Compare(a, c) > 0 {
		a, c = c, a
	}
	return a + "|" + c
}
