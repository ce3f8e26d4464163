package brackets

import (
	"fmt"

	"github.com/moltblox/tournament-engine/models"
)

// validTransitions is the match lifecycle. Completion and forfeit are
// handled by ApplyResult/ApplyForfeit; this table governs the
// administrative moves before a result exists.
var validTransitions = map[MatchStatus][]MatchStatus{
	MatchPending:    {MatchScheduled},
	MatchScheduled:  {MatchInProgress},
	MatchInProgress: {},
	MatchCompleted:  {},
	MatchForfeit:    {},
}

// CanTransition reports whether an administrative status move is legal.
func CanTransition(from, to MatchStatus) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// UpdateStatus applies an administrative transition (scheduling a pending
// match, starting a scheduled one). Results must go through ApplyResult.
func UpdateStatus(b *Bracket, uid string, to MatchStatus) (*Match, error) {
	m := b.Match(uid)
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMatch, uid)
	}
	if m.Decided() {
		return nil, fmt.Errorf("%w: %s", ErrMatchClosed, uid)
	}
	if !CanTransition(m.Status, to) {
		return nil, fmt.Errorf("invalid match transition %s -> %s: %w", m.Status, to, ErrMatchClosed)
	}
	m.Status = to
	return m, nil
}

// ApplyResult records the winner of a match and writes the outcome into
// every downstream slot that references it. The match must have both
// participants resolved and must not already be decided.
func ApplyResult(b *Bracket, uid, winnerID string, score *string) (*Match, error) {
	m, err := resolvableMatch(b, uid)
	if err != nil {
		return nil, err
	}
	if winnerID != *m.SlotA.ParticipantID && winnerID != *m.SlotB.ParticipantID {
		return nil, fmt.Errorf("%w: %s in %s", ErrWinnerNotInMatch, winnerID, uid)
	}
	m.Status = MatchCompleted
	m.WinnerID = &winnerID
	m.Score = score
	propagate(b, m)
	advanceCurrentRound(b)
	return m, nil
}

// ApplyForfeit closes a match without a played score: the named
// participant forfeits and the opponent advances. Counts as a loss for
// standings purposes.
func ApplyForfeit(b *Bracket, uid, forfeitingID string) (*Match, error) {
	m, err := resolvableMatch(b, uid)
	if err != nil {
		return nil, err
	}
	var winnerID string
	switch forfeitingID {
	case *m.SlotA.ParticipantID:
		winnerID = *m.SlotB.ParticipantID
	case *m.SlotB.ParticipantID:
		winnerID = *m.SlotA.ParticipantID
	default:
		return nil, fmt.Errorf("%w: %s in %s", ErrWinnerNotInMatch, forfeitingID, uid)
	}
	m.Status = MatchForfeit
	m.WinnerID = &winnerID
	propagate(b, m)
	advanceCurrentRound(b)
	return m, nil
}

func resolvableMatch(b *Bracket, uid string) (*Match, error) {
	m := b.Match(uid)
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMatch, uid)
	}
	if m.Decided() {
		return nil, fmt.Errorf("%w: %s", ErrMatchClosed, uid)
	}
	if m.SlotA.ParticipantID == nil || m.SlotB.ParticipantID == nil {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotReady, uid)
	}
	return m, nil
}

// LoserID returns the non-winning participant of a decided match, if both
// sides were concrete.
func (m *Match) LoserID() *string {
	if m.WinnerID == nil {
		return nil
	}
	if m.SlotA.ParticipantID != nil && *m.SlotA.ParticipantID != *m.WinnerID {
		return m.SlotA.ParticipantID
	}
	if m.SlotB.ParticipantID != nil && *m.SlotB.ParticipantID != *m.WinnerID {
		return m.SlotB.ParticipantID
	}
	return nil
}

// propagate writes a decided match's winner and loser into the slots that
// reference it. A bye stands in for a missing side, so padding cascades
// through the losers bracket on its own.
func propagate(b *Bracket, m *Match) {
	if m.WinnerTo != nil {
		if m.WinnerID != nil {
			writeSlot(b, m.WinnerTo, Slot{ParticipantID: m.WinnerID})
		} else {
			writeSlot(b, m.WinnerTo, Slot{Bye: true})
		}
	}
	if m.LoserTo != nil {
		if loser := m.LoserID(); loser != nil {
			writeSlot(b, m.LoserTo, Slot{ParticipantID: loser})
		} else {
			writeSlot(b, m.LoserTo, Slot{Bye: true})
		}
	}
}

func writeSlot(b *Bracket, ref *SlotRef, value Slot) {
	target := b.Match(ref.MatchUID)
	if target == nil {
		return
	}
	if ref.Slot == 1 {
		target.SlotA = value
	} else {
		target.SlotB = value
	}
	maybeResolve(b, target)
}

// maybeResolve settles a match whose slots just became known: bye matches
// complete immediately and cascade, real pairings become scheduled.
func maybeResolve(b *Bracket, m *Match) {
	if m.Decided() || !m.SlotA.Filled() || !m.SlotB.Filled() {
		return
	}
	aBye, bBye := m.SlotA.ParticipantID == nil, m.SlotB.ParticipantID == nil
	switch {
	case aBye && bBye:
		m.IsBye = true
		m.Status = MatchCompleted
	case aBye:
		m.IsBye = true
		m.Status = MatchCompleted
		m.WinnerID = m.SlotB.ParticipantID
	case bBye:
		m.IsBye = true
		m.Status = MatchCompleted
		m.WinnerID = m.SlotA.ParticipantID
	default:
		if m.Status == MatchPending {
			m.Status = MatchScheduled
		}
		return
	}
	propagate(b, m)
}

// advanceCurrentRound moves the cursor to the earliest round that still
// has an undecided match.
func advanceCurrentRound(b *Bracket) {
	for _, r := range b.Rounds {
		for _, m := range r.Matches {
			if !m.Decided() {
				b.CurrentRound = r.PlayOrder
				return
			}
		}
	}
	if n := len(b.Rounds); n > 0 {
		b.CurrentRound = n
	}
}

// RoundDecided reports whether every match of the round with the given
// play order is decided.
func (b *Bracket) RoundDecided(playOrder int) bool {
	if playOrder < 1 || playOrder > len(b.Rounds) {
		return false
	}
	for _, m := range b.Rounds[playOrder-1].Matches {
		if !m.Decided() {
			return false
		}
	}
	return true
}

// IsComplete reports whether the bracket's terminal condition is reached.
// A double-elimination bracket that still owes a reset match is not
// complete even though every existing match is decided.
func (b *Bracket) IsComplete() bool {
	for _, m := range b.AllMatches() {
		if !m.Decided() {
			return false
		}
	}
	return !b.NeedsBracketReset()
}

// GrandFinal returns the first finals match of a double-elimination
// bracket, or nil.
func (b *Bracket) GrandFinal() *Match {
	for _, r := range b.Rounds {
		if r.Segment == SegmentFinals && r.Number == 1 {
			return r.Matches[0]
		}
	}
	return nil
}

// NeedsBracketReset reports whether the losers-bracket finalist won the
// first grand final and the deciding second game has not been created
// yet. The winners-bracket champion always sits in slot A of the grand
// final, so a slot-B win triggers the reset.
func (b *Bracket) NeedsBracketReset() bool {
	if b.Format != models.FormatDoubleElimination {
		return false
	}
	gf := b.GrandFinal()
	if gf == nil || !gf.Decided() || gf.WinnerID == nil {
		return false
	}
	for _, r := range b.Rounds {
		if r.Segment == SegmentFinals && r.Number == 2 {
			return false
		}
	}
	return gf.SlotB.ParticipantID != nil && *gf.WinnerID == *gf.SlotB.ParticipantID
}

// AddBracketReset materializes the second grand final. Legal only when
// NeedsBracketReset holds.
func (b *Bracket) AddBracketReset() (*Match, error) {
	if !b.NeedsBracketReset() {
		return nil, ErrResetNotApplicable
	}
	gf := b.GrandFinal()
	reset := &Match{
		UID:         grandFinalUID(2),
		Segment:     SegmentFinals,
		Round:       2,
		MatchNumber: 1,
		SlotA:       Slot{ParticipantID: gf.SlotA.ParticipantID},
		SlotB:       Slot{ParticipantID: gf.SlotB.ParticipantID},
		Status:      MatchScheduled,
	}
	round := &Round{Segment: SegmentFinals, Number: 2, Matches: []*Match{reset}}
	b.AppendRound(round)
	b.CurrentRound = round.PlayOrder
	return reset, nil
}

// Champion returns the overall winner of a decided elimination bracket,
// nil otherwise. Round robin and swiss champions come from standings.
func (b *Bracket) Champion() *string {
	if !b.IsComplete() || len(b.Rounds) == 0 {
		return nil
	}
	switch b.Format {
	case models.FormatSingleElimination, models.FormatDoubleElimination:
		last := b.Rounds[len(b.Rounds)-1]
		return last.Matches[len(last.Matches)-1].WinnerID
	default:
		return nil
	}
}
