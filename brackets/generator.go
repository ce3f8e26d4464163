package brackets

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/moltblox/tournament-engine/models"
)

var (
	ErrUnsupportedFormat  = errors.New("unsupported bracket format")
	ErrNotEnoughPlayers   = errors.New("not enough participants to generate a bracket (minimum 2)")
	ErrBracketNotPadded   = errors.New("elimination bracket requires a power-of-two seeded list")
	ErrUnknownMatch       = errors.New("match not found in bracket")
	ErrMatchClosed        = errors.New("match result already recorded")
	ErrMatchNotReady      = errors.New("match participants are not resolved yet")
	ErrWinnerNotInMatch   = errors.New("winner is not a participant of this match")
	ErrResetNotApplicable = errors.New("grand final does not call for a bracket reset")
)

// Segment places a match in one of the three sections a bracket can have.
// Single elimination, round robin and swiss use only the winners segment.
type Segment string

const (
	SegmentWinners Segment = "winners"
	SegmentLosers  Segment = "losers"
	SegmentFinals  Segment = "finals"
)

type MatchStatus string

const (
	MatchPending    MatchStatus = "pending"
	MatchScheduled  MatchStatus = "scheduled"
	MatchInProgress MatchStatus = "in_progress"
	MatchCompleted  MatchStatus = "completed"
	MatchForfeit    MatchStatus = "forfeit"
)

// SlotRef addresses one side of a downstream match. Propagating a result
// is a write through this reference, never a pointer walk.
type SlotRef struct {
	MatchUID string `json:"match_uid"`
	Slot     int    `json:"slot"` // 1 = SlotA, 2 = SlotB
}

// Slot is one side of a match: a concrete participant, a bye marker, or a
// forward reference to the winner (or loser) of an earlier match.
type Slot struct {
	ParticipantID *string `json:"participant_id,omitempty"`
	Bye           bool    `json:"bye,omitempty"`
	SourceUID     *string `json:"source_uid,omitempty"`
	SourceLoser   bool    `json:"source_loser,omitempty"`
}

// Filled reports whether the slot no longer waits on an upstream match.
func (s Slot) Filled() bool {
	return s.ParticipantID != nil || (s.Bye && s.SourceUID == nil)
}

type Match struct {
	UID         string      `json:"uid"`
	Segment     Segment     `json:"segment"`
	Round       int         `json:"round"`
	MatchNumber int         `json:"match_number"`
	SlotA       Slot        `json:"slot_a"`
	SlotB       Slot        `json:"slot_b"`
	Status      MatchStatus `json:"status"`
	WinnerID    *string     `json:"winner_id,omitempty"`
	Score       *string     `json:"score,omitempty"`
	// IsBye marks a match decided by padding rather than play. Bye
	// matches never count as decisive.
	IsBye    bool     `json:"is_bye,omitempty"`
	WinnerTo *SlotRef `json:"winner_to,omitempty"`
	LoserTo  *SlotRef `json:"loser_to,omitempty"`
}

// Decided reports whether the match no longer awaits play, either because
// a result was recorded or because a bye resolved it.
func (m *Match) Decided() bool {
	return m.Status == MatchCompleted || m.Status == MatchForfeit
}

type Round struct {
	// PlayOrder is the 1-based position of the round in the overall
	// schedule, across segments.
	PlayOrder int      `json:"play_order"`
	Segment   Segment  `json:"segment"`
	Number    int      `json:"number"`
	Matches   []*Match `json:"matches"`
}

// Bracket is the full match schedule of one tournament: a flat, ordered
// sequence of rounds whose matches reference each other by UID only.
// The shape is fixed at generation time; the sanctioned exceptions are
// incremental swiss rounds and the double-elimination bracket reset.
type Bracket struct {
	Format       models.TournamentFormat `json:"format"`
	Rounds       []*Round                `json:"rounds"`
	CurrentRound int                     `json:"current_round"`

	byUID map[string]*Match
}

// Match returns the match with the given UID, or nil.
func (b *Bracket) Match(uid string) *Match {
	if b.byUID == nil {
		b.Reindex()
	}
	return b.byUID[uid]
}

// Reindex rebuilds the UID lookup table, e.g. after loading from storage.
func (b *Bracket) Reindex() {
	b.byUID = make(map[string]*Match)
	for _, r := range b.Rounds {
		for _, m := range r.Matches {
			b.byUID[m.UID] = m
		}
	}
}

// AppendRound attaches a newly generated round at the end of the schedule.
func (b *Bracket) AppendRound(r *Round) {
	r.PlayOrder = len(b.Rounds) + 1
	b.Rounds = append(b.Rounds, r)
	if b.byUID == nil {
		b.Reindex()
		return
	}
	for _, m := range r.Matches {
		b.byUID[m.UID] = m
	}
}

// AllMatches returns every match in play order.
func (b *Bracket) AllMatches() []*Match {
	out := make([]*Match, 0)
	for _, r := range b.Rounds {
		out = append(out, r.Matches...)
	}
	return out
}

// GenerateParams carries the seeded field and format configuration into a
// generator. Generators are pure: identical params produce identical
// brackets.
type GenerateParams struct {
	TournamentID string
	Seeded       []SeededPlayer
	// SwissRounds is the fixed round count for the swiss format.
	SwissRounds int
	// Rand must be supplied where a format calls for randomness. The
	// current generators consume randomness only through the seeder, but
	// the source stays part of the contract.
	Rand *rand.Rand
}

type generateFunc func(GenerateParams) (*Bracket, error)

var generators = map[models.TournamentFormat]generateFunc{
	models.FormatSingleElimination: generateSingleElimination,
	models.FormatDoubleElimination: generateDoubleElimination,
	models.FormatRoundRobin:        generateRoundRobin,
	models.FormatSwiss:             generateSwiss,
}

// Generate builds the initial bracket for the given format. For swiss this
// is round one only; later rounds are added with NextSwissRound.
func Generate(format models.TournamentFormat, params GenerateParams) (*Bracket, error) {
	gen, ok := generators[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if realPlayerCount(params.Seeded) < 2 {
		return nil, ErrNotEnoughPlayers
	}
	return gen(params)
}

func realPlayerCount(seeded []SeededPlayer) int {
	n := 0
	for _, p := range seeded {
		if !p.IsBye {
			n++
		}
	}
	return n
}

func participantSlot(p SeededPlayer) Slot {
	if p.IsBye {
		return Slot{Bye: true}
	}
	id := p.ParticipantID
	return Slot{ParticipantID: &id}
}

func winnerSourceSlot(uid string) Slot {
	return Slot{SourceUID: &uid}
}

func loserSourceSlot(uid string) Slot {
	return Slot{SourceUID: &uid, SourceLoser: true}
}
