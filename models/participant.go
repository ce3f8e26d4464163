package models

import "time"

// ParticipantStatus follows a participant through a tournament. Records
// are never deleted, only status-transitioned.
type ParticipantStatus string

const (
	ParticipantRegistered ParticipantStatus = "registered"
	ParticipantActive     ParticipantStatus = "active"
	ParticipantEliminated ParticipantStatus = "eliminated"
	ParticipantWinner     ParticipantStatus = "winner"
	ParticipantWithdrawn  ParticipantStatus = "withdrawn"
)

type Participant struct {
	ID           string            `json:"id" db:"id"`
	TournamentID string            `json:"tournament_id" db:"tournament_id"`
	Address      string            `json:"address" db:"address"`
	DisplayName  string            `json:"display_name" db:"display_name"`
	// Rating is the external skill rating used by ranked seeding.
	Rating       int               `json:"rating" db:"rating"`
	// Seed is the rank assigned when the bracket is generated; zero
	// until the tournament starts.
	Seed         int               `json:"seed,omitempty" db:"seed"`
	EntryFeePaid bool              `json:"entry_fee_paid" db:"entry_fee_paid"`
	Status       ParticipantStatus `json:"status" db:"status"`
	RegisteredAt time.Time         `json:"registered_at" db:"registered_at"`
}
