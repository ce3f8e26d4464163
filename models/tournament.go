package models

import "time"

// TournamentStatus mirrors the tournament status ENUM in the database.
type TournamentStatus string

const (
	StatusUpcoming     TournamentStatus = "upcoming"
	StatusRegistration TournamentStatus = "registration"
	StatusActive       TournamentStatus = "active"
	StatusCompleted    TournamentStatus = "completed"
	StatusCancelled    TournamentStatus = "cancelled"
)

// TournamentFormat is the closed set of supported bracket formats.
type TournamentFormat string

const (
	FormatSingleElimination TournamentFormat = "single_elim"
	FormatDoubleElimination TournamentFormat = "double_elim"
	FormatRoundRobin        TournamentFormat = "round_robin"
	FormatSwiss             TournamentFormat = "swiss"
)

// SeedingMethod selects how the participant list is ordered before
// bracket generation.
type SeedingMethod string

const (
	SeedingRandom SeedingMethod = "random"
	SeedingRanked SeedingMethod = "ranked"
)

type Tournament struct {
	ID              string           `json:"id" db:"id"`
	Name            string           `json:"name" db:"name"`
	Description     *string          `json:"description,omitempty" db:"description"`
	GameID          string           `json:"game_id" db:"game_id"`
	Format          TournamentFormat `json:"format" db:"format"`
	Status          TournamentStatus `json:"status" db:"status"`
	Seeding         SeedingMethod    `json:"seeding" db:"seeding"`
	MaxParticipants int              `json:"max_participants" db:"max_participants"`
	// SwissRounds fixes the round count for the swiss format; ignored by
	// the other formats.
	SwissRounds int `json:"swiss_rounds,omitempty" db:"swiss_rounds"`
	// Exhibition tournaments may start with a single participant, who
	// auto-wins the pool.
	Exhibition bool `json:"exhibition" db:"exhibition"`

	// EntryFee and PrizePool are wei amounts serialized as decimal
	// strings. The pool grows by one entry fee per committed registration.
	EntryFee  string `json:"entry_fee" db:"entry_fee"`
	PrizePool string `json:"prize_pool" db:"prize_pool"`

	Distribution PrizeDistribution `json:"distribution" db:"-"`

	RegDate   time.Time `json:"reg_date" db:"reg_date"`
	StartDate time.Time `json:"start_date" db:"start_date"`
	EndDate   time.Time `json:"end_date" db:"end_date"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	BannerKey *string   `json:"-" db:"banner_key"`
	BannerURL *string   `json:"banner_url,omitempty" db:"-"`

	// Optional linked entities, populated by services, not mapped directly.
	Participants []Participant      `json:"participants,omitempty" db:"-"`
	Winners      []TournamentWinner `json:"winners,omitempty" db:"-"`
}

// PayoutStatus tracks the external wallet transfer for one winner record.
type PayoutStatus string

const (
	PayoutPending PayoutStatus = "pending"
	PayoutPaid    PayoutStatus = "paid"
	PayoutFailed  PayoutStatus = "failed"
)

// TournamentWinner is the bracket-of-record result for one finisher. The
// payout fields are decoupled from placement: a failed transfer never
// rolls back the recorded standing.
type TournamentWinner struct {
	TournamentID  string       `json:"tournament_id" db:"tournament_id"`
	ParticipantID string       `json:"participant_id" db:"participant_id"`
	Placement     int          `json:"placement" db:"placement"`
	PrizeAmount   string       `json:"prize_amount" db:"prize_amount"`
	Percentage    float64      `json:"percentage" db:"percentage"`
	PayoutStatus  PayoutStatus `json:"payout_status" db:"payout_status"`
	PayoutTxID    *string      `json:"payout_tx_id,omitempty" db:"payout_tx_id"`
	PaidAt        *time.Time   `json:"paid_at,omitempty" db:"paid_at"`
}
