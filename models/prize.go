package models

// PrizeDistribution holds whole percentage points for the top placements
// plus the participation share split among everyone below third. The four
// components must be non-negative and sum to exactly 100.
type PrizeDistribution struct {
	First         int `json:"first" db:"dist_first"`
	Second        int `json:"second" db:"dist_second"`
	Third         int `json:"third" db:"dist_third"`
	Participation int `json:"participation" db:"dist_participation"`
}

// DefaultPrizeDistribution is applied when a tournament is created without
// an explicit split.
var DefaultPrizeDistribution = PrizeDistribution{
	First:         50,
	Second:        25,
	Third:         15,
	Participation: 10,
}

// PrizeResult is one finisher's exact share of the pool. PrizeAmount is a
// wei amount as a decimal string; Percentage is informational only and is
// never used in amount arithmetic.
type PrizeResult struct {
	PlayerID    string  `json:"player_id"`
	Placement   int     `json:"placement"`
	PrizeAmount string  `json:"prize_amount"`
	Percentage  float64 `json:"percentage"`
}
