// Package prizes splits a tournament prize pool into exact per-finisher
// amounts. All money arithmetic happens on arbitrary-precision integers
// in the smallest currency unit; floating point never touches an amount.
package prizes

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/moltblox/tournament-engine/models"
)

var (
	ErrDistributionSum      = errors.New("prize distribution must sum to exactly 100")
	ErrDistributionNegative = errors.New("prize distribution components must be non-negative")
	ErrDistributionOrder    = errors.New("prize distribution must not pay a lower placement more than a higher one")
	ErrInvalidPool          = errors.New("prize pool must be a non-negative integer string")
)

var oneHundred = big.NewInt(100)

// ValidateDistribution checks the invariants of a distribution: all
// components non-negative, summing to exactly 100, with first >= second
// >= third so no lower placement can out-earn a higher one.
func ValidateDistribution(d models.PrizeDistribution) error {
	if d.First < 0 || d.Second < 0 || d.Third < 0 || d.Participation < 0 {
		return ErrDistributionNegative
	}
	if sum := d.First + d.Second + d.Third + d.Participation; sum != 100 {
		return fmt.Errorf("%w: got %d", ErrDistributionSum, sum)
	}
	if d.First < d.Second || d.Second < d.Third {
		return ErrDistributionOrder
	}
	return nil
}

// CalculatePrizes maps final standings to exact payouts. It is pure:
// identical inputs always produce identical outputs, and the amounts
// always sum to the pool exactly; no unit is lost or fabricated to
// rounding. Integer remainders are always absorbed by the best-placed
// member of the group they arose in.
func CalculatePrizes(prizePool string, d models.PrizeDistribution, standings []string) ([]models.PrizeResult, error) {
	if err := ValidateDistribution(d); err != nil {
		return nil, err
	}
	pool, ok := new(big.Int).SetString(prizePool, 10)
	if !ok || pool.Sign() < 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPool, prizePool)
	}

	switch n := len(standings); {
	case n == 0:
		return []models.PrizeResult{}, nil
	case n == 1:
		// A lone finisher takes the whole pool; there is no second
		// place to redistribute from.
		return []models.PrizeResult{
			result(standings[0], 1, pool, 100),
		}, nil
	case n == 2:
		return splitTwo(pool, d, standings), nil
	case n == 3:
		return splitThree(pool, d, standings), nil
	default:
		return splitMany(pool, d, standings), nil
	}
}

// splitTwo folds the third and participation shares evenly into the two
// real finishers; an odd leftover percentage point goes to first.
func splitTwo(pool *big.Int, d models.PrizeDistribution, standings []string) []models.PrizeResult {
	extra := d.Third + d.Participation
	firstPct := d.First + extra/2 + extra%2
	secondPct := d.Second + extra/2

	second := percentageOf(pool, secondPct)
	first := new(big.Int).Sub(pool, second)
	return []models.PrizeResult{
		result(standings[0], 1, first, float64(firstPct)),
		result(standings[1], 2, second, float64(secondPct)),
	}
}

// splitThree folds the participation share evenly into the podium;
// leftover percentage points go to first.
func splitThree(pool *big.Int, d models.PrizeDistribution, standings []string) []models.PrizeResult {
	share := d.Participation / 3
	firstPct := d.First + share + d.Participation%3
	secondPct := d.Second + share
	thirdPct := d.Third + share

	second := percentageOf(pool, secondPct)
	third := percentageOf(pool, thirdPct)
	first := new(big.Int).Sub(pool, second)
	first.Sub(first, third)
	return []models.PrizeResult{
		result(standings[0], 1, first, float64(firstPct)),
		result(standings[1], 2, second, float64(secondPct)),
		result(standings[2], 3, third, float64(thirdPct)),
	}
}

// splitMany pays the podium their literal percentages and divides the
// rest of the pool evenly across placements 4..n, the division remainder
// going to placement 4.
func splitMany(pool *big.Int, d models.PrizeDistribution, standings []string) []models.PrizeResult {
	first := percentageOf(pool, d.First)
	second := percentageOf(pool, d.Second)
	third := percentageOf(pool, d.Third)

	rest := new(big.Int).Sub(pool, first)
	rest.Sub(rest, second)
	rest.Sub(rest, third)

	others := int64(len(standings) - 3)
	share, remainder := new(big.Int).QuoRem(rest, big.NewInt(others), new(big.Int))
	otherPct := float64(d.Participation) / float64(others)

	results := []models.PrizeResult{
		result(standings[0], 1, first, float64(d.First)),
		result(standings[1], 2, second, float64(d.Second)),
		result(standings[2], 3, third, float64(d.Third)),
	}
	for i := 3; i < len(standings); i++ {
		amount := new(big.Int).Set(share)
		if i == 3 {
			amount.Add(amount, remainder)
		}
		results = append(results, result(standings[i], i+1, amount, otherPct))
	}
	return results
}

// percentageOf computes floor(pool * pct / 100) without leaving integers.
func percentageOf(pool *big.Int, pct int) *big.Int {
	amount := new(big.Int).Mul(pool, big.NewInt(int64(pct)))
	return amount.Quo(amount, oneHundred)
}

func result(playerID string, placement int, amount *big.Int, pct float64) models.PrizeResult {
	return models.PrizeResult{
		PlayerID:    playerID,
		Placement:   placement,
		PrizeAmount: amount.String(),
		Percentage:  pct,
	}
}
