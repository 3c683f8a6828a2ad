package calculator

import (
	"github.com/mmynk/clubsettle/internal/models"
	"github.com/mmynk/clubsettle/internal/money"
)

// CollectionSummary describes how far a settlement has been collected.
type CollectionSummary struct {
	FeeTotal    money.Money // Sum of all fees
	Expected    money.Money // Sum of member amounts
	Collected   money.Money // Sum of amounts of paid members
	Outstanding money.Money // Expected - Collected

	// RoundingDelta is Expected - FeeTotal. Positive means the rounded shares
	// collect more than the fees (surplus), negative means a deficit.
	RoundingDelta money.Money

	PaidCount   int
	UnpaidCount int
}

// Summarize aggregates a settlement's amounts and payment flags.
//
// Algorithm:
//   - Expected: every member's current amount
//   - Collected: amounts of members marked paid
//   - RoundingDelta: what uniform rounded shares over/under-collect
func Summarize(s *models.Settlement) CollectionSummary {
	sum := CollectionSummary{FeeTotal: s.Fees.Total()}

	for _, m := range s.Members {
		sum.Expected += m.Amount
		if m.IsPaid {
			sum.Collected += m.Amount
			sum.PaidCount++
		} else {
			sum.UnpaidCount++
		}
	}

	sum.Outstanding = sum.Expected - sum.Collected
	sum.RoundingDelta = sum.Expected - sum.FeeTotal
	return sum
}
