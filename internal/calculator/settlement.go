package calculator

import (
	"github.com/mmynk/clubsettle/internal/apperr"
	"github.com/mmynk/clubsettle/internal/models"
	"github.com/mmynk/clubsettle/internal/money"
)

// DefaultRoundingUnit rounds shares to the nearest 1,000 won.
const DefaultRoundingUnit money.Money = 1000

// MemberAmount is the computed share for one participant.
type MemberAmount struct {
	MemberID string
	Amount   money.Money
}

// Result is the output of a settlement computation.
type Result struct {
	// Amounts holds one entry per participant, in input order.
	Amounts []MemberAmount

	// PerPerson is the share of a participant who is not excluded from food.
	PerPerson money.Money

	// GameOtherShare and FoodShare are the two rounded components.
	GameOtherShare money.Money
	FoodShare      money.Money
}

// Calculator splits meeting fees across participants.
type Calculator struct {
	unit money.Money
}

// New creates a Calculator that rounds shares to unit.
func New(unit money.Money) (*Calculator, error) {
	if unit <= 0 {
		return nil, apperr.InvalidArgument("rounding unit must be positive, got %d", unit)
	}
	return &Calculator{unit: unit}, nil
}

// Unit returns the rounding unit.
func (c *Calculator) Unit() money.Money {
	return c.unit
}

// Compute splits fees across participants.
//
// Algorithm:
//   - game + other fees are shared by every participant
//   - the food fee is shared only by participants not excluded from food
//     (0 when nobody eats, regardless of the food fee)
//   - each share is rounded to the unit independently; the rounding delta
//     against the fee total is kept, not redistributed
//
// Compute is pure: identical input yields identical output.
func (c *Calculator) Compute(fees models.FeeBreakdown, participants []models.Participant) (*Result, error) {
	if err := ValidateFees(fees); err != nil {
		return nil, err
	}
	if err := ValidateParticipants(participants); err != nil {
		return nil, err
	}

	foodEligible := 0
	for _, p := range participants {
		if !p.ExcludeFood {
			foodEligible++
		}
	}

	gameOther, err := money.DivideRounded(fees.GameFee+fees.OtherFee, len(participants), c.unit)
	if err != nil {
		return nil, err
	}

	var food money.Money
	if foodEligible > 0 {
		food, err = money.DivideRounded(fees.FoodFee, foodEligible, c.unit)
		if err != nil {
			return nil, err
		}
	}

	amounts := make([]MemberAmount, len(participants))
	for i, p := range participants {
		amount := gameOther
		if !p.ExcludeFood {
			amount += food
		}
		amounts[i] = MemberAmount{MemberID: p.MemberID, Amount: amount}
	}

	return &Result{
		Amounts:        amounts,
		PerPerson:      gameOther + food,
		GameOtherShare: gameOther,
		FoodShare:      food,
	}, nil
}

// MaxFee bounds each fee of a meeting.
const MaxFee money.Money = 1_000_000_000

// ValidateFees rejects negative fees and fees above MaxFee.
func ValidateFees(fees models.FeeBreakdown) error {
	switch {
	case fees.GameFee < 0:
		return apperr.InvalidArgument("game fee cannot be negative: %d", fees.GameFee)
	case fees.FoodFee < 0:
		return apperr.InvalidArgument("food fee cannot be negative: %d", fees.FoodFee)
	case fees.OtherFee < 0:
		return apperr.InvalidArgument("other fee cannot be negative: %d", fees.OtherFee)
	case fees.GameFee > MaxFee || fees.FoodFee > MaxFee || fees.OtherFee > MaxFee:
		return apperr.InvalidArgument("fee exceeds the maximum of %d", MaxFee)
	}
	return nil
}

// ValidateParticipants rejects an empty roster, blank IDs and duplicate IDs.
func ValidateParticipants(participants []models.Participant) error {
	if len(participants) == 0 {
		return apperr.InvalidArgument("must have at least one participant")
	}
	seen := make(map[string]bool, len(participants))
	for _, p := range participants {
		if p.MemberID == "" {
			return apperr.InvalidArgument("participant member ID is empty")
		}
		if seen[p.MemberID] {
			return apperr.InvalidArgument("duplicate participant %q", p.MemberID)
		}
		seen[p.MemberID] = true
	}
	return nil
}
