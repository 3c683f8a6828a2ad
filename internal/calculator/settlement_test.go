package calculator

import (
	"errors"
	"reflect"
	"testing"

	"github.com/mmynk/clubsettle/internal/apperr"
	"github.com/mmynk/clubsettle/internal/models"
	"github.com/mmynk/clubsettle/internal/money"
)

func amountsByMember(r *Result) map[string]money.Money {
	out := make(map[string]money.Money, len(r.Amounts))
	for _, a := range r.Amounts {
		out[a.MemberID] = a.Amount
	}
	return out
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name         string
		unit         money.Money
		fees         models.FeeBreakdown
		participants []models.Participant
		wantErr      error
		validateFunc func(t *testing.T, r *Result)
	}{
		{
			name: "four players, one skips the meal",
			unit: 1000,
			fees: models.FeeBreakdown{GameFee: 30000, FoodFee: 12000},
			participants: []models.Participant{
				{MemberID: "alice"},
				{MemberID: "bob"},
				{MemberID: "carol"},
				{MemberID: "dave", ExcludeFood: true},
			},
			validateFunc: func(t *testing.T, r *Result) {
				// 30000/4 = 7500 -> 8000; 12000/3 = 4000
				got := amountsByMember(r)
				for _, id := range []string{"alice", "bob", "carol"} {
					if got[id] != 12000 {
						t.Errorf("%s amount = %d, want 12000", id, got[id])
					}
				}
				if got["dave"] != 8000 {
					t.Errorf("dave amount = %d, want 8000", got["dave"])
				}
				if r.PerPerson != 12000 {
					t.Errorf("PerPerson = %d, want 12000", r.PerPerson)
				}
			},
		},
		{
			name: "other fee shared with game fee",
			unit: 100,
			fees: models.FeeBreakdown{GameFee: 20000, FoodFee: 0, OtherFee: 1000},
			participants: []models.Participant{
				{MemberID: "alice"},
				{MemberID: "bob"},
				{MemberID: "carol"},
			},
			validateFunc: func(t *testing.T, r *Result) {
				// 21000/3 = 7000
				for id, amount := range amountsByMember(r) {
					if amount != 7000 {
						t.Errorf("%s amount = %d, want 7000", id, amount)
					}
				}
			},
		},
		{
			name: "everyone excluded from food ignores food fee",
			unit: 1000,
			fees: models.FeeBreakdown{GameFee: 10000, FoodFee: 50000},
			participants: []models.Participant{
				{MemberID: "alice", ExcludeFood: true},
				{MemberID: "bob", ExcludeFood: true},
			},
			validateFunc: func(t *testing.T, r *Result) {
				for id, amount := range amountsByMember(r) {
					if amount != 5000 {
						t.Errorf("%s amount = %d, want 5000", id, amount)
					}
				}
				if r.FoodShare != 0 {
					t.Errorf("FoodShare = %d, want 0", r.FoodShare)
				}
				if r.PerPerson != 5000 {
					t.Errorf("PerPerson = %d, want 5000", r.PerPerson)
				}
			},
		},
		{
			name: "amounts keep input order",
			unit: 1000,
			fees: models.FeeBreakdown{GameFee: 9000},
			participants: []models.Participant{
				{MemberID: "zed"},
				{MemberID: "amy"},
				{MemberID: "kim"},
			},
			validateFunc: func(t *testing.T, r *Result) {
				want := []string{"zed", "amy", "kim"}
				for i, a := range r.Amounts {
					if a.MemberID != want[i] {
						t.Errorf("Amounts[%d] = %s, want %s", i, a.MemberID, want[i])
					}
				}
			},
		},
		{
			name:    "empty roster",
			unit:    1000,
			fees:    models.FeeBreakdown{GameFee: 1000},
			wantErr: apperr.ErrInvalidArgument,
		},
		{
			name:         "fee above maximum",
			unit:         1000,
			fees:         models.FeeBreakdown{FoodFee: MaxFee + 1},
			participants: []models.Participant{{MemberID: "alice"}},
			wantErr:      apperr.ErrInvalidArgument,
		},
		{
			name:         "negative game fee",
			unit:         1000,
			fees:         models.FeeBreakdown{GameFee: -1},
			participants: []models.Participant{{MemberID: "alice"}},
			wantErr:      apperr.ErrInvalidArgument,
		},
		{
			name:         "negative food fee",
			unit:         1000,
			fees:         models.FeeBreakdown{FoodFee: -1000},
			participants: []models.Participant{{MemberID: "alice"}},
			wantErr:      apperr.ErrInvalidArgument,
		},
		{
			name:         "negative other fee",
			unit:         1000,
			fees:         models.FeeBreakdown{OtherFee: -5},
			participants: []models.Participant{{MemberID: "alice"}},
			wantErr:      apperr.ErrInvalidArgument,
		},
		{
			name:         "duplicate participant",
			unit:         1000,
			fees:         models.FeeBreakdown{GameFee: 1000},
			participants: []models.Participant{{MemberID: "alice"}, {MemberID: "alice"}},
			wantErr:      apperr.ErrInvalidArgument,
		},
		{
			name:         "blank member ID",
			unit:         1000,
			fees:         models.FeeBreakdown{GameFee: 1000},
			participants: []models.Participant{{MemberID: ""}},
			wantErr:      apperr.ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc, err := New(tt.unit)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			r, err := calc.Compute(tt.fees, tt.participants)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Compute() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Compute() error = %v", err)
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, r)
			}
		})
	}
}

func TestNewRejectsNonPositiveUnit(t *testing.T) {
	for _, unit := range []money.Money{0, -1000} {
		if _, err := New(unit); !errors.Is(err, apperr.ErrInvalidArgument) {
			t.Errorf("New(%d) error = %v, want ErrInvalidArgument", unit, err)
		}
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	calc, err := New(DefaultRoundingUnit)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	feeGrid := []models.FeeBreakdown{
		{},
		{GameFee: 30000, FoodFee: 12000},
		{GameFee: 17000, FoodFee: 33333, OtherFee: 2500},
		{GameFee: 1, FoodFee: 999999, OtherFee: 7},
	}
	for _, fees := range feeGrid {
		for n := 1; n <= 7; n++ {
			participants := make([]models.Participant, n)
			for i := range participants {
				participants[i] = models.Participant{
					MemberID:    string(rune('a' + i)),
					ExcludeFood: i%3 == 2,
				}
			}

			first, err := calc.Compute(fees, participants)
			if err != nil {
				t.Fatalf("Compute() error = %v", err)
			}
			second, err := calc.Compute(fees, participants)
			if err != nil {
				t.Fatalf("Compute() error = %v", err)
			}
			if !reflect.DeepEqual(first, second) {
				t.Errorf("Compute(%+v, n=%d) not idempotent: %+v vs %+v", fees, n, first, second)
			}

			// Every non-excluded member pays exactly PerPerson, so their mean
			// rounds to PerPerson as well.
			var sum money.Money
			count := 0
			for i, a := range first.Amounts {
				if !participants[i].ExcludeFood {
					sum += a.Amount
					count++
				}
			}
			if count > 0 {
				mean, err := money.DivideRounded(sum, count, calc.Unit())
				if err != nil {
					t.Fatalf("DivideRounded() error = %v", err)
				}
				if mean != first.PerPerson {
					t.Errorf("mean non-excluded share = %d, PerPerson = %d", mean, first.PerPerson)
				}
			}
		}
	}
}
