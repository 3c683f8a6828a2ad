package models

import (
	"time"

	"github.com/mmynk/clubsettle/internal/money"
)

// SettlementStatus is the lifecycle state of a settlement.
type SettlementStatus string

const (
	// SettlementPending means at least one member has not paid.
	SettlementPending SettlementStatus = "pending"
	// SettlementCompleted means every member has paid.
	SettlementCompleted SettlementStatus = "completed"
)

// ParseSettlementStatus maps a stored status string to a SettlementStatus.
// Unknown values fall back to SettlementPending; the ledger re-derives the
// status from payment flags on the next mutation anyway.
func ParseSettlementStatus(s string) SettlementStatus {
	switch SettlementStatus(s) {
	case SettlementCompleted:
		return SettlementCompleted
	default:
		return SettlementPending
	}
}

// FeeBreakdown is the shared expense of one meeting.
type FeeBreakdown struct {
	GameFee  money.Money `json:"game_fee"`
	FoodFee  money.Money `json:"food_fee"`
	OtherFee money.Money `json:"other_fee"`
}

// Total returns the sum of all fees.
func (f FeeBreakdown) Total() money.Money {
	return f.GameFee + f.FoodFee + f.OtherFee
}

// Participant is a member included in a settlement's cost split.
type Participant struct {
	MemberID    string `json:"member_id"`
	ExcludeFood bool   `json:"exclude_food"`
}

// SettlementMember is one participant's share and payment state.
type SettlementMember struct {
	// MemberID references the club member. Unique within a settlement.
	MemberID string `json:"member_id"`

	// ExcludeFood removes the member from the food-fee share on the next recompute.
	ExcludeFood bool `json:"exclude_food"`

	// Amount is what the member owes, as of the last recompute. Never negative.
	Amount money.Money `json:"amount"`

	// IsPaid is true once the treasurer recorded the payment.
	IsPaid bool `json:"is_paid"`

	// PaidAt is set if and only if IsPaid is true.
	PaidAt *time.Time `json:"paid_at,omitempty"`
}

// Settlement is a single meeting's shared-expense split event.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string `json:"id"`

	// MeetingID is the meeting this settlement belongs to. At most one
	// settlement exists per meeting.
	MeetingID string `json:"meeting_id"`

	// Fees is the current fee breakdown.
	Fees FeeBreakdown `json:"fees"`

	// PerPerson is the uniform reference share of a member who is not
	// excluded from food. Individual amounts may differ.
	PerPerson money.Money `json:"per_person"`

	// Status is Completed only when every member has paid.
	Status SettlementStatus `json:"status"`

	// Members holds one entry per participant, in roster order.
	Members []SettlementMember `json:"members"`

	// CreatedAt and UpdatedAt are bookkeeping timestamps.
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FindMember returns the index of memberID in Members, or -1.
func (s *Settlement) FindMember(memberID string) int {
	for i := range s.Members {
		if s.Members[i].MemberID == memberID {
			return i
		}
	}
	return -1
}

// Participants returns the roster as calculator input.
func (s *Settlement) Participants() []Participant {
	out := make([]Participant, len(s.Members))
	for i, m := range s.Members {
		out[i] = Participant{MemberID: m.MemberID, ExcludeFood: m.ExcludeFood}
	}
	return out
}

// AllPaid reports whether every member has paid. False for an empty roster.
func (s *Settlement) AllPaid() bool {
	if len(s.Members) == 0 {
		return false
	}
	for _, m := range s.Members {
		if !m.IsPaid {
			return false
		}
	}
	return true
}

// AnyPaid reports whether at least one member has paid.
func (s *Settlement) AnyPaid() bool {
	for _, m := range s.Members {
		if m.IsPaid {
			return true
		}
	}
	return false
}

// UnpaidMembers returns the members that have not paid, in roster order.
func (s *Settlement) UnpaidMembers() []SettlementMember {
	var out []SettlementMember
	for _, m := range s.Members {
		if !m.IsPaid {
			out = append(out, m)
		}
	}
	return out
}

// UnpaidCount returns the number of members that have not paid.
func (s *Settlement) UnpaidCount() int {
	n := 0
	for _, m := range s.Members {
		if !m.IsPaid {
			n++
		}
	}
	return n
}

// Clone returns a deep copy, so callers can mutate without touching stored state.
func (s *Settlement) Clone() *Settlement {
	c := *s
	c.Members = make([]SettlementMember, len(s.Members))
	for i, m := range s.Members {
		if m.PaidAt != nil {
			t := *m.PaidAt
			m.PaidAt = &t
		}
		c.Members[i] = m
	}
	return &c
}
