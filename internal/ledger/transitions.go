package ledger

import (
	"time"

	"github.com/mmynk/clubsettle/internal/apperr"
	"github.com/mmynk/clubsettle/internal/calculator"
	"github.com/mmynk/clubsettle/internal/models"
)

// The functions below mutate a loaded settlement in place. They never touch
// storage, so each can be tested on a plain struct.

func applyAmounts(s *models.Settlement, r *calculator.Result) {
	byMember := make(map[string]int, len(r.Amounts))
	for i, a := range r.Amounts {
		byMember[a.MemberID] = i
	}
	for i := range s.Members {
		if j, ok := byMember[s.Members[i].MemberID]; ok {
			s.Members[i].Amount = r.Amounts[j].Amount
		}
	}
	s.PerPerson = r.PerPerson
}

func addParticipant(s *models.Settlement, memberID string, excludeFood bool) error {
	if memberID == "" {
		return apperr.InvalidArgument("member ID is empty")
	}
	if s.FindMember(memberID) >= 0 {
		return apperr.AlreadyExists("member %s already participates in meeting %s", memberID, s.MeetingID)
	}
	// Amount stays 0 until the next recompute.
	s.Members = append(s.Members, models.SettlementMember{
		MemberID:    memberID,
		ExcludeFood: excludeFood,
	})
	return nil
}

func removeParticipant(s *models.Settlement, memberID string) error {
	i := s.FindMember(memberID)
	if i < 0 {
		return apperr.NotFound("member %s does not participate in meeting %s", memberID, s.MeetingID)
	}
	if len(s.Members) == 1 {
		return apperr.InvalidArgument("cannot remove the last participant of meeting %s", s.MeetingID)
	}
	s.Members = append(s.Members[:i], s.Members[i+1:]...)
	return nil
}

func setExcludeFood(s *models.Settlement, memberID string, exclude bool) error {
	i := s.FindMember(memberID)
	if i < 0 {
		return apperr.NotFound("member %s does not participate in meeting %s", memberID, s.MeetingID)
	}
	s.Members[i].ExcludeFood = exclude
	return nil
}

// markPaid keeps the original PaidAt when the member already paid.
func markPaid(s *models.Settlement, memberID string, at time.Time) error {
	if at.IsZero() {
		return apperr.InvalidArgument("payment timestamp is required")
	}
	i := s.FindMember(memberID)
	if i < 0 {
		return apperr.NotFound("member %s does not participate in meeting %s", memberID, s.MeetingID)
	}
	if s.Members[i].IsPaid {
		return nil
	}
	paidAt := at.UTC()
	s.Members[i].IsPaid = true
	s.Members[i].PaidAt = &paidAt
	return nil
}

func markUnpaid(s *models.Settlement, memberID string) error {
	i := s.FindMember(memberID)
	if i < 0 {
		return apperr.NotFound("member %s does not participate in meeting %s", memberID, s.MeetingID)
	}
	s.Members[i].IsPaid = false
	s.Members[i].PaidAt = nil
	return nil
}

// syncStatus derives the status from payment flags and returns the previous one.
func syncStatus(s *models.Settlement) models.SettlementStatus {
	prev := s.Status
	if s.AllPaid() {
		s.Status = models.SettlementCompleted
	} else {
		s.Status = models.SettlementPending
	}
	return prev
}
