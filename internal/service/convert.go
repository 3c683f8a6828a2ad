package service

import (
	"github.com/mmynk/clubsettle/internal/calculator"
	"github.com/mmynk/clubsettle/internal/models"
	"github.com/mmynk/clubsettle/internal/money"
	v1 "github.com/mmynk/clubsettle/pkg/clubsettlev1"
)

func feesFromPB(f v1.Fees) models.FeeBreakdown {
	return models.FeeBreakdown{
		GameFee:  money.Money(f.GameFee),
		FoodFee:  money.Money(f.FoodFee),
		OtherFee: money.Money(f.OtherFee),
	}
}

func participantsFromPB(ps []v1.Participant) []models.Participant {
	out := make([]models.Participant, len(ps))
	for i, p := range ps {
		out[i] = models.Participant{MemberID: p.MemberID, ExcludeFood: p.ExcludeFood}
	}
	return out
}

func settlementMembersToPB(ms []models.SettlementMember) []v1.SettlementMember {
	out := make([]v1.SettlementMember, len(ms))
	for i, m := range ms {
		out[i] = v1.SettlementMember{
			MemberID:    m.MemberID,
			ExcludeFood: m.ExcludeFood,
			Amount:      int64(m.Amount),
			IsPaid:      m.IsPaid,
			PaidAt:      m.PaidAt,
		}
	}
	return out
}

func settlementToPB(s *models.Settlement) *v1.Settlement {
	return &v1.Settlement{
		ID:        s.ID,
		MeetingID: s.MeetingID,
		Fees: v1.Fees{
			GameFee:  int64(s.Fees.GameFee),
			FoodFee:  int64(s.Fees.FoodFee),
			OtherFee: int64(s.Fees.OtherFee),
		},
		PerPerson: int64(s.PerPerson),
		Status:    string(s.Status),
		Members:   settlementMembersToPB(s.Members),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func summaryToPB(s calculator.CollectionSummary) v1.CollectionSummary {
	return v1.CollectionSummary{
		FeeTotal:      int64(s.FeeTotal),
		Expected:      int64(s.Expected),
		Collected:     int64(s.Collected),
		Outstanding:   int64(s.Outstanding),
		RoundingDelta: int64(s.RoundingDelta),
		PaidCount:     s.PaidCount,
		UnpaidCount:   s.UnpaidCount,
	}
}

func memberToPB(m *models.Member) *v1.Member {
	return &v1.Member{
		ID:       m.ID,
		Name:     m.Name,
		Gender:   string(m.Gender),
		Status:   string(m.Status),
		JoinedAt: m.JoinedAt,
	}
}
