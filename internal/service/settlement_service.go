package service

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/clubsettle/internal/ledger"
	"github.com/mmynk/clubsettle/internal/middleware"
	"github.com/mmynk/clubsettle/internal/models"
	v1 "github.com/mmynk/clubsettle/pkg/clubsettlev1"
	"github.com/mmynk/clubsettle/pkg/clubsettlev1/clubsettlev1connect"
)

var _ clubsettlev1connect.SettlementServiceHandler = (*SettlementService)(nil)

// SettlementService implements the Connect SettlementService on top of the ledger.
// Reads are open to every authenticated caller; mutations need the treasurer role.
type SettlementService struct {
	ledger *ledger.Ledger
	now    func() time.Time
}

// NewSettlementService creates a SettlementService.
func NewSettlementService(l *ledger.Ledger) *SettlementService {
	return &SettlementService{ledger: l, now: time.Now}
}

func settlementResponse(s *models.Settlement) *connect.Response[v1.SettlementResponse] {
	return connect.NewResponse(&v1.SettlementResponse{Settlement: settlementToPB(s)})
}

// CreateSettlement computes and stores the settlement of a meeting.
func (s *SettlementService) CreateSettlement(ctx context.Context, req *connect.Request[v1.CreateSettlementRequest]) (*connect.Response[v1.SettlementResponse], error) {
	if err := middleware.RequireTreasurer(ctx); err != nil {
		return nil, err
	}
	slog.Info("CreateSettlement request received",
		"meeting_id", req.Msg.MeetingID,
		"participants_count", len(req.Msg.Participants),
	)

	settlement, err := s.ledger.Create(ctx, req.Msg.MeetingID, feesFromPB(req.Msg.Fees), participantsFromPB(req.Msg.Participants))
	if err != nil {
		return nil, toConnectError("CreateSettlement", err)
	}
	return settlementResponse(settlement), nil
}

// GetSettlement returns the settlement of a meeting.
func (s *SettlementService) GetSettlement(ctx context.Context, req *connect.Request[v1.GetSettlementRequest]) (*connect.Response[v1.SettlementResponse], error) {
	settlement, err := s.ledger.Get(ctx, req.Msg.MeetingID)
	if err != nil {
		return nil, toConnectError("GetSettlement", err)
	}
	return settlementResponse(settlement), nil
}

// UpdateFees replaces the fee breakdown without recomputing amounts.
func (s *SettlementService) UpdateFees(ctx context.Context, req *connect.Request[v1.UpdateFeesRequest]) (*connect.Response[v1.SettlementResponse], error) {
	if err := middleware.RequireTreasurer(ctx); err != nil {
		return nil, err
	}
	settlement, err := s.ledger.UpdateFees(ctx, req.Msg.MeetingID, feesFromPB(req.Msg.Fees))
	if err != nil {
		return nil, toConnectError("UpdateFees", err)
	}
	return settlementResponse(settlement), nil
}

// AddParticipant adds a member to the roster without recomputing amounts.
func (s *SettlementService) AddParticipant(ctx context.Context, req *connect.Request[v1.AddParticipantRequest]) (*connect.Response[v1.SettlementResponse], error) {
	if err := middleware.RequireTreasurer(ctx); err != nil {
		return nil, err
	}
	settlement, err := s.ledger.AddParticipant(ctx, req.Msg.MeetingID, req.Msg.MemberID, req.Msg.ExcludeFood)
	if err != nil {
		return nil, toConnectError("AddParticipant", err)
	}
	return settlementResponse(settlement), nil
}

// RemoveParticipant removes a member from the roster without recomputing amounts.
func (s *SettlementService) RemoveParticipant(ctx context.Context, req *connect.Request[v1.RemoveParticipantRequest]) (*connect.Response[v1.SettlementResponse], error) {
	if err := middleware.RequireTreasurer(ctx); err != nil {
		return nil, err
	}
	settlement, err := s.ledger.RemoveParticipant(ctx, req.Msg.MeetingID, req.Msg.MemberID)
	if err != nil {
		return nil, toConnectError("RemoveParticipant", err)
	}
	return settlementResponse(settlement), nil
}

// SetExcludeFood changes a participant's food exclusion without recomputing amounts.
func (s *SettlementService) SetExcludeFood(ctx context.Context, req *connect.Request[v1.SetExcludeFoodRequest]) (*connect.Response[v1.SettlementResponse], error) {
	if err := middleware.RequireTreasurer(ctx); err != nil {
		return nil, err
	}
	settlement, err := s.ledger.SetExcludeFood(ctx, req.Msg.MeetingID, req.Msg.MemberID, req.Msg.ExcludeFood)
	if err != nil {
		return nil, toConnectError("SetExcludeFood", err)
	}
	return settlementResponse(settlement), nil
}

// RecomputeAmounts re-runs the split. Fails with FailedPrecondition while any
// member is paid.
func (s *SettlementService) RecomputeAmounts(ctx context.Context, req *connect.Request[v1.RecomputeAmountsRequest]) (*connect.Response[v1.SettlementResponse], error) {
	if err := middleware.RequireTreasurer(ctx); err != nil {
		return nil, err
	}
	settlement, err := s.ledger.RecomputeAmounts(ctx, req.Msg.MeetingID)
	if err != nil {
		return nil, toConnectError("RecomputeAmounts", err)
	}
	return settlementResponse(settlement), nil
}

// MarkPaid records a member's payment.
func (s *SettlementService) MarkPaid(ctx context.Context, req *connect.Request[v1.MarkPaidRequest]) (*connect.Response[v1.SettlementResponse], error) {
	if err := middleware.RequireTreasurer(ctx); err != nil {
		return nil, err
	}
	paidAt := s.now()
	if req.Msg.PaidAt != nil {
		paidAt = *req.Msg.PaidAt
	}
	settlement, err := s.ledger.MarkPaid(ctx, req.Msg.MeetingID, req.Msg.MemberID, paidAt)
	if err != nil {
		return nil, toConnectError("MarkPaid", err)
	}
	return settlementResponse(settlement), nil
}

// MarkUnpaid reverses a member's payment.
func (s *SettlementService) MarkUnpaid(ctx context.Context, req *connect.Request[v1.MarkUnpaidRequest]) (*connect.Response[v1.SettlementResponse], error) {
	if err := middleware.RequireTreasurer(ctx); err != nil {
		return nil, err
	}
	settlement, err := s.ledger.MarkUnpaid(ctx, req.Msg.MeetingID, req.Msg.MemberID)
	if err != nil {
		return nil, toConnectError("MarkUnpaid", err)
	}
	return settlementResponse(settlement), nil
}

// ListUnpaid returns the members who have not paid yet.
func (s *SettlementService) ListUnpaid(ctx context.Context, req *connect.Request[v1.ListUnpaidRequest]) (*connect.Response[v1.ListUnpaidResponse], error) {
	unpaid, err := s.ledger.UnpaidMembers(ctx, req.Msg.MeetingID)
	if err != nil {
		return nil, toConnectError("ListUnpaid", err)
	}
	return connect.NewResponse(&v1.ListUnpaidResponse{
		Members: settlementMembersToPB(unpaid),
		Count:   len(unpaid),
	}), nil
}

// GetSummary returns the collection progress of a settlement.
func (s *SettlementService) GetSummary(ctx context.Context, req *connect.Request[v1.GetSummaryRequest]) (*connect.Response[v1.GetSummaryResponse], error) {
	summary, err := s.ledger.Summary(ctx, req.Msg.MeetingID)
	if err != nil {
		return nil, toConnectError("GetSummary", err)
	}
	return connect.NewResponse(&v1.GetSummaryResponse{Summary: summaryToPB(summary)}), nil
}

// DeleteSettlement removes a settlement.
func (s *SettlementService) DeleteSettlement(ctx context.Context, req *connect.Request[v1.DeleteSettlementRequest]) (*connect.Response[v1.DeleteSettlementResponse], error) {
	if err := middleware.RequireTreasurer(ctx); err != nil {
		return nil, err
	}
	slog.Info("DeleteSettlement request received",
		"meeting_id", req.Msg.MeetingID,
		"member_id", middleware.GetMemberID(ctx),
	)
	if err := s.ledger.Delete(ctx, req.Msg.MeetingID); err != nil {
		return nil, toConnectError("DeleteSettlement", err)
	}
	return connect.NewResponse(&v1.DeleteSettlementResponse{}), nil
}
