// Package ledger tracks a meeting settlement over its settle-up period.
//
// Every mutation of one settlement runs under a per-meeting lock and follows
// load -> mutate -> save, so the Pending/Completed transition and the
// "no recompute while anything is paid" guard never interleave. Settlements
// of different meetings do not block each other.
//
// Roster and fee mutations never recompute amounts on their own; callers
// run RecomputeAmounts explicitly.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/clubsettle/internal/apperr"
	"github.com/mmynk/clubsettle/internal/calculator"
	"github.com/mmynk/clubsettle/internal/metrics"
	"github.com/mmynk/clubsettle/internal/models"
	"github.com/mmynk/clubsettle/internal/storage"
)

// Store is the subset of storage.Store the ledger needs.
type Store interface {
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error
	GetSettlementByMeeting(ctx context.Context, meetingID string) (*models.Settlement, error)
	SaveSettlement(ctx context.Context, settlement *models.Settlement) error
	DeleteSettlement(ctx context.Context, meetingID string) error
	GetMembersByIDs(ctx context.Context, ids []string) (map[string]*models.Member, error)
}

// Ledger manages settlements.
type Ledger struct {
	store   Store
	calc    *calculator.Calculator
	locks   *keyedMutex
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Ledger) { l.metrics = m }
}

// WithClock sets the clock used for CreatedAt/UpdatedAt bookkeeping.
// Payment timestamps always come from the caller.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// New creates a Ledger backed by store.
func New(store Store, calc *calculator.Calculator, opts ...Option) *Ledger {
	l := &Ledger{
		store:  store,
		calc:   calc,
		locks:  newKeyedMutex(),
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Create computes amounts and persists a Pending settlement for meetingID.
func (l *Ledger) Create(ctx context.Context, meetingID string, fees models.FeeBreakdown, participants []models.Participant) (s *models.Settlement, err error) {
	defer func() { l.metrics.LedgerOp("create", err) }()

	if meetingID == "" {
		return nil, apperr.InvalidArgument("meeting ID is empty")
	}
	result, err := l.calc.Compute(fees, participants)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(participants))
	for i, p := range participants {
		ids[i] = p.MemberID
	}
	if err := l.verifyMembers(ctx, ids...); err != nil {
		return nil, err
	}

	unlock, err := l.locks.Lock(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	existing, err := l.store.GetSettlementByMeeting(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load settlement: %w", err)
	}
	if existing != nil {
		return nil, apperr.AlreadyExists("meeting %s already has settlement %s", meetingID, existing.ID)
	}

	now := l.now().UTC()
	s = &models.Settlement{
		MeetingID: meetingID,
		Fees:      fees,
		Status:    models.SettlementPending,
		Members:   make([]models.SettlementMember, len(participants)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for i, p := range participants {
		s.Members[i] = models.SettlementMember{MemberID: p.MemberID, ExcludeFood: p.ExcludeFood}
	}
	applyAmounts(s, result)

	if err := l.store.CreateSettlement(ctx, s); err != nil {
		if errors.Is(err, storage.ErrSettlementExists) {
			return nil, apperr.AlreadyExists("meeting %s already has a settlement", meetingID)
		}
		return nil, fmt.Errorf("failed to create settlement: %w", err)
	}

	l.logger.Info("Settlement created",
		"meeting_id", meetingID,
		"settlement_id", s.ID,
		"participants", len(s.Members),
		"per_person", int64(s.PerPerson),
	)
	return s, nil
}

// Get returns the settlement of meetingID.
func (l *Ledger) Get(ctx context.Context, meetingID string) (*models.Settlement, error) {
	return l.load(ctx, meetingID)
}

// UpdateFees replaces the fee breakdown. Amounts are not recomputed.
func (l *Ledger) UpdateFees(ctx context.Context, meetingID string, fees models.FeeBreakdown) (*models.Settlement, error) {
	if err := calculator.ValidateFees(fees); err != nil {
		l.metrics.LedgerOp("update_fees", err)
		return nil, err
	}
	return l.mutate(ctx, "update_fees", meetingID, func(s *models.Settlement) error {
		s.Fees = fees
		return nil
	})
}

// AddParticipant appends memberID to the roster with amount 0.
// Fails with AlreadyExists for a duplicate and NotFound for an unknown member.
func (l *Ledger) AddParticipant(ctx context.Context, meetingID, memberID string, excludeFood bool) (*models.Settlement, error) {
	if memberID == "" {
		err := apperr.InvalidArgument("member ID is empty")
		l.metrics.LedgerOp("add_participant", err)
		return nil, err
	}
	if err := l.verifyMembers(ctx, memberID); err != nil {
		l.metrics.LedgerOp("add_participant", err)
		return nil, err
	}
	return l.mutate(ctx, "add_participant", meetingID, func(s *models.Settlement) error {
		return addParticipant(s, memberID, excludeFood)
	})
}

// RemoveParticipant drops memberID from the roster.
func (l *Ledger) RemoveParticipant(ctx context.Context, meetingID, memberID string) (*models.Settlement, error) {
	return l.mutate(ctx, "remove_participant", meetingID, func(s *models.Settlement) error {
		return removeParticipant(s, memberID)
	})
}

// SetExcludeFood changes a participant's food exclusion. Amounts are not recomputed.
func (l *Ledger) SetExcludeFood(ctx context.Context, meetingID, memberID string, exclude bool) (*models.Settlement, error) {
	return l.mutate(ctx, "set_exclude_food", meetingID, func(s *models.Settlement) error {
		return setExcludeFood(s, memberID, exclude)
	})
}

// RecomputeAmounts re-runs the calculator over the current fees and roster.
// It fails with Conflict while any member is marked paid, so an amount that
// was already collected never changes silently.
func (l *Ledger) RecomputeAmounts(ctx context.Context, meetingID string) (*models.Settlement, error) {
	return l.mutate(ctx, "recompute", meetingID, func(s *models.Settlement) error {
		if s.AnyPaid() {
			paid := len(s.Members) - s.UnpaidCount()
			return apperr.Conflict("meeting %s has %d paid member(s); unmark payments before recomputing", meetingID, paid)
		}
		result, err := l.calc.Compute(s.Fees, s.Participants())
		if err != nil {
			return err
		}
		applyAmounts(s, result)
		return nil
	})
}

// MarkPaid records memberID's payment at the given time. Marking the last
// unpaid member completes the settlement.
func (l *Ledger) MarkPaid(ctx context.Context, meetingID, memberID string, at time.Time) (*models.Settlement, error) {
	return l.mutate(ctx, "mark_paid", meetingID, func(s *models.Settlement) error {
		return markPaid(s, memberID, at)
	})
}

// MarkUnpaid reverses memberID's payment. A completed settlement reopens.
func (l *Ledger) MarkUnpaid(ctx context.Context, meetingID, memberID string) (*models.Settlement, error) {
	return l.mutate(ctx, "mark_unpaid", meetingID, func(s *models.Settlement) error {
		return markUnpaid(s, memberID)
	})
}

// UnpaidCount returns how many members of meetingID have not paid.
func (l *Ledger) UnpaidCount(ctx context.Context, meetingID string) (int, error) {
	s, err := l.load(ctx, meetingID)
	if err != nil {
		return 0, err
	}
	return s.UnpaidCount(), nil
}

// UnpaidMembers returns the unpaid members of meetingID in roster order.
func (l *Ledger) UnpaidMembers(ctx context.Context, meetingID string) ([]models.SettlementMember, error) {
	s, err := l.load(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	return s.UnpaidMembers(), nil
}

// Summary aggregates collection progress of meetingID.
func (l *Ledger) Summary(ctx context.Context, meetingID string) (calculator.CollectionSummary, error) {
	s, err := l.load(ctx, meetingID)
	if err != nil {
		return calculator.CollectionSummary{}, err
	}
	return calculator.Summarize(s), nil
}

// Delete removes the settlement of meetingID. It is not a state transition.
func (l *Ledger) Delete(ctx context.Context, meetingID string) (err error) {
	defer func() { l.metrics.LedgerOp("delete", err) }()

	unlock, err := l.locks.Lock(ctx, meetingID)
	if err != nil {
		return err
	}
	defer unlock()

	if err := l.store.DeleteSettlement(ctx, meetingID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.NotFound("meeting %s has no settlement", meetingID)
		}
		return fmt.Errorf("failed to delete settlement: %w", err)
	}
	l.logger.Info("Settlement deleted", "meeting_id", meetingID)
	return nil
}

// mutate loads the settlement under the meeting lock, applies fn, re-derives
// the status and saves. Nothing is written when fn fails.
func (l *Ledger) mutate(ctx context.Context, op, meetingID string, fn func(*models.Settlement) error) (s *models.Settlement, err error) {
	defer func() { l.metrics.LedgerOp(op, err) }()

	unlock, err := l.locks.Lock(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	s, err = l.load(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	if err := fn(s); err != nil {
		l.logger.Debug("Settlement mutation refused", "op", op, "meeting_id", meetingID, "error", err)
		return nil, err
	}

	prev := syncStatus(s)
	s.UpdatedAt = l.now().UTC()

	if err := l.store.SaveSettlement(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to save settlement: %w", err)
	}

	switch {
	case prev != models.SettlementCompleted && s.Status == models.SettlementCompleted:
		l.metrics.SettlementCompleted()
		l.logger.Info("Settlement completed", "meeting_id", meetingID, "settlement_id", s.ID)
	case prev == models.SettlementCompleted && s.Status == models.SettlementPending:
		l.logger.Info("Settlement reopened", "meeting_id", meetingID, "settlement_id", s.ID, "op", op)
	}
	return s, nil
}

func (l *Ledger) load(ctx context.Context, meetingID string) (*models.Settlement, error) {
	s, err := l.store.GetSettlementByMeeting(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load settlement: %w", err)
	}
	if s == nil {
		return nil, apperr.NotFound("meeting %s has no settlement", meetingID)
	}
	return s, nil
}

func (l *Ledger) verifyMembers(ctx context.Context, ids ...string) error {
	members, err := l.store.GetMembersByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load members: %w", err)
	}
	for _, id := range ids {
		if _, ok := members[id]; !ok {
			return apperr.NotFound("unknown member %q", id)
		}
	}
	return nil
}
