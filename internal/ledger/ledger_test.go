package ledger

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mmynk/clubsettle/internal/apperr"
	"github.com/mmynk/clubsettle/internal/calculator"
	"github.com/mmynk/clubsettle/internal/models"
	"github.com/mmynk/clubsettle/internal/storage/sqlite"
)

var fixedNow = time.Date(2026, 6, 13, 19, 30, 0, 0, time.UTC)

// setupLedger creates a ledger over a temp SQLite database with members
// alice, bob, carol, dave and erin.
func setupLedger(t *testing.T) *Ledger {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	for _, id := range []string{"alice", "bob", "carol", "dave", "erin"} {
		if err := store.CreateMember(ctx, &models.Member{ID: id, Name: id}); err != nil {
			t.Fatalf("failed to create member %s: %v", id, err)
		}
	}

	calc, err := calculator.New(1000)
	if err != nil {
		t.Fatalf("failed to create calculator: %v", err)
	}
	return New(store, calc, WithClock(func() time.Time { return fixedNow }))
}

func fourPlayers() []models.Participant {
	return []models.Participant{
		{MemberID: "alice"},
		{MemberID: "bob"},
		{MemberID: "carol"},
		{MemberID: "dave", ExcludeFood: true},
	}
}

var scenarioFees = models.FeeBreakdown{GameFee: 30000, FoodFee: 12000}

func assertStatusInvariant(t *testing.T, s *models.Settlement) {
	t.Helper()
	if (s.Status == models.SettlementCompleted) != s.AllPaid() {
		t.Fatalf("status %s inconsistent with payments %+v", s.Status, s.Members)
	}
	for _, m := range s.Members {
		if m.IsPaid != (m.PaidAt != nil) {
			t.Fatalf("member %s: IsPaid=%v but PaidAt=%v", m.MemberID, m.IsPaid, m.PaidAt)
		}
		if m.Amount < 0 {
			t.Fatalf("member %s has negative amount %d", m.MemberID, m.Amount)
		}
	}
}

func amountOf(t *testing.T, s *models.Settlement, memberID string) int64 {
	t.Helper()
	i := s.FindMember(memberID)
	if i < 0 {
		t.Fatalf("member %s not in settlement", memberID)
	}
	return int64(s.Members[i].Amount)
}

func TestCreate(t *testing.T) {
	l := setupLedger(t)
	ctx := context.Background()

	s, err := l.Create(ctx, "meeting-1", scenarioFees, fourPlayers())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if s.ID == "" {
		t.Error("expected settlement ID")
	}
	if s.Status != models.SettlementPending {
		t.Errorf("status = %s, want pending", s.Status)
	}
	if s.PerPerson != 12000 {
		t.Errorf("per person = %d, want 12000", s.PerPerson)
	}
	for _, id := range []string{"alice", "bob", "carol"} {
		if got := amountOf(t, s, id); got != 12000 {
			t.Errorf("%s amount = %d, want 12000", id, got)
		}
	}
	if got := amountOf(t, s, "dave"); got != 8000 {
		t.Errorf("dave amount = %d, want 8000", got)
	}
	if !s.CreatedAt.Equal(fixedNow) {
		t.Errorf("CreatedAt = %v, want %v", s.CreatedAt, fixedNow)
	}

	stored, err := l.Get(ctx, "meeting-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if stored.ID != s.ID || len(stored.Members) != 4 {
		t.Errorf("stored settlement mismatch: %+v", stored)
	}
}

func TestCreateErrors(t *testing.T) {
	l := setupLedger(t)
	ctx := context.Background()

	if _, err := l.Create(ctx, "meeting-1", scenarioFees, fourPlayers()); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	tests := []struct {
		name         string
		meetingID    string
		fees         models.FeeBreakdown
		participants []models.Participant
		wantErr      error
	}{
		{"second settlement for meeting", "meeting-1", scenarioFees, fourPlayers(), apperr.ErrAlreadyExists},
		{"empty roster", "meeting-2", scenarioFees, nil, apperr.ErrInvalidArgument},
		{"negative fee", "meeting-2", models.FeeBreakdown{FoodFee: -1}, fourPlayers(), apperr.ErrInvalidArgument},
		{"unknown member", "meeting-2", scenarioFees, []models.Participant{{MemberID: "zoe"}}, apperr.ErrNotFound},
		{"empty meeting ID", "", scenarioFees, fourPlayers(), apperr.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Create(ctx, tt.meetingID, tt.fees, tt.participants)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMarkPaidCompletesAndReopens(t *testing.T) {
	l := setupLedger(t)
	ctx := context.Background()

	if _, err := l.Create(ctx, "m", scenarioFees, fourPlayers()); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	paidAt := time.Date(2026, 6, 13, 22, 0, 0, 0, time.UTC)
	for _, id := range []string{"alice", "bob", "carol"} {
		s, err := l.MarkPaid(ctx, "m", id, paidAt)
		if err != nil {
			t.Fatalf("MarkPaid(%s) failed: %v", id, err)
		}
		assertStatusInvariant(t, s)
		if s.Status != models.SettlementPending {
			t.Fatalf("status after paying %s = %s, want pending", id, s.Status)
		}
	}

	s, err := l.MarkPaid(ctx, "m", "dave", paidAt)
	if err != nil {
		t.Fatalf("MarkPaid(dave) failed: %v", err)
	}
	assertStatusInvariant(t, s)
	if s.Status != models.SettlementCompleted {
		t.Fatalf("status after last payment = %s, want completed", s.Status)
	}

	count, err := l.UnpaidCount(ctx, "m")
	if err != nil || count != 0 {
		t.Errorf("UnpaidCount = %d, %v; want 0", count, err)
	}

	s, err = l.MarkUnpaid(ctx, "m", "bob")
	if err != nil {
		t.Fatalf("MarkUnpaid failed: %v", err)
	}
	assertStatusInvariant(t, s)
	if s.Status != models.SettlementPending {
		t.Fatalf("status after unmark = %s, want pending", s.Status)
	}

	unpaid, err := l.UnpaidMembers(ctx, "m")
	if err != nil {
		t.Fatalf("UnpaidMembers failed: %v", err)
	}
	if len(unpaid) != 1 || unpaid[0].MemberID != "bob" {
		t.Errorf("UnpaidMembers = %+v, want only bob", unpaid)
	}
}

func TestMarkPaidKeepsOriginalTimestamp(t *testing.T) {
	l := setupLedger(t)
	ctx := context.Background()

	if _, err := l.Create(ctx, "m", scenarioFees, fourPlayers()); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	first := time.Date(2026, 6, 13, 22, 0, 0, 0, time.UTC)
	if _, err := l.MarkPaid(ctx, "m", "alice", first); err != nil {
		t.Fatalf("MarkPaid failed: %v", err)
	}
	s, err := l.MarkPaid(ctx, "m", "alice", first.Add(time.Hour))
	if err != nil {
		t.Fatalf("second MarkPaid failed: %v", err)
	}
	i := s.FindMember("alice")
	if !s.Members[i].PaidAt.Equal(first) {
		t.Errorf("PaidAt = %v, want original %v", s.Members[i].PaidAt, first)
	}
}

func TestPaymentErrors(t *testing.T) {
	l := setupLedger(t)
	ctx := context.Background()

	if _, err := l.Create(ctx, "m", scenarioFees, fourPlayers()); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	at := time.Date(2026, 6, 13, 22, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		call    func() error
		wantErr error
	}{
		{"mark paid unknown member", func() error { _, err := l.MarkPaid(ctx, "m", "erin", at); return err }, apperr.ErrNotFound},
		{"mark unpaid unknown member", func() error { _, err := l.MarkUnpaid(ctx, "m", "erin"); return err }, apperr.ErrNotFound},
		{"mark paid zero time", func() error { _, err := l.MarkPaid(ctx, "m", "alice", time.Time{}); return err }, apperr.ErrInvalidArgument},
		{"mark paid unknown meeting", func() error { _, err := l.MarkPaid(ctx, "nope", "alice", at); return err }, apperr.ErrNotFound},
		{"unpaid count unknown meeting", func() error { _, err := l.UnpaidCount(ctx, "nope"); return err }, apperr.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRecomputeAmounts(t *testing.T) {
	l := setupLedger(t)
	ctx := context.Background()

	if _, err := l.Create(ctx, "m", scenarioFees, fourPlayers()); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	t.Run("fee edit does not recompute by itself", func(t *testing.T) {
		s, err := l.UpdateFees(ctx, "m", models.FeeBreakdown{GameFee: 40000, FoodFee: 12000})
		if err != nil {
			t.Fatalf("UpdateFees failed: %v", err)
		}
		if got := amountOf(t, s, "alice"); got != 12000 {
			t.Errorf("alice amount = %d, want unchanged 12000", got)
		}
	})

	t.Run("recompute applies new fees", func(t *testing.T) {
		s, err := l.RecomputeAmounts(ctx, "m")
		if err != nil {
			t.Fatalf("RecomputeAmounts failed: %v", err)
		}
		// 40000/4 = 10000; 12000/3 = 4000
		if got := amountOf(t, s, "alice"); got != 14000 {
			t.Errorf("alice amount = %d, want 14000", got)
		}
		if got := amountOf(t, s, "dave"); got != 10000 {
			t.Errorf("dave amount = %d, want 10000", got)
		}
		if s.PerPerson != 14000 {
			t.Errorf("per person = %d, want 14000", s.PerPerson)
		}
	})

	t.Run("recompute refused while a member is paid", func(t *testing.T) {
		if _, err := l.MarkPaid(ctx, "m", "carol", fixedNow); err != nil {
			t.Fatalf("MarkPaid failed: %v", err)
		}
		if _, err := l.UpdateFees(ctx, "m", models.FeeBreakdown{GameFee: 1000}); err != nil {
			t.Fatalf("UpdateFees failed: %v", err)
		}

		_, err := l.RecomputeAmounts(ctx, "m")
		if !errors.Is(err, apperr.ErrConflict) {
			t.Fatalf("RecomputeAmounts error = %v, want ErrConflict", err)
		}

		s, err := l.Get(ctx, "m")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got := amountOf(t, s, "carol"); got != 14000 {
			t.Errorf("carol amount changed to %d after refused recompute", got)
		}
	})

	t.Run("recompute allowed after unmarking", func(t *testing.T) {
		if _, err := l.MarkUnpaid(ctx, "m", "carol"); err != nil {
			t.Fatalf("MarkUnpaid failed: %v", err)
		}
		s, err := l.RecomputeAmounts(ctx, "m")
		if err != nil {
			t.Fatalf("RecomputeAmounts failed: %v", err)
		}
		// 1000/4 = 250 -> 0
		if got := amountOf(t, s, "carol"); got != 0 {
			t.Errorf("carol amount = %d, want 0", got)
		}
	})

	t.Run("negative fee edit rejected", func(t *testing.T) {
		_, err := l.UpdateFees(ctx, "m", models.FeeBreakdown{OtherFee: -1})
		if !errors.Is(err, apperr.ErrInvalidArgument) {
			t.Errorf("UpdateFees error = %v, want ErrInvalidArgument", err)
		}
	})
}

func TestRosterChanges(t *testing.T) {
	l := setupLedger(t)
	ctx := context.Background()

	if _, err := l.Create(ctx, "m", scenarioFees, fourPlayers()); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	t.Run("add participant without recompute", func(t *testing.T) {
		s, err := l.AddParticipant(ctx, "m", "erin", false)
		if err != nil {
			t.Fatalf("AddParticipant failed: %v", err)
		}
		if got := amountOf(t, s, "erin"); got != 0 {
			t.Errorf("erin amount = %d, want 0 before recompute", got)
		}
		if got := amountOf(t, s, "alice"); got != 12000 {
			t.Errorf("alice amount = %d, want unchanged", got)
		}
	})

	t.Run("duplicate participant", func(t *testing.T) {
		_, err := l.AddParticipant(ctx, "m", "erin", false)
		if !errors.Is(err, apperr.ErrAlreadyExists) {
			t.Errorf("AddParticipant error = %v, want ErrAlreadyExists", err)
		}
	})

	t.Run("unknown member", func(t *testing.T) {
		_, err := l.AddParticipant(ctx, "m", "zoe", false)
		if !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("AddParticipant error = %v, want ErrNotFound", err)
		}
	})

	t.Run("recompute after add", func(t *testing.T) {
		s, err := l.RecomputeAmounts(ctx, "m")
		if err != nil {
			t.Fatalf("RecomputeAmounts failed: %v", err)
		}
		// 30000/5 = 6000; 12000/4 = 3000
		if got := amountOf(t, s, "erin"); got != 9000 {
			t.Errorf("erin amount = %d, want 9000", got)
		}
		if got := amountOf(t, s, "dave"); got != 6000 {
			t.Errorf("dave amount = %d, want 6000", got)
		}
	})

	t.Run("exclusion flag change then recompute", func(t *testing.T) {
		if _, err := l.SetExcludeFood(ctx, "m", "dave", false); err != nil {
			t.Fatalf("SetExcludeFood failed: %v", err)
		}
		s, err := l.RecomputeAmounts(ctx, "m")
		if err != nil {
			t.Fatalf("RecomputeAmounts failed: %v", err)
		}
		// 12000/5 = 2400 -> 2000
		if got := amountOf(t, s, "dave"); got != 8000 {
			t.Errorf("dave amount = %d, want 8000", got)
		}
		if _, err := l.SetExcludeFood(ctx, "m", "zoe", true); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("SetExcludeFood error = %v, want ErrNotFound", err)
		}
	})

	t.Run("remove participant", func(t *testing.T) {
		s, err := l.RemoveParticipant(ctx, "m", "erin")
		if err != nil {
			t.Fatalf("RemoveParticipant failed: %v", err)
		}
		if s.FindMember("erin") >= 0 {
			t.Error("erin still in roster")
		}
		if _, err := l.RemoveParticipant(ctx, "m", "erin"); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("RemoveParticipant error = %v, want ErrNotFound", err)
		}
	})
}

func TestRosterChangesKeepStatusInvariant(t *testing.T) {
	l := setupLedger(t)
	ctx := context.Background()

	participants := []models.Participant{{MemberID: "alice"}, {MemberID: "bob"}}
	if _, err := l.Create(ctx, "m", scenarioFees, participants); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := l.MarkPaid(ctx, "m", "alice", fixedNow); err != nil {
		t.Fatalf("MarkPaid failed: %v", err)
	}

	// Removing the only unpaid member completes the settlement.
	s, err := l.RemoveParticipant(ctx, "m", "bob")
	if err != nil {
		t.Fatalf("RemoveParticipant failed: %v", err)
	}
	assertStatusInvariant(t, s)
	if s.Status != models.SettlementCompleted {
		t.Errorf("status = %s, want completed", s.Status)
	}

	// Adding a new unpaid member reopens it.
	s, err = l.AddParticipant(ctx, "m", "carol", true)
	if err != nil {
		t.Fatalf("AddParticipant failed: %v", err)
	}
	assertStatusInvariant(t, s)
	if s.Status != models.SettlementPending {
		t.Errorf("status = %s, want pending", s.Status)
	}

	// The roster never becomes empty.
	if _, err := l.RemoveParticipant(ctx, "m", "carol"); err != nil {
		t.Fatalf("RemoveParticipant failed: %v", err)
	}
	if _, err := l.RemoveParticipant(ctx, "m", "alice"); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("removing last participant error = %v, want ErrInvalidArgument", err)
	}
}

func TestSummaryAndDelete(t *testing.T) {
	l := setupLedger(t)
	ctx := context.Background()

	if _, err := l.Create(ctx, "m", scenarioFees, fourPlayers()); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := l.MarkPaid(ctx, "m", "dave", fixedNow); err != nil {
		t.Fatalf("MarkPaid failed: %v", err)
	}

	sum, err := l.Summary(ctx, "m")
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if sum.Expected != 44000 || sum.Collected != 8000 || sum.RoundingDelta != 2000 || sum.UnpaidCount != 3 {
		t.Errorf("unexpected summary %+v", sum)
	}

	if err := l.Delete(ctx, "m"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := l.Get(ctx, "m"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Get after delete error = %v, want ErrNotFound", err)
	}
	if err := l.Delete(ctx, "m"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
}

func TestConcurrentMutationsAreSerialized(t *testing.T) {
	l := setupLedger(t)
	ctx := context.Background()

	participants := []models.Participant{
		{MemberID: "alice"}, {MemberID: "bob"}, {MemberID: "carol"}, {MemberID: "dave"}, {MemberID: "erin"},
	}
	for i := 0; i < 3; i++ {
		if _, err := l.Create(ctx, fmt.Sprintf("m-%d", i), scenarioFees, participants); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	var wg sync.WaitGroup
	errs := make(chan error, 3*len(participants)*2)
	for i := 0; i < 3; i++ {
		meetingID := fmt.Sprintf("m-%d", i)
		for _, p := range participants {
			wg.Add(2)
			go func(memberID string) {
				defer wg.Done()
				if _, err := l.MarkPaid(ctx, meetingID, memberID, fixedNow); err != nil {
					errs <- err
				}
			}(p.MemberID)
			go func() {
				defer wg.Done()
				// Either succeeds before any payment or is refused with Conflict.
				if _, err := l.RecomputeAmounts(ctx, meetingID); err != nil && !errors.Is(err, apperr.ErrConflict) {
					errs <- err
				}
			}()
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent mutation failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		s, err := l.Get(ctx, fmt.Sprintf("m-%d", i))
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		assertStatusInvariant(t, s)
		if s.Status != models.SettlementCompleted {
			t.Errorf("meeting %d status = %s, want completed", i, s.Status)
		}
	}

	if n := l.locks.size(); n != 0 {
		t.Errorf("lock table has %d entries after all mutations, want 0", n)
	}
}

func TestKeyedMutexHonorsContext(t *testing.T) {
	k := newKeyedMutex()
	unlock, err := k.Lock(context.Background(), "a")
	if err != nil {
		t.Fatalf("Lock failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := k.Lock(ctx, "a"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Lock on held key error = %v, want DeadlineExceeded", err)
	}

	// Other keys are independent.
	unlockB, err := k.Lock(context.Background(), "b")
	if err != nil {
		t.Fatalf("Lock(b) failed: %v", err)
	}
	unlockB()
	unlock()

	if n := k.size(); n != 0 {
		t.Errorf("size = %d after releasing everything, want 0", n)
	}
}
