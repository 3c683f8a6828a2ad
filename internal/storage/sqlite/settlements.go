package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/clubsettle/internal/models"
	"github.com/mmynk/clubsettle/internal/storage"
)

// CreateSettlement persists a new settlement and its members.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	// Generate ID if not set
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt.IsZero() {
		settlement.CreatedAt = time.Now().UTC()
	}
	if settlement.UpdatedAt.IsZero() {
		settlement.UpdatedAt = settlement.CreatedAt
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO settlements (id, meeting_id, game_fee, food_fee, other_fee, per_person, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		settlement.ID, settlement.MeetingID,
		int64(settlement.Fees.GameFee), int64(settlement.Fees.FoodFee), int64(settlement.Fees.OtherFee),
		int64(settlement.PerPerson), string(settlement.Status),
		toMillis(settlement.CreatedAt), toMillis(settlement.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", storage.ErrSettlementExists, settlement.MeetingID)
	}
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}

	if err := insertMembers(ctx, tx, settlement); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetSettlementByMeeting retrieves a settlement and its members by meeting ID.
func (s *SQLiteStore) GetSettlementByMeeting(ctx context.Context, meetingID string) (*models.Settlement, error) {
	settlement := &models.Settlement{}
	var gameFee, foodFee, otherFee, perPerson, createdAt, updatedAt int64
	var status string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, meeting_id, game_fee, food_fee, other_fee, per_person, status, created_at, updated_at
		 FROM settlements WHERE meeting_id = ?`,
		meetingID,
	).Scan(&settlement.ID, &settlement.MeetingID, &gameFee, &foodFee, &otherFee, &perPerson,
		&status, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, nil // Meeting has no settlement
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}

	settlement.Fees = models.FeeBreakdown{
		GameFee:  moneyOf(gameFee),
		FoodFee:  moneyOf(foodFee),
		OtherFee: moneyOf(otherFee),
	}
	settlement.PerPerson = moneyOf(perPerson)
	settlement.Status = models.ParseSettlementStatus(status)
	settlement.CreatedAt = fromMillis(createdAt)
	settlement.UpdatedAt = fromMillis(updatedAt)

	rows, err := s.db.QueryContext(ctx,
		`SELECT member_id, exclude_food, amount, is_paid, paid_at
		 FROM settlement_members WHERE settlement_id = ? ORDER BY position`,
		settlement.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.SettlementMember
		var excludeFood, isPaid int
		var amount int64
		var paidAt sql.NullInt64

		if err := rows.Scan(&m.MemberID, &excludeFood, &amount, &isPaid, &paidAt); err != nil {
			return nil, fmt.Errorf("failed to scan settlement member: %w", err)
		}

		m.ExcludeFood = excludeFood != 0
		m.Amount = moneyOf(amount)
		m.IsPaid = isPaid != 0
		if paidAt.Valid {
			t := fromMillis(paidAt.Int64)
			m.PaidAt = &t
		}
		settlement.Members = append(settlement.Members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlement members: %w", err)
	}

	return settlement, nil
}

// SaveSettlement overwrites the settlement row and replaces its members.
func (s *SQLiteStore) SaveSettlement(ctx context.Context, settlement *models.Settlement) error {
	if settlement.UpdatedAt.IsZero() {
		settlement.UpdatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE settlements
		 SET game_fee = ?, food_fee = ?, other_fee = ?, per_person = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		int64(settlement.Fees.GameFee), int64(settlement.Fees.FoodFee), int64(settlement.Fees.OtherFee),
		int64(settlement.PerPerson), string(settlement.Status), toMillis(settlement.UpdatedAt),
		settlement.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update settlement: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: settlement %s", storage.ErrNotFound, settlement.ID)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM settlement_members WHERE settlement_id = ?", settlement.ID); err != nil {
		return fmt.Errorf("failed to clear settlement members: %w", err)
	}
	if err := insertMembers(ctx, tx, settlement); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteSettlement removes a settlement by meeting ID. Members cascade.
func (s *SQLiteStore) DeleteSettlement(ctx context.Context, meetingID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM settlements WHERE meeting_id = ?", meetingID)
	if err != nil {
		return fmt.Errorf("failed to delete settlement: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: settlement for meeting %s", storage.ErrNotFound, meetingID)
	}
	return nil
}

func insertMembers(ctx context.Context, tx *sql.Tx, settlement *models.Settlement) error {
	for i, m := range settlement.Members {
		var paidAt interface{} = nil
		if m.PaidAt != nil {
			paidAt = toMillis(*m.PaidAt)
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO settlement_members (settlement_id, member_id, position, exclude_food, amount, is_paid, paid_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			settlement.ID, m.MemberID, i, boolToInt(m.ExcludeFood), int64(m.Amount), boolToInt(m.IsPaid), paidAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert settlement member: %w", err)
		}
	}
	return nil
}
