package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/clubsettle/internal/models"
	"github.com/mmynk/clubsettle/internal/money"
)

// CreateMember inserts a new member into the database.
func (s *SQLiteStore) CreateMember(ctx context.Context, member *models.Member) error {
	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	if member.JoinedAt.IsZero() {
		member.JoinedAt = time.Now().UTC()
	}
	if member.Gender == "" {
		member.Gender = models.GenderMale
	}
	if member.Status == "" {
		member.Status = models.MemberActive
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO members (id, name, gender, status, joined_at) VALUES (?, ?, ?, ?, ?)`,
		member.ID, member.Name, string(member.Gender), string(member.Status), toMillis(member.JoinedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create member: %w", err)
	}

	return nil
}

// GetMembersByIDs retrieves multiple members by their IDs.
// Returns a map of member ID to Member object.
// Members that don't exist are omitted from the result.
func (s *SQLiteStore) GetMembersByIDs(ctx context.Context, ids []string) (map[string]*models.Member, error) {
	if len(ids) == 0 {
		return make(map[string]*models.Member), nil
	}

	// Build the IN clause with placeholders
	query := `
		SELECT id, name, gender, status, joined_at
		FROM members
		WHERE id IN (?` + repeatPlaceholder(len(ids)-1) + `)`

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get members by IDs: %w", err)
	}
	defer rows.Close()

	members := make(map[string]*models.Member)
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members[member.ID] = member
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating members: %w", err)
	}

	return members, nil
}

// ListMembers retrieves all members ordered by name.
func (s *SQLiteStore) ListMembers(ctx context.Context) ([]*models.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, gender, status, joined_at FROM members ORDER BY name, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating members: %w", err)
	}

	return members, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (*models.Member, error) {
	member := &models.Member{}
	var gender, status string
	var joinedAt int64
	if err := row.Scan(&member.ID, &member.Name, &gender, &status, &joinedAt); err != nil {
		return nil, fmt.Errorf("failed to scan member: %w", err)
	}
	member.Gender = models.ParseGender(gender)
	member.Status = models.ParseMemberStatus(status)
	member.JoinedAt = fromMillis(joinedAt)
	return member, nil
}

// repeatPlaceholder returns a string of ", ?" repeated n times.
// Used for building IN clauses with multiple placeholders.
func repeatPlaceholder(n int) string {
	if n <= 0 {
		return ""
	}
	result := ""
	for i := 0; i < n; i++ {
		result += ", ?"
	}
	return result
}

func moneyOf(v int64) money.Money {
	return money.Money(v)
}
