// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/clubsettle/internal/models"
)

var (
	// ErrSettlementExists is returned when a settlement already exists for the meeting.
	ErrSettlementExists = errors.New("settlement already exists for meeting")
	// ErrNotFound is returned when updating or deleting a record that does not exist.
	ErrNotFound = errors.New("record not found")
)

// Store defines the interface for settlement and member storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the ledger.
type Store interface {
	// CreateSettlement persists a new settlement.
	// The settlement.ID field will be populated by the store if empty.
	// Returns ErrSettlementExists if the meeting already has one.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// GetSettlementByMeeting retrieves the settlement for a meeting.
	// Returns nil, nil if the meeting has no settlement.
	GetSettlementByMeeting(ctx context.Context, meetingID string) (*models.Settlement, error)

	// SaveSettlement overwrites an existing settlement, including its members.
	// Returns ErrNotFound if the settlement does not exist.
	SaveSettlement(ctx context.Context, settlement *models.Settlement) error

	// DeleteSettlement removes the settlement for a meeting.
	// Returns ErrNotFound if the meeting has no settlement.
	DeleteSettlement(ctx context.Context, meetingID string) error

	// CreateMember persists a new member. The member.ID field will be
	// populated by the store if empty.
	CreateMember(ctx context.Context, member *models.Member) error

	// GetMembersByIDs returns a map of member ID to Member.
	// Members that don't exist are omitted from the result.
	GetMembersByIDs(ctx context.Context, ids []string) (map[string]*models.Member, error)

	// ListMembers returns all members ordered by name.
	ListMembers(ctx context.Context) ([]*models.Member, error)

	// Close releases any resources held by the store.
	Close() error
}
