// Package clubsettlev1 holds the request and response messages of the
// clubsettle.v1 Connect services. Messages travel as JSON; money fields are
// integer won.
package clubsettlev1

import (
	"time"

	"github.com/mmynk/clubsettle/internal/models"
)

type Fees struct {
	GameFee  int64 `json:"game_fee"`
	FoodFee  int64 `json:"food_fee"`
	OtherFee int64 `json:"other_fee"`
}

type Participant struct {
	MemberID    string `json:"member_id"`
	ExcludeFood bool   `json:"exclude_food"`
}

type SettlementMember struct {
	MemberID    string     `json:"member_id"`
	ExcludeFood bool       `json:"exclude_food"`
	Amount      int64      `json:"amount"`
	IsPaid      bool       `json:"is_paid"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
}

type Settlement struct {
	ID        string             `json:"id"`
	MeetingID string             `json:"meeting_id"`
	Fees      Fees               `json:"fees"`
	PerPerson int64              `json:"per_person"`
	Status    string             `json:"status"`
	Members   []SettlementMember `json:"members"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

type CollectionSummary struct {
	FeeTotal      int64 `json:"fee_total"`
	Expected      int64 `json:"expected"`
	Collected     int64 `json:"collected"`
	Outstanding   int64 `json:"outstanding"`
	RoundingDelta int64 `json:"rounding_delta"`
	PaidCount     int   `json:"paid_count"`
	UnpaidCount   int   `json:"unpaid_count"`
}

// SettlementResponse is returned by every settlement read and mutation.
type SettlementResponse struct {
	Settlement *Settlement `json:"settlement"`
}

type CreateSettlementRequest struct {
	MeetingID    string        `json:"meeting_id"`
	Fees         Fees          `json:"fees"`
	Participants []Participant `json:"participants"`
}

type GetSettlementRequest struct {
	MeetingID string `json:"meeting_id"`
}

type UpdateFeesRequest struct {
	MeetingID string `json:"meeting_id"`
	Fees      Fees   `json:"fees"`
}

type AddParticipantRequest struct {
	MeetingID   string `json:"meeting_id"`
	MemberID    string `json:"member_id"`
	ExcludeFood bool   `json:"exclude_food"`
}

type RemoveParticipantRequest struct {
	MeetingID string `json:"meeting_id"`
	MemberID  string `json:"member_id"`
}

type SetExcludeFoodRequest struct {
	MeetingID   string `json:"meeting_id"`
	MemberID    string `json:"member_id"`
	ExcludeFood bool   `json:"exclude_food"`
}

type RecomputeAmountsRequest struct {
	MeetingID string `json:"meeting_id"`
}

// MarkPaidRequest records a payment. PaidAt defaults to the server clock.
type MarkPaidRequest struct {
	MeetingID string     `json:"meeting_id"`
	MemberID  string     `json:"member_id"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
}

type MarkUnpaidRequest struct {
	MeetingID string `json:"meeting_id"`
	MemberID  string `json:"member_id"`
}

type ListUnpaidRequest struct {
	MeetingID string `json:"meeting_id"`
}

type ListUnpaidResponse struct {
	Members []SettlementMember `json:"members"`
	Count   int                `json:"count"`
}

type GetSummaryRequest struct {
	MeetingID string `json:"meeting_id"`
}

type GetSummaryResponse struct {
	Summary CollectionSummary `json:"summary"`
}

type DeleteSettlementRequest struct {
	MeetingID string `json:"meeting_id"`
}

type DeleteSettlementResponse struct{}

type Member struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Gender   string    `json:"gender"`
	Status   string    `json:"status"`
	JoinedAt time.Time `json:"joined_at"`
}

type CreateMemberRequest struct {
	Name     string     `json:"name"`
	Gender   string     `json:"gender"`
	Status   string     `json:"status"`
	JoinedAt *time.Time `json:"joined_at,omitempty"`
}

type CreateMemberResponse struct {
	Member *Member `json:"member"`
}

type ListMembersRequest struct{}

type ListMembersResponse struct {
	Members []*Member `json:"members"`
}

// ScanRequest carries one image; Image is base64 in JSON.
type ScanRequest struct {
	Image []byte `json:"image"`
}

type ScanReceiptResponse struct {
	Receipt *models.ReceiptResult `json:"receipt"`
}

type ScanScoreSheetResponse struct {
	ScoreSheet *models.ScoreSheetResult `json:"score_sheet"`
}
