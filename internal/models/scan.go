package models

import (
	"time"

	"github.com/mmynk/clubsettle/internal/money"
)

// ReceiptItem is one line item recognised on a receipt.
type ReceiptItem struct {
	Name       string      `json:"name"`
	Quantity   int         `json:"quantity"`
	UnitPrice  money.Money `json:"unit_price"`
	TotalPrice money.Money `json:"total_price"`
}

// ReceiptResult is the structured reading of one receipt OCR attempt.
// Missing fields are nil/empty; RequiresManualReview tells the caller not to
// apply the values blindly.
type ReceiptResult struct {
	RawText     string       `json:"raw_text"`
	StoreName   *string      `json:"store_name,omitempty"`
	TotalAmount *money.Money `json:"total_amount,omitempty"`
	// Date is midnight UTC of the receipt date.
	Date  *time.Time    `json:"date,omitempty"`
	Items []ReceiptItem `json:"items"`

	// Confidence is in [0, 1].
	Confidence           float64 `json:"confidence"`
	RequiresManualReview bool    `json:"requires_manual_review"`

	// Engine names the recognizer that produced RawText. Empty when parsed
	// from text supplied directly.
	Engine string `json:"engine,omitempty"`
}

// PlayerScore is one player's row on a bowling score sheet.
// Games are nil when not present; present games are in [0, 300].
type PlayerScore struct {
	Name            string  `json:"name"`
	Game1           *int    `json:"game1,omitempty"`
	Game2           *int    `json:"game2,omitempty"`
	Game3           *int    `json:"game3,omitempty"`
	Game4           *int    `json:"game4,omitempty"`
	MatchedMemberID *string `json:"matched_member_id,omitempty"`
}

// Games returns the recorded games in order, skipping missing ones.
func (p PlayerScore) Games() []int {
	var out []int
	for _, g := range []*int{p.Game1, p.Game2, p.Game3, p.Game4} {
		if g != nil {
			out = append(out, *g)
		}
	}
	return out
}

// ScoreSheetResult is the structured reading of one score sheet OCR attempt.
type ScoreSheetResult struct {
	RawText          string        `json:"raw_text"`
	BowlingAlleyName *string       `json:"bowling_alley_name,omitempty"`
	ScoreDate        *time.Time    `json:"score_date,omitempty"`
	Scores           []PlayerScore `json:"scores"`

	Confidence           float64 `json:"confidence"`
	RequiresManualReview bool    `json:"requires_manual_review"`
	Engine               string  `json:"engine,omitempty"`
}
