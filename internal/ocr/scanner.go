package ocr

import (
	"context"
	"time"

	"github.com/mmynk/clubsettle/internal/matcher"
	"github.com/mmynk/clubsettle/internal/metrics"
	"github.com/mmynk/clubsettle/internal/models"
	"github.com/mmynk/clubsettle/internal/parser"
)

// Scanner reads receipts and score sheets from images.
type Scanner struct {
	ocr     *Orchestrator
	matcher *matcher.Matcher
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewScanner creates a Scanner. m may be nil.
func NewScanner(o *Orchestrator, nameMatcher *matcher.Matcher, m *metrics.Metrics) *Scanner {
	return &Scanner{ocr: o, matcher: nameMatcher, metrics: m, now: time.Now}
}

// ScanReceipt recognises and parses a receipt image.
func (s *Scanner) ScanReceipt(ctx context.Context, image []byte) (*models.ReceiptResult, error) {
	rec, err := s.ocr.Recognize(ctx, image)
	if err != nil {
		return nil, err
	}

	result := parser.ParseReceipt(rec.Text, rec.Confidence())
	result.Engine = rec.Engine
	if result.RequiresManualReview {
		s.metrics.ManualReview("receipt")
	}
	return result, nil
}

// ScanScoreSheet recognises and parses a score sheet image, then resolves
// player names against candidates.
func (s *Scanner) ScanScoreSheet(ctx context.Context, image []byte, candidates []matcher.Candidate) (*models.ScoreSheetResult, error) {
	rec, err := s.ocr.Recognize(ctx, image)
	if err != nil {
		return nil, err
	}

	result := parser.ParseScoreSheet(rec.Text, rec.Confidence(), s.now())
	result.Engine = rec.Engine
	s.matcher.ApplyMatches(result.Scores, candidates)
	if result.RequiresManualReview {
		s.metrics.ManualReview("score_sheet")
	}
	return result, nil
}
