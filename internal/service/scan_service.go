package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/clubsettle/internal/apperr"
	"github.com/mmynk/clubsettle/internal/matcher"
	"github.com/mmynk/clubsettle/internal/models"
	v1 "github.com/mmynk/clubsettle/pkg/clubsettlev1"
	"github.com/mmynk/clubsettle/pkg/clubsettlev1/clubsettlev1connect"
)

var _ clubsettlev1connect.ScanServiceHandler = (*ScanService)(nil)

// maxImageBytes bounds uploaded images.
const maxImageBytes = 10 << 20

// Scanner reads receipts and score sheets from images.
type Scanner interface {
	ScanReceipt(ctx context.Context, image []byte) (*models.ReceiptResult, error)
	ScanScoreSheet(ctx context.Context, image []byte, candidates []matcher.Candidate) (*models.ScoreSheetResult, error)
}

// ScanService implements the Connect ScanService.
type ScanService struct {
	scanner Scanner
	members MemberStore
}

// NewScanService creates a ScanService. Score sheet names are matched
// against every member in members.
func NewScanService(scanner Scanner, members MemberStore) *ScanService {
	return &ScanService{scanner: scanner, members: members}
}

func validateImage(image []byte) error {
	switch {
	case len(image) == 0:
		return connect.NewError(connect.CodeInvalidArgument, errors.New("image is empty"))
	case len(image) > maxImageBytes:
		return connect.NewError(connect.CodeInvalidArgument, errors.New("image exceeds 10 MiB"))
	}
	return nil
}

// ScanReceipt recognises a receipt. Recognition failures of both engines
// surface as Unavailable.
func (s *ScanService) ScanReceipt(ctx context.Context, req *connect.Request[v1.ScanRequest]) (*connect.Response[v1.ScanReceiptResponse], error) {
	if err := validateImage(req.Msg.Image); err != nil {
		return nil, err
	}
	result, err := s.scanner.ScanReceipt(ctx, req.Msg.Image)
	if err != nil {
		return nil, scanError("ScanReceipt", err)
	}
	return connect.NewResponse(&v1.ScanReceiptResponse{Receipt: result}), nil
}

// ScanScoreSheet recognises a score sheet and matches player names to members.
func (s *ScanService) ScanScoreSheet(ctx context.Context, req *connect.Request[v1.ScanRequest]) (*connect.Response[v1.ScanScoreSheetResponse], error) {
	if err := validateImage(req.Msg.Image); err != nil {
		return nil, err
	}
	members, err := s.members.ListMembers(ctx)
	if err != nil {
		return nil, toConnectError("ScanScoreSheet", err)
	}

	result, err := s.scanner.ScanScoreSheet(ctx, req.Msg.Image, matcher.CandidatesFromMembers(members))
	if err != nil {
		return nil, scanError("ScanScoreSheet", err)
	}
	return connect.NewResponse(&v1.ScanScoreSheetResponse{ScoreSheet: result}), nil
}

// scanError reports recognition failures as Unavailable. Invalid input and
// context errors keep their own codes.
func scanError(op string, err error) error {
	if errors.Is(err, apperr.ErrInvalidArgument) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return toConnectError(op, err)
	}
	slog.Warn(op+" recognition failed", "error", err)
	return connect.NewError(connect.CodeUnavailable, err)
}
