package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/clubsettle/internal/apperr"
	"github.com/mmynk/clubsettle/internal/middleware"
	"github.com/mmynk/clubsettle/internal/models"
	v1 "github.com/mmynk/clubsettle/pkg/clubsettlev1"
	"github.com/mmynk/clubsettle/pkg/clubsettlev1/clubsettlev1connect"
)

var _ clubsettlev1connect.MemberServiceHandler = (*MemberService)(nil)

// MemberStore is the member part of storage.Store.
type MemberStore interface {
	CreateMember(ctx context.Context, member *models.Member) error
	ListMembers(ctx context.Context) ([]*models.Member, error)
}

// MemberService implements the Connect MemberService.
type MemberService struct {
	store MemberStore
}

// NewMemberService creates a MemberService.
func NewMemberService(store MemberStore) *MemberService {
	return &MemberService{store: store}
}

// CreateMember registers a club member. Unknown gender and status strings
// fall back to their defaults.
func (s *MemberService) CreateMember(ctx context.Context, req *connect.Request[v1.CreateMemberRequest]) (*connect.Response[v1.CreateMemberResponse], error) {
	if err := middleware.RequireTreasurer(ctx); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, toConnectError("CreateMember", apperr.InvalidArgument("member name is empty"))
	}

	member := &models.Member{
		Name:   name,
		Gender: models.ParseGender(req.Msg.Gender),
		Status: models.ParseMemberStatus(req.Msg.Status),
	}
	if req.Msg.JoinedAt != nil {
		member.JoinedAt = req.Msg.JoinedAt.UTC()
	}

	if err := s.store.CreateMember(ctx, member); err != nil {
		return nil, toConnectError("CreateMember", err)
	}
	slog.Info("Member created", "member_id", member.ID)

	return connect.NewResponse(&v1.CreateMemberResponse{Member: memberToPB(member)}), nil
}

// ListMembers returns all members ordered by name.
func (s *MemberService) ListMembers(ctx context.Context, req *connect.Request[v1.ListMembersRequest]) (*connect.Response[v1.ListMembersResponse], error) {
	members, err := s.store.ListMembers(ctx)
	if err != nil {
		return nil, toConnectError("ListMembers", err)
	}

	out := make([]*v1.Member, len(members))
	for i, m := range members {
		out[i] = memberToPB(m)
	}
	return connect.NewResponse(&v1.ListMembersResponse{Members: out}), nil
}
