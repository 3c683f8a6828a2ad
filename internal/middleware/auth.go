package middleware

import (
	"context"
	"errors"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/clubsettle/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// MemberIDKey is the context key for the authenticated member ID.
	MemberIDKey contextKey = "member_id"
	// RoleKey is the context key for the authenticated role.
	RoleKey contextKey = "role"
)

// ErrTreasurerOnly is returned when a member calls a treasurer operation.
var ErrTreasurerOnly = errors.New("operation requires the treasurer role")

// GetMemberID extracts the member ID from the context.
// Returns empty string if not found.
func GetMemberID(ctx context.Context) string {
	id, _ := ctx.Value(MemberIDKey).(string)
	return id
}

// GetRole extracts the caller's role from the context.
// Returns empty string if not found.
func GetRole(ctx context.Context) auth.Role {
	role, _ := ctx.Value(RoleKey).(auth.Role)
	return role
}

// WithCaller returns ctx carrying the caller identity.
func WithCaller(ctx context.Context, memberID string, role auth.Role) context.Context {
	ctx = context.WithValue(ctx, MemberIDKey, memberID)
	return context.WithValue(ctx, RoleKey, role)
}

// RequireTreasurer fails with PermissionDenied unless the caller is a treasurer.
func RequireTreasurer(ctx context.Context) error {
	if GetRole(ctx) != auth.RoleTreasurer {
		return connect.NewError(connect.CodePermissionDenied, ErrTreasurerOnly)
	}
	return nil
}

// RequireAuth returns an interceptor that validates the bearer token and
// adds the member ID and role to the request context.
func RequireAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			authHeader := req.Header().Get("Authorization")
			if authHeader == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
			}

			tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || tokenString == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
			}

			claims, err := jwtManager.Validate(tokenString)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			return next(WithCaller(ctx, claims.MemberID, claims.Role), req)
		}
	}
}
