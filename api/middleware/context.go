package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/reviewpromax/reviewpromax-backend/pkg/enums"
	"github.com/reviewpromax/reviewpromax-backend/pkg/types"
)

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxRole   contextKey = "actor_role"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithRole injects the actor role into the context.
func WithRole(ctx context.Context, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRole, role)
}

// CallerFromContext rebuilds the authenticated caller from the request
// context. The zero Caller means the request is unauthenticated.
func CallerFromContext(ctx context.Context) types.Caller {
	id, err := uuid.Parse(UserIDFromContext(ctx))
	if err != nil {
		return types.Caller{}
	}
	role, err := enums.ParseUserRole(RoleFromContext(ctx))
	if err != nil {
		return types.Caller{}
	}
	return types.Caller{UserID: id, Role: role}
}
