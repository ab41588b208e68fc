package middleware

import (
	"context"

	"github.com/baharkarakas/servicehub-backend/internal/models"
)

type userKey struct{}

type UserCtx struct {
	UserID string
	Role   models.Role
	Name   string
}

func WithUser(ctx context.Context, u UserCtx) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

func FromCtx(ctx context.Context) (UserCtx, bool) {
	u, ok := ctx.Value(userKey{}).(UserCtx)
	return u, ok && u.UserID != ""
}
