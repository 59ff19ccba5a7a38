package middleware

import (
	"context"

	"github.com/emporium-dev/emporium/pkg/enums"
)

type contextKey string

const (
	ctxIdentity    contextKey = "identity"
	ctxCartSession contextKey = "cart_session"
)

// Identity is the authenticated caller resolved from the access token.
type Identity struct {
	UserID     uint
	CustomerID *uint
	Role       enums.Role
	AccessID   string
}

// IsAdmin reports whether the caller is a superuser.
func (i Identity) IsAdmin() bool {
	return i.Role == enums.RoleAdmin
}

// WithIdentity injects the caller identity into the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIdentity, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(ctxIdentity).(Identity)
	return id, ok
}

func UserIDFromContext(ctx context.Context) uint {
	id, _ := IdentityFromContext(ctx)
	return id.UserID
}

// CustomerIDFromContext returns the customer record of the caller, if any.
func CustomerIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := IdentityFromContext(ctx)
	if !ok || id.CustomerID == nil {
		return 0, false
	}
	return *id.CustomerID, true
}

func RoleFromContext(ctx context.Context) enums.Role {
	id, _ := IdentityFromContext(ctx)
	return id.Role
}

// WithCartSession injects the opaque cart session key.
func WithCartSession(ctx context.Context, key string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxCartSession, key)
}

func CartSessionFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxCartSession).(string); ok {
		return v
	}
	return ""
}
