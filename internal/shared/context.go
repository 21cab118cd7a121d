package shared

import (
	"context"

	"github.com/google/uuid"
)

// Identity is the authenticated user attached to a request by the auth
// middleware. It carries only fields safe to expose downstream; password and
// refresh-token state never travel in context.
type Identity struct {
	ID       uuid.UUID
	Username string
	Email    string
	FullName string
}

type identityContextKey struct{}

// ContextWithIdentity stores the identity in context.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the identity from context, nil when the
// request was not authenticated.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey{}).(*Identity)
	return id
}
