package httpx

import (
	"context"

	domainauth "github.com/inkhouse/storyapi/internal/domain/auth"
)

// identityKey is an unexported context key type to avoid collisions across
// packages. Centralized here so all handlers use the same key.
type identityKey struct{}

// SetIdentityInContext returns a child context carrying the given identity.
func SetIdentityInContext(ctx context.Context, identity domainauth.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext returns the identity from context. Requests that never
// passed the gate resolve to the anonymous reader.
func IdentityFromContext(ctx context.Context) domainauth.Identity {
	if id, ok := ctx.Value(identityKey{}).(domainauth.Identity); ok {
		return id
	}
	return domainauth.Anonymous()
}
