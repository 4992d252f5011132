package auth

import "context"

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity returns a context carrying the decoded identity.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the identity attached to the request, or nil
// for anonymous requests.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey).(*Identity)
	return id
}
