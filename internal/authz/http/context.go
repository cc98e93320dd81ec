// Package http provides HTTP middleware and handlers for authentication and
// capability-based authorization.
package http

import (
	"context"

	authzDomain "github.com/gtedge/aegis/internal/authz/domain"
	sessionDomain "github.com/gtedge/aegis/internal/session/domain"
)

// claimsKey is a context key type for storing verified identity claims.
type claimsKey struct{}

// sessionStatusKey is a context key type for storing the session status
// observed during authorization.
type sessionStatusKey struct{}

// WithClaims stores verified identity claims in the context. Called by the
// authorization middleware after the token passed verification.
func WithClaims(ctx context.Context, claims *authzDomain.IdentityClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// GetClaims retrieves the verified identity claims from the context.
// Returns (claims, true) if present, or (nil, false) if no authorization
// middleware ran for this request.
func GetClaims(ctx context.Context) (*authzDomain.IdentityClaims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*authzDomain.IdentityClaims)
	return claims, ok
}

// WithSessionStatus stores the post-heartbeat session status in the context
// so handlers can surface warning state without a second lookup.
func WithSessionStatus(ctx context.Context, status *sessionDomain.Status) context.Context {
	return context.WithValue(ctx, sessionStatusKey{}, status)
}

// GetSessionStatus retrieves the session status observed during
// authorization. Returns (status, true) if present, or (nil, false) if not set.
func GetSessionStatus(ctx context.Context) (*sessionDomain.Status, bool) {
	status, ok := ctx.Value(sessionStatusKey{}).(*sessionDomain.Status)
	return status, ok
}
