// Package service provides the cryptographic services of the authorization
// core: capability-set integrity hashing, password hashing, and signed
// identity token issuance and verification.
//
// All operations here are pure with respect to shared state and safe for
// unbounded parallel invocation.
package service

import (
	"time"

	authzDomain "github.com/gtedge/aegis/internal/authz/domain"
)

// CapabilityHasher computes and checks the integrity digest over a capability
// set. The digest detects tampering with the grant list independent of the
// outer token signature (defense in depth against claim-substitution bugs in
// the signing layer).
type CapabilityHasher interface {
	// Hash returns a deterministic digest of the capability set. Two sets
	// with the same grants in different list order produce the same hash.
	Hash(set authzDomain.CapabilitySet) (string, error)

	// Verify recomputes the digest from the given set and performs a
	// constant-time comparison against the supplied hash. Any mismatch is a
	// hard authorization failure, distinct from ordinary expiry.
	Verify(set authzDomain.CapabilitySet, hash string) bool
}

// CredentialService defines one-way password hashing and verification.
// Implementations must use a slow, salted function with a work factor high
// enough to resist offline brute force. There is no recovery path from hash
// to plaintext; password resets always re-hash a new plaintext.
type CredentialService interface {
	// HashPassword hashes a plain text password. Each call with the same
	// input produces a different output (random salt per call).
	HashPassword(plainPassword string) (hashedPassword string, error error)

	// ComparePassword compares a plain text password against a stored hash.
	// Constant-time with respect to the hash comparison.
	ComparePassword(plainPassword string, hashedPassword string) bool
}

// TokenService issues and verifies compact signed tokens carrying identity
// claims and the embedded capability set plus its integrity hash.
type TokenService interface {
	// Issue serializes the claims (embedding the capability hash computed at
	// issuance), signs them, and returns the compact token string. The
	// caller supplies ExpiresAt explicitly; the service never invents a
	// default lifetime.
	Issue(claims *authzDomain.IdentityClaims) (string, error)

	// Verify validates the signature and expiry against now, recomputes the
	// capability hash from the embedded set, and compares it against the
	// embedded digest. Returns the verified claims or one of
	// ErrTokenExpired, ErrTokenTampered, ErrTokenMalformed.
	Verify(token string, now time.Time) (*authzDomain.IdentityClaims, error)
}
