package domain

import (
	"github.com/gtedge/aegis/internal/errors"
)

// Authorization errors. All are terminal, caller-visible outcomes: a rejected
// token stays rejected and nothing here is retried internally. Tampering and
// capability denial carry distinct sentinels so security monitoring can tell
// them apart from ordinary expiry.
var (
	// ErrInvalidCredentials indicates the supplied login credentials are wrong.
	// Also returned for unknown users to prevent enumeration.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrTokenMalformed indicates the token could not be parsed (client bug).
	ErrTokenMalformed = errors.Wrap(errors.ErrUnauthorized, "token malformed")

	// ErrTokenExpired indicates the token's expiry time has passed.
	ErrTokenExpired = errors.Wrap(errors.ErrUnauthorized, "token expired")

	// ErrTokenTampered indicates a signature or capability-hash mismatch.
	// Treated as expired by callers but logged as a security event.
	ErrTokenTampered = errors.Wrap(errors.ErrUnauthorized, "token tampered")

	// ErrCapabilityDenied indicates no grant in the verified capability set
	// matches the requested resource and action.
	ErrCapabilityDenied = errors.Wrap(errors.ErrForbidden, "capability denied")
)
