package domain

import (
	"github.com/gtedge/aegis/internal/errors"
)

// Session lifecycle errors.
var (
	// ErrSessionNotFound indicates no session exists with the given ID.
	ErrSessionNotFound = errors.Wrap(errors.ErrNotFound, "session not found")

	// ErrSessionExpiredIdle indicates the idle timeout elapsed since the
	// last activity.
	ErrSessionExpiredIdle = errors.Wrap(errors.ErrUnauthorized, "session expired: idle timeout")

	// ErrSessionExpiredAbsolute indicates the absolute lifetime ceiling was
	// reached.
	ErrSessionExpiredAbsolute = errors.Wrap(errors.ErrUnauthorized, "session expired: absolute timeout")

	// ErrSessionRevoked indicates the session was explicitly terminated.
	ErrSessionRevoked = errors.Wrap(errors.ErrUnauthorized, "session revoked")

	// ErrSessionAbsoluteLimitReached indicates an extension was attempted
	// past the hard ceiling. A sharper variant of the absolute expiry,
	// surfaced on explicit extend calls.
	ErrSessionAbsoluteLimitReached = errors.Wrap(ErrSessionExpiredAbsolute, "extension refused")

	// ErrStaleActivity indicates a heartbeat would move the activity clock
	// backward; the update is rejected so lost writes cannot shrink a
	// session's idle window.
	ErrStaleActivity = errors.Wrap(errors.ErrConflict, "stale session activity")

	// ErrVersionConflict indicates a compare-and-swap lost the race with a
	// concurrent writer for the same session.
	ErrVersionConflict = errors.Wrap(errors.ErrConflict, "session version conflict")
)
