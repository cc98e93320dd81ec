// Package usecase implements the session lifecycle manager: the sole
// authority on session validity and the only component allowed to advance or
// reset session timers.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gtedge/aegis/internal/session/domain"
)

// SessionRepository is the session store contract. The core holds no hidden
// global state: all session records live behind this interface, so the
// lifecycle manager is testable with an in-memory fake.
//
// Writers use optimistic concurrency: CompareAndSwap succeeds only when the
// stored Version matches the one the record was loaded with, so a heartbeat
// and an expiry check for the same session cannot interleave into a lost or
// reordered update.
type SessionRepository interface {
	// Create persists a new session record.
	Create(ctx context.Context, session *domain.Session) error

	// Get fetches a session by ID. Returns ErrSessionNotFound if absent.
	Get(ctx context.Context, id uuid.UUID) (*domain.Session, error)

	// CompareAndSwap writes the mutated session if and only if the stored
	// version still matches session.Version; on success the version is
	// incremented. Returns ErrVersionConflict when a concurrent writer won.
	CompareAndSwap(ctx context.Context, session *domain.Session) error

	// Delete removes a session record. Deleting an absent session returns
	// ErrSessionNotFound.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByUser returns a page of the user's sessions ordered by creation
	// time.
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*domain.Session, error)

	// DeleteByUser removes all sessions for a user and reports how many
	// were removed.
	DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// DeleteExpired removes sessions whose absolute deadline passed before
	// the cutoff. Used by the cleanup command, not the request path.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// UseCase is the session lifecycle manager contract.
//
// Status is idempotent and side-effect-free with respect to the idle timer;
// only Heartbeat and Extend reset last activity, so a client cannot keep a
// session alive merely by polling status.
type UseCase interface {
	// Create starts a session for the given identity with both timers
	// anchored at now.
	Create(ctx context.Context, userID uuid.UUID, tenantID *uuid.UUID, now time.Time) (*domain.Session, error)

	// Status computes the point-in-time validity of a session without
	// mutating it.
	Status(ctx context.Context, id uuid.UUID, now time.Time) (*domain.Status, error)

	// Heartbeat records activity, advancing the idle deadline. Returns the
	// refreshed status, or the expiry error if either deadline has passed.
	Heartbeat(ctx context.Context, id uuid.UUID, now time.Time) (*domain.Status, error)

	// Extend is the explicit renewal operation. Identical to Heartbeat
	// while the absolute deadline is in the future; once the absolute
	// deadline has passed it fails with ErrSessionAbsoluteLimitReached and
	// the session is unrecoverable.
	Extend(ctx context.Context, id uuid.UUID, now time.Time) (*domain.Status, error)

	// Revoke terminates a session (logout). Idempotent for already-revoked
	// sessions.
	Revoke(ctx context.Context, id uuid.UUID, now time.Time) error

	// RevokeAllForUser terminates every session belonging to a user.
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// ListForUser returns a page of the user's sessions for administrative
	// inspection.
	ListForUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*domain.Session, error)

	// Policy exposes the lifecycle policy sessions are created with.
	Policy() domain.Policy
}
