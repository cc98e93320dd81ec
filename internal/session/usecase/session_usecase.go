package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gtedge/aegis/internal/session/domain"
)

// casRetries bounds the optimistic-concurrency retry loop. Contention on a
// single session is rare (a user heartbeating from multiple tabs), so a small
// bound is enough; beyond it the conflict error surfaces to the caller.
const casRetries = 3

// sessionUseCase implements the UseCase interface. It is the only writer of
// session timer fields; every mutation goes through a load, domain-level
// transition, compare-and-swap cycle.
type sessionUseCase struct {
	sessionRepo SessionRepository
	policy      domain.Policy
}

// NewSessionUseCase creates the session lifecycle manager with the given
// store and policy.
func NewSessionUseCase(sessionRepo SessionRepository, policy domain.Policy) UseCase {
	return &sessionUseCase{
		sessionRepo: sessionRepo,
		policy:      policy,
	}
}

// Create starts a session with both the idle and absolute timers anchored at
// now.
func (s *sessionUseCase) Create(
	ctx context.Context,
	userID uuid.UUID,
	tenantID *uuid.UUID,
	now time.Time,
) (*domain.Session, error) {
	session := domain.NewSession(userID, tenantID, s.policy, now.UTC())
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Status reports the point-in-time validity of a session. It never writes, so
// polling status cannot keep a session alive.
func (s *sessionUseCase) Status(ctx context.Context, id uuid.UUID, now time.Time) (*domain.Status, error) {
	session, err := s.sessionRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	status := session.StatusAt(now.UTC())
	return &status, nil
}

// Heartbeat records activity on the session, advancing the idle deadline. The
// absolute deadline is unaffected: a heartbeat one second before the absolute
// ceiling buys one second, not a fresh idle window past the ceiling.
func (s *sessionUseCase) Heartbeat(ctx context.Context, id uuid.UUID, now time.Time) (*domain.Status, error) {
	return s.touch(ctx, id, now.UTC())
}

// Extend explicitly renews the session. While the absolute deadline is in the
// future this behaves exactly like Heartbeat; past the ceiling it fails with
// ErrSessionAbsoluteLimitReached instead of silently re-creating the session.
func (s *sessionUseCase) Extend(ctx context.Context, id uuid.UUID, now time.Time) (*domain.Status, error) {
	status, err := s.touch(ctx, id, now.UTC())
	if err != nil {
		if errors.Is(err, domain.ErrSessionExpiredAbsolute) {
			return nil, domain.ErrSessionAbsoluteLimitReached
		}
		return nil, err
	}
	return status, nil
}

// touch runs the load, Touch, compare-and-swap cycle with bounded retries.
// A stale-activity result means a concurrent heartbeat already advanced the
// clock past now; that counts as success and the newer state is returned.
func (s *sessionUseCase) touch(ctx context.Context, id uuid.UUID, now time.Time) (*domain.Status, error) {
	var lastErr error

	for attempt := 0; attempt < casRetries; attempt++ {
		session, err := s.sessionRepo.Get(ctx, id)
		if err != nil {
			return nil, err
		}

		if err := session.Touch(now); err != nil {
			if errors.Is(err, domain.ErrStaleActivity) {
				status := session.StatusAt(now)
				return &status, nil
			}
			return nil, err
		}

		err = s.sessionRepo.CompareAndSwap(ctx, session)
		if err == nil {
			status := session.StatusAt(now)
			return &status, nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

// Revoke terminates the session. Revoking an already-revoked session is a
// no-op so repeated logouts stay idempotent.
func (s *sessionUseCase) Revoke(ctx context.Context, id uuid.UUID, now time.Time) error {
	nowUTC := now.UTC()
	var lastErr error

	for attempt := 0; attempt < casRetries; attempt++ {
		session, err := s.sessionRepo.Get(ctx, id)
		if err != nil {
			return err
		}
		if session.RevokedAt != nil {
			return nil
		}

		session.Revoke(nowUTC)

		err = s.sessionRepo.CompareAndSwap(ctx, session)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) {
			return err
		}
		lastErr = err
	}

	return lastErr
}

// RevokeAllForUser removes every session belonging to the user and reports
// how many were terminated.
func (s *sessionUseCase) RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.sessionRepo.DeleteByUser(ctx, userID)
}

// ListForUser returns a page of the user's sessions for administrative
// inspection.
func (s *sessionUseCase) ListForUser(
	ctx context.Context,
	userID uuid.UUID,
	offset, limit int,
) ([]*domain.Session, error) {
	return s.sessionRepo.ListByUser(ctx, userID, offset, limit)
}

// Policy exposes the lifecycle policy sessions are created with.
func (s *sessionUseCase) Policy() domain.Policy {
	return s.policy
}
