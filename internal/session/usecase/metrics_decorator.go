package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gtedge/aegis/internal/metrics"
	sessionDomain "github.com/gtedge/aegis/internal/session/domain"
)

// sessionUseCaseWithMetrics decorates UseCase with metrics instrumentation.
type sessionUseCaseWithMetrics struct {
	next    UseCase
	metrics metrics.BusinessMetrics
}

// NewSessionUseCaseWithMetrics wraps a session UseCase with metrics recording.
func NewSessionUseCaseWithMetrics(useCase UseCase, m metrics.BusinessMetrics) UseCase {
	return &sessionUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (s *sessionUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "session", operation, status)
	s.metrics.RecordDuration(ctx, "session", operation, time.Since(start), status)
}

// Create records metrics for session creation.
func (s *sessionUseCaseWithMetrics) Create(
	ctx context.Context,
	userID uuid.UUID,
	tenantID *uuid.UUID,
	now time.Time,
) (*sessionDomain.Session, error) {
	start := time.Now()
	session, err := s.next.Create(ctx, userID, tenantID, now)
	s.record(ctx, "session_create", start, err)
	return session, err
}

// Status records metrics for status reads.
func (s *sessionUseCaseWithMetrics) Status(
	ctx context.Context,
	id uuid.UUID,
	now time.Time,
) (*sessionDomain.Status, error) {
	start := time.Now()
	status, err := s.next.Status(ctx, id, now)
	s.record(ctx, "session_status", start, err)
	return status, err
}

// Heartbeat records metrics for heartbeats.
func (s *sessionUseCaseWithMetrics) Heartbeat(
	ctx context.Context,
	id uuid.UUID,
	now time.Time,
) (*sessionDomain.Status, error) {
	start := time.Now()
	status, err := s.next.Heartbeat(ctx, id, now)
	s.record(ctx, "session_heartbeat", start, err)
	return status, err
}

// Extend records metrics for explicit renewals.
func (s *sessionUseCaseWithMetrics) Extend(
	ctx context.Context,
	id uuid.UUID,
	now time.Time,
) (*sessionDomain.Status, error) {
	start := time.Now()
	status, err := s.next.Extend(ctx, id, now)
	s.record(ctx, "session_extend", start, err)
	return status, err
}

// Revoke records metrics for session revocations.
func (s *sessionUseCaseWithMetrics) Revoke(ctx context.Context, id uuid.UUID, now time.Time) error {
	start := time.Now()
	err := s.next.Revoke(ctx, id, now)
	s.record(ctx, "session_revoke", start, err)
	return err
}

// RevokeAllForUser records metrics for bulk revocations.
func (s *sessionUseCaseWithMetrics) RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	start := time.Now()
	count, err := s.next.RevokeAllForUser(ctx, userID)
	s.record(ctx, "session_revoke_all", start, err)
	return count, err
}

// ListForUser records metrics for administrative session listing.
func (s *sessionUseCaseWithMetrics) ListForUser(
	ctx context.Context,
	userID uuid.UUID,
	offset, limit int,
) ([]*sessionDomain.Session, error) {
	start := time.Now()
	sessions, err := s.next.ListForUser(ctx, userID, offset, limit)
	s.record(ctx, "session_list", start, err)
	return sessions, err
}

// Policy is pass-through; reading configuration is not a business operation.
func (s *sessionUseCaseWithMetrics) Policy() sessionDomain.Policy {
	return s.next.Policy()
}
