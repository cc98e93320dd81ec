// Package domain defines the session domain model and its lifecycle state
// machine. A session carries two independent expiry policies: an inactivity
// (idle) deadline that advances on every heartbeat, and an absolute deadline
// fixed at creation that no client action can extend. Expiry is computed
// lazily from stored timestamps plus the caller's clock; there are no
// background timers.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle state of a session at a point in time.
type State string

const (
	// StateActive means both deadlines are in the future and no warning
	// threshold has been crossed.
	StateActive State = "active"

	// StateWarningIssued means the session is still valid but the remaining
	// time before a deadline has dropped below the warning threshold.
	StateWarningIssued State = "warning_issued"

	// StateExpired means the session is no longer valid.
	StateExpired State = "expired"
)

// ExpiryReason explains why a session is invalid.
type ExpiryReason string

const (
	// ReasonNone is reported for valid sessions.
	ReasonNone ExpiryReason = ""

	// ReasonIdle means the idle timeout elapsed since the last activity.
	ReasonIdle ExpiryReason = "idle"

	// ReasonAbsolute means the absolute lifetime ceiling was reached.
	ReasonAbsolute ExpiryReason = "absolute"

	// ReasonRevoked means the session was explicitly revoked (logout or
	// administrative action).
	ReasonRevoked ExpiryReason = "revoked"
)

// Policy holds the configurable session lifecycle parameters. A single
// policy governs all sessions; there are no per-call-site variants.
type Policy struct {
	// IdleTimeout is the maximum inactivity duration before forced expiry.
	// Renewable by heartbeats.
	IdleTimeout time.Duration

	// AbsoluteTimeout is the maximum total session duration regardless of
	// activity. Never renewable.
	AbsoluteTimeout time.Duration

	// WarningThreshold is how close a deadline must be before status
	// reports show_warning.
	WarningThreshold time.Duration

	// PollingCountsAsActivity controls whether a session status poll also
	// counts as a heartbeat. When false (the default) only explicit
	// heartbeats and authorized operations reset the idle clock, so a
	// client cannot keep a session alive by polling status.
	PollingCountsAsActivity bool
}

// Session is the server-authoritative record for one authenticated session.
// Timer fields are mutated only through Touch and only by the session
// lifecycle manager; everything else reads a point-in-time Status.
type Session struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	TenantID *uuid.UUID

	// LastActivityAt advances on every heartbeat and anchors the idle
	// deadline.
	LastActivityAt time.Time

	// AbsoluteStartedAt is fixed at creation and anchors the absolute
	// deadline. Never rewritten.
	AbsoluteStartedAt time.Time

	IdleTimeout      time.Duration
	AbsoluteTimeout  time.Duration
	WarningThreshold time.Duration

	// RevokedAt is set on explicit logout or administrative revocation.
	RevokedAt *time.Time

	// Version supports optimistic concurrency in the session store:
	// concurrent heartbeats are serialized per session via compare-and-swap
	// on this counter.
	Version int64

	CreatedAt time.Time
}

// NewSession creates a session for the given identity, starting both timers
// at now.
func NewSession(userID uuid.UUID, tenantID *uuid.UUID, policy Policy, now time.Time) *Session {
	return &Session{
		ID:                uuid.Must(uuid.NewV7()),
		UserID:            userID,
		TenantID:          tenantID,
		LastActivityAt:    now,
		AbsoluteStartedAt: now,
		IdleTimeout:       policy.IdleTimeout,
		AbsoluteTimeout:   policy.AbsoluteTimeout,
		WarningThreshold:  policy.WarningThreshold,
		Version:           1,
		CreatedAt:         now,
	}
}

// IdleDeadline returns the instant the session expires if no further
// activity occurs.
func (s *Session) IdleDeadline() time.Time {
	return s.LastActivityAt.Add(s.IdleTimeout)
}

// AbsoluteDeadline returns the hard ceiling past which the session cannot be
// extended under any circumstance.
func (s *Session) AbsoluteDeadline() time.Time {
	return s.AbsoluteStartedAt.Add(s.AbsoluteTimeout)
}

// Status is a point-in-time, side-effect-free view of a session's validity.
type Status struct {
	State             State
	IsValid           bool
	IdleRemaining     time.Duration
	AbsoluteRemaining time.Duration
	ShowWarning       bool
	Reason            ExpiryReason
}

// StatusAt computes the session status at the given time. The absolute
// deadline is checked first: once reached it wins over every other
// consideration, including a concurrent heartbeat. Reading status never
// mutates the session.
func (s *Session) StatusAt(now time.Time) Status {
	if s.RevokedAt != nil && !now.Before(*s.RevokedAt) {
		return Status{State: StateExpired, Reason: ReasonRevoked}
	}

	absoluteRemaining := s.AbsoluteDeadline().Sub(now)
	if absoluteRemaining <= 0 {
		return Status{State: StateExpired, Reason: ReasonAbsolute}
	}

	idleRemaining := s.IdleDeadline().Sub(now)
	if idleRemaining <= 0 {
		return Status{State: StateExpired, Reason: ReasonIdle}
	}

	status := Status{
		State:             StateActive,
		IsValid:           true,
		IdleRemaining:     idleRemaining,
		AbsoluteRemaining: absoluteRemaining,
	}

	// The warning surfaces whichever deadline is closest; the absolute
	// deadline most needs user notice since it cannot be extended.
	if absoluteRemaining < s.WarningThreshold || idleRemaining < s.WarningThreshold {
		status.State = StateWarningIssued
		status.ShowWarning = true
	}

	return status
}

// Touch records a heartbeat, advancing LastActivityAt to now. It fails with
// the appropriate expiry error if either deadline has already passed, and
// rejects updates that would move the activity clock backward (a lost update
// from a stale concurrent writer).
func (s *Session) Touch(now time.Time) error {
	status := s.StatusAt(now)
	if !status.IsValid {
		switch status.Reason {
		case ReasonAbsolute:
			return ErrSessionExpiredAbsolute
		case ReasonRevoked:
			return ErrSessionRevoked
		default:
			return ErrSessionExpiredIdle
		}
	}

	if now.Before(s.LastActivityAt) {
		return ErrStaleActivity
	}

	s.LastActivityAt = now
	return nil
}

// Revoke marks the session as explicitly terminated at now. Idempotent: a
// second revocation keeps the earlier timestamp.
func (s *Session) Revoke(now time.Time) {
	if s.RevokedAt == nil {
		s.RevokedAt = &now
	}
}
