package usecase

import (
	"context"
	"time"

	authzDomain "github.com/gtedge/aegis/internal/authz/domain"
	"github.com/gtedge/aegis/internal/metrics"
	sessionDomain "github.com/gtedge/aegis/internal/session/domain"
)

// authUseCaseWithMetrics decorates UseCase with metrics instrumentation.
type authUseCaseWithMetrics struct {
	next    UseCase
	metrics metrics.BusinessMetrics
}

// NewAuthUseCaseWithMetrics wraps an auth UseCase with metrics recording.
func NewAuthUseCaseWithMetrics(useCase UseCase, m metrics.BusinessMetrics) UseCase {
	return &authUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (a *authUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "authz", operation, status)
	a.metrics.RecordDuration(ctx, "authz", operation, time.Since(start), status)
}

// Login records metrics for credential logins.
func (a *authUseCaseWithMetrics) Login(ctx context.Context, input LoginInput, now time.Time) (*LoginOutput, error) {
	start := time.Now()
	out, err := a.next.Login(ctx, input, now)
	a.record(ctx, "login", start, err)
	return out, err
}

// Authorize records metrics for authorization decisions.
func (a *authUseCaseWithMetrics) Authorize(
	ctx context.Context,
	token, resource string,
	action authzDomain.Action,
	now time.Time,
) (*authzDomain.IdentityClaims, *sessionDomain.Status, error) {
	start := time.Now()
	claims, status, err := a.next.Authorize(ctx, token, resource, action, now)
	a.record(ctx, "authorize", start, err)
	return claims, status, err
}

// Inspect records metrics for session inspections.
func (a *authUseCaseWithMetrics) Inspect(
	ctx context.Context,
	token string,
	now time.Time,
) (*authzDomain.IdentityClaims, *sessionDomain.Status, error) {
	start := time.Now()
	claims, status, err := a.next.Inspect(ctx, token, now)
	a.record(ctx, "inspect", start, err)
	return claims, status, err
}

// ExtendSession records metrics for explicit renewals.
func (a *authUseCaseWithMetrics) ExtendSession(ctx context.Context, token string, now time.Time) (*ExtendOutput, error) {
	start := time.Now()
	out, err := a.next.ExtendSession(ctx, token, now)
	a.record(ctx, "extend_session", start, err)
	return out, err
}

// Logout records metrics for logouts.
func (a *authUseCaseWithMetrics) Logout(ctx context.Context, token string, now time.Time) error {
	start := time.Now()
	err := a.next.Logout(ctx, token, now)
	a.record(ctx, "logout", start, err)
	return err
}
