package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	authzDomain "github.com/gtedge/aegis/internal/authz/domain"
	authzService "github.com/gtedge/aegis/internal/authz/service"
	sessionDomain "github.com/gtedge/aegis/internal/session/domain"
	sessionUsecase "github.com/gtedge/aegis/internal/session/usecase"
	userDomain "github.com/gtedge/aegis/internal/user/domain"
)

// LockoutPolicy controls credential brute-force protection. After MaxAttempts
// consecutive failures the account is locked for Duration.
type LockoutPolicy struct {
	MaxAttempts int
	Duration    time.Duration
}

// authUseCase implements the UseCase interface.
type authUseCase struct {
	userStore   UserStore
	credentials authzService.CredentialService
	tokens      authzService.TokenService
	sessions    sessionUsecase.UseCase
	lockout     LockoutPolicy
}

// NewAuthUseCase creates the authorization gate.
func NewAuthUseCase(
	userStore UserStore,
	credentials authzService.CredentialService,
	tokens authzService.TokenService,
	sessions sessionUsecase.UseCase,
	lockout LockoutPolicy,
) UseCase {
	return &authUseCase{
		userStore:   userStore,
		credentials: credentials,
		tokens:      tokens,
		sessions:    sessions,
		lockout:     lockout,
	}
}

// Login verifies credentials and issues a session-backed token.
func (a *authUseCase) Login(ctx context.Context, input LoginInput, now time.Time) (*LoginOutput, error) {
	now = now.UTC()

	user, err := a.userStore.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, userDomain.ErrUserNotFound) {
			// Unknown email and wrong password are indistinguishable to
			// the caller.
			return nil, authzDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if user.IsLocked(now) {
		return nil, userDomain.ErrUserLocked
	}
	if !user.IsActive {
		return nil, userDomain.ErrUserInactive
	}

	if !a.credentials.ComparePassword(input.Password, user.PasswordHash) {
		a.recordFailedAttempt(ctx, user, now)
		return nil, authzDomain.ErrInvalidCredentials
	}

	if user.FailedAttempts > 0 || user.LockedUntil != nil {
		if err := a.userStore.UpdateLockout(ctx, user.ID, 0, nil); err != nil {
			return nil, err
		}
	}

	session, err := a.sessions.Create(ctx, user.ID, user.TenantID, now)
	if err != nil {
		return nil, err
	}

	capabilities := user.Capabilities()
	claims := &authzDomain.IdentityClaims{
		Subject:      user.ID.String(),
		TenantID:     user.TenantID,
		UserType:     user.UserType,
		SessionID:    session.ID,
		Capabilities: capabilities,
		IssuedAt:     now,
		ExpiresAt:    tokenExpiry(now, session.IdleTimeout, session.AbsoluteDeadline()),
	}

	token, err := a.tokens.Issue(claims)
	if err != nil {
		return nil, err
	}

	return &LoginOutput{
		Token:   token,
		Session: session,
		Claims:  claims,
	}, nil
}

// recordFailedAttempt bumps the failure counter and may start a lockout
// window. Persistence errors here are logged, not returned: the login already
// failed and the caller's error must stay ErrInvalidCredentials.
func (a *authUseCase) recordFailedAttempt(ctx context.Context, user *userDomain.User, now time.Time) {
	attempts := user.FailedAttempts + 1

	var lockedUntil *time.Time
	if a.lockout.MaxAttempts > 0 && attempts >= a.lockout.MaxAttempts {
		until := now.Add(a.lockout.Duration)
		lockedUntil = &until
	}

	if err := a.userStore.UpdateLockout(ctx, user.ID, attempts, lockedUntil); err != nil {
		slog.ErrorContext(ctx, "failed to record login failure",
			"user_id", user.ID.String(),
			"error", err,
		)
	}
}

// Authorize verifies the token, checks that the backing session is still
// alive, checks the capability set against the requested resource and action,
// then records a session heartbeat. The session check precedes the capability
// match so a dead session always yields the re-authentication error, never a
// per-resource authorization answer; the heartbeat comes last so a denied
// request does not count as session activity.
func (a *authUseCase) Authorize(
	ctx context.Context,
	token, resource string,
	action authzDomain.Action,
	now time.Time,
) (*authzDomain.IdentityClaims, *sessionDomain.Status, error) {
	now = now.UTC()

	claims, err := a.tokens.Verify(token, now)
	if err != nil {
		return nil, nil, err
	}

	status, err := a.sessions.Status(ctx, claims.SessionID, now)
	if err != nil {
		return nil, nil, maskMissingSession(err)
	}
	if !status.IsValid {
		return nil, nil, expiryError(status.Reason)
	}

	if !claims.Capabilities.Authorizes(resource, action, now) {
		return nil, nil, authzDomain.ErrCapabilityDenied
	}

	status, err = a.sessions.Heartbeat(ctx, claims.SessionID, now)
	if err != nil {
		return nil, nil, maskMissingSession(err)
	}

	return claims, status, nil
}

// Inspect verifies the token and reports the session status. Unless the
// lifecycle policy counts polling as activity, this path never advances the
// idle deadline, so a client cannot keep a session alive by watching it.
func (a *authUseCase) Inspect(
	ctx context.Context,
	token string,
	now time.Time,
) (*authzDomain.IdentityClaims, *sessionDomain.Status, error) {
	now = now.UTC()

	claims, err := a.tokens.Verify(token, now)
	if err != nil {
		return nil, nil, err
	}

	var status *sessionDomain.Status
	if a.sessions.Policy().PollingCountsAsActivity {
		status, err = a.sessions.Heartbeat(ctx, claims.SessionID, now)
	} else {
		status, err = a.sessions.Status(ctx, claims.SessionID, now)
	}
	if err != nil {
		return nil, nil, maskMissingSession(err)
	}

	return claims, status, nil
}

// ExtendSession renews the session and re-issues the token. The new expiry is
// the advanced idle deadline, clamped to the unchanged absolute ceiling.
func (a *authUseCase) ExtendSession(ctx context.Context, token string, now time.Time) (*ExtendOutput, error) {
	now = now.UTC()

	claims, err := a.tokens.Verify(token, now)
	if err != nil {
		return nil, err
	}

	status, err := a.sessions.Extend(ctx, claims.SessionID, now)
	if err != nil {
		return nil, maskMissingSession(err)
	}

	renewed := &authzDomain.IdentityClaims{
		Subject:      claims.Subject,
		TenantID:     claims.TenantID,
		UserType:     claims.UserType,
		SessionID:    claims.SessionID,
		Capabilities: claims.Capabilities,
		IssuedAt:     now,
		ExpiresAt:    now.Add(minDuration(status.IdleRemaining, status.AbsoluteRemaining)),
	}

	newToken, err := a.tokens.Issue(renewed)
	if err != nil {
		return nil, err
	}

	return &ExtendOutput{
		Token:  newToken,
		Claims: renewed,
		Status: status,
	}, nil
}

// Logout revokes the session behind the token.
func (a *authUseCase) Logout(ctx context.Context, token string, now time.Time) error {
	now = now.UTC()

	claims, err := a.tokens.Verify(token, now)
	if err != nil {
		return err
	}

	if err := a.sessions.Revoke(ctx, claims.SessionID, now); err != nil {
		// Logging out of an already-deleted session is a no-op, the same as
		// logging out twice.
		if errors.Is(err, sessionDomain.ErrSessionNotFound) {
			return nil
		}
		return err
	}
	return nil
}

// expiryError maps an invalid session status to its lifecycle error.
func expiryError(reason sessionDomain.ExpiryReason) error {
	switch reason {
	case sessionDomain.ReasonRevoked:
		return sessionDomain.ErrSessionRevoked
	case sessionDomain.ReasonAbsolute:
		return sessionDomain.ErrSessionExpiredAbsolute
	default:
		return sessionDomain.ErrSessionExpiredIdle
	}
}

// maskMissingSession hides session records removed by administrative
// revocation or cleanup. Presenting a token for a deleted session must look
// exactly like presenting one for a revoked session, not reveal whether the
// record still exists.
func maskMissingSession(err error) error {
	if errors.Is(err, sessionDomain.ErrSessionNotFound) {
		return sessionDomain.ErrSessionRevoked
	}
	return err
}

// tokenExpiry returns now plus the idle window, clamped to the absolute
// deadline so a token can never outlive its session's hard ceiling.
func tokenExpiry(now time.Time, idleTimeout time.Duration, absoluteDeadline time.Time) time.Time {
	expiry := now.Add(idleTimeout)
	if expiry.After(absoluteDeadline) {
		return absoluteDeadline
	}
	return expiry
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
