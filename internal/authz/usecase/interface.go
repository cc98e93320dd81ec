// Package usecase implements the authentication and authorization flows:
// credential login with lockout, the bearer-token authorization gate, session
// inspection, explicit renewal, and logout.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authzDomain "github.com/gtedge/aegis/internal/authz/domain"
	sessionDomain "github.com/gtedge/aegis/internal/session/domain"
	userDomain "github.com/gtedge/aegis/internal/user/domain"
)

// LoginInput carries the credentials presented at login.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginOutput is the result of a successful login: a signed bearer token, the
// backing session record, and the claims embedded in the token.
type LoginOutput struct {
	Token   string
	Session *sessionDomain.Session
	Claims  *authzDomain.IdentityClaims
}

// ExtendOutput is the result of an explicit session renewal: a re-issued
// token whose expiry reflects the advanced idle deadline, plus the refreshed
// session status.
type ExtendOutput struct {
	Token  string
	Claims *authzDomain.IdentityClaims
	Status *sessionDomain.Status
}

// UserStore is the slice of user persistence the authorization flows need.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*userDomain.User, error)
	UpdateLockout(ctx context.Context, id uuid.UUID, failedAttempts int, lockedUntil *time.Time) error
}

// UseCase is the authorization gate contract. Every protected operation goes
// through Authorize: token verification, capability matching, and a session
// heartbeat happen in that order, and a failure at any step denies the
// request.
type UseCase interface {
	// Login verifies credentials, creates a session, and issues a signed
	// token embedding the user's capability set. Wrong credentials,
	// unknown emails, inactive users, and locked accounts all fail without
	// revealing which condition held.
	Login(ctx context.Context, input LoginInput, now time.Time) (*LoginOutput, error)

	// Authorize is the single decision point for protected operations.
	// It verifies the token (signature, expiry, capability-set integrity),
	// checks that the embedded capability set grants action on resource,
	// then records a session heartbeat. The returned claims identify the
	// caller; the returned status reflects the session after the heartbeat.
	Authorize(
		ctx context.Context,
		token, resource string,
		action authzDomain.Action,
		now time.Time,
	) (*authzDomain.IdentityClaims, *sessionDomain.Status, error)

	// Inspect verifies the token and reports the session status without
	// recording activity, unless the lifecycle policy counts polling as
	// activity.
	Inspect(ctx context.Context, token string, now time.Time) (*authzDomain.IdentityClaims, *sessionDomain.Status, error)

	// ExtendSession explicitly renews the session behind the token and
	// re-issues the token with a fresh expiry. Fails with
	// ErrSessionAbsoluteLimitReached once the absolute ceiling has passed.
	ExtendSession(ctx context.Context, token string, now time.Time) (*ExtendOutput, error)

	// Logout revokes the session behind the token. Idempotent.
	Logout(ctx context.Context, token string, now time.Time) error
}
