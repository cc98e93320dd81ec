// Package domain defines the user identity entities backing authentication.
package domain

import (
	"time"

	"github.com/google/uuid"

	authzDomain "github.com/gtedge/aegis/internal/authz/domain"
	"github.com/gtedge/aegis/internal/errors"
)

// User is an identity that can authenticate against the platform. The
// password is stored only as a salted one-way hash; reset flows always
// re-hash a fresh plaintext, never decrypt.
type User struct {
	ID    uuid.UUID
	Email string
	Name  string

	// PasswordHash is the Argon2id hash of the user's password.
	PasswordHash string //nolint:gosec // hashed credential, not plaintext

	// TenantID scopes the user to a tenant. Nil only for super admins.
	TenantID *uuid.UUID

	// UserType determines the capability set constructed at login.
	UserType authzDomain.UserType

	// IsActive gates authentication without deleting the record.
	IsActive bool

	// FailedAttempts counts consecutive failed logins since the last success.
	FailedAttempts int

	// LockedUntil is the end of a lockout window (nil if not locked).
	LockedUntil *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsLocked reports whether the user is inside a lockout window at now.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// Capabilities builds the grant set for this user's role and tenant scope.
func (u *User) Capabilities() authzDomain.CapabilitySet {
	tenantID := ""
	if u.TenantID != nil {
		tenantID = u.TenantID.String()
	}
	return authzDomain.NewCapabilitySet(u.UserType, tenantID)
}

// Domain-specific errors for user operations.
var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")

	// ErrUserAlreadyExists indicates a user with the same email already exists.
	ErrUserAlreadyExists = errors.Wrap(errors.ErrConflict, "user already exists")

	// ErrUserInactive indicates the user exists but cannot authenticate.
	ErrUserInactive = errors.Wrap(errors.ErrForbidden, "user is not active")

	// ErrUserLocked indicates the account is inside a lockout window after
	// too many failed login attempts.
	ErrUserLocked = errors.Wrap(errors.ErrLocked, "user account locked")

	// ErrTenantRequired indicates a tenant-scoped user type without a tenant.
	ErrTenantRequired = errors.Wrap(errors.ErrInvalidInput, "tenant is required for tenant-scoped users")
)
