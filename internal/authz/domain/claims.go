package domain

import (
	"time"

	"github.com/google/uuid"
)

// IdentityClaims is the payload carried by a signed identity token.
// The capability set is hashed at issuance; verification recomputes the hash
// and any mismatch is treated as tampering, independent of the outer token
// signature.
type IdentityClaims struct {
	// Subject is the authenticated user identifier.
	Subject string

	// TenantID scopes the identity to a tenant. Nil for platform-level
	// super admins.
	TenantID *uuid.UUID

	// UserType classifies the identity (tenant_user, tenant_admin, super_admin).
	UserType UserType

	// SessionID links the token to its server-side session record.
	SessionID uuid.UUID

	// Capabilities is the grant set embedded at issuance. Immutable.
	Capabilities CapabilitySet

	// CapabilityHash is the integrity digest over Capabilities computed at
	// issuance.
	CapabilityHash string

	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TenantIDString returns the tenant ID in string form, or "" for identities
// without a tenant scope.
func (c *IdentityClaims) TenantIDString() string {
	if c.TenantID == nil {
		return ""
	}
	return c.TenantID.String()
}
