// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	authzDomain "github.com/gtedge/aegis/internal/authz/domain"
	authzUseCase "github.com/gtedge/aegis/internal/authz/usecase"
	sessionDomain "github.com/gtedge/aegis/internal/session/domain"
	sessionDto "github.com/gtedge/aegis/internal/session/http/dto"
)

// CapabilityResponse is the wire form of a single capability grant.
type CapabilityResponse struct {
	Resource   string              `json:"resource"`
	Actions    []string            `json:"actions"`
	Constraint *ConstraintResponse `json:"constraint,omitempty"`
}

// ConstraintResponse is the wire form of a capability constraint.
type ConstraintResponse struct {
	Kind        string     `json:"kind"`
	ValidUntil  *time.Time `json:"valid_until,omitempty"`
	Window      *int64     `json:"window_seconds,omitempty"`
	MaxRequests *int       `json:"max_requests,omitempty"`
}

// MapCapabilitiesToResponse converts a capability set to its wire form.
func MapCapabilitiesToResponse(set authzDomain.CapabilitySet) []CapabilityResponse {
	responses := make([]CapabilityResponse, 0, len(set))
	for _, capability := range set {
		actions := make([]string, 0, len(capability.Actions))
		for _, action := range capability.Actions {
			actions = append(actions, string(action))
		}

		response := CapabilityResponse{
			Resource: capability.Resource,
			Actions:  actions,
		}

		if capability.Constraint.Kind != authzDomain.ConstraintNone {
			constraint := &ConstraintResponse{
				Kind: string(capability.Constraint.Kind),
			}
			switch capability.Constraint.Kind {
			case authzDomain.ConstraintValidUntil:
				validUntil := capability.Constraint.ValidUntil
				constraint.ValidUntil = &validUntil
			case authzDomain.ConstraintUsageLimit:
				window := int64(capability.Constraint.Window / time.Second)
				maxRequests := capability.Constraint.MaxRequests
				constraint.Window = &window
				constraint.MaxRequests = &maxRequests
			}
			response.Constraint = constraint
		}

		responses = append(responses, response)
	}
	return responses
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	AccessToken string                           `json:"access_token"`
	TokenType   string                           `json:"token_type"`
	ExpiresAt   time.Time                        `json:"expires_at"`
	Session     sessionDto.SessionStatusResponse `json:"session"`
}

// MapLoginOutputToResponse converts a login result to its response
// representation, with the session status computed at now.
func MapLoginOutputToResponse(output *authzUseCase.LoginOutput, now time.Time) LoginResponse {
	status := output.Session.StatusAt(now)
	return LoginResponse{
		AccessToken: output.Token,
		TokenType:   "Bearer",
		ExpiresAt:   output.Claims.ExpiresAt,
		Session:     sessionDto.MapStatusToResponse(&status),
	}
}

// WhoamiResponse describes the verified identity behind a token plus the
// current session status.
type WhoamiResponse struct {
	Subject      string                           `json:"subject"`
	TenantID     *string                          `json:"tenant_id,omitempty"`
	UserType     string                           `json:"user_type"`
	SessionID    string                           `json:"session_id"`
	Capabilities []CapabilityResponse             `json:"capabilities"`
	IssuedAt     time.Time                        `json:"issued_at"`
	ExpiresAt    time.Time                        `json:"expires_at"`
	Session      sessionDto.SessionStatusResponse `json:"session"`
}

// MapClaimsToWhoamiResponse converts verified claims and the observed session
// status to the whoami response representation.
func MapClaimsToWhoamiResponse(claims *authzDomain.IdentityClaims, status *sessionDomain.Status) WhoamiResponse {
	response := WhoamiResponse{
		Subject:      claims.Subject,
		UserType:     string(claims.UserType),
		SessionID:    claims.SessionID.String(),
		Capabilities: MapCapabilitiesToResponse(claims.Capabilities),
		IssuedAt:     claims.IssuedAt,
		ExpiresAt:    claims.ExpiresAt,
		Session:      sessionDto.MapStatusToResponse(status),
	}
	if claims.TenantID != nil {
		tenantID := claims.TenantID.String()
		response.TenantID = &tenantID
	}
	return response
}
