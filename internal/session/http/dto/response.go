// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	"github.com/gtedge/aegis/internal/session/domain"
)

// SessionStatusResponse is the point-in-time validity view of a session.
// Remaining times are reported in whole seconds; clients drive their renewal
// prompts from show_warning rather than recomputing thresholds.
type SessionStatusResponse struct {
	State                    string `json:"state"`
	IsValid                  bool   `json:"is_valid"`
	IdleRemainingSeconds     int64  `json:"idle_remaining_seconds"`
	AbsoluteRemainingSeconds int64  `json:"absolute_remaining_seconds"`
	ShowWarning              bool   `json:"show_warning"`
	Reason                   string `json:"reason,omitempty"`
}

// MapStatusToResponse converts a domain session status to its response representation.
func MapStatusToResponse(status *domain.Status) SessionStatusResponse {
	return SessionStatusResponse{
		State:                    string(status.State),
		IsValid:                  status.IsValid,
		IdleRemainingSeconds:     int64(status.IdleRemaining / time.Second),
		AbsoluteRemainingSeconds: int64(status.AbsoluteRemaining / time.Second),
		ShowWarning:              status.ShowWarning,
		Reason:                   string(status.Reason),
	}
}

// ExtendSessionResponse is returned by the explicit renewal endpoint: a
// re-issued token plus the refreshed session status.
type ExtendSessionResponse struct {
	AccessToken string                `json:"access_token"`
	TokenType   string                `json:"token_type"`
	ExpiresAt   time.Time             `json:"expires_at"`
	Session     SessionStatusResponse `json:"session"`
}

// SessionResponse is the administrative view of a session record.
type SessionResponse struct {
	ID                string     `json:"id"`
	UserID            string     `json:"user_id"`
	TenantID          *string    `json:"tenant_id,omitempty"`
	State             string     `json:"state"`
	LastActivityAt    time.Time  `json:"last_activity_at"`
	AbsoluteStartedAt time.Time  `json:"absolute_started_at"`
	IdleDeadline      time.Time  `json:"idle_deadline"`
	AbsoluteDeadline  time.Time  `json:"absolute_deadline"`
	RevokedAt         *time.Time `json:"revoked_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// MapSessionToResponse converts a domain session to its administrative
// response representation, with the state computed at now.
func MapSessionToResponse(session *domain.Session, now time.Time) SessionResponse {
	response := SessionResponse{
		ID:                session.ID.String(),
		UserID:            session.UserID.String(),
		State:             string(session.StatusAt(now).State),
		LastActivityAt:    session.LastActivityAt,
		AbsoluteStartedAt: session.AbsoluteStartedAt,
		IdleDeadline:      session.IdleDeadline(),
		AbsoluteDeadline:  session.AbsoluteDeadline(),
		RevokedAt:         session.RevokedAt,
		CreatedAt:         session.CreatedAt,
	}
	if session.TenantID != nil {
		tenantID := session.TenantID.String()
		response.TenantID = &tenantID
	}
	return response
}

// ListSessionsResponse is a paginated list of sessions for administrative inspection.
type ListSessionsResponse struct {
	Sessions []SessionResponse `json:"sessions"`
	Count    int               `json:"count"`
}

// MapSessionsToListResponse converts domain sessions to a list response.
func MapSessionsToListResponse(sessions []*domain.Session, now time.Time) ListSessionsResponse {
	responses := make([]SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		responses = append(responses, MapSessionToResponse(session, now))
	}
	return ListSessionsResponse{
		Sessions: responses,
		Count:    len(responses),
	}
}

// RevokeSessionsResponse reports how many sessions an administrative
// revocation removed.
type RevokeSessionsResponse struct {
	RevokedCount int64 `json:"revoked_count"`
}
