// Package http provides HTTP handlers for session lifecycle operations:
// status polling, explicit renewal, logout, and administrative inspection.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authzHTTP "github.com/gtedge/aegis/internal/authz/http"
	authzUseCase "github.com/gtedge/aegis/internal/authz/usecase"
	apperrors "github.com/gtedge/aegis/internal/errors"
	"github.com/gtedge/aegis/internal/httputil"
	"github.com/gtedge/aegis/internal/session/http/dto"
	sessionUseCase "github.com/gtedge/aegis/internal/session/usecase"
)

// SessionHandler handles HTTP requests for session lifecycle operations.
// Token-bound operations (status, extend, logout) go through the
// authorization gate; administrative operations act on the session store
// directly after a capability check in the route middleware.
type SessionHandler struct {
	authUseCase    authzUseCase.UseCase
	sessionUseCase sessionUseCase.UseCase
	logger         *slog.Logger
}

// NewSessionHandler creates a new session handler with required dependencies.
func NewSessionHandler(
	authUseCase authzUseCase.UseCase,
	sessionUseCase sessionUseCase.UseCase,
	logger *slog.Logger,
) *SessionHandler {
	return &SessionHandler{
		authUseCase:    authUseCase,
		sessionUseCase: sessionUseCase,
		logger:         logger,
	}
}

// StatusHandler reports the current validity of the session behind the
// presented token. Polling this endpoint does not reset the idle clock
// unless the lifecycle policy counts polling as activity.
// GET /v1/session - Requires a valid bearer token.
// Returns 200 OK with the session status, 401 for invalid tokens or dead
// sessions.
func (h *SessionHandler) StatusHandler(c *gin.Context) {
	token, ok := authzHTTP.BearerToken(c)
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	_, status, err := h.authUseCase.Inspect(c.Request.Context(), token, time.Now().UTC())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.MapStatusToResponse(status)
	c.JSON(http.StatusOK, response)
}

// ExtendHandler explicitly renews the session behind the presented token and
// re-issues the token with a fresh expiry. Renewal advances only the idle
// deadline; the absolute ceiling fixed at login never moves, and extension
// attempts past it fail permanently.
// POST /v1/session/extend - Requires a valid bearer token.
// Returns 200 OK with the new token and refreshed status, 401 once the
// session has expired or the ceiling has been reached.
func (h *SessionHandler) ExtendHandler(c *gin.Context) {
	token, ok := authzHTTP.BearerToken(c)
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	output, err := h.authUseCase.ExtendSession(c.Request.Context(), token, time.Now().UTC())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.ExtendSessionResponse{
		AccessToken: output.Token,
		TokenType:   "Bearer",
		ExpiresAt:   output.Claims.ExpiresAt,
		Session:     dto.MapStatusToResponse(output.Status),
	}
	c.JSON(http.StatusOK, response)
}

// LogoutHandler revokes the session behind the presented token. Idempotent:
// logging out an already-revoked session succeeds.
// POST /v1/logout - Requires a syntactically valid bearer token.
// Returns 204 No Content.
func (h *SessionHandler) LogoutHandler(c *gin.Context) {
	token, ok := authzHTTP.BearerToken(c)
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	if err := h.authUseCase.Logout(c.Request.Context(), token, time.Now().UTC()); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// ListUserSessionsHandler retrieves a user's sessions with pagination support.
// GET /v1/admin/users/:user_id/sessions?offset=0&limit=50 - Requires AdminAction
// on the session administration resource.
// Returns 200 OK with the paginated session list.
func (h *SessionHandler) ListUserSessionsHandler(c *gin.Context) {
	userID, err := parseUserID(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	sessions, err := h.sessionUseCase.ListForUser(c.Request.Context(), userID, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.MapSessionsToListResponse(sessions, time.Now().UTC())
	c.JSON(http.StatusOK, response)
}

// RevokeUserSessionsHandler terminates every session belonging to a user.
// Used for administrative lockout and credential-compromise response.
// DELETE /v1/admin/users/:user_id/sessions - Requires AdminAction on the
// session administration resource.
// Returns 200 OK with the number of sessions revoked.
func (h *SessionHandler) RevokeUserSessionsHandler(c *gin.Context) {
	userID, err := parseUserID(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	count, err := h.sessionUseCase.RevokeAllForUser(c.Request.Context(), userID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.logger.Info("revoked user sessions",
		slog.String("user_id", userID.String()),
		slog.Int64("count", count))

	c.JSON(http.StatusOK, dto.RevokeSessionsResponse{RevokedCount: count})
}

// parseUserID extracts and validates the user_id path parameter.
func parseUserID(c *gin.Context) (uuid.UUID, error) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user_id parameter: must be a valid UUID")
	}
	return userID, nil
}
