// Package http provides HTTP middleware and handlers for authentication and
// capability-based authorization.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gtedge/aegis/internal/authz/http/dto"
	authzUseCase "github.com/gtedge/aegis/internal/authz/usecase"
	apperrors "github.com/gtedge/aegis/internal/errors"
	"github.com/gtedge/aegis/internal/httputil"
	customValidation "github.com/gtedge/aegis/internal/validation"
)

// AuthHandler handles HTTP requests for credential login and identity
// introspection.
type AuthHandler struct {
	authUseCase authzUseCase.UseCase
	logger      *slog.Logger
}

// NewAuthHandler creates a new authentication handler with required dependencies.
func NewAuthHandler(authUseCase authzUseCase.UseCase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
		logger:      logger,
	}
}

// LoginHandler verifies credentials, starts a session, and issues a signed
// bearer token carrying the user's capability set.
// POST /v1/login - Unauthenticated, rate limited per client IP.
// Returns 200 OK with the token and session status, 401 for wrong or unknown
// credentials, 403 for inactive users, 423 for locked accounts.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req dto.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	now := time.Now().UTC()
	output, err := h.authUseCase.Login(c.Request.Context(), authzUseCase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}, now)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.MapLoginOutputToResponse(output, now)
	c.JSON(http.StatusOK, response)
}

// WhoamiHandler reports the verified identity behind the presented token:
// subject, tenant scope, capability set, and current session status. Reading
// identity does not count as session activity unless the lifecycle policy
// says polling does.
// GET /v1/whoami - Requires a valid bearer token.
// Returns 200 OK with the identity claims, 401 for invalid tokens or dead
// sessions.
func (h *AuthHandler) WhoamiHandler(c *gin.Context) {
	token, ok := BearerToken(c)
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	claims, status, err := h.authUseCase.Inspect(c.Request.Context(), token, time.Now().UTC())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.MapClaimsToWhoamiResponse(claims, status)
	c.JSON(http.StatusOK, response)
}
