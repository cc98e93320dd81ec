// Package http provides HTTP middleware and handlers for authentication and
// capability-based authorization.
package http

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	authzDomain "github.com/gtedge/aegis/internal/authz/domain"
	authzUseCase "github.com/gtedge/aegis/internal/authz/usecase"
	apperrors "github.com/gtedge/aegis/internal/errors"
	"github.com/gtedge/aegis/internal/httputil"
)

// ResourceFunc resolves the protected resource identifier for a request.
// Resources are colon-delimited hierarchical names, so route parameters can
// be spliced in (for example "tenant:" + c.Param("tenant_id") + ":sessions").
type ResourceFunc func(c *gin.Context) string

// StaticResource returns a ResourceFunc for routes whose resource does not
// depend on the request.
func StaticResource(resource string) ResourceFunc {
	return func(*gin.Context) string {
		return resource
	}
}

// BearerToken extracts the bearer token from the Authorization header.
// The "Bearer" scheme prefix is matched case-insensitively. Returns
// ("", false) for a missing, malformed, or empty credential.
func BearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}

	const bearerPrefix = "bearer "
	if len(authHeader) < len(bearerPrefix) ||
		!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}

	token := authHeader[len(bearerPrefix):]
	if token == "" {
		return "", false
	}
	return token, true
}

// RequireCapability guards a route with the authorization gate.
//
// The middleware:
//  1. Extracts the bearer token from the Authorization header
//  2. Runs the full authorization pipeline: token verification, capability
//     matching against the resolved resource and action, session heartbeat
//  3. Stores the verified claims and post-heartbeat session status in the
//     request context for handlers and subsequent middleware
//
// Error handling:
//   - Missing or malformed Authorization header → 401 Unauthorized
//   - Expired, tampered, or unparseable token → 401 Unauthorized
//   - Expired or revoked session → 401 Unauthorized
//   - Capability set does not grant action on resource → 403 Forbidden
//
// A capability denial never records session activity, so probing forbidden
// routes cannot keep a session alive.
func RequireCapability(
	useCase authzUseCase.UseCase,
	resource ResourceFunc,
	action authzDomain.Action,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			logger.Debug("authorization failed: missing or malformed bearer token")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		resolvedResource := resource(c)

		claims, status, err := useCase.Authorize(
			c.Request.Context(),
			token,
			resolvedResource,
			action,
			time.Now().UTC(),
		)
		if err != nil {
			logger.Debug("authorization failed",
				slog.String("resource", resolvedResource),
				slog.String("action", string(action)),
				slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		ctx := WithClaims(c.Request.Context(), claims)
		ctx = WithSessionStatus(ctx, status)
		c.Request = c.Request.WithContext(ctx)

		logger.Debug("authorization successful",
			slog.String("subject", claims.Subject),
			slog.String("session_id", claims.SessionID.String()),
			slog.String("resource", resolvedResource),
			slog.String("action", string(action)))

		c.Next()
	}
}
