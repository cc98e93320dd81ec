// Package http provides the HTTP API server and its middleware.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authzDomain "github.com/gtedge/aegis/internal/authz/domain"
	authzHTTP "github.com/gtedge/aegis/internal/authz/http"
	authzUseCase "github.com/gtedge/aegis/internal/authz/usecase"
	"github.com/gtedge/aegis/internal/metrics"
	sessionHTTP "github.com/gtedge/aegis/internal/session/http"
	userHTTP "github.com/gtedge/aegis/internal/user/http"
)

// RouterConfig carries the handlers and policy knobs route registration needs.
type RouterConfig struct {
	AuthUseCase    authzUseCase.UseCase
	AuthHandler    *authzHTTP.AuthHandler
	SessionHandler *sessionHTTP.SessionHandler
	UserHandler    *userHTTP.UserHandler

	// Login endpoint rate limiting (per client IP, unauthenticated).
	LoginRateLimitEnabled bool
	LoginRateLimitRPS     float64
	LoginRateLimitBurst   int

	// Authenticated endpoint rate limiting (per bearer token).
	RateLimitEnabled bool
	RateLimitRPS     float64
	RateLimitBurst   int

	// CORS configuration.
	CORSEnabled      bool
	CORSAllowOrigins string

	// HTTP metrics. Nil MeterProvider disables request instrumentation.
	MetricsProvider  *metrics.Provider
	MetricsNamespace string
}

// Server represents the HTTP API server.
type Server struct {
	db     *sql.DB
	server *http.Server
	logger *slog.Logger
	router *gin.Engine
}

// NewServer creates a new HTTP server. The database handle is used only by
// the readiness probe; route registration happens in SetupRouter.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter builds the Gin router: recovery, request IDs, structured
// logging, optional CORS and metrics, health probes, and the API routes.
//
// Route map:
//
//	POST   /v1/login                          credential login (rate limited per IP)
//	GET    /v1/whoami                         identity behind the token
//	GET    /v1/session                        session status (side-effect-free)
//	POST   /v1/session/extend                 explicit renewal, re-issues the token
//	POST   /v1/logout                         revoke the session
//	POST   /v1/admin/users                    register a user
//	GET    /v1/admin/users/:user_id           fetch a user
//	GET    /v1/admin/users/:user_id/sessions  list a user's sessions
//	DELETE /v1/admin/users/:user_id/sessions  revoke all of a user's sessions
//
// Administrative routes require AdminAction on the matching admin resource;
// everything else carries its own token handling inside the handler.
func (s *Server) SetupRouter(cfg RouterConfig) {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if cfg.MetricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(cfg.MetricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")

	loginHandlers := []gin.HandlerFunc{}
	if cfg.LoginRateLimitEnabled {
		loginHandlers = append(loginHandlers,
			authzHTTP.LoginRateLimitMiddleware(cfg.LoginRateLimitRPS, cfg.LoginRateLimitBurst, s.logger))
	}
	loginHandlers = append(loginHandlers, cfg.AuthHandler.LoginHandler)
	v1.POST("/login", loginHandlers...)

	authenticated := v1.Group("")
	if cfg.RateLimitEnabled {
		authenticated.Use(authzHTTP.RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst, s.logger))
	}

	authenticated.GET("/whoami", cfg.AuthHandler.WhoamiHandler)
	authenticated.GET("/session", cfg.SessionHandler.StatusHandler)
	authenticated.POST("/session/extend", cfg.SessionHandler.ExtendHandler)
	authenticated.POST("/logout", cfg.SessionHandler.LogoutHandler)

	admin := authenticated.Group("/admin")
	{
		userGuard := authzHTTP.RequireCapability(
			cfg.AuthUseCase,
			authzHTTP.StaticResource("admin:users"),
			authzDomain.AdminAction,
			s.logger,
		)
		admin.POST("/users", userGuard, cfg.UserHandler.RegisterUserHandler)
		admin.GET("/users/:user_id", userGuard, cfg.UserHandler.GetUserHandler)

		sessionGuard := authzHTTP.RequireCapability(
			cfg.AuthUseCase,
			authzHTTP.StaticResource("admin:sessions"),
			authzDomain.AdminAction,
			s.logger,
		)
		admin.GET("/users/:user_id/sessions", sessionGuard, cfg.SessionHandler.ListUserSessionsHandler)
		admin.DELETE("/users/:user_id/sessions", sessionGuard, cfg.SessionHandler.RevokeUserSessionsHandler)
	}

	s.router = router
}

// GetRouter returns the configured router for testing purposes.
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can serve traffic, checking
// each dependency individually.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{}
	ready := true

	if s.db == nil {
		components["database"] = "error"
		ready = false
	} else if err := s.db.PingContext(c.Request.Context()); err != nil {
		components["database"] = "error"
		ready = false
	} else {
		components["database"] = "ok"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}

// Start starts the HTTP server. SetupRouter must have been called first.
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
