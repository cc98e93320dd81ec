// Package http provides HTTP handlers for user administration.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gtedge/aegis/internal/httputil"
	"github.com/gtedge/aegis/internal/user/http/dto"
	"github.com/gtedge/aegis/internal/user/usecase"
)

// UserHandler handles HTTP requests for user administration.
type UserHandler struct {
	userUseCase usecase.UseCase
	logger      *slog.Logger
}

// NewUserHandler creates a new user handler with required dependencies.
func NewUserHandler(userUseCase usecase.UseCase, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
		logger:      logger,
	}
}

// RegisterUserHandler registers a new user with a freshly hashed password.
// POST /v1/admin/users - Requires AdminAction on the user administration resource.
// Returns 201 Created with the user representation (no credential material).
func (h *UserHandler) RegisterUserHandler(c *gin.Context) {
	var req dto.RegisterUserRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	user, err := h.userUseCase.RegisterUser(c.Request.Context(), dto.ToRegisterUserInput(req))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.ToUserResponse(user)
	c.JSON(http.StatusCreated, response)
}

// GetUserHandler retrieves a user by ID.
// GET /v1/admin/users/:user_id - Requires AdminAction on the user
// administration resource.
// Returns 200 OK with the user representation.
func (h *UserHandler) GetUserHandler(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		httputil.HandleValidationErrorGin(
			c,
			fmt.Errorf("invalid user_id parameter: must be a valid UUID"),
			h.logger,
		)
		return
	}

	user, err := h.userUseCase.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.ToUserResponse(user)
	c.JSON(http.StatusOK, response)
}
