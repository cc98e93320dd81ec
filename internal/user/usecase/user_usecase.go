// Package usecase implements the user business logic and orchestrates user domain operations.
package usecase

import (
	"context"
	"strings"
	"time"

	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	authzDomain "github.com/gtedge/aegis/internal/authz/domain"
	authzService "github.com/gtedge/aegis/internal/authz/service"
	"github.com/gtedge/aegis/internal/database"
	apperrors "github.com/gtedge/aegis/internal/errors"
	"github.com/gtedge/aegis/internal/user/domain"
	appValidation "github.com/gtedge/aegis/internal/validation"
)

// RegisterUserInput contains the input data for user registration.
type RegisterUserInput struct {
	Name     string               `json:"name"`
	Email    string               `json:"email"`
	Password string               `json:"password"`
	TenantID *uuid.UUID           `json:"tenant_id"`
	UserType authzDomain.UserType `json:"user_type"`
	IsActive bool                 `json:"is_active"`
}

// UseCase defines the interface for user business logic operations.
type UseCase interface {
	RegisterUser(ctx context.Context, input RegisterUserInput) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// UserRepository interface defines user repository operations.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateLockout(ctx context.Context, id uuid.UUID, failedAttempts int, lockedUntil *time.Time) error
}

// UserUseCase handles user-related business logic.
type UserUseCase struct {
	txManager   database.TxManager
	userRepo    UserRepository
	credentials authzService.CredentialService
}

// NewUserUseCase creates a new UserUseCase.
func NewUserUseCase(
	txManager database.TxManager,
	userRepo UserRepository,
	credentials authzService.CredentialService,
) UseCase {
	return &UserUseCase{
		txManager:   txManager,
		userRepo:    userRepo,
		credentials: credentials,
	}
}

// validateRegisterUserInput validates the registration input using jellydator/validation.
// Covers required fields, email format, password strength, and the rule that
// only super admins may omit a tenant.
func (uc *UserUseCase) validateRegisterUserInput(input RegisterUserInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("name must be between 1 and 255 characters"),
		),
		validation.Field(&input.Email,
			validation.Required.Error("email is required"),
			appValidation.NotBlank,
			appValidation.Email,
			validation.Length(5, 255).Error("email must be between 5 and 255 characters"),
		),
		validation.Field(&input.Password,
			validation.Required.Error("password is required"),
			validation.Length(8, 128).Error("password must be between 8 and 128 characters"),
			appValidation.PasswordStrength{
				MinLength:      8,
				RequireUpper:   true,
				RequireLower:   true,
				RequireNumber:  true,
				RequireSpecial: true,
			},
		),
	)
	if err != nil {
		return appValidation.WrapValidationError(err)
	}

	if !input.UserType.Valid() {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "invalid user type")
	}
	if input.UserType != authzDomain.SuperAdmin && input.TenantID == nil {
		return domain.ErrTenantRequired
	}
	return nil
}

// RegisterUser registers a new user with a freshly hashed password.
func (uc *UserUseCase) RegisterUser(ctx context.Context, input RegisterUserInput) (*domain.User, error) {
	// Validate input
	if err := uc.validateRegisterUserInput(input); err != nil {
		return nil, err
	}

	// Hash the password
	hashedPassword, err := uc.credentials.HashPassword(input.Password)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to hash password")
	}

	user := &domain.User{
		ID:           uuid.Must(uuid.NewV7()),
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.TrimSpace(strings.ToLower(input.Email)),
		PasswordHash: hashedPassword,
		TenantID:     input.TenantID,
		UserType:     input.UserType,
		IsActive:     input.IsActive,
	}

	// Execute within a transaction
	err = uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		return uc.userRepo.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// GetUserByEmail retrieves a user by email.
func (uc *UserUseCase) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return uc.userRepo.GetByEmail(ctx, email)
}

// GetUserByID retrieves a user by ID.
func (uc *UserUseCase) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return uc.userRepo.GetByID(ctx, id)
}
