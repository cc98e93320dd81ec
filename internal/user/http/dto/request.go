// Package dto provides data transfer objects for the user HTTP layer.
package dto

import (
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	appValidation "github.com/gtedge/aegis/internal/validation"
)

// RegisterUserRequest represents the API request for user registration.
// Tenant scoping and user type are chosen by the registering administrator;
// the use case enforces that only super admins may omit a tenant.
type RegisterUserRequest struct {
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	TenantID *uuid.UUID `json:"tenant_id"`
	UserType string     `json:"user_type"`
	IsActive bool       `json:"is_active"`
}

// Validate validates the RegisterUserRequest using the jellydator/validation library
// This provides comprehensive validation including:
// - Required field checks
// - Email format validation
// - Password strength requirements (min 8 chars, uppercase, lowercase, number, special char)
func (r *RegisterUserRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("name must be between 1 and 255 characters"),
		),
		validation.Field(&r.Email,
			validation.Required.Error("email is required"),
			appValidation.NotBlank,
			appValidation.Email,
			validation.Length(5, 255).Error("email must be between 5 and 255 characters"),
		),
		validation.Field(&r.Password,
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
		validation.Field(&r.UserType,
			validation.Required.Error("user_type is required"),
		),
	)
	return appValidation.WrapValidationError(err)
}
