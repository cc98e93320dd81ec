// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/gtedge/aegis/internal/validation"
)

// LoginRequest contains the credentials presented at login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Validate checks if the login request is valid. Password strength is a
// registration-time concern; here a non-blank value is enough, since the
// stored hash decides.
func (r *LoginRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email,
			validation.Required,
			customValidation.Email,
		),
		validation.Field(&r.Password,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}
