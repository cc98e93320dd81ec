package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	authzDomain "github.com/gtedge/aegis/internal/authz/domain"
	userUseCase "github.com/gtedge/aegis/internal/user/usecase"
)

// RunCreateUser registers a new user account. Tenant-scoped user types
// require a tenant ID; super admins must not carry one. Outputs the created
// user's ID in either text or JSON format.
//
// Requirements: Database must be migrated and accessible.
func RunCreateUser(
	ctx context.Context,
	userUC userUseCase.UseCase,
	logger *slog.Logger,
	name string,
	email string,
	password string,
	tenantID string,
	userType string,
	isActive bool,
	format string,
	io IOTuple,
) error {
	logger.Info("creating new user",
		slog.String("email", email),
		slog.String("user_type", userType),
	)

	var tenant *uuid.UUID
	if tenantID != "" {
		parsed, err := uuid.Parse(tenantID)
		if err != nil {
			return fmt.Errorf("invalid tenant ID: %w", err)
		}
		tenant = &parsed
	}

	user, err := userUC.RegisterUser(ctx, userUseCase.RegisterUserInput{
		Name:     name,
		Email:    email,
		Password: password,
		TenantID: tenant,
		UserType: authzDomain.UserType(userType),
		IsActive: isActive,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	// Output result based on format
	if format == "json" {
		result := map[string]interface{}{
			"id":        user.ID.String(),
			"email":     user.Email,
			"user_type": string(user.UserType),
			"is_active": user.IsActive,
		}
		if user.TenantID != nil {
			result["tenant_id"] = user.TenantID.String()
		}
		outputJSON(result, io.Writer)
	} else {
		_, _ = fmt.Fprintf(io.Writer, "User created successfully\n")
		_, _ = fmt.Fprintf(io.Writer, "ID:        %s\n", user.ID)
		_, _ = fmt.Fprintf(io.Writer, "Email:     %s\n", user.Email)
		_, _ = fmt.Fprintf(io.Writer, "User type: %s\n", user.UserType)
		if user.TenantID != nil {
			_, _ = fmt.Fprintf(io.Writer, "Tenant:    %s\n", user.TenantID)
		}
	}

	logger.Info("user created successfully",
		slog.String("user_id", user.ID.String()),
		slog.String("email", user.Email),
	)

	return nil
}
