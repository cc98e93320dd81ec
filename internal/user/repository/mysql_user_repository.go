// Package repository provides data persistence implementations for user entities.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gtedge/aegis/internal/database"
	"github.com/gtedge/aegis/internal/user/domain"

	apperrors "github.com/gtedge/aegis/internal/errors"
)

// MySQLUserRepository handles user persistence for MySQL.
type MySQLUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository creates a new MySQLUserRepository.
func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{
		db: db,
	}
}

const mysqlUserColumns = `id, email, name, password_hash, tenant_id, user_type, is_active,
		failed_attempts, locked_until, created_at, updated_at`

// Create inserts a new user.
func (r *MySQLUserRepository) Create(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO users (id, email, name, password_hash, tenant_id, user_type, is_active,
			  failed_attempts, locked_until, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`

	// Convert UUIDs to bytes for MySQL BINARY(16)
	idBytes, err := user.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}
	tenantBytes, err := marshalNullableUUID(user.TenantID)
	if err != nil {
		return err
	}

	_, err = querier.ExecContext(ctx, query,
		idBytes, user.Email, user.Name, user.PasswordHash, tenantBytes,
		user.UserType, user.IsActive, user.FailedAttempts, user.LockedUntil,
	)
	if err != nil {
		// Check for unique constraint violation (duplicate email)
		if isMySQLUniqueViolation(err) {
			return domain.ErrUserAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *MySQLUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + mysqlUserColumns + ` FROM users WHERE id = ?`

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	return scanMySQLUser(querier.QueryRowContext(ctx, query, idBytes))
}

// GetByEmail retrieves a user by email.
func (r *MySQLUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + mysqlUserColumns + ` FROM users WHERE email = ?`

	return scanMySQLUser(querier.QueryRowContext(ctx, query, email))
}

// UpdateLockout persists the failed-attempt counter and lockout window.
func (r *MySQLUserRepository) UpdateLockout(
	ctx context.Context,
	id uuid.UUID,
	failedAttempts int,
	lockedUntil *time.Time,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE users SET failed_attempts = ?, locked_until = ?, updated_at = NOW()
			  WHERE id = ?`

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	result, err := querier.ExecContext(ctx, query, failedAttempts, lockedUntil, idBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to update user lockout")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to check lockout update")
	}
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// scanMySQLUser scans one user row, converting BINARY(16) columns back to
// UUIDs and mapping sql.ErrNoRows onto the domain not-found error.
func scanMySQLUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	var idBytes, tenantBytes []byte

	err := row.Scan(
		&idBytes, &user.Email, &user.Name, &user.PasswordHash, &tenantBytes,
		&user.UserType, &user.IsActive, &user.FailedAttempts, &user.LockedUntil,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to scan user")
	}

	if err := user.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}
	if tenantBytes != nil {
		var tenantID uuid.UUID
		if err := tenantID.UnmarshalBinary(tenantBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal tenant UUID")
		}
		user.TenantID = &tenantID
	}

	return &user, nil
}

// marshalNullableUUID converts an optional UUID to BINARY(16) bytes or nil.
func marshalNullableUUID(id *uuid.UUID) ([]byte, error) {
	if id == nil {
		return nil, nil
	}
	b, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}
	return b, nil
}

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint violation.
func isMySQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// MySQL: "Error 1062: Duplicate entry"
	return strings.Contains(errMsg, "duplicate entry") || strings.Contains(errMsg, "1062")
}
