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

// PostgreSQLUserRepository handles user persistence for PostgreSQL.
type PostgreSQLUserRepository struct {
	db *sql.DB
}

// NewPostgreSQLUserRepository creates a new PostgreSQLUserRepository.
func NewPostgreSQLUserRepository(db *sql.DB) *PostgreSQLUserRepository {
	return &PostgreSQLUserRepository{
		db: db,
	}
}

const pgUserColumns = `id, email, name, password_hash, tenant_id, user_type, is_active,
		failed_attempts, locked_until, created_at, updated_at`

// Create inserts a new user.
func (r *PostgreSQLUserRepository) Create(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO users (id, email, name, password_hash, tenant_id, user_type, is_active,
			  failed_attempts, locked_until, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())`

	_, err := querier.ExecContext(ctx, query,
		user.ID, user.Email, user.Name, user.PasswordHash, user.TenantID,
		user.UserType, user.IsActive, user.FailedAttempts, user.LockedUntil,
	)
	if err != nil {
		// Check for unique constraint violation (duplicate email)
		if isPostgreSQLUniqueViolation(err) {
			return domain.ErrUserAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *PostgreSQLUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + pgUserColumns + ` FROM users WHERE id = $1`

	return scanPostgreSQLUser(querier.QueryRowContext(ctx, query, id))
}

// GetByEmail retrieves a user by email.
func (r *PostgreSQLUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + pgUserColumns + ` FROM users WHERE email = $1`

	return scanPostgreSQLUser(querier.QueryRowContext(ctx, query, email))
}

// UpdateLockout persists the failed-attempt counter and lockout window.
func (r *PostgreSQLUserRepository) UpdateLockout(
	ctx context.Context,
	id uuid.UUID,
	failedAttempts int,
	lockedUntil *time.Time,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE users SET failed_attempts = $1, locked_until = $2, updated_at = NOW()
			  WHERE id = $3`

	result, err := querier.ExecContext(ctx, query, failedAttempts, lockedUntil, id)
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

// scanPostgreSQLUser scans one user row, mapping sql.ErrNoRows onto the
// domain not-found error.
func scanPostgreSQLUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.TenantID,
		&user.UserType, &user.IsActive, &user.FailedAttempts, &user.LockedUntil,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to scan user")
	}
	return &user, nil
}

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// PostgreSQL: "duplicate key value violates unique constraint" or "pq: duplicate key"
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
}
