package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gtedge/aegis/internal/database"
	"github.com/gtedge/aegis/internal/session/domain"

	apperrors "github.com/gtedge/aegis/internal/errors"
)

// PostgreSQLSessionRepository handles session persistence for PostgreSQL.
// Timer durations are stored as integral seconds; timestamps in UTC.
type PostgreSQLSessionRepository struct {
	db *sql.DB
}

// NewPostgreSQLSessionRepository creates a new PostgreSQLSessionRepository.
func NewPostgreSQLSessionRepository(db *sql.DB) *PostgreSQLSessionRepository {
	return &PostgreSQLSessionRepository{
		db: db,
	}
}

const pgSessionColumns = `id, user_id, tenant_id, last_activity_at, absolute_started_at,
		idle_timeout_seconds, absolute_timeout_seconds, warning_threshold_seconds,
		revoked_at, version, created_at`

// Create persists a new session record.
func (r *PostgreSQLSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO sessions (id, user_id, tenant_id, last_activity_at, absolute_started_at,
			  idle_timeout_seconds, absolute_timeout_seconds, warning_threshold_seconds,
			  revoked_at, version, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := querier.ExecContext(ctx, query,
		session.ID, session.UserID, session.TenantID,
		session.LastActivityAt, session.AbsoluteStartedAt,
		int64(session.IdleTimeout.Seconds()),
		int64(session.AbsoluteTimeout.Seconds()),
		int64(session.WarningThreshold.Seconds()),
		session.RevokedAt, session.Version, session.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create session")
	}
	return nil
}

// Get fetches a session by ID.
func (r *PostgreSQLSessionRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + pgSessionColumns + ` FROM sessions WHERE id = $1`

	return scanPostgreSQLSession(querier.QueryRowContext(ctx, query, id))
}

// CompareAndSwap writes the mutated session record if and only if the stored
// version still matches; concurrent writers lose with ErrVersionConflict and
// must re-read. This makes heartbeat and expiry checks a single atomic
// read-modify-write per session.
func (r *PostgreSQLSessionRepository) CompareAndSwap(ctx context.Context, session *domain.Session) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE sessions
			  SET last_activity_at = $1, revoked_at = $2, version = version + 1
			  WHERE id = $3 AND version = $4`

	result, err := querier.ExecContext(ctx, query,
		session.LastActivityAt, session.RevokedAt, session.ID, session.Version,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update session")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to check session update")
	}
	if rows == 0 {
		// Distinguish a missing session from a lost race.
		if _, getErr := r.Get(ctx, session.ID); getErr != nil {
			return getErr
		}
		return domain.ErrVersionConflict
	}

	session.Version++
	return nil
}

// Delete removes a session record.
func (r *PostgreSQLSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete session")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to check session delete")
	}
	if rows == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// ListByUser returns a page of the user's sessions ordered by creation time.
func (r *PostgreSQLSessionRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	offset, limit int,
) ([]*domain.Session, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + pgSessionColumns + ` FROM sessions
			  WHERE user_id = $1 ORDER BY created_at LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list sessions")
	}
	defer rows.Close()

	sessions := make([]*domain.Session, 0)
	for rows.Next() {
		session, err := scanPostgreSQLSessionRow(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate sessions")
	}
	return sessions, nil
}

// DeleteByUser removes all sessions for a user.
func (r *PostgreSQLSessionRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete user sessions")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to check user session delete")
	}
	return rows, nil
}

// DeleteExpired removes sessions whose absolute deadline passed before cutoff.
func (r *PostgreSQLSessionRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM sessions
			  WHERE absolute_started_at + absolute_timeout_seconds * INTERVAL '1 second' < $1`

	result, err := querier.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired sessions")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to check expired session delete")
	}
	return rows, nil
}

// sessionScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type sessionScanner interface {
	Scan(dest ...any) error
}

func scanPostgreSQLSession(row *sql.Row) (*domain.Session, error) {
	session, err := scanPostgreSQLSessionRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

func scanPostgreSQLSessionRow(scanner sessionScanner) (*domain.Session, error) {
	var session domain.Session
	var idleSeconds, absoluteSeconds, warningSeconds int64

	err := scanner.Scan(
		&session.ID, &session.UserID, &session.TenantID,
		&session.LastActivityAt, &session.AbsoluteStartedAt,
		&idleSeconds, &absoluteSeconds, &warningSeconds,
		&session.RevokedAt, &session.Version, &session.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, apperrors.Wrap(err, "failed to scan session")
	}

	session.IdleTimeout = time.Duration(idleSeconds) * time.Second
	session.AbsoluteTimeout = time.Duration(absoluteSeconds) * time.Second
	session.WarningThreshold = time.Duration(warningSeconds) * time.Second
	return &session, nil
}
