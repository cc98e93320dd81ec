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

// MySQLSessionRepository handles session persistence for MySQL. UUIDs are
// stored as BINARY(16) and timer durations as integral seconds.
type MySQLSessionRepository struct {
	db *sql.DB
}

// NewMySQLSessionRepository creates a new MySQLSessionRepository.
func NewMySQLSessionRepository(db *sql.DB) *MySQLSessionRepository {
	return &MySQLSessionRepository{
		db: db,
	}
}

const mysqlSessionColumns = `id, user_id, tenant_id, last_activity_at, absolute_started_at,
		idle_timeout_seconds, absolute_timeout_seconds, warning_threshold_seconds,
		revoked_at, version, created_at`

// Create persists a new session record.
func (r *MySQLSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := session.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}
	userBytes, err := session.UserID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}
	tenantBytes, err := marshalNullableUUID(session.TenantID)
	if err != nil {
		return err
	}

	query := `INSERT INTO sessions (id, user_id, tenant_id, last_activity_at, absolute_started_at,
			  idle_timeout_seconds, absolute_timeout_seconds, warning_threshold_seconds,
			  revoked_at, version, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(ctx, query,
		idBytes, userBytes, tenantBytes,
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
func (r *MySQLSessionRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `SELECT ` + mysqlSessionColumns + ` FROM sessions WHERE id = ?`

	session, err := scanMySQLSession(querier.QueryRowContext(ctx, query, idBytes))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

// CompareAndSwap writes the mutated session record if and only if the stored
// version still matches; concurrent writers lose with ErrVersionConflict and
// must re-read.
func (r *MySQLSessionRepository) CompareAndSwap(ctx context.Context, session *domain.Session) error {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := session.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `UPDATE sessions
			  SET last_activity_at = ?, revoked_at = ?, version = version + 1
			  WHERE id = ? AND version = ?`

	result, err := querier.ExecContext(ctx, query,
		session.LastActivityAt, session.RevokedAt, idBytes, session.Version,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update session")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to check session update")
	}
	if rows == 0 {
		if _, getErr := r.Get(ctx, session.ID); getErr != nil {
			return getErr
		}
		return domain.ErrVersionConflict
	}

	session.Version++
	return nil
}

// Delete removes a session record.
func (r *MySQLSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, idBytes)
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
func (r *MySQLSessionRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	offset, limit int,
) ([]*domain.Session, error) {
	querier := database.GetTx(ctx, r.db)

	userBytes, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `SELECT ` + mysqlSessionColumns + ` FROM sessions
			  WHERE user_id = ? ORDER BY created_at LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, userBytes, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list sessions")
	}
	defer rows.Close()

	sessions := make([]*domain.Session, 0)
	for rows.Next() {
		session, err := scanMySQLSession(rows)
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
func (r *MySQLSessionRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	userBytes, err := userID.MarshalBinary()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to marshal UUID")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userBytes)
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
func (r *MySQLSessionRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM sessions
			  WHERE DATE_ADD(absolute_started_at, INTERVAL absolute_timeout_seconds SECOND) < ?`

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

func scanMySQLSession(scanner sessionScanner) (*domain.Session, error) {
	var session domain.Session
	var idBytes, userBytes, tenantBytes []byte
	var idleSeconds, absoluteSeconds, warningSeconds int64

	err := scanner.Scan(
		&idBytes, &userBytes, &tenantBytes,
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

	if err := session.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}
	if err := session.UserID.UnmarshalBinary(userBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user UUID")
	}
	if tenantBytes != nil {
		var tenantID uuid.UUID
		if err := tenantID.UnmarshalBinary(tenantBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal tenant UUID")
		}
		session.TenantID = &tenantID
	}

	session.IdleTimeout = time.Duration(idleSeconds) * time.Second
	session.AbsoluteTimeout = time.Duration(absoluteSeconds) * time.Second
	session.WarningThreshold = time.Duration(warningSeconds) * time.Second
	return &session, nil
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
