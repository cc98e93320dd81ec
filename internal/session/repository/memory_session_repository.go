// Package repository provides session store implementations: an in-memory
// store for tests and single-node deployments, and SQL stores for PostgreSQL
// and MySQL with optimistic concurrency.
package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gtedge/aegis/internal/session/domain"
)

// MemorySessionRepository is a thread-safe in-memory session store.
// Reads are concurrent; writes are serialized per store with the same
// compare-and-swap semantics as the SQL implementations.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*domain.Session
}

// NewMemorySessionRepository creates an empty in-memory session store.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[uuid.UUID]*domain.Session),
	}
}

// Create persists a new session record.
func (r *MemorySessionRepository) Create(ctx context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *session
	r.sessions[session.ID] = &clone
	return nil
}

// Get fetches a session by ID.
func (r *MemorySessionRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	clone := *session
	return &clone, nil
}

// CompareAndSwap writes the mutated session if the stored version matches.
func (r *MemorySessionRepository) CompareAndSwap(ctx context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.sessions[session.ID]
	if !ok {
		return domain.ErrSessionNotFound
	}
	if stored.Version != session.Version {
		return domain.ErrVersionConflict
	}

	session.Version++
	clone := *session
	r.sessions[session.ID] = &clone
	return nil
}

// Delete removes a session record.
func (r *MemorySessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

// ListByUser returns a page of the user's sessions ordered by creation time.
func (r *MemorySessionRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	offset, limit int,
) ([]*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := make([]*domain.Session, 0)
	for _, session := range r.sessions {
		if session.UserID == userID {
			clone := *session
			matches = append(matches, &clone)
		}
	}
	slices.SortFunc(matches, func(a, b *domain.Session) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	if offset >= len(matches) {
		return []*domain.Session{}, nil
	}
	end := min(offset+limit, len(matches))
	return matches[offset:end], nil
}

// DeleteByUser removes all sessions for a user.
func (r *MemorySessionRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, session := range r.sessions {
		if session.UserID == userID {
			delete(r.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

// DeleteExpired removes sessions whose absolute deadline passed before the
// cutoff.
func (r *MemorySessionRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, session := range r.sessions {
		if session.AbsoluteDeadline().Before(cutoff) {
			delete(r.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}
