package commands

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	sessionDomain "github.com/gtedge/aegis/internal/session/domain"
	sessionRepository "github.com/gtedge/aegis/internal/session/repository"
	sessionUseCase "github.com/gtedge/aegis/internal/session/usecase"
)

func testSessionPolicy() sessionDomain.Policy {
	return sessionDomain.Policy{
		IdleTimeout:      30 * time.Minute,
		AbsoluteTimeout:  12 * time.Hour,
		WarningThreshold: 5 * time.Minute,
	}
}

func TestRunRevokeSessions(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("revokes-all-sessions", func(t *testing.T) {
		repo := sessionRepository.NewMemorySessionRepository()
		uc := sessionUseCase.NewSessionUseCase(repo, testSessionPolicy())

		now := time.Now().UTC()
		_, err := uc.Create(ctx, userID, nil, now)
		require.NoError(t, err)
		_, err = uc.Create(ctx, userID, nil, now)
		require.NoError(t, err)

		var out bytes.Buffer
		err = RunRevokeSessions(ctx, uc, discardLogger(), userID.String(), "text", IOTuple{Writer: &out})

		require.NoError(t, err)
		require.Contains(t, out.String(), "Revoked 2 session(s)")

		sessions, err := uc.ListForUser(ctx, userID, 0, 10)
		require.NoError(t, err)
		require.Empty(t, sessions)
	})

	t.Run("json-output", func(t *testing.T) {
		repo := sessionRepository.NewMemorySessionRepository()
		uc := sessionUseCase.NewSessionUseCase(repo, testSessionPolicy())

		var out bytes.Buffer
		err := RunRevokeSessions(ctx, uc, discardLogger(), userID.String(), "json", IOTuple{Writer: &out})

		require.NoError(t, err)
		require.Contains(t, out.String(), `"revoked_count": 0`)
	})

	t.Run("invalid-user-id", func(t *testing.T) {
		repo := sessionRepository.NewMemorySessionRepository()
		uc := sessionUseCase.NewSessionUseCase(repo, testSessionPolicy())

		var out bytes.Buffer
		err := RunRevokeSessions(ctx, uc, discardLogger(), "not-a-uuid", "text", IOTuple{Writer: &out})

		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid user ID")
	})
}
