package commands

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	sessionRepository "github.com/gtedge/aegis/internal/session/repository"
	sessionUseCase "github.com/gtedge/aegis/internal/session/usecase"
)

func TestRunCleanSessions(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("deletes-only-long-dead-sessions", func(t *testing.T) {
		repo := sessionRepository.NewMemorySessionRepository()
		uc := sessionUseCase.NewSessionUseCase(repo, testSessionPolicy())

		now := time.Now().UTC()

		// Dead for a month; absolute deadline long past the cutoff.
		_, err := uc.Create(ctx, userID, nil, now.AddDate(0, 0, -30))
		require.NoError(t, err)

		// Still live; must survive the sweep.
		fresh, err := uc.Create(ctx, userID, nil, now)
		require.NoError(t, err)

		var out bytes.Buffer
		err = RunCleanSessions(ctx, repo, discardLogger(), 7, "text", IOTuple{Writer: &out})

		require.NoError(t, err)
		require.Contains(t, out.String(), "Deleted 1 expired session(s)")

		_, err = repo.Get(ctx, fresh.ID)
		require.NoError(t, err)
	})

	t.Run("json-output", func(t *testing.T) {
		repo := sessionRepository.NewMemorySessionRepository()

		var out bytes.Buffer
		err := RunCleanSessions(ctx, repo, discardLogger(), 7, "json", IOTuple{Writer: &out})

		require.NoError(t, err)
		require.Contains(t, out.String(), `"count": 0`)
	})

	t.Run("negative-days", func(t *testing.T) {
		repo := sessionRepository.NewMemorySessionRepository()

		var out bytes.Buffer
		err := RunCleanSessions(ctx, repo, discardLogger(), -1, "text", IOTuple{Writer: &out})

		require.Error(t, err)
		require.Contains(t, err.Error(), "days must be a positive number")
	})
}
