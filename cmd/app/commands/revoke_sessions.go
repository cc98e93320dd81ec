package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	sessionUseCase "github.com/gtedge/aegis/internal/session/usecase"
)

// RunRevokeSessions terminates every session belonging to a user, forcing
// re-authentication on all of their devices. Outputs the number of revoked
// sessions in either text or JSON format.
//
// Requirements: Database must be migrated and accessible.
func RunRevokeSessions(
	ctx context.Context,
	sessionUC sessionUseCase.UseCase,
	logger *slog.Logger,
	userID string,
	format string,
	io IOTuple,
) error {
	id, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user ID: %w", err)
	}

	logger.Info("revoking user sessions", slog.String("user_id", userID))

	count, err := sessionUC.RevokeAllForUser(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	// Output result based on format
	if format == "json" {
		outputJSON(map[string]interface{}{
			"user_id":       userID,
			"revoked_count": count,
		}, io.Writer)
	} else {
		_, _ = fmt.Fprintf(io.Writer, "Revoked %d session(s) for user %s\n", count, userID)
	}

	logger.Info("sessions revoked",
		slog.String("user_id", userID),
		slog.Int64("count", count),
	)

	return nil
}
