package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	sessionUseCase "github.com/gtedge/aegis/internal/session/usecase"
)

// RunCleanSessions deletes session records whose absolute deadline passed
// more than the specified number of days ago. Expiry itself is lazy and
// needs no sweeper; this command only reclaims storage from long-dead rows.
//
// Requirements: Database must be migrated and accessible.
func RunCleanSessions(
	ctx context.Context,
	sessionRepo sessionUseCase.SessionRepository,
	logger *slog.Logger,
	days int,
	format string,
	io IOTuple,
) error {
	// Validate days parameter
	if days < 0 {
		return fmt.Errorf("days must be a positive number, got: %d", days)
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	logger.Info("cleaning expired sessions",
		slog.Int("days", days),
		slog.Time("cutoff", cutoff),
	)

	count, err := sessionRepo.DeleteExpired(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to clean sessions: %w", err)
	}

	// Output result based on format
	if format == "json" {
		outputJSON(map[string]interface{}{
			"count": count,
			"days":  days,
		}, io.Writer)
	} else {
		_, _ = fmt.Fprintf(io.Writer, "Deleted %d expired session(s) older than %d day(s)\n", count, days)
	}

	logger.Info("cleanup completed",
		slog.Int64("count", count),
		slog.Int("days", days),
	)

	return nil
}
