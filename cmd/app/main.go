// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/gtedge/aegis/cmd/app/commands"
	"github.com/gtedge/aegis/internal/app"
	"github.com/gtedge/aegis/internal/config"
)

const version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "aegis",
		Usage:   "Capability-based authorization and session lifecycle service",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg := config.Load()
					container := app.NewContainer(cfg)
					return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
				},
			},
			{
				Name:  "create-user",
				Usage: "Register a new user account",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Required: true,
						Usage:    "Full name of the user",
					},
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Required: true,
						Usage:    "Email address (unique, used for login)",
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Required: true,
						Usage:    "Initial password",
					},
					&cli.StringFlag{
						Name:    "tenant-id",
						Aliases: []string{"t"},
						Usage:   "Tenant UUID (required for tenant_admin and tenant_user)",
					},
					&cli.StringFlag{
						Name:    "user-type",
						Aliases: []string{"u"},
						Value:   "tenant_user",
						Usage:   "User type: super_admin, tenant_admin, or tenant_user",
					},
					&cli.BoolFlag{
						Name:    "active",
						Aliases: []string{"a"},
						Value:   true,
						Usage:   "Whether the user can log in immediately",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withContainer(func(container *app.Container) error {
						userUC, err := container.UserUseCase()
						if err != nil {
							return fmt.Errorf("failed to initialize user use case: %w", err)
						}
						return commands.RunCreateUser(
							ctx,
							userUC,
							container.Logger(),
							cmd.String("name"),
							cmd.String("email"),
							cmd.String("password"),
							cmd.String("tenant-id"),
							cmd.String("user-type"),
							cmd.Bool("active"),
							cmd.String("format"),
							commands.DefaultIO(),
						)
					})
				},
			},
			{
				Name:  "revoke-sessions",
				Usage: "Terminate every session belonging to a user",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "user-id",
						Aliases:  []string{"u"},
						Required: true,
						Usage:    "User ID (UUID)",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withContainer(func(container *app.Container) error {
						sessionUC, err := container.SessionUseCase()
						if err != nil {
							return fmt.Errorf("failed to initialize session use case: %w", err)
						}
						return commands.RunRevokeSessions(
							ctx,
							sessionUC,
							container.Logger(),
							cmd.String("user-id"),
							cmd.String("format"),
							commands.DefaultIO(),
						)
					})
				},
			},
			{
				Name:  "clean-sessions",
				Usage: "Delete session records dead longer than the given number of days",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "days",
						Aliases:  []string{"d"},
						Required: true,
						Usage:    "Delete sessions whose absolute deadline passed more than this many days ago",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withContainer(func(container *app.Container) error {
						sessionRepo, err := container.SessionRepository()
						if err != nil {
							return fmt.Errorf("failed to initialize session repository: %w", err)
						}
						return commands.RunCleanSessions(
							ctx,
							sessionRepo,
							container.Logger(),
							int(cmd.Int("days")),
							cmd.String("format"),
							commands.DefaultIO(),
						)
					})
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}

// withContainer builds a DI container from the environment, runs fn, and
// shuts the container down afterwards.
func withContainer(fn func(container *app.Container) error) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()

	defer func() {
		if err := container.Shutdown(context.Background()); err != nil {
			logger.Error("failed to shutdown container", slog.Any("error", err))
		}
	}()

	return fn(container)
}
