package app

import (
	"fmt"

	sessionDomain "github.com/gtedge/aegis/internal/session/domain"
	sessionHTTP "github.com/gtedge/aegis/internal/session/http"
	sessionRepository "github.com/gtedge/aegis/internal/session/repository"
	sessionUseCase "github.com/gtedge/aegis/internal/session/usecase"
)

// SessionRepository returns the session repository based on database driver.
func (c *Container) SessionRepository() (sessionUseCase.SessionRepository, error) {
	var err error
	c.sessionRepoInit.Do(func() {
		c.sessionRepo, err = c.initSessionRepository()
		if err != nil {
			c.initErrors["sessionRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sessionRepo"]; exists {
		return nil, storedErr
	}
	return c.sessionRepo, nil
}

// SessionUseCase returns the session lifecycle manager instance.
func (c *Container) SessionUseCase() (sessionUseCase.UseCase, error) {
	var err error
	c.sessionUseCaseInit.Do(func() {
		c.sessionUC, err = c.initSessionUseCase()
		if err != nil {
			c.initErrors["sessionUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sessionUseCase"]; exists {
		return nil, storedErr
	}
	return c.sessionUC, nil
}

// SessionHandler returns the HTTP handler for session lifecycle operations.
func (c *Container) SessionHandler() (*sessionHTTP.SessionHandler, error) {
	var err error
	c.sessionHandlerInit.Do(func() {
		c.sessionHandler, err = c.initSessionHandler()
		if err != nil {
			c.initErrors["sessionHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sessionHandler"]; exists {
		return nil, storedErr
	}
	return c.sessionHandler, nil
}

// SessionPolicy builds the session lifecycle policy from configuration.
func (c *Container) SessionPolicy() sessionDomain.Policy {
	return sessionDomain.Policy{
		IdleTimeout:             c.config.SessionIdleTimeout,
		AbsoluteTimeout:         c.config.SessionAbsoluteTimeout,
		WarningThreshold:        c.config.SessionWarningThreshold,
		PollingCountsAsActivity: c.config.SessionPollingCountsAsActivity,
	}
}

// initSessionRepository creates the session repository based on the database driver.
func (c *Container) initSessionRepository() (sessionUseCase.SessionRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for session repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return sessionRepository.NewPostgreSQLSessionRepository(db), nil
	case "mysql":
		return sessionRepository.NewMySQLSessionRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initSessionUseCase creates the session lifecycle manager with all its dependencies.
func (c *Container) initSessionUseCase() (sessionUseCase.UseCase, error) {
	sessionRepo, err := c.SessionRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get session repository for session use case: %w", err)
	}

	baseUseCase := sessionUseCase.NewSessionUseCase(sessionRepo, c.SessionPolicy())

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for session use case: %w", err)
		}
		return sessionUseCase.NewSessionUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initSessionHandler creates the session HTTP handler with all its dependencies.
func (c *Container) initSessionHandler() (*sessionHTTP.SessionHandler, error) {
	authUC, err := c.AuthUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get auth use case for session handler: %w", err)
	}

	sessionUC, err := c.SessionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get session use case for session handler: %w", err)
	}

	return sessionHTTP.NewSessionHandler(authUC, sessionUC, c.Logger()), nil
}
