package app

import (
	"context"
	"fmt"

	authzHTTP "github.com/gtedge/aegis/internal/authz/http"
	authzService "github.com/gtedge/aegis/internal/authz/service"
	authzUseCase "github.com/gtedge/aegis/internal/authz/usecase"
)

// SigningKey returns the raw HMAC signing key, resolved from configuration
// either directly or by unwrapping a KMS-wrapped ciphertext.
func (c *Container) SigningKey() ([]byte, error) {
	var err error
	c.signingKeyInit.Do(func() {
		c.signingKey, err = c.initSigningKey()
		if err != nil {
			c.initErrors["signingKey"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["signingKey"]; exists {
		return nil, storedErr
	}
	return c.signingKey, nil
}

// CapabilityHasher returns the capability-set integrity hasher.
func (c *Container) CapabilityHasher() (authzService.CapabilityHasher, error) {
	var err error
	c.capabilityHasherInit.Do(func() {
		c.capabilityHasher, err = c.initCapabilityHasher()
		if err != nil {
			c.initErrors["capabilityHasher"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["capabilityHasher"]; exists {
		return nil, storedErr
	}
	return c.capabilityHasher, nil
}

// TokenService returns the token issuing and verification service.
func (c *Container) TokenService() (authzService.TokenService, error) {
	var err error
	c.tokenServiceInit.Do(func() {
		c.tokenService, err = c.initTokenService()
		if err != nil {
			c.initErrors["tokenService"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenService"]; exists {
		return nil, storedErr
	}
	return c.tokenService, nil
}

// CredentialService returns the password hashing service.
func (c *Container) CredentialService() authzService.CredentialService {
	c.credentialServiceInit.Do(func() {
		c.credentialService = authzService.NewCredentialService()
	})
	return c.credentialService
}

// AuthUseCase returns the authorization gate use case.
func (c *Container) AuthUseCase() (authzUseCase.UseCase, error) {
	var err error
	c.authUseCaseInit.Do(func() {
		c.authUC, err = c.initAuthUseCase()
		if err != nil {
			c.initErrors["authUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["authUseCase"]; exists {
		return nil, storedErr
	}
	return c.authUC, nil
}

// AuthHandler returns the HTTP handler for login and identity inspection.
func (c *Container) AuthHandler() (*authzHTTP.AuthHandler, error) {
	var err error
	c.authHandlerInit.Do(func() {
		c.authHandler, err = c.initAuthHandler()
		if err != nil {
			c.initErrors["authHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["authHandler"]; exists {
		return nil, storedErr
	}
	return c.authHandler, nil
}

// initSigningKey loads the token signing key, unwrapping it through KMS when
// an encrypted key and key URI are configured.
func (c *Container) initSigningKey() ([]byte, error) {
	loader := authzService.NewSigningKeyLoader(authzService.NewKMSService())

	key, err := loader.Load(
		context.Background(),
		c.config.TokenSigningKey,
		c.config.TokenSigningKeyEncrypted,
		c.config.KMSKeyURI,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load token signing key: %w", err)
	}

	return key, nil
}

// initCapabilityHasher creates the capability hasher from the signing key.
func (c *Container) initCapabilityHasher() (authzService.CapabilityHasher, error) {
	key, err := c.SigningKey()
	if err != nil {
		return nil, fmt.Errorf("failed to get signing key for capability hasher: %w", err)
	}

	return authzService.NewCapabilityHasher(key)
}

// initTokenService creates the token service from the signing key and hasher.
func (c *Container) initTokenService() (authzService.TokenService, error) {
	key, err := c.SigningKey()
	if err != nil {
		return nil, fmt.Errorf("failed to get signing key for token service: %w", err)
	}

	hasher, err := c.CapabilityHasher()
	if err != nil {
		return nil, fmt.Errorf("failed to get capability hasher for token service: %w", err)
	}

	return authzService.NewTokenService(key, c.config.TokenIssuer, hasher)
}

// initAuthUseCase creates the authorization gate with all its dependencies.
func (c *Container) initAuthUseCase() (authzUseCase.UseCase, error) {
	userRepo, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for auth use case: %w", err)
	}

	tokenService, err := c.TokenService()
	if err != nil {
		return nil, fmt.Errorf("failed to get token service for auth use case: %w", err)
	}

	sessionUC, err := c.SessionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get session use case for auth use case: %w", err)
	}

	lockout := authzUseCase.LockoutPolicy{
		MaxAttempts: c.config.LockoutMaxAttempts,
		Duration:    c.config.LockoutDuration,
	}

	baseUseCase := authzUseCase.NewAuthUseCase(
		userRepo,
		c.CredentialService(),
		tokenService,
		sessionUC,
		lockout,
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for auth use case: %w", err)
		}
		return authzUseCase.NewAuthUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initAuthHandler creates the auth HTTP handler with all its dependencies.
func (c *Container) initAuthHandler() (*authzHTTP.AuthHandler, error) {
	authUC, err := c.AuthUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get auth use case for auth handler: %w", err)
	}

	return authzHTTP.NewAuthHandler(authUC, c.Logger()), nil
}
