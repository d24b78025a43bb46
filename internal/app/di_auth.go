package app

import (
	"fmt"

	authHTTP "github.com/webstack/webstack/internal/auth/http"
	"github.com/webstack/webstack/internal/auth/revocation"
	authService "github.com/webstack/webstack/internal/auth/service"
	authUseCase "github.com/webstack/webstack/internal/auth/usecase"
	userHTTP "github.com/webstack/webstack/internal/user/http"
)

// TokenCodec returns the session token codec.
func (c *Container) TokenCodec() (authService.TokenCodec, error) {
	c.tokenCodecInit.Do(func() {
		codec, err := c.initTokenCodec()
		if err != nil {
			c.initErrors["tokenCodec"] = err
			return
		}
		c.tokenCodec = codec
	})
	if storedErr, exists := c.initErrors["tokenCodec"]; exists {
		return nil, storedErr
	}
	return c.tokenCodec, nil
}

// PasswordService returns the password hashing service.
func (c *Container) PasswordService() authService.PasswordService {
	c.passwordServiceInit.Do(func() {
		c.passwordService = authService.NewArgon2PasswordService()
	})
	return c.passwordService
}

// RevocationStore returns the token revocation store based on configuration.
func (c *Container) RevocationStore() (revocation.Store, error) {
	c.revocationStoreInit.Do(func() {
		store, err := c.initRevocationStore()
		if err != nil {
			c.initErrors["revocationStore"] = err
			return
		}
		c.revocationStore = store
	})
	if storedErr, exists := c.initErrors["revocationStore"]; exists {
		return nil, storedErr
	}
	return c.revocationStore, nil
}

// AuthUseCase returns the authentication use case.
func (c *Container) AuthUseCase() (authUseCase.AuthUseCase, error) {
	c.authUseCaseInit.Do(func() {
		useCase, err := c.initAuthUseCase()
		if err != nil {
			c.initErrors["authUseCase"] = err
			return
		}
		c.authUseCase = useCase
	})
	if storedErr, exists := c.initErrors["authUseCase"]; exists {
		return nil, storedErr
	}
	return c.authUseCase, nil
}

// AuthHandler returns the HTTP handler for authentication operations.
func (c *Container) AuthHandler() (*authHTTP.AuthHandler, error) {
	c.authHandlerInit.Do(func() {
		handler, err := c.initAuthHandler()
		if err != nil {
			c.initErrors["authHandler"] = err
			return
		}
		c.authHandler = handler
	})
	if storedErr, exists := c.initErrors["authHandler"]; exists {
		return nil, storedErr
	}
	return c.authHandler, nil
}

// UserHandler returns the HTTP handler for user operations.
func (c *Container) UserHandler() (*userHTTP.UserHandler, error) {
	c.userHandlerInit.Do(func() {
		handler, err := c.initUserHandler()
		if err != nil {
			c.initErrors["userHandler"] = err
			return
		}
		c.userHandler = handler
	})
	if storedErr, exists := c.initErrors["userHandler"]; exists {
		return nil, storedErr
	}
	return c.userHandler, nil
}

// initTokenCodec derives the signing key from the master secret and creates the codec.
func (c *Container) initTokenCodec() (authService.TokenCodec, error) {
	signingKey, err := authService.DeriveSigningKey(c.config.AuthSecretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to derive token signing key: %w", err)
	}
	return authService.NewJWTTokenCodec(signingKey), nil
}

// initRevocationStore creates the revocation store based on the configured backend.
func (c *Container) initRevocationStore() (revocation.Store, error) {
	switch c.config.RevocationStore {
	case "memory":
		return revocation.NewMemoryStore(), nil
	case "redis":
		return revocation.NewRedisStore(c.RedisClient()), nil
	default:
		return nil, fmt.Errorf("unsupported revocation store: %s", c.config.RevocationStore)
	}
}

// initAuthUseCase creates the auth use case with all its dependencies.
func (c *Container) initAuthUseCase() (authUseCase.AuthUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for auth use case: %w", err)
	}

	userRepo, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for auth use case: %w", err)
	}

	revocationStore, err := c.RevocationStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get revocation store for auth use case: %w", err)
	}

	tokenCodec, err := c.TokenCodec()
	if err != nil {
		return nil, fmt.Errorf("failed to get token codec for auth use case: %w", err)
	}

	baseUseCase := authUseCase.NewAuthUseCase(
		c.config,
		txManager,
		userRepo,
		revocationStore,
		tokenCodec,
		c.PasswordService(),
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for auth use case: %w", err)
		}
		return authUseCase.NewAuthUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initAuthHandler creates the auth HTTP handler with all its dependencies.
func (c *Container) initAuthHandler() (*authHTTP.AuthHandler, error) {
	useCase, err := c.AuthUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get auth use case for auth handler: %w", err)
	}

	return authHTTP.NewAuthHandler(useCase, c.config, c.Logger()), nil
}

// initUserHandler creates the user HTTP handler with all its dependencies.
func (c *Container) initUserHandler() (*userHTTP.UserHandler, error) {
	useCase, err := c.UserUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get user use case for user handler: %w", err)
	}

	return userHTTP.NewUserHandler(useCase, c.Logger()), nil
}
