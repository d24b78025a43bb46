package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	authHTTP "github.com/webstack/webstack/internal/auth/http"
	authUseCase "github.com/webstack/webstack/internal/auth/usecase"
	"github.com/webstack/webstack/internal/config"
	"github.com/webstack/webstack/internal/metrics"
	userHTTP "github.com/webstack/webstack/internal/user/http"
)

// Server represents the API HTTP server
type Server struct {
	server *http.Server
	logger *slog.Logger
}

// NewServer creates the API server with all routes and middleware wired.
func NewServer(
	cfg *config.Config,
	logger *slog.Logger,
	authHandler *authHTTP.AuthHandler,
	userHandler *userHTTP.UserHandler,
	useCase authUseCase.AuthUseCase,
	db *sql.DB,
	metricsProvider *metrics.Provider,
) *Server {
	gin.SetMode(cfg.GetGinMode())

	router := gin.New()
	router.Use(requestid.New())
	router.Use(RecoveryMiddleware(logger))
	router.Use(CustomLoggerMiddleware(logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	registerRoutes(router, cfg, logger, authHandler, userHandler, useCase, db)

	return &Server{
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// registerRoutes wires the health and API endpoints.
func registerRoutes(
	router *gin.Engine,
	cfg *config.Config,
	logger *slog.Logger,
	authHandler *authHTTP.AuthHandler,
	userHandler *userHTTP.UserHandler,
	useCase authUseCase.AuthUseCase,
	db *sql.DB,
) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	router.GET("/ready", func(c *gin.Context) {
		if db != nil {
			if err := db.PingContext(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	v1 := router.Group("/v1")

	// Credential endpoints take no authentication but get rate limited to
	// slow down password guessing.
	auth := v1.Group("/auth")
	if cfg.RateLimitAuthEnabled {
		limiter := authHTTP.RateLimitMiddleware(cfg.RateLimitAuthRequestsPerSec, cfg.RateLimitAuthBurst, logger)
		auth.POST("/register", limiter, authHandler.RegisterHandler)
		auth.POST("/login", limiter, authHandler.LoginHandler)
	} else {
		auth.POST("/register", authHandler.RegisterHandler)
		auth.POST("/login", authHandler.LoginHandler)
	}

	// Logout and status handle missing or dead tokens themselves, so they
	// sit outside the authentication middleware.
	auth.POST("/logout", authHandler.LogoutHandler)
	auth.GET("/status", authHandler.StatusHandler)

	users := v1.Group("/users")
	users.Use(authHTTP.AuthenticationMiddleware(useCase, cfg.CookieName, logger))
	users.GET("/me", userHandler.MeHandler)
	users.PUT("/me", userHandler.UpdateMeHandler)
	users.GET("/:id", userHandler.GetUserHandler)
	users.GET("", authHTTP.AdminMiddleware(logger), userHandler.ListUsersHandler)
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
