package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authDomain "github.com/webstack/webstack/internal/auth/domain"
	"github.com/webstack/webstack/internal/auth/http/dto"
	authUseCase "github.com/webstack/webstack/internal/auth/usecase"
	"github.com/webstack/webstack/internal/config"
	"github.com/webstack/webstack/internal/httputil"
)

// AuthHandler handles HTTP requests for authentication operations.
type AuthHandler struct {
	useCase authUseCase.AuthUseCase
	config  *config.Config
	logger  *slog.Logger
}

// NewAuthHandler creates a new authentication handler with required dependencies.
func NewAuthHandler(
	useCase authUseCase.AuthUseCase,
	cfg *config.Config,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		useCase: useCase,
		config:  cfg,
		logger:  logger,
	}
}

// RegisterHandler creates a new account.
// POST /v1/auth/register - No authentication required.
// Returns 201 Created with the new user, 409 Conflict on duplicate email.
func (h *AuthHandler) RegisterHandler(c *gin.Context) {
	var req dto.RegisterRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationError(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationError(c, err, h.logger)
		return
	}

	user, err := h.useCase.Register(c.Request.Context(), authUseCase.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httputil.HandleError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserResponse(user))
}

// LoginHandler verifies credentials and starts a session.
// POST /v1/auth/login - No authentication required.
// Returns 200 OK with the token in the body and in the session cookie.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req dto.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationError(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationError(c, err, h.logger)
		return
	}

	output, err := h.useCase.Login(c.Request.Context(), authUseCase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httputil.HandleError(c, err, h.logger)
		return
	}

	h.setSessionCookie(c, output.Token, int(h.config.AuthTokenExpiration.Seconds()))

	c.JSON(http.StatusOK, dto.LoginResponse{
		Token:     output.Token,
		ExpiresAt: output.ExpiresAt,
		User:      dto.ToUserResponse(output.User),
	})
}

// LogoutHandler revokes the current session token.
// POST /v1/auth/logout - No authentication middleware; the cookie is cleared
// before anything else so even a rejected logout leaves no session behind.
// Returns 200 OK for a live, expired, or already revoked token; 401 when no
// token was presented or the token cannot be parsed or verified.
func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	// Clear the cookie regardless of what happens below. The client wants
	// out either way.
	h.setSessionCookie(c, "", -1)

	token, ok := ExtractToken(c, h.config.CookieName)
	if !ok {
		httputil.HandleError(c, authDomain.ErrTokenMalformed, h.logger)
		return
	}

	if err := h.useCase.Logout(c.Request.Context(), token); err != nil {
		// A malformed or forged token never identified a session, so there
		// is nothing to revoke and the caller gets a 401. Expired and
		// already revoked tokens were handled as success upstream.
		h.logger.Debug("logout with unusable token", slog.String("error", err.Error()))
		httputil.HandleError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "logged out"})
}

// StatusHandler reports whether the request carries a live session.
// GET /v1/auth/status - No authentication middleware.
// Always returns 200 OK; an invalid session is data, not an error.
func (h *AuthHandler) StatusHandler(c *gin.Context) {
	token, ok := ExtractToken(c, h.config.CookieName)
	if !ok {
		c.JSON(http.StatusOK, dto.StatusResponse{Authenticated: false})
		return
	}

	user, err := h.useCase.Authenticate(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusOK, dto.StatusResponse{Authenticated: false})
		return
	}

	response := dto.ToUserResponse(user)
	c.JSON(http.StatusOK, dto.StatusResponse{Authenticated: true, User: &response})
}

// setSessionCookie writes the session cookie. HttpOnly keeps it away from
// scripts and SameSite=Lax stops it riding along on cross-site POSTs.
func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.config.CookieName, token, maxAge, "/", "", h.config.CookieSecure, true)
}
