package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authUseCase "github.com/webstack/webstack/internal/auth/usecase"
	apperrors "github.com/webstack/webstack/internal/errors"
	"github.com/webstack/webstack/internal/httputil"
)

// ExtractToken pulls the session token from the request, checking the
// Authorization header first ("Bearer <token>", case-insensitive) and
// falling back to the session cookie. API clients use the header; browsers
// get the cookie set at login.
func ExtractToken(c *gin.Context, cookieName string) (string, bool) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		const bearerPrefix = "bearer "
		if len(authHeader) >= len(bearerPrefix) &&
			strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			token := authHeader[len(bearerPrefix):]
			if token != "" {
				return token, true
			}
		}
		return "", false
	}

	token, err := c.Cookie(cookieName)
	if err != nil || token == "" {
		return "", false
	}
	return token, true
}

// AuthenticationMiddleware authenticates requests via session token.
//
// The middleware:
// 1. Extracts the token from the Authorization header or the session cookie
// 2. Resolves it to a user using authUseCase.Authenticate()
// 3. Stores the user and the raw token in the request context
//
// Error handling:
//   - No token present → 401 Unauthorized
//   - Invalid/expired/revoked token → 401 Unauthorized
//   - Inactive user → 403 Forbidden
func AuthenticationMiddleware(
	useCase authUseCase.AuthUseCase,
	cookieName string,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := ExtractToken(c, cookieName)
		if !ok {
			logger.Debug("authentication failed: no session token in request")
			httputil.HandleError(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		user, err := useCase.Authenticate(c.Request.Context(), token)
		if err != nil {
			logger.Debug("authentication failed", slog.String("error", err.Error()))
			httputil.HandleError(c, err, logger)
			c.Abort()
			return
		}

		ctx := WithUser(c.Request.Context(), user)
		ctx = WithToken(ctx, token)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// AdminMiddleware rejects requests from non-admin users.
// Must run after AuthenticationMiddleware.
func AdminMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetUser(c.Request.Context())
		if !ok || user == nil {
			httputil.HandleError(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		if !user.IsAdmin() {
			logger.Debug("authorization failed: admin required",
				slog.String("user_id", user.ID.String()))
			httputil.HandleError(c, apperrors.ErrForbidden, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}
