package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/webstack/webstack/internal/auth/domain"
	"github.com/webstack/webstack/internal/auth/http/dto"
	authUseCase "github.com/webstack/webstack/internal/auth/usecase"
	"github.com/webstack/webstack/internal/config"
	userDomain "github.com/webstack/webstack/internal/user/domain"
)

func newHandlerTestRouter(useCase authUseCase.AuthUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		CookieName:          testCookieName,
		AuthTokenExpiration: time.Hour,
	}
	handler := NewAuthHandler(useCase, cfg, slog.Default())

	router := gin.New()
	router.POST("/v1/auth/register", handler.RegisterHandler)
	router.POST("/v1/auth/login", handler.LoginHandler)
	router.POST("/v1/auth/logout", handler.LogoutHandler)
	router.GET("/v1/auth/status", handler.StatusHandler)
	return router
}

func postJSON(router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == testCookieName {
			return cookie
		}
	}
	return nil
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("Success_Returns201", func(t *testing.T) {
		useCase := &mockAuthUseCase{}
		user := testUser()
		useCase.On("Register", mock.Anything, authUseCase.RegisterInput{
			Name:     "John Doe",
			Email:    "john@example.com",
			Password: "Sup3r$ecret",
		}).Return(user, nil)

		w := postJSON(newHandlerTestRouter(useCase), "/v1/auth/register", dto.RegisterRequest{
			Name:            "John Doe",
			Email:           "john@example.com",
			Password:        "Sup3r$ecret",
			PasswordConfirm: "Sup3r$ecret",
		})

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp dto.UserResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, user.Email, resp.Email)
		assert.NotContains(t, w.Body.String(), "password")
		useCase.AssertExpectations(t)
	})

	t.Run("Error_DuplicateEmailReturns409", func(t *testing.T) {
		useCase := &mockAuthUseCase{}
		useCase.On("Register", mock.Anything, mock.Anything).Return(nil, userDomain.ErrUserAlreadyExists)

		w := postJSON(newHandlerTestRouter(useCase), "/v1/auth/register", dto.RegisterRequest{
			Name:            "John Doe",
			Email:           "john@example.com",
			Password:        "Sup3r$ecret",
			PasswordConfirm: "Sup3r$ecret",
		})

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Error_InvalidBodyReturns422", func(t *testing.T) {
		useCase := &mockAuthUseCase{}

		w := postJSON(newHandlerTestRouter(useCase), "/v1/auth/register", dto.RegisterRequest{
			Name:  "John Doe",
			Email: "not-an-email",
		})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		useCase.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})

	t.Run("Error_PasswordConfirmMismatchReturns422", func(t *testing.T) {
		useCase := &mockAuthUseCase{}

		w := postJSON(newHandlerTestRouter(useCase), "/v1/auth/register", dto.RegisterRequest{
			Name:            "John Doe",
			Email:           "john@example.com",
			Password:        "Sup3r$ecret",
			PasswordConfirm: "Sup3r$ecret-typo",
		})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "password_confirm")
		useCase.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("Success_SetsSessionCookie", func(t *testing.T) {
		useCase := &mockAuthUseCase{}
		user := testUser()
		useCase.On("Login", mock.Anything, authUseCase.LoginInput{
			Email:    "john@example.com",
			Password: "Sup3r$ecret",
		}).Return(&authUseCase.LoginOutput{
			Token:     "issued-token",
			ExpiresAt: time.Now().Add(time.Hour),
			User:      user,
		}, nil)

		w := postJSON(newHandlerTestRouter(useCase), "/v1/auth/login", dto.LoginRequest{
			Email:    "john@example.com",
			Password: "Sup3r$ecret",
		})

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.LoginResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "issued-token", resp.Token)
		assert.Equal(t, user.Email, resp.User.Email)

		cookie := sessionCookie(t, w)
		require.NotNil(t, cookie)
		assert.Equal(t, "issued-token", cookie.Value)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
		assert.Equal(t, int(time.Hour.Seconds()), cookie.MaxAge)
	})

	t.Run("Error_BadCredentialsReturns401", func(t *testing.T) {
		useCase := &mockAuthUseCase{}
		useCase.On("Login", mock.Anything, mock.Anything).Return(nil, authDomain.ErrInvalidCredentials)

		w := postJSON(newHandlerTestRouter(useCase), "/v1/auth/login", dto.LoginRequest{
			Email:    "john@example.com",
			Password: "wrong",
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Nil(t, sessionCookie(t, w))
	})

	t.Run("Error_MissingFieldsReturns422", func(t *testing.T) {
		useCase := &mockAuthUseCase{}

		w := postJSON(newHandlerTestRouter(useCase), "/v1/auth/login", dto.LoginRequest{})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		useCase.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	t.Run("Success_RevokesAndClearsCookie", func(t *testing.T) {
		useCase := &mockAuthUseCase{}
		useCase.On("Logout", mock.Anything, "live-token").Return(nil)

		router := newHandlerTestRouter(useCase)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil)
		req.AddCookie(&http.Cookie{Name: testCookieName, Value: "live-token"})
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		cookie := sessionCookie(t, w)
		require.NotNil(t, cookie)
		assert.Empty(t, cookie.Value)
		assert.Negative(t, cookie.MaxAge)
		useCase.AssertExpectations(t)
	})

	t.Run("Error_WithoutTokenReturns401ButClearsCookie", func(t *testing.T) {
		useCase := &mockAuthUseCase{}

		router := newHandlerTestRouter(useCase)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)

		cookie := sessionCookie(t, w)
		require.NotNil(t, cookie)
		assert.Empty(t, cookie.Value)
		assert.Negative(t, cookie.MaxAge)
		useCase.AssertNotCalled(t, "Logout", mock.Anything, mock.Anything)
	})

	t.Run("Error_UnusableTokenReturns401ButClearsCookie", func(t *testing.T) {
		useCase := &mockAuthUseCase{}
		useCase.On("Logout", mock.Anything, "garbage").Return(authDomain.ErrTokenMalformed)

		router := newHandlerTestRouter(useCase)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)

		cookie := sessionCookie(t, w)
		require.NotNil(t, cookie)
		assert.Negative(t, cookie.MaxAge)
	})

	t.Run("Success_ExpiredTokenIsIdempotent", func(t *testing.T) {
		// The use case treats expired and already revoked tokens as success,
		// so the handler answers 200 for them.
		useCase := &mockAuthUseCase{}
		useCase.On("Logout", mock.Anything, "expired-token").Return(nil)

		router := newHandlerTestRouter(useCase)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil)
		req.Header.Set("Authorization", "Bearer expired-token")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestAuthHandler_Status(t *testing.T) {
	t.Run("Authenticated", func(t *testing.T) {
		useCase := &mockAuthUseCase{}
		user := testUser()
		useCase.On("Authenticate", mock.Anything, "live-token").Return(user, nil)

		router := newHandlerTestRouter(useCase)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/auth/status", nil)
		req.AddCookie(&http.Cookie{Name: testCookieName, Value: "live-token"})
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.StatusResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Authenticated)
		require.NotNil(t, resp.User)
		assert.Equal(t, user.Email, resp.User.Email)
	})

	t.Run("NotAuthenticated_NoToken", func(t *testing.T) {
		useCase := &mockAuthUseCase{}

		router := newHandlerTestRouter(useCase)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/auth/status", nil))

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.StatusResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Authenticated)
		assert.Nil(t, resp.User)
	})

	t.Run("NotAuthenticated_DeadTokenNever401s", func(t *testing.T) {
		useCase := &mockAuthUseCase{}
		useCase.On("Authenticate", mock.Anything, "dead").Return(nil, authDomain.ErrTokenExpired)

		router := newHandlerTestRouter(useCase)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/auth/status", nil)
		req.Header.Set("Authorization", "Bearer dead")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.StatusResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Authenticated)
	})
}
