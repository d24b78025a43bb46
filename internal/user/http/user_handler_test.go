package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authHTTP "github.com/webstack/webstack/internal/auth/http"
	apperrors "github.com/webstack/webstack/internal/errors"
	"github.com/webstack/webstack/internal/user/domain"
	"github.com/webstack/webstack/internal/user/http/dto"
	userUseCase "github.com/webstack/webstack/internal/user/usecase"
)

// mockUserUseCase is a mock implementation of usecase.UseCase.
type mockUserUseCase struct {
	mock.Mock
}

func (m *mockUserUseCase) GetUser(ctx context.Context, actor *domain.User, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserUseCase) ListUsers(ctx context.Context, actor *domain.User, limit, offset int) ([]*domain.User, error) {
	args := m.Called(ctx, actor, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *mockUserUseCase) UpdateMe(ctx context.Context, actor *domain.User, input userUseCase.UpdateMeInput) (*domain.User, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func testUser() *domain.User {
	return &domain.User{
		ID:       uuid.Must(uuid.NewV7()),
		Name:     "John Doe",
		Email:    "john@example.com",
		Role:     domain.RoleUser,
		IsActive: true,
	}
}

// newRouter wires the handler behind a stub that injects actor into the
// request context the way the authentication middleware does.
func newRouter(useCase userUseCase.UseCase, actor *domain.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewUserHandler(useCase, slog.Default())

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if actor != nil {
			c.Request = c.Request.WithContext(authHTTP.WithUser(c.Request.Context(), actor))
		}
	})
	router.GET("/v1/users/me", handler.MeHandler)
	router.PUT("/v1/users/me", handler.UpdateMeHandler)
	router.GET("/v1/users/:id", handler.GetUserHandler)
	router.GET("/v1/users", handler.ListUsersHandler)
	return router
}

func TestUserHandler_Me(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		useCase := &mockUserUseCase{}
		actor := testUser()
		actor.Profile = &domain.Profile{Bio: "gopher"}
		useCase.On("GetUser", mock.Anything, actor, actor.ID).Return(actor, nil)

		w := httptest.NewRecorder()
		newRouter(useCase, actor).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/users/me", nil))

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.UserResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, actor.Email, resp.Email)
		require.NotNil(t, resp.Profile)
		assert.Equal(t, "gopher", resp.Profile.Bio)
	})

	t.Run("Error_NoAuthenticatedUser", func(t *testing.T) {
		useCase := &mockUserUseCase{}

		w := httptest.NewRecorder()
		newRouter(useCase, nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/users/me", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestUserHandler_UpdateMe(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		useCase := &mockUserUseCase{}
		actor := testUser()

		updated := *actor
		updated.Name = "Jane Doe"
		useCase.On("UpdateMe", mock.Anything, actor, mock.MatchedBy(func(input userUseCase.UpdateMeInput) bool {
			return input.Name != nil && *input.Name == "Jane Doe"
		})).Return(&updated, nil)

		body, _ := json.Marshal(dto.UpdateMeRequest{Name: strPtr("Jane Doe")})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/v1/users/me", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		newRouter(useCase, actor).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.UserResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Jane Doe", resp.Name)
	})

	t.Run("Error_ValidationFailureReturns422", func(t *testing.T) {
		useCase := &mockUserUseCase{}
		actor := testUser()
		useCase.On("UpdateMe", mock.Anything, actor, mock.Anything).
			Return(nil, apperrors.Wrap(apperrors.ErrInvalidInput, "name: cannot be blank"))

		body, _ := json.Marshal(dto.UpdateMeRequest{Name: strPtr("  ")})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/v1/users/me", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		newRouter(useCase, actor).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_MalformedJSONReturns400", func(t *testing.T) {
		useCase := &mockUserUseCase{}
		actor := testUser()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/v1/users/me", bytes.NewReader([]byte("{not json")))
		req.Header.Set("Content-Type", "application/json")
		newRouter(useCase, actor).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUserHandler_GetUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		useCase := &mockUserUseCase{}
		actor := testUser()
		useCase.On("GetUser", mock.Anything, actor, actor.ID).Return(actor, nil)

		w := httptest.NewRecorder()
		newRouter(useCase, actor).ServeHTTP(w,
			httptest.NewRequest(http.MethodGet, "/v1/users/"+actor.ID.String(), nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Error_ForbiddenReturns403", func(t *testing.T) {
		useCase := &mockUserUseCase{}
		actor := testUser()
		other := uuid.Must(uuid.NewV7())
		useCase.On("GetUser", mock.Anything, actor, other).Return(nil, apperrors.ErrForbidden)

		w := httptest.NewRecorder()
		newRouter(useCase, actor).ServeHTTP(w,
			httptest.NewRequest(http.MethodGet, "/v1/users/"+other.String(), nil))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Error_InvalidUUIDReturns400", func(t *testing.T) {
		useCase := &mockUserUseCase{}
		actor := testUser()

		w := httptest.NewRecorder()
		newRouter(useCase, actor).ServeHTTP(w,
			httptest.NewRequest(http.MethodGet, "/v1/users/not-a-uuid", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		useCase.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUserHandler_ListUsers(t *testing.T) {
	t.Run("Success_WithPagination", func(t *testing.T) {
		useCase := &mockUserUseCase{}
		actor := testUser()
		actor.Role = domain.RoleAdmin
		useCase.On("ListUsers", mock.Anything, actor, 10, 20).
			Return([]*domain.User{testUser(), testUser()}, nil)

		w := httptest.NewRecorder()
		newRouter(useCase, actor).ServeHTTP(w,
			httptest.NewRequest(http.MethodGet, "/v1/users?limit=10&offset=20", nil))

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.ListUsersResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Users, 2)
		assert.Equal(t, 10, resp.Limit)
		assert.Equal(t, 20, resp.Offset)
	})

	t.Run("Error_NonAdminReturns403", func(t *testing.T) {
		useCase := &mockUserUseCase{}
		actor := testUser()
		useCase.On("ListUsers", mock.Anything, actor, 50, 0).Return(nil, apperrors.ErrForbidden)

		w := httptest.NewRecorder()
		newRouter(useCase, actor).ServeHTTP(w,
			httptest.NewRequest(http.MethodGet, "/v1/users", nil))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func strPtr(s string) *string {
	return &s
}
