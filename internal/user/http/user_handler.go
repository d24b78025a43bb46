// Package http provides HTTP handlers for user account operations.
package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/webstack/webstack/internal/auth/http"
	apperrors "github.com/webstack/webstack/internal/errors"
	"github.com/webstack/webstack/internal/httputil"
	"github.com/webstack/webstack/internal/user/http/dto"
	userUseCase "github.com/webstack/webstack/internal/user/usecase"
)

// UserHandler handles HTTP requests for user account operations.
// All routes require authentication; the middleware puts the caller in the
// request context.
type UserHandler struct {
	useCase userUseCase.UseCase
	logger  *slog.Logger
}

// NewUserHandler creates a new user handler with required dependencies.
func NewUserHandler(useCase userUseCase.UseCase, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		useCase: useCase,
		logger:  logger,
	}
}

// MeHandler returns the caller's own account.
// GET /v1/users/me
func (h *UserHandler) MeHandler(c *gin.Context) {
	actor, ok := authHTTP.GetUser(c.Request.Context())
	if !ok {
		httputil.HandleError(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	user, err := h.useCase.GetUser(c.Request.Context(), actor, actor.ID)
	if err != nil {
		httputil.HandleError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// UpdateMeHandler updates the caller's own account.
// PUT /v1/users/me
func (h *UserHandler) UpdateMeHandler(c *gin.Context) {
	actor, ok := authHTTP.GetUser(c.Request.Context())
	if !ok {
		httputil.HandleError(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequest(c, err, h.logger)
		return
	}

	user, err := h.useCase.UpdateMe(c.Request.Context(), actor, dto.ToUpdateMeInput(req))
	if err != nil {
		httputil.HandleError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// GetUserHandler returns a user by ID. Regular users may only fetch
// themselves; admins may fetch anyone.
// GET /v1/users/:id
func (h *UserHandler) GetUserHandler(c *gin.Context) {
	actor, ok := authHTTP.GetUser(c.Request.Context())
	if !ok {
		httputil.HandleError(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequest(c, err, h.logger)
		return
	}

	user, err := h.useCase.GetUser(c.Request.Context(), actor, id)
	if err != nil {
		httputil.HandleError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// ListUsersHandler returns a page of users. Admin only.
// GET /v1/users?limit=50&offset=0
func (h *UserHandler) ListUsersHandler(c *gin.Context) {
	actor, ok := authHTTP.GetUser(c.Request.Context())
	if !ok {
		httputil.HandleError(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	users, err := h.useCase.ListUsers(c.Request.Context(), actor, limit, offset)
	if err != nil {
		httputil.HandleError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ListUsersResponse{
		Users:  dto.ToUserResponses(users),
		Limit:  limit,
		Offset: offset,
	})
}
