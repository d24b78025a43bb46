package dto

import (
	"time"

	"github.com/google/uuid"

	userDomain "github.com/webstack/webstack/internal/user/domain"
)

// UserResponse represents a user in API responses. The password hash never
// leaves the domain layer.
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// LoginResponse represents the API response for a successful login
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// StatusResponse represents the API response for a session status check
type StatusResponse struct {
	Authenticated bool          `json:"authenticated"`
	User          *UserResponse `json:"user,omitempty"`
}

// MessageResponse represents a simple confirmation message
type MessageResponse struct {
	Message string `json:"message"`
}

// ToUserResponse converts a domain User model to a UserResponse DTO
func ToUserResponse(user *userDomain.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Role:        string(user.Role),
		IsActive:    user.IsActive,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}
