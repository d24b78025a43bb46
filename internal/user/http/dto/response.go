package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/webstack/webstack/internal/user/domain"
)

// ProfileResponse represents a user profile in API responses
type ProfileResponse struct {
	Bio         string `json:"bio"`
	AvatarURL   string `json:"avatar_url"`
	PhoneNumber string `json:"phone_number"`
}

// UserResponse represents a user in API responses.
// This enforces the boundary between internal domain models and external API
// contracts; the password hash is never serialized.
type UserResponse struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Email       string           `json:"email"`
	Role        string           `json:"role"`
	IsActive    bool             `json:"is_active"`
	IsSuperuser bool             `json:"is_superuser"`
	LastLoginAt *time.Time       `json:"last_login_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	Profile     *ProfileResponse `json:"profile,omitempty"`
}

// ListUsersResponse represents a page of users
type ListUsersResponse struct {
	Users  []UserResponse `json:"users"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// ToUserResponse converts a domain User model to a UserResponse DTO
func ToUserResponse(user *domain.User) UserResponse {
	response := UserResponse{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Role:        string(user.Role),
		IsActive:    user.IsActive,
		IsSuperuser: user.IsSuperuser,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
	if user.Profile != nil {
		response.Profile = &ProfileResponse{
			Bio:         user.Profile.Bio,
			AvatarURL:   user.Profile.AvatarURL,
			PhoneNumber: user.Profile.PhoneNumber,
		}
	}
	return response
}

// ToUserResponses converts a slice of domain users
func ToUserResponses(users []*domain.User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, ToUserResponse(user))
	}
	return responses
}
