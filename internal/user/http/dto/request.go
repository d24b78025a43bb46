// Package dto provides data transfer objects for the user HTTP layer.
package dto

import (
	userUseCase "github.com/webstack/webstack/internal/user/usecase"
)

// ProfileRequest carries profile fields in an update request
type ProfileRequest struct {
	Bio         string `json:"bio"`
	AvatarURL   string `json:"avatar_url"`
	PhoneNumber string `json:"phone_number"`
}

// UpdateMeRequest represents the API request to update the caller's account.
// Absent fields are left unchanged.
type UpdateMeRequest struct {
	Name     *string         `json:"name"`
	Password *string         `json:"password"`
	Profile  *ProfileRequest `json:"profile"`
}

// ToUpdateMeInput converts an UpdateMeRequest DTO to a use case input
func ToUpdateMeInput(req UpdateMeRequest) userUseCase.UpdateMeInput {
	input := userUseCase.UpdateMeInput{
		Name:     req.Name,
		Password: req.Password,
	}
	if req.Profile != nil {
		input.Profile = &userUseCase.ProfileInput{
			Bio:         req.Profile.Bio,
			AvatarURL:   req.Profile.AvatarURL,
			PhoneNumber: req.Profile.PhoneNumber,
		}
	}
	return input
}
