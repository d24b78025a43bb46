// Package usecase implements the user business logic and orchestrates user domain operations.
package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	"github.com/webstack/webstack/internal/database"
	apperrors "github.com/webstack/webstack/internal/errors"
	"github.com/webstack/webstack/internal/user/domain"
	appValidation "github.com/webstack/webstack/internal/validation"
)

// ProfileInput carries profile fields for an update
type ProfileInput struct {
	Bio         string `json:"bio"`
	AvatarURL   string `json:"avatar_url"`
	PhoneNumber string `json:"phone_number"`
}

// UpdateMeInput contains the fields a user may change on their own account.
// Nil pointers leave the corresponding field untouched.
type UpdateMeInput struct {
	Name     *string       `json:"name"`
	Password *string       `json:"password"`
	Profile  *ProfileInput `json:"profile"`
}

// UseCase defines the interface for user business logic operations
type UseCase interface {
	// GetUser returns a user by ID. Non-admin actors may only read their
	// own account.
	GetUser(ctx context.Context, actor *domain.User, id uuid.UUID) (*domain.User, error)

	// ListUsers returns a page of users. Admin only.
	ListUsers(ctx context.Context, actor *domain.User, limit, offset int) ([]*domain.User, error)

	// UpdateMe applies profile and credential changes to the actor's own
	// account.
	UpdateMe(ctx context.Context, actor *domain.User, input UpdateMeInput) (*domain.User, error)
}

// UserRepository interface defines user repository operations
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	SaveProfile(ctx context.Context, userID uuid.UUID, profile *domain.Profile) error
	List(ctx context.Context, limit, offset int) ([]*domain.User, error)
	SetLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error
}

// PasswordService hashes passwords for credential changes
type PasswordService interface {
	Hash(plain string) (string, error)
}

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// UserUseCase handles user-related business logic
type UserUseCase struct {
	txManager       database.TxManager
	userRepo        UserRepository
	passwordService PasswordService
}

// NewUserUseCase creates a new UserUseCase
func NewUserUseCase(
	txManager database.TxManager,
	userRepo UserRepository,
	passwordService PasswordService,
) *UserUseCase {
	return &UserUseCase{
		txManager:       txManager,
		userRepo:        userRepo,
		passwordService: passwordService,
	}
}

// GetUser returns a user by ID with a self-or-admin authorization check
func (uc *UserUseCase) GetUser(ctx context.Context, actor *domain.User, id uuid.UUID) (*domain.User, error) {
	if actor.ID != id && !actor.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}
	return uc.userRepo.GetByID(ctx, id)
}

// ListUsers returns a page of users, admins only
func (uc *UserUseCase) ListUsers(ctx context.Context, actor *domain.User, limit, offset int) ([]*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}

	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	return uc.userRepo.List(ctx, limit, offset)
}

// validateUpdateMeInput validates the update input using jellydator/validation
func (uc *UserUseCase) validateUpdateMeInput(input UpdateMeInput) error {
	errs := validation.Errors{}

	if input.Name != nil {
		errs["name"] = validation.Validate(*input.Name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("name must be between 1 and 255 characters"),
		)
	}
	if input.Password != nil {
		errs["password"] = validation.Validate(*input.Password,
			validation.Required.Error("password is required"),
			validation.Length(8, 128).Error("password must be between 8 and 128 characters"),
			appValidation.PasswordStrength{
				MinLength:      8,
				RequireUpper:   true,
				RequireLower:   true,
				RequireNumber:  true,
				RequireSpecial: true,
			},
		)
	}
	if input.Profile != nil {
		errs["bio"] = validation.Validate(input.Profile.Bio,
			validation.Length(0, 1000).Error("bio must be at most 1000 characters"),
		)
		errs["avatar_url"] = validation.Validate(input.Profile.AvatarURL,
			validation.Length(0, 2048).Error("avatar_url must be at most 2048 characters"),
		)
		errs["phone_number"] = validation.Validate(input.Profile.PhoneNumber,
			validation.Length(0, 32).Error("phone_number must be at most 32 characters"),
		)
	}

	return appValidation.WrapValidationError(errs.Filter())
}

// UpdateMe applies changes to the actor's own account.
//
// The user row and the profile row are updated in one transaction so a
// partial update never becomes visible.
func (uc *UserUseCase) UpdateMe(ctx context.Context, actor *domain.User, input UpdateMeInput) (*domain.User, error) {
	if err := uc.validateUpdateMeInput(input); err != nil {
		return nil, err
	}

	user, err := uc.userRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Password != nil {
		hashed, err := uc.passwordService.Hash(*input.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}
	if input.Profile != nil {
		user.Profile = &domain.Profile{
			Bio:         input.Profile.Bio,
			AvatarURL:   input.Profile.AvatarURL,
			PhoneNumber: input.Profile.PhoneNumber,
		}
	}

	err = uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := uc.userRepo.Update(ctx, user); err != nil {
			return err
		}
		if input.Profile != nil {
			return uc.userRepo.SaveProfile(ctx, user.ID, user.Profile)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}
