package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	authDomain "github.com/webstack/webstack/internal/auth/domain"
	"github.com/webstack/webstack/internal/auth/revocation"
	authService "github.com/webstack/webstack/internal/auth/service"
	"github.com/webstack/webstack/internal/config"
	"github.com/webstack/webstack/internal/database"
	userDomain "github.com/webstack/webstack/internal/user/domain"
	appValidation "github.com/webstack/webstack/internal/validation"
)

// authUseCase implements AuthUseCase.
type authUseCase struct {
	config          *config.Config
	txManager       database.TxManager
	userRepo        UserRepository
	revocationStore revocation.Store
	tokenCodec      authService.TokenCodec
	passwordService authService.PasswordService
	logger          *slog.Logger
}

// NewAuthUseCase creates a new AuthUseCase
func NewAuthUseCase(
	cfg *config.Config,
	txManager database.TxManager,
	userRepo UserRepository,
	revocationStore revocation.Store,
	tokenCodec authService.TokenCodec,
	passwordService authService.PasswordService,
	logger *slog.Logger,
) AuthUseCase {
	return &authUseCase{
		config:          cfg,
		txManager:       txManager,
		userRepo:        userRepo,
		revocationStore: revocationStore,
		tokenCodec:      tokenCodec,
		passwordService: passwordService,
		logger:          logger,
	}
}

// validateRegisterInput validates the registration input using jellydator/validation
func (uc *authUseCase) validateRegisterInput(input RegisterInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("name must be between 1 and 255 characters"),
		),
		validation.Field(&input.Email,
			validation.Required.Error("email is required"),
			appValidation.NotBlank,
			appValidation.Email,
			validation.Length(5, 255).Error("email must be between 5 and 255 characters"),
		),
		validation.Field(&input.Password,
			validation.Required.Error("password is required"),
			validation.Length(8, 128).Error("password must be between 8 and 128 characters"),
			appValidation.PasswordStrength{
				MinLength:      8,
				RequireUpper:   true,
				RequireLower:   true,
				RequireNumber:  true,
				RequireSpecial: true,
			},
		),
	)
	return appValidation.WrapValidationError(err)
}

// Register creates a new user account.
//
// Emails are normalized to lowercase so the unique index treats
// "User@Example.com" and "user@example.com" as the same account. The user
// row and its empty profile row are created in one transaction.
func (uc *authUseCase) Register(ctx context.Context, input RegisterInput) (*userDomain.User, error) {
	if err := uc.validateRegisterInput(input); err != nil {
		return nil, err
	}

	hashedPassword, err := uc.passwordService.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &userDomain.User{
		ID:       uuid.Must(uuid.NewV7()),
		Name:     strings.TrimSpace(input.Name),
		Email:    normalizeEmail(input.Email),
		Password: hashedPassword,
		Role:     userDomain.RoleUser,
		IsActive: true,
		Profile:  &userDomain.Profile{},
	}

	err = uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := uc.userRepo.Create(ctx, user); err != nil {
			return err
		}
		return uc.userRepo.SaveProfile(ctx, user.ID, user.Profile)
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// Login verifies credentials and issues a session token.
//
// Unknown email and wrong password both return ErrInvalidCredentials so the
// response does not reveal which accounts exist.
func (uc *authUseCase) Login(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	user, err := uc.userRepo.GetByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, userDomain.ErrUserNotFound) {
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !uc.passwordService.Compare(input.Password, user.Password) {
		return nil, authDomain.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, userDomain.ErrUserInactive
	}

	token, claims, err := uc.tokenCodec.Issue(user.ID, uc.config.AuthTokenExpiration)
	if err != nil {
		return nil, err
	}

	// Login already succeeded; a failed timestamp update is not worth
	// failing the request over.
	now := time.Now().UTC()
	if err := uc.userRepo.SetLastLogin(ctx, user.ID, now); err != nil {
		uc.logger.Warn("failed to record last login", "user_id", user.ID, "error", err)
	} else {
		user.LastLoginAt = &now
	}

	return &LoginOutput{
		Token:     token,
		ExpiresAt: claims.ExpiryTime(),
		User:      user,
	}, nil
}

// Logout revokes the presented session token.
//
// Revocation is idempotent: revoking an already revoked token succeeds, and
// an expired token succeeds with nothing to do since it can no longer
// authenticate anyway.
func (uc *authUseCase) Logout(ctx context.Context, token string) error {
	claims, err := uc.tokenCodec.Verify(token)
	if err != nil {
		if errors.Is(err, authDomain.ErrTokenExpired) {
			return nil
		}
		return err
	}

	return uc.revocationStore.Revoke(ctx, claims.ID, claims.ExpiryTime())
}

// Authenticate resolves a session token to its user.
//
// A token passes only if its signature and expiry check out, it has not been
// revoked, and its subject still resolves to an active user.
func (uc *authUseCase) Authenticate(ctx context.Context, token string) (*userDomain.User, error) {
	claims, err := uc.tokenCodec.Verify(token)
	if err != nil {
		return nil, err
	}

	revoked, err := uc.revocationStore.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, authDomain.ErrTokenRevoked
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, authDomain.ErrTokenMalformed
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		// A valid token for a deleted user reads as bad credentials, not as
		// an account existence probe.
		if errors.Is(err, userDomain.ErrUserNotFound) {
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, userDomain.ErrUserInactive
	}

	return user, nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
