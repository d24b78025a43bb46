package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jellydator/validation"

	authService "github.com/webstack/webstack/internal/auth/service"
	authUseCase "github.com/webstack/webstack/internal/auth/usecase"
	"github.com/webstack/webstack/internal/database"
	userDomain "github.com/webstack/webstack/internal/user/domain"
	appValidation "github.com/webstack/webstack/internal/validation"
)

// createAdminOutput is the result printed after creating an admin account.
type createAdminOutput struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// RunCreateAdmin creates an administrator account directly against the
// repository. Admin accounts cannot be created through the public
// registration endpoint, so this is the bootstrap path for a new deployment.
//
// Requirements: Database must be migrated and accessible.
func RunCreateAdmin(
	ctx context.Context,
	txManager database.TxManager,
	userRepo authUseCase.UserRepository,
	passwordService authService.PasswordService,
	logger *slog.Logger,
	writer io.Writer,
	name string,
	email string,
	password string,
	format string,
) error {
	if err := validateCreateAdminInput(name, email, password); err != nil {
		return err
	}

	hashedPassword, err := passwordService.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &userDomain.User{
		ID:          uuid.Must(uuid.NewV7()),
		Name:        strings.TrimSpace(name),
		Email:       strings.ToLower(strings.TrimSpace(email)),
		Password:    hashedPassword,
		Role:        userDomain.RoleAdmin,
		IsActive:    true,
		IsSuperuser: true,
		Profile:     &userDomain.Profile{},
	}

	err = txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := userRepo.Create(ctx, user); err != nil {
			return err
		}
		return userRepo.SaveProfile(ctx, user.ID, user.Profile)
	})
	if err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	output := createAdminOutput{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}

	if format == "json" {
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(output); err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
	} else {
		fmt.Fprintf(writer, "Admin user created\n")
		fmt.Fprintf(writer, "ID:    %s\n", output.ID)
		fmt.Fprintf(writer, "Name:  %s\n", output.Name)
		fmt.Fprintf(writer, "Email: %s\n", output.Email)
	}

	logger.Info("admin user created",
		slog.String("user_id", user.ID.String()),
		slog.String("email", user.Email),
	)
	return nil
}

// validateCreateAdminInput applies the same rules the registration endpoint uses.
func validateCreateAdminInput(name, email, password string) error {
	errs := validation.Errors{
		"name": validation.Validate(name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("name must be between 1 and 255 characters"),
		),
		"email": validation.Validate(email,
			validation.Required.Error("email is required"),
			appValidation.Email,
		),
		"password": validation.Validate(password,
			validation.Required.Error("password is required"),
			appValidation.PasswordStrength{
				MinLength:      8,
				RequireUpper:   true,
				RequireLower:   true,
				RequireNumber:  true,
				RequireSpecial: true,
			},
		),
	}

	if err := errs.Filter(); err != nil {
		return appValidation.WrapValidationError(err)
	}
	return nil
}
