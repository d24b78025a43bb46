// Package usecase implements business logic orchestration for authentication operations.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	userDomain "github.com/webstack/webstack/internal/user/domain"
)

// RegisterInput contains the input data for account registration
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginInput contains the credentials presented at login
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginOutput carries the issued session token and its expiry
type LoginOutput struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	User      *userDomain.User `json:"user"`
}

// AuthUseCase defines the interface for authentication business logic
type AuthUseCase interface {
	// Register creates a new account with a hashed password and an empty
	// profile. Returns ErrUserAlreadyExists when the email is taken.
	Register(ctx context.Context, input RegisterInput) (*userDomain.User, error)

	// Login verifies credentials and issues a session token. Unknown email
	// and wrong password both yield ErrInvalidCredentials.
	Login(ctx context.Context, input LoginInput) (*LoginOutput, error)

	// Logout revokes the session token. Expired or already revoked tokens
	// are not errors.
	Logout(ctx context.Context, token string) error

	// Authenticate resolves a session token to its user, rejecting revoked
	// tokens and inactive users.
	Authenticate(ctx context.Context, token string) (*userDomain.User, error)
}

// UserRepository defines the user persistence operations the auth flow needs
type UserRepository interface {
	Create(ctx context.Context, user *userDomain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userDomain.User, error)
	SaveProfile(ctx context.Context, userID uuid.UUID, profile *userDomain.Profile) error
	SetLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error
}
