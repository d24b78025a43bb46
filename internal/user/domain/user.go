// Package domain defines the core user domain entities and types.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/webstack/webstack/internal/errors"
)

// Role identifies the permission level of a user account.
type Role string

// Supported user roles.
const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User represents a user account. Email is stored lowercase and is unique
// case-insensitively. Password holds the Argon2id hash, never the plaintext.
type User struct {
	ID          uuid.UUID
	Name        string
	Email       string
	Password    string
	Role        Role
	IsActive    bool
	IsSuperuser bool
	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Profile *Profile
}

// IsAdmin reports whether the user may perform administrative operations.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.IsSuperuser
}

// Profile holds the optional profile fields attached to a user.
type Profile struct {
	Bio         string
	AvatarURL   string
	PhoneNumber string
}

// Domain-specific errors for user operations.
var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")

	// ErrUserAlreadyExists indicates a user with the same email already exists.
	ErrUserAlreadyExists = errors.Wrap(errors.ErrConflict, "user already exists")

	// ErrUserInactive indicates the user account is deactivated.
	ErrUserInactive = errors.Wrap(errors.ErrForbidden, "user is inactive")
)
