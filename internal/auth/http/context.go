// Package http provides HTTP handlers and middleware for authentication.
package http

import (
	"context"

	userDomain "github.com/webstack/webstack/internal/user/domain"
)

// userKey is a context key type for storing authenticated users.
type userKey struct{}

// tokenKey is a context key type for storing the presented session token.
type tokenKey struct{}

// WithUser stores an authenticated user in the context.
// This is typically called by the authentication middleware after successful token validation.
func WithUser(ctx context.Context, user *userDomain.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// GetUser retrieves an authenticated user from the context.
// Returns (user, true) if a user is present, or (nil, false) if no user was set.
func GetUser(ctx context.Context) (*userDomain.User, bool) {
	user, ok := ctx.Value(userKey{}).(*userDomain.User)
	return user, ok
}

// WithToken stores the raw session token in the context so handlers like
// logout can revoke the exact token that authenticated the request.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// GetToken retrieves the raw session token from the context.
func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok
}
