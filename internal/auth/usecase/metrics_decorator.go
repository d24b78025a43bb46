package usecase

import (
	"context"
	"time"

	"github.com/webstack/webstack/internal/metrics"
	userDomain "github.com/webstack/webstack/internal/user/domain"
)

// authUseCaseWithMetrics decorates AuthUseCase with metrics instrumentation.
type authUseCaseWithMetrics struct {
	next    AuthUseCase
	metrics metrics.BusinessMetrics
}

// NewAuthUseCaseWithMetrics wraps an AuthUseCase with metrics recording.
func NewAuthUseCaseWithMetrics(useCase AuthUseCase, m metrics.BusinessMetrics) AuthUseCase {
	return &authUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (a *authUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "auth", operation, status)
	a.metrics.RecordDuration(ctx, "auth", operation, time.Since(start), status)
}

// Register records metrics for account registration.
func (a *authUseCaseWithMetrics) Register(ctx context.Context, input RegisterInput) (*userDomain.User, error) {
	start := time.Now()
	user, err := a.next.Register(ctx, input)
	a.record(ctx, "register", start, err)
	return user, err
}

// Login records metrics for login attempts.
func (a *authUseCaseWithMetrics) Login(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	start := time.Now()
	output, err := a.next.Login(ctx, input)
	a.record(ctx, "login", start, err)
	return output, err
}

// Logout records metrics for logout operations.
func (a *authUseCaseWithMetrics) Logout(ctx context.Context, token string) error {
	start := time.Now()
	err := a.next.Logout(ctx, token)
	a.record(ctx, "logout", start, err)
	return err
}

// Authenticate records metrics for token authentication.
func (a *authUseCaseWithMetrics) Authenticate(ctx context.Context, token string) (*userDomain.User, error) {
	start := time.Now()
	user, err := a.next.Authenticate(ctx, token)
	a.record(ctx, "authenticate", start, err)
	return user, err
}
