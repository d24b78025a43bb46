// Package repository provides data persistence implementations for user entities.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/webstack/webstack/internal/database"
	"github.com/webstack/webstack/internal/user/domain"

	apperrors "github.com/webstack/webstack/internal/errors"
)

// PostgreSQLUserRepository handles user persistence for PostgreSQL
type PostgreSQLUserRepository struct {
	db *sql.DB
}

// NewPostgreSQLUserRepository creates a new PostgreSQLUserRepository
func NewPostgreSQLUserRepository(db *sql.DB) *PostgreSQLUserRepository {
	return &PostgreSQLUserRepository{
		db: db,
	}
}

const postgresUserColumns = `u.id, u.name, u.email, u.password, u.role, u.is_active, u.is_superuser,
		   u.last_login_at, u.created_at, u.updated_at,
		   p.bio, p.avatar_url, p.phone_number`

// Create inserts a new user
func (r *PostgreSQLUserRepository) Create(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO users (id, name, email, password, role, is_active, is_superuser, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())`

	_, err := querier.ExecContext(ctx, query,
		user.ID, user.Name, user.Email, user.Password, user.Role, user.IsActive, user.IsSuperuser,
	)
	if err != nil {
		// Check for unique constraint violation (duplicate email)
		if isPostgreSQLUniqueViolation(err) {
			return domain.ErrUserAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// GetByID retrieves a user by ID, including the profile when one exists
func (r *PostgreSQLUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + postgresUserColumns + `
			  FROM users u
			  LEFT JOIN user_profiles p ON p.user_id = u.id
			  WHERE u.id = $1`

	user, err := scanPostgresUser(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user by id")
	}

	return user, nil
}

// GetByEmail retrieves a user by email, including the profile when one exists
func (r *PostgreSQLUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + postgresUserColumns + `
			  FROM users u
			  LEFT JOIN user_profiles p ON p.user_id = u.id
			  WHERE u.email = $1`

	user, err := scanPostgresUser(querier.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user by email")
	}

	return user, nil
}

// Update persists changes to an existing user
func (r *PostgreSQLUserRepository) Update(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE users
			  SET name = $1, email = $2, password = $3, role = $4, is_active = $5, is_superuser = $6, updated_at = NOW()
			  WHERE id = $7`

	result, err := querier.ExecContext(ctx, query,
		user.Name, user.Email, user.Password, user.Role, user.IsActive, user.IsSuperuser, user.ID,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return domain.ErrUserAlreadyExists
		}
		return apperrors.Wrap(err, "failed to update user")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get affected rows")
	}
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// SaveProfile inserts or updates the profile row for a user
func (r *PostgreSQLUserRepository) SaveProfile(ctx context.Context, userID uuid.UUID, profile *domain.Profile) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO user_profiles (user_id, bio, avatar_url, phone_number, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, NOW(), NOW())
			  ON CONFLICT (user_id)
			  DO UPDATE SET bio = EXCLUDED.bio, avatar_url = EXCLUDED.avatar_url,
			                phone_number = EXCLUDED.phone_number, updated_at = NOW()`

	_, err := querier.ExecContext(ctx, query, userID, profile.Bio, profile.AvatarURL, profile.PhoneNumber)
	if err != nil {
		return apperrors.Wrap(err, "failed to save user profile")
	}
	return nil
}

// SetLastLogin records the time of a successful login
func (r *PostgreSQLUserRepository) SetLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE users SET last_login_at = $1 WHERE id = $2`

	_, err := querier.ExecContext(ctx, query, at, userID)
	if err != nil {
		return apperrors.Wrap(err, "failed to set last login")
	}
	return nil
}

// List returns users ordered by creation time, newest first
func (r *PostgreSQLUserRepository) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + postgresUserColumns + `
			  FROM users u
			  LEFT JOIN user_profiles p ON p.user_id = u.id
			  ORDER BY u.created_at DESC
			  LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list users")
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanPostgresUser(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan user")
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate users")
	}

	return users, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPostgresUser(row rowScanner) (*domain.User, error) {
	var (
		user        domain.User
		lastLoginAt sql.NullTime
		bio         sql.NullString
		avatarURL   sql.NullString
		phoneNumber sql.NullString
	)

	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.Password, &user.Role, &user.IsActive, &user.IsSuperuser,
		&lastLoginAt, &user.CreatedAt, &user.UpdatedAt,
		&bio, &avatarURL, &phoneNumber,
	)
	if err != nil {
		return nil, err
	}

	if lastLoginAt.Valid {
		user.LastLoginAt = &lastLoginAt.Time
	}
	// A NULL bio with a present row still means the profile exists; only a
	// fully NULL join result means no profile row.
	if bio.Valid || avatarURL.Valid || phoneNumber.Valid {
		user.Profile = &domain.Profile{
			Bio:         bio.String,
			AvatarURL:   avatarURL.String,
			PhoneNumber: phoneNumber.String,
		}
	}

	return &user, nil
}

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// PostgreSQL: "duplicate key value violates unique constraint" or "pq: duplicate key"
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
}
