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

// MySQLUserRepository handles user persistence for MySQL
type MySQLUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository creates a new MySQLUserRepository
func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{
		db: db,
	}
}

const mysqlUserColumns = `u.id, u.name, u.email, u.password, u.role, u.is_active, u.is_superuser,
		   u.last_login_at, u.created_at, u.updated_at,
		   p.bio, p.avatar_url, p.phone_number`

// Create inserts a new user
func (r *MySQLUserRepository) Create(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO users (id, name, email, password, role, is_active, is_superuser, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, NOW(6), NOW(6))`

	// Convert UUID to bytes for MySQL BINARY(16)
	uuidBytes, err := user.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	_, err = querier.ExecContext(ctx, query,
		uuidBytes, user.Name, user.Email, user.Password, user.Role, user.IsActive, user.IsSuperuser,
	)
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return domain.ErrUserAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// GetByID retrieves a user by ID, including the profile when one exists
func (r *MySQLUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + mysqlUserColumns + `
			  FROM users u
			  LEFT JOIN user_profiles p ON p.user_id = u.id
			  WHERE u.id = ?`

	uuidBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	user, err := scanMySQLUser(querier.QueryRowContext(ctx, query, uuidBytes))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user by id")
	}

	return user, nil
}

// GetByEmail retrieves a user by email, including the profile when one exists
func (r *MySQLUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + mysqlUserColumns + `
			  FROM users u
			  LEFT JOIN user_profiles p ON p.user_id = u.id
			  WHERE u.email = ?`

	user, err := scanMySQLUser(querier.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user by email")
	}

	return user, nil
}

// Update persists changes to an existing user
func (r *MySQLUserRepository) Update(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	// The driver reports changed rows, not matched rows. NOW(6) keeps
	// updated_at moving at microsecond precision, so an existing row always
	// counts as changed and zero rows really means the id was not found.
	query := `UPDATE users
			  SET name = ?, email = ?, password = ?, role = ?, is_active = ?, is_superuser = ?, updated_at = NOW(6)
			  WHERE id = ?`

	uuidBytes, err := user.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	result, err := querier.ExecContext(ctx, query,
		user.Name, user.Email, user.Password, user.Role, user.IsActive, user.IsSuperuser, uuidBytes,
	)
	if err != nil {
		if isMySQLUniqueViolation(err) {
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
func (r *MySQLUserRepository) SaveProfile(ctx context.Context, userID uuid.UUID, profile *domain.Profile) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO user_profiles (user_id, bio, avatar_url, phone_number, created_at, updated_at)
			  VALUES (?, ?, ?, ?, NOW(6), NOW(6))
			  ON DUPLICATE KEY UPDATE bio = VALUES(bio), avatar_url = VALUES(avatar_url),
			                          phone_number = VALUES(phone_number), updated_at = NOW(6)`

	uuidBytes, err := userID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	_, err = querier.ExecContext(ctx, query, uuidBytes, profile.Bio, profile.AvatarURL, profile.PhoneNumber)
	if err != nil {
		return apperrors.Wrap(err, "failed to save user profile")
	}
	return nil
}

// SetLastLogin records the time of a successful login
func (r *MySQLUserRepository) SetLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE users SET last_login_at = ? WHERE id = ?`

	uuidBytes, err := userID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	_, err = querier.ExecContext(ctx, query, at, uuidBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to set last login")
	}
	return nil
}

// List returns users ordered by creation time, newest first
func (r *MySQLUserRepository) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + mysqlUserColumns + `
			  FROM users u
			  LEFT JOIN user_profiles p ON p.user_id = u.id
			  ORDER BY u.created_at DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list users")
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanMySQLUser(rows)
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

func scanMySQLUser(row rowScanner) (*domain.User, error) {
	var (
		user        domain.User
		idBytes     []byte
		lastLoginAt sql.NullTime
		bio         sql.NullString
		avatarURL   sql.NullString
		phoneNumber sql.NullString
	)

	err := row.Scan(
		&idBytes, &user.Name, &user.Email, &user.Password, &user.Role, &user.IsActive, &user.IsSuperuser,
		&lastLoginAt, &user.CreatedAt, &user.UpdatedAt,
		&bio, &avatarURL, &phoneNumber,
	)
	if err != nil {
		return nil, err
	}

	// Convert bytes back to UUID
	if err := user.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}

	if lastLoginAt.Valid {
		user.LastLoginAt = &lastLoginAt.Time
	}
	if bio.Valid || avatarURL.Valid || phoneNumber.Valid {
		user.Profile = &domain.Profile{
			Bio:         bio.String,
			AvatarURL:   avatarURL.String,
			PhoneNumber: phoneNumber.String,
		}
	}

	return &user, nil
}

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint violation
func isMySQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// MySQL: "Error 1062: Duplicate entry"
	return strings.Contains(errMsg, "duplicate entry") || strings.Contains(errMsg, "error 1062")
}
