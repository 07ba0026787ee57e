package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/domain"
)

// PostgresUserRepository implements domain.UserRepository using PostgreSQL
type PostgresUserRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresUserRepository creates a new user repository
func NewPostgresUserRepository(db *sql.DB, logger *slog.Logger) *PostgresUserRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUserRepository{db: db, logger: logger}
}

const userColumns = `id, email, password_hash, full_name, role, status, platform_id, api_key, created_at, updated_at`

// Create inserts a new user. The unique index on (email, platform_id) is
// the authoritative duplicate guard; its violation surfaces as
// domain.ErrDuplicateIdentity so concurrent signups cannot both win.
func (r *PostgresUserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (email, password_hash, full_name, role, status, platform_id, api_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.Role,
		user.Status,
		user.PlatformID,
		user.APIKey,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateIdentity
		}
		r.logger.Error("failed to create user",
			slog.String("platform_id", user.PlatformID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByEmailAndPlatform retrieves a user by its unique (email, platform) pair.
func (r *PostgresUserRepository) GetByEmailAndPlatform(ctx context.Context, email, platformID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND platform_id = $2`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email, platformID))
}

// Update applies a status/role mutation and returns the updated record.
func (r *PostgresUserRepository) Update(ctx context.Context, id string, upd domain.UserUpdate) (*domain.User, error) {
	query := `
		UPDATE users
		SET status = COALESCE($1, status),
		    role = COALESCE($2, role),
		    updated_at = now()
		WHERE id = $3
		RETURNING ` + userColumns

	var status, role *string
	if upd.Status != nil {
		s := string(*upd.Status)
		status = &s
	}
	if upd.Role != nil {
		ro := string(*upd.Role)
		role = &ro
	}

	return r.scanOne(r.db.QueryRowContext(ctx, query, status, role, id))
}

// UpdatePassword replaces the stored password hash.
func (r *PostgresUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.exec(ctx, `UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`, passwordHash, id)
}

// UpdateAPIKey replaces the stored API key; empty clears it.
func (r *PostgresUserRepository) UpdateAPIKey(ctx context.Context, id, apiKey string) error {
	return r.exec(ctx, `UPDATE users SET api_key = $1, updated_at = now() WHERE id = $2`, apiKey, id)
}

// List returns users matching the filter, newest first.
func (r *PostgresUserRepository) List(ctx context.Context, filter domain.UserFilter) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	args := []interface{}{}
	if filter.PlatformID != "" {
		query += ` WHERE platform_id = $1`
		args = append(args, filter.PlatformID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list users", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// CountByPlatform returns the number of users in a platform.
func (r *PostgresUserRepository) CountByPlatform(ctx context.Context, platformID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE platform_id = $1`, platformID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (r *PostgresUserRepository) exec(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *PostgresUserRepository) scanOne(row rowScanner) (*domain.User, error) {
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func scanUser(row rowScanner) (*domain.User, error) {
	user := &domain.User{}
	var fullName, apiKey sql.NullString
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&fullName,
		&user.Role,
		&user.Status,
		&user.PlatformID,
		&apiKey,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.FullName = fullName.String
	user.APIKey = apiKey.String
	return user, nil
}

// isUniqueViolation reports whether err is a postgres unique-constraint
// violation (class 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
