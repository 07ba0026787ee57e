package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/domain"
)

// PostgresPlatformRepository implements domain.PlatformRepository using PostgreSQL
type PostgresPlatformRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresPlatformRepository creates a new platform repository
func NewPostgresPlatformRepository(db *sql.DB, logger *slog.Logger) *PostgresPlatformRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresPlatformRepository{db: db, logger: logger}
}

const platformColumns = `id, code, name, domain, description, is_active, is_master, created_at, updated_at`

// Create inserts a new platform.
func (r *PostgresPlatformRepository) Create(ctx context.Context, platform *domain.Platform) error {
	query := `
		INSERT INTO platforms (code, name, domain, description, is_active, is_master)
		VALUES ($1, $2, $3, $4, $5, false)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(
		ctx,
		query,
		platform.Code,
		platform.Name,
		platform.Domain,
		platform.Description,
		platform.IsActive,
	).Scan(&platform.ID, &platform.CreatedAt, &platform.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateCode
		}
		r.logger.Error("failed to create platform",
			slog.String("code", platform.Code),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create platform: %w", err)
	}
	return nil
}

// GetByID retrieves a platform by ID
func (r *PostgresPlatformRepository) GetByID(ctx context.Context, id string) (*domain.Platform, error) {
	query := `SELECT ` + platformColumns + ` FROM platforms WHERE id = $1`
	return scanPlatformRow(r.db.QueryRowContext(ctx, query, id))
}

// GetByCode retrieves a platform by its unique code.
func (r *PostgresPlatformRepository) GetByCode(ctx context.Context, code string) (*domain.Platform, error) {
	query := `SELECT ` + platformColumns + ` FROM platforms WHERE code = $1`
	return scanPlatformRow(r.db.QueryRowContext(ctx, query, code))
}

// Update mutates the updatable platform fields. The code column is never
// touched here.
func (r *PostgresPlatformRepository) Update(ctx context.Context, id string, upd domain.PlatformUpdate) (*domain.Platform, error) {
	query := `
		UPDATE platforms
		SET name = COALESCE($1, name),
		    domain = COALESCE($2, domain),
		    description = COALESCE($3, description),
		    is_active = COALESCE($4, is_active),
		    updated_at = now()
		WHERE id = $5
		RETURNING ` + platformColumns

	return scanPlatformRow(r.db.QueryRowContext(
		ctx,
		query,
		upd.Name,
		upd.Domain,
		upd.Description,
		upd.IsActive,
		id,
	))
}

// ListActive returns active platforms ordered by name.
func (r *PostgresPlatformRepository) ListActive(ctx context.Context) ([]*domain.Platform, error) {
	query := `SELECT ` + platformColumns + ` FROM platforms WHERE is_active = true ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list platforms: %w", err)
	}
	defer rows.Close()

	var out []*domain.Platform
	for rows.Next() {
		p, err := scanPlatform(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListWithUserCounts returns every platform with its user count, ordered
// by name.
func (r *PostgresPlatformRepository) ListWithUserCounts(ctx context.Context) ([]*domain.PlatformWithCount, error) {
	query := `
		SELECT p.id, p.code, p.name, p.domain, p.description, p.is_active, p.is_master,
		       p.created_at, p.updated_at, COUNT(u.id)
		FROM platforms p
		LEFT JOIN users u ON u.platform_id = p.id
		GROUP BY p.id
		ORDER BY p.name ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list platforms: %w", err)
	}
	defer rows.Close()

	var out []*domain.PlatformWithCount
	for rows.Next() {
		p := &domain.PlatformWithCount{}
		var domainCol, description sql.NullString
		err := rows.Scan(
			&p.ID, &p.Code, &p.Name, &domainCol, &description,
			&p.IsActive, &p.IsMaster, &p.CreatedAt, &p.UpdatedAt, &p.UserCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan platform: %w", err)
		}
		p.Domain = domainCol.String
		p.Description = description.String
		out = append(out, p)
	}
	return out, rows.Err()
}

// SetMaster clears the master flag on the previous holder and sets it on
// the given platform inside a single transaction. Under concurrent calls
// the row locks serialize the two updates, so the system never observes
// zero or two masters.
func (r *PostgresPlatformRepository) SetMaster(ctx context.Context, id string) (*domain.Platform, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE platforms SET is_master = false, updated_at = now() WHERE is_master = true AND id <> $1`, id); err != nil {
		return nil, fmt.Errorf("failed to clear master flag: %w", err)
	}

	query := `
		UPDATE platforms
		SET is_master = true, is_active = true, updated_at = now()
		WHERE id = $1
		RETURNING ` + platformColumns
	platform, err := scanPlatformRow(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit master change: %w", err)
	}

	r.logger.Info("master platform set", slog.String("platform_id", id))
	return platform, nil
}

func scanPlatformRow(row rowScanner) (*domain.Platform, error) {
	p, err := scanPlatform(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPlatformNotFound
		}
		return nil, err
	}
	return p, nil
}

func scanPlatform(row rowScanner) (*domain.Platform, error) {
	p := &domain.Platform{}
	var domainCol, description sql.NullString
	err := row.Scan(
		&p.ID,
		&p.Code,
		&p.Name,
		&domainCol,
		&description,
		&p.IsActive,
		&p.IsMaster,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Domain = domainCol.String
	p.Description = description.String
	return p, nil
}
