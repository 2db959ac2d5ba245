package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/account-service/internal/domain"
)

// SuiteRepository defines persistence access for SSO suites.
type SuiteRepository interface {
	Create(ctx context.Context, suite *domain.Suite) error
	GetByID(ctx context.Context, id string) (*domain.Suite, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	ListByCreator(ctx context.Context, creatorID string) ([]*domain.Suite, error)
}

type suiteRepository struct {
	pool *pgxpool.Pool
}

// NewSuiteRepository returns a Postgres-backed implementation.
func NewSuiteRepository(pool *pgxpool.Pool) SuiteRepository {
	return &suiteRepository{pool: pool}
}

func (r *suiteRepository) Create(ctx context.Context, suite *domain.Suite) error {
	const query = `
        INSERT INTO sso_suites (name, creator_id)
        VALUES ($1, $2)
        RETURNING id::text, created_at`

	err := r.pool.QueryRow(ctx, query, suite.Name, suite.CreatorID).Scan(&suite.ID, &suite.CreatedAt)
	return mapConstraintError(err)
}

func (r *suiteRepository) GetByID(ctx context.Context, id string) (*domain.Suite, error) {
	const query = `
        SELECT id::text, name, COALESCE(creator_id::text, ''), created_at
        FROM sso_suites WHERE id=$1`

	var suite domain.Suite
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&suite.ID,
		&suite.Name,
		&suite.CreatorID,
		&suite.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &suite, nil
}

func (r *suiteRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM sso_suites WHERE name=$1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, name).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *suiteRepository) ListByCreator(ctx context.Context, creatorID string) ([]*domain.Suite, error) {
	const query = `
        SELECT id::text, name, COALESCE(creator_id::text, ''), created_at
        FROM sso_suites WHERE creator_id=$1
        ORDER BY created_at, name`

	rows, err := r.pool.Query(ctx, query, creatorID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Suite, error) {
		var suite domain.Suite
		err := row.Scan(&suite.ID, &suite.Name, &suite.CreatorID, &suite.CreatedAt)
		return &suite, err
	})
}
