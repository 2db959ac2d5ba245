package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionRepository reads and writes the per-suite token map embedded in each
// account row. It is the single source of truth for whether an account is signed
// in to a suite.
type SessionRepository interface {
	// GetSessionToken returns the stored token, or "" when signed out.
	GetSessionToken(ctx context.Context, accountID, suiteID string) (string, error)
	// SetSessionToken unconditionally overwrites the entry.
	SetSessionToken(ctx context.Context, accountID, suiteID, token string) error
	// SwapSessionToken writes next only if the entry still holds previous ("" matches
	// a missing key). It reports whether the write happened.
	SwapSessionToken(ctx context.Context, accountID, suiteID, previous, next string) (bool, error)
}

type sessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository returns a Postgres-backed implementation over the accounts table.
func NewSessionRepository(pool *pgxpool.Pool) SessionRepository {
	return &sessionRepository{pool: pool}
}

func (r *sessionRepository) GetSessionToken(ctx context.Context, accountID, suiteID string) (string, error) {
	const query = `SELECT COALESCE(sessions->>$2::text, '') FROM accounts WHERE id=$1`

	var token string
	if err := r.pool.QueryRow(ctx, query, accountID, suiteID).Scan(&token); err != nil {
		return "", err
	}
	return token, nil
}

func (r *sessionRepository) SetSessionToken(ctx context.Context, accountID, suiteID, token string) error {
	const query = `
        UPDATE accounts
        SET sessions = jsonb_set(sessions, ARRAY[$2::text], to_jsonb($3::text), true), updated_at=NOW()
        WHERE id=$1`

	cmd, err := r.pool.Exec(ctx, query, accountID, suiteID, token)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *sessionRepository) SwapSessionToken(ctx context.Context, accountID, suiteID, previous, next string) (bool, error) {
	const query = `
        UPDATE accounts
        SET sessions = jsonb_set(sessions, ARRAY[$2::text], to_jsonb($3::text), true), updated_at=NOW()
        WHERE id=$1 AND COALESCE(sessions->>$2::text, '') = $4`

	cmd, err := r.pool.Exec(ctx, query, accountID, suiteID, next, previous)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}
