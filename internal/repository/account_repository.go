package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/account-service/internal/domain"
)

// AccountRepository defines persistence access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIdentifier(ctx context.Context, field domain.IdentifierField, value string) (*domain.Account, error)
	ExistsByIdentifier(ctx context.Context, field domain.IdentifierField, value string) (bool, error)
	UpdateType(ctx context.Context, id string, accountType domain.AccountType) error
}

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository returns a Postgres-backed implementation.
func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

const accountColumns = `id::text, email, username, password_hash, type, sessions, created_at, updated_at`

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	const query = `
        INSERT INTO accounts (email, username, password_hash, type)
        VALUES ($1, $2, $3, $4)
        RETURNING id::text, sessions, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		account.Email,
		account.Username,
		account.PasswordHash,
		account.Type,
	).Scan(&account.ID, &account.Sessions, &account.CreatedAt, &account.UpdatedAt)
	return mapConstraintError(err)
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id=$1`
	return scanAccount(r.pool.QueryRow(ctx, query, id))
}

func (r *accountRepository) GetByIdentifier(ctx context.Context, field domain.IdentifierField, value string) (*domain.Account, error) {
	column, err := identifierColumn(field)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE %s=$1`, accountColumns, column)
	return scanAccount(r.pool.QueryRow(ctx, query, value))
}

func (r *accountRepository) ExistsByIdentifier(ctx context.Context, field domain.IdentifierField, value string) (bool, error) {
	column, err := identifierColumn(field)
	if err != nil {
		return false, err
	}
	query := fmt.Sprintf(`SELECT COUNT(*) FROM accounts WHERE %s=$1`, column)

	var count int64
	if err := r.pool.QueryRow(ctx, query, value).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *accountRepository) UpdateType(ctx context.Context, id string, accountType domain.AccountType) error {
	const query = `
        UPDATE accounts SET type=$1, updated_at=NOW()
        WHERE id=$2`

	cmd, err := r.pool.Exec(ctx, query, accountType, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var account domain.Account
	if err := row.Scan(
		&account.ID,
		&account.Email,
		&account.Username,
		&account.PasswordHash,
		&account.Type,
		&account.Sessions,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if account.Sessions == nil {
		account.Sessions = domain.SessionMap{}
	}
	return &account, nil
}
