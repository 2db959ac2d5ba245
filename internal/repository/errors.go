package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/account-service/internal/domain"
)

// Unique-constraint violations. Lookups that find nothing return pgx.ErrNoRows.
var (
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrDuplicateSuiteName = errors.New("suite name already exists")
)

const uniqueViolation = "23505"

var constraintErrors = map[string]error{
	"accounts_username_key": ErrDuplicateUsername,
	"accounts_email_key":    ErrDuplicateEmail,
	"sso_suites_name_key":   ErrDuplicateSuiteName,
}

func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		if mapped, ok := constraintErrors[pgErr.ConstraintName]; ok {
			return mapped
		}
	}
	return err
}

func identifierColumn(field domain.IdentifierField) (string, error) {
	switch field {
	case domain.IdentifierEmail:
		return "email", nil
	case domain.IdentifierUsername:
		return "username", nil
	default:
		return "", fmt.Errorf("unsupported identifier field %q", field)
	}
}
