package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/account-service/internal/domain"
)

func TestMapConstraintError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "username", err: &pgconn.PgError{Code: "23505", ConstraintName: "accounts_username_key"}, want: ErrDuplicateUsername},
		{name: "email wrapped", err: fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "accounts_email_key"}), want: ErrDuplicateEmail},
		{name: "suite name", err: &pgconn.PgError{Code: "23505", ConstraintName: "sso_suites_name_key"}, want: ErrDuplicateSuiteName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, mapConstraintError(tt.err), tt.want)
		})
	}

	other := &pgconn.PgError{Code: "23503", ConstraintName: "sso_suites_creator_id_fkey"}
	assert.Same(t, other, mapConstraintError(other))
	assert.Nil(t, mapConstraintError(nil))

	plain := errors.New("boom")
	assert.Equal(t, plain, mapConstraintError(plain))
}

func TestIdentifierColumn(t *testing.T) {
	col, err := identifierColumn(domain.IdentifierEmail)
	require.NoError(t, err)
	assert.Equal(t, "email", col)

	col, err = identifierColumn(domain.IdentifierUsername)
	require.NoError(t, err)
	assert.Equal(t, "username", col)

	_, err = identifierColumn("id; DROP TABLE accounts")
	require.Error(t, err)
}
