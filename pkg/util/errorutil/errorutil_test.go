package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	sentinel := NewBadRequest("BAD_TOKEN", "bad token")

	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{name: "domain error", err: sentinel, code: "BAD_TOKEN", status: http.StatusBadRequest},
		{name: "wrapped domain error", err: fmt.Errorf("verify: %w", sentinel), code: "BAD_TOKEN", status: http.StatusBadRequest},
		{name: "fiber forbidden", err: fiber.NewError(http.StatusForbidden, "nope"), code: "FORBIDDEN", status: http.StatusForbidden},
		{name: "fiber not found", err: fiber.ErrNotFound, code: "NOT_FOUND", status: http.StatusNotFound},
		{name: "fiber server error", err: fiber.ErrBadGateway, code: "INTERNAL_ERROR", status: http.StatusInternalServerError},
		{name: "no rows", err: fmt.Errorf("load: %w", pgx.ErrNoRows), code: "NOT_FOUND", status: http.StatusNotFound},
		{name: "unknown", err: errors.New("connection reset"), code: "INTERNAL_ERROR", status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDomainError(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, tt.status, got.HTTPStatus)
		})
	}
	assert.Nil(t, ToDomainError(nil))
}

func TestInternalErrorIsOpaque(t *testing.T) {
	err := ToDomainError(errors.New("password=hunter2 host=db"))
	assert.Equal(t, "internal server error", err.Message)
	assert.ErrorContains(t, err, "hunter2", "detail stays available to logs via Error()")
}

func TestWithDetailsKeepsSentinelIdentity(t *testing.T) {
	sentinel := NewBadRequest("VALIDATION_FAILED", "invalid")
	detailed := sentinel.WithDetails(map[string]any{"email": "required"})

	require.ErrorIs(t, detailed, sentinel)
	assert.Nil(t, sentinel.Details)
	assert.Equal(t, "required", detailed.Details["email"])
}

func TestNewExpired(t *testing.T) {
	err := NewExpired("expired")
	assert.Equal(t, "TOKEN_EXPIRED", err.Code)
	assert.Equal(t, http.StatusUnauthorized, err.HTTPStatus)
}
