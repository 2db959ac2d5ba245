package errorutil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewBadRequest builds a client error that is surfaced verbatim.
func NewBadRequest(code, message string) *DomainError {
	return NewDomainError(code, message, http.StatusBadRequest, nil)
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

// NewUnauthorized builds an authentication error.
func NewUnauthorized(code, message string) *DomainError {
	return NewDomainError(code, message, http.StatusUnauthorized, nil)
}

// NewExpired builds the distinguished expiry signal. It shares the 401 status with
// authentication errors but carries its own code so callers can re-login.
func NewExpired(message string) *DomainError {
	return NewDomainError("TOKEN_EXPIRED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) *DomainError {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// WithDetails returns a copy of e carrying details. Sentinels are shared values and
// must never be mutated in place.
func (e *DomainError) WithDetails(details map[string]any) *DomainError {
	clone := *e
	clone.Details = details
	clone.Err = e
	return &clone
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code := "BAD_REQUEST"
		switch {
		case fiberErr.Code == http.StatusNotFound:
			code = "NOT_FOUND"
		case fiberErr.Code == http.StatusUnauthorized:
			code = "UNAUTHORIZED"
		case fiberErr.Code == http.StatusForbidden:
			code = "FORBIDDEN"
		case fiberErr.Code >= http.StatusInternalServerError:
			return toInternal(err)
		}
		return NewDomainError(code, fiberErr.Message, fiberErr.Code, nil)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return NewDomainError("NOT_FOUND", "resource not found", http.StatusNotFound, nil)
	}
	return toInternal(err)
}

func toInternal(err error) *DomainError {
	if de, ok := NewInternalError(err).(*DomainError); ok {
		return de
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// MapError converts generic errors to DomainError.
func MapError(err error) error {
	return ToDomainError(err)
}
