package service

import (
	"fmt"
	"strings"

	"github.com/spec-kit/account-service/internal/domain"
	apperrors "github.com/spec-kit/account-service/pkg/util/errorutil"
)

// invalidCredentialsMessage is shared so callers cannot tell an unknown account
// from a wrong password.
const invalidCredentialsMessage = "invalid credentials"

// Client errors.
var (
	ErrIdentifierRequired   = apperrors.NewBadRequest("VALIDATION_FAILED", "username or email is required")
	ErrUsernameRequired     = apperrors.NewBadRequest("VALIDATION_FAILED", "username is required")
	ErrSuiteNameRequired    = apperrors.NewBadRequest("VALIDATION_FAILED", "sso suite name is required")
	ErrInvalidEmail         = apperrors.NewBadRequest("INVALID_EMAIL", "the email provided is invalid")
	ErrWeakPassword         = apperrors.NewBadRequest("WEAK_PASSWORD", "password must have at least 8 characters and at least one capital letter, one symbol, and one number")
	ErrInvalidAccountType   = apperrors.NewBadRequest("INVALID_ACCOUNT_TYPE", fmt.Sprintf("account type must be one of: %s", accountTypeList()))
	ErrAccountTypeUnchanged = apperrors.NewBadRequest("ACCOUNT_TYPE_UNCHANGED", "the account already has that type")
	ErrDuplicateUsername    = apperrors.NewBadRequest("DUPLICATE_USERNAME", "the username provided is taken")
	ErrDuplicateEmail       = apperrors.NewBadRequest("DUPLICATE_EMAIL", "the email provided is taken")
	ErrDuplicateSuiteName   = apperrors.NewBadRequest("DUPLICATE_SUITE_NAME", "the sso suite name provided is taken")
	ErrUnknownSuite         = apperrors.NewBadRequest("UNKNOWN_SUITE", "the sso suite does not exist")
	ErrBadSuiteID           = apperrors.NewBadRequest("BAD_SUITE_ID", "the ssoSuiteId provided is invalid")
	ErrBadToken             = apperrors.NewBadRequest("BAD_TOKEN", "the token provided is malformed")
	ErrRenewalNotAllowed    = apperrors.NewBadRequest("RENEWAL_NOT_ALLOWED", "the token is not close enough to expiry to be renewed")
	ErrInvalidAPIKey        = apperrors.NewBadRequest("INVALID_API_KEY", "the api key provided is invalid")
)

// Authentication errors. ErrAccountNotFound and ErrInvalidPassword stay distinct
// for errors.Is but render identically.
var (
	ErrAccountNotFound = apperrors.NewUnauthorized("INVALID_CREDENTIALS", invalidCredentialsMessage)
	ErrInvalidPassword = apperrors.NewUnauthorized("INVALID_CREDENTIALS", invalidCredentialsMessage)
	ErrSignedOut       = apperrors.NewUnauthorized("SIGNED_OUT", "not signed in to this sso suite")
	ErrInvalidToken    = apperrors.NewUnauthorized("INVALID_TOKEN", "the token provided is invalid")
	ErrTokenExpired    = apperrors.NewExpired("the token has expired")
)

func accountTypeList() string {
	names := make([]string, len(domain.AccountTypes))
	for i, t := range domain.AccountTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
