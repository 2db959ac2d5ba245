package dto

import (
	"strings"
	"time"

	"github.com/spec-kit/account-service/internal/domain"
)

// Credentials identifies an account by username or email plus its password.
type Credentials struct {
	Username string `json:"username" validate:"required_without=Email,max=64"`
	Email    string `json:"email" validate:"required_without=Username,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

// Identity returns the identifier the caller supplied, preferring username.
func (c Credentials) Identity() (domain.IdentifierField, string) {
	if username := strings.TrimSpace(c.Username); username != "" {
		return domain.IdentifierUsername, username
	}
	return domain.IdentifierEmail, strings.TrimSpace(c.Email)
}

// CreateAccountRequest payload for new accounts.
type CreateAccountRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=128"`
	Type     string `json:"type" validate:"omitempty,max=32"`
}

// AuthenticateRequest either presents a token (optionally asking for renewal) or
// logs in with credentials for one SSO suite.
type AuthenticateRequest struct {
	JWT        string `json:"jwt" validate:"omitempty,max=4096"`
	Renew      bool   `json:"renew"`
	Username   string `json:"username" validate:"required_without_all=JWT Email,max=64"`
	Email      string `json:"email" validate:"required_without_all=JWT Username,max=254"`
	Password   string `json:"password" validate:"required_without=JWT,max=128"`
	SSOSuiteID string `json:"ssoSuiteId" validate:"required_without=JWT,max=64"`
}

// Credentials returns the credential part of the request.
func (r AuthenticateRequest) Credentials() Credentials {
	return Credentials{Username: r.Username, Email: r.Email, Password: r.Password}
}

// SignOutRequest payload for sign-out.
type SignOutRequest struct {
	JWT string `json:"jwt" validate:"required,max=4096"`
}

// ChangeAccountTypeRequest payload for switching account type.
type ChangeAccountTypeRequest struct {
	Credentials
	Type string `json:"type" validate:"required,max=32"`
}

// AccountResponse is the public view of an account.
type AccountResponse struct {
	ID        string             `json:"id"`
	Username  string             `json:"username"`
	Email     string             `json:"email"`
	Type      domain.AccountType `json:"type"`
	CreatedAt time.Time          `json:"created_at"`
}

// NewAccountResponse maps a domain account without credentials or sessions.
func NewAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		Type:      a.Type,
		CreatedAt: a.CreatedAt,
	}
}

// TokenResponse standard response for authenticate.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AccountTypeResponse reports the new type and, for developers, the api key.
type AccountTypeResponse struct {
	Type   domain.AccountType `json:"type"`
	APIKey string             `json:"api_key,omitempty"`
}

// SessionResponse describes the session behind a bearer token.
type SessionResponse struct {
	AccountID string             `json:"account_id"`
	Username  string             `json:"username"`
	Type      domain.AccountType `json:"type"`
	SuiteID   string             `json:"sso_suite_id"`
	ExpiresAt time.Time          `json:"expires_at"`
}
