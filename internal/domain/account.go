package domain

import (
	"fmt"
	"strings"
	"time"
)

// AccountType is the closed set of account privileges.
type AccountType string

const (
	AccountTypeUser      AccountType = "user"
	AccountTypeDeveloper AccountType = "developer"
)

// AccountTypes lists every valid account type in display order.
var AccountTypes = []AccountType{AccountTypeUser, AccountTypeDeveloper}

// ParseAccountType maps raw input to an AccountType. Empty input selects the
// standard type.
func ParseAccountType(raw string) (AccountType, error) {
	switch AccountType(strings.TrimSpace(raw)) {
	case "", AccountTypeUser:
		return AccountTypeUser, nil
	case AccountTypeDeveloper:
		return AccountTypeDeveloper, nil
	default:
		return "", fmt.Errorf("unknown account type %q", raw)
	}
}

// IdentifierField names the unique account attribute a caller identifies by.
type IdentifierField string

const (
	IdentifierEmail    IdentifierField = "email"
	IdentifierUsername IdentifierField = "username"
)

// Valid reports whether f is one of the supported identifier fields.
func (f IdentifierField) Valid() bool {
	return f == IdentifierEmail || f == IdentifierUsername
}

// Account is an identity that can hold one session token per SSO suite.
type Account struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	Type         AccountType
	Sessions     SessionMap
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identifier returns the value of the given identifier field.
func (a *Account) Identifier(field IdentifierField) string {
	switch field {
	case IdentifierEmail:
		return a.Email
	case IdentifierUsername:
		return a.Username
	default:
		return ""
	}
}

// IsDeveloper reports whether the account may register SSO suites.
func (a *Account) IsDeveloper() bool {
	return a.Type == AccountTypeDeveloper
}
