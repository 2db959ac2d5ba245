package events

import (
	"time"

	"github.com/spec-kit/account-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAccountCreated     EventType = "account_created"
	EventAccountTypeChanged EventType = "account_type_changed"
	EventSessionIssued      EventType = "session_issued"
	EventSessionRenewed     EventType = "session_renewed"
	EventSignedOut          EventType = "signed_out"
	EventSuiteCreated       EventType = "sso_suite_created"
)

// AllEventTypes lists every event the services publish.
var AllEventTypes = []EventType{
	EventAccountCreated,
	EventAccountTypeChanged,
	EventSessionIssued,
	EventSessionRenewed,
	EventSignedOut,
	EventSuiteCreated,
}

// Event represents a domain event emitted by services. Tokens and password
// material never travel in events.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	AccountID string      `json:"account_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// AccountCreatedPayload payload.
type AccountCreatedPayload struct {
	Username string             `json:"username"`
	Type     domain.AccountType `json:"type"`
}

// AccountTypeChangedPayload payload.
type AccountTypeChangedPayload struct {
	OldType domain.AccountType `json:"old_type"`
	NewType domain.AccountType `json:"new_type"`
}

// SessionPayload is shared by session issue, renewal and sign-out events.
type SessionPayload struct {
	SuiteID   string    `json:"suite_id"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	Reused    bool      `json:"reused,omitempty"`
}

// SuiteCreatedPayload payload.
type SuiteCreatedPayload struct {
	SuiteID string `json:"suite_id"`
	Name    string `json:"name"`
}
