// Package memory holds in-process implementations of the repository interfaces.
// They back the service when no Postgres DSN is configured and serve as fakes in
// tests. Lookups that find nothing return pgx.ErrNoRows like the Postgres versions.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/repository"
)

var (
	_ repository.AccountRepository = (*AccountStore)(nil)
	_ repository.SessionRepository = (*AccountStore)(nil)
)

// AccountStore keeps accounts, including their embedded session maps, in memory.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
	nowFunc  func() time.Time
}

// NewAccountStore returns an empty store.
func NewAccountStore() *AccountStore {
	return &AccountStore{accounts: make(map[string]*domain.Account), nowFunc: time.Now}
}

func (s *AccountStore) Create(_ context.Context, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.accounts {
		if existing.Username == account.Username {
			return repository.ErrDuplicateUsername
		}
	}
	for _, existing := range s.accounts {
		if existing.Email == account.Email {
			return repository.ErrDuplicateEmail
		}
	}

	now := s.nowFunc()
	account.ID = uuid.NewString()
	account.Sessions = domain.SessionMap{}
	account.CreatedAt = now
	account.UpdatedAt = now
	s.accounts[account.ID] = cloneAccount(account)
	return nil
}

func (s *AccountStore) GetByID(_ context.Context, id string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return cloneAccount(account), nil
}

func (s *AccountStore) GetByIdentifier(_ context.Context, field domain.IdentifierField, value string) (*domain.Account, error) {
	if !field.Valid() {
		return nil, fmt.Errorf("unsupported identifier field %q", field)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if account := s.findLocked(field, value); account != nil {
		return cloneAccount(account), nil
	}
	return nil, pgx.ErrNoRows
}

func (s *AccountStore) ExistsByIdentifier(_ context.Context, field domain.IdentifierField, value string) (bool, error) {
	if !field.Valid() {
		return false, fmt.Errorf("unsupported identifier field %q", field)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findLocked(field, value) != nil, nil
}

func (s *AccountStore) UpdateType(_ context.Context, id string, accountType domain.AccountType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	account.Type = accountType
	account.UpdatedAt = s.nowFunc()
	return nil
}

func (s *AccountStore) GetSessionToken(_ context.Context, accountID, suiteID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return "", pgx.ErrNoRows
	}
	return account.Sessions.Token(suiteID), nil
}

func (s *AccountStore) SetSessionToken(_ context.Context, accountID, suiteID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return pgx.ErrNoRows
	}
	account.Sessions[suiteID] = token
	account.UpdatedAt = s.nowFunc()
	return nil
}

func (s *AccountStore) SwapSessionToken(_ context.Context, accountID, suiteID, previous, next string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[accountID]
	if !ok || account.Sessions.Token(suiteID) != previous {
		return false, nil
	}
	account.Sessions[suiteID] = next
	account.UpdatedAt = s.nowFunc()
	return true, nil
}

func (s *AccountStore) findLocked(field domain.IdentifierField, value string) *domain.Account {
	for _, account := range s.accounts {
		if account.Identifier(field) == value {
			return account
		}
	}
	return nil
}

func cloneAccount(a *domain.Account) *domain.Account {
	clone := *a
	clone.Sessions = a.Sessions.Clone()
	return &clone
}
