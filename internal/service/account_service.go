package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/config"
	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/events"
	"github.com/spec-kit/account-service/internal/repository"
	apperrors "github.com/spec-kit/account-service/pkg/util/errorutil"
)

// SuiteChecker answers whether an SSO suite is registered.
type SuiteChecker interface {
	SuiteExists(ctx context.Context, suiteID string) (bool, error)
}

// AccountService owns account creation, credential checks and the per-suite
// session lifecycle.
type AccountService struct {
	accounts      repository.AccountRepository
	sessions      repository.SessionRepository
	suites        SuiteChecker
	hasher        *auth.Hasher
	tokens        *auth.TokenManager
	dispatcher    events.Dispatcher
	logger        *zap.Logger
	renewalWindow time.Duration
}

// AccountDependencies bundles collaborators for the account service.
type AccountDependencies struct {
	AccountRepo repository.AccountRepository
	SessionRepo repository.SessionRepository
	Suites      SuiteChecker
	Hasher      *auth.Hasher
	Tokens      *auth.TokenManager
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// CreateAccountInput describes account creation payload.
type CreateAccountInput struct {
	Username string
	Email    string
	Password string
	Type     string
}

// NewAccountService builds the service. Dispatcher and Logger are optional.
func NewAccountService(cfg *config.AuthConfig, deps AccountDependencies) (*AccountService, error) {
	if cfg == nil {
		return nil, errors.New("auth config is required")
	}
	switch {
	case deps.AccountRepo == nil, deps.SessionRepo == nil:
		return nil, errors.New("account and session repositories are required")
	case deps.Suites == nil:
		return nil, errors.New("suite checker is required")
	case deps.Hasher == nil, deps.Tokens == nil:
		return nil, errors.New("hasher and token manager are required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{
		accounts:      deps.AccountRepo,
		sessions:      deps.SessionRepo,
		suites:        deps.Suites,
		hasher:        deps.Hasher,
		tokens:        deps.Tokens,
		dispatcher:    deps.Dispatcher,
		logger:        logger,
		renewalWindow: cfg.RenewalWindow(),
	}, nil
}

// CreateAccount validates and persists a new account with no sessions. Username
// uniqueness is checked before email uniqueness.
func (s *AccountService) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	accountType, err := domain.ParseAccountType(input.Type)
	if err != nil {
		return nil, ErrInvalidAccountType
	}
	if !auth.IsValidEmail(input.Email) {
		return nil, ErrInvalidEmail
	}
	if !auth.IsValidPassword(input.Password) {
		return nil, ErrWeakPassword
	}

	taken, err := s.accounts.ExistsByIdentifier(ctx, domain.IdentifierUsername, username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return nil, ErrDuplicateUsername
	}
	taken, err = s.accounts.ExistsByIdentifier(ctx, domain.IdentifierEmail, input.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, ErrDuplicateEmail
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("hash password: %w", err))
	}

	account := &domain.Account{
		Username:     username,
		Email:        input.Email,
		PasswordHash: hash,
		Type:         accountType,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateUsername):
			return nil, ErrDuplicateUsername
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventAccountCreated,
		AccountID: account.ID,
		Payload:   events.AccountCreatedPayload{Username: account.Username, Type: account.Type},
	})
	return account, nil
}

// VerifyCredentials re-checks an identity and password independently of any token.
func (s *AccountService) VerifyCredentials(ctx context.Context, field domain.IdentifierField, value, password string) (*domain.Account, error) {
	if !field.Valid() || strings.TrimSpace(value) == "" {
		return nil, ErrIdentifierRequired
	}
	account, err := s.accounts.GetByIdentifier(ctx, field, value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("load account: %w", err)
	}
	if !s.hasher.Verify(password, account.PasswordHash) {
		return nil, ErrInvalidPassword
	}
	return account, nil
}

// ChangeAccountType switches the account between user and developer. Upgrading to
// developer returns the account id, which is the api key for suite creation.
// Downgrading returns "".
func (s *AccountService) ChangeAccountType(ctx context.Context, field domain.IdentifierField, value, password, newType string) (string, error) {
	if strings.TrimSpace(newType) == "" {
		return "", ErrInvalidAccountType
	}
	target, err := domain.ParseAccountType(newType)
	if err != nil {
		return "", ErrInvalidAccountType
	}

	account, err := s.VerifyCredentials(ctx, field, value, password)
	if err != nil {
		return "", err
	}
	if account.Type == target {
		return "", ErrAccountTypeUnchanged
	}

	if err := s.accounts.UpdateType(ctx, account.ID, target); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrAccountNotFound
		}
		return "", fmt.Errorf("update account type: %w", err)
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventAccountTypeChanged,
		AccountID: account.ID,
		Payload:   events.AccountTypeChangedPayload{OldType: account.Type, NewType: target},
	})

	if target == domain.AccountTypeDeveloper {
		return account.ID, nil
	}
	return "", nil
}

func (s *AccountService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.tokens.Now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
