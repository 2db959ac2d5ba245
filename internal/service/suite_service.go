package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/events"
	"github.com/spec-kit/account-service/internal/repository"
)

// SuiteCache is the read-through existence cache consulted by SuiteExists.
type SuiteCache interface {
	Known(ctx context.Context, suiteID string) (bool, error)
	Remember(ctx context.Context, suiteID string) error
}

// SuiteService registers SSO suites and answers existence checks.
type SuiteService struct {
	suites     repository.SuiteRepository
	accounts   repository.AccountRepository
	cache      SuiteCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// SuiteDependencies bundles collaborators for the suite service. Cache,
// Dispatcher and Logger are optional.
type SuiteDependencies struct {
	SuiteRepo   repository.SuiteRepository
	AccountRepo repository.AccountRepository
	Cache       SuiteCache
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewSuiteService builds the service.
func NewSuiteService(deps SuiteDependencies) (*SuiteService, error) {
	if deps.SuiteRepo == nil || deps.AccountRepo == nil {
		return nil, errors.New("suite and account repositories are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SuiteService{
		suites:     deps.SuiteRepo,
		accounts:   deps.AccountRepo,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}, nil
}

// CreateSuite registers a suite on behalf of the developer identified by apiKey.
// The caller must already have verified the password for field=value.
func (s *SuiteService) CreateSuite(ctx context.Context, field domain.IdentifierField, value, apiKey, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrSuiteNameRequired
	}
	if !isStoreID(apiKey) {
		return "", ErrInvalidAPIKey
	}

	creator, err := s.accounts.GetByID(ctx, apiKey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrInvalidAPIKey
		}
		return "", fmt.Errorf("load api key owner: %w", err)
	}
	if !field.Valid() || creator.Identifier(field) != value || !creator.IsDeveloper() {
		return "", ErrInvalidAPIKey
	}

	taken, err := s.suites.ExistsByName(ctx, name)
	if err != nil {
		return "", fmt.Errorf("check suite name: %w", err)
	}
	if taken {
		return "", ErrDuplicateSuiteName
	}

	suite := &domain.Suite{Name: name, CreatorID: creator.ID}
	if err := s.suites.Create(ctx, suite); err != nil {
		if errors.Is(err, repository.ErrDuplicateSuiteName) {
			return "", ErrDuplicateSuiteName
		}
		return "", fmt.Errorf("create suite: %w", err)
	}
	s.remember(ctx, suite.ID)

	if s.dispatcher != nil {
		event := events.Event{
			Type:      events.EventSuiteCreated,
			AccountID: creator.ID,
			Timestamp: suite.CreatedAt,
			Payload:   events.SuiteCreatedPayload{SuiteID: suite.ID, Name: suite.Name},
		}
		if err := s.dispatcher.Publish(ctx, event); err != nil {
			s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
		}
	}
	return suite.ID, nil
}

// SuiteExists reports whether suiteID is registered. A malformed id is
// ErrBadSuiteID rather than false.
func (s *SuiteService) SuiteExists(ctx context.Context, suiteID string) (bool, error) {
	if !isStoreID(suiteID) {
		return false, ErrBadSuiteID
	}

	if s.cache != nil {
		known, err := s.cache.Known(ctx, suiteID)
		if err != nil {
			s.logger.Warn("suite cache lookup failed", zap.String("suite_id", suiteID), zap.Error(err))
		} else if known {
			return true, nil
		}
	}

	if _, err := s.suites.GetByID(ctx, suiteID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("load suite: %w", err)
	}
	s.remember(ctx, suiteID)
	return true, nil
}

// ListSuitesByCreator returns the suites registered by accountID.
func (s *SuiteService) ListSuitesByCreator(ctx context.Context, accountID string) ([]*domain.Suite, error) {
	suites, err := s.suites.ListByCreator(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list suites: %w", err)
	}
	return suites, nil
}

func (s *SuiteService) remember(ctx context.Context, suiteID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Remember(ctx, suiteID); err != nil {
		s.logger.Warn("suite cache write failed", zap.String("suite_id", suiteID), zap.Error(err))
	}
}

// isStoreID reports whether id is a canonical lowercase UUID as assigned by the stores.
func isStoreID(id string) bool {
	parsed, err := uuid.Parse(id)
	return err == nil && parsed.String() == id
}
