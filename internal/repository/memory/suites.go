package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/repository"
)

var _ repository.SuiteRepository = (*SuiteStore)(nil)

// SuiteStore keeps SSO suites in memory.
type SuiteStore struct {
	mu      sync.RWMutex
	suites  map[string]*domain.Suite
	nowFunc func() time.Time
}

// NewSuiteStore returns an empty store.
func NewSuiteStore() *SuiteStore {
	return &SuiteStore{suites: make(map[string]*domain.Suite), nowFunc: time.Now}
}

func (s *SuiteStore) Create(_ context.Context, suite *domain.Suite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.suites {
		if existing.Name == suite.Name {
			return repository.ErrDuplicateSuiteName
		}
	}
	suite.ID = uuid.NewString()
	suite.CreatedAt = s.nowFunc()
	clone := *suite
	s.suites[suite.ID] = &clone
	return nil
}

func (s *SuiteStore) GetByID(_ context.Context, id string) (*domain.Suite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	suite, ok := s.suites[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *suite
	return &clone, nil
}

func (s *SuiteStore) ExistsByName(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, suite := range s.suites {
		if suite.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (s *SuiteStore) ListByCreator(_ context.Context, creatorID string) ([]*domain.Suite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Suite, 0)
	for _, suite := range s.suites {
		if suite.CreatorID == creatorID {
			clone := *suite
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Name < out[j].Name
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
