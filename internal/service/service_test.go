package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/config"
	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/events"
	"github.com/spec-kit/account-service/internal/repository"
	"github.com/spec-kit/account-service/internal/repository/memory"
)

const (
	testPassword = "Passw0rd!"
	testSecret   = "test-secret"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	clock      *fakeClock
	cfg        *config.AuthConfig
	tokens     *auth.TokenManager
	accounts   *memory.AccountStore
	suiteRepo  *memory.SuiteStore
	dispatcher events.Dispatcher
	published  *[]events.EventType
	svc        *AccountService
	suites     *SuiteService
}

type fixtureOption func(*AccountDependencies)

func withSessionRepo(repo repository.SessionRepository) fixtureOption {
	return func(d *AccountDependencies) { d.SessionRepo = repo }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	clock := newFakeClock()
	cfg := &config.AuthConfig{
		JWTSecret:            testSecret,
		SessionTTLSeconds:    300,
		RenewalWindowSeconds: 30,
		BcryptCost:           bcrypt.MinCost,
	}
	hasher, err := auth.NewHasher(cfg.BcryptCost)
	require.NoError(t, err)
	tokens, err := auth.NewTokenManager(cfg, auth.WithNowFunc(clock.Now))
	require.NoError(t, err)

	accounts := memory.NewAccountStore()
	suiteRepo := memory.NewSuiteStore()

	dispatcher := events.NewInMemoryDispatcher()
	var (
		mu        sync.Mutex
		published []events.EventType
	)
	for _, eventType := range events.AllEventTypes {
		dispatcher.Subscribe(eventType, func(_ context.Context, e events.Event) error {
			mu.Lock()
			defer mu.Unlock()
			published = append(published, e.Type)
			return nil
		})
	}

	suites, err := NewSuiteService(SuiteDependencies{SuiteRepo: suiteRepo, AccountRepo: accounts, Dispatcher: dispatcher})
	require.NoError(t, err)

	deps := AccountDependencies{
		AccountRepo: accounts,
		SessionRepo: accounts,
		Suites:      suites,
		Hasher:      hasher,
		Tokens:      tokens,
		Dispatcher:  dispatcher,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	svc, err := NewAccountService(cfg, deps)
	require.NoError(t, err)

	return &fixture{
		clock:      clock,
		cfg:        cfg,
		tokens:     tokens,
		accounts:   accounts,
		suiteRepo:  suiteRepo,
		dispatcher: dispatcher,
		published:  &published,
		svc:        svc,
		suites:     suites,
	}
}

func (f *fixture) createAccount(t *testing.T, username, email string, accountType domain.AccountType) *domain.Account {
	t.Helper()
	account, err := f.svc.CreateAccount(context.Background(), CreateAccountInput{
		Username: username,
		Email:    email,
		Password: testPassword,
		Type:     string(accountType),
	})
	require.NoError(t, err)
	return account
}

// registerSuite creates a developer account on first use and registers name under it.
func (f *fixture) count(eventType events.EventType) int {
	n := 0
	for _, e := range *f.published {
		if e == eventType {
			n++
		}
	}
	return n
}

func (f *fixture) registerSuite(t *testing.T, name string) string {
	t.Helper()
	ctx := context.Background()
	dev, err := f.accounts.GetByIdentifier(ctx, domain.IdentifierUsername, "suite-owner")
	if err != nil {
		dev = f.createAccount(t, "suite-owner", "owner@suites.io", domain.AccountTypeDeveloper)
	}
	id, err := f.suites.CreateSuite(ctx, domain.IdentifierUsername, "suite-owner", dev.ID, name)
	require.NoError(t, err)
	return id
}
