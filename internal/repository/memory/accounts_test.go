package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/repository"
)

func TestAccountStoreCreateAndLookup(t *testing.T) {
	ctx := context.Background()
	store := NewAccountStore()

	account := &domain.Account{Username: "alice", Email: "a@x.com", PasswordHash: "h", Type: domain.AccountTypeUser}
	require.NoError(t, store.Create(ctx, account))
	require.NotEmpty(t, account.ID)
	assert.Empty(t, account.Sessions)

	byEmail, err := store.GetByIdentifier(ctx, domain.IdentifierEmail, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, account.ID, byEmail.ID)

	exists, err := store.ExistsByIdentifier(ctx, domain.IdentifierUsername, "alice")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = store.GetByID(ctx, "missing")
	require.ErrorIs(t, err, pgx.ErrNoRows)

	err = store.Create(ctx, &domain.Account{Username: "alice", Email: "b@x.com"})
	require.ErrorIs(t, err, repository.ErrDuplicateUsername)
	err = store.Create(ctx, &domain.Account{Username: "bob", Email: "a@x.com"})
	require.ErrorIs(t, err, repository.ErrDuplicateEmail)
}

func TestAccountStoreCreateChecksUsernameBeforeEmail(t *testing.T) {
	ctx := context.Background()
	for i := 0; i < 50; i++ {
		store := NewAccountStore()
		require.NoError(t, store.Create(ctx, &domain.Account{Username: "alice", Email: "a@x.com"}))
		require.NoError(t, store.Create(ctx, &domain.Account{Username: "bob", Email: "b@x.com"}))
		require.NoError(t, store.Create(ctx, &domain.Account{Username: "carol", Email: "c@x.com"}))

		err := store.Create(ctx, &domain.Account{Username: "carol", Email: "a@x.com"})
		require.ErrorIs(t, err, repository.ErrDuplicateUsername)
	}
}

func TestAccountStoreSetSessionToken(t *testing.T) {
	ctx := context.Background()
	store := NewAccountStore()
	account := &domain.Account{Username: "alice", Email: "a@x.com"}
	require.NoError(t, store.Create(ctx, account))

	require.NoError(t, store.SetSessionToken(ctx, account.ID, "s1", "t1"))
	require.NoError(t, store.SetSessionToken(ctx, account.ID, "s1", ""))
	token, err := store.GetSessionToken(ctx, account.ID, "s1")
	require.NoError(t, err)
	assert.Empty(t, token)

	require.ErrorIs(t, store.SetSessionToken(ctx, "missing", "s1", ""), pgx.ErrNoRows)
}

func TestAccountStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewAccountStore()
	account := &domain.Account{Username: "alice", Email: "a@x.com"}
	require.NoError(t, store.Create(ctx, account))

	loaded, err := store.GetByID(ctx, account.ID)
	require.NoError(t, err)
	loaded.Sessions["s1"] = "tampered"

	token, err := store.GetSessionToken(ctx, account.ID, "s1")
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestAccountStoreSwapSessionToken(t *testing.T) {
	ctx := context.Background()
	store := NewAccountStore()
	account := &domain.Account{Username: "alice", Email: "a@x.com"}
	require.NoError(t, store.Create(ctx, account))

	ok, err := store.SwapSessionToken(ctx, account.ID, "s1", "", "t1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.SwapSessionToken(ctx, account.ID, "s1", "", "t2")
	require.NoError(t, err)
	assert.False(t, ok, "stale previous value must not win")

	ok, err = store.SwapSessionToken(ctx, account.ID, "s1", "t1", "")
	require.NoError(t, err)
	assert.True(t, ok)

	token, err := store.GetSessionToken(ctx, account.ID, "s1")
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestAccountStoreConcurrentSwapHasSingleWinner(t *testing.T) {
	ctx := context.Background()
	store := NewAccountStore()
	account := &domain.Account{Username: "alice", Email: "a@x.com"}
	require.NoError(t, store.Create(ctx, account))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := store.SwapSessionToken(ctx, account.ID, "s1", "", string(rune('a'+i)))
			if err == nil && ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestSuiteStore(t *testing.T) {
	ctx := context.Background()
	store := NewSuiteStore()

	first := &domain.Suite{Name: "suite-a", CreatorID: "dev-1"}
	require.NoError(t, store.Create(ctx, first))
	require.NoError(t, store.Create(ctx, &domain.Suite{Name: "suite-b", CreatorID: "dev-2"}))

	err := store.Create(ctx, &domain.Suite{Name: "suite-a", CreatorID: "dev-2"})
	require.ErrorIs(t, err, repository.ErrDuplicateSuiteName)

	got, err := store.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "suite-a", got.Name)

	exists, err := store.ExistsByName(ctx, "suite-b")
	require.NoError(t, err)
	assert.True(t, exists)

	mine, err := store.ListByCreator(ctx, "dev-1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, first.ID, mine[0].ID)
}
