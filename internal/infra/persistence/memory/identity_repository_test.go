package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"gatehouse/internal/domain/entity"
	domainerrors "gatehouse/internal/domain/errors"
	"gatehouse/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIdentity(username, email string) *entity.Identity {
	return &entity.Identity{
		Username: username,
		Email:    email,
		Credential: entity.Credential{
			PasswordHash: "stored-hash",
			Salt:         "stored-salt",
		},
	}
}

func TestIdentityRepository_CreateAndFind(t *testing.T) {
	repo := NewIdentityRepository()
	ctx := context.Background()

	identity := newTestIdentity("alice", "alice@example.com")
	require.NoError(t, repo.Create(ctx, identity))
	require.NotEqual(t, uuid.Nil, identity.ID)

	byID, err := repo.FindByID(ctx, identity.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	byUsername, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, identity.ID, byUsername.ID)

	byEmail, err := repo.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, identity.ID, byEmail.ID)
}

func TestIdentityRepository_Find_NotFound(t *testing.T) {
	repo := NewIdentityRepository()
	ctx := context.Background()

	_, err := repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrIdentityNotFound)

	_, err = repo.FindByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, repository.ErrIdentityNotFound)

	_, err = repo.FindByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, repository.ErrIdentityNotFound)
}

func TestIdentityRepository_Create_DuplicateUsername(t *testing.T) {
	repo := NewIdentityRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestIdentity("alice", "alice@example.com")))

	err := repo.Create(ctx, newTestIdentity("alice", "other@example.com"))
	assert.ErrorIs(t, err, repository.ErrDuplicateKey)

	err = repo.Create(ctx, newTestIdentity("bob", "alice@example.com"))
	assert.ErrorIs(t, err, repository.ErrDuplicateKey)
}

func TestIdentityRepository_Create_ConcurrentSameUsername(t *testing.T) {
	repo := NewIdentityRepository()
	ctx := context.Background()

	const attempts = 16
	results := make(chan error, attempts)

	var start sync.WaitGroup
	start.Add(1)
	for i := 0; i < attempts; i++ {
		go func(n int) {
			start.Wait()
			email := fmt.Sprintf("alice%d@example.com", n)
			results <- repo.Create(ctx, newTestIdentity("alice", email))
		}(i)
	}
	start.Done()

	created, duplicates := 0, 0
	for i := 0; i < attempts; i++ {
		err := <-results
		switch {
		case err == nil:
			created++
		case assert.ErrorIs(t, err, repository.ErrDuplicateKey):
			duplicates++
		}
	}

	assert.Equal(t, 1, created, "exactly one racing create may win")
	assert.Equal(t, attempts-1, duplicates)
}

// brokenRandReader always fails, simulating an exhausted entropy source.
type brokenRandReader struct{}

func (brokenRandReader) Read(_ []byte) (int, error) {
	return 0, errors.New("entropy source unavailable")
}

func TestIdentityRepository_Create_EntropyFailure(t *testing.T) {
	repo := NewIdentityRepository()
	ctx := context.Background()

	uuid.SetRand(brokenRandReader{})
	err := repo.Create(ctx, newTestIdentity("alice", "alice@example.com"))
	uuid.SetRand(nil)

	assert.ErrorIs(t, err, domainerrors.ErrEntropyUnavailable)

	// The failed create holds no claim on the username or email.
	_, err = repo.FindByUsername(ctx, "alice")
	assert.ErrorIs(t, err, repository.ErrIdentityNotFound)
	assert.NoError(t, repo.Create(ctx, newTestIdentity("alice", "alice@example.com")))
}

func TestIdentityRepository_Delete(t *testing.T) {
	repo := NewIdentityRepository()
	ctx := context.Background()

	identity := newTestIdentity("alice", "alice@example.com")
	require.NoError(t, repo.Create(ctx, identity))

	repo.Delete(ctx, identity.ID)

	_, err := repo.FindByID(ctx, identity.ID)
	assert.ErrorIs(t, err, repository.ErrIdentityNotFound)

	// The freed username can be registered again.
	assert.NoError(t, repo.Create(ctx, newTestIdentity("alice", "alice@example.com")))
}
