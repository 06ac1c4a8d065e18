// Package memory provides mutex-guarded in-memory implementations of the
// repository interfaces. It is the reference store for tests and for embedded
// use; semantics match the postgres adapter, including atomic uniqueness
// enforcement on create.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"gatehouse/internal/domain/entity"
	domainerrors "gatehouse/internal/domain/errors"
	"gatehouse/internal/domain/repository"

	"github.com/google/uuid"
)

// IdentityRepository is an in-memory repository.IdentityRepository.
type IdentityRepository struct {
	mu         sync.RWMutex
	byID       map[uuid.UUID]*entity.Identity
	byUsername map[string]uuid.UUID
	byEmail    map[string]uuid.UUID
}

// NewIdentityRepository creates an empty in-memory identity store.
func NewIdentityRepository() *IdentityRepository {
	return &IdentityRepository{
		byID:       make(map[uuid.UUID]*entity.Identity),
		byUsername: make(map[string]uuid.UUID),
		byEmail:    make(map[string]uuid.UUID),
	}
}

// Create inserts a new identity. The uniqueness check and the insert happen
// under one lock, so two racing creates with the same username yield exactly
// one success and one ErrDuplicateKey.
func (repo *IdentityRepository) Create(_ context.Context, identity *entity.Identity) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	usernameKey := strings.ToLower(identity.Username)
	emailKey := strings.ToLower(identity.Email)
	if _, exists := repo.byUsername[usernameKey]; exists {
		return repository.ErrDuplicateKey
	}
	if _, exists := repo.byEmail[emailKey]; exists {
		return repository.ErrDuplicateKey
	}

	if identity.ID == uuid.Nil {
		id, err := uuid.NewRandom()
		if err != nil {
			return domainerrors.ErrEntropyUnavailable.WrapMessage("failed to generate identity id")
		}
		identity.ID = id
	}
	now := time.Now()
	identity.CreatedAt = now
	identity.UpdatedAt = now

	stored := *identity
	repo.byID[identity.ID] = &stored
	repo.byUsername[usernameKey] = identity.ID
	repo.byEmail[emailKey] = identity.ID

	return nil
}

// FindByID retrieves a single identity by its unique ID.
func (repo *IdentityRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Identity, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	stored, ok := repo.byID[id]
	if !ok {
		return nil, repository.ErrIdentityNotFound
	}
	found := *stored

	return &found, nil
}

// FindByUsername retrieves a single identity by its username.
func (repo *IdentityRepository) FindByUsername(ctx context.Context, username string) (*entity.Identity, error) {
	repo.mu.RLock()
	id, ok := repo.byUsername[strings.ToLower(username)]
	repo.mu.RUnlock()
	if !ok {
		return nil, repository.ErrIdentityNotFound
	}

	return repo.FindByID(ctx, id)
}

// FindByEmail retrieves a single identity by its email address.
func (repo *IdentityRepository) FindByEmail(ctx context.Context, email string) (*entity.Identity, error) {
	repo.mu.RLock()
	id, ok := repo.byEmail[strings.ToLower(email)]
	repo.mu.RUnlock()
	if !ok {
		return nil, repository.ErrIdentityNotFound
	}

	return repo.FindByID(ctx, id)
}

// Delete removes an identity. Identity deletion is outside the auth core's
// scope, but the gate's "session outlives identity" path needs a way to
// simulate an external admin removal.
func (repo *IdentityRepository) Delete(_ context.Context, id uuid.UUID) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	stored, ok := repo.byID[id]
	if !ok {
		return
	}
	delete(repo.byUsername, strings.ToLower(stored.Username))
	delete(repo.byEmail, strings.ToLower(stored.Email))
	delete(repo.byID, id)
}
