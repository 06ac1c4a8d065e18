package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"gatehouse/internal/domain/entity"
	"gatehouse/internal/domain/repository"

	"github.com/google/uuid"
)

// SessionRepository is an in-memory repository.SessionRepository. One mutex
// serializes all mutations; reads take the shared lock and return copies.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*entity.Session
}

// NewSessionRepository creates an empty in-memory session store.
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[uuid.UUID]*entity.Session)}
}

// Create persists a new session record.
func (repo *SessionRepository) Create(_ context.Context, session *entity.Session) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	stored := *session
	repo.sessions[session.ID] = &stored

	return nil
}

// FindByID retrieves a session by its record ID.
func (repo *SessionRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Session, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	stored, ok := repo.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	found := *stored

	return &found, nil
}

// FindByIdentityID retrieves all sessions belonging to an identity.
func (repo *SessionRepository) FindByIdentityID(_ context.Context, identityID uuid.UUID) ([]*entity.Session, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	var sessions []*entity.Session
	for _, stored := range repo.sessions {
		if stored.IdentityID == identityID {
			found := *stored
			sessions = append(sessions, &found)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].IssuedAt.Before(sessions[j].IssuedAt)
	})

	return sessions, nil
}

// ExtendExpiry moves a session's expiry forward unless it is revoked.
func (repo *SessionRepository) ExtendExpiry(_ context.Context, id uuid.UUID, expiresAt time.Time) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	stored, ok := repo.sessions[id]
	if !ok || stored.Revoked {
		return repository.ErrSessionNotFound
	}
	stored.ExpiresAt = expiresAt

	return nil
}

// Revoke marks a session permanently invalid. Idempotent.
func (repo *SessionRepository) Revoke(_ context.Context, id uuid.UUID) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if stored, ok := repo.sessions[id]; ok {
		stored.Revoked = true
	}

	return nil
}

// RevokeByIdentityID marks every session of an identity invalid.
func (repo *SessionRepository) RevokeByIdentityID(_ context.Context, identityID uuid.UUID) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, stored := range repo.sessions {
		if stored.IdentityID == identityID {
			stored.Revoked = true
		}
	}

	return nil
}

// DeleteTerminated removes revoked sessions and sessions expired before the
// given instant.
func (repo *SessionRepository) DeleteTerminated(_ context.Context, before time.Time) (int, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	removed := 0
	for id, stored := range repo.sessions {
		if stored.Revoked || !stored.ExpiresAt.After(before) {
			delete(repo.sessions, id)
			removed++
		}
	}

	return removed, nil
}
