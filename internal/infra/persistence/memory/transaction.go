package memory

import (
	"context"

	"gatehouse/internal/domain/repository"
)

// TransactionManager implements repository.TransactionManager over the
// in-memory stores. There is no rollback: each repository operation is
// individually atomic under its store mutex, which is enough for the
// uniqueness guarantees the use cases rely on.
type TransactionManager struct {
	identities *IdentityRepository
	sessions   *SessionRepository
}

// NewTransactionManager wires a transaction manager over the given stores.
func NewTransactionManager(identities *IdentityRepository, sessions *SessionRepository) *TransactionManager {
	return &TransactionManager{identities: identities, sessions: sessions}
}

// Execute runs fn against the shared stores.
func (tm *TransactionManager) Execute(_ context.Context, fn func(repos repository.RepositoryFactory) error) error {
	return fn(&repositoryFactory{tm: tm})
}

type repositoryFactory struct {
	tm *TransactionManager
}

// IdentityRepo returns the shared identity store.
func (f *repositoryFactory) IdentityRepo() repository.IdentityRepository {
	return f.tm.identities
}

// SessionRepo returns the shared session store.
func (f *repositoryFactory) SessionRepo() repository.SessionRepository {
	return f.tm.sessions
}
