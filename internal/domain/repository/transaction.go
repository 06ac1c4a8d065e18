package repository

import "context"

// TransactionManager defines the interface for managing storage transactions.
// The uniqueness-check-then-insert of registration runs under Execute so two
// racing creates with the same username yield exactly one success.
type TransactionManager interface {
	// Execute runs fn within a single transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. Repositories
	// obtained from the factory are bound to that transaction.
	Execute(ctx context.Context, fn func(repos RepositoryFactory) error) error
}

// RepositoryFactory hands out repository instances bound to one transaction.
type RepositoryFactory interface {
	// IdentityRepo returns an IdentityRepository bound to the current transaction.
	IdentityRepo() IdentityRepository

	// SessionRepo returns a SessionRepository bound to the current transaction.
	SessionRepo() SessionRepository
}
