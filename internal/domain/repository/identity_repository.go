// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"gatehouse/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for identity persistence.
var (
	// ErrIdentityNotFound is returned when no identity matches the lookup.
	ErrIdentityNotFound = errors.New("identity not found")
	// ErrDuplicateKey is returned when an insert loses the race on a unique
	// username or email. The application layer maps it to a domain error.
	ErrDuplicateKey = errors.New("duplicate username or email")
)

// IdentityRepository defines the standard operations for identity persistence.
// The application layer depends on this interface, never on a concrete store.
type IdentityRepository interface {
	// Create persists a new identity. The store must enforce username and
	// email uniqueness atomically with the insert; a lost race returns
	// ErrDuplicateKey.
	Create(ctx context.Context, identity *entity.Identity) error

	// FindByID retrieves a single identity by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Identity, error)

	// FindByUsername retrieves a single identity by its username.
	FindByUsername(ctx context.Context, username string) (*entity.Identity, error)

	// FindByEmail retrieves a single identity by its email address.
	FindByEmail(ctx context.Context, email string) (*entity.Identity, error)
}
