package repository

import (
	"context"
	"errors"
	"time"

	"gatehouse/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when no session matches the lookup.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository defines the persistence operations for session records.
// Mutations on a single session must be serialized by the store; reads may be
// concurrent.
type SessionRepository interface {
	// Create persists a new session record.
	Create(ctx context.Context, session *entity.Session) error

	// FindByID retrieves a session by its record ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Session, error)

	// FindByIdentityID retrieves all sessions belonging to an identity,
	// including revoked and expired ones that have not been swept yet.
	FindByIdentityID(ctx context.Context, identityID uuid.UUID) ([]*entity.Session, error)

	// ExtendExpiry moves a session's expiry forward. Used by the sliding
	// expiry policy; it must never resurrect a revoked session.
	ExtendExpiry(ctx context.Context, id uuid.UUID, expiresAt time.Time) error

	// Revoke marks a session permanently invalid. Revoking an already revoked
	// session is a no-op, not an error.
	Revoke(ctx context.Context, id uuid.UUID) error

	// RevokeByIdentityID marks every session of an identity invalid.
	RevokeByIdentityID(ctx context.Context, identityID uuid.UUID) error

	// DeleteTerminated removes revoked sessions and sessions expired before
	// the given instant, returning the number removed.
	DeleteTerminated(ctx context.Context, before time.Time) (int, error)
}
