package usecase

import (
	"context"

	"gatehouse/internal/domain/entity"

	"github.com/google/uuid"
)

// IssueOutput returns a freshly issued session. Handle is the only place the
// session secret ever appears in plaintext; the stored record keeps a hash.
type IssueOutput struct {
	Handle  string
	Session *entity.Session
}

// SessionUsecase defines the interface for session lifecycle operations.
type SessionUsecase interface {
	// Issue creates a new session for the identity and returns the opaque
	// handle the caller must present on subsequent requests.
	Issue(ctx context.Context, identityID uuid.UUID) (*IssueOutput, error)

	// Validate resolves a handle to its live session. Unknown, revoked and
	// expired handles all fail the same way. Under a sliding expiry policy a
	// successful validation counts as activity and extends the session.
	Validate(ctx context.Context, handle string) (*entity.Session, error)

	// Inspect resolves a handle exactly like Validate but never extends the
	// session, so guards that only need to know whether a session exists do
	// not count as activity.
	Inspect(ctx context.Context, handle string) (*entity.Session, error)

	// Revoke terminates the session a handle refers to. Revoking an already
	// revoked or unknown handle is a no-op.
	Revoke(ctx context.Context, handle string) error

	// RevokeAll terminates every session belonging to the identity.
	RevokeAll(ctx context.Context, identityID uuid.UUID) error

	// ListActive returns the identity's sessions that are neither revoked nor
	// expired.
	ListActive(ctx context.Context, identityID uuid.UUID) ([]*entity.Session, error)

	// CleanupExpired deletes terminated session records and reports how many
	// were removed.
	CleanupExpired(ctx context.Context) (int, error)
}
