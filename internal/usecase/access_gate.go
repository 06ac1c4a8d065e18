package usecase

import (
	"context"

	"gatehouse/internal/domain/entity"
)

// AccessGate guards entry points by session state. It is the decision layer a
// transport adapter calls before dispatching to protected or anonymous-only
// handlers.
type AccessGate interface {
	// RequireAuthenticated admits only callers presenting a valid session and
	// returns the identity it belongs to.
	RequireAuthenticated(ctx context.Context, handle string) (*entity.Identity, error)

	// RequireAnonymous admits only callers without a valid session, for entry
	// points like signup and login.
	RequireAnonymous(ctx context.Context, handle string) error
}
