package impl

import (
	"context"
	"log/slog"

	"gatehouse/internal/domain/entity"
	domainerrors "gatehouse/internal/domain/errors"
	"gatehouse/internal/domain/repository"
	"gatehouse/internal/errors"
	"gatehouse/internal/usecase"

	"go.uber.org/fx"
)

// accessGate implements the AccessGate interface.
type accessGate struct {
	sessions     usecase.SessionUsecase
	identityRepo repository.IdentityRepository
	logger       *slog.Logger
}

// AccessGateParams holds dependencies for accessGate, injected by Fx.
type AccessGateParams struct {
	fx.In

	Sessions     usecase.SessionUsecase
	IdentityRepo repository.IdentityRepository
	Logger       *slog.Logger
}

// NewAccessGate is the constructor for accessGate.
func NewAccessGate(params AccessGateParams) usecase.AccessGate {
	return &accessGate{
		sessions:     params.Sessions,
		identityRepo: params.IdentityRepo,
		logger:       params.Logger,
	}
}

// RequireAuthenticated admits only callers with a valid session and returns
// the identity it belongs to. A session whose identity no longer exists is
// treated as absent, not as an internal error.
func (gate *accessGate) RequireAuthenticated(ctx context.Context, handle string) (*entity.Identity, error) {
	session, err := gate.sessions.Validate(ctx, handle)
	if err != nil {
		if errors.Is(err, domainerrors.ErrSessionInvalid) {
			return nil, domainerrors.ErrLoginRequired.WrapMessage("no valid session")
		}

		return nil, errors.Wrap(err, "failed to validate session")
	}

	identity, err := gate.identityRepo.FindByID(ctx, session.IdentityID)
	if err != nil {
		if errors.Is(err, repository.ErrIdentityNotFound) {
			gate.logger.Warn("Session refers to a missing identity", slog.Any("sessionID", session.ID), slog.Any("identityID", session.IdentityID))

			return nil, domainerrors.ErrLoginRequired.WrapMessage("session identity no longer exists")
		}

		return nil, errors.Wrap(err, "failed to load session identity")
	}

	return identity, nil
}

// RequireAnonymous admits only callers without a valid session. It inspects
// the session rather than validating it, so hitting an anonymous-only
// endpoint does not count as activity under a sliding expiry policy.
func (gate *accessGate) RequireAnonymous(ctx context.Context, handle string) error {
	if handle == "" {
		return nil
	}

	_, err := gate.sessions.Inspect(ctx, handle)
	if err == nil {
		return domainerrors.ErrAlreadyAuthenticated.WrapMessage("active session present")
	}
	if errors.Is(err, domainerrors.ErrSessionInvalid) {
		return nil
	}

	return errors.Wrap(err, "failed to validate session")
}
