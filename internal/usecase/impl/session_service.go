package impl

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"gatehouse/config"
	"gatehouse/internal/domain/entity"
	domainerrors "gatehouse/internal/domain/errors"
	"gatehouse/internal/domain/repository"
	"gatehouse/internal/errors"
	"gatehouse/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// sessionSecretLen is the entropy of a session secret in bytes.
const sessionSecretLen = 32

// handleSeparator splits the record id from the secret inside an opaque
// handle. The secret alone cannot be looked up; the id alone proves nothing.
const handleSeparator = "|"

// sessionService implements the SessionUsecase interface.
type sessionService struct {
	sessionRepo repository.SessionRepository
	ttl         time.Duration
	sliding     bool
	now         func() time.Time
	logger      *slog.Logger
}

// SessionServiceParams holds dependencies for sessionService, injected by Fx.
type SessionServiceParams struct {
	fx.In

	SessionRepo repository.SessionRepository
	Config      *config.Config
	Logger      *slog.Logger
}

// NewSessionService is the constructor for sessionService.
func NewSessionService(params SessionServiceParams) usecase.SessionUsecase {
	sliding := true
	if params.Config.Session.Sliding != nil {
		sliding = *params.Config.Session.Sliding
	}

	return &sessionService{
		sessionRepo: params.SessionRepo,
		ttl:         params.Config.Session.TTL,
		sliding:     sliding,
		now:         time.Now,
		logger:      params.Logger,
	}
}

// Issue creates a session record and returns its opaque handle. The handle is
// the only copy of the secret; the record stores a SHA-256 digest.
func (srv *sessionService) Issue(ctx context.Context, identityID uuid.UUID) (*usecase.IssueOutput, error) {
	secretBytes := make([]byte, sessionSecretLen)
	if _, err := rand.Read(secretBytes); err != nil {
		srv.logger.Error("Failed to read session entropy", slog.Any("error", err))

		return nil, domainerrors.ErrEntropyUnavailable.WrapMessage("failed to generate session secret")
	}
	secret := base64.RawURLEncoding.EncodeToString(secretBytes)

	sessionID, err := uuid.NewRandom()
	if err != nil {
		srv.logger.Error("Failed to generate session id", slog.Any("error", err))

		return nil, domainerrors.ErrEntropyUnavailable.WrapMessage("failed to generate session id")
	}

	issuedAt := srv.now()
	session := &entity.Session{
		ID:         sessionID,
		IdentityID: identityID,
		TokenHash:  hashSessionSecret(secret),
		IssuedAt:   issuedAt,
		ExpiresAt:  issuedAt.Add(srv.ttl),
		Revoked:    false,
	}

	if err := srv.sessionRepo.Create(ctx, session); err != nil {
		srv.logger.Error("Failed to create session", slog.Any("identityID", identityID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to create session")
	}

	srv.logger.Debug("Session issued", slog.Any("sessionID", session.ID), slog.Any("identityID", identityID))

	return &usecase.IssueOutput{
		Handle:  session.ID.String() + handleSeparator + secret,
		Session: session,
	}, nil
}

// Validate resolves a handle to its session. Malformed, unknown, mismatched,
// revoked and expired handles all return ErrSessionInvalid so the caller
// learns nothing about which check failed. Under a sliding policy a
// successful validation extends the session.
func (srv *sessionService) Validate(ctx context.Context, handle string) (*entity.Session, error) {
	return srv.resolve(ctx, handle, true)
}

// Inspect resolves a handle without counting as activity: the session is
// never extended, whatever the expiry policy.
func (srv *sessionService) Inspect(ctx context.Context, handle string) (*entity.Session, error) {
	return srv.resolve(ctx, handle, false)
}

func (srv *sessionService) resolve(ctx context.Context, handle string, extend bool) (*entity.Session, error) {
	sessionID, secret, ok := parseHandle(handle)
	if !ok {
		return nil, domainerrors.ErrSessionInvalid.WrapMessage("malformed session handle")
	}

	session, err := srv.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, domainerrors.ErrSessionInvalid.WrapMessage("unknown session")
		}
		srv.logger.Error("Failed to load session", slog.Any("sessionID", sessionID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to load session")
	}

	if subtle.ConstantTimeCompare([]byte(hashSessionSecret(secret)), []byte(session.TokenHash)) != 1 {
		return nil, domainerrors.ErrSessionInvalid.WrapMessage("session secret mismatch")
	}

	if session.Terminated(srv.now()) {
		return nil, domainerrors.ErrSessionInvalid.WrapMessage("session terminated")
	}

	if extend && srv.sliding {
		if err := srv.extendSliding(ctx, session); err != nil {
			return nil, err
		}
	}

	return session, nil
}

// extendSliding pushes the session expiry forward from now. A concurrent
// revoke wins: the guarded update reports not-found and validation fails.
func (srv *sessionService) extendSliding(ctx context.Context, session *entity.Session) error {
	expiresAt := srv.now().Add(srv.ttl)

	err := srv.sessionRepo.ExtendExpiry(ctx, session.ID, expiresAt)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return domainerrors.ErrSessionInvalid.WrapMessage("session terminated during validation")
		}
		srv.logger.Error("Failed to extend session expiry", slog.Any("sessionID", session.ID), slog.Any("error", err))

		return errors.Wrap(err, "failed to extend session expiry")
	}
	session.ExpiresAt = expiresAt

	return nil
}

// Revoke terminates the session a handle refers to. Revocation is absorbing
// and idempotent, so malformed or unknown handles are quietly absorbed too.
func (srv *sessionService) Revoke(ctx context.Context, handle string) error {
	sessionID, _, ok := parseHandle(handle)
	if !ok {
		return nil
	}

	if err := srv.sessionRepo.Revoke(ctx, sessionID); err != nil {
		srv.logger.Error("Failed to revoke session", slog.Any("sessionID", sessionID), slog.Any("error", err))

		return errors.Wrap(err, "failed to revoke session")
	}

	srv.logger.Debug("Session revoked", slog.Any("sessionID", sessionID))

	return nil
}

// RevokeAll terminates every session belonging to the identity.
func (srv *sessionService) RevokeAll(ctx context.Context, identityID uuid.UUID) error {
	if err := srv.sessionRepo.RevokeByIdentityID(ctx, identityID); err != nil {
		srv.logger.Error("Failed to revoke sessions", slog.Any("identityID", identityID), slog.Any("error", err))

		return errors.Wrap(err, "failed to revoke sessions")
	}

	srv.logger.Info("All sessions revoked", slog.Any("identityID", identityID))

	return nil
}

// ListActive returns the identity's sessions that are neither revoked nor
// expired.
func (srv *sessionService) ListActive(ctx context.Context, identityID uuid.UUID) ([]*entity.Session, error) {
	sessions, err := srv.sessionRepo.FindByIdentityID(ctx, identityID)
	if err != nil {
		srv.logger.Error("Failed to list sessions", slog.Any("identityID", identityID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to list sessions")
	}

	now := srv.now()
	active := make([]*entity.Session, 0, len(sessions))
	for _, session := range sessions {
		if !session.Terminated(now) {
			active = append(active, session)
		}
	}

	return active, nil
}

// CleanupExpired deletes revoked and expired session records.
func (srv *sessionService) CleanupExpired(ctx context.Context) (int, error) {
	removed, err := srv.sessionRepo.DeleteTerminated(ctx, srv.now())
	if err != nil {
		srv.logger.Error("Failed to clean up sessions", slog.Any("error", err))

		return 0, errors.Wrap(err, "failed to clean up sessions")
	}

	if removed > 0 {
		srv.logger.Info("Cleaned up terminated sessions", slog.Int("removed", removed))
	}

	return removed, nil
}

func hashSessionSecret(secret string) string {
	digest := sha256.Sum256([]byte(secret))

	return hex.EncodeToString(digest[:])
}

func parseHandle(handle string) (uuid.UUID, string, bool) {
	idPart, secret, found := strings.Cut(handle, handleSeparator)
	if !found || secret == "" {
		return uuid.Nil, "", false
	}

	sessionID, err := uuid.Parse(idPart)
	if err != nil {
		return uuid.Nil, "", false
	}

	return sessionID, secret, true
}
