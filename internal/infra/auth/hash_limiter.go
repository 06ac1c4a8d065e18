package auth

import (
	"context"

	"gatehouse/config"
	domainerrors "gatehouse/internal/domain/errors"
	"gatehouse/internal/domain/service"

	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"
)

// boundedHasher decorates a CredentialHasher with an admission limit so a
// burst of registrations or logins cannot saturate every core with key
// derivation. Excess callers queue on the semaphore until their context
// expires.
type boundedHasher struct {
	inner service.CredentialHasher
	sem   *semaphore.Weighted
}

// NewCredentialHasher builds the configured hasher (argon2id or bcrypt) and
// wraps it with the concurrency bound.
func NewCredentialHasher(cfg *config.Config) (service.CredentialHasher, error) {
	var (
		inner service.CredentialHasher
		err   error
	)
	switch cfg.Auth.Algorithm {
	case "argon2id":
		inner, err = NewArgon2idHasher(cfg.Auth)
	case "bcrypt":
		inner, err = NewBcryptHasher(cfg.Auth)
	default:
		return nil, errors.Errorf("unknown credential hash algorithm %q", cfg.Auth.Algorithm)
	}
	if err != nil {
		return nil, err
	}

	return BoundHasher(inner, cfg.Auth.MaxConcurrentHashes), nil
}

// BoundHasher wraps an existing hasher with a concurrency limit.
func BoundHasher(inner service.CredentialHasher, limit int64) service.CredentialHasher {
	if limit < 1 {
		limit = 1
	}

	return &boundedHasher{
		inner: inner,
		sem:   semaphore.NewWeighted(limit),
	}
}

// Derive acquires an admission slot before delegating.
func (h *boundedHasher) Derive(ctx context.Context, password string) (string, string, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", "", domainerrors.ErrHasherBusy.WrapMessage(err.Error())
	}
	defer h.sem.Release(1)

	return h.inner.Derive(ctx, password)
}

// Verify acquires an admission slot before delegating.
func (h *boundedHasher) Verify(ctx context.Context, password, hash, salt string) (bool, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false, domainerrors.ErrHasherBusy.WrapMessage(err.Error())
	}
	defer h.sem.Release(1)

	return h.inner.Verify(ctx, password, hash, salt)
}

// DummyHash is precomputed and costs nothing, so it bypasses admission.
func (h *boundedHasher) DummyHash() (string, string) {
	return h.inner.DummyHash()
}
