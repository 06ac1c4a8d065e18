package auth

import (
	"context"

	"gatehouse/config"
	"gatehouse/internal/domain/service"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// bcryptHasher implements CredentialHasher with bcrypt. bcrypt generates its
// own 128-bit salt and embeds it in the hash encoding, so the salt return is
// always empty.
type bcryptHasher struct {
	cost int

	dummyHash string
}

// NewBcryptHasher is the constructor for bcryptHasher.
func NewBcryptHasher(cfg *config.AuthConfig) (service.CredentialHasher, error) {
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, errors.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	h := &bcryptHasher{cost: cost}

	dummy, _, err := h.Derive(context.Background(), "gatehouse-dummy-credential")
	if err != nil {
		return nil, errors.Wrap(err, "failed to precompute dummy credential")
	}
	h.dummyHash = dummy

	return h, nil
}

// Derive generates a salted hash from a plaintext password using bcrypt.
func (h *bcryptHasher) Derive(_ context.Context, password string) (string, string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", "", errors.Wrap(err, "bcrypt derivation failed")
	}

	return string(bytes), "", nil
}

// Verify compares a plaintext password with a bcrypt hash. bcrypt's own
// comparison is constant time over the derived key.
func (h *bcryptHasher) Verify(_ context.Context, password, hash, _ string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}

	return false, errors.Wrap(err, "bcrypt verification failed")
}

// DummyHash returns the precomputed equal-cost credential.
func (h *bcryptHasher) DummyHash() (string, string) {
	return h.dummyHash, ""
}
