// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"gatehouse/config"
	domainerrors "gatehouse/internal/domain/errors"
	"gatehouse/internal/domain/service"

	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
)

const (
	argon2SaltLen = 16 // 128 bits, the minimum required salt entropy
	argon2KeyLen  = 32
)

// argon2idHasher implements CredentialHasher with Argon2id. The derived hash
// is PHC-encoded so the cost parameters travel with it; the salt is also
// returned separately for the identity record.
type argon2idHasher struct {
	memory  uint32
	time    uint32
	threads uint8

	dummyHash string
	dummySalt string
}

// NewArgon2idHasher constructs the hasher and precomputes the dummy
// credential used to keep not-found login attempts at full cost.
func NewArgon2idHasher(cfg *config.AuthConfig) (service.CredentialHasher, error) {
	h := &argon2idHasher{
		memory:  cfg.Argon2Memory,
		time:    cfg.Argon2Time,
		threads: cfg.Argon2Threads,
	}
	if h.time < 1 || h.threads < 1 || h.memory < 8*uint32(h.threads) {
		return nil, errors.Errorf("invalid argon2 parameters: m=%d t=%d p=%d", h.memory, h.time, h.threads)
	}

	hash, salt, err := h.Derive(context.Background(), "gatehouse-dummy-credential")
	if err != nil {
		return nil, errors.Wrap(err, "failed to precompute dummy credential")
	}
	h.dummyHash, h.dummySalt = hash, salt

	return h, nil
}

// Derive generates a random salt and derives an Argon2id hash from the password.
func (h *argon2idHasher) Derive(_ context.Context, password string) (string, string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", "", domainerrors.ErrEntropyUnavailable.WrapMessage(err.Error())
	}

	key := argon2.IDKey([]byte(password), salt, h.time, h.memory, h.threads, argon2KeyLen)
	encodedSalt := base64.RawStdEncoding.EncodeToString(salt)
	encodedHash := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.memory, h.time, h.threads,
		encodedSalt, base64.RawStdEncoding.EncodeToString(key))

	return encodedHash, encodedSalt, nil
}

// Verify recomputes the hash with the stored salt and the parameters encoded
// in the stored hash, then compares in constant time.
func (h *argon2idHasher) Verify(_ context.Context, password, hash, salt string) (bool, error) {
	memory, time, threads, embeddedSalt, key, err := decodeArgon2Hash(hash)
	if err != nil {
		return false, err
	}

	saltBytes := embeddedSalt
	if salt != "" {
		saltBytes, err = base64.RawStdEncoding.DecodeString(salt)
		if err != nil {
			return false, errors.Wrap(err, "failed to decode stored salt")
		}
	}

	derived := argon2.IDKey([]byte(password), saltBytes, time, memory, threads, uint32(len(key)))

	return subtle.ConstantTimeCompare(derived, key) == 1, nil
}

// DummyHash returns the precomputed equal-cost credential.
func (h *argon2idHasher) DummyHash() (string, string) {
	return h.dummyHash, h.dummySalt
}

// decodeArgon2Hash parses a PHC-encoded Argon2id hash string.
func decodeArgon2Hash(encoded string) (memory, time uint32, threads uint8, salt, key []byte, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return 0, 0, 0, nil, nil, errors.New("malformed argon2id hash")
	}

	var version int
	if _, err = fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return 0, 0, 0, nil, nil, errors.Wrap(err, "malformed argon2id version")
	}
	if version != argon2.Version {
		return 0, 0, 0, nil, nil, errors.Errorf("unsupported argon2 version %d", version)
	}

	var parallelism uint32
	if _, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &parallelism); err != nil {
		return 0, 0, 0, nil, nil, errors.Wrap(err, "malformed argon2id parameters")
	}
	threads = uint8(parallelism)

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return 0, 0, 0, nil, nil, errors.Wrap(err, "malformed argon2id salt")
	}
	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return 0, 0, 0, nil, nil, errors.Wrap(err, "malformed argon2id key")
	}

	return memory, time, threads, salt, key, nil
}
