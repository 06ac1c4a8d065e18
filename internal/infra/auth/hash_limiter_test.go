package auth

import (
	"context"
	"testing"

	"gatehouse/config"
	domainerrors "gatehouse/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingHasher parks inside Derive until released, so tests can hold the
// admission slot deterministically.
type blockingHasher struct {
	entered  chan struct{}
	released chan struct{}
}

func (h *blockingHasher) Derive(_ context.Context, _ string) (string, string, error) {
	close(h.entered)
	<-h.released

	return "hash", "salt", nil
}

func (h *blockingHasher) Verify(_ context.Context, _, _, _ string) (bool, error) {
	return true, nil
}

func (h *blockingHasher) DummyHash() (string, string) {
	return "dummy-hash", "dummy-salt"
}

func TestBoundHasher_RejectsWhenSaturated(t *testing.T) {
	inner := &blockingHasher{
		entered:  make(chan struct{}),
		released: make(chan struct{}),
	}
	hasher := BoundHasher(inner, 1)

	deriveErr := make(chan error, 1)
	go func() {
		_, _, err := hasher.Derive(context.Background(), "first")
		deriveErr <- err
	}()
	<-inner.entered

	// The only slot is held; an expired caller must be turned away, not queued.
	canceledCtx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := hasher.Derive(canceledCtx, "second")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrHasherBusy)

	_, err = hasher.Verify(canceledCtx, "second", "hash", "salt")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrHasherBusy)

	// DummyHash is precomputed and bypasses admission entirely.
	dummyHash, _ := hasher.DummyHash()
	assert.Equal(t, "dummy-hash", dummyHash)

	close(inner.released)
	require.NoError(t, <-deriveErr)
}

func TestNewCredentialHasher_UnknownAlgorithm(t *testing.T) {
	_, err := NewCredentialHasher(&config.Config{
		Auth: &config.AuthConfig{Algorithm: "md5"},
	})
	assert.Error(t, err)
}

func TestNewCredentialHasher_Argon2id(t *testing.T) {
	hasher, err := NewCredentialHasher(&config.Config{
		Auth: &config.AuthConfig{
			Algorithm:           "argon2id",
			Argon2Memory:        1024,
			Argon2Time:          1,
			Argon2Threads:       1,
			MaxConcurrentHashes: 2,
		},
	})
	require.NoError(t, err)

	ctx := context.Background()
	hash, salt, err := hasher.Derive(ctx, "correct horse battery")
	require.NoError(t, err)

	match, err := hasher.Verify(ctx, "correct horse battery", hash, salt)
	require.NoError(t, err)
	assert.True(t, match)
}
