package impl

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"gatehouse/config"
	"gatehouse/internal/domain/service"
	"gatehouse/internal/infra/auth"
	"gatehouse/internal/infra/persistence/memory"
	"gatehouse/internal/usecase"

	"github.com/stretchr/testify/require"
)

// testStores bundles the in-memory persistence the service tests run against.
type testStores struct {
	identities *memory.IdentityRepository
	sessions   *memory.SessionRepository
	txManager  *memory.TransactionManager
}

func newTestStores() *testStores {
	identities := memory.NewIdentityRepository()
	sessions := memory.NewSessionRepository()

	return &testStores{
		identities: identities,
		sessions:   sessions,
		txManager:  memory.NewTransactionManager(identities, sessions),
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestHasher builds a low-cost argon2id hasher so the suite stays fast.
func newTestHasher(t *testing.T) service.CredentialHasher {
	t.Helper()

	hasher, err := auth.NewCredentialHasher(&config.Config{
		Auth: &config.AuthConfig{
			Algorithm:           "argon2id",
			Argon2Memory:        1024,
			Argon2Time:          1,
			Argon2Threads:       1,
			MaxConcurrentHashes: 4,
		},
	})
	require.NoError(t, err)

	return hasher
}

func newTestTokenService(t *testing.T) service.TokenService {
	t.Helper()

	cfg := &config.Config{
		Auth: &config.AuthConfig{AccessTokenTTL: 15 * time.Minute},
	}
	cfg.SecretKey.Access = "test-access-secret"

	tokenService, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	return tokenService
}

func newTestIdentityService(t *testing.T, stores *testStores) usecase.IdentityUsecase {
	t.Helper()

	return NewIdentityService(IdentityServiceParams{
		TxManager:    stores.txManager,
		IdentityRepo: stores.identities,
		Hasher:       newTestHasher(t),
		Logger:       discardLogger(),
	})
}

// newTestSessionService builds a session service with a controllable clock.
// Moving *clock forward simulates the passage of time.
func newTestSessionService(t *testing.T, stores *testStores, ttl time.Duration, sliding bool, clock *time.Time) usecase.SessionUsecase {
	t.Helper()

	cfg := &config.Config{
		Session: &config.SessionConfig{TTL: ttl, Sliding: &sliding},
	}

	svc := NewSessionService(SessionServiceParams{
		SessionRepo: stores.sessions,
		Config:      cfg,
		Logger:      discardLogger(),
	})
	if clock != nil {
		svc.(*sessionService).now = func() time.Time { return *clock }
	}

	return svc
}

func newTestAuthService(t *testing.T, stores *testStores, sessions usecase.SessionUsecase) usecase.AuthUsecase {
	t.Helper()

	return NewAuthService(AuthServiceParams{
		IdentityRepo: stores.identities,
		Hasher:       newTestHasher(t),
		TokenService: newTestTokenService(t),
		Sessions:     sessions,
		Logger:       discardLogger(),
	})
}

func newTestAccessGate(stores *testStores, sessions usecase.SessionUsecase) usecase.AccessGate {
	return NewAccessGate(AccessGateParams{
		Sessions:     sessions,
		IdentityRepo: stores.identities,
		Logger:       discardLogger(),
	})
}
