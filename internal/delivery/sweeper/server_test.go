package sweeper

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"gatehouse/config"
	"gatehouse/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

// countingSessionUsecase records CleanupExpired calls.
type countingSessionUsecase struct {
	usecase.SessionUsecase

	mu    sync.Mutex
	calls int
}

func (c *countingSessionUsecase) CleanupExpired(_ context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++

	return 0, nil
}

func (c *countingSessionUsecase) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.calls
}

func TestSweeper_RunsCleanupPeriodically(t *testing.T) {
	sessions := &countingSessionUsecase{}
	lc := fxtest.NewLifecycle(t)

	srv, err := NewServer(ServerParams{
		Lc:       lc,
		Cfg:      &config.Config{Session: &config.SessionConfig{SweepInterval: 10 * time.Millisecond}},
		Sessions: sessions,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serveDone := make(chan error, 1)
	go func() {
		serveDone <- srv.Serve(ctx)
	}()

	assert.Eventually(t, func() bool {
		return sessions.callCount() >= 2
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-serveDone)
}
