// Package sweeper runs the periodic session cleanup loop.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"gatehouse/config"
	"gatehouse/internal/delivery"
	"gatehouse/internal/usecase"

	"go.uber.org/fx"
)

type sweeperServer struct {
	interval time.Duration
	sessions usecase.SessionUsecase
	logger   *slog.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// ServerParams holds dependencies for the sweeper server.
type ServerParams struct {
	fx.In

	Lc       fx.Lifecycle
	Cfg      *config.Config
	Sessions usecase.SessionUsecase
	Logger   *slog.Logger
}

// NewServer creates the session sweeper delivery.
func NewServer(params ServerParams) (delivery.Delivery, error) {
	srv := &sweeperServer{
		interval: params.Cfg.Session.SweepInterval,
		sessions: params.Sessions,
		logger:   params.Logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}

	params.Lc.Append(fx.Hook{
		OnStop: srv.stop,
	})

	return srv, nil
}

// Serve runs the sweep loop until the context is canceled or the container
// stops.
func (s *sweeperServer) Serve(ctx context.Context) error {
	defer close(s.doneCh)

	s.logger.Info("Starting session sweeper", slog.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *sweeperServer) sweep(ctx context.Context) {
	removed, err := s.sessions.CleanupExpired(ctx)
	if err != nil {
		s.logger.Error("Session sweep failed", slog.Any("error", err))

		return
	}

	s.logger.Debug("Session sweep completed", slog.Int("removed", removed))
}

// stop signals the loop to exit and waits for it to drain.
func (s *sweeperServer) stop(ctx context.Context) error {
	s.logger.Info("Shutting down session sweeper")
	close(s.stopCh)

	select {
	case <-s.doneCh:
	case <-ctx.Done():
	}

	return nil
}
