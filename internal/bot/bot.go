package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/tiendasmegan/meganbot/internal/config"
)

// Bot owns the long-running components and their lifecycle: the webhook
// HTTP server and the session janitor.
type Bot struct {
	logger  *slog.Logger
	cfg     *config.Config
	server  *http.Server
	janitor *Janitor
}

// NewBot assembles the orchestrator around a ready webhook handler.
func NewBot(logger *slog.Logger, cfg *config.Config, webhookHandler http.Handler, janitor *Janitor) *Bot {
	return &Bot{
		logger: logger.With("component", "bot_orchestrator"),
		cfg:    cfg,
		server: &http.Server{
			Addr:    cfg.Server.Addr,
			Handler: webhookHandler,
		},
		janitor: janitor,
	}
}

// Run starts every component and blocks until the context is cancelled or
// one of them fails. Shutdown is graceful within the configured timeout.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator...")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.logger.Info("Starting webhook server...", "addr", b.server.Addr)
		if err := b.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("webhook server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping webhook server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), b.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := b.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("webhook server shutdown failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := b.janitor.Start(); err != nil {
			return fmt.Errorf("failed to start janitor: %w", err)
		}

		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping janitor...")

		if err := b.janitor.Stop(); err != nil {
			b.logger.Error("Error stopping janitor", "error", err)
		}
		return nil
	})

	b.logger.Info("Bot orchestrator running. Waiting for shutdown signal or error...")
	err := g.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully.")
	return nil
}
