// Package main contains the entrypoint for the Messenger bot application.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tiendasmegan/meganbot/internal/advisor"
	"github.com/tiendasmegan/meganbot/internal/bot"
	"github.com/tiendasmegan/meganbot/internal/catalog"
	"github.com/tiendasmegan/meganbot/internal/config"
	"github.com/tiendasmegan/meganbot/internal/logger"
	"github.com/tiendasmegan/meganbot/internal/messenger"
	"github.com/tiendasmegan/meganbot/internal/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes and starts all application components (config, logger,
// catalog, advisor client, router, webhook, janitor), handles graceful
// shutdown, and returns an exit code (0 for success, 1 for failure).
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info("Logger initialized", "level", cfg.Log.Level, "format", cfg.Log.Format)

	cat, err := catalog.Load(cfg.Catalog.DataPath, cfg.Catalog.PromoPath, cfg.Catalog.PromptPath)
	if err != nil {
		log.Error("Failed to load catalog", "error", err)
		return 1
	}
	log.Info("Catalog loaded", "categories", cat.CategoryCount(), "products", cat.ProductCount())

	advisorClient, err := advisor.NewClient(ctx, cfg.Advisor, log)
	if err != nil {
		log.Error("Failed to initialize advisor client", "error", err)
		return 1
	}

	clock := clockwork.NewRealClock()
	sessions := session.NewStore(clock)
	sender := messenger.NewClient(cfg.Messenger, log)
	router := bot.NewRouter(log, cfg, sessions, clock, cat, advisorClient, sender)

	webhook := messenger.NewWebhook(cfg.Messenger, router, log)

	janitor, err := bot.NewJanitor(log, sessions, clock, cfg.Session.JanitorInterval, cfg.Session.PruneAfter)
	if err != nil {
		log.Error("Failed to initialize janitor", "error", err)
		return 1
	}

	app := bot.NewBot(log, cfg, webhook, janitor)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
