package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nexus_bot/internal/config"
	"nexus_bot/internal/feature/owner"
	"nexus_bot/internal/health"
	"nexus_bot/internal/logging"
	"nexus_bot/internal/logsink"
	"nexus_bot/internal/relay"
	"nexus_bot/internal/store"
	"nexus_bot/internal/telegram"
)

const (
	ownerBootstrapTimeout   = 5 * time.Second
	telegramShutdownTimeout = 10 * time.Second
	healthShutdownTimeout   = 5 * time.Second
)

func main() {
	configOnly := flag.Bool("config-only", false, "load and print configuration then exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Error("configuration error", logging.Fields{"error": err})
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.Setup(cfg)
	if err != nil {
		logging.Error("logger setup error", logging.Fields{"error": err})
		fmt.Fprintf(os.Stderr, "logger setup error: %v\n", err)
		os.Exit(1)
	}

	if *configOnly {
		logging.Info("configuration check", logging.Fields{"event": "config_only"})
		fmt.Println("configuration check: ok")
		fmt.Println(config.FormatRedacted(cfg))
		return
	}

	logger.WithFields(logging.Fields{
		"event":    "startup",
		"database": cfg.DatabasePath,
	}).Info("configuration loaded")

	storeManager, err := store.NewManager(cfg)
	if err != nil {
		logger.WithError(err).Error("database open error")
		fmt.Fprintf(os.Stderr, "database open error: %v\n", err)
		os.Exit(1)
	}

	if err := storeManager.Migrate(); err != nil {
		logger.WithError(err).Error("database migration error")
		fmt.Fprintf(os.Stderr, "database migration error: %v\n", err)
		os.Exit(1)
	}

	logger.WithField("event", "schema_migrate").Info("database schema is up to date")

	profiles := store.NewProfiles(storeManager.DB())
	groups := store.NewGroups(storeManager.DB())
	memberships := store.NewMemberships(storeManager.DB())
	logSettings := store.NewLogSettings(storeManager.DB())

	ownerRegistrar := owner.NewRegistrar(profiles, logger)
	ownerCtx, cancelOwner := context.WithTimeout(context.Background(), ownerBootstrapTimeout)
	if err := ownerRegistrar.EnsureOwner(ownerCtx, cfg.BotOwnerID); err != nil {
		cancelOwner()
		logger.WithError(err).Error("owner bootstrap error")
		fmt.Fprintf(os.Stderr, "owner bootstrap error: %v\n", err)
		os.Exit(1)
	}
	cancelOwner()

	// The bot needs a default handler at construction time, and the handlers
	// need the bot for outbound calls. The dispatcher is bound once both exist.
	dispatcher := telegram.NewDispatcher()

	tgClient, err := telegram.NewClient(cfg, logger, dispatcher.Handle)
	if err != nil {
		logger.WithError(err).Error("telegram client setup error")
		fmt.Fprintf(os.Stderr, "telegram client setup error: %v\n", err)
		os.Exit(1)
	}
	api := tgClient.Bot()

	sink := logsink.New(api, logSettings, cfg.LogChatID, logger)
	router := telegram.NewRouter(telegram.Deps{
		API:         api,
		Profiles:    profiles,
		Groups:      groups,
		Memberships: memberships,
		LogSettings: logSettings,
		Relay:       relay.NewCorrelator(api, cfg.LogChatID, logger),
		Sink:        sink,
		LogChatID:   cfg.LogChatID,
		Logger:      logger,
	})
	dispatcher.Bind(sink.Guard(router.Handle))

	logger.WithField("event", "telegram_ready").Info("telegram client initialized")

	healthServer := health.NewServer(cfg.HTTPPort, storeManager, profiles, groups, logger)
	go func() {
		if err := healthServer.ListenAndServe(); err != nil {
			logger.WithError(err).Error("health server error")
		}
	}()

	signalCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	telegramCtx, cancelTelegram := context.WithCancel(context.Background())
	tgDone := make(chan struct{})

	go func() {
		tgClient.Start(telegramCtx)
		close(tgDone)
	}()

	select {
	case <-signalCtx.Done():
		logger.WithField("event", "shutdown_signal").Info("received termination signal, stopping telegram polling")
	case <-tgDone:
		logger.WithField("event", "telegram_stopped_early").Warn("telegram client stopped before shutdown signal")
	}

	cancelTelegram()

	waitCtx, cancelWait := context.WithTimeout(context.Background(), telegramShutdownTimeout)
	select {
	case <-tgDone:
	case <-waitCtx.Done():
		logger.WithField("event", "telegram_shutdown_timeout").Warn("timed out waiting for telegram client to stop")
	}
	cancelWait()

	healthCtx, cancelHealth := context.WithTimeout(context.Background(), healthShutdownTimeout)
	if err := healthServer.Shutdown(healthCtx); err != nil {
		logger.WithError(err).Error("health server shutdown error")
	}
	cancelHealth()

	if err := storeManager.Close(); err != nil {
		logger.WithError(err).Error("database close error")
	} else {
		logger.WithField("event", "database_closed").Info("database connection closed")
	}

	logger.WithField("event", "shutdown_complete").Info("shutdown complete")
}
