// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nexus/campusmap/internal/assistant"
	"github.com/nexus/campusmap/internal/cache"
	"github.com/nexus/campusmap/internal/config"
	"github.com/nexus/campusmap/internal/controller"
	"github.com/nexus/campusmap/internal/gateway"
	"github.com/nexus/campusmap/internal/i18n"
	"github.com/nexus/campusmap/internal/logging"
	"github.com/nexus/campusmap/internal/overlay"
	"github.com/nexus/campusmap/internal/policy"
	"github.com/nexus/campusmap/internal/session"
	"github.com/nexus/campusmap/internal/store"
	"github.com/nexus/campusmap/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

const initTimeout = 60 * time.Second

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "campusmap - Campus Map Overlay Controller\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUSMAP_API_URL        Backend API base URL (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUSMAP_STATE_PATH     Client state SQLite path (default: ./data/campusmap.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUSMAP_LANGUAGE       UI language: ko|en|mn (default: ko)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUSMAP_POLL_SCHEDULE  Refresh cron schedule (default: */2 * * * *)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUSMAP_REDIS_URL      Redis URL for a shared translation cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUSMAP_ENV            Environment: development|production (default: development)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("campusmap %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	versionInfo := version.New(appVersion, appGitCommit, appBuildTime)

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	// Client state database; also backs the activity log mirror.
	db, err := session.NewDB(cfg.StatePath)
	if err != nil {
		return fmt.Errorf("opening state database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := session.Migrate(db); err != nil {
		return fmt.Errorf("migrating state database: %w", err)
	}
	sessions := session.NewManager(db)

	logger := slog.New(logging.NewActivityLogHandler(textHandler, sessions))
	slog.SetDefault(logger)
	logger.Info("starting campusmap", "version", versionInfo.String(), "env", cfg.Env)

	// Initialize i18n for UI strings
	if err := i18n.Init(logger); err != nil {
		return fmt.Errorf("initializing i18n: %w", err)
	}

	// Cache backend: Redis when configured, in-memory otherwise.
	cacheBackend, err := cache.New(cache.Config{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: time.Duration(cfg.CacheTTL) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("creating cache: %w", err)
	}
	defer func() { _ = cacheBackend.Close() }()
	translations := cache.NewTranslationCache(cacheBackend, time.Duration(cfg.CacheTTL)*time.Second)

	api, err := gateway.New(gateway.Options{
		BaseURL:      cfg.APIBaseURL,
		RequestRate:  cfg.RequestRate,
		RequestBurst: cfg.RequestBurst,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("creating gateway: %w", err)
	}

	// Headless map surface; a real widget binding replaces these at the
	// embedding layer.
	surface := overlay.NewHeadlessSurface(logger)
	surface.SetLevel(cfg.MapLevel)
	widget := overlay.NewHeadlessWidget(logger)

	st := store.New()
	ctrl := controller.New(controller.Options{
		API:          api,
		Store:        st,
		Sessions:     sessions,
		Widget:       widget,
		Surface:      surface,
		Translations: translations,
		Policy:       policy.Default,
		Language:     cfg.Language,
		Logger:       logger,
		UploadsDir:   cfg.UploadsDir,
	})

	initCtx, cancel := context.WithTimeout(context.Background(), initTimeout)
	err = ctrl.Initialize(initCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("initializing controller: %w", err)
	}

	// Campus assistant is optional; a misconfigured provider downgrades
	// to a warning rather than aborting startup.
	if cfg.AssistantEnabled() {
		helper, err := assistant.New(assistant.Options{
			Provider: cfg.AssistantProvider,
			BaseURL:  cfg.AssistantURL,
			Model:    cfg.AssistantModel,
			APIKey:   cfg.AssistantAPIKey,
		}, st)
		if err != nil {
			logger.Warn("assistant disabled", "error", err)
		} else {
			ctrl.SetAssistant(helper)
			logger.Info("assistant ready",
				"provider", helper.ProviderID(),
				"model", cfg.AssistantModel)
		}
	}

	poller, err := controller.NewPoller(cfg.PollSchedule, ctrl, logger)
	if err != nil {
		return fmt.Errorf("creating poller: %w", err)
	}
	poller.Start()
	defer poller.Stop()

	logger.Info("campusmap ready",
		"api", cfg.APIBaseURL,
		"language", ctrl.Language(),
		"poll", cfg.PollSchedule)

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	return nil
}
