package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/p-blackswan/outreach-agent/internal/audit"
	"github.com/p-blackswan/outreach-agent/internal/config"
	"github.com/p-blackswan/outreach-agent/internal/health"
	"github.com/p-blackswan/outreach-agent/internal/metrics"
	"github.com/p-blackswan/outreach-agent/internal/mgmt"
	"github.com/p-blackswan/outreach-agent/internal/policy"
	"github.com/p-blackswan/outreach-agent/internal/session"
	"github.com/p-blackswan/outreach-agent/internal/store"
)

func main() {
	// Setup structured logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).With().Timestamp().Caller().Logger()

	if os.Getenv("ENVIRONMENT") == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	log.Logger = logger

	// Load config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err == nil {
		zerolog.SetGlobalLevel(level)
	}

	logger.Info().
		Str("environment", cfg.Environment).
		Str("listen_addr", cfg.ListenAddr).
		Str("db_path", cfg.DBPath).
		Str("auth_mode", cfg.AuthMode).
		Msg("starting outreach agent")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Storage
	st, err := store.New(cfg.DBPath, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open store")
	}
	defer st.Close()

	// Health checker
	checker := health.NewChecker(logger)
	checker.Register("store", func(ctx context.Context) health.Status {
		if err := st.Ping(ctx); err != nil {
			return health.StatusDown
		}
		return health.StatusOK
	})

	// Metrics
	m := metrics.New()

	// Session lifecycle with audit trail
	recorder := audit.NewRecorder(st, logger)
	controller := session.NewController(st, recorder, logger)

	// One rulebook drives both settings validation and plan text.
	rulebook := policy.DefaultRulebook()

	handlers := mgmt.NewHandlers(controller, rulebook, checker, m, logger)
	server := mgmt.NewServer(mgmt.ServerConfig{
		ListenAddr: cfg.ListenAddr,
		AuthConfig: mgmt.AuthConfig{
			Mode:      cfg.AuthMode,
			JWTSecret: cfg.JWTSecret,
		},
		RateLimit: mgmt.RateLimitConfig{
			RPS:   cfg.RateLimitRPS,
			Burst: cfg.RateLimitBurst,
		},
		CORSOrigins: cfg.CORSOrigins,
	}, handlers, m, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down gracefully")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("API server error")
		}
	}

	shutdownDone := make(chan struct{})
	go func() {
		if err := server.Shutdown(); err != nil {
			logger.Error().Err(err).Msg("API server shutdown error")
		}
		close(shutdownDone)
	}()

	select {
	case <-shutdownDone:
	case <-time.After(10 * time.Second):
		logger.Warn().Msg("forced shutdown after timeout")
	}

	logger.Info().Msg("outreach agent stopped")
}
