package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ValHeil/kartensets/internal/api"
	"github.com/ValHeil/kartensets/internal/config"
	"github.com/ValHeil/kartensets/internal/domain"
	"github.com/ValHeil/kartensets/internal/repository/localstore"
	"github.com/ValHeil/kartensets/internal/repository/redis"
	"github.com/ValHeil/kartensets/internal/repository/remote"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil {
		// .env is optional; environment variables still apply.
	}

	// Setup logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("store", cfg.Store.Backend).
		Msg("Starting kartensets sessions server")

	// Remote collaborator client, used by the remote repository backend
	// and the catalog endpoint.
	var remoteClient *remote.Client
	if cfg.Remote.BaseURL != "" {
		remoteClient = remote.NewClient(cfg.Remote.BaseURL, cfg.Remote.Timeout)
	}

	// Select the session repository backend.
	var (
		backend localstore.Backend
		repo    domain.SessionRepository
	)
	switch cfg.Store.Backend {
	case "sqlite":
		sqliteBackend, err := localstore.NewSQLiteBackend(cfg.Store.SQLitePath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open sqlite store")
		}
		defer sqliteBackend.Close()
		backend = sqliteBackend
	case "remote":
		if remoteClient == nil {
			log.Fatal().Msg("store.backend is remote but remote.base_url is empty")
		}
		// Identity still lives locally even with remote sessions.
		fileBackend, err := localstore.NewFileBackend(cfg.Store.Dir)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create data dir")
		}
		backend = fileBackend
		repo = remote.NewSessionRepository(remoteClient)
	default:
		fileBackend, err := localstore.NewFileBackend(cfg.Store.Dir)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create data dir")
		}
		backend = fileBackend
	}

	adapter := localstore.NewAdapter(backend, cfg.Store.MaxSize)
	if repo == nil {
		repo = localstore.NewSessionRepository(adapter)
	}

	// Redis is optional; it carries catalog caching and change hints.
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewClient(cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()
	}

	// Initialize router
	router := api.NewRouter(cfg, adapter, repo, redisClient, remoteClient)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
