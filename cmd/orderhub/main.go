package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/feastline/orderhub/internal/auth"
	"github.com/feastline/orderhub/internal/config"
	"github.com/feastline/orderhub/internal/db"
	"github.com/feastline/orderhub/internal/order"
	"github.com/feastline/orderhub/internal/stream"
	"github.com/feastline/orderhub/internal/transport"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "orderhub").Logger()

	log.Info().Msg("Order hub starting...")

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	var repo order.Repository
	if cfg.Postgres.Host == "memory" {
		log.Info().Msg("Using in-memory order store")
		repo = order.NewMemoryRepository()
	} else {
		pg, err := db.New(cfg.Postgres)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer pg.Close()
		repo = order.NewRepository(pg.Pool)
	}

	broadcaster := stream.NewBroadcaster(cfg.App.StreamBuffer)
	svc := order.NewService(repo, broadcaster)

	var authorizer auth.Authorizer = auth.StaticTokenAuthorizer{Token: cfg.App.AdminToken}
	if cfg.App.AdminToken == "" {
		log.Warn().Msg("ADMIN_TOKEN not set, status updates are open to everyone")
		authorizer = auth.AllowAll{}
	}

	router := transport.NewRouter(svc, broadcaster, authorizer)

	srv := &http.Server{
		Addr:        ":" + cfg.App.Port,
		Handler:     router,
		ReadTimeout: 5 * time.Second,
		// No WriteTimeout: SSE connections stay open indefinitely.
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("Shutting down...")

	// Dropping subscribers first lets open SSE handlers unwind before the
	// server shutdown deadline.
	broadcaster.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Shutdown failed")
	}
	log.Info().Msg("Server stopped")
}
