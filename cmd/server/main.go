package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/unitport/compiler/internal/config"
	"github.com/unitport/compiler/internal/httpapi"
	"github.com/unitport/compiler/internal/storage"
	"github.com/unitport/compiler/internal/unitlog"
)

func main() {
	var addr = flag.String("addr", "", "HTTP listen address (overrides config)")
	flag.Parse()

	cfg := config.Load()
	if *addr != "" {
		cfg.HTTPAddr = *addr
	}

	unitlog.Setup(cfg.LogLevel)
	log.Info().Str("addr", cfg.HTTPAddr).Str("robot_type", cfg.DefaultRobotType).Msg("starting compiler api server")

	store, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	if closer, ok := store.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	auth := httpapi.NewJWTAuth(cfg.JWTSigningKey)
	server := httpapi.NewServer(store, auth, nil)

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("address", httpServer.Addr).Msg("server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}
	log.Info().Msg("server exited gracefully")
}

func openStore(cfg *config.Config) (storage.Store, error) {
	if cfg.DatabaseDSN == "" {
		return storage.NewMemoryStore(), nil
	}
	store := storage.NewBunStore(cfg.DatabaseDSN)
	if err := store.InitSchema(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}
