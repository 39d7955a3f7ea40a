// Package main initializes and starts the catalog API server, setting up
// configuration, logging, the database connection, repositories, services,
// handlers and graceful shutdown.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/aakash-sharma-github/dollop-music-backend/internal/config"
	"github.com/aakash-sharma-github/dollop-music-backend/internal/db"
	"github.com/aakash-sharma-github/dollop-music-backend/internal/logger"
	"github.com/aakash-sharma-github/dollop-music-backend/internal/middleware"
	"github.com/aakash-sharma-github/dollop-music-backend/internal/repository"
	"github.com/aakash-sharma-github/dollop-music-backend/internal/server/handler/http"
	"github.com/aakash-sharma-github/dollop-music-backend/internal/service"
	"github.com/aakash-sharma-github/dollop-music-backend/internal/token"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	options, err := config.Parse()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	log, err := logger.New("info")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	// Initialize PostgreSQL and bootstrap the schema.
	postgres, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		log.Fatal("cannot init database", zap.Error(err))
	}
	defer func() { _ = postgres.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Reconcile playlist references left dangling by a crash mid-delete.
	db.StartMembershipSweeper(ctx, postgres, options.SweepInterval, log)

	tokens, err := token.NewManager(options.AccessSecret, options.RefreshSecret, options.AccessTTL, options.RefreshTTL)
	if err != nil {
		log.Fatal("cannot init token manager", zap.Error(err))
	}

	// Initialize repositories.
	userRepo := repository.NewPostgresUserRepository(postgres)
	trackRepo := repository.NewPostgresTrackRepository(postgres)
	playlistRepo := repository.NewPostgresPlaylistRepository(postgres)

	// Initialize business-logic services. The playlist engine doubles as the
	// track catalog's membership purger, and the track repository backs the
	// playlist engine's reference checks.
	authService := service.NewAuthService(userRepo, tokens, options.BcryptCost)
	playlistService := service.NewPlaylistService(playlistRepo, trackRepo)
	trackService := service.NewTrackService(trackRepo, playlistService)

	// Create HTTP handlers.
	authHandler := &http.AuthHandler{AuthService: authService}
	userHandler := &http.UserHandler{ProfileService: authService}
	trackHandler := &http.TrackHandler{TrackService: trackService}
	playlistHandler := &http.PlaylistHandler{PlaylistService: playlistService}

	// Build the router with middleware and routes.
	limiter := middleware.NewRateLimiter(options.RateLimitRPS, options.RateLimitBurst, http.WriteError)
	router := http.NewRouter(http.RouterDeps{
		Auth:           authHandler,
		Users:          userHandler,
		Tracks:         trackHandler,
		Playlists:      playlistHandler,
		Tokens:         tokens,
		Limiter:        limiter,
		Logger:         log,
		RequestTimeout: options.RequestTimeout,
	})

	server := &nethttp.Server{
		Addr:    options.Addr,
		Handler: router,
	}

	go func() {
		log.Info("server listening", zap.String("addr", options.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), options.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
