package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/calvinwijaya/blackjack-web/internal/api"
	"github.com/calvinwijaya/blackjack-web/internal/config"
	"github.com/calvinwijaya/blackjack-web/internal/db"
	"github.com/calvinwijaya/blackjack-web/internal/game"
	"github.com/calvinwijaya/blackjack-web/internal/logging"
	"github.com/calvinwijaya/blackjack-web/internal/store"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/cors"
)

var mainLogger = logging.GetZeroLogger("main::main", nil)

func main() {
	if err := run(); err != nil {
		mainLogger.Error().Msg(err.Error())
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}
	logging.SetDebug(cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize the store
	sessionStore := store.NewMemoryStore()
	mainLogger.Info().Msg("In-memory session store initialized")

	// Initialize the round journal
	var database *db.Database
	if cfg.DBPath != "" {
		database, err = openDatabase(ctx, cfg)
		if err != nil {
			mainLogger.Warn().Err(err).Msg("Continuing without round journal")
			database = nil
		} else {
			mainLogger.Info().Str("driver", cfg.DBDriver).Msg("Database initialized successfully")
			defer database.Close()
		}
	}

	// Initialize WebSocket hub
	hub := api.NewHub(cfg.FrontendURL, logging.GetZeroLogger("api::hub", nil))
	go hub.Run(ctx)
	mainLogger.Info().Msg("WebSocket hub started")

	handlers := api.NewHandlers(sessionStore, database, hub, api.NewMetrics(),
		logging.GetZeroLogger("api::handlers", nil),
		game.WithStartingBalance(cfg.StartingBalance))
	go handlers.PruneSessions(ctx, 10*time.Minute, 24*time.Hour)

	r := mux.NewRouter()
	handlers.RegisterRoutes(r)
	r.Use(api.RequestLogger(logging.GetZeroLogger("api::request", nil)))

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      c.Handler(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		mainLogger.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- errors.Wrap(err, "server error")
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	mainLogger.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown failed")
	}
	return nil
}

func openDatabase(ctx context.Context, cfg *config.Config) (*db.Database, error) {
	if cfg.DBDriver == "sqlite3" {
		// Create data directory if it doesn't exist
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
			return nil, errors.Wrap(err, "failed to create data directory")
		}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return db.NewDatabase(pingCtx, cfg.DBDriver, cfg.DBPath)
}
