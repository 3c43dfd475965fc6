package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"

	"prizewheel/internal/config"
	"prizewheel/internal/handlers"
	"prizewheel/internal/repository"
	"prizewheel/internal/services"
	"prizewheel/web"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		logger.Fatalf("Failed to load .env: %v", err)
	}
	cfg := config.Load()

	defer logger.Init("prizewheel", cfg.LogVerbose, false, io.Discard).Close()

	// 1. Pick the prize store
	store, err := openStore(context.Background(), cfg)
	if err != nil {
		logger.Fatalf("Failed to open prize store: %v", err)
	}

	// 2. Initialize the Wheel Service
	wheelService := services.NewWheelService(store, nil)

	// 3. Load HTML templates from the embedded filesystem.
	templates, err := web.Templates()
	if err != nil {
		logger.Fatalf("Failed to parse templates: %v", err)
	}

	// 4. Initialize the HTTP Handler
	httpHandler := handlers.NewHTTPHandler(wheelService, templates, cfg.SpinDuration)

	// 5. Set up the Gin router
	r := gin.New()
	r.Use(gin.Recovery(), handlers.RequestID(), handlers.AccessLog(), handlers.Gzip())

	// 6. Serve static files from the embedded filesystem.
	assets, err := web.Assets()
	if err != nil {
		logger.Fatalf("Failed to create assets sub-filesystem: %v", err)
	}
	r.StaticFS("/assets", http.FS(assets))

	httpHandler.RegisterRoutes(r)

	// 7. Run the server until interrupted
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}
	go func() {
		logger.Infof("Server starting on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to run server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}
}

// openStore uses Postgres when DATABASE_URL is set and an in-memory list
// otherwise. Both start from the seed file, checked like an admin save.
func openStore(ctx context.Context, cfg config.Config) (repository.PrizeStore, error) {
	seed, err := config.LoadSeed(cfg.SeedFile)
	if err != nil {
		return nil, err
	}
	seed, err = services.PrepareSeed(seed)
	if err != nil {
		return nil, fmt.Errorf("seed file %s: %w", cfg.SeedFile, err)
	}

	if cfg.DatabaseURL == "" {
		logger.Infof("Using in-memory prize store with %d prizes", len(seed))
		return repository.NewMemoryStore(seed), nil
	}

	conn, err := repository.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := repository.Migrate(conn); err != nil {
		return nil, err
	}
	store := repository.NewGormStore(conn)
	if err := store.SeedIfEmpty(ctx, seed); err != nil {
		return nil, err
	}
	return store, nil
}
