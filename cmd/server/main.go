package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/splitcheck/internal/api"
	"github.com/mmynk/splitcheck/internal/config"
	"github.com/mmynk/splitcheck/internal/images"
	"github.com/mmynk/splitcheck/internal/metrics"
	"github.com/mmynk/splitcheck/internal/middleware"
	"github.com/mmynk/splitcheck/internal/service"
	"github.com/mmynk/splitcheck/internal/storage"
	"github.com/mmynk/splitcheck/internal/storage/postgres"
	"github.com/mmynk/splitcheck/internal/storage/sqlite"
	"github.com/mmynk/splitcheck/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logging isn't configured yet; fall back to the env-driven setup.
		logging.Setup()
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	logging.SetupWithLevel(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "driver", cfg.DBDriver)

	imageStore, uploadDir, err := openImageStore(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize image store", "store", cfg.ImageStore, "error", err)
		os.Exit(1)
	}
	slog.Info("Image store initialized", "store", cfg.ImageStore, "max_bytes", cfg.MaxImageBytes)

	m := metrics.New()
	locks := service.NewSessionLocks()
	uploader := images.NewUploader(imageStore, cfg.MaxImageBytes)
	sessionSvc := service.NewSessionService(store, uploader, m, locks)
	friendSvc := service.NewFriendService(store, m, locks)

	handler := api.NewHandler(sessionSvc, friendSvc, store, api.Options{
		PublicBaseURL: cfg.PublicBaseURL,
		MaxImageBytes: uploader.MaxBytes(),
	})
	router := api.NewRouter(handler, api.RouterOptions{
		Metrics:    m,
		UploadDir:  uploadDir,
		Middleware: []mux.MiddlewareFunc{middleware.Metrics(m), middleware.Logging},
	})

	// CORS sits outside the router so preflight requests never hit a 405
	corsHandler := middleware.CORS(cfg.AllowedOrigins)(router)

	// Wrap with h2c for HTTP/2 without TLS
	h2cHandler := h2c.NewHandler(corsHandler, &http2.Server{})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h2cHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "address", cfg.Addr, "public_url", cfg.PublicBaseURL)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("Shutting down", "timeout", cfg.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Graceful shutdown failed", "error", err)
		}
	}
	slog.Info("Server stopped")
}

func openStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	switch cfg.DBDriver {
	case "postgres":
		return postgres.New(ctx, cfg.DatabaseURL)
	default:
		return sqlite.New(cfg.DBPath)
	}
}

// openImageStore returns the configured store and, for the local store, the
// directory to serve under /uploads/.
func openImageStore(ctx context.Context, cfg config.Config) (images.Store, string, error) {
	switch cfg.ImageStore {
	case "s3":
		s3Store, err := images.NewS3Store(ctx, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			return nil, "", err
		}
		return s3Store, "", nil
	default:
		local, err := images.NewLocalStore(cfg.UploadDir, cfg.UploadBaseURL)
		if err != nil {
			return nil, "", err
		}
		return local, local.Dir(), nil
	}
}
