package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/georgemunganga/olambola-backend/internal/modules/admin"
	"github.com/georgemunganga/olambola-backend/internal/modules/auth"
	"github.com/georgemunganga/olambola-backend/internal/modules/cart"
	"github.com/georgemunganga/olambola-backend/internal/modules/catalog"
	"github.com/georgemunganga/olambola-backend/internal/platform/config"
	"github.com/georgemunganga/olambola-backend/internal/platform/kv"
	"github.com/georgemunganga/olambola-backend/internal/platform/logger"
	"github.com/georgemunganga/olambola-backend/internal/platform/metrics"
	"github.com/georgemunganga/olambola-backend/internal/platform/remote"
)

// olambola serve: start the HTTP server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger.Setup(cfg.AppEnv, os.Stdout)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func serve(ctx context.Context, cfg *config.Config) error {
	if cfg.Production() && cfg.JWTSecret == "change-me-in-production" {
		logger.Warn("JWT_SECRET is the built-in default; set it before exposing the service")
	}

	store, err := kv.Open(ctx, kv.Options{
		Driver:        cfg.KVDriver,
		Path:          cfg.KVPath,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		TTL:           cfg.CartTTL,
	})
	if err != nil {
		return err
	}
	if c, ok := store.(io.Closer); ok {
		defer c.Close()
	}

	db, err := openRemote(ctx, cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	// ── Remote store ────────────────────────────────────────
	bucket, disk, err := openBucket(ctx, cfg)
	if err != nil {
		return err
	}
	catalogStore := catalog.NewStore(catalog.NewPostgresRepository(db), bucket)
	if err := catalogStore.Refresh(ctx); err != nil {
		logger.Error("initial catalog load failed", "error", err)
	}
	adminRepo := admin.NewPostgresRepository(db)
	adminStore := admin.NewStore(adminRepo)
	adminStore.OnDelete(func(ctx context.Context, id uuid.UUID) error {
		return auth.Revoke(ctx, store, id)
	})
	if err := adminStore.Refresh(ctx); err != nil {
		logger.Error("initial admin directory load failed", "error", err)
	}

	hub := catalog.NewHub()
	go hub.Run(ctx)
	if db != nil {
		go func() {
			err := catalogStore.Watch(ctx, remote.NewPQFeed(cfg.DatabaseURL), hub.Broadcast)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("catalog change feed stopped", "error", err)
			}
		}()
	}

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(metrics.Middleware)

	authService := auth.NewService(store, adminRepo, auth.Options{
		Secret:         []byte(cfg.JWTSecret),
		TTL:            cfg.SessionTTL,
		SharedPassword: cfg.AdminPassword,
	})
	guard := auth.NewMiddleware(authService)
	auth.NewHandler(authService, guard).RegisterRoutes(router)

	catalog.NewHandler(catalogStore, hub, guard.RequireAuthenticated).RegisterRoutes(router)
	cart.NewHandler(store, catalogStore, cfg.WhatsAppContact, cfg.CartTTL).RegisterRoutes(router)
	admin.NewHandler(adminStore, guard.RequireMainAdmin).RegisterRoutes(router)

	router.Handle("/metrics", metrics.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	if disk != nil {
		router.Handle("/storage/*", http.StripPrefix("/storage/", http.FileServer(http.Dir(disk.Root()))))
	}

	// ── Start Server ─────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info("olambola API server starting", "addr", srv.Addr, "env", cfg.AppEnv, "remote", db != nil)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openBucket picks S3 when a bucket is configured and the local disk otherwise.
// disk is non-nil only in the latter case, so the caller can serve it.
func openBucket(ctx context.Context, cfg *config.Config) (remote.Bucket, *remote.DiskBucket, error) {
	if cfg.S3Bucket != "" {
		b, err := remote.NewS3Bucket(ctx, remote.S3Options{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Key:      cfg.S3Key,
			Secret:   cfg.S3Secret,
			Endpoint: cfg.S3Endpoint,
			BaseURL:  cfg.S3URL,
		})
		if err != nil {
			return nil, nil, err
		}
		return b, nil, nil
	}
	d, err := remote.NewDiskBucket(cfg.StorageRoot, cfg.StorageURL)
	if err != nil {
		return nil, nil, err
	}
	return d, d, nil
}
