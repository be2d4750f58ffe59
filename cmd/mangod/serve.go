package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mango-sync-backend/internal/api"
	"mango-sync-backend/internal/db"
	"mango-sync-backend/internal/metrics"
	"mango-sync-backend/internal/notesync"
	"mango-sync-backend/internal/notification"
	"mango-sync-backend/internal/season"
	"mango-sync-backend/internal/store"
)

const shutdownTimeout = 5 * time.Second

func serveCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, *configPath)
		},
	}
}

func serve(ctx context.Context, configPath string) error {
	cfg, logger, gormDB, err := bootstrap(configPath)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer closeDB(gormDB, logger)

	if cfg.Sentry.DSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			SampleRate:  cfg.Sentry.SampleRate,
			Release:     "mangod@" + cfg.Server.AppVersion,
		})
		if err != nil {
			return fmt.Errorf("sentry initialization failed: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
		logger.Info("sentry error reporting enabled", zap.String("environment", cfg.Sentry.Environment))
	}

	if err := db.Migrate(gormDB, logger); err != nil {
		return err
	}
	appStore := store.NewGormStore(gormDB)
	if _, err := db.Seed(ctx, appStore, season.DefaultSeasons(), false, logger); err != nil {
		return fmt.Errorf("failed to seed seasons: %w", err)
	}

	m, err := metrics.New()
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	deps := api.Deps{
		Store:   appStore,
		Catalog: season.NewCatalog(appStore, cfg.Seasons.CacheTTL, logger),
		Reconciler: notesync.NewReconciler(appStore, notesync.Config{
			MaxBatchSize:    cfg.Sync.MaxBatchSize,
			MaxContentBytes: cfg.Sync.MaxContentBytes,
			MaxTitleLength:  cfg.Sync.MaxTitleLength,
		}, m.Sync, logger),
		Refreshes: m.Sync,
		Server:    cfg.Server,
		Logger:    logger,
	}

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Push.Enabled() {
		webpushOptions := &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize, appStore, webpushOptions, logger)
		pool.Start(ctx)
		g.Go(func() error {
			pool.Wait()
			return nil
		})
		deps.WebPush = webpushOptions
		deps.Notifier = pool
	} else {
		logger.Warn("VAPID keys not configured; season push notifications are disabled")
	}

	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewRouter(api.NewHandler(deps), m, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		logger.Info("HTTP server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutdown signal received, stopping services")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server gracefully stopped")
	return nil
}

