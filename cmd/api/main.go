package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/reelist-app/reelist-backend/api/controllers"
	"github.com/reelist-app/reelist-backend/api/routes"
	"github.com/reelist-app/reelist-backend/internal/collections"
	"github.com/reelist-app/reelist-backend/internal/media"
	"github.com/reelist-app/reelist-backend/internal/memberships"
	"github.com/reelist-app/reelist-backend/internal/users"
	"github.com/reelist-app/reelist-backend/pkg/config"
	"github.com/reelist-app/reelist-backend/pkg/db"
	"github.com/reelist-app/reelist-backend/pkg/logger"
	"github.com/reelist-app/reelist-backend/pkg/metrics"
	"github.com/reelist-app/reelist-backend/pkg/migrate"
	"github.com/reelist-app/reelist-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())
	collectionsRepo := collections.NewRepository(dbClient.DB())
	mediaRepo := media.NewRepository(dbClient.DB())
	membershipsRepo := memberships.NewRepository(dbClient.DB())

	collectionsSvc, err := collections.NewService(collectionsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create collections service", err)
		os.Exit(1)
	}
	mediaSvc, err := media.NewService(mediaRepo, collectionsRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create media service", err)
		os.Exit(1)
	}
	membershipsSvc, err := memberships.NewService(membershipsRepo, collectionsRepo, usersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create memberships service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)

	router := routes.NewRouter(routes.Deps{
		Config:      cfg,
		Logger:      logg,
		Users:       usersRepo,
		RateLimiter: redisClient,
		Metrics:     httpMetrics,
		Registry:    registry,
		ReadyDeps: map[string]controllers.Pinger{
			"database": dbClient,
			"redis":    redisClient,
		},
		Collections: collectionsSvc,
		Media:       mediaSvc,
		Memberships: membershipsSvc,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	stop, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stop.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer shutdownCancel()

	var closeErr error
	closeErr = multierr.Append(closeErr, server.Shutdown(shutdownCtx))
	closeErr = multierr.Append(closeErr, redisClient.Close())
	closeErr = multierr.Append(closeErr, dbClient.Close())
	if closeErr != nil {
		logg.Error(ctx, "shutdown finished with errors", closeErr)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}
