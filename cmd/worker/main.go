package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fhuszti/medias-display-go/internal/cache"
	"github.com/fhuszti/medias-display-go/internal/config"
	"github.com/fhuszti/medias-display-go/internal/db"
	workerHandler "github.com/fhuszti/medias-display-go/internal/handler/worker"
	"github.com/fhuszti/medias-display-go/internal/logger"
	"github.com/fhuszti/medias-display-go/internal/port"
	"github.com/fhuszti/medias-display-go/internal/repository/mariadb"
	"github.com/fhuszti/medias-display-go/internal/resizer"
	"github.com/fhuszti/medias-display-go/internal/storage"
	"github.com/fhuszti/medias-display-go/internal/task"
	mediaSvc "github.com/fhuszti/medias-display-go/internal/usecase/media"
	"github.com/hibiken/asynq"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf(ctx, "❌  Configuration error: %v", err)
		os.Exit(1)
	}
	if cfg.RedisAddr == "" {
		logger.Error(ctx, "⚠️  REDIS_ADDR must be set to run the worker")
		os.Exit(1)
	}

	logger.Init()

	database := initDb(ctx, cfg)
	strg := initStorage(ctx, cfg)

	repo := mariadb.NewMediaRepository(database.DB)
	ca := cache.NewCache(cfg.RedisAddr, cfg.RedisPassword)
	fr := resizer.NewResizer(resizer.ChaiWebP{})
	resizeSvc := mediaSvc.NewImageResizer(repo, fr, strg, ca)

	mux := asynq.NewServeMux()
	mux.HandleFunc(task.TypeResizeImage, func(ctx context.Context, t *asynq.Task) error {
		p, err := task.ParseResizeImagePayload(t)
		if err != nil {
			logger.Errorf(ctx, "❌  Payload validation failed: %v", err)
			return err
		}
		return workerHandler.ResizeImageHandler(ctx, p, cfg.ImagesSizes, resizeSvc)
	})

	runWorker(ctx, mux, cfg)

	if err := ca.Close(); err != nil {
		logger.Warnf(ctx, "cache close error: %v", err)
	}
	if err := database.Close(); err != nil {
		logger.Warnf(ctx, "DB close error: %v", err)
	}
	logger.Info(ctx, "✅  Worker gracefully stopped")
}

func initDb(ctx context.Context, cfg *config.Settings) *db.Database {
	logger.Info(ctx, "initialising database...")

	database, err := db.New(ctx, db.MariaDbConfig{
		DSN:             cfg.MariaDBDSN,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to connect to db: %v", err)
		os.Exit(1)
	}
	return database
}

func initStorage(ctx context.Context, cfg *config.Settings) port.Storage {
	strg, err := storage.NewMinioStorage(
		cfg.MinioEndpoint,
		cfg.MinioAccessKey,
		cfg.MinioSecretKey,
		cfg.MinioUseSSL,
		storage.WithMaxObjectBytes(cfg.MaxObjectBytes),
	)
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to initialize MinIO client: %v", err)
		os.Exit(1)
	}

	return strg
}

func runWorker(ctx context.Context, mux *asynq.ServeMux, cfg *config.Settings) {
	srv := asynq.NewServer(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}, asynq.Config{Concurrency: 10, ShutdownTimeout: 30 * time.Second})

	// Run server in background
	go func() {
		if err := srv.Run(mux); err != nil {
			logger.Errorf(context.Background(), "❌  Worker failed: %v", err)
			os.Exit(1)
		}
	}()
	logger.Info(ctx, "🚀 Worker started")

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	logger.Info(ctx, "🛑 Shutdown signal received, exiting…")

	// stop accepting new tasks, finish in-flight
	srv.Shutdown()
}
