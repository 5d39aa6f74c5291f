package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/fhuszti/medias-display-go/internal/cache"
	"github.com/fhuszti/medias-display-go/internal/config"
	"github.com/fhuszti/medias-display-go/internal/db"
	"github.com/fhuszti/medias-display-go/internal/display"
	"github.com/fhuszti/medias-display-go/internal/handler/api"
	"github.com/fhuszti/medias-display-go/internal/logger"
	"github.com/fhuszti/medias-display-go/internal/metrics"
	cMiddleware "github.com/fhuszti/medias-display-go/internal/middleware"
	"github.com/fhuszti/medias-display-go/internal/port"
	"github.com/fhuszti/medias-display-go/internal/registry"
	"github.com/fhuszti/medias-display-go/internal/renderer"
	"github.com/fhuszti/medias-display-go/internal/repository/mariadb"
	"github.com/fhuszti/medias-display-go/internal/storage"
	"github.com/fhuszti/medias-display-go/internal/task"
	mediaSvc "github.com/fhuszti/medias-display-go/internal/usecase/media"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf(ctx, "❌  Configuration error: %v", err)
		os.Exit(1)
	}

	logger.Init()

	database := initDb(ctx, cfg)
	strg := initStorage(ctx, cfg)
	mtr := metrics.New()

	mediaRepo := mariadb.NewMediaRepository(database.DB)
	var ca port.Cache
	var dispatcher port.TaskDispatcher
	if cfg.RedisAddr != "" {
		redisCache := cache.NewCache(cfg.RedisAddr, cfg.RedisPassword)
		if err := redisCache.Ping(ctx); err != nil {
			logger.Warnf(ctx, "⚠️  Redis ping failed, cache reads will fall back to the db: %v", err)
		}
		ca = redisCache
		dispatcher = task.NewDispatcher(cfg.RedisAddr, cfg.RedisPassword)
		logger.Info(ctx, "✅  Redis cache enabled")
	} else {
		ca = cache.NewNoop()
		dispatcher = task.NewNoopDispatcher()
		logger.Warn(ctx, "⚠️  Redis not configured, caching and thumbnail generation are disabled")
	}

	reg := registry.New(cfg.PublicOrigin, registry.WithRecorder(mtr))
	getter := mediaSvc.NewMediaGetter(mediaRepo, ca)
	fetcher := mediaSvc.NewBlobFetcher(strg, dispatcher, mtr, mediaSvc.FetchConfig{
		Timeout:    cfg.FetchTimeout,
		MaxRetries: cfg.FetchMaxRetries,
	})
	manager := display.NewManager(reg, getter, fetcher)
	if err := mtr.RegisterGauge("displays_mounted", "Number of mounted displays.", func() float64 {
		return float64(manager.Len())
	}); err != nil {
		logger.Warnf(ctx, "⚠️  Could not register displays gauge: %v", err)
	}

	r := initRouter(ctx, mtr)
	rendererSvc := renderer.NewHTTPRenderer()

	// object URLs are dereferenced by browsers, which send no bearer token
	r.Get("/objects/{token}", api.GetObjectHandler(reg))
	r.Head("/objects/{token}", api.GetObjectHandler(reg))

	r.Group(func(r chi.Router) {
		r.Use(cMiddleware.WithDSTAuth(cMiddleware.AuthConfig{PublicKeyPEM: cfg.JWTPublicKey}))

		r.Post("/displays", api.MountDisplayHandler(manager, rendererSvc))
		r.Route("/displays/{displayID}", func(r chi.Router) {
			r.Use(cMiddleware.WithDisplayID())
			r.Get("/", api.GetDisplayHandler(manager, rendererSvc, api.DefaultMaxWait))
			r.Put("/", api.UpdateDisplayHandler(manager, rendererSvc))
			r.Delete("/", api.UnmountDisplayHandler(manager))
		})
		r.With(cMiddleware.WithMediaID()).
			Get("/medias/{id}/registry", api.GetRegistryEntryHandler(reg))
	})

	listenRouter(ctx, r, cfg, database, func(ctx context.Context) {
		manager.Shutdown(ctx)
		reg.Close()
		if c, ok := dispatcher.(*task.Dispatcher); ok {
			if err := c.Close(); err != nil {
				logger.Warnf(ctx, "task client close error: %v", err)
			}
		}
		if c, ok := ca.(*cache.Cache); ok {
			if err := c.Close(); err != nil {
				logger.Warnf(ctx, "cache close error: %v", err)
			}
		}
	})
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

func initRouter(ctx context.Context, mtr *metrics.Metrics) *chi.Mux {
	logger.Info(ctx, "initialising router...")

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(mtr.Middleware)

	r.NotFound(api.NotFoundHandler())
	r.MethodNotAllowed(api.MethodNotAllowedHandler())

	r.Handle("/metrics", mtr.Handler())

	return r
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

func listenRouter(ctx context.Context, r *chi.Mux, cfg *config.Settings, database *db.Database, teardown func(context.Context)) {
	srv := &http.Server{Addr: ":" + strconv.Itoa(cfg.ServerPort), Handler: r}

	// start serving
	go func() {
		logger.Infof(ctx, "🚀 API listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf(ctx, "❌  Listen error: %v", err)
			os.Exit(1)
		}
	}()

	// block until we get SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "🛑 Shutdown signal received, exiting…")

	// graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf(ctx, "❌  Server shutdown failed: %v", err)
		os.Exit(1)
	}
	logger.Info(ctx, "✅  Server gracefully stopped")

	teardown(shutdownCtx)
	logger.Info(ctx, "✅  Displays unmounted and object URLs revoked")

	if err := database.Close(); err != nil {
		logger.Errorf(ctx, "DB close error: %v", err)
		os.Exit(1)
	}
}
