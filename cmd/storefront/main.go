package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pcforge/storefront/api/middleware"
	"github.com/pcforge/storefront/api/routes"
	"github.com/pcforge/storefront/internal/storefront"
	"github.com/pcforge/storefront/pkg/auth/session"
	"github.com/pcforge/storefront/pkg/config"
	"github.com/pcforge/storefront/pkg/instance"
	"github.com/pcforge/storefront/pkg/logger"
	"github.com/pcforge/storefront/pkg/metrics"
	"github.com/pcforge/storefront/pkg/redis"
	"github.com/pcforge/storefront/pkg/shopapi"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.Format(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	persistence, err := session.NewRedisStore(redisClient)
	if err != nil {
		logg.Error(ctx, "failed to create session store", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	client, err := shopapi.NewClient(cfg.Upstream.BaseURL,
		shopapi.WithHTTPClient(&http.Client{Timeout: cfg.Upstream.Timeout}),
		shopapi.WithMetrics(metrics.NewUpstreamMetrics(reg)),
		shopapi.WithLogger(logg),
	)
	if err != nil {
		logg.Error(ctx, "failed to create shop api client", err)
		os.Exit(1)
	}

	registry, err := storefront.NewRegistry(storefront.RegistryParams{
		Client:      client,
		Persistence: persistence,
		AssetHost:   cfg.Upstream.AssetHost,
		Logger:      logg,
		Metrics:     metrics.NewSessionMetrics(reg),
		IdleTimeout: cfg.Session.IdleTimeout,
		MaxTTL:      cfg.Session.MaxAge,
	})
	if err != nil {
		logg.Error(ctx, "failed to create session registry", err)
		os.Exit(1)
	}
	go registry.Run(ctx, cfg.Session.PruneInterval)

	cookies := middleware.NewCookieStore(cfg.Session.Secret, int(cfg.Session.MaxAge.Seconds()), cfg.Session.Secure || cfg.App.IsProd())

	addr := ":" + cfg.App.Port
	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, redisClient, registry, cookies, promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"upstream": cfg.Upstream.BaseURL,
		"instance": instance.GetID(),
	})
	logg.Info(runCtx, "starting storefront server")

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(runCtx, "storefront server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(runCtx, "shutting down storefront server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(runCtx, "graceful shutdown failed", err)
		}
	}
}
