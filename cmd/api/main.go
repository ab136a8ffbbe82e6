package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rmacedo/custeio/internal/config"
	"github.com/rmacedo/custeio/internal/db"
	httpx "github.com/rmacedo/custeio/internal/http"
	"github.com/rmacedo/custeio/internal/observability"
	"github.com/rmacedo/custeio/internal/repo/postgres"
	syncx "github.com/rmacedo/custeio/internal/sync"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// tracing is optional; without an endpoint spans stay local no-ops
	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(rootCtx, "custeio-api", cfg.OTLPEndpoint)

		if err != nil {
			log.Error("tracer init failed", "err", err)
		} else {
			defer func() {
				ctx, cancel := config.WithTimeout(5 * time.Second)
				defer cancel()
				_ = shutdownTracer(ctx)
			}()
		}
	}

	// metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(registry)

	// database
	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db pool failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	if err := db.Migrate(rootCtx, cfg.DBURL); err != nil {
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	if err := db.EnsureAdminUser(rootCtx, pool, cfg); err != nil {
		log.Error("admin seed failed", "err", err)
		os.Exit(1)
	}

	// redis pub/sub + the live dataset feed
	rdb := syncx.NewRedisClient(syncx.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	defer func() {
		_ = rdb.Close()
	}()

	if err := rdb.Ping(rootCtx); err != nil {
		// streams still work instance-locally; cross-instance fan-out is off
		log.Error("redis unreachable at startup", "err", err)
	}

	datasetRepo := postgres.NewDatasetRepo(pool, prom)
	hub := syncx.NewHub(datasetRepo.Get, log)

	go hub.Run(rootCtx, rdb.SubscribeDataset(rootCtx))

	// set up routers with the log
	router := httpx.NewRouter(log, pool, rdb, hub, prom, registry, cfg)

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// long enough for a stream heartbeat cycle
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// start server using a concurrent go-routine driven anonymous function.

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	rootCancel() // stops the hub and closes the streams

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		err := srv.Shutdown(ctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)

			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
