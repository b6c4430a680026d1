// main wires configuration, storage, Kafka, and the feature services, then
// runs the HTTP server and background workers until a shutdown signal.
// Business logic lives in the internal services packages.
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

	"golang.org/x/sync/errgroup"

	"datamover/internal/activity"
	activityhandler "datamover/internal/activity/handler"
	activitymetrics "datamover/internal/activity/metrics"
	"datamover/internal/activity/publisher"
	"datamover/internal/alerts"
	alertshandler "datamover/internal/alerts/handler"
	"datamover/internal/auth"
	authhandler "datamover/internal/auth/handler"
	"datamover/internal/connect"
	connectmetrics "datamover/internal/connect/metrics"
	httpapi "datamover/internal/http"
	"datamover/internal/monitoring"
	monitoringhandler "datamover/internal/monitoring/handler"
	monitoringmetrics "datamover/internal/monitoring/metrics"
	"datamover/internal/pipeline"
	pipelinehandler "datamover/internal/pipeline/handler"
	pipelinemetrics "datamover/internal/pipeline/metrics"
	"datamover/internal/platform/config"
	"datamover/internal/platform/httpserver"
	"datamover/internal/platform/logger"
	"datamover/internal/platform/postgres"
	redisplatform "datamover/internal/platform/redis"
	"datamover/internal/realtime"
	"datamover/internal/registry"
	registryhandler "datamover/internal/registry/handler"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	redisClient, err := redisplatform.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	connectClient := connect.NewHTTPClient(cfg.Connect, log, connectmetrics.New())
	hub := realtime.NewHub(log)

	activityStore := activity.NewPostgresStore(pool)
	activityMetrics := activitymetrics.New()
	recorder := activity.NewService(activityStore, hub, log, activityMetrics, cfg.Activity.QueueSize)
	cleaner := activity.NewCleaner(activityStore, cfg.Activity.Retention, cfg.Activity.CleanupInterval, log, activityMetrics)

	var kafkaPub *publisher.KafkaPublisher
	var lag monitoring.LagFetcher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPub, err = publisher.NewKafkaPublisher(ctx, cfg.Kafka.Brokers, cfg.Kafka.ActivityTopic)
		if err != nil {
			return err
		}
		defer kafkaPub.Close()
		lag = monitoring.NewGroupLagFetcher(kafkaPub.Client())
	} else {
		log.Warn("no kafka brokers configured, activity events stay in postgres")
	}

	pipelineStore := pipeline.NewPostgresStore(pool)
	pipelineSvc := pipeline.NewService(pipelineStore, connectClient, recorder, hub, log, pipelinemetrics.New())

	registrySvc := registry.NewService(registry.NewPostgresStore(pool),
		registryPipelines{store: pipelineStore}, connectClient, recorder, hub, log)

	var cache *monitoring.SnapshotCache
	if redisClient != nil {
		cache = monitoring.NewSnapshotCache(redisClient, cfg.Monitoring.SnapshotTTL)
	}
	monitoringStore := monitoring.NewPostgresStore(pool)
	monitoringMetrics := monitoringmetrics.New()
	monitoringSvc := monitoring.NewService(monitoringStore, cache, log, monitoringMetrics)
	collector := monitoring.NewCollector(pipelineStore, connectClient, monitoringStore,
		cache, lag, hub, log, monitoringMetrics, monitoring.CollectorConfig{
			Interval:    cfg.Monitoring.PollInterval,
			MaxParallel: cfg.Monitoring.MaxParallel,
			Retention:   cfg.Monitoring.Retention,
		})

	alertsSvc := alerts.NewService(alerts.NewPostgresStore(pool), recorder, log)

	jwtSvc := auth.NewJWTService(cfg.JWTSigningKey, "datamover")
	keySvc := auth.NewService(auth.NewPostgresKeyStore(pool), recorder, log)

	checks := []httpapi.HealthCheck{{Name: "postgres", Check: pool.Ping}}
	if redisClient != nil {
		checks = append(checks, httpapi.HealthCheck{Name: "redis", Check: redisClient.Health})
	}

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Logger:  log,
		Metrics: httpapi.NewMetrics(),
		Tokens:  auth.NewJWTAdapter(jwtSvc),
		Keys:    keySvc,
		Handlers: []httpapi.Registerer{
			pipelinehandler.New(pipelineSvc, log),
			activityhandler.New(recorder, log),
			registryhandler.New(registrySvc, log),
			monitoringhandler.New(monitoringSvc, log),
			alertshandler.New(alertsSvc, log),
			authhandler.New(keySvc, log),
			realtime.NewHandler(hub, log),
		},
		Checks: checks,
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return hub.Run(gctx) })
	g.Go(func() error { return recorder.Run(gctx) })
	g.Go(func() error { return cleaner.Run(gctx) })
	g.Go(func() error { return collector.Run(gctx) })
	if kafkaPub != nil {
		sampler := publisher.NewSampler(cfg.Activity.SampleRate)
		worker := publisher.NewWorker(activityStore, kafkaPub, sampler, log, activityMetrics,
			cfg.Activity.OutboxInterval, cfg.Activity.OutboxBatch)
		g.Go(func() error { return worker.Run(gctx) })
	}

	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("server stopped")
	return nil
}
