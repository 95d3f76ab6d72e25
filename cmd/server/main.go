package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"riskprofile/internal/platform/config"
	"riskprofile/internal/platform/httpserver"
	"riskprofile/internal/platform/logger"
	platformmetrics "riskprofile/internal/platform/metrics"
	"riskprofile/internal/platform/otel"
	"riskprofile/internal/platform/redis"
	ratelimitmetrics "riskprofile/internal/ratelimit/metrics"
	ratelimitmw "riskprofile/internal/ratelimit/middleware"
	"riskprofile/internal/ratelimit/store/bucket"
	"riskprofile/internal/risk"
	riskhandler "riskprofile/internal/risk/handler"
	riskmetrics "riskprofile/internal/risk/metrics"
	httptransport "riskprofile/internal/transport/http"
	"riskprofile/pkg/platform/audit"
	"riskprofile/pkg/platform/audit/publisher"
	"riskprofile/pkg/platform/audit/store/kafka"
	"riskprofile/pkg/platform/audit/store/logstore"
	"riskprofile/pkg/platform/circuit"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "riskprofile: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Warn("tracing shutdown failed", "error", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	checks := map[string]httptransport.HealthChecker{}

	auditStore, closeAuditStore, err := buildAuditStore(cfg.Audit, log, checks)
	if err != nil {
		return err
	}
	defer closeAuditStore()

	auditPublisher := publisher.NewPublisher(auditStore,
		publisher.WithAsyncBuffer(cfg.Audit.Buffer),
		publisher.WithLogger(log),
		publisher.WithMetrics(publisher.NewMetrics(reg)),
		publisher.WithSampler(publisher.NewSampler(cfg.Audit.OpsSampleRate)),
	)
	// drains queued audit events before the sink closes
	defer auditPublisher.Close()

	service := risk.NewService(
		risk.WithLogger(log),
		risk.WithMetrics(riskmetrics.NewWithRegisterer(reg)),
		risk.WithAuditor(auditPublisher),
	)

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	var primary ratelimitmw.BucketStore
	if redisClient != nil {
		defer redisClient.Close()
		primary = bucket.NewRedisBucketStore(redisClient.Client)
		checks["redis"] = redisClient
		log.Info("rate limiting backed by redis")
	}

	limiter := ratelimitmw.New(primary, cfg.RateLimit.Requests, cfg.RateLimit.Window, log,
		ratelimitmw.WithFallback(bucket.NewInMemoryBucketStore()),
		ratelimitmw.WithBreaker(circuit.New("ratelimit-redis", circuit.WithCooldown(cfg.RateLimit.BreakerCooldown))),
		ratelimitmw.WithMetrics(ratelimitmetrics.New(reg)),
		ratelimitmw.WithAuditor(auditPublisher),
		ratelimitmw.WithDisabled(cfg.RateLimit.Disabled),
	)

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Logger:       log,
		Risk:         riskhandler.New(service, log),
		RateLimit:    limiter,
		Metrics:      platformmetrics.New(reg),
		Gatherer:     reg,
		HealthChecks: checks,
	})
	srv := httpserver.New(cfg.Server.Addr, router, cfg.Server.ReadHeaderTimeout)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting riskprofile", "addr", cfg.Server.Addr)
		return httpserver.Run(gctx, srv, cfg.Server.ShutdownTimeout)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server: %w", err)
	}
	log.Info("riskprofile stopped")
	return nil
}

// buildAuditStore picks Kafka when brokers are configured and the structured
// log otherwise.
func buildAuditStore(cfg config.Audit, log *slog.Logger, checks map[string]httptransport.HealthChecker) (audit.Store, func(), error) {
	if len(cfg.KafkaBrokers) == 0 {
		log.Info("audit events written to log")
		return logstore.New(log), func() {}, nil
	}

	store, err := kafka.New(cfg.KafkaBrokers, cfg.Topic)
	if err != nil {
		return nil, nil, fmt.Errorf("audit kafka store: %w", err)
	}
	checks["kafka"] = store
	log.Info("audit events published to kafka", "topic", cfg.Topic, "brokers", cfg.KafkaBrokers)
	return store, store.Close, nil
}
