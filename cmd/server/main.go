package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"kyc-intake/internal/engine"
	"kyc-intake/internal/kyc/handler"
	"kyc-intake/internal/kyc/service"
	"kyc-intake/internal/platform/config"
	"kyc-intake/internal/platform/httpserver"
	"kyc-intake/internal/platform/kafka"
	"kyc-intake/internal/platform/logger"
	"kyc-intake/internal/platform/metrics"
	"kyc-intake/pkg/platform/audit/publisher"
	"kyc-intake/pkg/platform/audit/store/memory"
)

const (
	auditBuffer     = 256
	shutdownTimeout = 10 * time.Second
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal/kyc.
func main() {
	if err := run(); err != nil {
		slog.Error("kyc-intake exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Log.Level)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	pubOpts := []publisher.Option{
		publisher.WithAsyncBuffer(auditBuffer),
		publisher.WithCloseTimeout(shutdownTimeout),
		publisher.WithLogger(log),
	}
	if cfg.Audit.KafkaEnabled() {
		producer, err := kafka.NewProducer(cfg.Audit.KafkaBrokers, cfg.Audit.Topic)
		if err != nil {
			return fmt.Errorf("create kafka producer: %w", err)
		}
		defer producer.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := producer.Ping(pingCtx); err != nil {
			log.Warn("kafka brokers not reachable",
				"brokers", cfg.Audit.KafkaBrokers,
				"error", err,
			)
		}
		cancel()
		pubOpts = append(pubOpts, publisher.WithSink(kafka.NewAuditSink(producer)))
	}
	auditPublisher := publisher.NewPublisher(memory.NewInMemoryStore(cfg.Audit.Recent), pubOpts...)
	defer auditPublisher.Close()

	engineClient := engine.New(cfg.Engine.BaseURL, cfg.Engine.Timeout)
	kycService := service.New(engineClient, cfg.Engine.WorkerID,
		service.WithLogger(log),
		service.WithAuditPublisher(auditPublisher),
		service.WithMetrics(m),
	)
	kycHandler := handler.New(kycService, auditPublisher, log, handler.Settings{
		Environment:   cfg.Environment,
		EngineBaseURL: cfg.Engine.BaseURL,
		RecentEvents:  cfg.Audit.Recent,
	})

	srv := httpserver.New(cfg.Server.Addr, newRouter(log, m, reg, kycHandler), cfg.Engine.Timeout)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting kyc-intake",
			"addr", cfg.Server.Addr,
			"environment", cfg.Environment,
			"engine", cfg.Engine.BaseURL,
			"kafka_audit", cfg.Audit.KafkaEnabled(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
