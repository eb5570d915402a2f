package main

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kyc-intake/internal/kyc/handler"
	"kyc-intake/internal/platform/metrics"
	"kyc-intake/internal/platform/middleware"
	"kyc-intake/pkg/platform/middleware/metadata"
	"kyc-intake/pkg/platform/middleware/requesttime"
)

func newRouter(log *slog.Logger, m *metrics.Metrics, gatherer prometheus.Gatherer, kyc *handler.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Latency(m))

	kyc.Register(r)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return r
}
