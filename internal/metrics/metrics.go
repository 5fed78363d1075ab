// Package metrics exposes Prometheus collectors for the sync loop and the
// admin API client.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/j-veylop/gateway-console/internal/logger"
)

// Metrics groups the console's collectors.
type Metrics struct {
	// Requests to the admin API by operation and outcome.
	RequestDuration *prometheus.HistogramVec
	RequestFailures *prometheus.CounterVec

	// Sync cycles by outcome: ok, partial, failed, discarded.
	SyncCycles   *prometheus.CounterVec
	SyncSkipped  prometheus.Counter
	SyncQueued   prometheus.Counter
	SyncDuration prometheus.Histogram
	SyncInFlight prometheus.Gauge

	// Mutations by operation and result.
	Mutations *prometheus.CounterVec

	registry *prometheus.Registry
}

// New registers the collectors on reg. A nil reg gets a private registry so
// callers that do not export metrics can still record them.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)

	return &Metrics{
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gwc_admin_request_duration_seconds",
			Help:    "Latency of admin API requests.",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"op", "status"}),

		RequestFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gwc_admin_request_failures_total",
			Help: "Failed admin API requests by kind (network, http, decode).",
		}, []string{"op", "kind"}),

		SyncCycles: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gwc_sync_cycles_total",
			Help: "Completed sync cycles by outcome.",
		}, []string{"outcome"}),

		SyncSkipped: f.NewCounter(prometheus.CounterOpts{
			Name: "gwc_sync_skipped_total",
			Help: "Sync requests dropped because a cycle was in flight.",
		}),

		SyncQueued: f.NewCounter(prometheus.CounterOpts{
			Name: "gwc_sync_queued_total",
			Help: "Re-sync requests queued behind an in-flight cycle.",
		}),

		SyncDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "gwc_sync_cycle_duration_seconds",
			Help:    "Wall time of a sync cycle.",
			Buckets: prometheus.DefBuckets,
		}),

		SyncInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "gwc_sync_in_flight",
			Help: "1 while a sync cycle is running.",
		}),

		Mutations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gwc_mutations_total",
			Help: "Project mutations by operation and result.",
		}, []string{"op", "result"}),

		registry: reg,
	}
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one admin API request.
func (m *Metrics) ObserveRequest(op, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(op, status).Observe(elapsed.Seconds())
}

// Server serves /metrics for the registry.
type Server struct {
	srv *http.Server
}

// Serve starts a listener on addr in the background.
func (m *Metrics) Serve(addr string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))

	s := &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}}

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics listener stopped", "addr", addr, "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", addr)

	return s
}

// Close shuts the listener down.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
