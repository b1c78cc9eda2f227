package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/NodePath81/httpbench/internal/probe"
	"github.com/NodePath81/httpbench/internal/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records attempt outcomes for one run. It implements probe.Observer.
type Metrics struct {
	registry *prometheus.Registry
	attempts *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewMetrics returns Metrics backed by a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "httpbench_attempts_total",
				Help: "Probe attempts by host and outcome",
			},
			[]string{"host", "outcome"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "httpbench_attempt_duration_seconds",
				Help:    "Elapsed time of attempts that yielded an HTTP response",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"host"},
		),
	}
	m.registry.MustRegister(m.attempts, m.latency)
	return m
}

// Observe records one attempt.
func (m *Metrics) Observe(host string, o probe.Outcome) {
	m.attempts.WithLabelValues(host, outcomeLabel(o)).Inc()
	if o.Kind == probe.KindResponse {
		m.latency.WithLabelValues(host).Observe(o.Elapsed.Seconds())
	}
}

func outcomeLabel(o probe.Outcome) string {
	if o.Kind != probe.KindResponse {
		return o.Kind.String()
	}
	if o.Failed() {
		return "failed"
	}
	return "success"
}

// Handler exposes the run registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string, logger util.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", "addr", addr, "error", err)
		}
	}()
}
