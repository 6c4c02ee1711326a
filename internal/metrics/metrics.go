// Package metrics exposes Prometheus collectors for played rounds.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the game collectors on a dedicated registry.
type Metrics struct {
	Registry *prometheus.Registry

	Rounds   *prometheus.CounterVec
	Notices  *prometheus.CounterVec
	Classify prometheus.Histogram
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Rounds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rpscam_rounds_total",
				Help: "Resolved rounds by outcome",
			},
			[]string{"outcome"},
		),
		Notices: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rpscam_notices_total",
				Help: "Failure notices shown to the player by kind",
			},
			[]string{"kind"},
		),
		Classify: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rpscam_classify_seconds",
			Help:    "Latency of frame classification",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
	m.Registry.MustRegister(m.Rounds, m.Notices, m.Classify)
	m.Registry.MustRegister(collectors.NewGoCollector())
	return m
}

// RoundResolved counts a round with the given outcome label.
func (m *Metrics) RoundResolved(outcome string) {
	if m == nil {
		return
	}
	m.Rounds.WithLabelValues(outcome).Inc()
}

// Notice counts a notice of the given kind.
func (m *Metrics) Notice(kind string) {
	if m == nil {
		return
	}
	m.Notices.WithLabelValues(kind).Inc()
}

// ObserveClassify records the latency of one classification.
func (m *Metrics) ObserveClassify(d time.Duration) {
	if m == nil {
		return
	}
	m.Classify.Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
