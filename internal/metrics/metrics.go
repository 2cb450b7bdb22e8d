// Package metrics exposes Prometheus instrumentation for the fetch pipeline.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fetch holds the collectors tracking fetch attempts and outcomes.
// A nil *Fetch is a valid no-op receiver so instrumentation stays optional.
type Fetch struct {
	registry *prometheus.Registry
	attempts prometheus.Counter
	records  *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewFetch creates the fetch collectors on a private registry, keeping the
// process free of global collector state.
func NewFetch() *Fetch {
	registry := prometheus.NewRegistry()
	f := &Fetch{
		registry: registry,
		attempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "resultgrab_fetch_attempts_total",
			Help: "Individual fetch attempts, including retries.",
		}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "resultgrab_records_total",
			Help: "Completed records by terminal status.",
		}, []string{"status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "resultgrab_fetch_duration_seconds",
			Help:    "Wall time of one full fetch cycle, retries included.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
	}
	registry.MustRegister(f.attempts, f.records, f.duration)
	return f
}

// ObserveAttempt counts one retrieval attempt.
func (f *Fetch) ObserveAttempt() {
	if f == nil {
		return
	}
	f.attempts.Inc()
}

// ObserveRecord counts a completed record under its terminal status and
// records the cycle duration.
func (f *Fetch) ObserveRecord(status string, elapsed time.Duration) {
	if f == nil {
		return
	}
	f.records.WithLabelValues(status).Inc()
	f.duration.Observe(elapsed.Seconds())
}

// Handler returns an HTTP handler serving the collectors in Prometheus
// exposition format.
func (f *Fetch) Handler() http.Handler {
	return promhttp.HandlerFor(f.registry, promhttp.HandlerOpts{})
}

// Serve runs a metrics endpoint on addr until ctx is canceled. It returns
// the server error, or nil after a clean shutdown.
func (f *Fetch) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", f.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
