// Package metrics exposes supervisor activity as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "revtunnel"
	subsystem = "supervisor"

	shutdownTimeout = 5 * time.Second
)

// Recorder updates supervisor metrics. It implements supervisor.Recorder.
type Recorder struct {
	attemptsTotal   *prometheus.CounterVec
	attemptDuration prometheus.Histogram
	currentAttempt  prometheus.Gauge
	delaysTotal     prometheus.Counter
	delaySeconds    prometheus.Counter
	exhaustedTotal  prometheus.Counter
}

// NewRecorder creates the supervisor collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		attemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "attempts_total",
				Help:      "Total number of ssh client invocations by outcome",
			},
			[]string{"outcome"},
		),
		attemptDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "attempt_duration_seconds",
				Help:      "How long each ssh client invocation ran",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 10), // 1s to ~3 days
			},
		),
		currentAttempt: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "current_attempt",
				Help:      "Number of the attempt currently running or last started",
			},
		),
		delaysTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "delays_total",
				Help:      "Total number of pauses between attempts",
			},
		),
		delaySeconds: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "delay_seconds_total",
				Help:      "Total time spent pausing between attempts",
			},
		),
		exhaustedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "exhausted_total",
				Help:      "Number of times the attempt bound was reached",
			},
		),
	}

	for _, c := range []prometheus.Collector{
		r.attemptsTotal,
		r.attemptDuration,
		r.currentAttempt,
		r.delaysTotal,
		r.delaySeconds,
		r.exhaustedTotal,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}
	return r, nil
}

// AttemptStarted records the start of attempt n.
func (r *Recorder) AttemptStarted(n int) {
	r.currentAttempt.Set(float64(n))
}

// AttemptFinished records the outcome and duration of an attempt.
func (r *Recorder) AttemptFinished(outcome string, d time.Duration) {
	r.attemptsTotal.WithLabelValues(outcome).Inc()
	r.attemptDuration.Observe(d.Seconds())
}

// Delayed records a pause between attempts.
func (r *Recorder) Delayed(d time.Duration) {
	r.delaysTotal.Inc()
	r.delaySeconds.Add(d.Seconds())
}

// Exhausted records that the attempt bound was reached.
func (r *Recorder) Exhausted() {
	r.exhaustedTotal.Inc()
}

// NewRegistry returns a registry with the process and Go runtime collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return reg
}

// Handler returns the /metrics handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Serve exposes gatherer on addr under /metrics until ctx is cancelled.
func Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer, log logr.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Serving metrics", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down metrics server: %w", err)
		}
		return nil
	}
}
