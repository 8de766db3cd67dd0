// Package metrics exposes Prometheus collectors for analysis runs on a
// private registry.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const defaultMetricsPath = "/metrics"

// Recorder owns the registry and the run collectors. A nil *Recorder is
// valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	SessionsAnalyzed *prometheus.CounterVec
	StageDuration    *prometheus.HistogramVec
	CompositeScore   *prometheus.HistogramVec
	InputQuality     prometheus.Histogram
	ReportsPublished *prometheus.CounterVec
}

// New creates the collectors and registers them.
func New() *Recorder {
	scoreBuckets := prometheus.LinearBuckets(0.1, 0.1, 10)
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		SessionsAnalyzed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edmo_sessions_analyzed_total",
				Help: "Total number of sessions analyzed, by outcome",
			},
			[]string{"status"},
		),
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "edmo_stage_duration_seconds",
				Help:    "Time spent in each pipeline stage",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		CompositeScore: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "edmo_composite_score",
				Help:    "Distribution of overall and interaction scores",
				Buckets: scoreBuckets,
			},
			[]string{"kind"},
		),
		InputQuality: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "edmo_input_quality",
				Help:    "Distribution of input data-quality scores",
				Buckets: scoreBuckets,
			},
		),
		ReportsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edmo_reports_published_total",
				Help: "Reports published to the message queue, by outcome",
			},
			[]string{"status"},
		),
	}
	r.registry.MustRegister(
		r.SessionsAnalyzed,
		r.StageDuration,
		r.CompositeScore,
		r.InputQuality,
		r.ReportsPublished,
	)
	return r
}

// Registry returns the private registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// RecordSession counts a finished session; status is "ok" or "error".
func (r *Recorder) RecordSession(status string) {
	if r == nil {
		return
	}
	r.SessionsAnalyzed.WithLabelValues(status).Inc()
}

// ObserveStage starts a timer; call the returned func when the stage ends.
func (r *Recorder) ObserveStage(stage string) func() {
	if r == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		r.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	}
}

// ObserveScores records the composite scores and input quality of a report.
func (r *Recorder) ObserveScores(overall, interaction, quality float64) {
	if r == nil {
		return
	}
	r.CompositeScore.WithLabelValues("overall").Observe(overall)
	r.CompositeScore.WithLabelValues("interaction").Observe(interaction)
	r.InputQuality.Observe(quality)
}

// RecordPublish counts a queue publish attempt.
func (r *Recorder) RecordPublish(status string) {
	if r == nil {
		return
	}
	r.ReportsPublished.WithLabelValues(status).Inc()
}

// RegisterHandler mounts the metrics endpoint on mux.
func (r *Recorder) RegisterHandler(mux *http.ServeMux) {
	mux.Handle(defaultMetricsPath, promhttp.HandlerFor(
		r.registry,
		promhttp.HandlerOpts{
			EnableOpenMetrics: true,
			Registry:          r.registry,
		},
	))
}

// Serve exposes the metrics endpoint on addr until ctx is done.
func (r *Recorder) Serve(ctx context.Context, addr string, logger *logrus.Logger) error {
	mux := http.NewServeMux()
	r.RegisterHandler(mux)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.WithFields(logrus.Fields{"addr": addr, "metrics_path": defaultMetricsPath}).Info("Metrics endpoint listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
