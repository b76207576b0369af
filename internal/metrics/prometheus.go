package metrics

import (
	"net/http"
	"time"

	"github.com/Alias1177/CoinSignal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder collects pipeline metrics in its own registry.
type Recorder struct {
	registry            *prometheus.Registry
	runs                *prometheus.CounterVec
	assets              *prometheus.CounterVec
	assetFailures       prometheus.Counter
	sourceFailures      *prometheus.CounterVec
	classifierFallbacks *prometheus.CounterVec
	assetDuration       prometheus.Histogram
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinsignal_runs_total",
				Help: "Total number of pipeline runs by outcome",
			},
			[]string{"outcome"},
		),
		assets: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinsignal_assets_total",
				Help: "Total number of decision records by signal",
			},
			[]string{"signal"},
		),
		assetFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "coinsignal_asset_failures_total",
				Help: "Total number of assets that produced a degraded record",
			},
		),
		sourceFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinsignal_source_failures_total",
				Help: "Total number of market data sub-fetches that returned no data",
			},
			[]string{"source"},
		),
		classifierFallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinsignal_classifier_fallbacks_total",
				Help: "Total number of classifications replaced by neutral",
			},
			[]string{"reason"},
		),
		assetDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "coinsignal_asset_duration_seconds",
				Help:    "Duration of a single asset pipeline in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// RunFinished records the outcome of a run.
func (r *Recorder) RunFinished(outcome string) {
	r.runs.WithLabelValues(outcome).Inc()
}

// AssetProcessed records a decision record and how long it took.
func (r *Recorder) AssetProcessed(signal models.Signal, took time.Duration) {
	r.assets.WithLabelValues(string(signal)).Inc()
	r.assetDuration.Observe(took.Seconds())
}

// AssetFailed records a degraded record.
func (r *Recorder) AssetFailed() {
	r.assetFailures.Inc()
}

// SourceFailed records a sub-fetch that produced no data.
func (r *Recorder) SourceFailed(source string) {
	r.sourceFailures.WithLabelValues(source).Inc()
}

// ClassifierFallback records a classification replaced by neutral.
func (r *Recorder) ClassifierFallback(reason string) {
	r.classifierFallbacks.WithLabelValues(reason).Inc()
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
