// Package prommetrics records transformer outcomes and shortcode render
// telemetry with prometheus/client_golang.
package prommetrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-media-credit/internal/commands"
	"github.com/goliatone/go-media-credit/pkg/interfaces"
)

const namespace = "media_credit"

// Recorder implements interfaces.CreditMetrics, interfaces.ShortcodeMetrics
// and commands.Metrics.
type Recorder struct {
	gatherer       prometheus.Gatherer
	transforms     *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	renderErrors   *prometheus.CounterVec
	cacheHits      *prometheus.CounterVec
	commands       *prometheus.HistogramVec
}

// NewRecorder registers the collectors on reg. A nil reg uses a fresh registry.
func NewRecorder(reg *prometheus.Registry) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Recorder{
		gatherer: reg,
		transforms: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transform_total",
			Help:      "Credit shortcode rewrites by outcome",
		}, []string{"outcome"}),
		renderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_seconds",
			Help:      "Duration of shortcode renders",
			Buckets:   prometheus.DefBuckets,
		}, []string{"shortcode"}),
		renderErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_errors_total",
			Help:      "Shortcode renders that failed",
		}, []string{"shortcode"}),
		cacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_cache_hits_total",
			Help:      "Shortcode renders served from cache",
		}, []string{"shortcode"}),
		commands: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_seconds",
			Help:      "Duration of credit commands by outcome",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command", "outcome"}),
	}
}

func (r *Recorder) IncrementOutcome(outcome string) {
	r.transforms.WithLabelValues(outcome).Inc()
}

func (r *Recorder) ObserveRenderDuration(shortcode string, duration time.Duration) {
	r.renderDuration.WithLabelValues(shortcode).Observe(duration.Seconds())
}

func (r *Recorder) IncrementRenderError(shortcode string) {
	r.renderErrors.WithLabelValues(shortcode).Inc()
}

func (r *Recorder) IncrementCacheHit(shortcode string) {
	r.cacheHits.WithLabelValues(shortcode).Inc()
}

func (r *Recorder) ObserveCommand(command, outcome string, duration time.Duration) {
	r.commands.WithLabelValues(command, outcome).Observe(duration.Seconds())
}

// Handler serves the recorder's registry in the exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}

var (
	_ interfaces.CreditMetrics    = (*Recorder)(nil)
	_ interfaces.ShortcodeMetrics = (*Recorder)(nil)
	_ commands.Metrics            = (*Recorder)(nil)
)
