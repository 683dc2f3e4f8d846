package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lexicon"

// PrometheusRecorder implements Recorder with Prometheus collectors.
type PrometheusRecorder struct {
	documents      *prom.CounterVec
	formatFallback *prom.CounterVec
	renderDuration prom.Histogram
	feedBuilds     *prom.CounterVec
}

// NewPrometheusRecorder creates the collectors and registers them on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		documents: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Documents seen while loading a partition, by outcome",
		}, []string{"partition", "outcome"}),
		formatFallback: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "code_format_fallbacks_total",
			Help:      "Code blocks rendered unformatted because the formatter failed",
		}, []string{"language"}),
		renderDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Markdown to HTML conversion time",
			Buckets:   prom.DefBuckets,
		}),
		feedBuilds: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "feed_builds_total",
			Help:      "Feed builds by outcome",
		}, []string{"outcome"}),
	}
	reg.MustRegister(pr.documents, pr.formatFallback, pr.renderDuration, pr.feedBuilds)
	return pr
}

func (p *PrometheusRecorder) IncDocument(partition, outcome string) {
	if p == nil {
		return
	}
	p.documents.WithLabelValues(partition, outcome).Inc()
}

func (p *PrometheusRecorder) IncFormatFallback(lang string) {
	if p == nil {
		return
	}
	p.formatFallback.WithLabelValues(lang).Inc()
}

func (p *PrometheusRecorder) ObserveRenderDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.renderDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncFeedBuild(outcome string) {
	if p == nil {
		return
	}
	p.feedBuilds.WithLabelValues(outcome).Inc()
}

// HTTPHandler serves the metrics registered on reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
