// Package metrics records resolution and upstream metrics with Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "resolve_git_ref"

// Outcome labels recorded per resolution request.
const (
	OutcomeResolved = "resolved"
	OutcomeNotFound = "ref_not_found"
)

// PrometheusRecorder records resolution outcomes and upstream discovery latency.
// A nil *PrometheusRecorder is a valid no-op recorder.
type PrometheusRecorder struct {
	registry         *prom.Registry
	resolutions      *prom.CounterVec
	requestDuration  prom.Histogram
	upstreamDuration *prom.HistogramVec
}

// NewPrometheusRecorder creates a recorder and registers its collectors with reg.
// A fresh registry carrying the Go and process collectors is used when reg is nil.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	pr := &PrometheusRecorder{
		registry: reg,
		resolutions: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Resolution requests by outcome",
		}, []string{"outcome"}),
		requestDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "End to end duration of resolution requests",
			Buckets:   prom.DefBuckets,
		}),
		upstreamDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_duration_seconds",
			Help:      "Duration of info/refs discovery requests by response status",
			Buckets:   prom.DefBuckets,
		}, []string{"status"}),
	}
	reg.MustRegister(pr.resolutions, pr.requestDuration, pr.upstreamDuration)
	return pr
}

// IncResolution counts one resolution request with the given outcome.
func (p *PrometheusRecorder) IncResolution(outcome string) {
	if p == nil {
		return
	}
	p.resolutions.WithLabelValues(outcome).Inc()
}

// ObserveRequest records the duration of a resolution request.
func (p *PrometheusRecorder) ObserveRequest(d time.Duration) {
	if p == nil {
		return
	}
	p.requestDuration.Observe(d.Seconds())
}

// ObserveUpstream records one discovery request. Status 0 means no response was received.
func (p *PrometheusRecorder) ObserveUpstream(status int, d time.Duration) {
	if p == nil {
		return
	}
	label := "error"
	if status != 0 {
		label = strconv.Itoa(status)
	}
	p.upstreamDuration.WithLabelValues(label).Observe(d.Seconds())
}

// Handler serves the recorder's registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	if p == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
