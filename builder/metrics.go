package builder

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	requests *prometheus.CounterVec
	duration prometheus.Histogram
	stages   *prometheus.HistogramVec
	elements *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskcat_build_requests_total",
			Help: "Build requests by outcome",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "taskcat_build_duration_seconds",
			Help:    "Duration of a full build round",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
		stages: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taskcat_build_stage_duration_seconds",
			Help:    "Duration of each pipeline stage",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"stage"}),
		elements: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taskcat_detected_elements",
			Help:    "Detected elements per screenshot",
			Buckets: prometheus.LinearBuckets(0, 20, 10),
		}, []string{"kind"}),
	}
	reg.MustRegister(m.requests, m.duration, m.stages, m.elements)
	return m
}

func (m *Metrics) observeRequest(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
	m.duration.Observe(d.Seconds())
}

func (m *Metrics) observeStage(stage string, start time.Time) {
	if m == nil {
		return
	}
	m.stages.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

func (m *Metrics) observeElements(texts, icons int) {
	if m == nil {
		return
	}
	m.elements.WithLabelValues("text").Observe(float64(texts))
	m.elements.WithLabelValues("icon").Observe(float64(icons))
}
