package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var Observer = &Metrics{
	prometheus: NewPrometheusMetrics(),
}

func init() {
	prometheus.MustRegister(Observer.prometheus.Collectors()...)
}

type Metrics struct {
	prometheus Prometheus
}

// Prometheus exposes the underlying collectors.
func (m *Metrics) Prometheus() Prometheus {
	return m.prometheus
}

func (m *Metrics) IncrementReadings(asset, route string) {
	m.prometheus.Readings.WithLabelValues(asset, route).Inc()
}

func (m *Metrics) IncrementSamples(channel string) {
	m.prometheus.Samples.WithLabelValues(channel).Inc()
}

func (m *Metrics) IncrementSkipped(kind string) {
	m.prometheus.Skipped.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementWindows(channel string) {
	m.prometheus.Windows.WithLabelValues(channel).Inc()
}

func (m *Metrics) IncrementDropped(channel string) {
	m.prometheus.Dropped.WithLabelValues(channel).Inc()
}

func (m *Metrics) ObserveTransform(kernel string, d time.Duration) {
	m.prometheus.Transform.WithLabelValues(kernel).Observe(d.Seconds())
}

func (m *Metrics) IncrementReconfigs(status string) {
	m.prometheus.Reconfigs.WithLabelValues(status).Inc()
}

func (m *Metrics) SetWindowSize(samples int) {
	m.prometheus.WindowSize.Set(float64(samples))
}
