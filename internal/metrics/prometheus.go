package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "fft"

// Prometheus holds the prometheus collectors of the filter.
type Prometheus struct {
	Readings   *prometheus.CounterVec
	Samples    *prometheus.CounterVec
	Skipped    *prometheus.CounterVec
	Windows    *prometheus.CounterVec
	Dropped    *prometheus.CounterVec
	Transform  *prometheus.HistogramVec
	Reconfigs  *prometheus.CounterVec
	WindowSize prometheus.Gauge
}

// NewPrometheusMetrics creates the collectors, without registering them.
func NewPrometheusMetrics() Prometheus {
	return Prometheus{
		Readings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "readings_total",
				Help:      "readings seen by the filter, by routing decision",
			}, []string{"asset", "route"}),
		Samples: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "samples_total",
				Help:      "samples buffered per channel",
			}, []string{"channel"}),
		Skipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "skipped_datapoints_total",
				Help:      "datapoints ignored because of their value type",
			}, []string{"kind"}),
		Windows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "windows_total",
				Help:      "completed windows transformed per channel",
			}, []string{"channel"}),
		Dropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dropped_buffers_total",
				Help:      "channel buffers discarded after the window shrunk below their length",
			}, []string{"channel"}),
		Transform: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "transform_seconds",
				Help:      "duration of transform and band summary per window",
				Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
			}, []string{"kernel"}),
		Reconfigs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reconfigurations_total",
				Help:      "reconfiguration requests by outcome",
			}, []string{"status"}),
		WindowSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "window_samples",
				Help:      "currently configured window length",
			}),
	}
}

// Collectors returns all collectors for registration.
func (p Prometheus) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		p.Readings,
		p.Samples,
		p.Skipped,
		p.Windows,
		p.Dropped,
		p.Transform,
		p.Reconfigs,
		p.WindowSize,
	}
}
