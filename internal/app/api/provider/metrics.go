package provider

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "whisper_transcribe"

// PrometheusMetrics implements ProviderMetrics on Prometheus collectors
type PrometheusMetrics struct {
	transcriptions *prometheus.CounterVec
	latency        *prometheus.HistogramVec
	audioSeconds   *prometheus.CounterVec
	modelLoads     *prometheus.CounterVec
}

// NewProviderMetrics creates the collectors and registers them on reg.
// A nil reg leaves them unregistered.
func NewProviderMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		transcriptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "transcriptions_total",
			Help:      "Transcriptions by provider and outcome.",
		}, []string{"provider", "status", "error"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "transcription_duration_seconds",
			Help:      "Wall time spent in the provider per transcription.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"provider"}),
		audioSeconds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "audio_processed_seconds_total",
			Help:      "Seconds of audio transcribed.",
		}, []string{"provider"}),
		modelLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "model_loads_total",
			Help:      "Model loads by provider and outcome.",
		}, []string{"provider", "status"}),
	}

	if reg != nil {
		reg.MustRegister(m.transcriptions, m.latency, m.audioSeconds, m.modelLoads)
	}
	return m
}

// RecordSuccess records a successful transcription
func (m *PrometheusMetrics) RecordSuccess(provider string, latencySec float64, audioLengthSec float64) {
	m.transcriptions.WithLabelValues(provider, "success", "").Inc()
	m.latency.WithLabelValues(provider).Observe(latencySec)
	if audioLengthSec > 0 {
		m.audioSeconds.WithLabelValues(provider).Add(audioLengthSec)
	}
}

// RecordFailure records a failed transcription
func (m *PrometheusMetrics) RecordFailure(provider string, errorType string, latencySec float64) {
	m.transcriptions.WithLabelValues(provider, "failure", errorType).Inc()
	m.latency.WithLabelValues(provider).Observe(latencySec)
}

// RecordModelLoad records the outcome of a LoadModel call
func (m *PrometheusMetrics) RecordModelLoad(provider string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.modelLoads.WithLabelValues(provider, status).Inc()
}
