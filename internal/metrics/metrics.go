// Package metrics provides Prometheus metrics for the realtime pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fluentspeak"

// Port labels for external capability calls.
const (
	PortTranscribe = "transcribe"
	PortSuggest    = "suggest"
	PortReply      = "reply"
)

type Metrics struct {
	// Session metrics
	SessionsTotal   *prometheus.CounterVec
	SessionsActive  *prometheus.GaugeVec
	SessionDuration *prometheus.HistogramVec

	// Audio metrics
	AudioBytesReceived  prometheus.Counter
	AudioFramesReceived prometheus.Counter
	SegmentsAnalyzed    prometheus.Counter
	StuttersDetected    prometheus.Counter
	OversizeUtterances  *prometheus.CounterVec

	// Output metrics
	SuggestionsEmitted prometheus.Counter
	RepliesEmitted     prometheus.Counter

	// External call metrics
	ExternalLatency *prometheus.HistogramVec
	ExternalErrors  *prometheus.CounterVec

	// Persistence metrics
	MessagesPersisted prometheus.Counter
	PersistFailures   prometheus.Counter
	MalformedSessions prometheus.Counter
}

// DefaultMetrics is the process-wide instance registered with the default registry.
var DefaultMetrics = NewMetrics(prometheus.DefaultRegisterer)

// NewMetrics creates and registers all metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SessionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Total number of realtime sessions accepted",
		}, []string{"mode"}),
		SessionsActive: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of currently open realtime sessions",
		}, []string{"mode"}),
		SessionDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_duration_seconds",
			Help:      "Duration of realtime sessions in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		}, []string{"mode"}),

		AudioBytesReceived: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_bytes_received_total",
			Help:      "Total audio bytes received",
		}),
		AudioFramesReceived: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_frames_received_total",
			Help:      "Total binary audio frames received",
		}),
		SegmentsAnalyzed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_analyzed_total",
			Help:      "Total number of threshold segments analyzed for disfluency",
		}),
		StuttersDetected: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stutters_detected_total",
			Help:      "Total number of segments classified as a stutter",
		}),
		OversizeUtterances: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oversize_utterances_total",
			Help:      "Total number of coach utterances that hit the size cap, by action taken",
		}, []string{"action"}),

		SuggestionsEmitted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suggestions_emitted_total",
			Help:      "Total number of suggestion frames sent",
		}),
		RepliesEmitted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replies_emitted_total",
			Help:      "Total number of coach replies sent",
		}),

		ExternalLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "external_call_latency_seconds",
			Help:      "Latency of speech and language service calls in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"port"}),
		ExternalErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "external_call_errors_total",
			Help:      "Total number of failed speech and language service calls",
		}, []string{"port"}),

		MessagesPersisted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_persisted_total",
			Help:      "Total number of dialogue turns written to the message store",
		}),
		PersistFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_failures_total",
			Help:      "Total number of dialogue turns lost after retries",
		}),
		MalformedSessions: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "malformed_sessions_total",
			Help:      "Total number of sessions closed for a bad control message",
		}),
	}
}

// RecordSessionStart records a new session for mode.
func (m *Metrics) RecordSessionStart(mode string) {
	m.SessionsTotal.WithLabelValues(mode).Inc()
	m.SessionsActive.WithLabelValues(mode).Inc()
}

// RecordSessionEnd records a session closing after d.
func (m *Metrics) RecordSessionEnd(mode string, d time.Duration) {
	m.SessionsActive.WithLabelValues(mode).Dec()
	m.SessionDuration.WithLabelValues(mode).Observe(d.Seconds())
}

// RecordAudioReceived records one binary frame of n bytes.
func (m *Metrics) RecordAudioReceived(n int) {
	m.AudioBytesReceived.Add(float64(n))
	m.AudioFramesReceived.Inc()
}

// RecordSegment records an analyzed segment and whether it was a stutter.
func (m *Metrics) RecordSegment(stutter bool) {
	m.SegmentsAnalyzed.Inc()
	if stutter {
		m.StuttersDetected.Inc()
	}
}

// RecordExternalCall records latency and outcome of a port call.
func (m *Metrics) RecordExternalCall(port string, err error, d time.Duration) {
	m.ExternalLatency.WithLabelValues(port).Observe(d.Seconds())
	if err != nil {
		m.ExternalErrors.WithLabelValues(port).Inc()
	}
}
