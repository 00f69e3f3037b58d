// Package metrics exposes Prometheus instrumentation for the assistant
// gateway.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the gateway. Create it once;
// registration is global.
type Metrics struct {
	// Live session metrics
	SessionsStarted prometheus.Counter
	SessionsClosed  prometheus.Counter
	SessionsErrored prometheus.Counter

	// Audio pipeline metrics
	CaptureBlocks prometheus.Counter
	InboundEvents *prometheus.CounterVec
	ChunksDropped prometheus.Counter
	AudioSeconds  prometheus.Counter

	// Client connection metrics
	ActiveClients prometheus.Gauge

	// Text chat metrics
	ChatRequests *prometheus.CounterVec
	ChatFailures prometheus.Counter
	ChatDuration prometheus.Histogram
}

// NewMetrics creates and registers all gateway metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		SessionsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aiweb_sessions_started_total",
			Help: "Total number of live sessions that reached the open state",
		}),
		SessionsClosed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aiweb_sessions_closed_total",
			Help: "Total number of live sessions closed cleanly",
		}),
		SessionsErrored: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aiweb_sessions_errored_total",
			Help: "Total number of live sessions ended by a fatal error",
		}),

		CaptureBlocks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aiweb_capture_blocks_sent_total",
			Help: "Total number of capture blocks sent to the live endpoint",
		}),
		InboundEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aiweb_inbound_events_total",
			Help: "Total number of inbound live events by kind",
		}, []string{"kind"}),
		ChunksDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aiweb_audio_chunks_dropped_total",
			Help: "Total number of malformed audio chunks dropped",
		}),
		AudioSeconds: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aiweb_audio_scheduled_seconds_total",
			Help: "Total seconds of assistant audio scheduled for playback",
		}),

		ActiveClients: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "aiweb_active_clients",
			Help: "Current number of connected gateway clients",
		}),

		ChatRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aiweb_chat_requests_total",
			Help: "Total number of text chat requests by route",
		}, []string{"route"}),
		ChatFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aiweb_chat_failures_total",
			Help: "Total number of failed text chat requests",
		}),
		ChatDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "aiweb_chat_duration_seconds",
			Help:    "Duration of text chat requests",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~2 minutes
		}),
	}
}

// SessionStarted increments the sessions started counter.
func (m *Metrics) SessionStarted() {
	m.SessionsStarted.Inc()
}

// SessionClosed increments the sessions closed counter.
func (m *Metrics) SessionClosed() {
	m.SessionsClosed.Inc()
}

// SessionErrored increments the sessions errored counter.
func (m *Metrics) SessionErrored() {
	m.SessionsErrored.Inc()
}

// BlockSent increments the capture blocks counter.
func (m *Metrics) BlockSent() {
	m.CaptureBlocks.Inc()
}

// EventReceived increments the inbound event counter for one kind.
func (m *Metrics) EventReceived(kind string) {
	m.InboundEvents.WithLabelValues(kind).Inc()
}

// ChunkDropped increments the dropped chunk counter.
func (m *Metrics) ChunkDropped() {
	m.ChunksDropped.Inc()
}

// AudioScheduled adds scheduled playback time in seconds.
func (m *Metrics) AudioScheduled(seconds float64) {
	m.AudioSeconds.Add(seconds)
}

// ClientConnected increments the active client gauge.
func (m *Metrics) ClientConnected() {
	m.ActiveClients.Inc()
}

// ClientDisconnected decrements the active client gauge.
func (m *Metrics) ClientDisconnected() {
	m.ActiveClients.Dec()
}

// RecordChat records one completed chat request.
func (m *Metrics) RecordChat(routeName string, seconds float64) {
	m.ChatRequests.WithLabelValues(routeName).Inc()
	m.ChatDuration.Observe(seconds)
}

// RecordChatFailure increments the chat failure counter.
func (m *Metrics) RecordChatFailure() {
	m.ChatFailures.Inc()
}
