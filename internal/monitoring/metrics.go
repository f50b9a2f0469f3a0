package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	// Stream metrics
	FramesReceived   *prometheus.CounterVec
	CommandsSent     *prometheus.CounterVec
	Reconnects       *prometheus.CounterVec
	WSConnections    prometheus.Gauge
	StreamsCompleted prometheus.Counter
	StreamsStopped   prometheus.Counter
	Anomalies        *prometheus.CounterVec

	// REST metrics
	RESTRequests *prometheus.CounterVec
	RESTDuration *prometheus.HistogramVec

	// Simulated backend metrics
	SimRequests *prometheus.CounterVec
	SimDuration *prometheus.HistogramVec
}

// NewMetrics registers every collector on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		FramesReceived: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_frames_received_total",
				Help: "Total number of inbound socket frames by type",
			},
			[]string{"type"},
		),
		CommandsSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_commands_sent_total",
				Help: "Total number of outbound socket commands by type",
			},
			[]string{"type"},
		),
		Reconnects: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_reconnects_total",
				Help: "Total number of socket reconnects by reason",
			},
			[]string{"reason"},
		),
		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "chat_ws_connections_active",
				Help: "Number of open chat sockets",
			},
		),
		StreamsCompleted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "chat_streams_completed_total",
				Help: "Total number of assistant turns that ended normally",
			},
		),
		StreamsStopped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "chat_streams_stopped_total",
				Help: "Total number of assistant turns stopped by the user",
			},
		),
		Anomalies: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_protocol_anomalies_total",
				Help: "Total number of ignored inbound frames by kind",
			},
			[]string{"kind"},
		),
		RESTRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_rest_requests_total",
				Help: "Total number of REST calls",
			},
			[]string{"op", "status"},
		),
		RESTDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chat_rest_request_duration_seconds",
				Help:    "REST call duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"op"},
		),
		SimRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatsim_http_requests_total",
				Help: "Total number of HTTP requests served by the simulated backend",
			},
			[]string{"method", "path", "status"},
		),
		SimDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chatsim_http_request_duration_seconds",
				Help:    "Simulated backend request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"method", "path"},
		),
	}
}

// RecordFrame counts an inbound frame
func (m *Metrics) RecordFrame(frameType string) {
	if m == nil {
		return
	}
	m.FramesReceived.WithLabelValues(frameType).Inc()
}

// RecordCommand counts an outbound command
func (m *Metrics) RecordCommand(commandType string) {
	if m == nil {
		return
	}
	m.CommandsSent.WithLabelValues(commandType).Inc()
}

// RecordReconnect counts a socket rebuild
func (m *Metrics) RecordReconnect(reason string) {
	if m == nil {
		return
	}
	m.Reconnects.WithLabelValues(reason).Inc()
}

// RecordAnomaly counts a frame that was ignored
func (m *Metrics) RecordAnomaly(kind string) {
	if m == nil {
		return
	}
	m.Anomalies.WithLabelValues(kind).Inc()
}

// IncWSConnections increments open sockets
func (m *Metrics) IncWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
}

// DecWSConnections decrements open sockets
func (m *Metrics) DecWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
}

// IncStreamsCompleted counts a normal end of stream
func (m *Metrics) IncStreamsCompleted() {
	if m == nil {
		return
	}
	m.StreamsCompleted.Inc()
}

// IncStreamsStopped counts a user stop
func (m *Metrics) IncStreamsStopped() {
	if m == nil {
		return
	}
	m.StreamsStopped.Inc()
}

// RecordREST records one REST call
func (m *Metrics) RecordREST(op string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.RESTRequests.WithLabelValues(op, label).Inc()
	m.RESTDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordSimRequest records a request served by the simulated backend
func (m *Metrics) RecordSimRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.SimRequests.WithLabelValues(method, path, status).Inc()
	m.SimDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
