package wsserver

import "github.com/prometheus/client_golang/prometheus"

// metrics bundles the counters/gauges this package exposes. A zero-value
// metrics (no Registerer configured) has nil fields and every method below
// is a guarded no-op, so embedding this server never requires Prometheus.
type metrics struct {
	connections    prometheus.Gauge
	messages       prometheus.Counter
	broadcasts     prometheus.Counter
	droppedFrames  prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		return &metrics{}
	}

	m := &metrics{
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "couchparty_connections",
			Help: "Currently open WebSocket connections.",
		}),
		messages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "couchparty_messages_total",
			Help: "Text frames dispatched to the handler.",
		}),
		broadcasts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "couchparty_broadcasts_total",
			Help: "Outbound broadcast writes across all connections.",
		}),
		droppedFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "couchparty_dropped_frames_total",
			Help: "Frames discarded by the server: rate-limited text frames, binary or continuation frames.",
		}),
	}
	reg.MustRegister(m.connections, m.messages, m.broadcasts, m.droppedFrames)
	return m
}

func (m *metrics) connected() {
	if m.connections != nil {
		m.connections.Inc()
	}
}

func (m *metrics) disconnected() {
	if m.connections != nil {
		m.connections.Dec()
	}
}

func (m *metrics) messageDispatched() {
	if m.messages != nil {
		m.messages.Inc()
	}
}

func (m *metrics) broadcastSent() {
	if m.broadcasts != nil {
		m.broadcasts.Inc()
	}
}

func (m *metrics) frameDropped() {
	if m.droppedFrames != nil {
		m.droppedFrames.Inc()
	}
}
