package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/soundpad-go/core/metrics"
	"github.com/codewandler/soundpad-go/core/pipe"
)

// pipeMetrics implements pipe.Metrics using Prometheus.
type pipeMetrics struct {
	commandDuration *prometheus.HistogramVec
	commandsTotal   *prometheus.CounterVec
	panicTotal      *prometheus.CounterVec
	queueDepth      *prometheus.GaugeVec
	bytesSent       prometheus.Counter
	bytesReceived   prometheus.Counter
	wouldBlock      *prometheus.CounterVec
}

// NewPipeMetrics creates a new Prometheus implementation of pipe.Metrics and
// registers its collectors with reg.
func NewPipeMetrics(reg prometheus.Registerer) pipe.Metrics {
	m := &pipeMetrics{
		commandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "soundpad_pipe_command_duration_seconds",
			Help:    "Command execution time in seconds",
			Buckets: defaultBuckets,
		}, []string{"command"}),

		commandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "soundpad_pipe_commands_total",
			Help: "Total number of commands executed",
		}, []string{"command", "success"}),

		panicTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "soundpad_pipe_command_panics_total",
			Help: "Total number of recovered command panics",
		}, []string{"command"}),

		queueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "soundpad_pipe_queue_depth",
			Help: "Commands waiting in the connection queue",
		}, []string{"conn"}),

		bytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "soundpad_pipe_sent_bytes_total",
			Help: "Bytes accepted by the transport",
		}),

		bytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "soundpad_pipe_received_bytes_total",
			Help: "Bytes read from the transport",
		}),

		wouldBlock: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "soundpad_pipe_would_block_total",
			Help: "Spurious readiness wake-ups by operation",
		}, []string{"op"}),
	}

	reg.MustRegister(
		m.commandDuration,
		m.commandsTotal,
		m.panicTotal,
		m.queueDepth,
		m.bytesSent,
		m.bytesReceived,
		m.wouldBlock,
	)

	return m
}

func (m *pipeMetrics) CommandDuration(command string) metrics.Timer {
	return newTimer(m.commandDuration.WithLabelValues(command))
}

func (m *pipeMetrics) CommandProcessed(command string, success bool) {
	m.commandsTotal.WithLabelValues(command, boolToStr(success)).Inc()
}

func (m *pipeMetrics) CommandPanic(command string) {
	m.panicTotal.WithLabelValues(command).Inc()
}

func (m *pipeMetrics) QueueDepth(conn string, depth int) {
	m.queueDepth.WithLabelValues(conn).Set(float64(depth))
}

func (m *pipeMetrics) BytesSent(n int) {
	m.bytesSent.Add(float64(n))
}

func (m *pipeMetrics) BytesReceived(n int) {
	m.bytesReceived.Add(float64(n))
}

func (m *pipeMetrics) WouldBlock(op string) {
	m.wouldBlock.WithLabelValues(op).Inc()
}

var _ pipe.Metrics = (*pipeMetrics)(nil)
