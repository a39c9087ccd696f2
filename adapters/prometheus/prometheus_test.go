package prometheus

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPipeMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPipeMetrics(reg)

	require.NotNil(t, m)

	timer := m.CommandDuration("request")
	assert.NotNil(t, timer)
	timer.ObserveDuration()

	m.CommandProcessed("request", true)
	m.CommandProcessed("request", false)
	m.CommandProcessed("request", true)
	m.CommandPanic("sequence")
	m.QueueDepth("conn-1", 3)
	m.BytesSent(12)
	m.BytesReceived(7)
	m.WouldBlock("write")
	m.WouldBlock("write")

	mfs, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}

	assert.True(t, names["soundpad_pipe_command_duration_seconds"])
	assert.True(t, names["soundpad_pipe_commands_total"])
	assert.True(t, names["soundpad_pipe_command_panics_total"])
	assert.True(t, names["soundpad_pipe_queue_depth"])
	assert.True(t, names["soundpad_pipe_sent_bytes_total"])
	assert.True(t, names["soundpad_pipe_received_bytes_total"])
	assert.True(t, names["soundpad_pipe_would_block_total"])

	pm := m.(*pipeMetrics)
	assert.Equal(t, float64(2), testutil.ToFloat64(pm.commandsTotal.WithLabelValues("request", "true")))
	assert.Equal(t, float64(1), testutil.ToFloat64(pm.commandsTotal.WithLabelValues("request", "false")))
	assert.Equal(t, float64(3), testutil.ToFloat64(pm.queueDepth.WithLabelValues("conn-1")))
	assert.Equal(t, float64(12), testutil.ToFloat64(pm.bytesSent))
	assert.Equal(t, float64(2), testutil.ToFloat64(pm.wouldBlock.WithLabelValues("write")))
}

func TestNewPipeMetrics_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPipeMetrics(reg)

	assert.Panics(t, func() { NewPipeMetrics(reg) })
}
