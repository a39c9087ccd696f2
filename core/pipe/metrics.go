package pipe

import "github.com/codewandler/soundpad-go/core/metrics"

// Metrics instruments a Connection. All methods are called from the actor
// goroutine; implementations shared between connections must be safe for
// concurrent use.
type Metrics interface {
	// Commands
	CommandDuration(command string) metrics.Timer
	CommandProcessed(command string, success bool)
	CommandPanic(command string)

	// Queue
	QueueDepth(conn string, depth int)

	// I/O
	BytesSent(n int)
	BytesReceived(n int)
	WouldBlock(op string)
}

type nopMetrics struct{}

func (nopMetrics) CommandDuration(string) metrics.Timer { return metrics.NopTimer() }
func (nopMetrics) CommandProcessed(string, bool)        {}
func (nopMetrics) CommandPanic(string)                  {}
func (nopMetrics) QueueDepth(string, int)               {}
func (nopMetrics) BytesSent(int)                        {}
func (nopMetrics) BytesReceived(int)                    {}
func (nopMetrics) WouldBlock(string)                    {}

// NopMetrics returns a Metrics implementation that records nothing.
func NopMetrics() Metrics { return nopMetrics{} }
