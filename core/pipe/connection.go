package pipe

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/codewandler/soundpad-go/core/transport"
)

const (
	defaultQueueSize = 64
	defaultChunkSize = 512
)

type (
	// OnPanic is called with the value recovered from a panicking command.
	OnPanic func(recovered any, stack []byte, cmd Command)

	Options struct {
		// ID names the connection in logs and metrics. Generated when empty.
		ID string
		// Context is handed to every command. Cancelling it aborts pending
		// readiness waits but does not stop Run; only closing the queue does.
		Context context.Context
		Logger  *slog.Logger
		// QueueSize bounds the command queue (default 64).
		QueueSize int
		// ChunkSize is the size of a single read in Receive (default 512).
		// A read shorter than ChunkSize ends a response.
		ChunkSize int
		// Debounce is available to commands for pacing repeated operations.
		// The actor never applies it itself.
		Debounce time.Duration
		Metrics  Metrics
		OnPanic  OnPanic
	}

	// Connection owns a transport, the receiving end of a command queue and
	// the session configuration. After New, all I/O on the transport goes
	// through Send and Receive, called by commands executing inside Run.
	Connection struct {
		id       string
		ctx      context.Context
		log      *slog.Logger
		t        transport.Transport
		q        *queue
		debounce time.Duration
		chunk    int
		metrics  Metrics
		onPanic  OnPanic

		running atomic.Bool
	}
)

// New takes ownership of t and returns the Connection together with the first
// producer handle of its command queue. Callers must not use t afterwards.
func New(t transport.Transport, opts Options) (*Connection, *Sender) {
	if opts.ID == "" {
		opts.ID = fmt.Sprintf("conn-%s", gonanoid.Must(6))
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkSize
	}
	if opts.Metrics == nil {
		opts.Metrics = NopMetrics()
	}

	log := opts.Logger.With(slog.String("conn", opts.ID))
	if opts.OnPanic == nil {
		opts.OnPanic = func(recovered any, stack []byte, cmd Command) {
			log.Error(
				"command panicked",
				slog.String("command", commandName(cmd)),
				slog.Any("recovered", recovered),
				slog.String("stack", string(stack)),
			)
		}
	}

	q, sender := newQueue(opts.QueueSize)

	return &Connection{
		id:       opts.ID,
		ctx:      opts.Context,
		log:      log,
		t:        t,
		q:        q,
		debounce: opts.Debounce,
		chunk:    opts.ChunkSize,
		metrics:  opts.Metrics,
		onPanic:  opts.OnPanic,
	}, sender
}

func (c *Connection) ID() string { return c.id }

// Debounce returns the configured pacing interval for commands.
func (c *Connection) Debounce() time.Duration { return c.debounce }

// Log returns the connection logger.
func (c *Connection) Log() *slog.Logger { return c.log }
