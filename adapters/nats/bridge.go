package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	natsgo "github.com/nats-io/nats.go"

	"github.com/codewandler/soundpad-go/core/pipe"
)

var (
	ErrBridgeClosed = errors.New("bridge closed")
	ErrRemote       = errors.New("remote error")
)

const defaultBridgeTimeout = 10 * time.Second

type BridgeConfig struct {
	Connect       Connector    // Connect is used to create the underlying NATS connection. If nil, ConnectDefault() is used.
	Log           *slog.Logger // Log for diagnostics (optional)
	SubjectPrefix string       // SubjectPrefix for the request subject, e.g. "soundpad" -> soundpad.request
	// Sender is cloned; the bridge releases its clone on Close.
	Sender *pipe.Sender
	// Timeout bounds how long a request waits for the actor (default 10s).
	Timeout time.Duration
}

// Bridge exposes a connection's command queue on NATS. Each message on
// <prefix>.request is enqueued as a pipe.Request or pipe.Sequence and the
// result is sent back as the reply. Messages are handled one at a time in
// arrival order.
type Bridge struct {
	nc      *natsgo.Conn
	closeNc closeFunc
	log     *slog.Logger
	sender  *pipe.Sender
	timeout time.Duration
	subject string
	sub     *natsgo.Subscription

	ctx    context.Context
	cancel context.CancelFunc
	closed atomic.Bool
}

func NewBridge(cfg BridgeConfig) (*Bridge, error) {
	if cfg.Sender == nil {
		return nil, errors.New("sender is required")
	}
	connFn := cfg.Connect
	if connFn == nil {
		connFn = ConnectDefault()
	}
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultBridgeTimeout
	}

	sender, err := cfg.Sender.Clone()
	if err != nil {
		return nil, err
	}

	nc, closeNc, err := connFn()
	if err != nil {
		sender.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &Bridge{
		nc:      nc,
		closeNc: closeNc,
		log:     log.With(slog.String("bridge", "nats")),
		sender:  sender,
		timeout: cfg.Timeout,
		subject: subjectRequest(cfg.SubjectPrefix),
		ctx:     ctx,
		cancel:  cancel,
	}

	b.sub, err = nc.Subscribe(b.subject, b.handle)
	if err != nil {
		cancel()
		sender.Close()
		closeNc()
		return nil, fmt.Errorf("nats: subscribe %s: %w", b.subject, err)
	}

	b.log.Info("bridge started", slog.String("subject", b.subject))
	return b, nil
}

func (b *Bridge) Subject() string { return b.subject }

func (b *Bridge) handle(msg *natsgo.Msg) {
	var (
		req requestFrame
		rf  responseFrame
	)

	if err := json.Unmarshal(msg.Data, &req); err != nil {
		rf.Err = fmt.Sprintf("decode request: %s", err)
	} else {
		ctx, cancel := context.WithTimeout(b.ctx, b.timeout)
		var err error
		if len(req.Payloads) > 0 {
			items := make([][]byte, len(req.Payloads))
			for i, p := range req.Payloads {
				items[i] = []byte(p)
			}
			rf.Items, err = pipe.DoSequence(ctx, b.sender, items...)
		} else {
			rf.Data, err = pipe.Do(ctx, b.sender, []byte(req.Payload))
		}
		cancel()
		if err != nil {
			rf.Err = err.Error()
			b.log.Warn("request failed", slog.Any("error", err))
		}
	}

	if msg.Reply == "" {
		return
	}
	data, _ := json.Marshal(rf)
	if err := msg.Respond(data); err != nil {
		b.log.Error("failed to publish reply", slog.Any("error", err))
	}
}

// Run blocks until ctx is done and then closes the bridge.
func (b *Bridge) Run(ctx context.Context) error {
	select {
	case <-ctx.Done():
	case <-b.ctx.Done():
	}
	if err := b.Close(); err != nil && !errors.Is(err, ErrBridgeClosed) {
		return err
	}
	return nil
}

func (b *Bridge) Close() error {
	if b.closed.Swap(true) {
		return ErrBridgeClosed
	}
	b.cancel()
	err := b.sub.Unsubscribe()
	b.sender.Close()
	b.closeNc()
	b.log.Info("bridge closed")
	return err
}

// Requester sends requests to a Bridge.
type Requester struct {
	nc      *natsgo.Conn
	closeNc closeFunc
	subject string
}

type RequesterConfig struct {
	Connect       Connector
	SubjectPrefix string
}

func NewRequester(cfg RequesterConfig) (*Requester, error) {
	connFn := cfg.Connect
	if connFn == nil {
		connFn = ConnectDefault()
	}
	nc, closeNc, err := connFn()
	if err != nil {
		return nil, err
	}
	return &Requester{nc: nc, closeNc: closeNc, subject: subjectRequest(cfg.SubjectPrefix)}, nil
}

func (r *Requester) Request(ctx context.Context, payload string) (string, error) {
	rf, err := r.do(ctx, requestFrame{Payload: payload})
	if err != nil {
		return "", err
	}
	return rf.Data, nil
}

func (r *Requester) Sequence(ctx context.Context, payloads ...string) ([]string, error) {
	if len(payloads) == 0 {
		return nil, nil
	}
	rf, err := r.do(ctx, requestFrame{Payloads: payloads})
	if err != nil {
		return nil, err
	}
	return rf.Items, nil
}

func (r *Requester) do(ctx context.Context, req requestFrame) (rf responseFrame, err error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return rf, fmt.Errorf("encode request: %w", err)
	}

	msg, err := r.nc.RequestWithContext(ctx, r.subject, payload)
	if err != nil {
		return rf, fmt.Errorf("nats: request: %w", err)
	}
	if err := json.Unmarshal(msg.Data, &rf); err != nil {
		return rf, fmt.Errorf("decode response: %w", err)
	}
	if rf.Err != "" {
		return rf, fmt.Errorf("%w: %s", ErrRemote, rf.Err)
	}
	return rf, nil
}

func (r *Requester) Close() {
	r.closeNc()
}
