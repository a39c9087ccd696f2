package pipe

import (
	"context"
	"fmt"
	"time"

	"github.com/codewandler/soundpad-go/internal/reflector"
)

type (
	// Command is a unit of work executed by Run against the Connection. It may
	// call Send and Receive any number of times. The Connection must not be
	// retained after Do returns.
	Command interface {
		Do(ctx context.Context, c *Connection) error
	}

	// CommandFunc adapts a function to Command.
	CommandFunc func(ctx context.Context, c *Connection) error

	commandNamer interface{ CommandName() string }
)

func (f CommandFunc) Do(ctx context.Context, c *Connection) error { return f(ctx, c) }

func commandName(cmd Command) string {
	if n, ok := cmd.(commandNamer); ok {
		return n.CommandName()
	}
	return reflector.TypeInfoOf(cmd).Short
}

// Result is the outcome of a Request.
type Result struct {
	Text string
	Err  error
}

// Request sends one payload and receives one response. The outcome is
// delivered on Result exactly once.
type Request struct {
	payload []byte
	result  chan Result
}

func NewRequest(payload []byte) *Request {
	return &Request{
		payload: payload,
		result:  make(chan Result, 1),
	}
}

func (r *Request) CommandName() string { return "request" }

// Result returns the channel the response is delivered on.
func (r *Request) Result() <-chan Result { return r.result }

func (r *Request) Do(ctx context.Context, c *Connection) error {
	text, err := exchange(ctx, c, r.payload)
	select {
	case r.result <- Result{Text: text, Err: err}:
	default:
		// already delivered; a Request runs once
	}
	return err
}

func exchange(ctx context.Context, c *Connection, payload []byte) (string, error) {
	if err := c.Send(ctx, payload); err != nil {
		return "", fmt.Errorf("send: %w", err)
	}
	text, err := c.Receive(ctx)
	if err != nil {
		return "", fmt.Errorf("receive: %w", err)
	}
	return text, nil
}

// SequenceResult is the outcome of a Sequence. On failure Responses holds the
// responses received before the failing step.
type SequenceResult struct {
	Responses []string
	Err       error
}

// Sequence performs several request/response exchanges back to back, waiting
// the connection's debounce interval between them.
type Sequence struct {
	payloads [][]byte
	result   chan SequenceResult
}

func NewSequence(payloads ...[]byte) *Sequence {
	return &Sequence{
		payloads: payloads,
		result:   make(chan SequenceResult, 1),
	}
}

func (s *Sequence) CommandName() string { return "sequence" }

func (s *Sequence) Result() <-chan SequenceResult { return s.result }

func (s *Sequence) Do(ctx context.Context, c *Connection) error {
	res := SequenceResult{Responses: make([]string, 0, len(s.payloads))}
	defer func() {
		select {
		case s.result <- res:
		default:
		}
	}()

	for i, p := range s.payloads {
		if i > 0 {
			if err := pause(ctx, c.Debounce()); err != nil {
				res.Err = err
				return err
			}
		}
		text, err := exchange(ctx, c, p)
		if err != nil {
			res.Err = fmt.Errorf("step %d: %w", i, err)
			return res.Err
		}
		res.Responses = append(res.Responses, text)
	}
	return nil
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do enqueues a Request for payload and waits for its response. ctx bounds
// the enqueue and the wait; it does not abort the exchange once the actor
// has started it.
func Do(ctx context.Context, s *Sender, payload []byte) (string, error) {
	req := NewRequest(payload)
	if err := s.Send(ctx, req); err != nil {
		return "", err
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-req.Result():
		return res.Text, res.Err
	}
}

// DoSequence enqueues a Sequence and waits for all of its responses.
func DoSequence(ctx context.Context, s *Sender, payloads ...[]byte) ([]string, error) {
	seq := NewSequence(payloads...)
	if err := s.Send(ctx, seq); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-seq.Result():
		return res.Responses, res.Err
	}
}

var (
	_ Command = (*Request)(nil)
	_ Command = (*Sequence)(nil)
	_ Command = CommandFunc(nil)
)
