package pipe

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"

	"github.com/codewandler/soundpad-go/core/transport"
)

// Send writes all of p before returning. Partial writes advance a cursor and
// spurious would-block results are retried. On error the peer may already
// have received a prefix of p.
func (c *Connection) Send(ctx context.Context, p []byte) error {
	written := 0
	for written < len(p) {
		if err := c.t.Writable(ctx); err != nil {
			return fmt.Errorf("wait writable: %w", err)
		}

		n, err := c.t.TryWrite(p[written:])
		switch {
		case err == nil:
			written += n
		case transport.IsWouldBlock(err):
			c.metrics.WouldBlock("write")
		default:
			return fmt.Errorf("write: %w", err)
		}
	}

	c.metrics.BytesSent(written)
	return nil
}

// SendString is Send for text payloads.
func (c *Connection) SendString(ctx context.Context, s string) error {
	return c.Send(ctx, []byte(s))
}

// Receive reads one response. Bytes are read in chunks of the configured
// size and decoded as UTF-8, replacing invalid sequences with U+FFFD. The
// first read shorter than a chunk ends the response.
//
// A response whose length is an exact multiple of the chunk size is not
// recognised as complete: Receive keeps waiting for a further read. There is
// no length prefix or delimiter to do better without changing the protocol.
func (c *Connection) Receive(ctx context.Context) (string, error) {
	var (
		sb    strings.Builder
		chunk = make([]byte, c.chunk)
		dec   = unicode.UTF8.NewDecoder()
	)

	for {
		if err := c.t.Readable(ctx); err != nil {
			return "", fmt.Errorf("wait readable: %w", err)
		}

		n, err := c.t.TryRead(chunk)
		switch {
		case err == nil:
			c.metrics.BytesReceived(n)
			text, derr := dec.Bytes(chunk[:n])
			if derr != nil {
				return "", fmt.Errorf("decode: %w", derr)
			}
			sb.Write(text)
			if n < len(chunk) {
				return sb.String(), nil
			}
		case transport.IsWouldBlock(err):
			c.metrics.WouldBlock("read")
		default:
			return "", fmt.Errorf("read: %w", err)
		}
	}
}
