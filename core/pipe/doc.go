// Package pipe runs commands one at a time against a readiness-driven byte
// stream owned by a single actor.
//
// A [Connection] owns a [transport.Transport], the receiving end of a bounded
// command queue and a debounce interval. [Run] drains the queue in arrival
// order and calls each command's Do with the Connection; the next command
// starts only after the previous Do returned, so writes and reads of
// different commands never interleave.
//
//	conn, tx := pipe.New(t, pipe.Options{Debounce: 50 * time.Millisecond})
//	go pipe.Run(conn)
//
//	text, err := pipe.Do(ctx, tx, []byte("GetVersion()"))
//	...
//	tx.Close() // Run returns once the queue drained
//
// # Producers
//
// [Sender] is the producer handle. Clone it for every producer; the queue
// closes when the last handle is closed, and that is the only way Run stops.
//
// # Commands
//
// Anything implementing [Command] can be queued. [Request] and [Sequence]
// cover the common request/response shapes and report their outcome on a
// private result channel. A failing or panicking command is logged and
// skipped; it never stops the actor.
//
// # Framing
//
// [Connection.Send] writes a buffer completely, retrying partial writes and
// spurious would-block results. [Connection.Receive] infers the end of a
// response from a read shorter than the chunk size (512 bytes by default).
// Responses that are an exact multiple of the chunk size therefore wait for
// more data; see [Connection.Receive].
package pipe
