// Package transport defines the readiness-driven byte stream consumed by the
// pipe package, together with two implementations:
//
//   - [Memory], an in-process duplex pair with bounded buffers. Tests and the
//     examples use it in place of a real pipe.
//   - [Stream], which adapts any [io.ReadWriteCloser] (a net.Conn over a unix
//     socket or TCP, a named pipe handle) by running a reader goroutine that
//     buffers incoming bytes and signals readability.
//
// # Contract
//
// Readiness is edge-free from the caller's view: Readable returns as long as
// buffered data exists, so a caller that loops on Readable/TryRead never
// misses bytes. Both TryRead and TryWrite may report [ErrWouldBlock] after a
// readiness signal; callers must treat that as "wait again", never as failure.
//
// Neither implementation frames messages. Framing is left to the reader.
package transport
