// Package p2p provides the duplex byte-stream abstraction the node floods
// over, with a TCP implementation for production and an in-memory pipe for
// tests.
//
// Connections are polled, never blocked on: TryRead returns ErrWouldBlock
// when nothing has arrived, so a single event loop can sweep every peer
// without stalling on any of them.
package p2p

import "errors"

// ErrWouldBlock is returned by TryRead when no data is currently available.
// It is a normal polling signal, not a failure.
var ErrWouldBlock = errors.New("p2p: read would block")

// Conn is an exclusively-owned, non-blocking duplex byte stream.
type Conn interface {
	// TryRead reads available bytes into p without blocking. It returns
	// ErrWouldBlock when no data is queued and io.EOF when the remote end
	// has gone away.
	TryRead(p []byte) (int, error)

	// Write sends p to the remote end.
	Write(p []byte) (int, error)

	// Shutdown closes both directions of the stream. The remote end
	// observes end-of-stream on its next read.
	Shutdown() error

	// Close releases the connection.
	Close() error

	// RemoteAddr returns the remote endpoint, used as the origin key for
	// loop avoidance.
	RemoteAddr() string
}
