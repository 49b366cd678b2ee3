package p2p

import (
	"fmt"
	"io"
	"net"
	"sync"
)

// halfPipe is one direction of an in-memory duplex stream.
type halfPipe struct {
	mu     sync.Mutex
	buf    []byte
	closed bool
}

func (h *halfPipe) write(p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0, net.ErrClosed
	}
	h.buf = append(h.buf, p...)
	return len(p), nil
}

func (h *halfPipe) tryRead(p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.buf) == 0 {
		if h.closed {
			return 0, net.ErrClosed // mapped by the caller
		}
		return 0, ErrWouldBlock
	}
	n := copy(p, h.buf)
	h.buf = h.buf[n:]
	return n, nil
}

func (h *halfPipe) close() {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
}

// MemoryConn is an in-process Conn for tests. Pipe returns two connected
// ends; bytes written to one are readable from the other. Semantics mirror
// TCPConn: empty queue reads report ErrWouldBlock, a shut-down remote end
// reports io.EOF once the queue drains.
type MemoryConn struct {
	recv   *halfPipe
	send   *halfPipe
	remote string
}

var (
	pipeMu sync.Mutex
	pipeID int
)

// Pipe creates a connected pair of in-memory conns with distinct synthetic
// remote addresses.
func Pipe() (*MemoryConn, *MemoryConn) {
	pipeMu.Lock()
	pipeID++
	id := pipeID
	pipeMu.Unlock()

	aToB := &halfPipe{}
	bToA := &halfPipe{}
	a := &MemoryConn{recv: bToA, send: aToB, remote: fmt.Sprintf("mem-%d-b", id)}
	b := &MemoryConn{recv: aToB, send: bToA, remote: fmt.Sprintf("mem-%d-a", id)}
	return a, b
}

func (c *MemoryConn) TryRead(p []byte) (int, error) {
	n, err := c.recv.tryRead(p)
	if err == net.ErrClosed {
		return n, io.EOF
	}
	return n, err
}

func (c *MemoryConn) Write(p []byte) (int, error) {
	return c.send.write(p)
}

func (c *MemoryConn) Shutdown() error {
	c.recv.close()
	c.send.close()
	return nil
}

func (c *MemoryConn) Close() error {
	return c.Shutdown()
}

func (c *MemoryConn) RemoteAddr() string {
	return c.remote
}
