package p2p

import (
	"errors"
	"net"
	"os"
	"time"

	"floodcast/internal/logger"
)

// TCPConn adapts a net.Conn to the non-blocking Conn contract. TryRead uses
// an already-expired read deadline: buffered data is returned immediately,
// an empty socket reports ErrWouldBlock instead of blocking.
type TCPConn struct {
	conn net.Conn
}

// NewTCPConn wraps an established net.Conn.
func NewTCPConn(conn net.Conn) *TCPConn {
	return &TCPConn{conn: conn}
}

// Dial establishes an outbound connection to addr.
func Dial(addr string) (*TCPConn, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return NewTCPConn(conn), nil
}

func (c *TCPConn) TryRead(p []byte) (int, error) {
	if err := c.conn.SetReadDeadline(time.Now()); err != nil {
		return 0, err
	}
	n, err := c.conn.Read(p)
	if err != nil && errors.Is(err, os.ErrDeadlineExceeded) {
		return n, ErrWouldBlock
	}
	return n, err
}

func (c *TCPConn) Write(p []byte) (int, error) {
	return c.conn.Write(p)
}

func (c *TCPConn) Shutdown() error {
	if tcp, ok := c.conn.(*net.TCPConn); ok {
		rerr := tcp.CloseRead()
		werr := tcp.CloseWrite()
		if rerr != nil {
			return rerr
		}
		return werr
	}
	return c.conn.Close()
}

func (c *TCPConn) Close() error {
	return c.conn.Close()
}

func (c *TCPConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// Listener accepts inbound connections on its own goroutine and hands them
// to the event loop through a buffered channel. The channel is closed when
// the accept loop dies, which the loop treats as a fatal producer failure.
type Listener struct {
	ln    net.Listener
	conns chan Conn
}

// Listen binds addr and starts the accept loop.
func Listen(addr string) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	l := &Listener{
		ln:    ln,
		conns: make(chan Conn, 16),
	}
	go l.acceptLoop()
	return l, nil
}

// Conns returns the channel of newly accepted connections.
func (l *Listener) Conns() <-chan Conn {
	return l.conns
}

// Addr returns the bound listen address.
func (l *Listener) Addr() string {
	return l.ln.Addr().String()
}

// Close stops accepting. The connection channel closes shortly after.
func (l *Listener) Close() error {
	return l.ln.Close()
}

func (l *Listener) acceptLoop() {
	defer close(l.conns)
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			logger.Debug("accept loop stopped: %v", err)
			return
		}
		logger.Info("new inbound connection from %s", conn.RemoteAddr())
		l.conns <- NewTCPConn(conn)
	}
}
