// Package node implements the flooding engine.
//
// Design:
//   - The accept loop and the command source run as independent producers
//     feeding the event loop through buffered channels.
//   - The event loop is single-threaded and owns the peer set and the dedup
//     cache outright, so every flooding and dedup decision is serialized
//     without locks.
//   - Each iteration runs in a fixed order: drain accepts, drain commands,
//     poll every peer once, propagate what the polls produced. When an
//     iteration observes nothing, the loop parks on its producer channels
//     with a bounded timeout instead of spinning.
//   - A failure on one peer drops that peer (or that message), never the
//     process. Only a dead producer stops the loop.
package node

import (
	"context"
	"errors"
	"io"
	"time"

	"floodcast/internal/command"
	"floodcast/internal/config"
	"floodcast/internal/dedup"
	"floodcast/internal/deliver"
	"floodcast/internal/logger"
	"floodcast/internal/message"
	"floodcast/internal/p2p"
)

var (
	// ErrAcceptorClosed reports the death of the accept producer.
	ErrAcceptorClosed = errors.New("node: acceptor channel closed")
	// ErrCommandsClosed reports the death of the command producer.
	ErrCommandsClosed = errors.New("node: command channel closed")
)

// peer is one live connection plus the frame it is mid-way through
// receiving. TCP may hand a frame over in pieces; bytes accumulate across
// iterations until a full frame is buffered.
type peer struct {
	conn   p2p.Conn
	addr   string
	frame  [message.Capacity]byte
	filled int
}

// pending is a received frame queued for propagation, tagged with the
// address it arrived from. The raw frame is kept so the flood forwards the
// exact bytes that came in.
type pending struct {
	frame  [message.Capacity]byte
	origin string
}

// Node runs the event loop over a set of peer connections.
type Node struct {
	cfg     *config.Config
	accepts <-chan p2p.Conn
	cmds    <-chan command.Command
	seen    *dedup.Cache
	hub     *deliver.Hub
	peers   []*peer

	// dial is swappable so tests can wire in-memory conns.
	dial func(addr string) (p2p.Conn, error)
}

// New assembles a Node from its producers. The hub receives one Delivery
// per newly accepted message.
func New(cfg *config.Config, accepts <-chan p2p.Conn, cmds <-chan command.Command, hub *deliver.Hub) *Node {
	return &Node{
		cfg:     cfg,
		accepts: accepts,
		cmds:    cmds,
		seen:    dedup.New(cfg.CacheSize),
		hub:     hub,
		dial: func(addr string) (p2p.Conn, error) {
			return p2p.Dial(addr)
		},
	}
}

// PeerCount returns the size of the live peer set. Only meaningful from the
// goroutine running the loop; exposed for tests and status reporting
// between Run calls.
func (n *Node) PeerCount() int {
	return len(n.peers)
}

// Run drives the event loop until ctx is cancelled or a producer dies.
// Bootstrap peers from the config are dialed first.
func (n *Node) Run(ctx context.Context) error {
	for _, addr := range n.cfg.PeerAddrs {
		if err := n.connect(addr); err != nil {
			logger.Error("bootstrap %s: %v", addr, err)
		}
	}

	defer n.shutdownPeers()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		busy := false

		if err := n.drainAccepts(&busy); err != nil {
			return err
		}
		if err := n.drainCommands(&busy); err != nil {
			return err
		}
		n.pollPeers(&busy)

		if !busy {
			if err := n.idleWait(ctx); err != nil {
				return err
			}
		}
	}
}

// drainAccepts adds every queued inbound connection to the peer set.
func (n *Node) drainAccepts(busy *bool) error {
	for {
		select {
		case conn, ok := <-n.accepts:
			if !ok {
				return ErrAcceptorClosed
			}
			n.addPeer(conn)
			*busy = true
		default:
			return nil
		}
	}
}

// drainCommands applies every operator instruction currently queued.
func (n *Node) drainCommands(busy *bool) error {
	for {
		select {
		case cmd, ok := <-n.cmds:
			if !ok {
				return ErrCommandsClosed
			}
			n.applyCommand(cmd)
			*busy = true
		default:
			return nil
		}
	}
}

func (n *Node) applyCommand(cmd command.Command) {
	switch cmd.Kind {
	case command.KindConnect:
		if err := n.connect(cmd.Addr); err != nil {
			logger.Error("connect %s: %v", cmd.Addr, err)
		}

	case command.KindBroadcast:
		m, err := message.New(cmd.Text)
		if err != nil {
			// Rejects this one broadcast; peers and loop are unaffected.
			logger.Error("broadcast rejected: %v", err)
			return
		}
		n.seen.Push(m)
		n.hub.Publish(deliver.Delivery{Msg: m})
		n.peers = n.propagate(n.peers, m.Encode(), "")

	case command.KindDisconnect:
		// Shut every connection down but keep the set; dead peers fall out
		// on their next end-of-stream read.
		for _, p := range n.peers {
			if err := p.conn.Shutdown(); err != nil {
				logger.Error("shutdown %s: %v", p.addr, err)
			}
		}
	}
}

func (n *Node) connect(addr string) error {
	conn, err := n.dial(addr)
	if err != nil {
		return err
	}
	n.addPeer(conn)
	return nil
}

func (n *Node) addPeer(conn p2p.Conn) {
	addr := conn.RemoteAddr()
	logger.Info("new peer %s", addr)
	n.peers = append(n.peers, &peer{conn: conn, addr: addr})
}

// pollPeers attempts one non-blocking read per peer, then propagates every
// newly seen message. The peer set produced by each stage feeds the next,
// so later propagations see peers dropped by earlier ones.
func (n *Node) pollPeers(busy *bool) {
	retained := make([]*peer, 0, len(n.peers))
	var produced []pending

	for _, p := range n.peers {
		read, keep := n.pollPeer(p, &produced)
		if keep {
			retained = append(retained, p)
		}
		if read {
			*busy = true
		}
	}

	n.peers = retained
	for _, pd := range produced {
		n.peers = n.propagate(n.peers, pd.frame, pd.origin)
	}
}

// pollPeer performs one read attempt on p. It reports whether anything
// happened (read) and whether the peer survives (keep). A complete frame is
// decoded, dedup-checked, delivered, and queued for propagation.
func (n *Node) pollPeer(p *peer, produced *[]pending) (read, keep bool) {
	c, err := p.conn.TryRead(p.frame[p.filled:])
	switch {
	case errors.Is(err, p2p.ErrWouldBlock):
		return false, true

	case errors.Is(err, io.EOF):
		logger.Info("peer %s disconnected", p.addr)
		p.conn.Close()
		return true, false

	case err != nil:
		logger.Error("dropping peer %s: read failed: %v", p.addr, err)
		p.conn.Close()
		return true, false
	}

	p.filled += c
	if p.filled < message.Capacity {
		// Partial frame; the rest arrives on a later iteration.
		return c > 0, true
	}
	p.filled = 0

	m, err := message.Decode(p.frame[:])
	if err != nil {
		// Malformed frame: drop the message, keep the connection.
		logger.Error("peer %s: discarding frame: %v", p.addr, err)
		return true, true
	}

	if n.seen.Contains(m) {
		return true, true
	}
	n.seen.Push(m)
	n.hub.Publish(deliver.Delivery{From: p.addr, Msg: m})
	*produced = append(*produced, pending{frame: p.frame, origin: p.addr})
	return true, true
}

// idleWait parks until a producer has something, the poll interval elapses,
// or ctx is cancelled. Handling a producer event here is equivalent to
// handling it at the top of the next iteration.
func (n *Node) idleWait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return nil

	case conn, ok := <-n.accepts:
		if !ok {
			return ErrAcceptorClosed
		}
		n.addPeer(conn)

	case cmd, ok := <-n.cmds:
		if !ok {
			return ErrCommandsClosed
		}
		n.applyCommand(cmd)

	case <-time.After(n.cfg.PollInterval()):
	}
	return nil
}

func (n *Node) shutdownPeers() {
	for _, p := range n.peers {
		p.conn.Close()
	}
	n.peers = nil
}
