package node

import (
	"floodcast/internal/logger"
	"floodcast/internal/message"
)

// propagate floods one encoded frame to every peer except those whose
// address equals origin, and returns the surviving peer set.
//
// The flood forwards the frame bytes as received: inbound frames are
// re-sent verbatim rather than re-encoded, so the wire bytes stay exact
// even when the decoded text only survives permissive UTF-8 replacement.
//
// Peers matching origin are held back untouched: a message is never echoed
// to the address it arrived from. The frame is written to each remaining
// peer independently; a failed write drops that peer alone. Held-back
// origin peers are merged back only after the write pass, so they are
// never candidates for it. An empty origin (a locally originated
// broadcast) holds nothing back.
func (n *Node) propagate(peers []*peer, frame [message.Capacity]byte, origin string) []*peer {
	var origins, rest []*peer
	for _, p := range peers {
		if origin != "" && p.addr == origin {
			origins = append(origins, p)
		} else {
			rest = append(rest, p)
		}
	}

	logger.Debug("propagating to %d peers (origin %q)", len(rest), origin)

	kept := make([]*peer, 0, len(rest))
	for _, p := range rest {
		if _, err := p.conn.Write(frame[:]); err != nil {
			logger.Error("dropping peer %s: write failed: %v", p.addr, err)
			p.conn.Close()
			continue
		}
		kept = append(kept, p)
	}

	return append(kept, origins...)
}
