// Package command parses operator instructions and feeds them to the node.
package command

import (
	"errors"
	"fmt"
	"strings"
)

// Kind discriminates the three operator instructions.
type Kind int

const (
	// KindConnect dials a new outbound peer.
	KindConnect Kind = iota
	// KindBroadcast originates a new message and floods it to all peers.
	KindBroadcast
	// KindDisconnect shuts down every peer connection.
	KindDisconnect
)

// Command is one well-formed operator instruction. Addr is set for Connect,
// Text for Broadcast.
type Command struct {
	Kind Kind
	Addr string
	Text string
}

var ErrParse = errors.New("command: parse error")

// Parse turns one operator input line into a Command.
//
// Accepted forms:
//
//	connect <host:port>
//	broadcast <text>
//	disconnect
func Parse(line string) (Command, error) {
	line = strings.TrimSpace(line)
	verb, rest, _ := strings.Cut(line, " ")

	switch verb {
	case "connect":
		addr := strings.TrimSpace(rest)
		if addr == "" {
			return Command{}, fmt.Errorf("%w: connect needs an address", ErrParse)
		}
		return Command{Kind: KindConnect, Addr: addr}, nil
	case "broadcast":
		if rest == "" {
			return Command{}, fmt.Errorf("%w: broadcast needs text", ErrParse)
		}
		return Command{Kind: KindBroadcast, Text: rest}, nil
	case "disconnect":
		return Command{Kind: KindDisconnect}, nil
	case "":
		return Command{}, fmt.Errorf("%w: empty line", ErrParse)
	default:
		return Command{}, fmt.Errorf("%w: unknown command %q", ErrParse, verb)
	}
}
