package command

import (
	"bufio"
	"errors"
	"io"

	"floodcast/internal/logger"
)

// Source reads operator input line by line on its own goroutine and emits
// well-formed Commands. Malformed lines are reported and skipped; they never
// reach the node and never stop it. The channel is closed when the reader
// ends, which the event loop treats as a fatal producer failure.
type Source struct {
	cmds chan Command
}

// NewSource starts reading from r (stdin in production).
func NewSource(r io.Reader) *Source {
	s := &Source{cmds: make(chan Command, 16)}
	go s.readLoop(r)
	return s
}

// Commands returns the channel of parsed commands.
func (s *Source) Commands() <-chan Command {
	return s.cmds
}

func (s *Source) readLoop(r io.Reader) {
	defer close(s.cmds)
	// bufio.Reader rather than bufio.Scanner: a Scanner treats a line past
	// its token limit as a terminal error, and one oversized operator line
	// must not kill the command producer.
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			cmd, perr := Parse(line)
			if perr != nil {
				logger.Error("ignoring input: %v", perr)
			} else {
				s.cmds <- cmd
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logger.Error("command input closed: %v", err)
			}
			return
		}
	}
}
