package command

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConnect(t *testing.T) {
	cmd, err := Parse("connect 127.0.0.1:4000")
	require.NoError(t, err)
	assert.Equal(t, KindConnect, cmd.Kind)
	assert.Equal(t, "127.0.0.1:4000", cmd.Addr)
}

func TestParseBroadcast(t *testing.T) {
	cmd, err := Parse("broadcast hello there")
	require.NoError(t, err)
	assert.Equal(t, KindBroadcast, cmd.Kind)
	assert.Equal(t, "hello there", cmd.Text)
}

func TestParseDisconnect(t *testing.T) {
	cmd, err := Parse("disconnect")
	require.NoError(t, err)
	assert.Equal(t, KindDisconnect, cmd.Kind)
}

func TestParseTrimsWhitespace(t *testing.T) {
	cmd, err := Parse("  connect 10.0.0.1:99  \n")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1:99", cmd.Addr)
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, line := range []string{"", "   ", "connect", "connect   ", "broadcast", "shout hello", "CONNECT 1.2.3.4:5"} {
		_, err := Parse(line)
		assert.ErrorIs(t, err, ErrParse, "line %q", line)
	}
}

func TestSourceEmitsParsedCommands(t *testing.T) {
	input := "broadcast hi\nnot a command\ndisconnect\n"
	src := NewSource(strings.NewReader(input))

	var got []Command
	for cmd := range src.Commands() {
		got = append(got, cmd)
	}

	// The malformed middle line is skipped, never fatal.
	require.Len(t, got, 2)
	assert.Equal(t, KindBroadcast, got[0].Kind)
	assert.Equal(t, "hi", got[0].Text)
	assert.Equal(t, KindDisconnect, got[1].Kind)
}

func TestSourceSurvivesOversizedLine(t *testing.T) {
	// One absurdly long input line is just another malformed line: skipped,
	// never a terminal error that closes the producer.
	input := strings.Repeat("x", 70*1024) + "\ndisconnect\n"
	src := NewSource(strings.NewReader(input))

	var got []Command
	for cmd := range src.Commands() {
		got = append(got, cmd)
	}

	require.Len(t, got, 1)
	assert.Equal(t, KindDisconnect, got[0].Kind)
}

func TestSourceClosesOnEOF(t *testing.T) {
	src := NewSource(strings.NewReader(""))
	select {
	case _, open := <-src.Commands():
		assert.False(t, open)
	case <-time.After(2 * time.Second):
		t.Fatal("source channel did not close on EOF")
	}
}
