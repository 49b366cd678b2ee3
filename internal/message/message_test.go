package message

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, text := range []string{"", "x", "hello world", strings.Repeat("a", MaxContent)} {
		m, err := New(text)
		require.NoError(t, err, "text %q", text)

		frame := m.Encode()
		got, err := Decode(frame[:])
		require.NoError(t, err)

		assert.Equal(t, m, got)
	}
}

func TestEncodeLayout(t *testing.T) {
	m, err := New("hello")
	require.NoError(t, err)

	frame := m.Encode()

	assert.Equal(t, []byte("hello"), frame[:5])
	assert.Equal(t, byte(0), frame[5])
	assert.Equal(t, m.ID[:], frame[6:6+IDSize])
	assert.Equal(t, make([]byte, Capacity-6-IDSize), frame[6+IDSize:])
}

func TestNewRejectsOversizedContent(t *testing.T) {
	_, err := New(strings.Repeat("a", MaxContent+1))
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = New(strings.Repeat("a", MaxContent))
	assert.NoError(t, err)
}

func TestNewRejectsZeroByte(t *testing.T) {
	_, err := New("he\x00llo")
	assert.ErrorIs(t, err, ErrContentHasZero)
}

func TestNewAssignsFreshID(t *testing.T) {
	a, err := New("same text")
	require.NoError(t, err)
	b, err := New("same text")
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestDecodeMissingSeparator(t *testing.T) {
	frame := bytes.Repeat([]byte{'a'}, Capacity)
	_, err := Decode(frame)
	assert.ErrorIs(t, err, ErrMissingSeparator)
}

func TestDecodeSeparatorTooLate(t *testing.T) {
	// First zero byte leaves fewer than IDSize bytes behind it.
	frame := bytes.Repeat([]byte{'a'}, Capacity)
	frame[Capacity-IDSize] = 0
	_, err := Decode(frame)
	assert.ErrorIs(t, err, ErrMissingSeparator)
}

func TestDecodeReplacesInvalidUTF8(t *testing.T) {
	m, err := New("ok")
	require.NoError(t, err)
	frame := m.Encode()
	frame[0] = 0xFF // not valid UTF-8

	got, err := Decode(frame[:])
	require.NoError(t, err)
	assert.Equal(t, "�k", got.Text)
	assert.Equal(t, m.ID, got.ID)
}

func TestEncodeClampsOverlongText(t *testing.T) {
	// Permissive decoding can expand received text past MaxContent: every
	// invalid byte becomes a 3-byte replacement rune. Re-encoding such a
	// message must still yield a well-formed frame with the id in bounds.
	var frame [Capacity]byte
	for i := 0; i < MaxContent; i++ {
		if i%2 == 0 {
			frame[i] = 'a'
		} else {
			frame[i] = 0xFF
		}
	}
	id := uuid.New()
	copy(frame[MaxContent+SepSize:], id[:])

	m, err := Decode(frame[:])
	require.NoError(t, err)
	require.Greater(t, len(m.Text), MaxContent, "replacement should expand the text")

	re := m.Encode()
	assert.Equal(t, byte(0), re[MaxContent], "separator stays in bounds")
	assert.Equal(t, id[:], re[MaxContent+SepSize:], "id survives the clamp")

	got, err := Decode(re[:])
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
}

func TestDecodeKeepsWireID(t *testing.T) {
	id := uuid.New()
	m := Message{Text: "carried", ID: id}
	frame := m.Encode()

	got, err := Decode(frame[:])
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
}
