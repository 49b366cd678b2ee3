// Package message defines the unit of dissemination and its wire format.
//
// Every message travels as exactly one Capacity-byte frame: the UTF-8 text,
// a single 0x00 separator, the raw 16-byte id, then zero padding to fill the
// frame. Fixed-size frames let the receive path read a whole message in one
// non-blocking read without length prefixes or stream reassembly.
package message

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	// Capacity is the exact size of one frame on the wire.
	Capacity = 128
	// IDSize is the raw size of a message id.
	IDSize = 16
	// SepSize is the size of the separator between text and id.
	SepSize = 1
	// MaxContent is the largest text payload a frame can carry.
	MaxContent = Capacity - SepSize - IDSize
)

var (
	ErrTooLarge         = errors.New("message: content exceeds frame capacity")
	ErrContentHasZero   = errors.New("message: content contains a zero byte")
	ErrMissingSeparator = errors.New("message: frame has no separator")
	ErrCorruptID        = errors.New("message: frame id is corrupt")
)

// Message is an immutable text payload with a globally unique id. The id is
// assigned once at creation and carried verbatim across hops, so every node
// agrees on the identity of a flooded message.
type Message struct {
	Text string
	ID   uuid.UUID
}

// New constructs a locally originated Message with a fresh id.
//
// It fails with ErrTooLarge when text cannot fit a frame alongside the
// separator and id, and with ErrContentHasZero when text contains a 0x00
// byte, which would be indistinguishable from the separator on the wire.
func New(text string) (Message, error) {
	if len(text) > MaxContent {
		return Message{}, fmt.Errorf("%w: %d bytes, max %d", ErrTooLarge, len(text), MaxContent)
	}
	if strings.IndexByte(text, 0) >= 0 {
		return Message{}, ErrContentHasZero
	}
	return Message{Text: text, ID: uuid.New()}, nil
}

// Encode serialises m into exactly one frame: text, separator, id, padding.
//
// Text within MaxContent is a precondition; New never constructs a Message
// beyond it. Decode's permissive UTF-8 replacement can expand received text
// past the limit, so Encode truncates rather than let the separator and id
// run out of bounds. Forward received frames verbatim instead of
// re-encoding them to keep the wire bytes exact.
func (m Message) Encode() [Capacity]byte {
	var frame [Capacity]byte
	n := copy(frame[:MaxContent], m.Text)
	copy(frame[n+SepSize:], m.ID[:])
	return frame
}

// Decode parses a received frame back into a Message.
//
// Text is everything before the first zero byte, decoded permissively:
// invalid UTF-8 sequences are replaced, never rejected. The 16 bytes after
// the separator are the id. Decode fails with ErrMissingSeparator when no
// zero byte leaves room for an id, and with ErrCorruptID when the id bytes
// cannot be read.
func Decode(b []byte) (Message, error) {
	sep := bytes.IndexByte(b, 0)
	if sep < 0 || sep > MaxContent || sep+SepSize+IDSize > len(b) {
		return Message{}, ErrMissingSeparator
	}

	id, err := uuid.FromBytes(b[sep+SepSize : sep+SepSize+IDSize])
	if err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrCorruptID, err)
	}

	text := strings.ToValidUTF8(string(b[:sep]), "�")
	return Message{Text: text, ID: id}, nil
}
