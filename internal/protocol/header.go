// Package protocol implements the wire formats of the chat backend: the
// fixed 32-byte admission header with its ASCII-digit payload length
// field, the request/response framing on top of it, and the relay
// datagram layout. All byte-level encoding and decoding lives here so
// the handlers never index into raw buffers themselves.
package protocol

import (
	"errors"
	"strconv"
)

const (
	// HeaderSize is the fixed size of an admission protocol header.
	HeaderSize = 32

	// MaxPayloadSize bounds a declared request payload. Larger declared
	// lengths are clamped, not rejected, so a hostile length field can
	// never force a large allocation or a failed request.
	MaxPayloadSize = 10240

	// payloadLenDigits is the width of the ASCII decimal length field.
	payloadLenDigits = HeaderSize - 3
)

// Operation selects the admission request kind.
type Operation byte

const (
	OpCreate Operation = 1
	OpJoin   Operation = 2
)

// State marks a message as request, success response or error response.
type State byte

const (
	StateRequest State = 0
	StateSuccess State = 1
	StateError   State = 2
)

// ErrShortHeader is returned when fewer than HeaderSize bytes are
// available to decode.
var ErrShortHeader = errors.New("protocol: short header")

// Header is the decoded form of the 32-byte admission header.
//
// Wire layout:
//
//	[0]     identifier length
//	[1]     operation
//	[2]     state
//	[3..31] payload length, ASCII decimal digits, NUL padded
type Header struct {
	IdentifierLen byte
	Operation     Operation
	State         State
	PayloadLen    int
}

// Encode renders the header into its 32-byte wire form.
func (h Header) Encode() []byte {
	buf := make([]byte, HeaderSize)
	buf[0] = h.IdentifierLen
	buf[1] = byte(h.Operation)
	buf[2] = byte(h.State)
	copy(buf[3:], strconv.Itoa(h.PayloadLen))
	return buf
}

// DecodeHeader parses the first HeaderSize bytes of b. The payload
// length field is parsed permissively (see parsePayloadLen); a malformed
// length never fails the header.
func DecodeHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, ErrShortHeader
	}
	return Header{
		IdentifierLen: b[0],
		Operation:     Operation(b[1]),
		State:         State(b[2]),
		PayloadLen:    parsePayloadLen(b[3:HeaderSize]),
	}, nil
}

// parsePayloadLen scans ASCII decimal digits up to the first NUL or
// non-digit byte. An empty or unparsable field decodes to 0, and any
// value above MaxPayloadSize is clamped to it.
func parsePayloadLen(b []byte) int {
	n := 0
	for _, c := range b {
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
		if n > MaxPayloadSize {
			return MaxPayloadSize
		}
	}
	return n
}
