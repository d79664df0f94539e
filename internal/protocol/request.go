package protocol

import (
	"errors"
	"io"
)

// ErrIncompleteRequest is returned when the stream ends before the
// declared identifier has arrived. A payload shorter than declared is
// tolerated (the peer may simply have less to say than its header
// claims); a missing identifier is not.
var ErrIncompleteRequest = errors.New("protocol: incomplete request body")

// Request is one decoded admission exchange message: the header plus
// its two-part body. Identifier is the room name on create and the room
// id on join; Payload carries the username on requests.
type Request struct {
	Header     Header
	Identifier string
	Payload    string
}

// ReadRequest reads exactly one admission message from r: a 32-byte
// header followed by identifier and payload bytes. It accumulates from
// the stream until the declared total has arrived or the stream ends,
// so a short body never blocks the caller beyond the transport's own
// read deadline.
func ReadRequest(r io.Reader) (*Request, error) {
	head := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, head); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrShortHeader
		}
		return nil, err
	}
	header, err := DecodeHeader(head)
	if err != nil {
		return nil, err
	}

	total := int(header.IdentifierLen) + header.PayloadLen
	body := make([]byte, 0, total)
	chunk := make([]byte, 4096)
	for len(body) < total {
		want := total - len(body)
		if want > len(chunk) {
			want = len(chunk)
		}
		n, err := r.Read(chunk[:want])
		body = append(body, chunk[:n]...)
		if err != nil {
			break
		}
	}
	if len(body) < int(header.IdentifierLen) {
		return nil, ErrIncompleteRequest
	}

	return &Request{
		Header:     header,
		Identifier: string(body[:header.IdentifierLen]),
		Payload:    string(body[header.IdentifierLen:]),
	}, nil
}
