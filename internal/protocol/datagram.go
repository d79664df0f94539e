package protocol

import "errors"

// ErrShortDatagram is returned when a relay datagram is too small to
// hold its declared room id and token.
var ErrShortDatagram = errors.New("protocol: short relay datagram")

// Datagram is one parsed relay message:
//
//	[0]      room id length
//	[1]      token length
//	[2..]    room id, then token, then the message
//
// The message has no length field of its own; it is everything left
// after the token.
type Datagram struct {
	RoomID  string
	Token   string
	Message string
}

// ParseDatagram decodes a raw relay datagram.
func ParseDatagram(b []byte) (Datagram, error) {
	if len(b) < 2 {
		return Datagram{}, ErrShortDatagram
	}
	idLen, tokenLen := int(b[0]), int(b[1])
	if len(b) < 2+idLen+tokenLen {
		return Datagram{}, ErrShortDatagram
	}
	return Datagram{
		RoomID:  string(b[2 : 2+idLen]),
		Token:   string(b[2+idLen : 2+idLen+tokenLen]),
		Message: string(b[2+idLen+tokenLen:]),
	}, nil
}

// EncodeDatagram renders a relay datagram into its wire form. It is the
// client-side counterpart of ParseDatagram and is used by tests.
func EncodeDatagram(d Datagram) []byte {
	buf := make([]byte, 0, 2+len(d.RoomID)+len(d.Token)+len(d.Message))
	buf = append(buf, byte(len(d.RoomID)), byte(len(d.Token)))
	buf = append(buf, d.RoomID...)
	buf = append(buf, d.Token...)
	buf = append(buf, d.Message...)
	return buf
}
