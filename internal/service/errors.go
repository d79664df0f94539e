package service

import "errors"

var (
	// ErrRoomNotFound is returned when a join names a room id that is
	// not (or no longer) registered.
	ErrRoomNotFound = errors.New("room not found")
	// ErrUnknownToken is returned on the relay path when the session
	// token is unknown in the addressed room; the caller drops the
	// datagram silently.
	ErrUnknownToken = errors.New("unknown or stale session token")
	// ErrInternal hides unexpected failures from the wire.
	ErrInternal = errors.New("internal server error")
)
