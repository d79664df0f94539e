package hub

import "errors"

var (
	// ErrRoomNotFound means no room is registered under the given id.
	ErrRoomNotFound = errors.New("hub: room not found")
	// ErrMemberNotFound means the token is unknown in the room, either
	// because it never existed there or because the member was evicted.
	ErrMemberNotFound = errors.New("hub: member not found")
	// ErrRoomExists means a room id collided on registration.
	ErrRoomExists = errors.New("hub: room already exists")
)
