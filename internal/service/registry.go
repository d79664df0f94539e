package service

import (
	"net"
	"time"

	"chat-relay/internal/domain"
)

// Registry is the shared room/session store the services operate on.
// *hub.Hub is the production implementation; tests substitute a mock.
type Registry interface {
	// Register makes a fully-formed room (host included) addressable.
	Register(room *domain.Room) error
	// Join adds a non-host member and returns the room's display name.
	Join(roomID, token string, member *domain.Member) (string, error)
	// Relay authenticates and refreshes a sender, records the message
	// and returns the sender's username plus the other members'
	// addresses.
	Relay(roomID, token, content string, from *net.UDPAddr, now time.Time) (string, []*net.UDPAddr, error)
}
