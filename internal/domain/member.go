package domain

import (
	"net"
	"time"
)

// Member is a room-scoped participant identified by its session token.
type Member struct {
	// Addr is the endpoint chat datagrams are delivered to. It is
	// overwritten on every authenticated datagram so a member survives
	// NAT rebinding or a changed source port.
	Addr *net.UDPAddr
	// Username is chosen at admission time and never changes for the
	// lifetime of the session.
	Username     string
	LastActivity time.Time
	IsHost       bool
}

// Idle reports whether the member has been silent since before cutoff.
func (m *Member) Idle(cutoff time.Time) bool {
	return m.LastActivity.Before(cutoff)
}

// Touch records activity at the given time and endpoint.
func (m *Member) Touch(at time.Time, addr *net.UDPAddr) {
	m.LastActivity = at
	if addr != nil {
		m.Addr = addr
	}
}
