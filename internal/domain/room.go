package domain

import "net"

// Room is a named chat channel. It carries no locking of its own; all
// access is serialized by the hub that owns it.
type Room struct {
	ID   string
	Name string
	// Members maps session token -> member. A token belongs to exactly
	// one room and is never reused.
	Members   map[string]*Member
	HostToken string
	// Transcript is append-only and never trimmed. Long-lived rooms grow
	// without bound; this is a known limitation.
	Transcript []Message
}

// NewRoom builds an empty room. The caller is expected to add the host
// member before the room becomes visible to the relay path.
func NewRoom(id, name string) *Room {
	return &Room{
		ID:      id,
		Name:    name,
		Members: make(map[string]*Member),
	}
}

// AddMember registers member under token. The host flag records the
// token that owns the room.
func (r *Room) AddMember(token string, member *Member, asHost bool) {
	r.Members[token] = member
	if asHost {
		r.HostToken = token
		member.IsHost = true
	}
}

// RemoveMember deletes the member registered under token. It returns
// false when the removed member was the host: the room is then no
// longer viable and must not outlive the current eviction pass.
func (r *Room) RemoveMember(token string) bool {
	delete(r.Members, token)
	return token != r.HostToken
}

// Member looks up a member by session token.
func (r *Room) Member(token string) (*Member, bool) {
	m, ok := r.Members[token]
	return m, ok
}

// MemberAddrs returns the current addresses of every member except the
// one registered under exceptToken.
func (r *Room) MemberAddrs(exceptToken string) []*net.UDPAddr {
	addrs := make([]*net.UDPAddr, 0, len(r.Members))
	for token, member := range r.Members {
		if token == exceptToken {
			continue
		}
		addrs = append(addrs, member.Addr)
	}
	return addrs
}

// Append records a delivered message in the transcript.
func (r *Room) Append(msg Message) {
	r.Transcript = append(r.Transcript, msg)
}
