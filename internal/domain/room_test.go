package domain_test

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-relay/internal/domain"
)

func member(port int, name string) *domain.Member {
	return &domain.Member{
		Addr:         &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: port},
		Username:     name,
		LastActivity: time.Now(),
	}
}

func TestRoom_AddMember_HostFlag(t *testing.T) {
	room := domain.NewRoom("id", "lobby")
	host := member(4000, "alice")

	room.AddMember("host-token", host, true)
	room.AddMember("guest-token", member(4001, "bob"), false)

	assert.Equal(t, "host-token", room.HostToken)
	assert.True(t, host.IsHost)
	assert.Len(t, room.Members, 2)
}

func TestRoom_RemoveMember(t *testing.T) {
	room := domain.NewRoom("id", "lobby")
	room.AddMember("host-token", member(4000, "alice"), true)
	room.AddMember("guest-token", member(4001, "bob"), false)

	assert.True(t, room.RemoveMember("guest-token"), "removing a guest keeps the room viable")
	assert.False(t, room.RemoveMember("host-token"), "removing the host invalidates the room")
	assert.Empty(t, room.Members)
}

func TestRoom_MemberAddrs_ExcludesToken(t *testing.T) {
	room := domain.NewRoom("id", "lobby")
	room.AddMember("a", member(4000, "alice"), true)
	room.AddMember("b", member(4001, "bob"), false)
	room.AddMember("c", member(4002, "carol"), false)

	addrs := room.MemberAddrs("b")

	require.Len(t, addrs, 2)
	for _, addr := range addrs {
		assert.NotEqual(t, 4001, addr.Port)
	}
}

func TestMember_Touch(t *testing.T) {
	m := member(4000, "alice")
	was := m.LastActivity
	newAddr := &net.UDPAddr{IP: net.IPv4(10, 0, 0, 9), Port: 9999}

	at := was.Add(time.Minute)
	m.Touch(at, newAddr)

	assert.Equal(t, at, m.LastActivity)
	assert.Equal(t, newAddr, m.Addr)
	assert.False(t, m.Idle(was), "fresh activity is not idle")
	assert.True(t, m.Idle(at.Add(time.Second)))
}
