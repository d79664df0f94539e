package service_test

import (
	"net"
	"time"

	"github.com/stretchr/testify/mock"

	"chat-relay/internal/domain"
)

// mockRegistry is a testify mock of service.Registry.
type mockRegistry struct {
	mock.Mock
}

func (m *mockRegistry) Register(room *domain.Room) error {
	args := m.Called(room)
	return args.Error(0)
}

func (m *mockRegistry) Join(roomID, token string, member *domain.Member) (string, error) {
	args := m.Called(roomID, token, member)
	return args.String(0), args.Error(1)
}

func (m *mockRegistry) Relay(roomID, token, content string, from *net.UDPAddr, now time.Time) (string, []*net.UDPAddr, error) {
	args := m.Called(roomID, token, content, from, now)
	recipients, _ := args.Get(1).([]*net.UDPAddr)
	return args.String(0), recipients, args.Error(2)
}
