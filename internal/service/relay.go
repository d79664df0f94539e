package service

import (
	"errors"
	"net"
	"time"

	"github.com/sirupsen/logrus"

	"chat-relay/internal/hub"
	"chat-relay/internal/protocol"
)

// Broadcast is the fan-out plan for one authenticated datagram: the
// formatted text and every recipient it goes to. The sender is never
// among the recipients.
type Broadcast struct {
	Payload    []byte
	Recipients []*net.UDPAddr
}

// RelayService implements the data-plane side: it authenticates inbound
// datagrams against the registry and turns them into broadcast plans.
// All failures are returned to the caller for a silent drop; the relay
// path never answers the sender.
type RelayService struct {
	registry Registry
	log      *logrus.Entry
}

// NewRelayService creates a RelayService.
func NewRelayService(registry Registry, logger *logrus.Logger) *RelayService {
	if registry == nil {
		panic("Registry cannot be nil for RelayService")
	}
	if logger == nil {
		panic("logger cannot be nil for RelayService")
	}
	return &RelayService{
		registry: registry,
		log:      logger.WithField("component", "relay"),
	}
}

// Deliver resolves one parsed datagram from addr into a broadcast plan.
// The member's activity clock and endpoint are refreshed as a side
// effect, and the message is recorded in the room transcript.
func (s *RelayService) Deliver(dg protocol.Datagram, from *net.UDPAddr) (*Broadcast, error) {
	sender, recipients, err := s.registry.Relay(dg.RoomID, dg.Token, dg.Message, from, time.Now())
	if err != nil {
		logCtx := s.log.WithField("room_id", dg.RoomID)
		switch {
		case errors.Is(err, hub.ErrRoomNotFound):
			logCtx.Debug("Datagram dropped: room not found")
			return nil, ErrRoomNotFound
		case errors.Is(err, hub.ErrMemberNotFound):
			logCtx.Debug("Datagram dropped: unknown token")
			return nil, ErrUnknownToken
		default:
			logCtx.WithError(err).Error("Datagram dropped: registry failure")
			return nil, ErrInternal
		}
	}

	return &Broadcast{
		Payload:    []byte(sender + ": " + dg.Message),
		Recipients: recipients,
	}, nil
}
