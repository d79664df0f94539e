package service

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	nanoid "github.com/jaevor/go-nanoid"
	"github.com/sirupsen/logrus"

	"chat-relay/internal/domain"
	"chat-relay/internal/hub"
)

// roomIDLength keeps room ids short enough to type by hand; the id is
// opaque but makes no claim of cryptographic unguessability.
const roomIDLength = 8

const roomIDAlphabet = "0123456789abcdef"

// Admission is the outcome of a successful create or join: the session
// token is the sole credential binding the member to the room.
type Admission struct {
	Token    string
	RoomID   string
	RoomName string
}

// AdmissionService implements the control-plane operations: creating
// rooms and admitting members, issuing one fresh session token per
// admission.
type AdmissionService struct {
	registry  Registry
	newRoomID func() string
	log       *logrus.Entry
}

// NewAdmissionService creates an AdmissionService.
func NewAdmissionService(registry Registry, logger *logrus.Logger) (*AdmissionService, error) {
	if registry == nil {
		panic("Registry cannot be nil for AdmissionService")
	}
	if logger == nil {
		panic("logger cannot be nil for AdmissionService")
	}
	newRoomID, err := nanoid.CustomASCII(roomIDAlphabet, roomIDLength)
	if err != nil {
		return nil, fmt.Errorf("service.NewAdmissionService: room id generator: %w", err)
	}
	return &AdmissionService{
		registry:  registry,
		newRoomID: newRoomID,
		log:       logger.WithField("component", "admission"),
	}, nil
}

// CreateRoom allocates a new room named name and registers the
// requester as its host member.
func (s *AdmissionService) CreateRoom(name, username string, addr *net.UDPAddr) (*Admission, error) {
	token := uuid.NewString()
	room := domain.NewRoom(s.newRoomID(), name)
	room.AddMember(token, &domain.Member{
		Addr:         addr,
		Username:     username,
		LastActivity: time.Now(),
	}, true)

	// Id collisions are possible with 8-char ids; retry with a fresh id
	// rather than surfacing the clash to the client.
	for {
		err := s.registry.Register(room)
		if err == nil {
			break
		}
		if !errors.Is(err, hub.ErrRoomExists) {
			s.log.WithError(err).WithField("room_name", name).Error("Failed to register new room")
			return nil, ErrInternal
		}
		room.ID = s.newRoomID()
	}

	s.log.WithFields(logrus.Fields{
		"room_id":  room.ID,
		"username": username,
	}).Info("Room created")
	return &Admission{Token: token, RoomID: room.ID, RoomName: name}, nil
}

// JoinRoom admits a new non-host member into an existing room.
func (s *AdmissionService) JoinRoom(roomID, username string, addr *net.UDPAddr) (*Admission, error) {
	token := uuid.NewString()
	roomName, err := s.registry.Join(roomID, token, &domain.Member{
		Addr:         addr,
		Username:     username,
		LastActivity: time.Now(),
	})
	if err != nil {
		if errors.Is(err, hub.ErrRoomNotFound) {
			s.log.WithField("room_id", roomID).Warn("Join rejected: room not found")
			return nil, ErrRoomNotFound
		}
		s.log.WithError(err).WithField("room_id", roomID).Error("Failed to join room")
		return nil, ErrInternal
	}

	s.log.WithFields(logrus.Fields{
		"room_id":  roomID,
		"username": username,
	}).Info("Member admitted")
	return &Admission{Token: token, RoomID: roomID, RoomName: roomName}, nil
}
