// Package hub owns the shared room/session state. Three execution
// contexts touch it concurrently: the admission listener, the relay
// loop and the liveness sweeper. Every operation that reads or mutates
// a room runs under the hub's single lock, so no caller can ever
// observe a half-updated room or member set. Recipient lists are
// snapshotted under the lock and handed out as copies; the actual
// datagram sends happen outside it.
package hub

import (
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"chat-relay/internal/domain"
)

// Hub is the single owned store mapping room id -> room.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*domain.Room
	log   *logrus.Entry
}

// New creates an empty hub.
func New(logger *logrus.Logger) *Hub {
	if logger == nil {
		panic("logger cannot be nil for Hub")
	}
	return &Hub{
		rooms: make(map[string]*domain.Room),
		log:   logger.WithField("component", "hub"),
	}
}

// Register inserts a fully-formed room. The room must already contain
// its host member: from the instant it is visible here, the relay path
// may address it.
func (h *Hub) Register(room *domain.Room) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[room.ID]; ok {
		return ErrRoomExists
	}
	h.rooms[room.ID] = room
	h.log.WithFields(logrus.Fields{
		"room_id":   room.ID,
		"room_name": room.Name,
	}).Info("Room registered")
	return nil
}

// Join adds a member to an existing room and returns the room's display
// name for the admission response.
func (h *Hub) Join(roomID, token string, member *domain.Member) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[roomID]
	if !ok {
		return "", ErrRoomNotFound
	}
	room.AddMember(token, member, false)
	h.log.WithFields(logrus.Fields{
		"room_id":  roomID,
		"username": member.Username,
		"members":  len(room.Members),
	}).Info("Member joined room")
	return room.Name, nil
}

// Relay resolves one inbound chat datagram against the store: it
// authenticates the token within the room, refreshes the sender's
// activity and endpoint, appends the message to the transcript and
// snapshots the other members' addresses. The whole step runs under one
// lock acquisition, so a concurrent eviction of the same member yields
// exactly "still present, refreshed" or "already gone, dropped".
func (h *Hub) Relay(roomID, token, content string, from *net.UDPAddr, now time.Time) (string, []*net.UDPAddr, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[roomID]
	if !ok {
		return "", nil, ErrRoomNotFound
	}
	member, ok := room.Member(token)
	if !ok {
		return "", nil, ErrMemberNotFound
	}
	member.Touch(now, from)
	room.Append(domain.Message{
		Sender:    member.Username,
		Content:   content,
		Timestamp: now,
	})
	return member.Username, room.MemberAddrs(token), nil
}

// EvictIdle removes every member whose last activity is older than
// cutoff. A room is deleted when its host was evicted (host loss
// invalidates the whole room) or when it is left with no members. This
// is the only path that reclaims rooms. Returns the number of evicted
// members and deleted rooms.
func (h *Hub) EvictIdle(cutoff time.Time) (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	evicted, deleted := 0, 0
	for id, room := range h.rooms {
		viable := true
		for token, member := range room.Members {
			if !member.Idle(cutoff) {
				continue
			}
			if !room.RemoveMember(token) {
				viable = false
			}
			evicted++
			h.log.WithFields(logrus.Fields{
				"room_id":  id,
				"username": member.Username,
				"is_host":  member.IsHost,
			}).Info("Idle member evicted")
		}
		if !viable || len(room.Members) == 0 {
			delete(h.rooms, id)
			deleted++
			h.log.WithField("room_id", id).Info("Room removed")
		}
	}
	return evicted, deleted
}

// HasRoom reports whether a room is currently addressable.
func (h *Hub) HasRoom(roomID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[roomID]
	return ok
}

// MemberCount returns the number of members in a room, or 0 when the
// room does not exist.
func (h *Hub) MemberCount(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	room, ok := h.rooms[roomID]
	if !ok {
		return 0
	}
	return len(room.Members)
}

// TranscriptLen returns the transcript length of a room, or 0 when the
// room does not exist.
func (h *Hub) TranscriptLen(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	room, ok := h.rooms[roomID]
	if !ok {
		return 0
	}
	return len(room.Transcript)
}
