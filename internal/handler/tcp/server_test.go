package tcp_test

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tcphandler "chat-relay/internal/handler/tcp"
	"chat-relay/internal/hub"
	"chat-relay/internal/protocol"
	"chat-relay/internal/service"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// startServer runs an admission server on a loopback listener and
// returns its address plus the hub it mutates.
func startServer(t *testing.T) (string, *hub.Hub) {
	t.Helper()
	log := testLogger()
	h := hub.New(log)
	admission, err := service.NewAdmissionService(h, log)
	require.NoError(t, err)
	srv := tcphandler.NewServer(admission, 2*time.Second, log)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		srv.Serve(ctx, listener)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return listener.Addr().String(), h
}

// exchange performs one full one-shot admission round trip.
func exchange(t *testing.T, addr string, op protocol.Operation, identifier, payload string) *protocol.Request {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	header := protocol.Header{
		IdentifierLen: byte(len(identifier)),
		Operation:     op,
		State:         protocol.StateRequest,
		PayloadLen:    len(payload),
	}
	frame := append(header.Encode(), []byte(identifier+payload)...)
	_, err = conn.Write(frame)
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	resp, err := protocol.ReadRequest(conn)
	require.NoError(t, err)
	return resp
}

func TestServer_CreateRoom(t *testing.T) {
	addr, h := startServer(t)

	resp := exchange(t, addr, protocol.OpCreate, "lobby", "alice")

	assert.Equal(t, protocol.StateSuccess, resp.Header.State)
	assert.Equal(t, protocol.OpCreate, resp.Header.Operation)
	assert.Equal(t, "lobby", resp.Identifier, "response echoes the request identifier")

	var result protocol.CreateResult
	require.NoError(t, json.Unmarshal([]byte(resp.Payload), &result))
	assert.Len(t, result.RoomID, 8)
	assert.NotEmpty(t, result.Token)
	assert.True(t, h.HasRoom(result.RoomID))
	assert.Equal(t, 1, h.MemberCount(result.RoomID), "creator registered as the sole (host) member")
}

func TestServer_JoinRoom(t *testing.T) {
	addr, h := startServer(t)

	var created protocol.CreateResult
	createResp := exchange(t, addr, protocol.OpCreate, "lobby", "alice")
	require.NoError(t, json.Unmarshal([]byte(createResp.Payload), &created))

	resp := exchange(t, addr, protocol.OpJoin, created.RoomID, "bob")

	assert.Equal(t, protocol.StateSuccess, resp.Header.State)
	assert.Equal(t, created.RoomID, resp.Identifier)

	var joined protocol.JoinResult
	require.NoError(t, json.Unmarshal([]byte(resp.Payload), &joined))
	assert.Equal(t, created.RoomID, joined.RoomID)
	assert.Equal(t, "lobby", joined.RoomName)
	assert.NotEmpty(t, joined.Token)
	assert.NotEqual(t, created.Token, joined.Token)
	assert.Equal(t, 2, h.MemberCount(created.RoomID))
}

func TestServer_JoinRoom_NotFound(t *testing.T) {
	addr, h := startServer(t)

	resp := exchange(t, addr, protocol.OpJoin, "deadbeef", "bob")

	assert.Equal(t, protocol.StateError, resp.Header.State)
	assert.Equal(t, "deadbeef", resp.Identifier)
	assert.Contains(t, resp.Payload, "room not found")
	assert.False(t, h.HasRoom("deadbeef"), "a failed join must not create the room")
}

func TestServer_IgnoresUnknownOperation(t *testing.T) {
	addr, _ := startServer(t)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	header := protocol.Header{
		IdentifierLen: 1,
		Operation:     99,
		State:         protocol.StateRequest,
		PayloadLen:    0,
	}
	_, err = conn.Write(append(header.Encode(), 'x'))
	require.NoError(t, err)

	// No response is defined; the server just closes the connection.
	conn.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 1)
	_, err = conn.Read(buf)
	assert.Error(t, err)

	// The listener survives and keeps serving.
	resp := exchange(t, addr, protocol.OpCreate, "lobby", "alice")
	assert.Equal(t, protocol.StateSuccess, resp.Header.State)
}

func TestServer_MalformedRequestDoesNotKillListener(t *testing.T) {
	addr, _ := startServer(t)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	conn.Write([]byte{1, 2})
	conn.Close()

	resp := exchange(t, addr, protocol.OpCreate, "lobby", "alice")
	assert.Equal(t, protocol.StateSuccess, resp.Header.State)
}
