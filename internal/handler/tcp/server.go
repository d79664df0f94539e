// Package tcp implements the admission listener: one connection carries
// exactly one request and one response, then is closed. Connections are
// handled concurrently; a failure in one never touches the accept loop.
package tcp

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"chat-relay/internal/protocol"
	"chat-relay/internal/service"
)

// Server accepts admission connections and dispatches them to the
// admission service.
type Server struct {
	admission   *service.AdmissionService
	readTimeout time.Duration
	log         *logrus.Entry
	wg          sync.WaitGroup
}

// NewServer creates an admission server. readTimeout bounds how long a
// connection may take to deliver its full request.
func NewServer(admission *service.AdmissionService, readTimeout time.Duration, logger *logrus.Logger) *Server {
	if admission == nil {
		panic("AdmissionService cannot be nil for tcp.Server")
	}
	if logger == nil {
		panic("logger cannot be nil for tcp.Server")
	}
	return &Server{
		admission:   admission,
		readTimeout: readTimeout,
		log:         logger.WithField("component", "tcp_server"),
	}
}

// Serve accepts connections on listener until ctx is cancelled. Each
// accepted connection is served on its own goroutine. Serve closes the
// listener on cancellation and waits for in-flight connections before
// returning.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	s.log.WithField("addr", listener.Addr().String()).Info("Admission server listening")

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				s.wg.Wait()
				s.log.Info("Admission server stopped")
				return nil
			default:
			}
			s.log.WithError(err).Warn("Accept failed")
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

// handleConn runs the one-shot request/response exchange.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	logCtx := s.log.WithField("peer", conn.RemoteAddr().String())

	conn.SetReadDeadline(time.Now().Add(s.readTimeout))
	req, err := protocol.ReadRequest(conn)
	if err != nil {
		// Malformed or timed-out request: abandon the connection
		// without a response.
		logCtx.WithError(err).Warn("Failed to read admission request")
		return
	}

	if req.Header.State != protocol.StateRequest {
		logCtx.WithFields(logrus.Fields{
			"operation": req.Header.Operation,
			"state":     req.Header.State,
		}).Warn("Ignoring non-request admission message")
		return
	}

	switch req.Header.Operation {
	case protocol.OpCreate:
		s.handleCreate(conn, req, logCtx)
	case protocol.OpJoin:
		s.handleJoin(conn, req, logCtx)
	default:
		logCtx.WithField("operation", req.Header.Operation).Warn("Ignoring unknown admission operation")
	}
}

func (s *Server) handleCreate(conn net.Conn, req *protocol.Request, logCtx *logrus.Entry) {
	adm, err := s.admission.CreateRoom(req.Identifier, req.Payload, peerUDPAddr(conn))
	if err != nil {
		s.respondError(conn, protocol.OpCreate, req.Identifier, err, logCtx)
		return
	}
	frame, err := protocol.EncodeSuccess(protocol.OpCreate, req.Identifier, protocol.CreateResult{
		Token:  adm.Token,
		RoomID: adm.RoomID,
	})
	if err != nil {
		s.respondError(conn, protocol.OpCreate, req.Identifier, service.ErrInternal, logCtx)
		return
	}
	s.write(conn, frame, logCtx)
}

func (s *Server) handleJoin(conn net.Conn, req *protocol.Request, logCtx *logrus.Entry) {
	adm, err := s.admission.JoinRoom(req.Identifier, req.Payload, peerUDPAddr(conn))
	if err != nil {
		s.respondError(conn, protocol.OpJoin, req.Identifier, err, logCtx)
		return
	}
	frame, err := protocol.EncodeSuccess(protocol.OpJoin, req.Identifier, protocol.JoinResult{
		Token:    adm.Token,
		RoomID:   adm.RoomID,
		RoomName: adm.RoomName,
	})
	if err != nil {
		s.respondError(conn, protocol.OpJoin, req.Identifier, service.ErrInternal, logCtx)
		return
	}
	s.write(conn, frame, logCtx)
}

// respondError maps a service error onto a state=2 response echoing the
// request identifier. Unexpected errors are masked behind ErrInternal
// so internal details never reach the wire.
func (s *Server) respondError(conn net.Conn, op protocol.Operation, identifier string, err error, logCtx *logrus.Entry) {
	message := err.Error()
	if !errors.Is(err, service.ErrRoomNotFound) && !errors.Is(err, service.ErrInternal) {
		message = service.ErrInternal.Error()
	}
	s.write(conn, protocol.EncodeError(op, identifier, message), logCtx)
}

func (s *Server) write(conn net.Conn, frame []byte, logCtx *logrus.Entry) {
	conn.SetWriteDeadline(time.Now().Add(s.readTimeout))
	if _, err := conn.Write(frame); err != nil {
		logCtx.WithError(err).Warn("Failed to write admission response")
	}
}

// peerUDPAddr derives the member's initial relay endpoint from the TCP
// peer address. The relay path overwrites it with the real datagram
// source on the member's first message.
func peerUDPAddr(conn net.Conn) *net.UDPAddr {
	if tcpAddr, ok := conn.RemoteAddr().(*net.TCPAddr); ok {
		return &net.UDPAddr{IP: tcpAddr.IP, Port: tcpAddr.Port, Zone: tcpAddr.Zone}
	}
	return nil
}
