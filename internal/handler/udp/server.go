// Package udp implements the relay listener: a single receive loop that
// resolves each datagram to completion and fans the message out on the
// same socket. The path is one-way; senders never get a reply, and any
// failure is a silent drop.
package udp

import (
	"context"
	"net"
	"time"

	"github.com/sirupsen/logrus"

	"chat-relay/internal/protocol"
	"chat-relay/internal/service"
)

// readBufferSize bounds one inbound datagram; anything longer is cut at
// the transport.
const readBufferSize = 4096

// wakeInterval is how often the receive call wakes up to check for
// cancellation. It is a self-check only, never an application timeout.
const wakeInterval = time.Second

// Server receives relay datagrams and broadcasts chat messages.
type Server struct {
	relay *service.RelayService
	log   *logrus.Entry
}

// NewServer creates a relay server.
func NewServer(relay *service.RelayService, logger *logrus.Logger) *Server {
	if relay == nil {
		panic("RelayService cannot be nil for udp.Server")
	}
	if logger == nil {
		panic("logger cannot be nil for udp.Server")
	}
	return &Server{
		relay: relay,
		log:   logger.WithField("component", "udp_server"),
	}
}

// Serve receives datagrams on conn until ctx is cancelled. Datagrams
// are handled one at a time; an error in one never stops the loop.
func (s *Server) Serve(ctx context.Context, conn *net.UDPConn) error {
	s.log.WithField("addr", conn.LocalAddr().String()).Info("Relay server listening")
	defer conn.Close()

	buf := make([]byte, readBufferSize)
	for {
		conn.SetReadDeadline(time.Now().Add(wakeInterval))
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-ctx.Done():
				s.log.Info("Relay server stopped")
				return nil
			default:
			}
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			s.log.WithError(err).Warn("Relay receive failed")
			continue
		}
		s.handleDatagram(conn, buf[:n], addr)
	}
}

// handleDatagram parses, authenticates and fans out one datagram. All
// failure modes drop the datagram without feedback to the sender.
func (s *Server) handleDatagram(conn *net.UDPConn, raw []byte, from *net.UDPAddr) {
	dg, err := protocol.ParseDatagram(raw)
	if err != nil {
		s.log.WithField("from", from.String()).Debug("Dropping malformed relay datagram")
		return
	}

	bc, err := s.relay.Deliver(dg, from)
	if err != nil {
		// Unknown room or token; already logged by the service.
		return
	}

	s.broadcast(conn, bc)
}

// broadcast sends the formatted message to every recipient on the
// serving socket, best-effort. Per-recipient send failures are logged
// and ignored; no acknowledgement or retransmission happens at this
// layer.
func (s *Server) broadcast(conn *net.UDPConn, bc *service.Broadcast) {
	for _, addr := range bc.Recipients {
		if addr == nil {
			continue
		}
		if _, err := conn.WriteToUDP(bc.Payload, addr); err != nil {
			s.log.WithError(err).WithField("recipient", addr.String()).Debug("Broadcast send failed")
		}
	}
}
