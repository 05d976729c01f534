package raknet

import (
	"net"

	"github.com/rs/zerolog"
)

// Server is the listen-only façade over a Transport (§2 component 6, §6):
// it answers OpenConnectionRequest, validates the configured password on
// ConnectionRequest, and delivers user payloads from every connected peer
// through one set of Handlers. Grounded on the listen-only half of the
// nearest non-Go reference's server/peer split (server.py), expressed in
// the teacher's idiom of one exported type per role rather than Python's
// single Server class juggling both.
type Server struct {
	t *Transport
}

// Bind opens a UDP socket on host:port and starts accepting connections. A
// nil cfg means DefaultConfig(). A nil log means a console zerolog.Logger
// tagged with this transport's instance id.
func Bind(host string, port int, cfg *Config, handlers Handlers, log *zerolog.Logger) (*Server, error) {
	t := newTransport(roleServer, cfg, log)
	t.handlers = handlers
	if err := t.bind(host, port); err != nil {
		return nil, err
	}
	return &Server{t: t}, nil
}

// LocalAddr is the UDP address this server is bound to.
func (srv *Server) LocalAddr() net.Addr { return srv.t.LocalAddr() }

// GUID is this server's 64-bit RakNet GUID, sent in OpenConnectionReply.
func (srv *Server) GUID() int64 { return srv.t.GUID() }

// Send posts payload to a connected peer with the given reliability and
// ordering channel (§6).
func (srv *Server) Send(addr net.UDPAddr, payload []byte, rel Reliability, channel byte) (uint32, error) {
	return srv.t.Send(addr, payload, rel, channel)
}

// ClosePeer disconnects one connected peer.
func (srv *Server) ClosePeer(addr net.UDPAddr) { srv.t.ClosePeer(addr) }

// Stats reports a connected peer's traffic counters.
func (srv *Server) Stats(addr net.UDPAddr) (Stats, bool) { return srv.t.Stats(addr) }

// Close disconnects every peer and shuts the listener down.
func (srv *Server) Close() error { return srv.t.Close() }
