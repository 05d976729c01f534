package raknet

import (
	"net"
	"time"

	"github.com/driftveil/raknet/internal/bitstream"
	"github.com/driftveil/raknet/internal/message"
	"github.com/driftveil/raknet/internal/protocol"
	"github.com/driftveil/raknet/internal/reliability"
	"github.com/rs/zerolog"
)

// offlineHandler recognizes the 16-byte magic and the two handshake opcodes
// a peer exchanges before it has an entry in the peer table (§4.3): a
// server answers OpenConnectionRequest with OpenConnectionReply and creates
// the UnverifiedConnected peer; a client's OpenConnectionReply moves its own
// already-created peer into the same state and sends ConnectionRequest.
// Generalized from the nearest Go reference's handleOpenConnectionRequest1/2
// control flow (raknet/listener.go), collapsed to this spec's single
// request/reply round trip instead of RakNet's four-message MTU discovery.
type offlineHandler struct {
	log zerolog.Logger
}

func newOfflineHandler(log zerolog.Logger) *offlineHandler {
	return &offlineHandler{log: log}
}

// handle dispatches one datagram from an address with no peer table entry
// yet, or one that Transport recognized as an offline handshake message
// from a known address. Anything that doesn't decode as a recognized offline message is
// dropped silently, per §4.3's "malformed or unrecognized offline datagrams
// are dropped without response."
func (h *offlineHandler) handle(t *Transport, addr net.UDPAddr, data []byte, now time.Time) {
	s := bitstream.From(data)
	id, err := s.ReadU8()
	if err != nil {
		return
	}

	switch id {
	case protocol.IDOpenConnectionRequest:
		h.handleOpenConnectionRequest(t, addr, s, now)
	case protocol.IDOpenConnectionReply:
		h.handleOpenConnectionReply(t, addr, s, now)
	default:
		h.log.Debug().Str("addr", addr.String()).Uint8("id", id).Msg("unrecognized offline message")
	}
}

// handleOpenConnectionRequest is the server-side half of §4.3: validate the
// magic, enforce MaxConnections, and reply. A request from an address
// already in UnverifiedConnected is answered again idempotently (the first
// reply may have been lost) rather than treated as an error — the client
// has no other way to know whether its request arrived.
func (h *offlineHandler) handleOpenConnectionRequest(t *Transport, addr net.UDPAddr, s *bitstream.BitStream, now time.Time) {
	if t.role != roleServer {
		return
	}
	var req message.OpenConnectionRequest
	if err := req.Decode(s); err != nil {
		h.log.Debug().Err(err).Str("addr", addr.String()).Msg("bad OpenConnectionRequest")
		return
	}

	key := addr.String()
	if existing, ok := t.peers[key]; ok {
		if existing.State == reliability.Unconnected || existing.State == reliability.UnverifiedConnected {
			t.sendOffline(&message.OpenConnectionReply{ServerGUID: t.guid}, addr)
		}
		return
	}

	if len(t.peers) >= t.cfg.MaxConnections {
		h.log.Info().Str("addr", addr.String()).Msg("rejecting connection: at capacity")
		return
	}

	peer := reliability.NewPeer(addr, now)
	peer.GUID = req.ClientGUID
	peer.State = reliability.UnverifiedConnected
	t.peers[key] = peer

	t.sendOffline(&message.OpenConnectionReply{ServerGUID: t.guid}, addr)
	h.log.Debug().Str("addr", addr.String()).Msg("offline handshake: sent reply")
}

// handleOpenConnectionReply is the client-side half of §4.3: its own peer
// record was created optimistically by Dial, so this just moves it into
// UnverifiedConnected and starts the reliable half of the handshake by
// sending ConnectionRequest (§4.6).
func (h *offlineHandler) handleOpenConnectionReply(t *Transport, addr net.UDPAddr, s *bitstream.BitStream, now time.Time) {
	if t.role != roleClient {
		return
	}
	var reply message.OpenConnectionReply
	if err := reply.Decode(s); err != nil {
		h.log.Debug().Err(err).Str("addr", addr.String()).Msg("bad OpenConnectionReply")
		return
	}

	peer, ok := t.peers[addr.String()]
	if !ok || peer.State != reliability.Unconnected {
		return
	}
	peer.GUID = reply.ServerGUID
	peer.State = reliability.UnverifiedConnected

	req := &message.ConnectionRequest{
		ClientGUID:       t.guid,
		RequestTimestamp: now.UnixMilli(),
		Password:         t.dialPassword,
	}
	t.sendControl(peer, req, protocol.Reliable, now)
	h.log.Debug().Str("addr", addr.String()).Msg("offline handshake: sent connection request")
}
