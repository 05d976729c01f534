package message

import (
	"net"

	"github.com/driftveil/raknet/internal/bitstream"
	"github.com/driftveil/raknet/internal/protocol"
)

// ConnectionRequestAccepted is sent by the server once the password (if any)
// checks out, echoing the client's own external address back to it — the
// one piece of system-address bookkeeping this spec's handshake keeps from
// full RakNet's larger address list (§4.6).
type ConnectionRequestAccepted struct {
	ClientAddress     net.UDPAddr
	RequestTimestamp  int64
	AcceptedTimestamp int64
}

func (pk *ConnectionRequestAccepted) Decode(s *bitstream.BitStream) (err error) {
	if pk.ClientAddress, err = readAddr(s); err != nil {
		return
	}
	if pk.RequestTimestamp, err = s.ReadI64(); err != nil {
		return
	}
	pk.AcceptedTimestamp, err = s.ReadI64()
	return
}

func (pk *ConnectionRequestAccepted) Encode(s *bitstream.BitStream) (err error) {
	if err = s.WriteU8(protocol.IDConnectionRequestAccepted); err != nil {
		return
	}
	if err = writeAddr(s, &pk.ClientAddress); err != nil {
		return
	}
	if err = s.WriteI64(pk.RequestTimestamp); err != nil {
		return
	}
	return s.WriteI64(pk.AcceptedTimestamp)
}
