package message

import (
	"net"

	"github.com/driftveil/raknet/internal/bitstream"
	"github.com/driftveil/raknet/internal/protocol"
)

// NewIncomingConnection completes the handshake from the client side: sent
// in response to ConnectionRequestAccepted, after which the client
// transitions to CONNECTED (§4.6).
type NewIncomingConnection struct {
	ServerAddress     net.UDPAddr
	RequestTimestamp  int64
	AcceptedTimestamp int64
}

func (pk *NewIncomingConnection) Decode(s *bitstream.BitStream) (err error) {
	if pk.ServerAddress, err = readAddr(s); err != nil {
		return
	}
	if pk.RequestTimestamp, err = s.ReadI64(); err != nil {
		return
	}
	pk.AcceptedTimestamp, err = s.ReadI64()
	return
}

func (pk *NewIncomingConnection) Encode(s *bitstream.BitStream) (err error) {
	if err = s.WriteU8(protocol.IDNewIncomingConnection); err != nil {
		return
	}
	if err = writeAddr(s, &pk.ServerAddress); err != nil {
		return
	}
	if err = s.WriteI64(pk.RequestTimestamp); err != nil {
		return
	}
	return s.WriteI64(pk.AcceptedTimestamp)
}
