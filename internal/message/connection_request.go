package message

import (
	"github.com/driftveil/raknet/internal/bitstream"
	"github.com/driftveil/raknet/internal/protocol"
)

// ConnectionRequest is the first message sent over the (now reliable)
// connection, carrying the optional password this server may require and a
// client timestamp that the server echoes back in ConnectionRequestAccepted.
type ConnectionRequest struct {
	ClientGUID       int64
	RequestTimestamp int64
	Password         string
}

func (pk *ConnectionRequest) Decode(s *bitstream.BitStream) (err error) {
	if pk.ClientGUID, err = s.ReadI64(); err != nil {
		return
	}
	if pk.RequestTimestamp, err = s.ReadI64(); err != nil {
		return
	}
	pk.Password, err = s.ReadASCIIString()
	return
}

func (pk *ConnectionRequest) Encode(s *bitstream.BitStream) (err error) {
	if err = s.WriteU8(protocol.IDConnectionRequest); err != nil {
		return
	}
	if err = s.WriteI64(pk.ClientGUID); err != nil {
		return
	}
	if err = s.WriteI64(pk.RequestTimestamp); err != nil {
		return
	}
	return s.WriteASCIIString(pk.Password)
}
