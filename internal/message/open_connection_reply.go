package message

import (
	"github.com/driftveil/raknet/internal/bitstream"
	"github.com/driftveil/raknet/internal/protocol"
)

// OpenConnectionReply is the server's answer to OpenConnectionRequest. It
// carries the server's GUID so the client can detect it's talking to the
// same server across a reconnect.
type OpenConnectionReply struct {
	ServerGUID int64
}

func (pk *OpenConnectionReply) Decode(s *bitstream.BitStream) (err error) {
	if err = readMagic(s); err != nil {
		return
	}
	pk.ServerGUID, err = s.ReadI64()
	return
}

func (pk *OpenConnectionReply) Encode(s *bitstream.BitStream) (err error) {
	if err = s.WriteU8(protocol.IDOpenConnectionReply); err != nil {
		return
	}
	if err = writeMagic(s); err != nil {
		return
	}
	return s.WriteI64(pk.ServerGUID)
}
