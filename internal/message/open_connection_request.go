package message

import (
	"github.com/driftveil/raknet/internal/bitstream"
	"github.com/driftveil/raknet/internal/protocol"
)

// OpenConnectionRequest is the only offline message the client sends to
// start a handshake. Unlike full RakNet's MTU-discovery pair, this spec's
// offline phase is a single request/reply round trip (§4.3) — there is no
// padding field to probe path MTU.
type OpenConnectionRequest struct {
	ClientGUID int64
}

func (pk *OpenConnectionRequest) Decode(s *bitstream.BitStream) (err error) {
	if err = readMagic(s); err != nil {
		return
	}
	pk.ClientGUID, err = s.ReadI64()
	return
}

func (pk *OpenConnectionRequest) Encode(s *bitstream.BitStream) (err error) {
	if err = s.WriteU8(protocol.IDOpenConnectionRequest); err != nil {
		return
	}
	if err = writeMagic(s); err != nil {
		return
	}
	return s.WriteI64(pk.ClientGUID)
}
