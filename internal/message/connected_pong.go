package message

import (
	"github.com/driftveil/raknet/internal/bitstream"
	"github.com/driftveil/raknet/internal/protocol"
)

// ConnectedPong answers a ConnectedPing, echoing its timestamp alongside
// the responder's own, so the sender can compute a round-trip sample.
type ConnectedPong struct {
	ClientTimestamp int64
	ServerTimestamp int64
}

func (pk *ConnectedPong) Decode(s *bitstream.BitStream) (err error) {
	if pk.ClientTimestamp, err = s.ReadI64(); err != nil {
		return
	}
	pk.ServerTimestamp, err = s.ReadI64()
	return
}

func (pk *ConnectedPong) Encode(s *bitstream.BitStream) (err error) {
	if err = s.WriteU8(protocol.IDConnectedPong); err != nil {
		return
	}
	if err = s.WriteI64(pk.ClientTimestamp); err != nil {
		return
	}
	return s.WriteI64(pk.ServerTimestamp)
}
