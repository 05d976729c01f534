package message

import (
	"github.com/driftveil/raknet/internal/bitstream"
	"github.com/driftveil/raknet/internal/protocol"
)

// ConnectedPing is the keepalive probe sent after PingInterval of outbound
// silence (§4.6), and answered with ConnectedPong for RTT measurement.
type ConnectedPing struct {
	ClientTimestamp int64
}

func (pk *ConnectedPing) Decode(s *bitstream.BitStream) (err error) {
	pk.ClientTimestamp, err = s.ReadI64()
	return
}

func (pk *ConnectedPing) Encode(s *bitstream.BitStream) (err error) {
	if err = s.WriteU8(protocol.IDConnectedPing); err != nil {
		return
	}
	return s.WriteI64(pk.ClientTimestamp)
}
