package message

import (
	"github.com/driftveil/raknet/internal/bitstream"
	"github.com/driftveil/raknet/internal/protocol"
)

// DisconnectionNotification carries no payload; either side may send it to
// tell the other it's closing the connection deliberately.
type DisconnectionNotification struct{}

func (pk *DisconnectionNotification) Decode(s *bitstream.BitStream) error {
	return nil
}

func (pk *DisconnectionNotification) Encode(s *bitstream.BitStream) error {
	return s.WriteU8(protocol.IDDisconnectionNotification)
}
