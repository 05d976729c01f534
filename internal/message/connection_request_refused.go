package message

import (
	"github.com/driftveil/raknet/internal/bitstream"
	"github.com/driftveil/raknet/internal/protocol"
)

// ConnectionRequestRefused is sent on a password mismatch (§4.6). The
// teacher has no equivalent — it never validates a password — so this
// message is new, grounded only in the behavioral requirement (see
// DESIGN.md).
type ConnectionRequestRefused struct {
	Reason string
}

func (pk *ConnectionRequestRefused) Decode(s *bitstream.BitStream) (err error) {
	pk.Reason, err = s.ReadASCIIString()
	return
}

func (pk *ConnectionRequestRefused) Encode(s *bitstream.BitStream) (err error) {
	if err = s.WriteU8(protocol.IDConnectionRequestRefused); err != nil {
		return
	}
	return s.WriteASCIIString(pk.Reason)
}
