package reliability

import (
	"github.com/driftveil/raknet/internal/bitstream"
	"github.com/driftveil/raknet/internal/protocol"
)

// encodeAckDatagram writes a standalone ACK-only datagram: the 1-bit "is
// ACK" flag set, followed by the run-length-encoded acked message numbers
// (§3, §4.5). ACKs are always sent in their own datagram, ahead of any
// coalesced payload datagram for the same tick (§4.4).
func encodeAckDatagram(acked *protocol.RangeList) ([]byte, error) {
	s := bitstream.New()
	if err := s.WriteBool(true); err != nil {
		return nil, err
	}
	if err := acked.Encode(s); err != nil {
		return nil, err
	}
	return s.Bytes(), nil
}

// decodeAckDatagram parses an ACK-only datagram body (the "is ACK" bit has
// already been consumed by the caller) into the acknowledged message
// numbers.
func decodeAckDatagram(s *bitstream.BitStream) ([]uint32, error) {
	return protocol.DecodeRangeList(s)
}

// encodePayloadDatagram writes a non-ACK datagram: the "is ACK" bit clear,
// an optional remote system time, then every coalesced encapsulated packet
// back to back.
func encodePayloadDatagram(remoteTime uint32, hasRemoteTime bool, packets []*EncapsulatedPacket) ([]byte, error) {
	s := bitstream.New()
	if err := s.WriteBool(false); err != nil {
		return nil, err
	}
	if err := s.WriteBool(hasRemoteTime); err != nil {
		return nil, err
	}
	if hasRemoteTime {
		if err := s.WriteU32(remoteTime); err != nil {
			return nil, err
		}
	}
	for _, p := range packets {
		if err := p.Encode(s); err != nil {
			return nil, err
		}
	}
	return s.Bytes(), nil
}
