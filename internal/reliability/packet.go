package reliability

import (
	"github.com/driftveil/raknet/internal/bitstream"
	"github.com/driftveil/raknet/internal/protocol"
)

// EncapsulatedPacket is one reliability-framed unit inside a datagram (§3).
// Several may be coalesced into one outbound datagram by the tick loop.
type EncapsulatedPacket struct {
	Reliability     protocol.Reliability
	OrderingChannel byte
	OrderingIndex   uint32
	MessageNumber   uint32
	Payload         []byte
}

// Encode writes the encapsulated packet header and payload. Reliability
// comes first as a 3-bit field, then an optional 5-bit ordering channel and
// aligned 32-bit ordering index, then an optional aligned 32-bit reliable
// message number, then the aligned 16-bit payload bit length and the
// byte-aligned payload.
func (p *EncapsulatedPacket) Encode(s *bitstream.BitStream) error {
	if err := s.WriteBits(uint64(p.Reliability), 3); err != nil {
		return err
	}
	if p.Reliability.HasOrderingIndex() {
		if err := s.WriteBits(uint64(p.OrderingChannel), 5); err != nil {
			return err
		}
		s.AlignWrite()
		if err := s.WriteU32(p.OrderingIndex); err != nil {
			return err
		}
	}
	if p.Reliability.Reliable() {
		s.AlignWrite()
		if err := s.WriteU32(p.MessageNumber); err != nil {
			return err
		}
	}
	s.AlignWrite()
	if err := s.WriteU16(uint16(len(p.Payload)) * 8); err != nil {
		return err
	}
	s.AlignWrite()
	return s.WriteBytes(p.Payload)
}

// Decode reads one encapsulated packet off the stream. The caller keeps
// decoding packets from the same datagram until the stream is exhausted.
func (p *EncapsulatedPacket) Decode(s *bitstream.BitStream) error {
	rel, err := s.ReadBits(3)
	if err != nil {
		return err
	}
	p.Reliability = protocol.Reliability(rel)

	if p.Reliability.HasOrderingIndex() {
		ch, err := s.ReadBits(5)
		if err != nil {
			return err
		}
		p.OrderingChannel = byte(ch)
		s.AlignRead()
		if p.OrderingIndex, err = s.ReadU32(); err != nil {
			return err
		}
	}

	if p.Reliability.Reliable() {
		s.AlignRead()
		if p.MessageNumber, err = s.ReadU32(); err != nil {
			return err
		}
	}

	s.AlignRead()
	lengthBits, err := s.ReadU16()
	if err != nil {
		return err
	}
	s.AlignRead()

	p.Payload, err = s.ReadBytes(int(lengthBits) / 8)
	return err
}

// HeaderBits returns the size in bits of this packet's header (everything
// before the byte-aligned payload), used by the sender to decide how many
// encapsulated packets fit in one datagram under the MTU ceiling.
func (p *EncapsulatedPacket) HeaderBits() int {
	bits := 3 + 16 // reliability + length prefix
	if p.Reliability.HasOrderingIndex() {
		bits += 5 + 32
	}
	if p.Reliability.Reliable() {
		bits += 32
	}
	// Round up to the next byte boundary for the align before the payload.
	return (bits + 7) / 8 * 8
}
