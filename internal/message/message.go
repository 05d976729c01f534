// Package message implements the handshake and control messages that travel
// as the payload of an offline datagram or an encapsulated packet: the
// bytes after the offline-message magic (or after reliability framing is
// stripped), starting with a one-byte opcode.
package message

import "github.com/driftveil/raknet/internal/bitstream"

// Message is a control message that can serialize itself to and from a
// BitStream. Encode writes its own opcode byte; Decode does not read one
// back — the caller has already consumed it to decide which Message to
// decode into, so Decode starts at the first field after the opcode.
type Message interface {
	Encode(s *bitstream.BitStream) error
	Decode(s *bitstream.BitStream) error
}
