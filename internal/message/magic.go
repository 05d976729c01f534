package message

import (
	"errors"

	"github.com/driftveil/raknet/internal/bitstream"
	"github.com/driftveil/raknet/internal/protocol"
)

// ErrBadMagic indicates a decoded offline message didn't carry the expected
// 16-byte magic, meaning it's either malformed or not a RakNet offline
// message at all — the caller should drop it silently per §4.3.
var ErrBadMagic = errors.New("message: bad offline message magic")

func writeMagic(s *bitstream.BitStream) error {
	return s.WriteBytes(protocol.OfflineMessageID[:])
}

func readMagic(s *bitstream.BitStream) error {
	got, err := s.ReadBytes(len(protocol.OfflineMessageID))
	if err != nil {
		return err
	}
	for i, b := range got {
		if b != protocol.OfflineMessageID[i] {
			return ErrBadMagic
		}
	}
	return nil
}
