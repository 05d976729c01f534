package message

import (
	"fmt"
	"net"

	"github.com/driftveil/raknet/internal/bitstream"
)

// writeAddr encodes an IPv4 address as four raw bytes followed by a
// byte-aligned 16-bit port. This spec has no IPv6 system-address list the
// way full RakNet does (§4.6 only needs to echo the client's own external
// address back to it), so the wire form is kept to the one case this module
// actually needs.
func writeAddr(s *bitstream.BitStream, addr *net.UDPAddr) error {
	ip4 := addr.IP.To4()
	if ip4 == nil {
		return fmt.Errorf("message: address %s is not IPv4", addr)
	}
	if err := s.WriteBytes(ip4); err != nil {
		return err
	}
	return s.WriteU16(uint16(addr.Port))
}

func readAddr(s *bitstream.BitStream) (net.UDPAddr, error) {
	raw, err := s.ReadBytes(4)
	if err != nil {
		return net.UDPAddr{}, err
	}
	port, err := s.ReadU16()
	if err != nil {
		return net.UDPAddr{}, err
	}
	return net.UDPAddr{IP: net.IPv4(raw[0], raw[1], raw[2], raw[3]), Port: int(port)}, nil
}
