package message

import (
	"net"
	"testing"

	"github.com/driftveil/raknet/internal/bitstream"
)

func roundTrip(t *testing.T, write, read Message) {
	t.Helper()
	s := bitstream.New()
	if err := write.Encode(s); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := s.ReadU8(); err != nil {
		t.Fatalf("read opcode: %v", err)
	}
	if err := read.Decode(s); err != nil {
		t.Fatalf("Decode: %v", err)
	}
}

func TestOpenConnectionRequestRoundTrip(t *testing.T) {
	want := &OpenConnectionRequest{ClientGUID: 0x1122334455}
	got := &OpenConnectionRequest{}
	roundTrip(t, want, got)
	if got.ClientGUID != want.ClientGUID {
		t.Fatalf("ClientGUID = %d, want %d", got.ClientGUID, want.ClientGUID)
	}
}

func TestOpenConnectionReplyRoundTrip(t *testing.T) {
	want := &OpenConnectionReply{ServerGUID: 99}
	got := &OpenConnectionReply{}
	roundTrip(t, want, got)
	if got.ServerGUID != want.ServerGUID {
		t.Fatalf("ServerGUID = %d, want %d", got.ServerGUID, want.ServerGUID)
	}
}

func TestOpenConnectionRequestBadMagicFails(t *testing.T) {
	s := bitstream.New()
	_ = s.WriteU8(0)
	_ = s.WriteBytes([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16})
	_ = s.WriteI64(1)
	if _, err := s.ReadU8(); err != nil {
		t.Fatal(err)
	}
	got := &OpenConnectionRequest{}
	if err := got.Decode(s); err != ErrBadMagic {
		t.Fatalf("Decode with bad magic = %v, want ErrBadMagic", err)
	}
}

func TestConnectionRequestRoundTrip(t *testing.T) {
	want := &ConnectionRequest{ClientGUID: 42, RequestTimestamp: 1000, Password: "s3cr3t"}
	got := &ConnectionRequest{}
	roundTrip(t, want, got)
	if *got != *want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestConnectionRequestAcceptedRoundTrip(t *testing.T) {
	want := &ConnectionRequestAccepted{
		ClientAddress:     net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 54321},
		RequestTimestamp:  10,
		AcceptedTimestamp: 20,
	}
	got := &ConnectionRequestAccepted{}
	roundTrip(t, want, got)
	if !got.ClientAddress.IP.Equal(want.ClientAddress.IP) || got.ClientAddress.Port != want.ClientAddress.Port {
		t.Fatalf("ClientAddress = %v, want %v", got.ClientAddress, want.ClientAddress)
	}
	if got.RequestTimestamp != want.RequestTimestamp || got.AcceptedTimestamp != want.AcceptedTimestamp {
		t.Fatalf("timestamps = %d/%d, want %d/%d", got.RequestTimestamp, got.AcceptedTimestamp, want.RequestTimestamp, want.AcceptedTimestamp)
	}
}

func TestConnectionRequestRefusedRoundTrip(t *testing.T) {
	want := &ConnectionRequestRefused{Reason: "bad password"}
	got := &ConnectionRequestRefused{}
	roundTrip(t, want, got)
	if got.Reason != want.Reason {
		t.Fatalf("Reason = %q, want %q", got.Reason, want.Reason)
	}
}

func TestNewIncomingConnectionRoundTrip(t *testing.T) {
	want := &NewIncomingConnection{
		ServerAddress:     net.UDPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 19132},
		RequestTimestamp:  5,
		AcceptedTimestamp: 6,
	}
	got := &NewIncomingConnection{}
	roundTrip(t, want, got)
	if !got.ServerAddress.IP.Equal(want.ServerAddress.IP) || got.ServerAddress.Port != want.ServerAddress.Port {
		t.Fatalf("ServerAddress = %v, want %v", got.ServerAddress, want.ServerAddress)
	}
}

func TestConnectedPingPongRoundTrip(t *testing.T) {
	ping := &ConnectedPing{ClientTimestamp: 123}
	gotPing := &ConnectedPing{}
	roundTrip(t, ping, gotPing)
	if gotPing.ClientTimestamp != ping.ClientTimestamp {
		t.Fatalf("ClientTimestamp = %d, want %d", gotPing.ClientTimestamp, ping.ClientTimestamp)
	}

	pong := &ConnectedPong{ClientTimestamp: 123, ServerTimestamp: 456}
	gotPong := &ConnectedPong{}
	roundTrip(t, pong, gotPong)
	if *gotPong != *pong {
		t.Fatalf("got %+v, want %+v", gotPong, pong)
	}
}

func TestDisconnectionNotificationRoundTrip(t *testing.T) {
	s := bitstream.New()
	if err := (&DisconnectionNotification{}).Encode(s); err != nil {
		t.Fatal(err)
	}
	id, err := s.ReadU8()
	if err != nil {
		t.Fatal(err)
	}
	if id != 0x13 {
		t.Fatalf("opcode = %#x, want 0x13", id)
	}
}
