package reliability

import (
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/driftveil/raknet/internal/protocol"
)

func newTestPeer() *Peer {
	return NewPeer(net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 1234}, time.Unix(0, 0))
}

func newTestLayer() *Layer {
	return NewLayer(zerolog.Nop(), DefaultTunables())
}

func TestSendRejectsOversizePayload(t *testing.T) {
	l := newTestLayer()
	p := newTestPeer()
	big := make([]byte, protocol.MaxEncapsulatedPayload+1)
	if _, err := l.Send(p, big, protocol.Reliable, 0, time.Now()); err != ErrPayloadTooLarge {
		t.Fatalf("Send(oversize) = %v, want ErrPayloadTooLarge", err)
	}
}

func TestSendAndTickProducesDatagram(t *testing.T) {
	l := newTestLayer()
	p := newTestPeer()
	now := time.Now()

	if _, err := l.Send(p, []byte("hello"), protocol.Reliable, 0, now); err != nil {
		t.Fatal(err)
	}

	result, err := l.Tick(p, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Datagrams) != 1 {
		t.Fatalf("Tick() produced %d datagrams, want 1", len(result.Datagrams))
	}
	if result.Lost {
		t.Fatal("fresh send should not be Lost")
	}
}

func TestReliableDeliveryAndDedup(t *testing.T) {
	lSend := newTestLayer()
	lRecv := newTestLayer()
	sender := newTestPeer()
	receiver := newTestPeer()
	now := time.Now()

	if _, err := lSend.Send(sender, []byte("payload"), protocol.Reliable, 0, now); err != nil {
		t.Fatal(err)
	}
	result, err := lSend.Tick(sender, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Datagrams) != 1 {
		t.Fatalf("got %d datagrams, want 1", len(result.Datagrams))
	}

	delivered, err := lRecv.HandleDatagram(receiver, result.Datagrams[0], now)
	if err != nil {
		t.Fatal(err)
	}
	if len(delivered) != 1 || string(delivered[0]) != "payload" {
		t.Fatalf("delivered = %v, want [payload]", delivered)
	}

	// Replaying the same datagram must not deliver it a second time.
	delivered, err = lRecv.HandleDatagram(receiver, result.Datagrams[0], now)
	if err != nil {
		t.Fatal(err)
	}
	if len(delivered) != 0 {
		t.Fatalf("replay delivered = %v, want none", delivered)
	}
}

func TestReliableOrderedDeliversInOrderDespiteReorder(t *testing.T) {
	lSend := newTestLayer()
	lRecv := newTestLayer()
	sender := newTestPeer()
	receiver := newTestPeer()
	now := time.Now()

	var datagrams [][]byte
	for _, payload := range []string{"A", "B", "C"} {
		if _, err := lSend.Send(sender, []byte(payload), protocol.ReliableOrdered, 0, now); err != nil {
			t.Fatal(err)
		}
		result, err := lSend.Tick(sender, now)
		if err != nil {
			t.Fatal(err)
		}
		datagrams = append(datagrams, result.Datagrams...)
	}

	// Deliver out of order: C, A, B.
	order := []int{2, 0, 1}
	var delivered [][]byte
	for _, i := range order {
		got, err := lRecv.HandleDatagram(receiver, datagrams[i], now)
		if err != nil {
			t.Fatal(err)
		}
		delivered = append(delivered, got...)
	}

	want := []string{"A", "B", "C"}
	if len(delivered) != len(want) {
		t.Fatalf("delivered %d payloads, want %d", len(delivered), len(want))
	}
	for i, w := range want {
		if string(delivered[i]) != w {
			t.Fatalf("delivered[%d] = %q, want %q", i, delivered[i], w)
		}
	}
}

func TestAckRemovesFromResendQueueAndUpdatesRTT(t *testing.T) {
	lSend := newTestLayer()
	lRecv := newTestLayer()
	sender := newTestPeer()
	receiver := newTestPeer()
	now := time.Now()

	if _, err := lSend.Send(sender, []byte("x"), protocol.Reliable, 0, now); err != nil {
		t.Fatal(err)
	}
	result, err := lSend.Tick(sender, now)
	if err != nil {
		t.Fatal(err)
	}
	if sender.resends.Len() != 1 {
		t.Fatalf("resends.Len() = %d, want 1", sender.resends.Len())
	}

	later := now.Add(50 * time.Millisecond)
	if _, err := lRecv.HandleDatagram(receiver, result.Datagrams[0], later); err != nil {
		t.Fatal(err)
	}
	ackResult, err := lRecv.Tick(receiver, later)
	if err != nil {
		t.Fatal(err)
	}
	if len(ackResult.Datagrams) != 1 {
		t.Fatalf("ack tick produced %d datagrams, want 1", len(ackResult.Datagrams))
	}

	if _, err := lSend.HandleDatagram(sender, ackResult.Datagrams[0], later); err != nil {
		t.Fatal(err)
	}
	if sender.resends.Len() != 0 {
		t.Fatalf("resends.Len() after ack = %d, want 0", sender.resends.Len())
	}
	if !sender.rtt.hasSample {
		t.Fatal("expected an RTT sample after the ack round-tripped")
	}
}

func TestResendAfterRTOAndLostAfterMaxResends(t *testing.T) {
	l := newTestLayer()
	p := newTestPeer()
	now := time.Now()

	if _, err := l.Send(p, []byte("x"), protocol.Reliable, 0, now); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Tick(p, now); err != nil {
		t.Fatal(err)
	}

	t2 := now.Add(2 * protocol.MinRTO)
	result, err := l.Tick(p, t2)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Datagrams) != 1 {
		t.Fatalf("resend tick produced %d datagrams, want 1", len(result.Datagrams))
	}

	// Keep bumping time forward until MaxResends is exceeded.
	tN := t2
	for i := 0; i < protocol.MaxResends; i++ {
		tN = tN.Add(2 * protocol.MinRTO)
		result, err = l.Tick(p, tN)
		if err != nil {
			t.Fatal(err)
		}
		if result.Lost {
			break
		}
	}
	if !result.Lost {
		t.Fatal("expected peer to be marked Lost after MaxResends attempts")
	}
}

func TestUnreliableSequencedDropsStale(t *testing.T) {
	lSend := newTestLayer()
	lRecv := newTestLayer()
	sender := newTestPeer()
	receiver := newTestPeer()
	now := time.Now()

	var datagrams [][]byte
	for _, payload := range []string{"1", "2"} {
		if _, err := lSend.Send(sender, []byte(payload), protocol.UnreliableSequenced, 0, now); err != nil {
			t.Fatal(err)
		}
		result, err := lSend.Tick(sender, now)
		if err != nil {
			t.Fatal(err)
		}
		datagrams = append(datagrams, result.Datagrams...)
	}

	// Deliver newest first, then the stale one.
	got, err := lRecv.HandleDatagram(receiver, datagrams[1], now)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || string(got[0]) != "2" {
		t.Fatalf("got %v, want [2]", got)
	}

	got, err = lRecv.HandleDatagram(receiver, datagrams[0], now)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("stale sequenced packet delivered %v, want none", got)
	}
}
