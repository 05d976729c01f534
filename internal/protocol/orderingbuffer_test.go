package protocol

import (
	"bytes"
	"testing"
)

func TestOrderingBufferDeliversInOrderImmediately(t *testing.T) {
	b := NewOrderingBuffer()
	ready := b.Push(0, []byte("a"))
	if len(ready) != 1 || !bytes.Equal(ready[0], []byte("a")) {
		t.Fatalf("Push(0) = %v, want [a]", ready)
	}
}

func TestOrderingBufferHoldsOutOfOrderPayload(t *testing.T) {
	b := NewOrderingBuffer()
	ready := b.Push(2, []byte("c"))
	if len(ready) != 0 {
		t.Fatalf("Push(2) before 0,1 arrive = %v, want none ready", ready)
	}
	if b.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", b.Pending())
	}
}

func TestOrderingBufferFlushesOnGapFill(t *testing.T) {
	b := NewOrderingBuffer()
	b.Push(2, []byte("c"))
	b.Push(1, []byte("b"))
	ready := b.Push(0, []byte("a"))
	if len(ready) != 3 {
		t.Fatalf("Push(0) after 1,2 buffered = %d items, want 3", len(ready))
	}
	for i, want := range []string{"a", "b", "c"} {
		if string(ready[i]) != want {
			t.Fatalf("ready[%d] = %q, want %q", i, ready[i], want)
		}
	}
	if b.Pending() != 0 {
		t.Fatalf("Pending() after full flush = %d, want 0", b.Pending())
	}
}

func TestOrderingBufferDropsStaleResend(t *testing.T) {
	b := NewOrderingBuffer()
	b.Push(0, []byte("a"))
	ready := b.Push(0, []byte("a-resend"))
	if len(ready) != 0 {
		t.Fatalf("Push(0) resend after delivery = %v, want none", ready)
	}
}

func TestOrderingBufferAcceptSequencedRejectsStale(t *testing.T) {
	b := NewOrderingBuffer()
	if !b.AcceptSequenced(5) {
		t.Fatal("AcceptSequenced(5) on fresh buffer should be accepted")
	}
	if !b.AcceptSequenced(6) {
		t.Fatal("AcceptSequenced(6) after 5 should be accepted")
	}
	if b.AcceptSequenced(4) {
		t.Fatal("AcceptSequenced(4) after 6 should be rejected as stale")
	}
	if b.AcceptSequenced(6) {
		t.Fatal("AcceptSequenced(6) repeated should be rejected as stale")
	}
}
