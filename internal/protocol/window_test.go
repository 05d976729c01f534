package protocol

import "testing"

func TestReceiveWindowFirstMessageIsNew(t *testing.T) {
	w := NewReceiveWindow()
	if !w.Receive(0) {
		t.Fatal("first Receive(0) should be new")
	}
}

func TestReceiveWindowDuplicateIsRejected(t *testing.T) {
	w := NewReceiveWindow()
	w.Receive(5)
	if w.Receive(5) {
		t.Fatal("second Receive(5) should be a duplicate")
	}
}

func TestReceiveWindowOutOfOrderThenGapFilled(t *testing.T) {
	w := NewReceiveWindow()
	if !w.Receive(3) {
		t.Fatal("Receive(3) should be new")
	}
	if !w.Receive(1) {
		t.Fatal("Receive(1) should be new")
	}
	if !w.Receive(2) {
		t.Fatal("Receive(2) should be new")
	}
	if !w.Receive(0) {
		t.Fatal("Receive(0) should be new")
	}
	// All of 0..3 now seen; resends of any of them must dedup.
	for i := uint32(0); i <= 3; i++ {
		if w.Receive(i) {
			t.Fatalf("Receive(%d) resend should be a duplicate", i)
		}
	}
}

func TestReceiveWindowStaleBelowWatermarkIsDuplicate(t *testing.T) {
	w := NewReceiveWindow()
	for i := uint32(0); i < 10; i++ {
		w.Receive(i)
	}
	if w.Receive(2) {
		t.Fatal("Receive(2) after watermark has advanced past it should be a duplicate")
	}
}

func TestReceiveWindowDoesNotGrowUnbounded(t *testing.T) {
	w := NewReceiveWindow()
	for i := uint32(0); i < 100000; i++ {
		if !w.Receive(i) {
			t.Fatalf("Receive(%d) in strictly increasing sequence should always be new", i)
		}
	}
	if len(w.bitmap) != WindowSize/8 {
		t.Fatalf("bitmap grew: len=%d", len(w.bitmap))
	}
}

func TestReceiveWindowFarAheadSlides(t *testing.T) {
	w := NewReceiveWindow()
	w.Receive(0)
	if !w.Receive(WindowSize * 2) {
		t.Fatal("Receive far ahead of the window should be new")
	}
	if !w.Receive(WindowSize*2 - 1) {
		t.Fatal("Receive just behind the new top of the window should still be new")
	}
}
