package reliability

import "time"

// resendEntry is one outstanding reliable send awaiting acknowledgement. The
// packet itself (not pre-encoded bytes) is kept so a resend can be
// re-encoded into a fresh datagram carrying the current remote-time sample,
// per "re-emitted unchanged" in §4.4 — only the datagram wrapper around it
// is rebuilt each attempt, never the packet's own reliable message number.
type resendEntry struct {
	packet     *EncapsulatedPacket
	firstSent  time.Time
	nextResend time.Time
	attempts   int
}

// resendQueue holds every reliable message this peer is still waiting on an
// ACK for, keyed by reliable message number — generalized from the teacher's
// NACK-triggered `recoveryWindow` into the time-based expiry scan the
// Python reference's `self._resends` ordered dict drives (§4.4).
type resendQueue struct {
	entries map[uint32]*resendEntry
}

func newResendQueue() *resendQueue {
	return &resendQueue{entries: make(map[uint32]*resendEntry)}
}

// Add enqueues a freshly sent reliable packet for retransmission if it goes
// unacknowledged past rto.
func (q *resendQueue) Add(messageNumber uint32, packet *EncapsulatedPacket, now time.Time, rto time.Duration) {
	q.entries[messageNumber] = &resendEntry{
		packet:     packet,
		firstSent:  now,
		nextResend: now.Add(rto),
	}
}

// Remove drops messageNumber from the queue (it's been acked) and reports
// its first-send time for an RTT sample, if it was still outstanding.
func (q *resendQueue) Remove(messageNumber uint32) (firstSent time.Time, ok bool) {
	e, ok := q.entries[messageNumber]
	if !ok {
		return time.Time{}, false
	}
	delete(q.entries, messageNumber)
	return e.firstSent, true
}

// Due returns the message numbers whose resend deadline has passed, in no
// particular order. The caller looks up each one's Packet and Attempts to
// decide between a retransmit and a lost-peer disconnect (MaxResends).
func (q *resendQueue) Due(now time.Time) []uint32 {
	var due []uint32
	for n, e := range q.entries {
		if !e.nextResend.After(now) {
			due = append(due, n)
		}
	}
	return due
}

// Attempts reports how many times messageNumber has been resent so far.
func (q *resendQueue) Attempts(messageNumber uint32) int {
	e, ok := q.entries[messageNumber]
	if !ok {
		return 0
	}
	return e.attempts
}

// Packet returns the queued packet for messageNumber.
func (q *resendQueue) Packet(messageNumber uint32) *EncapsulatedPacket {
	e, ok := q.entries[messageNumber]
	if !ok {
		return nil
	}
	return e.packet
}

// Reschedule bumps the attempt count and sets the next resend deadline after
// a retransmit.
func (q *resendQueue) Reschedule(messageNumber uint32, now time.Time, rto time.Duration) {
	e, ok := q.entries[messageNumber]
	if !ok {
		return
	}
	e.attempts++
	e.nextResend = now.Add(rto)
}

// Len reports how many reliable sends are currently outstanding.
func (q *resendQueue) Len() int {
	return len(q.entries)
}
