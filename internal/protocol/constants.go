// Package protocol holds the wire-level constants, enums, and small data
// structures (the dedup window, the ordering buffer, the ACK range-list
// codec) that both the reliability layer and the message codecs build on.
package protocol

import "time"

// OfflineMessageID is the fixed 16-byte magic that precedes every offline
// (pre-connection) message, distinguishing it from a stray or malformed
// datagram.
var OfflineMessageID = [16]byte{
	0x00, 0xFF, 0xFF, 0x00, 0xFE, 0xFE, 0xFE, 0xFE,
	0xFD, 0xFD, 0xFD, 0xFD, 0x12, 0x34, 0x56, 0x78,
}

const (
	// MaxMTU is the on-wire MTU ceiling; datagrams never exceed this.
	MaxMTU = 1492

	// MaxEncapsulatedPayload is the largest single user payload accepted by
	// Send, after subtracting the worst-case encapsulated packet header
	// (reliability + channel + ordering index + message number + length) and
	// the datagram header (ack flag + remote time). Oversize payloads are
	// rejected rather than split (spec Non-goals).
	MaxEncapsulatedPayload = MaxMTU - 32

	// WindowSize bounds the sliding dedup bitmap.
	WindowSize = 1024

	// MinRTO is the floor under the RTO computed from smoothed RTT.
	MinRTO = time.Second

	// MaxResends is the number of unacknowledged retransmit attempts after
	// which a peer is considered lost.
	MaxResends = 10

	// PingInterval governs the keepalive ping sent after this much outbound
	// silence.
	PingInterval = 5 * time.Second

	// InactivityTimeout reaps a peer that hasn't been heard from in this
	// long.
	InactivityTimeout = 10 * time.Second

	// NumOrderingChannels is the number of independent ordering lanes.
	NumOrderingChannels = 32
)
