package reliability

import (
	"net"
	"time"

	"github.com/driftveil/raknet/internal/protocol"
)

// State is a peer's position in the connection state machine (§4.6).
type State uint8

const (
	Unconnected State = iota
	UnverifiedConnected
	Connected
	Disconnected
)

func (s State) String() string {
	switch s {
	case Unconnected:
		return "UNCONNECTED"
	case UnverifiedConnected:
		return "UNVERIFIED_CONNECTED"
	case Connected:
		return "CONNECTED"
	case Disconnected:
		return "DISCONNECTED"
	default:
		return "UNKNOWN"
	}
}

// DisconnectReason explains why a peer left the Connected state.
type DisconnectReason uint8

const (
	ReasonRemoteDisconnect DisconnectReason = iota
	ReasonTimeout
	ReasonRefused
	ReasonClosed
)

func (r DisconnectReason) String() string {
	switch r {
	case ReasonRemoteDisconnect:
		return "REMOTE_DISCONNECT"
	case ReasonTimeout:
		return "TIMEOUT"
	case ReasonRefused:
		return "REFUSED"
	case ReasonClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Stats are the read-only diagnostic counters exposed by Peer.Stats (§3
// expansion) — any server-shaped component in this corpus that tracks
// connections tracks at least this much.
type Stats struct {
	DatagramsSent     uint64
	DatagramsReceived uint64
	BytesSent         uint64
	BytesReceived     uint64
}

// Peer is the full reliability state kept for one remote address (§3).
// Mutated only by Layer, only from the Transport's single tick loop — see
// §5's single-writer discipline.
type Peer struct {
	Address net.UDPAddr
	GUID    int64

	Created     time.Time
	LastReceive time.Time

	State            State
	DeclaredPassword string

	nextMessageNumber   uint32
	nextOrderingIndex   [protocol.NumOrderingChannels]uint32
	orderingBuffers     [protocol.NumOrderingChannels]*protocol.OrderingBuffer
	receiveWindow       *protocol.ReceiveWindow
	pendingAcks         *protocol.RangeList
	resends             *resendQueue
	rtt                 rttEstimator
	remoteTime          uint32
	haveRemoteTime      bool
	lastOutboundTraffic time.Time

	// outbox holds encapsulated packets queued by Send but not yet coalesced
	// into an outbound datagram by the next Tick (§4.4 step 5).
	outbox []*EncapsulatedPacket

	stats Stats
}

// NewPeer returns a freshly created peer record in the Unconnected state.
func NewPeer(addr net.UDPAddr, now time.Time) *Peer {
	p := &Peer{
		Address:             addr,
		Created:             now,
		LastReceive:         now,
		lastOutboundTraffic: now,
		State:               Unconnected,
		receiveWindow:       protocol.NewReceiveWindow(),
		pendingAcks:         protocol.NewRangeList(),
		resends:             newResendQueue(),
	}
	for i := range p.orderingBuffers {
		p.orderingBuffers[i] = protocol.NewOrderingBuffer()
	}
	return p
}

// Stats returns a snapshot of this peer's traffic counters.
func (p *Peer) Stats() Stats {
	return p.stats
}

// Idle reports whether this peer hasn't been heard from since before the
// given deadline, meaning it should be reaped (§5, §4.6).
func (p *Peer) Idle(now time.Time, timeout time.Duration) bool {
	return now.Sub(p.LastReceive) >= timeout
}

// NeedsKeepalive reports whether PingInterval of outbound silence has
// elapsed, meaning a ConnectedPing should be sent (§4.6).
func (p *Peer) NeedsKeepalive(now time.Time, interval time.Duration) bool {
	return now.Sub(p.lastOutboundTraffic) >= interval
}
