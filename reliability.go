package raknet

import (
	"github.com/driftveil/raknet/internal/protocol"
	"github.com/driftveil/raknet/internal/reliability"
)

// Reliability mirrors internal/protocol.Reliability at the façade boundary
// (§3, §6) so a caller of Send never needs to import an internal package to
// name a reliability kind.
type Reliability = protocol.Reliability

const (
	Unreliable          = protocol.Unreliable
	UnreliableSequenced = protocol.UnreliableSequenced
	Reliable            = protocol.Reliable
	ReliableOrdered     = protocol.ReliableOrdered
	ReliableSequenced   = protocol.ReliableSequenced
)

// Stats are the read-only per-peer traffic counters exposed by
// Server.Stats/Client.Stats (§3 expansion).
type Stats = reliability.Stats

// State mirrors a peer's connection-state-machine position (§4.6) at the
// façade boundary.
type State = reliability.State

const (
	Unconnected         = reliability.Unconnected
	UnverifiedConnected = reliability.UnverifiedConnected
	Connected           = reliability.Connected
	Disconnected        = reliability.Disconnected
)
