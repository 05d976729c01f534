package reliability

import (
	"time"

	"github.com/driftveil/raknet/internal/protocol"
)

// Tunables are the handful of protocol limits SPEC_FULL.md's Config makes
// overridable at bind/dial time instead of compiled-in: the
// internal/protocol package constants remain the defaults (and the source
// of truth for anything not listed here, like the wire-fixed 32 ordering
// channels), but a deployment that wants a smaller MTU ceiling or a
// different MinRTO or MaxResends passes a Tunables derived from its Config
// into NewLayer rather than recompiling. The inactivity timeout and ping
// interval are not Tunables; the Transport reads them from its Config.
type Tunables struct {
	MaxMTU                 int
	MaxEncapsulatedPayload int
	MinRTO                 time.Duration
	MaxResends             int
}

// DefaultTunables returns the compiled-in protocol defaults (spec §6, §9).
func DefaultTunables() Tunables {
	return Tunables{
		MaxMTU:                 protocol.MaxMTU,
		MaxEncapsulatedPayload: protocol.MaxEncapsulatedPayload,
		MinRTO:                 protocol.MinRTO,
		MaxResends:             protocol.MaxResends,
	}
}
