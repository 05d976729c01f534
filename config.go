package raknet

import (
	"fmt"
	"os"
	"time"

	"github.com/driftveil/raknet/internal/protocol"
	"github.com/driftveil/raknet/internal/reliability"
	"gopkg.in/yaml.v3"
)

// Config carries the tunable constants SPEC_FULL.md §2.1 calls for: the MTU
// ceiling, retransmission/keepalive/timeout intervals, the maximum number of
// simultaneously connected peers, and the password a server expects on
// ConnectionRequest. Bind and Dial both accept a *Config; a nil Config means
// DefaultConfig(). Mirrors the YAML-backed tunables convention this corpus
// uses for reliable-transport knobs (HimbeerserverDE-multiserver's
// config.go, Clouded-Sabre-Pseudo-TCP's config package), collapsed into one
// typed struct rather than either's untyped map, since this module's knobs
// are a known, fixed set.
type Config struct {
	// MTU is the on-wire datagram ceiling (§3, §4.4 step 1).
	MTU int `yaml:"mtu"`

	// MinRTO floors the retransmission timeout derived from smoothed RTT
	// (§4.4).
	MinRTO time.Duration `yaml:"min_rto"`

	// MaxResends is the number of unacknowledged retransmit attempts after
	// which a peer is considered lost (§4.4, §4.6).
	MaxResends int `yaml:"max_resends"`

	// PingInterval governs the keepalive ConnectedPing sent after this much
	// outbound silence (§4.6).
	PingInterval time.Duration `yaml:"ping_interval"`

	// InactivityTimeout reaps a peer that hasn't been heard from in this
	// long (§4.6, §5).
	InactivityTimeout time.Duration `yaml:"inactivity_timeout"`

	// TickInterval is the cadence of the single-threaded event loop's tick
	// (§4.2 expansion): how often pending sends, due resends, and keepalive
	// checks are evaluated.
	TickInterval time.Duration `yaml:"tick_interval"`

	// MaxConnections bounds the peer table; a server drops OpenConnectionRequest
	// once it's full rather than accepting past capacity (§4.3 expansion).
	MaxConnections int `yaml:"max_connections"`

	// IncomingPassword is the password a server requires on ConnectionRequest.
	// Empty means no password is required (§4.6, §6).
	IncomingPassword string `yaml:"incoming_password"`
}

// DefaultConfig returns the values this document recommends as defaults
// (§4.4, §4.6, §9's Open Question resolutions): a 1492-byte MTU ceiling, a
// 1-second MinRTO, 10 max resends, a 5-second ping interval, a 10-second
// inactivity timeout, and no password.
func DefaultConfig() *Config {
	return &Config{
		MTU:               protocol.MaxMTU,
		MinRTO:            protocol.MinRTO,
		MaxResends:        protocol.MaxResends,
		PingInterval:      protocol.PingInterval,
		InactivityTimeout: protocol.InactivityTimeout,
		TickInterval:      30 * time.Millisecond,
		MaxConnections:    64,
		IncomingPassword:  "",
	}
}

// LoadConfig reads and unmarshals a YAML config file, starting from
// DefaultConfig so a partial file only overrides what it names.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("raknet: load config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("raknet: parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate rejects a config whose knobs can't produce a working transport.
func (c *Config) validate() error {
	if c.MTU <= 32 {
		return fmt.Errorf("raknet: config: mtu %d too small", c.MTU)
	}
	if c.MinRTO <= 0 {
		return fmt.Errorf("raknet: config: min_rto must be positive")
	}
	if c.MaxResends <= 0 {
		return fmt.Errorf("raknet: config: max_resends must be positive")
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("raknet: config: tick_interval must be positive")
	}
	if c.MaxConnections <= 0 {
		return fmt.Errorf("raknet: config: max_connections must be positive")
	}
	return nil
}

// tunables projects this Config's wire/timing knobs into the
// internal/reliability.Tunables NewLayer expects.
func (c *Config) tunables() reliability.Tunables {
	return reliability.Tunables{
		MaxMTU:                 c.MTU,
		MaxEncapsulatedPayload: c.MTU - 32,
		MinRTO:                 c.MinRTO,
		MaxResends:             c.MaxResends,
	}
}

func configOrDefault(cfg *Config) *Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return cfg
}
