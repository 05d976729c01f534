package raknet

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/driftveil/raknet/internal/message"
	"github.com/rs/zerolog"
)

// dialRetryInterval is how often Dial resends OpenConnectionRequest while
// waiting for a reply, mirroring §4.3's "offline messages are not tracked
// by the reliability layer" — the caller, not the Layer, must retry them.
const dialRetryInterval = 500 * time.Millisecond

// Client is the dial-capable façade over a Transport (§2 component 6, §6):
// it drives one outbound connection through the full offline-then-reliable
// handshake (§4.3, §4.6) and exposes the same Send/Stats/Close surface as
// Server. Grounded on the dial-capable half of the nearest non-Go
// reference's server/peer split (peer.py's connect()/on_open_connection_reply),
// expressed in the teacher's idiom of a distinct exported type per role.
type Client struct {
	t    *Transport
	addr net.UDPAddr
}

// Dial opens a local UDP socket, drives the handshake against address with
// the given password, and blocks until the peer reaches Connected or ctx is
// done. A nil cfg means DefaultConfig().
func Dial(ctx context.Context, address string, password string, cfg *Config, handlers Handlers, log *zerolog.Logger) (*Client, error) {
	raddr, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return nil, &Error{Kind: ErrKindSocketError, Err: err}
	}

	t := newTransport(roleClient, cfg, log)
	t.dialPassword = password

	connected := make(chan net.UDPAddr, 1)
	userOnConnected := handlers.OnConnected
	handlers.OnConnected = func(addr net.UDPAddr) {
		select {
		case connected <- addr:
		default:
		}
		if userOnConnected != nil {
			userOnConnected(addr)
		}
	}
	t.handlers = handlers

	if err := t.bind("0.0.0.0", 0); err != nil {
		return nil, err
	}
	t.seedPeer(*raddr)

	retry := time.NewTicker(dialRetryInterval)
	defer retry.Stop()
	t.sendOffline(&message.OpenConnectionRequest{ClientGUID: t.guid}, *raddr)

	for {
		select {
		case addr := <-connected:
			return &Client{t: t, addr: addr}, nil
		case <-retry.C:
			t.sendOffline(&message.OpenConnectionRequest{ClientGUID: t.guid}, *raddr)
		case <-ctx.Done():
			t.Close()
			return nil, &Error{Kind: ErrKindConnectionLost, Addr: raddr, Err: fmt.Errorf("dial: %w", ctx.Err())}
		}
	}
}

// LocalAddr is the UDP address this client's socket is bound to.
func (c *Client) LocalAddr() net.Addr { return c.t.LocalAddr() }

// RemoteAddr is the server address this client connected to.
func (c *Client) RemoteAddr() net.UDPAddr { return c.addr }

// Send posts payload to the server with the given reliability and
// ordering channel (§6).
func (c *Client) Send(payload []byte, rel Reliability, channel byte) (uint32, error) {
	return c.t.Send(c.addr, payload, rel, channel)
}

// Stats reports this connection's traffic counters.
func (c *Client) Stats() (Stats, bool) { return c.t.Stats(c.addr) }

// Close disconnects from the server and shuts the client down.
func (c *Client) Close() error { return c.t.Close() }
