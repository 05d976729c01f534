package raknet

import (
	"bytes"
	"fmt"
	"math/rand"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/driftveil/raknet/internal/bitstream"
	"github.com/driftveil/raknet/internal/message"
	"github.com/driftveil/raknet/internal/protocol"
	"github.com/driftveil/raknet/internal/reliability"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// role distinguishes the two façades that share a Transport: a server
// answers OpenConnectionRequest and validates incoming passwords; a client
// initiates the handshake and supplies its own outgoing password (§4.3,
// §4.6).
type role int

const (
	roleServer role = iota
	roleClient
)

func (r role) String() string {
	if r == roleServer {
		return "server"
	}
	return "client"
}

// Handlers bundles the event hooks invoked on the Transport's tick-loop
// goroutine (§6): a received user payload, a peer completing the
// handshake, and a peer leaving. All three are optional.
type Handlers struct {
	OnUserPacket   func(addr net.UDPAddr, payload []byte)
	OnConnected    func(addr net.UDPAddr)
	OnDisconnected func(addr net.UDPAddr, reason Reason)
}

// Transport is the non-blocking UDP endpoint of §4.2: one net.UDPConn, one
// reader goroutine feeding a bounded channel into a single tick-loop
// goroutine that exclusively owns the peer table and every Peer it holds,
// following §5's single-writer discipline. Server and Client are thin
// role-specific façades (§2 component 6) built on one Transport —
// generalized from the goroutine split in the nearest Go reference's
// Listener (`udpHandler`/`listenerHandler`), collapsed into the cooperative
// single-loop model this spec requires instead of one goroutine per
// connection.
type Transport struct {
	id   uuid.UUID
	guid int64
	log  zerolog.Logger
	cfg  *Config
	role role

	conn     *net.UDPConn
	layer    *reliability.Layer
	offline  *offlineHandler
	handlers Handlers

	// dialPassword is the password a client-role Transport presents on
	// ConnectionRequest (§4.6); unused in the server role, which checks
	// cfg.IncomingPassword instead.
	dialPassword string

	peers map[string]*reliability.Peer

	incoming chan rawDatagram
	commands chan command
	stop     chan struct{}
	done     chan struct{}

	closeOnce sync.Once
}

type rawDatagram struct {
	addr net.UDPAddr
	data []byte
}

type commandKind int

const (
	cmdSend commandKind = iota
	cmdClose
	cmdCloseAll
	cmdStats
	cmdSeedPeer
)

type command struct {
	kind        commandKind
	addr        net.UDPAddr
	payload     []byte
	reliability protocol.Reliability
	channel     byte
	reply       chan commandResult
}

type commandResult struct {
	messageNumber uint32
	stats         reliability.Stats
	ok            bool
	err           error
}

// newTransport constructs an unbound Transport in the given role. A nil
// logOverride means a console zerolog.Logger tagged with the freshly
// generated instance id. Bind opens the socket and starts the
// reader/tick-loop goroutines.
func newTransport(r role, cfg *Config, logOverride *zerolog.Logger) *Transport {
	cfg = configOrDefault(cfg)
	id := uuid.New()
	log := defaultLogger(id.String(), r.String())
	if logOverride != nil {
		log = *logOverride
	}
	return &Transport{
		id:       id,
		guid:     rand.Int63(),
		log:      log,
		cfg:      cfg,
		role:     r,
		layer:    reliability.NewLayer(log, cfg.tunables()),
		offline:  newOfflineHandler(log),
		peers:    make(map[string]*reliability.Peer),
		incoming: make(chan rawDatagram, 256),
		commands: make(chan command, 64),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// bind opens the UDP socket and starts the reader and tick-loop goroutines
// (§4.2).
func (t *Transport) bind(host string, port int) error {
	ip := net.ParseIP(host)
	if ip == nil {
		resolved, err := net.ResolveIPAddr("ip", host)
		if err != nil {
			return &Error{Kind: ErrKindSocketError, Err: err}
		}
		ip = resolved.IP
	}
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: ip, Port: port})
	if err != nil {
		if strings.Contains(err.Error(), "address already in use") {
			return &Error{Kind: ErrKindAddressInUse, Err: err}
		}
		return &Error{Kind: ErrKindSocketError, Err: err}
	}
	t.conn = conn
	go t.readLoop()
	go t.tickLoop()
	t.log.Info().Str("addr", conn.LocalAddr().String()).Str("role", t.role.String()).Msg("bound")
	return nil
}

// LocalAddr reports the address this transport's socket is bound to.
func (t *Transport) LocalAddr() net.Addr {
	return t.conn.LocalAddr()
}

// GUID returns the 64-bit RakNet GUID this transport presents during the
// handshake — a wire-level value distinct from the uuid.UUID instance id
// used only for log correlation (§2.1 expansion).
func (t *Transport) GUID() int64 { return t.guid }

// ID returns this transport's log-correlation instance id.
func (t *Transport) ID() uuid.UUID { return t.id }

// readLoop owns the socket's read side exclusively, handing each datagram
// to the tick loop over incoming so recvfrom never blocks on a slow tick
// (§4.2 expansion).
func (t *Transport) readLoop() {
	buf := make([]byte, protocol.MaxMTU)
	for {
		n, addr, err := t.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-t.stop:
				return
			default:
				t.log.Debug().Err(err).Msg("socket read loop exiting")
				return
			}
		}
		data := make([]byte, n)
		copy(data, buf[:n])
		select {
		case t.incoming <- rawDatagram{addr: *addr, data: data}:
		case <-t.stop:
			return
		}
	}
}

// tickLoop is the single-threaded cooperative event loop of §5: it owns the
// peer table and every Peer exclusively, multiplexing incoming datagrams,
// off-loop command calls, and the protocol tick in one select, which is the
// loop's only suspension point.
func (t *Transport) tickLoop() {
	defer close(t.done)
	ticker := time.NewTicker(t.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-t.stop:
			return
		case dg := <-t.incoming:
			t.handleRawDatagram(dg.addr, dg.data, time.Now())
		case cmd := <-t.commands:
			t.handleCommand(cmd)
		case <-ticker.C:
			t.tick(time.Now())
		}
	}
}

// handleRawDatagram demuxes one datagram by source address (§2): an
// address with no peer yet, or any datagram that starts with an offline
// handshake opcode followed by the 16-byte magic, goes to the offline
// handshake handler; everything else from an address already in the peer
// table is decoded by the reliability layer.
func (t *Transport) handleRawDatagram(addr net.UDPAddr, data []byte, now time.Time) {
	key := addr.String()
	peer, ok := t.peers[key]
	magicLen := len(protocol.OfflineMessageID)
	offline := len(data) > magicLen &&
		(data[0] == protocol.IDOpenConnectionRequest || data[0] == protocol.IDOpenConnectionReply) &&
		bytes.Equal(data[1:1+magicLen], protocol.OfflineMessageID[:])
	if !ok || offline {
		t.offline.handle(t, addr, data, now)
		return
	}

	delivered, err := t.layer.HandleDatagram(peer, data, now)
	if err != nil {
		t.log.Debug().Err(err).Str("addr", key).Msg("dropping malformed datagram")
		return
	}
	for _, payload := range delivered {
		t.dispatchPayload(peer, payload, now)
	}
}

// tick drives every peer's retransmission, keepalive, and ACK-flush timers
// for one protocol time-slice (§4.2, §4.4, §4.6).
func (t *Transport) tick(now time.Time) {
	for key, peer := range t.peers {
		if peer.State == reliability.Connected && peer.Idle(now, t.cfg.InactivityTimeout) {
			t.log.Info().Str("addr", key).Msg("peer timed out")
			t.disconnectPeer(key, peer, ReasonTimeout)
			continue
		}
		if peer.State == reliability.Connected && peer.NeedsKeepalive(now, t.cfg.PingInterval) {
			t.sendControl(peer, &message.ConnectedPing{ClientTimestamp: now.UnixMilli()}, protocol.Reliable, now)
		}

		result, err := t.layer.Tick(peer, now)
		if err != nil {
			t.log.Warn().Err(err).Str("addr", key).Msg("tick encode failed")
			continue
		}
		for _, d := range result.Datagrams {
			t.writeRaw(d, peer.Address)
		}
		if result.Lost {
			t.log.Info().Str("addr", key).Msg("peer lost: max resends exceeded")
			t.disconnectPeer(key, peer, ReasonTimeout)
		}
	}
}

// disconnectPeer removes a peer from the table and fires OnDisconnected.
// Deleting the current entry mid-range over t.peers is safe per the Go
// language spec.
func (t *Transport) disconnectPeer(key string, peer *reliability.Peer, reason reliability.DisconnectReason) {
	delete(t.peers, key)
	if t.handlers.OnDisconnected != nil {
		t.handlers.OnDisconnected(peer.Address, reason)
	}
}

// sendControl encodes a control message and queues it through the
// reliability layer the same way a user Send would (§4.6's handshake and
// keepalive messages travel encapsulated, not raw).
func (t *Transport) sendControl(peer *reliability.Peer, msg message.Message, rel protocol.Reliability, now time.Time) {
	s := bitstream.New()
	if err := msg.Encode(s); err != nil {
		t.log.Warn().Err(err).Msg("encode control message")
		return
	}
	if _, err := t.layer.Send(peer, s.Bytes(), rel, 0, now); err != nil {
		t.log.Warn().Err(err).Msg("queue control message")
	}
}

// sendOffline encodes and writes a raw offline message with no reliability
// framing, per §4.3's "offline messages carry no reliability framing."
func (t *Transport) sendOffline(msg message.Message, addr net.UDPAddr) {
	s := bitstream.New()
	if err := msg.Encode(s); err != nil {
		t.log.Warn().Err(err).Msg("encode offline message")
		return
	}
	t.writeRaw(s.Bytes(), addr)
}

func (t *Transport) writeRaw(data []byte, addr net.UDPAddr) {
	if _, err := t.conn.WriteToUDP(data, &addr); err != nil {
		t.log.Debug().Err(err).Str("addr", addr.String()).Msg("write failed")
	}
}

// dispatchPayload decodes the one-byte opcode of a fully-ordered delivered
// payload and either completes a step of the connection state machine
// (§4.6) or, for an opcode this module doesn't own, forwards it to
// OnUserPacket — mirroring the teacher's readMessage id switch
// (raknet/conn.go), generalized to this spec's handshake message set.
func (t *Transport) dispatchPayload(peer *reliability.Peer, payload []byte, now time.Time) {
	if len(payload) == 0 {
		return
	}
	s := bitstream.From(payload)
	id, err := s.ReadU8()
	if err != nil {
		return
	}

	switch id {
	case protocol.IDConnectedPing:
		var m message.ConnectedPing
		if m.Decode(s) == nil {
			pong := &message.ConnectedPong{ClientTimestamp: m.ClientTimestamp, ServerTimestamp: now.UnixMilli()}
			t.sendControl(peer, pong, protocol.Unreliable, now)
		}
	case protocol.IDConnectedPong:
		// The RTT sample for this round trip is already folded into the
		// reliability layer's smoothed estimate via the ack that carried
		// it; the pong's own timestamps have nothing further to update.
	case protocol.IDConnectionRequest:
		t.handleConnectionRequest(peer, s, now)
	case protocol.IDConnectionRequestAccepted:
		t.handleConnectionRequestAccepted(peer, s, now)
	case protocol.IDConnectionRequestRefused:
		t.handleConnectionRequestRefused(peer, now)
	case protocol.IDNewIncomingConnection:
		// The server already transitioned to Connected upon sending
		// ConnectionRequestAccepted; nothing further is required here.
	case protocol.IDDisconnectionNotification:
		t.log.Info().Str("addr", peer.Address.String()).Msg("peer disconnected us")
		t.disconnectPeer(peer.Address.String(), peer, reliability.ReasonRemoteDisconnect)
	default:
		if peer.State == reliability.Connected && t.handlers.OnUserPacket != nil {
			t.handlers.OnUserPacket(peer.Address, payload)
		}
	}
}

// handleConnectionRequest validates the password on a server-role peer
// still completing its handshake (§4.6).
func (t *Transport) handleConnectionRequest(peer *reliability.Peer, s *bitstream.BitStream, now time.Time) {
	if t.role != roleServer || peer.State != reliability.UnverifiedConnected {
		return
	}
	var req message.ConnectionRequest
	if err := req.Decode(s); err != nil {
		return
	}
	peer.GUID = req.ClientGUID
	peer.DeclaredPassword = req.Password

	if req.Password != t.cfg.IncomingPassword {
		t.sendControl(peer, &message.ConnectionRequestRefused{Reason: "incorrect password"}, protocol.Reliable, now)
		// Flush now: the peer is removed below, so no later tick would send it.
		if result, err := t.layer.Tick(peer, now); err == nil {
			for _, d := range result.Datagrams {
				t.writeRaw(d, peer.Address)
			}
		}
		t.log.Info().Str("addr", peer.Address.String()).Msg("refused connection: bad password")
		t.disconnectPeer(peer.Address.String(), peer, reliability.ReasonRefused)
		return
	}

	accepted := &message.ConnectionRequestAccepted{
		ClientAddress:     peer.Address,
		RequestTimestamp:  req.RequestTimestamp,
		AcceptedTimestamp: now.UnixMilli(),
	}
	t.sendControl(peer, accepted, protocol.Reliable, now)
	peer.State = reliability.Connected
	t.log.Info().Str("addr", peer.Address.String()).Msg("peer connected")
	if t.handlers.OnConnected != nil {
		t.handlers.OnConnected(peer.Address)
	}
}

// handleConnectionRequestAccepted completes the client side of the
// handshake: send NewIncomingConnection and transition to Connected (§4.6
// expansion).
func (t *Transport) handleConnectionRequestAccepted(peer *reliability.Peer, s *bitstream.BitStream, now time.Time) {
	if t.role != roleClient || peer.State != reliability.UnverifiedConnected {
		return
	}
	var acc message.ConnectionRequestAccepted
	if err := acc.Decode(s); err != nil {
		return
	}
	nic := &message.NewIncomingConnection{
		ServerAddress:     peer.Address,
		RequestTimestamp:  acc.RequestTimestamp,
		AcceptedTimestamp: acc.AcceptedTimestamp,
	}
	t.sendControl(peer, nic, protocol.Reliable, now)
	peer.State = reliability.Connected
	t.log.Info().Str("addr", peer.Address.String()).Msg("connected to server")
	if t.handlers.OnConnected != nil {
		t.handlers.OnConnected(peer.Address)
	}
}

// handleConnectionRequestRefused drops the peer on a password mismatch
// reported by the server (§4.6).
func (t *Transport) handleConnectionRequestRefused(peer *reliability.Peer, now time.Time) {
	if t.role != roleClient {
		return
	}
	t.log.Info().Str("addr", peer.Address.String()).Msg("connection refused by server")
	t.disconnectPeer(peer.Address.String(), peer, reliability.ReasonRefused)
}

// handleCommand runs one off-loop API call on the tick-loop goroutine,
// the marshaling §5's expansion requires for any public method that would
// otherwise mutate peer state from outside the loop.
func (t *Transport) handleCommand(cmd command) {
	switch cmd.kind {
	case cmdSend:
		t.handleSendCommand(cmd)
	case cmdClose:
		t.handleCloseCommand(cmd)
	case cmdCloseAll:
		t.handleCloseAllCommand(cmd)
	case cmdStats:
		t.handleStatsCommand(cmd)
	case cmdSeedPeer:
		t.handleSeedPeerCommand(cmd)
	}
}

// handleSeedPeerCommand creates a fresh Unconnected Peer for addr, the
// client-side counterpart to the peer the server creates on receiving
// OpenConnectionRequest (§4.3) — Dial needs a peer record to exist before
// the first OpenConnectionReply arrives, and only the tick loop may touch
// the peer table.
func (t *Transport) handleSeedPeerCommand(cmd command) {
	key := cmd.addr.String()
	if _, exists := t.peers[key]; !exists {
		t.peers[key] = reliability.NewPeer(cmd.addr, time.Now())
	}
	cmd.reply <- commandResult{ok: true}
}

func (t *Transport) handleSendCommand(cmd command) {
	peer, ok := t.peers[cmd.addr.String()]
	if !ok {
		cmd.reply <- commandResult{err: &Error{Kind: ErrKindConnectionLost, Addr: &cmd.addr, Err: fmt.Errorf("not connected")}}
		return
	}
	n, err := t.layer.Send(peer, cmd.payload, cmd.reliability, cmd.channel, time.Now())
	if err != nil {
		cmd.reply <- commandResult{err: wrapPayloadTooLarge(cmd.addr, err)}
		return
	}
	cmd.reply <- commandResult{messageNumber: n, ok: true}
}

// handleCloseCommand implements the "explicit close(address)" transition
// of §4.6: send DisconnectionNotification reliably, flush it immediately
// (§4.6's "schedules peer removal after send" — there is no later tick to
// flush an already-removed peer's outbox), then remove the peer.
func (t *Transport) handleCloseCommand(cmd command) {
	peer, ok := t.peers[cmd.addr.String()]
	if !ok {
		cmd.reply <- commandResult{ok: false}
		return
	}
	now := time.Now()
	t.sendControl(peer, &message.DisconnectionNotification{}, protocol.Reliable, now)
	if result, err := t.layer.Tick(peer, now); err == nil {
		for _, d := range result.Datagrams {
			t.writeRaw(d, peer.Address)
		}
	}
	t.disconnectPeer(cmd.addr.String(), peer, reliability.ReasonClosed)
	cmd.reply <- commandResult{ok: true}
}

// handleCloseAllCommand is the endpoint-wide shutdown path of §5: every
// peer gets a best-effort DisconnectionNotification before the transport
// itself goes down.
func (t *Transport) handleCloseAllCommand(cmd command) {
	now := time.Now()
	for key, peer := range t.peers {
		t.sendControl(peer, &message.DisconnectionNotification{}, protocol.Reliable, now)
		if result, err := t.layer.Tick(peer, now); err == nil {
			for _, d := range result.Datagrams {
				t.writeRaw(d, peer.Address)
			}
		}
		t.disconnectPeer(key, peer, reliability.ReasonClosed)
	}
	cmd.reply <- commandResult{ok: true}
}

func (t *Transport) handleStatsCommand(cmd command) {
	peer, ok := t.peers[cmd.addr.String()]
	if !ok {
		cmd.reply <- commandResult{ok: false}
		return
	}
	cmd.reply <- commandResult{ok: true, stats: peer.Stats()}
}

// Send posts payload to addr with the given reliability/channel, marshaled
// onto the tick loop (§5 expansion) so it never mutates peer state from the
// calling goroutine directly.
func (t *Transport) Send(addr net.UDPAddr, payload []byte, rel protocol.Reliability, channel byte) (uint32, error) {
	reply := make(chan commandResult, 1)
	select {
	case t.commands <- command{kind: cmdSend, addr: addr, payload: payload, reliability: rel, channel: channel, reply: reply}:
	case <-t.done:
		return 0, &Error{Kind: ErrKindConnectionLost, Addr: &addr, Err: fmt.Errorf("transport closed")}
	}
	res := <-reply
	return res.messageNumber, res.err
}

// seedPeer creates addr's Unconnected Peer record on the tick loop, for
// Dial to call before sending the first OpenConnectionRequest.
func (t *Transport) seedPeer(addr net.UDPAddr) {
	reply := make(chan commandResult, 1)
	select {
	case t.commands <- command{kind: cmdSeedPeer, addr: addr, reply: reply}:
		<-reply
	case <-t.done:
	}
}

// ClosePeer disconnects a single peer (§6's close(address)).
func (t *Transport) ClosePeer(addr net.UDPAddr) {
	reply := make(chan commandResult, 1)
	select {
	case t.commands <- command{kind: cmdClose, addr: addr, reply: reply}:
	case <-t.done:
		return
	}
	<-reply
}

// Stats reports addr's traffic counters, if it is a known peer.
func (t *Transport) Stats(addr net.UDPAddr) (reliability.Stats, bool) {
	reply := make(chan commandResult, 1)
	select {
	case t.commands <- command{kind: cmdStats, addr: addr, reply: reply}:
	case <-t.done:
		return reliability.Stats{}, false
	}
	res := <-reply
	return res.stats, res.ok
}

// Close shuts the endpoint down (§6's close() with no address): every peer
// gets a best-effort DisconnectionNotification, the tick loop exits, and
// the socket closes.
func (t *Transport) Close() error {
	reply := make(chan commandResult, 1)
	select {
	case t.commands <- command{kind: cmdCloseAll, reply: reply}:
		<-reply
	case <-t.done:
	}
	t.closeOnce.Do(func() { close(t.stop) })
	<-t.done
	if t.conn != nil {
		return t.conn.Close()
	}
	return nil
}
