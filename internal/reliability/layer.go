package reliability

import (
	"time"

	"github.com/driftveil/raknet/internal/bitstream"
	"github.com/driftveil/raknet/internal/protocol"
	"github.com/rs/zerolog"
)

// Layer is the ReliabilityLayer itself (§4.4–§4.6): the algorithm that turns
// Send calls into encoded datagrams and incoming datagrams into delivered
// application payloads. One Layer is shared across every peer in the
// Transport's peer table — all the per-peer state it touches lives on the
// Peer the caller passes in, so a single Layer value has no peer-specific
// fields of its own (§5's single-writer loop owns the peer table; Layer is
// just the stateless algorithm it drives).
type Layer struct {
	log      zerolog.Logger
	tunables Tunables
}

// NewLayer returns a Layer that logs through log and enforces the given
// Tunables (MTU ceiling, MinRTO, MaxResends), normally derived from a
// raknet.Config at bind/dial time.
func NewLayer(log zerolog.Logger, tunables Tunables) *Layer {
	return &Layer{log: log, tunables: tunables}
}

// Send validates and frames payload for delivery to peer, assigning a
// reliable message number and ordering index as the requested reliability
// demands, and queues the encoded packet for the next Tick's coalesced
// datagram (§4.4 steps 1-5). It returns the assigned reliable message
// number (0 for Unreliable) so a caller wanting delivery confirmation can
// correlate it later — this return value is additive, with no corpus
// grounding of its own (see DESIGN.md).
func (l *Layer) Send(peer *Peer, payload []byte, rel protocol.Reliability, channel byte, now time.Time) (uint32, error) {
	if len(payload) > l.tunables.MaxEncapsulatedPayload {
		return 0, ErrPayloadTooLarge
	}
	if int(channel) >= protocol.NumOrderingChannels {
		channel = 0
	}

	pkt := &EncapsulatedPacket{
		Reliability:     rel,
		OrderingChannel: channel,
		Payload:         payload,
	}

	if rel.HasOrderingIndex() {
		pkt.OrderingIndex = peer.nextOrderingIndex[channel]
		peer.nextOrderingIndex[channel]++
	}

	var messageNumber uint32
	if rel.Reliable() {
		messageNumber = peer.nextMessageNumber
		peer.nextMessageNumber++
		pkt.MessageNumber = messageNumber
		peer.resends.Add(messageNumber, pkt, now, peer.rtt.RTO(l.tunables.MinRTO))
	}

	peer.outbox = append(peer.outbox, pkt)
	peer.lastOutboundTraffic = now
	return messageNumber, nil
}

// HandleDatagram decodes one received datagram and returns every
// application payload it yields, in the order they should be delivered
// (§4.5). ACK-only datagrams yield nothing directly but update the resend
// queue and RTT estimate as a side effect.
func (l *Layer) HandleDatagram(peer *Peer, raw []byte, now time.Time) ([][]byte, error) {
	peer.LastReceive = now
	peer.stats.DatagramsReceived++
	peer.stats.BytesReceived += uint64(len(raw))

	s := bitstream.From(raw)
	isAck, err := s.ReadBool()
	if err != nil {
		return nil, err
	}

	if isAck {
		acked, err := decodeAckDatagram(s)
		if err != nil {
			return nil, err
		}
		for _, n := range acked {
			if firstSent, ok := peer.resends.Remove(n); ok {
				peer.rtt.Update(now.Sub(firstSent))
			}
		}
		return nil, nil
	}

	hasRemoteTime, err := s.ReadBool()
	if err != nil {
		return nil, err
	}
	if hasRemoteTime {
		remoteTime, err := s.ReadU32()
		if err != nil {
			return nil, err
		}
		if !peer.haveRemoteTime {
			peer.rtt.Update(now.Sub(peer.Created))
			peer.haveRemoteTime = true
		}
		peer.remoteTime = remoteTime
	}

	var delivered [][]byte
	for s.Remaining() > 0 {
		pkt := &EncapsulatedPacket{}
		if err := pkt.Decode(s); err != nil {
			l.log.Debug().Err(err).Str("peer", peer.Address.String()).Msg("dropping malformed encapsulated packet")
			break
		}
		delivered = append(delivered, l.handlePacket(peer, pkt)...)
	}
	return delivered, nil
}

// handlePacket applies dedup, ack-scheduling, and ordering/sequencing rules
// to one decoded encapsulated packet, returning the payloads it releases
// for delivery (zero, one, or more if it closes a gap in an ordering
// channel).
func (l *Layer) handlePacket(peer *Peer, pkt *EncapsulatedPacket) [][]byte {
	if pkt.Reliability.Reliable() {
		if !peer.receiveWindow.Receive(pkt.MessageNumber) {
			return nil
		}
		peer.pendingAcks.Add(pkt.MessageNumber)
	}

	switch pkt.Reliability {
	case protocol.ReliableOrdered:
		return peer.orderingBuffers[pkt.OrderingChannel].Push(pkt.OrderingIndex, pkt.Payload)
	case protocol.UnreliableSequenced:
		if peer.orderingBuffers[pkt.OrderingChannel].AcceptSequenced(pkt.OrderingIndex) {
			return [][]byte{pkt.Payload}
		}
		return nil
	default:
		// Unreliable delivers immediately with no dedup. Reliable and the
		// demoted ReliableSequenced (see REDESIGN FLAGS) are deduplicated
		// above but otherwise delivered immediately, with no ordering
		// constraint of their own.
		return [][]byte{pkt.Payload}
	}
}

// TickResult is the outcome of one Tick call: the datagrams to send, and
// whether the peer should be disconnected as lost.
type TickResult struct {
	Datagrams [][]byte
	Lost      bool
}

// Tick builds this peer's outbound datagrams for one protocol time-slice:
// an ACK datagram if any acks are pending, any reliable resends whose RTO
// has elapsed, and the coalesced payload datagram for whatever Send queued
// since the last tick (§4.4). If a resend has been attempted MaxResends
// times without an ACK, Lost is set and the caller should disconnect the
// peer with ReasonTimeout.
func (l *Layer) Tick(peer *Peer, now time.Time) (TickResult, error) {
	var result TickResult

	if peer.pendingAcks.Len() > 0 {
		data, err := encodeAckDatagram(peer.pendingAcks)
		if err != nil {
			return result, err
		}
		peer.pendingAcks.Reset()
		result.Datagrams = append(result.Datagrams, data)
	}

	for _, n := range peer.resends.Due(now) {
		if peer.resends.Attempts(n) >= l.tunables.MaxResends {
			result.Lost = true
			return result, nil
		}
		pkt := peer.resends.Packet(n)
		data, err := encodePayloadDatagram(peer.remoteTime, true, []*EncapsulatedPacket{pkt})
		if err != nil {
			return result, err
		}
		peer.resends.Reschedule(n, now, peer.rtt.RTO(l.tunables.MinRTO))
		result.Datagrams = append(result.Datagrams, data)
	}

	if len(peer.outbox) > 0 {
		datagrams, err := coalesce(peer.remoteTime, peer.outbox, l.tunables.MaxMTU)
		if err != nil {
			return result, err
		}
		result.Datagrams = append(result.Datagrams, datagrams...)
		peer.outbox = peer.outbox[:0]
	}

	for _, d := range result.Datagrams {
		peer.stats.DatagramsSent++
		peer.stats.BytesSent += uint64(len(d))
	}
	if len(result.Datagrams) > 0 {
		peer.lastOutboundTraffic = now
	}
	return result, nil
}

// coalesce packs packets into as few payload datagrams as possible without
// exceeding MaxMTU, preserving send order within and across datagrams.
func coalesce(remoteTime uint32, packets []*EncapsulatedPacket, maxMTU int) ([][]byte, error) {
	budgetBits := (maxMTU - 32) * 8

	var datagrams [][]byte
	var batch []*EncapsulatedPacket
	usedBits := 2 + 32 // is-ack bit + has-remote-time bit + remote time

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		data, err := encodePayloadDatagram(remoteTime, true, batch)
		if err != nil {
			return err
		}
		datagrams = append(datagrams, data)
		batch = nil
		usedBits = 2 + 32
		return nil
	}

	for _, p := range packets {
		cost := p.HeaderBits() + len(p.Payload)*8
		if usedBits+cost > budgetBits && len(batch) > 0 {
			if err := flush(); err != nil {
				return nil, err
			}
		}
		batch = append(batch, p)
		usedBits += cost
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return datagrams, nil
}
