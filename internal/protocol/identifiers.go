package protocol

// MessageID is a RakNet message identifier: the first byte of every offline
// message and of every encapsulated packet's payload once reliability
// framing is stripped off.
type MessageID = byte

// The canonical RakNet 3.25 opcode table (spec §6). Implementers mirroring a
// live RakNet 3.25 peer should double check these against a packet capture
// before relying on interop — the upstream table has drifted across RakNet
// forks and this spec pins only a handful of values explicitly.
const (
	IDConnectedPing MessageID = 0x00
	IDConnectedPong MessageID = 0x03

	// IDOpenConnectionRequest and IDOpenConnectionReply are the only two
	// offline opcodes this module's handshake uses (§4.3) — unlike full
	// RakNet's four-message MTU-discovery exchange (OpenConnectionRequest1/
	// Reply1/Request2/Reply2), this spec's offline phase is a single
	// request/reply round trip.
	IDOpenConnectionRequest MessageID = 0x05
	IDOpenConnectionReply   MessageID = 0x06

	IDDisconnectionNotification MessageID = 0x13
	IDNewIncomingConnection     MessageID = 0x14
	IDConnectionLost            MessageID = 0x16

	IDConnectionRequest         MessageID = 0x1D
	IDConnectionRequestAccepted MessageID = 0x22
	IDConnectionRequestRefused  MessageID = 0x23
)
