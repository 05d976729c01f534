package raknet

import (
	"errors"
	"fmt"
	"net"

	"github.com/driftveil/raknet/internal/reliability"
)

// ErrorKind classifies a raknet.Error the way §7's error-kind list does,
// generalized from the nearest Go reference's flat sentinel list
// (raknet/errors.go) into a typed enum so callers can switch on kind while
// an Error still carries structured context.
type ErrorKind int

const (
	ErrKindBitStreamUnderflow ErrorKind = iota
	ErrKindBitStreamOverflow
	ErrKindUnknownOpcode
	ErrKindPayloadTooLarge
	ErrKindConnectionLost
	ErrKindAddressInUse
	ErrKindSocketError
)

func (k ErrorKind) String() string {
	switch k {
	case ErrKindBitStreamUnderflow:
		return "BitStreamUnderflow"
	case ErrKindBitStreamOverflow:
		return "BitStreamOverflow"
	case ErrKindUnknownOpcode:
		return "UnknownOpcode"
	case ErrKindPayloadTooLarge:
		return "PayloadTooLarge"
	case ErrKindConnectionLost:
		return "ConnectionLost"
	case ErrKindAddressInUse:
		return "AddressInUse"
	case ErrKindSocketError:
		return "SocketError"
	default:
		return "Unknown"
	}
}

// Error is this module's error type: a Kind plus an optional wrapped cause
// and free-form context fields, so the façade and tests can errors.As
// against a kind while logging/printing still shows the peer address or
// other detail a bare sentinel can't carry (§7 expansion).
type Error struct {
	Kind ErrorKind
	Addr *net.UDPAddr
	Err  error
}

func (e *Error) Error() string {
	if e.Addr != nil {
		if e.Err != nil {
			return fmt.Sprintf("raknet: %s (%s): %v", e.Kind, e.Addr, e.Err)
		}
		return fmt.Sprintf("raknet: %s (%s)", e.Kind, e.Addr)
	}
	if e.Err != nil {
		return fmt.Sprintf("raknet: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("raknet: %s", e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for this Error's Kind, so
// errors.Is(err, raknet.ErrPayloadTooLarge) works without exposing Kind
// comparison to every caller.
func (e *Error) Is(target error) bool {
	sentinel, ok := target.(*sentinelError)
	return ok && sentinel.kind == e.Kind
}

// sentinelError is the comparable value behind each ErrXxx sentinel
// below, following the flat-sentinel convention of the nearest Go
// reference's errors.go, generalized so each sentinel also knows its Kind.
type sentinelError struct {
	kind ErrorKind
}

func (s *sentinelError) Error() string { return s.kind.String() }

var (
	ErrBitStreamUnderflow = &sentinelError{ErrKindBitStreamUnderflow}
	ErrBitStreamOverflow  = &sentinelError{ErrKindBitStreamOverflow}
	ErrUnknownOpcode      = &sentinelError{ErrKindUnknownOpcode}
	ErrPayloadTooLarge    = &sentinelError{ErrKindPayloadTooLarge}
	ErrConnectionLost     = &sentinelError{ErrKindConnectionLost}
	ErrAddressInUse       = &sentinelError{ErrKindAddressInUse}
	ErrSocketError        = &sentinelError{ErrKindSocketError}
)

// wrapPayloadTooLarge adapts internal/reliability's sentinel into this
// package's typed Error, attaching the peer address for structured logging.
func wrapPayloadTooLarge(addr net.UDPAddr, err error) error {
	if !errors.Is(err, reliability.ErrPayloadTooLarge) {
		return err
	}
	return &Error{Kind: ErrKindPayloadTooLarge, Addr: &addr, Err: err}
}

// Reason mirrors internal/reliability.DisconnectReason at the façade
// boundary, so OnDisconnected callers don't need to import internal
// packages to inspect why a peer left.
type Reason = reliability.DisconnectReason

const (
	ReasonRemoteDisconnect = reliability.ReasonRemoteDisconnect
	ReasonTimeout          = reliability.ReasonTimeout
	ReasonRefused          = reliability.ReasonRefused
	ReasonClosed           = reliability.ReasonClosed
)
