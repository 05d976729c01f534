package bitstream

import "errors"

// ErrUnderflow is returned when a read would consume more bits than have been
// written to the stream.
var ErrUnderflow = errors.New("bitstream: read past end of written data")

// ErrInvalidWidth is returned when a bit-width argument to WriteBits/ReadBits
// falls outside [0, 64].
var ErrInvalidWidth = errors.New("bitstream: bit width out of range")

// ErrNotSupported is returned by the compressed float/double variants, which
// this module does not implement (see spec §4.1).
var ErrNotSupported = errors.New("bitstream: operation not supported")

// ErrStringTooLong is returned when a string's encoded length does not fit in
// its length prefix.
var ErrStringTooLong = errors.New("bitstream: string too long for its length prefix")
