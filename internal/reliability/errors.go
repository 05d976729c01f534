package reliability

import "errors"

// ErrPayloadTooLarge is returned synchronously from Send when a payload
// can't fit in a single datagram under the MTU ceiling (§4.4 step 1). This
// module doesn't fragment oversize payloads (spec Non-goals).
var ErrPayloadTooLarge = errors.New("reliability: payload exceeds maximum encapsulated size")
