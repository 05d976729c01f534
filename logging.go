package raknet

import (
	"os"

	"github.com/rs/zerolog"
)

// defaultLogger returns the console-pretty zerolog.Logger used when a
// caller doesn't supply their own, tagged with this transport's instance
// id (§2.1 expansion) so multiple transports in one process (a server and
// a test client, say) are distinguishable in log output.
func defaultLogger(instanceID string, role string) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().
		Timestamp().
		Str("transport", instanceID).
		Str("role", role).
		Logger()
}
