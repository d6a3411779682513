package notifyfwd

import "errors"

var (
	// ErrShortPacket is returned when a packet lacks mandatory fields.
	ErrShortPacket = errors.New("packet too short")
	// ErrMalformedPacket is returned when a packet field has the wrong type.
	ErrMalformedPacket = errors.New("malformed packet")
	// ErrNoBackend is returned by Construct callers when no factory succeeded.
	ErrNoBackend = errors.New("no notifier backend available")
	// ErrUnsupported is returned by backend factories on platforms they cannot serve.
	ErrUnsupported = errors.New("notifier backend not supported on this platform")
)
