package notifyfwd

import (
	"github.com/spf13/cast"
)

const capNotifications = "notifications"

// Capabilities records what each end of the session supports.
// It does not change once the handshake has completed.
type Capabilities struct {
	// Local is true when a notifier backend was constructed.
	Local bool
	// Peer is true when the peer advertised notifications.
	Peer bool
	// PeerClose is true when the peer asked to be told about closed notifications.
	PeerClose bool
}

// Enabled reports whether notifications can flow in this session.
func (c Capabilities) Enabled() bool {
	return c.Local && c.Peer
}

// InitLocal constructs the notifier backend when enable is true and reports
// whether notifications are supported locally. It never fails: when no backend
// can be constructed, local support is simply false.
func (c *Client) InitLocal(enable bool) bool {
	if !enable {
		c.log.Debug().Msg("notifications disabled by configuration")
		return false
	}
	if c.backend != nil {
		return c.caps.Local
	}
	b, name, err := Construct(c.factories, c.NotificationClosed, c.NotificationAction, c.log)
	if err != nil {
		c.log.Warn().Err(err).Msg("notifications are not available")
		return false
	}
	c.backend = b
	c.caps.Local = true
	c.log.Info().Str("backend", name).Msg("using notifier")
	return true
}

// Caps returns the capabilities offered to the peer during the handshake.
func (c *Client) Caps() map[string]any {
	return map[string]any{
		capNotifications: map[string]any{
			"enabled": c.caps.Local,
		},
	}
}

// ParseServerCapabilities records the peer's notification support.
//
// The peer supports notifications when the "notifications" key is present.
// If its value is a map, a true "close" entry asks for close events to be
// forwarded. Missing or garbled values never fail the handshake.
func (c *Client) ParseServerCapabilities(caps map[string]any) bool {
	v, ok := caps[capNotifications]
	c.caps.Peer = ok
	c.caps.PeerClose = false
	if ok {
		if m, err := cast.ToStringMapE(v); err == nil {
			c.caps.PeerClose = cast.ToBool(m["close"])
		}
	}
	c.log.Debug().
		Bool("local", c.caps.Local).
		Bool("peer", c.caps.Peer).
		Bool("peer_close", c.caps.PeerClose).
		Bool("enabled", c.caps.Enabled()).
		Msg("notification capabilities")
	return true
}

// Capabilities returns the negotiated capabilities.
func (c *Client) Capabilities() Capabilities {
	return c.caps
}
