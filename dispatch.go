package notifyfwd

import (
	"fmt"
)

// HandleShow processes a "notification-show" packet from the peer.
// Packets received while notifications are not enabled are discarded.
func (c *Client) HandleShow(p Packet) {
	if !c.caps.Enabled() {
		c.log.Debug().Msg("ignoring notification-show packet, notifications are disabled")
		return
	}
	req, err := DecodeShow(p)
	if err != nil {
		c.log.Warn().Err(err).Msg("invalid notification-show packet")
		return
	}
	if req.TrailingField {
		c.log.Debug().Uint32("id", req.ID).Msg("notification-show has actions without hints, ignoring them")
	}
	c.log.Debug().
		Uint32("id", req.ID).
		Str("app", req.AppName).
		Strs("actions", req.Actions).
		Interface("hints", req.Hints).
		Msg("notification-show")
	c.show(req)
}

func (c *Client) show(req *ShowRequest) {
	b := c.backend
	if b == nil {
		c.logPlain(req.Summary, req.Body)
		return
	}
	var n *Notification
	err := c.catch(func() error {
		icon, err := c.icons.DecodeIcon(req.Icon)
		if err != nil {
			return fmt.Errorf("icon: %w", err)
		}
		var tray any
		if c.tray != nil {
			tray = c.tray(req.AppName, req.Hints)
		}
		n = &Notification{
			DBusID:        req.DBusID,
			Tray:          tray,
			ID:            req.ID,
			AppName:       req.AppName,
			ReplacesID:    req.ReplacesID,
			AppIcon:       req.AppIcon,
			Summary:       req.Summary,
			Body:          req.Body,
			Actions:       req.Actions,
			Hints:         req.Hints,
			ExpireTimeout: req.ExpireTimeout,
			Icon:          icon,
		}
		return nil
	})
	if err != nil {
		c.showFailed(req.Summary, err)
		return
	}

	id := req.ID
	c.states.pending(id)
	c.scheduler.Schedule(func() {
		if err := c.catch(func() error { return b.ShowNotify(n) }); err != nil {
			c.states.dropped(id)
			c.showFailed(n.Summary, err)
			return
		}
		c.states.displayed(id)
	})
}

// HandleClose processes a "notification-close" packet from the peer.
// The backend reports the close back through NotificationClosed.
func (c *Client) HandleClose(p Packet) {
	if !c.caps.Enabled() {
		c.log.Debug().Msg("ignoring notification-close packet, notifications are disabled")
		return
	}
	id, _, _, err := DecodeClose(p)
	if err != nil {
		c.log.Warn().Err(err).Msg("invalid notification-close packet")
		return
	}
	c.log.Debug().Uint32("id", id).Msg("notification-close")
	b := c.backend
	if b == nil {
		return
	}
	c.scheduler.Schedule(func() {
		if err := c.catch(func() error { return b.CloseNotify(id) }); err != nil {
			c.log.Error().Err(err).Uint32("id", id).Msg("cannot close notification")
		}
	})
}

// NotificationClosed is the backend close handler.
//
// The local handler registered for id, if any, consumes the event.
// Otherwise the close is forwarded to the peer when it asked for it.
// Repeated closes for the same id are ignored.
func (c *Client) NotificationClosed(id uint32, reason Reason, text string) {
	already := c.states.close(id)
	c.log.Debug().
		Uint32("id", id).
		Stringer("reason", reason).
		Str("text", text).
		Bool("peer_close", c.caps.PeerClose).
		Msg("notification closed")
	if h := c.registry.Take(id); h != nil {
		c.callHandler(h, PacketClose, id, reason, text)
		return
	}
	if already || !c.caps.PeerClose {
		return
	}
	c.send(PacketClose, id, uint32(reason), text)
}

// NotificationAction is the backend action handler.
// Actions never close a notification, so the local handler stays registered.
func (c *Client) NotificationAction(id uint32, actionID string) {
	c.log.Debug().Uint32("id", id).Str("action", actionID).Msg("notification action")
	if h := c.registry.Get(id); h != nil {
		c.callHandler(h, PacketAction, id, actionID)
		return
	}
	if !c.caps.Peer {
		c.log.Info().Uint32("id", id).Str("action", actionID).Msg("dropping notification action, peer does not support notifications")
		return
	}
	c.send(PacketAction, id, actionID)
}

func (c *Client) send(packetType string, args ...any) {
	if c.sender == nil {
		c.log.Warn().Str("packet", packetType).Msg("no connection, dropping packet")
		return
	}
	if err := c.sender.Send(packetType, args...); err != nil {
		c.log.Error().Err(err).Str("packet", packetType).Msg("failed to send packet")
	}
}

func (c *Client) callHandler(h ResponseHandler, event string, id uint32, args ...any) {
	if err := c.catch(func() error { h(event, id, args...); return nil }); err != nil {
		c.log.Error().Err(err).Uint32("id", id).Str("event", event).Msg("notification handler failed")
	}
}

// catch runs fn and turns a panic into an error.
func (c *Client) catch(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

func (c *Client) showFailed(summary string, err error) {
	c.log.Error().Err(err).Str("summary", summary).Msg("cannot show notification")
}
