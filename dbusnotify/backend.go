package dbusnotify

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"
	"github.com/spf13/cast"

	"github.com/esiqveland/notifyfwd"
)

var _ notifyfwd.Backend = (*Backend)(nil)

// Backend shows notifyfwd notifications through a Notifier.
type Backend struct {
	notifier Notifier
	conn     *dbus.Conn // owned, closed by Cleanup; nil if borrowed
	onClose  notifyfwd.CloseHandler
	onAction notifyfwd.ActionHandler
	log      zerolog.Logger

	mu        sync.Mutex
	serverIDs map[uint32]uint32 // peer id -> server id
	peerIDs   map[uint32]uint32 // server id -> peer id
}

// Factory returns a notifyfwd.Factory that connects to the session bus.
// Construction fails when no notification server answers on the bus.
func Factory(log zerolog.Logger) notifyfwd.Factory {
	return notifyfwd.Factory{
		Name: "dbus",
		New: func(onClose notifyfwd.CloseHandler, onAction notifyfwd.ActionHandler) (notifyfwd.Backend, error) {
			conn, err := dbus.SessionBusPrivate()
			if err != nil {
				return nil, err
			}
			if err = conn.Auth(nil); err != nil {
				conn.Close()
				return nil, err
			}
			if err = conn.Hello(); err != nil {
				conn.Close()
				return nil, err
			}
			b, err := NewBackend(conn, onClose, onAction, log)
			if err != nil {
				conn.Close()
				return nil, err
			}
			b.conn = conn
			return b, nil
		},
	}
}

// NewBackend creates a Backend on an existing connection. The connection is
// not closed by Cleanup.
func NewBackend(conn *dbus.Conn, onClose notifyfwd.CloseHandler, onAction notifyfwd.ActionHandler, log zerolog.Logger) (*Backend, error) {
	b := newBackend(onClose, onAction, log)
	n, err := New(conn,
		WithOnClosed(b.closed),
		WithOnAction(b.action),
		WithLogger(b.log),
	)
	if err != nil {
		return nil, err
	}
	info, err := n.GetServerInformation()
	if err != nil {
		n.Close()
		return nil, err
	}
	b.log.Debug().
		Str("name", info.Name).
		Str("vendor", info.Vendor).
		Str("version", info.Version).
		Str("spec", info.SpecVersion).
		Msg("notification server")
	b.notifier = n
	return b, nil
}

func newBackend(onClose notifyfwd.CloseHandler, onAction notifyfwd.ActionHandler, log zerolog.Logger) *Backend {
	return &Backend{
		onClose:   onClose,
		onAction:  onAction,
		log:       log.With().Str("backend", "dbus").Logger(),
		serverIDs: make(map[uint32]uint32),
		peerIDs:   make(map[uint32]uint32),
	}
}

// ShowNotify implements notifyfwd.Backend.
func (b *Backend) ShowNotify(n *notifyfwd.Notification) error {
	note := Notification{
		AppName:       n.AppName,
		Summary:       n.Summary,
		Body:          n.Body,
		Actions:       pairActions(n.Actions),
		Hints:         b.variantHints(n.Hints),
		ExpireTimeout: time.Duration(n.ExpireTimeout) * time.Millisecond,
	}
	if n.ExpireTimeout < 0 {
		note.ExpireTimeout = ExpireTimeoutSetByNotificationServer
	}
	if icon, ok := n.AppIcon.(string); ok {
		note.AppIcon = icon
	}
	if n.Icon != nil {
		note.AddHint(HintImageDataRGBA(n.Icon))
	}

	b.mu.Lock()
	// a reused peer id replaces the notification still on screen
	if sid, ok := b.serverIDs[n.ID]; ok {
		note.ReplacesID = sid
	} else if sid, ok := b.serverIDs[n.ReplacesID]; ok && n.ReplacesID != 0 {
		note.ReplacesID = sid
	}
	b.mu.Unlock()

	sid, err := b.notifier.SendNotification(note)
	if err != nil {
		return err
	}

	b.mu.Lock()
	if old, ok := b.serverIDs[n.ID]; ok && old != sid {
		delete(b.peerIDs, old)
	}
	b.serverIDs[n.ID] = sid
	b.peerIDs[sid] = n.ID
	b.mu.Unlock()
	b.log.Debug().Uint32("id", n.ID).Uint32("server_id", sid).Msg("notification shown")
	return nil
}

// CloseNotify implements notifyfwd.Backend.
// Ids this backend never showed are ignored.
func (b *Backend) CloseNotify(id uint32) error {
	b.mu.Lock()
	sid, ok := b.serverIDs[id]
	b.mu.Unlock()
	if !ok {
		b.log.Debug().Uint32("id", id).Msg("close for unknown notification")
		return nil
	}
	_, err := b.notifier.CloseNotification(sid)
	return err
}

// Cleanup implements notifyfwd.Backend.
func (b *Backend) Cleanup() error {
	var errs []error
	if b.notifier != nil {
		errs = append(errs, b.notifier.Close())
	}
	if b.conn != nil {
		errs = append(errs, b.conn.Close())
	}
	return errors.Join(errs...)
}

func (b *Backend) closed(sig *NotificationClosedSignal) {
	b.mu.Lock()
	id, ok := b.peerIDs[sig.ID]
	if ok {
		delete(b.peerIDs, sig.ID)
		delete(b.serverIDs, id)
	}
	b.mu.Unlock()
	if !ok {
		// another application's notification
		return
	}
	if b.onClose != nil {
		b.onClose(id, sig.Reason, "")
	}
}

func (b *Backend) action(sig *ActionInvokedSignal) {
	b.mu.Lock()
	id, ok := b.peerIDs[sig.ID]
	b.mu.Unlock()
	if !ok {
		return
	}
	if b.onAction != nil {
		b.onAction(id, sig.ActionKey)
	}
}

// pairActions turns [key, label, key, label...] into Actions.
// A trailing key without a label uses the key as label.
func pairActions(flat []string) []Action {
	actions := make([]Action, 0, (len(flat)+1)/2)
	for i := 0; i < len(flat); i += 2 {
		a := Action{Key: flat[i], Label: flat[i]}
		if i+1 < len(flat) {
			a.Label = flat[i+1]
		}
		actions = append(actions, a)
	}
	return actions
}

// variantHints converts peer hints to dbus variants. Well-known hints are
// coerced to their freedesktop type; unsupported values are skipped.
func (b *Backend) variantHints(hints map[string]any) map[string]dbus.Variant {
	out := make(map[string]dbus.Variant, len(hints))
	for k, v := range hints {
		variant, err := toVariant(k, v)
		if err != nil {
			b.log.Debug().Err(err).Str("hint", k).Msg("skipping hint")
			continue
		}
		out[k] = variant
	}
	return out
}

var errUnsupportedHint = errors.New("unsupported hint value")

func toVariant(key string, v any) (dbus.Variant, error) {
	if v == nil {
		return dbus.Variant{}, errUnsupportedHint
	}
	if variant, ok := v.(dbus.Variant); ok {
		return variant, nil
	}
	switch key {
	case hintUrgency:
		u, err := cast.ToUint8E(v)
		return dbus.MakeVariant(u), err
	case hintTransient, hintResident, hintActionIcons, hintSuppressSound:
		flag, err := cast.ToBoolE(v)
		return dbus.MakeVariant(flag), err
	case hintX, hintY:
		pos, err := cast.ToInt32E(v)
		return dbus.MakeVariant(pos), err
	case hintCategory, hintDesktopEntry, hintImagePath, hintSoundFile, hintSoundName:
		s, err := cast.ToStringE(v)
		return dbus.MakeVariant(s), err
	}
	switch value := v.(type) {
	case string, bool, byte, int16, uint16, int32, uint32, int64, uint64, float64, []byte, []string:
		return dbus.MakeVariant(value), nil
	case int:
		return dbus.MakeVariant(int64(value)), nil
	case json.Number:
		if i, err := value.Int64(); err == nil {
			return dbus.MakeVariant(i), nil
		}
		f, err := value.Float64()
		return dbus.MakeVariant(f), err
	default:
		return dbus.Variant{}, errUnsupportedHint
	}
}
