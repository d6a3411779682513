package dbusnotify

import (
	"encoding/json"
	"errors"
	"image"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/esiqveland/notifyfwd"
)

type fakeNotifier struct {
	next   uint32
	sent   []Notification
	closed []uint32
	err    error
}

func (f *fakeNotifier) SendNotification(n Notification) (uint32, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.sent = append(f.sent, n)
	if n.ReplacesID != 0 {
		return n.ReplacesID, nil
	}
	f.next++
	return 100 + f.next, nil
}

func (f *fakeNotifier) GetCapabilities() ([]string, error) { return []string{"actions"}, nil }

func (f *fakeNotifier) GetServerInformation() (ServerInformation, error) {
	return ServerInformation{Name: "fake"}, nil
}

func (f *fakeNotifier) CloseNotification(id uint32) (bool, error) {
	f.closed = append(f.closed, id)
	return true, nil
}

func (f *fakeNotifier) Close() error { return nil }

type events struct {
	closes  []uint32
	reasons []notifyfwd.Reason
	actions []string
}

func newTestBackend(t *testing.T) (*Backend, *fakeNotifier, *events) {
	t.Helper()
	ev := &events{}
	b := newBackend(
		func(id uint32, reason notifyfwd.Reason, _ string) {
			ev.closes = append(ev.closes, id)
			ev.reasons = append(ev.reasons, reason)
		},
		func(id uint32, action string) { ev.actions = append(ev.actions, action) },
		zerolog.Nop(),
	)
	f := &fakeNotifier{}
	b.notifier = f
	return b, f, ev
}

func TestBackendShowMapsIDs(t *testing.T) {
	b, f, ev := newTestBackend(t)

	err := b.ShowNotify(&notifyfwd.Notification{
		ID:            5,
		AppName:       "mail",
		AppIcon:       "mail-unread",
		Summary:       "New mail",
		Body:          "hello",
		Actions:       []string{"open", "Open", "dismiss"},
		Hints:         map[string]any{"urgency": float64(2), "transient": true, "nested": map[string]any{"a": 1}},
		ExpireTimeout: 5000,
		Icon:          image.NewRGBA(image.Rect(0, 0, 1, 1)),
	})
	require.NoError(t, err)
	require.Len(t, f.sent, 1)

	sent := f.sent[0]
	require.Equal(t, "mail-unread", sent.AppIcon)
	require.Equal(t, []Action{{Key: "open", Label: "Open"}, {Key: "dismiss", Label: "dismiss"}}, sent.Actions)
	require.Equal(t, byte(2), sent.Hints["urgency"].Value())
	require.Equal(t, true, sent.Hints["transient"].Value())
	require.Contains(t, sent.Hints, "image-data")
	require.NotContains(t, sent.Hints, "nested")
	require.EqualValues(t, 5000, sent.expireMillis())

	b.action(&ActionInvokedSignal{ID: 101, ActionKey: "open"})
	require.Equal(t, []string{"open"}, ev.actions)

	require.NoError(t, b.CloseNotify(5))
	require.Equal(t, []uint32{101}, f.closed)

	b.closed(&NotificationClosedSignal{ID: 101, Reason: notifyfwd.ReasonClosedByCall})
	require.Equal(t, []uint32{5}, ev.closes)
	require.Equal(t, []notifyfwd.Reason{notifyfwd.ReasonClosedByCall}, ev.reasons)

	// mapping is gone once closed
	b.closed(&NotificationClosedSignal{ID: 101, Reason: notifyfwd.ReasonClosedByCall})
	require.Len(t, ev.closes, 1)
	require.NoError(t, b.CloseNotify(5))
	require.Len(t, f.closed, 1)
}

func TestBackendReusedIDReplaces(t *testing.T) {
	b, f, _ := newTestBackend(t)

	require.NoError(t, b.ShowNotify(&notifyfwd.Notification{ID: 1, Summary: "a"}))
	require.NoError(t, b.ShowNotify(&notifyfwd.Notification{ID: 1, Summary: "b"}))
	require.Len(t, f.sent, 2)
	require.EqualValues(t, 0, f.sent[0].ReplacesID)
	require.EqualValues(t, 101, f.sent[1].ReplacesID)

	require.NoError(t, b.ShowNotify(&notifyfwd.Notification{ID: 2, ReplacesID: 1, Summary: "c"}))
	require.EqualValues(t, 101, f.sent[2].ReplacesID)
}

func TestBackendIgnoresForeignSignals(t *testing.T) {
	b, _, ev := newTestBackend(t)
	b.closed(&NotificationClosedSignal{ID: 999, Reason: notifyfwd.ReasonExpired})
	b.action(&ActionInvokedSignal{ID: 999, ActionKey: "x"})
	require.Empty(t, ev.closes)
	require.Empty(t, ev.actions)
}

func TestBackendSendError(t *testing.T) {
	b, f, _ := newTestBackend(t)
	f.err = errors.New("no server")
	require.ErrorIs(t, b.ShowNotify(&notifyfwd.Notification{ID: 1}), f.err)
	require.Empty(t, b.serverIDs)
}

func TestBackendNegativeTimeout(t *testing.T) {
	b, f, _ := newTestBackend(t)
	require.NoError(t, b.ShowNotify(&notifyfwd.Notification{ID: 1, ExpireTimeout: -20}))
	require.EqualValues(t, -1, f.sent[0].expireMillis())
}

func TestToVariant(t *testing.T) {
	v, err := toVariant("x", json.Number("12"))
	require.NoError(t, err)
	require.Equal(t, int32(12), v.Value())

	v, err = toVariant("custom", json.Number("1.5"))
	require.NoError(t, err)
	require.Equal(t, 1.5, v.Value())

	v, err = toVariant("custom", 3)
	require.NoError(t, err)
	require.Equal(t, int64(3), v.Value())

	_, err = toVariant("custom", nil)
	require.ErrorIs(t, err, errUnsupportedHint)

	_, err = toVariant("urgency", "high")
	require.Error(t, err)
}

func TestPairActions(t *testing.T) {
	require.Empty(t, pairActions(nil))
	require.Equal(t, []Action{{Key: "a", Label: "A"}}, pairActions([]string{"a", "A"}))
}
