package notifyfwd

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestCapabilitiesEnabled(t *testing.T) {
	for _, tc := range []struct {
		local, peer, enabled bool
	}{
		{false, false, false},
		{true, false, false},
		{false, true, false},
		{true, true, true},
	} {
		c := Capabilities{Local: tc.local, Peer: tc.peer}
		require.Equal(t, tc.enabled, c.Enabled(), "local=%v peer=%v", tc.local, tc.peer)
	}
}

func TestNegotiation(t *testing.T) {
	for _, tc := range []struct {
		name    string
		backend bool
		peer    map[string]any
		enabled bool
	}{
		{"neither", false, map[string]any{}, false},
		{"local only", true, map[string]any{"other": true}, false},
		{"peer only", false, map[string]any{"notifications": true}, false},
		{"both", true, map[string]any{"notifications": map[string]any{"enabled": true}}, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var factories []Factory
			if tc.backend {
				factories = append(factories, (&fakeBackend{}).factory())
			}
			c := New(nil, WithBackends(factories...))
			require.Equal(t, tc.backend, c.InitLocal(true))
			require.True(t, c.ParseServerCapabilities(tc.peer))
			require.Equal(t, tc.enabled, c.Capabilities().Enabled())
		})
	}
}

func TestInitLocalDisabled(t *testing.T) {
	fb := &fakeBackend{}
	c := New(nil, WithBackends(fb.factory()))
	require.False(t, c.InitLocal(false))
	require.Nil(t, fb.onClose)
	require.Equal(t, map[string]any{"notifications": map[string]any{"enabled": false}}, c.Caps())
}

func TestInitLocalAdvertises(t *testing.T) {
	c := New(nil, WithBackends((&fakeBackend{}).factory()))
	require.True(t, c.InitLocal(true))
	require.True(t, c.InitLocal(true))
	require.Equal(t, map[string]any{"notifications": map[string]any{"enabled": true}}, c.Caps())
}

func TestInitLocalNoBackendWarns(t *testing.T) {
	logs := &syncBuffer{}
	c := New(nil, WithLogger(zerolog.New(logs)), WithBackends(Factory{
		Name: "broken",
		New: func(CloseHandler, ActionHandler) (Backend, error) {
			return nil, errors.New("no display")
		},
	}))
	require.False(t, c.InitLocal(true))
	require.False(t, c.Capabilities().Local)
	require.Contains(t, logs.messages(t, "warn"), "notifications are not available")
}

func TestParseServerCapabilitiesGarbled(t *testing.T) {
	c := New(nil)
	for _, v := range []any{nil, "yes", 42, []any{1}} {
		require.True(t, c.ParseServerCapabilities(map[string]any{"notifications": v}))
		require.True(t, c.Capabilities().Peer)
		require.False(t, c.Capabilities().PeerClose)
	}

	require.True(t, c.ParseServerCapabilities(map[string]any{"notifications": map[string]any{"close": "true"}}))
	require.True(t, c.Capabilities().PeerClose)

	require.True(t, c.ParseServerCapabilities(nil))
	require.False(t, c.Capabilities().Peer)
	require.False(t, c.Capabilities().PeerClose)
}
