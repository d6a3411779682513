package notifyfwd

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func failing(name string, err error) Factory {
	return Factory{Name: name, New: func(CloseHandler, ActionHandler) (Backend, error) { return nil, err }}
}

func TestConstructFirstSuccessWins(t *testing.T) {
	first := &fakeBackend{}
	second := &fakeBackend{}
	f1 := first.factory()
	f1.Name = "first"
	f2 := second.factory()
	f2.Name = "second"

	b, name, err := Construct([]Factory{
		failing("broken", errors.New("no bus")),
		{Name: "panics", New: func(CloseHandler, ActionHandler) (Backend, error) { panic("oops") }},
		{Name: "nil"},
		{Name: "silent", New: func(CloseHandler, ActionHandler) (Backend, error) { return nil, nil }},
		f1,
		f2,
	}, func(uint32, Reason, string) {}, func(uint32, string) {}, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, "first", name)
	require.Same(t, first, b)
	require.NotNil(t, first.onClose)
	require.Nil(t, second.onClose)
}

func TestConstructNone(t *testing.T) {
	_, _, err := Construct(nil, nil, nil, zerolog.Nop())
	require.ErrorIs(t, err, ErrNoBackend)

	cause := errors.New("no display")
	_, _, err = Construct([]Factory{failing("x", cause)}, nil, nil, zerolog.Nop())
	require.ErrorIs(t, err, ErrNoBackend)
	require.ErrorIs(t, err, cause)
}

type panickyBackend struct{ fakeBackend }

func (*panickyBackend) Cleanup() error { panic("cleanup exploded") }

func TestReleaseSwallowsFailures(t *testing.T) {
	require.NotPanics(t, func() { Release(nil, zerolog.Nop()) })
	require.NotPanics(t, func() { Release(&panickyBackend{}, zerolog.Nop()) })

	fb := &fakeBackend{cleanupErr: errors.New("bus gone")}
	Release(fb, zerolog.Nop())
	require.Equal(t, 1, fb.cleanups)
}
