//go:build !windows

package toastnotify

import (
	"github.com/rs/zerolog"

	"github.com/esiqveland/notifyfwd"
)

// Backend is unavailable outside Windows.
type Backend struct{}

// New always fails with notifyfwd.ErrUnsupported.
func New(zerolog.Logger) (*Backend, error) {
	return nil, notifyfwd.ErrUnsupported
}

func (*Backend) ShowNotify(*notifyfwd.Notification) error { return notifyfwd.ErrUnsupported }
func (*Backend) CloseNotify(uint32) error                 { return notifyfwd.ErrUnsupported }
func (*Backend) Cleanup() error                           { return nil }
