//go:build windows

package toastnotify

import (
	"errors"
	"image/png"
	"os"
	"sync"

	"github.com/go-toast/toast"
	"github.com/rs/zerolog"

	"github.com/esiqveland/notifyfwd"
)

var _ notifyfwd.Backend = (*Backend)(nil)

// Backend pushes toast notifications.
type Backend struct {
	log zerolog.Logger

	mu    sync.Mutex
	icons []string // temporary icon files removed by Cleanup
}

// New returns a toast Backend.
func New(log zerolog.Logger) (*Backend, error) {
	return &Backend{log: log.With().Str("backend", "toast").Logger()}, nil
}

// ShowNotify implements notifyfwd.Backend.
func (b *Backend) ShowNotify(n *notifyfwd.Notification) error {
	t := toast.Notification{
		AppID:   appID(n),
		Title:   n.Summary,
		Message: n.Body,
	}
	if n.ExpireTimeout <= 0 || n.ExpireTimeout > 10000 {
		t.Duration = toast.Long
	} else {
		t.Duration = toast.Short
	}
	for _, a := range toastActions(n.Actions) {
		t.Actions = append(t.Actions, toast.Action{Type: "protocol", Label: a.Label, Arguments: a.Arguments})
	}
	if n.Icon != nil {
		path, err := b.writeIcon(n)
		if err != nil {
			b.log.Debug().Err(err).Msg("cannot write toast icon")
		} else {
			t.Icon = path
		}
	}
	return t.Push()
}

func (b *Backend) writeIcon(n *notifyfwd.Notification) (string, error) {
	f, err := os.CreateTemp("", "notifyfwd-*.png")
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := png.Encode(f, n.Icon); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	b.mu.Lock()
	b.icons = append(b.icons, f.Name())
	b.mu.Unlock()
	return f.Name(), nil
}

// CloseNotify implements notifyfwd.Backend. Toasts cannot be withdrawn.
func (b *Backend) CloseNotify(id uint32) error {
	b.log.Debug().Uint32("id", id).Msg("toasts cannot be closed")
	return nil
}

// Cleanup removes temporary icon files.
func (b *Backend) Cleanup() error {
	b.mu.Lock()
	icons := b.icons
	b.icons = nil
	b.mu.Unlock()
	var errs []error
	for _, path := range icons {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
