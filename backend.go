package notifyfwd

import (
	"errors"
	"fmt"
	"image"

	"github.com/rs/zerolog"
)

// Notification holds everything a Backend needs to display one notification.
type Notification struct {
	DBusID string
	// Tray is the toolkit window the notification is attached to, if any.
	Tray       any
	ID         uint32
	AppName    string
	ReplacesID uint32
	AppIcon    any
	Summary    string
	Body       string
	// Actions are pairs of (action_key, label), e.g.: []string{"cancel", "Cancel", "open", "Open"}
	Actions []string
	Hints   map[string]any
	// ExpireTimeout in milliseconds. 0 or negative values are left to the backend.
	ExpireTimeout int32
	Icon          *image.RGBA
}

// CloseHandler is called by a Backend when a notification it displays is closed.
type CloseHandler func(id uint32, reason Reason, text string)

// ActionHandler is called by a Backend when the user invokes an action.
type ActionHandler func(id uint32, actionID string)

// Backend is a platform notifier.
//
// Implementations may call their CloseHandler and ActionHandler from any
// goroutine, including from within ShowNotify or CloseNotify.
type Backend interface {
	ShowNotify(n *Notification) error
	CloseNotify(id uint32) error
	Cleanup() error
}

// Factory constructs one Backend implementation.
// The handlers are bound to the returned Backend for its whole lifetime.
type Factory struct {
	Name string
	New  func(onClose CloseHandler, onAction ActionHandler) (Backend, error)
}

// Construct tries each factory in order and returns the first Backend that
// constructs successfully. The returned name identifies the winning factory.
//
// If the list is empty or every factory fails, Construct returns ErrNoBackend
// joined with the individual failures.
func Construct(factories []Factory, onClose CloseHandler, onAction ActionHandler, log zerolog.Logger) (Backend, string, error) {
	var errs []error
	for _, f := range factories {
		b, err := tryFactory(f, onClose, onAction)
		if err != nil {
			log.Debug().Err(err).Str("backend", f.Name).Msg("notifier backend failed to construct")
			errs = append(errs, fmt.Errorf("%s: %w", f.Name, err))
			continue
		}
		return b, f.Name, nil
	}
	return nil, "", errors.Join(append([]error{ErrNoBackend}, errs...)...)
}

func tryFactory(f Factory, onClose CloseHandler, onAction ActionHandler) (b Backend, err error) {
	if f.New == nil {
		return nil, errors.New("nil constructor")
	}
	defer func() {
		if r := recover(); r != nil {
			b, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	b, err = f.New(onClose, onAction)
	if err == nil && b == nil {
		err = errors.New("constructor returned no backend")
	}
	return b, err
}

// Release cleans up b. Failures are logged and never returned,
// so that shutdown always proceeds. A nil Backend is ignored.
func Release(b Backend, log zerolog.Logger) {
	if b == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msgf("error on notifier %T cleanup", b)
		}
	}()
	if err := b.Cleanup(); err != nil {
		log.Error().Err(err).Msgf("error on notifier %T cleanup", b)
	}
}
