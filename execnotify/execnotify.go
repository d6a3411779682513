// Package execnotify shows notifications by running notify-send.
//
// It is the fallback when the session bus cannot be reached directly. The
// command reports nothing back, so closes and actions never reach the peer.
package execnotify

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/esiqveland/notifyfwd"
)

const (
	command     = "notify-send"
	execTimeout = 5 * time.Second
)

var _ notifyfwd.Backend = (*Backend)(nil)

// Backend runs notify-send for every notification.
type Backend struct {
	path    string
	log     zerolog.Logger
	timeout time.Duration
	run     func(ctx context.Context, name string, args ...string) error
}

// Factory returns a notifyfwd.Factory that succeeds when notify-send is on PATH.
func Factory(log zerolog.Logger) notifyfwd.Factory {
	return notifyfwd.Factory{
		Name: "notify-send",
		New: func(notifyfwd.CloseHandler, notifyfwd.ActionHandler) (notifyfwd.Backend, error) {
			b, err := New(log)
			if err != nil {
				return nil, err
			}
			return b, nil
		},
	}
}

// New looks up notify-send and returns a Backend using it.
func New(log zerolog.Logger) (*Backend, error) {
	path, err := exec.LookPath(command)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", notifyfwd.ErrUnsupported, err)
	}
	return &Backend{
		path:    path,
		log:     log.With().Str("backend", command).Logger(),
		timeout: execTimeout,
		run:     runCommand,
	}, nil
}

func runCommand(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, out)
	}
	return nil
}

// ShowNotify implements notifyfwd.Backend.
func (b *Backend) ShowNotify(n *notifyfwd.Notification) error {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()
	return b.run(ctx, b.path, Args(n)...)
}

// Args returns the notify-send arguments for n.
func Args(n *notifyfwd.Notification) []string {
	var args []string
	if n.AppName != "" {
		args = append(args, "--app-name="+n.AppName)
	}
	if icon, ok := n.AppIcon.(string); ok && icon != "" {
		args = append(args, "--icon="+icon)
	}
	if n.ExpireTimeout > 0 {
		args = append(args, "--expire-time="+strconv.Itoa(int(n.ExpireTimeout)))
	}
	if u, ok := n.Hints["urgency"]; ok {
		switch fmt.Sprint(u) {
		case "0":
			args = append(args, "--urgency=low")
		case "2":
			args = append(args, "--urgency=critical")
		default:
			args = append(args, "--urgency=normal")
		}
	}
	args = append(args, "--", n.Summary)
	if n.Body != "" {
		args = append(args, n.Body)
	}
	return args
}

// CloseNotify implements notifyfwd.Backend. notify-send cannot close notifications.
func (b *Backend) CloseNotify(id uint32) error {
	b.log.Debug().Uint32("id", id).Msg("notify-send cannot close notifications")
	return nil
}

// Cleanup implements notifyfwd.Backend.
func (b *Backend) Cleanup() error { return nil }
