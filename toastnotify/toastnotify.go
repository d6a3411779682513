// Package toastnotify shows notifications as Windows toasts.
//
// Toasts are fire-and-forget: closes and actions are not reported back.
// Actions become buttons that launch their key as a protocol URI.
package toastnotify

import (
	"github.com/rs/zerolog"

	"github.com/esiqveland/notifyfwd"
)

// DefaultAppID is used when the notification carries no application name.
const DefaultAppID = "notifyfwd"

// Factory returns a notifyfwd.Factory for toasts. Outside Windows it always
// fails with notifyfwd.ErrUnsupported.
func Factory(log zerolog.Logger) notifyfwd.Factory {
	return notifyfwd.Factory{
		Name: "toast",
		New: func(notifyfwd.CloseHandler, notifyfwd.ActionHandler) (notifyfwd.Backend, error) {
			b, err := New(log)
			if err != nil {
				return nil, err
			}
			return b, nil
		},
	}
}

type toastAction struct {
	Label     string
	Arguments string
}

// toastActions pairs [key, label...] for protocol activation.
func toastActions(flat []string) []toastAction {
	var actions []toastAction
	for i := 0; i+1 < len(flat); i += 2 {
		actions = append(actions, toastAction{Label: flat[i+1], Arguments: flat[i]})
	}
	return actions
}

func appID(n *notifyfwd.Notification) string {
	if n.AppName != "" {
		return n.AppName
	}
	return DefaultAppID
}
