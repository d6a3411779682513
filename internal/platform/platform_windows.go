//go:build windows

package platform

import (
	"github.com/rs/zerolog"

	"github.com/esiqveland/notifyfwd"
	"github.com/esiqveland/notifyfwd/toastnotify"
)

func nativeFactories(log zerolog.Logger) []notifyfwd.Factory {
	return []notifyfwd.Factory{
		toastnotify.Factory(log),
	}
}
