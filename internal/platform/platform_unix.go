//go:build linux || freebsd || openbsd || netbsd || dragonfly

package platform

import (
	"github.com/rs/zerolog"

	"github.com/esiqveland/notifyfwd"
	"github.com/esiqveland/notifyfwd/dbusnotify"
	"github.com/esiqveland/notifyfwd/execnotify"
)

func nativeFactories(log zerolog.Logger) []notifyfwd.Factory {
	return []notifyfwd.Factory{
		dbusnotify.Factory(log),
		execnotify.Factory(log),
	}
}
