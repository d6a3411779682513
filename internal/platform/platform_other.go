//go:build !linux && !freebsd && !openbsd && !netbsd && !dragonfly && !windows

package platform

import (
	"github.com/rs/zerolog"

	"github.com/esiqveland/notifyfwd"
)

func nativeFactories(zerolog.Logger) []notifyfwd.Factory {
	return nil
}
