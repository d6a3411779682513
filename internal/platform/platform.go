// Package platform lists the native notifier backends of the running OS,
// in order of preference.
package platform

import (
	"github.com/rs/zerolog"

	"github.com/esiqveland/notifyfwd"
)

// NativeFactories returns the native backend factories, best first.
func NativeFactories(log zerolog.Logger) []notifyfwd.Factory {
	return nativeFactories(log)
}
