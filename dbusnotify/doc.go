/*
Package dbusnotify displays notifications through the freedesktop D-Bus
notification interface.
See: https://specifications.freedesktop.org/notification-spec/latest/ and
https://github.com/godbus/dbus

The notification server allocates its own id for every notification shown.
This id is unique within the dbus session and is not recycled unless the
capacity of a uint32 is exceeded.

Backend adapts a Notifier to notifyfwd.Backend: it keeps the mapping between
the ids chosen by the remote peer and the ids allocated by the server, and
translates NotificationClosed and ActionInvoked signals back to peer ids.
*/
package dbusnotify
