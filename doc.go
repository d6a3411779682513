/*
The notifyfwd package forwards desktop notifications between a remote peer and
a local notifier backend.

The peer offers notifications during the session handshake (see Caps and
ParseServerCapabilities). Once both ends support them, "notification-show"
packets are decoded and handed to the single active Backend, and
"notification-close" packets close them again.

Each notification is identified by the id the peer assigned to it.
The id is only unique while the notification is in flight: the peer may
reuse it once the notification is closed.

User interaction travels the other way. When the backend reports that a
notification was closed or that one of its actions was invoked, the event is
delivered to the local ResponseHandler registered for that id (see Notify),
or forwarded to the peer when there is none.

Backend calls never run on the transport goroutine directly unless the
Immediate scheduler is selected; with Deferred they are queued onto the
goroutine that owns the UI (see MainLoop).
*/
package notifyfwd
