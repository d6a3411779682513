package dbusnotify

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"

	"github.com/esiqveland/notifyfwd"
)

const (
	dbusObjectPath             = "/org/freedesktop/Notifications" // the DBUS object path
	dbusNotificationsInterface = "org.freedesktop.Notifications"  // DBUS Interface
	signalNotificationClosed   = "org.freedesktop.Notifications.NotificationClosed"
	signalActionInvoked        = "org.freedesktop.Notifications.ActionInvoked"
	callGetCapabilities        = "org.freedesktop.Notifications.GetCapabilities"
	callCloseNotification      = "org.freedesktop.Notifications.CloseNotification"
	callNotify                 = "org.freedesktop.Notifications.Notify"
	callGetServerInformation   = "org.freedesktop.Notifications.GetServerInformation"

	channelBufferSize = 10
)

const (
	// ExpireTimeoutSetByNotificationServer leaves the expiration to the server settings.
	ExpireTimeoutSetByNotificationServer time.Duration = -1 * time.Millisecond
	// ExpireTimeoutNever keeps the notification until it is closed.
	ExpireTimeoutNever time.Duration = 0
)

// Notification holds all information needed for creating a notification
type Notification struct {
	AppName string
	// Setting ReplacesID atomically replaces the notification with this ID.
	// Optional.
	ReplacesID uint32
	// See predefined icons here: http://standards.freedesktop.org/icon-naming-spec/icon-naming-spec-latest.html
	// Optional.
	AppIcon string
	Summary string
	Body    string
	Actions []Action
	Hints   map[string]dbus.Variant
	// ExpireTimeout: duration to show notification. See ExpireTimeoutNever and
	// ExpireTimeoutSetByNotificationServer.
	ExpireTimeout time.Duration
}

// Action is a button shown on the notification.
// Key is reported back in ActionInvokedSignal when the user clicks Label.
type Action struct {
	Key   string
	Label string
}

// AddHint sets hint h, replacing any hint with the same ID.
func (n *Notification) AddHint(h Hint) {
	if n.Hints == nil {
		n.Hints = map[string]dbus.Variant{}
	}
	n.Hints[h.ID] = h.Variant
}

// SetUrgency sets the urgency hint.
func (n *Notification) SetUrgency(u Urgency) {
	n.AddHint(HintUrgency(u))
}

func (n Notification) flatActions() []string {
	actions := make([]string, 0, 2*len(n.Actions))
	for _, a := range n.Actions {
		actions = append(actions, a.Key, a.Label)
	}
	return actions
}

func (n Notification) expireMillis() int32 {
	if n.ExpireTimeout < 0 {
		return -1
	}
	ms := n.ExpireTimeout.Milliseconds()
	if ms > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(ms)
}

// SendNotification is provided for convenience.
// Use if you only want to deliver a notification and dont care about events.
func SendNotification(conn *dbus.Conn, note Notification) (uint32, error) {
	hints := note.Hints
	if hints == nil {
		hints = map[string]dbus.Variant{}
	}
	obj := conn.Object(dbusNotificationsInterface, dbusObjectPath)
	call := obj.Call(callNotify, 0,
		note.AppName,
		note.ReplacesID,
		note.AppIcon,
		note.Summary,
		note.Body,
		note.flatActions(),
		hints,
		note.expireMillis())
	if call.Err != nil {
		return 0, call.Err
	}
	var ret uint32
	if err := call.Store(&ret); err != nil {
		return ret, err
	}
	return ret, nil
}

// ServerInformation is a holder for information returned by
// GetServerInformation call.
type ServerInformation struct {
	Name        string
	Vendor      string
	Version     string
	SpecVersion string
}

// GetServerInformation returns the information on the server.
//
// org.freedesktop.Notifications.GetServerInformation
//
//	GetServerInformation Return Values
//
//		Name		 Type	  Description
//		name		 STRING	  The product name of the server.
//		vendor		 STRING	  The vendor name. For example, "KDE," "GNOME," "freedesktop.org," or "Microsoft."
//		version		 STRING	  The server's version number.
//		spec_version STRING	  The specification version the server is compliant with.
func GetServerInformation(conn *dbus.Conn) (ServerInformation, error) {
	obj := conn.Object(dbusNotificationsInterface, dbusObjectPath)
	if obj == nil {
		return ServerInformation{}, errors.New("error creating dbus call object")
	}
	call := obj.Call(callGetServerInformation, 0)
	if call.Err != nil {
		return ServerInformation{}, call.Err
	}

	ret := ServerInformation{}
	err := call.Store(&ret.Name, &ret.Vendor, &ret.Version, &ret.SpecVersion)
	return ret, err
}

// GetCapabilities gets the capabilities of the notification server.
// Each string describes an optional capability implemented by the server,
// such as "actions", "body-markup" or "icon-static".
func GetCapabilities(conn *dbus.Conn) ([]string, error) {
	obj := conn.Object(dbusNotificationsInterface, dbusObjectPath)
	call := obj.Call(callGetCapabilities, 0)
	if call.Err != nil {
		return []string{}, call.Err
	}
	var ret []string
	err := call.Store(&ret)
	return ret, err
}

// Notifier is an interface for implementing the operations supported by the
// freedesktop DBus Notifications object.
//
// New() sets up a Notifier that listens on dbus' signals regarding
// Notifications: NotificationClosed and ActionInvoked, and delivers them to
// the handlers given with WithOnClosed and WithOnAction.
//
// Caller is responsible to call Close() before exiting,
// to shut down event loop and cleanup.
type Notifier interface {
	SendNotification(n Notification) (uint32, error)
	GetCapabilities() ([]string, error)
	GetServerInformation() (ServerInformation, error)
	CloseNotification(id uint32) (bool, error)
	Close() error
}

// NotificationClosedSignal holds data for *Closed callbacks from Notifications Interface.
type NotificationClosedSignal struct {
	ID     uint32
	Reason notifyfwd.Reason
}

// ActionInvokedSignal holds callback data from any Actions passed to Notification
type ActionInvokedSignal struct {
	ID        uint32
	ActionKey string
}

// Option configures a Notifier.
type Option func(n *notifier)

// WithOnClosed sets the handler for NotificationClosed signals.
func WithOnClosed(h func(*NotificationClosedSignal)) Option {
	return func(n *notifier) { n.onClosed = h }
}

// WithOnAction sets the handler for ActionInvoked signals.
func WithOnAction(h func(*ActionInvokedSignal)) Option {
	return func(n *notifier) { n.onAction = h }
}

// WithLogger overrides the default logger, which discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(n *notifier) { n.log = log }
}

// notifier implements Notifier interface
type notifier struct {
	conn     *dbus.Conn
	signal   chan *dbus.Signal
	done     chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
	onClosed func(*NotificationClosedSignal)
	onAction func(*ActionInvokedSignal)
	log      zerolog.Logger
}

// New creates a new Notifier using conn.
// See also: Notifier
func New(conn *dbus.Conn, opts ...Option) (Notifier, error) {
	n := &notifier{
		conn:   conn,
		signal: make(chan *dbus.Signal, channelBufferSize),
		done:   make(chan struct{}),
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(n)
	}

	// add a listener in dbus for signals to Notification interface.
	err := n.conn.AddMatchSignal(
		dbus.WithMatchObjectPath(dbusObjectPath),
		dbus.WithMatchInterface(dbusNotificationsInterface),
	)
	if err != nil {
		return nil, err
	}

	// register in dbus for signal delivery
	n.conn.Signal(n.signal)

	n.wg.Add(1)
	go n.eventLoop()

	return n, nil
}

func (n *notifier) eventLoop() {
	defer n.wg.Done()
	for {
		select {
		case signal, ok := <-n.signal:
			if !ok {
				return
			}
			n.handleSignal(signal)
		case <-n.done:
			n.log.Debug().Msg("got Close() signal, shutting down")
			return
		}
	}
}

// signal handler that translates signals and calls the registered handlers
func (n *notifier) handleSignal(signal *dbus.Signal) {
	switch signal.Name {
	case signalNotificationClosed:
		sig, ok := parseClosed(signal.Body)
		if !ok {
			n.log.Warn().Interface("body", signal.Body).Msg("malformed NotificationClosed signal")
			return
		}
		if n.onClosed != nil {
			n.onClosed(sig)
		}
	case signalActionInvoked:
		sig, ok := parseAction(signal.Body)
		if !ok {
			n.log.Warn().Interface("body", signal.Body).Msg("malformed ActionInvoked signal")
			return
		}
		if n.onAction != nil {
			n.onAction(sig)
		}
	default:
		n.log.Debug().Str("signal", signal.Name).Msg("unknown signal")
	}
}

func parseClosed(body []interface{}) (*NotificationClosedSignal, bool) {
	if len(body) < 2 {
		return nil, false
	}
	id, ok := body[0].(uint32)
	if !ok {
		return nil, false
	}
	reason, ok := body[1].(uint32)
	if !ok {
		return nil, false
	}
	return &NotificationClosedSignal{ID: id, Reason: notifyfwd.Reason(reason)}, true
}

func parseAction(body []interface{}) (*ActionInvokedSignal, bool) {
	if len(body) < 2 {
		return nil, false
	}
	id, ok := body[0].(uint32)
	if !ok {
		return nil, false
	}
	key, ok := body[1].(string)
	if !ok {
		return nil, false
	}
	return &ActionInvokedSignal{ID: id, ActionKey: key}, true
}

func (n *notifier) GetCapabilities() ([]string, error) {
	return GetCapabilities(n.conn)
}

func (n *notifier) GetServerInformation() (ServerInformation, error) {
	return GetServerInformation(n.conn)
}

// SendNotification sends a notification to the notification server.
// Implements dbus call:
//
//	UINT32 org.freedesktop.Notifications.Notify (
//	    STRING app_name,
//	    UINT32 replaces_id,
//	    STRING app_icon,
//	    STRING summary,
//	    STRING body,
//	    ARRAY  actions,
//	    DICT   hints,
//	    INT32  expire_timeout
//	);
//
// If replaces_id is 0, the return value is a UINT32 that represent the
// notification. The returned ID is always greater than zero.
// If replaces_id is not 0, the returned value is the same value as replaces_id.
func (n *notifier) SendNotification(note Notification) (uint32, error) {
	return SendNotification(n.conn, note)
}

// CloseNotification causes a notification to be forcefully closed and removed from the user's view.
//
// The NotificationClosed (dbus) signal is emitted by this method.
// If the notification no longer exists, an empty D-BUS Error message is sent back.
func (n *notifier) CloseNotification(id uint32) (bool, error) {
	obj := n.conn.Object(dbusNotificationsInterface, dbusObjectPath)
	call := obj.Call(callCloseNotification, 0, id)
	if call.Err != nil {
		return false, call.Err
	}
	return true, nil
}

// Close cleans up and shuts down signal delivery loop.
// It must not be called from a signal handler.
func (n *notifier) Close() error {
	var err error
	n.once.Do(func() {
		close(n.done)
		n.wg.Wait()

		// remove signal reception
		n.conn.RemoveSignal(n.signal)
		err = n.conn.RemoveMatchSignal(
			dbus.WithMatchObjectPath(dbusObjectPath),
			dbus.WithMatchInterface(dbusNotificationsInterface),
		)
	})
	return err
}
