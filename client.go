package notifyfwd

import (
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultExpireTimeout is used by Notify when LocalNotification.ExpireTimeout is zero.
const DefaultExpireTimeout = 10 * time.Second

// Sender sends a packet to the peer.
type Sender interface {
	Send(packetType string, args ...any) error
}

// TrayResolver returns the toolkit window a notification from appName should
// be attached to, or nil.
type TrayResolver func(appName string, hints map[string]any) any

// Client is the notification side of a session with one peer.
//
// Packets must be fed from a single goroutine. NotificationClosed and
// NotificationAction may be called from any goroutine.
// The backend is constructed by InitLocal before the session starts and
// released by Cleanup after it ends.
type Client struct {
	log        zerolog.Logger
	sender     Sender
	scheduler  Scheduler
	factories  []Factory
	icons      IconDecoder
	iconLoader IconLoader
	tray       TrayResolver
	appName    string

	caps     Capabilities
	backend  Backend
	registry *Registry
	states   *tracker
}

// Option configures a Client.
type Option func(c *Client)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithScheduler selects where backend calls run. The default is Immediate.
func WithScheduler(s Scheduler) Option {
	return func(c *Client) {
		if s != nil {
			c.scheduler = s
		}
	}
}

// WithBackends sets the ordered list of backend factories tried by InitLocal.
func WithBackends(factories ...Factory) Option {
	return func(c *Client) { c.factories = factories }
}

// WithIconDecoder replaces the ImageDecoder.
func WithIconDecoder(d IconDecoder) Option {
	return func(c *Client) {
		if d != nil {
			c.icons = d
		}
	}
}

// WithIconLoader sets how Notify resolves icon names.
func WithIconLoader(l IconLoader) Option {
	return func(c *Client) { c.iconLoader = l }
}

// WithTrayResolver sets how notifications are attached to a tray window.
func WithTrayResolver(r TrayResolver) Option {
	return func(c *Client) { c.tray = r }
}

// WithAppName sets the application name used by Notify.
func WithAppName(name string) Option {
	return func(c *Client) { c.appName = name }
}

// New creates a Client sending to sender.
// Call InitLocal and ParseServerCapabilities before feeding packets.
func New(sender Sender, opts ...Option) *Client {
	c := &Client{
		log:       zerolog.Nop(),
		sender:    sender,
		scheduler: Immediate(),
		icons:     ImageDecoder{},
		appName:   "notifyfwd",
		registry:  NewRegistry(),
		states:    newTracker(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With().Str("comp", "notify").Logger()
	return c
}

// Handlers returns the packet handlers to register with the transport,
// keyed by packet type.
func (c *Client) Handlers() map[string]func(Packet) {
	return map[string]func(Packet){
		PacketShow:        c.HandleShow,
		PacketClose:       c.HandleClose,
		packetShowLegacy:  c.HandleShow,
		packetCloseLegacy: c.HandleClose,
	}
}

// State returns the tracked state of id.
func (c *Client) State(id uint32) (State, bool) {
	return c.states.get(id)
}

// LocalNotification is a notification raised by this side of the session.
type LocalNotification struct {
	ID      uint32
	Summary string
	Body    string
	Actions []string
	Hints   map[string]any
	// ExpireTimeout of zero uses DefaultExpireTimeout.
	ExpireTimeout time.Duration
	IconName      string
}

// Notify shows a local notification. Its close and action events are
// delivered to h instead of the peer.
//
// Without local support the summary and body are logged instead.
func (c *Client) Notify(n LocalNotification, h ResponseHandler) {
	c.registry.Register(n.ID, h)
	timeout := n.ExpireTimeout
	if timeout == 0 {
		timeout = DefaultExpireTimeout
	}
	req := &ShowRequest{
		ID:            n.ID,
		AppName:       c.appName,
		ReplacesID:    n.ID,
		AppIcon:       "",
		Summary:       n.Summary,
		Body:          n.Body,
		ExpireTimeout: clampInt32(timeout.Milliseconds()),
		Actions:       n.Actions,
		Hints:         n.Hints,
	}
	if !c.caps.Local || c.backend == nil {
		c.logPlain(req.Summary, req.Body)
		return
	}
	if n.IconName != "" && c.iconLoader != nil {
		icon, err := c.iconLoader(n.IconName)
		if err != nil {
			c.log.Debug().Err(err).Str("icon", n.IconName).Msg("icon lookup failed")
		} else {
			req.Icon = icon
		}
	}
	c.show(req)
}

// Cleanup releases the backend. It is safe to call more than once.
func (c *Client) Cleanup() {
	b := c.backend
	c.log.Debug().Msgf("cleanup notifier=%T", b)
	if b == nil {
		return
	}
	c.backend = nil
	Release(b, c.log)
}

// logPlain is the fallback when there is no backend to show a notification.
func (c *Client) logPlain(summary, body string) {
	c.log.Info().Msg(summary)
	body = strings.TrimRight(body, "\r\n")
	if body == "" {
		return
	}
	for _, line := range strings.Split(body, "\n") {
		c.log.Info().Msg(" " + strings.TrimSuffix(line, "\r"))
	}
}
