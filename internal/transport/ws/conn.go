// Package ws carries notifyfwd packets over a websocket.
//
// Every message is one JSON array whose first element is the packet type.
// Numbers are decoded as json.Number so large ids survive the trip.
package ws

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cast"

	"github.com/esiqveland/notifyfwd"
)

// PacketHello opens a session in both directions.
const PacketHello = "hello"

const (
	readLimit    = 4 << 20 // icons travel inline
	writeTimeout = 10 * time.Second
)

var (
	ErrBadPacket = errors.New("bad packet")
	ErrHandshake = errors.New("handshake failed")
)

// Conn is one websocket session. Send is safe for concurrent use;
// Read, Hello and Run must be called from a single goroutine.
type Conn struct {
	conn *websocket.Conn
	id   string
	log  zerolog.Logger

	writeMu sync.Mutex
}

// Dial connects to a peer.
func Dial(ctx context.Context, url string, log zerolog.Logger) (*Conn, error) {
	c, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return newConn(c, log), nil
}

// Accept upgrades an HTTP request to a packet connection.
func Accept(w http.ResponseWriter, r *http.Request, log zerolog.Logger) (*Conn, error) {
	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		return nil, err
	}
	return newConn(c, log), nil
}

func newConn(c *websocket.Conn, log zerolog.Logger) *Conn {
	c.SetReadLimit(readLimit)
	id := uuid.Must(uuid.NewV7()).String()
	return &Conn{
		conn: c,
		id:   id,
		log:  log.With().Str("session", id).Logger(),
	}
}

// ID returns the session id used in log lines.
func (c *Conn) ID() string { return c.id }

// Send writes one packet. It implements notifyfwd.Sender.
func (c *Conn) Send(packetType string, args ...any) error {
	data, err := json.Marshal(append([]any{packetType}, args...))
	if err != nil {
		return fmt.Errorf("encode %s: %w", packetType, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.log.Trace().Str("packet", packetType).Int("len", len(data)).Msg("send")
	return c.conn.Write(ctx, websocket.MessageText, data)
}

// Read returns the next packet. Undecodable messages return an error
// wrapping ErrBadPacket; the connection stays usable.
func (c *Conn) Read(ctx context.Context) (notifyfwd.Packet, error) {
	_, data, err := c.conn.Read(ctx)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var p notifyfwd.Packet
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPacket, err)
	}
	if p.Type() == "" {
		return nil, fmt.Errorf("%w: missing packet type", ErrBadPacket)
	}
	return p, nil
}

// Hello sends our capabilities and waits for the peer's.
func (c *Conn) Hello(ctx context.Context, caps map[string]any) (map[string]any, error) {
	if err := c.Send(PacketHello, caps); err != nil {
		return nil, err
	}
	p, err := c.Read(ctx)
	if err != nil {
		return nil, err
	}
	if p.Type() != PacketHello || len(p) < 2 {
		return nil, fmt.Errorf("%w: unexpected %q packet", ErrHandshake, p.Type())
	}
	peer, err := cast.ToStringMapE(p[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHandshake, err)
	}
	return peer, nil
}

// Run dispatches packets to handlers by type until ctx is done or the peer
// closes the connection. Unknown packet types are ignored.
func (c *Conn) Run(ctx context.Context, handlers map[string]func(notifyfwd.Packet)) error {
	for {
		p, err := c.Read(ctx)
		if errors.Is(err, ErrBadPacket) {
			c.log.Warn().Err(err).Msg("dropping packet")
			continue
		}
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		h, ok := handlers[p.Type()]
		if !ok {
			c.log.Debug().Str("packet", p.Type()).Msg("no handler for packet")
			continue
		}
		h(p)
	}
}

// Close closes the connection normally.
func (c *Conn) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}
