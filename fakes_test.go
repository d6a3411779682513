package notifyfwd

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu         sync.Mutex
	shown      []*Notification
	closed     []uint32
	cleanups   int
	showErr    error
	showPanic  bool
	cleanupErr error
	// closeOnShow makes ShowNotify report a close before returning.
	closeOnShow bool

	onClose  CloseHandler
	onAction ActionHandler
}

func (f *fakeBackend) factory() Factory {
	return Factory{
		Name: "fake",
		New: func(onClose CloseHandler, onAction ActionHandler) (Backend, error) {
			f.onClose, f.onAction = onClose, onAction
			return f, nil
		},
	}
}

func (f *fakeBackend) ShowNotify(n *Notification) error {
	if f.showPanic {
		panic("backend exploded")
	}
	if f.showErr != nil {
		return f.showErr
	}
	f.mu.Lock()
	f.shown = append(f.shown, n)
	f.mu.Unlock()
	if f.closeOnShow {
		f.onClose(n.ID, ReasonExpired, "")
	}
	return nil
}

func (f *fakeBackend) CloseNotify(id uint32) error {
	f.mu.Lock()
	f.closed = append(f.closed, id)
	f.mu.Unlock()
	return nil
}

func (f *fakeBackend) Cleanup() error {
	f.mu.Lock()
	f.cleanups++
	f.mu.Unlock()
	return f.cleanupErr
}

func (f *fakeBackend) shownSummaries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, n := range f.shown {
		out = append(out, n.Summary)
	}
	return out
}

type sentPacket struct {
	Type string
	Args []any
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentPacket
	err  error
}

func (s *fakeSender) Send(packetType string, args ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentPacket{Type: packetType, Args: args})
	return s.err
}

func (s *fakeSender) packets() []sentPacket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentPacket(nil), s.sent...)
}

// syncBuffer lets backend goroutines log while the test reads.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

type logLine struct {
	Level   string `json:"level"`
	Message string `json:"message"`
	Summary string `json:"summary"`
	Error   string `json:"error"`
}

func (b *syncBuffer) reset() {
	b.mu.Lock()
	b.buf.Reset()
	b.mu.Unlock()
}

func testLogger(w io.Writer) Option {
	return WithLogger(zerolog.New(w))
}

func (b *syncBuffer) lines(t *testing.T) []logLine {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []logLine
	sc := bufio.NewScanner(bytes.NewReader(b.buf.Bytes()))
	for sc.Scan() {
		var l logLine
		require.NoError(t, json.Unmarshal(sc.Bytes(), &l))
		out = append(out, l)
	}
	return out
}

func (b *syncBuffer) messages(t *testing.T, level string) []string {
	var out []string
	for _, l := range b.lines(t) {
		if l.Level == level {
			out = append(out, l.Message)
		}
	}
	return out
}

type harness struct {
	client  *Client
	backend *fakeBackend
	sender  *fakeSender
	logs    *syncBuffer
}

// newHarness returns a client with a fake backend and a peer that supports
// notifications and close events.
func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{backend: &fakeBackend{}, sender: &fakeSender{}, logs: &syncBuffer{}}
	base := []Option{
		testLogger(h.logs),
		WithBackends(h.backend.factory()),
	}
	h.client = New(h.sender, append(base, opts...)...)
	require.True(t, h.client.InitLocal(true))
	require.True(t, h.client.ParseServerCapabilities(map[string]any{
		"notifications": map[string]any{"enabled": true, "close": true},
	}))
	require.True(t, h.client.Capabilities().Enabled())
	h.logs.reset()
	return h
}
