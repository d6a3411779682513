package notifyfwd

import (
	"context"
	"sync"
)

// Scheduler decides where backend calls run.
type Scheduler interface {
	Schedule(fn func())
}

// IdleAdder queues work onto the goroutine that owns the UI.
// IdleAdd must not block and must run queued functions in submission order.
type IdleAdder interface {
	IdleAdd(fn func())
}

type immediate struct{}

func (immediate) Schedule(fn func()) { fn() }

// Immediate runs backend calls synchronously on the goroutine that received
// the packet.
func Immediate() Scheduler { return immediate{} }

type deferred struct {
	loop IdleAdder
}

func (d deferred) Schedule(fn func()) { d.loop.IdleAdd(fn) }

// Deferred hands backend calls to loop. The caller never waits for them.
func Deferred(loop IdleAdder) Scheduler { return deferred{loop: loop} }

// MainLoop is an IdleAdder backed by an unbounded FIFO.
// Run it on the goroutine that owns the UI toolkit.
type MainLoop struct {
	mu     sync.Mutex
	queue  []func()
	wakeup chan struct{}
}

// NewMainLoop returns an idle MainLoop.
func NewMainLoop() *MainLoop {
	return &MainLoop{wakeup: make(chan struct{}, 1)}
}

// IdleAdd queues fn. It never blocks.
func (l *MainLoop) IdleAdd(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	select {
	case l.wakeup <- struct{}{}:
	default:
	}
}

// Pending returns the number of queued functions.
func (l *MainLoop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Iterate runs everything queued so far and returns how many functions ran.
// Functions queued while iterating run on the next call.
func (l *MainLoop) Iterate() int {
	l.mu.Lock()
	batch := l.queue
	l.queue = nil
	l.mu.Unlock()
	for _, fn := range batch {
		fn()
	}
	return len(batch)
}

// Run processes queued functions until ctx is done.
func (l *MainLoop) Run(ctx context.Context) error {
	for {
		l.Iterate()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wakeup:
		}
	}
}
