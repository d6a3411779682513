package notifyfwd

import "sync"

// ResponseHandler receives the close or action events of a notification that
// was shown locally through Notify.
//
// event is PacketClose with args (reason Reason, text string), or
// PacketAction with args (actionID string).
type ResponseHandler func(event string, id uint32, args ...any)

// Registry maps in-flight notification ids to their local ResponseHandler.
//
// It is safe for concurrent use: backends report closes from their own
// goroutines while the transport goroutine registers new handlers.
type Registry struct {
	mu       sync.Mutex
	handlers map[uint32]ResponseHandler
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[uint32]ResponseHandler)}
}

// Register sets the handler for id, replacing any previous one.
func (r *Registry) Register(id uint32, h ResponseHandler) {
	if h == nil {
		return
	}
	r.mu.Lock()
	r.handlers[id] = h
	r.mu.Unlock()
}

// Take removes and returns the handler for id.
// It returns nil if no handler is registered.
func (r *Registry) Take(id uint32) ResponseHandler {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handlers[id]
	if !ok {
		return nil
	}
	delete(r.handlers, id)
	return h
}

// Get returns the handler for id without removing it.
func (r *Registry) Get(id uint32) ResponseHandler {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handlers[id]
}
