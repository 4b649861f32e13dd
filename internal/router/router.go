// Package router implements the Message Router (C2): type-based handler
// dispatch over inbound frames, plus a "ready" gate that the Transport
// (C1) waits on before dialing so no message is lost between socket
// open and handler registration.
//
// Grounded on the type-switch dispatch in
// pkg/server/websocket.go's ReadLoop (dispatch by frame.Type) and the
// sync.Once-guarded lazy initialization used throughout
// pkg/server/session.go.
package router

import (
	"log/slog"
	"sync"

	"github.com/reactpy-go/client/internal/wire"
)

// Handler processes one inbound message of a registered type.
type Handler func(raw []byte)

// Router dispatches inbound wire frames to handlers registered by
// message type, and sends outbound frames through a Sender.
type Router struct {
	mu       sync.Mutex
	handlers map[string][]Handler
	logger   *slog.Logger

	readyOnce sync.Once
	readyCh   chan struct{}

	sendMu sync.Mutex
	sender Sender
}

// Sender transmits an already-encoded outbound frame. Transport
// implements this; Router never constructs a socket itself.
type Sender interface {
	Send(data []byte)
}

// New creates a Router. logger defaults to slog.Default() if nil.
func New(logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		handlers: make(map[string][]Handler),
		logger:   logger,
		readyCh:  make(chan struct{}),
	}
}

// BindSender attaches the transport that outbound messages are written
// through.
func (r *Router) BindSender(s Sender) {
	r.sendMu.Lock()
	defer r.sendMu.Unlock()
	r.sender = s
}

// Ready resolves once the first handler has been registered; the
// Transport awaits this before dialing.
func (r *Router) Ready() <-chan struct{} {
	return r.readyCh
}

// OnMessage registers handler for msgType and returns an unregister
// function. The very first call to OnMessage (for any type) resolves
// the ready gate.
func (r *Router) OnMessage(msgType string, handler Handler) (unregister func()) {
	r.mu.Lock()
	r.handlers[msgType] = append(r.handlers[msgType], handler)
	idx := len(r.handlers[msgType]) - 1
	r.mu.Unlock()

	r.readyOnce.Do(func() { close(r.readyCh) })

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		hs := r.handlers[msgType]
		if idx < len(hs) {
			hs[idx] = nil
		}
	}
}

// HandleIncoming decodes just the envelope's type and dispatches raw to
// every handler registered for it. Unknown types are logged and dropped.
func (r *Router) HandleIncoming(raw []byte) {
	env, err := wire.DecodeEnvelope(raw)
	if err != nil || env.Type == "" {
		r.logger.Warn("router: message missing type", "error", err)
		return
	}

	r.mu.Lock()
	hs := append([]Handler(nil), r.handlers[env.Type]...)
	r.mu.Unlock()

	if len(hs) == 0 {
		r.logger.Warn("router: no handlers registered for message type", "type", env.Type)
		return
	}
	for _, h := range hs {
		if h != nil {
			h(raw)
		}
	}
}

// Send encodes nothing itself; it hands an already-encoded frame to the
// bound Sender (the Transport), dropping it silently if none is bound
// yet (a best-effort send, never blocking or erroring the caller).
func (r *Router) Send(data []byte) {
	r.sendMu.Lock()
	s := r.sender
	r.sendMu.Unlock()
	if s != nil {
		s.Send(data)
	}
}
