// Package transport implements the Transport (C1): a reconnecting
// WebSocket with bounded exponential backoff.
//
// Dialing is backend-pluggable through the Dialer interface so the same
// reconnect state machine runs both under js/wasm (backed by the
// browser WebSocket constructor, see dialer_js.go) and natively (backed
// by gorilla/websocket, see dialer_native.go). Tests inject a fake
// Dialer, which is what lets the reconnect-jitter property be tested
// under `go test` without a browser. Grounded on the read/write-loop
// structure in pkg/server/websocket.go.
package transport

import (
	"log/slog"
	"math/rand"
	"sync"
	"time"
)

// Socket is a live, already-open connection handle.
type Socket interface {
	// Send writes one frame. Errors are never surfaced to callers --
	// the Transport itself never throws.
	Send(data []byte)
	// Close closes the underlying connection.
	Close()
}

// Callbacks are invoked by a Dialer as connection lifecycle events occur.
// They are always invoked from the single cooperative event loop (the
// browser event loop under js/wasm; a dedicated goroutine serializing
// all three callbacks under the native backend).
type Callbacks struct {
	OnOpen    func(sock Socket)
	OnMessage func(data []byte)
	OnClose   func()
}

// Dialer starts an asynchronous connection attempt to url. It must not
// block; lifecycle events are reported through cb.
type Dialer interface {
	Dial(url string, cb Callbacks)
}

// Options configures the reconnect backoff.
type Options struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxRetries      int
	BackoffRate     float64
	IntervalJitter  float64

	// RandFloat64 is injectable for deterministic jitter in tests.
	// Defaults to rand.Float64.
	RandFloat64 func() float64

	// Schedule injects a timer so tests can observe scheduled durations
	// without sleeping. Defaults to time.AfterFunc, returning a cancel
	// function.
	Schedule func(d time.Duration, f func()) (cancel func())
}

// DefaultOptions returns the runtime's standard backoff defaults.
func DefaultOptions() Options {
	return Options{
		InitialInterval: 750 * time.Millisecond,
		MaxInterval:     60 * time.Second,
		MaxRetries:      50,
		BackoffRate:     1.1,
		IntervalJitter:  0.1,
	}
}

func (o *Options) fillDefaults() {
	def := DefaultOptions()
	if o.InitialInterval == 0 {
		o.InitialInterval = def.InitialInterval
	}
	if o.MaxInterval == 0 {
		o.MaxInterval = def.MaxInterval
	}
	if o.MaxRetries == 0 {
		o.MaxRetries = def.MaxRetries
	}
	if o.BackoffRate == 0 {
		o.BackoffRate = def.BackoffRate
	}
	if o.IntervalJitter == 0 {
		o.IntervalJitter = def.IntervalJitter
	}
	if o.RandFloat64 == nil {
		o.RandFloat64 = rand.Float64
	}
	if o.Schedule == nil {
		o.Schedule = func(d time.Duration, f func()) func() {
			t := time.AfterFunc(d, f)
			return func() { t.Stop() }
		}
	}
}

// addJitter computes x + (rand()*2*j*x - j*x), uniform within +/-j of x.
func addJitter(x time.Duration, j float64, randFloat64 func() float64) time.Duration {
	xf := float64(x)
	delta := randFloat64()*2*j*xf - j*xf
	return time.Duration(xf + delta)
}

// Transport owns one logical connection (possibly spanning many
// reconnects) to the server stream URL.
type Transport struct {
	loc    ServerLocation
	dialer Dialer
	ready  <-chan struct{}
	opts   Options
	logger *slog.Logger

	onReady   func()
	onMessage func(data []byte)

	mu              sync.Mutex
	sock            Socket
	retries         int
	currentInterval time.Duration
	everConnected   bool
	closed          bool
	cancelReconnect func()
}

// New creates a Transport. ready gates the first dial;
// onReady is invoked once the socket has opened; onMessage is invoked
// for every inbound frame.
func New(loc ServerLocation, dialer Dialer, ready <-chan struct{}, opts Options, logger *slog.Logger, onReady func(), onMessage func(data []byte)) *Transport {
	opts.fillDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Transport{
		loc:             loc,
		dialer:          dialer,
		ready:           ready,
		opts:            opts,
		logger:          logger,
		onReady:         onReady,
		onMessage:       onMessage,
		currentInterval: opts.InitialInterval,
	}
}

// Start blocks until the ready gate resolves (or ctx-less: the caller is
// expected to run this in its own goroutine under the native backend; on
// js/wasm the ready channel resolves synchronously within one
// microtask), then dials.
func (t *Transport) Start() {
	<-t.ready
	t.dial()
}

func (t *Transport) dial() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	t.dialer.Dial(t.loc.StreamURL(), Callbacks{
		OnOpen:    t.handleOpen,
		OnMessage: t.handleMessage,
		OnClose:   t.handleClose,
	})
}

func (t *Transport) handleOpen(sock Socket) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		sock.Close()
		return
	}
	t.sock = sock
	t.everConnected = true
	t.retries = 0
	t.currentInterval = t.opts.InitialInterval
	t.mu.Unlock()

	if t.onReady != nil {
		t.onReady()
	}
}

func (t *Transport) handleMessage(data []byte) {
	if t.onMessage != nil {
		t.onMessage(data)
	}
}

// handleClose implements the close policy: a never-connected close is
// fatal; otherwise retry with jittered backoff up to MaxRetries.
func (t *Transport) handleClose() {
	t.mu.Lock()

	t.sock = nil
	if t.closed {
		t.mu.Unlock()
		return
	}
	if !t.everConnected {
		t.logger.Error("transport: initial connection failed; not retrying")
		t.mu.Unlock()
		return
	}
	if t.retries >= t.opts.MaxRetries {
		t.logger.Error("transport: reconnect attempts exhausted", "retries", t.retries)
		t.mu.Unlock()
		return
	}

	wait := addJitter(t.currentInterval, t.opts.IntervalJitter, t.opts.RandFloat64)
	nextInterval := time.Duration(float64(t.currentInterval) * t.opts.BackoffRate)
	if nextInterval > t.opts.MaxInterval {
		nextInterval = t.opts.MaxInterval
	}
	t.currentInterval = nextInterval
	t.retries++
	retries := t.retries
	t.mu.Unlock()

	t.logger.Warn("transport: connection dropped; reconnecting", "wait", wait, "retries", retries)
	// Schedule runs without t.mu held: an injected Schedule may invoke
	// t.dial synchronously, and dial takes t.mu itself.
	cancel := t.opts.Schedule(wait, t.dial)
	t.mu.Lock()
	t.cancelReconnect = cancel
	t.mu.Unlock()
}

// SendMessage enqueues data for transmission. Best-effort: if the socket
// is not currently open, the message is dropped silently, since the
// server is authoritative and will resend via the normal patch flow on
// reconnect.
func (t *Transport) SendMessage(data []byte) {
	t.mu.Lock()
	sock := t.sock
	t.mu.Unlock()
	if sock != nil {
		sock.Send(data)
	}
}

// Stop is an explicit close: it cancels any pending reconnect and any
// future open.
func (t *Transport) Stop() {
	t.mu.Lock()
	t.closed = true
	sock := t.sock
	t.sock = nil
	cancel := t.cancelReconnect
	t.cancelReconnect = nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if sock != nil {
		sock.Close()
	}
}
