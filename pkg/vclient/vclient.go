// Package vclient is the public embedding API: Mount wires the Transport,
// Message Router, Model Store, and Reconciler together against a host
// DOM node, mirroring the top-level vango.Mount entry point
// generalized from a server-rendered app shell to a client-driven one.
package vclient

import (
	"log/slog"

	"github.com/reactpy-go/client/internal/dom"
	"github.com/reactpy-go/client/internal/importsrc"
	"github.com/reactpy-go/client/internal/reconcile"
	"github.com/reactpy-go/client/internal/router"
	"github.com/reactpy-go/client/internal/store"
	"github.com/reactpy-go/client/internal/transport"
	"github.com/reactpy-go/client/internal/wire"
)

// Client is a live, mounted connection to a ReactPy server.
type Client struct {
	transport  *transport.Transport
	router     *router.Router
	store      *store.Store
	reconciler *reconcile.Reconciler
	logger     *slog.Logger
}

type options struct {
	serverLoc     transport.ServerLocation
	transportOpts transport.Options
	logger        *slog.Logger
	moduleLoader  importsrc.ModuleLoader
	dialer        transport.Dialer
}

// Option configures Mount.
type Option func(*options)

// WithServerLocation sets the origin, route, and query the client
// connects to. Without it the zero ServerLocation is used, whose empty
// URL yields a stream URL with no host ("ws:///_reactpy/stream").
func WithServerLocation(loc transport.ServerLocation) Option {
	return func(o *options) { o.serverLoc = loc }
}

// WithReconnectOptions overrides the Transport's backoff defaults.
func WithReconnectOptions(opts transport.Options) Option {
	return func(o *options) { o.transportOpts = opts }
}

// WithLogger overrides the default slog.Logger used throughout the
// mounted client's components.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithModuleLoader supplies the ES module loader ImportedElement nodes
// bind against. Without one, ImportedElement nodes always render their
// declared fallback.
func WithModuleLoader(loader importsrc.ModuleLoader) Option {
	return func(o *options) { o.moduleLoader = loader }
}

// WithDialer overrides the Transport's Dialer. cmd/reactpy-client's
// wasm main supplies transport.BrowserDialer{}; tests supply a fake.
// Without it Mount uses transport.NativeDialer.
func WithDialer(dialer transport.Dialer) Option {
	return func(o *options) { o.dialer = dialer }
}

// transportSender adapts *transport.Transport's SendMessage to the
// router.Sender interface.
type transportSender struct{ t *transport.Transport }

func (s transportSender) Send(data []byte) { s.t.SendMessage(data) }

// Mount starts a ReactPy client against host: it opens the Transport,
// routes inbound layout-update frames into the Model Store, and
// re-renders host's subtree through the Reconciler on every mutation.
func Mount(host dom.Node, opts ...Option) *Client {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.dialer == nil {
		o.dialer = transport.NativeDialer{Logger: o.logger}
	}

	doc := dom.NewDocument()
	r := router.New(o.logger)
	s := store.New(o.logger)

	var loader reconcile.ImportLoader
	if o.moduleLoader != nil {
		loader = importsrc.New(o.serverLoc, o.moduleLoader, doc)
	}

	// The Reconciler sends outbound layout-event frames through the same
	// Router that dispatches inbound ones, so it shares the Transport's
	// reconnect lifecycle without its own sender wiring.
	rec := reconcile.New(doc, host, r, loader, o.logger)

	s.OnChange(func(docTree any) {
		node, err := reconcile.Classify(docTree)
		if err != nil {
			o.logger.Error("vclient: model does not classify into a vdom tree", "error", err)
			return
		}
		if err := rec.Render(node); err != nil {
			o.logger.Error("vclient: render failed", "error", err)
		}
	})

	r.OnMessage(wire.TypeLayoutUpdate, s.HandleLayoutUpdate)

	tr := transport.New(o.serverLoc, o.dialer, r.Ready(), o.transportOpts, o.logger, nil, r.HandleIncoming)
	r.BindSender(transportSender{tr})

	tr.Start()

	return &Client{transport: tr, router: r, store: s, reconciler: rec, logger: o.logger}
}

// Close tears down the Transport and cancels any pending reconnect.
func (c *Client) Close() {
	c.transport.Stop()
}
