// Command reactpy-client is the wasm entry point: it exposes a single
// JS-callable mount function that wires a host DOM element to a
// ReactPy server over the real browser WebSocket and DOM.
package main

import (
	"log/slog"
	"syscall/js"

	"github.com/reactpy-go/client/internal/dom"
	"github.com/reactpy-go/client/internal/importsrc"
	"github.com/reactpy-go/client/internal/transport"
	"github.com/reactpy-go/client/pkg/vclient"
)

var clients = map[string]*vclient.Client{}

func main() {
	js.Global().Set("ReactPyMount", js.FuncOf(mount))
	js.Global().Set("ReactPyUnmount", js.FuncOf(unmount))
	select {} // keep the wasm program alive; callbacks drive everything else
}

// mount(hostElement, options) binds a ReactPy client to hostElement.
// options is a plain JS object: {url, route, query}. It returns a handle
// string passed to ReactPyUnmount to tear the client down later.
func mount(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		slog.Error("reactpy-client: mount() requires a host element argument")
		return nil
	}
	hostNode := dom.WrapJSNode(args[0])

	var jsOpts js.Value
	if len(args) > 1 {
		jsOpts = args[1]
	}
	loc := transport.ServerLocation{
		URL:   stringOr(jsOpts, "url", js.Global().Get("location").Get("origin").String()),
		Route: stringOr(jsOpts, "route", js.Global().Get("location").Get("pathname").String()),
		Query: stringOr(jsOpts, "query", js.Global().Get("location").Get("search").String()),
	}

	client := vclient.Mount(hostNode,
		vclient.WithServerLocation(loc),
		vclient.WithDialer(transport.BrowserDialer{}),
		vclient.WithModuleLoader(importsrc.BrowserModuleLoader{}),
	)

	handle := loc.URL + loc.Route + loc.Query
	clients[handle] = client
	return handle
}

func unmount(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return nil
	}
	handle := args[0].String()
	if c, ok := clients[handle]; ok {
		c.Close()
		delete(clients, handle)
	}
	return nil
}

func stringOr(opts js.Value, key, fallback string) string {
	if opts.IsUndefined() || opts.IsNull() {
		return fallback
	}
	v := opts.Get(key)
	if v.IsUndefined() || v.IsNull() {
		return fallback
	}
	return v.String()
}
