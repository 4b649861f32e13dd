//go:build js && wasm

package transport

import "syscall/js"

// BrowserDialer drives the Transport state machine over a real browser
// WebSocket. This is what cmd/reactpy-client links against.
type BrowserDialer struct{}

func (BrowserDialer) Dial(url string, cb Callbacks) {
	ws := js.Global().Get("WebSocket").New(url)

	var openFn, closeFn, errorFn, messageFn js.Func
	opened := false

	openFn = js.FuncOf(func(this js.Value, args []js.Value) any {
		opened = true
		cb.OnOpen(&browserSocket{ws: ws})
		return nil
	})
	closeFn = js.FuncOf(func(this js.Value, args []js.Value) any {
		releaseAll(&openFn, &closeFn, &errorFn, &messageFn)
		cb.OnClose()
		return nil
	})
	errorFn = js.FuncOf(func(this js.Value, args []js.Value) any {
		// The browser always follows an error with a close event for
		// sockets that never opened, so no separate handling is needed
		// here beyond letting that close event drive the state machine.
		return nil
	})
	messageFn = js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) == 0 {
			return nil
		}
		data := args[0].Get("data")
		if data.Type().String() == "string" {
			cb.OnMessage([]byte(data.String()))
		}
		return nil
	})

	ws.Call("addEventListener", "open", openFn)
	ws.Call("addEventListener", "close", closeFn)
	ws.Call("addEventListener", "error", errorFn)
	ws.Call("addEventListener", "message", messageFn)

	_ = opened
}

func releaseAll(fns ...*js.Func) {
	for _, f := range fns {
		f.Release()
	}
}

type browserSocket struct {
	ws js.Value
}

func (s *browserSocket) Send(data []byte) {
	if s.ws.Get("readyState").Int() != 1 { // WebSocket.OPEN
		return
	}
	s.ws.Call("send", string(data))
}

func (s *browserSocket) Close() {
	s.ws.Call("close")
}
