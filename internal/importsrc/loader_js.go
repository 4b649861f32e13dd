//go:build js && wasm

package importsrc

import (
	"fmt"
	"syscall/js"

	"github.com/reactpy-go/client/internal/dom"
)

// BrowserModuleLoader performs a real dynamic import(), blocking the
// calling goroutine (never the wasm main goroutine, since Mount always
// runs from a dispatched event or a background reconcile pass) until the
// returned promise settles.
type BrowserModuleLoader struct{}

func (BrowserModuleLoader) Import(url string) (dom.Value, error) {
	type outcome struct {
		val js.Value
		err error
	}
	ch := make(chan outcome, 1)

	dynamicImport := js.Global().Get("Function").New("u", "return import(u)")
	promise := dynamicImport.Invoke(url)

	var thenFn, catchFn js.Func
	thenFn = js.FuncOf(func(this js.Value, args []js.Value) any {
		thenFn.Release()
		catchFn.Release()
		var v js.Value
		if len(args) > 0 {
			v = args[0]
		}
		ch <- outcome{val: v}
		return nil
	})
	catchFn = js.FuncOf(func(this js.Value, args []js.Value) any {
		thenFn.Release()
		catchFn.Release()
		msg := "module import failed"
		if len(args) > 0 && !args[0].IsUndefined() {
			if m := args[0].Get("message"); !m.IsUndefined() {
				msg = m.String()
			}
		}
		ch <- outcome{err: fmt.Errorf("importsrc: %s: %s", url, msg)}
		return nil
	})
	promise.Call("then", thenFn).Call("catch", catchFn)

	r := <-ch
	if r.err != nil {
		return dom.Value{}, r.err
	}
	return dom.WrapJSValue(r.val), nil
}
