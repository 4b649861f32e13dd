//go:build !(js && wasm)

package importsrc

import (
	"fmt"

	"github.com/reactpy-go/client/internal/dom"
)

// NativeModuleLoader stands in for BrowserModuleLoader outside js/wasm.
// Executing an arbitrary ES module requires a real JS engine, which
// cmd/reactpy-devtools deliberately does not embed: the devtools server
// mirrors and replays recorded traffic, it never renders a page itself.
// Tests use a fake ModuleLoader instead of this type.
type NativeModuleLoader struct{}

func (NativeModuleLoader) Import(url string) (dom.Value, error) {
	return dom.Value{}, fmt.Errorf("importsrc: dynamic module execution requires a js/wasm build (tried %q)", url)
}
