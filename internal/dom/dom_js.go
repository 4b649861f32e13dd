//go:build js && wasm

package dom

import (
	"fmt"
	"syscall/js"
)

// Node wraps a live js.Value referring to an Element or Text node.
type Node struct{ v js.Value }

func (nd Node) IsZero() bool { return nd.v.IsUndefined() || nd.v.IsNull() }

func (nd Node) SetAttr(name, value string) { nd.v.Call("setAttribute", name, value) }
func (nd Node) RemoveAttr(name string)      { nd.v.Call("removeAttribute", name) }

func (nd Node) GetAttr(name string) (string, bool) {
	if !nd.v.Call("hasAttribute", name).Bool() {
		return "", false
	}
	return nd.v.Call("getAttribute", name).String(), true
}

func (nd Node) SetProp(name string, value any) { nd.v.Set(name, js.ValueOf(jsSafe(value))) }
func (nd Node) GetProp(name string) any         { return fromJS(nd.v.Get(name)) }

func (nd Node) SetText(s string) { nd.v.Set("textContent", s) }
func (nd Node) Text() string     { return nd.v.Get("textContent").String() }

func (nd Node) AppendChild(child Node) { nd.v.Call("appendChild", child.v) }

func (nd Node) InsertBefore(child Node, ref Node) {
	if ref.IsZero() {
		nd.AppendChild(child)
		return
	}
	nd.v.Call("insertBefore", child.v, ref.v)
}

func (nd Node) RemoveChild(child Node) { nd.v.Call("removeChild", child.v) }

func (nd Node) Remove() {
	if nd.v.Get("parentNode").Truthy() {
		nd.v.Call("remove")
	}
}

func (nd Node) AddEventListener(name string, fn func(Value)) func() {
	cb := js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) > 0 {
			fn(Value{v: args[0]})
		}
		return nil
	})
	nd.v.Call("addEventListener", name, cb)
	return func() {
		nd.v.Call("removeEventListener", name, cb)
		cb.Release()
	}
}

func (nd Node) AsValue() Value { return Value{v: nd.v} }

// WrapJSNode exposes a raw js.Value (an Element or Text node obtained
// from outside this package, e.g. the host element passed into
// cmd/reactpy-client's JS-callable mount function) as a Node.
func WrapJSNode(v js.Value) Node { return Node{v: v} }

// --- Document -------------------------------------------------------------

var document = js.Global().Get("document")

type Document struct{}

func NewDocument() Document { return Document{} }

func (Document) CreateElement(tag string) Node {
	return Node{document.Call("createElement", tag)}
}

func (Document) CreateTextNode(text string) Node {
	return Node{document.Call("createTextNode", text)}
}

// Eval runs body as the top-level statements of a new Function, matching
// the ScriptElement "no attributes" path: if the function returns a
// callable, ScriptElement treats it as cleanup.
func (Document) Eval(body string) (Value, error) {
	fn := js.Global().Get("Function").New(body)
	result := fn.Invoke()
	return Value{v: result}, nil
}

func (Document) GetSelection() Value {
	return Value{v: js.Global().Get("window").Call("getSelection")}
}

// --- Value ------------------------------------------------------------------

// Value wraps an arbitrary js.Value for the Event Serializer (C5) and the
// Import-Source Loader (C6) to walk generically.
type Value struct{ v js.Value }

func NewValue(v any) Value { return Value{v: js.ValueOf(jsSafe(v))} }

// WrapJSValue exposes a raw js.Value as a Value. It exists for callers
// outside this package (internal/importsrc's dynamic import() loader)
// that must bridge a syscall/js result across the dom abstraction
// boundary without reaching into Value's unexported field.
func WrapJSValue(v js.Value) Value { return Value{v: v} }

func (v Value) Kind() ValueKind {
	switch v.v.Type() {
	case js.TypeUndefined:
		return KindUndefined
	case js.TypeNull:
		return KindNull
	case js.TypeBoolean:
		return KindBoolean
	case js.TypeNumber:
		return KindNumber
	case js.TypeString:
		return KindString
	case js.TypeFunction:
		return KindFunction
	default:
		if js.Global().Get("Array").Call("isArray", v.v).Bool() {
			return KindArray
		}
		return KindObject
	}
}

func (v Value) IsUndefined() bool { return v.v.Type() == js.TypeUndefined }
func (v Value) IsNull() bool      { return v.v.Type() == js.TypeNull }
func (v Value) Bool() bool        { return v.v.Bool() }
func (v Value) Float() float64    { return v.v.Float() }
func (v Value) String() string    { return v.v.String() }

func (v Value) Get(key string) Value { return Value{v.v.Get(key)} }
func (v Value) Set(key string, val any) { v.v.Set(key, js.ValueOf(jsSafe(val))) }
func (v Value) Index(i int) Value      { return Value{v.v.Index(i)} }
func (v Value) Len() int               { return v.v.Length() }

func (v Value) Invoke(args ...Value) Value {
	jsArgs := make([]any, len(args))
	for i, a := range args {
		jsArgs[i] = a.v
	}
	return Value{v.v.Invoke(jsArgs...)}
}

// InstanceOf reports whether v is an instance of the named global class,
// e.g. "Event", "Node", "Window", "Document", "CSSStyleDeclaration",
// "CSSStyleSheet", "Map".
func (v Value) InstanceOf(class string) bool {
	ctor := js.Global().Get(class)
	if ctor.IsUndefined() {
		return false
	}
	return v.v.InstanceOf(ctor)
}

// OwnPropertyNames enumerates v's own+inherited enumerable keys using a
// for...in equivalent (Object.keys only returns own keys, so the
// serializer additionally consults the prototype chain via
// getOwnPropertyNames on each prototype up to Object.prototype).
func (v Value) OwnPropertyNames() []string {
	result := js.Global().Get("Array").New()
	seen := js.Global().Get("Set").New()
	cur := v.v
	objectProto := js.Global().Get("Object").Get("prototype")
	for !cur.IsUndefined() && !cur.IsNull() && !cur.Equal(objectProto) {
		names := js.Global().Get("Object").Call("getOwnPropertyNames", cur)
		for i := 0; i < names.Length(); i++ {
			name := names.Index(i)
			if !seen.Call("has", name).Bool() {
				seen.Call("add", name)
				result.Call("push", name)
			}
		}
		cur = js.Global().Get("Object").Call("getPrototypeOf", cur)
	}
	out := make([]string, result.Length())
	for i := range out {
		out[i] = result.Index(i).String()
	}
	return out
}

// Identity returns a comparable key for cycle detection. js.Value is
// itself comparable (its underlying ref is a value type), so it can be
// used directly as a map key in place of a JS WeakSet.
func (v Value) Identity() (any, bool) {
	if v.v.Type() == js.TypeObject || v.v.Type() == js.TypeFunction {
		return v.v, true
	}
	return nil, false
}

func (v Value) Raw() any { return v.v }

func (v Value) PreventDefault()  { v.v.Call("preventDefault") }
func (v Value) StopPropagation() { v.v.Call("stopPropagation") }
func (v Value) DefaultPrevented() bool { return v.v.Get("defaultPrevented").Bool() }

func jsSafe(v any) any {
	switch v.(type) {
	case nil, bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64,
		float32, float64, string, []any, map[string]any, js.Value, js.Func:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

func fromJS(v js.Value) any {
	switch v.Type() {
	case js.TypeString:
		return v.String()
	case js.TypeNumber:
		return v.Float()
	case js.TypeBoolean:
		return v.Bool()
	case js.TypeNull, js.TypeUndefined:
		return nil
	default:
		return v
	}
}
