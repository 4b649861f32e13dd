// Package dom is the host-provided DOM abstraction that lets dynamic
// import() calls and the Reconciler/Event Serializer's DOM access be
// swapped for an in-memory fake under plain `go test`, generalized here
// to the whole DOM surface those components touch.
//
// Two backends implement the exported API the runtime packages use:
//
//   - dom_js.go (build tag js && wasm) drives the real browser DOM via
//     syscall/js. This is what cmd/reactpy-client links against. It also
//     exports WrapJSNode and WrapJSValue, which the fake does not.
//   - dom_fake.go (the default build) is an in-memory tree used by the
//     other packages' tests, so the runtime is exercised by `go test`
//     without a browser. It also exports test hooks the js backend does
//     not have (Node.Children, Node.Dispatch, NewFakeEvent,
//     Value.StoppedPropagation, Value.HasField, Value.FieldGet).
//
// Node is an opaque handle to an element or text node. Value is an
// opaque handle to an arbitrary JS-ish value (an Event, a File, a plain
// object, ...) and is what internal/eventser walks.
package dom

// ValueKind classifies a Value the way typeof/Array.isArray would.
type ValueKind uint8

const (
	KindUndefined ValueKind = iota
	KindNull
	KindBoolean
	KindNumber
	KindString
	KindFunction
	KindArray
	KindObject
)
