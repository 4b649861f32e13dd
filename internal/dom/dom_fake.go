//go:build !(js && wasm)

package dom

import (
	"fmt"
	"reflect"
	"sort"
)

// fakeNode backs Node on every non-wasm build: an in-memory element/text
// tree, grounded on the same "fake DOM for tests" idea as the
// pkg/vtest harness, generalized from sessions to DOM nodes.
type fakeNode struct {
	tag         string // "" for a text node
	text        string
	attrs       map[string]string
	props       map[string]any
	parent      *fakeNode
	children    []*fakeNode
	listeners   map[string][]func(Value)
	removedFrom *fakeNode
}

// Node is a handle to a live or detached DOM node.
type Node struct{ n *fakeNode }

// IsZero reports whether this handle refers to no node.
func (nd Node) IsZero() bool { return nd.n == nil }

func (nd Node) SetAttr(name, value string) {
	if nd.n.attrs == nil {
		nd.n.attrs = map[string]string{}
	}
	nd.n.attrs[name] = value
}

func (nd Node) RemoveAttr(name string) {
	delete(nd.n.attrs, name)
}

func (nd Node) GetAttr(name string) (string, bool) {
	v, ok := nd.n.attrs[name]
	return v, ok
}

func (nd Node) SetProp(name string, value any) {
	if nd.n.props == nil {
		nd.n.props = map[string]any{}
	}
	nd.n.props[name] = value
}

func (nd Node) GetProp(name string) any {
	return nd.n.props[name]
}

func (nd Node) SetText(s string) {
	nd.n.text = s
}

func (nd Node) Text() string { return nd.n.text }

func (nd Node) AppendChild(child Node) {
	nd.insertAt(child, len(nd.n.children))
}

// InsertBefore inserts child before ref; a zero ref appends at the end.
func (nd Node) InsertBefore(child Node, ref Node) {
	if ref.IsZero() {
		nd.AppendChild(child)
		return
	}
	idx := nd.indexOf(ref.n)
	if idx < 0 {
		nd.AppendChild(child)
		return
	}
	nd.insertAt(child, idx)
}

func (nd Node) insertAt(child Node, idx int) {
	if child.n.parent != nil {
		// Re-inserting into the same parent: detaching shifts every
		// later sibling left by one, so a target index past the old
		// position shifts with them.
		if child.n.parent == nd.n {
			if old := nd.indexOf(child.n); old >= 0 && old < idx {
				idx--
			}
		}
		child.n.parent.removeChild(child.n)
	}
	child.n.parent = nd.n
	children := nd.n.children
	children = append(children, nil)
	copy(children[idx+1:], children[idx:])
	children[idx] = child.n
	nd.n.children = children
}

func (nd Node) indexOf(n *fakeNode) int {
	for i, c := range nd.n.children {
		if c == n {
			return i
		}
	}
	return -1
}

func (nd Node) RemoveChild(child Node) {
	nd.n.removeChild(child.n)
}

func (n *fakeNode) removeChild(child *fakeNode) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// Remove detaches this node from its parent, if any.
func (nd Node) Remove() {
	if nd.n.parent != nil {
		nd.n.parent.removeChild(nd.n)
	}
}

func (nd Node) Children() []Node {
	out := make([]Node, len(nd.n.children))
	for i, c := range nd.n.children {
		out[i] = Node{c}
	}
	return out
}

// AddEventListener registers fn for the named event and returns an
// unsubscribe function.
func (nd Node) AddEventListener(name string, fn func(Value)) func() {
	if nd.n.listeners == nil {
		nd.n.listeners = map[string][]func(Value){}
	}
	nd.n.listeners[name] = append(nd.n.listeners[name], fn)
	idx := len(nd.n.listeners[name]) - 1
	return func() {
		ls := nd.n.listeners[name]
		if idx < len(ls) {
			ls[idx] = nil
		}
	}
}

// Dispatch is a test hook: it synthesizes an event and invokes every
// listener registered for name, simulating a native browser dispatch.
func (nd Node) Dispatch(name string, ev Value) {
	for _, fn := range nd.n.listeners[name] {
		if fn != nil {
			fn(ev)
		}
	}
}

// AsValue exposes this node as a generic Value for eventser to walk
// (e.g. event.target).
func (nd Node) AsValue() Value {
	return Value{obj: nodeValue{node: nd.n}}
}

// --- Document -----------------------------------------------------------

// Document is the fake document used to build detached trees in tests
// and in the devtools harness.
type Document struct{}

// NewDocument returns a fresh fake document.
func NewDocument() Document { return Document{} }

func (Document) CreateElement(tag string) Node {
	return Node{&fakeNode{tag: tag}}
}

func (Document) CreateTextNode(text string) Node {
	return Node{&fakeNode{text: text}}
}

// Eval always returns an error in the fake backend: no script body is
// evaluated. Real script evaluation only happens in the js/wasm backend.
func (Document) Eval(body string) (Value, error) {
	return Value{}, fmt.Errorf("dom: script evaluation is not available outside js/wasm")
}

// GetSelection returns an empty selection stand-in.
func (Document) GetSelection() Value {
	return Value{obj: selectionValue{}}
}

// --- Value ---------------------------------------------------------------

// nodeValue and selectionValue let the fake Document/Node participate in
// the generic Value walk the event serializer performs.
type nodeValue struct{ node *fakeNode }
type selectionValue struct{}

// Value is a generic handle over plain data, a fake node, or a
// map/slice-shaped object, mirroring what js.Value lets eventser walk.
type Value struct {
	kind ValueKind
	prim any
	obj  any // nodeValue, selectionValue, map[string]any, []any
}

// NewValue wraps a plain Go value (string, float64, bool, nil,
// map[string]any, []any) as a Value, as used by the fake transport and
// by tests constructing synthetic events.
func NewValue(v any) Value {
	switch x := v.(type) {
	case nil:
		return Value{kind: KindNull}
	case string:
		return Value{kind: KindString, prim: x}
	case bool:
		return Value{kind: KindBoolean, prim: x}
	case float64:
		return Value{kind: KindNumber, prim: x}
	case int:
		return Value{kind: KindNumber, prim: float64(x)}
	case map[string]any:
		return Value{kind: KindObject, obj: x}
	case []any:
		return Value{kind: KindArray, obj: x}
	case func(args []Value) Value:
		return Value{kind: KindFunction, obj: x}
	default:
		return Value{kind: KindObject, obj: x}
	}
}

func (v Value) Kind() ValueKind {
	// Node- and selection-backed Values are built without an explicit
	// kind; like any host object they report as objects.
	if v.kind == KindUndefined && v.obj != nil {
		return KindObject
	}
	return v.kind
}
func (v Value) IsUndefined() bool { return v.kind == KindUndefined && v.obj == nil }
func (v Value) IsNull() bool      { return v.kind == KindNull }
func (v Value) Bool() bool        { b, _ := v.prim.(bool); return b }
func (v Value) Float() float64    { f, _ := v.prim.(float64); return f }
func (v Value) String() string {
	if s, ok := v.prim.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v.prim)
}

func (v Value) Get(key string) Value {
	switch o := v.obj.(type) {
	case map[string]any:
		val, ok := o[key]
		if !ok {
			return Value{kind: KindUndefined}
		}
		return NewValue(val)
	case nodeValue:
		return nodeField(o.node, key)
	case selectionValue:
		return selectionField(key)
	case *fakeEvent:
		return NewValue(o.props[key])
	default:
		return Value{kind: KindUndefined}
	}
}

func (v Value) Set(key string, val any) {
	if o, ok := v.obj.(map[string]any); ok {
		o[key] = val
	}
}

func (v Value) Index(i int) Value {
	if arr, ok := v.obj.([]any); ok && i >= 0 && i < len(arr) {
		return NewValue(arr[i])
	}
	return Value{kind: KindUndefined}
}

func (v Value) Len() int {
	if arr, ok := v.obj.([]any); ok {
		return len(arr)
	}
	return 0
}

func (v Value) Invoke(args ...Value) Value {
	if fn, ok := v.obj.(func(args []Value) Value); ok {
		return fn(args)
	}
	return Value{kind: KindUndefined}
}

// InstanceOf reports whether this Value behaves like the named host
// class, e.g. "Event", "Node", "Window", "Document", "CSSStyleDeclaration",
// "CSSStyleSheet", "Map". The fake backend derives this from the
// concrete Go type backing obj instead of a real prototype chain walk.
func (v Value) InstanceOf(class string) bool {
	switch o := v.obj.(type) {
	case nodeValue:
		return class == "Node" || (o.node.tag != "" && class == "Element")
	case *fakeEvent:
		return class == "Event" || class == o.className
	case selectionValue:
		return false
	default:
		return false
	}
}

// OwnPropertyNames returns enumerable own keys in a stable order, the
// fake-backend analogue of iterating a JS object's own+inherited
// enumerable keys.
func (v Value) OwnPropertyNames() []string {
	switch o := v.obj.(type) {
	case map[string]any:
		keys := make([]string, 0, len(o))
		for k := range o {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return keys
	case *fakeEvent:
		keys := make([]string, 0, len(o.props))
		for k := range o.props {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return keys
	case nodeValue:
		// Stand-in for the own+inherited enumerable surface a real DOM
		// element exposes, including the reflow/recursion-prone keys the
		// Event Serializer's blocklist exists to filter.
		keys := []string{
			"tagName", "parentNode", "parentElement", "childNodes", "children",
			"offsetWidth", "offsetHeight", "innerHTML", "outerHTML",
		}
		for k := range o.node.props {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return keys
	default:
		return nil
	}
}

// Identity returns a comparable value suitable as a map key for cycle
// detection, standing in for the JS WeakSet identity semantics.
func (v Value) Identity() (any, bool) {
	switch o := v.obj.(type) {
	case nodeValue:
		return o.node, true
	case *fakeEvent:
		return o, true
	case map[string]any:
		return reflect.ValueOf(o).Pointer(), true
	case []any:
		return reflect.ValueOf(o).Pointer(), true
	default:
		return nil, false
	}
}

// Raw returns the underlying Go value for callers that need to escape
// the abstraction (used only by tests).
func (v Value) Raw() any { return v.obj }

func nodeField(n *fakeNode, key string) Value {
	switch key {
	case "tagName":
		return NewValue(n.tag)
	case "value", "checked", "files", "type", "name":
		return NewValue(n.props[key])
	case "parentNode", "parentElement":
		if n.parent == nil {
			return Value{kind: KindNull}
		}
		return Value{obj: nodeValue{node: n.parent}}
	case "childNodes", "children":
		arr := make([]any, len(n.children))
		for i, c := range n.children {
			arr[i] = nodeValue{node: c}
		}
		return Value{kind: KindArray, obj: arr}
	default:
		return NewValue(n.props[key])
	}
}

func selectionField(key string) Value {
	switch key {
	case "type":
		return NewValue("None")
	case "rangeCount":
		return NewValue(float64(0))
	case "isCollapsed":
		return NewValue(true)
	default:
		return Value{kind: KindUndefined}
	}
}

// fakeEvent is a synthetic DOM Event used by tests and the fake
// transport's simulated dispatch.
type fakeEvent struct {
	className      string
	props          map[string]any
	defaultPrevent bool
	stopped        bool
}

// NewFakeEvent builds a synthetic event Value, e.g. NewFakeEvent("MouseEvent", map[string]any{...}).
func NewFakeEvent(class string, props map[string]any) Value {
	return Value{kind: KindObject, obj: &fakeEvent{className: class, props: props}}
}

func (v Value) PreventDefault() {
	if fe, ok := v.obj.(*fakeEvent); ok {
		fe.defaultPrevent = true
	}
}

func (v Value) StopPropagation() {
	if fe, ok := v.obj.(*fakeEvent); ok {
		fe.stopped = true
	}
}

func (v Value) DefaultPrevented() bool {
	fe, ok := v.obj.(*fakeEvent)
	return ok && fe.defaultPrevent
}

func (v Value) StoppedPropagation() bool {
	fe, ok := v.obj.(*fakeEvent)
	return ok && fe.stopped
}

func (v Value) HasField(key string) bool {
	fe, ok := v.obj.(*fakeEvent)
	if !ok {
		return false
	}
	_, ok = fe.props[key]
	return ok
}

func (v Value) FieldGet(key string) Value {
	fe, ok := v.obj.(*fakeEvent)
	if !ok {
		return Value{kind: KindUndefined}
	}
	return NewValue(fe.props[key])
}
