package reconcile

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/reactpy-go/client/internal/dom"
	"github.com/reactpy-go/client/internal/eventser"
	"github.com/reactpy-go/client/internal/wire"
)

// Sender transmits an encoded outbound frame. The Router implements this;
// the Reconciler never touches the Transport directly.
type Sender interface {
	Send(data []byte)
}

// ImportLoader mounts an ImportedElement's remote module into container.
// internal/importsrc implements this; Reconciler depends only on the
// interface to avoid an import cycle with the loader's own need for
// *Node.
type ImportLoader interface {
	Mount(container dom.Node, n *Node) (unmount func(), err error)
}

// mounted is one live instance of a classified Node: its node snapshot,
// the host DOM node it produced (zero for Fragment/Error-with-no-text),
// and whatever teardown state its Kind needs to preserve across renders.
type mounted struct {
	node     *Node
	host     dom.Node
	children []*mounted

	unlisten      []func()
	importUnmount func()
	scriptCleanup dom.Value
	lastEchoValue string
}

// Reconciler walks the classified VDOM tree and keeps a host DOM subtree
// in sync with it, specializing per node Kind's own update logic.
// Grounded on the diff-and-patch walk in pkg/vdom/diff.go,
// generalized from a server-rendered-HTML diff to a live
// DOM-mutating one.
type Reconciler struct {
	doc    dom.Document
	sender Sender
	loader ImportLoader
	logger *slog.Logger

	root dom.Node
	tree []*mounted
}

// New creates a Reconciler that mounts into root (the host element
// pkg/vclient.Mount was given). sender carries outbound layout-event
// frames; loader may be nil, in which case ImportedElement nodes always
// render their fallback.
func New(doc dom.Document, root dom.Node, sender Sender, loader ImportLoader, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{doc: doc, root: root, sender: sender, loader: loader, logger: logger}
}

// Render re-renders the whole tree from a freshly classified root Node,
// diffing against the previously mounted tree. It is called after every
// Model Store mutation, forcing a fresh render pass.
func (r *Reconciler) Render(root *Node) error {
	next, err := r.reconcileChildren(r.root, r.tree, []*Node{root})
	if err != nil {
		return err
	}
	r.tree = next
	return nil
}

// reconcileChildren diffs nodes against prev, reusing mounted instances
// by key where possible so component-local state (user-input echo state,
// script side effects, import-source mounts) survives reorders.
func (r *Reconciler) reconcileChildren(parent dom.Node, prev []*mounted, nodes []*Node) ([]*mounted, error) {
	byKey := map[string]*mounted{}
	var unkeyed []*mounted
	for _, m := range prev {
		if m.node.Key != "" {
			byKey[m.node.Key] = m
		} else {
			unkeyed = append(unkeyed, m)
		}
	}

	out := make([]*mounted, 0, len(nodes))
	used := map[*mounted]bool{}

	for _, n := range nodes {
		var candidate *mounted
		if n.Key != "" {
			if m, ok := byKey[n.Key]; ok && !used[m] {
				candidate = m
			}
		} else {
			for _, m := range unkeyed {
				if used[m] {
					continue
				}
				if m.node.Kind == n.Kind && m.node.Tag == n.Tag {
					candidate = m
					break
				}
			}
		}

		m, err := r.update(parent, candidate, n)
		if err != nil {
			return nil, err
		}
		if candidate != nil {
			used[candidate] = true
		}
		out = append(out, m)
	}

	for _, m := range prev {
		if !used[m] {
			r.unmount(m)
		}
	}

	for _, m := range out {
		r.appendHosts(parent, m)
	}

	return out, nil
}

// update materializes n, reusing prev's host/state when its Kind and Tag
// match, or freshly mounting it otherwise.
func (r *Reconciler) update(parent dom.Node, prev *mounted, n *Node) (*mounted, error) {
	if prev != nil && (prev.node.Kind != n.Kind || prev.node.Tag != n.Tag) {
		r.unmount(prev)
		prev = nil
	}

	switch n.Kind {
	case KindText:
		return r.updateText(prev, n), nil
	case KindFragment:
		return r.updateFragment(parent, prev, n)
	case KindError:
		return r.updateError(prev, n), nil
	case KindStandard:
		return r.updateStandard(prev, n)
	case KindUserInput:
		return r.updateUserInput(prev, n)
	case KindScript:
		return r.updateScript(prev, n)
	case KindImported:
		return r.updateImported(prev, n)
	default:
		return nil, fmt.Errorf("reconcile: unhandled kind %s", n.Kind)
	}
}

func (r *Reconciler) updateText(prev *mounted, n *Node) *mounted {
	if prev != nil {
		if prev.host.Text() != n.Text {
			prev.host.SetText(n.Text)
		}
		prev.node = n
		return prev
	}
	return &mounted{node: n, host: r.doc.CreateTextNode(n.Text)}
}

// updateFragment has no host of its own: its children mount directly
// into parent, flattened alongside their siblings.
func (r *Reconciler) updateFragment(parent dom.Node, prev *mounted, n *Node) (*mounted, error) {
	var prevChildren []*mounted
	if prev != nil {
		prevChildren = prev.children
	}
	children, err := r.reconcileChildren(parent, prevChildren, n.Children)
	if err != nil {
		return nil, err
	}
	return &mounted{node: n, children: children}, nil
}

// updateError renders ErrorText inside a <pre> element, or nothing at
// all when it's empty.
func (r *Reconciler) updateError(prev *mounted, n *Node) *mounted {
	if n.ErrorText == "" {
		if prev != nil {
			r.unmount(prev)
		}
		return &mounted{node: n}
	}
	if prev != nil && !prev.host.IsZero() {
		if prev.host.Text() != n.ErrorText {
			prev.host.SetText(n.ErrorText)
		}
		prev.node = n
		return prev
	}
	if prev != nil {
		r.unmount(prev)
	}
	host := r.doc.CreateElement("pre")
	host.SetText(n.ErrorText)
	return &mounted{node: n, host: host}
}

func (r *Reconciler) updateStandard(prev *mounted, n *Node) (*mounted, error) {
	m := prev
	if m == nil {
		m = &mounted{host: r.doc.CreateElement(n.Tag)}
	} else {
		for _, off := range m.unlisten {
			off()
		}
		m.unlisten = nil
	}
	m.node = n
	r.applyAttributes(m.host, n)
	r.installEventHandlers(m, n)

	children, err := r.reconcileChildren(m.host, m.children, n.Children)
	if err != nil {
		return nil, err
	}
	m.children = children
	return m, nil
}

// updateUserInput is a StandardElement plus controlled-input local echo:
// the DOM value is only overwritten from the server model when it
// differs from the last value this client itself echoed upstream, so a
// round-tripped update doesn't clobber a value mid-keystroke.
func (r *Reconciler) updateUserInput(prev *mounted, n *Node) (*mounted, error) {
	m, err := r.updateStandard(prev, n)
	if err != nil {
		return nil, err
	}
	serverValue, _ := n.Attributes["value"].(string)
	if serverValue != "" && serverValue != m.lastEchoValue {
		m.host.SetProp("value", serverValue)
	}
	return m, nil
}

// updateScript implements the attributes-present/absent split: with
// attributes, it is a real <script> element; without, its single string
// child is evaluated directly and a returned function is kept as an
// unmount hook. A node with attributes AND a non-string child is
// treated as "has attributes".
func (r *Reconciler) updateScript(prev *mounted, n *Node) (*mounted, error) {
	hasAttrs := len(n.Attributes) > 0

	if hasAttrs {
		m := prev
		if m == nil || m.host.IsZero() {
			if m != nil {
				r.unmount(m)
			}
			m = &mounted{host: r.doc.CreateElement("script")}
		}
		m.node = n
		r.applyAttributes(m.host, n)
		if len(n.Children) == 1 && n.Children[0].Kind == KindText {
			m.host.SetText(n.Children[0].Text)
		}
		return m, nil
	}

	if prev != nil && prev.node.Key == n.Key && prev.node.Kind == KindScript {
		prev.node = n
		return prev, nil
	}
	if prev != nil {
		r.unmount(prev)
	}

	m := &mounted{node: n}
	if len(n.Children) == 1 && n.Children[0].Kind == KindText {
		result, err := r.doc.Eval(n.Children[0].Text)
		if err != nil {
			r.logger.Error("reconcile: script eval failed", "error", err)
			return m, nil
		}
		if result.Kind() == dom.KindFunction {
			m.scriptCleanup = result
		}
	}
	return m, nil
}

// updateImported delegates to the ImportLoader, falling back to rendering
// ImportSource.Fallback when no loader is wired or the module fails.
func (r *Reconciler) updateImported(prev *mounted, n *Node) (*mounted, error) {
	reuse := prev != nil && prev.node.Key == n.Key && prev.importUnmount != nil &&
		!n.ImportSource.UnmountBeforeUpdate
	if reuse {
		prev.node = n
		return prev, nil
	}
	if prev != nil {
		r.unmount(prev)
	}

	container := r.doc.CreateElement("div")
	m := &mounted{node: n, host: container}

	if r.loader == nil {
		r.renderFallback(m, n)
		return m, nil
	}

	unmount, err := r.loader.Mount(container, n)
	if err != nil {
		r.logger.Error("reconcile: import source mount failed", "source", n.ImportSource.Source, "error", err)
		r.renderFallback(m, n)
		return m, nil
	}
	m.importUnmount = unmount
	return m, nil
}

func (r *Reconciler) renderFallback(m *mounted, n *Node) {
	fallback, err := Classify(n.ImportSource.Fallback)
	if err != nil || fallback == nil {
		return
	}
	child, err := r.update(m.host, nil, fallback)
	if err != nil {
		return
	}
	r.appendHosts(m.host, child)
	m.children = []*mounted{child}
}

func (r *Reconciler) applyAttributes(host dom.Node, n *Node) {
	for k, v := range n.Attributes {
		if k == "key" {
			continue
		}
		switch val := v.(type) {
		case string:
			host.SetAttr(k, val)
		case bool:
			if val {
				host.SetAttr(k, "")
			} else {
				host.RemoveAttr(k)
			}
		default:
			host.SetAttr(k, fmt.Sprint(val))
		}
	}
}

// domEventType converts a host-framework handler key (e.g. "onChange",
// "onClick") to the DOM event type AddEventListener expects ("change",
// "click").
func domEventType(propName string) string {
	if strings.HasPrefix(propName, "on") && len(propName) > 2 {
		return strings.ToLower(propName[2:])
	}
	return strings.ToLower(propName)
}

// installEventHandlers wires each server-declared handler to a DOM
// listener that serializes the event via internal/eventser and forwards
// it as a layout-event frame, applying preventDefault/stopPropagation
// from the handler's EventSpec first.
func (r *Reconciler) installEventHandlers(m *mounted, n *Node) {
	for name, spec := range n.EventHandlers {
		spec := spec
		eventType := domEventType(name)
		off := m.host.AddEventListener(eventType, func(ev dom.Value) {
			if spec.PreventDefault {
				ev.PreventDefault()
			}
			if spec.StopPropagation {
				ev.StopPropagation()
			}
			if m.node.Kind == KindUserInput && (eventType == "input" || eventType == "change") {
				if v := ev.Get("target").Get("value"); v.Kind() == dom.KindString {
					m.lastEchoValue = v.String()
				}
			}
			payload := eventser.Serialize(r.doc, ev)
			r.dispatch(spec, payload)
		})
		m.unlisten = append(m.unlisten, off)
	}
}

func (r *Reconciler) dispatch(spec wire.EventSpec, payload any) {
	if r.sender == nil {
		return
	}
	frame := wire.NewLayoutEvent(spec.Target, []any{payload})
	raw, err := wire.EncodeLayoutEvent(frame)
	if err != nil {
		r.logger.Error("reconcile: failed to encode layout-event", "error", err)
		return
	}
	r.sender.Send(raw)
}

// appendHosts places m's host node(s) at the end of parent's children, in
// document order. Fragments and no-op errors recurse into their children
// since they own no host of their own.
func (r *Reconciler) appendHosts(parent dom.Node, m *mounted) {
	if !m.host.IsZero() {
		parent.AppendChild(m.host)
		return
	}
	for _, c := range m.children {
		r.appendHosts(parent, c)
	}
}

// unmount tears down m and everything beneath it: event listeners,
// import-source modules (every mount is followed by exactly one
// unmount), script cleanup functions, and the host node itself.
func (r *Reconciler) unmount(m *mounted) {
	for _, off := range m.unlisten {
		off()
	}
	if m.importUnmount != nil {
		m.importUnmount()
	}
	if !m.scriptCleanup.IsUndefined() {
		m.scriptCleanup.Invoke()
	}
	for _, c := range m.children {
		r.unmount(c)
	}
	if !m.host.IsZero() {
		m.host.Remove()
	}
}
