// Package importsrc implements the Import-Source Loader (C6): it turns a
// classified ImportedElement node into a live, bound ES module instance
// mounted onto a host container, using the module's exported
// bind(node, context) contract.
//
// Grounded on the dynamic feature loading pattern in
// pkg/features/islands/island.go (resolve a named bundle, hydrate it
// against a host element, track an unmount hook), generalized here from
// a fixed island registry to a dynamically resolved ES module loaded at
// runtime via a real import() call.
package importsrc

import (
	"fmt"
	"strings"

	"github.com/reactpy-go/client/internal/dom"
	"github.com/reactpy-go/client/internal/reconcile"
	"github.com/reactpy-go/client/internal/transport"
	"github.com/reactpy-go/client/internal/wire"
)

// ModuleLoader fetches and executes an ES module, returning its export
// namespace as a Value. BrowserModuleLoader (loader_js.go) performs a
// real dynamic import(); NativeModuleLoader (loader_native.go) always
// returns an error; tests supply fakes.
type ModuleLoader interface {
	Import(url string) (dom.Value, error)
}

// Loader resolves ImportSource specifiers against loc, imports the
// module, and drives its bind(node, context) contract. It implements
// reconcile.ImportLoader.
type Loader struct {
	Loc    transport.ServerLocation
	Module ModuleLoader
	Doc    dom.Document
}

// New builds a Loader. loc supplies the NAME -> URL resolution for
// server-hosted modules; module performs the actual fetch-and-execute
// step.
func New(loc transport.ServerLocation, module ModuleLoader, doc dom.Document) *Loader {
	return &Loader{Loc: loc, Module: module, Doc: doc}
}

var _ reconcile.ImportLoader = (*Loader)(nil)

// Mount resolves n.ImportSource, imports the module, calls its exported
// bind(node, context) to obtain {create, render, unmount}, resolves the
// dot-addressed component (e.g. "Foo.Bar" reaches into a module's
// nested namespace export), and renders it into container.
func (l *Loader) Mount(container dom.Node, n *reconcile.Node) (func(), error) {
	src := n.ImportSource
	url := src.Source
	if src.SourceType == wire.SourceTypeName {
		url = l.Loc.ModulesURL(src.Source)
	}

	mod, err := l.Module.Import(url)
	if err != nil {
		return nil, fmt.Errorf("importsrc: import %q: %w", url, err)
	}

	bindFn := mod.Get("bind")
	if bindFn.Kind() != dom.KindFunction {
		return nil, fmt.Errorf("importsrc: module %q has no bind() export", url)
	}

	context := dom.NewValue(map[string]any{})
	result := bindFn.Invoke(container.AsValue(), context)

	createFn := result.Get("create")
	renderFn := result.Get("render")
	unmountFn := result.Get("unmount")
	if createFn.Kind() != dom.KindFunction || renderFn.Kind() != dom.KindFunction {
		return nil, fmt.Errorf("importsrc: bind() result for %q is missing create/render", url)
	}

	component, err := resolveDotPath(mod, n.Tag)
	if err != nil {
		return nil, fmt.Errorf("importsrc: %q: %w", url, err)
	}

	element := createFn.Invoke(component, propsValue(n), childrenValue(n.Children))
	renderFn.Invoke(element)

	unmount := func() {
		if unmountFn.Kind() == dom.KindFunction {
			unmountFn.Invoke()
		}
	}
	return unmount, nil
}

// resolveDotPath walks mod.Foo.Bar.Baz-style component paths into a
// module's export namespace. An empty path resolves to the module's
// default export.
func resolveDotPath(mod dom.Value, path string) (dom.Value, error) {
	if path == "" {
		return mod.Get("default"), nil
	}
	cur := mod
	for _, part := range strings.Split(path, ".") {
		cur = cur.Get(part)
		if cur.IsUndefined() {
			return dom.Value{}, fmt.Errorf("component path %q: no export named %q", path, part)
		}
	}
	return cur, nil
}

// propsValue packages a node's attributes into the plain object create()
// receives as its props argument.
func propsValue(n *reconcile.Node) dom.Value {
	attrs := n.Attributes
	if attrs == nil {
		attrs = map[string]any{}
	}
	return dom.NewValue(attrs)
}

// childrenValue packages a node's classified children into the plain
// array create() receives as its children argument, recursively
// flattening each child into a plain tag/attributes/children object (or
// a bare string for text) so a framework on the other side of the
// import() boundary can build its own element tree from them.
func childrenValue(children []*reconcile.Node) dom.Value {
	items := make([]any, len(children))
	for i, c := range children {
		items[i] = plainChild(c)
	}
	return dom.NewValue(items)
}

func plainChild(n *reconcile.Node) any {
	if n.Kind == reconcile.KindText {
		return n.Text
	}
	attrs := n.Attributes
	if attrs == nil {
		attrs = map[string]any{}
	}
	child := map[string]any{"tag": n.Tag, "attributes": attrs}
	if len(n.Children) > 0 {
		kids := make([]any, len(n.Children))
		for i, c := range n.Children {
			kids[i] = plainChild(c)
		}
		child["children"] = kids
	}
	return child
}
