package importsrc

import (
	"fmt"
	"testing"

	"github.com/reactpy-go/client/internal/dom"
	"github.com/reactpy-go/client/internal/reconcile"
	"github.com/reactpy-go/client/internal/transport"
	"github.com/reactpy-go/client/internal/wire"
)

type fakeModuleLoader struct {
	modules map[string]dom.Value
	imports []string
}

func (f *fakeModuleLoader) Import(url string) (dom.Value, error) {
	f.imports = append(f.imports, url)
	mod, ok := f.modules[url]
	if !ok {
		return dom.Value{}, fmt.Errorf("no module registered for %q", url)
	}
	return mod, nil
}

func bindingModule(t *testing.T) (dom.Value, *int) {
	t.Helper()
	unmounts := 0

	bind := func(args []dom.Value) dom.Value {
		return dom.NewValue(map[string]any{
			"create": func(args []dom.Value) dom.Value {
				return dom.NewValue(map[string]any{"instance": true})
			},
			"render": func(args []dom.Value) dom.Value {
				return dom.Value{}
			},
			"unmount": func(args []dom.Value) dom.Value {
				unmounts++
				return dom.Value{}
			},
		})
	}

	return dom.NewValue(map[string]any{
		"bind": func(args []dom.Value) dom.Value { return bind(args) },
		"Foo": map[string]any{
			"Bar": "bar-component",
		},
	}), &unmounts
}

func TestMountPassesPropsAndChildrenToCreateAndCallsRenderWithElementOnly(t *testing.T) {
	loc := transport.ServerLocation{URL: "https://example.com"}

	var createArgs []dom.Value
	var renderArgs []dom.Value
	var unmountArgs []dom.Value

	bind := func(args []dom.Value) dom.Value {
		return dom.NewValue(map[string]any{
			"create": func(args []dom.Value) dom.Value {
				createArgs = args
				return dom.NewValue(map[string]any{"element": true})
			},
			"render": func(args []dom.Value) dom.Value {
				renderArgs = args
				return dom.Value{}
			},
			"unmount": func(args []dom.Value) dom.Value {
				unmountArgs = args
				return dom.Value{}
			},
		})
	}
	mod := dom.NewValue(map[string]any{
		"bind":    func(args []dom.Value) dom.Value { return bind(args) },
		"default": "Widget",
	})

	ml := &fakeModuleLoader{modules: map[string]dom.Value{loc.ModulesURL("widgets"): mod}}
	loader := New(loc, ml, dom.NewDocument())
	doc := dom.NewDocument()

	n := &reconcile.Node{
		Attributes: map[string]any{"label": "hi"},
		Children:   []*reconcile.Node{{Kind: reconcile.KindText, Text: "child"}},
		ImportSource: &wire.ImportSource{
			Source:     "widgets",
			SourceType: wire.SourceTypeName,
		},
	}

	unmount, err := loader.Mount(doc.CreateElement("div"), n)
	if err != nil {
		t.Fatalf("mount: %v", err)
	}

	if len(createArgs) != 3 {
		t.Fatalf("expected create(component, props, children), got %d args", len(createArgs))
	}
	if createArgs[1].Get("label").String() != "hi" {
		t.Fatalf("expected props forwarded to create, got %#v", createArgs[1])
	}
	if createArgs[2].Len() != 1 || createArgs[2].Index(0).String() != "child" {
		t.Fatalf("expected children forwarded to create, got %#v", createArgs[2])
	}

	if len(renderArgs) != 1 {
		t.Fatalf("expected render(element) with a single arg, got %d", len(renderArgs))
	}
	if !renderArgs[0].Get("element").Bool() {
		t.Fatalf("expected render to receive the element create() returned, got %#v", renderArgs[0])
	}

	unmount()
	if len(unmountArgs) != 0 {
		t.Fatalf("expected unmount() with no args, got %d", len(unmountArgs))
	}
}

func TestMountResolvesNameSourceAndDotPath(t *testing.T) {
	loc := transport.ServerLocation{URL: "https://example.com"}
	mod, unmounts := bindingModule(t)
	ml := &fakeModuleLoader{modules: map[string]dom.Value{
		loc.ModulesURL("widgets"): mod,
	}}
	loader := New(loc, ml, dom.NewDocument())

	doc := dom.NewDocument()
	container := doc.CreateElement("div")

	n := &reconcile.Node{
		Tag: "Foo.Bar",
		ImportSource: &wire.ImportSource{
			Source:     "widgets",
			SourceType: wire.SourceTypeName,
		},
	}

	unmount, err := loader.Mount(container, n)
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
	if len(ml.imports) != 1 || ml.imports[0] != loc.ModulesURL("widgets") {
		t.Fatalf("expected resolved NAME url imported, got %#v", ml.imports)
	}

	unmount()
	if *unmounts != 1 {
		t.Fatalf("expected unmount() to invoke the module's unmount export once, got %d", *unmounts)
	}
}

func TestMountURLSourceUsesRawSpecifier(t *testing.T) {
	loc := transport.ServerLocation{URL: "https://example.com"}
	mod, _ := bindingModule(t)
	ml := &fakeModuleLoader{modules: map[string]dom.Value{
		"https://cdn.example.com/widget.js": mod,
	}}
	loader := New(loc, ml, dom.NewDocument())

	n := &reconcile.Node{
		Tag: "Foo.Bar",
		ImportSource: &wire.ImportSource{
			Source:     "https://cdn.example.com/widget.js",
			SourceType: wire.SourceTypeURL,
		},
	}

	doc := dom.NewDocument()
	_, err := loader.Mount(doc.CreateElement("div"), n)
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
}

func TestMountFailsOnMissingBindExport(t *testing.T) {
	loc := transport.ServerLocation{URL: "https://example.com"}
	ml := &fakeModuleLoader{modules: map[string]dom.Value{
		loc.ModulesURL("broken"): dom.NewValue(map[string]any{}),
	}}
	loader := New(loc, ml, dom.NewDocument())

	n := &reconcile.Node{
		Tag: "Default",
		ImportSource: &wire.ImportSource{
			Source:     "broken",
			SourceType: wire.SourceTypeName,
		},
	}

	doc := dom.NewDocument()
	_, err := loader.Mount(doc.CreateElement("div"), n)
	if err == nil {
		t.Fatal("expected an error for a module with no bind() export")
	}
}

func TestMountFailsOnUnresolvableComponentPath(t *testing.T) {
	loc := transport.ServerLocation{URL: "https://example.com"}
	mod, _ := bindingModule(t)
	ml := &fakeModuleLoader{modules: map[string]dom.Value{
		loc.ModulesURL("widgets"): mod,
	}}
	loader := New(loc, ml, dom.NewDocument())

	n := &reconcile.Node{
		Tag: "Foo.Missing",
		ImportSource: &wire.ImportSource{
			Source:     "widgets",
			SourceType: wire.SourceTypeName,
		},
	}

	doc := dom.NewDocument()
	_, err := loader.Mount(doc.CreateElement("div"), n)
	if err == nil {
		t.Fatal("expected an error resolving a nonexistent dot-path component")
	}
}
