package eventser

import (
	"encoding/json"
	"testing"

	"github.com/reactpy-go/client/internal/dom"
)

func TestSerializeSimpleObject(t *testing.T) {
	doc := dom.NewDocument()
	v := dom.NewValue(map[string]any{"a": float64(1), "b": "hi"})
	out := Serialize(doc, v)
	m := out.(map[string]any)
	if m["a"] != float64(1) || m["b"] != "hi" {
		t.Fatalf("unexpected result: %#v", m)
	}
}

func TestSerializeIsCycleSafe(t *testing.T) {
	obj := map[string]any{"a": float64(1)}
	obj["self"] = obj

	doc := dom.NewDocument()
	out := Serialize(doc, dom.NewValue(obj))
	m := out.(map[string]any)
	if m["a"] != float64(1) {
		t.Fatalf("expected a=1, got %#v", m)
	}
	if _, ok := m["self"]; ok {
		t.Fatalf("expected cyclic self-reference to be dropped, got %#v", m["self"])
	}

	// Round-trips through JSON without panicking or erroring.
	if _, err := json.Marshal(m); err != nil {
		t.Fatalf("not json-safe: %v", err)
	}
}

func TestSerializeIgnoresDunderAndAllCaps(t *testing.T) {
	obj := map[string]any{
		"__proto__": "nope",
		"NONE":      "nope",
		"visible":   "yes",
	}
	doc := dom.NewDocument()
	m := Serialize(doc, dom.NewValue(obj)).(map[string]any)
	if _, ok := m["__proto__"]; ok {
		t.Fatal("dunder key should be ignored")
	}
	if _, ok := m["NONE"]; ok {
		t.Fatal("all-caps key should be ignored")
	}
	if m["visible"] != "yes" {
		t.Fatalf("expected visible key to survive, got %#v", m)
	}
}

func TestSerializeDepthBound(t *testing.T) {
	// Build a deterministic, non-cyclic but very deep chain and confirm
	// serialization terminates and stops past MaxDepth.
	var build func(n int) map[string]any
	build = func(n int) map[string]any {
		if n == 0 {
			return map[string]any{"leaf": true}
		}
		return map[string]any{"next": build(n - 1)}
	}
	deep := build(MaxDepth + 5)

	doc := dom.NewDocument()
	out := Serialize(doc, dom.NewValue(deep))
	m := out.(map[string]any)

	depth := 0
	cur := any(m)
	for {
		cm, ok := cur.(map[string]any)
		if !ok {
			break
		}
		next, ok := cm["next"]
		if !ok {
			break
		}
		cur = next
		depth++
	}
	if depth > MaxDepth {
		t.Fatalf("expected serialization to stop at depth %d, got %d", MaxDepth, depth)
	}
}

func TestSerializeNodeBlacklist(t *testing.T) {
	doc := dom.NewDocument()
	parent := doc.CreateElement("div")
	child := doc.CreateElement("span")
	parent.AppendChild(child)

	out := Serialize(doc, child.AsValue())
	m := out.(map[string]any)
	for _, blacklisted := range []string{"parentNode", "parentElement", "offsetWidth", "innerHTML"} {
		if _, ok := m[blacklisted]; ok {
			t.Fatalf("expected %s to be blacklisted, got present", blacklisted)
		}
	}
}

func TestSerializeEventDefaultPreventedAndSelection(t *testing.T) {
	ev := dom.NewFakeEvent("MouseEvent", map[string]any{"type": "click", "bubbles": true})
	doc := dom.NewDocument()

	out := Serialize(doc, ev)
	m := out.(map[string]any)
	if m["type"] != "click" {
		t.Fatalf("expected type=click, got %#v", m["type"])
	}
	if _, ok := m["selection"]; !ok {
		t.Fatal("expected synthesized selection property on Event instances")
	}

	ev.PreventDefault()
	if !ev.DefaultPrevented() {
		t.Fatal("expected PreventDefault to mark the event")
	}
}
