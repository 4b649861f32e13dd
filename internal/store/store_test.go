package store

import "testing"

func TestRootInstallReplacesFragment(t *testing.T) {
	s := New(nil)
	var seen any
	s.OnChange(func(doc any) { seen = doc })

	root := map[string]any{
		"tagName":    "div",
		"attributes": map[string]any{"id": "app"},
	}
	if err := s.Apply("", root); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := s.Snapshot().(map[string]any)
	if got["tagName"] != "div" {
		t.Fatalf("expected root tagName div, got %v", got["tagName"])
	}
	if seen == nil {
		t.Fatal("expected OnChange to fire on root install")
	}
}

func TestRootUpdateDeepMergesExistingFields(t *testing.T) {
	s := New(nil)
	s.Apply("", map[string]any{
		"tagName":  "div",
		"children": []any{"a"},
		"attributes": map[string]any{
			"id":    "app",
			"class": "old",
		},
	})

	err := s.Apply("", map[string]any{
		"attributes": map[string]any{"class": "new"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := s.Snapshot().(map[string]any)
	if got["tagName"] != "div" {
		t.Fatalf("expected untouched tagName to survive merge, got %v", got["tagName"])
	}
	attrs := got["attributes"].(map[string]any)
	if attrs["id"] != "app" {
		t.Fatalf("expected untouched attribute id to survive merge, got %v", attrs["id"])
	}
	if attrs["class"] != "new" {
		t.Fatalf("expected merged attribute class to update, got %v", attrs["class"])
	}
}

func TestPointerPatchReplacesAddressedNode(t *testing.T) {
	s := New(nil)
	s.Apply("", map[string]any{
		"tagName": "div",
		"children": []any{
			map[string]any{"tagName": "span", "children": []any{"old"}},
		},
	})

	var seen any
	s.OnChange(func(doc any) { seen = doc })

	err := s.Apply("/children/0", map[string]any{"tagName": "span", "children": []any{"new"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := s.Snapshot().(map[string]any)
	children := got["children"].([]any)
	child := children[0].(map[string]any)
	if child["children"].([]any)[0] != "new" {
		t.Fatalf("expected patched child text, got %#v", child)
	}
	if seen == nil {
		t.Fatal("expected OnChange to fire on pointer patch")
	}
}

func TestInvalidPointerDoesNotMutateOrNotify(t *testing.T) {
	s := New(nil)
	s.Apply("", map[string]any{"tagName": "div", "children": []any{}})

	notified := false
	s.OnChange(func(doc any) { notified = true })

	err := s.Apply("/children/5", "nope")
	if err == nil {
		t.Fatal("expected out-of-range pointer to error")
	}
	if notified {
		t.Fatal("OnChange must not fire when Apply fails")
	}

	got := s.Snapshot().(map[string]any)
	if got["tagName"] != "div" {
		t.Fatalf("expected document unchanged after failed patch, got %v", got["tagName"])
	}
}

func TestHandleLayoutUpdateAppliesDecodedMessage(t *testing.T) {
	s := New(nil)
	var seen any
	s.OnChange(func(doc any) { seen = doc })

	s.HandleLayoutUpdate([]byte(`{"type":"layout-update","path":"","model":{"tagName":"div"}}`))

	if seen == nil {
		t.Fatal("expected OnChange to fire from HandleLayoutUpdate")
	}
	got := s.Snapshot().(map[string]any)
	if got["tagName"] != "div" {
		t.Fatalf("expected tagName div, got %v", got["tagName"])
	}
}

func TestHandleLayoutUpdateDropsMalformedJSON(t *testing.T) {
	s := New(nil)
	notified := false
	s.OnChange(func(doc any) { notified = true })

	s.HandleLayoutUpdate([]byte(`not json`))

	if notified {
		t.Fatal("malformed layout-update must not trigger OnChange")
	}
}
