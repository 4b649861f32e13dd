// Package reconcile implements the Reconciler (C4): it classifies raw,
// duck-typed VDOM documents into a tagged union ("dynamic, duck-typed
// VDOM -> tagged variants") and walks that union to materialize a real
// DOM tree, specializing per element kind.
package reconcile

import (
	"fmt"

	"github.com/reactpy-go/client/internal/wire"
)

// Kind discriminates the specialized renderer a Node needs.
type Kind uint8

const (
	KindError Kind = iota
	KindFragment
	KindUserInput
	KindScript
	KindImported
	KindStandard
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindError:
		return "Error"
	case KindFragment:
		return "Fragment"
	case KindUserInput:
		return "UserInput"
	case KindScript:
		return "Script"
	case KindImported:
		return "Imported"
	case KindStandard:
		return "Standard"
	case KindText:
		return "Text"
	default:
		return "Unknown"
	}
}

var userInputTags = map[string]bool{"input": true, "select": true, "textarea": true}

// Node is the classified, statically-shaped form of one VDOM entry.
// Exactly one of its kind-specific fields is meaningful at a time.
type Node struct {
	Kind Kind

	// Shared across element kinds.
	Tag           string
	Key           string
	Attributes    map[string]any
	EventHandlers map[string]wire.EventSpec
	Children      []*Node

	// KindText only.
	Text string

	// KindError only. Empty string means "render nothing".
	ErrorText string

	// KindImported only.
	ImportSource *wire.ImportSource
}

// Classify converts one raw VDOM entry (a string, for a text node, or a
// map[string]any produced by decoding/patching JSON) into a Node,
// recursively classifying children. It is the single place element
// kind is decided.
func Classify(raw any) (*Node, error) {
	switch v := raw.(type) {
	case string:
		return &Node{Kind: KindText, Text: v}, nil
	case map[string]any:
		return classifyElement(v)
	case nil:
		return nil, fmt.Errorf("reconcile: nil vdom entry")
	default:
		return nil, fmt.Errorf("reconcile: unsupported vdom entry type %T", raw)
	}
}

func classifyElement(m map[string]any) (*Node, error) {
	tag, _ := m["tagName"].(string)

	n := &Node{Tag: tag}

	if key, ok := attrString(m, "key"); ok {
		n.Key = key
	}

	if attrs, ok := m["attributes"].(map[string]any); ok {
		n.Attributes = attrs
		if n.Key == "" {
			if key, ok := attrString(attrs, "key"); ok {
				n.Key = key
			}
		}
	}

	if handlers, ok := m["eventHandlers"].(map[string]any); ok {
		n.EventHandlers = make(map[string]wire.EventSpec, len(handlers))
		for name, raw := range handlers {
			spec, err := decodeEventSpec(raw)
			if err != nil {
				return nil, fmt.Errorf("reconcile: eventHandlers.%s: %w", name, err)
			}
			n.EventHandlers[name] = spec
		}
	}

	children, _ := m["children"].([]any)
	n.Children = make([]*Node, 0, len(children))
	for i, c := range children {
		child, err := Classify(c)
		if err != nil {
			return nil, fmt.Errorf("reconcile: children[%d]: %w", i, err)
		}
		n.Children = append(n.Children, child)
	}

	// Order matters: error short-circuits everything else, then the
	// remaining checks are mutually exclusive.
	switch {
	case hasErrorField(m):
		n.Kind = KindError
		n.ErrorText, _ = m["error"].(string)
	case userInputTags[tag]:
		n.Kind = KindUserInput
	case tag == "script":
		n.Kind = KindScript
	case m["importSource"] != nil:
		n.Kind = KindImported
		src, err := decodeImportSource(m["importSource"])
		if err != nil {
			return nil, fmt.Errorf("reconcile: importSource: %w", err)
		}
		n.ImportSource = src
	case tag == "":
		n.Kind = KindFragment
	default:
		n.Kind = KindStandard
	}

	return n, nil
}

func hasErrorField(m map[string]any) bool {
	_, ok := m["error"]
	return ok
}

func attrString(m map[string]any, key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func decodeEventSpec(raw any) (wire.EventSpec, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return wire.EventSpec{}, fmt.Errorf("expected object, got %T", raw)
	}
	spec := wire.EventSpec{}
	spec.Target, _ = m["target"].(string)
	spec.PreventDefault, _ = m["preventDefault"].(bool)
	spec.StopPropagation, _ = m["stopPropagation"].(bool)
	return spec, nil
}

func decodeImportSource(raw any) (*wire.ImportSource, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected object, got %T", raw)
	}
	src := &wire.ImportSource{}
	src.Source, _ = m["source"].(string)
	st, _ := m["sourceType"].(string)
	src.SourceType = wire.SourceType(st)
	src.Fallback = m["fallback"]
	src.UnmountBeforeUpdate, _ = m["unmountBeforeUpdate"].(bool)
	return src, nil
}
