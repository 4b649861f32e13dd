// Package eventser implements the Event Serializer (C5): it converts an
// arbitrary host DOM value (most importantly a browser Event) into a
// JSON-safe plain Go value.
//
// Cycle safety uses an explicit identity-keyed visited set and an
// explicit depth counter rather than reflection over the concrete Go
// type, deliberately avoiding a generic JSON library's reflection
// (which mishandles DOM classes full of circular parent/child
// references). The bound-recursion discipline mirrors the
// protocol decoder in pkg/protocol/limits.go (MaxPatchDepth /
// checkDepth), applied here against a hostile-sized DOM graph instead
// of a hostile wire payload.
package eventser

import (
	"regexp"

	"github.com/reactpy-go/client/internal/dom"
)

// MaxDepth is the default top-level recursion bound.
const MaxDepth = 10

// FilesMinDepth guarantees File descriptors inside a "files" list
// round-trip even if the ambient depth budget has nearly run out.
const FilesMinDepth = 3

var allowListProps = []string{"value", "checked", "files", "type", "name", "dataset"}

var globalIgnoredKeys = map[string]bool{"view": true, "size": true, "length": true}

var allCapsWord = regexp.MustCompile(`^[A-Z]+$`)

var nodeBlacklist = map[string]bool{
	"parentNode": true, "parentElement": true, "ownerDocument": true, "getRootNode": true,
	"childNodes": true, "children": true, "firstChild": true, "lastChild": true,
	"previousSibling": true, "nextSibling": true,
	"previousElementSibling": true, "nextElementSibling": true,
	"innerHTML": true, "outerHTML": true, "offsetParent": true,
	"offsetWidth": true, "offsetHeight": true, "offsetLeft": true, "offsetTop": true,
	"clientTop": true, "clientLeft": true, "clientWidth": true, "clientHeight": true,
	"scrollWidth": true, "scrollHeight": true, "scrollTop": true, "scrollLeft": true,
}

// stopSentinel is what serializeValue returns internally when a value
// must be dropped (cycle, depth exhausted, or failed property read) so
// the caller can distinguish "omit this key" from "set it to nil".
type stopSentinel struct{}

// Serialize converts v (typically a DOM Event) into a JSON-safe plain
// value. doc supplies window.getSelection() for the Event "selection"
// synthesis below.
func Serialize(doc dom.Document, v dom.Value) any {
	visited := map[any]struct{}{}
	out := serializeObject(doc, dom.Value{}, v, MaxDepth, visited, true)
	m, ok := out.(map[string]any)
	if !ok {
		return out
	}
	if v.InstanceOf("Event") {
		m["selection"] = serializeSelection(doc, visited)
	}
	return m
}

func serializeSelection(doc dom.Document, visited map[any]struct{}) map[string]any {
	sel := doc.GetSelection()
	result := map[string]any{
		"type":          safeString(sel.Get("type")),
		"anchorOffset":  safeFloat(sel.Get("anchorOffset")),
		"focusOffset":   safeFloat(sel.Get("focusOffset")),
		"isCollapsed":   safeBool(sel.Get("isCollapsed")),
		"rangeCount":    safeFloat(sel.Get("rangeCount")),
		"selectedText":  safeString(sel.Get("toString").Invoke()),
	}
	if anchor := sel.Get("anchorNode"); !anchor.IsUndefined() && !anchor.IsNull() {
		result["anchorNode"] = serializeValue(doc, sel, "anchorNode", anchor, MaxDepth-1, visited)
	}
	if focus := sel.Get("focusNode"); !focus.IsUndefined() && !focus.IsNull() {
		result["focusNode"] = serializeValue(doc, sel, "focusNode", focus, MaxDepth-1, visited)
	}
	return result
}

// serializeObject walks an object's own+inherited enumerable keys (plus,
// at the top level, the allow-listed input properties and the
// form-control folding described below).
func serializeObject(doc dom.Document, parent dom.Value, v dom.Value, depth int, visited map[any]struct{}, top bool) any {
	if ignorableValue(parent, v) {
		return stopSentinel{}
	}
	if !isObjectLike(v) {
		return primitive(v)
	}
	if id, comparable := v.Identity(); comparable {
		if _, seen := visited[id]; seen {
			return stopSentinel{}
		}
		if depth <= 0 {
			return stopSentinel{}
		}
		visited[id] = struct{}{}
	} else if depth <= 0 {
		return stopSentinel{}
	}

	if isArrayLike(v) {
		n := v.Len()
		arr := make([]any, 0, n)
		for i := 0; i < n; i++ {
			el := v.Index(i)
			res := serializeValue(doc, v, "", el, depth-1, visited)
			if _, stop := res.(stopSentinel); stop {
				continue
			}
			arr = append(arr, res)
		}
		return arr
	}

	result := map[string]any{}
	keys := v.OwnPropertyNames()
	keySet := make(map[string]bool, len(keys)+len(allowListProps))
	ordered := make([]string, 0, len(keys)+len(allowListProps))
	for _, k := range keys {
		if !keySet[k] {
			keySet[k] = true
			ordered = append(ordered, k)
		}
	}
	if top {
		for _, k := range allowListProps {
			if !keySet[k] {
				keySet[k] = true
				ordered = append(ordered, k)
			}
		}
	}

	for _, key := range ordered {
		val := safeGet(v, key)
		childDepth := depth - 1
		if key == "files" && childDepth < FilesMinDepth {
			childDepth = FilesMinDepth
		}
		res := serializeValue(doc, v, key, val, childDepth, visited)
		if _, stop := res.(stopSentinel); stop {
			continue
		}
		result[key] = res
	}

	if top && isFormElement(v) {
		foldFormControls(doc, v, depth, visited, result)
	}

	return result
}

// serializeValue serializes one already-fetched property value, applying
// the ignorable-value rules before recursing.
func serializeValue(doc dom.Document, parent dom.Value, key string, val dom.Value, depth int, visited map[any]struct{}) any {
	if key != "" && ignorableKey(parent, key) {
		return stopSentinel{}
	}
	if ignorableValue(parent, val) {
		return stopSentinel{}
	}
	if !isObjectLike(val) {
		return primitive(val)
	}
	return serializeObject(doc, parent, val, depth, visited, false)
}

func foldFormControls(doc dom.Document, form dom.Value, depth int, visited map[any]struct{}, result map[string]any) {
	elements := form.Get("elements")
	if elements.IsUndefined() || elements.IsNull() {
		return
	}
	n := elements.Len()
	for i := 0; i < n; i++ {
		ctl := elements.Index(i)
		name := safeString(ctl.Get("name"))
		if name == "" {
			continue
		}
		result[name] = serializeValue(doc, form, name, ctl, depth-1, visited)
	}
}

func isFormElement(v dom.Value) bool {
	return v.InstanceOf("Node") && safeString(v.Get("tagName")) == "FORM"
}

func isObjectLike(v dom.Value) bool {
	switch v.Kind() {
	case dom.KindObject, dom.KindArray:
		return true
	default:
		return false
	}
}

// isArrayLike reports Array.isArray(x) OR a numeric x.length, excluding
// Map-flavored objects and CSSStyleDeclaration (both expose a numeric
// length but are not meant to be walked as index sequences here).
// Iterability is not checked: any other object with a numeric length is
// walked as an index sequence.
func isArrayLike(v dom.Value) bool {
	if v.Kind() == dom.KindArray {
		return true
	}
	if v.InstanceOf("Map") || v.InstanceOf("CSSStyleDeclaration") {
		return false
	}
	return v.Get("length").Kind() == dom.KindNumber
}

func ignorableKey(parent dom.Value, key string) bool {
	if len(key) >= 2 && key[0] == '_' && key[1] == '_' {
		return true
	}
	if allCapsWord.MatchString(key) {
		return true
	}
	if globalIgnoredKeys[key] {
		return true
	}
	if !parent.IsUndefined() && parent.InstanceOf("Node") && nodeBlacklist[key] {
		return true
	}
	return false
}

func ignorableValue(parent dom.Value, v dom.Value) bool {
	switch v.Kind() {
	case dom.KindUndefined, dom.KindNull, dom.KindFunction:
		return true
	}
	if v.InstanceOf("CSSStyleSheet") || v.InstanceOf("Window") || v.InstanceOf("Document") {
		return true
	}
	if !parent.IsUndefined() && parent.InstanceOf("CSSStyleDeclaration") && v.Kind() == dom.KindString && v.String() == "" {
		return true
	}
	return false
}

func primitive(v dom.Value) any {
	switch v.Kind() {
	case dom.KindString:
		return v.String()
	case dom.KindNumber:
		return v.Float()
	case dom.KindBoolean:
		return v.Bool()
	case dom.KindNull:
		return nil
	default:
		return nil
	}
}

// safeGet and friends implement a "throws on one property -> skip just
// that property, keep going" policy: any backend-level panic while
// reading a single property is recovered and treated as undefined
// rather than aborting the whole serialization.
func safeGet(v dom.Value, key string) (result dom.Value) {
	defer func() {
		if recover() != nil {
			result = dom.Value{}
		}
	}()
	return v.Get(key)
}

func safeString(v dom.Value) string {
	if v.Kind() != dom.KindString {
		return ""
	}
	return v.String()
}

func safeFloat(v dom.Value) float64 {
	if v.Kind() != dom.KindNumber {
		return 0
	}
	return v.Float()
}

func safeBool(v dom.Value) bool {
	if v.Kind() != dom.KindBoolean {
		return false
	}
	return v.Bool()
}
