// Package store implements the Model Store (C3): a single mutable VDOM
// document mutated in place by server-issued layout-update messages and
// re-rendered after every mutation.
//
// Grounded on the patch-application discipline in
// pkg/vdom/patch.go / pkg/vdom/hydration.go (apply a server-issued
// mutation to a live tree, then force a re-render) and RFC 6901 JSON
// Pointer semantics via internal/jsonptr.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/reactpy-go/client/internal/jsonptr"
	"github.com/reactpy-go/client/internal/wire"
)

// Store holds the current document and notifies a single subscriber
// (the Reconciler's root) after every successful mutation.
type Store struct {
	mu       sync.Mutex
	doc      any
	onChange func(doc any)
	logger   *slog.Logger
}

// New creates a Store whose initial document is the empty fragment
// `{tagName: ""}`, the document a freshly opened transport starts from
// before the server sends its first layout-update.
func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		doc:    map[string]any{"tagName": ""},
		logger: logger,
	}
}

// OnChange registers the callback invoked with the new document after
// every successful mutation (the Reconciler's force-rerender hook).
func (s *Store) OnChange(f func(doc any)) {
	s.mu.Lock()
	s.onChange = f
	s.mu.Unlock()
}

// Snapshot returns the current document. Callers must not mutate it.
func (s *Store) Snapshot() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// HandleLayoutUpdate is registered with the Router for "layout-update"
// messages. Bad JSON Pointers or malformed payloads are logged and
// discarded without mutating the store.
func (s *Store) HandleLayoutUpdate(raw []byte) {
	msg, err := wire.DecodeLayoutUpdate(raw)
	if err != nil {
		s.logger.Error("store: malformed layout-update", "error", err)
		return
	}
	if err := s.Apply(msg.Path, msg.Model); err != nil {
		s.logger.Error("store: failed to apply layout-update", "path", msg.Path, "error", err)
	}
}

// Apply mutates the document: path=="" deep-merges model's fields into
// the root; any other path is a JSON Pointer set. On success it
// invokes the registered OnChange callback.
func (s *Store) Apply(path string, model any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if path == "" {
		merged, err := deepMergeRoot(s.doc, model)
		if err != nil {
			return fmt.Errorf("store: root replace: %w", err)
		}
		s.doc = merged
	} else {
		newDoc, err := jsonptr.Set(s.doc, path, model)
		if err != nil {
			return err
		}
		s.doc = newDoc
	}

	if s.onChange != nil {
		s.onChange(s.doc)
	}
	return nil
}

// deepMergeRoot replaces the store's root object's fields with model's
// fields. A root whose shape changes entirely (e.g. tagName switches
// from fragment to an element) is still observed as a full re-render
// because the merged document's structure differs throughout.
func deepMergeRoot(root, model any) (any, error) {
	rootMap, ok := root.(map[string]any)
	if !ok {
		return model, nil
	}
	modelMap, ok := model.(map[string]any)
	if !ok {
		return model, nil
	}
	return deepMerge(rootMap, modelMap), nil
}

func deepMerge(dst, src map[string]any) map[string]any {
	out := make(map[string]any, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		if existing, ok := out[k].(map[string]any); ok {
			if incoming, ok := v.(map[string]any); ok {
				out[k] = deepMerge(existing, incoming)
				continue
			}
		}
		out[k] = v
	}
	return out
}

// DecodeJSONDocument is a convenience used by tests and the devtools
// replay harness to turn a raw JSON vdom literal into the any-typed
// document shape the store and jsonptr operate on.
func DecodeJSONDocument(raw []byte) (any, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
