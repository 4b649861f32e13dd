// Package wire defines the JSON envelopes exchanged over the transport
// and the raw, duck-typed Vdom shape they carry.
//
// Decoding here intentionally stays close to encoding/json's native
// any/map representation rather than a strict struct, because the VDOM
// is a dynamic, server-authored document: reconcile.Classify (a
// tagged-union classification step) is what gives it a fixed shape,
// not this package.
package wire

import "encoding/json"

// TypeLayoutUpdate (inbound) and TypeLayoutEvent (outbound) are the two
// wire message kinds. The router dispatches on these verbatim strings.
const (
	TypeLayoutUpdate = "layout-update"
	TypeLayoutEvent  = "layout-event"
)

// LayoutUpdate is the only inbound (server -> client) message kind.
type LayoutUpdate struct {
	Type  string `json:"type"`
	Path  string `json:"path"`
	Model any    `json:"model"`
}

// LayoutEvent is the only outbound (client -> server) message kind.
type LayoutEvent struct {
	Type   string `json:"type"`
	Target string `json:"target"`
	Data   []any  `json:"data"`
}

// NewLayoutEvent builds a ready-to-send layout-event envelope.
func NewLayoutEvent(target string, data []any) LayoutEvent {
	return LayoutEvent{Type: TypeLayoutEvent, Target: target, Data: data}
}

// Envelope is the minimal shape needed to read a message's "type" before
// deciding how to decode the rest, mirroring the frame-type
// dispatch in pkg/server/websocket.go (decode a small header, then
// decode the typed payload).
type Envelope struct {
	Type string `json:"type"`
}

// DecodeEnvelope extracts just the "type" field from a raw inbound frame.
func DecodeEnvelope(raw []byte) (Envelope, error) {
	var e Envelope
	err := json.Unmarshal(raw, &e)
	return e, err
}

// DecodeLayoutUpdate decodes a full layout-update frame.
func DecodeLayoutUpdate(raw []byte) (LayoutUpdate, error) {
	var m LayoutUpdate
	err := json.Unmarshal(raw, &m)
	return m, err
}

// EncodeLayoutEvent serializes an outbound layout-event frame.
func EncodeLayoutEvent(e LayoutEvent) ([]byte, error) {
	return json.Marshal(e)
}

// RawVdom is the wire schema for a single VDOM node. It stays
// map-shaped for attributes/eventHandlers since their key sets are
// server-defined and open-ended.
type RawVdom struct {
	TagName       string                 `json:"tagName"`
	Attributes    map[string]any         `json:"attributes,omitempty"`
	Children      []any                  `json:"children,omitempty"`
	EventHandlers map[string]EventSpec   `json:"eventHandlers,omitempty"`
	ImportSource  *ImportSource          `json:"importSource,omitempty"`
	Error         *string                `json:"error,omitempty"`
}

// EventSpec is the server-declared binding for one event name.
type EventSpec struct {
	Target          string `json:"target"`
	PreventDefault  bool   `json:"preventDefault,omitempty"`
	StopPropagation bool   `json:"stopPropagation,omitempty"`
}

// SourceType enumerates how an ImportSource's Source field resolves.
type SourceType string

const (
	SourceTypeName SourceType = "NAME"
	SourceTypeURL  SourceType = "URL"
)

// ImportSource names a remote ES module an ImportedElement binds to.
type ImportSource struct {
	Source              string     `json:"source"`
	SourceType          SourceType `json:"sourceType"`
	Fallback            any        `json:"fallback,omitempty"`
	UnmountBeforeUpdate bool       `json:"unmountBeforeUpdate,omitempty"`
}
