// Package rerrors provides structured, coded diagnostics for the runtime.
//
// Control flow within the runtime uses plain Go errors and sentinel
// values; this package exists for user-facing diagnostics (console
// warnings, in-place error rendering, connection failure logs) so they
// carry a stable code and a hint instead of an ad-hoc string.
package rerrors

import "fmt"

// Category groups related error codes.
type Category string

const (
	CategoryTransport Category = "transport"
	CategoryProtocol  Category = "protocol"
	CategoryRender    Category = "render"
	CategorySerialize Category = "serialize"
	CategoryImport    Category = "import"
	CategoryDevtools  Category = "devtools"
)

type template struct {
	Category Category
	Message  string
}

var registry = map[string]template{
	"E101": {CategoryTransport, "initial WebSocket connection failed"},
	"E102": {CategoryTransport, "WebSocket closed after connecting; reconnecting"},
	"E103": {CategoryTransport, "reconnect attempts exhausted"},
	"E201": {CategoryProtocol, "unknown message type"},
	"E202": {CategoryProtocol, "malformed layout-update message"},
	"E203": {CategoryProtocol, "JSON Pointer does not resolve against the current model"},
	"E301": {CategoryRender, "vdom node carries an error payload"},
	"E401": {CategorySerialize, "failed to serialize event property"},
	"E501": {CategoryImport, "import-source module failed to load"},
	"E601": {CategoryDevtools, "devtools config file missing or unreadable"},
	"E602": {CategoryDevtools, "devtools config failed to parse"},
	"E603": {CategoryDevtools, "module mirror operation failed"},
}

// RuntimeError is a coded, hinted error.
type RuntimeError struct {
	Code     string
	Category Category
	Message  string
	Hint     string
	Wrapped  error
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap supports errors.Is/errors.As against the wrapped cause.
func (e *RuntimeError) Unwrap() error {
	return e.Wrapped
}

// New creates a RuntimeError from a registered code.
func New(code string) *RuntimeError {
	t, ok := registry[code]
	if !ok {
		return &RuntimeError{Code: code, Message: "unregistered error code"}
	}
	return &RuntimeError{Code: code, Category: t.Category, Message: t.Message}
}

// WithHint attaches a short actionable hint.
func (e *RuntimeError) WithHint(hint string) *RuntimeError {
	e.Hint = hint
	return e
}

// Wrap attaches the underlying cause.
func (e *RuntimeError) Wrap(err error) *RuntimeError {
	e.Wrapped = err
	return e
}
