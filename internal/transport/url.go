package transport

import "strings"

// ServerLocation names the server this client connects to, mirroring
// the original embedding page's client{ serverLocation: {...} } shape.
type ServerLocation struct {
	// URL is the origin, e.g. "https://example.com" or "http://localhost:8000".
	URL string
	// Route is the app route the client is mounted on, e.g. "/dashboard".
	Route string
	// Query is the raw query string, including a leading "?" if non-empty.
	Query string
}

// base is "{origin}/_reactpy".
func (s ServerLocation) base() string {
	return strings.TrimSuffix(s.URL, "/") + "/_reactpy"
}

// StreamURL derives the WebSocket URL: {ws|wss}://{host}{base}/stream{route}{query},
// with scheme mirroring http/https and the route segment's trailing
// slash stripped.
func (s ServerLocation) StreamURL() string {
	scheme := "ws"
	rest := s.URL
	switch {
	case strings.HasPrefix(rest, "https://"):
		scheme = "wss"
		rest = strings.TrimPrefix(rest, "https://")
	case strings.HasPrefix(rest, "http://"):
		scheme = "ws"
		rest = strings.TrimPrefix(rest, "http://")
	}
	rest = strings.TrimSuffix(rest, "/")
	route := strings.TrimSuffix(s.Route, "/")
	return scheme + "://" + rest + "/_reactpy/stream" + route + s.Query
}

// ModulesURL derives the "/modules/<name>" endpoint URL used to resolve
// sourceType=="NAME" import sources.
func (s ServerLocation) ModulesURL(name string) string {
	return s.base() + "/modules/" + name
}

// AssetsURL derives the "/assets/..." endpoint URL.
func (s ServerLocation) AssetsURL(path string) string {
	return s.base() + "/assets/" + strings.TrimPrefix(path, "/")
}
