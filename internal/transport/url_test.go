package transport

import "testing"

func TestStreamURLHTTPS(t *testing.T) {
	loc := ServerLocation{URL: "https://example.com", Route: "/dash/", Query: "?x=1"}
	got := loc.StreamURL()
	want := "wss://example.com/_reactpy/stream/dash?x=1"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestStreamURLHTTP(t *testing.T) {
	loc := ServerLocation{URL: "http://localhost:8000", Route: "", Query: ""}
	got := loc.StreamURL()
	want := "ws://localhost:8000/_reactpy/stream"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestModulesURL(t *testing.T) {
	loc := ServerLocation{URL: "http://localhost:8000"}
	got := loc.ModulesURL("chart")
	want := "http://localhost:8000/_reactpy/modules/chart"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
