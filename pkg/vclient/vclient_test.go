package vclient

import (
	"testing"

	"github.com/reactpy-go/client/internal/dom"
	"github.com/reactpy-go/client/internal/transport"
)

type fakeDialer struct {
	cb     transport.Callbacks
	dials  int
	socket *fakeSocket
}

type fakeSocket struct{ sent [][]byte }

func (s *fakeSocket) Send(data []byte) { s.sent = append(s.sent, data) }
func (s *fakeSocket) Close()           {}

func (d *fakeDialer) Dial(url string, cb transport.Callbacks) {
	d.dials++
	d.cb = cb
	d.socket = &fakeSocket{}
	cb.OnOpen(d.socket)
}

func TestMountRendersLayoutUpdateIntoHost(t *testing.T) {
	doc := dom.NewDocument()
	host := doc.CreateElement("div")
	dialer := &fakeDialer{}

	client := Mount(host, WithDialer(dialer))
	defer client.Close()

	if dialer.dials != 1 {
		t.Fatalf("expected Mount to dial once, got %d", dialer.dials)
	}

	dialer.cb.OnMessage([]byte(`{"type":"layout-update","path":"","model":{"tagName":"p","children":["hi"]}}`))

	children := host.Children()
	if len(children) != 1 {
		t.Fatalf("expected one rendered child, got %d", len(children))
	}
	p := children[0]
	if len(p.Children()) != 1 || p.Children()[0].Text() != "hi" {
		t.Fatalf("expected rendered text 'hi', got %#v", p.Children())
	}
}

func TestMountEmitsLayoutEventOnClick(t *testing.T) {
	doc := dom.NewDocument()
	host := doc.CreateElement("div")
	dialer := &fakeDialer{}

	client := Mount(host, WithDialer(dialer))
	defer client.Close()

	dialer.cb.OnMessage([]byte(`{
		"type": "layout-update",
		"path": "",
		"model": {
			"tagName": "button",
			"eventHandlers": {"onClick": {"target": "h1"}}
		}
	}`))

	button := host.Children()[0]
	button.Dispatch("click", dom.NewFakeEvent("MouseEvent", map[string]any{"type": "click"}))

	if len(dialer.socket.sent) != 1 {
		t.Fatalf("expected one outbound layout-event frame, got %d", len(dialer.socket.sent))
	}
}
