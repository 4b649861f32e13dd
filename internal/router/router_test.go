package router

import (
	"encoding/json"
	"testing"
)

func TestOnMessageResolvesReadyGate(t *testing.T) {
	r := New(nil)
	select {
	case <-r.Ready():
		t.Fatal("ready gate should not resolve before any handler registers")
	default:
	}

	r.OnMessage("layout-update", func(raw []byte) {})

	select {
	case <-r.Ready():
	default:
		t.Fatal("ready gate should resolve after first OnMessage call")
	}
}

func TestHandleIncomingDispatchesByType(t *testing.T) {
	r := New(nil)
	var got []byte
	r.OnMessage("layout-update", func(raw []byte) { got = raw })

	msg, _ := json.Marshal(map[string]any{"type": "layout-update", "path": "", "model": map[string]any{}})
	r.HandleIncoming(msg)

	if string(got) != string(msg) {
		t.Fatalf("handler did not receive raw message")
	}
}

func TestHandleIncomingUnknownTypeDropped(t *testing.T) {
	r := New(nil)
	called := false
	r.OnMessage("layout-update", func(raw []byte) { called = true })

	msg, _ := json.Marshal(map[string]any{"type": "something-else"})
	r.HandleIncoming(msg)

	if called {
		t.Fatal("handler for a different type should not be invoked")
	}
}

func TestUnregisterStopsDelivery(t *testing.T) {
	r := New(nil)
	called := false
	unregister := r.OnMessage("layout-update", func(raw []byte) { called = true })
	unregister()

	msg, _ := json.Marshal(map[string]any{"type": "layout-update"})
	r.HandleIncoming(msg)

	if called {
		t.Fatal("unregistered handler should not be invoked")
	}
}

type fakeSender struct{ sent [][]byte }

func (f *fakeSender) Send(data []byte) { f.sent = append(f.sent, data) }

func TestSendGoesThroughBoundSender(t *testing.T) {
	r := New(nil)
	s := &fakeSender{}
	r.BindSender(s)
	r.Send([]byte("hi"))

	if len(s.sent) != 1 || string(s.sent[0]) != "hi" {
		t.Fatalf("expected message delivered to sender, got %#v", s.sent)
	}
}

func TestSendDroppedWithoutSender(t *testing.T) {
	r := New(nil)
	r.Send([]byte("hi")) // must not panic
}
