package transport

import (
	"sync"
	"testing"
	"time"
)

// fakeDialer lets tests drive OnOpen/OnMessage/OnClose deterministically
// without a real socket.
type fakeDialer struct {
	mu      sync.Mutex
	dials   int
	lastCB  Callbacks
	opened  []*fakeSocket
	onDial  func(url string)
}

type fakeSocket struct {
	mu     sync.Mutex
	sent   [][]byte
	closed bool
}

func (s *fakeSocket) Send(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, data)
}
func (s *fakeSocket) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (d *fakeDialer) Dial(url string, cb Callbacks) {
	d.mu.Lock()
	d.dials++
	d.lastCB = cb
	d.mu.Unlock()
	if d.onDial != nil {
		d.onDial(url)
	}
}

func readyNow() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

func TestOpenResetsBackoffState(t *testing.T) {
	d := &fakeDialer{}
	var readyCalled bool
	tr := New(ServerLocation{URL: "http://x"}, d, readyNow(), Options{}, nil, func() { readyCalled = true }, nil)
	tr.Start()

	sock := &fakeSocket{}
	d.lastCB.OnOpen(sock)

	if !readyCalled {
		t.Fatal("expected onReady to be invoked on open")
	}
	if !tr.everConnected || tr.retries != 0 {
		t.Fatalf("expected reset state, got everConnected=%v retries=%d", tr.everConnected, tr.retries)
	}
}

func TestNeverConnectedCloseDoesNotRetry(t *testing.T) {
	d := &fakeDialer{}
	tr := New(ServerLocation{URL: "http://x"}, d, readyNow(), Options{}, nil, nil, nil)
	tr.Start()

	d.lastCB.OnClose()

	if d.dials != 1 {
		t.Fatalf("expected no reconnect attempt, dials=%d", d.dials)
	}
}

func TestReconnectAfterConnectSchedulesBackoff(t *testing.T) {
	d := &fakeDialer{}
	var scheduled []time.Duration
	opts := Options{
		Schedule: func(dur time.Duration, f func()) func() {
			scheduled = append(scheduled, dur)
			f() // fire immediately for the test
			return func() {}
		},
		RandFloat64: func() float64 { return 0.5 }, // midpoint: zero jitter offset
	}
	tr := New(ServerLocation{URL: "http://x"}, d, readyNow(), opts, nil, nil, nil)
	tr.Start()

	d.lastCB.OnOpen(&fakeSocket{})
	d.lastCB.OnClose() // first drop after connecting

	if len(scheduled) != 1 {
		t.Fatalf("expected one scheduled reconnect, got %d", len(scheduled))
	}
	if d.dials != 2 {
		t.Fatalf("expected a second dial attempt, dials=%d", d.dials)
	}
}

func TestReconnectIntervalSequenceIsJitterBounded(t *testing.T) {
	d := &fakeDialer{}
	var scheduled []time.Duration
	randSeq := []float64{0.0, 1.0, 0.5, 0.25, 0.75, 0.1, 0.9, 0.3, 0.6, 0.4}
	i := 0
	opts := Options{
		Schedule: func(dur time.Duration, f func()) func() {
			scheduled = append(scheduled, dur)
			f()
			return func() {}
		},
		RandFloat64: func() float64 {
			r := randSeq[i%len(randSeq)]
			i++
			return r
		},
	}
	tr := New(ServerLocation{URL: "http://x"}, d, readyNow(), opts, nil, nil, nil)
	tr.Start()
	d.lastCB.OnOpen(&fakeSocket{}) // everConnected=true, interval reset to 750ms

	for n := 0; n < 10; n++ {
		d.lastCB.OnClose()
	}

	interval := 750 * time.Millisecond
	for n, wait := range scheduled {
		lower := time.Duration(float64(interval) * 0.9)
		upper := time.Duration(float64(interval) * 1.1)
		if wait < lower || wait > upper {
			t.Fatalf("iteration %d: wait %v outside [%v, %v] for base interval %v", n, wait, lower, upper, interval)
		}
		interval = time.Duration(float64(interval) * 1.1)
		if interval > 60*time.Second {
			interval = 60 * time.Second
		}
	}
}

func TestMaxRetriesStopsReconnecting(t *testing.T) {
	d := &fakeDialer{}
	opts := Options{
		MaxRetries: 2,
		Schedule: func(dur time.Duration, f func()) func() {
			f()
			return func() {}
		},
		RandFloat64: func() float64 { return 0.5 },
	}
	tr := New(ServerLocation{URL: "http://x"}, d, readyNow(), opts, nil, nil, nil)
	tr.Start()
	d.lastCB.OnOpen(&fakeSocket{})

	for n := 0; n < 5; n++ {
		d.lastCB.OnClose()
	}

	// initial dial + at most MaxRetries reconnect dials
	if d.dials > 1+opts.MaxRetries {
		t.Fatalf("expected reconnects to stop at MaxRetries, dials=%d", d.dials)
	}
}

func TestStopCancelsPendingReconnect(t *testing.T) {
	d := &fakeDialer{}
	canceled := false
	opts := Options{
		Schedule: func(dur time.Duration, f func()) func() {
			return func() { canceled = true }
		},
	}
	tr := New(ServerLocation{URL: "http://x"}, d, readyNow(), opts, nil, nil, nil)
	tr.Start()
	d.lastCB.OnOpen(&fakeSocket{})
	d.lastCB.OnClose()
	tr.Stop()

	if !canceled {
		t.Fatal("expected Stop to cancel the pending reconnect timer")
	}
}

func TestSendMessageDropsWhenNotOpen(t *testing.T) {
	d := &fakeDialer{}
	tr := New(ServerLocation{URL: "http://x"}, d, readyNow(), Options{}, nil, nil, nil)
	tr.Start()
	// No panics, no error returned -- best-effort drop.
	tr.SendMessage([]byte(`{"type":"layout-event"}`))
}

func TestSendMessageDeliveredWhenOpen(t *testing.T) {
	d := &fakeDialer{}
	tr := New(ServerLocation{URL: "http://x"}, d, readyNow(), Options{}, nil, nil, nil)
	tr.Start()
	sock := &fakeSocket{}
	d.lastCB.OnOpen(sock)

	tr.SendMessage([]byte(`hello`))
	if len(sock.sent) != 1 || string(sock.sent[0]) != "hello" {
		t.Fatalf("expected message delivered to socket, got %#v", sock.sent)
	}
}
