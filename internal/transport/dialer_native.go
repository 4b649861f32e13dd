//go:build !(js && wasm)

package transport

import (
	"log/slog"

	"github.com/gorilla/websocket"
)

// NativeDialer drives the Transport state machine over a real
// gorilla/websocket connection outside js/wasm. pkg/vclient.Mount uses
// it when no Dialer is supplied; the tests in this module supply fake
// Dialers instead.
type NativeDialer struct {
	Logger *slog.Logger
}

func (d NativeDialer) Dial(url string, cb Callbacks) {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	go func() {
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			logger.Debug("transport: dial failed", "url", url, "error", err)
			cb.OnClose()
			return
		}

		sock := &nativeSocket{conn: conn}
		cb.OnOpen(sock)

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				cb.OnClose()
				return
			}
			cb.OnMessage(data)
		}
	}()
}

type nativeSocket struct {
	conn *websocket.Conn
}

func (s *nativeSocket) Send(data []byte) {
	_ = s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *nativeSocket) Close() {
	_ = s.conn.Close()
}
