package session

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WSOptions tunes a WebSocket transport. Zero values take the defaults.
type WSOptions struct {
	WriteTimeout   time.Duration
	PongTimeout    time.Duration
	MaxMessageSize int64
}

const (
	defaultWriteTimeout = 10 * time.Second
	defaultPongTimeout  = 60 * time.Second
	defaultMaxMessage   = 512 * 1024
)

// WSTransport adapts a gorilla connection to Transport. It pings the peer
// on its own goroutine; a missed pong fails the next read.
type WSTransport struct {
	conn *websocket.Conn
	opts WSOptions

	stop      chan struct{}
	closeOnce sync.Once
}

func NewWSTransport(conn *websocket.Conn, opts WSOptions) *WSTransport {
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}
	if opts.PongTimeout <= 0 {
		opts.PongTimeout = defaultPongTimeout
	}
	if opts.MaxMessageSize <= 0 {
		opts.MaxMessageSize = defaultMaxMessage
	}

	t := &WSTransport{conn: conn, opts: opts, stop: make(chan struct{})}
	conn.SetReadLimit(opts.MaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(opts.PongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(opts.PongTimeout))
	})
	go t.pingLoop()
	return t
}

func (t *WSTransport) pingLoop() {
	ticker := time.NewTicker(t.opts.PongTimeout * 9 / 10)
	defer ticker.Stop()
	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			deadline := time.Now().Add(t.opts.WriteTimeout)
			if err := t.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

// ReadMessage returns the next text or binary frame.
func (t *WSTransport) ReadMessage() ([]byte, error) {
	_, data, err := t.conn.ReadMessage()
	return data, err
}

// WriteMessage sends one text frame. Only the session writer calls it.
func (t *WSTransport) WriteMessage(data []byte) error {
	t.conn.SetWriteDeadline(time.Now().Add(t.opts.WriteTimeout))
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

// Close sends a close frame and tears down the connection.
func (t *WSTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.stop)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		t.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		err = t.conn.Close()
	})
	return err
}

var _ Transport = (*WSTransport)(nil)
