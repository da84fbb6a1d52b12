package www

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"ordercast/session"
)

const sseKeepalive = 30 * time.Second

// sseTransport carries a receive-only session over Server-Sent Events.
// Reads block until the client goes away.
type sseTransport struct {
	mu      sync.Mutex
	w       io.Writer
	flusher http.Flusher
	closed  bool
	done    chan struct{}
	reqCtx  context.Context
}

func newSSETransport(w http.ResponseWriter, flusher http.Flusher, reqCtx context.Context) *sseTransport {
	t := &sseTransport{w: w, flusher: flusher, done: make(chan struct{}), reqCtx: reqCtx}
	go t.keepalive()
	return t
}

func (t *sseTransport) keepalive() {
	ticker := time.NewTicker(sseKeepalive)
	defer ticker.Stop()
	for {
		select {
		case <-t.done:
			return
		case <-ticker.C:
			t.write(": keepalive\n\n")
		}
	}
}

func (t *sseTransport) write(s string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return io.ErrClosedPipe
	}
	if _, err := io.WriteString(t.w, s); err != nil {
		return err
	}
	t.flusher.Flush()
	return nil
}

func (t *sseTransport) ReadMessage() ([]byte, error) {
	select {
	case <-t.done:
		return nil, io.EOF
	case <-t.reqCtx.Done():
		return nil, t.reqCtx.Err()
	}
}

func (t *sseTransport) WriteMessage(data []byte) error {
	return t.write(fmt.Sprintf("data: %s\n\n", data))
}

func (t *sseTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		t.closed = true
		close(t.done)
	}
	return nil
}

// serveSSE streams a notification role to browsers that cannot hold a
// WebSocket. Inbound actions are not possible on this transport.
func (h *Handlers) serveSSE(role session.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming not supported", http.StatusInternalServerError)
			return
		}
		sess := h.newSession(w, r, role)
		if sess == nil {
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		sess.Run(h.ctx, newSSETransport(w, flusher, r.Context()))
	}
}

var _ session.Transport = (*sseTransport)(nil)
