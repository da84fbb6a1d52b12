package www

import (
	"errors"
	"log"
	"net/http"

	"ordercast/session"
)

func (h *Handlers) sessionDeps() session.Deps {
	return session.Deps{
		Registry:    h.registry,
		Publisher:   h.publisher,
		Snapshotter: h.engine.Aggregator(),
		SendBuffer:  h.sessCfg.SendBuffer,
		Debug:       h.debug,
	}
}

// newSession validates the role's preconditions before anything is written
// to the connection. A customer-scoped role without an email gets 403.
func (h *Handlers) newSession(w http.ResponseWriter, r *http.Request, role session.Role) *session.Session {
	email := r.URL.Query().Get("email")
	sess, err := session.New(role, email, h.sessionDeps())
	if errors.Is(err, session.ErrMissingIdentity) {
		http.Error(w, "email is required", http.StatusForbidden)
		return nil
	}
	if err != nil {
		log.Printf("www: new %s session: %v", role, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return nil
	}
	return sess
}

func (h *Handlers) serveWS(role session.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := h.newSession(w, r, role)
		if sess == nil {
			return
		}
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already replied to the client.
			log.Printf("www: %s upgrade: %v", role, err)
			return
		}
		t := session.NewWSTransport(conn, session.WSOptions{
			WriteTimeout:   h.sessCfg.WriteTimeout,
			PongTimeout:    h.sessCfg.PongTimeout,
			MaxMessageSize: h.sessCfg.MaxMessageSize,
		})
		if h.debug {
			log.Printf("www: %s session %s connected from %s", role, sess.ID, r.RemoteAddr)
		}
		sess.Run(h.ctx, t)
	}
}
