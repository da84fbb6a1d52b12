package www

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/gorilla/websocket"

	"ordercast/config"
	"ordercast/engine"
	"ordercast/groups"
	"ordercast/session"
)

type Handlers struct {
	engine    *engine.Engine
	registry  *groups.Registry
	publisher groups.Publisher
	sessions  *sessions.CookieStore
	upgrader  websocket.Upgrader
	sessCfg   config.SessionsConfig
	debug     bool

	// ctx outlives individual requests and is cancelled on shutdown so
	// hijacked WebSocket connections close too.
	ctx context.Context
}

// NewRouter builds the HTTP surface. The returned stop function closes
// every live client session.
func NewRouter(eng *engine.Engine, reg *groups.Registry, pub groups.Publisher, cfg *config.Config) (http.Handler, func()) {
	if pub == nil {
		pub = reg
	}
	ctx, cancel := context.WithCancel(context.Background())

	h := &Handlers{
		engine:    eng,
		registry:  reg,
		publisher: pub,
		sessions:  newSessionStore(cfg.Web.SessionSecret),
		sessCfg:   cfg.Sessions,
		debug:     cfg.Debug,
		ctx:       ctx,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(cfg.Web.AllowedOrigins),
	}

	seedAPIUser(ctx, eng.DB())

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	// Client sessions
	r.Get("/ws/print/", h.serveWS(session.Printer))
	r.Get("/ws/notifications/", h.serveWS(session.OwnerNotification))
	r.Get("/ws/customer-notifications/", h.serveWS(session.CustomerNotification))
	r.Get("/ws/delivery-fee/owner/", h.serveWS(session.DeliveryFeeOwner))
	r.Get("/ws/delivery-fee/customer/", h.serveWS(session.DeliveryFeeCustomer))
	r.Get("/events/notifications", h.serveSSE(session.OwnerNotification))
	r.Get("/events/customer-notifications", h.serveSSE(session.CustomerNotification))

	// Public routes
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NoCache)
		r.Get("/health", h.apiHealthCheck)
		r.Get("/groups", h.apiGroups)
		r.Get("/counts", h.apiOwnerCounts)
		r.Get("/counts/customer", h.apiCustomerCount)

		// Collaborator writes
		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)
			r.Post("/checkouts", h.apiPlaceCheckout)
			r.Post("/orders/status", h.apiUpdateOrderStatus)
			r.Post("/orders/seen-by-owner", h.apiMarkSeenByOwner)
			r.Post("/customers/seen", h.apiMarkCustomerSeen)
			r.Post("/print-jobs", h.apiSendPrintJob)
		})
	})

	return r, cancel
}

// originChecker allows any origin when none are configured, otherwise only
// the listed hosts.
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := set[origin]; ok {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		_, ok := set[u.Host]
		return ok
	}
}
