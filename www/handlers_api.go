package www

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"ordercast/engine"
	"ordercast/groups"
)

func (h *Handlers) jsonOK(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *Handlers) jsonCreated(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(data)
}

func (h *Handlers) jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// engineError maps engine sentinels to HTTP status codes.
func (h *Handlers) engineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrInvalidOrder), errors.Is(err, engine.ErrInvalidStatus):
		h.jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, engine.ErrOrderNotFound):
		h.jsonError(w, err.Error(), http.StatusNotFound)
	default:
		log.Printf("www: %v", err)
		h.jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *Handlers) apiHealthCheck(w http.ResponseWriter, r *http.Request) {
	msgOK := false
	if mc := h.engine.MsgClient(); mc != nil {
		msgOK = mc.IsConnected()
	}
	dbOK := h.engine.DB().PingContext(r.Context()) == nil
	h.jsonOK(w, map[string]any{
		"status":    "ok",
		"database":  dbOK,
		"messaging": msgOK,
	})
}

func (h *Handlers) apiGroups(w http.ResponseWriter, r *http.Request) {
	h.jsonOK(w, h.registry.Groups())
}

func (h *Handlers) apiOwnerCounts(w http.ResponseWriter, r *http.Request) {
	pc, err := h.engine.Aggregator().OwnerCounts(r.Context())
	if err != nil {
		log.Printf("www: owner counts: %v", err)
		h.jsonError(w, "count failed", http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, pc)
}

func (h *Handlers) apiCustomerCount(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		h.jsonError(w, "email is required", http.StatusBadRequest)
		return
	}
	cn, err := h.engine.Aggregator().CustomerCount(r.Context(), email)
	if err != nil {
		log.Printf("www: customer count: %v", err)
		h.jsonError(w, "count failed", http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, map[string]int{"customer_count": cn.CustomerCount})
}

func (h *Handlers) apiPlaceCheckout(w http.ResponseWriter, r *http.Request) {
	var req engine.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request", http.StatusBadRequest)
		return
	}
	code, err := h.engine.PlaceCheckout(req)
	if err != nil {
		h.engineError(w, err)
		return
	}
	h.jsonCreated(w, map[string]string{"order_code": code})
}

func (h *Handlers) apiUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderCode string `json:"order_code"`
		Status    string `json:"status"`
		Message   string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OrderCode == "" {
		h.jsonError(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := h.engine.UpdateOrderStatus(req.OrderCode, req.Status, req.Message); err != nil {
		h.engineError(w, err)
		return
	}
	log.Printf("www: %s set order %s to %s", h.getUsername(r), req.OrderCode, req.Status)
	h.jsonOK(w, map[string]string{"status": "ok"})
}

func (h *Handlers) apiMarkSeenByOwner(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderCode string `json:"order_code"`
	}
	// An empty body marks every pending order as seen.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.jsonError(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := h.engine.MarkSeenByOwner(req.OrderCode); err != nil {
		h.engineError(w, err)
		return
	}
	h.jsonOK(w, map[string]string{"status": "ok"})
}

func (h *Handlers) apiMarkCustomerSeen(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := h.engine.MarkCustomerSeen(req.Email); err != nil {
		h.engineError(w, err)
		return
	}
	h.jsonOK(w, map[string]string{"status": "ok"})
}

func (h *Handlers) apiSendPrintJob(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := h.engine.SendPrintJob(req.Data); err != nil {
		h.engineError(w, err)
		return
	}
	h.jsonOK(w, map[string]any{"status": "ok", "printers": h.registry.Members(groups.Printers)})
}
