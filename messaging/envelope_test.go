package messaging

import (
	"testing"
	"time"
)

func TestDecodeEnvelope_CheckoutPlaced(t *testing.T) {
	data := []byte(`{
		"id": "abc-123",
		"type": "checkout.placed",
		"timestamp": "2026-02-17T12:00:00Z",
		"payload": {
			"order_code": "ORD-1",
			"email": "a@b.com",
			"receipt": {"lines": ["Latte x2"]}
		}
	}`)

	env, err := DecodeEnvelope(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.ID != "abc-123" {
		t.Errorf("id = %q, want %q", env.ID, "abc-123")
	}
	if !env.Timestamp.Equal(time.Date(2026, 2, 17, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("timestamp = %v", env.Timestamp)
	}
	p, ok := env.Payload.(CheckoutPlaced)
	if !ok {
		t.Fatalf("payload type = %T, want CheckoutPlaced", env.Payload)
	}
	if p.OrderCode != "ORD-1" || p.Email != "a@b.com" {
		t.Errorf("payload = %+v", p)
	}
	if string(p.Receipt) != `{"lines": ["Latte x2"]}` {
		t.Errorf("receipt = %s", p.Receipt)
	}
}

func TestDecodeEnvelope_OrderStatusChanged(t *testing.T) {
	data := []byte(`{"id":"m2","type":"order.status_changed","timestamp":"2026-02-17T12:00:00Z",
		"payload":{"order_code":"ORD-2","status":"Out for Delivery"}}`)

	env, err := DecodeEnvelope(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	p, ok := env.Payload.(OrderStatusChanged)
	if !ok {
		t.Fatalf("payload type = %T", env.Payload)
	}
	if p.Status != "Out for Delivery" || p.Email != "" {
		t.Errorf("payload = %+v", p)
	}
}

func TestDecodeEnvelope_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `nope`},
		{"unknown type", `{"type":"order.deleted","payload":{}}`},
		{"missing payload", `{"type":"customer.seen"}`},
		{"bad payload", `{"type":"customer.seen","payload":{"email":42}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeEnvelope([]byte(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

type recordingHandler struct {
	calls []string
}

func (h *recordingHandler) HandleCheckoutPlaced(_ *Envelope, p CheckoutPlaced) {
	h.calls = append(h.calls, "checkout:"+p.OrderCode)
}
func (h *recordingHandler) HandleOrderStatusChanged(_ *Envelope, p OrderStatusChanged) {
	h.calls = append(h.calls, "status:"+p.Status)
}
func (h *recordingHandler) HandleOrderSeenByOwner(_ *Envelope, p OrderSeenByOwner) {
	h.calls = append(h.calls, "owner-seen:"+p.OrderCode)
}
func (h *recordingHandler) HandleCustomerSeen(_ *Envelope, p CustomerSeen) {
	h.calls = append(h.calls, "customer-seen:"+p.Email)
}
func (h *recordingHandler) HandlePrintJob(_ *Envelope, p PrintJob) {
	h.calls = append(h.calls, "print:"+string(p.Data))
}

func TestConsumerDispatch(t *testing.T) {
	h := &recordingHandler{}
	c := NewConsumer(nil, "ordering.orders", h)

	msgs := []string{
		`{"type":"checkout.placed","payload":{"order_code":"ORD-1","email":"a@b.com"}}`,
		`{"type":"order.status_changed","payload":{"order_code":"ORD-1","status":"accepted"}}`,
		`garbage`,
		`{"type":"order.seen_by_owner","payload":{}}`,
		`{"type":"customer.seen","payload":{"email":"a@b.com"}}`,
		`{"type":"print.job","payload":{"data":{"x":1}}}`,
	}
	for _, m := range msgs {
		c.HandleMessage([]byte(m))
	}

	want := []string{"checkout:ORD-1", "status:accepted", "owner-seen:", "customer-seen:a@b.com", `print:{"x":1}`}
	if len(h.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", h.calls, want)
	}
	for i := range want {
		if h.calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, h.calls[i], want[i])
		}
	}
}
