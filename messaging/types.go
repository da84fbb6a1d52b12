package messaging

import (
	"encoding/json"
	"time"
)

// Message types on the orders topic.
const (
	TypeCheckoutPlaced     = "checkout.placed"
	TypeOrderStatusChanged = "order.status_changed"
	TypeOrderSeenByOwner   = "order.seen_by_owner"
	TypeCustomerSeen       = "customer.seen"
	TypePrintJob           = "print.job"
)

// Envelope wraps every message the ordering application publishes after it
// changes the checkout table.
type Envelope struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

type CheckoutPlaced struct {
	OrderCode string          `json:"order_code"`
	Email     string          `json:"email"`
	Receipt   json.RawMessage `json:"receipt,omitempty"`
}

type OrderStatusChanged struct {
	OrderCode string `json:"order_code"`
	Email     string `json:"email,omitempty"` // looked up when empty
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
}

// OrderSeenByOwner with no order code covers every pending order.
type OrderSeenByOwner struct {
	OrderCode string `json:"order_code,omitempty"`
}

type CustomerSeen struct {
	Email string `json:"email"`
}

type PrintJob struct {
	Data json.RawMessage `json:"data"`
}
