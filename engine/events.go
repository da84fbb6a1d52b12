package engine

import "encoding/json"

const (
	EventCheckoutPlaced     EventType = "checkout.placed"
	EventOrderStatusChanged EventType = "order.status_changed"
	EventOrderSeenByOwner   EventType = "order.seen_by_owner"
	EventCustomerSeen       EventType = "customer.seen"
	EventPrintJob           EventType = "print.job"

	EventMessagingConnected    EventType = "messaging.connected"
	EventMessagingDisconnected EventType = "messaging.disconnected"
)

// --- Event payloads ---

type CheckoutPlacedEvent struct {
	OrderCode string          `json:"order_code"`
	Email     string          `json:"email"`
	Receipt   json.RawMessage `json:"receipt,omitempty"` // printed when present
}

type OrderStatusChangedEvent struct {
	OrderCode string `json:"order_code"`
	Email     string `json:"email"`
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
}

// OrderSeenByOwnerEvent with an empty OrderCode means every pending order.
type OrderSeenByOwnerEvent struct {
	OrderCode string `json:"order_code,omitempty"`
}

type CustomerSeenEvent struct {
	Email string `json:"email"`
}

type PrintJobEvent struct {
	Data json.RawMessage `json:"data"`
}

type ConnectionEvent struct {
	Detail string
}
