package protocol

import (
	"encoding/json"
	"fmt"
)

// Event is a value published into a group. The set of implementations is
// closed: every type below has a matching EventHandler method.
type Event interface {
	EventType() string
}

// PrintJob carries an opaque receipt payload for point-of-sale printers.
type PrintJob struct {
	Data json.RawMessage `json:"data"`
}

// PendingCount is the owner dashboard badge state.
type PendingCount struct {
	PendingCount int `json:"pending_count"`
	UnseenCount  int `json:"unseen_count"`
}

// CustomerNotification is the customer badge state plus an optional text.
type CustomerNotification struct {
	Message       string `json:"message"`
	CustomerCount int    `json:"customer_count"`
}

// FeeRequest is a customer asking the owners to quote a delivery fee.
type FeeRequest struct {
	CustomerEmail string          `json:"customer_email"`
	OrderDetails  json.RawMessage `json:"order_details"`
}

// FeeResponse is the owner's quoted fee, passed through verbatim.
type FeeResponse struct {
	DeliveryFee json.RawMessage `json:"delivery_fee"`
}

// FeeRejected is the owner declining to deliver.
type FeeRejected struct {
	Reason string `json:"reason"`
}

func (*PrintJob) EventType() string             { return TypeSendPrintJob }
func (*PendingCount) EventType() string         { return TypeSendPendingCount }
func (*CustomerNotification) EventType() string { return TypeSendCustomerNotification }
func (*FeeRequest) EventType() string           { return TypeDeliveryFeeRequest }
func (*FeeResponse) EventType() string          { return TypeDeliveryFeeResponse }
func (*FeeRejected) EventType() string          { return TypeDeliveryFeeRejected }

// wireEvent is the encoded form used when an event crosses process
// boundaries (the Redis backplane).
type wireEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// EncodeEvent marshals an event with its type discriminant.
func EncodeEvent(ev Event) ([]byte, error) {
	p, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", ev.EventType(), err)
	}
	return json.Marshal(wireEvent{Type: ev.EventType(), Payload: p})
}

// DecodeEvent is the inverse of EncodeEvent.
func DecodeEvent(data []byte) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	var ev Event
	switch w.Type {
	case TypeSendPrintJob:
		ev = &PrintJob{}
	case TypeSendPendingCount:
		ev = &PendingCount{}
	case TypeSendCustomerNotification:
		ev = &CustomerNotification{}
	case TypeDeliveryFeeRequest:
		ev = &FeeRequest{}
	case TypeDeliveryFeeResponse:
		ev = &FeeResponse{}
	case TypeDeliveryFeeRejected:
		ev = &FeeRejected{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, w.Type)
	}
	if err := json.Unmarshal(w.Payload, ev); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", w.Type, err)
	}
	return ev, nil
}
