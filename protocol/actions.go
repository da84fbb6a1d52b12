package protocol

import (
	"encoding/json"
	"fmt"
)

// RequestFee is sent by a customer to ask the owners for a delivery fee.
type RequestFee struct {
	CustomerEmail string          `json:"customer_email"`
	OrderDetails  json.RawMessage `json:"order_details"`
}

// SendFee is sent by an owner to quote a fee to one customer.
type SendFee struct {
	CustomerEmail string          `json:"customer_email"`
	DeliveryFee   json.RawMessage `json:"delivery_fee"`
}

// RejectFee is sent by an owner to decline one customer's request.
type RejectFee struct {
	CustomerEmail string  `json:"customer_email"`
	Reason        *string `json:"reason"`
}

// ReasonOrDefault returns the supplied reason, or DefaultRejectReason when
// the field was omitted or null.
func (p *RejectFee) ReasonOrDefault() string {
	if p.Reason == nil {
		return DefaultRejectReason
	}
	return *p.Reason
}

func (p *RequestFee) validate() error {
	if p.CustomerEmail == "" {
		return missing("customer_email")
	}
	if absent(p.OrderDetails) {
		return missing("order_details")
	}
	return nil
}

func (p *SendFee) validate() error {
	if p.CustomerEmail == "" {
		return missing("customer_email")
	}
	if absent(p.DeliveryFee) {
		return missing("delivery_fee")
	}
	return nil
}

func (p *RejectFee) validate() error {
	if p.CustomerEmail == "" {
		return missing("customer_email")
	}
	return nil
}

func absent(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func missing(field string) error {
	return fmt.Errorf("%w: missing %s", ErrMalformed, field)
}
