package protocol

import "encoding/json"

// Outbound messages written to client transports. Every one carries a
// "type" field except print jobs, whose data is forwarded verbatim.

type NotificationMessage struct {
	Type           string `json:"type"`
	Count          int    `json:"count"`           // unseen, for the badge
	DashboardCount int    `json:"dashboard_count"` // pending, for the dashboard card
}

type CustomerNotificationMessage struct {
	Type          string `json:"type"`
	Message       string `json:"message,omitempty"`
	CustomerCount int    `json:"customer_count"`
}

type FeeRequestMessage struct {
	Type          string          `json:"type"`
	CustomerEmail string          `json:"customer_email"`
	OrderDetails  json.RawMessage `json:"order_details"`
}

type FeeResponseMessage struct {
	Type        string          `json:"type"`
	DeliveryFee json.RawMessage `json:"delivery_fee"`
}

type FeeRejectedMessage struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

func NewNotificationMessage(p *PendingCount) NotificationMessage {
	return NotificationMessage{
		Type:           TypeSendNotification,
		Count:          p.UnseenCount,
		DashboardCount: p.PendingCount,
	}
}

func NewCustomerNotificationMessage(p *CustomerNotification) CustomerNotificationMessage {
	return CustomerNotificationMessage{
		Type:          TypeSendCustomerNotification,
		Message:       p.Message,
		CustomerCount: p.CustomerCount,
	}
}

func NewFeeRequestMessage(p *FeeRequest) FeeRequestMessage {
	return FeeRequestMessage{
		Type:          TypeDeliveryFeeRequest,
		CustomerEmail: p.CustomerEmail,
		OrderDetails:  p.OrderDetails,
	}
}

func NewFeeResponseMessage(p *FeeResponse) FeeResponseMessage {
	return FeeResponseMessage{Type: TypeDeliveryFeeResponse, DeliveryFee: p.DeliveryFee}
}

func NewFeeRejectedMessage(p *FeeRejected) FeeRejectedMessage {
	return FeeRejectedMessage{Type: TypeDeliveryFeeRejected, Reason: p.Reason}
}
