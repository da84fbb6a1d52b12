package protocol

// Group event types. These name what travels through a group; each session
// role shapes them into its own outbound message.
const (
	TypeSendPrintJob             = "send_print_job"
	TypeSendPendingCount         = "send_pending_count"
	TypeSendCustomerNotification = "send_customer_notification"
	TypeDeliveryFeeRequest       = "delivery_fee_request"
	TypeDeliveryFeeResponse      = "delivery_fee_response"
	TypeDeliveryFeeRejected      = "delivery_fee_rejected"
)

// TypeSendNotification is the outbound type owner dashboards receive for a
// pending-count event.
const TypeSendNotification = "send_notification"

// Client actions, carried in the "action" field of inbound messages.
const (
	ActionRequestFee = "request_fee"
	ActionSendFee    = "send_fee"
	ActionRejectFee  = "reject_fee"
)

// DefaultRejectReason is sent when an owner rejects without a reason.
const DefaultRejectReason = "Delivery request rejected"
