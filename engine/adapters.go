package engine

import "ordercast/messaging"

// busHandler bridges order-change messages from the bus to the EventBus.
// The publishing application has already written the checkout table, so
// nothing here touches the store.
type busHandler struct {
	bus *EventBus
}

func (h *busHandler) HandleCheckoutPlaced(env *messaging.Envelope, p messaging.CheckoutPlaced) {
	h.bus.Emit(Event{Type: EventCheckoutPlaced, Timestamp: env.Timestamp, Payload: CheckoutPlacedEvent{
		OrderCode: p.OrderCode,
		Email:     p.Email,
		Receipt:   p.Receipt,
	}})
}

func (h *busHandler) HandleOrderStatusChanged(env *messaging.Envelope, p messaging.OrderStatusChanged) {
	h.bus.Emit(Event{Type: EventOrderStatusChanged, Timestamp: env.Timestamp, Payload: OrderStatusChangedEvent{
		OrderCode: p.OrderCode,
		Email:     p.Email,
		Status:    p.Status,
		Message:   p.Message,
	}})
}

func (h *busHandler) HandleOrderSeenByOwner(env *messaging.Envelope, p messaging.OrderSeenByOwner) {
	h.bus.Emit(Event{Type: EventOrderSeenByOwner, Timestamp: env.Timestamp, Payload: OrderSeenByOwnerEvent{
		OrderCode: p.OrderCode,
	}})
}

func (h *busHandler) HandleCustomerSeen(env *messaging.Envelope, p messaging.CustomerSeen) {
	h.bus.Emit(Event{Type: EventCustomerSeen, Timestamp: env.Timestamp, Payload: CustomerSeenEvent{
		Email: p.Email,
	}})
}

func (h *busHandler) HandlePrintJob(env *messaging.Envelope, p messaging.PrintJob) {
	h.bus.Emit(Event{Type: EventPrintJob, Timestamp: env.Timestamp, Payload: PrintJobEvent{
		Data: p.Data,
	}})
}

var _ messaging.InboundHandler = (*busHandler)(nil)
