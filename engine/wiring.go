package engine

import (
	"context"
	"fmt"
	"time"
)

// notifyTimeout bounds the store queries and publishes one event triggers.
const notifyTimeout = 5 * time.Second

func (e *Engine) wireEventHandlers() {
	// New order: print the receipt and bump the owner badge
	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(CheckoutPlacedEvent)
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if len(ev.Receipt) > 0 {
			e.agg.SendPrintJob(ctx, ev.Receipt)
		}
		e.agg.NotifyOwners(ctx)
	}, EventCheckoutPlaced)

	// Status change: tell the customer, and the owners since the pending
	// count may have moved
	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(OrderStatusChangedEvent)
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		e.handleStatusChanged(ctx, ev)
	}, EventOrderStatusChanged)

	e.Events.SubscribeTypes(func(evt Event) {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		e.agg.NotifyOwners(ctx)
	}, EventOrderSeenByOwner)

	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(CustomerSeenEvent)
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		e.agg.NotifyCustomer(ctx, ev.Email, "")
	}, EventCustomerSeen)

	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(PrintJobEvent)
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		e.agg.SendPrintJob(ctx, ev.Data)
	}, EventPrintJob)

	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(ConnectionEvent)
		e.logFn("engine: %s", ev.Detail)
	}, EventMessagingConnected, EventMessagingDisconnected)

	if e.debug {
		e.Events.Subscribe(func(evt Event) {
			e.logFn("engine: event %s %+v", evt.Type, evt.Payload)
		})
	}
}

func (e *Engine) handleStatusChanged(ctx context.Context, ev OrderStatusChangedEvent) {
	email := ev.Email
	if email == "" {
		var err error
		email, err = e.db.OrderEmail(ev.OrderCode)
		if err != nil {
			e.logFn("engine: status change for %s: %v", ev.OrderCode, err)
			e.agg.NotifyOwners(ctx)
			return
		}
	}
	msg := ev.Message
	if msg == "" {
		msg = StatusMessage(ev.OrderCode, ev.Status)
	}
	e.agg.NotifyCustomer(ctx, email, msg)
	e.agg.NotifyOwners(ctx)
}

// StatusMessage is the customer-facing text for a status change.
func StatusMessage(orderCode, status string) string {
	return fmt.Sprintf("Your order %s is now %s.", orderCode, status)
}
