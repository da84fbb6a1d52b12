// Package notify computes badge counts from the checkout table and pushes
// them, along with print jobs, into the matching groups.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"ordercast/groups"
	"ordercast/protocol"
)

type LogFunc func(format string, args ...any)

// CountStore is the read side of the checkout table the aggregator needs.
type CountStore interface {
	CountPendingOrders(ctx context.Context) (int, error)
	CountUnseenPendingOrders(ctx context.Context) (int, error)
	CountUnseenCustomerOrders(ctx context.Context, email string) (int, error)
}

type Aggregator struct {
	store CountStore
	pub   groups.Publisher
	logFn LogFunc
}

func New(store CountStore, pub groups.Publisher, logFn LogFunc) *Aggregator {
	if logFn == nil {
		logFn = log.Printf
	}
	return &Aggregator{store: store, pub: pub, logFn: logFn}
}

// OwnerCounts returns the pending and unseen-pending order counts.
func (a *Aggregator) OwnerCounts(ctx context.Context) (*protocol.PendingCount, error) {
	pending, err := a.store.CountPendingOrders(ctx)
	if err != nil {
		return nil, err
	}
	unseen, err := a.store.CountUnseenPendingOrders(ctx)
	if err != nil {
		return nil, err
	}
	return &protocol.PendingCount{PendingCount: pending, UnseenCount: unseen}, nil
}

// CustomerCount returns the customer's unseen status-update count with no
// message attached.
func (a *Aggregator) CustomerCount(ctx context.Context, email string) (*protocol.CustomerNotification, error) {
	n, err := a.store.CountUnseenCustomerOrders(ctx, email)
	if err != nil {
		return nil, err
	}
	return &protocol.CustomerNotification{CustomerCount: n}, nil
}

// NotifyOwners recomputes the owner counts and publishes them to every
// owner dashboard.
func (a *Aggregator) NotifyOwners(ctx context.Context) error {
	pc, err := a.OwnerCounts(ctx)
	if err != nil {
		a.logFn("notify: owner counts: %v", err)
		return fmt.Errorf("owner counts: %w", err)
	}
	if err := a.pub.Publish(ctx, groups.Notifications, pc); err != nil {
		a.logFn("notify: publish owner counts: %v", err)
		return err
	}
	return nil
}

// NotifyCustomer recomputes one customer's count and publishes it with an
// optional message to that customer's group.
func (a *Aggregator) NotifyCustomer(ctx context.Context, email, message string) error {
	if email == "" {
		return fmt.Errorf("notify customer: empty email")
	}
	cn, err := a.CustomerCount(ctx, email)
	if err != nil {
		a.logFn("notify: customer count for %s: %v", email, err)
		return fmt.Errorf("customer count: %w", err)
	}
	cn.Message = message
	if err := a.pub.Publish(ctx, groups.CustomerGroup(email), cn); err != nil {
		a.logFn("notify: publish customer count for %s: %v", email, err)
		return err
	}
	return nil
}

// SendPrintJob publishes receipt data to every connected printer.
func (a *Aggregator) SendPrintJob(ctx context.Context, data json.RawMessage) error {
	if len(data) == 0 {
		return fmt.Errorf("print job: empty data")
	}
	if err := a.pub.Publish(ctx, groups.Printers, &protocol.PrintJob{Data: data}); err != nil {
		a.logFn("notify: publish print job: %v", err)
		return err
	}
	return nil
}
