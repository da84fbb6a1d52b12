package store

import (
	"context"
	"fmt"
)

// CountPendingOrders returns the number of distinct pending orders.
func (db *DB) CountPendingOrders(ctx context.Context) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, db.Q(`SELECT COUNT(DISTINCT order_code) FROM checkouts WHERE status=?`),
		StatusPending).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count pending orders: %w", err)
	}
	return n, nil
}

// CountUnseenPendingOrders returns the number of distinct pending orders the
// owner has not looked at yet.
func (db *DB) CountUnseenPendingOrders(ctx context.Context) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, db.Q(`SELECT COUNT(DISTINCT order_code) FROM checkouts WHERE status=? AND is_seen_by_owner=?`),
		StatusPending, false).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count unseen pending orders: %w", err)
	}
	return n, nil
}

// CountUnseenCustomerOrders returns the number of distinct orders for email
// that moved into a customer-visible status and were not yet seen.
func (db *DB) CountUnseenCustomerOrders(ctx context.Context, email string) (int, error) {
	args := make([]any, 0, len(CustomerVisibleStatuses)+2)
	args = append(args, email)
	for _, s := range CustomerVisibleStatuses {
		args = append(args, s)
	}
	args = append(args, false)

	q := fmt.Sprintf(`SELECT COUNT(DISTINCT order_code) FROM checkouts WHERE email=? AND status IN (%s) AND is_seen_by_customer=?`,
		placeholders(len(CustomerVisibleStatuses)))
	var n int
	if err := db.QueryRowContext(ctx, db.Q(q), args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count customer orders: %w", err)
	}
	return n, nil
}
