package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Order status values as written by the ordering application. The
// post-submission labels are stored with their display capitalisation.
const (
	StatusPending        = "pending"
	StatusAccepted       = "accepted"
	StatusRejected       = "rejected"
	StatusPreparing      = "Preparing"
	StatusPacked         = "Packed"
	StatusReadyForPickup = "Ready for Pickup"
	StatusOutForDelivery = "Out for Delivery"
	StatusCompleted      = "Completed"
)

// CustomerVisibleStatuses are the states a customer is notified about.
var CustomerVisibleStatuses = []string{
	StatusAccepted,
	StatusRejected,
	StatusPreparing,
	StatusPacked,
	StatusReadyForPickup,
	StatusOutForDelivery,
	StatusCompleted,
}

// Checkout is one line item of an order. Several rows share an order code.
type Checkout struct {
	ID               int64     `json:"id"`
	OrderCode        string    `json:"order_code"`
	Email            string    `json:"email"`
	ItemName         string    `json:"item_name"`
	Quantity         int       `json:"quantity"`
	Status           string    `json:"status"`
	IsSeenByOwner    bool      `json:"is_seen_by_owner"`
	IsSeenByCustomer bool      `json:"is_seen_by_customer"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

const checkoutSelectCols = `id, order_code, email, item_name, quantity, status, is_seen_by_owner, is_seen_by_customer, created_at, updated_at`

func scanCheckout(row interface{ Scan(...any) error }) (*Checkout, error) {
	var c Checkout
	var createdAt, updatedAt any
	err := row.Scan(&c.ID, &c.OrderCode, &c.Email, &c.ItemName, &c.Quantity, &c.Status,
		&c.IsSeenByOwner, &c.IsSeenByCustomer, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return &c, nil
}

func scanCheckouts(rows *sql.Rows) ([]*Checkout, error) {
	var out []*Checkout
	for rows.Next() {
		c, err := scanCheckout(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (db *DB) CreateCheckout(c *Checkout) error {
	if c.Status == "" {
		c.Status = StatusPending
	}
	if c.Quantity == 0 {
		c.Quantity = 1
	}
	id, err := db.insert(context.Background(), `INSERT INTO checkouts (order_code, email, item_name, quantity, status, is_seen_by_owner, is_seen_by_customer) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.OrderCode, c.Email, c.ItemName, c.Quantity, c.Status, c.IsSeenByOwner, c.IsSeenByCustomer)
	if err != nil {
		return fmt.Errorf("create checkout: %w", err)
	}
	c.ID = id
	return nil
}

func (db *DB) GetCheckout(id int64) (*Checkout, error) {
	row := db.QueryRow(db.Q(fmt.Sprintf(`SELECT %s FROM checkouts WHERE id=?`, checkoutSelectCols)), id)
	return scanCheckout(row)
}

func (db *DB) ListCheckoutsByOrder(orderCode string) ([]*Checkout, error) {
	rows, err := db.Query(db.Q(fmt.Sprintf(`SELECT %s FROM checkouts WHERE order_code=? ORDER BY id`, checkoutSelectCols)), orderCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCheckouts(rows)
}

func (db *DB) ListCheckouts(status string, limit int) ([]*Checkout, error) {
	var rows *sql.Rows
	var err error
	if status != "" {
		rows, err = db.Query(db.Q(fmt.Sprintf(`SELECT %s FROM checkouts WHERE status=? ORDER BY id DESC LIMIT ?`, checkoutSelectCols)), status, limit)
	} else {
		rows, err = db.Query(db.Q(fmt.Sprintf(`SELECT %s FROM checkouts ORDER BY id DESC LIMIT ?`, checkoutSelectCols)), limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCheckouts(rows)
}

// OrderEmail returns the customer email recorded on an order.
func (db *DB) OrderEmail(orderCode string) (string, error) {
	var email string
	err := db.QueryRow(db.Q(`SELECT email FROM checkouts WHERE order_code=? ORDER BY id LIMIT 1`), orderCode).Scan(&email)
	if err != nil {
		return "", fmt.Errorf("order %s email: %w", orderCode, err)
	}
	return email, nil
}

// UpdateOrderStatus sets the status on every row of an order and marks it
// unseen by the customer so the change shows up in their badge. Returns
// sql.ErrNoRows when the order does not exist.
func (db *DB) UpdateOrderStatus(orderCode, status string) error {
	result, err := db.Exec(db.Q(`UPDATE checkouts SET status=?, is_seen_by_customer=?, updated_at=datetime('now','localtime') WHERE order_code=?`),
		status, false, orderCode)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (db *DB) MarkOrderSeenByOwner(orderCode string) error {
	_, err := db.Exec(db.Q(`UPDATE checkouts SET is_seen_by_owner=?, updated_at=datetime('now','localtime') WHERE order_code=?`),
		true, orderCode)
	return err
}

// MarkPendingSeenByOwner clears the owner badge for every pending order.
func (db *DB) MarkPendingSeenByOwner() error {
	_, err := db.Exec(db.Q(`UPDATE checkouts SET is_seen_by_owner=?, updated_at=datetime('now','localtime') WHERE status=? AND is_seen_by_owner=?`),
		true, StatusPending, false)
	return err
}

func (db *DB) MarkSeenByCustomer(email string) error {
	_, err := db.Exec(db.Q(`UPDATE checkouts SET is_seen_by_customer=?, updated_at=datetime('now','localtime') WHERE email=? AND is_seen_by_customer=?`),
		true, email, false)
	return err
}
