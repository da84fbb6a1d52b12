package engine

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ordercast/messaging"
	"ordercast/notify"
	"ordercast/store"
)

type LogFunc func(format string, args ...any)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrInvalidStatus = errors.New("invalid order status")
	ErrInvalidOrder  = errors.New("invalid checkout")
)

type Config struct {
	DB         *store.DB
	Aggregator *notify.Aggregator
	MsgClient  *messaging.Client // optional
	LogFunc    LogFunc
	Debug      bool
}

// Engine owns the order-change flow: collaborator calls and bus messages
// both become events, and the wired handlers recompute counts and publish
// them into groups.
type Engine struct {
	db           *store.DB
	agg          *notify.Aggregator
	msgClient    *messaging.Client
	Events       *EventBus
	logFn        LogFunc
	debug        bool
	stopChan     chan struct{}
	stopOnce     sync.Once
	msgConnected bool
}

func New(c Config) *Engine {
	logFn := c.LogFunc
	if logFn == nil {
		logFn = log.Printf
	}
	return &Engine{
		db:        c.DB,
		agg:       c.Aggregator,
		msgClient: c.MsgClient,
		Events:    NewEventBus(),
		logFn:     logFn,
		debug:     c.Debug,
		stopChan:  make(chan struct{}),
	}
}

func (e *Engine) Start() {
	e.wireEventHandlers()
	if e.msgClient != nil {
		e.checkConnectionStatus()
		go e.connectionHealthLoop()
	}
	e.logFn("engine: started")
}

// Stop ends the background loops. It is safe to call more than once.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		close(e.stopChan)
		e.logFn("engine: stopped")
	})
}

func (e *Engine) DB() *store.DB                  { return e.db }
func (e *Engine) Aggregator() *notify.Aggregator { return e.agg }
func (e *Engine) MsgClient() *messaging.Client   { return e.msgClient }

// InboundHandler returns the bridge the messaging consumer dispatches to.
func (e *Engine) InboundHandler() messaging.InboundHandler {
	return &busHandler{bus: e.Events}
}

// CheckoutItem is one line of a checkout request.
type CheckoutItem struct {
	Name     string `json:"item_name"`
	Quantity int    `json:"quantity"`
}

// CheckoutRequest places a new order. OrderCode is generated when empty.
type CheckoutRequest struct {
	OrderCode string          `json:"order_code"`
	Email     string          `json:"email"`
	Items     []CheckoutItem  `json:"items"`
	Receipt   json.RawMessage `json:"receipt,omitempty"`
}

// PlaceCheckout writes one pending row per item and emits
// EventCheckoutPlaced. It returns the order code.
func (e *Engine) PlaceCheckout(req CheckoutRequest) (string, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return "", fmt.Errorf("%w: email is required", ErrInvalidOrder)
	}
	if len(req.Items) == 0 {
		return "", fmt.Errorf("%w: no items", ErrInvalidOrder)
	}
	for i, it := range req.Items {
		if strings.TrimSpace(it.Name) == "" {
			return "", fmt.Errorf("%w: item %d has no name", ErrInvalidOrder, i)
		}
		if it.Quantity < 0 {
			return "", fmt.Errorf("%w: item %d has negative quantity", ErrInvalidOrder, i)
		}
	}

	code := req.OrderCode
	if code == "" {
		code = newOrderCode()
	}
	for _, it := range req.Items {
		c := &store.Checkout{OrderCode: code, Email: email, ItemName: it.Name, Quantity: it.Quantity}
		if err := e.db.CreateCheckout(c); err != nil {
			return "", fmt.Errorf("place checkout %s: %w", code, err)
		}
	}

	e.logFn("engine: checkout %s placed by %s (%d items)", code, email, len(req.Items))
	e.Events.Emit(Event{Type: EventCheckoutPlaced, Payload: CheckoutPlacedEvent{
		OrderCode: code,
		Email:     email,
		Receipt:   req.Receipt,
	}})
	return code, nil
}

func newOrderCode() string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:10])
}

// ValidStatus reports whether status is one the checkout table accepts.
func ValidStatus(status string) bool {
	if status == store.StatusPending {
		return true
	}
	for _, s := range store.CustomerVisibleStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// UpdateOrderStatus moves every row of an order to status and notifies the
// customer and the owners.
func (e *Engine) UpdateOrderStatus(orderCode, status, message string) error {
	if !ValidStatus(status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if err := e.db.UpdateOrderStatus(orderCode, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrOrderNotFound, orderCode)
		}
		return err
	}
	email, err := e.db.OrderEmail(orderCode)
	if err != nil {
		return err
	}

	e.logFn("engine: order %s -> %s", orderCode, status)
	e.Events.Emit(Event{Type: EventOrderStatusChanged, Payload: OrderStatusChangedEvent{
		OrderCode: orderCode,
		Email:     email,
		Status:    status,
		Message:   message,
	}})
	return nil
}

// MarkSeenByOwner clears the owner's unseen flag for one order, or for
// every pending order when orderCode is empty.
func (e *Engine) MarkSeenByOwner(orderCode string) error {
	var err error
	if orderCode == "" {
		err = e.db.MarkPendingSeenByOwner()
	} else {
		err = e.db.MarkOrderSeenByOwner(orderCode)
	}
	if err != nil {
		return fmt.Errorf("mark seen by owner: %w", err)
	}
	e.Events.Emit(Event{Type: EventOrderSeenByOwner, Payload: OrderSeenByOwnerEvent{OrderCode: orderCode}})
	return nil
}

// MarkCustomerSeen clears the customer's badge.
func (e *Engine) MarkCustomerSeen(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidOrder)
	}
	if err := e.db.MarkSeenByCustomer(email); err != nil {
		return fmt.Errorf("mark seen by customer: %w", err)
	}
	e.Events.Emit(Event{Type: EventCustomerSeen, Payload: CustomerSeenEvent{Email: email}})
	return nil
}

// SendPrintJob queues receipt data for every connected printer.
func (e *Engine) SendPrintJob(data json.RawMessage) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty print job", ErrInvalidOrder)
	}
	e.Events.Emit(Event{Type: EventPrintJob, Payload: PrintJobEvent{Data: data}})
	return nil
}

func (e *Engine) checkConnectionStatus() {
	if e.msgClient.IsConnected() {
		if !e.msgConnected {
			e.msgConnected = true
			e.Events.Emit(Event{Type: EventMessagingConnected, Payload: ConnectionEvent{Detail: "messaging connected"}})
		}
	} else if e.msgConnected {
		e.msgConnected = false
		e.Events.Emit(Event{Type: EventMessagingDisconnected, Payload: ConnectionEvent{Detail: "messaging disconnected"}})
	}
}

func (e *Engine) connectionHealthLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-e.stopChan:
			return
		case <-ticker.C:
			e.checkConnectionStatus()
		}
	}
}
