package engine

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"ordercast/config"
	"ordercast/groups"
	"ordercast/messaging"
	"ordercast/notify"
	"ordercast/protocol"
	"ordercast/store"
)

type member struct {
	mu  sync.Mutex
	got []protocol.Event
}

func (m *member) Deliver(ev protocol.Event) {
	m.mu.Lock()
	m.got = append(m.got, ev)
	m.mu.Unlock()
}

func (m *member) last(t *testing.T) protocol.Event {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.got) == 0 {
		t.Fatal("member received nothing")
	}
	return m.got[len(m.got)-1]
}

func (m *member) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.got)
}

type testEnv struct {
	eng *Engine
	db  *store.DB
	reg *groups.Registry
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := store.Open(&config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "test.db")},
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	quiet := func(string, ...any) {}
	reg := groups.NewRegistry()
	eng := New(Config{
		DB:         db,
		Aggregator: notify.New(db, reg, quiet),
		LogFunc:    quiet,
	})
	eng.Start()
	t.Cleanup(eng.Stop)
	return &testEnv{eng: eng, db: db, reg: reg}
}

func (e *testEnv) join(group string) *member {
	m := &member{}
	e.reg.Join(group, m)
	return m
}

func TestPlaceCheckoutNotifiesOwnersAndPrinters(t *testing.T) {
	env := newTestEnv(t)
	owners := env.join(groups.Notifications)
	printers := env.join(groups.Printers)

	code, err := env.eng.PlaceCheckout(CheckoutRequest{
		Email:   "a@b.com",
		Items:   []CheckoutItem{{Name: "Latte", Quantity: 2}, {Name: "Croissant", Quantity: 1}},
		Receipt: json.RawMessage(`{"total":"250.00"}`),
	})
	if err != nil {
		t.Fatalf("PlaceCheckout: %v", err)
	}
	if code == "" {
		t.Fatal("expected a generated order code")
	}

	rows, err := env.db.ListCheckoutsByOrder(code)
	if err != nil || len(rows) != 2 {
		t.Fatalf("rows = %d, err = %v", len(rows), err)
	}

	pc, ok := owners.last(t).(*protocol.PendingCount)
	if !ok || pc.PendingCount != 1 || pc.UnseenCount != 1 {
		t.Errorf("owner event = %#v, want 1 pending 1 unseen", owners.last(t))
	}
	pj, ok := printers.last(t).(*protocol.PrintJob)
	if !ok || string(pj.Data) != `{"total":"250.00"}` {
		t.Errorf("printer event = %#v", printers.last(t))
	}
}

func TestPlaceCheckoutWithoutReceiptSkipsPrinters(t *testing.T) {
	env := newTestEnv(t)
	printers := env.join(groups.Printers)

	if _, err := env.eng.PlaceCheckout(CheckoutRequest{OrderCode: "ORD-7", Email: "a@b.com", Items: []CheckoutItem{{Name: "Tea"}}}); err != nil {
		t.Fatal(err)
	}
	if printers.count() != 0 {
		t.Errorf("printers received %d events", printers.count())
	}
}

func TestPlaceCheckoutValidation(t *testing.T) {
	env := newTestEnv(t)
	bad := []CheckoutRequest{
		{Items: []CheckoutItem{{Name: "Tea"}}},
		{Email: "a@b.com"},
		{Email: "a@b.com", Items: []CheckoutItem{{Name: " "}}},
		{Email: "a@b.com", Items: []CheckoutItem{{Name: "Tea", Quantity: -1}}},
	}
	for i, req := range bad {
		if _, err := env.eng.PlaceCheckout(req); !errors.Is(err, ErrInvalidOrder) {
			t.Errorf("request %d: err = %v, want ErrInvalidOrder", i, err)
		}
	}
}

func TestUpdateOrderStatusNotifiesCustomer(t *testing.T) {
	env := newTestEnv(t)
	owners := env.join(groups.Notifications)
	customer := env.join(groups.CustomerGroup("a@b.com"))
	other := env.join(groups.CustomerGroup("c@d.com"))

	code, err := env.eng.PlaceCheckout(CheckoutRequest{OrderCode: "ORD-1", Email: "a@b.com", Items: []CheckoutItem{{Name: "Latte"}}})
	if err != nil {
		t.Fatal(err)
	}
	if err := env.eng.UpdateOrderStatus(code, store.StatusAccepted, ""); err != nil {
		t.Fatalf("UpdateOrderStatus: %v", err)
	}

	cn, ok := customer.last(t).(*protocol.CustomerNotification)
	if !ok {
		t.Fatalf("customer event = %#v", customer.last(t))
	}
	if cn.CustomerCount != 1 || cn.Message != "Your order ORD-1 is now accepted." {
		t.Errorf("customer event = %+v", cn)
	}
	if other.count() != 0 {
		t.Error("other customer should not be notified")
	}
	if pc := owners.last(t).(*protocol.PendingCount); pc.PendingCount != 0 {
		t.Errorf("pending after accept = %d, want 0", pc.PendingCount)
	}

	if err := env.eng.UpdateOrderStatus(code, store.StatusPacked, "Packed and waiting"); err != nil {
		t.Fatal(err)
	}
	if cn := customer.last(t).(*protocol.CustomerNotification); cn.Message != "Packed and waiting" {
		t.Errorf("custom message = %q", cn.Message)
	}
}

func TestUpdateOrderStatusErrors(t *testing.T) {
	env := newTestEnv(t)
	if err := env.eng.UpdateOrderStatus("ORD-404", store.StatusAccepted, ""); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("missing order err = %v", err)
	}
	if err := env.eng.UpdateOrderStatus("ORD-1", "shipped", ""); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("bad status err = %v", err)
	}
}

func TestSeenFlagsClearBadges(t *testing.T) {
	env := newTestEnv(t)
	owners := env.join(groups.Notifications)
	customer := env.join(groups.CustomerGroup("a@b.com"))

	env.eng.PlaceCheckout(CheckoutRequest{OrderCode: "ORD-1", Email: "a@b.com", Items: []CheckoutItem{{Name: "Latte"}}})
	env.eng.PlaceCheckout(CheckoutRequest{OrderCode: "ORD-2", Email: "a@b.com", Items: []CheckoutItem{{Name: "Mocha"}}})

	if err := env.eng.MarkSeenByOwner("ORD-1"); err != nil {
		t.Fatal(err)
	}
	if pc := owners.last(t).(*protocol.PendingCount); pc.PendingCount != 2 || pc.UnseenCount != 1 {
		t.Errorf("after one seen = %+v", pc)
	}
	if err := env.eng.MarkSeenByOwner(""); err != nil {
		t.Fatal(err)
	}
	if pc := owners.last(t).(*protocol.PendingCount); pc.UnseenCount != 0 {
		t.Errorf("after all seen = %+v", pc)
	}

	env.eng.UpdateOrderStatus("ORD-1", store.StatusPreparing, "")
	if err := env.eng.MarkCustomerSeen("a@b.com"); err != nil {
		t.Fatal(err)
	}
	if cn := customer.last(t).(*protocol.CustomerNotification); cn.CustomerCount != 0 || cn.Message != "" {
		t.Errorf("after customer seen = %+v", cn)
	}
	if err := env.eng.MarkCustomerSeen(""); err == nil {
		t.Error("empty email should fail")
	}
}

func TestBusMessagesOnlyNotify(t *testing.T) {
	env := newTestEnv(t)
	customer := env.join(groups.CustomerGroup("a@b.com"))
	printers := env.join(groups.Printers)

	// The ordering application wrote the row itself before publishing.
	env.db.CreateCheckout(&store.Checkout{OrderCode: "ORD-9", Email: "a@b.com", ItemName: "Latte", Status: store.StatusReadyForPickup})

	h := env.eng.InboundHandler()
	envl := &messaging.Envelope{ID: "m-1", Type: messaging.TypeOrderStatusChanged, Timestamp: time.Now()}
	h.HandleOrderStatusChanged(envl, messaging.OrderStatusChanged{OrderCode: "ORD-9", Status: store.StatusReadyForPickup})

	cn, ok := customer.last(t).(*protocol.CustomerNotification)
	if !ok || cn.CustomerCount != 1 {
		t.Errorf("customer event = %#v", customer.last(t))
	}

	h.HandlePrintJob(envl, messaging.PrintJob{Data: json.RawMessage(`"receipt"`)})
	if pj := printers.last(t).(*protocol.PrintJob); string(pj.Data) != `"receipt"` {
		t.Errorf("print job = %s", pj.Data)
	}
}

func TestSendPrintJob(t *testing.T) {
	env := newTestEnv(t)
	printers := env.join(groups.Printers)
	if err := env.eng.SendPrintJob(json.RawMessage(`{"a":1}`)); err != nil {
		t.Fatal(err)
	}
	if printers.count() != 1 {
		t.Errorf("printers got %d", printers.count())
	}
	if err := env.eng.SendPrintJob(nil); err == nil {
		t.Error("empty print job should fail")
	}
}

func TestEventBusFiltering(t *testing.T) {
	eb := NewEventBus()
	var all, filtered int
	eb.Subscribe(func(Event) { all++ })
	id := eb.SubscribeTypes(func(evt Event) {
		filtered++
		if evt.Timestamp.IsZero() {
			t.Error("Emit should stamp events")
		}
	}, EventPrintJob)

	eb.Emit(Event{Type: EventPrintJob})
	eb.Emit(Event{Type: EventCustomerSeen, Timestamp: time.Now()})
	eb.Unsubscribe(id)
	eb.Emit(Event{Type: EventPrintJob})

	if all != 3 || filtered != 1 {
		t.Errorf("all = %d filtered = %d, want 3 and 1", all, filtered)
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range append([]string{store.StatusPending}, store.CustomerVisibleStatuses...) {
		if !ValidStatus(s) {
			t.Errorf("%q should be valid", s)
		}
	}
	if ValidStatus("preparing") {
		t.Error("status labels are case sensitive")
	}
}

func TestStopEndsHealthLoop(t *testing.T) {
	eng := New(Config{LogFunc: func(string, ...any) {}})
	exited := make(chan struct{})
	go func() {
		eng.connectionHealthLoop()
		close(exited)
	}()

	eng.Stop()
	eng.Stop()

	select {
	case <-exited:
	case <-time.After(2 * time.Second):
		t.Fatal("health loop still running after Stop")
	}
}
