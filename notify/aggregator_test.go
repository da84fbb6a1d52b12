package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"ordercast/groups"
	"ordercast/protocol"
)

type fakeStore struct {
	pending, unseen int
	customer        map[string]int
	err             error
}

func (f *fakeStore) CountPendingOrders(context.Context) (int, error) { return f.pending, f.err }

func (f *fakeStore) CountUnseenPendingOrders(context.Context) (int, error) { return f.unseen, f.err }

func (f *fakeStore) CountUnseenCustomerOrders(_ context.Context, email string) (int, error) {
	return f.customer[email], f.err
}

type published struct {
	group string
	ev    protocol.Event
}

type recorder struct {
	mu   sync.Mutex
	msgs []published
}

func (r *recorder) Publish(_ context.Context, group string, ev protocol.Event) error {
	r.mu.Lock()
	r.msgs = append(r.msgs, published{group, ev})
	r.mu.Unlock()
	return nil
}

func quiet(string, ...any) {}

func TestOwnerCounts(t *testing.T) {
	a := New(&fakeStore{pending: 2, unseen: 1}, &recorder{}, quiet)
	pc, err := a.OwnerCounts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if pc.PendingCount != 2 || pc.UnseenCount != 1 {
		t.Errorf("counts = %+v", pc)
	}
}

func TestNotifyOwners(t *testing.T) {
	rec := &recorder{}
	a := New(&fakeStore{pending: 5, unseen: 3}, rec, quiet)

	if err := a.NotifyOwners(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(rec.msgs) != 1 {
		t.Fatalf("published %d, want 1", len(rec.msgs))
	}
	m := rec.msgs[0]
	if m.group != groups.Notifications {
		t.Errorf("group = %q", m.group)
	}
	pc, ok := m.ev.(*protocol.PendingCount)
	if !ok || pc.PendingCount != 5 || pc.UnseenCount != 3 {
		t.Errorf("event = %#v", m.ev)
	}
}

func TestNotifyCustomer(t *testing.T) {
	rec := &recorder{}
	a := New(&fakeStore{customer: map[string]int{"a@b.com": 2}}, rec, quiet)

	if err := a.NotifyCustomer(context.Background(), "a@b.com", "Order ORD-9 is Ready for Pickup"); err != nil {
		t.Fatal(err)
	}
	m := rec.msgs[0]
	if m.group != "customer_a_at_b_dot_com" {
		t.Errorf("group = %q", m.group)
	}
	cn := m.ev.(*protocol.CustomerNotification)
	if cn.CustomerCount != 2 || cn.Message != "Order ORD-9 is Ready for Pickup" {
		t.Errorf("event = %+v", cn)
	}

	if err := a.NotifyCustomer(context.Background(), "", "x"); err == nil {
		t.Error("empty email should fail")
	}
}

func TestStoreFailurePublishesNothing(t *testing.T) {
	rec := &recorder{}
	a := New(&fakeStore{err: errors.New("db locked")}, rec, quiet)

	if err := a.NotifyOwners(context.Background()); err == nil {
		t.Error("expected error")
	}
	if err := a.NotifyCustomer(context.Background(), "a@b.com", ""); err == nil {
		t.Error("expected error")
	}
	if len(rec.msgs) != 0 {
		t.Errorf("published %d on store failure, want 0", len(rec.msgs))
	}
}

func TestSendPrintJob(t *testing.T) {
	rec := &recorder{}
	a := New(&fakeStore{}, rec, quiet)

	data := json.RawMessage(`{"order_code":"ORD-1"}`)
	if err := a.SendPrintJob(context.Background(), data); err != nil {
		t.Fatal(err)
	}
	m := rec.msgs[0]
	if m.group != groups.Printers || string(m.ev.(*protocol.PrintJob).Data) != string(data) {
		t.Errorf("published %+v", m)
	}
	if err := a.SendPrintJob(context.Background(), nil); err == nil {
		t.Error("empty print job should fail")
	}
}

// End to end through a real registry: a member of the notifications group
// sees the recomputed counts.
func TestNotifyOwnersThroughRegistry(t *testing.T) {
	reg := groups.NewRegistry()
	m := &member{}
	reg.Join(groups.Notifications, m)

	a := New(&fakeStore{pending: 1, unseen: 1}, reg, quiet)
	if err := a.NotifyOwners(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(m.got) != 1 {
		t.Fatalf("member received %d events", len(m.got))
	}
}

type member struct{ got []protocol.Event }

func (m *member) Deliver(ev protocol.Event) { m.got = append(m.got, ev) }
