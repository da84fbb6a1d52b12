package groups

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"ordercast/protocol"
)

func TestBackplaneChannelNames(t *testing.T) {
	b := NewRedisBackplane(nil, NewRegistry(), "ordercast:group:")

	ch := b.channel(CustomerGroup("a@b.com"))
	if ch != "ordercast:group:customer_a_at_b_dot_com" {
		t.Errorf("channel = %q", ch)
	}
	group, ok := b.groupOf(ch)
	if !ok || group != "customer_a_at_b_dot_com" {
		t.Errorf("groupOf(%q) = %q, %v", ch, group, ok)
	}
	if _, ok := b.groupOf("other:owners"); ok {
		t.Error("foreign channel should not map to a group")
	}
}

func TestBackplaneStopWithoutStart(t *testing.T) {
	b := NewRedisBackplane(nil, NewRegistry(), "p:")
	b.Stop()
}

func TestBackplanePublishFallsBackToLocal(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	reg := NewRegistry()
	m := &fakeMember{}
	reg.Join(Owners, m)
	other := &fakeMember{}
	reg.Join(Printers, other)

	b := NewRedisBackplane(client, reg, "ordercast:group:")
	err := b.Publish(context.Background(), Owners, feeResponse(7))
	if err == nil {
		t.Fatal("expected an error with redis unreachable")
	}
	if !strings.Contains(err.Error(), "delivered locally") {
		t.Errorf("err = %v", err)
	}
	if got := m.received(); len(got) != 1 || string(got[0].(*protocol.FeeResponse).DeliveryFee) != "7" {
		t.Errorf("local member got %v, want the event once", got)
	}
	if len(other.received()) != 0 {
		t.Error("fallback delivered outside the target group")
	}
}

// testRedis returns a client for ORDERCAST_TEST_REDIS (default
// localhost:6379) or skips when no server answers.
func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("ORDERCAST_TEST_REDIS")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DialTimeout: 300 * time.Millisecond, MaxRetries: -1})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("redis not available at %s: %v", addr, err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func waitEvents(t *testing.T, m *fakeMember, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for len(m.received()) < n {
		if time.Now().After(deadline) {
			t.Fatalf("member got %d events, want %d", len(m.received()), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBackplaneRoundTrip(t *testing.T) {
	client := testRedis(t)
	prefix := "ordercast-test:" + time.Now().Format("150405.000000") + ":"

	regA, regB := NewRegistry(), NewRegistry()
	a := NewRedisBackplane(client, regA, prefix)
	b := NewRedisBackplane(client, regB, prefix)
	for _, bp := range []*RedisBackplane{a, b} {
		if err := bp.Start(context.Background()); err != nil {
			t.Fatalf("Start: %v", err)
		}
		t.Cleanup(bp.Stop)
	}

	onA, onB := &fakeMember{}, &fakeMember{}
	regA.Join(CustomerGroup("a@b.com"), onA)
	regB.Join(CustomerGroup("a@b.com"), onB)
	bystander := &fakeMember{}
	regB.Join(Owners, bystander)

	ev := &protocol.FeeRejected{Reason: "Too far"}
	if err := a.Publish(context.Background(), CustomerGroup("a@b.com"), ev); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	waitEvents(t, onA, 1)
	waitEvents(t, onB, 1)
	time.Sleep(100 * time.Millisecond)

	for name, m := range map[string]*fakeMember{"publisher": onA, "peer": onB} {
		got := m.received()
		if len(got) != 1 {
			t.Errorf("%s instance got %d events, want exactly 1", name, len(got))
			continue
		}
		if fr, ok := got[0].(*protocol.FeeRejected); !ok || fr.Reason != "Too far" {
			t.Errorf("%s instance got %#v", name, got[0])
		}
	}
	if len(bystander.received()) != 0 {
		t.Error("event leaked into another group")
	}
}
