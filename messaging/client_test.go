package messaging

import (
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"ordercast/config"
)

// fakeMQTT stands in for a paho client. Only the methods the messaging
// client calls are implemented.
type fakeMQTT struct {
	mqtt.Client

	mu        sync.Mutex
	connected bool
	subs      map[string]mqtt.MessageHandler
}

func newFakeMQTT(connected bool) *fakeMQTT {
	return &fakeMQTT{connected: connected, subs: make(map[string]mqtt.MessageHandler)}
}

func (f *fakeMQTT) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeMQTT) Subscribe(topic string, _ byte, cb mqtt.MessageHandler) mqtt.Token {
	f.mu.Lock()
	f.subs[topic] = cb
	f.mu.Unlock()
	return doneToken{}
}

func (f *fakeMQTT) Disconnect(uint) {}

func (f *fakeMQTT) deliver(t *testing.T, topic string, payload []byte) {
	t.Helper()
	f.mu.Lock()
	cb, ok := f.subs[topic]
	f.mu.Unlock()
	if !ok {
		t.Fatalf("no subscription on %s", topic)
	}
	cb(f, fakeMessage{topic: topic, payload: payload})
}

type doneToken struct{}

func (doneToken) Wait() bool                     { return true }
func (doneToken) WaitTimeout(time.Duration) bool { return true }
func (doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (doneToken) Error() error { return nil }

type fakeMessage struct {
	mqtt.Message
	topic   string
	payload []byte
}

func (m fakeMessage) Topic() string   { return m.topic }
func (m fakeMessage) Payload() []byte { return m.payload }

func newMQTTClient() *Client {
	return NewClient(&config.MessagingConfig{
		Backend: "mqtt",
		MQTT:    config.MQTTConfig{Broker: "localhost", Port: 1883, ClientID: "test"},
	})
}

func TestMQTTSubscribeBeforeBrokerIsUp(t *testing.T) {
	c := newMQTTClient()
	down := newFakeMQTT(false)
	c.mqttConn = down

	var got []string
	if err := c.Subscribe("ordering.orders", func(p []byte) { got = append(got, string(p)) }); err != nil {
		t.Fatalf("Subscribe while disconnected: %v", err)
	}
	if len(down.subs) != 0 {
		t.Fatal("nothing should be sent to a disconnected client")
	}

	// The broker comes up and paho fires the on-connect handler.
	down.connected = true
	c.resubscribeMQTT(down)
	down.deliver(t, "ordering.orders", []byte(`{"type":"customer.seen"}`))

	if len(got) != 1 || got[0] != `{"type":"customer.seen"}` {
		t.Errorf("handler got %v", got)
	}
}

func TestMQTTResubscribesAfterReconnect(t *testing.T) {
	c := newMQTTClient()
	first := newFakeMQTT(true)
	c.mqttConn = first

	calls := 0
	if err := c.Subscribe("ordering.orders", func([]byte) { calls++ }); err != nil {
		t.Fatal(err)
	}
	if _, ok := first.subs["ordering.orders"]; !ok {
		t.Fatal("connected client should subscribe immediately")
	}

	// A clean session loses its subscriptions; the reconnect handler
	// restores them.
	again := newFakeMQTT(true)
	c.resubscribeMQTT(again)
	again.deliver(t, "ordering.orders", []byte(`{}`))
	if calls != 1 {
		t.Errorf("calls = %d after reconnect, want 1", calls)
	}
}

func TestMQTTIsConnectedTracksClient(t *testing.T) {
	c := newMQTTClient()
	if c.IsConnected() {
		t.Error("no client yet, should not be connected")
	}
	fake := newFakeMQTT(false)
	c.mqttConn = fake
	if c.IsConnected() {
		t.Error("retrying client should not report connected")
	}
	fake.connected = true
	if !c.IsConnected() {
		t.Error("connected client should report connected")
	}
	c.Close()
	if c.IsConnected() {
		t.Error("closed client should not report connected")
	}
}
