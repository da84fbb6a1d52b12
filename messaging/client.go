package messaging

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	kafkago "github.com/segmentio/kafka-go"

	"ordercast/config"
)

// Client talks to the order bus over MQTT or Kafka, picked by config.
type Client struct {
	mu       sync.RWMutex
	cfg      *config.MessagingConfig
	backend  string
	mqttConn mqtt.Client
	mqttSubs map[string]mqtt.MessageHandler
	kafkaUp  bool
	kafkaR   *kafkago.Reader
	cancel   context.CancelFunc
}

func NewClient(cfg *config.MessagingConfig) *Client {
	return &Client{
		cfg:      cfg,
		backend:  cfg.Backend,
		mqttSubs: make(map[string]mqtt.MessageHandler),
	}
}

func (c *Client) Backend() string { return c.backend }

// Connect establishes the backend connection. For Kafka it only checks that
// a broker answers; the reader connects on Subscribe. An MQTT client that
// misses the initial timeout keeps retrying in the background and picks up
// its subscriptions once connected.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.backend {
	case "mqtt":
		return c.connectMQTT()
	case "kafka":
		return c.connectKafka()
	default:
		return fmt.Errorf("unknown messaging backend: %q", c.backend)
	}
}

func (c *Client) connectMQTT() error {
	broker := fmt.Sprintf("tcp://%s:%d", c.cfg.MQTT.Broker, c.cfg.MQTT.Port)
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(c.cfg.MQTT.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Printf("messaging: mqtt connection lost: %v", err)
		}).
		SetOnConnectHandler(c.resubscribeMQTT)

	client := mqtt.NewClient(opts)
	c.mqttConn = client
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("mqtt connect to %s: timeout, retrying in background", broker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	log.Printf("messaging: mqtt connected to %s", broker)
	return nil
}

// resubscribeMQTT runs on every MQTT (re)connect. Sessions are clean, so the
// broker forgets subscriptions whenever the connection drops.
func (c *Client) resubscribeMQTT(client mqtt.Client) {
	c.mu.RLock()
	subs := make(map[string]mqtt.MessageHandler, len(c.mqttSubs))
	for topic, h := range c.mqttSubs {
		subs[topic] = h
	}
	c.mu.RUnlock()

	for topic, h := range subs {
		token := client.Subscribe(topic, 1, h)
		token.Wait()
		if err := token.Error(); err != nil {
			log.Printf("messaging: mqtt subscribe %s: %v", topic, err)
			continue
		}
		log.Printf("messaging: mqtt subscribed to %s", topic)
	}
}

func (c *Client) connectKafka() error {
	if len(c.cfg.Kafka.Brokers) == 0 {
		return fmt.Errorf("no kafka brokers configured")
	}
	var connErr error
	for _, broker := range c.cfg.Kafka.Brokers {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		conn, err := kafkago.DialContext(ctx, "tcp", broker)
		cancel()
		if err == nil {
			conn.Close()
			connErr = nil
			log.Printf("messaging: kafka connected to %s", broker)
			break
		}
		connErr = err
	}
	if connErr != nil {
		return fmt.Errorf("kafka connect: %w", connErr)
	}
	c.kafkaUp = true
	return nil
}

// Subscribe calls handler for every message on topic. MQTT subscriptions
// are remembered and re-applied on each reconnect; Kafka reads run on a
// goroutine until Close.
func (c *Client) Subscribe(topic string, handler func(payload []byte)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.backend {
	case "mqtt":
		h := func(_ mqtt.Client, msg mqtt.Message) {
			handler(msg.Payload())
		}
		c.mqttSubs[topic] = h
		if c.mqttConn == nil || !c.mqttConn.IsConnected() {
			log.Printf("messaging: mqtt not connected, %s subscribes on connect", topic)
			return nil
		}
		token := c.mqttConn.Subscribe(topic, 1, h)
		token.Wait()
		return token.Error()
	case "kafka":
		if c.kafkaR != nil {
			return fmt.Errorf("kafka already subscribed")
		}
		c.kafkaR = kafkago.NewReader(kafkago.ReaderConfig{
			Brokers: c.cfg.Kafka.Brokers,
			Topic:   topic,
			GroupID: c.cfg.Kafka.GroupID,
		})
		ctx, cancel := context.WithCancel(context.Background())
		c.cancel = cancel
		go func(r *kafkago.Reader) {
			for {
				msg, err := r.ReadMessage(ctx)
				if err != nil {
					if ctx.Err() == nil {
						log.Printf("messaging: kafka read: %v", err)
					}
					return
				}
				handler(msg.Value)
			}
		}(c.kafkaR)
		return nil
	default:
		return fmt.Errorf("unknown backend: %q", c.backend)
	}
}

func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch c.backend {
	case "mqtt":
		return c.mqttConn != nil && c.mqttConn.IsConnected()
	case "kafka":
		return c.kafkaUp
	default:
		return false
	}
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.mqttConn != nil {
		c.mqttConn.Disconnect(1000)
		c.mqttConn = nil
	}
	c.kafkaUp = false
	if c.kafkaR != nil {
		c.kafkaR.Close()
		c.kafkaR = nil
	}
}
