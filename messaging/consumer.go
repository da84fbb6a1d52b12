package messaging

import (
	"log"
)

// InboundHandler is called for each decoded order-change message.
type InboundHandler interface {
	HandleCheckoutPlaced(env *Envelope, p CheckoutPlaced)
	HandleOrderStatusChanged(env *Envelope, p OrderStatusChanged)
	HandleOrderSeenByOwner(env *Envelope, p OrderSeenByOwner)
	HandleCustomerSeen(env *Envelope, p CustomerSeen)
	HandlePrintJob(env *Envelope, p PrintJob)
}

// Consumer subscribes to the orders topic and routes messages to the
// handler. Undecodable messages are logged and dropped.
type Consumer struct {
	client  *Client
	topic   string
	handler InboundHandler
}

func NewConsumer(client *Client, topic string, handler InboundHandler) *Consumer {
	return &Consumer{
		client:  client,
		topic:   topic,
		handler: handler,
	}
}

func (c *Consumer) Start() error {
	return c.client.Subscribe(c.topic, c.HandleMessage)
}

// HandleMessage decodes one payload and dispatches it.
func (c *Consumer) HandleMessage(payload []byte) {
	env, err := DecodeEnvelope(payload)
	if err != nil {
		log.Printf("consumer: decode error: %v", err)
		return
	}

	switch p := env.Payload.(type) {
	case CheckoutPlaced:
		c.handler.HandleCheckoutPlaced(env, p)
	case OrderStatusChanged:
		c.handler.HandleOrderStatusChanged(env, p)
	case OrderSeenByOwner:
		c.handler.HandleOrderSeenByOwner(env, p)
	case CustomerSeen:
		c.handler.HandleCustomerSeen(env, p)
	case PrintJob:
		c.handler.HandlePrintJob(env, p)
	default:
		log.Printf("consumer: unhandled payload type: %T", p)
	}
}
