package messaging

import (
	"encoding/json"
	"fmt"
	"time"
)

// rawEnvelope is the first decode stage; the payload is decoded once the
// type is known.
type rawEnvelope struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// DecodeEnvelope unmarshals a bus message into an Envelope with a typed
// payload.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var raw rawEnvelope
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	env := &Envelope{ID: raw.ID, Type: raw.Type, Timestamp: raw.Timestamp}

	var err error
	switch raw.Type {
	case TypeCheckoutPlaced:
		env.Payload, err = decodePayload[CheckoutPlaced](raw)
	case TypeOrderStatusChanged:
		env.Payload, err = decodePayload[OrderStatusChanged](raw)
	case TypeOrderSeenByOwner:
		env.Payload, err = decodePayload[OrderSeenByOwner](raw)
	case TypeCustomerSeen:
		env.Payload, err = decodePayload[CustomerSeen](raw)
	case TypePrintJob:
		env.Payload, err = decodePayload[PrintJob](raw)
	default:
		return nil, fmt.Errorf("unknown message type: %q", raw.Type)
	}
	if err != nil {
		return nil, err
	}
	return env, nil
}

func decodePayload[T any](raw rawEnvelope) (T, error) {
	var p T
	if len(raw.Payload) == 0 {
		return p, fmt.Errorf("decode %s payload: empty", raw.Type)
	}
	if err := json.Unmarshal(raw.Payload, &p); err != nil {
		return p, fmt.Errorf("decode %s payload: %w", raw.Type, err)
	}
	return p, nil
}
