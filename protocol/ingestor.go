package protocol

import (
	"context"
	"encoding/json"
	"fmt"
)

// ActionHandler defines callbacks for every client action. Roles that do not
// accept an action still implement its method and ignore it there.
type ActionHandler interface {
	HandleRequestFee(ctx context.Context, p *RequestFee) error
	HandleSendFee(ctx context.Context, p *SendFee) error
	HandleRejectFee(ctx context.Context, p *RejectFee) error
}

// rawHeader is the minimal decode needed to pick a handler.
type rawHeader struct {
	Action string `json:"action"`
}

// Ingestor performs two-phase decode of client messages and dispatches to an
// ActionHandler.
type Ingestor struct {
	handler ActionHandler
}

func NewIngestor(handler ActionHandler) *Ingestor {
	return &Ingestor{handler: handler}
}

// HandleRaw decodes one client message and calls the matching handler.
// Unparsable or incomplete messages return an error wrapping ErrMalformed,
// a missing or unrecognised action one wrapping ErrUnknownAction. Nothing
// is ever sent back to the client.
func (ing *Ingestor) HandleRaw(ctx context.Context, data []byte) error {
	// Phase 1: discriminant only
	var hdr rawHeader
	if err := json.Unmarshal(data, &hdr); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	// Phase 2: typed payload
	switch hdr.Action {
	case ActionRequestFee:
		return decodeAndCall(ctx, ing.handler.HandleRequestFee, data)
	case ActionSendFee:
		return decodeAndCall(ctx, ing.handler.HandleSendFee, data)
	case ActionRejectFee:
		return decodeAndCall(ctx, ing.handler.HandleRejectFee, data)
	case "":
		return fmt.Errorf("%w: no action field", ErrUnknownAction)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, hdr.Action)
	}
}

type validator interface {
	validate() error
}

// decodeAndCall unmarshals the payload, checks required fields and calls the handler method.
func decodeAndCall[T any, PT interface {
	*T
	validator
}](ctx context.Context, fn func(context.Context, PT) error, data []byte) error {
	p := PT(new(T))
	if err := json.Unmarshal(data, p); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := p.validate(); err != nil {
		return err
	}
	return fn(ctx, p)
}
