package protocol

import "errors"

var (
	// ErrMalformed marks an inbound message that could not be parsed or is
	// missing a field its action requires.
	ErrMalformed = errors.New("malformed message")
	// ErrUnknownAction marks an inbound message with a missing or
	// unrecognised action.
	ErrUnknownAction = errors.New("unknown action")
	// ErrUnknownEvent marks a group event type no role knows how to shape.
	ErrUnknownEvent = errors.New("unknown event type")
)
