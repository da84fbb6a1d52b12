package protocol

import "fmt"

// EventHandler shapes group events into outbound messages for one session
// role. Implementations must provide every method; an arm that has nothing
// to send for its role returns nil, so adding an event type forces every
// role to decide what to do with it.
type EventHandler interface {
	HandlePrintJob(ev *PrintJob) any
	HandlePendingCount(ev *PendingCount) any
	HandleCustomerNotification(ev *CustomerNotification) any
	HandleFeeRequest(ev *FeeRequest) any
	HandleFeeResponse(ev *FeeResponse) any
	HandleFeeRejected(ev *FeeRejected) any
}

// Shape routes ev to the matching EventHandler arm. A nil result with a nil
// error means the role ignores the event.
func Shape(h EventHandler, ev Event) (any, error) {
	switch e := ev.(type) {
	case *PrintJob:
		return h.HandlePrintJob(e), nil
	case *PendingCount:
		return h.HandlePendingCount(e), nil
	case *CustomerNotification:
		return h.HandleCustomerNotification(e), nil
	case *FeeRequest:
		return h.HandleFeeRequest(e), nil
	case *FeeResponse:
		return h.HandleFeeResponse(e), nil
	case *FeeRejected:
		return h.HandleFeeRejected(e), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownEvent, ev)
	}
}
