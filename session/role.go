package session

import (
	"fmt"

	"ordercast/groups"
	"ordercast/protocol"
)

// Role is the kind of client a session serves. The set is closed; every
// role shares the same state machine and differs only in its group and its
// handlers.
type Role int

const (
	Printer Role = iota
	OwnerNotification
	CustomerNotification
	DeliveryFeeOwner
	DeliveryFeeCustomer
)

var roleNames = map[Role]string{
	Printer:              "printer",
	OwnerNotification:    "owner-notification",
	CustomerNotification: "customer-notification",
	DeliveryFeeOwner:     "delivery-fee-owner",
	DeliveryFeeCustomer:  "delivery-fee-customer",
}

func (r Role) String() string {
	if n, ok := roleNames[r]; ok {
		return n
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// RequiresIdentity reports whether the role is scoped to one customer and
// cannot connect without an email.
func (r Role) RequiresIdentity() bool {
	return r == CustomerNotification || r == DeliveryFeeCustomer
}

// Group returns the group a session of this role joins.
func (r Role) Group(identity string) string {
	switch r {
	case Printer:
		return groups.Printers
	case OwnerNotification:
		return groups.Notifications
	case DeliveryFeeOwner:
		return groups.Owners
	default:
		return groups.CustomerGroup(identity)
	}
}

// handler is what a role plugs into the session.
type handler interface {
	protocol.EventHandler
	protocol.ActionHandler
}
