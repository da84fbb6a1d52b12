package session

import (
	"context"
	"encoding/json"

	"ordercast/groups"
	"ordercast/protocol"
)

func newHandler(s *Session) handler {
	switch s.role {
	case Printer:
		return printerRole{s}
	case OwnerNotification:
		return ownerNotificationRole{s}
	case CustomerNotification:
		return customerNotificationRole{s}
	case DeliveryFeeOwner:
		return feeOwnerRole{s}
	default:
		return feeCustomerRole{s}
	}
}

// printerRole forwards receipt data untouched; printers expect the raw
// payload with no type wrapper.
type printerRole struct{ s *Session }

func (r printerRole) HandlePrintJob(ev *protocol.PrintJob) any {
	return json.RawMessage(ev.Data)
}
func (r printerRole) HandlePendingCount(ev *protocol.PendingCount) any {
	return r.s.ignoreEvent(ev)
}
func (r printerRole) HandleCustomerNotification(ev *protocol.CustomerNotification) any {
	return r.s.ignoreEvent(ev)
}
func (r printerRole) HandleFeeRequest(ev *protocol.FeeRequest) any {
	return r.s.ignoreEvent(ev)
}
func (r printerRole) HandleFeeResponse(ev *protocol.FeeResponse) any {
	return r.s.ignoreEvent(ev)
}
func (r printerRole) HandleFeeRejected(ev *protocol.FeeRejected) any {
	return r.s.ignoreEvent(ev)
}

func (r printerRole) HandleRequestFee(context.Context, *protocol.RequestFee) error {
	return r.s.ignoreAction(protocol.ActionRequestFee)
}
func (r printerRole) HandleSendFee(context.Context, *protocol.SendFee) error {
	return r.s.ignoreAction(protocol.ActionSendFee)
}
func (r printerRole) HandleRejectFee(context.Context, *protocol.RejectFee) error {
	return r.s.ignoreAction(protocol.ActionRejectFee)
}

// ownerNotificationRole drives the owner dashboard badge.
type ownerNotificationRole struct{ s *Session }

func (r ownerNotificationRole) HandlePrintJob(ev *protocol.PrintJob) any {
	return r.s.ignoreEvent(ev)
}
func (r ownerNotificationRole) HandlePendingCount(ev *protocol.PendingCount) any {
	return protocol.NewNotificationMessage(ev)
}
func (r ownerNotificationRole) HandleCustomerNotification(ev *protocol.CustomerNotification) any {
	return r.s.ignoreEvent(ev)
}
func (r ownerNotificationRole) HandleFeeRequest(ev *protocol.FeeRequest) any {
	return r.s.ignoreEvent(ev)
}
func (r ownerNotificationRole) HandleFeeResponse(ev *protocol.FeeResponse) any {
	return r.s.ignoreEvent(ev)
}
func (r ownerNotificationRole) HandleFeeRejected(ev *protocol.FeeRejected) any {
	return r.s.ignoreEvent(ev)
}

func (r ownerNotificationRole) HandleRequestFee(context.Context, *protocol.RequestFee) error {
	return r.s.ignoreAction(protocol.ActionRequestFee)
}
func (r ownerNotificationRole) HandleSendFee(context.Context, *protocol.SendFee) error {
	return r.s.ignoreAction(protocol.ActionSendFee)
}
func (r ownerNotificationRole) HandleRejectFee(context.Context, *protocol.RejectFee) error {
	return r.s.ignoreAction(protocol.ActionRejectFee)
}

// customerNotificationRole shares the customer group with the delivery-fee
// customer role and so sees fee events it must skip.
type customerNotificationRole struct{ s *Session }

func (r customerNotificationRole) HandlePrintJob(ev *protocol.PrintJob) any {
	return r.s.ignoreEvent(ev)
}
func (r customerNotificationRole) HandlePendingCount(ev *protocol.PendingCount) any {
	return r.s.ignoreEvent(ev)
}
func (r customerNotificationRole) HandleCustomerNotification(ev *protocol.CustomerNotification) any {
	return protocol.NewCustomerNotificationMessage(ev)
}
func (r customerNotificationRole) HandleFeeRequest(ev *protocol.FeeRequest) any {
	return r.s.ignoreEvent(ev)
}
func (r customerNotificationRole) HandleFeeResponse(ev *protocol.FeeResponse) any {
	return r.s.ignoreEvent(ev)
}
func (r customerNotificationRole) HandleFeeRejected(ev *protocol.FeeRejected) any {
	return r.s.ignoreEvent(ev)
}

func (r customerNotificationRole) HandleRequestFee(context.Context, *protocol.RequestFee) error {
	return r.s.ignoreAction(protocol.ActionRequestFee)
}
func (r customerNotificationRole) HandleSendFee(context.Context, *protocol.SendFee) error {
	return r.s.ignoreAction(protocol.ActionSendFee)
}
func (r customerNotificationRole) HandleRejectFee(context.Context, *protocol.RejectFee) error {
	return r.s.ignoreAction(protocol.ActionRejectFee)
}

// feeOwnerRole receives fee requests from every customer and answers one
// customer at a time.
type feeOwnerRole struct{ s *Session }

func (r feeOwnerRole) HandlePrintJob(ev *protocol.PrintJob) any {
	return r.s.ignoreEvent(ev)
}
func (r feeOwnerRole) HandlePendingCount(ev *protocol.PendingCount) any {
	return r.s.ignoreEvent(ev)
}
func (r feeOwnerRole) HandleCustomerNotification(ev *protocol.CustomerNotification) any {
	return r.s.ignoreEvent(ev)
}
func (r feeOwnerRole) HandleFeeRequest(ev *protocol.FeeRequest) any {
	return protocol.NewFeeRequestMessage(ev)
}
func (r feeOwnerRole) HandleFeeResponse(ev *protocol.FeeResponse) any {
	return r.s.ignoreEvent(ev)
}
func (r feeOwnerRole) HandleFeeRejected(ev *protocol.FeeRejected) any {
	return r.s.ignoreEvent(ev)
}

func (r feeOwnerRole) HandleRequestFee(context.Context, *protocol.RequestFee) error {
	return r.s.ignoreAction(protocol.ActionRequestFee)
}

func (r feeOwnerRole) HandleSendFee(ctx context.Context, p *protocol.SendFee) error {
	r.s.debugf("send_fee to %s", p.CustomerEmail)
	return r.s.publish(ctx, groups.CustomerGroup(p.CustomerEmail), &protocol.FeeResponse{
		DeliveryFee: p.DeliveryFee,
	})
}

func (r feeOwnerRole) HandleRejectFee(ctx context.Context, p *protocol.RejectFee) error {
	r.s.debugf("reject_fee to %s", p.CustomerEmail)
	return r.s.publish(ctx, groups.CustomerGroup(p.CustomerEmail), &protocol.FeeRejected{
		Reason: p.ReasonOrDefault(),
	})
}

// feeCustomerRole asks every owner for a fee and receives the answer on its
// own customer group.
type feeCustomerRole struct{ s *Session }

func (r feeCustomerRole) HandlePrintJob(ev *protocol.PrintJob) any {
	return r.s.ignoreEvent(ev)
}
func (r feeCustomerRole) HandlePendingCount(ev *protocol.PendingCount) any {
	return r.s.ignoreEvent(ev)
}
func (r feeCustomerRole) HandleCustomerNotification(ev *protocol.CustomerNotification) any {
	return r.s.ignoreEvent(ev)
}
func (r feeCustomerRole) HandleFeeRequest(ev *protocol.FeeRequest) any {
	return r.s.ignoreEvent(ev)
}
func (r feeCustomerRole) HandleFeeResponse(ev *protocol.FeeResponse) any {
	return protocol.NewFeeResponseMessage(ev)
}
func (r feeCustomerRole) HandleFeeRejected(ev *protocol.FeeRejected) any {
	return protocol.NewFeeRejectedMessage(ev)
}

func (r feeCustomerRole) HandleRequestFee(ctx context.Context, p *protocol.RequestFee) error {
	r.s.debugf("request_fee from %s", p.CustomerEmail)
	return r.s.publish(ctx, groups.Owners, &protocol.FeeRequest{
		CustomerEmail: p.CustomerEmail,
		OrderDetails:  p.OrderDetails,
	})
}
func (r feeCustomerRole) HandleSendFee(context.Context, *protocol.SendFee) error {
	return r.s.ignoreAction(protocol.ActionSendFee)
}
func (r feeCustomerRole) HandleRejectFee(context.Context, *protocol.RejectFee) error {
	return r.s.ignoreAction(protocol.ActionRejectFee)
}

var (
	_ handler = printerRole{}
	_ handler = ownerNotificationRole{}
	_ handler = customerNotificationRole{}
	_ handler = feeOwnerRole{}
	_ handler = feeCustomerRole{}
)
