package commands

import (
	"context"
	"errors"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/payment"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/errs"
)

const (
	DefaultSettlementDelay = 2 * time.Second

	paymentAcceptedMessage = "Payment is being processed. Order status will update shortly."
)

// PaymentAck acknowledges an accepted payment request. Settlement happens after DueAt.
type PaymentAck struct {
	OrderID kernel.UUID
	TaskID  kernel.UUID
	DueAt   time.Time
	Message string
}

// RequestPaymentCommandHandler schedules the settlement of an order awaiting payment.
// A request repeated while settlement is pending returns the original acknowledgment.
type RequestPaymentCommandHandler struct {
	uowFactory PaymentUoWFactory
	clock      ports.Clock
	delay      time.Duration
}

// NewRequestPaymentCommandHandler schedules settlement delay after the request.
// A negative delay falls back to DefaultSettlementDelay.
func NewRequestPaymentCommandHandler(
	uowFactory PaymentUoWFactory,
	clock ports.Clock,
	delay time.Duration,
) *RequestPaymentCommandHandler {
	if delay < 0 {
		delay = DefaultSettlementDelay
	}
	return &RequestPaymentCommandHandler{uowFactory: uowFactory, clock: clock, delay: delay}
}

// Handle schedules settlement and returns an acknowledgment. Repeating the request while
// a task is pending returns that task's acknowledgment unchanged. If an earlier
// settlement skipped the order and it awaits payment again, the finished task is
// rescheduled.
//
// Example:
//
//	ack, err := handler.Handle(ctx, cmd)
//	if errs.IsConflict(err) {
//		// order is not awaiting payment
//	}
//	_ = ack.DueAt // clock.Now() + delay
func (h *RequestPaymentCommandHandler) Handle(ctx context.Context, command RequestPaymentCommand) (PaymentAck, error) {
	if err := command.Validate(); err != nil {
		return PaymentAck{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return PaymentAck{}, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().Get(ctx, command.OrderID())
	if err != nil {
		return PaymentAck{}, err
	}
	if !o.CustomerID().IsEqual(command.Actor().ID()) {
		return PaymentAck{}, errs.NewAccessDeniedErrorWithCause(
			"request payment", errors.New("order belongs to another customer"))
	}

	taskRepo := uow.SettlementTaskRepository()
	existing, err := taskRepo.GetByOrder(ctx, o.ID())
	switch {
	case err == nil && existing.IsPending():
		return newPaymentAck(existing), nil
	case err == nil:
		return h.reopen(ctx, uow, taskRepo, o, existing)
	case !errors.Is(err, errs.ErrObjectNotFound):
		return PaymentAck{}, err
	}

	if err = o.ValidatePayable(); err != nil {
		return PaymentAck{}, err
	}

	task, err := payment.NewSettlementTask(kernel.NewUUID(), o.ID(), h.clock.Now(), h.delay)
	if err != nil {
		return PaymentAck{}, err
	}
	if err = taskRepo.Add(ctx, task); err != nil {
		return PaymentAck{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return PaymentAck{}, err
	}

	return newPaymentAck(task), nil
}

// reopen handles an order whose settlement task already finished. A done task means
// the earlier settlement found the order no longer awaiting payment; once the order is
// payable again the same task is rescheduled, since an order has at most one task.
func (h *RequestPaymentCommandHandler) reopen(
	ctx context.Context,
	uow PaymentUoW,
	taskRepo ports.SettlementTaskRepository,
	o *order.Order,
	task *payment.SettlementTask,
) (PaymentAck, error) {
	if err := o.ValidatePayable(); err != nil {
		return PaymentAck{}, err
	}
	if task.State() != payment.TaskDone {
		return PaymentAck{}, errs.NewStateConflictErrorWithCause(
			"payment", errors.New("settlement of this order failed and needs manual attention"))
	}

	if err := task.Reschedule(h.clock.Now(), h.delay); err != nil {
		return PaymentAck{}, err
	}
	if err := taskRepo.Update(ctx, task); err != nil {
		return PaymentAck{}, err
	}
	if err := uow.Commit(ctx); err != nil {
		return PaymentAck{}, err
	}

	return newPaymentAck(task), nil
}

func newPaymentAck(task *payment.SettlementTask) PaymentAck {
	return PaymentAck{
		OrderID: task.OrderID(),
		TaskID:  task.ID(),
		DueAt:   task.DueAt(),
		Message: paymentAcceptedMessage,
	}
}
