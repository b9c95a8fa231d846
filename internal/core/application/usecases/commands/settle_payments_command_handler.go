package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/payment"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/errs"
)

// SettlementReport counts what one run of the settlement handler did.
type SettlementReport struct {
	Settled int
	Skipped int
	Failed  int
}

// Total is the number of tasks the run touched.
func (r SettlementReport) Total() int {
	return r.Settled + r.Skipped + r.Failed
}

// SettlePaymentsCommandHandler applies due settlement tasks, one transaction per task.
//
// The task row stays locked for the whole transaction, so concurrent runs never apply the
// same task twice. A task whose order no longer awaits payment completes without effect.
// A failed task is rescheduled with backoff in a separate transaction.
type SettlePaymentsCommandHandler struct {
	uowFactory PaymentUoWFactory
	clock      ports.Clock
	retryDelay time.Duration
	logger     *slog.Logger
}

// NewSettlePaymentsCommandHandler reschedules failures from retryDelay with payment.Backoff.
func NewSettlePaymentsCommandHandler(
	uowFactory PaymentUoWFactory,
	clock ports.Clock,
	retryDelay time.Duration,
	logger *slog.Logger,
) *SettlePaymentsCommandHandler {
	return &SettlePaymentsCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
		retryDelay: retryDelay,
		logger:     logger.With("component", "SettlePaymentsCommandHandler"),
	}
}

// Handle applies due tasks until none are left or BatchSize is reached. A failing task is
// counted and logged without stopping the run; only an error that prevents claiming a task
// ends it early.
//
// Example:
//
//	report, err := handler.Handle(ctx, cmd)
//	logger.Info("settlement run", "settled", report.Settled, "skipped", report.Skipped, "failed", report.Failed)
func (h *SettlePaymentsCommandHandler) Handle(ctx context.Context, command SettlePaymentsCommand) (SettlementReport, error) {
	var report SettlementReport
	if err := command.Validate(); err != nil {
		return report, err
	}

	for report.Total() < command.BatchSize() {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		result, orderID, err := h.settleNext(ctx)
		switch {
		case err != nil && orderID == nil:
			return report, err
		case err != nil:
			report.Failed++
			h.logger.Error("settlement failed", "order_id", orderID.String(), "error", err)
			if recordErr := h.recordFailure(ctx, *orderID, err); recordErr != nil {
				h.logger.Error("failed to reschedule settlement", "order_id", orderID.String(), "error", recordErr)
			}
		case result == settleNone:
			return report, nil
		case result == settleApplied:
			report.Settled++
		default:
			report.Skipped++
		}
	}

	return report, nil
}

type settleResult int

const (
	settleNone settleResult = iota
	settleApplied
	settleSkipped
)

// settleNext claims one due task and applies it. When the task was claimed but could
// not be applied, the task's order id is returned together with the error.
func (h *SettlePaymentsCommandHandler) settleNext(ctx context.Context) (settleResult, *kernel.UUID, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return settleNone, nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	now := h.clock.Now()
	taskRepo := uow.SettlementTaskRepository()
	tasks, err := taskRepo.ClaimDue(ctx, now, 1)
	if err != nil {
		return settleNone, nil, err
	}
	if len(tasks) == 0 {
		return settleNone, nil, nil
	}

	task := tasks[0]
	orderID := task.OrderID()

	result, err := h.apply(ctx, uow, task, now)
	if err != nil {
		return settleNone, &orderID, err
	}

	if err = taskRepo.Update(ctx, task); err != nil {
		return settleNone, &orderID, err
	}
	if err = uow.Commit(ctx); err != nil {
		return settleNone, &orderID, err
	}

	return result, &orderID, nil
}

func (h *SettlePaymentsCommandHandler) apply(
	ctx context.Context,
	uow PaymentUoW,
	task *payment.SettlementTask,
	now time.Time,
) (settleResult, error) {
	orderRepo := uow.OrderRepository()
	o, err := orderRepo.Get(ctx, task.OrderID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		h.logger.Warn("order of settlement task not found", "order_id", task.OrderID().String())
		return settleSkipped, task.Complete()
	}
	if err != nil {
		return settleNone, err
	}

	if payableErr := o.ValidatePayable(); payableErr != nil {
		h.logger.Info("order no longer awaits payment", "order_id", o.ID().String(), "reason", payableErr)
		return settleSkipped, task.Complete()
	}

	if err = o.SettlePayment(order.SimulatedPaymentResult(now)); err != nil {
		return settleNone, err
	}
	if err = orderRepo.Update(ctx, o); err != nil {
		return settleNone, err
	}

	return settleApplied, task.Complete()
}

func (h *SettlePaymentsCommandHandler) recordFailure(ctx context.Context, orderID kernel.UUID, cause error) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	taskRepo := uow.SettlementTaskRepository()
	task, err := taskRepo.GetByOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if err = task.Fail(cause, h.clock.Now(), h.retryDelay); err != nil {
		return err
	}
	if err = taskRepo.Update(ctx, task); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
