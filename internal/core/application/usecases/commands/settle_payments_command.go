package commands

import (
	"errors"

	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

var ErrSettlePaymentsCommandIsNotConstructed = errors.New(
	"SettlePaymentsCommand must be created via NewSettlePaymentsCommand constructor")

// SettlePaymentsCommand asks for at most BatchSize due settlement tasks to be applied.
type SettlePaymentsCommand struct {
	batchSize int

	guard guard.ConstructorGuard
}

// NewSettlePaymentsCommand requires a positive batch size.
//
// Example:
//
//	cmd, _ := NewSettlePaymentsCommand(50)
//	report, err := settleHandler.Handle(ctx, cmd)
func NewSettlePaymentsCommand(batchSize int) (SettlePaymentsCommand, error) {
	if batchSize <= 0 {
		return SettlePaymentsCommand{}, errs.NewValueIsOutOfRangeError("batch size", batchSize, 1, "unbounded")
	}
	return SettlePaymentsCommand{batchSize: batchSize, guard: guard.NewConstructorGuard()}, nil
}

// Validate returns ErrSettlePaymentsCommandIsNotConstructed for a zero value.
func (c SettlePaymentsCommand) Validate() error {
	return c.guard.Validate(ErrSettlePaymentsCommandIsNotConstructed)
}

// BatchSize bounds the tasks handled in one run.
func (c SettlePaymentsCommand) BatchSize() int {
	return c.batchSize
}
