// Package payment models the deferred settlement of a simulated payment.
//
// A payment request does not settle the order inline. It persists a SettlementTask that a
// scheduled job picks up once due. Tasks are applied at least once; applying one to an
// order that no longer awaits payment is a no-op, so redelivery is harmless.
package payment

import (
	"errors"
	"fmt"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

const (
	// MaxAttempts bounds retries of a failing task before it is parked as Failed.
	MaxAttempts = 10
	// maxBackoff caps the delay between retries.
	maxBackoff = time.Minute
)

var ErrSettlementTaskIsNotConstructed = errors.New(
	"SettlementTask must be created via NewSettlementTask or RestoreSettlementTask constructor")

// TaskState is the lifecycle state of a settlement task.
type TaskState int

const (
	TaskUnknown TaskState = iota
	TaskPending
	TaskDone
	TaskFailed
)

// String returns the stored name of s, or "UNKNOWN" for the zero value.
func (s TaskState) String() string {
	switch s {
	case TaskPending:
		return "PENDING"
	case TaskDone:
		return "DONE"
	case TaskFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// ParseTaskState maps a stored name such as "PENDING" back to a TaskState.
func ParseTaskState(s string) (TaskState, error) {
	for _, st := range []TaskState{TaskPending, TaskDone, TaskFailed} {
		if st.String() == s {
			return st, nil
		}
	}
	return TaskUnknown, errs.NewValueIsInvalidErrorWithCause("task state is invalid", fmt.Errorf("%q is not a valid task state", s))
}

// Validate rejects TaskUnknown and values outside the declared states.
func (s TaskState) Validate() error {
	if s < TaskPending || s > TaskFailed {
		return errs.NewValueIsInvalidErrorWithCause("task state is invalid", fmt.Errorf("%d is not a valid task state", s))
	}
	return nil
}

// SettlementTask is the persisted promise to settle the payment of one order.
type SettlementTask struct {
	id        kernel.UUID
	orderID   kernel.UUID
	dueAt     time.Time
	state     TaskState
	attempts  int
	lastError string
	createdAt time.Time
	guard     guard.ConstructorGuard
}

// NewSettlementTask schedules settlement of orderID at createdAt + delay.
func NewSettlementTask(id, orderID kernel.UUID, createdAt time.Time, delay time.Duration) (*SettlementTask, error) {
	if delay < 0 {
		return nil, errs.NewValueIsOutOfRangeError("settlement delay", delay, 0, "unbounded")
	}
	return RestoreSettlementTask(id, orderID, createdAt.Add(delay), TaskPending, 0, "", createdAt)
}

// RestoreSettlementTask rebuilds a task from storage. It validates identity, due time, state
// and attempts but applies no lifecycle rule, so a Done or Failed task restores as is.
func RestoreSettlementTask(
	id, orderID kernel.UUID,
	dueAt time.Time,
	state TaskState,
	attempts int,
	lastError string,
	createdAt time.Time,
) (*SettlementTask, error) {
	var errDue, errAttempts error
	if dueAt.IsZero() {
		errDue = errs.NewValueIsRequiredError("due at")
	}
	if attempts < 0 {
		errAttempts = errs.NewValueIsOutOfRangeError("attempts", attempts, 0, MaxAttempts)
	}
	errOrder := orderID.Validate()
	if errOrder != nil {
		errOrder = errs.NewValueIsRequiredErrorWithCause("order id", errOrder)
	}

	if err := errors.Join(id.Validate(), errOrder, errDue, state.Validate(), errAttempts); err != nil {
		return nil, err
	}

	return &SettlementTask{
		id:        id,
		orderID:   orderID,
		dueAt:     dueAt,
		state:     state,
		attempts:  attempts,
		lastError: lastError,
		createdAt: createdAt,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate reports ErrSettlementTaskIsNotConstructed for a nil or zero-value task.
func (t *SettlementTask) Validate() error {
	if t == nil {
		return ErrSettlementTaskIsNotConstructed
	}
	return t.guard.Validate(ErrSettlementTaskIsNotConstructed)
}

// ID returns the task identity.
func (t *SettlementTask) ID() kernel.UUID {
	return t.id
}

// OrderID returns the order this task settles. There is at most one task per order.
//
// Example:
//
//	task, err := tx.SettlementTaskRepository().GetByOrder(ctx, order.ID())
//	_ = task.OrderID() == order.ID() // true
func (t *SettlementTask) OrderID() kernel.UUID {
	return t.orderID
}

// DueAt returns the earliest time the settlement job may apply the task.
func (t *SettlementTask) DueAt() time.Time {
	return t.dueAt
}

// State returns the lifecycle state.
func (t *SettlementTask) State() TaskState {
	return t.state
}

// Attempts counts completed and failed applications since the task was last (re)scheduled.
func (t *SettlementTask) Attempts() int {
	return t.attempts
}

// LastError is the message of the most recent failed attempt, empty once the task completes.
func (t *SettlementTask) LastError() string {
	return t.lastError
}

// CreatedAt returns when the task was first scheduled. Reschedule keeps it.
func (t *SettlementTask) CreatedAt() time.Time {
	return t.createdAt
}

// IsPending reports whether the settlement job should still pick the task up.
//
// Example:
//
//	if !task.IsPending() {
//		return nil // already settled or parked
//	}
func (t *SettlementTask) IsPending() bool {
	return t.state == TaskPending
}

// Complete marks the task done. Completing a finished task is a state conflict.
func (t *SettlementTask) Complete() error {
	if t.state != TaskPending {
		return errs.NewStateConflictErrorWithCause("settlement task", fmt.Errorf("task is %s", t.state))
	}
	t.attempts++
	t.state = TaskDone
	t.lastError = ""
	return nil
}

// Reschedule reopens a done task so the order can be settled again, which happens when
// an order was withdrawn from payment and later approved again. Attempts and the last
// error are reset and the task becomes due at now + delay. Only done tasks can be
// rescheduled; a failed task stays parked for an operator.
//
// Example:
//
//	if task.State() == payment.TaskDone {
//		err := task.Reschedule(clock.Now(), 2*time.Second)
//	}
func (t *SettlementTask) Reschedule(now time.Time, delay time.Duration) error {
	if t.state != TaskDone {
		return errs.NewStateConflictErrorWithCause("settlement task", fmt.Errorf("task is %s", t.state))
	}
	if delay < 0 {
		return errs.NewValueIsOutOfRangeError("settlement delay", delay, 0, "unbounded")
	}
	t.state = TaskPending
	t.attempts = 0
	t.lastError = ""
	t.dueAt = now.Add(delay)
	return nil
}

// Fail records a failed attempt and reschedules it with exponential backoff from baseDelay.
// After MaxAttempts the task is parked as Failed.
func (t *SettlementTask) Fail(cause error, now time.Time, baseDelay time.Duration) error {
	if t.state != TaskPending {
		return errs.NewStateConflictErrorWithCause("settlement task", fmt.Errorf("task is %s", t.state))
	}

	t.attempts++
	if cause != nil {
		t.lastError = cause.Error()
	}
	if t.attempts >= MaxAttempts {
		t.state = TaskFailed
		return nil
	}

	t.dueAt = now.Add(Backoff(baseDelay, t.attempts))
	return nil
}

// Backoff returns baseDelay * 2^(attempt-1), capped at one minute.
func Backoff(baseDelay time.Duration, attempt int) time.Duration {
	if baseDelay <= 0 {
		baseDelay = time.Second
	}
	d := baseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
