// Package settlementrepo stores deferred payment settlements and hands due ones to workers.
package settlementrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/payment"
	"marketplace/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettlementTaskDTO is the settlement_tasks row. One task per order at most.
type SettlementTaskDTO struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	DueAt     time.Time `gorm:"not null;index:idx_settlement_due,priority:2"`
	State     string    `gorm:"type:varchar(16);not null;index:idx_settlement_due,priority:1"`
	Attempts  int       `gorm:"not null;default:0"`
	LastError string    `gorm:"type:text;not null;default:''"`
	CreatedAt time.Time `gorm:"not null"`
}

func (SettlementTaskDTO) TableName() string {
	return "settlement_tasks"
}

// GormSettlementTaskRepository implements ports.SettlementTaskRepository using GORM.
type GormSettlementTaskRepository struct {
	db *gorm.DB
}

// NewGormSettlementTaskRepository creates a repository bound to db.
func NewGormSettlementTaskRepository(db *gorm.DB) *GormSettlementTaskRepository {
	return &GormSettlementTaskRepository{db: db}
}

// Add inserts a task. A second task for the same order is a state conflict.
func (r *GormSettlementTaskRepository) Add(ctx context.Context, task *payment.SettlementTask) error {
	if err := task.Validate(); err != nil {
		return err
	}

	dto := fromDomain(task)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.NewStateConflictErrorWithCause("settlement task",
				fmt.Errorf("order %s already has a settlement task", task.OrderID()))
		}
		return err
	}
	return nil
}

// Update writes the task's state. Tasks are only written by the worker holding the row lock.
func (r *GormSettlementTaskRepository) Update(ctx context.Context, task *payment.SettlementTask) error {
	if err := task.Validate(); err != nil {
		return err
	}

	dto := fromDomain(task)
	result := r.db.WithContext(ctx).Model(&dto).Select("due_at", "state", "attempts", "last_error").Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("settlement task", task.ID().String())
	}
	return nil
}

// GetByOrder loads the task of an order without locking it.
//
// Example:
//
//	task, err := repo.GetByOrder(ctx, orderID)
//	if err == nil && task.IsPending() {
//		return newPaymentAck(task), nil
//	}
func (r *GormSettlementTaskRepository) GetByOrder(ctx context.Context, orderID kernel.UUID) (*payment.SettlementTask, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dto SettlementTaskDTO
	if err := r.db.WithContext(ctx).First(&dto, "order_id = ?", orderID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("settlement task", orderID.String())
		}
		return nil, err
	}
	return toDomain(dto)
}

// ClaimDue selects pending tasks due by now with FOR UPDATE SKIP LOCKED. The locks are
// held until the surrounding transaction ends.
func (r *GormSettlementTaskRepository) ClaimDue(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]*payment.SettlementTask, error) {
	var dtos []SettlementTaskDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("state = ? AND due_at <= ?", payment.TaskPending.String(), now).
		Order("due_at").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	tasks := make([]*payment.SettlementTask, 0, len(dtos))
	for _, dto := range dtos {
		t, convErr := toDomain(dto)
		if convErr != nil {
			return nil, convErr
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func fromDomain(t *payment.SettlementTask) SettlementTaskDTO {
	return SettlementTaskDTO{
		ID:        t.ID().Bytes(),
		OrderID:   t.OrderID().Bytes(),
		DueAt:     t.DueAt(),
		State:     t.State().String(),
		Attempts:  t.Attempts(),
		LastError: t.LastError(),
		CreatedAt: t.CreatedAt(),
	}
}

func toDomain(dto SettlementTaskDTO) (*payment.SettlementTask, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}
	state, err := payment.ParseTaskState(dto.State)
	if err != nil {
		return nil, err
	}
	return payment.RestoreSettlementTask(id, orderID, dto.DueAt.UTC(), state, dto.Attempts, dto.LastError, dto.CreatedAt.UTC())
}
