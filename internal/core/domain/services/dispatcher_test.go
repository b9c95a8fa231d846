package services_test

import (
	"testing"

	"marketplace/internal/core/domain/model/agent"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/services"
	"marketplace/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func processingOrder(t *testing.T, agentID *kernel.UUID) *order.Order {
	t.Helper()
	item, err := order.NewItem(kernel.NewUUID(), "Rice", 1, kernel.MustMoney("10"))
	require.NoError(t, err)
	o, err := order.RestoreOrder(order.Snapshot{
		ID:              kernel.NewUUID(),
		CustomerID:      kernel.NewUUID(),
		ShopID:          kernel.NewUUID(),
		DeliveryAgentID: agentID,
		Items:           []order.Item{item},
		Total:           item.Subtotal(),
		DeliveryAddress: "addr",
		Status:          order.Processing,
		IsPaid:          true,
		CreatedAt:       now,
	})
	require.NoError(t, err)
	return o
}

func onlineAgent(t *testing.T, available bool) *agent.Agent {
	t.Helper()
	a, err := agent.RestoreAgent(kernel.NewUUID(), "Ravi", "555", true, available, nil, 0)
	require.NoError(t, err)
	return a
}

func TestDispatcher_Assign(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		o := processingOrder(t, nil)
		a := onlineAgent(t, true)

		require.NoError(t, services.NewDispatcher().Assign(o, a))
		assert.True(t, o.IsAssignedTo(a.ID()))
		assert.False(t, a.IsAvailable())
	})

	t.Run("second agent loses", func(t *testing.T) {
		o := processingOrder(t, nil)
		first, second := onlineAgent(t, true), onlineAgent(t, true)

		require.NoError(t, services.NewDispatcher().Assign(o, first))
		err := services.NewDispatcher().Assign(o, second)

		require.ErrorIs(t, err, errs.ErrStateConflict)
		assert.True(t, o.IsAssignedTo(first.ID()))
		assert.True(t, second.IsAvailable())
	})

	t.Run("busy agent changes nothing", func(t *testing.T) {
		o := processingOrder(t, nil)
		a := onlineAgent(t, false)

		require.ErrorIs(t, services.NewDispatcher().Assign(o, a), errs.ErrStateConflict)
		assert.Nil(t, o.DeliveryAgentID())
	})

	t.Run("order not ready", func(t *testing.T) {
		item, _ := order.NewItem(kernel.NewUUID(), "Rice", 1, kernel.MustMoney("10"))
		o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), "addr", []order.Item{item}, now)
		require.NoError(t, err)
		a := onlineAgent(t, true)

		require.ErrorIs(t, services.NewDispatcher().Assign(o, a), errs.ErrStateConflict)
		assert.True(t, a.IsAvailable())
	})
}
