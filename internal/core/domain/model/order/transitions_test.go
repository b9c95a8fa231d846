package order_test

import (
	"fmt"
	"testing"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustActor(t *testing.T, role kernel.Role) kernel.Actor {
	t.Helper()
	a, err := kernel.NewActor(kernel.NewUUID(), role)
	require.NoError(t, err)
	return a
}

func allInputs() []order.Input {
	inputs := []order.Input{order.InputAccepted, order.InputSettled}
	for _, s := range order.AllStatuses() {
		inputs = append(inputs, order.Input(s.String()))
	}
	return inputs
}

type actorCase struct {
	name     string
	role     kernel.Role
	facts    order.Facts
	assigned bool
}

// expectedTarget restates the lifecycle table independently of the implementation.
func expectedTarget(ac actorCase, status order.Status, hasAgent, paid bool, in order.Input) (order.Status, bool) {
	switch ac.role {
	case kernel.RoleShopkeeper:
		if !ac.facts.ActorOwnsShop || status != order.PendingApproval {
			return 0, false
		}
		switch in {
		case order.InputAccepted:
			return order.PendingPayment, true
		case order.InputRejected:
			return order.Rejected, true
		}
	case kernel.RoleDeliveryAgent:
		if !ac.assigned {
			return 0, false
		}
		if in == order.InputOutForDelivery && status == order.Processing {
			return order.OutForDelivery, true
		}
		if in == order.InputDelivered && (status == order.Processing || status == order.OutForDelivery) {
			return order.Delivered, true
		}
	case kernel.RoleAdmin:
		target, err := order.ParseStatus(string(in))
		if err != nil {
			return 0, false
		}
		if target.ValidateCanHaveAgent(hasAgent) != nil {
			return 0, false
		}
		return target, true
	case kernel.RoleSystem:
		if in == order.InputSettled && status == order.PendingPayment && !paid {
			return order.Processing, true
		}
	}
	return 0, false
}

func TestTransitions_Legality(t *testing.T) {
	actors := []actorCase{
		{name: "customer", role: kernel.RoleCustomer},
		{name: "shop owner", role: kernel.RoleShopkeeper, facts: order.Facts{ActorOwnsShop: true}},
		{name: "other shopkeeper", role: kernel.RoleShopkeeper},
		{name: "assigned agent", role: kernel.RoleDeliveryAgent, assigned: true},
		{name: "other agent", role: kernel.RoleDeliveryAgent},
		{name: "admin", role: kernel.RoleAdmin},
		{name: "system", role: kernel.RoleSystem},
	}

	for _, ac := range actors {
		for _, status := range order.AllStatuses() {
			for _, hasAgent := range []bool{false, true} {
				if status.ValidateCanHaveAgent(hasAgent) != nil {
					continue
				}
				if ac.assigned && !hasAgent {
					continue
				}
				for _, paid := range []bool{false, true} {
					for _, in := range allInputs() {
						name := fmt.Sprintf("%s/%s/agent=%t/paid=%t/%s", ac.name, status, hasAgent, paid, in)
						t.Run(name, func(t *testing.T) {
							var actor kernel.Actor
							if ac.role == kernel.RoleSystem {
								actor = kernel.SystemActor()
							} else {
								actor = mustActor(t, ac.role)
							}

							var agentID *kernel.UUID
							if hasAgent {
								id := kernel.NewUUID()
								if ac.assigned {
									id = actor.ID()
								}
								agentID = &id
							}
							o := restoreTestOrder(t, status, agentID, paid)

							outcome, err := o.ApplyTransition(actor, in, ac.facts)

							want, ok := expectedTarget(ac, status, hasAgent, paid, in)
							if !ok {
								require.Error(t, err)
								assert.Equal(t, status, o.Status(), "status must be unchanged")
								return
							}
							require.NoError(t, err)
							assert.Equal(t, want, o.Status())
							assert.Equal(t, status, outcome.From)
							assert.Equal(t, want, outcome.To)
						})
					}
				}
			}
		}
	}
}

func TestTransitions_ErrorCategories(t *testing.T) {
	t.Run("customer may not change status", func(t *testing.T) {
		o := restoreTestOrder(t, order.PendingApproval, nil, false)
		_, err := o.ApplyTransition(mustActor(t, kernel.RoleCustomer), order.InputAccepted, order.Facts{})
		require.ErrorIs(t, err, errs.ErrAccessDenied)
	})

	t.Run("ownership is checked before status", func(t *testing.T) {
		o := restoreTestOrder(t, order.Delivered, func() *kernel.UUID { id := kernel.NewUUID(); return &id }(), true)
		_, err := o.ApplyTransition(mustActor(t, kernel.RoleShopkeeper), order.InputAccepted, order.Facts{})
		require.ErrorIs(t, err, errs.ErrAccessDenied)
	})

	t.Run("assignment is checked before status", func(t *testing.T) {
		o := restoreTestOrder(t, order.PendingApproval, nil, false)
		_, err := o.ApplyTransition(mustActor(t, kernel.RoleDeliveryAgent), order.InputDelivered, order.Facts{})
		require.ErrorIs(t, err, errs.ErrAccessDenied)
	})

	t.Run("input outside the role's rules is invalid", func(t *testing.T) {
		o := restoreTestOrder(t, order.PendingApproval, nil, false)
		_, err := o.ApplyTransition(mustActor(t, kernel.RoleShopkeeper), order.InputDelivered, order.Facts{ActorOwnsShop: true})
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("wrong current status is a conflict", func(t *testing.T) {
		o := restoreTestOrder(t, order.PendingPayment, nil, false)
		_, err := o.ApplyTransition(mustActor(t, kernel.RoleShopkeeper), order.InputAccepted, order.Facts{ActorOwnsShop: true})
		require.ErrorIs(t, err, errs.ErrStateConflict)
	})

	t.Run("admin cannot break the agent invariant", func(t *testing.T) {
		o := restoreTestOrder(t, order.Processing, nil, true)
		_, err := o.ApplyTransition(mustActor(t, kernel.RoleAdmin), order.InputOutForDelivery, order.Facts{})
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestTransitions_DeliveredReleasesAgentOnce(t *testing.T) {
	agent := mustActor(t, kernel.RoleDeliveryAgent)
	agentID := agent.ID()
	o := restoreTestOrder(t, order.Processing, &agentID, true)

	outcome, err := o.ApplyTransition(agent, order.InputOutForDelivery, order.Facts{})
	require.NoError(t, err)
	assert.Nil(t, outcome.ReleasedAgent)

	outcome, err = o.ApplyTransition(agent, order.InputDelivered, order.Facts{})
	require.NoError(t, err)
	require.NotNil(t, outcome.ReleasedAgent)
	assert.Equal(t, agentID, *outcome.ReleasedAgent)
	assert.True(t, o.IsAssignedTo(agentID))

	_, err = o.ApplyTransition(agent, order.InputDelivered, order.Facts{})
	require.ErrorIs(t, err, errs.ErrStateConflict)
	assert.Equal(t, order.Delivered, o.Status())
}

func TestTransitions_AdminReleasesAgentWhenLeavingActiveDelivery(t *testing.T) {
	agentID := kernel.NewUUID()
	admin := mustActor(t, kernel.RoleAdmin)

	o := restoreTestOrder(t, order.OutForDelivery, &agentID, true)
	outcome, err := o.ApplyTransition(admin, order.Input(order.Processing.String()), order.Facts{})
	require.NoError(t, err)
	assert.Nil(t, outcome.ReleasedAgent)

	outcome, err = o.ApplyTransition(admin, order.Input(order.Delivered.String()), order.Facts{})
	require.NoError(t, err)
	require.NotNil(t, outcome.ReleasedAgent)
	assert.Equal(t, agentID, *outcome.ReleasedAgent)
}

func TestParseInput(t *testing.T) {
	for _, s := range []string{"ACCEPTED", "REJECTED", "OUT_FOR_DELIVERY", "DELIVERED", "PROCESSING"} {
		in, err := order.ParseInput(s)
		require.NoError(t, err, s)
		assert.Equal(t, order.Input(s), in)
	}

	for _, s := range []string{"SETTLED", "", "delivered", "CANCELLED"} {
		_, err := order.ParseInput(s)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid, s)
	}
}

func TestTransitions_TableShape(t *testing.T) {
	assert.Len(t, order.Transitions, 5+len(order.AllStatuses()))
	for key, rule := range order.Transitions {
		assert.NotNil(t, rule.Guard, "%v", key)
		require.NoError(t, rule.Target.Validate(), "%v", key)
	}
}
