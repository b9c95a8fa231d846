package order

import (
	"fmt"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
)

// Input is a status change requested by an actor. Shopkeepers send ACCEPTED or REJECTED,
// agents and admins send the name of the target status.
type Input string

const (
	InputAccepted       Input = "ACCEPTED"
	InputRejected       Input = "REJECTED"
	InputOutForDelivery Input = "OUT_FOR_DELIVERY"
	InputDelivered      Input = "DELIVERED"
	// InputSettled is produced by the payment settlement job only.
	InputSettled Input = "SETTLED"
)

// ParseInput accepts ACCEPTED and every status name. InputSettled cannot be requested from outside.
func ParseInput(s string) (Input, error) {
	if Input(s) == InputAccepted {
		return InputAccepted, nil
	}
	if _, err := ParseStatus(s); err == nil {
		return Input(s), nil
	}
	return "", errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%q is not a valid status update", s))
}

// Facts are what the caller resolved about the actor before asking for a transition.
type Facts struct {
	// ActorOwnsShop is true when the acting shopkeeper owns the order's shop.
	ActorOwnsShop bool
}

// Guard checks a rule's precondition against the order's current state.
type Guard func(o *Order, actor kernel.Actor, facts Facts) error

// Rule is one row of the transition table.
type Rule struct {
	Guard  Guard
	Target Status
}

// Key selects a Rule.
type Key struct {
	Role  kernel.Role
	Input Input
}

// Transitions is the lifecycle table. Admin rows are generated for every status.
var Transitions = buildTransitions()

// actorChecks run before the table lookup: the resource checks of a role precede
// any check on the order's status.
var actorChecks = map[kernel.Role]Guard{
	kernel.RoleShopkeeper:    requireShopOwner,
	kernel.RoleDeliveryAgent: requireAssignedAgent,
	kernel.RoleAdmin:         nil,
	kernel.RoleSystem:        nil,
}

func buildTransitions() map[Key]Rule {
	table := map[Key]Rule{
		{Role: kernel.RoleShopkeeper, Input: InputAccepted}: {
			Guard:  requireStatus(PendingApproval),
			Target: PendingPayment,
		},
		{Role: kernel.RoleShopkeeper, Input: InputRejected}: {
			Guard:  requireStatus(PendingApproval),
			Target: Rejected,
		},
		{Role: kernel.RoleSystem, Input: InputSettled}: {
			Guard:  requireUnpaidAwaitingPayment,
			Target: Processing,
		},
		{Role: kernel.RoleDeliveryAgent, Input: InputOutForDelivery}: {
			Guard:  requireStatus(Processing),
			Target: OutForDelivery,
		},
		{Role: kernel.RoleDeliveryAgent, Input: InputDelivered}: {
			Guard:  requireStatus(Processing, OutForDelivery),
			Target: Delivered,
		},
	}

	for _, s := range AllStatuses() {
		table[Key{Role: kernel.RoleAdmin, Input: Input(s.String())}] = Rule{
			Guard:  keepAgentConsistent(s),
			Target: s,
		}
	}

	return table
}

func requireShopOwner(_ *Order, _ kernel.Actor, facts Facts) error {
	if !facts.ActorOwnsShop {
		return errs.NewAccessDeniedError("you are not authorized to update this order")
	}
	return nil
}

func requireAssignedAgent(o *Order, actor kernel.Actor, _ Facts) error {
	if o.deliveryAgentID == nil || !o.deliveryAgentID.IsEqual(actor.ID()) {
		return errs.NewAccessDeniedError("this is not your assigned order")
	}
	return nil
}

func requireStatus(allowed ...Status) Guard {
	return func(o *Order, _ kernel.Actor, _ Facts) error {
		for _, s := range allowed {
			if o.status == s {
				return nil
			}
		}
		return errs.NewStateConflictErrorWithCause(
			"status",
			fmt.Errorf("order is %s, expected one of %v", o.status, allowed),
		)
	}
}

func requireUnpaidAwaitingPayment(o *Order, actor kernel.Actor, facts Facts) error {
	if err := requireStatus(PendingPayment)(o, actor, facts); err != nil {
		return err
	}
	if o.isPaid {
		return errs.NewStateConflictErrorWithCause("payment", fmt.Errorf("order %s is already paid", o.id))
	}
	return nil
}

func keepAgentConsistent(target Status) Guard {
	return func(o *Order, _ kernel.Actor, _ Facts) error {
		return target.ValidateCanHaveAgent(o.deliveryAgentID != nil)
	}
}

// Outcome describes an applied transition.
type Outcome struct {
	From Status
	To   Status
	// ReleasedAgent is set when the transition ended the agent's active delivery.
	// The caller must make that agent available in the same unit of work.
	ReleasedAgent *kernel.UUID
}

// Evaluate finds the rule for actor and input and checks it without changing the order.
func (o *Order) Evaluate(actor kernel.Actor, input Input, facts Facts) (Rule, error) {
	if err := actor.Validate(); err != nil {
		return Rule{}, err
	}

	check, known := actorChecks[actor.Role()]
	if !known {
		return Rule{}, errs.NewAccessDeniedError(fmt.Sprintf("%s is not authorized to change order status", actor.Role()))
	}
	if check != nil {
		if err := check(o, actor, facts); err != nil {
			return Rule{}, err
		}
	}

	rule, ok := Transitions[Key{Role: actor.Role(), Input: input}]
	if !ok {
		return Rule{}, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status update for %s", input, actor.Role()),
		)
	}

	if err := rule.Guard(o, actor, facts); err != nil {
		return Rule{}, err
	}

	return rule, nil
}

// ApplyTransition moves the order along the rule selected by (actor role, input).
// The order is unchanged when an error is returned.
func (o *Order) ApplyTransition(actor kernel.Actor, input Input, facts Facts) (Outcome, error) {
	if err := o.Validate(); err != nil {
		return Outcome{}, err
	}

	rule, err := o.Evaluate(actor, input, facts)
	if err != nil {
		return Outcome{}, err
	}

	outcome := Outcome{From: o.status, To: rule.Target}
	if o.deliveryAgentID != nil && o.status.IsActiveDelivery() && !rule.Target.IsActiveDelivery() {
		released := *o.deliveryAgentID
		outcome.ReleasedAgent = &released
	}

	o.status = rule.Target
	return outcome, nil
}
