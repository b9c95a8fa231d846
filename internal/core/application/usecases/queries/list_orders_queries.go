package queries

import (
	"errors"
	"fmt"
	"strconv"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

var (
	ErrListMyOrdersQueryIsNotConstructed = errors.New(
		"ListMyOrdersQuery must be created via NewListMyOrdersQuery constructor")
	ErrListShopOrdersQueryIsNotConstructed = errors.New(
		"ListShopOrdersQuery must be created via NewListShopOrdersQuery constructor")
	ErrListAvailableOrdersQueryIsNotConstructed = errors.New(
		"ListAvailableOrdersQuery must be created via NewListAvailableOrdersQuery constructor")
	ErrListMyDeliveriesQueryIsNotConstructed = errors.New(
		"ListMyDeliveriesQuery must be created via NewListMyDeliveriesQuery constructor")
	ErrListAllOrdersQueryIsNotConstructed = errors.New(
		"ListAllOrdersQuery must be created via NewListAllOrdersQuery constructor")
)

// ListMyOrdersQuery lists the calling customer's orders, newest first.
type ListMyOrdersQuery struct {
	customerID kernel.UUID
	guard      guard.ConstructorGuard
}

// NewListMyOrdersQuery binds the query to the acting customer.
//
// Example:
//
//	query, err := NewListMyOrdersQuery(actor)
//	if err != nil {
//		return err
//	}
//	orders, err := handler.HandleMine(ctx, query)
func NewListMyOrdersQuery(actor kernel.Actor) (ListMyOrdersQuery, error) {
	if err := requireRole(actor, "list own orders", kernel.RoleCustomer); err != nil {
		return ListMyOrdersQuery{}, err
	}
	return ListMyOrdersQuery{customerID: actor.ID(), guard: guard.NewConstructorGuard()}, nil
}

// Validate returns ErrListMyOrdersQueryIsNotConstructed for a zero value.
func (q ListMyOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListMyOrdersQueryIsNotConstructed)
}

// CustomerID returns the customer whose orders are listed.
func (q ListMyOrdersQuery) CustomerID() kernel.UUID {
	return q.customerID
}

// ListShopOrdersQuery lists the orders of one shop, newest first. A shopkeeper sees the
// shop they own. An admin names the shop explicitly.
type ListShopOrdersQuery struct {
	ownerID *kernel.UUID
	shopID  *kernel.UUID
	guard   guard.ConstructorGuard
}

// NewListShopOrdersQuery builds the query. shopID is ignored for shopkeepers and
// required for admins.
func NewListShopOrdersQuery(actor kernel.Actor, shopID *kernel.UUID) (ListShopOrdersQuery, error) {
	if err := requireRole(actor, "list shop orders", kernel.RoleShopkeeper, kernel.RoleAdmin); err != nil {
		return ListShopOrdersQuery{}, err
	}

	q := ListShopOrdersQuery{guard: guard.NewConstructorGuard()}
	if actor.Is(kernel.RoleShopkeeper) {
		ownerID := actor.ID()
		q.ownerID = &ownerID
		return q, nil
	}

	if shopID == nil {
		return ListShopOrdersQuery{}, errs.NewValueIsRequiredError("shop id")
	}
	if err := shopID.Validate(); err != nil {
		return ListShopOrdersQuery{}, errs.NewValueIsInvalidErrorWithCause("shop id", err)
	}
	id := *shopID
	q.shopID = &id
	return q, nil
}

// Validate returns ErrListShopOrdersQueryIsNotConstructed for a zero value.
func (q ListShopOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListShopOrdersQueryIsNotConstructed)
}

// ListAvailableOrdersQuery lists paid orders nobody has claimed, oldest first.
type ListAvailableOrdersQuery struct {
	guard guard.ConstructorGuard
}

// NewListAvailableOrdersQuery returns an AccessDeniedError unless actor is a delivery agent.
func NewListAvailableOrdersQuery(actor kernel.Actor) (ListAvailableOrdersQuery, error) {
	if err := requireRole(actor, "list available orders", kernel.RoleDeliveryAgent); err != nil {
		return ListAvailableOrdersQuery{}, err
	}
	return ListAvailableOrdersQuery{guard: guard.NewConstructorGuard()}, nil
}

// Validate returns ErrListAvailableOrdersQueryIsNotConstructed for a zero value.
func (q ListAvailableOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListAvailableOrdersQueryIsNotConstructed)
}

// ListMyDeliveriesQuery lists the calling agent's active deliveries.
type ListMyDeliveriesQuery struct {
	agentID kernel.UUID
	guard   guard.ConstructorGuard
}

// NewListMyDeliveriesQuery binds the query to the acting delivery agent.
func NewListMyDeliveriesQuery(actor kernel.Actor) (ListMyDeliveriesQuery, error) {
	if err := requireRole(actor, "list own deliveries", kernel.RoleDeliveryAgent); err != nil {
		return ListMyDeliveriesQuery{}, err
	}
	return ListMyDeliveriesQuery{agentID: actor.ID(), guard: guard.NewConstructorGuard()}, nil
}

// Validate returns ErrListMyDeliveriesQueryIsNotConstructed for a zero value.
func (q ListMyDeliveriesQuery) Validate() error {
	return q.guard.Validate(ErrListMyDeliveriesQueryIsNotConstructed)
}

// AgentID returns the agent whose deliveries are listed.
func (q ListMyDeliveriesQuery) AgentID() kernel.UUID {
	return q.agentID
}

// Filter keys accepted by NewListAllOrdersQuery.
const (
	FilterStatus          = "status"
	FilterCustomerID      = "customer_id"
	FilterShopID          = "shop_id"
	FilterDeliveryAgentID = "delivery_agent_id"
	FilterIsPaid          = "is_paid"
)

// OrderFilter narrows ListAllOrdersQuery. Nil fields do not filter.
type OrderFilter struct {
	Status          *order.Status
	CustomerID      *kernel.UUID
	ShopID          *kernel.UUID
	DeliveryAgentID *kernel.UUID
	IsPaid          *bool
}

// ParseOrderFilter reads filter values keyed by the Filter* names. Any other key is rejected.
func ParseOrderFilter(raw map[string]string) (OrderFilter, error) {
	var f OrderFilter
	for key, value := range raw {
		switch key {
		case FilterStatus:
			status, err := order.ParseStatus(value)
			if err != nil {
				return OrderFilter{}, err
			}
			f.Status = &status
		case FilterCustomerID:
			id, err := parseFilterUUID(key, value)
			if err != nil {
				return OrderFilter{}, err
			}
			f.CustomerID = id
		case FilterShopID:
			id, err := parseFilterUUID(key, value)
			if err != nil {
				return OrderFilter{}, err
			}
			f.ShopID = id
		case FilterDeliveryAgentID:
			id, err := parseFilterUUID(key, value)
			if err != nil {
				return OrderFilter{}, err
			}
			f.DeliveryAgentID = id
		case FilterIsPaid:
			paid, err := strconv.ParseBool(value)
			if err != nil {
				return OrderFilter{}, errs.NewValueIsInvalidErrorWithCause(key, err)
			}
			f.IsPaid = &paid
		default:
			return OrderFilter{}, errs.NewValueIsInvalidErrorWithCause(
				"filter", fmt.Errorf("%q is not a supported filter", key))
		}
	}
	return f, nil
}

func parseFilterUUID(key, value string) (*kernel.UUID, error) {
	id, err := kernel.UUIDFromString(value)
	if err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause(key, err)
	}
	return &id, nil
}

// ListAllOrdersQuery is the admin's view of every order, newest first.
type ListAllOrdersQuery struct {
	filter OrderFilter
	guard  guard.ConstructorGuard
}

// NewListAllOrdersQuery requires an admin. An empty filter lists every order.
//
// Example:
//
//	status := order.PendingApproval
//	query, err := NewListAllOrdersQuery(actor, OrderFilter{Status: &status})
func NewListAllOrdersQuery(actor kernel.Actor, filter OrderFilter) (ListAllOrdersQuery, error) {
	if err := requireRole(actor, "list all orders", kernel.RoleAdmin); err != nil {
		return ListAllOrdersQuery{}, err
	}
	return ListAllOrdersQuery{filter: filter, guard: guard.NewConstructorGuard()}, nil
}

// Validate returns ErrListAllOrdersQueryIsNotConstructed for a zero value.
func (q ListAllOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListAllOrdersQueryIsNotConstructed)
}

// Filter returns the conditions, which are combined with AND.
func (q ListAllOrdersQuery) Filter() OrderFilter {
	return q.filter
}
