package order

import (
	"errors"
	"fmt"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder constructor")

	ErrItemsAreRequired          = errs.NewValueIsRequiredError("items")
	ErrDeliveryAddressIsRequired = errs.NewValueIsRequiredError("delivery address")
	ErrCreatedAtIsRequired       = errs.NewValueIsRequiredError("created at")
)

// Order is one shop's share of a checkout. It is the aggregate root of the lifecycle
// state machine.
//
// Order follows these invariants:
//   - customer, shop and at least one item are always present
//   - total equals the sum of item subtotals at creation time
//   - a delivery agent is present iff the status allows one (see Status.ValidateCanHaveAgent)
//   - the agent is set once, by AssignAgent
//
// version is the optimistic concurrency token. Repositories write an order only if the
// stored version still matches and bump it on success.
type Order struct {
	id              kernel.UUID
	customerID      kernel.UUID
	shopID          kernel.UUID
	deliveryAgentID *kernel.UUID
	items           []Item
	total           kernel.Money
	deliveryAddress string
	status          Status
	isPaid          bool
	paidAt          *time.Time
	paymentResult   *PaymentResult
	createdAt       time.Time
	version         int
	guard           guard.ConstructorGuard
}

// NewOrder creates an order in PendingApproval. The total is computed from items.
//
// Example:
//
//	item, _ := order.NewItem(productID, "Rice 5kg", 2, kernel.MustMoney("100"))
//	o, err := order.NewOrder(kernel.NewUUID(), customerID, shopID, "12 Main St", []order.Item{item}, time.Now())
//	// o.Total() == 200.00, o.Status() == order.PendingApproval
func NewOrder(
	id kernel.UUID,
	customerID kernel.UUID,
	shopID kernel.UUID,
	deliveryAddress string,
	items []Item,
	createdAt time.Time,
) (*Order, error) {
	o := &Order{
		status: PendingApproval,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setCustomerID(customerID),
		o.setShopID(shopID),
		o.setDeliveryAddress(deliveryAddress),
		o.setItems(items),
		o.setCreatedAt(createdAt),
	); err != nil {
		return nil, err
	}

	o.total = computeTotal(o.items)
	return o, nil
}

// Snapshot carries the persisted state of an order into RestoreOrder.
type Snapshot struct {
	ID              kernel.UUID
	CustomerID      kernel.UUID
	ShopID          kernel.UUID
	DeliveryAgentID *kernel.UUID
	Items           []Item
	Total           kernel.Money
	DeliveryAddress string
	Status          Status
	IsPaid          bool
	PaidAt          *time.Time
	PaymentResult   *PaymentResult
	CreatedAt       time.Time
	Version         int
}

// RestoreOrder rebuilds an order from storage and re-checks its invariants.
func RestoreOrder(s Snapshot) (*Order, error) {
	o := &Order{
		isPaid:        s.IsPaid,
		paidAt:        s.PaidAt,
		paymentResult: s.PaymentResult,
		guard:         guard.NewConstructorGuard(),
	}

	var errVersion error
	if s.Version < 0 {
		errVersion = errs.NewValueIsOutOfRangeError("version", s.Version, 0, "unbounded")
	}

	if err := errors.Join(
		o.setID(s.ID),
		o.setCustomerID(s.CustomerID),
		o.setShopID(s.ShopID),
		o.setDeliveryAddress(s.DeliveryAddress),
		o.setItems(s.Items),
		o.setTotal(s.Total),
		o.setCreatedAt(s.CreatedAt),
		o.setStatusAndAgent(s.Status, s.DeliveryAgentID),
		errVersion,
	); err != nil {
		return nil, err
	}

	o.version = s.Version
	return o, nil
}

// Snapshot exports the order's state for persistence. RestoreOrder(o.Snapshot()) yields an equal order.
func (o *Order) Snapshot() Snapshot {
	return Snapshot{
		ID:              o.id,
		CustomerID:      o.customerID,
		ShopID:          o.shopID,
		DeliveryAgentID: o.DeliveryAgentID(),
		Items:           o.Items(),
		Total:           o.total,
		DeliveryAddress: o.deliveryAddress,
		Status:          o.status,
		IsPaid:          o.isPaid,
		PaidAt:          o.paidAt,
		PaymentResult:   o.paymentResult,
		CreatedAt:       o.createdAt,
		Version:         o.version,
	}
}

// Validate ensures the order was built by a constructor.
func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

// IsEqual compares two orders by identity.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order identifier.
//
// Example:
//
//	o, _ := order.NewOrder(kernel.NewUUID(), customerID, shopID, "12 Main St", items, now)
//	tracking, _ := queries.NewTrackOrderQuery(actor, o.ID())
func (o *Order) ID() kernel.UUID {
	return o.id
}

// CustomerID returns the customer who placed the order. Only they may pay for it.
func (o *Order) CustomerID() kernel.UUID {
	return o.customerID
}

// ShopID returns the shop fulfilling the order. Its owner approves or rejects it.
func (o *Order) ShopID() kernel.UUID {
	return o.shopID
}

// DeliveryAgentID returns the assigned agent, or nil before a claim.
func (o *Order) DeliveryAgentID() *kernel.UUID {
	if o.deliveryAgentID == nil {
		return nil
	}
	id := *o.deliveryAgentID
	return &id
}

// Items returns a copy of the order lines.
func (o *Order) Items() []Item {
	out := make([]Item, len(o.items))
	copy(out, o.items)
	return out
}

// Total returns the sum of item subtotals, fixed at creation.
//
// Example:
//
//	item, _ := order.NewItem(productID, "Rice 5kg", 2, kernel.MustMoney("100"))
//	o, _ := order.NewOrder(id, customerID, shopID, "12 Main St", []order.Item{item}, now)
//	o.Total().String() // "200.00"
func (o *Order) Total() kernel.Money {
	return o.total
}

// DeliveryAddress returns the customer's address as it was at checkout.
func (o *Order) DeliveryAddress() string {
	return o.deliveryAddress
}

// Status returns the current lifecycle state. Use ApplyTransition to change it.
func (o *Order) Status() Status {
	return o.status
}

// IsPaid reports whether SettlePayment succeeded. It never turns false again, even if
// an admin moves the order back to an earlier status.
func (o *Order) IsPaid() bool {
	return o.isPaid
}

// PaidAt returns when settlement happened, or nil while unpaid. The returned time is
// shared with the order and must not be modified.
func (o *Order) PaidAt() *time.Time {
	return o.paidAt
}

// PaymentResult returns the gateway record, or nil while unpaid.
func (o *Order) PaymentResult() *PaymentResult {
	return o.paymentResult
}

// CreatedAt returns the checkout time. Listings order by it.
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// Version returns the optimistic concurrency token compared by the repository.
func (o *Order) Version() int {
	return o.version
}

// IncrementVersion is called by the repository after a successful conditional write.
func (o *Order) IncrementVersion() {
	o.version++
}

// IsAssignedTo reports whether agentID holds the order.
func (o *Order) IsAssignedTo(agentID kernel.UUID) bool {
	return o.deliveryAgentID != nil && o.deliveryAgentID.IsEqual(agentID)
}

// ValidateClaimable checks that the order is Processing and nobody holds it yet.
func (o *Order) ValidateClaimable() error {
	if err := o.Validate(); err != nil {
		return err
	}
	if o.status != Processing {
		return errs.NewStateConflictErrorWithCause(
			"status",
			fmt.Errorf("order is %s, only %s orders can be claimed", o.status, Processing),
		)
	}
	if o.deliveryAgentID != nil {
		return errs.NewStateConflictErrorWithCause("delivery agent", errors.New("order has already been claimed"))
	}
	return nil
}

// AssignAgent hands the order to agentID. It succeeds once per order.
func (o *Order) AssignAgent(agentID kernel.UUID) error {
	if err := agentID.Validate(); err != nil {
		return err
	}
	if err := o.ValidateClaimable(); err != nil {
		return err
	}

	o.deliveryAgentID = &agentID
	return nil
}

// SettlePayment applies a successful settlement: the order becomes Processing and paid.
// It fails with a state conflict when the order no longer awaits payment.
func (o *Order) SettlePayment(result PaymentResult) error {
	if _, err := o.ApplyTransition(kernel.SystemActor(), InputSettled, Facts{}); err != nil {
		return err
	}

	paidAt := result.SettledAt()
	o.isPaid = true
	o.paidAt = &paidAt
	o.paymentResult = &result
	return nil
}

// ValidatePayable checks that a payment may be requested for the order.
func (o *Order) ValidatePayable() error {
	if err := o.Validate(); err != nil {
		return err
	}
	if o.isPaid {
		return errs.NewStateConflictErrorWithCause("payment", errors.New("order is already paid"))
	}
	if o.status != PendingPayment {
		return errs.NewStateConflictErrorWithCause(
			"status",
			fmt.Errorf("order is %s and not ready for payment", o.status),
		)
	}
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setCustomerID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("customer id", err)
	}
	o.customerID = id
	return nil
}

func (o *Order) setShopID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("shop id", err)
	}
	o.shopID = id
	return nil
}

func (o *Order) setDeliveryAddress(address string) error {
	if address == "" {
		return ErrDeliveryAddressIsRequired
	}
	o.deliveryAddress = address
	return nil
}

func (o *Order) setItems(items []Item) error {
	if len(items) == 0 {
		return ErrItemsAreRequired
	}
	for i, item := range items {
		if err := item.ProductID().Validate(); err != nil {
			return errs.NewValueIsInvalidErrorWithCause(fmt.Sprintf("items[%d]", i), err)
		}
	}
	o.items = make([]Item, len(items))
	copy(o.items, items)
	return nil
}

func (o *Order) setTotal(total kernel.Money) error {
	if err := total.Validate(); err != nil {
		return err
	}
	o.total = total
	return nil
}

func (o *Order) setCreatedAt(t time.Time) error {
	if t.IsZero() {
		return ErrCreatedAtIsRequired
	}
	o.createdAt = t
	return nil
}

func (o *Order) setStatusAndAgent(status Status, agentID *kernel.UUID) error {
	if err := status.Validate(); err != nil {
		return err
	}
	if agentID != nil {
		if err := agentID.Validate(); err != nil {
			return err
		}
	}
	if err := status.ValidateCanHaveAgent(agentID != nil); err != nil {
		return err
	}
	o.status = status
	o.deliveryAgentID = agentID
	return nil
}

func computeTotal(items []Item) kernel.Money {
	total := kernel.ZeroMoney()
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}
