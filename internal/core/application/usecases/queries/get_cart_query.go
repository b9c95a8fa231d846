package queries

import (
	"errors"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/guard"
)

var ErrGetCartQueryIsNotConstructed = errors.New("GetCartQuery must be created via NewGetCartQuery constructor")

// GetCartQuery returns the calling customer's cart.
type GetCartQuery struct {
	customerID kernel.UUID
	guard      guard.ConstructorGuard
}

// NewGetCartQuery binds the query to actor, so a customer can only read their own cart.
//
// Example:
//
//	query, err := NewGetCartQuery(actor)
//	if err != nil {
//		return err // AccessDenied for anyone but a customer
//	}
//	cart, err := cartQueries.Handle(ctx, query)
func NewGetCartQuery(actor kernel.Actor) (GetCartQuery, error) {
	if err := requireRole(actor, "view cart", kernel.RoleCustomer); err != nil {
		return GetCartQuery{}, err
	}
	return GetCartQuery{customerID: actor.ID(), guard: guard.NewConstructorGuard()}, nil
}

// Validate returns ErrGetCartQueryIsNotConstructed for a zero value.
func (q GetCartQuery) Validate() error {
	return q.guard.Validate(ErrGetCartQueryIsNotConstructed)
}

// CustomerID returns the cart owner.
func (q GetCartQuery) CustomerID() kernel.UUID {
	return q.customerID
}
