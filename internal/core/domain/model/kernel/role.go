package kernel

import (
	"errors"
	"fmt"

	"marketplace/internal/pkg/errs"
)

// Role is the single role an authenticated actor holds.
type Role int

const (
	RoleUnknown Role = iota
	RoleCustomer
	RoleShopkeeper
	RoleDeliveryAgent
	RoleAdmin
	// RoleSystem is held by internal workers such as the payment settlement job.
	// It is never issued to an external caller.
	RoleSystem
)

func getRoleStrings() map[Role]string {
	return map[Role]string{
		RoleUnknown:       "unknown",
		RoleCustomer:      "customer",
		RoleShopkeeper:    "shopkeeper",
		RoleDeliveryAgent: "delivery_agent",
		RoleAdmin:         "admin",
		RoleSystem:        "system",
	}
}

// String returns the role as it appears in the token role claim, such as "delivery_agent".
func (r Role) String() string {
	if s, ok := getRoleStrings()[r]; ok {
		return s
	}
	return "unknown"
}

// ParseRole maps the role claim of an access token to a Role.
// Only the four caller roles are accepted.
func ParseRole(s string) (Role, error) {
	for role, str := range getRoleStrings() {
		if str == s && role.IsCallerRole() {
			return role, nil
		}
	}
	return RoleUnknown, errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a valid role", s))
}

// IsCallerRole reports whether r can be held by an external caller.
func (r Role) IsCallerRole() bool {
	return r == RoleCustomer || r == RoleShopkeeper || r == RoleDeliveryAgent || r == RoleAdmin
}

var ErrActorIsNotConstructed = errors.New("Actor must be created via NewActor constructor")

// Actor is the authenticated caller of an operation. Every authorization decision in the
// core is made against an Actor supplied by the auth collaborator.
type Actor struct {
	id   UUID
	role Role
}

// NewActor builds an actor from verified token claims. The role must be known. Tokens
// never carry RoleSystem because ParseRole rejects it.
//
// Example:
//
//	actor, err := kernel.NewActor(userID, kernel.RoleCustomer)
//	if err != nil {
//	    return err
//	}
//	actor.Is(kernel.RoleCustomer) // true
func NewActor(id UUID, role Role) (Actor, error) {
	if err := id.Validate(); err != nil {
		return Actor{}, err
	}
	if role == RoleUnknown || role.String() == "unknown" {
		return Actor{}, errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%d is not a valid role", role))
	}
	return Actor{id: id, role: role}, nil
}

// SystemActor returns the actor internal jobs act as.
func SystemActor() Actor {
	return Actor{id: systemActorID, role: RoleSystem}
}

var systemActorID = UUID{id: [16]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x4f, 0xff, 0xbf, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}}

// Validate reports ErrActorIsNotConstructed for a zero Actor. Commands and queries call
// it first, so a handler can never run on behalf of nobody.
func (a Actor) Validate() error {
	if a.id.Validate() != nil || a.role == RoleUnknown {
		return ErrActorIsNotConstructed
	}
	return nil
}

// ID returns the user ID. For customers and agents it is also the ID of their aggregate.
func (a Actor) ID() UUID {
	return a.id
}

// Role returns the single role the actor holds.
func (a Actor) Role() Role {
	return a.role
}

// Is reports whether the actor holds role.
//
// Example:
//
//	if !actor.Is(kernel.RoleAdmin) && !shop.IsOwnedBy(actor.ID()) {
//	    return errs.NewAccessDeniedError("update product")
//	}
func (a Actor) Is(role Role) bool {
	return a.role == role
}

// String renders "role:id" for logs.
func (a Actor) String() string {
	return fmt.Sprintf("%s:%s", a.role, a.id)
}
