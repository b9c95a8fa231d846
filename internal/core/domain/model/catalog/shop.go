package catalog

import (
	"errors"
	"strings"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

var ErrShopIsNotConstructed = errors.New("Shop must be created via NewShop or RestoreShop constructor")

// Shop is owned by exactly one shopkeeper. Shopkeeper access to orders is decided by
// looking the shop up by owner, never by a shop id the caller supplies.
type Shop struct {
	id       kernel.UUID
	ownerID  kernel.UUID
	name     string
	position *kernel.GeoPoint
	version  int
	guard    guard.ConstructorGuard
}

// NewShop opens a shop for ownerID. position is optional.
//
// Example:
//
//	point, _ := kernel.NewGeoPoint(52.52, 13.405)
//	shop, err := NewShop(kernel.NewUUID(), ownerID, "Corner Shop", &point)
func NewShop(id, ownerID kernel.UUID, name string, position *kernel.GeoPoint) (*Shop, error) {
	return RestoreShop(id, ownerID, name, position, 0)
}

// RestoreShop rebuilds a stored shop at its persisted version.
func RestoreShop(id, ownerID kernel.UUID, name string, position *kernel.GeoPoint, version int) (*Shop, error) {
	s := &Shop{version: version, guard: guard.NewConstructorGuard()}

	errOwner := ownerID.Validate()
	if errOwner != nil {
		errOwner = errs.NewValueIsRequiredErrorWithCause("owner id", errOwner)
	}

	if err := errors.Join(id.Validate(), errOwner, validateShopName(name), validatePosition(position)); err != nil {
		return nil, err
	}

	s.id = id
	s.ownerID = ownerID
	s.name = name
	s.position = position
	return s, nil
}

// Validate checks that the shop was built by NewShop or RestoreShop.
func (s *Shop) Validate() error {
	if s == nil {
		return ErrShopIsNotConstructed
	}
	return s.guard.Validate(ErrShopIsNotConstructed)
}

// ID returns the shop identifier.
func (s *Shop) ID() kernel.UUID {
	return s.id
}

// OwnerID returns the shopkeeper who owns the shop.
func (s *Shop) OwnerID() kernel.UUID {
	return s.ownerID
}

// Name returns the display name.
func (s *Shop) Name() string {
	return s.name
}

// Position returns where orders are picked up, or nil if the shop never set it.
func (s *Shop) Position() *kernel.GeoPoint {
	return s.position
}

// Version returns the optimistic concurrency version the shop was loaded with.
func (s *Shop) Version() int {
	return s.version
}

// IncrementVersion is called by the repository after a successful conditional write.
func (s *Shop) IncrementVersion() {
	s.version++
}

// IsOwnedBy reports whether userID owns the shop.
//
// Example:
//
//	if !shop.IsOwnedBy(actor.ID()) {
//	    return errs.NewAccessDeniedError("update shop")
//	}
func (s *Shop) IsOwnedBy(userID kernel.UUID) bool {
	return s.ownerID.IsEqual(userID)
}

// Update renames the shop and moves it. A nil position keeps the current one.
func (s *Shop) Update(name string, position *kernel.GeoPoint) error {
	if err := errors.Join(validateShopName(name), validatePosition(position)); err != nil {
		return err
	}
	s.name = name
	if position != nil {
		p := *position
		s.position = &p
	}
	return nil
}

func validateShopName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errs.NewValueIsRequiredError("shop name")
	}
	return nil
}

func validatePosition(position *kernel.GeoPoint) error {
	if position == nil {
		return nil
	}
	return position.Validate()
}
