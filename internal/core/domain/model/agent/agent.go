package agent

import (
	"errors"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

var (
	// ErrNameIsRequired is returned when an agent is created without a name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrAgentIsNotConstructed is returned when using an improperly initialized Agent.
	ErrAgentIsNotConstructed = errors.New("Agent must be created via NewAgent or RestoreAgent constructor")
)

// Agent is a delivery agent competing for ready orders.
type Agent struct {
	// id uniquely identifies the agent; it equals the agent's user id
	id kernel.UUID
	// name and phone are shown to the customer when tracking an order
	name  string
	phone string
	// isOnline is toggled by the agent
	isOnline bool
	// isAvailable is false while the agent holds an active delivery
	isAvailable bool
	// position is the last reported location, nil if never reported
	position *kernel.GeoPoint
	// version is the optimistic concurrency token
	version int
	// guard ensures the agent was properly constructed
	guard guard.ConstructorGuard
}

// NewAgent creates an offline, available agent.
func NewAgent(id kernel.UUID, name, phone string) (*Agent, error) {
	return RestoreAgent(id, name, phone, false, true, nil, 0)
}

// RestoreAgent rebuilds an agent from storage.
func RestoreAgent(
	id kernel.UUID,
	name string,
	phone string,
	isOnline bool,
	isAvailable bool,
	position *kernel.GeoPoint,
	version int,
) (*Agent, error) {
	a := &Agent{
		phone:       phone,
		isOnline:    isOnline,
		isAvailable: isAvailable,
		version:     version,
		guard:       guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		a.setID(id),
		a.setName(name),
		a.setPosition(position),
	); err != nil {
		return nil, err
	}

	return a, nil
}

// IsEqual reports whether other is the same agent. Agents are compared by ID only,
// so two snapshots of one agent taken at different versions are equal.
func (a *Agent) IsEqual(other *Agent) bool {
	if other == nil {
		return false
	}
	return a.id.IsEqual(other.id)
}

// Validate checks that the agent was built by NewAgent or RestoreAgent.
//
// Example:
//
//	var a agent.Agent // zero value
//	if err := a.Validate(); err != nil {
//	    // ErrAgentIsNotConstructed
//	}
func (a *Agent) Validate() error {
	if a == nil {
		return ErrAgentIsNotConstructed
	}
	return a.guard.Validate(ErrAgentIsNotConstructed)
}

// ID returns the agent's identifier, which is also the agent's user ID in tokens.
//
// Example:
//
//	a, _ := NewAgent(actor.ID(), "Bo", "+4915100000")
//	a.ID().IsEqual(actor.ID()) // true
func (a *Agent) ID() kernel.UUID {
	return a.id
}

// Name returns the display name customers see while tracking an order.
func (a *Agent) Name() string {
	return a.name
}

// Phone returns the contact number shown next to Name. It may be empty.
func (a *Agent) Phone() string {
	return a.phone
}

// IsOnline reports whether the agent is working. Offline agents keep their active
// delivery but cannot claim another one.
//
// Example:
//
//	a, _ := NewAgent(id, "Bo", "")
//	a.IsOnline() // false until SetOnline(true)
func (a *Agent) IsOnline() bool {
	return a.isOnline
}

// IsAvailable reports whether the agent holds no active delivery. It turns false in
// TakeOrder and back to true in CompleteDelivery.
func (a *Agent) IsAvailable() bool {
	return a.isAvailable
}

// Position returns the last reported location, or nil if the agent never reported one.
// The returned point is a copy.
func (a *Agent) Position() *kernel.GeoPoint {
	return a.position
}

// Version returns the optimistic concurrency token the repository compares on update.
func (a *Agent) Version() int {
	return a.version
}

// IncrementVersion is called by the repository after a successful conditional write.
func (a *Agent) IncrementVersion() {
	a.version++
}

// ValidateCanTakeOrder checks that the agent is online and holds no active delivery.
func (a *Agent) ValidateCanTakeOrder() error {
	if err := a.Validate(); err != nil {
		return err
	}
	if !a.isOnline {
		return errs.NewStateConflictErrorWithCause("delivery agent", errors.New("agent is offline"))
	}
	if !a.isAvailable {
		return errs.NewStateConflictErrorWithCause("delivery agent", errors.New("agent is not available"))
	}
	return nil
}

// TakeOrder marks the agent busy. The caller assigns the order in the same unit of work.
func (a *Agent) TakeOrder() error {
	if err := a.ValidateCanTakeOrder(); err != nil {
		return err
	}
	a.isAvailable = false
	return nil
}

// CompleteDelivery makes the agent available again after the held order left the active states.
func (a *Agent) CompleteDelivery() {
	a.isAvailable = true
}

// SetOnline toggles whether the agent is working.
func (a *Agent) SetOnline(online bool) {
	a.isOnline = online
}

// UpdatePosition stores the position reported by the location collaborator.
func (a *Agent) UpdatePosition(position kernel.GeoPoint) error {
	if err := position.Validate(); err != nil {
		return err
	}
	a.position = &position
	return nil
}

func (a *Agent) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	a.id = id
	return nil
}

func (a *Agent) setName(name string) error {
	if name == "" {
		return ErrNameIsRequired
	}
	a.name = name
	return nil
}

func (a *Agent) setPosition(position *kernel.GeoPoint) error {
	if position == nil {
		a.position = nil
		return nil
	}
	if err := position.Validate(); err != nil {
		return err
	}
	p := *position
	a.position = &p
	return nil
}
