package commands

import (
	"errors"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/guard"
)

var (
	ErrSetAgentOnlineCommandIsNotConstructed = errors.New(
		"SetAgentOnlineCommand must be created via NewSetAgentOnlineCommand constructor")
	ErrUpdateAgentLocationCommandIsNotConstructed = errors.New(
		"UpdateAgentLocationCommand must be created via NewUpdateAgentLocationCommand constructor")
)

// SetAgentOnlineCommand toggles whether the acting delivery agent takes new work.
// Going offline does not release orders the agent already holds.
//
// Example:
//
//	cmd, err := NewSetAgentOnlineCommand(actor, true)
//	if err != nil {
//		return err // AccessDenied unless actor is a delivery agent
//	}
//	a, err := handler.HandleSetOnline(ctx, cmd)
type SetAgentOnlineCommand struct {
	actor  kernel.Actor
	online bool

	guard guard.ConstructorGuard
}

// NewSetAgentOnlineCommand returns an AccessDeniedError unless actor is a delivery agent.
func NewSetAgentOnlineCommand(actor kernel.Actor, online bool) (SetAgentOnlineCommand, error) {
	if err := requireRole(actor, "change availability", kernel.RoleDeliveryAgent); err != nil {
		return SetAgentOnlineCommand{}, err
	}
	return SetAgentOnlineCommand{actor: actor, online: online, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrSetAgentOnlineCommandIsNotConstructed otherwise.
func (c SetAgentOnlineCommand) Validate() error {
	return c.guard.Validate(ErrSetAgentOnlineCommandIsNotConstructed)
}

// Actor returns the agent whose availability changes.
func (c SetAgentOnlineCommand) Actor() kernel.Actor {
	return c.actor
}

// Online is the requested availability.
func (c SetAgentOnlineCommand) Online() bool {
	return c.online
}

// UpdateAgentLocationCommand stores the position the acting agent reports.
//
// Example:
//
//	cmd, err := NewUpdateAgentLocationCommand(actor, 52.52, 13.405)
//	if err != nil {
//		return err // AccessDenied, or ValueIsOutOfRange for lat 91
//	}
//	a, err := handler.HandleUpdateLocation(ctx, cmd)
type UpdateAgentLocationCommand struct {
	actor    kernel.Actor
	position kernel.GeoPoint

	guard guard.ConstructorGuard
}

// NewUpdateAgentLocationCommand checks the role first, then the coordinates, so a
// customer sending a bad point sees AccessDenied rather than a validation error.
func NewUpdateAgentLocationCommand(actor kernel.Actor, lat, lng float64) (UpdateAgentLocationCommand, error) {
	if err := requireRole(actor, "update location", kernel.RoleDeliveryAgent); err != nil {
		return UpdateAgentLocationCommand{}, err
	}
	position, err := kernel.NewGeoPoint(lat, lng)
	if err != nil {
		return UpdateAgentLocationCommand{}, err
	}
	return UpdateAgentLocationCommand{actor: actor, position: position, guard: guard.NewConstructorGuard()}, nil
}

// Validate reports ErrUpdateAgentLocationCommandIsNotConstructed for a zero value.
func (c UpdateAgentLocationCommand) Validate() error {
	return c.guard.Validate(ErrUpdateAgentLocationCommandIsNotConstructed)
}

// Actor returns the reporting agent.
func (c UpdateAgentLocationCommand) Actor() kernel.Actor {
	return c.actor
}

// Position is the validated reported point.
func (c UpdateAgentLocationCommand) Position() kernel.GeoPoint {
	return c.position
}
