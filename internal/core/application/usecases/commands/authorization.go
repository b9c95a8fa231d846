package commands

import (
	"fmt"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
)

// requireRole rejects actors whose role is not among roles.
func requireRole(actor kernel.Actor, action string, roles ...kernel.Role) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	for _, r := range roles {
		if actor.Is(r) {
			return nil
		}
	}
	return errs.NewAccessDeniedErrorWithCause(action, fmt.Errorf("role %s is not allowed", actor.Role()))
}
