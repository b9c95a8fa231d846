package commands

import (
	"context"

	"marketplace/internal/core/domain/model/agent"
	"marketplace/internal/core/domain/model/kernel"
)

// AgentPresenceCommandHandler records what the acting agent reports about themselves.
type AgentPresenceCommandHandler struct {
	uowFactory AgentUoWFactory
}

// NewAgentPresenceCommandHandler creates a handler that opens one unit of work per command.
func NewAgentPresenceCommandHandler(uowFactory AgentUoWFactory) *AgentPresenceCommandHandler {
	return &AgentPresenceCommandHandler{uowFactory: uowFactory}
}

// HandleSetOnline loads the acting agent, flips availability and persists it.
// The updated agent is returned so callers can echo the new state.
func (h *AgentPresenceCommandHandler) HandleSetOnline(ctx context.Context, command SetAgentOnlineCommand) (*agent.Agent, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}
	return h.update(ctx, command.Actor().ID(), func(a *agent.Agent) error {
		a.SetOnline(command.Online())
		return nil
	})
}

// HandleUpdateLocation stores the reported position on the acting agent.
//
// Example:
//
//	cmd, _ := NewUpdateAgentLocationCommand(actor, 52.52, 13.405)
//	a, err := handler.HandleUpdateLocation(ctx, cmd)
//	if err == nil {
//		fmt.Println(a.Position()) // GeoPoint(52.520000,13.405000)
//	}
func (h *AgentPresenceCommandHandler) HandleUpdateLocation(
	ctx context.Context,
	command UpdateAgentLocationCommand,
) (*agent.Agent, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}
	return h.update(ctx, command.Actor().ID(), func(a *agent.Agent) error {
		return a.UpdatePosition(command.Position())
	})
}

func (h *AgentPresenceCommandHandler) update(
	ctx context.Context,
	agentID kernel.UUID,
	change func(a *agent.Agent) error,
) (*agent.Agent, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	agentRepo := uow.AgentRepository()
	a, err := agentRepo.Get(ctx, agentID)
	if err != nil {
		return nil, err
	}

	if err = change(a); err != nil {
		return nil, err
	}
	if err = agentRepo.Update(ctx, a); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return a, nil
}
