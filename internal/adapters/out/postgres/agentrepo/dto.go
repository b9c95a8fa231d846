// Package agentrepo persists delivery agents: their presence, availability and last position.
package agentrepo

import (
	"marketplace/internal/core/domain/model/agent"
	"marketplace/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// AgentDTO is the delivery_agents row. The position columns are null until the agent
// reports a location.
type AgentDTO struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey"`
	Name        string      `gorm:"type:varchar(255);not null"`
	Phone       string      `gorm:"type:varchar(32);not null;default:''"`
	IsOnline    bool        `gorm:"not null;default:false"`
	IsAvailable bool        `gorm:"not null;default:true"`
	Position    PositionDTO `gorm:"embedded;embeddedPrefix:position_"`
	Version     int         `gorm:"not null;default:0"`
}

func (AgentDTO) TableName() string {
	return "delivery_agents"
}

// PositionDTO embeds the last reported position. Both columns are NULL until the agent reports one.
type PositionDTO struct {
	Lat *float64
	Lng *float64
}

func fromDomain(a *agent.Agent) AgentDTO {
	var position PositionDTO
	if p := a.Position(); p != nil {
		lat, lng := p.Lat(), p.Lng()
		position = PositionDTO{Lat: &lat, Lng: &lng}
	}

	return AgentDTO{
		ID:          a.ID().Bytes(),
		Name:        a.Name(),
		Phone:       a.Phone(),
		IsOnline:    a.IsOnline(),
		IsAvailable: a.IsAvailable(),
		Position:    position,
		Version:     a.Version(),
	}
}

func toDomain(dto AgentDTO) (*agent.Agent, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var position *kernel.GeoPoint
	if dto.Position.Lat != nil && dto.Position.Lng != nil {
		p, posErr := kernel.NewGeoPoint(*dto.Position.Lat, *dto.Position.Lng)
		if posErr != nil {
			return nil, posErr
		}
		position = &p
	}

	return agent.RestoreAgent(id, dto.Name, dto.Phone, dto.IsOnline, dto.IsAvailable, position, dto.Version)
}
