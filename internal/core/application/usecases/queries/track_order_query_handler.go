package queries

import (
	"context"
	"errors"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TrackOrderQueryHandler reads one order together with its shop and assigned agent.
//
// Example:
//
//	query, _ := NewTrackOrderQuery(actor, orderID)
//	tracking, err := handler.Handle(ctx, query)
//	if err == nil && tracking.Agent != nil {
//		fmt.Println(tracking.Agent.Position)
//	}
type TrackOrderQueryHandler struct {
	db *gorm.DB
}

// NewTrackOrderQueryHandler creates a handler reading through db.
func NewTrackOrderQueryHandler(db *gorm.DB) TrackOrderQueryHandler {
	return TrackOrderQueryHandler{db: db}
}

// Handle returns ObjectNotFoundError for an unknown order and AccessDeniedError when the
// caller is not allowed to see it.
func (h TrackOrderQueryHandler) Handle(ctx context.Context, query TrackOrderQuery) (TrackingView, error) {
	if err := query.Validate(); err != nil {
		return TrackingView{}, err
	}

	orders, err := selectOrders(ctx, h.db, "WHERE id = ?", query.orderID.Bytes())
	if err != nil {
		return TrackingView{}, err
	}
	if len(orders) == 0 {
		return TrackingView{}, errs.NewObjectNotFoundError("order", query.orderID.String())
	}
	o := orders[0]

	if !canTrack(query.actor, o) {
		return TrackingView{}, errs.NewAccessDeniedErrorWithCause("track order",
			errors.New("only the customer, the assigned agent or an admin may track this order"))
	}

	view := TrackingView{Order: o}
	if view.Shop, err = h.shop(ctx, o.ShopID); err != nil {
		return TrackingView{}, err
	}
	if o.DeliveryAgentID != nil {
		if view.Agent, err = h.agent(ctx, *o.DeliveryAgentID); err != nil {
			return TrackingView{}, err
		}
	}
	return view, nil
}

func canTrack(actor kernel.Actor, o OrderView) bool {
	switch actor.Role() {
	case kernel.RoleAdmin:
		return true
	case kernel.RoleCustomer:
		return o.CustomerID.IsEqual(actor.ID())
	case kernel.RoleDeliveryAgent:
		return o.DeliveryAgentID != nil && o.DeliveryAgentID.IsEqual(actor.ID())
	default:
		return false
	}
}

func (h TrackOrderQueryHandler) shop(ctx context.Context, id kernel.UUID) (*ShopView, error) {
	shops, err := selectShops(ctx, h.db, "WHERE id = ?", id.Bytes())
	if err != nil || len(shops) == 0 {
		return nil, err
	}
	return &shops[0], nil
}

type agentRow struct {
	ID          uuid.UUID
	Name        string
	Phone       string
	PositionLat *float64
	PositionLng *float64
}

func (h TrackOrderQueryHandler) agent(ctx context.Context, id kernel.UUID) (*AgentView, error) {
	var rows []agentRow
	err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			name,
			phone,
			position_lat,
			position_lng
		FROM delivery_agents
		WHERE id = ?
	`, id.Bytes()).Scan(&rows).Error
	if err != nil || len(rows) == 0 {
		return nil, err
	}

	position, err := optionalGeoPoint(rows[0].PositionLat, rows[0].PositionLng)
	if err != nil {
		return nil, err
	}
	return &AgentView{ID: id, Name: rows[0].Name, Phone: rows[0].Phone, Position: position}, nil
}
