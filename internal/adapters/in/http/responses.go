package http

import (
	"time"

	"marketplace/internal/core/application/usecases/commands"
	"marketplace/internal/core/application/usecases/queries"
	"marketplace/internal/core/domain/model/agent"
	"marketplace/internal/core/domain/model/catalog"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
)

// Money is rendered as a decimal string with two places, never as a float.
type itemResponse struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
	Subtotal  string `json:"subtotal"`
}

type paymentResponse struct {
	TransactionID string    `json:"transactionId"`
	Status        string    `json:"status"`
	SettledAt     time.Time `json:"settledAt"`
}

// orderResponse is the order as every order endpoint returns it.
type orderResponse struct {
	ID              string           `json:"id"`
	CustomerID      string           `json:"customerId"`
	ShopID          string           `json:"shopId"`
	DeliveryAgentID *string          `json:"deliveryAgentId"`
	Items           []itemResponse   `json:"items"`
	Total           string           `json:"total"`
	DeliveryAddress string           `json:"deliveryAddress"`
	Status          string           `json:"status"`
	IsPaid          bool             `json:"isPaid"`
	PaidAt          *time.Time       `json:"paidAt"`
	PaymentResult   *paymentResponse `json:"paymentResult"`
	CreatedAt       time.Time        `json:"createdAt"`
	// Only agent listings fill these.
	Shop     *shopResponse     `json:"shop,omitempty"`
	Customer *customerResponse `json:"customer,omitempty"`
}

type customerResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

type pointResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type shopResponse struct {
	ID       string         `json:"id"`
	OwnerID  string         `json:"ownerId"`
	Name     string         `json:"name"`
	Position *pointResponse `json:"position"`
}

type productResponse struct {
	ID                string `json:"id"`
	ShopID            string `json:"shopId"`
	ShopName          string `json:"shopName,omitempty"`
	Name              string `json:"name"`
	Price             string `json:"price"`
	QuantityAvailable int    `json:"quantityAvailable"`
}

// productPageResponse mirrors queries.ProductPage.
type productPageResponse struct {
	Items []productResponse `json:"items"`
	Total int               `json:"total"`
	Page  int               `json:"page"`
	Pages int               `json:"pages"`
}

type agentResponse struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Phone    string         `json:"phone"`
	Position *pointResponse `json:"position"`
}

type trackingResponse struct {
	Order orderResponse  `json:"order"`
	Shop  *shopResponse  `json:"shop"`
	Agent *agentResponse `json:"agent"`
}

type cartLineResponse struct {
	ProductID string `json:"productId"`
	ShopID    string `json:"shopId"`
	Name      string `json:"name"`
	UnitPrice string `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal"`
	Available int    `json:"available"`
}

type cartResponse struct {
	Lines []cartLineResponse `json:"lines"`
	Total string             `json:"total"`
}

type paymentAckResponse struct {
	OrderID string    `json:"orderId"`
	TaskID  string    `json:"taskId"`
	DueAt   time.Time `json:"dueAt"`
	Message string    `json:"message"`
}

type agentStatusResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	IsOnline    bool           `json:"isOnline"`
	IsAvailable bool           `json:"isAvailable"`
	Position    *pointResponse `json:"position"`
}

func optionalID(id *kernel.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func toPoint(p *kernel.GeoPoint) *pointResponse {
	if p == nil {
		return nil
	}
	return &pointResponse{Lat: p.Lat(), Lng: p.Lng()}
}

// fromOrder renders an aggregate returned by a command. Commands never attach shop or customer.
func fromOrder(o *order.Order) orderResponse {
	items := make([]itemResponse, 0, len(o.Items()))
	for _, item := range o.Items() {
		items = append(items, itemResponse{
			ProductID: item.ProductID().String(),
			Name:      item.Name(),
			Quantity:  item.Quantity(),
			UnitPrice: item.UnitPrice().String(),
			Subtotal:  item.Subtotal().String(),
		})
	}

	var payment *paymentResponse
	if r := o.PaymentResult(); r != nil {
		payment = &paymentResponse{TransactionID: r.TransactionID(), Status: r.Status(), SettledAt: r.SettledAt()}
	}

	return orderResponse{
		ID:              o.ID().String(),
		CustomerID:      o.CustomerID().String(),
		ShopID:          o.ShopID().String(),
		DeliveryAgentID: optionalID(o.DeliveryAgentID()),
		Items:           items,
		Total:           o.Total().String(),
		DeliveryAddress: o.DeliveryAddress(),
		Status:          o.Status().String(),
		IsPaid:          o.IsPaid(),
		PaidAt:          o.PaidAt(),
		PaymentResult:   payment,
		CreatedAt:       o.CreatedAt(),
	}
}

func fromOrders(orders []*order.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, fromOrder(o))
	}
	return out
}

// fromOrderView renders a read model, including the shop and customer when the query attached them.
func fromOrderView(v queries.OrderView) orderResponse {
	items := make([]itemResponse, 0, len(v.Items))
	for _, item := range v.Items {
		items = append(items, itemResponse{
			ProductID: item.ProductID.String(),
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.String(),
			Subtotal:  item.Subtotal.String(),
		})
	}

	var payment *paymentResponse
	if p := v.Payment; p != nil {
		payment = &paymentResponse{TransactionID: p.TransactionID, Status: p.Status, SettledAt: p.SettledAt}
	}

	resp := orderResponse{
		ID:              v.ID.String(),
		CustomerID:      v.CustomerID.String(),
		ShopID:          v.ShopID.String(),
		DeliveryAgentID: optionalID(v.DeliveryAgentID),
		Items:           items,
		Total:           v.Total.String(),
		DeliveryAddress: v.DeliveryAddress,
		Status:          v.Status.String(),
		IsPaid:          v.IsPaid,
		PaidAt:          v.PaidAt,
		PaymentResult:   payment,
		CreatedAt:       v.CreatedAt,
	}
	if v.Shop != nil {
		shop := fromShopView(*v.Shop)
		resp.Shop = &shop
	}
	if c := v.Customer; c != nil {
		resp.Customer = &customerResponse{ID: c.ID.String(), Name: c.Name, Address: c.Address}
	}
	return resp
}

func fromOrderViews(views []queries.OrderView) []orderResponse {
	out := make([]orderResponse, 0, len(views))
	for _, v := range views {
		out = append(out, fromOrderView(v))
	}
	return out
}

func fromTracking(v queries.TrackingView) trackingResponse {
	resp := trackingResponse{Order: fromOrderView(v.Order)}
	if v.Shop != nil {
		shop := fromShopView(*v.Shop)
		resp.Shop = &shop
	}
	if a := v.Agent; a != nil {
		resp.Agent = &agentResponse{ID: a.ID.String(), Name: a.Name, Phone: a.Phone, Position: toPoint(a.Position)}
	}
	return resp
}

func fromCart(v queries.CartView) cartResponse {
	lines := make([]cartLineResponse, 0, len(v.Lines))
	for _, l := range v.Lines {
		lines = append(lines, cartLineResponse{
			ProductID: l.ProductID.String(),
			ShopID:    l.ShopID.String(),
			Name:      l.Name,
			UnitPrice: l.UnitPrice.String(),
			Quantity:  l.Quantity,
			Subtotal:  l.Subtotal.String(),
			Available: l.Available,
		})
	}
	return cartResponse{Lines: lines, Total: v.Total.String()}
}

func fromPaymentAck(ack commands.PaymentAck) paymentAckResponse {
	return paymentAckResponse{
		OrderID: ack.OrderID.String(),
		TaskID:  ack.TaskID.String(),
		DueAt:   ack.DueAt,
		Message: ack.Message,
	}
}

// fromAgent reports the agent's own availability after a presence change.
func fromAgent(a *agent.Agent) agentStatusResponse {
	return agentStatusResponse{
		ID:          a.ID().String(),
		Name:        a.Name(),
		IsOnline:    a.IsOnline(),
		IsAvailable: a.IsAvailable(),
		Position:    toPoint(a.Position()),
	}
}

func fromShop(s *catalog.Shop) shopResponse {
	return shopResponse{
		ID:       s.ID().String(),
		OwnerID:  s.OwnerID().String(),
		Name:     s.Name(),
		Position: toPoint(s.Position()),
	}
}

func fromShopView(v queries.ShopView) shopResponse {
	return shopResponse{
		ID:       v.ID.String(),
		OwnerID:  v.OwnerID.String(),
		Name:     v.Name,
		Position: toPoint(v.Position),
	}
}

func fromProduct(p *catalog.Product) productResponse {
	return productResponse{
		ID:                p.ID().String(),
		ShopID:            p.ShopID().String(),
		Name:              p.Name(),
		Price:             p.Price().String(),
		QuantityAvailable: p.QuantityAvailable(),
	}
}

func fromProductView(v queries.ProductView) productResponse {
	return productResponse{
		ID:                v.ID.String(),
		ShopID:            v.ShopID.String(),
		ShopName:          v.ShopName,
		Name:              v.Name,
		Price:             v.Price.String(),
		QuantityAvailable: v.QuantityAvailable,
	}
}

func fromProductPage(page queries.ProductPage) productPageResponse {
	items := make([]productResponse, 0, len(page.Items))
	for _, v := range page.Items {
		items = append(items, fromProductView(v))
	}
	return productPageResponse{Items: items, Total: page.Total, Page: page.Page, Pages: page.Pages}
}
