// Package http exposes the marketplace over a JSON API built on echo.
package http

import (
	"context"
	"net/http"

	"marketplace/internal/core/application/usecases/commands"
	"marketplace/internal/core/application/usecases/queries"
	"marketplace/internal/core/domain/model/agent"
	"marketplace/internal/core/domain/model/catalog"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

type (
	CheckoutHandler interface {
		Handle(ctx context.Context, command commands.CheckoutCommand) ([]*order.Order, error)
	}

	CartHandler interface {
		HandleAdd(ctx context.Context, command commands.AddCartItemCommand) error
		HandleRemove(ctx context.Context, command commands.RemoveCartItemCommand) error
		HandleClear(ctx context.Context, command commands.ClearCartCommand) error
	}

	OrderStatusHandler interface {
		Handle(ctx context.Context, command commands.ChangeOrderStatusCommand) (*order.Order, error)
	}

	DispatchHandler interface {
		HandleClaim(ctx context.Context, command commands.ClaimOrderCommand) (*order.Order, error)
		HandleAssign(ctx context.Context, command commands.AssignAgentCommand) (*order.Order, error)
	}

	PaymentHandler interface {
		Handle(ctx context.Context, command commands.RequestPaymentCommand) (commands.PaymentAck, error)
	}

	AgentPresenceHandler interface {
		HandleSetOnline(ctx context.Context, command commands.SetAgentOnlineCommand) (*agent.Agent, error)
		HandleUpdateLocation(ctx context.Context, command commands.UpdateAgentLocationCommand) (*agent.Agent, error)
	}

	CatalogHandler interface {
		HandleCreateShop(ctx context.Context, command commands.CreateShopCommand) (*catalog.Shop, error)
		HandleUpdateShop(ctx context.Context, command commands.UpdateShopCommand) (*catalog.Shop, error)
		HandleCreateProduct(ctx context.Context, command commands.CreateProductCommand) (*catalog.Product, error)
		HandleUpdateProduct(ctx context.Context, command commands.UpdateProductCommand) (*catalog.Product, error)
		HandleDeleteProduct(ctx context.Context, command commands.DeleteProductCommand) error
		HandleDeleteShop(ctx context.Context, command commands.DeleteShopCommand) error
	}

	OrderListHandler interface {
		HandleMine(ctx context.Context, query queries.ListMyOrdersQuery) ([]queries.OrderView, error)
		HandleShop(ctx context.Context, query queries.ListShopOrdersQuery) ([]queries.OrderView, error)
		HandleAvailable(ctx context.Context, query queries.ListAvailableOrdersQuery) ([]queries.OrderView, error)
		HandleDeliveries(ctx context.Context, query queries.ListMyDeliveriesQuery) ([]queries.OrderView, error)
		HandleAll(ctx context.Context, query queries.ListAllOrdersQuery) ([]queries.OrderView, error)
	}

	TrackOrderHandler interface {
		Handle(ctx context.Context, query queries.TrackOrderQuery) (queries.TrackingView, error)
	}

	CartQueryHandler interface {
		Handle(ctx context.Context, query queries.GetCartQuery) (queries.CartView, error)
	}

	CatalogQueryHandler interface {
		HandleProducts(ctx context.Context, query queries.ListProductsQuery) (queries.ProductPage, error)
		HandleProduct(ctx context.Context, query queries.GetProductQuery) (queries.ProductView, error)
		HandleShops(ctx context.Context, query queries.ListShopsQuery) ([]queries.ShopView, error)
		HandleShop(ctx context.Context, query queries.GetShopQuery) (queries.ShopView, error)
	}
)

// Handlers are the use cases the server dispatches to.
type Handlers struct {
	Checkout      CheckoutHandler
	Cart          CartHandler
	OrderStatus   OrderStatusHandler
	Dispatch      DispatchHandler
	Payment       PaymentHandler
	AgentPresence AgentPresenceHandler
	Catalog       CatalogHandler

	OrderList    OrderListHandler
	TrackOrder   TrackOrderHandler
	CartQuery    CartQueryHandler
	CatalogQuery CatalogQueryHandler
}

// Server translates HTTP requests into commands and queries. Every endpoint resolves the
// actor, builds the command or query, and returns errors unchanged to the error handler.
type Server struct {
	h Handlers
}

// NewServer wraps h. Every handler in h must be set.
func NewServer(h Handlers) *Server {
	return &Server{h: h}
}

type statusRequest struct {
	Status string `json:"status"`
}

type assignAgentRequest struct {
	AgentID string `json:"agentId"`
}

type paymentRequest struct {
	OrderID string `json:"orderId"`
}

type addCartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type availabilityRequest struct {
	IsOnline *bool `json:"isOnline"`
}

type locationRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type shopRequest struct {
	Name     string           `json:"name"`
	Position *locationRequest `json:"position"`
}

type productRequest struct {
	Name              string `json:"name"`
	Price             string `json:"price"`
	QuantityAvailable *int   `json:"quantityAvailable"`
}

// Checkout handles POST /api/v1/orders/checkout.
func (s *Server) Checkout(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	cmd, err := commands.NewCheckoutCommand(actor)
	if err != nil {
		return err
	}

	orders, err := s.h.Checkout.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, fromOrders(orders))
}

// ListMyOrders handles GET /api/v1/orders/mine.
func (s *Server) ListMyOrders(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	q, err := queries.NewListMyOrdersQuery(actor)
	if err != nil {
		return err
	}
	views, err := s.h.OrderList.HandleMine(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, fromOrderViews(views))
}

// ListShopOrders handles GET /api/v1/orders/shop. Admins pass ?shopId=.
func (s *Server) ListShopOrders(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var raw *openapi_types.UUID
	if err := runtime.BindQueryParameter("form", true, false, "shopId", c.QueryParams(), &raw); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("shopId", err)
	}
	var shopID *kernel.UUID
	if raw != nil {
		id, err := kernel.UUIDFromBytes(raw[:])
		if err != nil {
			return errs.NewValueIsInvalidErrorWithCause("shopId", err)
		}
		shopID = &id
	}
	q, err := queries.NewListShopOrdersQuery(actor, shopID)
	if err != nil {
		return err
	}
	views, err := s.h.OrderList.HandleShop(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, fromOrderViews(views))
}

// ListAvailableOrders handles GET /api/v1/orders/available.
func (s *Server) ListAvailableOrders(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	q, err := queries.NewListAvailableOrdersQuery(actor)
	if err != nil {
		return err
	}
	views, err := s.h.OrderList.HandleAvailable(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, fromOrderViews(views))
}

// ListMyDeliveries handles GET /api/v1/orders/deliveries.
func (s *Server) ListMyDeliveries(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	q, err := queries.NewListMyDeliveriesQuery(actor)
	if err != nil {
		return err
	}
	views, err := s.h.OrderList.HandleDeliveries(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, fromOrderViews(views))
}

// ListAllOrders handles GET /api/v1/orders. Query parameters are filters.
func (s *Server) ListAllOrders(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	filter, err := queries.ParseOrderFilter(firstValues(c))
	if err != nil {
		return err
	}
	q, err := queries.NewListAllOrdersQuery(actor, filter)
	if err != nil {
		return err
	}
	views, err := s.h.OrderList.HandleAll(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, fromOrderViews(views))
}

// ClaimOrder handles PATCH /api/v1/orders/:id/claim.
func (s *Server) ClaimOrder(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	orderID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	cmd, err := commands.NewClaimOrderCommand(actor, orderID)
	if err != nil {
		return err
	}
	o, err := s.h.Dispatch.HandleClaim(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, fromOrder(o))
}

// AssignAgent handles PATCH /api/v1/orders/:id/assign-agent.
func (s *Server) AssignAgent(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	orderID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	var req assignAgentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	agentID, err := bodyUUID("agentId", req.AgentID)
	if err != nil {
		return err
	}
	cmd, err := commands.NewAssignAgentCommand(actor, orderID, agentID)
	if err != nil {
		return err
	}
	o, err := s.h.Dispatch.HandleAssign(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, fromOrder(o))
}

// UpdateOrderStatus handles PATCH /api/v1/orders/:id/status.
func (s *Server) UpdateOrderStatus(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	orderID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	var req statusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	cmd, err := commands.NewChangeOrderStatusCommand(actor, orderID, req.Status)
	if err != nil {
		return err
	}
	o, err := s.h.OrderStatus.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, fromOrder(o))
}

// TrackOrder handles GET /api/v1/orders/:id/track.
func (s *Server) TrackOrder(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	orderID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	q, err := queries.NewTrackOrderQuery(actor, orderID)
	if err != nil {
		return err
	}
	view, err := s.h.TrackOrder.Handle(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, fromTracking(view))
}

// RequestPayment handles POST /api/v1/payments. Settlement happens later, so the
// response is 202.
func (s *Server) RequestPayment(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req paymentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	orderID, err := bodyUUID("orderId", req.OrderID)
	if err != nil {
		return err
	}
	cmd, err := commands.NewRequestPaymentCommand(actor, orderID)
	if err != nil {
		return err
	}
	ack, err := s.h.Payment.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return success(c, http.StatusAccepted, fromPaymentAck(ack))
}

// GetCart handles GET /api/v1/cart.
func (s *Server) GetCart(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	q, err := queries.NewGetCartQuery(actor)
	if err != nil {
		return err
	}
	view, err := s.h.CartQuery.Handle(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, fromCart(view))
}

// AddCartItem handles POST /api/v1/cart and responds with the updated cart.
func (s *Server) AddCartItem(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req addCartItemRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	productID, err := bodyUUID("productId", req.ProductID)
	if err != nil {
		return err
	}
	cmd, err := commands.NewAddCartItemCommand(actor, productID, req.Quantity)
	if err != nil {
		return err
	}
	if err := s.h.Cart.HandleAdd(c.Request().Context(), cmd); err != nil {
		return err
	}
	return s.GetCart(c)
}

// RemoveCartItem handles DELETE /api/v1/cart/:productId.
func (s *Server) RemoveCartItem(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	productID, err := pathUUID(c, "productId")
	if err != nil {
		return err
	}
	cmd, err := commands.NewRemoveCartItemCommand(actor, productID)
	if err != nil {
		return err
	}
	if err := s.h.Cart.HandleRemove(c.Request().Context(), cmd); err != nil {
		return err
	}
	return s.GetCart(c)
}

// ClearCart handles DELETE /api/v1/cart.
func (s *Server) ClearCart(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	cmd, err := commands.NewClearCartCommand(actor)
	if err != nil {
		return err
	}
	if err := s.h.Cart.HandleClear(c.Request().Context(), cmd); err != nil {
		return err
	}
	return success(c, http.StatusOK, cartResponse{Lines: []cartLineResponse{}, Total: kernel.ZeroMoney().String()})
}

// SetAvailability handles PATCH /api/v1/agents/me/availability.
func (s *Server) SetAvailability(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req availabilityRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.IsOnline == nil {
		return errs.NewValueIsRequiredError("isOnline")
	}
	cmd, err := commands.NewSetAgentOnlineCommand(actor, *req.IsOnline)
	if err != nil {
		return err
	}
	a, err := s.h.AgentPresence.HandleSetOnline(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, fromAgent(a))
}

// UpdateLocation handles PATCH /api/v1/agents/me/location.
func (s *Server) UpdateLocation(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req locationRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Lat == nil || req.Lng == nil {
		return errs.NewValueIsRequiredError("lat and lng")
	}
	cmd, err := commands.NewUpdateAgentLocationCommand(actor, *req.Lat, *req.Lng)
	if err != nil {
		return err
	}
	a, err := s.h.AgentPresence.HandleUpdateLocation(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, fromAgent(a))
}

// ListProducts handles GET /api/v1/products. Query parameters are filters and paging.
func (s *Server) ListProducts(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	filter, err := queries.ParseProductFilter(firstValues(c))
	if err != nil {
		return err
	}
	q, err := queries.NewListProductsQuery(actor, filter)
	if err != nil {
		return err
	}
	page, err := s.h.CatalogQuery.HandleProducts(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, fromProductPage(page))
}

// GetProduct handles GET /api/v1/products/:id.
func (s *Server) GetProduct(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	productID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	q, err := queries.NewGetProductQuery(actor, productID)
	if err != nil {
		return err
	}
	view, err := s.h.CatalogQuery.HandleProduct(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, fromProductView(view))
}

// CreateProduct handles POST /api/v1/products.
func (s *Server) CreateProduct(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req productRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	price, err := kernel.MoneyFromString(req.Price)
	if err != nil {
		return errs.NewValueIsInvalidErrorWithCause("price", err)
	}
	if req.QuantityAvailable == nil {
		return errs.NewValueIsRequiredError("quantityAvailable")
	}
	cmd, err := commands.NewCreateProductCommand(actor, req.Name, price, *req.QuantityAvailable)
	if err != nil {
		return err
	}
	p, err := s.h.Catalog.HandleCreateProduct(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, fromProduct(p))
}

// UpdateProduct handles PUT /api/v1/products/:id. Stock is not editable.
func (s *Server) UpdateProduct(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	productID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	var req productRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	price, err := kernel.MoneyFromString(req.Price)
	if err != nil {
		return errs.NewValueIsInvalidErrorWithCause("price", err)
	}
	cmd, err := commands.NewUpdateProductCommand(actor, productID, req.Name, price)
	if err != nil {
		return err
	}
	p, err := s.h.Catalog.HandleUpdateProduct(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, fromProduct(p))
}

// DeleteProduct handles DELETE /api/v1/products/:id.
func (s *Server) DeleteProduct(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	productID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	cmd, err := commands.NewDeleteProductCommand(actor, productID)
	if err != nil {
		return err
	}
	if err := s.h.Catalog.HandleDeleteProduct(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListShops handles GET /api/v1/shops.
func (s *Server) ListShops(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	q, err := queries.NewListShopsQuery(actor)
	if err != nil {
		return err
	}
	views, err := s.h.CatalogQuery.HandleShops(c.Request().Context(), q)
	if err != nil {
		return err
	}
	out := make([]shopResponse, 0, len(views))
	for _, v := range views {
		out = append(out, fromShopView(v))
	}
	return success(c, http.StatusOK, out)
}

// GetShop handles GET /api/v1/shops/:id.
func (s *Server) GetShop(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	shopID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	q, err := queries.NewGetShopQuery(actor, shopID)
	if err != nil {
		return err
	}
	view, err := s.h.CatalogQuery.HandleShop(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, fromShopView(view))
}

// CreateShop handles POST /api/v1/shops.
func (s *Server) CreateShop(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req shopRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	position, err := req.position()
	if err != nil {
		return err
	}
	cmd, err := commands.NewCreateShopCommand(actor, req.Name, position)
	if err != nil {
		return err
	}
	shop, err := s.h.Catalog.HandleCreateShop(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, fromShop(shop))
}

// UpdateShop handles PUT /api/v1/shops/:id. An omitted position keeps the current one.
func (s *Server) UpdateShop(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	shopID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	var req shopRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	position, err := req.position()
	if err != nil {
		return err
	}
	cmd, err := commands.NewUpdateShopCommand(actor, &shopID, req.Name, position)
	if err != nil {
		return err
	}
	shop, err := s.h.Catalog.HandleUpdateShop(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, fromShop(shop))
}

// DeleteShop handles DELETE /api/v1/shops/:id.
func (s *Server) DeleteShop(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	shopID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	cmd, err := commands.NewDeleteShopCommand(actor, shopID)
	if err != nil {
		return err
	}
	if err := s.h.Catalog.HandleDeleteShop(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (r shopRequest) position() (*kernel.GeoPoint, error) {
	if r.Position == nil {
		return nil, nil //nolint:nilnil // no position given
	}
	if r.Position.Lat == nil || r.Position.Lng == nil {
		return nil, errs.NewValueIsRequiredError("position lat and lng")
	}
	p, err := kernel.NewGeoPoint(*r.Position.Lat, *r.Position.Lng)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func firstValues(c echo.Context) map[string]string {
	raw := make(map[string]string)
	for key, values := range c.QueryParams() {
		if len(values) > 0 {
			raw[key] = values[0]
		}
	}
	return raw
}

func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("request body", err)
	}
	return nil
}

func pathUUID(c echo.Context, name string) (kernel.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	parsed, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return parsed, nil
}

func bodyUUID(name, value string) (kernel.UUID, error) {
	if value == "" {
		return kernel.UUID{}, errs.NewValueIsRequiredError(name)
	}
	id, err := kernel.UUIDFromString(value)
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return id, nil
}
