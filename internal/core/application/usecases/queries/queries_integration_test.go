package queries_test

import (
	"context"
	"testing"
	"time"

	"marketplace/internal/adapters/out/postgres/agentrepo"
	"marketplace/internal/adapters/out/postgres/customerrepo"
	"marketplace/internal/adapters/out/postgres/orderrepo"
	"marketplace/internal/adapters/out/postgres/pgtest"
	"marketplace/internal/adapters/out/postgres/productrepo"
	"marketplace/internal/adapters/out/postgres/shoprepo"
	"marketplace/internal/core/application/usecases/queries"
	"marketplace/internal/core/domain/model/agent"
	"marketplace/internal/core/domain/model/catalog"
	"marketplace/internal/core/domain/model/customer"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
)

var testNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

type noopTracker struct{}

func (noopTracker) TrackAggregate(kernel.UUID, any) {}

type QueriesIntegrationTestSuite struct {
	suite.Suite
	database *pgtest.Database

	listHandler  queries.ListOrdersQueryHandler
	trackHandler queries.TrackOrderQueryHandler
	cartHandler  queries.GetCartQueryHandler
	catalog      queries.CatalogQueryHandler
}

func TestQueriesIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	suite.Run(t, new(QueriesIntegrationTestSuite))
}

func (s *QueriesIntegrationTestSuite) SetupSuite() {
	database, err := pgtest.Start(context.Background())
	s.Require().NoError(err)
	s.database = database

	s.listHandler = queries.NewListOrdersQueryHandler(database.DB)
	s.trackHandler = queries.NewTrackOrderQueryHandler(database.DB)
	s.cartHandler = queries.NewGetCartQueryHandler(database.DB)
	s.catalog = queries.NewCatalogQueryHandler(database.DB)
}

func (s *QueriesIntegrationTestSuite) SetupTest() {
	s.Require().NoError(s.database.Truncate())
}

func (s *QueriesIntegrationTestSuite) TearDownSuite() {
	s.Require().NoError(s.database.Stop(context.Background()))
}

func (s *QueriesIntegrationTestSuite) actor(id kernel.UUID, role kernel.Role) kernel.Actor {
	a, err := kernel.NewActor(id, role)
	s.Require().NoError(err)
	return a
}

func (s *QueriesIntegrationTestSuite) seedShop(ownerID kernel.UUID, name string) kernel.UUID {
	pos, err := kernel.NewGeoPoint(52.52, 13.405)
	s.Require().NoError(err)
	shop, err := catalog.NewShop(kernel.NewUUID(), ownerID, name, &pos)
	s.Require().NoError(err)
	s.Require().NoError(shoprepo.NewGormShopRepository(s.database.DB).Add(context.Background(), shop))
	return shop.ID()
}

func (s *QueriesIntegrationTestSuite) seedAgent(name string) kernel.UUID {
	a, err := agent.NewAgent(kernel.NewUUID(), name, "+4915100000")
	s.Require().NoError(err)
	pos, err := kernel.NewGeoPoint(52.5, 13.4)
	s.Require().NoError(err)
	s.Require().NoError(a.UpdatePosition(pos))
	s.Require().NoError(agentrepo.NewGormAgentRepository(s.database.DB).Add(context.Background(), a))
	return a.ID()
}

func (s *QueriesIntegrationTestSuite) seedProduct(shopID kernel.UUID, name, price string, qty int) kernel.UUID {
	p, err := catalog.NewProduct(kernel.NewUUID(), shopID, name, kernel.MustMoney(price), qty)
	s.Require().NoError(err)
	s.Require().NoError(productrepo.NewGormProductRepository(s.database.DB).Add(context.Background(), p))
	return p.ID()
}

func (s *QueriesIntegrationTestSuite) seedCustomer(name, address string) kernel.UUID {
	c, err := customer.NewCustomer(kernel.NewUUID(), name, address)
	s.Require().NoError(err)
	s.Require().NoError(customerrepo.NewGormCustomerRepository(s.database.DB).Add(context.Background(), c))
	return c.ID()
}

// seedOrder stores an order created minutesAgo minutes before testNow in the given state.
func (s *QueriesIntegrationTestSuite) seedOrder(
	customerID, shopID kernel.UUID,
	minutesAgo int,
	status order.Status,
	agentID *kernel.UUID,
) kernel.UUID {
	item, err := order.NewItem(kernel.NewUUID(), "Rice 5kg", 2, kernel.MustMoney("100"))
	s.Require().NoError(err)

	createdAt := testNow.Add(-time.Duration(minutesAgo) * time.Minute)
	snapshot := order.Snapshot{
		ID:              kernel.NewUUID(),
		CustomerID:      customerID,
		ShopID:          shopID,
		DeliveryAgentID: agentID,
		Items:           []order.Item{item},
		Total:           kernel.MustMoney("200"),
		DeliveryAddress: "12 Main St",
		Status:          status,
		CreatedAt:       createdAt,
	}
	if status == order.Processing || status == order.OutForDelivery || status == order.Delivered {
		result := order.SimulatedPaymentResult(createdAt.Add(time.Second))
		paidAt := result.SettledAt()
		snapshot.IsPaid = true
		snapshot.PaidAt = &paidAt
		snapshot.PaymentResult = &result
	}

	o, err := order.RestoreOrder(snapshot)
	s.Require().NoError(err)
	s.Require().NoError(orderrepo.NewGormOrderRepository(s.database.DB, noopTracker{}).Add(context.Background(), o))
	return o.ID()
}

func ids(views []queries.OrderView) []kernel.UUID {
	out := make([]kernel.UUID, 0, len(views))
	for _, v := range views {
		out = append(out, v.ID)
	}
	return out
}

func (s *QueriesIntegrationTestSuite) TestListMyOrders_NewestFirst() {
	ctx := context.Background()
	me, other := kernel.NewUUID(), kernel.NewUUID()
	shopID := s.seedShop(kernel.NewUUID(), "Corner Grocery")
	older := s.seedOrder(me, shopID, 30, order.PendingApproval, nil)
	newer := s.seedOrder(me, shopID, 5, order.Processing, nil)
	s.seedOrder(other, shopID, 1, order.PendingApproval, nil)

	q, err := queries.NewListMyOrdersQuery(s.actor(me, kernel.RoleCustomer))
	s.Require().NoError(err)
	views, err := s.listHandler.HandleMine(ctx, q)
	s.Require().NoError(err)

	s.Equal([]kernel.UUID{newer, older}, ids(views))
	s.Require().Len(views[0].Items, 1)
	s.Equal("Rice 5kg", views[0].Items[0].Name)
	s.Equal("200.00", views[0].Items[0].Subtotal.String())
	s.Equal("200.00", views[0].Total.String())
	s.True(views[0].IsPaid)
	s.Require().NotNil(views[0].Payment)
	s.Equal("succeeded", views[0].Payment.Status)
	s.Nil(views[1].Payment)
}

func (s *QueriesIntegrationTestSuite) TestListShopOrders() {
	ctx := context.Background()
	ownerID := kernel.NewUUID()
	mine := s.seedShop(ownerID, "Mine")
	theirs := s.seedShop(kernel.NewUUID(), "Theirs")
	inMine := s.seedOrder(kernel.NewUUID(), mine, 10, order.PendingApproval, nil)
	inTheirs := s.seedOrder(kernel.NewUUID(), theirs, 10, order.PendingApproval, nil)

	q, err := queries.NewListShopOrdersQuery(s.actor(ownerID, kernel.RoleShopkeeper), nil)
	s.Require().NoError(err)
	views, err := s.listHandler.HandleShop(ctx, q)
	s.Require().NoError(err)
	s.Equal([]kernel.UUID{inMine}, ids(views))

	q, err = queries.NewListShopOrdersQuery(s.actor(kernel.NewUUID(), kernel.RoleAdmin), &theirs)
	s.Require().NoError(err)
	views, err = s.listHandler.HandleShop(ctx, q)
	s.Require().NoError(err)
	s.Equal([]kernel.UUID{inTheirs}, ids(views))
}

func (s *QueriesIntegrationTestSuite) TestListShopOrders_NoShopIsNotFound() {
	q, err := queries.NewListShopOrdersQuery(s.actor(kernel.NewUUID(), kernel.RoleShopkeeper), nil)
	s.Require().NoError(err)
	_, err = s.listHandler.HandleShop(context.Background(), q)
	s.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (s *QueriesIntegrationTestSuite) TestListAvailableOrders_OldestFirstAndUnclaimed() {
	ctx := context.Background()
	shopID := s.seedShop(kernel.NewUUID(), "Corner Grocery")
	agentID := s.seedAgent("Bo")
	oldest := s.seedOrder(kernel.NewUUID(), shopID, 60, order.Processing, nil)
	newest := s.seedOrder(kernel.NewUUID(), shopID, 1, order.Processing, nil)
	s.seedOrder(kernel.NewUUID(), shopID, 30, order.Processing, &agentID)
	s.seedOrder(kernel.NewUUID(), shopID, 30, order.PendingPayment, nil)

	q, err := queries.NewListAvailableOrdersQuery(s.actor(kernel.NewUUID(), kernel.RoleDeliveryAgent))
	s.Require().NoError(err)
	views, err := s.listHandler.HandleAvailable(ctx, q)
	s.Require().NoError(err)
	s.Equal([]kernel.UUID{oldest, newest}, ids(views))
}

func (s *QueriesIntegrationTestSuite) TestListMyDeliveries_ActiveOnly() {
	ctx := context.Background()
	shopID := s.seedShop(kernel.NewUUID(), "Corner Grocery")
	me := s.seedAgent("Bo")
	other := s.seedAgent("Cy")
	claimed := s.seedOrder(kernel.NewUUID(), shopID, 20, order.Processing, &me)
	onTheWay := s.seedOrder(kernel.NewUUID(), shopID, 10, order.OutForDelivery, &me)
	s.seedOrder(kernel.NewUUID(), shopID, 5, order.Delivered, &me)
	s.seedOrder(kernel.NewUUID(), shopID, 5, order.OutForDelivery, &other)

	q, err := queries.NewListMyDeliveriesQuery(s.actor(me, kernel.RoleDeliveryAgent))
	s.Require().NoError(err)
	views, err := s.listHandler.HandleDeliveries(ctx, q)
	s.Require().NoError(err)
	s.Equal([]kernel.UUID{claimed, onTheWay}, ids(views))
}

func (s *QueriesIntegrationTestSuite) TestListAllOrders_Filters() {
	ctx := context.Background()
	shopID := s.seedShop(kernel.NewUUID(), "Corner Grocery")
	customerID := kernel.NewUUID()
	paid := s.seedOrder(customerID, shopID, 10, order.Processing, nil)
	unpaid := s.seedOrder(customerID, shopID, 5, order.PendingPayment, nil)
	s.seedOrder(kernel.NewUUID(), shopID, 1, order.Processing, nil)
	admin := s.actor(kernel.NewUUID(), kernel.RoleAdmin)

	all, err := queries.NewListAllOrdersQuery(admin, queries.OrderFilter{})
	s.Require().NoError(err)
	views, err := s.listHandler.HandleAll(ctx, all)
	s.Require().NoError(err)
	s.Len(views, 3)

	filter, err := queries.ParseOrderFilter(map[string]string{
		queries.FilterCustomerID: customerID.String(),
		queries.FilterIsPaid:     "false",
	})
	s.Require().NoError(err)
	q, err := queries.NewListAllOrdersQuery(admin, filter)
	s.Require().NoError(err)
	views, err = s.listHandler.HandleAll(ctx, q)
	s.Require().NoError(err)
	s.Equal([]kernel.UUID{unpaid}, ids(views))

	filter, err = queries.ParseOrderFilter(map[string]string{
		queries.FilterStatus:     "PROCESSING",
		queries.FilterCustomerID: customerID.String(),
	})
	s.Require().NoError(err)
	q, err = queries.NewListAllOrdersQuery(admin, filter)
	s.Require().NoError(err)
	views, err = s.listHandler.HandleAll(ctx, q)
	s.Require().NoError(err)
	s.Equal([]kernel.UUID{paid}, ids(views))
}

func (s *QueriesIntegrationTestSuite) TestTrackOrder_Access() {
	ctx := context.Background()
	ownerID := kernel.NewUUID()
	shopID := s.seedShop(ownerID, "Corner Grocery")
	agentID := s.seedAgent("Bo")
	customerID := kernel.NewUUID()
	orderID := s.seedOrder(customerID, shopID, 10, order.OutForDelivery, &agentID)

	tests := []struct {
		name    string
		actor   kernel.Actor
		allowed bool
	}{
		{"owner customer", s.actor(customerID, kernel.RoleCustomer), true},
		{"assigned agent", s.actor(agentID, kernel.RoleDeliveryAgent), true},
		{"admin", s.actor(kernel.NewUUID(), kernel.RoleAdmin), true},
		{"other customer", s.actor(kernel.NewUUID(), kernel.RoleCustomer), false},
		{"other agent", s.actor(kernel.NewUUID(), kernel.RoleDeliveryAgent), false},
		{"shop owner", s.actor(ownerID, kernel.RoleShopkeeper), false},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			q, err := queries.NewTrackOrderQuery(tt.actor, orderID)
			s.Require().NoError(err)
			view, err := s.trackHandler.Handle(ctx, q)
			if !tt.allowed {
				s.Require().ErrorIs(err, errs.ErrAccessDenied)
				return
			}
			s.Require().NoError(err)
			s.True(view.Order.ID.IsEqual(orderID))
			s.Equal(order.OutForDelivery, view.Order.Status)
			s.Require().NotNil(view.Shop)
			s.Equal("Corner Grocery", view.Shop.Name)
			s.Require().NotNil(view.Shop.Position)
			s.Require().NotNil(view.Agent)
			s.Equal("Bo", view.Agent.Name)
			s.Equal("+4915100000", view.Agent.Phone)
			s.Require().NotNil(view.Agent.Position)
			s.InDelta(13.4, view.Agent.Position.Lng(), 1e-9)
		})
	}
}

func (s *QueriesIntegrationTestSuite) TestTrackOrder_UnclaimedHasNoAgent() {
	customerID := kernel.NewUUID()
	orderID := s.seedOrder(customerID, s.seedShop(kernel.NewUUID(), "Corner Grocery"), 1, order.PendingApproval, nil)

	q, err := queries.NewTrackOrderQuery(s.actor(customerID, kernel.RoleCustomer), orderID)
	s.Require().NoError(err)
	view, err := s.trackHandler.Handle(context.Background(), q)
	s.Require().NoError(err)
	s.Nil(view.Agent)
}

func (s *QueriesIntegrationTestSuite) TestTrackOrder_UnknownOrder() {
	q, err := queries.NewTrackOrderQuery(s.actor(kernel.NewUUID(), kernel.RoleAdmin), kernel.NewUUID())
	s.Require().NoError(err)
	_, err = s.trackHandler.Handle(context.Background(), q)
	s.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (s *QueriesIntegrationTestSuite) TestGetCart() {
	ctx := context.Background()
	shopID := s.seedShop(kernel.NewUUID(), "Corner Grocery")
	products := productrepo.NewGormProductRepository(s.database.DB)
	rice, err := catalog.NewProduct(kernel.NewUUID(), shopID, "Rice 5kg", kernel.MustMoney("100"), 50)
	s.Require().NoError(err)
	milk, err := catalog.NewProduct(kernel.NewUUID(), shopID, "Milk", kernel.MustMoney("1.25"), 3)
	s.Require().NoError(err)
	s.Require().NoError(products.Add(ctx, rice))
	s.Require().NoError(products.Add(ctx, milk))

	c, err := customer.NewCustomer(kernel.NewUUID(), "Ada", "12 Main St")
	s.Require().NoError(err)
	s.Require().NoError(c.AddToCart(milk.ID(), 2))
	s.Require().NoError(c.AddToCart(rice.ID(), 1))
	s.Require().NoError(customerrepo.NewGormCustomerRepository(s.database.DB).Add(ctx, c))

	q, err := queries.NewGetCartQuery(s.actor(c.ID(), kernel.RoleCustomer))
	s.Require().NoError(err)
	view, err := s.cartHandler.Handle(ctx, q)
	s.Require().NoError(err)

	s.Require().Len(view.Lines, 2)
	s.Equal("Milk", view.Lines[0].Name)
	s.Equal("2.50", view.Lines[0].Subtotal.String())
	s.Equal(3, view.Lines[0].Available)
	s.Equal("Rice 5kg", view.Lines[1].Name)
	s.Equal("102.50", view.Total.String())

	empty, err := queries.NewGetCartQuery(s.actor(kernel.NewUUID(), kernel.RoleCustomer))
	s.Require().NoError(err)
	emptyView, err := s.cartHandler.Handle(ctx, empty)
	s.Require().NoError(err)
	s.Empty(emptyView.Lines)
	s.True(emptyView.Total.IsZero())
}

func (s *QueriesIntegrationTestSuite) TestAgentListings_AttachShopAndRecipient() {
	ctx := context.Background()
	shopID := s.seedShop(kernel.NewUUID(), "Corner Grocery")
	me := s.seedAgent("Bo")
	buyer := s.seedCustomer("Ada", "7 Elm Road")
	open := s.seedOrder(buyer, shopID, 10, order.Processing, nil)
	mine := s.seedOrder(buyer, shopID, 5, order.OutForDelivery, &me)

	agentActor := s.actor(me, kernel.RoleDeliveryAgent)

	availableQ, err := queries.NewListAvailableOrdersQuery(agentActor)
	s.Require().NoError(err)
	available, err := s.listHandler.HandleAvailable(ctx, availableQ)
	s.Require().NoError(err)
	s.Require().Len(available, 1)
	s.Equal(open, available[0].ID)
	s.Require().NotNil(available[0].Shop)
	s.Equal("Corner Grocery", available[0].Shop.Name)
	s.Require().NotNil(available[0].Shop.Position)
	s.InDelta(52.52, available[0].Shop.Position.Lat(), 1e-9)
	s.Nil(available[0].Customer, "the recipient is revealed only after the claim")

	deliveriesQ, err := queries.NewListMyDeliveriesQuery(agentActor)
	s.Require().NoError(err)
	deliveries, err := s.listHandler.HandleDeliveries(ctx, deliveriesQ)
	s.Require().NoError(err)
	s.Require().Len(deliveries, 1)
	s.Equal(mine, deliveries[0].ID)
	s.Require().NotNil(deliveries[0].Shop)
	s.True(deliveries[0].Shop.ID.IsEqual(shopID))
	s.Require().NotNil(deliveries[0].Customer)
	s.Equal("Ada", deliveries[0].Customer.Name)
	s.Equal("7 Elm Road", deliveries[0].Customer.Address)

	ownQ, err := queries.NewListMyOrdersQuery(s.actor(buyer, kernel.RoleCustomer))
	s.Require().NoError(err)
	own, err := s.listHandler.HandleMine(ctx, ownQ)
	s.Require().NoError(err)
	s.Require().Len(own, 2)
	s.Nil(own[0].Shop)
	s.Nil(own[0].Customer)
}

func (s *QueriesIntegrationTestSuite) TestListProducts_FiltersAndPages() {
	ctx := context.Background()
	grocery := s.seedShop(kernel.NewUUID(), "Corner Grocery")
	bakery := s.seedShop(kernel.NewUUID(), "Bakery")
	basmati := s.seedProduct(grocery, "Basmati Rice", "120", 10)
	brown := s.seedProduct(grocery, "Brown Rice", "90", 4)
	s.seedProduct(grocery, "Wild Rice", "300", 0)
	s.seedProduct(grocery, "100% Rice", "50", 1)
	s.seedProduct(bakery, "Bread", "3.50", 8)

	list := func(raw map[string]string) queries.ProductPage {
		filter, err := queries.ParseProductFilter(raw)
		s.Require().NoError(err)
		q, err := queries.NewListProductsQuery(s.actor(kernel.NewUUID(), kernel.RoleCustomer), filter)
		s.Require().NoError(err)
		page, err := s.catalog.HandleProducts(ctx, q)
		s.Require().NoError(err)
		return page
	}
	productIDs := func(page queries.ProductPage) []kernel.UUID {
		out := make([]kernel.UUID, 0, len(page.Items))
		for _, v := range page.Items {
			out = append(out, v.ID)
		}
		return out
	}

	all := list(map[string]string{})
	s.Equal(4, all.Total, "out of stock products are hidden")
	s.Equal(1, all.Pages)

	rice := list(map[string]string{"name": "rice", "max_price": "100", "min_price": "60"})
	s.Equal([]kernel.UUID{brown}, productIDs(rice))

	grocer := list(map[string]string{"shop_id": grocery.String(), "limit": "1", "page": "2"})
	s.Equal(3, grocer.Total)
	s.Equal(3, grocer.Pages)
	s.Equal(2, grocer.Page)
	s.Equal([]kernel.UUID{basmati}, productIDs(grocer))
	s.Equal("Corner Grocery", grocer.Items[0].ShopName)

	percent := list(map[string]string{"name": "100%"})
	s.Equal(1, percent.Total, "% matches literally")

	beyond := list(map[string]string{"page": "9"})
	s.Equal(4, beyond.Total)
	s.Empty(beyond.Items)

	none := list(map[string]string{"name": "caviar"})
	s.Zero(none.Total)
	s.Zero(none.Pages)
	s.NotNil(none.Items)

	s.Equal("3.50", list(map[string]string{"shop_id": bakery.String()}).Items[0].Price.String())
}

func (s *QueriesIntegrationTestSuite) TestGetProduct() {
	ctx := context.Background()
	shopID := s.seedShop(kernel.NewUUID(), "Corner Grocery")
	soldOut := s.seedProduct(shopID, "Wild Rice", "300", 0)
	reader := s.actor(kernel.NewUUID(), kernel.RoleDeliveryAgent)

	q, err := queries.NewGetProductQuery(reader, soldOut)
	s.Require().NoError(err)
	view, err := s.catalog.HandleProduct(ctx, q)
	s.Require().NoError(err)
	s.Equal("Wild Rice", view.Name)
	s.Equal("Corner Grocery", view.ShopName)
	s.Zero(view.QuantityAvailable)

	missing, err := queries.NewGetProductQuery(reader, kernel.NewUUID())
	s.Require().NoError(err)
	_, err = s.catalog.HandleProduct(ctx, missing)
	s.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (s *QueriesIntegrationTestSuite) TestShops() {
	ctx := context.Background()
	ownerID := kernel.NewUUID()
	zeta := s.seedShop(kernel.NewUUID(), "Zeta Market")
	alpha := s.seedShop(ownerID, "Alpha Foods")
	reader := s.actor(kernel.NewUUID(), kernel.RoleAdmin)

	listQ, err := queries.NewListShopsQuery(reader)
	s.Require().NoError(err)
	shops, err := s.catalog.HandleShops(ctx, listQ)
	s.Require().NoError(err)
	s.Require().Len(shops, 2)
	s.Equal(alpha, shops[0].ID)
	s.Equal(zeta, shops[1].ID)
	s.True(shops[0].OwnerID.IsEqual(ownerID))

	oneQ, err := queries.NewGetShopQuery(reader, alpha)
	s.Require().NoError(err)
	one, err := s.catalog.HandleShop(ctx, oneQ)
	s.Require().NoError(err)
	s.Equal("Alpha Foods", one.Name)
	s.Require().NotNil(one.Position)

	missingQ, err := queries.NewGetShopQuery(reader, kernel.NewUUID())
	s.Require().NoError(err)
	_, err = s.catalog.HandleShop(ctx, missingQ)
	s.Require().ErrorIs(err, errs.ErrObjectNotFound)
}
