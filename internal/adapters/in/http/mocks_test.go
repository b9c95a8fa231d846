package http_test

import (
	"context"
	"sync"

	"marketplace/internal/core/application/usecases/commands"
	"marketplace/internal/core/application/usecases/queries"
	"marketplace/internal/core/domain/model/agent"
	"marketplace/internal/core/domain/model/catalog"
	"marketplace/internal/core/domain/model/order"

	"github.com/stretchr/testify/mock"
)

type MockCheckoutHandler struct{ mock.Mock }

func (m *MockCheckoutHandler) Handle(ctx context.Context, command commands.CheckoutCommand) ([]*order.Order, error) {
	args := m.Called(ctx, command)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockOrderStatusHandler struct{ mock.Mock }

func (m *MockOrderStatusHandler) Handle(
	ctx context.Context,
	command commands.ChangeOrderStatusCommand,
) (*order.Order, error) {
	args := m.Called(ctx, command)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

type MockPaymentHandler struct{ mock.Mock }

func (m *MockPaymentHandler) Handle(
	ctx context.Context,
	command commands.RequestPaymentCommand,
) (commands.PaymentAck, error) {
	args := m.Called(ctx, command)
	return args.Get(0).(commands.PaymentAck), args.Error(1)
}

type MockAgentPresenceHandler struct{ mock.Mock }

func (m *MockAgentPresenceHandler) HandleSetOnline(
	ctx context.Context,
	command commands.SetAgentOnlineCommand,
) (*agent.Agent, error) {
	args := m.Called(ctx, command)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*agent.Agent), args.Error(1)
}

func (m *MockAgentPresenceHandler) HandleUpdateLocation(
	ctx context.Context,
	command commands.UpdateAgentLocationCommand,
) (*agent.Agent, error) {
	args := m.Called(ctx, command)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*agent.Agent), args.Error(1)
}

type MockOrderListHandler struct{ mock.Mock }

func (m *MockOrderListHandler) views(args mock.Arguments) ([]queries.OrderView, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]queries.OrderView), args.Error(1)
}

func (m *MockOrderListHandler) HandleMine(ctx context.Context, query queries.ListMyOrdersQuery) ([]queries.OrderView, error) {
	return m.views(m.Called(ctx, query))
}

func (m *MockOrderListHandler) HandleShop(ctx context.Context, query queries.ListShopOrdersQuery) ([]queries.OrderView, error) {
	return m.views(m.Called(ctx, query))
}

func (m *MockOrderListHandler) HandleAvailable(
	ctx context.Context,
	query queries.ListAvailableOrdersQuery,
) ([]queries.OrderView, error) {
	return m.views(m.Called(ctx, query))
}

func (m *MockOrderListHandler) HandleDeliveries(
	ctx context.Context,
	query queries.ListMyDeliveriesQuery,
) ([]queries.OrderView, error) {
	return m.views(m.Called(ctx, query))
}

func (m *MockOrderListHandler) HandleAll(ctx context.Context, query queries.ListAllOrdersQuery) ([]queries.OrderView, error) {
	return m.views(m.Called(ctx, query))
}

type MockCartHandler struct{ mock.Mock }

func (m *MockCartHandler) HandleAdd(ctx context.Context, command commands.AddCartItemCommand) error {
	return m.Called(ctx, command).Error(0)
}

func (m *MockCartHandler) HandleRemove(ctx context.Context, command commands.RemoveCartItemCommand) error {
	return m.Called(ctx, command).Error(0)
}

func (m *MockCartHandler) HandleClear(ctx context.Context, command commands.ClearCartCommand) error {
	return m.Called(ctx, command).Error(0)
}

type MockCatalogHandler struct{ mock.Mock }

func (m *MockCatalogHandler) shop(args mock.Arguments) (*catalog.Shop, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Shop), args.Error(1)
}

func (m *MockCatalogHandler) product(args mock.Arguments) (*catalog.Product, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockCatalogHandler) HandleCreateShop(ctx context.Context, command commands.CreateShopCommand) (*catalog.Shop, error) {
	return m.shop(m.Called(ctx, command))
}

func (m *MockCatalogHandler) HandleUpdateShop(ctx context.Context, command commands.UpdateShopCommand) (*catalog.Shop, error) {
	return m.shop(m.Called(ctx, command))
}

func (m *MockCatalogHandler) HandleCreateProduct(
	ctx context.Context,
	command commands.CreateProductCommand,
) (*catalog.Product, error) {
	return m.product(m.Called(ctx, command))
}

func (m *MockCatalogHandler) HandleUpdateProduct(
	ctx context.Context,
	command commands.UpdateProductCommand,
) (*catalog.Product, error) {
	return m.product(m.Called(ctx, command))
}

func (m *MockCatalogHandler) HandleDeleteProduct(ctx context.Context, command commands.DeleteProductCommand) error {
	return m.Called(ctx, command).Error(0)
}

func (m *MockCatalogHandler) HandleDeleteShop(ctx context.Context, command commands.DeleteShopCommand) error {
	return m.Called(ctx, command).Error(0)
}

type MockCatalogQueryHandler struct{ mock.Mock }

func (m *MockCatalogQueryHandler) HandleProducts(
	ctx context.Context,
	query queries.ListProductsQuery,
) (queries.ProductPage, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(queries.ProductPage), args.Error(1)
}

func (m *MockCatalogQueryHandler) HandleProduct(
	ctx context.Context,
	query queries.GetProductQuery,
) (queries.ProductView, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(queries.ProductView), args.Error(1)
}

func (m *MockCatalogQueryHandler) HandleShops(ctx context.Context, query queries.ListShopsQuery) ([]queries.ShopView, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]queries.ShopView), args.Error(1)
}

func (m *MockCatalogQueryHandler) HandleShop(ctx context.Context, query queries.GetShopQuery) (queries.ShopView, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(queries.ShopView), args.Error(1)
}

// memoryIdempotencyStore mirrors the Redis store's semantics without expiry.
type memoryIdempotencyStore struct {
	mu     sync.Mutex
	locks  map[string]bool
	values map[string]string
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{locks: map[string]bool{}, values: map[string]string{}}
}

func (s *memoryIdempotencyStore) TryLock(_ context.Context, scope, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locks[scope+key] {
		return false, nil
	}
	s.locks[scope+key] = true
	return true, nil
}

func (s *memoryIdempotencyStore) Remember(_ context.Context, scope, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[scope+key] = value
	return nil
}

func (s *memoryIdempotencyStore) Recall(_ context.Context, scope, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[scope+key]
	return v, ok, nil
}

func (s *memoryIdempotencyStore) Release(_ context.Context, scope, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, scope+key)
	return nil
}
