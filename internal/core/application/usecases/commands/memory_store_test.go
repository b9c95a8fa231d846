package commands_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"marketplace/internal/core/application/usecases/commands"
	"marketplace/internal/core/domain/model/agent"
	"marketplace/internal/core/domain/model/catalog"
	"marketplace/internal/core/domain/model/customer"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/payment"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/errs"
)

var errTxNotActive = errors.New("transaction is not active")

// memoryStore is an in-process stand-in for the database. Repositories obtained from its
// units of work read committed state and stage writes; Commit re-checks every staged
// version under the store lock, the way conditional UPDATEs behave in PostgreSQL.
type memoryStore struct {
	mu        sync.Mutex
	versions  map[string]int
	orders    map[kernel.UUID]*order.Order
	products  map[kernel.UUID]*catalog.Product
	shops     map[kernel.UUID]*catalog.Shop
	customers map[kernel.UUID]*customer.Customer
	agents    map[kernel.UUID]*agent.Agent
	tasks     map[kernel.UUID]*payment.SettlementTask
	locked    map[kernel.UUID]bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		versions:  map[string]int{},
		orders:    map[kernel.UUID]*order.Order{},
		products:  map[kernel.UUID]*catalog.Product{},
		shops:     map[kernel.UUID]*catalog.Shop{},
		customers: map[kernel.UUID]*customer.Customer{},
		agents:    map[kernel.UUID]*agent.Agent{},
		tasks:     map[kernel.UUID]*payment.SettlementTask{},
		locked:    map[kernel.UUID]bool{},
	}
}

func versionKey(kind string, id kernel.UUID) string {
	return kind + ":" + id.String()
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func cloneOrder(o *order.Order) *order.Order {
	return must(order.RestoreOrder(o.Snapshot()))
}

func cloneProduct(p *catalog.Product) *catalog.Product {
	return must(catalog.RestoreProduct(p.ID(), p.ShopID(), p.Name(), p.Price(), p.QuantityAvailable(), p.Version()))
}

func cloneShop(shop *catalog.Shop) *catalog.Shop {
	return must(catalog.RestoreShop(shop.ID(), shop.OwnerID(), shop.Name(), shop.Position(), shop.Version()))
}

func cloneCustomer(c *customer.Customer) *customer.Customer {
	return must(customer.RestoreCustomer(c.ID(), c.Name(), c.Address(), c.Cart(), c.Version()))
}

func cloneAgent(a *agent.Agent) *agent.Agent {
	return must(agent.RestoreAgent(a.ID(), a.Name(), a.Phone(), a.IsOnline(), a.IsAvailable(), a.Position(), a.Version()))
}

func cloneTask(t *payment.SettlementTask) *payment.SettlementTask {
	return must(payment.RestoreSettlementTask(
		t.ID(), t.OrderID(), t.DueAt(), t.State(), t.Attempts(), t.LastError(), t.CreatedAt()))
}

// seeding and inspection helpers, all operating on committed state

func (s *memoryStore) putProduct(p *catalog.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID()] = cloneProduct(p)
	s.versions[versionKey("product", p.ID())] = p.Version()
}

func (s *memoryStore) putShop(shop *catalog.Shop) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shops[shop.ID()] = cloneShop(shop)
	s.versions[versionKey("shop", shop.ID())] = shop.Version()
}

func (s *memoryStore) putCustomer(c *customer.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[c.ID()] = cloneCustomer(c)
	s.versions[versionKey("customer", c.ID())] = c.Version()
}

func (s *memoryStore) putAgent(a *agent.Agent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agents[a.ID()] = cloneAgent(a)
	s.versions[versionKey("agent", a.ID())] = a.Version()
}

func (s *memoryStore) putOrder(o *order.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID()] = cloneOrder(o)
	s.versions[versionKey("order", o.ID())] = o.Version()
}

func (s *memoryStore) order(id kernel.UUID) *order.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneOrder(s.orders[id])
}

func (s *memoryStore) allOrders() []*order.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*order.Order, 0, len(s.orders))
	for _, o := range s.orders {
		result = append(result, cloneOrder(o))
	}
	return result
}

func (s *memoryStore) product(id kernel.UUID) *catalog.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.products[id]; ok {
		return cloneProduct(p)
	}
	return nil
}

func (s *memoryStore) shop(id kernel.UUID) *catalog.Shop {
	s.mu.Lock()
	defer s.mu.Unlock()
	if shop, ok := s.shops[id]; ok {
		return cloneShop(shop)
	}
	return nil
}

func (s *memoryStore) customer(id kernel.UUID) *customer.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneCustomer(s.customers[id])
}

func (s *memoryStore) agent(id kernel.UUID) *agent.Agent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAgent(s.agents[id])
}

func (s *memoryStore) taskFor(orderID kernel.UUID) *payment.SettlementTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		if t.OrderID().IsEqual(orderID) {
			return cloneTask(t)
		}
	}
	return nil
}

func (s *memoryStore) newUoW() *memoryUoW {
	return &memoryUoW{store: s}
}

type stagedWrite struct {
	key      string
	expected int
	insert   bool
	apply    func()
}

type memoryUoW struct {
	store  *memoryStore
	active bool
	writes []stagedWrite
	claims []kernel.UUID
}

func (u *memoryUoW) Begin(_ context.Context) error {
	u.active = true
	return nil
}

func (u *memoryUoW) Commit(_ context.Context) error {
	if !u.active {
		return errTxNotActive
	}
	defer u.finish()

	s := u.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range u.writes {
		current, exists := s.versions[w.key]
		if w.insert && exists {
			return errs.NewConcurrentModificationError(w.key, "insert")
		}
		if !w.insert && w.expected >= 0 && current != w.expected {
			return errs.NewConcurrentModificationError(w.key, w.expected)
		}
	}
	for _, w := range u.writes {
		w.apply()
	}
	return nil
}

func (u *memoryUoW) Rollback(_ context.Context) error {
	if !u.active {
		return errTxNotActive
	}
	u.finish()
	return nil
}

func (u *memoryUoW) finish() {
	u.active = false
	u.writes = nil

	u.store.mu.Lock()
	for _, id := range u.claims {
		delete(u.store.locked, id)
	}
	u.store.mu.Unlock()
	u.claims = nil
}

// stage records a write. expected < 0 skips the version check.
func (u *memoryUoW) stage(key string, expected int, insert bool, apply func()) {
	u.writes = append(u.writes, stagedWrite{key: key, expected: expected, insert: insert, apply: apply})
}

// checkVersion fails fast like a conditional UPDATE that matched no row.
func (u *memoryUoW) checkVersion(kind string, id kernel.UUID, version int) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	current, ok := u.store.versions[versionKey(kind, id)]
	if !ok {
		return errs.NewObjectNotFoundError(kind, id)
	}
	if current != version {
		return errs.NewConcurrentModificationError(kind, id)
	}
	return nil
}

func (u *memoryUoW) OrderRepository() ports.OrderRepository {
	return &memoryOrderRepo{uow: u}
}

func (u *memoryUoW) ProductRepository() ports.ProductRepository {
	return &memoryProductRepo{uow: u}
}

func (u *memoryUoW) ShopRepository() ports.ShopRepository {
	return &memoryShopRepo{uow: u}
}

func (u *memoryUoW) CustomerRepository() ports.CustomerRepository {
	return &memoryCustomerRepo{uow: u}
}

func (u *memoryUoW) AgentRepository() ports.AgentRepository {
	return &memoryAgentRepo{uow: u}
}

func (u *memoryUoW) SettlementTaskRepository() ports.SettlementTaskRepository {
	return &memoryTaskRepo{uow: u}
}

type memoryOrderRepo struct{ uow *memoryUoW }

func (r *memoryOrderRepo) Add(_ context.Context, o *order.Order) error {
	stored := cloneOrder(o)
	s := r.uow.store
	key := versionKey("order", o.ID())
	r.uow.stage(key, -1, true, func() {
		s.orders[stored.ID()] = stored
		s.versions[key] = stored.Version()
	})
	return nil
}

func (r *memoryOrderRepo) Update(_ context.Context, o *order.Order) error {
	if err := r.uow.checkVersion("order", o.ID(), o.Version()); err != nil {
		return err
	}
	expected := o.Version()
	o.IncrementVersion()
	stored := cloneOrder(o)
	s := r.uow.store
	key := versionKey("order", o.ID())
	r.uow.stage(key, expected, false, func() {
		s.orders[stored.ID()] = stored
		s.versions[key] = stored.Version()
	})
	return nil
}

func (r *memoryOrderRepo) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	s := r.uow.store
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id)
	}
	return cloneOrder(o), nil
}

type memoryProductRepo struct{ uow *memoryUoW }

func (r *memoryProductRepo) Add(_ context.Context, p *catalog.Product) error {
	stored := cloneProduct(p)
	s := r.uow.store
	key := versionKey("product", p.ID())
	r.uow.stage(key, -1, true, func() {
		s.products[stored.ID()] = stored
		s.versions[key] = stored.Version()
	})
	return nil
}

func (r *memoryProductRepo) Delete(_ context.Context, p *catalog.Product) error {
	if err := r.uow.checkVersion("product", p.ID(), p.Version()); err != nil {
		return err
	}
	s := r.uow.store
	key := versionKey("product", p.ID())
	r.uow.stage(key, p.Version(), false, func() {
		delete(s.products, p.ID())
		delete(s.versions, key)
	})
	return nil
}

func (r *memoryProductRepo) Get(_ context.Context, id kernel.UUID) (*catalog.Product, error) {
	s := r.uow.store
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("product", id)
	}
	return cloneProduct(p), nil
}

func (r *memoryProductRepo) GetMany(_ context.Context, ids []kernel.UUID) (map[kernel.UUID]*catalog.Product, error) {
	s := r.uow.store
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make(map[kernel.UUID]*catalog.Product, len(ids))
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			result[id] = cloneProduct(p)
		}
	}
	return result, nil
}

func (r *memoryProductRepo) Update(_ context.Context, p *catalog.Product) error {
	if err := r.uow.checkVersion("product", p.ID(), p.Version()); err != nil {
		return err
	}
	expected := p.Version()
	p.IncrementVersion()
	stored := cloneProduct(p)
	s := r.uow.store
	key := versionKey("product", p.ID())
	r.uow.stage(key, expected, false, func() {
		s.products[stored.ID()] = stored
		s.versions[key] = stored.Version()
	})
	return nil
}

type memoryShopRepo struct{ uow *memoryUoW }

func (r *memoryShopRepo) Add(_ context.Context, shop *catalog.Shop) error {
	s := r.uow.store
	s.mu.Lock()
	for _, existing := range s.shops {
		if existing.OwnerID().IsEqual(shop.OwnerID()) {
			s.mu.Unlock()
			return errs.NewStateConflictError("shop")
		}
	}
	s.mu.Unlock()

	stored := cloneShop(shop)
	key := versionKey("shop", shop.ID())
	r.uow.stage(key, -1, true, func() {
		s.shops[stored.ID()] = stored
		s.versions[key] = stored.Version()
	})
	return nil
}

func (r *memoryShopRepo) Update(_ context.Context, shop *catalog.Shop) error {
	if err := r.uow.checkVersion("shop", shop.ID(), shop.Version()); err != nil {
		return err
	}
	expected := shop.Version()
	shop.IncrementVersion()
	stored := cloneShop(shop)
	s := r.uow.store
	key := versionKey("shop", shop.ID())
	r.uow.stage(key, expected, false, func() {
		s.shops[stored.ID()] = stored
		s.versions[key] = stored.Version()
	})
	return nil
}

func (r *memoryShopRepo) Get(_ context.Context, id kernel.UUID) (*catalog.Shop, error) {
	s := r.uow.store
	s.mu.Lock()
	defer s.mu.Unlock()
	shop, ok := s.shops[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("shop", id)
	}
	return cloneShop(shop), nil
}

func (r *memoryShopRepo) GetByOwner(_ context.Context, ownerID kernel.UUID) (*catalog.Shop, error) {
	s := r.uow.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, shop := range s.shops {
		if shop.IsOwnedBy(ownerID) {
			return cloneShop(shop), nil
		}
	}
	return nil, errs.NewObjectNotFoundError("shop", ownerID)
}

func (r *memoryShopRepo) Delete(_ context.Context, shop *catalog.Shop) error {
	if err := r.uow.checkVersion("shop", shop.ID(), shop.Version()); err != nil {
		return err
	}
	s := r.uow.store
	s.mu.Lock()
	for _, o := range s.orders {
		if o.ShopID().IsEqual(shop.ID()) {
			s.mu.Unlock()
			return errs.NewStateConflictError("shop")
		}
	}
	s.mu.Unlock()

	key := versionKey("shop", shop.ID())
	r.uow.stage(key, shop.Version(), false, func() {
		for id, p := range s.products {
			if p.ShopID().IsEqual(shop.ID()) {
				delete(s.products, id)
				delete(s.versions, versionKey("product", id))
			}
		}
		delete(s.shops, shop.ID())
		delete(s.versions, key)
	})
	return nil
}

type memoryCustomerRepo struct{ uow *memoryUoW }

func (r *memoryCustomerRepo) Get(_ context.Context, id kernel.UUID) (*customer.Customer, error) {
	s := r.uow.store
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("customer", id)
	}
	return cloneCustomer(c), nil
}

func (r *memoryCustomerRepo) Update(_ context.Context, c *customer.Customer) error {
	if err := r.uow.checkVersion("customer", c.ID(), c.Version()); err != nil {
		return err
	}
	expected := c.Version()
	c.IncrementVersion()
	stored := cloneCustomer(c)
	s := r.uow.store
	key := versionKey("customer", c.ID())
	r.uow.stage(key, expected, false, func() {
		s.customers[stored.ID()] = stored
		s.versions[key] = stored.Version()
	})
	return nil
}

type memoryAgentRepo struct{ uow *memoryUoW }

func (r *memoryAgentRepo) Get(_ context.Context, id kernel.UUID) (*agent.Agent, error) {
	s := r.uow.store
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.agents[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("delivery agent", id)
	}
	return cloneAgent(a), nil
}

func (r *memoryAgentRepo) Update(_ context.Context, a *agent.Agent) error {
	if err := r.uow.checkVersion("agent", a.ID(), a.Version()); err != nil {
		return err
	}
	expected := a.Version()
	a.IncrementVersion()
	stored := cloneAgent(a)
	s := r.uow.store
	key := versionKey("agent", a.ID())
	r.uow.stage(key, expected, false, func() {
		s.agents[stored.ID()] = stored
		s.versions[key] = stored.Version()
	})
	return nil
}

type memoryTaskRepo struct{ uow *memoryUoW }

func (r *memoryTaskRepo) Add(_ context.Context, task *payment.SettlementTask) error {
	s := r.uow.store
	s.mu.Lock()
	for _, t := range s.tasks {
		if t.OrderID().IsEqual(task.OrderID()) {
			s.mu.Unlock()
			return errs.NewStateConflictError("settlement task")
		}
	}
	s.mu.Unlock()

	stored := cloneTask(task)
	key := versionKey("task-order", task.OrderID())
	r.uow.stage(key, -1, true, func() {
		s.tasks[stored.ID()] = stored
		s.versions[key] = 0
	})
	return nil
}

func (r *memoryTaskRepo) Update(_ context.Context, task *payment.SettlementTask) error {
	stored := cloneTask(task)
	s := r.uow.store
	r.uow.stage(versionKey("task", task.ID()), -1, false, func() {
		s.tasks[stored.ID()] = stored
	})
	return nil
}

func (r *memoryTaskRepo) GetByOrder(_ context.Context, orderID kernel.UUID) (*payment.SettlementTask, error) {
	if t := r.uow.store.taskFor(orderID); t != nil {
		return t, nil
	}
	return nil, errs.NewObjectNotFoundError("settlement task", orderID)
}

func (r *memoryTaskRepo) ClaimDue(_ context.Context, now time.Time, limit int) ([]*payment.SettlementTask, error) {
	s := r.uow.store
	s.mu.Lock()
	defer s.mu.Unlock()

	due := make([]*payment.SettlementTask, 0)
	for _, t := range s.tasks {
		if t.IsPending() && !t.DueAt().After(now) && !s.locked[t.ID()] {
			due = append(due, t)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].DueAt().Before(due[j].DueAt()) })
	if len(due) > limit {
		due = due[:limit]
	}

	result := make([]*payment.SettlementTask, 0, len(due))
	for _, t := range due {
		s.locked[t.ID()] = true
		r.uow.claims = append(r.uow.claims, t.ID())
		result = append(result, cloneTask(t))
	}
	return result, nil
}

// factories

type memoryCheckoutFactory struct{ store *memoryStore }

func (f memoryCheckoutFactory) Create() commands.CheckoutUoW { return f.store.newUoW() }

type memoryCartFactory struct{ store *memoryStore }

func (f memoryCartFactory) Create() commands.CartUoW { return f.store.newUoW() }

type memoryOrderStatusFactory struct{ store *memoryStore }

func (f memoryOrderStatusFactory) Create() commands.OrderStatusUoW { return f.store.newUoW() }

type memoryDispatchFactory struct{ store *memoryStore }

func (f memoryDispatchFactory) Create() commands.DispatchUoW { return f.store.newUoW() }

type memoryPaymentFactory struct{ store *memoryStore }

func (f memoryPaymentFactory) Create() commands.PaymentUoW { return f.store.newUoW() }

type memoryCatalogFactory struct{ store *memoryStore }

func (f memoryCatalogFactory) Create() commands.CatalogUoW { return f.store.newUoW() }

type memoryAgentFactory struct{ store *memoryStore }

func (f memoryAgentFactory) Create() commands.AgentUoW { return f.store.newUoW() }

// manualClock is advanced explicitly by tests.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
