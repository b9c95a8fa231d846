package services_test

import (
	"testing"
	"time"

	"marketplace/internal/core/domain/model/catalog"
	"marketplace/internal/core/domain/model/customer"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/services"
	"marketplace/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func mustProduct(t *testing.T, shopID kernel.UUID, name, price string, stock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(kernel.NewUUID(), shopID, name, kernel.MustMoney(price), stock)
	require.NoError(t, err)
	return p
}

func mustCustomer(t *testing.T, lines map[*catalog.Product]int, inCartOrder ...*catalog.Product) *customer.Customer {
	t.Helper()
	c, err := customer.NewCustomer(kernel.NewUUID(), "Asha", "12 Main St")
	require.NoError(t, err)
	for _, p := range inCartOrder {
		require.NoError(t, c.AddToCart(p.ID(), lines[p]))
	}
	return c
}

func index(products ...*catalog.Product) map[kernel.UUID]*catalog.Product {
	m := make(map[kernel.UUID]*catalog.Product, len(products))
	for _, p := range products {
		m[p.ID()] = p
	}
	return m
}

func TestCartAggregator_Group(t *testing.T) {
	shopA, shopB := kernel.NewUUID(), kernel.NewUUID()
	rice := mustProduct(t, shopA, "Rice", "100", 50)
	oil := mustProduct(t, shopB, "Oil", "10", 5)
	salt := mustProduct(t, shopA, "Salt", "1", 5)

	c := mustCustomer(t, map[*catalog.Product]int{rice: 2, oil: 1, salt: 3}, rice, oil, salt)

	intents, err := services.NewCartAggregator().Group(c.Cart(), index(rice, oil, salt))
	require.NoError(t, err)
	require.Len(t, intents, 2)
	assert.True(t, intents[0].ShopID.Less(intents[1].ShopID))

	for _, intent := range intents {
		if intent.ShopID.IsEqual(shopA) {
			require.Len(t, intent.Lines, 2)
			assert.Equal(t, rice, intent.Lines[0].Product)
			assert.Equal(t, 2, intent.Lines[0].Quantity)
			assert.Equal(t, salt, intent.Lines[1].Product)
		} else {
			require.Len(t, intent.Lines, 1)
			assert.Equal(t, oil, intent.Lines[0].Product)
		}
	}
}

func TestCartAggregator_Group_Errors(t *testing.T) {
	agg := services.NewCartAggregator()

	_, err := agg.Group(nil, nil)
	require.ErrorIs(t, err, customer.ErrCartIsEmpty)

	line, _ := customer.NewCartLine(kernel.NewUUID(), 1)
	_, err = agg.Group([]customer.CartLine{line}, map[kernel.UUID]*catalog.Product{})
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
	assert.Contains(t, err.Error(), line.ProductID().String())
}

func TestCartAggregator_Checkout(t *testing.T) {
	t.Run("one order per shop, stock reserved, cart cleared", func(t *testing.T) {
		shopA, shopB := kernel.NewUUID(), kernel.NewUUID()
		rice := mustProduct(t, shopA, "Rice", "100", 50)
		oil := mustProduct(t, shopB, "Oil", "9.99", 5)
		c := mustCustomer(t, map[*catalog.Product]int{rice: 2, oil: 3}, rice, oil)

		result, err := services.NewCartAggregator().Checkout(c, index(rice, oil), now)
		require.NoError(t, err)

		require.Len(t, result.Orders, 2)
		totals := map[kernel.UUID]string{}
		for _, o := range result.Orders {
			assert.Equal(t, order.PendingApproval, o.Status())
			assert.Equal(t, c.ID(), o.CustomerID())
			assert.Equal(t, "12 Main St", o.DeliveryAddress())
			assert.Equal(t, now, o.CreatedAt())
			totals[o.ShopID()] = o.Total().String()
		}
		assert.Equal(t, "200.00", totals[shopA])
		assert.Equal(t, "29.97", totals[shopB])

		assert.Equal(t, 48, rice.QuantityAvailable())
		assert.Equal(t, 2, oil.QuantityAvailable())
		assert.Len(t, result.Products, 2)
		assert.Empty(t, c.Cart())
	})

	t.Run("item snapshot is taken from the product", func(t *testing.T) {
		rice := mustProduct(t, kernel.NewUUID(), "Rice", "100", 50)
		c := mustCustomer(t, map[*catalog.Product]int{rice: 2}, rice)

		result, err := services.NewCartAggregator().Checkout(c, index(rice), now)
		require.NoError(t, err)

		items := result.Orders[0].Items()
		require.Len(t, items, 1)
		assert.Equal(t, rice.ID(), items[0].ProductID())
		assert.Equal(t, "Rice", items[0].Name())
		assert.Equal(t, 2, items[0].Quantity())
		assert.Equal(t, "100.00", items[0].UnitPrice().String())
	})

	t.Run("stock failure in a later shop changes nothing", func(t *testing.T) {
		shops := []kernel.UUID{kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID()}
		products := []*catalog.Product{
			mustProduct(t, shops[0], "A", "1", 10),
			mustProduct(t, shops[1], "B", "1", 10),
			mustProduct(t, shops[2], "C", "1", 1),
		}
		c := mustCustomer(t, map[*catalog.Product]int{products[0]: 2, products[1]: 2, products[2]: 5}, products...)

		result, err := services.NewCartAggregator().Checkout(c, index(products...), now)

		var stockErr *errs.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, "C", stockErr.Name)
		assert.Empty(t, result.Orders)
		assert.Equal(t, 10, products[0].QuantityAvailable())
		assert.Equal(t, 10, products[1].QuantityAvailable())
		assert.Equal(t, 1, products[2].QuantityAvailable())
		assert.Len(t, c.Cart(), 3)
	})

	t.Run("empty cart is rejected", func(t *testing.T) {
		c := mustCustomer(t, nil)
		_, err := services.NewCartAggregator().Checkout(c, nil, now)
		require.ErrorIs(t, err, customer.ErrCartIsEmpty)
	})

	t.Run("customer without address cannot check out", func(t *testing.T) {
		rice := mustProduct(t, kernel.NewUUID(), "Rice", "1", 10)
		c, err := customer.NewCustomer(kernel.NewUUID(), "Asha", "")
		require.NoError(t, err)
		require.NoError(t, c.AddToCart(rice.ID(), 1))

		_, err = services.NewCartAggregator().Checkout(c, index(rice), now)
		require.ErrorIs(t, err, order.ErrDeliveryAddressIsRequired)
		assert.Equal(t, 10, rice.QuantityAvailable())
		assert.Len(t, c.Cart(), 1)
	})
}
