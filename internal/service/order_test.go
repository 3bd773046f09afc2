package service

import (
	"context"
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/skvortsov/shop-backend/internal/models"
)

var protocolRe = regexp.MustCompile(`^ORD-\d+-[0-9a-f]{8}$`)

func TestNewProtocolFormat(t *testing.T) {
	p1 := NewProtocol()
	p2 := NewProtocol()
	require.Regexp(t, protocolRe, p1)
	require.Regexp(t, protocolRe, p2)
	require.NotEqual(t, p1, p2)
}

func seedProducts(t *testing.T, db *gorm.DB, n int) []models.Product {
	t.Helper()
	products := make([]models.Product, 0, n)
	for i := 0; i < n; i++ {
		p := models.Product{Title: "product", Description: "d", Price: decimal.NewFromInt(10)}
		require.NoError(t, db.Create(&p).Error)
		products = append(products, p)
	}
	return products
}

func TestPlaceOrder(t *testing.T) {
	db := initTestDB(t)
	svc := &OrderService{DB: db}
	products := seedProducts(t, db, 2)

	// leftovers in the cart must be wiped by checkout
	require.NoError(t, db.Create(&models.CartItem{
		UserID: 1, ProductID: products[0].ID, Quantity: 2, UnitPrice: decimal.NewFromInt(20),
	}).Error)

	items := []OrderItemInput{
		{ProductID: products[0].ID, Quantity: 2, UnitPrice: decimal.NewFromInt(20), Size: "M", Color: "red"},
		{ProductID: products[1].ID, Quantity: 1, UnitPrice: decimal.RequireFromString("9.99")},
	}
	order, err := svc.PlaceOrder(context.Background(), 1, items, decimal.RequireFromString("49.99"))
	require.NoError(t, err)

	require.Regexp(t, protocolRe, order.Protocol)
	require.Equal(t, "new", order.Status)
	require.True(t, order.Total.Equal(decimal.RequireFromString("49.99")))
	require.Len(t, order.Items, 2)
	require.True(t, order.Items[0].LineTotal.Equal(decimal.NewFromInt(40)))

	var itemCount int64
	db.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&itemCount)
	require.EqualValues(t, 2, itemCount)

	var cartCount int64
	db.Model(&models.CartItem{}).Where("user_id = ?", 1).Count(&cartCount)
	require.Zero(t, cartCount)
}

func TestPlaceOrderEmptyItems(t *testing.T) {
	db := initTestDB(t)
	svc := &OrderService{DB: db}

	_, err := svc.PlaceOrder(context.Background(), 1, nil, decimal.Zero)
	require.ErrorIs(t, err, ErrValidation)
}

func TestPlaceOrderTotalMismatch(t *testing.T) {
	db := initTestDB(t)
	svc := &OrderService{DB: db}
	products := seedProducts(t, db, 1)

	items := []OrderItemInput{
		{ProductID: products[0].ID, Quantity: 2, UnitPrice: decimal.NewFromInt(20)},
	}
	_, err := svc.PlaceOrder(context.Background(), 1, items, decimal.NewFromInt(39))
	require.ErrorIs(t, err, ErrValidation)

	var count int64
	db.Model(&models.Order{}).Count(&count)
	require.Zero(t, count)
}

func TestPlaceOrderItemValidation(t *testing.T) {
	db := initTestDB(t)
	svc := &OrderService{DB: db}
	products := seedProducts(t, db, 1)

	cases := []OrderItemInput{
		{ProductID: 0, Quantity: 1, UnitPrice: decimal.NewFromInt(1)},
		{ProductID: products[0].ID, Quantity: 0, UnitPrice: decimal.NewFromInt(1)},
		{ProductID: products[0].ID, Quantity: 1, UnitPrice: decimal.NewFromInt(-1)},
	}
	for _, in := range cases {
		_, err := svc.PlaceOrder(context.Background(), 1, []OrderItemInput{in}, decimal.Zero)
		require.ErrorIs(t, err, ErrValidation)
	}
}

func TestPlaceOrderMissingProductRollsBack(t *testing.T) {
	db := initTestDB(t)
	svc := &OrderService{DB: db}
	products := seedProducts(t, db, 1)

	require.NoError(t, db.Create(&models.CartItem{
		UserID: 1, ProductID: products[0].ID, Quantity: 1, UnitPrice: decimal.NewFromInt(10),
	}).Error)

	items := []OrderItemInput{
		{ProductID: products[0].ID, Quantity: 1, UnitPrice: decimal.NewFromInt(10)},
		{ProductID: 999, Quantity: 1, UnitPrice: decimal.NewFromInt(5)},
	}
	_, err := svc.PlaceOrder(context.Background(), 1, items, decimal.NewFromInt(15))
	require.ErrorIs(t, err, ErrNotFound)

	// nothing written, cart untouched
	var orders, orderItems, cartItems int64
	db.Model(&models.Order{}).Count(&orders)
	db.Model(&models.OrderItem{}).Count(&orderItems)
	db.Model(&models.CartItem{}).Count(&cartItems)
	require.Zero(t, orders)
	require.Zero(t, orderItems)
	require.EqualValues(t, 1, cartItems)
}

func TestGetOrderOwnership(t *testing.T) {
	db := initTestDB(t)
	svc := &OrderService{DB: db}
	products := seedProducts(t, db, 1)

	items := []OrderItemInput{
		{ProductID: products[0].ID, Quantity: 1, UnitPrice: decimal.NewFromInt(10)},
	}
	order, err := svc.PlaceOrder(context.Background(), 1, items, decimal.NewFromInt(10))
	require.NoError(t, err)

	got, err := svc.GetOrder(context.Background(), order.ID, 1, false)
	require.NoError(t, err)
	require.Equal(t, order.Protocol, got.Protocol)

	_, err = svc.GetOrder(context.Background(), order.ID, 2, false)
	require.ErrorIs(t, err, ErrForbidden)

	// admins read any order
	_, err = svc.GetOrder(context.Background(), order.ID, 2, true)
	require.NoError(t, err)

	_, err = svc.GetOrder(context.Background(), 999, 1, false)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSetStatus(t *testing.T) {
	db := initTestDB(t)
	svc := &OrderService{DB: db}
	products := seedProducts(t, db, 1)

	items := []OrderItemInput{
		{ProductID: products[0].ID, Quantity: 1, UnitPrice: decimal.NewFromInt(10)},
	}
	order, err := svc.PlaceOrder(context.Background(), 1, items, decimal.NewFromInt(10))
	require.NoError(t, err)

	updated, err := svc.SetStatus(context.Background(), order.ID, "shipped")
	require.NoError(t, err)
	require.Equal(t, "shipped", updated.Status)

	_, err = svc.SetStatus(context.Background(), order.ID, "   ")
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.SetStatus(context.Background(), 999, "shipped")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSearchByProtocol(t *testing.T) {
	db := initTestDB(t)
	svc := &OrderService{DB: db}
	products := seedProducts(t, db, 1)

	for i := 0; i < 3; i++ {
		items := []OrderItemInput{
			{ProductID: products[0].ID, Quantity: 1, UnitPrice: decimal.NewFromInt(10)},
		}
		_, err := svc.PlaceOrder(context.Background(), uint(i+1), items, decimal.NewFromInt(10))
		require.NoError(t, err)
	}

	var target models.Order
	require.NoError(t, db.First(&target).Error)

	// case-insensitive substring match on the unique suffix
	suffix := target.Protocol[len(target.Protocol)-8:]
	page, err := svc.SearchByProtocol(context.Background(), suffix, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	require.Equal(t, target.Protocol, page.Orders[0].Protocol)

	upper, err := svc.SearchByProtocol(context.Background(), "ord-", 1, 10)
	require.NoError(t, err)
	require.Len(t, upper.Orders, 3)

	none, err := svc.SearchByProtocol(context.Background(), "nope", 1, 10)
	require.NoError(t, err)
	require.Empty(t, none.Orders)
	require.Zero(t, none.TotalPages)
}

func TestSearchByProtocolPagination(t *testing.T) {
	db := initTestDB(t)
	svc := &OrderService{DB: db}
	products := seedProducts(t, db, 1)

	for i := 0; i < 5; i++ {
		items := []OrderItemInput{
			{ProductID: products[0].ID, Quantity: 1, UnitPrice: decimal.NewFromInt(10)},
		}
		_, err := svc.PlaceOrder(context.Background(), 1, items, decimal.NewFromInt(10))
		require.NoError(t, err)
	}

	first, err := svc.SearchByProtocol(context.Background(), "", 1, 2)
	require.NoError(t, err)
	require.Len(t, first.Orders, 2)
	require.EqualValues(t, 3, first.TotalPages)
	require.Equal(t, 1, first.CurrentPage)

	last, err := svc.SearchByProtocol(context.Background(), "", 3, 2)
	require.NoError(t, err)
	require.Len(t, last.Orders, 1)
	require.Equal(t, 3, last.CurrentPage)
}
