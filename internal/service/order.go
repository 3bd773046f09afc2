package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/skvortsov/shop-backend/internal/models"
	"github.com/skvortsov/shop-backend/internal/util"
)

type OrderService struct {
	DB *gorm.DB
}

type OrderItemInput struct {
	ProductID uint            `json:"product_id"`
	Quantity  uint            `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Color     string          `json:"color"`
	Size      string          `json:"size"`
}

type OrderPage struct {
	Orders      []models.Order `json:"orders"`
	TotalPages  int64          `json:"total_pages"`
	CurrentPage int            `json:"current_page"`
}

// NewProtocol builds the human-readable tracking identifier. The uuid suffix
// keeps protocols unique under concurrent same-millisecond checkouts.
func NewProtocol() string {
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// PlaceOrder persists the order header and every item as one atomic unit and
// clears the user's cart in the same transaction. The declared total is never
// trusted: it must equal the recomputed sum of unit price times quantity.
func (s *OrderService) PlaceOrder(ctx context.Context, userID uint, items []OrderItemInput, declaredTotal decimal.Decimal) (*models.Order, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: order items required", ErrValidation)
	}

	total := decimal.Zero
	orderItems := make([]models.OrderItem, 0, len(items))
	for i := range items {
		in := items[i]
		if in.ProductID == 0 {
			return nil, fmt.Errorf("%w: product_id required", ErrValidation)
		}
		if in.Quantity == 0 {
			return nil, fmt.Errorf("%w: quantity must be a positive integer", ErrValidation)
		}
		if in.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: unit price must be >= 0", ErrValidation)
		}

		lineTotal := in.UnitPrice.Mul(decimal.NewFromInt(int64(in.Quantity)))
		total = total.Add(lineTotal)
		orderItems = append(orderItems, models.OrderItem{
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			UnitPrice: in.UnitPrice,
			Color:     in.Color,
			Size:      in.Size,
			LineTotal: lineTotal,
		})
	}

	if !total.Equal(declaredTotal) {
		return nil, fmt.Errorf("%w: declared total %s does not match computed total %s",
			ErrValidation, declaredTotal.String(), total.String())
	}

	order := &models.Order{
		UserID:    userID,
		Protocol:  NewProtocol(),
		Total:     total,
		Status:    "new",
		CreatedAt: time.Now().Unix(),
		Items:     orderItems,
	}

	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range orderItems {
			var count int64
			if err := tx.Model(&models.Product{}).Where("id = ?", orderItems[i].ProductID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return fmt.Errorf("%w: product %d", ErrNotFound, orderItems[i].ProductID)
			}
		}

		if err := tx.Create(order).Error; err != nil {
			return err
		}

		return tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.DB.WithContext(ctx).
		Preload("Items").Preload("Items.Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *OrderService) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.DB.WithContext(ctx).
		Preload("Items").Preload("Items.Product").
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder returns the order only to its owner, unless the caller is an admin.
func (s *OrderService) GetOrder(ctx context.Context, orderID, requesterID uint, isAdmin bool) (*models.Order, error) {
	var order models.Order
	err := s.DB.WithContext(ctx).
		Preload("Items").Preload("Items.Product").
		First(&order, orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order", ErrNotFound)
		}
		return nil, err
	}
	if !isAdmin && order.UserID != requesterID {
		return nil, fmt.Errorf("%w: not your order", ErrForbidden)
	}
	return &order, nil
}

// SetStatus updates the only mutable field of an order. Status is an open
// string; it just may not be empty.
func (s *OrderService) SetStatus(ctx context.Context, orderID uint, status string) (*models.Order, error) {
	if strings.TrimSpace(status) == "" {
		return nil, fmt.Errorf("%w: status required", ErrValidation)
	}

	var order models.Order
	if err := s.DB.WithContext(ctx).Preload("Items").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order", ErrNotFound)
		}
		return nil, err
	}

	order.Status = status
	if err := s.DB.WithContext(ctx).Save(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// SearchByProtocol matches the protocol case-insensitively as a substring;
// an empty query returns all orders, paginated.
func (s *OrderService) SearchByProtocol(ctx context.Context, query string, page, limit int) (*OrderPage, error) {
	offset, limit := util.Calculate(page, limit)
	if page < 1 {
		page = 1
	}

	filter := func(q *gorm.DB) *gorm.DB {
		if query != "" {
			q = q.Where("LOWER(protocol) LIKE ?", "%"+strings.ToLower(query)+"%")
		}
		return q
	}

	var total int64
	if err := filter(s.DB.WithContext(ctx).Model(&models.Order{})).Count(&total).Error; err != nil {
		return nil, err
	}

	var orders []models.Order
	err := filter(s.DB.WithContext(ctx).Preload("Items")).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	return &OrderPage{
		Orders:      orders,
		TotalPages:  (total + int64(limit) - 1) / int64(limit),
		CurrentPage: page,
	}, nil
}
