package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/skvortsov/shop-backend/internal/models"
)

type CartService struct {
	DB *gorm.DB
}

type AddToCartInput struct {
	ProductID uint   `json:"product_id"`
	Quantity  uint   `json:"quantity"`
	Color     string `json:"color"`
	Size      string `json:"size"`
}

// AddToCart validates the requested variant against the product and appends a
// snapshot row. Duplicate (user, product, color, size) adds are not merged.
func (s *CartService) AddToCart(ctx context.Context, userID uint, in AddToCartInput) (*models.CartItem, error) {
	if in.Quantity == 0 {
		return nil, fmt.Errorf("%w: quantity must be a positive integer", ErrValidation)
	}

	var product models.Product
	if err := s.DB.WithContext(ctx).Preload("Sizes").Preload("Colors").First(&product, in.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product", ErrNotFound)
		}
		return nil, err
	}

	unitPrice := product.Price
	if product.HasSizes() {
		matched := false
		for _, sv := range product.Sizes {
			if sv.Size == in.Size {
				unitPrice = sv.Price
				matched = true
				break
			}
		}
		if !matched {
			return nil, fmt.Errorf("%w: size %q not available for this product", ErrValidation, in.Size)
		}
	}

	imageURL := product.ImageURL
	if len(product.Colors) > 0 {
		matched := false
		for _, cv := range product.Colors {
			if cv.Color == in.Color {
				if cv.ImageURL != "" {
					imageURL = cv.ImageURL
				}
				matched = true
				break
			}
		}
		if !matched {
			return nil, fmt.Errorf("%w: color %q not available for this product", ErrValidation, in.Color)
		}
	}

	item := models.CartItem{
		UserID:    userID,
		ProductID: product.ID,
		Title:     product.Title,
		ImageURL:  imageURL,
		UnitPrice: unitPrice,
		Quantity:  in.Quantity,
		Color:     in.Color,
		Size:      in.Size,
	}
	if err := s.DB.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *CartService) ListCart(ctx context.Context, userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	err := s.DB.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID uint, quantity int) (*models.CartItem, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be a positive integer", ErrValidation)
	}

	item, err := s.firstItem(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	item.Quantity = uint(quantity)
	if err := s.DB.WithContext(ctx).Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (s *CartService) RemoveFromCart(ctx context.Context, userID, productID uint) error {
	item, err := s.firstItem(ctx, userID, productID)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Delete(item).Error
}

// ClearCart is idempotent: clearing an empty cart succeeds.
func (s *CartService) ClearCart(ctx context.Context, userID uint) error {
	return s.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}

func (s *CartService) firstItem(ctx context.Context, userID, productID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Order("id ASC").
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: item not in cart", ErrNotFound)
		}
		return nil, err
	}
	return &item, nil
}
