package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/skvortsov/shop-backend/internal/logging"
	authmw "github.com/skvortsov/shop-backend/internal/middleware/auth"
	"github.com/skvortsov/shop-backend/internal/mykafka"
	"github.com/skvortsov/shop-backend/internal/service"
)

type CartHandler struct {
	Svc      *service.CartService
	Producer *mykafka.Producer
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart_add")

	userID, _, err := authmw.ContextIdentity(c)
	if err != nil {
		return err
	}

	var req service.AddToCartInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	item, err := h.Svc.AddToCart(ctx, userID, req)
	if err != nil {
		l.Warn("cart_add_failed", "error", err)
		return httpError(err)
	}

	publish(c, h.Producer, "cart_events", map[string]any{
		"type":      "cart_item_added",
		"userID":    userID,
		"productID": item.ProductID,
		"quantity":  item.Quantity,
	})

	l.Info("cart_add_success", "product_id", item.ProductID)
	return c.JSON(http.StatusCreated, item)
}

func (h *CartHandler) GetCart(c echo.Context) error {
	userID, _, err := authmw.ContextIdentity(c)
	if err != nil {
		return err
	}

	items, err := h.Svc.ListCart(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CartHandler) UpdateQuantity(c echo.Context) error {
	userID, _, err := authmw.ContextIdentity(c)
	if err != nil {
		return err
	}
	productID, err := pathID(c, "productId")
	if err != nil {
		return err
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	item, err := h.Svc.UpdateQuantity(c.Request().Context(), userID, productID, req.Quantity)
	if err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, "cart_events", map[string]any{
		"type":      "cart_quantity_updated",
		"userID":    userID,
		"productID": productID,
		"quantity":  item.Quantity,
	})
	return c.JSON(http.StatusOK, item)
}

func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	userID, _, err := authmw.ContextIdentity(c)
	if err != nil {
		return err
	}
	productID, err := pathID(c, "productId")
	if err != nil {
		return err
	}

	if err := h.Svc.RemoveFromCart(c.Request().Context(), userID, productID); err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, "cart_events", map[string]any{
		"type":      "cart_item_removed",
		"userID":    userID,
		"productID": productID,
	})
	return c.JSON(http.StatusOK, echo.Map{"message": "removed from cart"})
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	userID, _, err := authmw.ContextIdentity(c)
	if err != nil {
		return err
	}

	if err := h.Svc.ClearCart(c.Request().Context(), userID); err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, "cart_events", map[string]any{
		"type":   "cart_cleared",
		"userID": userID,
	})
	return c.JSON(http.StatusOK, echo.Map{"message": "cart cleared"})
}
