package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/skvortsov/shop-backend/internal/identity"
	"github.com/skvortsov/shop-backend/internal/logging"
	authmw "github.com/skvortsov/shop-backend/internal/middleware/auth"
	"github.com/skvortsov/shop-backend/internal/mykafka"
	"github.com/skvortsov/shop-backend/internal/service"
	"github.com/skvortsov/shop-backend/internal/util"
)

type OrderHandler struct {
	Svc      *service.OrderService
	Producer *mykafka.Producer
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order_create")

	userID, _, err := authmw.ContextIdentity(c)
	if err != nil {
		return err
	}

	var req struct {
		Items      []service.OrderItemInput `json:"order_items"`
		TotalPrice decimal.Decimal          `json:"total_price"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("order_create_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Svc.PlaceOrder(ctx, userID, req.Items, req.TotalPrice)
	if err != nil {
		l.Warn("order_create_failed", "error", err)
		return httpError(err)
	}

	publish(c, h.Producer, "order_events", map[string]any{
		"type":     "order_created",
		"userID":   userID,
		"orderID":  order.ID,
		"protocol": order.Protocol,
		"total":    order.Total,
	})

	l.Info("order_create_success", "order_id", order.ID, "protocol", order.Protocol)
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	userID, _, err := authmw.ContextIdentity(c)
	if err != nil {
		return err
	}

	orders, err := h.Svc.ListOrders(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	if len(orders) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "no orders found")
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) ListAllOrders(c echo.Context) error {
	orders, err := h.Svc.ListAllOrders(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	if len(orders) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "no orders found")
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	userID, role, err := authmw.ContextIdentity(c)
	if err != nil {
		return err
	}
	orderID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	// the admin claim alone never widens access; the record must still exist
	isAdmin := false
	if role == identity.RoleAdmin {
		if _, err := identity.ByID(h.Svc.DB, identity.RoleAdmin, userID); err == nil {
			isAdmin = true
		} else if !errors.Is(err, identity.ErrNotFound) {
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}

	order, err := h.Svc.GetOrder(c.Request().Context(), orderID, userID, isAdmin)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) SetStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order_set_status")

	orderID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Svc.SetStatus(ctx, orderID, req.Status)
	if err != nil {
		l.Warn("order_set_status_failed", "order_id", orderID, "error", err)
		return httpError(err)
	}

	publish(c, h.Producer, "order_events", map[string]any{
		"type":    "order_status_changed",
		"userID":  order.UserID,
		"orderID": order.ID,
		"status":  order.Status,
	})

	l.Info("order_status_changed", "order_id", order.ID, "status", order.Status)
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) SearchOrders(c echo.Context) error {
	query := c.QueryParam("protocol")
	page := parseIntDefault(c.QueryParam("page"), 1)
	limit := parseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)

	result, err := h.Svc.SearchByProtocol(c.Request().Context(), query, page, limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}
