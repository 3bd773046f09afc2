package auth

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/skvortsov/shop-backend/internal/identity"
	"github.com/skvortsov/shop-backend/internal/models"
	"github.com/skvortsov/shop-backend/internal/token"
)

// Gate is the authorization middleware chain: authenticate the bearer token,
// then apply role and purchase-history predicates. Checks only touch the
// request context, never the store's data.
type Gate struct {
	DB     *gorm.DB
	Tokens *token.Service
}

// RequireAuth authenticates "Authorization: Bearer <token>" and attaches the
// resolved identity to the request context.
func (g *Gate) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
		}
		if !strings.HasPrefix(header, "Bearer ") {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization scheme")
		}

		claims, err := g.Tokens.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		id, err := strconv.ParseUint(claims.Subject, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid subject claim")
		}

		c.Set("userID", uint(id))
		c.Set("role", claims.Role)
		c.Set("name", claims.Name)
		return next(c)
	}
}

// RequireAdmin re-queries the admin table by the token's subject id. The role
// claim is never trusted on its own; the same policy applies to RequireUser.
func (g *Gate) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return g.requireRole(next, identity.RoleAdmin, "admin access required")
}

func (g *Gate) RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return g.requireRole(next, identity.RoleUser, "user access required")
}

func (g *Gate) requireRole(next echo.HandlerFunc, role, denied string) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, claimedRole, err := ContextIdentity(c)
		if err != nil {
			return err
		}
		if claimedRole != role {
			return echo.NewHTTPError(http.StatusForbidden, denied)
		}
		if _, err := identity.ByID(g.DB, role, userID); err != nil {
			if errors.Is(err, identity.ErrNotFound) {
				return echo.NewHTTPError(http.StatusForbidden, denied)
			}
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		return next(c)
	}
}

// RequirePurchase passes only when a completed order of this user contains
// the product from the route. The live cart does not count as a purchase.
func (g *Gate) RequirePurchase(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, _, err := ContextIdentity(c)
		if err != nil {
			return err
		}
		productID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
		}

		var count int64
		if err := g.DB.Model(&models.OrderItem{}).
			Joins("JOIN orders ON orders.id = order_items.order_id").
			Where("orders.user_id = ? AND order_items.product_id = ?", userID, productID).
			Count(&count).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		if count == 0 {
			return echo.NewHTTPError(http.StatusForbidden, "you must purchase this product before reviewing or commenting")
		}
		return next(c)
	}
}

// ContextIdentity reads the identity attached by RequireAuth.
func ContextIdentity(c echo.Context) (uint, string, error) {
	id, ok := c.Get("userID").(uint)
	if !ok {
		return 0, "", echo.NewHTTPError(http.StatusUnauthorized, "no user in context")
	}
	role, _ := c.Get("role").(string)
	return id, role, nil
}
