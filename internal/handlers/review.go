package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/skvortsov/shop-backend/internal/logging"
	authmw "github.com/skvortsov/shop-backend/internal/middleware/auth"
	"github.com/skvortsov/shop-backend/internal/models"
	"github.com/skvortsov/shop-backend/internal/mykafka"
)

type ReviewHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func (h *ReviewHandler) CreateReview(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review_create")

	userID, _, err := authmw.ContextIdentity(c)
	if err != nil {
		return err
	}
	productID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return echo.NewHTTPError(http.StatusBadRequest, "rating must be between 1 and 5")
	}

	// one review per (user, product); pre-check, no unique constraint
	var existing models.Review
	err = h.DB.Where("product_id = ? AND user_id = ?", productID, userID).First(&existing).Error
	if err == nil {
		l.Warn("review_failed", "status", 409, "reason", "already_reviewed")
		return echo.NewHTTPError(http.StatusConflict, "you have already reviewed this product")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	review := models.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := h.DB.Create(&review).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	publish(c, h.Producer, "product_events", map[string]any{
		"type":      "review_created",
		"userID":    userID,
		"productID": productID,
		"rating":    review.Rating,
	})

	l.Info("review_created", "product_id", productID)
	return c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) GetReviews(c echo.Context) error {
	productID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var reviews []models.Review
	if err := h.DB.Where("product_id = ?", productID).Order("id ASC").Find(&reviews).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, reviews)
}

func (h *ReviewHandler) CreateComment(c echo.Context) error {
	userID, _, err := authmw.ContextIdentity(c)
	if err != nil {
		return err
	}
	productID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text is required")
	}

	comment := models.Comment{ProductID: productID, UserID: userID, Text: req.Text}
	if err := h.DB.Create(&comment).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	publish(c, h.Producer, "product_events", map[string]any{
		"type":      "comment_created",
		"userID":    userID,
		"productID": productID,
	})
	return c.JSON(http.StatusCreated, comment)
}

func (h *ReviewHandler) GetComments(c echo.Context) error {
	productID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var comments []models.Comment
	if err := h.DB.Where("product_id = ?", productID).Order("id ASC").Find(&comments).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, comments)
}
