package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/skvortsov/shop-backend/internal/models"
	"github.com/skvortsov/shop-backend/internal/mykafka"
)

type PostHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

type postRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

func (h *PostHandler) CreatePost(c echo.Context) error {
	var req postRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}

	post := models.Post{Title: req.Title, Description: req.Description, ImageURL: req.ImageURL}
	if err := h.DB.Create(&post).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	publish(c, h.Producer, "post_events", map[string]any{
		"type":   "post_created",
		"postID": post.ID,
		"title":  post.Title,
	})
	return c.JSON(http.StatusCreated, post)
}

func (h *PostHandler) GetPosts(c echo.Context) error {
	var posts []models.Post
	if err := h.DB.Order("created_at DESC").Find(&posts).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, posts)
}

func (h *PostHandler) UpdatePost(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req postRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var post models.Post
	if err := h.DB.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	post.Title = req.Title
	post.Description = req.Description
	post.ImageURL = req.ImageURL
	if err := h.DB.Save(&post).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	publish(c, h.Producer, "post_events", map[string]any{
		"type":   "post_updated",
		"postID": post.ID,
		"title":  post.Title,
	})
	return c.JSON(http.StatusOK, post)
}

func (h *PostHandler) DeletePost(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.DB.Delete(&models.Post{}, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	publish(c, h.Producer, "post_events", map[string]any{
		"type":   "post_deleted",
		"postID": id,
	})
	return c.JSON(http.StatusOK, echo.Map{"message": "post deleted"})
}
