package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/skvortsov/shop-backend/internal/models"
	"github.com/skvortsov/shop-backend/internal/mykafka"
)

func newProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{DB: db, Producer: &mykafka.Producer{}}
}

func TestCreateProduct(t *testing.T) {
	db := InitTestDB(t)
	h := newProductHandler(db)
	e := echo.New()

	payload := map[string]any{
		"title":       "shirt",
		"description": "a shirt",
		"price":       "15",
		"sizes": []map[string]any{
			{"size": "M", "price": "20"},
		},
		"colors": []map[string]any{
			{"color": "red", "image_url": "/uploads/red.png"},
		},
	}
	c, rec := jsonRequest(t, e, http.MethodPost, "/products", payload)
	require.NoError(t, h.CreateProduct(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var product models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &product))
	require.NotZero(t, product.ID)
	require.Len(t, product.Sizes, 1)
	require.Len(t, product.Colors, 1)

	missing, _ := jsonRequest(t, e, http.MethodPost, "/products", map[string]any{"price": "1"})
	requireHTTPError(t, h.CreateProduct(missing), http.StatusBadRequest)
}

func TestGetProduct(t *testing.T) {
	db := InitTestDB(t)
	h := newProductHandler(db)
	e := echo.New()
	seedVariantProduct(t, db)

	c, rec := jsonRequest(t, e, http.MethodGet, "/products/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.GetProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var product models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &product))
	require.Equal(t, "shirt", product.Title)
	require.Len(t, product.Sizes, 1)

	missing, _ := jsonRequest(t, e, http.MethodGet, "/products/99", nil)
	missing.SetParamNames("id")
	missing.SetParamValues("99")
	requireHTTPError(t, h.GetProduct(missing), http.StatusNotFound)

	bad, _ := jsonRequest(t, e, http.MethodGet, "/products/abc", nil)
	bad.SetParamNames("id")
	bad.SetParamValues("abc")
	requireHTTPError(t, h.GetProduct(bad), http.StatusBadRequest)
}

func TestGetProductsPagination(t *testing.T) {
	db := InitTestDB(t)
	h := newProductHandler(db)
	e := echo.New()

	for i := 0; i < 15; i++ {
		require.NoError(t, db.Create(&models.Product{
			Title: "product", Description: "d", Price: decimal.NewFromInt(int64(i + 1)),
		}).Error)
	}

	c, rec := jsonRequest(t, e, http.MethodGet, "/products?page=2&size=10", nil)
	require.NoError(t, h.GetProducts(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []models.Product `json:"data"`
		Meta struct {
			Page       int   `json:"page"`
			Total      int64 `json:"total"`
			TotalPages int64 `json:"total_pages"`
			HasPrev    bool  `json:"has_prev"`
			HasNext    bool  `json:"has_next"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 5)
	require.Equal(t, 2, resp.Meta.Page)
	require.EqualValues(t, 15, resp.Meta.Total)
	require.EqualValues(t, 2, resp.Meta.TotalPages)
	require.True(t, resp.Meta.HasPrev)
	require.False(t, resp.Meta.HasNext)
}

func TestPatchProductReplacesVariants(t *testing.T) {
	db := InitTestDB(t)
	h := newProductHandler(db)
	e := echo.New()
	seedVariantProduct(t, db)

	payload := map[string]any{
		"title":       "shirt v2",
		"description": "new",
		"price":       "16",
		"sizes": []map[string]any{
			{"size": "L", "price": "22"},
			{"size": "XL", "price": "24"},
		},
	}
	c, rec := jsonRequest(t, e, http.MethodPut, "/products/1", payload)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.PatchProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var product models.Product
	require.NoError(t, db.Preload("Sizes").Preload("Colors").First(&product, 1).Error)
	require.Equal(t, "shirt v2", product.Title)
	require.Len(t, product.Sizes, 2)
	require.Empty(t, product.Colors)
}

func TestDeleteProduct(t *testing.T) {
	db := InitTestDB(t)
	h := newProductHandler(db)
	e := echo.New()
	seedVariantProduct(t, db)

	c, rec := jsonRequest(t, e, http.MethodDelete, "/products/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.DeleteProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	db.Model(&models.Product{}).Count(&count)
	require.Zero(t, count)
}

func TestPostCRUD(t *testing.T) {
	db := InitTestDB(t)
	h := &PostHandler{DB: db, Producer: &mykafka.Producer{}}
	e := echo.New()

	c, rec := jsonRequest(t, e, http.MethodPost, "/posts", map[string]string{
		"title":       "summer sale",
		"description": "everything must go",
	})
	require.NoError(t, h.CreatePost(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	missing, _ := jsonRequest(t, e, http.MethodPost, "/posts", map[string]string{"description": "x"})
	requireHTTPError(t, h.CreatePost(missing), http.StatusBadRequest)

	list, listRec := jsonRequest(t, e, http.MethodGet, "/posts", nil)
	require.NoError(t, h.GetPosts(list))
	require.Equal(t, http.StatusOK, listRec.Code)
	var posts []models.Post
	require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &posts))
	require.Len(t, posts, 1)

	upd, updRec := jsonRequest(t, e, http.MethodPut, "/posts/1", map[string]string{"title": "winter sale"})
	upd.SetParamNames("id")
	upd.SetParamValues("1")
	require.NoError(t, h.UpdatePost(upd))
	require.Equal(t, http.StatusOK, updRec.Code)
	require.Contains(t, updRec.Body.String(), "winter sale")

	del, delRec := jsonRequest(t, e, http.MethodDelete, "/posts/1", nil)
	del.SetParamNames("id")
	del.SetParamValues("1")
	require.NoError(t, h.DeletePost(del))
	require.Equal(t, http.StatusOK, delRec.Code)
}

func TestUpload(t *testing.T) {
	dir := t.TempDir()
	h := &UploadHandler{Dir: dir}
	e := echo.New()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "logo.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Upload(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Contains(t, resp["path"], "/uploads/")
	require.Contains(t, resp["path"], "logo.png")

	saved, err := os.ReadFile(filepath.Join(dir, filepath.Base(resp["path"])))
	require.NoError(t, err)
	require.Equal(t, "png-bytes", string(saved))

	// no file field
	noFile, _ := jsonRequest(t, e, http.MethodPost, "/upload", nil)
	requireHTTPError(t, h.Upload(noFile), http.StatusBadRequest)
}
