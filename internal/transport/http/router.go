package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/skvortsov/shop-backend/internal/handlers"
	authmw "github.com/skvortsov/shop-backend/internal/middleware/auth"
)

type Deps struct {
	Gate           *authmw.Gate
	AuthHandler    *handlers.AuthHandler
	ProductHandler *handlers.ProductHandler
	PostHandler    *handlers.PostHandler
	ReviewHandler  *handlers.ReviewHandler
	CartHandler    *handlers.CartHandler
	OrderHandler   *handlers.OrderHandler
	UploadHandler  *handlers.UploadHandler
	SearchHandler  *handlers.SearchHandler
	UploadDir      string
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	e.POST("/register", d.AuthHandler.Register)
	e.POST("/login", d.AuthHandler.Login)
	e.GET("/api/check-admin", d.AuthHandler.CheckAdmin, d.Gate.RequireAuth, d.Gate.RequireAdmin)

	products := e.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	if d.SearchHandler != nil {
		products.GET("/search", d.SearchHandler.Search)
	}
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.GET("/:id/reviews", d.ReviewHandler.GetReviews)
	products.GET("/:id/comments", d.ReviewHandler.GetComments)
	products.POST("/:id/reviews", d.ReviewHandler.CreateReview,
		d.Gate.RequireAuth, d.Gate.RequireUser, d.Gate.RequirePurchase)
	products.POST("/:id/comments", d.ReviewHandler.CreateComment,
		d.Gate.RequireAuth, d.Gate.RequireUser, d.Gate.RequirePurchase)
	products.POST("", d.ProductHandler.CreateProduct, d.Gate.RequireAuth, d.Gate.RequireAdmin)
	products.PUT("/:id", d.ProductHandler.PatchProduct, d.Gate.RequireAuth, d.Gate.RequireAdmin)
	products.DELETE("/:id", d.ProductHandler.DeleteProduct, d.Gate.RequireAuth, d.Gate.RequireAdmin)

	posts := e.Group("/posts")
	posts.GET("", d.PostHandler.GetPosts)
	posts.POST("", d.PostHandler.CreatePost, d.Gate.RequireAuth, d.Gate.RequireAdmin)
	posts.PUT("/:id", d.PostHandler.UpdatePost, d.Gate.RequireAuth, d.Gate.RequireAdmin)
	posts.DELETE("/:id", d.PostHandler.DeletePost, d.Gate.RequireAuth, d.Gate.RequireAdmin)

	cart := e.Group("/cart", d.Gate.RequireAuth)
	cart.POST("/add", d.CartHandler.AddToCart, d.Gate.RequireUser)
	cart.GET("", d.CartHandler.GetCart, d.Gate.RequireUser)
	cart.PUT("/update/:productId", d.CartHandler.UpdateQuantity, d.Gate.RequireUser)
	cart.DELETE("/remove/:productId", d.CartHandler.RemoveFromCart, d.Gate.RequireUser)
	cart.DELETE("/clear", d.CartHandler.ClearCart)

	e.GET("/orders/search", d.OrderHandler.SearchOrders)
	e.POST("/orders", d.OrderHandler.CreateOrder, d.Gate.RequireAuth, d.Gate.RequireUser)
	e.GET("/orders", d.OrderHandler.ListOrders, d.Gate.RequireAuth, d.Gate.RequireUser)
	e.GET("/order/:id", d.OrderHandler.GetOrder, d.Gate.RequireAuth)
	e.PATCH("/orders/:id/status", d.OrderHandler.SetStatus, d.Gate.RequireAuth, d.Gate.RequireAdmin)
	e.GET("/ordersadm", d.OrderHandler.ListAllOrders, d.Gate.RequireAuth, d.Gate.RequireAdmin)

	if d.UploadHandler != nil {
		e.POST("/upload", d.UploadHandler.Upload, d.Gate.RequireAuth, d.Gate.RequireAdmin)
		e.Static("/uploads", d.UploadDir)
	}
}
