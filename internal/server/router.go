// Package server assembles the gin engine: middleware chain, handlers,
// and the role-scoped route groups.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"materiaux-pro/internal/auth"
	"materiaux-pro/internal/server/handlers"
	"materiaux-pro/internal/server/middleware"
	"materiaux-pro/internal/service"
)

// Services bundles everything the router needs. cmd/server wires it over
// postgres and redis; the tests wire it over the in-memory stores.
type Services struct {
	Sessions  *auth.SessionManager
	Accounts  *service.AccountService
	Catalog   *service.CatalogService
	Orders    *service.OrderService
	Quotes    *service.QuoteService
	Favorites *service.FavoriteService
	Stats     *service.StatsService
}

func NewRouter(s Services) *gin.Engine {
	r := gin.New()

	r.Use(middleware.CORS())
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.Authenticate(s.Sessions))

	authHandler := handlers.NewAuthHandler(s.Accounts)
	userHandler := handlers.NewUserHandler(s.Accounts)
	productHandler := handlers.NewProductHandler(s.Catalog)
	categoryHandler := handlers.NewCategoryHandler(s.Catalog)
	orderHandler := handlers.NewOrderHandler(s.Orders)
	quoteHandler := handlers.NewQuoteHandler(s.Quotes)
	favoriteHandler := handlers.NewFavoriteHandler(s.Favorites)
	statsHandler := handlers.NewStatsHandler(s.Stats)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// --- Public API ---
	public := r.Group("/api")
	{
		public.POST("/register/client", authHandler.RegisterClient)
		public.POST("/register/supplier", authHandler.RegisterSupplier)
		public.POST("/login", authHandler.Login)
		public.POST("/logout", authHandler.Logout)
		public.GET("/user", authHandler.CurrentUser)
		public.POST("/user/password", authHandler.ChangePassword)

		products := public.Group("/products")
		{
			products.GET("", productHandler.ListProducts)
			products.GET("/search", productHandler.SearchProducts)
			products.GET("/filter", productHandler.FilterProducts)
			products.GET("/:id", productHandler.GetProduct)
		}

		categories := public.Group("/categories")
		{
			categories.GET("", categoryHandler.ListCategories)
			categories.GET("/:id", categoryHandler.GetCategory)
			categories.GET("/:id/products", categoryHandler.CategoryProducts)
		}
	}

	// --- Client API ---
	client := r.Group("/api/client")
	client.Use(middleware.RequireRole(auth.RoleClient))
	{
		client.GET("/profile", userHandler.ClientProfile)
		client.PUT("/profile", userHandler.UpdateClientProfile)

		client.POST("/orders", orderHandler.CreateOrder)
		client.GET("/orders", orderHandler.ClientOrders)
		client.GET("/orders/:id", orderHandler.GetOrder)
		client.GET("/orders/:id/delivery", orderHandler.OrderDelivery)

		client.POST("/quotes", quoteHandler.CreateQuote)
		client.GET("/quotes", quoteHandler.ClientQuotes)
		client.GET("/quotes/:id", quoteHandler.GetQuote)
		client.PUT("/quotes/:id/status", quoteHandler.UpdateQuoteStatus)

		client.GET("/favorites", favoriteHandler.ListFavorites)
		client.POST("/favorites", favoriteHandler.AddFavorite)
		client.DELETE("/favorites/:productId", favoriteHandler.RemoveFavorite)
	}

	// --- Supplier API ---
	supplier := r.Group("/api/supplier")
	supplier.Use(middleware.RequireRole(auth.RoleSupplier))
	{
		supplier.GET("/profile", userHandler.SupplierProfile)
		supplier.PUT("/profile", userHandler.UpdateSupplierProfile)

		supplier.GET("/products", productHandler.SupplierProducts)
		supplier.POST("/products", productHandler.CreateProduct)
		supplier.PUT("/products/:id", productHandler.UpdateProduct)
		supplier.DELETE("/products/:id", productHandler.DeleteProduct)

		supplier.GET("/orders", orderHandler.SupplierOrders)
		supplier.GET("/orders/:id", orderHandler.GetOrder)
		supplier.PUT("/orders/:id/status", orderHandler.UpdateOrderStatus)

		supplier.POST("/quotes", quoteHandler.CreateQuote)
		supplier.GET("/quotes", quoteHandler.SupplierQuotes)
		supplier.GET("/quotes/:id", quoteHandler.GetQuote)
		supplier.PUT("/quotes/:id/status", quoteHandler.UpdateQuoteStatus)

		supplier.GET("/stats", statsHandler.SupplierStats)
	}

	// --- Admin API ---
	admin := r.Group("/api/admin")
	admin.Use(middleware.RequireRole(auth.RoleAdmin))
	{
		admin.POST("/categories", categoryHandler.CreateCategory)
		admin.PUT("/categories/:id", categoryHandler.UpdateCategory)
		admin.DELETE("/categories/:id", categoryHandler.DeleteCategory)

		admin.PUT("/orders/:id/status", orderHandler.UpdateOrderStatus)
		admin.PUT("/quotes/:id/status", quoteHandler.UpdateQuoteStatus)

		admin.POST("/deliveries", orderHandler.CreateDelivery)
		admin.PUT("/deliveries/:id", orderHandler.UpdateDelivery)

		admin.GET("/users", userHandler.ListUsers)
		admin.DELETE("/users/:id", userHandler.DeleteUser)

		admin.GET("/stats", statsHandler.AdminStats)
	}

	return r
}
