package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/taskify_api/internal/middleware"
	"github.com/GTDGit/taskify_api/internal/models"
)

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health   *HealthHandler
	Auth     *AuthHandler
	Product  *ProductHandler
	Customer *CustomerHandler
	Sale     *SaleHandler
	Draft    *DraftHandler
	Alert    *AlertHandler
	SSE      *SSEHandler
	User     *UserHandler
}

// RegisterRoutes registers all /v1 routes.
func RegisterRoutes(router *gin.Engine, h *Handlers, jwtMiddleware *middleware.JWTMiddleware) {
	v1 := router.Group("/v1")
	v1.GET("/health", h.Health.GetHealth)
	v1.POST("/auth/login", h.Auth.Login)

	// EventSource cannot send headers, so the stream authenticates via ?token=.
	v1.GET("/alerts/stream", jwtMiddleware.HandleStream(), h.SSE.Stream)

	api := v1.Group("")
	api.Use(jwtMiddleware.Handle())
	{
		// Products
		api.GET("/products", h.Product.GetProducts)
		api.POST("/products", h.Product.CreateProduct)
		api.GET("/products/low-stock", h.Product.GetLowStock)
		api.GET("/products/:id", h.Product.GetProduct)
		api.PUT("/products/:id", h.Product.UpdateProduct)
		api.DELETE("/products/:id", h.Product.DeleteProduct)

		// Customers
		api.GET("/customers", h.Customer.GetCustomers)
		api.POST("/customers", h.Customer.CreateCustomer)
		api.GET("/customers/:id", h.Customer.GetCustomer)
		api.PUT("/customers/:id", h.Customer.UpdateCustomer)
		api.DELETE("/customers/:id", h.Customer.DeleteCustomer)

		// Sale drafts
		api.POST("/sales/drafts", h.Draft.CreateDraft)
		api.GET("/sales/drafts/:draftId", h.Draft.GetDraft)
		api.DELETE("/sales/drafts/:draftId", h.Draft.DiscardDraft)
		api.POST("/sales/drafts/:draftId/items", h.Draft.AddItem)
		api.PUT("/sales/drafts/:draftId/items/:index", h.Draft.SetQuantity)
		api.DELETE("/sales/drafts/:draftId/items/:index", h.Draft.RemoveItem)
		api.PUT("/sales/drafts/:draftId/rates", h.Draft.SetRates)
		api.PUT("/sales/drafts/:draftId/details", h.Draft.SetDetails)
		api.POST("/sales/drafts/:draftId/submit", h.Draft.SubmitDraft)

		// Sales
		api.GET("/sales", h.Sale.GetSales)
		api.POST("/sales", h.Sale.CreateSale)
		api.GET("/sales/:id", h.Sale.GetSale)

		// Alerts
		api.GET("/alerts", h.Alert.GetAlerts)
		api.POST("/alerts", h.Alert.CreateAlert)
		api.POST("/alerts/reconcile", h.Alert.Reconcile)
		api.DELETE("/alerts", h.Alert.DismissAll)
		api.DELETE("/alerts/product/:productId", h.Alert.DismissForProduct)
		api.DELETE("/alerts/:id", h.Alert.DismissAlert)
	}

	users := api.Group("/users")
	users.Use(middleware.RequireRole(string(models.RoleAdmin)))
	{
		users.GET("", h.User.GetUsers)
		users.POST("", h.User.CreateUser)
		users.GET("/:id", h.User.GetUser)
		users.PUT("/:id", h.User.UpdateUser)
		users.DELETE("/:id", h.User.DeleteUser)
	}
}
