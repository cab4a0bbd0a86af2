package router

import (
	"vitalink/internal/middleware"
	"vitalink/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupPractitionerRoutes(api *echo.Group, handler *rest.PractitionerHandler) {
	practitioners := api.Group("/practitioners")

	practitioners.POST("/register", handler.Register)
	practitioners.POST("/login", handler.Login)

	practitioners.GET("/me", handler.Me, middleware.AuthMiddleware())

	admin := api.Group("/admin/practitioners", middleware.AuthMiddleware(), middleware.AdminOnly())
	admin.PUT("/:id/approve", handler.Approve)
}

func SetupWizardRoutes(api *echo.Group, handler *rest.WizardHandler) {
	wizard := api.Group("/wizard", middleware.AuthMiddleware())

	wizard.POST("", handler.Start)
	wizard.GET("/:id", handler.Snapshot)
	wizard.DELETE("/:id", handler.Abandon)

	wizard.POST("/:id/catalog/search", handler.CatalogSearch)
	wizard.POST("/:id/catalog/category", handler.CatalogFilter)
	wizard.GET("/:id/catalog", handler.CatalogPage)
	wizard.GET("/:id/catalog/categories", handler.CatalogCategories)

	wizard.POST("/:id/selection/toggle", handler.ToggleSelection)
	wizard.PATCH("/:id/selection/:productId", handler.UpdateSelection)

	wizard.PUT("/:id/protocol", handler.SetProtocol)

	wizard.POST("/:id/next", handler.Next)
	wizard.POST("/:id/back", handler.Back)

	wizard.POST("/:id/client/search", handler.ClientSearch)
	wizard.POST("/:id/client/select", handler.ClientSelect)
	wizard.POST("/:id/client/create", handler.ClientCreate)
	wizard.DELETE("/:id/client", handler.ClientClear)

	wizard.POST("/:id/submit", handler.Submit)
}

func SetupClientRoutes(api *echo.Group, handler *rest.ClientHandler) {
	clients := api.Group("/clients", middleware.AuthMiddleware())

	clients.GET("", handler.List)
	clients.GET("/search", handler.Search)
	clients.GET("/:id", handler.Get)
	clients.POST("", handler.Create)
}

func SetupRecommendationRoutes(api *echo.Group, handler *rest.RecommendationHandler) {
	recommendations := api.Group("/recommendations", middleware.AuthMiddleware())

	recommendations.GET("", handler.List)
	recommendations.GET("/:id", handler.Get)
	recommendations.DELETE("/:id", handler.Delete)

	// Public: shared links are redeemed without a practitioner token.
	api.GET("/recommendations/share/:code", handler.Redeem)
}

func SetupCatalogRoutes(api *echo.Group, handler *rest.CatalogHandler) {
	products := api.Group("/products", middleware.AuthMiddleware())

	products.GET("", handler.List)
	products.GET("/:id", handler.Get)
}

func SetupWebhookRoutes(api *echo.Group, handler *rest.WebhookHandler) {
	webhook := api.Group("/webhook")
	webhook.POST("/storefront", handler.HandlePurchase)
}
