package server

import (
	"github.com/gin-gonic/gin"

	"github.com/dealhawk/dealhawk-backend/internal/http/handlers"
	"github.com/dealhawk/dealhawk-backend/internal/http/middleware"
	"github.com/dealhawk/dealhawk-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log               *logger.Logger
	CatalogHandler    *handlers.CatalogHandler
	GenerationHandler *handlers.GenerationHandler
	NetworkHandler    *handlers.NetworkHandler
	NewsletterHandler *handlers.NewsletterHandler
	AnalyticsHandler  *handlers.AnalyticsHandler
	AdminHandler      *handlers.AdminCatalogHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestLogger(cfg.Log))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.GET("/products", cfg.CatalogHandler.ListProducts)
		api.GET("/products/:slug", cfg.CatalogHandler.GetProduct)
		api.GET("/merchants", cfg.CatalogHandler.ListMerchants)
		api.GET("/merchants/:slug/coupons", cfg.CatalogHandler.MerchantCoupons)
		api.GET("/coupons", cfg.CatalogHandler.ListCoupons)
		api.GET("/categories", cfg.CatalogHandler.ListCategories)

		api.POST("/clickout/:productId", cfg.AnalyticsHandler.Clickout)

		api.POST("/newsletter/subscribe", cfg.NewsletterHandler.Subscribe)
		api.POST("/newsletter/unsubscribe", cfg.NewsletterHandler.Unsubscribe)
	}

	// ===============
	// || Admin     ||
	// ===============
	// Session auth in front of this group is terminated by the edge proxy.
	admin := router.Group("/api/admin")
	{
		admin.GET("/generation/status", cfg.GenerationHandler.Status)
		admin.POST("/generation/run", cfg.GenerationHandler.Run)
		admin.GET("/generation/logs", cfg.GenerationHandler.Logs)

		admin.POST("/networks", cfg.NetworkHandler.Create)
		admin.GET("/networks", cfg.NetworkHandler.List)
		admin.POST("/networks/:id/test", cfg.NetworkHandler.Test)
		admin.GET("/networks/:id/coupons", cfg.NetworkHandler.Coupons)
		admin.POST("/networks/test-all", cfg.NetworkHandler.TestAll)

		admin.GET("/merchants", cfg.AdminHandler.ListMerchants)
		admin.POST("/merchants", cfg.AdminHandler.CreateMerchant)
		admin.PATCH("/merchants/:id", cfg.AdminHandler.UpdateMerchant)
		admin.DELETE("/merchants/:id", cfg.AdminHandler.DeleteMerchant)

		admin.GET("/products", cfg.AdminHandler.ListProducts)
		admin.POST("/products", cfg.AdminHandler.CreateProduct)
		admin.PATCH("/products/:id", cfg.AdminHandler.UpdateProduct)
		admin.DELETE("/products/:id", cfg.AdminHandler.DeleteProduct)

		admin.GET("/coupons", cfg.AdminHandler.ListCoupons)
		admin.POST("/coupons", cfg.AdminHandler.CreateCoupon)
		admin.PATCH("/coupons/:id", cfg.AdminHandler.UpdateCoupon)
		admin.POST("/coupons/:id/verify", cfg.AdminHandler.VerifyCoupon)
		admin.DELETE("/coupons/:id", cfg.AdminHandler.DeleteCoupon)

		admin.GET("/analytics/dashboard", cfg.AnalyticsHandler.Dashboard)

		admin.POST("/newsletter/digest", cfg.NewsletterHandler.SendDigest)
	}

	return router
}
