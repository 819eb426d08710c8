package app

import (
	"github.com/gin-gonic/gin"

	"github.com/dealhawk/dealhawk-backend/internal/platform/logger"
	"github.com/dealhawk/dealhawk-backend/internal/server"
)

func wireRouter(log *logger.Logger, handlerset Handlers) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		Log:               log,
		CatalogHandler:    handlerset.Catalog,
		GenerationHandler: handlerset.Generation,
		NetworkHandler:    handlerset.Network,
		NewsletterHandler: handlerset.Newsletter,
		AnalyticsHandler:  handlerset.Analytics,
		AdminHandler:      handlerset.Admin,
	})
}
