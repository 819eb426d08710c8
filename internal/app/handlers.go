package app

import (
	"github.com/dealhawk/dealhawk-backend/internal/http/handlers"
	"github.com/dealhawk/dealhawk-backend/internal/platform/logger"
)

type Handlers struct {
	Catalog    *handlers.CatalogHandler
	Generation *handlers.GenerationHandler
	Network    *handlers.NetworkHandler
	Newsletter *handlers.NewsletterHandler
	Analytics  *handlers.AnalyticsHandler
	Admin      *handlers.AdminCatalogHandler
}

func wireHandlers(log *logger.Logger, serviceset Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Catalog:    handlers.NewCatalogHandler(serviceset.Catalog),
		Generation: handlers.NewGenerationHandler(serviceset.Generator),
		Network:    handlers.NewNetworkHandler(serviceset.Affiliate),
		Newsletter: handlers.NewNewsletterHandler(serviceset.Newsletter),
		Analytics:  handlers.NewAnalyticsHandler(serviceset.Analytics),
		Admin:      handlers.NewAdminCatalogHandler(serviceset.Admin, serviceset.Catalog),
	}
}
