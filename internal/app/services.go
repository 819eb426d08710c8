package app

import (
	"gorm.io/gorm"

	"github.com/dealhawk/dealhawk-backend/internal/platform/logger"
	"github.com/dealhawk/dealhawk-backend/internal/services"
)

type Services struct {
	Classifier services.Classifier
	Affiliate  services.AffiliateService
	Generator  services.GeneratorService
	Catalog    services.CatalogService
	Admin      services.AdminCatalogService
	Newsletter services.NewsletterService
	Analytics  services.AnalyticsService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	classifier, err := services.NewClassifier(log, clients.OpenAI)
	if err != nil {
		return Services{}, err
	}

	affiliate, err := services.NewAffiliateService(log, clients.Affiliate, reposet.Network, reposet.Merchant)
	if err != nil {
		return Services{}, err
	}

	generator, err := services.NewGeneratorService(log, services.GeneratorDeps{
		DB:           db,
		ProductRepo:  reposet.Product,
		MerchantRepo: reposet.Merchant,
		CategoryRepo: reposet.Category,
		CouponRepo:   reposet.Coupon,
		NetworkRepo:  reposet.Network,
		LogRepo:      reposet.GenerationLog,
		Classifier:   classifier,
		Affiliates:   affiliate,
		Cache:        clients.Cache,
		Defaults:     cfg.GenerationDefaults,
	})
	if err != nil {
		return Services{}, err
	}

	catalog, err := services.NewCatalogService(log, reposet.Product, reposet.Merchant, reposet.Category, reposet.Coupon, clients.Cache)
	if err != nil {
		return Services{}, err
	}

	admin, err := services.NewAdminCatalogService(log, reposet.Merchant, reposet.Product, reposet.Coupon, affiliate)
	if err != nil {
		return Services{}, err
	}

	newsletter, err := services.NewNewsletterService(log, reposet.Subscriber, reposet.Product, clients.SendGrid)
	if err != nil {
		return Services{}, err
	}

	analytics, err := services.NewAnalyticsService(log, reposet.Product, reposet.Merchant, reposet.Coupon, reposet.Subscriber, reposet.Clickout, reposet.GenerationLog)
	if err != nil {
		return Services{}, err
	}

	return Services{
		Classifier: classifier,
		Affiliate:  affiliate,
		Generator:  generator,
		Catalog:    catalog,
		Admin:      admin,
		Newsletter: newsletter,
		Analytics:  analytics,
	}, nil
}
