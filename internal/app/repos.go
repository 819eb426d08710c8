package app

import (
	"gorm.io/gorm"

	"github.com/dealhawk/dealhawk-backend/internal/data/repos"
	"github.com/dealhawk/dealhawk-backend/internal/platform/logger"
)

type Repos struct {
	Merchant      repos.MerchantRepo
	Category      repos.CategoryRepo
	Product       repos.ProductRepo
	Coupon        repos.CouponRepo
	Network       repos.NetworkRepo
	GenerationLog repos.GenerationLogRepo
	Subscriber    repos.SubscriberRepo
	Clickout      repos.ClickoutRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Merchant:      repos.NewMerchantRepo(db, log),
		Category:      repos.NewCategoryRepo(db, log),
		Product:       repos.NewProductRepo(db, log),
		Coupon:        repos.NewCouponRepo(db, log),
		Network:       repos.NewNetworkRepo(db, log),
		GenerationLog: repos.NewGenerationLogRepo(db, log),
		Subscriber:    repos.NewSubscriberRepo(db, log),
		Clickout:      repos.NewClickoutRepo(db, log),
	}
}
