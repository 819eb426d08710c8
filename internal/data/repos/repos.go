package repos

import (
	"gorm.io/gorm"

	"github.com/dealhawk/dealhawk-backend/internal/data/repos/affiliate"
	"github.com/dealhawk/dealhawk-backend/internal/data/repos/catalog"
	"github.com/dealhawk/dealhawk-backend/internal/data/repos/generation"
	"github.com/dealhawk/dealhawk-backend/internal/data/repos/marketing"
	"github.com/dealhawk/dealhawk-backend/internal/platform/logger"
)

type MerchantRepo = catalog.MerchantRepo
type CategoryRepo = catalog.CategoryRepo
type ProductRepo = catalog.ProductRepo
type ProductFilter = catalog.ProductFilter
type CouponRepo = catalog.CouponRepo

type NetworkRepo = affiliate.NetworkRepo

type GenerationLogRepo = generation.LogRepo

type SubscriberRepo = marketing.SubscriberRepo
type ClickoutRepo = marketing.ClickoutRepo
type ProductClickCount = marketing.ProductClickCount

func NewMerchantRepo(db *gorm.DB, baseLog *logger.Logger) MerchantRepo {
	return catalog.NewMerchantRepo(db, baseLog)
}
func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) CategoryRepo {
	return catalog.NewCategoryRepo(db, baseLog)
}
func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	return catalog.NewProductRepo(db, baseLog)
}
func NewCouponRepo(db *gorm.DB, baseLog *logger.Logger) CouponRepo {
	return catalog.NewCouponRepo(db, baseLog)
}

func NewNetworkRepo(db *gorm.DB, baseLog *logger.Logger) NetworkRepo {
	return affiliate.NewNetworkRepo(db, baseLog)
}

func NewGenerationLogRepo(db *gorm.DB, baseLog *logger.Logger) GenerationLogRepo {
	return generation.NewLogRepo(db, baseLog)
}

func NewSubscriberRepo(db *gorm.DB, baseLog *logger.Logger) SubscriberRepo {
	return marketing.NewSubscriberRepo(db, baseLog)
}
func NewClickoutRepo(db *gorm.DB, baseLog *logger.Logger) ClickoutRepo {
	return marketing.NewClickoutRepo(db, baseLog)
}
